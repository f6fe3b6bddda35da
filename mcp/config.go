package mcp

import (
	"github.com/viant/mcp-snowflake/config"
)

type Config struct {
	// Services lists the Cortex services and tool groups to expose.
	Services *config.Services

	// UseData, when set to true, puts tool results in the `data` field of
	// CallToolResultContentElem. When false (default) the result JSON is
	// carried in the `text` field.
	UseData bool `json:"useData,omitempty"`

	// ModelsURL is the documentation page get_cortex_models reads model
	// availability from; empty means cortex.DefaultModelsURL.
	ModelsURL string `json:"modelsURL,omitempty"`
}

func (c *Config) Init() {
	if c.Services == nil {
		c.Services = &config.Services{}
	}
}
