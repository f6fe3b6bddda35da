package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/viant/afs"
	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
	protoserver "github.com/viant/mcp-protocol/server"
	"github.com/viant/mcp-snowflake/config"
	"gopkg.in/yaml.v3"
)

const toolsConfigResource = "tools_config"

// ToolsConfigURI returns the resource URI of the service configuration, empty
// when the configuration was not loaded from a location.
func (s *Service) ToolsConfigURI() string {
	if s.services == nil || s.services.URL == "" {
		return ""
	}
	return config.NormalizeURL(s.services.URL)
}

// ToolsConfig re-reads the service configuration and returns it as JSON.
func (s *Service) ToolsConfig(ctx context.Context) (string, error) {
	URI := s.ToolsConfigURI()
	if URI == "" {
		return "", fmt.Errorf("service configuration location is unknown")
	}
	data, err := afs.New().DownloadWithURL(ctx, URI)
	if err != nil {
		return "", fmt.Errorf("failed to read %v: %w", URI, err)
	}
	var document interface{}
	if err = yaml.Unmarshal(data, &document); err != nil {
		return "", fmt.Errorf("failed to parse %v: %w", URI, err)
	}
	encoded, err := json.Marshal(document)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func (s *Service) registerResources(base *protoserver.DefaultHandler) {
	URI := s.ToolsConfigURI()
	if URI == "" {
		return
	}
	base.Registry.RegisterResource(schema.Resource{Name: toolsConfigResource, Uri: URI},
		func(ctx context.Context, request *schema.ReadResourceRequest) (*schema.ReadResourceResult, *jsonrpc.Error) {
			text, err := s.ToolsConfig(ctx)
			if err != nil {
				log.Error().Err(err).Str("uri", URI).Msg("tools config resource")
				return nil, jsonrpc.NewInternalError(err.Error(), nil)
			}
			return &schema.ReadResourceResult{Contents: []schema.ReadResourceResultContentsElem{{Text: text}}}, nil
		})
}
