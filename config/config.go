package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/mcp-snowflake/policy"
	"gopkg.in/yaml.v3"
)

// DefaultCompleteModel is used when neither the call nor the config names a model.
const DefaultCompleteModel = "snowflake-llama-3.3-70b"

// Toggles enables auxiliary tool groups.
type Toggles struct {
	ObjectManager   bool `yaml:"object_manager" json:"object_manager"`
	QueryManager    bool `yaml:"query_manager" json:"query_manager"`
	SemanticManager bool `yaml:"semantic_manager" json:"semantic_manager"`
	AgentManager    bool `yaml:"agent_manager" json:"agent_manager"`
}

// Complete configures the cortex_complete tool.
type Complete struct {
	DefaultModel string `yaml:"default_model,omitempty" json:"default_model,omitempty"`
}

// Model returns model, falling back to the configured and built-in defaults.
func (c *Complete) Model(model string) string {
	if model != "" {
		return model
	}
	if c != nil && c.DefaultModel != "" {
		return c.DefaultModel
	}
	return DefaultCompleteModel
}

// Services is the service configuration document.
type Services struct {
	Search      []*SearchService  `yaml:"search_services,omitempty" json:"search_services,omitempty"`
	Analyst     []*AnalystService `yaml:"analyst_services,omitempty" json:"analyst_services,omitempty"`
	Agent       []*AgentService   `yaml:"agent_services,omitempty" json:"agent_services,omitempty"`
	Permissions []map[string]bool `yaml:"sql_statement_permissions,omitempty" json:"sql_statement_permissions,omitempty"`
	Other       Toggles           `yaml:"other_services" json:"other_services"`
	Complete    *Complete         `yaml:"cortex_complete,omitempty" json:"cortex_complete,omitempty"`
	URL         string            `yaml:"-" json:"-"`
}

// Policy returns the statement policy derived from sql_statement_permissions.
func (s *Services) Policy() *policy.Policy {
	return policy.FromPermissions(s.Permissions)
}

// Enabled returns the services that become tools, in declaration order:
// search, analyst, then agents when agent_manager is on.
func (s *Services) Enabled() []Service {
	var ret []Service
	for _, item := range s.Search {
		ret = append(ret, item)
	}
	for _, item := range s.Analyst {
		ret = append(ret, item)
	}
	if s.Other.AgentManager {
		for _, item := range s.Agent {
			ret = append(ret, item)
		}
	}
	return ret
}

// Validate checks required per-service fields. Agent entries are checked
// only when agent_manager is on.
func (s *Services) Validate() error {
	var problems []string
	check := func(kind Kind, index int, missing []string) {
		for _, field := range missing {
			problems = append(problems, fmt.Sprintf("%s_services[%d]: %s", kind, index, field))
		}
	}
	for i, item := range s.Search {
		if item == nil {
			check(KindSearch, i, []string{"empty entry"})
			continue
		}
		check(KindSearch, i, item.validate())
	}
	for i, item := range s.Analyst {
		if item == nil {
			check(KindAnalyst, i, []string{"empty entry"})
			continue
		}
		check(KindAnalyst, i, item.validate())
	}
	for i, item := range s.Agent {
		if !s.Other.AgentManager {
			break
		}
		if item == nil {
			check(KindAgent, i, []string{"empty entry"})
			continue
		}
		check(KindAgent, i, item.validate())
	}
	if len(problems) > 0 {
		return &ValidationError{URL: s.URL, Problems: problems}
	}
	return nil
}

// Parse decodes and validates a YAML document.
func Parse(data []byte) (*Services, error) {
	ret := &Services{}
	if err := yaml.Unmarshal(data, ret); err != nil {
		return nil, &ParseError{Err: err}
	}
	if err := ret.Validate(); err != nil {
		return nil, err
	}
	return ret, nil
}

// Load reads the document at URL (local path or any afs supported scheme).
func Load(ctx context.Context, URL string) (*Services, error) {
	location := NormalizeURL(URL)
	fs := afs.New()
	exists, err := fs.Exists(ctx, location)
	if err != nil || !exists {
		return nil, &NotFoundError{URL: URL, Err: err}
	}
	data, err := fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to read service config %v: %w", URL, err)
	}
	ret := &Services{URL: URL}
	if err = yaml.Unmarshal(data, ret); err != nil {
		return nil, &ParseError{URL: URL, Err: err}
	}
	if err = ret.Validate(); err != nil {
		return nil, err
	}
	return ret, nil
}

// NormalizeURL turns a local path (optionally ~/ prefixed) into a file:// URL.
func NormalizeURL(URL string) string {
	if strings.Contains(URL, "://") {
		return URL
	}
	if strings.HasPrefix(URL, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			URL = filepath.Join(home, URL[2:])
		}
	}
	if abs, err := filepath.Abs(URL); err == nil {
		URL = abs
	}
	return "file://" + URL
}
