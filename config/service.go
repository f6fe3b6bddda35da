package config

import (
	"fmt"
	"strings"
)

// Kind identifies a Cortex service family.
type Kind string

const (
	KindSearch  Kind = "search"
	KindAnalyst Kind = "analyst"
	KindAgent   Kind = "agent"
)

// Service is one configured Cortex service exposed as a tool.
type Service interface {
	Kind() Kind
	Name() string
	Describe() string
}

// SearchService describes a Cortex Search service.
type SearchService struct {
	ServiceName  string   `yaml:"service_name" json:"service_name"`
	Description  string   `yaml:"description,omitempty" json:"description,omitempty"`
	DatabaseName string   `yaml:"database_name" json:"database_name"`
	SchemaName   string   `yaml:"schema_name" json:"schema_name"`
	Columns      []string `yaml:"columns,omitempty" json:"columns,omitempty"`
	Limit        int      `yaml:"limit,omitempty" json:"limit,omitempty"`
}

func (s *SearchService) Kind() Kind       { return KindSearch }
func (s *SearchService) Name() string     { return s.ServiceName }
func (s *SearchService) Describe() string { return s.Description }

func (s *SearchService) validate() []string {
	return required(map[string]string{
		"service_name":  s.ServiceName,
		"database_name": s.DatabaseName,
		"schema_name":   s.SchemaName,
	})
}

// AnalystService describes a Cortex Analyst semantic model or view.
type AnalystService struct {
	ServiceName       string `yaml:"service_name" json:"service_name"`
	Description       string `yaml:"description,omitempty" json:"description,omitempty"`
	SemanticModel     string `yaml:"semantic_model" json:"semantic_model"`
	SemanticModelKind string `yaml:"semantic_model_kind,omitempty" json:"semantic_model_kind,omitempty"`
}

func (s *AnalystService) Kind() Kind       { return KindAnalyst }
func (s *AnalystService) Name() string     { return s.ServiceName }
func (s *AnalystService) Describe() string { return s.Description }

// Model returns the resolved semantic model reference.
func (s *AnalystService) Model() (*SemanticModel, error) {
	return NewSemanticModel(s.SemanticModel, s.SemanticModelKind)
}

func (s *AnalystService) validate() []string {
	missing := required(map[string]string{
		"service_name":   s.ServiceName,
		"semantic_model": s.SemanticModel,
	})
	if len(missing) == 0 {
		if _, err := s.Model(); err != nil {
			missing = append(missing, err.Error())
		}
	}
	return missing
}

// AgentService describes a Cortex Agent.
type AgentService struct {
	ServiceName  string `yaml:"service_name" json:"service_name"`
	Description  string `yaml:"description,omitempty" json:"description,omitempty"`
	DatabaseName string `yaml:"database_name" json:"database_name"`
	SchemaName   string `yaml:"schema_name" json:"schema_name"`
}

func (s *AgentService) Kind() Kind       { return KindAgent }
func (s *AgentService) Name() string     { return s.ServiceName }
func (s *AgentService) Describe() string { return s.Description }

func (s *AgentService) validate() []string {
	return required(map[string]string{
		"service_name":  s.ServiceName,
		"database_name": s.DatabaseName,
		"schema_name":   s.SchemaName,
	})
}

// SemanticModelKind tells Analyst whether the model is a staged file or a view.
type SemanticModelKind string

const (
	SemanticModelFile SemanticModelKind = "file"
	SemanticModelView SemanticModelKind = "view"
)

// SemanticModel is an Analyst semantic model reference.
type SemanticModel struct {
	Kind SemanticModelKind
	Ref  string
}

// PayloadKey returns the Analyst request field carrying Ref.
func (m *SemanticModel) PayloadKey() string {
	if m.Kind == SemanticModelFile {
		return "semantic_model_file"
	}
	return "semantic_view"
}

// NewSemanticModel resolves ref with an explicit kind, or infers it: a staged
// "@...yaml" reference is a file, anything else (".yml" included) is a
// semantic view.
func NewSemanticModel(ref, kind string) (*SemanticModel, error) {
	switch SemanticModelKind(strings.ToLower(kind)) {
	case SemanticModelFile:
		return &SemanticModel{Kind: SemanticModelFile, Ref: ref}, nil
	case SemanticModelView:
		return &SemanticModel{Kind: SemanticModelView, Ref: ref}, nil
	case "":
		if strings.HasPrefix(ref, "@") && strings.HasSuffix(ref, ".yaml") {
			return &SemanticModel{Kind: SemanticModelFile, Ref: ref}, nil
		}
		return &SemanticModel{Kind: SemanticModelView, Ref: ref}, nil
	}
	return nil, fmt.Errorf("unsupported semantic_model_kind %q", kind)
}

func required(fields map[string]string) []string {
	var missing []string
	for _, name := range []string{"service_name", "database_name", "schema_name", "semantic_model"} {
		if value, ok := fields[name]; ok && strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}
