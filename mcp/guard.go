package mcp

import (
	"strings"

	"github.com/viant/mcp-snowflake/policy"
)

// QueryToolName is the raw SQL tool whose statements are classified.
const QueryToolName = "run_snowflake_query"

type statementCarrier interface {
	SQLStatement() string
}

// statementKind returns the statement type a call is subject to, or "" when
// the tool is not gated.
func (s *Service) statementKind(name string, input interface{}) string {
	lower := strings.ToLower(name)
	switch {
	case lower == QueryToolName:
		carrier, ok := input.(statementCarrier)
		if !ok || strings.TrimSpace(carrier.SQLStatement()) == "" {
			return policy.Unknown
		}
		return s.classifier.Classify(carrier.SQLStatement())
	case strings.HasPrefix(lower, "create"):
		return strings.ToLower(policy.Create)
	case strings.HasPrefix(lower, "drop"):
		return strings.ToLower(policy.Drop)
	}
	return ""
}

// authorize rejects calls whose statement type the policy does not allow.
func (s *Service) authorize(name string, input interface{}) error {
	kind := s.statementKind(name, input)
	if kind == "" {
		return nil
	}
	return s.policy.Authorize(kind)
}
