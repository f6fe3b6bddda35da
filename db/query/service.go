package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/mcp-snowflake/db/session"
)

// Input is the run_snowflake_query argument.
type Input struct {
	Statement string `json:"statement" description:"SQL statement to execute"`
}

// SQLStatement returns the statement subject to the statement policy.
func (i *Input) SQLStatement() string {
	return i.Statement
}

// Output carries the rows of a query.
type Output struct {
	Data   []map[string]interface{} `json:"data"`
	Status string                   `json:"status"`
	Error  string                   `json:"error,omitempty"`
}

// Service runs raw SQL through the shared session.
type Service struct {
	session *session.Session
}

// Query runs the statement verbatim and returns every row keyed by column.
func (s *Service) Query(ctx context.Context, input *Input) *Output {
	output := &Output{Status: "ok"}
	if err := s.query(ctx, input, output); err != nil {
		output.Status = "error"
		output.Error = err.Error()
	}
	return output
}

func (s *Service) query(ctx context.Context, input *Input, output *Output) error {
	if strings.TrimSpace(input.Statement) == "" {
		return fmt.Errorf("statement was empty")
	}
	rows, err := s.session.Fetch(ctx, input.Statement)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	output.Data = rows
	return nil
}

// New creates a query service.
func New(sess *session.Session) *Service {
	return &Service{session: sess}
}
