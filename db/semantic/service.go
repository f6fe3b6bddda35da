// Package semantic lists, describes and queries Snowflake semantic views.
package semantic

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Fetcher runs a statement and returns rows as mappings.
type Fetcher interface {
	Fetch(ctx context.Context, statement string) ([]map[string]interface{}, error)
}

// Count is a non-negative integer argument that also accepts a numeric string.
type Count int

// UnmarshalJSON accepts 10 or "10".
func (c *Count) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	text := strings.Trim(string(data), `"`)
	if text == "" {
		*c = 0
		return nil
	}
	value, err := strconv.Atoi(text)
	if err != nil {
		return fmt.Errorf("invalid limit %s: %w", data, err)
	}
	*c = Count(value)
	return nil
}

// ListInput is the list_semantic_views argument.
type ListInput struct {
	DatabaseName string `json:"database_name,omitempty" description:"The name of the database to list semantic views in. Omit to query account."`
	SchemaName   string `json:"schema_name,omitempty" description:"The name of the schema to list semantic views in. Omit to query account."`
	Like         string `json:"like,omitempty" description:"Filter semantic views by keyword in name. Case insensitive."`
	StartsWith   string `json:"starts_with,omitempty" description:"Filter semantic views by start of name. Case sensitive."`
}

// ViewInput identifies a single semantic view.
type ViewInput struct {
	DatabaseName string `json:"database_name" description:"The name of the database containing the semantic view."`
	SchemaName   string `json:"schema_name" description:"The name of the schema containing the semantic view."`
	ViewName     string `json:"view_name" description:"The name of the semantic view."`
}

// ExpressionsInput is the show_semantic_dimensions/show_semantic_metrics argument.
type ExpressionsInput struct {
	DatabaseName string `json:"database_name,omitempty" description:"The name of the database to show expressions in."`
	SchemaName   string `json:"schema_name,omitempty" description:"The name of the schema to show expressions in."`
	ViewName     string `json:"view_name,omitempty" description:"The name of the semantic view to show expressions in."`
	Like         string `json:"like,omitempty" description:"Filter by keyword in name. Case insensitive."`
	StartsWith   string `json:"starts_with,omitempty" description:"Filter by start of name. Case sensitive."`
}

// QueryInput is the write_semantic_view_query/query_semantic_view argument.
type QueryInput struct {
	DatabaseName string        `json:"database_name" description:"The name of the database containing the semantic view."`
	SchemaName   string        `json:"schema_name" description:"The name of the schema containing the semantic view."`
	ViewName     string        `json:"view_name" description:"The name of the semantic view to query."`
	Dimensions   []*Expression `json:"dimensions,omitempty" description:"Dimensions to include. Each specifies table and name."`
	Metrics      []*Expression `json:"metrics,omitempty" description:"Metrics to include. Each specifies table and name. Cannot be used with facts."`
	Facts        []*Expression `json:"facts,omitempty" description:"Facts to include. Each specifies table and name. Cannot be used with metrics."`
	WhereClause  string        `json:"where_clause,omitempty" description:"Optional WHERE conditions without the WHERE keyword."`
	OrderBy      string        `json:"order_by,omitempty" description:"Optional ORDER BY clause without the ORDER BY keywords."`
	Limit        Count         `json:"limit,omitempty" description:"Optional LIMIT for number of rows to return."`
}

func (i *QueryInput) query() *Query {
	return &Query{
		Location:    Location{DatabaseName: i.DatabaseName, SchemaName: i.SchemaName, ViewName: i.ViewName},
		Dimensions:  i.Dimensions,
		Metrics:     i.Metrics,
		Facts:       i.Facts,
		WhereClause: i.WhereClause,
		OrderBy:     i.OrderBy,
		Limit:       int(i.Limit),
	}
}

// Output is the result of a semantic view tool.
type Output struct {
	Message   string                   `json:"message,omitempty"`
	Statement string                   `json:"statement,omitempty"`
	DDL       string                   `json:"ddl,omitempty"`
	Data      []map[string]interface{} `json:"data,omitempty"`
	Status    string                   `json:"status"`
	Error     string                   `json:"error,omitempty"`
}

// Service runs semantic view commands.
type Service struct {
	fetcher Fetcher
}

// List runs list_semantic_views.
func (s *Service) List(ctx context.Context, input *ListInput) *Output {
	return s.run(ctx, "list_semantic_views", func() (string, error) {
		return BuildList(&Location{DatabaseName: input.DatabaseName, SchemaName: input.SchemaName},
			&Filter{Like: input.Like, StartsWith: input.StartsWith})
	}, func(output *Output) {
		for _, row := range output.Data {
			dropKey(row, "extension")
		}
	})
}

// Describe runs describe_semantic_view.
func (s *Service) Describe(ctx context.Context, input *ViewInput) *Output {
	return s.run(ctx, "describe_semantic_view", func() (string, error) {
		return BuildDescribe(input.location())
	}, func(output *Output) {
		rows := make([]map[string]interface{}, 0, len(output.Data))
		for _, row := range output.Data {
			if kind, _ := lookup(row, "object_kind").(string); strings.EqualFold(kind, "EXTENSION") {
				continue
			}
			rows = append(rows, row)
		}
		output.Data = rows
	})
}

// ShowDimensions runs show_semantic_dimensions.
func (s *Service) ShowDimensions(ctx context.Context, input *ExpressionsInput) *Output {
	return s.showExpressions(ctx, "show_semantic_dimensions", Dimensions, input)
}

// ShowMetrics runs show_semantic_metrics.
func (s *Service) ShowMetrics(ctx context.Context, input *ExpressionsInput) *Output {
	return s.showExpressions(ctx, "show_semantic_metrics", Metrics, input)
}

func (s *Service) showExpressions(ctx context.Context, tool string, expressionType ExpressionType, input *ExpressionsInput) *Output {
	return s.run(ctx, tool, func() (string, error) {
		return BuildShowExpressions(expressionType,
			&Location{DatabaseName: input.DatabaseName, SchemaName: input.SchemaName, ViewName: input.ViewName},
			&Filter{Like: input.Like, StartsWith: input.StartsWith})
	}, func(output *Output) {
		if len(output.Data) == 0 {
			output.Message = fmt.Sprintf("No %s found.", strings.ToLower(string(expressionType)))
		}
	})
}

// DDL runs get_semantic_view_ddl.
func (s *Service) DDL(ctx context.Context, input *ViewInput) *Output {
	return s.run(ctx, "get_semantic_view_ddl", func() (string, error) {
		return BuildDDL(input.location())
	}, func(output *Output) {
		if len(output.Data) > 0 {
			output.DDL = fmt.Sprint(lookup(output.Data[0], "DDL"))
		}
		output.Data = nil
	})
}

// Write runs write_semantic_view_query; the statement is returned, not executed.
func (s *Service) Write(ctx context.Context, input *QueryInput) *Output {
	output := &Output{Status: "ok"}
	statement, err := BuildQuery(input.query())
	if err != nil {
		output.Status = "error"
		output.Error = fmt.Sprintf("write_semantic_view_query: %v", err)
		return output
	}
	output.Statement = statement
	return output
}

// Query runs query_semantic_view.
func (s *Service) Query(ctx context.Context, input *QueryInput) *Output {
	return s.run(ctx, "query_semantic_view", func() (string, error) {
		return BuildQuery(input.query())
	}, nil)
}

func (s *Service) run(ctx context.Context, tool string, build func() (string, error), post func(output *Output)) *Output {
	output := &Output{Status: "ok"}
	statement, err := build()
	if err == nil {
		log.Debug().Str("tool", tool).Str("statement", statement).Msg("semantic statement")
		output.Data, err = s.fetcher.Fetch(ctx, statement)
	}
	if err != nil {
		output.Status = "error"
		output.Error = fmt.Sprintf("%s: %v", tool, err)
		return output
	}
	if post != nil {
		post(output)
	}
	return output
}

func (i *ViewInput) location() *Location {
	return &Location{DatabaseName: i.DatabaseName, SchemaName: i.SchemaName, ViewName: i.ViewName}
}

// lookup finds key ignoring case; SHOW output column casing depends on the driver.
func lookup(row map[string]interface{}, key string) interface{} {
	if value, ok := row[key]; ok {
		return value
	}
	for candidate, value := range row {
		if strings.EqualFold(candidate, key) {
			return value
		}
	}
	return nil
}

func dropKey(row map[string]interface{}, key string) {
	for candidate := range row {
		if strings.EqualFold(candidate, key) {
			delete(row, candidate)
		}
	}
}

// New creates a semantic view service.
func New(fetcher Fetcher) *Service {
	return &Service{fetcher: fetcher}
}
