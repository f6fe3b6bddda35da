package mcp

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/viant/mcp-snowflake/config"
	"github.com/viant/mcp-snowflake/cortex"
	"github.com/viant/mcp-snowflake/db/object"
	"github.com/viant/mcp-snowflake/db/query"
	"github.com/viant/mcp-snowflake/db/semantic"
)

// SearchInput is the argument of a Cortex Search service tool.
type SearchInput struct {
	Query       string                 `json:"query" description:"User query to search in the search service"`
	Columns     []string               `json:"columns,omitempty" description:"Optional list of columns to return for each relevant result"`
	FilterQuery map[string]interface{} `json:"filter_query,omitempty" description:"Optional filter on ATTRIBUTES columns using @eq, @contains, @gte, @lte composed with @and, @or, @not"`
	Limit       int                    `json:"limit,omitempty" description:"Optional limit on the number of results to return"`
}

// MessageInput is the argument of Cortex Analyst and Agent service tools.
type MessageInput struct {
	Query string `json:"query" description:"A rephrased natural language prompt from the user"`
}

// CompleteInput is the cortex_complete argument.
type CompleteInput struct {
	Prompt         string                 `json:"prompt" description:"User prompt message to send to the LLM"`
	Model          string                 `json:"model,omitempty" description:"Optional Snowflake Cortex LLM model name"`
	ResponseFormat map[string]interface{} `json:"response_format,omitempty" description:"Optional JSON schema for a structured response, e.g. {\"type\":\"json\",\"schema\":{...}}"`
}

// ModelsInput is the get_cortex_models argument.
type ModelsInput struct{}

const (
	runQueryDescription = `Run a SQL statement against Snowflake and return every row as a mapping of column name to value.
Statement types are checked against sql_statement_permissions before execution.`
	writeSemanticQueryDescription = `Writes a query statement to query a semantic view using DIMENSIONS, METRICS, and/or FACTS.
Supports optional WHERE, ORDER BY, and LIMIT clauses.
Query statement cannot combine FACTS and METRICS in same query.
Use tool if asked to create a query to query a semantic view.`
	querySemanticDescription = `Writes and runs a statement to query a semantic view using DIMENSIONS, METRICS, and/or FACTS.
Supports optional WHERE, ORDER BY, and LIMIT clauses.
Query statement cannot combine FACTS and METRICS in same query.
Use tool if asked to query a semantic view directly.`
)

// Tools returns every tool enabled by the service configuration.
func (s *Service) Tools() []*Tool {
	var tools []*Tool
	tools = append(tools, s.serviceTools()...)
	toggles := s.services.Other
	if s.session == nil && (toggles.QueryManager || toggles.ObjectManager || toggles.SemanticManager) {
		log.Warn().Msg("no Snowflake session, SQL backed tool groups are disabled")
	} else {
		if toggles.ObjectManager {
			tools = append(tools, s.objectTools()...)
		}
		if toggles.QueryManager {
			tools = append(tools, s.queryTools()...)
		}
		if toggles.SemanticManager {
			tools = append(tools, s.semanticTools()...)
		}
	}
	if s.services.Complete != nil {
		tools = append(tools, s.completeTools()...)
	}
	return dedupe(tools)
}

func (s *Service) serviceTools() []*Tool {
	var tools []*Tool
	for _, item := range s.services.Enabled() {
		name := ToolName(item.Name())
		description := describe(item)
		switch svc := item.(type) {
		case *config.SearchService:
			tools = append(tools, newTool[*SearchInput, *cortex.SearchResult](s, name, description, func(ctx context.Context, input *SearchInput) (*cortex.SearchResult, error) {
				request := &cortex.SearchRequest{
					Database: svc.DatabaseName,
					Schema:   svc.SchemaName,
					Service:  svc.ServiceName,
					Query:    input.Query,
					Columns:  input.Columns,
					Filter:   input.FilterQuery,
					Limit:    input.Limit,
				}
				if len(request.Columns) == 0 {
					request.Columns = svc.Columns
				}
				if request.Limit <= 0 {
					request.Limit = svc.Limit
				}
				return s.cortex.Search(ctx, request)
			}))
		case *config.AnalystService:
			tools = append(tools, newTool[*MessageInput, *cortex.AnalystResult](s, name, description, func(ctx context.Context, input *MessageInput) (*cortex.AnalystResult, error) {
				model, err := svc.Model()
				if err != nil {
					return nil, err
				}
				var executor cortex.Executor
				if s.session != nil {
					executor = s.session
				}
				return s.cortex.Analyst(ctx, &cortex.AnalystRequest{Model: model, Query: input.Query}, executor)
			}))
		case *config.AgentService:
			tools = append(tools, newTool[*MessageInput, *cortex.AgentResult](s, name, description, func(ctx context.Context, input *MessageInput) (*cortex.AgentResult, error) {
				return s.cortex.Agent(ctx, &cortex.AgentRequest{
					Database: svc.DatabaseName,
					Schema:   svc.SchemaName,
					Agent:    svc.ServiceName,
					Query:    input.Query,
				})
			}))
		}
	}
	return tools
}

func (s *Service) queryTools() []*Tool {
	return []*Tool{
		newTool[*query.Input, *query.Output](s, "run_snowflake_query", runQueryDescription, func(ctx context.Context, input *query.Input) (*query.Output, error) {
			out := s.query.Query(ctx, input)
			return settle(out, out.Status, out.Error)
		}),
	}
}

func (s *Service) objectTools() []*Tool {
	return []*Tool{
		newTool[*object.CreateInput, *object.Output](s, "create_object", "Create a Snowflake object. Use mode to replace an existing object or skip when it exists.", func(ctx context.Context, input *object.CreateInput) (*object.Output, error) {
			out := s.objects.Create(ctx, input)
			return settle(out, out.Status, out.Error)
		}),
		newTool[*object.CreateOrAlterInput, *object.Output](s, "create_or_alter_object", "Create a Snowflake object or alter it to match the given properties.", func(ctx context.Context, input *object.CreateOrAlterInput) (*object.Output, error) {
			out := s.objects.CreateOrAlter(ctx, input)
			return settle(out, out.Status, out.Error)
		}),
		newTool[*object.DropInput, *object.Output](s, "drop_object", "Drop a Snowflake object.", func(ctx context.Context, input *object.DropInput) (*object.Output, error) {
			out := s.objects.Drop(ctx, input)
			return settle(out, out.Status, out.Error)
		}),
		newTool[*object.DescribeInput, *object.Output](s, "describe_object", "Describe a Snowflake object.", func(ctx context.Context, input *object.DescribeInput) (*object.Output, error) {
			out := s.objects.Describe(ctx, input)
			return settle(out, out.Status, out.Error)
		}),
		newTool[*object.ListInput, *object.Output](s, "list_objects", "List Snowflake objects of a type, optionally filtered by name and location.", func(ctx context.Context, input *object.ListInput) (*object.Output, error) {
			out := s.objects.List(ctx, input)
			return settle(out, out.Status, out.Error)
		}),
	}
}

func (s *Service) semanticTools() []*Tool {
	return []*Tool{
		newTool[*semantic.ListInput, *semantic.Output](s, "list_semantic_views", "List all semantic views in the account, database, or schema.", func(ctx context.Context, input *semantic.ListInput) (*semantic.Output, error) {
			out := s.semantic.List(ctx, input)
			return settle(out, out.Status, out.Error)
		}),
		newTool[*semantic.ViewInput, *semantic.Output](s, "describe_semantic_view", "Describe a semantic view.", func(ctx context.Context, input *semantic.ViewInput) (*semantic.Output, error) {
			out := s.semantic.Describe(ctx, input)
			return settle(out, out.Status, out.Error)
		}),
		newTool[*semantic.ExpressionsInput, *semantic.Output](s, "show_semantic_dimensions", "Show all semantic dimensions in the account, database, schema, or semantic view.", func(ctx context.Context, input *semantic.ExpressionsInput) (*semantic.Output, error) {
			out := s.semantic.ShowDimensions(ctx, input)
			return settle(out, out.Status, out.Error)
		}),
		newTool[*semantic.ExpressionsInput, *semantic.Output](s, "show_semantic_metrics", "Show all semantic metrics in the account, database, schema, or semantic view.", func(ctx context.Context, input *semantic.ExpressionsInput) (*semantic.Output, error) {
			out := s.semantic.ShowMetrics(ctx, input)
			return settle(out, out.Status, out.Error)
		}),
		newTool[*semantic.ViewInput, *semantic.Output](s, "get_semantic_view_ddl", "Get the DDL for a semantic view.", func(ctx context.Context, input *semantic.ViewInput) (*semantic.Output, error) {
			out := s.semantic.DDL(ctx, input)
			return settle(out, out.Status, out.Error)
		}),
		newTool[*semantic.QueryInput, *semantic.Output](s, "write_semantic_view_query", writeSemanticQueryDescription, func(ctx context.Context, input *semantic.QueryInput) (*semantic.Output, error) {
			out := s.semantic.Write(ctx, input)
			return settle(out, out.Status, out.Error)
		}),
		newTool[*semantic.QueryInput, *semantic.Output](s, "query_semantic_view", querySemanticDescription, func(ctx context.Context, input *semantic.QueryInput) (*semantic.Output, error) {
			out := s.semantic.Query(ctx, input)
			return settle(out, out.Status, out.Error)
		}),
	}
}

func (s *Service) completeTools() []*Tool {
	return []*Tool{
		newTool[*CompleteInput, *cortex.CompleteResult](s, "cortex_complete", "Send a prompt to an LLM through Snowflake Cortex Complete.", func(ctx context.Context, input *CompleteInput) (*cortex.CompleteResult, error) {
			return s.cortex.Complete(ctx, &cortex.CompleteRequest{
				Model:          s.services.Complete.Model(input.Model),
				Prompt:         input.Prompt,
				ResponseFormat: input.ResponseFormat,
			})
		}),
		newTool[*ModelsInput, *cortex.ModelsResult](s, "get_cortex_models", "List the Cortex Complete models and their availability together with the account region.", func(ctx context.Context, input *ModelsInput) (*cortex.ModelsResult, error) {
			var executor cortex.Executor
			if s.session != nil {
				executor = s.session
			}
			return s.cortex.Models(ctx, s.modelsURL, executor)
		}),
	}
}
