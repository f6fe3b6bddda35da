package mcp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/mcp-protocol/schema"
	"github.com/viant/mcp-snowflake/config"
	"github.com/viant/mcp-snowflake/cortex"
	"github.com/viant/mcp-snowflake/db/session"
	_ "modernc.org/sqlite"
)

type testAuth struct {
	baseURL string
}

func (a *testAuth) BaseURL() string { return a.baseURL }

func (a *testAuth) Headers() (http.Header, error) {
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	return header, nil
}

func newTestSession(t *testing.T) *session.Session {
	db, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), "mcp.db"))
	require.NoError(t, err)
	_, err = db.Exec("CREATE TABLE users(id INTEGER PRIMARY KEY, name TEXT)")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO users(id, name) VALUES(1, 'alice')")
	require.NoError(t, err)
	sess := session.NewWithDB(nil, db)
	require.NoError(t, sess.Open(context.Background()))
	t.Cleanup(func() { _ = sess.Close() })
	return sess
}

func toolByName(tools []*Tool, name string) *Tool {
	for _, tool := range tools {
		if tool.Name == name {
			return tool
		}
	}
	return nil
}

func resultText(result *schema.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	return result.Content[0].Text
}

func isError(result *schema.CallToolResult) bool {
	return result != nil && result.IsError != nil && *result.IsError
}

// TestServiceUseTextField verifies which result field (`text` vs `data`) is
// populated based on configuration.
func TestServiceUseTextField(t *testing.T) {
	testCases := []struct {
		name       string
		cfg        *Config
		expectText bool
	}{
		{name: "default_text", cfg: &Config{}, expectText: true},
		{name: "explicit_useData", cfg: &Config{UseData: true}, expectText: false},
	}
	for _, tc := range testCases {
		svc := NewService(tc.cfg, nil, nil)
		assert.EqualValues(t, tc.expectText, svc.UseTextField(), tc.name)
	}
}

func TestService_Tools(t *testing.T) {
	sess := newTestSession(t)
	services := &config.Services{
		Search: []*config.SearchService{
			{ServiceName: "orders search", DatabaseName: "DB", SchemaName: "S"},
		},
		Analyst: []*config.AnalystService{
			{ServiceName: "2sales", Description: "Revenue questions", SemanticModel: "@DB.S.STAGE/model.yaml"},
		},
		Agent: []*config.AgentService{
			{ServiceName: "helper", DatabaseName: "DB", SchemaName: "S"},
		},
		Other: config.Toggles{QueryManager: true, SemanticManager: true},
	}

	testCases := []struct {
		description string
		toggles     config.Toggles
		complete    *config.Complete
		expect      []string
	}{
		{
			description: "services and query",
			toggles:     config.Toggles{QueryManager: true},
			expect:      []string{"orders_search", "service_2sales", "run_snowflake_query"},
		},
		{
			description: "agents and objects",
			toggles:     config.Toggles{ObjectManager: true, AgentManager: true},
			expect: []string{"orders_search", "service_2sales", "helper",
				"create_object", "create_or_alter_object", "drop_object", "describe_object", "list_objects"},
		},
		{
			description: "semantic and complete",
			toggles:     config.Toggles{SemanticManager: true},
			complete:    &config.Complete{},
			expect: []string{"orders_search", "service_2sales",
				"list_semantic_views", "describe_semantic_view", "show_semantic_dimensions", "show_semantic_metrics",
				"get_semantic_view_ddl", "write_semantic_view_query", "query_semantic_view", "cortex_complete", "get_cortex_models"},
		},
	}
	for _, testCase := range testCases {
		services.Other = testCase.toggles
		services.Complete = testCase.complete
		srv := NewService(&Config{Services: services}, sess, nil)
		var actual []string
		for _, tool := range srv.Tools() {
			actual = append(actual, tool.Name)
		}
		assert.EqualValues(t, testCase.expect, actual, testCase.description)
	}

	srv := NewService(&Config{Services: services}, sess, nil)
	tools := srv.Tools()
	assert.EqualValues(t, "Search service: orders search", toolByName(tools, "orders_search").Description)
	assert.EqualValues(t, "Revenue questions", toolByName(tools, "service_2sales").Description)
}

func TestService_DuplicateToolNames(t *testing.T) {
	services := &config.Services{
		Search: []*config.SearchService{
			{ServiceName: "docs", Description: "first", DatabaseName: "DB", SchemaName: "S"},
			{ServiceName: "docs", Description: "second", DatabaseName: "DB", SchemaName: "S2"},
		},
	}
	tools := NewService(&Config{Services: services}, nil, nil).Tools()
	require.Len(t, tools, 1)
	assert.EqualValues(t, "second", tools[0].Description)
}

func TestService_Guard(t *testing.T) {
	sess := newTestSession(t)
	services := &config.Services{
		Permissions: []map[string]bool{{"select": true}, {"drop": false}},
		Other:       config.Toggles{QueryManager: true, ObjectManager: true},
	}
	srv := NewService(&Config{Services: services}, sess, nil)
	tools := srv.Tools()
	ctx := context.Background()

	result, rpcErr := toolByName(tools, "run_snowflake_query").Call(ctx, []byte(`{"statement":"SELECT id, name FROM users"}`))
	require.Nil(t, rpcErr)
	require.False(t, isError(result), resultText(result))
	output := map[string]interface{}{}
	require.NoError(t, json.Unmarshal([]byte(resultText(result)), &output))
	assert.EqualValues(t, "ok", output["status"])
	assert.Len(t, output["data"], 1)

	testCases := []struct {
		description string
		tool        string
		arguments   string
		expect      string
	}{
		{
			description: "disallowed statement",
			tool:        "run_snowflake_query",
			arguments:   `{"statement":"DROP TABLE users"}`,
			expect:      "Statement type of Drop is not allowed. Please review sql statement permissions in configuration file.",
		},
		{
			description: "empty statement",
			tool:        "run_snowflake_query",
			arguments:   `{"statement":" "}`,
			expect:      "Statement type of Unknown is not allowed. Please review sql statement permissions in configuration file.",
		},
		{
			description: "object create",
			tool:        "create_object",
			arguments:   `{"object_type":"role","target_object":{"name":"ANALYST"}}`,
			expect:      "Statement type of create is not allowed. Please review sql statement permissions in configuration file.",
		},
		{
			description: "object drop",
			tool:        "drop_object",
			arguments:   `{"object_type":"role","target_object":{"name":"ANALYST"}}`,
			expect:      "Statement type of drop is not allowed. Please review sql statement permissions in configuration file.",
		},
	}
	for _, testCase := range testCases {
		result, rpcErr := toolByName(tools, testCase.tool).Call(ctx, []byte(testCase.arguments))
		require.Nil(t, rpcErr, testCase.description)
		assert.True(t, isError(result), testCase.description)
		assert.EqualValues(t, testCase.expect, resultText(result), testCase.description)
	}

	result, rpcErr = toolByName(tools, "list_objects").Call(ctx, []byte(`{"object_type":"warehouse","limit":3}`))
	require.Nil(t, rpcErr)
	assert.True(t, isError(result), "ungated tool still reports its own errors")
	assert.Contains(t, resultText(result), "limit is not supported")
}

func TestService_SearchDispatch(t *testing.T) {
	var path string
	var payload map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &payload)
		_, _ = w.Write([]byte(`{"results":[{"title":"a"}]}`))
	}))
	defer server.Close()

	services := &config.Services{
		Search: []*config.SearchService{
			{ServiceName: "docs", DatabaseName: "DB", SchemaName: "S", Columns: []string{"title"}, Limit: 3},
		},
	}
	client := cortex.NewClient(&testAuth{baseURL: server.URL}, server.Client())
	tools := NewService(&Config{Services: services, UseData: true}, nil, client).Tools()
	require.Len(t, tools, 1)

	result, rpcErr := tools[0].Call(context.Background(), []byte(`{"query":"refund policy"}`))
	require.Nil(t, rpcErr)
	require.False(t, isError(result))
	assert.EqualValues(t, "/api/v2/databases/DB/schemas/S/cortex-search-services/docs:query", path)
	assert.EqualValues(t, map[string]interface{}{
		"query":   "refund policy",
		"filter":  map[string]interface{}{},
		"limit":   float64(3),
		"columns": []interface{}{"title"},
	}, payload)
	assert.EqualValues(t, `{"results":[{"title":"a"}]}`, result.Content[0].Data)

	result, rpcErr = tools[0].Call(context.Background(), []byte(`{"query":"x","columns":["body"],"limit":7}`))
	require.Nil(t, rpcErr)
	require.False(t, isError(result))
	assert.EqualValues(t, float64(7), payload["limit"])
	assert.EqualValues(t, []interface{}{"body"}, payload["columns"])
}

func TestToolName(t *testing.T) {
	testCases := map[string]string{
		"orders":          "orders",
		"orders search":   "orders_search",
		"sales-model.v2":  "sales_model_v2",
		"2024_revenue":    "service_2024_revenue",
		"  padded_name  ": "padded_name",
	}
	for name, expect := range testCases {
		assert.EqualValues(t, expect, ToolName(name), name)
	}
}

func TestService_EmptyPermissionsDenyQuery(t *testing.T) {
	location := filepath.Join(t.TempDir(), "services.yaml")
	document := `search_services:
  - service_name: docs_search
    description: Search product docs
    database_name: KB
    schema_name: PUBLIC
other_services:
  query_manager: true
sql_statement_permissions: []
`
	require.NoError(t, os.WriteFile(location, []byte(document), 0644))
	services, err := config.Load(context.Background(), location)
	require.NoError(t, err)

	tools := NewService(&Config{Services: services}, newTestSession(t), nil).Tools()
	var names []string
	for _, tool := range tools {
		names = append(names, tool.Name)
	}
	assert.EqualValues(t, []string{"docs_search", "run_snowflake_query"}, names)

	result, rpcErr := toolByName(tools, "run_snowflake_query").Call(context.Background(), []byte(`{"statement":"SELECT id FROM users"}`))
	require.Nil(t, rpcErr)
	assert.True(t, isError(result))
	assert.EqualValues(t, "Statement type of Select is not allowed. Please review sql statement permissions in configuration file.", resultText(result))
}

func TestService_AnalystRunsGeneratedSQL(t *testing.T) {
	var payload map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &payload)
		_, _ = w.Write([]byte(`{"message":{"content":[{"type":"text","text":"Users named by id"},{"type":"sql","statement":"SELECT name FROM users WHERE id = 1"}]}}`))
	}))
	defer server.Close()

	services := &config.Services{
		Analyst: []*config.AnalystService{{ServiceName: "users", SemanticModel: "DB.S.USERS_VIEW"}},
	}
	client := cortex.NewClient(&testAuth{baseURL: server.URL}, server.Client())
	tools := NewService(&Config{Services: services}, newTestSession(t), client).Tools()

	result, rpcErr := toolByName(tools, "users").Call(context.Background(), []byte(`{"query":"who is user 1"}`))
	require.Nil(t, rpcErr)
	require.False(t, isError(result), resultText(result))
	assert.EqualValues(t, "DB.S.USERS_VIEW", payload["semantic_view"])
	output := map[string]interface{}{}
	require.NoError(t, json.Unmarshal([]byte(resultText(result)), &output))
	assert.EqualValues(t, "Users named by id", output["text"])
	assert.EqualValues(t, "SELECT name FROM users WHERE id = 1", output["sql"])
	assert.EqualValues(t, []interface{}{map[string]interface{}{"name": "alice"}}, output["results"])
}

func TestService_ToolsConfig(t *testing.T) {
	location := filepath.Join(t.TempDir(), "services.yaml")
	require.NoError(t, os.WriteFile(location, []byte("search_services:\n  - service_name: docs\n    database_name: KB\n    schema_name: PUBLIC\n"), 0644))
	services, err := config.Load(context.Background(), location)
	require.NoError(t, err)
	srv := NewService(&Config{Services: services}, nil, nil)
	assert.EqualValues(t, "file://"+location, srv.ToolsConfigURI())

	actual, err := srv.ToolsConfig(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"search_services":[{"service_name":"docs","database_name":"KB","schema_name":"PUBLIC"}]}`, actual)

	unloaded := NewService(&Config{Services: &config.Services{}}, nil, nil)
	assert.EqualValues(t, "", unloaded.ToolsConfigURI())
	_, err = unloaded.ToolsConfig(context.Background())
	assert.Error(t, err)
}

func TestService_CortexModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<section id="model-availability"><table><tr><th>Model</th></tr><tr><td>mistral-large2</td></tr></table></section>`))
	}))
	defer server.Close()
	services := &config.Services{Complete: &config.Complete{}}
	client := cortex.NewClient(&testAuth{baseURL: server.URL}, server.Client())

	tools := NewService(&Config{Services: services, ModelsURL: server.URL}, nil, client).Tools()
	result, rpcErr := toolByName(tools, "get_cortex_models").Call(context.Background(), nil)
	require.Nil(t, rpcErr)
	assert.True(t, isError(result))
	assert.EqualValues(t, "no session to look up the current region", resultText(result))
}
