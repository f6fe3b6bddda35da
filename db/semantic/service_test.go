package semantic

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testFetcher struct {
	rows       []map[string]interface{}
	err        error
	statements []string
}

func (f *testFetcher) Fetch(ctx context.Context, statement string) ([]map[string]interface{}, error) {
	f.statements = append(f.statements, statement)
	return f.rows, f.err
}

func TestService_List(t *testing.T) {
	fetcher := &testFetcher{rows: []map[string]interface{}{{"name": "REVENUE", "extension": "{...}"}}}
	output := New(fetcher).List(context.Background(), &ListInput{DatabaseName: "DB"})
	assert.EqualValues(t, "ok", output.Status)
	assert.EqualValues(t, []map[string]interface{}{{"name": "REVENUE"}}, output.Data)
	assert.EqualValues(t, []string{"SHOW SEMANTIC VIEWS IN DATABASE DB"}, fetcher.statements)
}

func TestService_Describe(t *testing.T) {
	fetcher := &testFetcher{rows: []map[string]interface{}{
		{"object_kind": "TABLE", "object_name": "ORDERS"},
		{"object_kind": "EXTENSION", "object_name": "CA"},
		{"object_kind": "METRIC", "object_name": "TOTAL"},
	}}
	output := New(fetcher).Describe(context.Background(), &ViewInput{DatabaseName: "DB", SchemaName: "S", ViewName: "V"})
	assert.EqualValues(t, "ok", output.Status)
	assert.Len(t, output.Data, 2)
	for _, row := range output.Data {
		assert.NotEqual(t, "EXTENSION", row["object_kind"])
	}

	output = New(fetcher).Describe(context.Background(), &ViewInput{ViewName: "V"})
	assert.EqualValues(t, "error", output.Status)
	assert.EqualValues(t, "describe_semantic_view: please specify a database + schema", output.Error)
}

func TestService_ShowExpressions(t *testing.T) {
	fetcher := &testFetcher{}
	srv := New(fetcher)
	output := srv.ShowDimensions(context.Background(), &ExpressionsInput{DatabaseName: "DB"})
	assert.EqualValues(t, "ok", output.Status)
	assert.EqualValues(t, "No dimensions found.", output.Message)

	output = srv.ShowMetrics(context.Background(), &ExpressionsInput{})
	assert.EqualValues(t, "No metrics found.", output.Message)
	assert.EqualValues(t, []string{"SHOW SEMANTIC DIMENSIONS IN DATABASE DB", "SHOW SEMANTIC METRICS IN ACCOUNT"}, fetcher.statements)

	fetcher.rows = []map[string]interface{}{{"name": "REGION"}}
	output = srv.ShowDimensions(context.Background(), &ExpressionsInput{})
	assert.Empty(t, output.Message)
	assert.Len(t, output.Data, 1)
}

func TestService_DDL(t *testing.T) {
	fetcher := &testFetcher{rows: []map[string]interface{}{{"ddl": "create semantic view V ..."}}}
	output := New(fetcher).DDL(context.Background(), &ViewInput{DatabaseName: "DB", SchemaName: "S", ViewName: "V"})
	assert.EqualValues(t, "ok", output.Status)
	assert.EqualValues(t, "create semantic view V ...", output.DDL)
	assert.Nil(t, output.Data)
}

func TestService_WriteAndQuery(t *testing.T) {
	input := &QueryInput{}
	err := json.Unmarshal([]byte(`{"database_name":"DB","schema_name":"S","view_name":"V",
		"dimensions":[{"table":"customer","name":"region"}],"limit":"5"}`), input)
	require.NoError(t, err)
	assert.EqualValues(t, 5, input.Limit)

	fetcher := &testFetcher{rows: []map[string]interface{}{{"REGION": "EU"}}}
	srv := New(fetcher)
	output := srv.Write(context.Background(), input)
	assert.EqualValues(t, "ok", output.Status)
	assert.EqualValues(t, "SELECT * FROM SEMANTIC_VIEW(DB.S.V DIMENSIONS customer.region) LIMIT 5", output.Statement)
	assert.Empty(t, fetcher.statements, "write does not execute")

	output = srv.Query(context.Background(), input)
	assert.EqualValues(t, "ok", output.Status)
	assert.EqualValues(t, fetcher.rows, output.Data)
	assert.EqualValues(t, []string{"SELECT * FROM SEMANTIC_VIEW(DB.S.V DIMENSIONS customer.region) LIMIT 5"}, fetcher.statements)

	fetcher.err = errors.New("semantic view not found")
	output = srv.Query(context.Background(), input)
	assert.EqualValues(t, "error", output.Status)
	assert.EqualValues(t, "query_semantic_view: semantic view not found", output.Error)

	output = srv.Write(context.Background(), &QueryInput{DatabaseName: "DB", SchemaName: "S", ViewName: "V"})
	assert.EqualValues(t, "error", output.Status)
	assert.Contains(t, output.Error, "must specify at least one of")
}

func TestCount_UnmarshalJSON(t *testing.T) {
	var count Count
	require.NoError(t, json.Unmarshal([]byte(`12`), &count))
	assert.EqualValues(t, 12, count)
	require.NoError(t, json.Unmarshal([]byte(`"7"`), &count))
	assert.EqualValues(t, 7, count)
	assert.Error(t, json.Unmarshal([]byte(`"ten"`), &count))
}
