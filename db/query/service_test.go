package query

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/mcp-snowflake/db/session"
	_ "modernc.org/sqlite"
)

func TestService_Query(t *testing.T) {
	db, err := sqlx.Open("sqlite", filepath.Join(t.TempDir(), "query.db"))
	require.NoError(t, err)
	_, err = db.Exec("CREATE TABLE orders(id INTEGER, amount REAL)")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO orders VALUES(1, 10.5), (2, 3.25)")
	require.NoError(t, err)

	sess := session.NewWithDB(nil, db)
	require.NoError(t, sess.Open(context.Background()))
	defer sess.Close()
	srv := New(sess)

	testCases := []struct {
		description  string
		statement    string
		expect       []map[string]interface{}
		expectStatus string
	}{
		{
			description:  "rows as mappings",
			statement:    "SELECT id, amount FROM orders ORDER BY id",
			expect:       []map[string]interface{}{{"id": int64(1), "amount": 10.5}, {"id": int64(2), "amount": 3.25}},
			expectStatus: "ok",
		},
		{
			description:  "no rows",
			statement:    "SELECT id FROM orders WHERE id > 100",
			expect:       []map[string]interface{}{},
			expectStatus: "ok",
		},
		{
			description:  "bad statement",
			statement:    "SELECT nope FROM nowhere",
			expectStatus: "error",
		},
		{
			description:  "empty statement",
			statement:    "  ",
			expectStatus: "error",
		},
	}
	for _, testCase := range testCases {
		output := srv.Query(context.Background(), &Input{Statement: testCase.statement})
		assert.EqualValues(t, testCase.expectStatus, output.Status, testCase.description)
		if testCase.expectStatus == "ok" {
			assert.EqualValues(t, testCase.expect, output.Data, testCase.description)
			continue
		}
		assert.NotEmpty(t, output.Error, testCase.description)
	}
}
