package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildList(t *testing.T) {
	testCases := []struct {
		description string
		location    *Location
		filter      *Filter
		expect      string
	}{
		{description: "account", location: &Location{}, expect: "SHOW SEMANTIC VIEWS IN ACCOUNT"},
		{description: "database", location: &Location{DatabaseName: "DB"}, expect: "SHOW SEMANTIC VIEWS IN DATABASE DB"},
		{description: "schema", location: &Location{DatabaseName: "DB", SchemaName: "S"}, expect: "SHOW SEMANTIC VIEWS IN SCHEMA DB.S"},
		{description: "bare schema", location: &Location{SchemaName: "S"}, expect: "SHOW SEMANTIC VIEWS IN SCHEMA S"},
		{
			description: "filters",
			location:    &Location{DatabaseName: "DB"},
			filter:      &Filter{Like: "%rev%", StartsWith: "R"},
			expect:      "SHOW SEMANTIC VIEWS LIKE '%rev%' IN DATABASE DB STARTS WITH 'R'",
		},
	}
	for _, testCase := range testCases {
		actual, err := BuildList(testCase.location, testCase.filter)
		require.NoError(t, err, testCase.description)
		assert.EqualValues(t, testCase.expect, actual, testCase.description)
	}
}

func TestBuildShowExpressions(t *testing.T) {
	testCases := []struct {
		description    string
		expressionType ExpressionType
		location       *Location
		filter         *Filter
		expect         string
		expectErr      bool
	}{
		{description: "account", expressionType: Dimensions, location: &Location{}, expect: "SHOW SEMANTIC DIMENSIONS IN ACCOUNT"},
		{description: "view", expressionType: Metrics, location: &Location{DatabaseName: "DB", SchemaName: "S", ViewName: "V"}, expect: "SHOW SEMANTIC METRICS IN DB.S.V"},
		{description: "schema", expressionType: Dimensions, location: &Location{DatabaseName: "DB", SchemaName: "S"}, filter: &Filter{Like: "x"}, expect: "SHOW SEMANTIC DIMENSIONS LIKE '%x%' IN SCHEMA DB.S"},
		{description: "database", expressionType: Metrics, location: &Location{DatabaseName: "DB"}, expect: "SHOW SEMANTIC METRICS IN DATABASE DB"},
		{description: "view without schema", expressionType: Metrics, location: &Location{ViewName: "V"}, expectErr: true},
		{description: "facts", expressionType: "FACTS", location: &Location{}, expectErr: true},
	}
	for _, testCase := range testCases {
		actual, err := BuildShowExpressions(testCase.expressionType, testCase.location, testCase.filter)
		if testCase.expectErr {
			assert.Error(t, err, testCase.description)
			continue
		}
		require.NoError(t, err, testCase.description)
		assert.EqualValues(t, testCase.expect, actual, testCase.description)
	}
}

func TestBuildDescribeAndDDL(t *testing.T) {
	actual, err := BuildDescribe(&Location{DatabaseName: "DB", SchemaName: "S", ViewName: "REVENUE"})
	require.NoError(t, err)
	assert.EqualValues(t, "DESCRIBE SEMANTIC VIEW DB.S.REVENUE", actual)

	actual, err = BuildDDL(&Location{DatabaseName: "DB", SchemaName: "S", ViewName: "my view"})
	require.NoError(t, err)
	assert.EqualValues(t, `SELECT GET_DDL('SEMANTIC_VIEW', 'DB.S."my view"', TRUE) AS DDL`, actual)

	_, err = BuildDescribe(&Location{ViewName: "V"})
	assert.EqualError(t, err, "please specify a database + schema")
	_, err = BuildDDL(&Location{DatabaseName: "DB", SchemaName: "S"})
	assert.EqualError(t, err, "please specify a view name")
}

func TestBuildQuery(t *testing.T) {
	location := Location{DatabaseName: "DB", SchemaName: "S", ViewName: "V"}
	testCases := []struct {
		description string
		query       *Query
		expect      string
		expectErr   string
	}{
		{
			description: "dimensions and metrics",
			query: &Query{
				Location:    location,
				Dimensions:  []*Expression{{Table: "customer", Name: "region"}, {Table: "orders", Name: "order_date"}},
				Metrics:     []*Expression{{Table: "orders", Name: "total"}},
				WhereClause: "region = 'EU'",
				OrderBy:     "total DESC",
				Limit:       10,
			},
			expect: "SELECT * FROM SEMANTIC_VIEW(DB.S.V DIMENSIONS customer.region, orders.order_date METRICS orders.total) WHERE region = 'EU' ORDER BY total DESC LIMIT 10",
		},
		{
			description: "facts only",
			query:       &Query{Location: location, Facts: []*Expression{{Table: "orders", Name: "amount"}}},
			expect:      "SELECT * FROM SEMANTIC_VIEW(DB.S.V FACTS orders.amount)",
		},
		{
			description: "nothing selected",
			query:       &Query{Location: location},
			expectErr:   "must specify at least one of DIMENSIONS, METRICS, or FACTS",
		},
		{
			description: "facts with metrics",
			query: &Query{Location: location,
				Facts:   []*Expression{{Table: "orders", Name: "amount"}},
				Metrics: []*Expression{{Table: "orders", Name: "total"}}},
			expectErr: "cannot specify both FACTS and METRICS in the same SEMANTIC_VIEW query",
		},
		{
			description: "stacked statement",
			query:       &Query{Location: location, Dimensions: []*Expression{{Table: "t", Name: "n"}}, WhereClause: "1=1; DROP TABLE x"},
			expectErr:   "where_clause must not contain ';'",
		},
		{
			description: "incomplete expression",
			query:       &Query{Location: location, Dimensions: []*Expression{{Name: "n"}}},
			expectErr:   "dimensions: table and name are required",
		},
	}
	for _, testCase := range testCases {
		actual, err := BuildQuery(testCase.query)
		if testCase.expectErr != "" {
			assert.EqualError(t, err, testCase.expectErr, testCase.description)
			continue
		}
		require.NoError(t, err, testCase.description)
		assert.EqualValues(t, testCase.expect, actual, testCase.description)
	}
}
