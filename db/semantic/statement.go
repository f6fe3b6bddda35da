package semantic

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/viant/mcp-snowflake/db/ident"
)

// ExpressionType selects SHOW SEMANTIC DIMENSIONS or METRICS.
type ExpressionType string

const (
	Dimensions ExpressionType = "DIMENSIONS"
	Metrics    ExpressionType = "METRICS"
)

// Location narrows SHOW commands to an account, database, schema or view.
type Location struct {
	DatabaseName string
	SchemaName   string
	ViewName     string
}

// Filter holds the LIKE and STARTS WITH options of SHOW commands.
type Filter struct {
	Like       string
	StartsWith string
}

// Expression references a logical table member of a semantic view.
type Expression struct {
	Table string `json:"table" description:"Logical table alias"`
	Name  string `json:"name" description:"Dimension, metric or fact name"`
}

// Query describes a SEMANTIC_VIEW select.
type Query struct {
	Location
	Dimensions  []*Expression
	Metrics     []*Expression
	Facts       []*Expression
	WhereClause string
	OrderBy     string
	Limit       int
}

// BuildList renders SHOW SEMANTIC VIEWS.
func BuildList(location *Location, filter *Filter) (string, error) {
	builder := &strings.Builder{}
	builder.WriteString("SHOW SEMANTIC VIEWS")
	writeLike(builder, filter)
	var err error
	switch {
	case location.DatabaseName != "" && location.SchemaName != "":
		err = writeName(builder, " IN SCHEMA ", location.DatabaseName, location.SchemaName)
	case location.DatabaseName != "":
		err = writeName(builder, " IN DATABASE ", location.DatabaseName)
	case location.SchemaName != "":
		err = writeName(builder, " IN SCHEMA ", location.SchemaName)
	default:
		builder.WriteString(" IN ACCOUNT")
	}
	if err != nil {
		return "", err
	}
	writeStartsWith(builder, filter)
	return builder.String(), nil
}

// BuildDescribe renders DESCRIBE SEMANTIC VIEW.
func BuildDescribe(location *Location) (string, error) {
	name, err := viewName(location)
	if err != nil {
		return "", err
	}
	return "DESCRIBE SEMANTIC VIEW " + name, nil
}

// BuildShowExpressions renders SHOW SEMANTIC DIMENSIONS|METRICS.
func BuildShowExpressions(expressionType ExpressionType, location *Location, filter *Filter) (string, error) {
	switch expressionType {
	case Dimensions, Metrics:
	default:
		return "", fmt.Errorf("unsupported expression type %q", expressionType)
	}
	builder := &strings.Builder{}
	builder.WriteString("SHOW SEMANTIC ")
	builder.WriteString(string(expressionType))
	writeLike(builder, filter)
	var err error
	switch {
	case location.ViewName != "":
		var name string
		if name, err = viewName(location); err == nil {
			builder.WriteString(" IN ")
			builder.WriteString(name)
		}
	case location.SchemaName != "":
		err = writeName(builder, " IN SCHEMA ", location.DatabaseName, location.SchemaName)
	case location.DatabaseName != "":
		err = writeName(builder, " IN DATABASE ", location.DatabaseName)
	default:
		builder.WriteString(" IN ACCOUNT")
	}
	if err != nil {
		return "", err
	}
	writeStartsWith(builder, filter)
	return builder.String(), nil
}

// BuildDDL renders the GET_DDL lookup of a semantic view.
func BuildDDL(location *Location) (string, error) {
	name, err := viewName(location)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("SELECT GET_DDL('SEMANTIC_VIEW', %s, TRUE) AS DDL", ident.Literal(name)), nil
}

// BuildQuery renders SELECT * FROM SEMANTIC_VIEW(...). At least one of
// dimensions, metrics or facts is required; facts exclude metrics.
func BuildQuery(query *Query) (string, error) {
	if len(query.Dimensions) == 0 && len(query.Metrics) == 0 && len(query.Facts) == 0 {
		return "", fmt.Errorf("must specify at least one of DIMENSIONS, METRICS, or FACTS")
	}
	if len(query.Facts) > 0 && len(query.Metrics) > 0 {
		return "", fmt.Errorf("cannot specify both FACTS and METRICS in the same SEMANTIC_VIEW query")
	}
	name, err := viewName(&query.Location)
	if err != nil {
		return "", err
	}
	builder := &strings.Builder{}
	builder.WriteString("SELECT * FROM SEMANTIC_VIEW(")
	builder.WriteString(name)
	clauses := []struct {
		keyword     string
		expressions []*Expression
	}{
		{"DIMENSIONS", query.Dimensions},
		{"METRICS", query.Metrics},
		{"FACTS", query.Facts},
	}
	for _, clause := range clauses {
		if len(clause.expressions) == 0 {
			continue
		}
		list, err := expressionList(clause.expressions)
		if err != nil {
			return "", fmt.Errorf("%s: %w", strings.ToLower(clause.keyword), err)
		}
		builder.WriteString(" ")
		builder.WriteString(clause.keyword)
		builder.WriteString(" ")
		builder.WriteString(list)
	}
	builder.WriteString(")")
	if where := strings.TrimSpace(query.WhereClause); where != "" {
		if strings.Contains(where, ";") {
			return "", fmt.Errorf("where_clause must not contain ';'")
		}
		builder.WriteString(" WHERE ")
		builder.WriteString(where)
	}
	if orderBy := strings.TrimSpace(query.OrderBy); orderBy != "" {
		if strings.Contains(orderBy, ";") {
			return "", fmt.Errorf("order_by must not contain ';'")
		}
		builder.WriteString(" ORDER BY ")
		builder.WriteString(orderBy)
	}
	if query.Limit < 0 {
		return "", fmt.Errorf("limit must not be negative")
	}
	if query.Limit > 0 {
		builder.WriteString(" LIMIT ")
		builder.WriteString(strconv.Itoa(query.Limit))
	}
	return builder.String(), nil
}

func expressionList(expressions []*Expression) (string, error) {
	items := make([]string, 0, len(expressions))
	for _, expression := range expressions {
		if expression == nil || expression.Table == "" || expression.Name == "" {
			return "", fmt.Errorf("table and name are required")
		}
		item, err := ident.Qualify(expression.Table, expression.Name)
		if err != nil {
			return "", err
		}
		items = append(items, item)
	}
	return strings.Join(items, ", "), nil
}

func viewName(location *Location) (string, error) {
	if location.DatabaseName == "" || location.SchemaName == "" {
		return "", fmt.Errorf("please specify a database + schema")
	}
	if location.ViewName == "" {
		return "", fmt.Errorf("please specify a view name")
	}
	return ident.Qualify(location.DatabaseName, location.SchemaName, location.ViewName)
}

func writeName(builder *strings.Builder, prefix string, parts ...string) error {
	name, err := ident.Qualify(parts...)
	if err != nil {
		return err
	}
	builder.WriteString(prefix)
	builder.WriteString(name)
	return nil
}

func writeLike(builder *strings.Builder, filter *Filter) {
	if filter != nil && filter.Like != "" {
		builder.WriteString(" LIKE ")
		builder.WriteString(ident.Like(filter.Like))
	}
}

func writeStartsWith(builder *strings.Builder, filter *Filter) {
	if filter != nil && filter.StartsWith != "" {
		builder.WriteString(" STARTS WITH ")
		builder.WriteString(ident.Literal(filter.StartsWith))
	}
}
