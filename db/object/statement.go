package object

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/viant/mcp-snowflake/db/ident"
)

// CreateMode selects the behaviour when the object already exists.
type CreateMode string

const (
	ErrorIfExists CreateMode = "error_if_exists"
	Replace       CreateMode = "replace"
	IfNotExists   CreateMode = "if_not_exists"
)

// DefaultListLimit caps SHOW output for object types supporting LIMIT.
const DefaultListLimit = 100

// ListOptions narrows a SHOW command.
type ListOptions struct {
	// Like matches names containing the text, or is used as the LIKE pattern
	// as given when it holds a % wildcard.
	Like         string
	DatabaseName string
	SchemaName   string
	StartsWith   string
	Limit        int
}

// QualifiedName returns the fully qualified, quoted name of o.
func QualifiedName(kind Kind, o *Object) (string, error) {
	if o == nil || strings.TrimSpace(o.Name) == "" {
		return "", fmt.Errorf("%s name is required", kind.Title())
	}
	switch kind.info().scope {
	case databaseScope:
		if o.DatabaseName == "" {
			return "", fmt.Errorf("database_name is required for %s", kind.Title())
		}
		return ident.Qualify(o.DatabaseName, o.Name)
	case schemaScope:
		if o.DatabaseName == "" || o.SchemaName == "" {
			return "", fmt.Errorf("database_name and schema_name are required for %s", kind.Title())
		}
		return ident.Qualify(o.DatabaseName, o.SchemaName, o.Name)
	}
	return ident.Quote(o.Name)
}

// BuildCreate renders CREATE for kind honoring mode.
func BuildCreate(kind Kind, o *Object, mode CreateMode) (string, error) {
	switch mode {
	case "", ErrorIfExists:
		return buildCreate(kind, o, "CREATE", "")
	case Replace:
		return buildCreate(kind, o, "CREATE OR REPLACE", "")
	case IfNotExists:
		return buildCreate(kind, o, "CREATE", "IF NOT EXISTS ")
	}
	return "", fmt.Errorf("unsupported mode %q", mode)
}

// BuildCreateOrAlter renders CREATE OR ALTER for kind.
func BuildCreateOrAlter(kind Kind, o *Object) (string, error) {
	return buildCreate(kind, o, "CREATE OR ALTER", "")
}

// BuildDrop renders DROP for kind.
func BuildDrop(kind Kind, o *Object, ifExists bool) (string, error) {
	name, err := QualifiedName(kind, o)
	if err != nil {
		return "", err
	}
	clause := ""
	if ifExists {
		clause = "IF EXISTS "
	}
	return fmt.Sprintf("DROP %s %s%s", kind.info().keyword, clause, name), nil
}

// BuildDescribe renders DESCRIBE for kind.
func BuildDescribe(kind Kind, o *Object) (string, error) {
	name, err := QualifiedName(kind, o)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("DESCRIBE %s %s", kind.info().keyword, name), nil
}

// BuildList renders SHOW <KIND>S with the supported filters.
func BuildList(kind Kind, options *ListOptions) (string, error) {
	if options == nil {
		options = &ListOptions{}
	}
	info := kind.info()
	builder := &strings.Builder{}
	builder.WriteString("SHOW ")
	builder.WriteString(info.plural)
	if options.Like != "" {
		builder.WriteString(" LIKE ")
		builder.WriteString(ident.Like(options.Like))
	}
	if info.scope != accountScope {
		scope, err := listScope(options)
		if err != nil {
			return "", err
		}
		builder.WriteString(scope)
	}
	if options.StartsWith != "" {
		if !info.startsWith {
			return "", fmt.Errorf("starts_with is not supported for %s", kind.Title())
		}
		builder.WriteString(" STARTS WITH ")
		builder.WriteString(ident.Literal(options.StartsWith))
	}
	if info.limit {
		limit := options.Limit
		if limit <= 0 {
			limit = DefaultListLimit
		}
		builder.WriteString(" LIMIT ")
		builder.WriteString(strconv.Itoa(limit))
	} else if options.Limit > 0 {
		return "", fmt.Errorf("limit is not supported for %s", kind.Title())
	}
	return builder.String(), nil
}

func listScope(options *ListOptions) (string, error) {
	switch {
	case options.DatabaseName != "" && options.SchemaName != "":
		name, err := ident.Qualify(options.DatabaseName, options.SchemaName)
		if err != nil {
			return "", err
		}
		return " IN SCHEMA " + name, nil
	case options.DatabaseName != "":
		name, err := ident.Quote(options.DatabaseName)
		if err != nil {
			return "", err
		}
		return " IN DATABASE " + name, nil
	case options.SchemaName != "":
		return "", fmt.Errorf("database_name is required with schema_name")
	}
	return " IN ACCOUNT", nil
}

func buildCreate(kind Kind, o *Object, verb, ifNotExists string) (string, error) {
	if o == nil {
		return "", fmt.Errorf("target_object is required")
	}
	if err := o.validate(kind); err != nil {
		return "", err
	}
	name, err := QualifiedName(kind, o)
	if err != nil {
		return "", err
	}
	body, err := createBody(kind, o)
	if err != nil {
		return "", err
	}
	modifier := ""
	switch upper := strings.ToUpper(o.Kind); {
	case upper == "TRANSIENT":
		modifier = "TRANSIENT "
	case upper == "TEMPORARY":
		modifier = "TEMPORARY "
	}
	if o.Secure != nil && *o.Secure {
		modifier = "SECURE " + modifier
	}
	SQL := fmt.Sprintf("%s %s%s %s%s", verb, modifier, kind.info().keyword, ifNotExists, name)
	if body != "" {
		SQL += " " + body
	}
	return SQL, nil
}

type properties []string

func (p *properties) str(key, value string) {
	if value != "" {
		*p = append(*p, key+" = "+ident.Literal(value))
	}
}

func (p *properties) keyword(key, value string) {
	if value != "" {
		*p = append(*p, key+" = "+strings.ToUpper(value))
	}
}

func (p *properties) integer(key string, value *int) {
	if value != nil {
		*p = append(*p, key+" = "+strconv.Itoa(*value))
	}
}

func (p *properties) boolean(key string, value *bool) {
	if value != nil {
		*p = append(*p, key+" = "+strings.ToUpper(strconv.FormatBool(*value)))
	}
}

func createBody(kind Kind, o *Object) (string, error) {
	var parts []string
	props := &properties{}
	switch kind {
	case Database, Schema:
		props.integer("DATA_RETENTION_TIME_IN_DAYS", o.DataRetentionTimeInDays)
	case Table:
		if len(o.Columns) == 0 {
			return "", fmt.Errorf("columns are required for table")
		}
		columns, err := columnList(o.Columns, true)
		if err != nil {
			return "", err
		}
		parts = append(parts, columns)
		props.integer("DATA_RETENTION_TIME_IN_DAYS", o.DataRetentionTimeInDays)
	case View:
		if strings.TrimSpace(o.Query) == "" {
			return "", fmt.Errorf("query is required for view")
		}
		if len(o.Columns) > 0 {
			columns, err := columnList(o.Columns, false)
			if err != nil {
				return "", err
			}
			parts = append(parts, columns)
		}
	case Warehouse:
		props.str("WAREHOUSE_TYPE", strings.ToUpper(o.WarehouseType))
		props.str("WAREHOUSE_SIZE", strings.ToUpper(o.WarehouseSize))
		props.integer("MAX_CLUSTER_COUNT", o.MaxClusterCount)
		props.integer("MIN_CLUSTER_COUNT", o.MinClusterCount)
		props.keyword("SCALING_POLICY", o.ScalingPolicy)
		props.integer("AUTO_SUSPEND", o.AutoSuspend)
		props.boolean("AUTO_RESUME", o.AutoResume)
		props.boolean("INITIALLY_SUSPENDED", o.InitiallySuspended)
		props.integer("STATEMENT_TIMEOUT_IN_SECONDS", o.StatementTimeoutInSeconds)
	case ComputePool:
		if o.MinNodes == nil || o.MaxNodes == nil || o.InstanceFamily == "" {
			return "", fmt.Errorf("min_nodes, max_nodes and instance_family are required for compute pool")
		}
		props.integer("MIN_NODES", o.MinNodes)
		props.integer("MAX_NODES", o.MaxNodes)
		props.keyword("INSTANCE_FAMILY", o.InstanceFamily)
		props.boolean("AUTO_RESUME", o.AutoResume)
		props.integer("AUTO_SUSPEND_SECS", o.AutoSuspendSecs)
	case Stage:
		if o.DirectoryTable != nil && *o.DirectoryTable {
			*props = append(*props, "DIRECTORY = (ENABLE = TRUE)")
		}
	case User:
		props.str("PASSWORD", o.Password)
		props.str("LOGIN_NAME", o.LoginName)
		props.str("DISPLAY_NAME", o.DisplayName)
		props.str("EMAIL", o.Email)
		props.str("FIRST_NAME", o.FirstName)
		props.str("LAST_NAME", o.LastName)
		props.boolean("MUST_CHANGE_PASSWORD", o.MustChangePassword)
		props.boolean("DISABLED", o.Disabled)
		props.str("DEFAULT_WAREHOUSE", o.DefaultWarehouse)
		props.str("DEFAULT_ROLE", o.DefaultRole)
		props.str("NETWORK_POLICY", o.NetworkPolicy)
	}
	props.str("COMMENT", o.Comment)
	parts = append(parts, *props...)
	if kind == View {
		parts = append(parts, "AS "+strings.TrimSpace(o.Query))
	}
	return strings.Join(parts, " "), nil
}

func columnList(columns []*Column, typed bool) (string, error) {
	var defs []string
	for _, column := range columns {
		name, err := ident.Quote(column.Name)
		if err != nil {
			return "", err
		}
		def := name
		if typed {
			def += " " + strings.ToUpper(strings.TrimSpace(column.Datatype))
			if column.Nullable != nil && !*column.Nullable {
				def += " NOT NULL"
			}
		}
		if column.Comment != "" {
			def += " COMMENT " + ident.Literal(column.Comment)
		}
		defs = append(defs, def)
	}
	return "(" + strings.Join(defs, ", ") + ")", nil
}
