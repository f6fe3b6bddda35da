package object

import (
	"fmt"
	"strings"
)

// Kind is a manageable Snowflake object type.
type Kind string

const (
	Database        Kind = "database"
	Schema          Kind = "schema"
	Table           Kind = "table"
	View            Kind = "view"
	Warehouse       Kind = "warehouse"
	ComputePool     Kind = "compute_pool"
	Role            Kind = "role"
	Stage           Kind = "stage"
	User            Kind = "user"
	ImageRepository Kind = "image_repository"
)

// Kinds lists every supported object type.
var Kinds = []Kind{Database, Schema, Table, View, Warehouse, ComputePool, Role, Stage, User, ImageRepository}

type scope int

const (
	accountScope scope = iota
	databaseScope
	schemaScope
)

type kindInfo struct {
	keyword    string
	plural     string
	scope      scope
	startsWith bool
	limit      bool
	fields     map[string]bool
}

var common = []string{"name", "comment", "database_name", "schema_name"}

var kinds = map[Kind]*kindInfo{
	Database:        {keyword: "DATABASE", plural: "DATABASES", scope: accountScope, startsWith: true, limit: true, fields: fieldSet("kind", "data_retention_time_in_days")},
	Schema:          {keyword: "SCHEMA", plural: "SCHEMAS", scope: databaseScope, startsWith: true, limit: true, fields: fieldSet("kind", "data_retention_time_in_days")},
	Table:           {keyword: "TABLE", plural: "TABLES", scope: schemaScope, startsWith: true, limit: true, fields: fieldSet("kind", "data_retention_time_in_days", "columns")},
	View:            {keyword: "VIEW", plural: "VIEWS", scope: schemaScope, startsWith: true, limit: true, fields: fieldSet("kind", "columns", "query", "secure")},
	Warehouse:       {keyword: "WAREHOUSE", plural: "WAREHOUSES", scope: accountScope, fields: fieldSet("warehouse_type", "warehouse_size", "auto_suspend", "auto_resume", "initially_suspended", "max_cluster_count", "min_cluster_count", "scaling_policy", "statement_timeout_in_seconds")},
	ComputePool:     {keyword: "COMPUTE POOL", plural: "COMPUTE POOLS", scope: accountScope, startsWith: true, limit: true, fields: fieldSet("min_nodes", "max_nodes", "instance_family", "auto_resume", "auto_suspend_secs")},
	Role:            {keyword: "ROLE", plural: "ROLES", scope: accountScope, fields: fieldSet()},
	Stage:           {keyword: "STAGE", plural: "STAGES", scope: schemaScope, fields: fieldSet("kind", "directory_table")},
	User:            {keyword: "USER", plural: "USERS", scope: accountScope, startsWith: true, limit: true, fields: fieldSet("password", "login_name", "display_name", "email", "first_name", "last_name", "must_change_password", "disabled", "default_warehouse", "default_role", "network_policy")},
	ImageRepository: {keyword: "IMAGE REPOSITORY", plural: "IMAGE REPOSITORIES", scope: schemaScope, fields: fieldSet()},
}

// kind values accepted per object type
var kindValues = map[Kind][]string{
	Database: {"PERMANENT", "TRANSIENT"},
	Schema:   {"PERMANENT", "TRANSIENT"},
	Table:    {"PERMANENT", "TRANSIENT", "TEMPORARY"},
	View:     {"PERMANENT", "TEMPORARY"},
	Stage:    {"PERMANENT", "TEMPORARY"},
}

func fieldSet(names ...string) map[string]bool {
	ret := make(map[string]bool, len(names)+len(common))
	for _, name := range common {
		ret[name] = true
	}
	for _, name := range names {
		ret[name] = true
	}
	return ret
}

// ParseKind resolves an object_type argument.
func ParseKind(name string) (Kind, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := kinds[kind]; !ok {
		return "", fmt.Errorf("unsupported object_type %q", name)
	}
	return kind, nil
}

func (k Kind) info() *kindInfo {
	return kinds[k]
}

// Title returns a display label, e.g. "compute pool".
func (k Kind) Title() string {
	return strings.ReplaceAll(string(k), "_", " ")
}
