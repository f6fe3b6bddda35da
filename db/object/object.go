package object

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Column defines a table or view column.
type Column struct {
	Name     string `json:"name" description:"The name of the column"`
	Datatype string `json:"datatype,omitempty" description:"The data type of the column (tables only)"`
	Nullable *bool  `json:"nullable,omitempty" description:"Whether the column can be null"`
	Comment  string `json:"comment,omitempty" description:"The comment for the column"`
}

// Object carries the properties of a target object. Fields that do not apply
// to the object type are rejected.
type Object struct {
	Name         string `json:"name,omitempty" description:"The name of the object"`
	Comment      string `json:"comment,omitempty" description:"The description of the object"`
	DatabaseName string `json:"database_name,omitempty" description:"The database the object belongs to"`
	SchemaName   string `json:"schema_name,omitempty" description:"The schema the object belongs to"`
	Kind         string `json:"kind,omitempty" description:"PERMANENT, TRANSIENT or TEMPORARY depending on the object type"`

	DataRetentionTimeInDays *int      `json:"data_retention_time_in_days,omitempty" description:"Time Travel retention in days (database, schema, table)"`
	Columns                 []*Column `json:"columns,omitempty" description:"Table or view columns"`
	Query                   string    `json:"query,omitempty" description:"The SELECT query that defines the view"`
	Secure                  *bool     `json:"secure,omitempty" description:"Whether the view is secure"`
	DirectoryTable          *bool     `json:"directory_table,omitempty" description:"Enable a directory table on the stage"`

	WarehouseType             string `json:"warehouse_type,omitempty" description:"STANDARD or SNOWPARK-OPTIMIZED"`
	WarehouseSize             string `json:"warehouse_size,omitempty" description:"X-SMALL, SMALL, MEDIUM, LARGE, X-LARGE, 2X-LARGE, 3X-LARGE or 4X-LARGE"`
	AutoSuspend               *int   `json:"auto_suspend,omitempty" description:"Seconds of inactivity before the warehouse suspends"`
	AutoResume                *bool  `json:"auto_resume,omitempty" description:"Whether the warehouse or compute pool resumes automatically"`
	InitiallySuspended        *bool  `json:"initially_suspended,omitempty" description:"Whether the warehouse starts suspended"`
	MaxClusterCount           *int   `json:"max_cluster_count,omitempty" description:"Maximum clusters of a multi-cluster warehouse"`
	MinClusterCount           *int   `json:"min_cluster_count,omitempty" description:"Minimum clusters of a multi-cluster warehouse"`
	ScalingPolicy             string `json:"scaling_policy,omitempty" description:"STANDARD or ECONOMY"`
	StatementTimeoutInSeconds *int   `json:"statement_timeout_in_seconds,omitempty" description:"Seconds after which a running statement is canceled"`

	MinNodes        *int   `json:"min_nodes,omitempty" description:"Minimum number of compute pool nodes"`
	MaxNodes        *int   `json:"max_nodes,omitempty" description:"Maximum number of compute pool nodes"`
	InstanceFamily  string `json:"instance_family,omitempty" description:"Compute pool instance family, e.g. CPU_X64_XS"`
	AutoSuspendSecs *int   `json:"auto_suspend_secs,omitempty" description:"Seconds until the compute pool suspends"`

	Password           string `json:"password,omitempty" description:"User password"`
	LoginName          string `json:"login_name,omitempty" description:"User login name, defaults to name"`
	DisplayName        string `json:"display_name,omitempty"`
	Email              string `json:"email,omitempty"`
	FirstName          string `json:"first_name,omitempty"`
	LastName           string `json:"last_name,omitempty"`
	MustChangePassword *bool  `json:"must_change_password,omitempty"`
	Disabled           *bool  `json:"disabled,omitempty"`
	DefaultWarehouse   string `json:"default_warehouse,omitempty"`
	DefaultRole        string `json:"default_role,omitempty"`
	NetworkPolicy      string `json:"network_policy,omitempty"`
}

// UnmarshalJSON accepts the object itself or a JSON string holding it.
func (o *Object) UnmarshalJSON(data []byte) error {
	type plain Object
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		data = []byte(text)
	}
	if err := json.Unmarshal(data, (*plain)(o)); err != nil {
		return fmt.Errorf("invalid target_object: %w", err)
	}
	return nil
}

var (
	warehouseTypes   = []string{"STANDARD", "SNOWPARK-OPTIMIZED"}
	warehouseSizes   = []string{"X-SMALL", "SMALL", "MEDIUM", "LARGE", "X-LARGE", "2X-LARGE", "3X-LARGE", "4X-LARGE"}
	scalingPolicies  = []string{"STANDARD", "ECONOMY"}
	instanceFamilies = []string{
		"CPU_X64_XS", "CPU_X64_S", "CPU_X64_M", "CPU_X64_SL", "CPU_X64_L",
		"HIGHMEM_X64_S", "HIGHMEM_X64_M", "HIGHMEM_X64_SL", "HIGHMEM_X64_L",
		"GPU_NV_S", "GPU_NV_M", "GPU_NV_L", "GPU_NV_XS", "GPU_NV_SM", "GPU_NV_2M", "GPU_NV_3M", "GPU_NV_SL",
		"GPU_GCP_NV_L4_1_24G", "GPU_GCP_NV_L4_4_24G", "GPU_GCP_NV_A100_8_40G",
	}
	datatype = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_ ]*(\(\s*\d+\s*(,\s*\d+\s*)?\))?$`)
)

// setFields returns the json names of populated fields.
func (o *Object) setFields() []string {
	var ret []string
	add := func(name string, set bool) {
		if set {
			ret = append(ret, name)
		}
	}
	add("name", o.Name != "")
	add("comment", o.Comment != "")
	add("database_name", o.DatabaseName != "")
	add("schema_name", o.SchemaName != "")
	add("kind", o.Kind != "")
	add("data_retention_time_in_days", o.DataRetentionTimeInDays != nil)
	add("columns", len(o.Columns) > 0)
	add("query", o.Query != "")
	add("secure", o.Secure != nil)
	add("directory_table", o.DirectoryTable != nil)
	add("warehouse_type", o.WarehouseType != "")
	add("warehouse_size", o.WarehouseSize != "")
	add("auto_suspend", o.AutoSuspend != nil)
	add("auto_resume", o.AutoResume != nil)
	add("initially_suspended", o.InitiallySuspended != nil)
	add("max_cluster_count", o.MaxClusterCount != nil)
	add("min_cluster_count", o.MinClusterCount != nil)
	add("scaling_policy", o.ScalingPolicy != "")
	add("statement_timeout_in_seconds", o.StatementTimeoutInSeconds != nil)
	add("min_nodes", o.MinNodes != nil)
	add("max_nodes", o.MaxNodes != nil)
	add("instance_family", o.InstanceFamily != "")
	add("auto_suspend_secs", o.AutoSuspendSecs != nil)
	add("password", o.Password != "")
	add("login_name", o.LoginName != "")
	add("display_name", o.DisplayName != "")
	add("email", o.Email != "")
	add("first_name", o.FirstName != "")
	add("last_name", o.LastName != "")
	add("must_change_password", o.MustChangePassword != nil)
	add("disabled", o.Disabled != nil)
	add("default_warehouse", o.DefaultWarehouse != "")
	add("default_role", o.DefaultRole != "")
	add("network_policy", o.NetworkPolicy != "")
	return ret
}

// validate checks o against the closed set of properties for kind.
func (o *Object) validate(kind Kind) error {
	info := kind.info()
	for _, field := range o.setFields() {
		if !info.fields[field] {
			return fmt.Errorf("%s is not a valid property of %s", field, kind.Title())
		}
	}
	if o.Kind != "" && !oneOf(strings.ToUpper(o.Kind), kindValues[kind]) {
		return fmt.Errorf("kind %q is not valid for %s, expected one of %v", o.Kind, kind.Title(), kindValues[kind])
	}
	if o.DataRetentionTimeInDays != nil && (*o.DataRetentionTimeInDays < 0 || *o.DataRetentionTimeInDays > 90) {
		return fmt.Errorf("data_retention_time_in_days must be between 0 and 90")
	}
	checks := []struct {
		name    string
		value   string
		allowed []string
	}{
		{"warehouse_type", o.WarehouseType, warehouseTypes},
		{"warehouse_size", o.WarehouseSize, warehouseSizes},
		{"scaling_policy", o.ScalingPolicy, scalingPolicies},
		{"instance_family", o.InstanceFamily, instanceFamilies},
	}
	for _, check := range checks {
		if check.value != "" && !oneOf(strings.ToUpper(check.value), check.allowed) {
			return fmt.Errorf("%s %q is not valid, expected one of %v", check.name, check.value, check.allowed)
		}
	}
	for name, value := range map[string]*int{
		"auto_suspend": o.AutoSuspend, "max_cluster_count": o.MaxClusterCount, "min_cluster_count": o.MinClusterCount,
		"statement_timeout_in_seconds": o.StatementTimeoutInSeconds, "min_nodes": o.MinNodes, "max_nodes": o.MaxNodes,
		"auto_suspend_secs": o.AutoSuspendSecs,
	} {
		if value != nil && *value < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	for i, column := range o.Columns {
		if column == nil || strings.TrimSpace(column.Name) == "" {
			return fmt.Errorf("columns[%d]: name is required", i)
		}
		if kind == Table {
			if !datatype.MatchString(strings.TrimSpace(column.Datatype)) {
				return fmt.Errorf("columns[%d]: invalid datatype %q", i, column.Datatype)
			}
		} else if column.Datatype != "" || column.Nullable != nil {
			return fmt.Errorf("columns[%d]: view columns take only name and comment", i)
		}
	}
	return nil
}

func oneOf(value string, allowed []string) bool {
	for _, candidate := range allowed {
		if value == candidate {
			return true
		}
	}
	return false
}
