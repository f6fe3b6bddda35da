package object

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/viant/mcp-snowflake/db/session"
)

// CreateInput is the create_object argument.
type CreateInput struct {
	ObjectType   string  `json:"object_type" description:"Type of object to create" choice:"database" choice:"schema" choice:"table" choice:"view" choice:"warehouse" choice:"compute_pool" choice:"role" choice:"stage" choice:"user" choice:"image_repository"`
	TargetObject *Object `json:"target_object" description:"Properties of the object. Always pass an object, not a string."`
	Mode         string  `json:"mode,omitempty" description:"Behaviour when the object exists (default error_if_exists)" choice:"error_if_exists" choice:"replace" choice:"if_not_exists"`
}

// CreateOrAlterInput is the create_or_alter_object argument.
type CreateOrAlterInput struct {
	ObjectType   string  `json:"object_type" description:"Type of object to create or alter" choice:"database" choice:"schema" choice:"table" choice:"view" choice:"warehouse" choice:"compute_pool" choice:"role" choice:"stage" choice:"user" choice:"image_repository"`
	TargetObject *Object `json:"target_object" description:"Properties of the object. Always pass an object, not a string."`
}

// DropInput is the drop_object argument.
type DropInput struct {
	ObjectType   string  `json:"object_type" description:"Type of object to drop" choice:"database" choice:"schema" choice:"table" choice:"view" choice:"warehouse" choice:"compute_pool" choice:"role" choice:"stage" choice:"user" choice:"image_repository"`
	TargetObject *Object `json:"target_object" description:"Object identity: name plus database_name/schema_name where applicable"`
	IfExists     bool    `json:"if_exists,omitempty" description:"Do not fail when the object is missing"`
}

// DescribeInput is the describe_object argument.
type DescribeInput struct {
	ObjectType   string  `json:"object_type" description:"Type of object to describe" choice:"database" choice:"schema" choice:"table" choice:"view" choice:"warehouse" choice:"compute_pool" choice:"role" choice:"stage" choice:"user" choice:"image_repository"`
	TargetObject *Object `json:"target_object" description:"Object identity: name plus database_name/schema_name where applicable"`
}

// ListInput is the list_objects argument.
type ListInput struct {
	ObjectType   string `json:"object_type" description:"Type of objects to list" choice:"database" choice:"schema" choice:"table" choice:"view" choice:"warehouse" choice:"compute_pool" choice:"role" choice:"stage" choice:"user" choice:"image_repository"`
	Like         string `json:"like,omitempty" description:"Only names containing this text; text with a % wildcard is used as the LIKE pattern as given"`
	DatabaseName string `json:"database_name,omitempty" description:"Limit to a database"`
	SchemaName   string `json:"schema_name,omitempty" description:"Limit to a schema (requires database_name)"`
	StartsWith   string `json:"starts_with,omitempty" description:"Only names starting with this text (case sensitive)"`
	Limit        int    `json:"limit,omitempty" description:"Maximum number of rows"`
}

// Output is the result of an object tool.
type Output struct {
	Message string                   `json:"message,omitempty"`
	Data    []map[string]interface{} `json:"data,omitempty"`
	Status  string                   `json:"status"`
	Error   string                   `json:"error,omitempty"`
}

// Service manages Snowflake objects through the shared session.
type Service struct {
	session *session.Session
}

// Create runs create_object.
func (s *Service) Create(ctx context.Context, input *CreateInput) *Output {
	return s.run(ctx, func() (string, string, error) {
		kind, err := ParseKind(input.ObjectType)
		if err != nil {
			return "", "", err
		}
		SQL, err := BuildCreate(kind, input.TargetObject, CreateMode(input.Mode))
		if err != nil {
			return "", "", err
		}
		return SQL, fmt.Sprintf("Created %s %s.", kind.Title(), input.TargetObject.Name), nil
	})
}

// CreateOrAlter runs create_or_alter_object.
func (s *Service) CreateOrAlter(ctx context.Context, input *CreateOrAlterInput) *Output {
	return s.run(ctx, func() (string, string, error) {
		kind, err := ParseKind(input.ObjectType)
		if err != nil {
			return "", "", err
		}
		SQL, err := BuildCreateOrAlter(kind, input.TargetObject)
		if err != nil {
			return "", "", err
		}
		return SQL, fmt.Sprintf("Created or altered %s %s.", kind.Title(), input.TargetObject.Name), nil
	})
}

// Drop runs drop_object.
func (s *Service) Drop(ctx context.Context, input *DropInput) *Output {
	return s.run(ctx, func() (string, string, error) {
		kind, err := ParseKind(input.ObjectType)
		if err != nil {
			return "", "", err
		}
		SQL, err := BuildDrop(kind, input.TargetObject, input.IfExists)
		if err != nil {
			return "", "", err
		}
		return SQL, fmt.Sprintf("Dropped %s %s.", kind.Title(), input.TargetObject.Name), nil
	})
}

// Describe runs describe_object.
func (s *Service) Describe(ctx context.Context, input *DescribeInput) *Output {
	return s.run(ctx, func() (string, string, error) {
		kind, err := ParseKind(input.ObjectType)
		if err != nil {
			return "", "", err
		}
		SQL, err := BuildDescribe(kind, input.TargetObject)
		return SQL, "", err
	})
}

// List runs list_objects.
func (s *Service) List(ctx context.Context, input *ListInput) *Output {
	return s.run(ctx, func() (string, string, error) {
		kind, err := ParseKind(input.ObjectType)
		if err != nil {
			return "", "", err
		}
		SQL, err := BuildList(kind, &ListOptions{
			Like:         input.Like,
			DatabaseName: input.DatabaseName,
			SchemaName:   input.SchemaName,
			StartsWith:   input.StartsWith,
			Limit:        input.Limit,
		})
		return SQL, "", err
	})
}

func (s *Service) run(ctx context.Context, build func() (string, string, error)) *Output {
	output := &Output{Status: "ok"}
	SQL, message, err := build()
	if err == nil {
		log.Debug().Str("statement", SQL).Msg("object statement")
		output.Data, err = s.session.Fetch(ctx, SQL)
	}
	if err != nil {
		output.Status = "error"
		output.Error = err.Error()
		return output
	}
	output.Message = message
	return output
}

// New creates an object manager.
func New(sess *session.Session) *Service {
	return &Service{session: sess}
}
