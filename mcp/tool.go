package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
	protoserver "github.com/viant/mcp-protocol/server"
)

// Tool is a named, described operation ready to be registered with a handler.
type Tool struct {
	Name        string
	Description string
	handle      func(ctx context.Context, arguments []byte) (*schema.CallToolResult, *jsonrpc.Error)
	register    func(base *protoserver.DefaultHandler) error
}

// Call decodes JSON arguments and runs the tool as the protocol handler would.
func (t *Tool) Call(ctx context.Context, arguments []byte) (*schema.CallToolResult, *jsonrpc.Error) {
	return t.handle(ctx, arguments)
}

// newTool binds run to name; I must be a pointer to the argument struct.
func newTool[I any, O any](s *Service, name, description string, run func(ctx context.Context, input I) (O, error)) *Tool {
	handle := func(ctx context.Context, input I) (*schema.CallToolResult, *jsonrpc.Error) {
		return s.call(ctx, name, input, func(ctx context.Context) (interface{}, error) {
			return run(ctx, input)
		})
	}
	return &Tool{
		Name:        name,
		Description: description,
		handle: func(ctx context.Context, arguments []byte) (*schema.CallToolResult, *jsonrpc.Error) {
			input := reflect.New(reflect.TypeOf((*I)(nil)).Elem().Elem()).Interface().(I)
			if len(arguments) > 0 {
				if err := json.Unmarshal(arguments, input); err != nil {
					return buildErrorResult("invalid arguments: " + err.Error())
				}
			}
			return handle(ctx, input)
		},
		register: func(base *protoserver.DefaultHandler) error {
			return protoserver.RegisterTool[I, O](base.Registry, name, description, handle)
		},
	}
}

// call authorizes and runs a single tool invocation.
func (s *Service) call(ctx context.Context, name string, input interface{}, run func(ctx context.Context) (interface{}, error)) (*schema.CallToolResult, *jsonrpc.Error) {
	logger := log.With().Str("call", uuid.New().String()).Str("tool", name).Logger()
	if err := s.authorize(name, input); err != nil {
		logger.Warn().Err(err).Msg("tool call rejected")
		return buildErrorResult(err.Error())
	}
	started := time.Now()
	output, err := run(ctx)
	if err != nil {
		logger.Error().Err(err).Dur("elapsed", time.Since(started)).Msg("tool call failed")
		return buildErrorResult(err.Error())
	}
	logger.Debug().Dur("elapsed", time.Since(started)).Msg("tool call completed")
	return buildSuccessResult(s, output)
}

// settle turns a status envelope into an error result.
func settle[O any](output O, status, message string) (O, error) {
	if status == "error" {
		var zero O
		return zero, errors.New(message)
	}
	return output, nil
}

// dedupe keeps the last tool registered under each name.
func dedupe(tools []*Tool) []*Tool {
	index := map[string]int{}
	var ret []*Tool
	for _, tool := range tools {
		if i, ok := index[tool.Name]; ok {
			log.Warn().Str("tool", tool.Name).Msg("duplicate tool name, last definition wins")
			ret[i] = tool
			continue
		}
		index[tool.Name] = len(ret)
		ret = append(ret, tool)
	}
	return ret
}
