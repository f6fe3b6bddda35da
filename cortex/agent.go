package cortex

import (
	"context"
	"fmt"
	"net/url"
)

// AgentRequest runs a Cortex Agent.
type AgentRequest struct {
	Database string
	Schema   string
	Agent    string
	Query    string
}

// Path returns the agent run endpoint.
func (r *AgentRequest) Path() string {
	return fmt.Sprintf("/api/v2/databases/%s/schemas/%s/agents/%s:run",
		url.PathEscape(r.Database), url.PathEscape(r.Schema), url.PathEscape(r.Agent))
}

// Payload returns the request body.
func (r *AgentRequest) Payload() map[string]interface{} {
	return map[string]interface{}{
		"messages":    userMessages(r.Query),
		"tool_choice": map[string]interface{}{"type": "auto"},
		"stream":      false,
	}
}

// Agent runs the agent and returns its final response.
func (c *Client) Agent(ctx context.Context, request *AgentRequest) (*AgentResult, error) {
	body, err := c.post(ctx, ToolAgent, request.Path(), request.Payload())
	if err != nil {
		return nil, err
	}
	return ParseAgent(body)
}
