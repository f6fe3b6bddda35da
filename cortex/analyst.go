package cortex

import (
	"context"

	"github.com/viant/mcp-snowflake/config"
)

const analystPath = "/api/v2/cortex/analyst/message"

// Executor runs SQL generated by Cortex Analyst.
type Executor interface {
	Fetch(ctx context.Context, statement string) ([]map[string]interface{}, error)
}

// AnalystRequest asks Cortex Analyst a question against a semantic model.
type AnalystRequest struct {
	Model *config.SemanticModel
	Query string
}

// Payload returns the request body.
func (r *AnalystRequest) Payload() map[string]interface{} {
	return map[string]interface{}{
		"messages":           userMessages(r.Query),
		r.Model.PayloadKey(): r.Model.Ref,
		"stream":             false,
	}
}

// Analyst sends the question and, when SQL comes back, runs it through executor.
func (c *Client) Analyst(ctx context.Context, request *AnalystRequest, executor Executor) (*AnalystResult, error) {
	body, err := c.post(ctx, ToolAnalyst, analystPath, request.Payload())
	if err != nil {
		return nil, err
	}
	return ParseAnalyst(ctx, body, executor)
}

func userMessages(query string) []map[string]interface{} {
	return []map[string]interface{}{
		{
			"role": "user",
			"content": []map[string]interface{}{
				{"type": "text", "text": query},
			},
		},
	}
}
