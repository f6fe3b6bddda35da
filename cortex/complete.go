package cortex

import "context"

const completePath = "/api/v2/cortex/inference:complete"

// CompleteRequest asks an LLM through Cortex Complete.
type CompleteRequest struct {
	Model          string
	Prompt         string
	ResponseFormat map[string]interface{}
}

// Structured reports whether a response format was requested.
func (r *CompleteRequest) Structured() bool {
	return len(r.ResponseFormat) > 0
}

// Payload returns the request body.
func (r *CompleteRequest) Payload() map[string]interface{} {
	ret := map[string]interface{}{
		"model": r.Model,
		"messages": []map[string]interface{}{
			{"role": "user", "content": r.Prompt},
		},
		"temperature": 0.0,
	}
	if r.Structured() {
		ret["response_format"] = r.ResponseFormat
	}
	return ret
}

// Complete runs the prompt and returns the assembled completion.
func (c *Client) Complete(ctx context.Context, request *CompleteRequest) (*CompleteResult, error) {
	body, err := c.post(ctx, ToolComplete, completePath, request.Payload())
	if err != nil {
		return nil, err
	}
	return ParseComplete(body, request.Structured())
}
