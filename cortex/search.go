package cortex

import (
	"context"
	"fmt"
	"net/url"
)

// DefaultSearchLimit applies when neither the call nor the service sets a limit.
const DefaultSearchLimit = 10

// SearchRequest queries a Cortex Search service.
type SearchRequest struct {
	Database string
	Schema   string
	Service  string
	Query    string
	Columns  []string
	Filter   map[string]interface{}
	Limit    int
}

// Path returns the service query endpoint.
func (r *SearchRequest) Path() string {
	return fmt.Sprintf("/api/v2/databases/%s/schemas/%s/cortex-search-services/%s:query",
		url.PathEscape(r.Database), url.PathEscape(r.Schema), url.PathEscape(r.Service))
}

// Payload returns the request body; columns are omitted when empty.
func (r *SearchRequest) Payload() map[string]interface{} {
	filter := r.Filter
	if filter == nil {
		filter = map[string]interface{}{}
	}
	limit := r.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	ret := map[string]interface{}{
		"query":  r.Query,
		"filter": filter,
		"limit":  limit,
	}
	if len(r.Columns) > 0 {
		ret["columns"] = r.Columns
	}
	return ret
}

// Search runs a Cortex Search query and returns the normalized results.
func (c *Client) Search(ctx context.Context, request *SearchRequest) (*SearchResult, error) {
	body, err := c.post(ctx, ToolSearch, request.Path(), request.Payload())
	if err != nil {
		return nil, err
	}
	return ParseSearch(body)
}
