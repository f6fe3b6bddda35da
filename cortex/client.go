package cortex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// Authenticator supplies the REST base URL and per-request headers.
type Authenticator interface {
	BaseURL() string
	Headers() (http.Header, error)
}

// Client calls Cortex REST endpoints.
type Client struct {
	auth       Authenticator
	httpClient *http.Client
}

// post sends payload as JSON and returns the body of a 200 response.
func (c *Client) post(ctx context.Context, tool, path string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %v request: %w", tool, err)
	}
	header, err := c.auth.Headers()
	if err != nil {
		return nil, err
	}
	URL := strings.TrimRight(c.auth.BaseURL(), "/") + path
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, URL, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	request.Header = header
	log.Debug().Str("tool", tool).Str("url", URL).Msg("cortex request")
	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, &Error{Tool: tool, Body: err.Error()}
	}
	defer response.Body.Close()
	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, &Error{Tool: tool, StatusCode: response.StatusCode, Body: err.Error()}
	}
	if response.StatusCode != http.StatusOK {
		return nil, &Error{Tool: tool, StatusCode: response.StatusCode, Body: string(body)}
	}
	return body, nil
}

// NewClient creates a client; a nil httpClient uses http.DefaultClient.
func NewClient(auth Authenticator, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{auth: auth, httpClient: httpClient}
}
