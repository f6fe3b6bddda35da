package cortex

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Tool labels used in error messages.
const (
	ToolSearch   = "Cortex Search"
	ToolAnalyst  = "Cortex Analyst"
	ToolAgent    = "Cortex Agent"
	ToolComplete = "Cortex Complete"
)

// Error is a failed Cortex call.
type Error struct {
	Tool       string
	StatusCode int
	Body       string
}

// Message returns the backend message, taken from a JSON body when present.
func (e *Error) Message() string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(e.Body), &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return e.Body
}

func (e *Error) Error() string {
	message := e.Message()
	switch e.StatusCode {
	case 400:
		if strings.Contains(strings.ToLower(message), "unknown model") {
			return fmt.Sprintf("%s Error: Selected model not available or invalid.\n\nError Message: %s ", e.Tool, message)
		}
		return fmt.Sprintf("%s Error: The resource cannot be found.\n\nError Message: %s ", e.Tool, message)
	case 401:
		return fmt.Sprintf("%s Error: An authorization error occurred.\n\nError Message: %s ", e.Tool, message)
	case 0:
		return fmt.Sprintf("%s Error: An error has occurred.\n\nError Message: %s ", e.Tool, message)
	}
	return fmt.Sprintf("%s Error: An error has occurred.\n\nError Message: %s \n Code: %d", e.Tool, message, e.StatusCode)
}

// ParseError is returned when a Cortex response cannot be decoded.
type ParseError struct {
	Tool string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s Error: failed to parse response: %v", e.Tool, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
