package cortex

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// NoFinalResponse is returned when an agent stream carries no response event.
const NoFinalResponse = "No final response found."

const maxEventSize = 16 * 1024 * 1024

// SearchResult is the normalized Cortex Search response.
type SearchResult struct {
	Results interface{} `json:"results"`
}

// AnalystResult is the normalized Cortex Analyst response.
type AnalystResult struct {
	Text    string      `json:"text"`
	SQL     string      `json:"sql,omitempty"`
	Results interface{} `json:"results,omitempty"`
}

// CompleteResult is the assembled Cortex Complete output.
type CompleteResult struct {
	Results interface{} `json:"results"`
}

// AgentResult is the final Cortex Agent response.
type AgentResult struct {
	Results interface{} `json:"results"`
}

// ParseSearch passes results through, defaulting to an empty list.
func ParseSearch(body []byte) (*SearchResult, error) {
	var payload struct {
		Results interface{} `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &ParseError{Tool: ToolSearch, Err: err}
	}
	if payload.Results == nil {
		payload.Results = []interface{}{}
	}
	return &SearchResult{Results: payload.Results}, nil
}

type analystContent struct {
	Type      string `json:"type"`
	Text      string `json:"text"`
	Statement string `json:"statement"`
}

// ParseAnalyst collects text and SQL blocks, running non-empty SQL through executor.
func ParseAnalyst(ctx context.Context, body []byte, executor Executor) (*AnalystResult, error) {
	var payload struct {
		Message struct {
			Content []*analystContent `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &ParseError{Tool: ToolAnalyst, Err: err}
	}
	ret := &AnalystResult{}
	for _, item := range payload.Message.Content {
		switch item.Type {
		case "text":
			ret.Text = item.Text
		case "sql":
			ret.SQL = item.Statement
			if item.Statement == "" {
				continue
			}
			if executor == nil {
				return nil, &Error{Tool: ToolAnalyst, Body: "no session to run generated SQL"}
			}
			rows, err := executor.Fetch(ctx, item.Statement)
			if err != nil {
				return nil, &Error{Tool: ToolAnalyst, Body: fmt.Sprintf("failed to execute generated SQL: %v", err)}
			}
			ret.Results = rows
		}
	}
	return ret, nil
}

type completeEvent struct {
	Choices []struct {
		Delta struct {
			Type    string `json:"type"`
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// ParseComplete concatenates text deltas from the event stream. When structured
// is set the text is decoded as JSON or, failing that, as a literal in YAML
// flow syntax which also accepts single-quoted strings.
func ParseComplete(body []byte, structured bool) (*CompleteResult, error) {
	var text strings.Builder
	scanner := newScanner(body)
	for scanner.Scan() {
		data, ok := eventData(scanner.Text())
		if !ok || data == "" || data == "[DONE]" {
			continue
		}
		event := &completeEvent{}
		if err := json.Unmarshal([]byte(data), event); err != nil {
			return nil, &ParseError{Tool: ToolComplete, Err: err}
		}
		if len(event.Choices) == 0 {
			continue
		}
		delta := event.Choices[0].Delta
		if delta.Type == "text" || delta.Type == "" {
			text.WriteString(delta.Content)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Tool: ToolComplete, Err: err}
	}
	if !structured {
		return &CompleteResult{Results: text.String()}, nil
	}
	value, err := parseLiteral(text.String())
	if err != nil {
		return nil, &ParseError{Tool: ToolComplete, Err: err}
	}
	return &CompleteResult{Results: value}, nil
}

func parseLiteral(text string) (interface{}, error) {
	text = strings.TrimSpace(text)
	var value interface{}
	if err := json.Unmarshal([]byte(text), &value); err == nil {
		return value, nil
	}
	if err := yaml.Unmarshal([]byte(text), &value); err != nil {
		return nil, fmt.Errorf("structured output is not a literal: %w", err)
	}
	if s, ok := value.(string); ok && !quoted(text) && s == text {
		return nil, fmt.Errorf("structured output is not a literal: %q", truncate(text, 64))
	}
	return value, nil
}

// ParseAgent returns the last content text of the first response event.
func ParseAgent(body []byte) (*AgentResult, error) {
	scanner := newScanner(body)
	marked := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "event: response" {
			marked = true
			continue
		}
		if !marked {
			continue
		}
		data, ok := eventData(line)
		if !ok {
			continue
		}
		var payload struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		}
		if err := json.Unmarshal([]byte(data), &payload); err != nil {
			return nil, &ParseError{Tool: ToolAgent, Err: err}
		}
		if len(payload.Content) == 0 {
			return nil, &ParseError{Tool: ToolAgent, Err: fmt.Errorf("response event has no content")}
		}
		return &AgentResult{Results: payload.Content[len(payload.Content)-1].Text}, nil
	}
	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Tool: ToolAgent, Err: err}
	}
	return &AgentResult{Results: NoFinalResponse}, nil
}

func newScanner(body []byte) *bufio.Scanner {
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 64*1024), maxEventSize)
	return scanner
}

func eventData(line string) (string, bool) {
	if !strings.HasPrefix(line, "data:") {
		return "", false
	}
	return strings.TrimSpace(line[len("data:"):]), true
}

func quoted(text string) bool {
	return len(text) >= 2 && (text[0] == '\'' || text[0] == '"') && text[len(text)-1] == text[0]
}

func truncate(text string, size int) string {
	if len(text) <= size {
		return text
	}
	return text[:size] + "..."
}
