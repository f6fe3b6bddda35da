package config

import (
	"fmt"
	"strings"
)

// NotFoundError is returned when the configuration document does not exist.
type NotFoundError struct {
	URL string
	Err error
}

func (e *NotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("service config file not found: %v: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("service config file not found: %v", e.URL)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// ParseError is returned when the document is not valid YAML for Services.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse service config %v: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidationError lists services with missing required fields.
type ValidationError struct {
	URL      string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid service config %v: %v", e.URL, strings.Join(e.Problems, "; "))
}
