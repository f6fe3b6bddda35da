package main

import (
	"fmt"
	"strings"
)

// MissingArgumentsError reports mandatory arguments that were not supplied.
type MissingArgumentsError struct {
	Missing []string
}

func (e *MissingArgumentsError) Error() string {
	return fmt.Sprintf("missing required arguments: %s", strings.Join(e.Missing, ", "))
}
