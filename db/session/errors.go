package session

import "errors"

// ErrSessionClosed is returned when a closed session is used.
var ErrSessionClosed = errors.New("snowflake session is closed")
