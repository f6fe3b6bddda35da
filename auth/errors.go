package auth

import "strings"

// ConfigError reports missing or unusable credentials.
type ConfigError struct {
	Missing []string
	Message string
}

func (e *ConfigError) Error() string {
	if len(e.Missing) > 0 {
		return "missing credentials: " + strings.Join(e.Missing, ", ")
	}
	return "invalid credentials: " + e.Message
}
