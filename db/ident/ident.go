// Package ident renders Snowflake identifiers and string literals.
package ident

import (
	"fmt"
	"regexp"
	"strings"
)

var plain = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// Quote returns name as a safe identifier: plain names are kept, anything else
// is double quoted with embedded quotes doubled.
func Quote(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("identifier was empty")
	}
	if strings.ContainsAny(name, "\x00\r\n") {
		return "", fmt.Errorf("identifier %q contains control characters", name)
	}
	if plain.MatchString(name) {
		return name, nil
	}
	if len(name) >= 2 && strings.HasPrefix(name, `"`) && strings.HasSuffix(name, `"`) {
		name = strings.ReplaceAll(name[1:len(name)-1], `""`, `"`)
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`, nil
}

// Qualify quotes and joins the non-empty parts with dots.
func Qualify(parts ...string) (string, error) {
	var quoted []string
	for _, part := range parts {
		if part == "" {
			continue
		}
		value, err := Quote(part)
		if err != nil {
			return "", err
		}
		quoted = append(quoted, value)
	}
	if len(quoted) == 0 {
		return "", fmt.Errorf("identifier was empty")
	}
	return strings.Join(quoted, "."), nil
}

// Literal returns s as a single quoted string literal.
func Literal(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Like returns a LIKE pattern literal. Text without a % wildcard matches names
// containing it; text with one is used as the pattern unchanged.
func Like(s string) string {
	if strings.Contains(s, "%") {
		return Literal(s)
	}
	return Literal("%" + s + "%")
}
