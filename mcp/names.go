package mcp

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/viant/mcp-snowflake/config"
	"github.com/viant/velty"
)

var invalidToolChars = regexp.MustCompile(`[^A-Za-z0-9_]`)

// ToolName turns a service name into a valid tool name.
func ToolName(name string) string {
	ret := invalidToolChars.ReplaceAllString(strings.TrimSpace(name), "_")
	if ret != "" && ret[0] >= '0' && ret[0] <= '9' {
		ret = "service_" + ret
	}
	return ret
}

var fallbackDescriptions = map[config.Kind]string{
	config.KindSearch:  "Search service: ${Name}",
	config.KindAnalyst: "Analyst service: ${Name}",
	config.KindAgent:   "Agent service: ${Name}",
}

// describe returns the configured description or a generated fallback.
func describe(service config.Service) string {
	if description := strings.TrimSpace(service.Describe()); description != "" {
		return description
	}
	ret, err := renderDescription(fallbackDescriptions[service.Kind()], service.Name())
	if err != nil {
		log.Warn().Err(err).Str("service", service.Name()).Msg("failed to render tool description")
		return fmt.Sprintf("%s service: %s", service.Kind(), service.Name())
	}
	return ret
}

func renderDescription(template, name string) (string, error) {
	planner := velty.New()
	if err := planner.DefineVariable("Name", name); err != nil {
		return "", err
	}
	execution, newState, err := planner.Compile([]byte(template))
	if err != nil {
		return "", err
	}
	state := newState()
	if err = state.SetValue("Name", name); err != nil {
		return "", err
	}
	if err = execution.Exec(state); err != nil {
		return "", err
	}
	return string(state.Buffer.Bytes()), nil
}
