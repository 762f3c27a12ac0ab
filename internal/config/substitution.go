package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// envVarPattern matches ${env://VAR} and ${env://VAR:-default}.
var envVarPattern = regexp.MustCompile(`\$\{env://([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// EnvSubstituter expands environment references in config file content.
type EnvSubstituter struct {
	// Lookup resolves a variable. Defaults to os.LookupEnv.
	Lookup func(string) (string, bool)
}

// Substitute replaces every ${env://VAR} and ${env://VAR:-default} in
// content. A variable that is unset or empty falls back to its default; a
// variable without a default that cannot be resolved is an error, and all
// such variables are reported together.
func (e *EnvSubstituter) Substitute(content string) (string, error) {
	lookup := e.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	var missing []string
	result := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		name, hasDefault, def := groups[1], groups[2] != "", groups[3]

		if v, ok := lookup(name); ok && v != "" {
			return v
		}
		if hasDefault {
			return def
		}
		missing = append(missing, name)
		return match
	})

	if len(missing) > 0 {
		return "", fmt.Errorf("environment variable substitution failed: required variables not set: %s", strings.Join(missing, ", "))
	}
	return result, nil
}

// HasEnvVars reports whether content contains any ${env://...} reference.
func HasEnvVars(content string) bool {
	return envVarPattern.MatchString(content)
}
