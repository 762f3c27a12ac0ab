package config

import (
	"strings"
	"testing"
)

func mapLookup(env map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := env[name]
		return v, ok
	}
}

func TestEnvSubstituter_Substitute(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		env         map[string]string
		expected    string
		expectError bool
	}{
		{
			name:     "basic substitution",
			input:    "api-key: ${env://GEMINI_API_KEY}",
			env:      map[string]string{"GEMINI_API_KEY": "AIza-123"},
			expected: "api-key: AIza-123",
		},
		{
			name:     "default used when unset",
			input:    "model: ${env://GEMFORWARD_MODEL:-gemini-1.5-flash}",
			env:      map[string]string{},
			expected: "model: gemini-1.5-flash",
		},
		{
			name:     "default used when empty",
			input:    "language: ${env://LANG_LABEL:-go}",
			env:      map[string]string{"LANG_LABEL": ""},
			expected: "language: go",
		},
		{
			name:     "default overridden",
			input:    "language: ${env://LANG_LABEL:-go}",
			env:      map[string]string{"LANG_LABEL": "rust"},
			expected: "language: rust",
		},
		{
			name:     "empty default",
			input:    `{"base-url": "${env://GEMINI_BASE_URL:-}"}`,
			env:      map[string]string{},
			expected: `{"base-url": ""}`,
		},
		{
			name:     "default containing a url",
			input:    "base-url: ${env://GEMINI_BASE_URL:-https://generativelanguage.googleapis.com:443/}",
			env:      map[string]string{},
			expected: "base-url: https://generativelanguage.googleapis.com:443/",
		},
		{
			name:     "template placeholders untouched",
			input:    "content: \"{{prompt}} in ${LANG}\"",
			env:      map[string]string{"LANG": "go"},
			expected: "content: \"{{prompt}} in ${LANG}\"",
		},
		{
			name:        "missing required variable",
			input:       "api-key: ${env://GEMINI_API_KEY}",
			env:         map[string]string{},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &EnvSubstituter{Lookup: mapLookup(tt.env)}
			result, err := s.Substitute(tt.input)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("Expected:\n%s\nGot:\n%s", tt.expected, result)
			}
		})
	}
}

func TestEnvSubstituter_ReportsAllMissing(t *testing.T) {
	s := &EnvSubstituter{Lookup: mapLookup(nil)}
	_, err := s.Substitute("a: ${env://FIRST}\nb: ${env://SECOND}")
	if err == nil {
		t.Fatal("expected error")
	}
	for _, name := range []string{"FIRST", "SECOND"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not mention %s", err, name)
		}
	}
}

func TestEnvSubstituter_DefaultsToProcessEnv(t *testing.T) {
	t.Setenv("GEMFORWARD_TEST_VALUE", "from-env")
	s := &EnvSubstituter{}
	got, err := s.Substitute("${env://GEMFORWARD_TEST_VALUE}")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "from-env" {
		t.Errorf("got %q, want from-env", got)
	}
}

func TestHasEnvVars(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected bool
	}{
		{"has env vars", "api-key: ${env://GEMINI_API_KEY}", true},
		{"has env vars with default", "debug: ${env://DEBUG:-false}", true},
		{"plain placeholders only", "content: {{prompt}} ${name}", false},
		{"empty content", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasEnvVars(tt.content); got != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}
