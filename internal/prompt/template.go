package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Template is a named prompt wrapper with {{variable}} placeholders.
type Template struct {
	// Name is the identifier used to select the template.
	Name string
	// Description is a one-line summary shown by the templates listing.
	Description string
	// Content is the raw template text with {{variable}} placeholders.
	Content string
	// Variables lists the placeholder names discovered in Content.
	Variables []string
}

// Spec is the on-disk form of a template, used both in the config file's
// templates map and in standalone YAML template files.
type Spec struct {
	Description string `yaml:"description" mapstructure:"description"`
	Content     string `yaml:"content" mapstructure:"content"`
}

// variableRe matches {{variable_name}} placeholders.
var variableRe = regexp.MustCompile(`\{\{(\w+)\}\}`)

// New creates a Template, extracting variable names from content.
func New(name, description, content string) *Template {
	return &Template{
		Name:        name,
		Description: description,
		Content:     content,
		Variables:   extractVariables(content),
	}
}

// FromSpec builds a Template from its on-disk form.
func FromSpec(name string, s Spec) *Template {
	return New(name, s.Description, s.Content)
}

// LoadTemplate reads a template from a file. The template name is the file
// name without extension. Files ending in .yml or .yaml are decoded as a
// Spec; any other file is taken verbatim as the template content.
func LoadTemplate(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template %s: %w", path, err)
	}

	base := filepath.Base(path)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)

	switch strings.ToLower(ext) {
	case ".yml", ".yaml":
		var s Spec
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", path, err)
		}
		if strings.TrimSpace(s.Content) == "" {
			return nil, fmt.Errorf("template %s has no content", path)
		}
		return FromSpec(name, s), nil
	default:
		return New(name, "", string(data)), nil
	}
}

// Expand replaces all {{variable}} placeholders with values from the
// provided map. Missing variables are left as-is.
func (t *Template) Expand(values map[string]string) string {
	return variableRe.ReplaceAllStringFunc(t.Content, func(match string) string {
		if v, ok := values[match[2:len(match)-2]]; ok {
			return v
		}
		return match
	})
}

// ExpandStrict is like Expand but fails when a variable in the template has
// no corresponding value.
func (t *Template) ExpandStrict(values map[string]string) (string, error) {
	var missing []string
	for _, v := range t.Variables {
		if _, ok := values[v]; !ok {
			missing = append(missing, v)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("missing template variables: %s", strings.Join(missing, ", "))
	}
	return t.Expand(values), nil
}

// Values builds the substitution map for a prompt and a target language.
// LANGUAGE carries the upper-cased label.
func Values(prompt, language string) map[string]string {
	return map[string]string{
		"prompt":   prompt,
		"language": language,
		"LANGUAGE": strings.ToUpper(language),
	}
}

// extractVariables returns unique variable names from {{...}} placeholders.
func extractVariables(content string) []string {
	matches := variableRe.FindAllStringSubmatch(content, -1)
	seen := make(map[string]bool)
	var vars []string
	for _, m := range matches {
		name := m[1]
		if !seen[name] {
			seen[name] = true
			vars = append(vars, name)
		}
	}
	return vars
}
