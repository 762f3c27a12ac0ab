package prompt

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultTemplate is the template used when none is selected.
const DefaultTemplate = "plain"

const solutionTemplate = `You are an expert programmer analyzing a coding problem. Please provide a comprehensive solution.

Problem text:
{{prompt}}

Please provide a solution specifically in {{LANGUAGE}} with the following structure:

1. **Problem Understanding**: Brief explanation of what the problem is asking
2. **Multiple Solution Approaches**:
   - **Approach 1 - Straightforward**: A direct solution that follows naturally from the problem statement, even if it is not optimal
   - **Approach 2 - Optimized**: A more efficient solution with better time/space complexity
3. **Clean Code Solutions**:
   - Use descriptive, meaningful variable names
   - Add comments explaining each step
   - Use function names that describe what they do
4. **Complexity Analysis**: Time and space complexity for each approach
5. **Key Insights**: The patterns or techniques used, and why the optimization works

Format your response with markdown. Present the solutions in order from the straightforward one to the optimized one.`

const codeTemplate = `Write a complete, runnable {{language}} program for the following request.

Request:
{{prompt}}

Respond with the code only, in a single fenced code block, followed by a short list of the commands needed to run it.`

const analysisTemplate = `You are an expert programmer analyzing a coding problem. Please provide a comprehensive solution.

Extracted problem text:
{{prompt}}

Please provide:
1. **Problem Understanding**: Brief explanation of what the problem is asking
2. **Solution Approach**: Key algorithm/strategy to solve it
3. **Code Solutions**: Clean, working code in both Python and JavaScript
4. **Complexity Analysis**: Time and space complexity with explanations
5. **Key Insights**: Important patterns or techniques used

Format your response clearly with markdown formatting for easy reading.`

const extractedTemplate = `You are an expert programmer. I've extracted this text from a coding problem screen.
Please analyze it and provide a solution.

Extracted text:
{{prompt}}

Please provide a solution specifically in {{LANGUAGE}} with these requirements:

1. **Problem Explanation**: What the problem is asking, in plain words
2. **Multiple Solution Approaches**:
   - **Basic/Intuitive**: The first solution that comes to mind, even if it is slow
   - **Optimized**: A more efficient solution with better time/space complexity
3. **Clean, Human-Readable Code Solutions** for each approach
4. **Time and Space Complexity** for each approach
5. **Key Insights**: The patterns that make the optimization possible

Code Style Requirements:
- Use descriptive variable names
- Add a comment for each non-obvious step
- Keep functions small and named after what they do

Format your response in a structured way that's easy to read. Start with the more obvious solution first, then show the optimization.`

// Catalog holds templates keyed by lower-cased name. Listing is sorted by
// name.
type Catalog struct {
	byName map[string]*Template
}

// NewCatalog returns a catalog holding the given templates. Later templates
// replace earlier ones with the same name.
func NewCatalog(templates ...*Template) *Catalog {
	c := &Catalog{byName: make(map[string]*Template, len(templates))}
	for _, t := range templates {
		c.Add(t)
	}
	return c
}

// DefaultCatalog returns the built-in templates.
func DefaultCatalog() *Catalog {
	return NewCatalog(
		New("plain", "Send the prompt unchanged", "{{prompt}}"),
		New("solution", "Walk through a coding problem with a straightforward and an optimized solution", solutionTemplate),
		New("code", "Ask for a complete runnable program only", codeTemplate),
		New("analysis", "Explain a coding problem with solutions in Python and JavaScript", analysisTemplate),
		New("extracted", "Solve a problem extracted from a screen, basic approach first", extractedTemplate),
	)
}

// Add inserts or replaces a template. Names are compared case-insensitively.
func (c *Catalog) Add(t *Template) {
	c.byName[strings.ToLower(t.Name)] = t
}

// Merge adds every template described by specs, replacing built-ins with the
// same name.
func (c *Catalog) Merge(specs map[string]Spec) {
	for name, s := range specs {
		c.Add(FromSpec(name, s))
	}
}

// Get looks up a template by name. An empty name selects DefaultTemplate.
func (c *Catalog) Get(name string) (*Template, error) {
	if name == "" {
		name = DefaultTemplate
	}
	t, ok := c.byName[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown template %q (available: %s)", name, strings.Join(c.Names(), ", "))
	}
	return t, nil
}

// Names returns the lower-cased template names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.byName))
	for name := range c.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Templates returns the templates sorted by name.
func (c *Catalog) Templates() []*Template {
	names := c.Names()
	out := make([]*Template, len(names))
	for i, name := range names {
		out[i] = c.byName[name]
	}
	return out
}
