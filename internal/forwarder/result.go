package forwarder

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	// ErrConfiguration reports a missing API key, an unknown template or an
	// otherwise unusable request.
	ErrConfiguration = errors.New("configuration error")
	// ErrPromptRead reports a prompt file that could not be read.
	ErrPromptRead = errors.New("Failed to read prompt file")
	// ErrRemote wraps any failure surfaced by the generation client.
	ErrRemote = errors.New("gemini request failed")
	// ErrEmptyReply reports a successful call that returned no text.
	ErrEmptyReply = errors.New("Empty response from Gemini API")
)

// Usage holds token accounting for one generation call.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Result is the single value produced per operation. Exactly one of the
// success shapes (content or models) or the failure shape is populated.
type Result struct {
	Success bool     `json:"success"`
	Content string   `json:"content,omitempty"`
	Model   string   `json:"model,omitempty"`
	Usage   *Usage   `json:"usage,omitempty"`
	Models  []string `json:"models,omitempty"`
	Error   string   `json:"error,omitempty"`

	err error
}

// Success returns a successful generation result.
func Success(content, model string, usage *Usage) Result {
	return Result{Success: true, Content: content, Model: model, Usage: usage}
}

// Models returns a successful model listing result.
func Models(names []string) Result {
	return Result{Success: true, Models: names}
}

// Failure flattens err into a failed result. The original error stays
// available through Err for errors.Is checks.
func Failure(err error) Result {
	return Result{Error: err.Error(), err: err}
}

// Err returns the error a failed result was built from, or nil.
func (r Result) Err() error {
	return r.err
}

// ReadPrompt loads prompt text from a file. Read failures wrap ErrPromptRead
// and keep the underlying cause in the message.
func ReadPrompt(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPromptRead, err)
	}
	return string(data), nil
}

// firstLine returns the first non-blank line of s, trimmed.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
