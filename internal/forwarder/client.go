package forwarder

import "context"

// GenerateContentAction is the capability a model must advertise to be
// usable for text generation.
const GenerateContentAction = "generateContent"

// Client is the minimal interface the forwarder requires from the remote
// generation service. The gemini package provides the production
// implementation; tests supply stubs.
type Client interface {
	// Generate sends text to the configured model and returns its reply.
	Generate(ctx context.Context, text string) (*Reply, error)
	// ListModels enumerates the models exposed to the configured API key.
	ListModels(ctx context.Context) ([]ModelInfo, error)
}

// Reply is a single generation response.
type Reply struct {
	// Text is the concatenated text of the first candidate.
	Text string
	// Model is the model version reported back by the service. It may be
	// empty, in which case the configured model name is used.
	Model string
	// Usage holds token counts when the service reports them.
	Usage *Usage
}

// ModelInfo describes one model returned by ListModels.
type ModelInfo struct {
	Name             string
	SupportedActions []string
}

// Supports reports whether the model advertises the given action.
func (m ModelInfo) Supports(action string) bool {
	for _, a := range m.SupportedActions {
		if a == action {
			return true
		}
	}
	return false
}

// ClientConfig carries everything needed to construct a Client. It is passed
// explicitly to a Dialer; no client state is kept at package level.
type ClientConfig struct {
	APIKey  string
	Model   string
	BaseURL string

	// Generation parameters. Zero values select the client defaults,
	// except Temperature where nil does.
	Temperature     *float32
	TopP            float32
	TopK            float32
	MaxOutputTokens int32
}

// Dialer builds a Client from a ClientConfig.
type Dialer func(ctx context.Context, cfg ClientConfig) (Client, error)
