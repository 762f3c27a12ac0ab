// Package gemini implements forwarder.Client on top of the Google Gen AI SDK.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/mark3labs/gemforward/internal/forwarder"
)

// Generation defaults.
const (
	DefaultModel           = "gemini-1.5-flash"
	DefaultTemperature     = 0.7
	DefaultTopP            = 0.95
	DefaultTopK            = 64
	DefaultMaxOutputTokens = 8192
)

// safetyCategories are all sent with BLOCK_NONE.
var safetyCategories = []genai.HarmCategory{
	genai.HarmCategoryHarassment,
	genai.HarmCategoryHateSpeech,
	genai.HarmCategorySexuallyExplicit,
	genai.HarmCategoryDangerousContent,
}

// Client is a forwarder.Client backed by a genai.Client.
type Client struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// Dial creates a Client for the Gemini API. It satisfies forwarder.Dialer;
// the API key is validated by the forwarder before Dial is called.
func Dial(ctx context.Context, cfg forwarder.ClientConfig) (forwarder.Client, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Client{
		client: client,
		model:  model,
		config: generationConfig(cfg),
	}, nil
}

// Generate sends text as a single user turn.
func (c *Client) Generate(ctx context.Context, text string) (*forwarder.Reply, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(text), c.config)
	if err != nil {
		return nil, err
	}

	reply := &forwarder.Reply{
		Text:  resp.Text(),
		Model: resp.ModelVersion,
	}
	if u := resp.UsageMetadata; u != nil {
		reply.Usage = &forwarder.Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	return reply, nil
}

// ListModels walks every page of the model listing.
func (c *Client) ListModels(ctx context.Context) ([]forwarder.ModelInfo, error) {
	var models []forwarder.ModelInfo
	for m, err := range c.client.Models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("listing models: %w", err)
		}
		models = append(models, forwarder.ModelInfo{
			Name:             m.Name,
			SupportedActions: m.SupportedActions,
		})
	}
	return models, nil
}

func generationConfig(cfg forwarder.ClientConfig) *genai.GenerateContentConfig {
	temperature := float32(DefaultTemperature)
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	topP := cfg.TopP
	if topP == 0 {
		topP = DefaultTopP
	}
	topK := cfg.TopK
	if topK == 0 {
		topK = DefaultTopK
	}
	maxTokens := cfg.MaxOutputTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxOutputTokens
	}

	safety := make([]*genai.SafetySetting, len(safetyCategories))
	for i, category := range safetyCategories {
		safety[i] = &genai.SafetySetting{
			Category:  category,
			Threshold: genai.HarmBlockThresholdBlockNone,
		}
	}

	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(temperature),
		TopP:            genai.Ptr(topP),
		TopK:            genai.Ptr(topK),
		MaxOutputTokens: maxTokens,
		SafetySettings:  safety,
	}
}
