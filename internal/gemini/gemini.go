package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ModelName is the Gemini model to use.
const ModelName = "gemini-2.0-flash"

// ErrBlocked is returned when the model produced no usable candidate, either
// because the response was filtered or because generation stopped abnormally.
var ErrBlocked = errors.New("response blocked or incomplete")

// Client wraps the Gemini client. A nil *Client is a valid "provider not
// configured" value: callers check for nil and take the fallback path.
type Client struct {
	client *genai.Client
}

// NewClient creates a new Gemini client from an API key.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("no API key provided")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Client{client: client}, nil
}

// Close closes the underlying client.
func (c *Client) Close() {
	c.client.Close()
}

// GenerateAnswer requests a free-form answer with the generation parameters
// used for chat responses.
func (c *Client) GenerateAnswer(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, prompt, 0.7)
}

// GenerateQuiz requests quiz JSON. The raw text is returned; parsing and
// validation happen in the composer.
func (c *Client) GenerateQuiz(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, prompt, 0.8)
}

func (c *Client) generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	// A fresh model per call keeps the per-request generation config from
	// racing between concurrent handlers.
	model := c.client.GenerativeModel(ModelName)
	model.SetTemperature(temperature)
	model.SetTopP(0.95)
	model.SetMaxOutputTokens(2048)
	model.SafetySettings = permissiveSafetySettings()

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates", ErrBlocked)
	}
	candidate := resp.Candidates[0]
	if candidate.FinishReason != genai.FinishReasonStop {
		return "", fmt.Errorf("%w: finish reason %v", ErrBlocked, candidate.FinishReason)
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content", ErrBlocked)
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("%w: no text parts", ErrBlocked)
	}
	return text.String(), nil
}

// permissiveSafetySettings relaxes all content filters. The source material is
// student coursebooks; the default thresholds block legitimate excerpts.
func permissiveSafetySettings() []*genai.SafetySetting {
	return []*genai.SafetySetting{
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockNone},
	}
}
