package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"

	"github.com/Veraticus/claimdesk/internal/model"
)

const (
	defaultGeminiModel = "gemini-2.0-flash-001"
	generativeScope    = "https://www.googleapis.com/auth/generative-language"
)

// geminiClient implements the Client interface on the Gemini API. Both models
// request JSON output constrained by a response schema.
type geminiClient struct {
	client     *genai.Client
	assessment *genai.GenerativeModel
	shops      *genai.GenerativeModel
}

// newGeminiClient creates a Gemini client authenticated with an API key or
// application default credentials.
func newGeminiClient(ctx context.Context, cfg Config) (Client, error) {
	opts, err := geminiOptions(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	name := cfg.Model
	if name == "" {
		name = defaultGeminiModel
	}

	return &geminiClient{
		client:     client,
		assessment: configureGeminiModel(client.GenerativeModel(name), cfg, assessmentSystemPrompt, assessmentSchema()),
		shops:      configureGeminiModel(client.GenerativeModel(name), cfg, shopSystemPrompt, shopsSchema()),
	}, nil
}

func geminiOptions(ctx context.Context, cfg Config) ([]option.ClientOption, error) {
	var opts []option.ClientOption
	switch {
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	case cfg.UseADC:
		tokenSource, err := google.DefaultTokenSource(ctx, generativeScope)
		if err != nil {
			return nil, fmt.Errorf("failed to find application default credentials: %w", err)
		}
		opts = append(opts, option.WithTokenSource(tokenSource))
	default:
		return nil, fmt.Errorf("gemini API key is required unless application default credentials are enabled")
	}

	if cfg.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(cfg.BaseURL))
	}
	return opts, nil
}

func configureGeminiModel(m *genai.GenerativeModel, cfg Config, system string, schema *genai.Schema) *genai.GenerativeModel {
	m.SetTemperature(float32(cfg.temperature()))
	m.SetMaxOutputTokens(int32(cfg.maxTokens()))
	m.SystemInstruction = genai.NewUserContent(genai.Text(system))
	m.ResponseMIMEType = "application/json"
	m.ResponseSchema = schema
	return m
}

// AssessDamage sends the photos as inline blobs after the prompt.
func (c *geminiClient) AssessDamage(ctx context.Context, prompt string, images []model.Image) (string, error) {
	parts := make([]genai.Part, 0, len(images)+1)
	parts = append(parts, genai.Text(prompt))
	for _, img := range images {
		parts = append(parts, genai.Blob{MIMEType: img.MIMEType, Data: img.Data})
	}

	resp, err := c.assessment.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	return geminiText(resp)
}

// SearchShops sends a text-only shop search prompt.
func (c *geminiClient) SearchShops(ctx context.Context, prompt string) (string, error) {
	resp, err := c.shops.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	return geminiText(resp)
}

// Close implements Client.
func (c *geminiClient) Close() error {
	return c.client.Close()
}

// geminiText concatenates the text parts of the first candidate.
func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from gemini (finish reason %v)", candidate.FinishReason)
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("unexpected response type from gemini")
	}
	return sb.String(), nil
}

func assessmentSchema() *genai.Schema {
	money := func(description string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeNumber, Description: description}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"assessment": {Type: genai.TypeString, Description: "Description of the visible damage"},
			"estimate": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"total_cost": money("Total repair cost in USD"),
					"labor_cost": money("Labor cost in USD"),
					"parts_cost": money("Parts cost in USD"),
					"details":    {Type: genai.TypeString},
				},
				Required: []string{"total_cost", "labor_cost", "parts_cost", "details"},
			},
			"confidence_score": {Type: genai.TypeInteger, Description: "Confidence from 0 to 100"},
		},
		Required: []string{"assessment", "estimate"},
	}
}

func shopsSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"shops": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":        {Type: genai.TypeString},
						"address":     {Type: genai.TypeString},
						"rating":      {Type: genai.TypeNumber, Nullable: true},
						"website_uri": {Type: genai.TypeString, Nullable: true},
					},
					Required: []string{"name", "address"},
				},
			},
		},
		Required: []string{"shops"},
	}
}
