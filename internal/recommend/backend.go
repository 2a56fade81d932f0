package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/schema"

	"shopassist/pkg"
)

// Request describes one recommendation lookup.
type Request struct {
	Query       string            `json:"query"`
	Category    string            `json:"category"`
	ProfileHash string            `json:"profile_hash,omitempty"`
	ContextHash string            `json:"context_hash,omitempty"`
	Signals     pkg.IntentSignals `json:"signals"`
	MaxResults  int               `json:"max_results"`
}

// Recommender produces product recommendations for a request.
type Recommender interface {
	Recommend(ctx context.Context, request Request) ([]pkg.Recommendation, error)
}

// RecommenderFunc adapts a function to the Recommender interface.
type RecommenderFunc func(ctx context.Context, request Request) ([]pkg.Recommendation, error)

func (f RecommenderFunc) Recommend(ctx context.Context, request Request) ([]pkg.Recommendation, error) {
	return f(ctx, request)
}

const recommendationPrompt = `
-Goal-
Given a shopper's query and their browsing signals, recommend the most relevant products.

STRICT RULES:
1. Return ONLY a JSON array, no prose before or after
2. Return at most {{max_results}} items
3. Every item MUST have: id, name, brand, category, price, reason, score
4. score is a float in [0, 1]; order the array by score descending
5. Prefer the shopper's category when one is given

######################
-Real Data-
######################
query: {{query}}
category: {{category}}
purchase_intent: {{purchase_intent}}
browsing_pattern: {{browsing_pattern}}
price_sensitive: {{price_sensitive}}
brand_loyal: {{brand_loyal}}
######################
Output:
`

// ModelConfig holds the chat-model settings for recommendations.
type ModelConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	MaxResults  int
}

// ModelRecommender asks a chat model for recommendations and parses its
// JSON reply.
type ModelRecommender struct {
	config ModelConfig
	model  openai.ChatModel
}

// NewModelRecommender creates the chat model client up front so a bad
// configuration fails at startup rather than on the first request.
func NewModelRecommender(ctx context.Context, config ModelConfig) (*ModelRecommender, error) {
	maxTokens := config.MaxTokens
	temperature := float32(config.Temperature)

	modelConfig := &openai.ChatModelConfig{
		APIKey:      config.APIKey,
		BaseURL:     config.BaseURL,
		Model:       config.Model,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
	}

	model, err := openai.NewChatModel(ctx, modelConfig)
	if err != nil {
		return nil, fmt.Errorf("error creating chat model: %w", err)
	}

	return &ModelRecommender{
		config: config,
		model:  *model,
	}, nil
}

// Recommend renders the prompt, runs the model, and parses the reply.
func (m *ModelRecommender) Recommend(ctx context.Context, request Request) ([]pkg.Recommendation, error) {
	maxResults := request.MaxResults
	if maxResults <= 0 {
		maxResults = m.config.MaxResults
	}

	fullPrompt := strings.ReplaceAll(recommendationPrompt, "{{query}}", request.Query)
	fullPrompt = strings.ReplaceAll(fullPrompt, "{{category}}", orUnknown(request.Category))
	fullPrompt = strings.ReplaceAll(fullPrompt, "{{purchase_intent}}", string(request.Signals.PurchaseIntent))
	fullPrompt = strings.ReplaceAll(fullPrompt, "{{browsing_pattern}}", string(request.Signals.BrowsingPattern))
	fullPrompt = strings.ReplaceAll(fullPrompt, "{{price_sensitive}}", fmt.Sprintf("%t", request.Signals.PriceSensitivity))
	fullPrompt = strings.ReplaceAll(fullPrompt, "{{brand_loyal}}", fmt.Sprintf("%t", request.Signals.BrandLoyalty))
	fullPrompt = strings.ReplaceAll(fullPrompt, "{{max_results}}", fmt.Sprintf("%d", maxResults))

	messages := []*schema.Message{
		schema.SystemMessage("You are a product recommendation engine for an online store. Follow the instructions precisely and return structured output."),
		schema.UserMessage(fullPrompt),
	}

	response, err := m.model.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("recommendation model call failed: %w", err)
	}

	recommendations, err := parseRecommendations(response.Content)
	if err != nil {
		return nil, err
	}
	if len(recommendations) > maxResults {
		recommendations = recommendations[:maxResults]
	}
	return recommendations, nil
}

// parseRecommendations decodes the model reply, tolerating markdown code
// fences around the JSON array.
func parseRecommendations(content string) ([]pkg.Recommendation, error) {
	cleaned := strings.TrimSpace(content)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var recommendations []pkg.Recommendation
	if err := sonic.Unmarshal([]byte(cleaned), &recommendations); err != nil {
		return nil, fmt.Errorf("failed to parse model recommendations: %w", err)
	}
	return recommendations, nil
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
