package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/joho/godotenv"

	"shopassist/internal/config"
	"shopassist/internal/conversation"
	"shopassist/internal/logger"
	"shopassist/internal/recommend"
	"shopassist/internal/signals"
	"shopassist/internal/storage"
	"shopassist/internal/topics"
	"shopassist/pkg"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment as-is")
	}

	ctx := context.Background()

	// Load configuration from config.yaml
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		fmt.Printf("Error loading config.yaml: %v\n", err)
		cfg = config.Default()
	}

	if err := logger.InitLogger(cfg.Log); err != nil {
		fmt.Printf("Error initializing logger: %v\n", err)
		return
	}

	// Session store: Redis when REDIS_URL is set, in-memory otherwise.
	var repo storage.Repository
	if os.Getenv("REDIS_URL") != "" {
		redisRepo, err := storage.NewRedisRepository(ctx, cfg.SessionTTL())
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to Redis")
			return
		}
		repo = redisRepo
	} else {
		logger.Info().Msg("REDIS_URL not set, using in-memory session store")
		repo = storage.NewMemoryRepository(cfg.SessionTTL())
	}
	defer repo.Close()

	service := buildRecommendationService(ctx, cfg)

	engine := topics.NewEngine(rand.New(rand.NewSource(time.Now().UnixNano())))
	manager := conversation.NewManager("demo-session", conversation.Config{
		RedirectThreshold:   cfg.Conversation.RedirectThreshold,
		MaxRedirectAttempts: cfg.Conversation.MaxRedirectAttempts,
		TopicStackLimit:     cfg.Conversation.TopicStackLimit,
		RecommendConfidence: cfg.Conversation.RecommendConfidence,
	}, engine)

	// Scripted shopper: small talk first, then a concrete shopping need.
	testMessages := []string{
		"Hi there!",
		"The weather has been so cold lately",
		"Yeah, I stayed in all weekend",
		"I watched a few movies too",
		"Actually, I'm looking for a winter jacket under $200",
		"I love the ones with a hood. How does the NorthPeak compare to the TrailPro?",
		"The NorthPeak looks great, I'll buy it",
	}

	for i, text := range testMessages {
		fmt.Printf("\n=== Turn %d ===\n", i+1)
		fmt.Printf("Customer: %s\n", text)

		analysis := manager.AnalyzeMessage(text)
		insights := manager.ExtractInsights(text)
		next := manager.DetermineNextState(analysis)

		var topic *pkg.Topic
		if analysis.Topic != "" {
			topic = &pkg.Topic{Type: pkg.TopicGeneral, Subject: analysis.Topic}
		} else if analysis.Category != "" {
			topic = &pkg.Topic{Type: pkg.TopicShopping, Subject: analysis.Category}
		}
		manager.UpdateContext(next, topic)

		fmt.Printf("Intent: %s | Sentiment: %s | State: %s\n", analysis.Intent, analysis.Sentiment, next)
		for _, insight := range insights {
			fmt.Printf("Insight: [%s] %s\n", insight.Type, insight.Value)
		}

		if manager.ShouldRedirect() {
			fmt.Printf("Assistant: %s\n", manager.GenerateRedirectPrompt())
		} else if suggestion := manager.GetTransitionSuggestion(); suggestion != nil && suggestion.Topic != "general" {
			fmt.Printf("Transition: %s\n", suggestion.Phrase)
		}

		if next == pkg.StateRecommendation || next == pkg.StateComparison {
			printRecommendations(ctx, service, manager, text)
		}

		if err := repo.Save(ctx, manager.Context()); err != nil {
			logger.Error().Err(err).Msg("Failed to persist session")
		}
	}

	// Browsing events from the widget feed the intent signal analysis.
	events := []pkg.ContextEvent{
		{EventType: pkg.EventProductView, ProductID: "cl-002", CategoryViewed: "clothing", Timestamp: time.Now().Add(-10 * time.Minute)},
		{EventType: pkg.EventProductView, ProductID: "cl-002", CategoryViewed: "clothing", Timestamp: time.Now().Add(-9 * time.Minute)},
		{EventType: pkg.EventSearch, SearchQuery: "winter jacket", Timestamp: time.Now().Add(-8 * time.Minute)},
		{EventType: pkg.EventProductView, ProductID: "cl-005", CategoryViewed: "clothing", Timestamp: time.Now().Add(-6 * time.Minute)},
		{EventType: pkg.EventCartAction, CartAction: pkg.CartAdd, ProductID: "cl-002", Timestamp: time.Now().Add(-2 * time.Minute)},
	}

	intentSignals := signals.Analyze(events)
	output, _ := sonic.MarshalIndent(intentSignals, "", "  ")
	fmt.Printf("\n=== Browsing Signals ===\n%s\n", output)

	stats, _ := sonic.MarshalIndent(manager.Stats(), "", "  ")
	fmt.Printf("\n=== Session Stats ===\n%s\n", stats)

	cacheStats, _ := sonic.MarshalIndent(service.CacheStats(), "", "  ")
	fmt.Printf("\n=== Recommendation Cache ===\n%s\n", cacheStats)
}

// buildRecommendationService wires the full pipeline, backed by the chat
// model when an API key is available and by the static catalog otherwise.
func buildRecommendationService(ctx context.Context, cfg *config.YAMLConfig) *recommend.Service {
	serviceConfig := recommend.ServiceConfig{
		MaxRequests:     cfg.RateLimit.MaxRequests,
		RateLimitWindow: cfg.RateLimitWindow(),
		MaxConcurrent:   cfg.Queue.MaxConcurrent,
		BackoffBase:     cfg.BackoffBaseDelay(),
		BackoffMax:      cfg.BackoffMaxDelay(),
		BackoffFactor:   cfg.Backoff.Factor,
		BackoffAttempts: cfg.Backoff.MaxAttempts,
		MaxResults:      cfg.Recommender.MaxResults,
		CacheSize:       cfg.Cache.Recommendation.MaxSize,
		CacheTTL:        time.Duration(cfg.Cache.Recommendation.TTLMinutes) * time.Minute,
	}

	apiKey := os.Getenv("OPENROUTER_API_KEY")
	if apiKey == "" {
		logger.Info().Msg("OPENROUTER_API_KEY not set, recommendations use the static catalog")
		return recommend.NewService(serviceConfig, recommend.RecommenderFunc(
			func(ctx context.Context, request recommend.Request) ([]pkg.Recommendation, error) {
				return recommend.NewFallbackRecommender().Recommend(ctx, request)
			}))
	}

	recommender, err := recommend.NewModelRecommender(ctx, recommend.ModelConfig{
		APIKey:      apiKey,
		BaseURL:     cfg.Recommender.BaseURL,
		Model:       cfg.Recommender.Model,
		MaxTokens:   cfg.Recommender.MaxTokens,
		Temperature: cfg.Recommender.Temperature,
		MaxResults:  cfg.Recommender.MaxResults,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create model recommender, falling back to static catalog")
		return recommend.NewService(serviceConfig, recommend.RecommenderFunc(
			func(ctx context.Context, request recommend.Request) ([]pkg.Recommendation, error) {
				return recommend.NewFallbackRecommender().Recommend(ctx, request)
			}))
	}
	return recommend.NewService(serviceConfig, recommender)
}

func printRecommendations(ctx context.Context, service *recommend.Service, manager *conversation.Manager, query string) {
	intent := manager.Context().ShoppingIntent
	result, err := service.GetRecommendations(ctx, manager.Context().SessionID, recommend.Request{
		Query:    query,
		Category: intent.Category,
	})
	if err != nil {
		logger.Error().Err(err).Msg("Recommendation lookup failed")
		return
	}

	fmt.Printf("Recommendations (%s):\n", result.Source)
	for _, item := range result.Recommendations {
		fmt.Printf("  - %s ($%.2f) %s\n", item.Name, item.Price, item.Reason)
	}
}
