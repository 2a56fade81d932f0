package recommend

import (
	"context"
	"errors"
	"time"

	"shopassist/internal/cache"
	"shopassist/internal/logger"
	"shopassist/internal/pipeline"
	"shopassist/pkg"
)

// ErrRateLimited is returned when a client has spent its request quota
// for the current window.
var ErrRateLimited = errors.New("rate limit exceeded")

// Result is a recommendation response plus where it came from.
type Result struct {
	Recommendations []pkg.Recommendation `json:"recommendations"`
	Source          string               `json:"source"` // cache, model, fallback
	CacheKey        string               `json:"cache_key"`
}

// ServiceConfig wires the service's throttling and retry knobs.
type ServiceConfig struct {
	MaxRequests     int
	RateLimitWindow time.Duration
	MaxConcurrent   int
	BackoffBase     time.Duration
	BackoffMax      time.Duration
	BackoffFactor   float64
	BackoffAttempts int
	MaxResults      int
	CacheSize       int
	CacheTTL        time.Duration
}

// Service fronts a Recommender with rate limiting, result caching,
// bounded-concurrency queueing, and retries. Model failures degrade to
// the static fallback instead of surfacing an error.
type Service struct {
	config      ServiceConfig
	recommender Recommender
	fallback    *FallbackRecommender
	cache       *cache.Cache[[]pkg.Recommendation]
	limiter     *pipeline.RateLimiter
	queue       *pipeline.Queue
}

// NewService assembles the recommendation pipeline around recommender.
func NewService(config ServiceConfig, recommender Recommender) *Service {
	resultCache := cache.NewRecommendationCache[[]pkg.Recommendation]()
	if config.CacheSize > 0 && config.CacheTTL > 0 {
		resultCache = cache.New[[]pkg.Recommendation](config.CacheSize, config.CacheTTL)
	}

	return &Service{
		config:      config,
		recommender: recommender,
		fallback:    NewFallbackRecommender(),
		cache:       resultCache,
		limiter:     pipeline.NewRateLimiter(config.MaxRequests, config.RateLimitWindow),
		queue:       pipeline.NewQueue(config.MaxConcurrent),
	}
}

// GetRecommendations serves one lookup for clientID. The cache is
// consulted before any quota-priced work; rate limiting applies to
// cache misses only.
func (s *Service) GetRecommendations(ctx context.Context, clientID string, request Request) (*Result, error) {
	if request.MaxResults <= 0 {
		request.MaxResults = s.config.MaxResults
	}
	key := cache.GenerateKey(request.Query, request.ProfileHash, request.ContextHash, request.Category)

	if cached, ok := s.cache.Get(key); ok {
		logger.Debug().Str("cache_key", key).Msg("Recommendation cache hit")
		return &Result{Recommendations: cached, Source: "cache", CacheKey: key}, nil
	}

	if !s.limiter.Allow(clientID) {
		logger.Warn().Str("client_id", clientID).Msg("Recommendation request rate limited")
		return nil, ErrRateLimited
	}

	recommendations, err := s.fetchFromModel(ctx, request)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn().Err(err).Msg("Recommendation model unavailable, serving fallback")
		fallback, _ := s.fallback.Recommend(ctx, request)
		return &Result{Recommendations: fallback, Source: "fallback", CacheKey: key}, nil
	}

	s.cache.Set(key, recommendations)
	return &Result{Recommendations: recommendations, Source: "model", CacheKey: key}, nil
}

// fetchFromModel runs the model call through the queue with retries.
// High-urgency shoppers jump the queue.
func (s *Service) fetchFromModel(ctx context.Context, request Request) ([]pkg.Recommendation, error) {
	priority := 0
	if request.Signals.BrowsingPattern == pkg.PatternReadyToBuy {
		priority = 10
	} else if request.Signals.PurchaseIntent == pkg.IntentHigh {
		priority = 5
	}

	value, err := s.queue.Do(ctx, priority, func(taskCtx context.Context) (any, error) {
		backoff := pipeline.NewBackoff(
			s.config.BackoffBase,
			s.config.BackoffMax,
			s.config.BackoffFactor,
			s.config.BackoffAttempts,
			nil,
		)

		var recommendations []pkg.Recommendation
		err := backoff.Execute(taskCtx, func(callCtx context.Context) error {
			var callErr error
			recommendations, callErr = s.recommender.Recommend(callCtx, request)
			return callErr
		}, func(err error) bool {
			// Cancellation is not retryable.
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		})
		return recommendations, err
	})
	if err != nil {
		return nil, err
	}
	return value.([]pkg.Recommendation), nil
}

// Headers exposes the limiter's rate-limit headers for clientID.
func (s *Service) Headers(clientID string) map[string]string {
	return s.limiter.Headers(clientID)
}

// InvalidateCache clears cached recommendation results.
func (s *Service) InvalidateCache() {
	s.cache.Clear()
}

// CacheStats reports the recommendation cache contents.
func (s *Service) CacheStats() cache.Stats {
	return s.cache.DumpStats()
}
