package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"shopassist/pkg"
)

// YAMLConfig represents the structure of config.yaml
type YAMLConfig struct {
	Log pkg.LogConfig `yaml:"log"`

	Conversation struct {
		RedirectThreshold   int     `yaml:"redirect_threshold"`
		MaxRedirectAttempts int     `yaml:"max_redirect_attempts"`
		TopicStackLimit     int     `yaml:"topic_stack_limit"`
		RecommendConfidence float64 `yaml:"recommend_confidence"`
	} `yaml:"conversation"`

	Session struct {
		TTLMinutes int `yaml:"ttl_minutes"`
	} `yaml:"session"`

	Cache struct {
		Recommendation CacheConfig `yaml:"recommendation"`
		General        CacheConfig `yaml:"general"`
	} `yaml:"cache"`

	RateLimit struct {
		MaxRequests   int `yaml:"max_requests"`
		WindowSeconds int `yaml:"window_seconds"`
	} `yaml:"rate_limit"`

	Queue struct {
		MaxConcurrent int `yaml:"max_concurrent"`
	} `yaml:"queue"`

	Backoff struct {
		BaseDelayMs int     `yaml:"base_delay_ms"`
		MaxDelayMs  int     `yaml:"max_delay_ms"`
		Factor      float64 `yaml:"factor"`
		MaxAttempts int     `yaml:"max_attempts"`
	} `yaml:"backoff"`

	Recommender struct {
		Model       string  `yaml:"model"`
		BaseURL     string  `yaml:"base_url"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float64 `yaml:"temperature"`
		MaxResults  int     `yaml:"max_results"`
	} `yaml:"recommender"`
}

// CacheConfig holds one cache's size and TTL settings
type CacheConfig struct {
	MaxSize    int `yaml:"max_size"`
	TTLMinutes int `yaml:"ttl_minutes"`
}

// LoadConfig loads configuration from config.yaml
func LoadConfig(filepath string) (*YAMLConfig, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	var config YAMLConfig
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("error parsing YAML: %v", err)
	}

	config.applyDefaults()
	return &config, nil
}

// Default creates a YAMLConfig with all default values, used when no
// config.yaml is present.
func Default() *YAMLConfig {
	config := &YAMLConfig{}
	config.applyDefaults()
	return config
}

func (c *YAMLConfig) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Log.Output == "" {
		c.Log.Output = "stdout"
	}

	if c.Conversation.RedirectThreshold == 0 {
		c.Conversation.RedirectThreshold = 3
	}
	if c.Conversation.MaxRedirectAttempts == 0 {
		c.Conversation.MaxRedirectAttempts = 3
	}
	if c.Conversation.TopicStackLimit == 0 {
		c.Conversation.TopicStackLimit = 10
	}
	if c.Conversation.RecommendConfidence == 0 {
		c.Conversation.RecommendConfidence = 0.6
	}

	if c.Session.TTLMinutes == 0 {
		c.Session.TTLMinutes = 40
	}

	if c.Cache.Recommendation.MaxSize == 0 {
		c.Cache.Recommendation.MaxSize = 50
	}
	if c.Cache.Recommendation.TTLMinutes == 0 {
		c.Cache.Recommendation.TTLMinutes = 15
	}
	if c.Cache.General.MaxSize == 0 {
		c.Cache.General.MaxSize = 100
	}
	if c.Cache.General.TTLMinutes == 0 {
		c.Cache.General.TTLMinutes = 30
	}

	if c.RateLimit.MaxRequests == 0 {
		c.RateLimit.MaxRequests = 100
	}
	if c.RateLimit.WindowSeconds == 0 {
		c.RateLimit.WindowSeconds = 60
	}

	if c.Queue.MaxConcurrent == 0 {
		c.Queue.MaxConcurrent = 3
	}

	if c.Backoff.BaseDelayMs == 0 {
		c.Backoff.BaseDelayMs = 1000
	}
	if c.Backoff.MaxDelayMs == 0 {
		c.Backoff.MaxDelayMs = 30000
	}
	if c.Backoff.Factor == 0 {
		c.Backoff.Factor = 2
	}
	if c.Backoff.MaxAttempts == 0 {
		c.Backoff.MaxAttempts = 5
	}

	if c.Recommender.Model == "" {
		c.Recommender.Model = "openai/gpt-3.5-turbo"
	}
	if c.Recommender.BaseURL == "" {
		c.Recommender.BaseURL = "https://openrouter.ai/api/v1"
	}
	if c.Recommender.MaxTokens == 0 {
		c.Recommender.MaxTokens = 1500
	}
	if c.Recommender.Temperature == 0 {
		c.Recommender.Temperature = 0.2
	}
	if c.Recommender.MaxResults == 0 {
		c.Recommender.MaxResults = 5
	}
}

// SessionTTL returns the session TTL as a duration.
func (c *YAMLConfig) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLMinutes) * time.Minute
}

// RateLimitWindow returns the rate-limit window as a duration.
func (c *YAMLConfig) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimit.WindowSeconds) * time.Second
}

// BackoffBaseDelay returns the backoff base delay as a duration.
func (c *YAMLConfig) BackoffBaseDelay() time.Duration {
	return time.Duration(c.Backoff.BaseDelayMs) * time.Millisecond
}

// BackoffMaxDelay returns the backoff delay ceiling as a duration.
func (c *YAMLConfig) BackoffMaxDelay() time.Duration {
	return time.Duration(c.Backoff.MaxDelayMs) * time.Millisecond
}
