package conversation

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"shopassist/internal/logger"
	"shopassist/internal/topics"
	"shopassist/pkg"
)

// Config holds the conversation manager's tunable thresholds.
type Config struct {
	// RedirectThreshold is the general-turn count at which a redirect
	// becomes due.
	RedirectThreshold int
	// MaxRedirectAttempts caps how many redirects one session receives,
	// so an uninterested customer is never nagged indefinitely.
	MaxRedirectAttempts int
	// TopicStackLimit bounds the topic stack; the oldest entry is dropped
	// on overflow.
	TopicStackLimit int
	// RecommendConfidence is the shopping-intent confidence needed to move
	// from product discovery to recommendation.
	RecommendConfidence float64
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		RedirectThreshold:   3,
		MaxRedirectAttempts: 3,
		TopicStackLimit:     10,
		RecommendConfidence: 0.6,
	}
}

// Manager owns one session's ConversationContext and drives its state
// machine. Single writer per session; the caller shards by session id.
type Manager struct {
	ctx         *pkg.ConversationContext
	config      Config
	engine      *topics.Engine
	lastMessage string
}

// NewManager creates a manager for a fresh session. Every new session
// starts in the greeting state.
func NewManager(sessionID string, config Config, engine *topics.Engine) *Manager {
	now := time.Now()
	return &Manager{
		ctx: &pkg.ConversationContext{
			SessionID:    sessionID,
			CurrentState: pkg.StateGreeting,
			TopicStack:   []pkg.Topic{},
			Insights:     []pkg.CustomerInsight{},
			StartTime:    now,
			LastActivity: now,
		},
		config: config,
		engine: engine,
	}
}

// Restore wraps a previously persisted context in a manager.
func Restore(ctx *pkg.ConversationContext, config Config, engine *topics.Engine) (*Manager, error) {
	if err := ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("cannot restore session: %w", err)
	}
	return &Manager{ctx: ctx, config: config, engine: engine}, nil
}

// Context returns the managed conversation context.
func (m *Manager) Context() *pkg.ConversationContext {
	return m.ctx
}

// DetermineNextState computes the state transition implied by a message
// analysis and applies the bookkeeping that goes with it.
//
// Comparison and checkout assistance are caller-signal-gated: comparison
// needs two or more distinct product mentions in the analysis, checkout
// assistance needs purchase language on a shopping-intent message.
func (m *Manager) DetermineNextState(analysis pkg.MessageAnalysis) pkg.ConversationState {
	current := m.ctx.CurrentState
	shopping := analysis.Intent == pkg.MessageShopping || analysis.Intent == pkg.MessageMixed

	var next pkg.ConversationState
	switch current {
	case pkg.StateGreeting:
		if shopping {
			next = pkg.StateProductDiscovery
		} else {
			m.IncrementGeneralTurns()
			next = pkg.StateGeneralChat
		}

	case pkg.StateGeneralChat:
		if shopping {
			m.ResetGeneralTurns()
			next = pkg.StateProductDiscovery
		} else {
			m.IncrementGeneralTurns()
			next = pkg.StateGeneralChat
		}

	case pkg.StateProductDiscovery:
		if m.hasSufficientShoppingIntent() {
			next = pkg.StateRecommendation
		} else if !shopping && analysis.ShouldRedirect {
			next = pkg.StateGeneralChat
		} else {
			next = pkg.StateProductDiscovery
		}

	case pkg.StateRecommendation:
		switch {
		case len(analysis.ProductMentions) >= 2:
			next = pkg.StateComparison
		case analysis.PurchaseLanguage && shopping:
			next = pkg.StateCheckoutAssistance
		default:
			next = pkg.StateRecommendation
		}

	case pkg.StateComparison:
		switch {
		case analysis.PurchaseLanguage:
			next = pkg.StateCheckoutAssistance
		case len(analysis.ProductMentions) < 2 && !shopping:
			next = pkg.StateRecommendation
		default:
			next = pkg.StateComparison
		}

	case pkg.StateCheckoutAssistance:
		// No terminal state; a fresh shopping topic restarts discovery.
		if shopping && analysis.Category != "" && analysis.Category != m.ctx.ShoppingIntent.Category {
			next = pkg.StateProductDiscovery
		} else {
			next = pkg.StateCheckoutAssistance
		}

	default:
		// Unknown persisted state sanitizes to general chat.
		next = pkg.StateGeneralChat
	}

	if shopping && analysis.Category != "" {
		m.UpdateShoppingIntent(pkg.ShoppingIntent{
			Identified: true,
			Category:   analysis.Category,
			Confidence: analysis.Confidence,
		})
	}

	if next != current {
		logger.Debug().
			Str("session_id", m.ctx.SessionID).
			Str("from", string(current)).
			Str("to", string(next)).
			Msg("Conversation state transition")
	}

	return next
}

// UpdateContext sets the current state and records a topic if provided.
// The topic stack is capacity-bounded with FIFO eviction.
func (m *Manager) UpdateContext(state pkg.ConversationState, topic *pkg.Topic) {
	m.ctx.CurrentState = state
	m.ctx.LastActivity = time.Now()

	if topic == nil {
		return
	}
	if topic.ID == "" {
		topic.ID = uuid.NewString()
	}
	if topic.Timestamp.IsZero() {
		topic.Timestamp = time.Now()
	}

	m.ctx.TopicStack = append(m.ctx.TopicStack, *topic)
	if len(m.ctx.TopicStack) > m.config.TopicStackLimit {
		m.ctx.TopicStack = m.ctx.TopicStack[1:]
	}

	if topic.Type == pkg.TopicShopping {
		m.ctx.LastShoppingTopic = topic.Subject
	}
}

// IncrementGeneralTurns bumps the consecutive general-chat turn counter.
func (m *Manager) IncrementGeneralTurns() {
	m.ctx.GeneralTurns++
}

// ResetGeneralTurns clears the counter once the customer re-engages with
// shopping.
func (m *Manager) ResetGeneralTurns() {
	m.ctx.GeneralTurns = 0
}

// UpdateShoppingIntent merges the non-zero fields of the partial intent
// into the session's shopping intent.
func (m *Manager) UpdateShoppingIntent(partial pkg.ShoppingIntent) {
	intent := &m.ctx.ShoppingIntent
	if partial.Identified {
		intent.Identified = true
	}
	if partial.Category != "" {
		intent.Category = partial.Category
	}
	if partial.PriceMin > 0 {
		intent.PriceMin = partial.PriceMin
	}
	if partial.PriceMax > 0 {
		intent.PriceMax = partial.PriceMax
	}
	if partial.Confidence > intent.Confidence {
		intent.Confidence = partial.Confidence
	}
}

// ShouldRedirect reports whether the session is due for a shopping
// redirect: enough consecutive general turns, and the attempt cap not yet
// spent. Once the cap is spent it stays false no matter how many general
// turns accrue.
func (m *Manager) ShouldRedirect() bool {
	return m.ctx.GeneralTurns >= m.config.RedirectThreshold &&
		m.ctx.RedirectAttempts < m.config.MaxRedirectAttempts
}

// GenerateRedirectPrompt consumes one redirect attempt and returns a nudge
// back toward shopping, referencing the last shopping topic when known.
func (m *Manager) GenerateRedirectPrompt() string {
	m.ctx.RedirectAttempts++

	ack := m.engine.SelectAcknowledgment(pkg.SentimentNeutral)
	if m.ctx.LastShoppingTopic != "" {
		return fmt.Sprintf("%s By the way, should we get back to shopping for %s?", ack, m.ctx.LastShoppingTopic)
	}
	return fmt.Sprintf("%s I'm happy to chat, and whenever you're ready I can help with your shopping too.", ack)
}

// GetTransitionSuggestion proposes a topic transition for the last
// analyzed message, or nil before any message has been seen.
func (m *Manager) GetTransitionSuggestion() *topics.Transition {
	if m.lastMessage == "" {
		return nil
	}
	transition := m.engine.FindBestTransition(m.lastMessage, topics.PersonalizationContext{
		Category: m.ctx.ShoppingIntent.Category,
	})
	return &transition
}

func (m *Manager) hasSufficientShoppingIntent() bool {
	intent := m.ctx.ShoppingIntent
	if !intent.Identified || intent.Category == "" {
		return false
	}
	specific := intent.PriceMin > 0 || intent.PriceMax > 0
	return intent.Confidence >= m.config.RecommendConfidence || specific
}

// ----------------------------------------------------

// SessionStats summarizes one session for observability.
type SessionStats struct {
	SessionID       string `json:"session_id"`
	State           string `json:"state"`
	TopicCount      int    `json:"topic_count"`
	InsightCount    int    `json:"insight_count"`
	GeneralTurns    int    `json:"general_turns"`
	DurationMinutes int64  `json:"duration_minutes"`
}

// Stats returns statistics for the managed session.
func (m *Manager) Stats() SessionStats {
	stats := SessionStats{
		SessionID:    m.ctx.SessionID,
		State:        string(m.ctx.CurrentState),
		TopicCount:   len(m.ctx.TopicStack),
		InsightCount: len(m.ctx.Insights),
		GeneralTurns: m.ctx.GeneralTurns,
	}
	if !m.ctx.StartTime.IsZero() {
		stats.DurationMinutes = int64(m.ctx.LastActivity.Sub(m.ctx.StartTime).Minutes())
	}
	return stats
}

// ValidateContext checks that a persisted context is safe to hydrate.
func ValidateContext(ctx *pkg.ConversationContext) error {
	if ctx == nil {
		return fmt.Errorf("context cannot be nil")
	}
	if ctx.SessionID == "" {
		return fmt.Errorf("session ID cannot be empty")
	}
	if ctx.CurrentState == "" {
		return fmt.Errorf("session %s has no state", ctx.SessionID)
	}
	return nil
}
