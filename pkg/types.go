package pkg

import (
	"time"
)

// Core domain types shared across the conversation and recommendation engine.

// ----------------------------------------------------
// ================ Behavioral events ================

// EventType classifies a single behavioral observation from the widget.
type EventType string

const (
	EventPageView      EventType = "page_view"
	EventSearch        EventType = "search"
	EventCartAction    EventType = "cart_action"
	EventPurchase      EventType = "purchase"
	EventWishlist      EventType = "wishlist_action"
	EventProductView   EventType = "product_view"
	EventFilterApplied EventType = "filter_applied"
)

// SanitizeEventType maps unrecognized event types to page_view so a single
// malformed event never poisons an analysis pass.
func SanitizeEventType(raw string) EventType {
	switch EventType(raw) {
	case EventPageView, EventSearch, EventCartAction, EventPurchase,
		EventWishlist, EventProductView, EventFilterApplied:
		return EventType(raw)
	default:
		return EventPageView
	}
}

// CartAction is the sub-action carried by a cart_action event.
type CartAction string

const (
	CartAdd    CartAction = "add"
	CartRemove CartAction = "remove"
)

// ContextEvent is one immutable behavioral observation produced by the UI
// layer. Analysis windows operate on recency-bounded subsets of these.
type ContextEvent struct {
	Timestamp      time.Time         `json:"timestamp"`
	EventType      EventType         `json:"event_type"`
	ProductID      string            `json:"product_id,omitempty"`
	CategoryViewed string            `json:"category_viewed,omitempty"`
	SearchQuery    string            `json:"search_query,omitempty"`
	CartAction     CartAction        `json:"cart_action,omitempty"`
	WishlistAction string            `json:"wishlist_action,omitempty"`
	SessionID      string            `json:"session_id,omitempty"`
	FiltersApplied map[string]string `json:"filters_applied,omitempty"`
	Price          float64           `json:"price,omitempty"`
	Quantity       int               `json:"quantity,omitempty"`
}

// BrowsingBehavior is an aggregate derived on demand from one session's
// events. It is never persisted independently of its source events.
type BrowsingBehavior struct {
	TotalEvents          int `json:"total_events"`
	UniqueProductsViewed int `json:"unique_products_viewed"`
	CategoriesBrowsed    int `json:"categories_browsed"`
	SearchQueries        int `json:"search_queries"`
	CartAdditions        int `json:"cart_additions"`
	CartRemovals         int `json:"cart_removals"`
}

// ----------------------------------------------------
// ================ Intent signals ================

type PurchaseIntent string

const (
	IntentLow    PurchaseIntent = "low"
	IntentMedium PurchaseIntent = "medium"
	IntentHigh   PurchaseIntent = "high"
)

type BrowsingPattern string

const (
	PatternExploring  BrowsingPattern = "exploring"
	PatternComparing  BrowsingPattern = "comparing"
	PatternReadyToBuy BrowsingPattern = "ready_to_buy"
)

// IntentSignals is the derived behavioral indicator set, recomputed each
// time the event context changes.
type IntentSignals struct {
	PurchaseIntent    PurchaseIntent  `json:"purchase_intent"`
	BrowsingPattern   BrowsingPattern `json:"browsing_pattern"`
	PriceSensitivity  bool            `json:"price_sensitivity"`
	BrandLoyalty      bool            `json:"brand_loyalty"`
	UrgencyIndicators []string        `json:"urgency_indicators"`
}

// ----------------------------------------------------
// ================ Conversation state ================

// ConversationState is the state-machine position of one session.
type ConversationState string

const (
	StateGreeting           ConversationState = "greeting"
	StateGeneralChat        ConversationState = "general_chat"
	StateProductDiscovery   ConversationState = "product_discovery"
	StateRecommendation     ConversationState = "recommendation"
	StateComparison         ConversationState = "comparison"
	StateCheckoutAssistance ConversationState = "checkout_assistance"
)

type TopicType string

const (
	TopicShopping TopicType = "shopping"
	TopicGeneral  TopicType = "general"
)

// Topic is one entry on a session's topic stack.
type Topic struct {
	ID        string    `json:"id"`
	Type      TopicType `json:"type"`
	Subject   string    `json:"subject"`
	Timestamp time.Time `json:"timestamp"`
	Messages  int       `json:"messages"`
	Keywords  []string  `json:"keywords,omitempty"`
}

type InsightType string

const (
	InsightPreference InsightType = "preference"
	InsightNeed       InsightType = "need"
	InsightConcern    InsightType = "concern"
	InsightInterest   InsightType = "interest"
)

type InsightSource string

const (
	SourceExplicit InsightSource = "explicit"
	SourceInferred InsightSource = "inferred"
)

// CustomerInsight is one append-only observation about the customer.
// Repeated mentions produce repeated insights; the duplication is
// signal-strength accumulation, not noise.
type CustomerInsight struct {
	ID         string        `json:"id"`
	Type       InsightType   `json:"type"`
	Value      string        `json:"value"`
	Confidence float64       `json:"confidence"`
	Timestamp  time.Time     `json:"timestamp"`
	Source     InsightSource `json:"source"`
}

// ShoppingIntent captures what the session is shopping for, if anything.
type ShoppingIntent struct {
	Identified bool    `json:"identified"`
	Category   string  `json:"category,omitempty"`
	PriceMin   float64 `json:"price_min,omitempty"`
	PriceMax   float64 `json:"price_max,omitempty"`
	Confidence float64 `json:"confidence"`
}

// ConversationContext is the per-session state owned by the conversation
// manager. It is mutated only through manager methods under a single-writer
// assumption and expires with the session TTL in the session store.
type ConversationContext struct {
	SessionID         string            `json:"session_id"`
	CurrentState      ConversationState `json:"current_state"`
	TopicStack        []Topic           `json:"topic_stack"`
	ShoppingIntent    ShoppingIntent    `json:"shopping_intent"`
	LastShoppingTopic string            `json:"last_shopping_topic,omitempty"`
	RedirectAttempts  int               `json:"redirect_attempts"`
	GeneralTurns      int               `json:"general_turns"`
	Insights          []CustomerInsight `json:"insights"`
	StartTime         time.Time         `json:"start_time"`
	LastActivity      time.Time         `json:"last_activity"`
}

// ----------------------------------------------------
// ================ Message analysis ================

type MessageIntent string

const (
	MessageShopping MessageIntent = "shopping"
	MessageGeneral  MessageIntent = "general"
	MessageMixed    MessageIntent = "mixed"
)

type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNeutral  SentimentLabel = "neutral"
	SentimentNegative SentimentLabel = "negative"
)

// SanitizeSentiment maps unknown labels to neutral.
func SanitizeSentiment(raw string) SentimentLabel {
	switch SentimentLabel(raw) {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return SentimentLabel(raw)
	default:
		return SentimentNeutral
	}
}

// MessageAnalysis is the transient result of analyzing one message. It is
// consumed immediately to drive a state transition and never persisted.
type MessageAnalysis struct {
	Intent           MessageIntent  `json:"intent"`
	Sentiment        SentimentLabel `json:"sentiment"`
	Topic            string         `json:"topic,omitempty"`
	Category         string         `json:"category,omitempty"`
	Entities         []string       `json:"entities,omitempty"`
	Confidence       float64        `json:"confidence"`
	ShouldRedirect   bool           `json:"should_redirect"`
	ProductMentions  []string       `json:"product_mentions,omitempty"`
	PurchaseLanguage bool           `json:"purchase_language"`
}

// ----------------------------------------------------
// ================ Recommendations ================

// Recommendation is one item returned by the recommendation backend.
type Recommendation struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Brand    string  `json:"brand,omitempty"`
	Price    float64 `json:"price,omitempty"`
	Category string  `json:"category,omitempty"`
	Reason   string  `json:"reason,omitempty"`
	Score    float64 `json:"score,omitempty"`
}

// ----------------------------------------------------
// ================ Logging ================

// LogConfig configures the global logger.
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Output     string `yaml:"output"`
	FilePath   string `yaml:"file_path"`
	TimeFormat string `yaml:"time_format"`
}
