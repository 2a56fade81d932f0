package conversation

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopassist/internal/topics"
	"shopassist/pkg"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	engine := topics.NewEngine(rand.New(rand.NewSource(1)))
	return NewManager("sess-1", DefaultConfig(), engine)
}

func TestNewManagerStartsInGreeting(t *testing.T) {
	m := newTestManager(t)
	assert.Equal(t, pkg.StateGreeting, m.Context().CurrentState)
	assert.Equal(t, "sess-1", m.Context().SessionID)
	assert.Empty(t, m.Context().TopicStack)
}

func TestRedirectLifecycle(t *testing.T) {
	m := newTestManager(t)

	// Three consecutive general messages accrue three general turns.
	for i := 0; i < 3; i++ {
		analysis := m.AnalyzeMessage("I watched a documentary yesterday")
		next := m.DetermineNextState(analysis)
		m.UpdateContext(next, nil)
	}

	assert.Equal(t, 3, m.Context().GeneralTurns)
	assert.True(t, m.ShouldRedirect())

	// Each prompt consumes an attempt; the cap makes redirect stop firing.
	for i := 0; i < 3; i++ {
		prompt := m.GenerateRedirectPrompt()
		assert.Contains(t, prompt, "shopping")
	}
	assert.False(t, m.ShouldRedirect())

	// More general turns do not revive the redirect.
	m.IncrementGeneralTurns()
	assert.False(t, m.ShouldRedirect())
}

func TestRedirectPromptReferencesLastShoppingTopic(t *testing.T) {
	m := newTestManager(t)
	m.UpdateContext(pkg.StateProductDiscovery, &pkg.Topic{
		Type:    pkg.TopicShopping,
		Subject: "winter jackets",
	})

	prompt := m.GenerateRedirectPrompt()
	assert.Contains(t, prompt, "winter jackets")
	assert.Contains(t, prompt, "shopping")
	assert.Equal(t, 1, m.Context().RedirectAttempts)
}

func TestDetermineNextStateFromGreeting(t *testing.T) {
	t.Run("general message moves to general chat", func(t *testing.T) {
		m := newTestManager(t)
		analysis := m.AnalyzeMessage("Nice weather we're having")
		assert.Equal(t, pkg.StateGeneralChat, m.DetermineNextState(analysis))
	})

	t.Run("shopping message moves straight to discovery", func(t *testing.T) {
		m := newTestManager(t)
		analysis := m.AnalyzeMessage("I need a new mattress")
		assert.Equal(t, pkg.MessageShopping, analysis.Intent)
		assert.Equal(t, pkg.StateProductDiscovery, m.DetermineNextState(analysis))
	})
}

func TestDiscoveryAdvancesWithSufficientIntent(t *testing.T) {
	m := newTestManager(t)
	m.UpdateContext(pkg.StateProductDiscovery, nil)

	// Vague chatter keeps the session in discovery.
	analysis := m.AnalyzeMessage("hmm let me think")
	assert.Equal(t, pkg.StateProductDiscovery, m.DetermineNextState(analysis))

	// A concrete category with a price bound is specific enough.
	m.UpdateShoppingIntent(pkg.ShoppingIntent{
		Identified: true,
		Category:   "electronics",
		PriceMax:   1500,
	})
	analysis = m.AnalyzeMessage("something for video editing")
	assert.Equal(t, pkg.StateRecommendation, m.DetermineNextState(analysis))
}

func TestRecommendationToComparisonAndCheckout(t *testing.T) {
	t.Run("two product mentions enter comparison", func(t *testing.T) {
		m := newTestManager(t)
		m.UpdateContext(pkg.StateRecommendation, nil)

		analysis := m.AnalyzeMessage("How does the MacBook compare to the ThinkPad?")
		require.GreaterOrEqual(t, len(analysis.ProductMentions), 2)
		assert.Equal(t, pkg.StateComparison, m.DetermineNextState(analysis))
	})

	t.Run("purchase language enters checkout assistance", func(t *testing.T) {
		m := newTestManager(t)
		m.UpdateContext(pkg.StateRecommendation, nil)

		analysis := m.AnalyzeMessage("I need that one, let's checkout")
		assert.True(t, analysis.PurchaseLanguage)
		assert.Equal(t, pkg.StateCheckoutAssistance, m.DetermineNextState(analysis))
	})
}

func TestTopicStackFIFOEviction(t *testing.T) {
	m := newTestManager(t)

	for i := 0; i < 12; i++ {
		m.UpdateContext(pkg.StateGeneralChat, &pkg.Topic{
			Type:    pkg.TopicGeneral,
			Subject: fmt.Sprintf("topic-%d", i),
		})
	}

	stack := m.Context().TopicStack
	require.Len(t, stack, 10)
	assert.Equal(t, "topic-2", stack[0].Subject)
	assert.Equal(t, "topic-11", stack[9].Subject)
}

func TestUpdateContextTracksLastShoppingTopic(t *testing.T) {
	m := newTestManager(t)

	m.UpdateContext(pkg.StateGeneralChat, &pkg.Topic{Type: pkg.TopicGeneral, Subject: "weather"})
	assert.Empty(t, m.Context().LastShoppingTopic)

	m.UpdateContext(pkg.StateProductDiscovery, &pkg.Topic{Type: pkg.TopicShopping, Subject: "headphones"})
	assert.Equal(t, "headphones", m.Context().LastShoppingTopic)
}

func TestUpdateShoppingIntentMerges(t *testing.T) {
	m := newTestManager(t)

	m.UpdateShoppingIntent(pkg.ShoppingIntent{Identified: true, Category: "clothing", Confidence: 0.4})
	m.UpdateShoppingIntent(pkg.ShoppingIntent{PriceMax: 200, Confidence: 0.7})

	intent := m.Context().ShoppingIntent
	assert.True(t, intent.Identified)
	assert.Equal(t, "clothing", intent.Category)
	assert.Equal(t, 200.0, intent.PriceMax)
	assert.Equal(t, 0.7, intent.Confidence)

	// A weaker later signal does not lower confidence.
	m.UpdateShoppingIntent(pkg.ShoppingIntent{Confidence: 0.2})
	assert.Equal(t, 0.7, m.Context().ShoppingIntent.Confidence)
}

func TestRestoreRejectsMalformedContext(t *testing.T) {
	engine := topics.NewEngine(rand.New(rand.NewSource(1)))

	_, err := Restore(nil, DefaultConfig(), engine)
	assert.Error(t, err)

	_, err = Restore(&pkg.ConversationContext{}, DefaultConfig(), engine)
	assert.Error(t, err)

	m, err := Restore(&pkg.ConversationContext{
		SessionID:    "sess-2",
		CurrentState: pkg.StateGeneralChat,
	}, DefaultConfig(), engine)
	require.NoError(t, err)
	assert.Equal(t, pkg.StateGeneralChat, m.Context().CurrentState)
}

func TestGetTransitionSuggestion(t *testing.T) {
	m := newTestManager(t)
	assert.Nil(t, m.GetTransitionSuggestion())

	m.AnalyzeMessage("It's so cold and snowy")
	suggestion := m.GetTransitionSuggestion()
	require.NotNil(t, suggestion)
	assert.Equal(t, "weather", suggestion.Topic)
	assert.False(t, strings.Contains(suggestion.Phrase, "{"))
}
