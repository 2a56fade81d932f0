package topics

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"shopassist/pkg"
)

func newTestEngine() *Engine {
	return NewEngine(rand.New(rand.NewSource(1)))
}

func TestFindBestTransition(t *testing.T) {
	testcases := []struct {
		name      string
		message   string
		wantTopic string
	}{
		{
			name:      "weather triggers beat threshold",
			message:   "It's so cold and snowy",
			wantTopic: "weather",
		},
		{
			name:      "no keyword hits falls back to general",
			message:   "I had eggs for breakfast",
			wantTopic: "general",
		},
		{
			name:      "tech keywords",
			message:   "my laptop is slow and my phone keeps dying",
			wantTopic: "technology",
		},
		{
			name:      "travel keywords",
			message:   "we booked a flight for our vacation",
			wantTopic: "travel",
		},
		{
			name:      "empty message falls back to general",
			message:   "",
			wantTopic: "general",
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			engine := newTestEngine()
			got := engine.FindBestTransition(tc.message, PersonalizationContext{})
			assert.Equal(t, tc.wantTopic, got.Topic)
		})
	}
}

func TestPersonalization(t *testing.T) {
	engine := newTestEngine()

	t.Run("cold mood resolves comfort word", func(t *testing.T) {
		got := engine.personalize("stay {comfort_word}", PersonalizationContext{Mood: "cold"})
		assert.Equal(t, "stay warm and cozy", got)
	})

	t.Run("hot mood resolves comfort word", func(t *testing.T) {
		got := engine.personalize("stay {comfort_word}", PersonalizationContext{Mood: "hot"})
		assert.Equal(t, "stay cool and comfortable", got)
	})

	t.Run("category and seasonal category substituted", func(t *testing.T) {
		got := engine.personalize("see our {category} and {seasonal_category}", PersonalizationContext{
			Category:         "jackets",
			SeasonalCategory: "winter coats",
		})
		assert.Equal(t, "see our jackets and winter coats", got)
	})

	t.Run("unresolved placeholders become products", func(t *testing.T) {
		got := engine.personalize("try our {category} or {mystery_thing}", PersonalizationContext{})
		assert.Equal(t, "try our products or products", got)
	})
}

func TestHasShoppingIntent(t *testing.T) {
	for _, message := range []string{
		"I'm looking for a winter jacket",
		"Do you have wireless headphones?",
		"i need new running shoes",
		"Can you recommend a good laptop?",
	} {
		assert.True(t, HasShoppingIntent(message), message)
	}

	for _, message := range []string{
		"The weather is lovely today",
		"My dog ate my homework",
		"",
	} {
		assert.False(t, HasShoppingIntent(message), message)
	}
}

func TestSelectAcknowledgment(t *testing.T) {
	engine := newTestEngine()

	positive := engine.SelectAcknowledgment(pkg.SentimentPositive)
	assert.Contains(t, positiveAcknowledgments, positive)

	negative := engine.SelectAcknowledgment(pkg.SentimentNegative)
	assert.Contains(t, empatheticAcknowledgments, negative)

	neutral := engine.SelectAcknowledgment(pkg.SentimentNeutral)
	assert.Contains(t, neutralAcknowledgments, neutral)

	// Unknown labels use the neutral bank.
	unknown := engine.SelectAcknowledgment(pkg.SentimentLabel("confused"))
	assert.Contains(t, neutralAcknowledgments, unknown)
}

func TestTransitionPhraseIsPersonalized(t *testing.T) {
	engine := newTestEngine()
	got := engine.FindBestTransition("It's freezing and the snow won't stop", PersonalizationContext{
		SeasonalCategory: "winter coats",
		Mood:             "cold",
	})

	assert.Equal(t, "weather", got.Topic)
	assert.False(t, strings.Contains(got.Phrase, "{"), "phrase should have no unresolved placeholders")
}
