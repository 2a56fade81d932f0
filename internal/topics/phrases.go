package topics

import (
	"strings"

	"shopassist/pkg"
)

// shoppingIntentPhrases is the fixed pre-filter list checked before a full
// message analysis is worth running.
var shoppingIntentPhrases = []string{
	"i'm looking for",
	"im looking for",
	"i am looking for",
	"i need",
	"i want to buy",
	"do you have",
	"do you sell",
	"where can i find",
	"show me",
	"i'm shopping for",
	"can you recommend",
	"any recommendations",
	"what do you recommend",
	"help me find",
	"i want to purchase",
}

// HasShoppingIntent reports whether the message contains any known
// shopping-intent phrase. Cheap substring check, case-insensitive.
func HasShoppingIntent(message string) bool {
	lower := strings.ToLower(message)
	for _, phrase := range shoppingIntentPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// Acknowledgment phrase banks, keyed by sentiment. Negative sentiment gets
// the empathetic bank.
var (
	positiveAcknowledgments = []string{
		"That's great to hear!",
		"Love that!",
		"Sounds wonderful!",
		"That's fantastic!",
	}
	neutralAcknowledgments = []string{
		"Got it.",
		"I see.",
		"Makes sense.",
		"Fair enough.",
	}
	empatheticAcknowledgments = []string{
		"I'm sorry to hear that.",
		"That sounds tough.",
		"I understand, that can be frustrating.",
		"That's no fun at all.",
	}
)

// SelectAcknowledgment returns a phrase from the bank matching the
// sentiment, chosen with the engine's injected randomness source.
func (e *Engine) SelectAcknowledgment(sentiment pkg.SentimentLabel) string {
	var bank []string
	switch sentiment {
	case pkg.SentimentPositive:
		bank = positiveAcknowledgments
	case pkg.SentimentNegative:
		bank = empatheticAcknowledgments
	default:
		bank = neutralAcknowledgments
	}
	return bank[e.rng.Intn(len(bank))]
}
