package conversation

import (
	"regexp"
	"strings"

	"shopassist/internal/topics"
	"shopassist/pkg"
)

// Keyword tables for message analysis. Matching is lower-cased substring
// scanning; the tables are fixed at build time.

var positiveWords = []string{
	"love", "great", "awesome", "amazing", "perfect", "excellent",
	"wonderful", "fantastic", "happy", "nice", "good",
}

var negativeWords = []string{
	"hate", "terrible", "awful", "bad", "disappointed", "frustrat",
	"annoying", "broken", "worst", "angry", "sad",
}

var purchaseMarkers = []string{
	"buy", "purchase", "checkout", "order it", "add to cart",
	"i'll take it", "take my money", "ready to pay",
}

// categoryKeywords maps product categories to the nouns that imply them.
var categoryKeywords = map[string][]string{
	"electronics": {"laptop", "phone", "headphone", "computer", "tablet", "camera", "tv", "monitor", "speaker"},
	"clothing":    {"jacket", "shoes", "shirt", "dress", "jeans", "coat", "sweater", "boots", "sneaker"},
	"home":        {"furniture", "sofa", "lamp", "rug", "cookware", "mattress", "blanket"},
	"beauty":      {"makeup", "skincare", "perfume", "lipstick", "moisturizer", "shampoo"},
	"sports":      {"running", "yoga", "bike", "dumbbell", "tennis", "treadmill"},
	"pets":        {"dog food", "cat food", "leash", "pet bed", "litter"},
}

// brandNouns are recognized brand names extracted as entities and counted
// as product mentions.
var brandNouns = []string{
	"apple", "samsung", "sony", "nike", "adidas", "lenovo", "dell",
	"bose", "dyson", "lego", "asus",
}

var currencyPattern = regexp.MustCompile(`\$\d+(?:\.\d+)?`)

// AnalyzeMessage classifies one message's intent, sentiment, and entities.
// The redirect flag folds in the session's accumulated general-chat turns,
// which is why this lives on the manager.
func (m *Manager) AnalyzeMessage(text string) pkg.MessageAnalysis {
	lower := strings.ToLower(text)

	shopping := topics.HasShoppingIntent(text)
	category := detectCategory(lower)
	topicName, topicScore := topics.MatchTopic(text)

	analysis := pkg.MessageAnalysis{
		Sentiment:        detectSentiment(lower),
		Category:         category,
		Entities:         extractEntities(text),
		ProductMentions:  extractProductMentions(text),
		PurchaseLanguage: containsAny(lower, purchaseMarkers),
	}

	shoppingSignals := 0
	if shopping {
		shoppingSignals += 2
	}
	if category != "" {
		shoppingSignals++
	}
	if analysis.PurchaseLanguage {
		shoppingSignals++
	}

	hasGeneralTopic := topicScore >= 0.5
	switch {
	case shoppingSignals > 0 && hasGeneralTopic:
		analysis.Intent = pkg.MessageMixed
		analysis.Topic = topicName
	case shoppingSignals > 0:
		analysis.Intent = pkg.MessageShopping
	default:
		analysis.Intent = pkg.MessageGeneral
		if hasGeneralTopic {
			analysis.Topic = topicName
		}
	}

	analysis.Confidence = scoreConfidence(shoppingSignals, topicScore, len(analysis.Entities))
	analysis.ShouldRedirect = m.ctx.GeneralTurns > 2 && analysis.Intent == pkg.MessageGeneral

	m.lastMessage = text
	return analysis
}

func detectSentiment(lower string) pkg.SentimentLabel {
	positive := 0
	negative := 0
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			positive++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			negative++
		}
	}

	switch {
	case positive > negative:
		return pkg.SentimentPositive
	case negative > positive:
		return pkg.SentimentNegative
	default:
		return pkg.SentimentNeutral
	}
}

func detectCategory(lower string) string {
	for category, words := range categoryKeywords {
		for _, w := range words {
			if strings.Contains(lower, w) {
				return category
			}
		}
	}
	return ""
}

// extractEntities collects capitalized tokens, currency amounts, and
// recognized brand nouns.
func extractEntities(text string) []string {
	seen := make(map[string]struct{})
	var entities []string
	add := func(e string) {
		if _, ok := seen[e]; !ok {
			seen[e] = struct{}{}
			entities = append(entities, e)
		}
	}

	tokens := strings.Fields(text)
	for i, token := range tokens {
		cleaned := strings.Trim(token, ".,!?;:'\"")
		if len(cleaned) < 2 {
			continue
		}
		// Sentence-initial capitalization carries no signal.
		if i > 0 && cleaned[0] >= 'A' && cleaned[0] <= 'Z' {
			add(cleaned)
		}
	}

	for _, amount := range currencyPattern.FindAllString(text, -1) {
		add(amount)
	}

	lower := strings.ToLower(text)
	for _, brand := range brandNouns {
		if strings.Contains(lower, brand) {
			add(brand)
		}
	}

	return entities
}

// extractProductMentions returns the distinct product-like references in a
// message: brand nouns plus mixed-case model names ("MacBook", "ThinkPad").
// Two or more of these signal a comparison conversation.
func extractProductMentions(text string) []string {
	seen := make(map[string]struct{})
	var mentions []string
	add := func(p string) {
		key := strings.ToLower(p)
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			mentions = append(mentions, p)
		}
	}

	lower := strings.ToLower(text)
	for _, brand := range brandNouns {
		if strings.Contains(lower, brand) {
			add(brand)
		}
	}

	for _, token := range strings.Fields(text) {
		cleaned := strings.Trim(token, ".,!?;:'\"")
		if isModelName(cleaned) {
			add(cleaned)
		}
	}

	return mentions
}

// isModelName matches tokens with an interior capital or trailing digits,
// the shape of product model names.
func isModelName(token string) bool {
	if len(token) < 3 || token[0] < 'A' || token[0] > 'Z' {
		return false
	}
	for _, r := range token[1:] {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return true
		}
	}
	return false
}

func containsAny(lower string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// scoreConfidence maps raw signal counts to [0, 1] with diminishing
// returns, so a single weak hit never claims certainty.
func scoreConfidence(shoppingSignals int, topicScore float64, entityCount int) float64 {
	raw := float64(shoppingSignals)*0.4 + topicScore*0.3 + float64(entityCount)*0.1
	const k = 0.35
	c := raw / (raw + k)
	if c > 1.0 {
		return 1.0
	}
	return c
}
