package topics

import (
	"math/rand"
	"regexp"
	"strings"
)

// minTransitionScore is the floor below which matching falls back to the
// general template.
const minTransitionScore = 0.5

// Template is one topic domain with its trigger keywords, a confidence
// weight, and the transition phrases it can produce.
type Template struct {
	Name       string
	Confidence float64
	Triggers   []string
	Phrases    []string
}

// templates is the fixed topic table. Iteration order is the tie-break:
// the first template encountered wins ties.
var templates = []Template{
	{
		Name:       "weather",
		Confidence: 0.85,
		Triggers:   []string{"weather", "cold", "hot", "rain", "snow", "sunny", "freezing", "chilly", "warm", "storm"},
		Phrases: []string{
			"Speaking of the weather, staying {comfort_word} is easier with the right gear — our {seasonal_category} might be just the thing.",
			"Weather like that calls for something {comfort_word}. Want to see our {seasonal_category}?",
		},
	},
	{
		Name:       "travel",
		Confidence: 0.8,
		Triggers:   []string{"travel", "trip", "vacation", "flight", "holiday", "airport", "hotel", "beach"},
		Phrases: []string{
			"A trip like that deserves good preparation — we have {category} that travel really well.",
			"Before you pack, it might be worth browsing our travel-friendly {category}.",
		},
	},
	{
		Name:       "health",
		Confidence: 0.75,
		Triggers:   []string{"health", "tired", "sleep", "exercise", "workout", "gym", "stress", "wellness"},
		Phrases: []string{
			"Taking care of yourself matters — our {category} could support that routine.",
			"On the wellness note, have you seen our {category}?",
		},
	},
	{
		Name:       "technology",
		Confidence: 0.8,
		Triggers:   []string{"phone", "computer", "laptop", "tech", "gadget", "software", "app", "device"},
		Phrases: []string{
			"Since you're into tech, our latest {category} might catch your eye.",
			"That reminds me — we just refreshed our {category} lineup.",
		},
	},
	{
		Name:       "home",
		Confidence: 0.75,
		Triggers:   []string{"house", "home", "apartment", "kitchen", "garden", "furniture", "decor", "renovat"},
		Phrases: []string{
			"Making a space your own is fun — our {category} for the home could help.",
			"For the home front, we carry {category} people love.",
		},
	},
	{
		Name:       "food",
		Confidence: 0.7,
		Triggers:   []string{"food", "cooking", "recipe", "dinner", "restaurant", "coffee", "baking", "meal"},
		Phrases: []string{
			"If you enjoy cooking, our kitchen {category} make it even better.",
			"Food talk always makes me think of our {category} for the kitchen.",
		},
	},
	{
		Name:       "entertainment",
		Confidence: 0.7,
		Triggers:   []string{"movie", "music", "game", "show", "concert", "series", "streaming", "book"},
		Phrases: []string{
			"For your next watch or listen, our {category} can upgrade the experience.",
			"Entertainment nights pair well with the right setup — browse our {category}?",
		},
	},
	{
		Name:       "work",
		Confidence: 0.7,
		Triggers:   []string{"work", "office", "meeting", "job", "deadline", "project", "remote", "desk"},
		Phrases: []string{
			"Long work days go smoother with good gear — our {category} for the office might help.",
			"Speaking of work, we have {category} that make the workday easier.",
		},
	},
	{
		Name:       "fashion",
		Confidence: 0.85,
		Triggers:   []string{"wear", "outfit", "style", "clothes", "dress", "shoes", "fashion", "look"},
		Phrases: []string{
			"Style is personal — our new {category} arrivals might match yours.",
			"If you're thinking outfits, our {seasonal_category} just landed.",
		},
	},
	{
		Name:       "sports",
		Confidence: 0.75,
		Triggers:   []string{"sport", "team", "match", "running", "football", "basketball", "training", "fitness"},
		Phrases: []string{
			"For training or game day, our {category} have you covered.",
			"Sports fans usually like our {category} — worth a look.",
		},
	},
	{
		Name:       "pets",
		Confidence: 0.75,
		Triggers:   []string{"dog", "cat", "pet", "puppy", "kitten", "vet", "animal"},
		Phrases: []string{
			"Pets deserve treats too — our pet {category} are popular.",
			"Since you mentioned your pet, our {category} for pets might be fun to browse.",
		},
	},
	{
		Name:       "beauty",
		Confidence: 0.75,
		Triggers:   []string{"skin", "makeup", "hair", "beauty", "skincare", "cosmetic", "fragrance"},
		Phrases: []string{
			"On the beauty side, our {category} get great reviews.",
			"A little self-care goes a long way — have a look at our {category}.",
		},
	},
	{
		// Zero-trigger fallback; always available when nothing else scores.
		Name:       "general",
		Confidence: 0.3,
		Triggers:   nil,
		Phrases: []string{
			"By the way, is there anything you're shopping for today? I can point you to our {category}.",
			"While we chat — happy to help you find {category} whenever you're ready.",
		},
	},
}

// Transition is a matched topic plus the personalized phrase to emit.
type Transition struct {
	Topic  string  `json:"topic"`
	Phrase string  `json:"phrase"`
	Score  float64 `json:"score"`
}

// PersonalizationContext carries the caller-supplied values substituted
// into transition phrases.
type PersonalizationContext struct {
	Category         string
	SeasonalCategory string
	Mood             string // "cold" or "hot"
}

// Engine matches free text against the topic table and personalizes the
// winning phrase. The randomness source is injected so tests can pin it.
type Engine struct {
	rng *rand.Rand
}

// NewEngine creates an engine around the given randomness source.
func NewEngine(rng *rand.Rand) *Engine {
	return &Engine{rng: rng}
}

// FindBestTransition scores every non-general template by counting trigger
// substrings in the lower-cased message and weighting by the template's
// confidence. Scores below the threshold fall back to the general template.
func (e *Engine) FindBestTransition(message string, pctx PersonalizationContext) Transition {
	best, bestScore := bestMatch(message)

	if bestScore < minTransitionScore {
		best = templateByName("general")
		bestScore = 0
	}

	phrase := best.Phrases[e.rng.Intn(len(best.Phrases))]
	return Transition{
		Topic:  best.Name,
		Phrase: e.personalize(phrase, pctx),
		Score:  bestScore,
	}
}

// MatchTopic reports the best-scoring topic for a message without
// producing a phrase. Callers use it to tell general-topic chatter apart
// from messages with no topic at all.
func MatchTopic(message string) (string, float64) {
	best, score := bestMatch(message)
	if score < minTransitionScore {
		return "general", 0
	}
	return best.Name, score
}

func bestMatch(message string) (*Template, float64) {
	lower := strings.ToLower(message)

	best := templateByName("general")
	bestScore := 0.0

	for i := range templates {
		tmpl := &templates[i]
		if tmpl.Name == "general" {
			continue
		}

		hits := 0
		for _, trigger := range tmpl.Triggers {
			if strings.Contains(lower, trigger) {
				hits++
			}
		}

		score := float64(hits) * tmpl.Confidence
		if score > bestScore {
			bestScore = score
			best = tmpl
		}
	}

	return best, bestScore
}

func templateByName(name string) *Template {
	for i := range templates {
		if templates[i].Name == name {
			return &templates[i]
		}
	}
	return &templates[len(templates)-1]
}

var placeholderPattern = regexp.MustCompile(`\{[^}]*\}`)

// personalize resolves known placeholders from the context and replaces any
// leftover placeholder with the literal word "products".
func (e *Engine) personalize(phrase string, pctx PersonalizationContext) string {
	if pctx.Category != "" {
		phrase = strings.ReplaceAll(phrase, "{category}", pctx.Category)
	}
	if pctx.SeasonalCategory != "" {
		phrase = strings.ReplaceAll(phrase, "{seasonal_category}", pctx.SeasonalCategory)
	}

	switch pctx.Mood {
	case "cold":
		phrase = strings.ReplaceAll(phrase, "{comfort_word}", "warm and cozy")
	case "hot":
		phrase = strings.ReplaceAll(phrase, "{comfort_word}", "cool and comfortable")
	}

	return placeholderPattern.ReplaceAllString(phrase, "products")
}
