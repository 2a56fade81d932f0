package conversation

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"shopassist/pkg"
)

// Insight markers. Each match yields one explicit-source insight; repeated
// mentions across a session accumulate rather than deduplicate.

var preferenceMarkers = []string{"i love", "i like", "i prefer", "my favorite is", "i'm a fan of"}

var needMarkers = []string{"i need", "i want", "i'm looking for", "im looking for", "i am looking for"}

var concernMarkers = []string{"budget", "cheap", "too expensive", "can't afford", "cant afford", "good price", "on sale", "discount"}

const extractedInsightConfidence = 0.8

// maxInsightValueLen caps how much trailing text one insight captures.
const maxInsightValueLen = 60

// ExtractInsights scans a message for preference, need, and concern
// markers, appends the matches to the session context, and returns them.
func (m *Manager) ExtractInsights(text string) []pkg.CustomerInsight {
	lower := strings.ToLower(text)
	var found []pkg.CustomerInsight

	for _, marker := range preferenceMarkers {
		if value, ok := valueAfterMarker(lower, marker); ok {
			found = append(found, newInsight(pkg.InsightPreference, value))
		}
	}
	for _, marker := range needMarkers {
		if value, ok := valueAfterMarker(lower, marker); ok {
			found = append(found, newInsight(pkg.InsightNeed, value))
		}
	}
	for _, marker := range concernMarkers {
		if strings.Contains(lower, marker) {
			found = append(found, newInsight(pkg.InsightConcern, "price_sensitive"))
			break
		}
	}

	m.ctx.Insights = append(m.ctx.Insights, found...)
	return found
}

func newInsight(insightType pkg.InsightType, value string) pkg.CustomerInsight {
	return pkg.CustomerInsight{
		ID:         uuid.NewString(),
		Type:       insightType,
		Value:      value,
		Confidence: extractedInsightConfidence,
		Timestamp:  time.Now(),
		Source:     pkg.SourceExplicit,
	}
}

// valueAfterMarker returns the text following a marker, trimmed to the end
// of the clause and capped in length.
func valueAfterMarker(lower, marker string) (string, bool) {
	idx := strings.Index(lower, marker)
	if idx < 0 {
		return "", false
	}

	rest := strings.TrimSpace(lower[idx+len(marker):])
	if rest == "" {
		return "", false
	}

	if end := strings.IndexAny(rest, ".,!?;"); end > 0 {
		rest = rest[:end]
	}
	if len(rest) > maxInsightValueLen {
		rest = rest[:maxInsightValueLen]
	}
	return strings.TrimSpace(rest), true
}
