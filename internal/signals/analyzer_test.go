package signals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopassist/pkg"
)

func productView(id, category string) pkg.ContextEvent {
	return pkg.ContextEvent{
		Timestamp:      time.Now(),
		EventType:      pkg.EventProductView,
		ProductID:      id,
		CategoryViewed: category,
	}
}

func cartEvent(action pkg.CartAction, productID string) pkg.ContextEvent {
	return pkg.ContextEvent{
		Timestamp:  time.Now(),
		EventType:  pkg.EventCartAction,
		CartAction: action,
		ProductID:  productID,
	}
}

func TestDeriveBehaviorInvariant(t *testing.T) {
	events := []pkg.ContextEvent{
		productView("P1", "laptops"),
		productView("P1", "laptops"),
		productView("P2", "laptops"),
		{EventType: pkg.EventSearch, SearchQuery: "gaming laptop"},
		cartEvent(pkg.CartAdd, "P1"),
	}

	behavior := DeriveBehavior(events)

	withProduct := 0
	for _, e := range events {
		if e.ProductID != "" {
			withProduct++
		}
	}
	assert.LessOrEqual(t, behavior.UniqueProductsViewed, withProduct)
	assert.Equal(t, 2, behavior.UniqueProductsViewed)
	assert.Equal(t, 1, behavior.CartAdditions)
	assert.Equal(t, 1, behavior.SearchQueries)
}

func TestAnalyzeReadyToBuyScenario(t *testing.T) {
	events := []pkg.ContextEvent{cartEvent(pkg.CartAdd, "")}
	for i := 0; i < 6; i++ {
		events = append(events, productView("P1", "laptops"))
	}

	result := Analyze(events)

	assert.Equal(t, pkg.IntentHigh, result.PurchaseIntent)
	assert.Equal(t, pkg.PatternReadyToBuy, result.BrowsingPattern)
}

func TestAnalyzePurchaseIntent(t *testing.T) {
	testcases := []struct {
		name   string
		events []pkg.ContextEvent
		want   pkg.PurchaseIntent
	}{
		{
			name:   "empty history is low",
			events: nil,
			want:   pkg.IntentLow,
		},
		{
			name: "single page view is low",
			events: []pkg.ContextEvent{
				{EventType: pkg.EventPageView},
			},
			want: pkg.IntentLow,
		},
		{
			name: "cart addition alone is medium",
			events: []pkg.ContextEvent{
				cartEvent(pkg.CartAdd, "P1"),
			},
			want: pkg.IntentMedium,
		},
		{
			name: "recent purchase is high",
			events: []pkg.ContextEvent{
				productView("P1", "laptops"),
				{EventType: pkg.EventPurchase, ProductID: "P1"},
			},
			want: pkg.IntentHigh,
		},
		{
			name: "removals eat into cart score",
			events: []pkg.ContextEvent{
				cartEvent(pkg.CartAdd, "P1"),
				cartEvent(pkg.CartRemove, "P1"),
			},
			want: pkg.IntentMedium, // +3 -1 = 2
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			result := Analyze(tc.events)
			assert.Equal(t, tc.want, result.PurchaseIntent)
		})
	}
}

func TestAnalyzeBrowsingPattern(t *testing.T) {
	t.Run("comparing within narrow categories", func(t *testing.T) {
		events := []pkg.ContextEvent{
			productView("P1", "laptops"),
			productView("P2", "laptops"),
			productView("P3", "laptops"),
			productView("P4", "laptops"),
		}
		result := Analyze(events)
		assert.Equal(t, pkg.PatternComparing, result.BrowsingPattern)
	})

	t.Run("broad browsing is exploring", func(t *testing.T) {
		events := []pkg.ContextEvent{
			productView("P1", "laptops"),
			productView("P2", "shoes"),
			productView("P3", "kitchen"),
			productView("P4", "beauty"),
		}
		result := Analyze(events)
		assert.Equal(t, pkg.PatternExploring, result.BrowsingPattern)
	})
}

func TestAnalyzePriceSensitivity(t *testing.T) {
	events := []pkg.ContextEvent{
		{
			EventType:      pkg.EventFilterApplied,
			FiltersApplied: map[string]string{"price_max": "500"},
		},
	}
	result := Analyze(events)
	assert.True(t, result.PriceSensitivity)

	result = Analyze([]pkg.ContextEvent{{EventType: pkg.EventFilterApplied}})
	assert.False(t, result.PriceSensitivity)
}

func TestAnalyzeBrandLoyalty(t *testing.T) {
	// Six product-bearing events over two distinct products: narrow set.
	events := []pkg.ContextEvent{
		productView("P1", "laptops"),
		productView("P1", "laptops"),
		productView("P1", "laptops"),
		productView("P2", "laptops"),
		productView("P2", "laptops"),
		productView("P2", "laptops"),
	}
	result := Analyze(events)
	assert.True(t, result.BrandLoyalty)

	// Four distinct products over four events: no loyalty signal.
	events = []pkg.ContextEvent{
		productView("P1", "laptops"),
		productView("P2", "laptops"),
		productView("P3", "laptops"),
		productView("P4", "laptops"),
	}
	result = Analyze(events)
	assert.False(t, result.BrandLoyalty)
}

func TestAnalyzeUrgencyIndicators(t *testing.T) {
	var events []pkg.ContextEvent
	for i := 0; i < 3; i++ {
		events = append(events, cartEvent(pkg.CartAdd, "P1"))
	}
	for i := 0; i < 6; i++ {
		events = append(events, productView("P1", "laptops"))
	}
	for _, q := range []string{"laptop", "gaming laptop", "cheap laptop", "laptop 16gb"} {
		events = append(events, pkg.ContextEvent{EventType: pkg.EventSearch, SearchQuery: q})
	}

	result := Analyze(events)

	require.Len(t, result.UrgencyIndicators, 3)
	assert.Contains(t, result.UrgencyIndicators, "multiple_cart_additions")
	assert.Contains(t, result.UrgencyIndicators, "intensive_browsing")
	assert.Contains(t, result.UrgencyIndicators, "multiple_searches")
}

func TestAnalyzeWindowBoundsOldEvents(t *testing.T) {
	// A purchase outside the most-recent-20 window must not score.
	events := []pkg.ContextEvent{{EventType: pkg.EventPurchase, ProductID: "P0"}}
	for i := 0; i < WindowSize; i++ {
		events = append(events, pkg.ContextEvent{EventType: pkg.EventPageView})
	}

	result := Analyze(events)
	assert.Equal(t, pkg.IntentLow, result.PurchaseIntent)
}
