package signals

import (
	"shopassist/pkg"
)

// WindowSize bounds how many of the most recent events participate in the
// windowed checks (purchase detection, filter inspection, brand loyalty).
const WindowSize = 20

// Scoring thresholds for the additive purchase-intent score.
const (
	highIntentScore   = 5
	mediumIntentScore = 2
)

// Analyze converts a session's event history into derived intent signals.
// Pure function of the event list; safe to recompute on every context change.
func Analyze(events []pkg.ContextEvent) pkg.IntentSignals {
	behavior := DeriveBehavior(events)
	window := recentWindow(events, WindowSize)

	return pkg.IntentSignals{
		PurchaseIntent:    scorePurchaseIntent(behavior, events, window),
		BrowsingPattern:   classifyPattern(behavior),
		PriceSensitivity:  detectPriceSensitivity(window),
		BrandLoyalty:      detectBrandLoyalty(window),
		UrgencyIndicators: collectUrgencyIndicators(behavior, window),
	}
}

// scorePurchaseIntent applies the additive scoring rules in order:
// cart additions, removal ratio, recent purchase, volume of product viewing.
// The viewing bonus counts product_view events, not distinct products, so
// six looks at the same product weigh the same as six different ones.
func scorePurchaseIntent(behavior pkg.BrowsingBehavior, events, window []pkg.ContextEvent) pkg.PurchaseIntent {
	score := 0

	if behavior.CartAdditions > 0 {
		score += 3
	}
	if behavior.CartRemovals > behavior.CartAdditions/2 && behavior.CartRemovals > 0 {
		score--
	}
	for _, event := range window {
		if pkg.SanitizeEventType(string(event.EventType)) == pkg.EventPurchase {
			score += 5
			break
		}
	}
	productViews := 0
	for _, event := range events {
		if pkg.SanitizeEventType(string(event.EventType)) == pkg.EventProductView {
			productViews++
		}
	}
	if productViews > 5 {
		score += 2
	}

	switch {
	case score >= highIntentScore:
		return pkg.IntentHigh
	case score >= mediumIntentScore:
		return pkg.IntentMedium
	default:
		return pkg.IntentLow
	}
}

// classifyPattern picks the browsing pattern by priority: cart activity
// beats comparison shopping beats plain exploration.
func classifyPattern(behavior pkg.BrowsingBehavior) pkg.BrowsingPattern {
	if behavior.CartAdditions > 0 {
		return pkg.PatternReadyToBuy
	}
	if behavior.UniqueProductsViewed > 3 && behavior.CategoriesBrowsed <= 2 {
		return pkg.PatternComparing
	}
	return pkg.PatternExploring
}

func detectPriceSensitivity(window []pkg.ContextEvent) bool {
	for _, event := range window {
		if event.FiltersApplied == nil {
			continue
		}
		if _, ok := event.FiltersApplied["price_min"]; ok {
			return true
		}
		if _, ok := event.FiltersApplied["price_max"]; ok {
			return true
		}
	}
	return false
}

// detectBrandLoyalty flags repeated viewing of a narrow product set: more
// than 3 product-bearing events in the window whose distinct-product count
// is less than half the product-bearing event count.
func detectBrandLoyalty(window []pkg.ContextEvent) bool {
	products := make(map[string]struct{})
	withProduct := 0

	for _, event := range window {
		if event.ProductID == "" {
			continue
		}
		withProduct++
		products[event.ProductID] = struct{}{}
	}

	return withProduct > 3 && len(products)*2 < withProduct
}

func collectUrgencyIndicators(behavior pkg.BrowsingBehavior, window []pkg.ContextEvent) []string {
	var indicators []string

	if behavior.CartAdditions > 2 {
		indicators = append(indicators, "multiple_cart_additions")
	}

	productViews := 0
	for _, event := range window {
		if pkg.SanitizeEventType(string(event.EventType)) == pkg.EventProductView {
			productViews++
		}
	}
	if productViews > 5 {
		indicators = append(indicators, "intensive_browsing")
	}

	if behavior.SearchQueries > 3 {
		indicators = append(indicators, "multiple_searches")
	}

	return indicators
}
