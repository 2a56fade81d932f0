package signals

import (
	"shopassist/pkg"
)

// DeriveBehavior aggregates a session's events into a BrowsingBehavior.
// The aggregate is recomputed on demand and never stored on its own.
func DeriveBehavior(events []pkg.ContextEvent) pkg.BrowsingBehavior {
	products := make(map[string]struct{})
	categories := make(map[string]struct{})
	queries := make(map[string]struct{})

	behavior := pkg.BrowsingBehavior{TotalEvents: len(events)}

	for _, event := range events {
		if event.ProductID != "" {
			products[event.ProductID] = struct{}{}
		}
		if event.CategoryViewed != "" {
			categories[event.CategoryViewed] = struct{}{}
		}
		if event.SearchQuery != "" {
			queries[event.SearchQuery] = struct{}{}
		}
		if pkg.SanitizeEventType(string(event.EventType)) == pkg.EventCartAction {
			switch event.CartAction {
			case pkg.CartAdd:
				behavior.CartAdditions++
			case pkg.CartRemove:
				behavior.CartRemovals++
			}
		}
	}

	behavior.UniqueProductsViewed = len(products)
	behavior.CategoriesBrowsed = len(categories)
	behavior.SearchQueries = len(queries)

	return behavior
}

// recentWindow returns the most recent n events. Events arrive in
// chronological order, so the tail of the slice is the freshest.
func recentWindow(events []pkg.ContextEvent, n int) []pkg.ContextEvent {
	if len(events) <= n {
		return events
	}
	return events[len(events)-n:]
}
