package recommend

import (
	"context"
	"sort"
	"strings"

	"shopassist/pkg"
)

// FallbackRecommender serves a small static catalog when the model
// backend is unavailable or exhausted its retries.
type FallbackRecommender struct {
	catalog []pkg.Recommendation
}

// NewFallbackRecommender creates the fallback with its built-in catalog.
func NewFallbackRecommender() *FallbackRecommender {
	return &FallbackRecommender{
		catalog: []pkg.Recommendation{
			{ID: "el-001", Name: "Wireless Noise-Cancelling Headphones", Brand: "Sony", Price: 279.99, Category: "electronics", Reason: "Popular pick in electronics"},
			{ID: "el-002", Name: "14-inch Ultrabook", Brand: "Lenovo", Price: 1099.00, Category: "electronics", Reason: "Best-selling laptop"},
			{ID: "el-003", Name: "Smart Speaker", Brand: "Bose", Price: 199.00, Category: "electronics", Reason: "Frequently bought together with headphones"},
			{ID: "cl-001", Name: "Waterproof Hiking Boots", Brand: "Nike", Price: 129.99, Category: "clothing", Reason: "Top rated in footwear"},
			{ID: "cl-002", Name: "Down Winter Jacket", Brand: "Adidas", Price: 189.00, Category: "clothing", Reason: "Seasonal favorite"},
			{ID: "hm-001", Name: "Cordless Stick Vacuum", Brand: "Dyson", Price: 449.99, Category: "home", Reason: "Highly reviewed home appliance"},
			{ID: "hm-002", Name: "Weighted Blanket", Price: 79.99, Category: "home", Reason: "Customer favorite for comfort"},
			{ID: "be-001", Name: "Daily Moisturizer SPF 30", Price: 24.99, Category: "beauty", Reason: "Best seller in skincare"},
			{ID: "sp-001", Name: "Adjustable Dumbbell Set", Price: 299.00, Category: "sports", Reason: "Popular home gym pick"},
			{ID: "pe-001", Name: "Orthopedic Pet Bed", Price: 59.99, Category: "pets", Reason: "Top rated for older pets"},
		},
	}
}

// Recommend filters the catalog by category and query, falling back to
// the whole catalog when nothing matches.
func (f *FallbackRecommender) Recommend(_ context.Context, request Request) ([]pkg.Recommendation, error) {
	results := f.ByCategory(request.Category)

	if query := strings.ToLower(strings.TrimSpace(request.Query)); query != "" {
		var matched []pkg.Recommendation
		for _, item := range results {
			if strings.Contains(strings.ToLower(item.Name), query) ||
				strings.Contains(strings.ToLower(item.Brand), query) {
				matched = append(matched, item)
			}
		}
		if len(matched) > 0 {
			results = matched
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Price < results[j].Price
	})

	if request.MaxResults > 0 && len(results) > request.MaxResults {
		results = results[:request.MaxResults]
	}
	return results, nil
}

// ByCategory returns a copy of the catalog entries in the category, or
// the whole catalog when category is empty or unknown.
func (f *FallbackRecommender) ByCategory(category string) []pkg.Recommendation {
	if category == "" {
		return append([]pkg.Recommendation(nil), f.catalog...)
	}

	var results []pkg.Recommendation
	for _, item := range f.catalog {
		if item.Category == category {
			results = append(results, item)
		}
	}
	if len(results) == 0 {
		return append([]pkg.Recommendation(nil), f.catalog...)
	}
	return results
}
