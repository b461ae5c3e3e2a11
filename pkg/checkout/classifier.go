// Package checkout classifies a selected basket into purchase routes.
// It is a pure derivation layer: no UI knowledge, nothing persisted.
package checkout

import "ai-skincare-client/pkg/store"

// Route types for a checkout batch.
const (
	RouteAllInternal  = "all_internal"
	RouteAllAffiliate = "all_affiliate"
	RouteMixed        = "mixed"
)

// SelectedItem is one category's resolved choice.
type SelectedItem struct {
	Category string      `json:"category"`
	Variant  string      `json:"variant"`
	Offer    store.Offer `json:"offer"`
}

// RouteAnalysis partitions the basket by purchase route. Recomputed on
// demand, never stored on the session.
type RouteAnalysis struct {
	Internal  []SelectedItem `json:"internal"`
	Affiliate []SelectedItem `json:"affiliate"`
	RouteType string         `json:"routeType"`
}

// Classify resolves each pair's selected variant (dupe when unselected),
// takes its first offer (the list is preference-sorted upstream) and
// buckets it by purchase route. Categories without offers are skipped.
func Classify(pairs []store.ProductPair, selections map[string]store.Selection) RouteAnalysis {
	analysis := RouteAnalysis{
		Internal:  []SelectedItem{},
		Affiliate: []SelectedItem{},
	}

	for _, pair := range pairs {
		variant := store.VariantDupe
		if sel, ok := selections[pair.Category]; ok && sel.Type == store.VariantPremium {
			variant = store.VariantPremium
		}

		product := pair.Dupe
		if variant == store.VariantPremium {
			product = pair.Premium
		}
		if len(product.Offers) == 0 {
			continue
		}

		item := SelectedItem{
			Category: pair.Category,
			Variant:  variant,
			Offer:    product.Offers[0],
		}
		if item.Offer.PurchaseRoute == store.RouteAffiliateOutbound {
			analysis.Affiliate = append(analysis.Affiliate, item)
		} else {
			analysis.Internal = append(analysis.Internal, item)
		}
	}

	switch {
	case len(analysis.Affiliate) == 0:
		analysis.RouteType = RouteAllInternal
	case len(analysis.Internal) == 0:
		analysis.RouteType = RouteAllAffiliate
	default:
		analysis.RouteType = RouteMixed
	}
	return analysis
}
