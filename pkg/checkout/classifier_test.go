package checkout

import (
	"testing"

	"ai-skincare-client/pkg/store"
)

func pairWithRoutes(category, premiumRoute, dupeRoute string) store.ProductPair {
	mkOffer := func(route, sku string) []store.Offer {
		return []store.Offer{{
			SKU:           sku,
			Retailer:      "glowmart",
			PriceCents:    1500,
			Currency:      "USD",
			PurchaseRoute: route,
			OutboundURL:   "https://out.example/" + sku,
			InStock:       true,
		}}
	}
	return store.ProductPair{
		Category: category,
		Premium:  store.Product{Name: "Premium " + category, SKU: category + "-p", Offers: mkOffer(premiumRoute, category+"-p")},
		Dupe:     store.Product{Name: "Dupe " + category, SKU: category + "-d", Offers: mkOffer(dupeRoute, category+"-d")},
	}
}

func TestClassifyRouteTypes(t *testing.T) {
	internal := store.RouteInternalCheckout
	affiliate := store.RouteAffiliateOutbound

	tests := []struct {
		name          string
		pairs         []store.ProductPair
		selections    map[string]store.Selection
		wantType      string
		wantInternal  int
		wantAffiliate int
	}{
		{
			name: "mixed routes",
			pairs: []store.ProductPair{
				pairWithRoutes("cleanser", internal, internal),
				pairWithRoutes("sunscreen", affiliate, affiliate),
			},
			wantType:      RouteMixed,
			wantInternal:  1,
			wantAffiliate: 1,
		},
		{
			name: "all internal",
			pairs: []store.ProductPair{
				pairWithRoutes("cleanser", internal, internal),
				pairWithRoutes("moisturizer", internal, internal),
			},
			wantType:     RouteAllInternal,
			wantInternal: 2,
		},
		{
			name: "all affiliate",
			pairs: []store.ProductPair{
				pairWithRoutes("serum", affiliate, affiliate),
			},
			wantType:      RouteAllAffiliate,
			wantAffiliate: 1,
		},
		{
			name:     "empty basket is all internal",
			pairs:    nil,
			wantType: RouteAllInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.pairs, tt.selections)
			if got.RouteType != tt.wantType {
				t.Errorf("routeType = %s, want %s", got.RouteType, tt.wantType)
			}
			if len(got.Internal) != tt.wantInternal {
				t.Errorf("internal = %d, want %d", len(got.Internal), tt.wantInternal)
			}
			if len(got.Affiliate) != tt.wantAffiliate {
				t.Errorf("affiliate = %d, want %d", len(got.Affiliate), tt.wantAffiliate)
			}
		})
	}
}

func TestClassifyDefaultsToDupe(t *testing.T) {
	pair := pairWithRoutes("toner", store.RouteInternalCheckout, store.RouteAffiliateOutbound)

	got := Classify([]store.ProductPair{pair}, nil)
	if len(got.Affiliate) != 1 || got.Affiliate[0].Variant != store.VariantDupe {
		t.Fatalf("unselected category should resolve to dupe: %+v", got)
	}

	got = Classify([]store.ProductPair{pair}, map[string]store.Selection{
		"toner": {Type: store.VariantPremium},
	})
	if len(got.Internal) != 1 || got.Internal[0].Variant != store.VariantPremium {
		t.Fatalf("premium selection not honored: %+v", got)
	}
}

func TestClassifySkipsOfferlessCategories(t *testing.T) {
	pair := store.ProductPair{
		Category: "ampoule",
		Premium:  store.Product{Name: "No offers"},
		Dupe:     store.Product{Name: "Still none"},
	}
	got := Classify([]store.ProductPair{pair}, nil)
	if len(got.Internal)+len(got.Affiliate) != 0 {
		t.Errorf("offerless category should be skipped: %+v", got)
	}
}

func TestClassifyTakesFirstOffer(t *testing.T) {
	pair := pairWithRoutes("cleanser", store.RouteInternalCheckout, store.RouteInternalCheckout)
	pair.Dupe.Offers = append(pair.Dupe.Offers, store.Offer{
		SKU: "cheaper-but-second", PurchaseRoute: store.RouteAffiliateOutbound,
	})
	got := Classify([]store.ProductPair{pair}, nil)
	if len(got.Internal) != 1 || got.Internal[0].Offer.SKU != "cleanser-d" {
		t.Errorf("first offer must win: %+v", got)
	}
}
