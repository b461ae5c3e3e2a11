package catalog

import (
	"reflect"
	"testing"

	"ai-skincare-client/pkg/store"
)

func TestBuildPairsIsDeterministicPerBrief(t *testing.T) {
	a := BuildPairs("brief-a", store.BudgetBalanced)
	b := BuildPairs("brief-a", store.BudgetBalanced)
	if !reflect.DeepEqual(a, b) {
		t.Error("same brief id produced different pairs")
	}

	c := BuildPairs("brief-b", store.BudgetBalanced)
	if reflect.DeepEqual(a, c) {
		t.Error("different brief ids produced identical offer pricing")
	}
}

func TestBuildPairsCoversEveryCategory(t *testing.T) {
	pairs := BuildPairs("brief-x", store.BudgetEssential)
	if len(pairs.AM) != len(Categories) {
		t.Fatalf("AM pairs = %d, want %d", len(pairs.AM), len(Categories))
	}
	for _, p := range pairs.AM {
		if p.Premium.SKU == "" || p.Dupe.SKU == "" {
			t.Errorf("category %s missing a variant", p.Category)
		}
		if len(p.Premium.Offers) == 0 || len(p.Dupe.Offers) == 0 {
			t.Errorf("category %s missing offers", p.Category)
		}
	}
}

func TestSunscreenIsMorningOnly(t *testing.T) {
	pairs := BuildPairs("brief-x", store.BudgetPremium)
	for _, p := range pairs.PM {
		if p.Category == "sunscreen" {
			t.Error("sunscreen must not appear in the PM routine")
		}
	}
	found := false
	for _, p := range pairs.AM {
		if p.Category == "sunscreen" {
			found = true
		}
	}
	if !found {
		t.Error("sunscreen missing from the AM routine")
	}
}

func TestAffiliateOffersCarryOutboundURLs(t *testing.T) {
	pairs := BuildPairs("brief-x", store.BudgetBalanced)
	for _, offer := range pairs.AM[0].Premium.Offers {
		switch offer.PurchaseRoute {
		case store.RouteAffiliateOutbound:
			if offer.OutboundURL == "" {
				t.Errorf("affiliate offer %s/%s missing outbound URL", offer.Retailer, offer.SKU)
			}
		case store.RouteInternalCheckout:
			if offer.OutboundURL != "" {
				t.Errorf("internal offer %s/%s should not carry an outbound URL", offer.Retailer, offer.SKU)
			}
		}
	}
}

func TestSimulateQCIsStablePerSlot(t *testing.T) {
	first := SimulateQC("brief-x", store.SlotDaylight)
	for i := 0; i < 5; i++ {
		if got := SimulateQC("brief-x", store.SlotDaylight); got != first {
			t.Fatalf("QC verdict changed between calls: %s vs %s", first, got)
		}
	}
}

func TestDemoAnalysisScoresTrackConcerns(t *testing.T) {
	analysis := DemoAnalysis("brief-x", &store.Diagnosis{
		SkinType: "oily",
		Concerns: []string{"acne", "dullness"},
	})
	if analysis.Summary == "" {
		t.Error("summary empty")
	}
	for _, concern := range []string{"acne", "dullness"} {
		score, ok := analysis.Scores[concern]
		if !ok {
			t.Errorf("missing score for %s", concern)
			continue
		}
		if score < 0 || score > 1 {
			t.Errorf("score for %s = %f, want [0,1]", concern, score)
		}
	}
}
