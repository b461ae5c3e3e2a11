// Package catalog holds the demo-mode fixture data: a fixed product
// catalog, seeded offer generation, sample photo sets, and simulated
// photo QC outcomes. Demo results must be deterministic per seed so a
// demo session replays identically.
package catalog

import (
	"fmt"
	"hash/fnv"
	"math/rand"

	"ai-skincare-client/pkg/store"
)

// Routine categories, in application order.
var Categories = []string{"cleanser", "toner", "serum", "moisturizer", "sunscreen"}

// fixtureProduct is one catalog row before offers are attached.
type fixtureProduct struct {
	Name  string
	Brand string
	SKU   string
	Base  int64 // base price in cents
}

var premiumCatalog = map[string]fixtureProduct{
	"cleanser":    {Name: "Velvet Cloud Cleansing Balm", Brand: "Maison Lumi", SKU: "ML-CLN-001", Base: 4200},
	"toner":       {Name: "Rice Ferment Essence Toner", Brand: "Hanbang Lab", SKU: "HB-TNR-014", Base: 3800},
	"serum":       {Name: "Triple Peptide Repair Serum", Brand: "Derma Atelier", SKU: "DA-SRM-221", Base: 6800},
	"moisturizer": {Name: "Barrier Restore Ceramide Cream", Brand: "Maison Lumi", SKU: "ML-MST-030", Base: 5400},
	"sunscreen":   {Name: "Invisible Shield SPF50+ Fluid", Brand: "Solaire", SKU: "SO-SPF-050", Base: 3600},
}

var dupeCatalog = map[string]fixtureProduct{
	"cleanser":    {Name: "Gentle Melt Cleansing Balm", Brand: "GlowBasics", SKU: "GB-CLN-101", Base: 1400},
	"toner":       {Name: "Soothing Rice Toner", Brand: "PureDaily", SKU: "PD-TNR-102", Base: 900},
	"serum":       {Name: "Peptide Boost Serum", Brand: "GlowBasics", SKU: "GB-SRM-103", Base: 1900},
	"moisturizer": {Name: "Ceramide Daily Cream", Brand: "PureDaily", SKU: "PD-MST-104", Base: 1300},
	"sunscreen":   {Name: "Daily Defense SPF50", Brand: "SunKind", SKU: "SK-SPF-105", Base: 1100},
}

var retailers = []struct {
	Name      string
	Route     string
	Markup    float64
	Affiliate bool
}{
	{Name: "glowcart", Route: store.RouteInternalCheckout, Markup: 1.0},
	{Name: "beautyhub", Route: store.RouteAffiliateOutbound, Markup: 0.95},
	{Name: "dermastore", Route: store.RouteAffiliateOutbound, Markup: 1.08},
}

// Seed derives a stable pseudo-random seed from a session brief id.
func Seed(briefID string) int64 {
	h := fnv.New64a()
	h.Write([]byte(briefID))
	return int64(h.Sum64())
}

// Offers generates the preference-sorted offer list for a product.
// Deterministic per (seed, sku): first offer is always the one checkout
// will take.
func Offers(rng *rand.Rand, p fixtureProduct) []store.Offer {
	offers := make([]store.Offer, 0, len(retailers))
	for _, r := range retailers {
		jitter := 1.0 + (rng.Float64()-0.5)*0.1
		offer := store.Offer{
			SKU:           p.SKU,
			Retailer:      r.Name,
			PriceCents:    int64(float64(p.Base) * r.Markup * jitter),
			Currency:      "USD",
			PurchaseRoute: r.Route,
			InStock:       rng.Float64() > 0.1,
		}
		if r.Route == store.RouteAffiliateOutbound {
			offer.OutboundURL = fmt.Sprintf("https://%s.example/offer/%s", r.Name, p.SKU)
		}
		offers = append(offers, offer)
	}
	return offers
}

// BuildPairs assembles the demo recommendation set for the given
// concerns and budget tier. The premium tier leads with the premium
// offer list ordering left intact; lower tiers still expose both
// variants so the dupe default applies downstream.
func BuildPairs(briefID, budgetTier string) *store.ProductPairs {
	rng := rand.New(rand.NewSource(Seed(briefID)))

	pairs := make([]store.ProductPair, 0, len(Categories))
	for _, cat := range Categories {
		premium := premiumCatalog[cat]
		dupe := dupeCatalog[cat]
		pairs = append(pairs, store.ProductPair{
			Category: cat,
			Premium:  store.Product{Name: premium.Name, Brand: premium.Brand, SKU: premium.SKU, Offers: Offers(rng, premium)},
			Dupe:     store.Product{Name: dupe.Name, Brand: dupe.Brand, SKU: dupe.SKU, Offers: Offers(rng, dupe)},
		})
	}

	am := pairs
	pm := make([]store.ProductPair, 0, len(pairs))
	for _, p := range pairs {
		// Sunscreen is AM-only.
		if p.Category != "sunscreen" {
			pm = append(pm, p)
		}
	}
	return &store.ProductPairs{AM: am, PM: pm}
}

// SamplePhotoSets are the stock photo bundles offered when the user
// declines to upload their own.
var SamplePhotoSets = []string{"sample_set_01", "sample_set_02", "sample_set_03"}

// qcOutcomes weights the simulated photo QC results; passing dominates
// so the demo flow usually sails through.
var qcOutcomes = []string{
	store.QCPassed, store.QCPassed, store.QCPassed, store.QCPassed,
	store.QCTooDark, store.QCBlurry, store.QCFiltered,
}

// SimulateQC produces a deterministic QC verdict for a photo slot.
func SimulateQC(briefID, slot string) string {
	rng := rand.New(rand.NewSource(Seed(briefID + ":" + slot)))
	return qcOutcomes[rng.Intn(len(qcOutcomes))]
}

// DemoAnalysis fabricates a plausible skin assessment from the diagnosis
// answers, deterministic per brief.
func DemoAnalysis(briefID string, diagnosis *store.Diagnosis) *store.Analysis {
	rng := rand.New(rand.NewSource(Seed(briefID + ":analysis")))

	concerns := []string{"hydration", "texture"}
	if diagnosis != nil && len(diagnosis.Concerns) > 0 {
		concerns = diagnosis.Concerns
	}
	scores := make(map[string]float64, len(concerns))
	for _, c := range concerns {
		scores[c] = 0.3 + rng.Float64()*0.5
	}

	risk := "none"
	if diagnosis != nil && diagnosis.Sensitivity == "high" {
		risk = "low"
	}
	return &store.Analysis{
		Summary:    "Your skin shows mild dehydration with an otherwise healthy barrier. A consistent routine should improve texture within weeks.",
		Scores:     scores,
		RiskLevel:  risk,
		Disclaimer: "This is a cosmetic assessment, not a medical diagnosis.",
	}
}

// DemoRoutine derives the routine steps from the categories.
func DemoRoutine() *store.Routine {
	am := make([]store.RoutineStep, 0, len(Categories))
	pm := make([]store.RoutineStep, 0, len(Categories))
	for i, cat := range Categories {
		step := store.RoutineStep{Order: i + 1, Category: cat}
		am = append(am, step)
		if cat != "sunscreen" {
			pm = append(pm, step)
		}
	}
	return &store.Routine{AM: am, PM: pm}
}
