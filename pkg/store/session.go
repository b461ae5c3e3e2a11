package store

import "ai-skincare-client/pkg/flow"

// Session modes
const (
	ModeDemo = "demo"
	ModeLive = "live"
)

// Photo slots. Fixed ids the backend and the UI agree on.
const (
	SlotDaylight    = "daylight"
	SlotIndoorWhite = "indoor_white"
)

// Photo QC statuses
const (
	QCPassed   = "passed"
	QCTooDark  = "too_dark"
	QCFiltered = "filtered"
	QCBlurry   = "blurry"
	QCPending  = "pending"
)

// Purchase routes for an offer
const (
	RouteInternalCheckout  = "internal_checkout"
	RouteAffiliateOutbound = "affiliate_outbound"
)

// Product variants within a pair
const (
	VariantPremium = "premium"
	VariantDupe    = "dupe"
)

// Budget tiers
const (
	BudgetEssential = "essential"
	BudgetBalanced  = "balanced"
	BudgetPremium   = "premium"
)

// Diagnosis captures the answers collected during the guided skin interview.
type Diagnosis struct {
	SkinType     string   `json:"skinType,omitempty"`
	Concerns     []string `json:"concerns,omitempty"`
	Sensitivity  string   `json:"sensitivity,omitempty"`
	AgeRange     string   `json:"ageRange,omitempty"`
	CurrentSteps []string `json:"currentSteps,omitempty"`
}

// PhotoRecord tracks one photo slot through upload and quality control.
type PhotoRecord struct {
	Slot       string `json:"slot"`
	SourceID   string `json:"sourceId,omitempty"` // upload id or sample set member
	QCStatus   string `json:"qcStatus"`
	RetryCount int    `json:"retryCount"`
}

// Analysis is the backend's (or demo fixture's) skin assessment.
type Analysis struct {
	Summary    string             `json:"summary"`
	Scores     map[string]float64 `json:"scores,omitempty"` // concern -> 0..1 severity
	RiskLevel  string             `json:"riskLevel,omitempty"`
	RedFlags   []string           `json:"redFlags,omitempty"`
	Disclaimer string             `json:"disclaimer,omitempty"`
}

// RoutineStep is one step of the built AM/PM routine.
type RoutineStep struct {
	Order    int    `json:"order"`
	Category string `json:"category"`
	Note     string `json:"note,omitempty"`
}

// Routine groups the built steps by time of day.
type Routine struct {
	AM []RoutineStep `json:"am,omitempty"`
	PM []RoutineStep `json:"pm,omitempty"`
}

// Offer is a single purchasable listing for a product.
type Offer struct {
	SKU           string `json:"sku"`
	Retailer      string `json:"retailer"`
	PriceCents    int64  `json:"priceCents"`
	Currency      string `json:"currency"`
	PurchaseRoute string `json:"purchaseRoute"`
	OutboundURL   string `json:"outboundUrl,omitempty"` // required when affiliate
	InStock       bool   `json:"inStock"`
}

// Product is one concrete recommendation with its offers,
// preference-sorted upstream (best offer first).
type Product struct {
	Name   string  `json:"name"`
	Brand  string  `json:"brand"`
	SKU    string  `json:"sku"`
	Offers []Offer `json:"offers"`
}

// ProductPair groups a premium pick and its dupe for one routine category.
type ProductPair struct {
	Category string  `json:"category"`
	Premium  Product `json:"premium"`
	Dupe     Product `json:"dupe"`
}

// ProductPairs holds the AM and PM recommendation sets.
type ProductPairs struct {
	AM []ProductPair `json:"am,omitempty"`
	PM []ProductPair `json:"pm,omitempty"`
}

// Selection records which variant/offer the user picked for a category.
type Selection struct {
	Type    string `json:"type"` // premium | dupe
	OfferID string `json:"offerId,omitempty"`
}

// CheckoutResult is the outcome of a checkout attempt.
type CheckoutResult struct {
	Success      bool     `json:"success"`
	OrderID      string   `json:"orderId,omitempty"`
	FailedSKUs   []string `json:"failedSkus,omitempty"`
	FailureCode  string   `json:"failureCode,omitempty"`
	AffiliateURL []string `json:"affiliateUrls,omitempty"`
}

// Session is the single mutable aggregate for one conversation.
// Identity fields (BriefID, TraceID, Mode) are set at creation and never
// overwritten by backend patches. State is mutated only by orchestrator
// operations.
type Session struct {
	BriefID string `json:"briefId"`
	TraceID string `json:"traceId"`
	Mode    string `json:"mode"`

	State    flow.State `json:"state"`
	Language string     `json:"language,omitempty"`

	// Count of real user decisions, distinct from skips.
	ClarificationCount int `json:"clarificationCount"`

	Diagnosis         *Diagnosis              `json:"diagnosis,omitempty"`
	Photos            map[string]*PhotoRecord `json:"photos,omitempty"`
	SamplePhotoSetID  string                  `json:"samplePhotoSetId,omitempty"`
	Analysis          *Analysis               `json:"analysis,omitempty"`
	Routine           *Routine                `json:"routine,omitempty"`
	BudgetTier        string                  `json:"budgetTier,omitempty"`
	ProductPairs      *ProductPairs           `json:"productPairs,omitempty"`
	SelectedOffers    map[string]Offer        `json:"selectedOffers,omitempty"` // sku -> offer
	ProductSelections map[string]Selection    `json:"productSelections,omitempty"`
	CheckoutResult    *CheckoutResult         `json:"checkoutResult,omitempty"`
}

// Clone returns a deep-enough copy for single-writer mutation: maps are
// copied, sub-records are shared (they are replaced wholesale on merge,
// never mutated in place).
func (s *Session) Clone() *Session {
	out := *s
	if s.Photos != nil {
		out.Photos = make(map[string]*PhotoRecord, len(s.Photos))
		for k, v := range s.Photos {
			rec := *v
			out.Photos[k] = &rec
		}
	}
	if s.SelectedOffers != nil {
		out.SelectedOffers = make(map[string]Offer, len(s.SelectedOffers))
		for k, v := range s.SelectedOffers {
			out.SelectedOffers[k] = v
		}
	}
	if s.ProductSelections != nil {
		out.ProductSelections = make(map[string]Selection, len(s.ProductSelections))
		for k, v := range s.ProductSelections {
			out.ProductSelections[k] = v
		}
	}
	return &out
}
