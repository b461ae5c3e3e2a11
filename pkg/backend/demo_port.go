package backend

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"ai-skincare-client/pkg/catalog"
	"ai-skincare-client/pkg/checkout"
	"ai-skincare-client/pkg/protocol"
	"ai-skincare-client/pkg/store"
)

// DemoPort computes every operation locally from fixture data. Results
// are deterministic per brief id so a demo session replays identically.
type DemoPort struct{}

// NewDemoPort creates the offline port.
func NewDemoPort() *DemoPort {
	return &DemoPort{}
}
func (p *DemoPort) SubmitDiagnosis(ctx context.Context, s *store.Session, d *store.Diagnosis) (*OpResult, error) {
	return &OpResult{Patch: &protocol.SessionPatch{Diagnosis: d}}, nil
}

func (p *DemoPort) AttachPhotos(ctx context.Context, s *store.Session, photos []PhotoUpload) (*OpResult, error) {
	patch := &protocol.SessionPatch{Photos: make(map[string]*store.PhotoRecord, len(photos))}
	for _, up := range photos {
		status := catalog.SimulateQC(s.BriefID, up.Slot+":"+up.SourceID)
		retry := 0
		if prev, ok := s.Photos[up.Slot]; ok && prev.QCStatus != store.QCPassed && prev.QCStatus != store.QCPending {
			retry = prev.RetryCount + 1
		}
		patch.Photos[up.Slot] = &store.PhotoRecord{
			Slot:       up.Slot,
			SourceID:   up.SourceID,
			QCStatus:   status,
			RetryCount: retry,
		}
	}
	return &OpResult{Patch: patch}, nil
}

func (p *DemoPort) UseSamplePhotos(ctx context.Context, s *store.Session, setID string) (*OpResult, error) {
	// Sample sets are curated; they always pass QC.
	patch := &protocol.SessionPatch{
		SamplePhotoSetID: setID,
		Photos: map[string]*store.PhotoRecord{
			store.SlotDaylight:    {Slot: store.SlotDaylight, SourceID: setID + "/daylight", QCStatus: store.QCPassed},
			store.SlotIndoorWhite: {Slot: store.SlotIndoorWhite, SourceID: setID + "/indoor_white", QCStatus: store.QCPassed},
		},
	}
	return &OpResult{Patch: patch}, nil
}

func (p *DemoPort) RunAnalysis(ctx context.Context, s *store.Session) (*OpResult, error) {
	return &OpResult{Patch: &protocol.SessionPatch{
		Analysis: catalog.DemoAnalysis(s.BriefID, s.Diagnosis),
		Routine:  catalog.DemoRoutine(),
	}}, nil
}

func (p *DemoPort) AnswerRiskCheck(ctx context.Context, s *store.Session, acknowledged bool) (*OpResult, error) {
	return &OpResult{Patch: &protocol.SessionPatch{}}, nil
}

func (p *DemoPort) SubmitBudget(ctx context.Context, s *store.Session, tier string) (*OpResult, error) {
	return &OpResult{Patch: &protocol.SessionPatch{BudgetTier: tier}}, nil
}

func (p *DemoPort) BuildProductPairs(ctx context.Context, s *store.Session) (*OpResult, error) {
	return &OpResult{Patch: &protocol.SessionPatch{
		ProductPairs: catalog.BuildPairs(s.BriefID, s.BudgetTier),
	}}, nil
}

func (p *DemoPort) Checkout(ctx context.Context, s *store.Session, route checkout.RouteAnalysis) (*OpResult, error) {
	result := &store.CheckoutResult{Success: true}
	if len(route.Internal) > 0 {
		result.OrderID = "demo-" + uuid.NewString()[:8]
	}
	for _, item := range route.Affiliate {
		result.AffiliateURL = append(result.AffiliateURL, item.Offer.OutboundURL)
	}
	// Out-of-stock internal items fail the batch so the recovery flow
	// is reachable in demos.
	for _, item := range route.Internal {
		if !item.Offer.InStock {
			result.Success = false
			result.OrderID = ""
			result.FailureCode = "OUT_OF_STOCK"
			result.FailedSKUs = append(result.FailedSKUs, item.Offer.SKU)
		}
	}
	return &OpResult{Patch: &protocol.SessionPatch{CheckoutResult: result}}, nil
}

func (p *DemoPort) ResolveAffiliateItems(ctx context.Context, s *store.Session, items []checkout.SelectedItem) ([]store.Offer, error) {
	offers := make([]store.Offer, 0, len(items))
	for _, item := range items {
		offer := item.Offer
		if offer.OutboundURL == "" {
			offer.OutboundURL = fmt.Sprintf("https://%s.example/offer/%s", offer.Retailer, offer.SKU)
		}
		offers = append(offers, offer)
	}
	return offers, nil
}

func (p *DemoPort) ReportAffiliateOutcome(ctx context.Context, s *store.Session, outcome AffiliateOutcome) error {
	return nil
}
