package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"ai-skincare-client/pkg/checkout"
	"ai-skincare-client/pkg/protocol"
	"ai-skincare-client/pkg/store"
)

// Contract violations: a live response that omits the field the whole
// operation exists to produce must fail the call, never default.
var (
	ErrMissingAnalysis       = errors.New("analysis response missing analysis payload")
	ErrMissingProductPairs   = errors.New("recommendations response missing productPairs payload")
	ErrMissingCheckoutResult = errors.New("checkout response missing checkout_result payload")
)

// LivePort executes operations against the remote service and runs every
// response through the protocol layer before anything touches state.
type LivePort struct {
	client *Client
}

// NewLivePort creates the remote port over the given transport.
func NewLivePort(client *Client) *LivePort {
	return &LivePort{client: client}
}

func (p *LivePort) post(ctx context.Context, s *store.Session, path string, payload interface{}) (*OpResult, error) {
	body, err := p.client.Do(ctx, s, http.MethodPost, path, payload)
	if err != nil {
		return nil, err
	}
	resp, err := protocol.ParseOperationResponse(body)
	if err != nil {
		return nil, err
	}
	return &OpResult{Patch: resp.Patch, NextState: resp.NextState}, nil
}

func (p *LivePort) SubmitDiagnosis(ctx context.Context, s *store.Session, d *store.Diagnosis) (*OpResult, error) {
	return p.post(ctx, s, "/v1/diagnosis", map[string]interface{}{"diagnosis": d})
}

func (p *LivePort) AttachPhotos(ctx context.Context, s *store.Session, photos []PhotoUpload) (*OpResult, error) {
	return p.post(ctx, s, "/v1/photos", map[string]interface{}{"photos": photos})
}

func (p *LivePort) UseSamplePhotos(ctx context.Context, s *store.Session, setID string) (*OpResult, error) {
	return p.post(ctx, s, "/v1/photos/sample", map[string]interface{}{"sample_photo_set_id": setID})
}

func (p *LivePort) RunAnalysis(ctx context.Context, s *store.Session) (*OpResult, error) {
	res, err := p.post(ctx, s, "/v1/analysis", nil)
	if err != nil {
		return nil, err
	}
	// A recommendation must never be fabricated: analysis missing from a
	// live response is fatal for this call.
	if res.Patch == nil || res.Patch.Analysis == nil {
		return nil, ErrMissingAnalysis
	}
	return res, nil
}

func (p *LivePort) AnswerRiskCheck(ctx context.Context, s *store.Session, acknowledged bool) (*OpResult, error) {
	return p.post(ctx, s, "/v1/risk-check", map[string]interface{}{"acknowledged": acknowledged})
}

func (p *LivePort) SubmitBudget(ctx context.Context, s *store.Session, tier string) (*OpResult, error) {
	return p.post(ctx, s, "/v1/budget", map[string]interface{}{"budget_tier": tier})
}

func (p *LivePort) BuildProductPairs(ctx context.Context, s *store.Session) (*OpResult, error) {
	res, err := p.post(ctx, s, "/v1/recommendations", nil)
	if err != nil {
		return nil, err
	}
	if res.Patch == nil || res.Patch.ProductPairs == nil {
		return nil, ErrMissingProductPairs
	}
	return res, nil
}

func (p *LivePort) Checkout(ctx context.Context, s *store.Session, route checkout.RouteAnalysis) (*OpResult, error) {
	res, err := p.post(ctx, s, "/v1/checkout", map[string]interface{}{
		"route_type": route.RouteType,
		"internal":   route.Internal,
		"affiliate":  route.Affiliate,
	})
	if err != nil {
		return nil, err
	}
	if res.Patch == nil || res.Patch.CheckoutResult == nil {
		return nil, ErrMissingCheckoutResult
	}
	return res, nil
}

func (p *LivePort) ResolveAffiliateItems(ctx context.Context, s *store.Session, items []checkout.SelectedItem) ([]store.Offer, error) {
	body, err := p.client.Do(ctx, s, http.MethodPost, "/v1/affiliate/resolve", map[string]interface{}{"items": items})
	if err != nil {
		return nil, err
	}
	var resp struct {
		Offers []store.Offer `json:"offers"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("malformed affiliate resolution response: %w", err)
	}
	return resp.Offers, nil
}

func (p *LivePort) ReportAffiliateOutcome(ctx context.Context, s *store.Session, outcome AffiliateOutcome) error {
	_, err := p.client.Do(ctx, s, http.MethodPost, "/v1/affiliate/outcome", outcome)
	return err
}
