// Package backend provides the dual-mode execution capability: every
// flow operation goes through a Port, implemented locally (DemoPort) or
// against the remote service (LivePort). The orchestrator stays
// port-agnostic.
package backend

import (
	"context"

	"ai-skincare-client/pkg/checkout"
	"ai-skincare-client/pkg/flow"
	"ai-skincare-client/pkg/protocol"
	"ai-skincare-client/pkg/store"
)

// PhotoUpload is one user-provided photo for a slot.
type PhotoUpload struct {
	Slot     string `json:"slot" validate:"required,oneof=daylight indoor_white"`
	SourceID string `json:"sourceId" validate:"required"`
}

// AffiliateOutcome reports what happened after an outbound redirect.
type AffiliateOutcome struct {
	SKU       string `json:"sku"`
	Completed bool   `json:"completed"`
	Reason    string `json:"reason,omitempty"`
}

// OpResult is what a port hands back: a session patch to merge, plus an
// explicit next state when the backend supplied one. Ports never touch
// the session themselves.
type OpResult struct {
	Patch     *protocol.SessionPatch
	NextState flow.State
}

// Port is the capability interface behind every flow operation.
type Port interface {
	SubmitDiagnosis(ctx context.Context, s *store.Session, d *store.Diagnosis) (*OpResult, error)
	AttachPhotos(ctx context.Context, s *store.Session, photos []PhotoUpload) (*OpResult, error)
	UseSamplePhotos(ctx context.Context, s *store.Session, setID string) (*OpResult, error)
	RunAnalysis(ctx context.Context, s *store.Session) (*OpResult, error)
	AnswerRiskCheck(ctx context.Context, s *store.Session, acknowledged bool) (*OpResult, error)
	SubmitBudget(ctx context.Context, s *store.Session, tier string) (*OpResult, error)
	BuildProductPairs(ctx context.Context, s *store.Session) (*OpResult, error)
	Checkout(ctx context.Context, s *store.Session, route checkout.RouteAnalysis) (*OpResult, error)
	ResolveAffiliateItems(ctx context.Context, s *store.Session, items []checkout.SelectedItem) ([]store.Offer, error)
	ReportAffiliateOutcome(ctx context.Context, s *store.Session, outcome AffiliateOutcome) error
}
