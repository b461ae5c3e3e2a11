// Package session owns the client-side session lifecycle: creation,
// patch reconciliation, resume, and restart.
package session

import (
	"ai-skincare-client/pkg/flow"
	"ai-skincare-client/pkg/protocol"
	"ai-skincare-client/pkg/store"
)

// Merge reconciles a backend-provided partial session into the current
// one. It is pure and total: it never panics and never mutates current.
//
// Rules:
//  1. state resolves from patch.NextState, then patch.State, then
//     fallback, then current.State, in that priority;
//  2. identity (BriefID, TraceID, Mode) is carried from current
//     unconditionally, even when the patch forges it;
//  3. Photos and SelectedOffers merge key-by-key, patch keys override,
//     absent keys persist;
//  4. every other field is patch-overwrites-current when set.
func Merge(current *store.Session, patch *protocol.SessionPatch, fallback flow.State) *store.Session {
	out := current.Clone()

	if patch == nil {
		patch = &protocol.SessionPatch{}
	}

	switch {
	case patch.NextState != "":
		out.State = patch.NextState
	case patch.State != "":
		out.State = patch.State
	case fallback != "":
		out.State = fallback
	}

	// Identity is already carried by Clone; patch values are ignored.

	if patch.ClarificationCount != nil {
		out.ClarificationCount = *patch.ClarificationCount
	}
	if patch.Diagnosis != nil {
		out.Diagnosis = patch.Diagnosis
	}
	if patch.SamplePhotoSetID != "" {
		out.SamplePhotoSetID = patch.SamplePhotoSetID
	}
	if patch.Analysis != nil {
		out.Analysis = patch.Analysis
	}
	if patch.Routine != nil {
		out.Routine = patch.Routine
	}
	if patch.BudgetTier != "" {
		out.BudgetTier = patch.BudgetTier
	}
	if patch.ProductPairs != nil {
		out.ProductPairs = patch.ProductPairs
	}
	if patch.ProductSelections != nil {
		out.ProductSelections = patch.ProductSelections
	}
	if patch.CheckoutResult != nil {
		out.CheckoutResult = patch.CheckoutResult
	}

	if len(patch.Photos) > 0 {
		if out.Photos == nil {
			out.Photos = make(map[string]*store.PhotoRecord, len(patch.Photos))
		}
		for slot, rec := range patch.Photos {
			if rec == nil {
				continue
			}
			r := *rec
			out.Photos[slot] = &r
		}
	}
	if len(patch.SelectedOffers) > 0 {
		if out.SelectedOffers == nil {
			out.SelectedOffers = make(map[string]store.Offer, len(patch.SelectedOffers))
		}
		for sku, offer := range patch.SelectedOffers {
			out.SelectedOffers[sku] = offer
		}
	}

	return out
}
