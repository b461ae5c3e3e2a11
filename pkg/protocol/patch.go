package protocol

import (
	"encoding/json"
	"fmt"

	"ai-skincare-client/pkg/flow"
	"ai-skincare-client/pkg/store"
)

// SessionPatch is a partial session extracted from a backend operation
// response. Identity fields are parsed but the merge engine never applies
// them; they exist only so forged values can be observed and logged.
type SessionPatch struct {
	NextState flow.State `json:"nextState,omitempty"`
	State     flow.State `json:"state,omitempty"`

	BriefID string `json:"briefId,omitempty"`
	TraceID string `json:"traceId,omitempty"`
	Mode    string `json:"mode,omitempty"`

	ClarificationCount *int `json:"clarificationCount,omitempty"`

	Diagnosis         *store.Diagnosis              `json:"diagnosis,omitempty"`
	Photos            map[string]*store.PhotoRecord `json:"photos,omitempty"`
	SamplePhotoSetID  string                        `json:"samplePhotoSetId,omitempty"`
	Analysis          *store.Analysis               `json:"analysis,omitempty"`
	Routine           *store.Routine                `json:"routine,omitempty"`
	BudgetTier        string                        `json:"budgetTier,omitempty"`
	ProductPairs      *store.ProductPairs           `json:"productPairs,omitempty"`
	SelectedOffers    map[string]store.Offer        `json:"selectedOffers,omitempty"`
	ProductSelections map[string]store.Selection    `json:"productSelections,omitempty"`
	CheckoutResult    *store.CheckoutResult         `json:"checkoutResult,omitempty"`
}

// keyAliases maps known backend snake_case spellings onto the camelCase
// canonical keys. Reconciliation happens here, at extraction, so the
// merge engine only ever sees canonical keys.
var keyAliases = map[string]string{
	"next_state":          "nextState",
	"budget_tier":         "budgetTier",
	"product_pairs":       "productPairs",
	"sample_photo_set_id": "samplePhotoSetId",
	"selected_offers":     "selectedOffers",
	"product_selections":  "productSelections",
	"checkout_result":     "checkoutResult",
	"clarification_count": "clarificationCount",
	"brief_id":            "briefId",
	"trace_id":            "traceId",
}

// OperationResponse is the wire shape of a flow-operation reply:
// envelope identity, an optional explicit next state, an optional
// session patch, and an opaque op-specific result the caller decodes.
type OperationResponse struct {
	RequestID string
	TraceID   string
	NextState flow.State
	Patch     *SessionPatch
	Result    json.RawMessage
}

type rawOperationResponse struct {
	Version   string          `json:"version"`
	RequestID string          `json:"request_id"`
	TraceID   string          `json:"trace_id"`
	NextState string          `json:"next_state"`
	Session   json.RawMessage `json:"session"`
	Result    json.RawMessage `json:"result"`
}

// ParseOperationResponse validates the operation envelope and extracts
// the session patch with canonicalized keys. Unlike chat normalization
// this is strict: an unusable envelope is an error, because flow
// operations must not proceed on garbage.
func ParseOperationResponse(body []byte) (*OperationResponse, error) {
	var raw rawOperationResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("malformed operation response: %w", err)
	}
	if raw.Version != EnvelopeVersion {
		return nil, fmt.Errorf("unsupported envelope version %q", raw.Version)
	}
	if raw.RequestID == "" || raw.TraceID == "" {
		return nil, fmt.Errorf("operation response missing request_id or trace_id")
	}

	out := &OperationResponse{
		RequestID: raw.RequestID,
		TraceID:   raw.TraceID,
		NextState: flow.State(raw.NextState),
		Result:    raw.Result,
	}
	if len(raw.Session) > 0 {
		patch, err := ExtractSessionPatch(raw.Session)
		if err != nil {
			return nil, err
		}
		out.Patch = patch
	}
	return out, nil
}

// ExtractSessionPatch decodes a raw session object into a SessionPatch,
// reconciling snake_case aliases into the canonical camelCase keys first.
func ExtractSessionPatch(raw json.RawMessage) (*SessionPatch, error) {
	var loose map[string]json.RawMessage
	if err := json.Unmarshal(raw, &loose); err != nil {
		return nil, fmt.Errorf("malformed session patch: %w", err)
	}

	canonical := make(map[string]json.RawMessage, len(loose))
	for k, v := range loose {
		key := k
		if alias, ok := keyAliases[k]; ok {
			key = alias
		}
		// A canonical key already present wins over its alias.
		if _, exists := canonical[key]; exists && key != k {
			continue
		}
		canonical[key] = v
	}

	rebuilt, err := json.Marshal(canonical)
	if err != nil {
		return nil, err
	}
	var patch SessionPatch
	if err := json.Unmarshal(rebuilt, &patch); err != nil {
		return nil, fmt.Errorf("malformed session patch: %w", err)
	}
	return &patch, nil
}
