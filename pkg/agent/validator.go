package agent

import "ai-skincare-client/pkg/flow"

// Rejection reasons. Typed values, never errors: a blocked transition is
// an expected outcome the caller logs and ignores.
const (
	ReasonUnknownTriggerSource    = "UNKNOWN_TRIGGER_SOURCE"
	ReasonChipUnknown             = "CHIP_UNKNOWN"
	ReasonChipNextStateMismatch   = "CHIP_NEXT_STATE_MISMATCH"
	ReasonChipNotAllowedFromState = "CHIP_NOT_ALLOWED_FROM_STATE"
	ReasonNoChipRoute             = "NO_CHIP_ROUTE"
)

// chipAliases maps legacy and shorthand chip ids onto canonical ones.
var chipAliases = map[string]string{
	"start_diagnosis": "chip_start_diagnosis",
	"diagnose":        "chip_start_diagnosis",
	"add_photos":      "chip_add_photos",
	"upload_photos":   "chip_add_photos",
	"skip_photos":     "chip_skip_photos",
	"budget":          "chip_set_budget",
	"checkout":        "chip_checkout",
	"buy_now":         "chip_checkout",
	"restart":         "chip_start_over",
	"start_over":      "chip_start_over",
	"scan_product":    "chip_scan_product",
	"retake":          "chip_retake_photo",
}

// TransitionRequest describes a requested next state and its trigger.
type TransitionRequest struct {
	FromState          flow.State
	TriggerSource      string
	TriggerID          string
	RequestedNextState flow.State
}

// TransitionResult is the validator's verdict.
type TransitionResult struct {
	OK                 bool
	NextState          flow.State
	Reason             string
	CanonicalTriggerID string
}

// Validator checks requested transitions against the loaded spec.
type Validator struct {
	spec *Spec
}

// NewValidator creates a validator over an immutable spec.
func NewValidator(spec *Spec) *Validator {
	if spec == nil {
		spec = DefaultSpec()
	}
	return &Validator{spec: spec}
}

// CanonicalChipID resolves a chip id through the alias table.
func CanonicalChipID(id string) string {
	if canonical, ok := chipAliases[id]; ok {
		return canonical
	}
	return id
}

// Validate applies the transition rules:
//  1. requesting the current state is always accepted (idempotent no-op);
//  2. unknown trigger sources are rejected outright;
//  3. chip triggers must match the chip's declared next_state AND fire
//     from one of its allowed states; each mismatch gets its own reason;
//  4. action and explicit-text triggers borrow the chip authorization
//     graph: accepted iff some chip reaches the requested state from the
//     current one.
func (v *Validator) Validate(req TransitionRequest) TransitionResult {
	canonical := CanonicalChipID(req.TriggerID)

	if req.RequestedNextState == req.FromState {
		return TransitionResult{OK: true, NextState: req.FromState, CanonicalTriggerID: canonical}
	}

	if !v.spec.sources[req.TriggerSource] {
		return TransitionResult{Reason: ReasonUnknownTriggerSource, CanonicalTriggerID: canonical}
	}

	if req.TriggerSource == SourceChip {
		rule, ok := v.spec.chipsByID[canonical]
		if !ok {
			return TransitionResult{Reason: ReasonChipUnknown, CanonicalTriggerID: canonical}
		}
		if rule.NextState != req.RequestedNextState {
			return TransitionResult{Reason: ReasonChipNextStateMismatch, CanonicalTriggerID: canonical}
		}
		if !stateAllowed(rule.AllowedStates, req.FromState) {
			return TransitionResult{Reason: ReasonChipNotAllowedFromState, CanonicalTriggerID: canonical}
		}
		return TransitionResult{OK: true, NextState: rule.NextState, CanonicalTriggerID: canonical}
	}

	// action / text_explicit: reachability via any chip.
	for i := range v.spec.Chips {
		rule := &v.spec.Chips[i]
		if rule.NextState == req.RequestedNextState && stateAllowed(rule.AllowedStates, req.FromState) {
			return TransitionResult{OK: true, NextState: rule.NextState, CanonicalTriggerID: canonical}
		}
	}
	return TransitionResult{Reason: ReasonNoChipRoute, CanonicalTriggerID: canonical}
}

func stateAllowed(allowed []flow.State, s flow.State) bool {
	for _, a := range allowed {
		if a == s {
			return true
		}
	}
	return false
}
