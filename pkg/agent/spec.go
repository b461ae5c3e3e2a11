// Package agent validates requested flow transitions against a
// declarative chip-routing specification. The spec is data, not code:
// the validator never hardcodes transition logic.
package agent

import (
	"encoding/json"
	"fmt"

	"ai-skincare-client/pkg/flow"
)

// Trigger sources
const (
	SourceChip         = "chip"
	SourceAction       = "action"
	SourceTextExplicit = "text_explicit"
)

// ChipRule declares from which states a chip may fire and where it leads.
type ChipRule struct {
	ChipID        string       `json:"chip_id"`
	AllowedStates []flow.State `json:"allowed_states"`
	NextState     flow.State   `json:"next_state"`
}

// Spec is the immutable agent-state specification, loaded once.
type Spec struct {
	Version        string       `json:"version"`
	DefaultState   flow.State   `json:"default_state"`
	States         []flow.State `json:"states"`
	TriggerSources []string     `json:"trigger_sources"`
	Chips          []ChipRule   `json:"chips"`

	chipsByID map[string]*ChipRule
	sources   map[string]bool
}

// LoadSpec parses and indexes an agent-state spec document.
func LoadSpec(data []byte) (*Spec, error) {
	var spec Spec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("malformed agent spec: %w", err)
	}
	if spec.DefaultState == "" {
		return nil, fmt.Errorf("agent spec missing default_state")
	}
	spec.index()
	return &spec, nil
}

func (s *Spec) index() {
	s.chipsByID = make(map[string]*ChipRule, len(s.Chips))
	for i := range s.Chips {
		s.chipsByID[s.Chips[i].ChipID] = &s.Chips[i]
	}
	s.sources = make(map[string]bool, len(s.TriggerSources))
	for _, src := range s.TriggerSources {
		s.sources[src] = true
	}
}

// defaultSpecJSON is the shipped chip-routing table for the skincare
// flow. Kept as a JSON document so product can review and replace it
// without touching validator code.
const defaultSpecJSON = `{
  "version": "1.0",
  "default_state": "S0_LANDING",
  "states": [
    "S0_LANDING", "S1_OPEN_INTENT", "S2_DIAGNOSIS", "S3_PHOTO_OPTION",
    "S3a_PHOTO_QC", "S4_ANALYSIS_LOADING", "S5_ANALYSIS_SUMMARY",
    "S6_RISK_CHECK", "S7_BUDGET", "S8_PRODUCT_RECO", "S9_ROUTINE_REVIEW",
    "S10_CHECKOUT", "S11_SUCCESS", "S11b_FAILURE", "S11a_RECOVERY",
    "S12_RESTART", "SP1_PRODUCT_SCAN", "SP2_PRODUCT_VERDICT"
  ],
  "trigger_sources": ["chip", "action", "text_explicit"],
  "chips": [
    {"chip_id": "chip_get_started", "allowed_states": ["S0_LANDING"], "next_state": "S1_OPEN_INTENT"},
    {"chip_id": "chip_start_diagnosis", "allowed_states": ["S0_LANDING", "S1_OPEN_INTENT"], "next_state": "S2_DIAGNOSIS"},
    {"chip_id": "chip_scan_product", "allowed_states": ["S0_LANDING", "S1_OPEN_INTENT"], "next_state": "SP1_PRODUCT_SCAN"},
    {"chip_id": "chip_add_photos", "allowed_states": ["S2_DIAGNOSIS", "S3a_PHOTO_QC"], "next_state": "S3_PHOTO_OPTION"},
    {"chip_id": "chip_skip_photos", "allowed_states": ["S3_PHOTO_OPTION"], "next_state": "S4_ANALYSIS_LOADING"},
    {"chip_id": "chip_retake_photo", "allowed_states": ["S3a_PHOTO_QC"], "next_state": "S3_PHOTO_OPTION"},
    {"chip_id": "chip_view_analysis", "allowed_states": ["S4_ANALYSIS_LOADING"], "next_state": "S5_ANALYSIS_SUMMARY"},
    {"chip_id": "chip_risk_check", "allowed_states": ["S5_ANALYSIS_SUMMARY"], "next_state": "S6_RISK_CHECK"},
    {"chip_id": "chip_set_budget", "allowed_states": ["S5_ANALYSIS_SUMMARY", "S6_RISK_CHECK"], "next_state": "S7_BUDGET"},
    {"chip_id": "chip_see_products", "allowed_states": ["S7_BUDGET"], "next_state": "S8_PRODUCT_RECO"},
    {"chip_id": "chip_review_routine", "allowed_states": ["S8_PRODUCT_RECO"], "next_state": "S9_ROUTINE_REVIEW"},
    {"chip_id": "chip_checkout", "allowed_states": ["S8_PRODUCT_RECO", "S9_ROUTINE_REVIEW", "S11a_RECOVERY"], "next_state": "S10_CHECKOUT"},
    {"chip_id": "chip_retry_checkout", "allowed_states": ["S11b_FAILURE", "S11a_RECOVERY"], "next_state": "S10_CHECKOUT"},
    {"chip_id": "chip_fix_order", "allowed_states": ["S11b_FAILURE"], "next_state": "S11a_RECOVERY"},
    {"chip_id": "chip_adjust_routine", "allowed_states": ["S11a_RECOVERY"], "next_state": "S9_ROUTINE_REVIEW"},
    {"chip_id": "chip_product_verdict", "allowed_states": ["SP1_PRODUCT_SCAN"], "next_state": "SP2_PRODUCT_VERDICT"},
    {"chip_id": "chip_start_over", "allowed_states": [
      "S1_OPEN_INTENT", "S2_DIAGNOSIS", "S3_PHOTO_OPTION", "S3a_PHOTO_QC",
      "S5_ANALYSIS_SUMMARY", "S6_RISK_CHECK", "S7_BUDGET", "S8_PRODUCT_RECO",
      "S9_ROUTINE_REVIEW", "S10_CHECKOUT", "S11_SUCCESS", "S11b_FAILURE",
      "S11a_RECOVERY", "SP2_PRODUCT_VERDICT"
    ], "next_state": "S12_RESTART"}
  ]
}`

// DefaultSpec returns the shipped chip-routing spec.
func DefaultSpec() *Spec {
	spec, err := LoadSpec([]byte(defaultSpecJSON))
	if err != nil {
		// The shipped document is covered by tests; a parse failure
		// here is a build defect.
		panic(err)
	}
	return spec
}
