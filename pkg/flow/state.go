// Package flow defines the linear conversation flow states and the
// index-comparison queries the UI uses for progress affordances.
package flow

// State is one step of the linear conversation flow.
type State string

const (
	StateLanding         State = "S0_LANDING"
	StateOpenIntent      State = "S1_OPEN_INTENT"
	StateDiagnosis       State = "S2_DIAGNOSIS"
	StatePhotoOption     State = "S3_PHOTO_OPTION"
	StatePhotoQC         State = "S3a_PHOTO_QC"
	StateAnalysisLoading State = "S4_ANALYSIS_LOADING"
	StateAnalysisSummary State = "S5_ANALYSIS_SUMMARY"
	StateRiskCheck       State = "S6_RISK_CHECK"
	StateBudget          State = "S7_BUDGET"
	StateProductReco     State = "S8_PRODUCT_RECO"
	StateRoutineReview   State = "S9_ROUTINE_REVIEW"
	StateCheckout        State = "S10_CHECKOUT"
	StateSuccess         State = "S11_SUCCESS"
	StateFailure         State = "S11b_FAILURE"
	StateRecovery        State = "S11a_RECOVERY"
	StateRestart         State = "S12_RESTART"

	// Side branch for single-product analysis, outside the main ordering.
	StateProductScan    State = "SP1_PRODUCT_SCAN"
	StateProductVerdict State = "SP2_PRODUCT_VERDICT"
)

// ordering is the canonical linear progression. Progress bars and
// "has this step completed" checks compare indices into this slice.
var ordering = []State{
	StateLanding,
	StateOpenIntent,
	StateDiagnosis,
	StatePhotoOption,
	StatePhotoQC,
	StateAnalysisLoading,
	StateAnalysisSummary,
	StateRiskCheck,
	StateBudget,
	StateProductReco,
	StateRoutineReview,
	StateCheckout,
	StateSuccess,
	StateFailure,
	StateRecovery,
	StateRestart,
}

var indexOf = func() map[State]int {
	m := make(map[State]int, len(ordering))
	for i, s := range ordering {
		m[s] = i
	}
	return m
}()

// Index returns the position of s in the canonical ordering,
// or -1 for side-branch and unknown states.
func Index(s State) int {
	if i, ok := indexOf[s]; ok {
		return i
	}
	return -1
}

// Valid reports whether s is part of the closed state catalog.
func Valid(s State) bool {
	if _, ok := indexOf[s]; ok {
		return true
	}
	return s == StateProductScan || s == StateProductVerdict
}

// SideBranch reports whether s belongs to the single-product side flow.
func SideBranch(s State) bool {
	return s == StateProductScan || s == StateProductVerdict
}

// Reached reports whether current is at or past target in the linear
// ordering. Side-branch states never count as reached.
func Reached(current, target State) bool {
	ci, ti := Index(current), Index(target)
	if ci < 0 || ti < 0 {
		return false
	}
	return ci >= ti
}

// Completed reports whether current is strictly past target.
func Completed(current, target State) bool {
	ci, ti := Index(current), Index(target)
	if ci < 0 || ti < 0 {
		return false
	}
	return ci > ti
}

// Ordering returns a copy of the canonical linear state list.
func Ordering() []State {
	out := make([]State, len(ordering))
	copy(out, ordering)
	return out
}
