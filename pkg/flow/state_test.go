package flow

import "testing"

func TestIndexOrdering(t *testing.T) {
	tests := []struct {
		name    string
		current State
		target  State
		reached bool
		done    bool
	}{
		{"same state reached not completed", StateDiagnosis, StateDiagnosis, true, false},
		{"later state reached and completed", StateBudget, StateDiagnosis, true, true},
		{"earlier state neither", StateOpenIntent, StateAnalysisSummary, false, false},
		{"side branch never reached", StateProductScan, StateDiagnosis, false, false},
		{"side branch never a target", StateCheckout, StateProductVerdict, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Reached(tt.current, tt.target); got != tt.reached {
				t.Errorf("Reached(%s, %s) = %v, want %v", tt.current, tt.target, got, tt.reached)
			}
			if got := Completed(tt.current, tt.target); got != tt.done {
				t.Errorf("Completed(%s, %s) = %v, want %v", tt.current, tt.target, got, tt.done)
			}
		})
	}
}

func TestIndexUnknown(t *testing.T) {
	if Index(State("NOPE")) != -1 {
		t.Error("unknown state should index to -1")
	}
	if Valid(State("NOPE")) {
		t.Error("unknown state should not be valid")
	}
	if !Valid(StateProductScan) {
		t.Error("side-branch state should be valid")
	}
}

func TestOrderingIsMonotonic(t *testing.T) {
	prev := -1
	for _, s := range Ordering() {
		i := Index(s)
		if i != prev+1 {
			t.Fatalf("ordering index for %s = %d, want %d", s, i, prev+1)
		}
		prev = i
	}
}
