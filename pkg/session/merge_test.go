package session

import (
	"reflect"
	"testing"

	"ai-skincare-client/pkg/flow"
	"ai-skincare-client/pkg/protocol"
	"ai-skincare-client/pkg/store"
)

func baseSession() *store.Session {
	return &store.Session{
		BriefID: "brief-1",
		TraceID: "trace-1",
		Mode:    store.ModeLive,
		State:   flow.StatePhotoOption,
		Photos: map[string]*store.PhotoRecord{
			store.SlotIndoorWhite: {Slot: store.SlotIndoorWhite, QCStatus: store.QCPassed},
		},
		SelectedOffers: map[string]store.Offer{
			"sku-1": {SKU: "sku-1", Retailer: "glowmart", PriceCents: 1299, Currency: "USD", PurchaseRoute: store.RouteInternalCheckout, InStock: true},
		},
		BudgetTier: store.BudgetEssential,
	}
}

func TestMergeEmptyPatchIsIdentity(t *testing.T) {
	s := baseSession()
	got := Merge(s, &protocol.SessionPatch{}, "")
	if !reflect.DeepEqual(got, s) {
		t.Errorf("Merge(s, {}) should be identity:\ngot  %+v\nwant %+v", got, s)
	}

	// With a fallback, only state may differ.
	got = Merge(s, nil, flow.StateAnalysisLoading)
	if got.State != flow.StateAnalysisLoading {
		t.Errorf("state = %s, want fallback", got.State)
	}
	got.State = s.State
	if !reflect.DeepEqual(got, s) {
		t.Error("fallback merge should change nothing but state")
	}
}

func TestMergeIdentityImmutable(t *testing.T) {
	s := baseSession()
	patch := &protocol.SessionPatch{
		BriefID: "forged-brief",
		TraceID: "forged-trace",
		Mode:    store.ModeDemo,
	}
	got := Merge(s, patch, "")
	if got.BriefID != s.BriefID || got.TraceID != s.TraceID || got.Mode != s.Mode {
		t.Errorf("identity hijacked: %s/%s/%s", got.BriefID, got.TraceID, got.Mode)
	}
}

func TestMergeStatePriority(t *testing.T) {
	tests := []struct {
		name     string
		patch    *protocol.SessionPatch
		fallback flow.State
		want     flow.State
	}{
		{"next_state wins", &protocol.SessionPatch{NextState: flow.StateBudget, State: flow.StateRiskCheck}, flow.StateDiagnosis, flow.StateBudget},
		{"state over fallback", &protocol.SessionPatch{State: flow.StateRiskCheck}, flow.StateDiagnosis, flow.StateRiskCheck},
		{"fallback over current", &protocol.SessionPatch{}, flow.StateDiagnosis, flow.StateDiagnosis},
		{"current survives", &protocol.SessionPatch{}, "", flow.StatePhotoOption},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(baseSession(), tt.patch, tt.fallback)
			if got.State != tt.want {
				t.Errorf("state = %s, want %s", got.State, tt.want)
			}
		})
	}
}

func TestMergePhotosMapMergeNotReplace(t *testing.T) {
	s := baseSession()
	patch := &protocol.SessionPatch{
		Photos: map[string]*store.PhotoRecord{
			store.SlotDaylight: {Slot: store.SlotDaylight, QCStatus: store.QCTooDark},
		},
	}
	got := Merge(s, patch, "")
	if got.Photos[store.SlotIndoorWhite] == nil {
		t.Fatal("patching one photo slot must not erase the other")
	}
	if got.Photos[store.SlotIndoorWhite].QCStatus != store.QCPassed {
		t.Error("untouched slot changed")
	}
	if got.Photos[store.SlotDaylight] == nil || got.Photos[store.SlotDaylight].QCStatus != store.QCTooDark {
		t.Error("patched slot not applied")
	}
}

func TestMergeSelectedOffersMapMerge(t *testing.T) {
	s := baseSession()
	patch := &protocol.SessionPatch{
		SelectedOffers: map[string]store.Offer{
			"sku-2": {SKU: "sku-2", Retailer: "dupeshop", PriceCents: 799, Currency: "USD", PurchaseRoute: store.RouteAffiliateOutbound, OutboundURL: "https://out.example/sku-2", InStock: true},
		},
	}
	got := Merge(s, patch, "")
	if len(got.SelectedOffers) != 2 {
		t.Fatalf("selected offers = %d, want 2", len(got.SelectedOffers))
	}
	if _, ok := got.SelectedOffers["sku-1"]; !ok {
		t.Error("existing offer erased by patch")
	}
}

func TestMergeScalarOverwrite(t *testing.T) {
	s := baseSession()
	got := Merge(s, &protocol.SessionPatch{BudgetTier: store.BudgetPremium}, "")
	if got.BudgetTier != store.BudgetPremium {
		t.Errorf("budgetTier = %q", got.BudgetTier)
	}
	// Unset patch field keeps current value.
	got = Merge(s, &protocol.SessionPatch{}, "")
	if got.BudgetTier != store.BudgetEssential {
		t.Errorf("budgetTier = %q, want unchanged", got.BudgetTier)
	}
}

func TestMergeDoesNotMutateCurrent(t *testing.T) {
	s := baseSession()
	Merge(s, &protocol.SessionPatch{
		NextState: flow.StateCheckout,
		Photos:    map[string]*store.PhotoRecord{store.SlotDaylight: {Slot: store.SlotDaylight}},
	}, "")
	if s.State != flow.StatePhotoOption {
		t.Error("Merge mutated input state")
	}
	if _, ok := s.Photos[store.SlotDaylight]; ok {
		t.Error("Merge mutated input photos")
	}
}

func TestManagerRestart(t *testing.T) {
	m := NewManager(nil)
	old := m.New(store.ModeLive, "id")
	old.State = flow.StateCheckout
	old.ClarificationCount = 4

	fresh := m.Restart(old)
	if fresh.Mode != store.ModeLive {
		t.Errorf("mode = %q, want carried", fresh.Mode)
	}
	if fresh.Language != "id" {
		t.Errorf("language = %q, want carried", fresh.Language)
	}
	if fresh.BriefID == old.BriefID || fresh.TraceID == old.TraceID {
		t.Error("restart must regenerate identity")
	}
	if fresh.State != flow.StateLanding || fresh.ClarificationCount != 0 {
		t.Error("restart must not carry progress")
	}
}
