package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-skincare-client/internal/dto"
	"ai-skincare-client/internal/pkg/logger"
	"ai-skincare-client/internal/repository/memory"
	"ai-skincare-client/pkg/agent"
	"ai-skincare-client/pkg/backend"
	"ai-skincare-client/pkg/checkout"
	"ai-skincare-client/pkg/flow"
	"ai-skincare-client/pkg/protocol"
	"ai-skincare-client/pkg/session"
	"ai-skincare-client/pkg/store"
)

// fakePort scripts per-operation results so tests control exactly what
// the backend hands back.
type fakePort struct {
	attachResult   *backend.OpResult
	checkoutResult *backend.OpResult
	analysisResult *backend.OpResult
	opErr          error
	blockOn        chan struct{}

	mu    sync.Mutex
	calls []string
}

func (f *fakePort) record(op string) {
	f.mu.Lock()
	f.calls = append(f.calls, op)
	f.mu.Unlock()
}

func (f *fakePort) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakePort) SubmitDiagnosis(ctx context.Context, s *store.Session, d *store.Diagnosis) (*backend.OpResult, error) {
	f.record("submit_diagnosis")
	if f.blockOn != nil {
		<-f.blockOn
	}
	if f.opErr != nil {
		return nil, f.opErr
	}
	return &backend.OpResult{Patch: &protocol.SessionPatch{Diagnosis: d}}, nil
}

func (f *fakePort) AttachPhotos(ctx context.Context, s *store.Session, photos []backend.PhotoUpload) (*backend.OpResult, error) {
	f.record("attach_photos")
	if f.opErr != nil {
		return nil, f.opErr
	}
	return f.attachResult, nil
}

func (f *fakePort) UseSamplePhotos(ctx context.Context, s *store.Session, setID string) (*backend.OpResult, error) {
	f.record("use_sample_photos")
	return &backend.OpResult{Patch: &protocol.SessionPatch{SamplePhotoSetID: setID}}, nil
}

func (f *fakePort) RunAnalysis(ctx context.Context, s *store.Session) (*backend.OpResult, error) {
	f.record("run_analysis")
	if f.analysisResult != nil {
		return f.analysisResult, nil
	}
	return &backend.OpResult{Patch: &protocol.SessionPatch{Analysis: &store.Analysis{Summary: "ok"}}}, nil
}

func (f *fakePort) AnswerRiskCheck(ctx context.Context, s *store.Session, acknowledged bool) (*backend.OpResult, error) {
	f.record("answer_risk_check")
	return &backend.OpResult{}, nil
}

func (f *fakePort) SubmitBudget(ctx context.Context, s *store.Session, tier string) (*backend.OpResult, error) {
	f.record("submit_budget")
	return &backend.OpResult{Patch: &protocol.SessionPatch{BudgetTier: tier}}, nil
}

func (f *fakePort) BuildProductPairs(ctx context.Context, s *store.Session) (*backend.OpResult, error) {
	f.record("build_product_pairs")
	return &backend.OpResult{Patch: &protocol.SessionPatch{ProductPairs: &store.ProductPairs{}}}, nil
}

func (f *fakePort) Checkout(ctx context.Context, s *store.Session, route checkout.RouteAnalysis) (*backend.OpResult, error) {
	f.record("checkout")
	if f.opErr != nil {
		return nil, f.opErr
	}
	return f.checkoutResult, nil
}

func (f *fakePort) ResolveAffiliateItems(ctx context.Context, s *store.Session, items []checkout.SelectedItem) ([]store.Offer, error) {
	f.record("resolve_affiliate")
	return nil, nil
}

func (f *fakePort) ReportAffiliateOutcome(ctx context.Context, s *store.Session, outcome backend.AffiliateOutcome) error {
	f.record("report_affiliate_outcome")
	return nil
}

func newTestService(t *testing.T, port backend.Port) IFlowService {
	t.Helper()
	repo := memory.NewSnapshotRepository(time.Hour)
	manager := session.NewManager(repo)
	return NewFlowService(port, manager, agent.NewValidator(nil), nil, logger.NewNopLogger())
}

func startDemo(t *testing.T, svc IFlowService) *store.Session {
	t.Helper()
	sess, err := svc.StartSession(context.Background(), &dto.StartSessionRequest{Mode: store.ModeDemo, Language: "en"})
	require.NoError(t, err)
	return sess
}

func TestStartSessionAssignsIdentity(t *testing.T) {
	svc := newTestService(t, &fakePort{})
	sess := startDemo(t, svc)

	assert.NotEmpty(t, sess.BriefID)
	assert.NotEmpty(t, sess.TraceID)
	assert.Equal(t, flow.StateLanding, sess.State)
	assert.Equal(t, store.ModeDemo, sess.Mode)
}

func TestRestartIssuesFreshIdentity(t *testing.T) {
	svc := newTestService(t, &fakePort{})
	first := startDemo(t, svc)

	second, err := svc.Restart(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, first.BriefID, second.BriefID)
	assert.NotEqual(t, first.TraceID, second.TraceID)
	assert.Equal(t, first.Mode, second.Mode)
	assert.Equal(t, first.Language, second.Language)
	assert.Equal(t, flow.StateLanding, second.State)
	assert.Equal(t, 0, second.ClarificationCount)
}

func TestPhotoGateRequestsRetakeOnFirstFailure(t *testing.T) {
	port := &fakePort{attachResult: &backend.OpResult{Patch: &protocol.SessionPatch{
		Photos: map[string]*store.PhotoRecord{
			store.SlotDaylight: {Slot: store.SlotDaylight, QCStatus: store.QCTooDark, RetryCount: 0},
		},
	}}}
	svc := newTestService(t, port)
	startDemo(t, svc)

	sess, err := svc.AttachPhotos(context.Background(), &dto.AttachPhotosRequest{
		Photos: []dto.PhotoUploadRequest{{Slot: store.SlotDaylight, SourceID: "upload-1"}},
	})
	require.NoError(t, err)
	assert.Equal(t, flow.StatePhotoQC, sess.State)
}

func TestPhotoGateProceedsOnceRetrySpent(t *testing.T) {
	port := &fakePort{attachResult: &backend.OpResult{Patch: &protocol.SessionPatch{
		Photos: map[string]*store.PhotoRecord{
			store.SlotDaylight: {Slot: store.SlotDaylight, QCStatus: store.QCTooDark, RetryCount: 1},
		},
	}}}
	svc := newTestService(t, port)
	startDemo(t, svc)

	sess, err := svc.AttachPhotos(context.Background(), &dto.AttachPhotosRequest{
		Photos: []dto.PhotoUploadRequest{{Slot: store.SlotDaylight, SourceID: "upload-2"}},
	})
	require.NoError(t, err)
	assert.Equal(t, flow.StateAnalysisLoading, sess.State)
}

func TestPhotoGateProceedsWhenAllPassed(t *testing.T) {
	port := &fakePort{attachResult: &backend.OpResult{Patch: &protocol.SessionPatch{
		Photos: map[string]*store.PhotoRecord{
			store.SlotDaylight:    {Slot: store.SlotDaylight, QCStatus: store.QCPassed},
			store.SlotIndoorWhite: {Slot: store.SlotIndoorWhite, QCStatus: store.QCPassed},
		},
	}}}
	svc := newTestService(t, port)
	startDemo(t, svc)

	sess, err := svc.AttachPhotos(context.Background(), &dto.AttachPhotosRequest{
		Photos: []dto.PhotoUploadRequest{
			{Slot: store.SlotDaylight, SourceID: "a"},
			{Slot: store.SlotIndoorWhite, SourceID: "b"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, flow.StateAnalysisLoading, sess.State)
}

func TestAttachPhotosExplicitNextStateWithoutPatch(t *testing.T) {
	port := &fakePort{attachResult: &backend.OpResult{NextState: flow.StateAnalysisLoading}}
	svc := newTestService(t, port)
	startDemo(t, svc)

	sess, err := svc.AttachPhotos(context.Background(), &dto.AttachPhotosRequest{
		Photos: []dto.PhotoUploadRequest{{Slot: store.SlotDaylight, SourceID: "upload-1"}},
	})
	require.NoError(t, err)
	assert.Equal(t, flow.StateAnalysisLoading, sess.State)
}

func TestExplicitNextStateWithoutPatchOutranksFallback(t *testing.T) {
	port := &fakePort{analysisResult: &backend.OpResult{NextState: flow.StateRiskCheck}}
	svc := newTestService(t, port)
	startDemo(t, svc)

	sess, err := svc.RunAnalysis(context.Background())
	require.NoError(t, err)
	assert.Equal(t, flow.StateRiskCheck, sess.State)
}

func TestOperationInFlightGuard(t *testing.T) {
	port := &fakePort{blockOn: make(chan struct{})}
	svc := newTestService(t, port)
	startDemo(t, svc)

	firstDone := make(chan error, 1)
	go func() {
		_, err := svc.SubmitDiagnosis(context.Background(), &dto.DiagnosisRequest{
			SkinType: "oily", Concerns: []string{"acne"},
		})
		firstDone <- err
	}()

	// Wait for the first call to reach the port before firing the second.
	require.Eventually(t, func() bool { return port.callCount() == 1 }, time.Second, 5*time.Millisecond)

	_, err := svc.RunAnalysis(context.Background())
	assert.ErrorIs(t, err, ErrOperationInFlight)

	close(port.blockOn)
	require.NoError(t, <-firstDone)
}

func TestCheckoutInfersSuccessState(t *testing.T) {
	port := &fakePort{checkoutResult: &backend.OpResult{Patch: &protocol.SessionPatch{
		CheckoutResult: &store.CheckoutResult{Success: true, OrderID: "ord-1"},
	}}}
	svc := newTestService(t, port)
	startDemo(t, svc)
	seedPairs(t, svc)

	sess, err := svc.Checkout(context.Background())
	require.NoError(t, err)
	assert.Equal(t, flow.StateSuccess, sess.State)
	assert.Equal(t, "ord-1", sess.CheckoutResult.OrderID)
}

func TestCheckoutInfersFailureState(t *testing.T) {
	port := &fakePort{checkoutResult: &backend.OpResult{Patch: &protocol.SessionPatch{
		CheckoutResult: &store.CheckoutResult{Success: false, FailureCode: "OUT_OF_STOCK"},
	}}}
	svc := newTestService(t, port)
	startDemo(t, svc)
	seedPairs(t, svc)

	sess, err := svc.Checkout(context.Background())
	require.NoError(t, err)
	assert.Equal(t, flow.StateFailure, sess.State)
}

func TestCheckoutHonorsExplicitNextState(t *testing.T) {
	port := &fakePort{checkoutResult: &backend.OpResult{
		NextState: flow.StateRecovery,
		Patch: &protocol.SessionPatch{
			CheckoutResult: &store.CheckoutResult{Success: false, FailureCode: "PARTIAL"},
		},
	}}
	svc := newTestService(t, port)
	startDemo(t, svc)
	seedPairs(t, svc)

	sess, err := svc.Checkout(context.Background())
	require.NoError(t, err)
	assert.Equal(t, flow.StateRecovery, sess.State)
}

func TestCheckoutKeepsBackendNamedNonTerminalState(t *testing.T) {
	port := &fakePort{checkoutResult: &backend.OpResult{
		NextState: flow.StateRoutineReview,
		Patch: &protocol.SessionPatch{
			CheckoutResult: &store.CheckoutResult{Success: false, FailureCode: "ROUTINE_CONFLICT"},
		},
	}}
	svc := newTestService(t, port)
	startDemo(t, svc)
	seedPairs(t, svc)

	sess, err := svc.Checkout(context.Background())
	require.NoError(t, err)
	assert.Equal(t, flow.StateRoutineReview, sess.State)
}

func TestCheckoutWithoutPairsIsRejected(t *testing.T) {
	svc := newTestService(t, &fakePort{})
	startDemo(t, svc)

	_, err := svc.Checkout(context.Background())
	assert.ErrorIs(t, err, ErrWrongState)
}

func TestOperationErrorLeavesSessionUntouched(t *testing.T) {
	port := &fakePort{opErr: errors.New("backend unreachable")}
	svc := newTestService(t, port)
	sess := startDemo(t, svc)
	before := *sess

	_, err := svc.SubmitDiagnosis(context.Background(), &dto.DiagnosisRequest{
		SkinType: "dry", Concerns: []string{"redness"},
	})
	require.Error(t, err)

	after := svc.Current()
	assert.Equal(t, before.State, after.State)
	assert.Nil(t, after.Diagnosis)
	assert.Equal(t, before.ClarificationCount, after.ClarificationCount)
}

func TestRejectedTransitionKeepsState(t *testing.T) {
	svc := newTestService(t, &fakePort{})
	startDemo(t, svc)

	result := svc.ApplyTransition(agent.TransitionRequest{
		TriggerSource:      agent.SourceChip,
		TriggerID:          "chip_checkout",
		RequestedNextState: flow.StateCheckout,
	})

	assert.False(t, result.OK)
	assert.Equal(t, agent.ReasonChipNotAllowedFromState, result.Reason)
	assert.Equal(t, flow.StateLanding, svc.Current().State)
}

func TestAcceptedChipMovesSession(t *testing.T) {
	svc := newTestService(t, &fakePort{})
	startDemo(t, svc)

	result := svc.ApplyTransition(agent.TransitionRequest{
		TriggerSource:      agent.SourceChip,
		TriggerID:          "chip_get_started",
		RequestedNextState: flow.StateOpenIntent,
	})

	require.True(t, result.OK)
	assert.Equal(t, flow.StateOpenIntent, svc.Current().State)
}

func TestClarificationCountTracksDecisions(t *testing.T) {
	svc := newTestService(t, &fakePort{})
	startDemo(t, svc)

	_, err := svc.SubmitDiagnosis(context.Background(), &dto.DiagnosisRequest{
		SkinType: "combination", Concerns: []string{"acne", "oiliness"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, svc.Current().ClarificationCount)

	_, err = svc.SubmitBudget(context.Background(), &dto.BudgetRequest{Tier: store.BudgetBalanced})
	require.NoError(t, err)
	assert.Equal(t, 2, svc.Current().ClarificationCount)
}

func TestResumeRestoresSnapshot(t *testing.T) {
	repo := memory.NewSnapshotRepository(time.Hour)
	manager := session.NewManager(repo)
	svc := NewFlowService(&fakePort{}, manager, agent.NewValidator(nil), nil, logger.NewNopLogger())

	sess, err := svc.StartSession(context.Background(), &dto.StartSessionRequest{Mode: store.ModeDemo, Language: "id"})
	require.NoError(t, err)
	_, err = svc.SubmitDiagnosis(context.Background(), &dto.DiagnosisRequest{
		SkinType: "oily", Concerns: []string{"acne"},
	})
	require.NoError(t, err)

	fresh := NewFlowService(&fakePort{}, manager, agent.NewValidator(nil), nil, logger.NewNopLogger())
	resumed, ok := fresh.Resume(context.Background(), sess.BriefID)
	require.True(t, ok)
	assert.Equal(t, sess.BriefID, resumed.BriefID)
	assert.Equal(t, flow.StatePhotoOption, resumed.State)
	require.NotNil(t, resumed.Diagnosis)
	assert.Equal(t, "oily", resumed.Diagnosis.SkinType)
}

func seedPairs(t *testing.T, svc IFlowService) {
	t.Helper()
	_, err := svc.BuildProductPairs(context.Background())
	require.NoError(t, err)
}
