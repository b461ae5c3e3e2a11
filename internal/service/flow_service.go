package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"

	"ai-skincare-client/internal/dto"
	"ai-skincare-client/internal/pkg/logger"
	"ai-skincare-client/pkg/agent"
	"ai-skincare-client/pkg/backend"
	"ai-skincare-client/pkg/checkout"
	"ai-skincare-client/pkg/events"
	"ai-skincare-client/pkg/flow"
	"ai-skincare-client/pkg/protocol"
	"ai-skincare-client/pkg/session"
	"ai-skincare-client/pkg/store"
)

var (
	ErrOperationInFlight = errors.New("operation already in flight")
	ErrNoActiveSession   = errors.New("no active session")
	ErrWrongState        = errors.New("operation not available from current state")
)

// IFlowService orchestrates the conversation: it owns the active
// session, runs every backend-bound operation through the port, merges
// the returned patch, and decides the next state.
type IFlowService interface {
	StartSession(ctx context.Context, request *dto.StartSessionRequest) (*store.Session, error)
	Resume(ctx context.Context, briefID string) (*store.Session, bool)
	Restart(ctx context.Context) (*store.Session, error)
	Current() *store.Session

	ApplyTransition(req agent.TransitionRequest) agent.TransitionResult
	HandleText(ctx context.Context, text string) (agent.TransitionResult, bool)
	AppendTranscript(role, text string)

	SubmitDiagnosis(ctx context.Context, request *dto.DiagnosisRequest) (*store.Session, error)
	AttachPhotos(ctx context.Context, request *dto.AttachPhotosRequest) (*store.Session, error)
	UseSamplePhotos(ctx context.Context, request *dto.UseSamplePhotosRequest) (*store.Session, error)
	RunAnalysis(ctx context.Context) (*store.Session, error)
	AnswerRiskCheck(ctx context.Context, request *dto.RiskCheckRequest) (*store.Session, error)
	SubmitBudget(ctx context.Context, request *dto.BudgetRequest) (*store.Session, error)
	BuildProductPairs(ctx context.Context) (*store.Session, error)
	SelectOffer(ctx context.Context, request *dto.SelectOfferRequest) (*store.Session, error)
	Checkout(ctx context.Context) (*store.Session, error)
	ReportAffiliateOutcome(ctx context.Context, request *dto.AffiliateOutcomeRequest) error
}

type flowService struct {
	port      backend.Port
	manager   *session.Manager
	validator *agent.Validator
	bus       *events.Bus
	log       logger.ILogger
	validate  *validator.Validate

	current  *store.Session
	messages []store.TranscriptEntry

	// One backend-bound operation at a time. A second call while one is
	// running gets ErrOperationInFlight instead of queueing.
	inFlight atomic.Bool
}

func NewFlowService(
	port backend.Port,
	manager *session.Manager,
	transitionValidator *agent.Validator,
	bus *events.Bus,
	log logger.ILogger,
) IFlowService {
	return &flowService{
		port:      port,
		manager:   manager,
		validator: transitionValidator,
		bus:       bus,
		log:       log,
		validate:  validator.New(),
	}
}

func (fs *flowService) StartSession(ctx context.Context, request *dto.StartSessionRequest) (*store.Session, error) {
	if err := fs.validate.Struct(request); err != nil {
		return nil, err
	}

	fs.current = fs.manager.New(request.Mode, request.Language)
	fs.messages = nil

	fs.publish(events.BaseEvent{
		Type: events.TypeSessionStarted,
		Data: map[string]interface{}{
			"brief_id": fs.current.BriefID,
			"mode":     fs.current.Mode,
			"language": fs.current.Language,
		},
		OccurredAt: time.Now(),
	})
	fs.log.Info("flow", "session started", map[string]interface{}{
		"brief_id": fs.current.BriefID,
		"mode":     fs.current.Mode,
	})
	return fs.current, nil
}

func (fs *flowService) Resume(ctx context.Context, briefID string) (*store.Session, bool) {
	sess, messages, ok := fs.manager.Resume(briefID)
	if !ok {
		return nil, false
	}
	fs.current = sess
	fs.messages = messages
	return sess, true
}

// Restart throws away everything except mode and language and returns a
// brand new session with fresh identity.
func (fs *flowService) Restart(ctx context.Context) (*store.Session, error) {
	if fs.current == nil {
		return nil, ErrNoActiveSession
	}
	old := fs.current
	fs.current = fs.manager.Restart(old)
	fs.messages = nil

	fs.publish(events.BaseEvent{
		Type: events.TypeSessionRestarted,
		Data: map[string]interface{}{
			"old_brief_id": old.BriefID,
			"brief_id":     fs.current.BriefID,
		},
		OccurredAt: time.Now(),
	})
	return fs.current, nil
}

func (fs *flowService) Current() *store.Session {
	return fs.current
}

// ApplyTransition runs a chip or action trigger through the transition
// validator and, when accepted, moves the session. Rejections are
// telemetry, not errors.
func (fs *flowService) ApplyTransition(req agent.TransitionRequest) agent.TransitionResult {
	if fs.current == nil {
		return agent.TransitionResult{Reason: agent.ReasonNoChipRoute}
	}
	req.FromState = fs.current.State

	result := fs.validator.Validate(req)
	if !result.OK {
		fs.publish(events.TransitionRejected(fs.current.BriefID, result.CanonicalTriggerID, result.Reason))
		fs.log.Warn("flow", "transition rejected", map[string]interface{}{
			"brief_id":   fs.current.BriefID,
			"trigger_id": result.CanonicalTriggerID,
			"from_state": string(req.FromState),
			"reason":     result.Reason,
		})
		return result
	}

	fs.current.State = result.NextState
	fs.snapshot()
	return result
}

// HandleText maps free text onto an explicit transition when the intent
// detector recognizes one. The bool reports whether anything matched.
func (fs *flowService) HandleText(ctx context.Context, text string) (agent.TransitionResult, bool) {
	if fs.current == nil {
		return agent.TransitionResult{}, false
	}
	intent := agent.DetectTextIntent(text, fs.current.Language)
	if !intent.Matched {
		return agent.TransitionResult{}, false
	}
	result := fs.ApplyTransition(agent.TransitionRequest{
		TriggerSource:      agent.SourceTextExplicit,
		TriggerID:          intent.TriggerID,
		RequestedNextState: intent.RequestedState,
	})
	return result, true
}

func (fs *flowService) AppendTranscript(role, text string) {
	fs.messages = append(fs.messages, store.TranscriptEntry{
		Role: role,
		Text: text,
		At:   time.Now(),
	})
}

func (fs *flowService) SubmitDiagnosis(ctx context.Context, request *dto.DiagnosisRequest) (*store.Session, error) {
	if err := fs.validate.Struct(request); err != nil {
		return nil, err
	}
	return fs.runOp(ctx, "submit_diagnosis", flow.StatePhotoOption, func(ctx context.Context, s *store.Session) (*backend.OpResult, error) {
		diagnosis := &store.Diagnosis{
			SkinType: request.SkinType,
			Concerns: request.Concerns,
		}
		if request.Sensitive {
			diagnosis.Sensitivity = "sensitive"
		}
		result, err := fs.port.SubmitDiagnosis(ctx, s, diagnosis)
		if err != nil {
			return nil, err
		}
		s.ClarificationCount++
		return result, nil
	})
}

func (fs *flowService) AttachPhotos(ctx context.Context, request *dto.AttachPhotosRequest) (*store.Session, error) {
	if err := fs.validate.Struct(request); err != nil {
		return nil, err
	}
	uploads := make([]backend.PhotoUpload, 0, len(request.Photos))
	for _, p := range request.Photos {
		uploads = append(uploads, backend.PhotoUpload{Slot: p.Slot, SourceID: p.SourceID})
	}
	backendNamedState := false
	sess, err := fs.runOp(ctx, "attach_photos", "", func(ctx context.Context, s *store.Session) (*backend.OpResult, error) {
		result, err := fs.port.AttachPhotos(ctx, s, uploads)
		if err == nil {
			backendNamedState = opNamedState(result)
		}
		return result, err
	})
	if err != nil {
		return nil, err
	}
	// When the backend stays silent on the next state, the one-retry
	// quality gate decides: retake or proceed.
	if !backendNamedState {
		sess.State = photoGateState(sess)
		fs.snapshot()
	}
	return sess, nil
}

func (fs *flowService) UseSamplePhotos(ctx context.Context, request *dto.UseSamplePhotosRequest) (*store.Session, error) {
	if err := fs.validate.Struct(request); err != nil {
		return nil, err
	}
	return fs.runOp(ctx, "use_sample_photos", flow.StateAnalysisLoading, func(ctx context.Context, s *store.Session) (*backend.OpResult, error) {
		return fs.port.UseSamplePhotos(ctx, s, request.SampleSetID)
	})
}

func (fs *flowService) RunAnalysis(ctx context.Context) (*store.Session, error) {
	return fs.runOp(ctx, "run_analysis", flow.StateAnalysisSummary, func(ctx context.Context, s *store.Session) (*backend.OpResult, error) {
		return fs.port.RunAnalysis(ctx, s)
	})
}

func (fs *flowService) AnswerRiskCheck(ctx context.Context, request *dto.RiskCheckRequest) (*store.Session, error) {
	acknowledged := len(request.Flagged) == 0
	return fs.runOp(ctx, "answer_risk_check", flow.StateBudget, func(ctx context.Context, s *store.Session) (*backend.OpResult, error) {
		result, err := fs.port.AnswerRiskCheck(ctx, s, acknowledged)
		if err != nil {
			return nil, err
		}
		s.ClarificationCount++
		return result, nil
	})
}

func (fs *flowService) SubmitBudget(ctx context.Context, request *dto.BudgetRequest) (*store.Session, error) {
	if err := fs.validate.Struct(request); err != nil {
		return nil, err
	}
	return fs.runOp(ctx, "submit_budget", flow.StateProductReco, func(ctx context.Context, s *store.Session) (*backend.OpResult, error) {
		result, err := fs.port.SubmitBudget(ctx, s, request.Tier)
		if err != nil {
			return nil, err
		}
		s.ClarificationCount++
		return result, nil
	})
}

func (fs *flowService) BuildProductPairs(ctx context.Context) (*store.Session, error) {
	return fs.runOp(ctx, "build_product_pairs", flow.StateRoutineReview, func(ctx context.Context, s *store.Session) (*backend.OpResult, error) {
		return fs.port.BuildProductPairs(ctx, s)
	})
}

// SelectOffer is local state only; no port round trip.
func (fs *flowService) SelectOffer(ctx context.Context, request *dto.SelectOfferRequest) (*store.Session, error) {
	if err := fs.validate.Struct(request); err != nil {
		return nil, err
	}
	if fs.current == nil {
		return nil, ErrNoActiveSession
	}
	if fs.current.ProductSelections == nil {
		fs.current.ProductSelections = make(map[string]store.Selection)
	}
	fs.current.ProductSelections[request.Category] = store.Selection{
		Type:    request.Variant,
		OfferID: request.OfferID,
	}
	fs.current.ClarificationCount++
	fs.snapshot()
	return fs.current, nil
}

func (fs *flowService) Checkout(ctx context.Context) (*store.Session, error) {
	if fs.current == nil {
		return nil, ErrNoActiveSession
	}
	if fs.current.ProductPairs == nil {
		return nil, ErrWrongState
	}

	route := checkout.Classify(allPairs(fs.current.ProductPairs), fs.current.ProductSelections)
	fs.publish(events.BaseEvent{
		Type: events.TypeCheckoutClassified,
		Data: map[string]interface{}{
			"brief_id":   fs.current.BriefID,
			"route_type": route.RouteType,
			"internal":   len(route.Internal),
			"affiliate":  len(route.Affiliate),
		},
		OccurredAt: time.Now(),
	})

	backendNamedState := false
	sess, err := fs.runOp(ctx, "checkout", "", func(ctx context.Context, s *store.Session) (*backend.OpResult, error) {
		result, err := fs.port.Checkout(ctx, s, route)
		if err == nil {
			backendNamedState = opNamedState(result)
		}
		return result, err
	})
	if err != nil {
		return nil, err
	}

	// When the backend does not name a next state, infer it from the
	// checkout outcome.
	if !backendNamedState {
		if sess.CheckoutResult != nil && sess.CheckoutResult.Success {
			sess.State = flow.StateSuccess
		} else {
			sess.State = flow.StateFailure
		}
	}

	if len(route.Affiliate) > 0 {
		fs.resolveAffiliate(ctx, sess, route.Affiliate)
	}
	fs.snapshot()
	return sess, nil
}

// resolveAffiliate fills outbound URLs for affiliate items. Resolution
// is best effort: on failure the items stay unresolved and the UI falls
// back to retailer search links.
func (fs *flowService) resolveAffiliate(ctx context.Context, sess *store.Session, items []checkout.SelectedItem) {
	offers, err := fs.port.ResolveAffiliateItems(ctx, sess, items)
	if err != nil {
		fs.log.Warn("flow", "affiliate resolution failed", map[string]interface{}{
			"brief_id": sess.BriefID,
			"error":    err.Error(),
			"items":    len(items),
		})
		return
	}
	if sess.CheckoutResult == nil {
		sess.CheckoutResult = &store.CheckoutResult{Success: true}
	}
	for _, offer := range offers {
		if offer.OutboundURL == "" {
			continue
		}
		sess.CheckoutResult.AffiliateURL = append(sess.CheckoutResult.AffiliateURL, offer.OutboundURL)
		fs.publish(events.BaseEvent{
			Type: events.TypeAffiliateRedirected,
			Data: map[string]interface{}{
				"brief_id": sess.BriefID,
				"sku":      offer.SKU,
				"retailer": offer.Retailer,
			},
			OccurredAt: time.Now(),
		})
	}
}

// ReportAffiliateOutcome is fire-and-forget: the conversation already
// moved on, a failed report only loses telemetry.
func (fs *flowService) ReportAffiliateOutcome(ctx context.Context, request *dto.AffiliateOutcomeRequest) error {
	if err := fs.validate.Struct(request); err != nil {
		return err
	}
	if fs.current == nil {
		return ErrNoActiveSession
	}
	err := fs.port.ReportAffiliateOutcome(ctx, fs.current, backend.AffiliateOutcome{
		SKU:       request.OfferID,
		Completed: request.Completed,
	})
	if err != nil {
		fs.log.Warn("flow", "affiliate outcome report failed", map[string]interface{}{
			"brief_id": fs.current.BriefID,
			"error":    err.Error(),
		})
	}
	return nil
}

// runOp is the shared operation skeleton: in-flight guard, port call,
// patch merge with the operation's fallback state, snapshot, telemetry.
func (fs *flowService) runOp(
	ctx context.Context,
	op string,
	fallback flow.State,
	fn func(ctx context.Context, s *store.Session) (*backend.OpResult, error),
) (*store.Session, error) {
	if fs.current == nil {
		return nil, ErrNoActiveSession
	}
	if !fs.inFlight.CompareAndSwap(false, true) {
		return nil, ErrOperationInFlight
	}
	defer fs.inFlight.Store(false)

	result, err := fn(ctx, fs.current)
	if err != nil {
		fs.publish(events.BaseEvent{
			Type: events.TypeFlowOpFailed,
			Data: map[string]interface{}{
				"brief_id": fs.current.BriefID,
				"op":       op,
				"error":    err.Error(),
			},
			OccurredAt: time.Now(),
		})
		fs.log.Error("flow", "operation failed", map[string]interface{}{
			"brief_id": fs.current.BriefID,
			"op":       op,
			"error":    err.Error(),
		})
		return nil, err
	}

	if fallback == "" {
		fallback = fs.current.State
	}
	// An explicit next state can arrive without any session payload;
	// it still outranks the fallback.
	if result.NextState != "" {
		if result.Patch == nil {
			result.Patch = &protocol.SessionPatch{}
		}
		if result.Patch.NextState == "" {
			result.Patch.NextState = result.NextState
		}
	}
	fs.current = session.Merge(fs.current, result.Patch, fallback)

	fs.snapshot()
	fs.publish(events.FlowOpCompleted(fs.current.BriefID, op, string(fs.current.State)))
	fs.log.Info("flow", "operation completed", map[string]interface{}{
		"brief_id": fs.current.BriefID,
		"op":       op,
		"state":    string(fs.current.State),
	})
	return fs.current, nil
}

func (fs *flowService) snapshot() {
	if fs.current == nil {
		return
	}
	if err := fs.manager.Snapshot(fs.current, fs.messages); err != nil {
		fs.log.Warn("flow", "snapshot failed", map[string]interface{}{
			"brief_id": fs.current.BriefID,
			"error":    err.Error(),
		})
	}
}

func (fs *flowService) publish(evt events.Event) {
	if fs.bus == nil {
		return
	}
	if err := fs.bus.Publish(evt); err != nil {
		fs.log.Warn("flow", "telemetry publish failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// opNamedState reports whether the backend named an explicit state for
// this operation, either top-level or inside the patch.
func opNamedState(result *backend.OpResult) bool {
	if result == nil {
		return false
	}
	if result.NextState != "" {
		return true
	}
	return result.Patch != nil && (result.Patch.NextState != "" || result.Patch.State != "")
}

// photoGateState applies the one-retry quality gate: any slot that
// failed QC and has a retry left sends the user back to retake; once
// retries are spent the flow proceeds with whatever photos exist.
func photoGateState(s *store.Session) flow.State {
	for _, p := range s.Photos {
		if p.QCStatus != store.QCPassed && p.RetryCount < 1 {
			return flow.StatePhotoQC
		}
	}
	return flow.StateAnalysisLoading
}

func allPairs(pairs *store.ProductPairs) []store.ProductPair {
	if pairs == nil {
		return nil
	}
	out := make([]store.ProductPair, 0, len(pairs.AM)+len(pairs.PM))
	out = append(out, pairs.AM...)
	out = append(out, pairs.PM...)
	return out
}
