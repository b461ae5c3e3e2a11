package events

import "time"

// Event defines the contract for all telemetry events emitted by the
// flow core.
type Event interface {
	// EventType returns the unique code for this event (e.g., "FLOW_OP_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the plain implementation most emitters use.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Event type codes emitted by the orchestrator.
const (
	TypeSessionStarted      = "SESSION_STARTED"
	TypeSessionRestarted    = "SESSION_RESTARTED"
	TypeFlowOpCompleted     = "FLOW_OP_COMPLETED"
	TypeFlowOpFailed        = "FLOW_OP_FAILED"
	TypeTransitionRejected  = "TRANSITION_REJECTED"
	TypeCheckoutClassified  = "CHECKOUT_CLASSIFIED"
	TypeAffiliateRedirected = "AFFILIATE_REDIRECTED"
)

// FlowOpCompleted builds the standard per-operation telemetry event.
func FlowOpCompleted(briefID, op string, state string) Event {
	return BaseEvent{
		Type: TypeFlowOpCompleted,
		Data: map[string]interface{}{
			"brief_id": briefID,
			"op":       op,
			"state":    state,
		},
		OccurredAt: time.Now(),
	}
}

// TransitionRejected records a blocked transition with its typed reason.
func TransitionRejected(briefID, triggerID, reason string) Event {
	return BaseEvent{
		Type: TypeTransitionRejected,
		Data: map[string]interface{}{
			"brief_id":   briefID,
			"trigger_id": triggerID,
			"reason":     reason,
		},
		OccurredAt: time.Now(),
	}
}
