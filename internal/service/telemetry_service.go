package service

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"

	"ai-skincare-client/internal/pkg/logger"
	"ai-skincare-client/pkg/events"
)

type ITelemetryService interface {
	Consume(ctx context.Context) error
}

// telemetryService drains the flow telemetry topic into the structured
// log. It is the only subscriber; analytics sinks would hang off the
// same bus.
type telemetryService struct {
	bus *events.Bus
	log logger.ILogger
}

func NewTelemetryService(bus *events.Bus, log logger.ILogger) ITelemetryService {
	return &telemetryService{bus: bus, log: log}
}

func (ts *telemetryService) Consume(ctx context.Context) error {
	messages, err := ts.bus.Subscribe(ctx)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			ts.processMessage(msg)
		}
	}()

	return nil
}

func (ts *telemetryService) processMessage(msg *message.Message) {
	var payload struct {
		Type       string                 `json:"type"`
		Data       map[string]interface{} `json:"data"`
		OccurredAt string                 `json:"occurred_at"`
	}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		// Ack malformed payloads, retrying cannot fix them.
		msg.Ack()
		return
	}

	details := payload.Data
	if details == nil {
		details = map[string]interface{}{}
	}
	details["occurred_at"] = payload.OccurredAt

	switch payload.Type {
	case events.TypeFlowOpFailed, events.TypeTransitionRejected:
		ts.log.Warn("telemetry", payload.Type, details)
	default:
		ts.log.Info("telemetry", payload.Type, details)
	}
	msg.Ack()
}
