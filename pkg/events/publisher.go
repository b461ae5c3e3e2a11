package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Topic is the single analytics topic the flow core publishes to.
const Topic = "flow.telemetry"

// Bus is the in-process analytics queue. It is constructed once at
// bootstrap and injected; there is no module-level singleton.
type Bus struct {
	pubSub *gochannel.GoChannel
}

// NewBus creates an in-process event bus.
func NewBus() *Bus {
	return &Bus{
		pubSub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 64},
			watermill.NopLogger{},
		),
	}
}

type wireEvent struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt string                 `json:"occurred_at"`
}

// Publish emits one event onto the analytics topic. Best effort: the
// caller logs failures and moves on.
func (b *Bus) Publish(evt Event) error {
	payload, err := json.Marshal(wireEvent{
		Type:       evt.EventType(),
		Data:       evt.Payload(),
		OccurredAt: evt.Timestamp().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	return b.pubSub.Publish(Topic, msg)
}

// Subscribe returns the consumer channel for the analytics topic. The
// subscription ends when ctx is cancelled.
func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return b.pubSub.Subscribe(ctx, Topic)
}

// Close shuts the bus down; pending messages are dropped.
func (b *Bus) Close() error {
	return b.pubSub.Close()
}
