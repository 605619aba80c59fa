// Package eventbus is the change-notification feed the engine publishes
// to. It is an in-process Watermill Pub/Sub; subscribers (the websocket
// hub) receive at-least-once, unordered JSON events and must treat them
// as re-fetch hints, never as authoritative deltas.
package eventbus

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/okleong/campscore/internal/logger"
)

// Topic carries every scoreboard change event
const Topic = "scoreboard.events"

// Event types published on Topic
const (
	TypeTimeSubmitted  = "time_submitted"
	TypeActivityScored = "activity_scored"
	TypePointRecorded  = "point_recorded"
	TypeFreezeChanged  = "freeze_changed"
)

// Event is the wire form of one change notification
type Event struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload"`
}

// Bus wraps a Watermill gochannel Pub/Sub
type Bus struct {
	log    logger.Logger
	pubsub *gochannel.GoChannel
}

// New creates a Bus. Buffer bounds the per-subscriber channel so a slow
// consumer cannot block publishers.
func New(log logger.Logger, buffer int) *Bus {
	return &Bus{
		log: log,
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: int64(buffer),
		}, watermill.NopLogger{}),
	}
}

// Subscribe returns the stream of scoreboard events. Must be called
// before the first publish; the gochannel transport does not replay.
func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, Topic)
}

// Close shuts the Pub/Sub down
func (b *Bus) Close() error {
	return b.pubsub.Close()
}

func (b *Bus) publish(eventType string, payload map[string]interface{}) {
	data, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		b.log.Error("Failed to marshal event", "type", eventType, "error", err)
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	if err := b.pubsub.Publish(Topic, msg); err != nil {
		b.log.Error("Failed to publish event", "type", eventType, "error", err)
	}
}

// TimeSubmitted implements services.Publisher
func (b *Bus) TimeSubmitted(activityID, groupID int) {
	b.publish(TypeTimeSubmitted, map[string]interface{}{
		"activity_id": activityID,
		"group_id":    groupID,
	})
}

// ActivityScored implements services.Publisher
func (b *Bus) ActivityScored(activityID, eventCount int) {
	b.publish(TypeActivityScored, map[string]interface{}{
		"activity_id": activityID,
		"events":      eventCount,
	})
}

// PointRecorded implements services.Publisher
func (b *Bus) PointRecorded(groupID, activityID, points int) {
	b.publish(TypePointRecorded, map[string]interface{}{
		"group_id":    groupID,
		"activity_id": activityID,
		"points":      points,
	})
}

// FreezeChanged implements services.Publisher
func (b *Bus) FreezeChanged(frozen bool) {
	b.publish(TypeFreezeChanged, map[string]interface{}{
		"frozen": frozen,
	})
}
