package events

import (
	"context"

	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/platform/kafka"
)

// Source identifies this service in outbound event envelopes.
const Source = "hostel-booking"

// EventWriter writes an enveloped event to a topic.
type EventWriter interface {
	PublishEvent(ctx context.Context, topic, key string, event kafka.CloudEvent) error
}

// BookingEventPublisher wraps lifecycle payloads in a CloudEvent and writes
// them to the booking topic.
type BookingEventPublisher struct {
	writer EventWriter
	topic  string
}

// NewBookingEventPublisher creates a new BookingEventPublisher.
func NewBookingEventPublisher(writer EventWriter, topic string) *BookingEventPublisher {
	return &BookingEventPublisher{writer: writer, topic: topic}
}

// Publish sends data as an event of the given type keyed by key.
func (p *BookingEventPublisher) Publish(ctx context.Context, eventType, key string, data interface{}) error {
	evt, err := kafka.NewCloudEvent(Source, eventType, data)
	if err != nil {
		return err
	}
	return p.writer.PublishEvent(ctx, p.topic, key, evt)
}
