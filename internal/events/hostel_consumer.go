package events

import (
	"context"

	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/application"
	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/platform/apperr"
	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/platform/kafka"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Inbound listing event types.
const (
	HostelCreated             = "hostel.created"
	HostelVerificationUpdated = "hostel.verification_updated"
	RoomUpserted              = "room.upserted"
	RoomOccupancyChanged      = "room.occupancy_changed"
)

// SnapshotApplier stores hostel snapshots in the local directory.
type SnapshotApplier interface {
	ApplySnapshot(ctx context.Context, snap application.HostelSnapshot) error
}

// RoomApplier stores room listings and occupancy changes.
type RoomApplier interface {
	ApplySnapshot(ctx context.Context, snap application.RoomSnapshot) error
	ApplyOccupancy(ctx context.Context, upd application.OccupancyUpdate) error
}

// HostelEventConsumer listens to listing events and keeps the hostel
// directory and room availability store current.
type HostelEventConsumer struct {
	consumer *kafka.Consumer
	hostels  SnapshotApplier
	rooms    RoomApplier
	logger   *zap.Logger
}

// NewHostelEventConsumer creates a new HostelEventConsumer.
func NewHostelEventConsumer(
	brokers []string,
	groupID string,
	topic string,
	hostels SnapshotApplier,
	rooms RoomApplier,
	logger *zap.Logger,
) *HostelEventConsumer {
	return &HostelEventConsumer{
		consumer: kafka.NewConsumer(brokers, groupID, topic, logger),
		hostels:  hostels,
		rooms:    rooms,
		logger:   logger,
	}
}

// Start begins consuming hostel events. This blocks until the context is cancelled.
func (c *HostelEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *HostelEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *HostelEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from hostel topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case HostelCreated, HostelVerificationUpdated:
		return c.handleSnapshot(ctx, cloudEvent)
	case RoomUpserted:
		return c.handleRoomSnapshot(ctx, cloudEvent)
	case RoomOccupancyChanged:
		return c.handleOccupancy(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled hostel event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *HostelEventConsumer) handleSnapshot(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var snap application.HostelSnapshot
	if err := cloudEvent.ParseData(&snap); err != nil {
		c.logger.Error("failed to parse hostel snapshot", zap.Error(err))
		return nil
	}

	return c.settle(c.hostels.ApplySnapshot(ctx, snap), "hostel snapshot", zap.String("hostel_id", snap.HostelID.String()))
}

func (c *HostelEventConsumer) handleRoomSnapshot(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var snap application.RoomSnapshot
	if err := cloudEvent.ParseData(&snap); err != nil {
		c.logger.Error("failed to parse room snapshot", zap.Error(err))
		return nil
	}
	return c.settle(c.rooms.ApplySnapshot(ctx, snap), "room snapshot", zap.String("room_id", snap.RoomID.String()))
}

func (c *HostelEventConsumer) handleOccupancy(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var upd application.OccupancyUpdate
	if err := cloudEvent.ParseData(&upd); err != nil {
		c.logger.Error("failed to parse occupancy update", zap.Error(err))
		return nil
	}
	return c.settle(c.rooms.ApplyOccupancy(ctx, upd), "occupancy update", zap.String("room_id", upd.RoomID.String()))
}

// settle drops events that can never apply and surfaces the rest for retry.
func (c *HostelEventConsumer) settle(err error, what string, id zap.Field) error {
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindNotFound:
		c.logger.Warn("discarding "+what, id, zap.Error(err))
		return nil
	}
	return err
}
