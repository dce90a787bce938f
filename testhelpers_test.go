//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/application"
	bookingDomain "github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/domain/booking"
	hostelDomain "github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/domain/hostel"
	roomDomain "github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/domain/room"
	bookingEvents "github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/events"
	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/platform/database"
	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/platform/kafka"
	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/platform/lock"
	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/repository"
	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/migrations"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	bookingTopic = "booking.events"
	hostelTopic  = "hostel.events"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Redis        *redis.Client
	Cleanup      func()
}

// bookingStack holds wired-up booking service components.
type bookingStack struct {
	UoW             *repository.GormUnitOfWork
	Service         *application.BookingService
	Sweeper         *application.ExpirySweeper
	Consumer        *bookingEvents.HostelEventConsumer
	CleanupProducer func()
}

// setupContainers starts PostgreSQL, Kafka and Redis containers and returns
// a migrated GORM DB.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_booking",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_booking sslmode=disable", pgHost, pgPort.Port())
	dbURL := fmt.Sprintf("postgres://test:test@%s:%s/test_booking?sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = database.Connect(dsn, logger)
		return err == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, database.RunMigrations(dbURL, migrations.FS, logger))

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start Redis container")

	redisHost, err := redisContainer.Host(ctx)
	require.NoError(t, err)
	redisPort, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: net.JoinHostPort(redisHost, redisPort.Port())})

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, bookingTopic, hostelTopic)

	cleanup := func() {
		_ = rdb.Close()
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := redisContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Redis container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Redis:        rdb,
		Cleanup:      cleanup,
	}
}

// setupBookingStack wires up the full booking service stack.
func setupBookingStack(t *testing.T, infra *testInfra, opts ...application.Option) *bookingStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	uow := repository.NewGormUnitOfWork(infra.DB)
	producer := kafka.NewProducer(infra.KafkaBrokers, logger)
	opts = append([]application.Option{
		application.WithEventPublisher(bookingEvents.NewBookingEventPublisher(producer, bookingTopic)),
	}, opts...)

	svc := application.NewBookingService(
		uow,
		bookingDomain.NewProratedPricingStrategy(),
		application.Settings{ExpiryWindow: 24 * time.Hour, Currency: "KES"},
		logger,
		opts...,
	)
	sweeper := application.NewExpirySweeper(svc, lock.NewRedisLocker(infra.Redis), "@every 1h", time.Minute, logger)

	groupID := fmt.Sprintf("test-booking-%s", uuid.New().String()[:8])
	consumer := bookingEvents.NewHostelEventConsumer(
		infra.KafkaBrokers,
		groupID,
		hostelTopic,
		application.NewHostelDirectoryService(uow.Hostels(), logger),
		application.NewRoomDirectoryService(uow, logger),
		logger,
	)

	return &bookingStack{
		UoW:             uow,
		Service:         svc,
		Sweeper:         sweeper,
		Consumer:        consumer,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// seedHostelAndRoom inserts an approved hostel with one single-bed room,
// registering the room through the room directory.
func seedHostelAndRoom(t *testing.T, uow *repository.GormUnitOfWork, landlordID uuid.UUID, monthlyCents int64) (*hostelDomain.Hostel, *roomDomain.Room) {
	t.Helper()
	ctx := context.Background()

	h := &hostelDomain.Hostel{
		ID:                 uuid.New(),
		Name:               "Integration Hostel",
		LandlordID:         landlordID,
		VerificationStatus: hostelDomain.VerificationApproved,
		UpdatedAt:          time.Now().UTC(),
	}
	require.NoError(t, uow.Hostels().Upsert(ctx, h))

	roomID := uuid.New()
	require.NoError(t, application.NewRoomDirectoryService(uow, zap.NewNop()).ApplySnapshot(ctx, application.RoomSnapshot{
		RoomID:            roomID,
		HostelID:          h.ID,
		RoomNumber:        "A1",
		Capacity:          1,
		PriceMonthlyCents: monthlyCents,
		Currency:          "KES",
		IsActive:          true,
		UpdatedAt:         time.Now().UTC(),
	}))

	rm, err := uow.Rooms().FindByID(ctx, roomID)
	require.NoError(t, err)
	return h, rm
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType, key string, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := kafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, key, ce)
	require.NoError(t, err, "failed to publish event")
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}

// date returns a day in next calendar year so stays are never in the past.
func date(month time.Month, day int) time.Time {
	return time.Date(time.Now().UTC().Year()+1, month, day, 0, 0, 0, 0, time.UTC)
}
