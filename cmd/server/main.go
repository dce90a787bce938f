package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/application"
	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/config"
	bookingDomain "github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/domain/booking"
	bookingEvents "github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/events"
	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/handler"
	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/platform/auth"
	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/platform/database"
	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/platform/health"
	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/platform/kafka"
	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/platform/lock"
	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/platform/logger"
	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/platform/middleware"
	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/internal/repository"
	"github.com/Gilbert-Baraza/Hostel-Connect-sub001/migrations"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const serviceName = "hostel-booking"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting "+serviceName,
		zap.String("port", cfg.Port),
		zap.Duration("expiry_window", cfg.BookingConfig.ExpiryWindow),
	)

	// Connect to database
	db, err := database.Connect(cfg.DBConfig.DSN(), log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(&repository.HostelModel{}, &repository.RoomModel{}, &repository.BookingModel{}); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.DatabaseURL(), migrations.FS, log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	jwtManager := auth.NewJWTManager(cfg.JWTConfig.Secret, 15*time.Minute)

	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisConfig.Addr,
		Password: cfg.RedisConfig.Password,
		DB:       cfg.RedisConfig.DB,
	})
	defer func() { _ = redisClient.Close() }()

	uow := repository.NewGormUnitOfWork(db)

	bookingService := application.NewBookingService(
		uow,
		bookingDomain.NewProratedPricingStrategy(),
		application.Settings{
			ExpiryWindow: cfg.BookingConfig.ExpiryWindow,
			Currency:     cfg.BookingConfig.Currency,
		},
		log,
		application.WithEventPublisher(bookingEvents.NewBookingEventPublisher(kafkaProducer, cfg.KafkaConfig.BookingTopic)),
	)
	hostelService := application.NewHostelDirectoryService(uow.Hostels(), log)
	roomService := application.NewRoomDirectoryService(uow, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Expiry sweeper
	sweeper := application.NewExpirySweeper(
		bookingService,
		lock.NewRedisLocker(redisClient),
		cfg.SweeperConfig.Schedule,
		cfg.SweeperConfig.LockTTL,
		log,
	)
	if _, err := sweeper.RunOnce(ctx); err != nil {
		log.Warn("startup expiry sweep failed", zap.Error(err))
	}
	if err := sweeper.Start(ctx); err != nil {
		log.Fatal("failed to start expiry sweeper", zap.Error(err))
	}

	// Hostel directory and room availability consumer
	hostelConsumer := bookingEvents.NewHostelEventConsumer(
		cfg.KafkaConfig.Brokers,
		cfg.KafkaConfig.GroupPrefix+"booking-service",
		cfg.KafkaConfig.HostelTopic,
		hostelService,
		roomService,
		log,
	)
	defer func() { _ = hostelConsumer.Close() }()

	go func() {
		log.Info("starting hostel event consumer")
		if err := hostelConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("hostel event consumer error", zap.Error(err))
		}
	}()

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	health.NewHandler(db, serviceName).RegisterRoutes(router)

	handler.NewBookingHandler(bookingService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewAdminBookingHandler(bookingService).RegisterRoutes(&router.RouterGroup, jwtManager)

	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down " + serviceName)

	cancel()
	sweeper.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info(serviceName + " stopped")
}
