package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/pocketbase/dbx"
	pubnub "github.com/pubnub/go"

	"github.com/irnd04/zticket/config"
	"github.com/irnd04/zticket/handlers"
	"github.com/irnd04/zticket/monitoring"
	"github.com/irnd04/zticket/services"
	"github.com/irnd04/zticket/storage"
	"github.com/irnd04/zticket/tasks"
	"github.com/irnd04/zticket/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := config.LoadConfig()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	redisClient := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	defer redisClient.Close()

	db, err := dbx.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ids, err := utils.NewIDGenerator(cfg.NodeID)
	if err != nil {
		log.Fatalf("Failed to create ID generator: %v", err)
	}

	var pn *pubnub.PubNub
	if cfg.PubNubPublishKey != "" {
		pnConfig := pubnub.NewConfig()
		pnConfig.PublishKey = cfg.PubNubPublishKey
		pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
		pnConfig.SecretKey = cfg.PubNubSecretKey
		pn = pubnub.NewPubNub(pnConfig)
	}
	notifier := services.NewNotifier(pn)

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	asynqClient := asynq.NewClient(redisOpt)
	defer asynqClient.Close()

	// Core services.
	locker := utils.NewLeaseLock(redisClient)
	queueService := services.NewQueueService(redisClient, cfg.QueueLivenessWindow)
	activeService := services.NewActiveUserService(redisClient)
	seatService := services.NewSeatService(redisClient, cfg.TotalSeats)
	ticketStore := storage.NewTicketStore(db)
	dispatcher := tasks.NewDispatcher(asynqClient)

	entryService := services.NewEntryService(queueService, activeService, seatService, ids)
	ticketService := services.NewTicketService(seatService, activeService, ticketStore, dispatcher, ids, cfg.SeatHoldTTL)
	admissionService := services.NewAdmissionService(
		queueService, activeService, seatService, locker, notifier,
		cfg.AdmissionBatch, cfg.MaxActiveUsers, cfg.ActiveTTL, cfg.LockMaxHold,
	)
	settlementService := services.NewSettlementService(
		ticketStore, seatService, activeService, locker, notifier, cfg.LockMaxHold,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Background workers: settlement consumer plus the periodic
	// admission and recovery drivers.
	taskHandlers := tasks.NewHandlers(settlementService, admissionService)
	go runWorker(redisOpt, taskHandlers, cfg)

	if cfg.EnableMetrics {
		monitor := monitoring.NewMonitor(redisClient)
		go monitor.Run(ctx, 15*time.Second)
		go monitoring.StartMetricsServer(cfg.MetricsPort)
	}

	e := echo.New()
	e.HideBanner = true
	handlers.Register(e,
		handlers.NewQueueHandler(entryService),
		handlers.NewSeatHandler(seatService),
		handlers.NewTicketHandler(ticketService),
		handlers.NewHealthHandler(redisClient),
	)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	slog.Info("zticket started",
		"port", cfg.Port,
		"total_seats", cfg.TotalSeats,
		"max_active_users", cfg.MaxActiveUsers,
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
}

func runWorker(redisOpt asynq.RedisClientOpt, h *tasks.Handlers, cfg *config.Config) {
	scheduler, err := tasks.NewScheduler(redisOpt, cfg.AdmissionInterval, cfg.RecoveryInterval)
	if err != nil {
		log.Fatalf("Failed to build scheduler: %v", err)
	}
	go func() {
		if err := scheduler.Run(); err != nil {
			log.Fatalf("Scheduler failed to start: %v", err)
		}
	}()

	srv := tasks.NewServer(redisOpt, 10)
	if err := srv.Run(tasks.NewServeMux(h)); err != nil {
		log.Fatalf("Task server failed to start: %v", err)
	}
}
