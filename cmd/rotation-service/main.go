package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/LavaJover/shvark-rotation-service/internal/app/background"
	"github.com/LavaJover/shvark-rotation-service/internal/config"
	httpapi "github.com/LavaJover/shvark-rotation-service/internal/delivery/http"
	"github.com/LavaJover/shvark-rotation-service/internal/infrastructure/kafka"
	"github.com/LavaJover/shvark-rotation-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-rotation-service/internal/infrastructure/migrate"
	"github.com/LavaJover/shvark-rotation-service/internal/infrastructure/notifier"
	"github.com/LavaJover/shvark-rotation-service/internal/infrastructure/postgres"
	"github.com/LavaJover/shvark-rotation-service/internal/infrastructure/postgres/repository"
	"github.com/LavaJover/shvark-rotation-service/internal/infrastructure/wbapi"
	"github.com/LavaJover/shvark-rotation-service/internal/usecase"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()
	// Init database
	db := postgres.MustInitDB(cfg)

	if cfg.RotationDB.MigrationsPath != "" {
		if err := migrate.RunMigrations(db, cfg.RotationDB.MigrationsPath); err != nil {
			log.Fatalf("failed to run migrations: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Init repositories
	sessionRepo := repository.NewDefaultRotationSessionRepository(db)
	stepRepo := repository.NewDefaultStepRecordRepository(db)
	statsRepo := repository.NewDefaultCampaignStatsRepository(db)

	// Init marketplace API client
	tokens := wbapi.NewStaticTokenProvider(cfg.Accounts)
	wbClient := wbapi.NewClient(cfg.WBApi, tokens)

	// Init kafka
	brokers := []string{fmt.Sprintf("%s:%s", cfg.KafkaService.Host, cfg.KafkaService.Port)}
	pub := kafka.NewDefaultKafkaPublisher(brokers)
	sub := kafka.NewDefaultKafkaSubscriber(brokers)

	// Init telegram notifier
	tgNotifier := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)

	// Init prometheus metrics
	rotationMetrics := metrics.NewRotationMetrics()
	wbClient.SetRetryObserver(rotationMetrics)

	// Init stats usecase
	statsUsecase := usecase.NewDefaultCampaignStatsUsecase(
		wbClient,
		statsRepo,
		sessionRepo,
		usecase.StatsOptions{CallPause: cfg.Rotation.CallPause},
	)

	// Init rotation usecase
	rotationUsecase := usecase.NewDefaultRotationUsecase(
		sessionRepo,
		stepRepo,
		statsUsecase,
		wbClient,
		wbClient,
		tgNotifier,
		pub,
		rotationMetrics,
		usecase.RotationOptions{
			CheckInterval:         cfg.Rotation.CheckInterval,
			CallPause:             cfg.Rotation.CallPause,
			EventsTopic:           cfg.KafkaService.EventsTopic,
			DefaultViewsPerStep:   cfg.Rotation.DefaultViewsPerStep,
			DefaultTopUpThreshold: cfg.Rotation.DefaultTopUpThreshold,
			DefaultTopUpAmount:    cfg.Rotation.DefaultTopUpAmount,
		},
	)

	// Consume async rotate-check jobs
	go consumeRotateJobs(ctx, sub, rotationUsecase, cfg.KafkaService.JobsTopic, cfg.KafkaService.GroupID)

	// Start background sweeps
	tasks := background.NewBackgroundTasks(rotationUsecase, statsUsecase, cfg.Rotation.CheckInterval, cfg.Rotation.StatsInterval)
	tasks.StartAll(ctx)

	// Start HTTP API
	rotationHandler := httpapi.NewRotationHandler(rotationUsecase, pub, cfg.KafkaService.JobsTopic)
	statsHandler := httpapi.NewStatsHandler(statsUsecase)
	mux := httpapi.NewRouter(rotationHandler, statsHandler)

	addr := fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port)
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		if err := server.Shutdown(context.Background()); err != nil {
			log.Printf("http server shutdown error: %v\n", err)
		}
	}()

	log.Printf("rotation service listening on %s\n", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("failed to serve http: %v", err)
	}
}

// consumeRotateJobs runs an out-of-band check for every job message.
// A bad message is logged and dropped, never retried
func consumeRotateJobs(ctx context.Context, sub *kafka.DefaultKafkaSubscriber, rotationUC usecase.RotationUsecase, topic, groupID string) {
	messages, err := sub.Subscribe(ctx, topic, groupID)
	if err != nil {
		log.Printf("failed to subscribe to %s: %v\n", topic, err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			var job kafka.RotateJob
			if err := json.Unmarshal(msg.Value, &job); err != nil {
				slog.Error("failed to decode rotate job", "error", err.Error())
				continue
			}

			switch {
			case job.SessionID != "":
				if _, err := rotationUC.CheckSession(ctx, job.SessionID); err != nil {
					slog.Error("rotate job failed", "session_id", job.SessionID, "error", err.Error())
				}
			case job.AccountID != "" && job.CampaignID > 0:
				if _, err := rotationUC.CheckCampaign(ctx, job.AccountID, job.CampaignID); err != nil {
					slog.Error("rotate job failed", "campaign_id", job.CampaignID, "error", err.Error())
				}
			default:
				slog.Error("rotate job missing session_id or campaign reference")
			}
		}
	}
}
