package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pos-service/config"
	"pos-service/internal/api"
	"pos-service/internal/auth"
	"pos-service/internal/broker"
	"pos-service/internal/service"
	"pos-service/internal/state"
	"pos-service/internal/util"
	"pos-service/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting pos service")

	tp, err := util.InitTracer("pos-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	snapshot, err := newSnapshot(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize snapshot backend: %v", err)
	}
	defer snapshot.Close()
	log.Printf("Snapshot backend ready: %s", cfg.Snapshot.Backend)

	// load last persisted tree; a missing or malformed blob falls back to
	// the seed dataset
	loadCtx, loadCancel := context.WithTimeout(context.Background(), 10*time.Second)
	data, err := snapshot.Load(loadCtx)
	loadCancel()
	if err != nil {
		logger.Warn("Failed to load state snapshot, using defaults", zap.Error(err))
		data = nil
	}
	store := state.NewStore(state.DecodeState(data, logger))

	snapshotWorker := worker.NewSnapshotWorker(snapshot)
	store.OnChange(snapshotWorker.Enqueue)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	go func() {
		if err := snapshotWorker.Start(workerCtx); err != nil && err != context.Canceled {
			log.Printf("Snapshot worker error: %v", err)
		}
	}()

	var publisher *broker.EventPublisher
	if cfg.Kafka.Enabled {
		producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicSales)
		defer producer.Close()
		publisher = broker.NewEventPublisher(producer)
		log.Println("Kafka producer initialized")
	}

	var verifier service.SecretVerifier
	if cfg.Auth.SecretBcryptHash != "" {
		verifier = service.NewBcryptVerifier(cfg.Auth.SecretBcryptHash)
	} else {
		verifier = service.NewSharedSecretVerifier(cfg.Auth.SharedSecret)
	}

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
	authService := service.NewAuthService(store, verifier, tokens)
	saleService := service.NewSaleService(store, publisher, cfg.Business.TaxRate)
	reportService := service.NewReportService(store)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(authService, saleService, reportService, store, tokens, cfg.Business.GlobalDiscountCap)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// stop the worker last so the final state makes it to disk
	workerCancel()
	time.Sleep(100 * time.Millisecond)

	log.Println("Server exited")
}

func newSnapshot(cfg *config.Config) (state.Snapshot, error) {
	switch cfg.Snapshot.Backend {
	case "postgres":
		return state.NewPostgresSnapshot(cfg.Snapshot.DatabaseURL)
	case "redis":
		return state.NewRedisSnapshot(cfg.Snapshot.RedisAddr, cfg.Snapshot.RedisPassword, cfg.Snapshot.RedisDB)
	default:
		return state.NewFileSnapshot(cfg.Snapshot.FilePath), nil
	}
}
