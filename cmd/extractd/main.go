package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/seremi5/expense-management/constants"
	"github.com/seremi5/expense-management/internal/async"
	"github.com/seremi5/expense-management/internal/common"
	"github.com/seremi5/expense-management/internal/extraction"
	"github.com/seremi5/expense-management/internal/filecheck"
	"github.com/seremi5/expense-management/internal/ingest"
	"github.com/seremi5/expense-management/internal/provider/gemini"
	repo "github.com/seremi5/expense-management/internal/repository"
	"github.com/seremi5/expense-management/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	if cfg.Database.DSN == "" {
		logger.Error("missing DB_URL environment variable")
		os.Exit(2)
	}
	if len(cfg.Server.WatchRoots) == 0 {
		logger.Error("missing WATCH_ROOTS environment variable")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := repo.Open(ctx, repo.Config{
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer repo.Close(pool, logger)

	if err := repo.HealthCheck(ctx, pool, 5*time.Second, logger); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	records := repo.NewExtractionRecordRepository(pool, logger)
	if err := records.Init(ctx); err != nil {
		logger.Error("failed to prepare extraction_records table", "error", err)
		os.Exit(1)
	}

	client, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:       cfg.Provider.APIKey,
		Model:        cfg.Provider.Model,
		Temperature:  cfg.Provider.Temperature,
		UploadPoll:   cfg.Provider.UploadPoll,
		UploadExpiry: cfg.Provider.UploadExpiry,
	}, logger)
	if err != nil {
		logger.Error("failed to create extraction provider client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Warn("closing provider client", "error", err)
		}
	}()

	files := filecheck.NewValidator(filecheck.Limits{
		MaxFileSize: cfg.Files.MaxFileSize,
		MaxPDFPages: cfg.Files.MaxPDFPages,
		MinWidth:    cfg.Files.MinWidth,
		MinHeight:   cfg.Files.MinHeight,
	}, logger)

	pipe := extraction.NewPipeline(files, client, extraction.RetryPolicy{
		MaxRetries: cfg.Provider.MaxRetries,
		BaseDelay:  cfg.Provider.RetryBase,
		Jitter:     cfg.Provider.RetryJitter,
		Log:        logger,
	}, logger)

	extractor := service.NewExtractor(pipe, records, logger)
	queue := async.NewExtractorQueue(extractor, logger,
		async.WithWorkers(cfg.Server.Workers),
		async.WithQueueSize(512),
		async.WithJobTimeout(3*time.Minute),
	)

	events, watchErrs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       cfg.Server.WatchRoots,
		InitialScan: true,
		Debounce:    500 * time.Millisecond,
		Logger:      logger,
	})
	if err != nil {
		logger.Error("failed to start directory watcher", "error", err)
		os.Exit(1)
	}
	go func() {
		for path := range events {
			_ = queue.Enqueue(ctx, async.Job{Path: path, Kind: constants.KindDocument})
		}
	}()
	go func() {
		for err := range watchErrs {
			logger.Warn("watcher reported error", "error", err)
		}
	}()

	// gRPC health endpoint so orchestrators can probe the daemon.
	lis, err := net.Listen("tcp", cfg.Server.HealthAddr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", cfg.Server.HealthAddr, "error", err)
		os.Exit(1)
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	logger.Info("extractd listening", "addr", cfg.Server.HealthAddr, "watch_roots", cfg.Server.WatchRoots)
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			slog.Error("gRPC serve error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	queue.Shutdown(context.Background())
	grpcServer.GracefulStop()
}
