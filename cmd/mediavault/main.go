package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mediavault/mediavault/internal/dedup/domain"
	dedupRepo "github.com/mediavault/mediavault/internal/dedup/repository"
	dedupSvc "github.com/mediavault/mediavault/internal/dedup/service"
	deletionRepo "github.com/mediavault/mediavault/internal/deletion/repository"
	deletionSvc "github.com/mediavault/mediavault/internal/deletion/service"
	libraryRepo "github.com/mediavault/mediavault/internal/library/repository"
	librarySvc "github.com/mediavault/mediavault/internal/library/service"
	"github.com/mediavault/mediavault/internal/storage"
	"github.com/mediavault/mediavault/pkg/config"
	"github.com/mediavault/mediavault/pkg/database"
	"github.com/mediavault/mediavault/pkg/events"
	"github.com/mediavault/mediavault/pkg/interfaces"
	"github.com/mediavault/mediavault/pkg/logger"
	"github.com/mediavault/mediavault/pkg/utils"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(cfg.Logger.Level, cfg.Logger.Development)

	log.Info("MediaVault starting",
		interfaces.String("environment", cfg.Service.Environment))

	// Connect to database
	log.Info("Connecting to database...")
	db, err := database.NewGormDB(&database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxConnections:  cfg.Database.MaxConnections,
		MinConnections:  cfg.Database.MaxConnections / 5,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: 30 * time.Minute,
	})
	if err != nil {
		log.Fatal("Failed to connect to database", interfaces.Error(err))
	}

	log.Info("Running database migrations...")
	if err := database.MigrateDatabase(db); err != nil {
		log.Fatal("Failed to run migrations", interfaces.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Event bus: NATS when configured, in-memory otherwise
	var eventBus interfaces.EventBus
	if cfg.Events.NATSURL != "" {
		natsBus, err := events.NewNATSEventBus(cfg.Events.NATSURL, cfg.Events.Stream, log)
		if err != nil {
			log.Fatal("Failed to connect to NATS", interfaces.Error(err))
		}
		eventBus = natsBus
	} else {
		eventBus = events.NewInMemoryEventBus(log)
	}
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", interfaces.Error(err))
	}
	defer eventBus.Stop()

	cache := utils.NewInMemoryCache()

	// Services
	inventoryService := librarySvc.NewInventoryService(
		libraryRepo.NewGormRepository(db),
		eventBus,
		cache,
		log,
	)

	if total, err := inventoryService.CountMediaFiles(ctx, libraryRepo.MediaFilter{}); err == nil {
		log.Info("Inventory loaded", interfaces.Int64("media_files", total))
	}

	dedupService := dedupSvc.NewDedupService(
		dedupRepo.NewGormRepository(db),
		eventBus,
		log,
		dedupSvc.Options{
			FuzzyThreshold: float64(cfg.Dedup.FuzzyThreshold),
			Thresholds: domain.RetentionThresholds{
				ManualReview: cfg.Dedup.ManualReviewDelta,
				AutoApprove:  cfg.Dedup.AutoApproveDelta,
			},
			Language: domain.LanguagePolicy{
				RequireEnglishAudio:  cfg.Language.RequireEnglishAudio,
				ForeignFilmHeuristic: cfg.Language.ForeignFilmHeuristic,
			},
		},
	)

	resolver := storage.NewChainResolver(
		cfg.Storage.ShareRoot,
		cfg.Storage.MountPath,
		cfg.Storage.DevFallbackPath,
		log,
	)

	deletionService := deletionSvc.NewDeletionService(
		deletionRepo.NewGormRepository(db),
		resolver,
		storage.NewOSMover(),
		eventBus,
		log,
		deletionSvc.Options{
			StagingRoots:   cfg.Deletion.StagingRoots,
			StagingSubdirs: cfg.Deletion.StagingSubdirs,
			Retention:      cfg.Deletion.RetentionWindow(),
		},
	)

	// Background sweeps
	go runDetectionSweep(ctx, dedupService, cfg.Dedup.DetectInterval, log)
	go runExpirySweep(ctx, deletionService, cfg.Deletion.SweepInterval, log)

	log.Info("MediaVault started")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	log.Info("Shutting down", interfaces.String("signal", sig.String()))
	cancel()

	sqlDB, err := db.DB()
	if err == nil {
		sqlDB.Close()
	}

	log.Info("MediaVault stopped")
}

// runDetectionSweep periodically runs both duplicate detection strategies.
func runDetectionSweep(ctx context.Context, svc *dedupSvc.DedupService, interval time.Duration, log interfaces.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := svc.DetectDuplicates(ctx); err != nil {
				log.Error("Duplicate detection sweep failed", interfaces.Error(err))
			}
		}
	}
}

// runExpirySweep periodically removes staged deletions past the retention
// window.
func runExpirySweep(ctx context.Context, svc *deletionSvc.DeletionService, interval time.Duration, log interfaces.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := svc.CleanupExpired(ctx); err != nil {
				log.Error("Expiry sweep failed", interfaces.Error(err))
			}
		}
	}
}
