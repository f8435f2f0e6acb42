// Package main is the entry point for the Gridiron dynasty league dashboard.
// It syncs the league's player pool and rosters from the league host, blends
// in expert rankings and projections, computes dynasty auction values, and
// serves the dashboard API including the live auction draft room.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/dynastyhq/gridiron/internal/cache"
	"github.com/dynastyhq/gridiron/internal/clients/fantasypros"
	"github.com/dynastyhq/gridiron/internal/clients/mfl"
	"github.com/dynastyhq/gridiron/internal/clients/sleeper"
	"github.com/dynastyhq/gridiron/internal/config"
	"github.com/dynastyhq/gridiron/internal/database"
	"github.com/dynastyhq/gridiron/internal/modules/draft"
	"github.com/dynastyhq/gridiron/internal/modules/league"
	"github.com/dynastyhq/gridiron/internal/modules/players"
	"github.com/dynastyhq/gridiron/internal/modules/rankings"
	syncmod "github.com/dynastyhq/gridiron/internal/modules/sync"
	"github.com/dynastyhq/gridiron/internal/reliability"
	"github.com/dynastyhq/gridiron/internal/scheduler"
	"github.com/dynastyhq/gridiron/internal/server"
	"github.com/dynastyhq/gridiron/internal/valuation"
	"github.com/dynastyhq/gridiron/pkg/logger"
)

const backupRetentionDays = 30

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	log.Info().Str("league", cfg.LeagueID).Str("year", cfg.LeagueYear).Msg("Starting Gridiron")

	// Databases: league.db holds the player pool, rankings and sync history;
	// cache.db is ephemeral and can be deleted without losing league state.
	leagueDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "league.db"),
		Profile: database.ProfileStandard,
		Name:    "league",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open league database")
	}
	defer leagueDB.Close()

	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer cacheDB.Close()

	for _, db := range []*database.DB{leagueDB, cacheDB} {
		if err := db.Migrate(); err != nil {
			log.Fatal().Err(err).Str("database", db.Name()).Msg("Failed to migrate database")
		}
	}

	// Response caches persist across restarts so a reboot does not re-download
	// the multi-megabyte player directory or burn ranking API quota.
	cacheDir := filepath.Join(cfg.DataDir, "cache")
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create cache directory")
	}

	mflCache := newSnapshotCache(time.Hour, filepath.Join(cacheDir, "mfl.msgpack"), log)
	fpCache := newSnapshotCache(6*time.Hour, filepath.Join(cacheDir, "fantasypros.msgpack"), log)
	sleeperCache := newSnapshotCache(24*time.Hour, filepath.Join(cacheDir, "sleeper.msgpack"), log)

	mflClient := mfl.NewClient(cfg.MFLBaseURL, cfg.MFLUserAgent, cfg.LeagueYear, log, mfl.WithCache(mflCache))
	fpClient := fantasypros.NewClient(cfg.FantasyProsBaseURL, cfg.FantasyProsAPIKey, cfg.LeagueYear, log, fantasypros.WithCache(fpCache))
	sleeperClient := sleeper.NewClient(cfg.SleeperBaseURL, log, sleeper.WithCache(sleeperCache))

	playersRepo := players.NewRepository(leagueDB.Conn(), log)
	rankingsRepo := rankings.NewRepository(leagueDB.Conn(), log)
	runRepo := syncmod.NewRunRepository(leagueDB.Conn(), log)

	syncService := syncmod.NewService(mflClient, fpClient, sleeperClient, playersRepo, runRepo, cfg.LeagueID, cfg.LeagueYear, log)
	syncJob := syncmod.NewNightlyJob(syncService)

	leagueService := league.NewService(mflClient, playersRepo, cfg.LeagueID, log)

	// The draft room suggests values from the live free-agent pool, so a
	// nomination always reflects the latest sync.
	draftHub := draft.NewHub(log)
	draftValue := func(playerID string) int {
		record, err := playersRepo.GetByID(playerID)
		if err != nil || record == nil {
			return 0
		}
		pool, err := playersRepo.FreeAgents(cfg.LeagueID, players.FreeAgentQuery{})
		if err != nil {
			return 0
		}
		settings := valuation.Settings{
			TotalBudget:   cfg.TotalBudget,
			NumTeams:      cfg.NumTeams,
			RosterSize:    cfg.RosterSize,
			CurrentYear:   cfg.CurrentYear(),
			BlendRankings: true,
		}
		return valuation.Value(*record, pool, settings).AuctionValue
	}
	draftService := draft.NewService(playersRepo, draftValue, draftHub.Broadcast, log)

	// Backups are optional: without object storage credentials the dashboard
	// runs fine, it just has no offsite copies.
	var backupService *reliability.BackupService
	var backupJob *reliability.Job
	if cfg.BackupEnabled() {
		store, err := reliability.NewS3Client(context.Background(), reliability.S3Config{
			Endpoint:  cfg.BackupEndpoint,
			AccessKey: cfg.BackupAccessKey,
			SecretKey: cfg.BackupSecretKey,
			Bucket:    cfg.BackupBucket,
		}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create backup storage client")
		}
		backupService = reliability.NewBackupService([]*database.DB{leagueDB, cacheDB}, store, cfg.DataDir, log)
		backupJob = reliability.NewJob(backupService, backupRetentionDays)
		log.Info().Str("bucket", cfg.BackupBucket).Msg("Backups enabled")
	} else {
		log.Warn().Msg("Backup credentials not configured, offsite backups disabled")
	}

	history := scheduler.NewHistory(cacheDB.Conn(), log)
	sched := scheduler.New(log, scheduler.WithHistory(history))
	if cfg.LeagueID != "" {
		if err := sched.AddJob(cfg.SyncSchedule, syncJob); err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule league sync")
		}
	} else {
		log.Warn().Msg("No league configured, scheduled sync disabled")
	}
	if backupJob != nil {
		if err := sched.AddJob(cfg.BackupSchedule, backupJob); err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule backups")
		}
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Log:           log,
		LeagueDB:      leagueDB,
		CacheDB:       cacheDB,
		Config:        cfg,
		Port:          cfg.Port,
		DevMode:       cfg.DevMode,
		PlayersRepo:   playersRepo,
		TrendingHost:  sleeperClient,
		RankingsRepo:  rankingsRepo,
		RunRepo:       runRepo,
		LeagueService: leagueService,
		DraftService:  draftService,
		DraftHub:      draftHub,
		BackupService: backupService,
	})
	if backupJob != nil {
		srv.SetJobs(sched, history, syncJob, backupJob)
	} else {
		srv.SetJobs(sched, history, syncJob, nil)
	}

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	// Flush response caches so the next start resumes with warm data.
	for _, c := range []*cache.Cache{mflCache, fpCache, sleeperCache} {
		if err := c.Save(); err != nil {
			log.Warn().Err(err).Msg("Failed to save cache snapshot")
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

// newSnapshotCache builds a response cache backed by a msgpack snapshot,
// loading any previous snapshot from disk.
func newSnapshotCache(ttl time.Duration, path string, log zerolog.Logger) *cache.Cache {
	c := cache.New(ttl, log, cache.WithSnapshotPath(path))
	if err := c.Load(); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to load cache snapshot")
	}
	return c
}
