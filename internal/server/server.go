// Package server provides the HTTP server and routing for the league dashboard.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/dynastyhq/gridiron/internal/config"
	"github.com/dynastyhq/gridiron/internal/database"
	"github.com/dynastyhq/gridiron/internal/modules/draft"
	"github.com/dynastyhq/gridiron/internal/modules/league"
	"github.com/dynastyhq/gridiron/internal/modules/players"
	"github.com/dynastyhq/gridiron/internal/modules/rankings"
	syncmod "github.com/dynastyhq/gridiron/internal/modules/sync"
	"github.com/dynastyhq/gridiron/internal/reliability"
	"github.com/dynastyhq/gridiron/internal/scheduler"
)

// Config holds everything the server needs, wired in main.
type Config struct {
	Log      zerolog.Logger
	LeagueDB *database.DB
	CacheDB  *database.DB
	Config   *config.Config
	Port     int
	DevMode  bool

	PlayersRepo   *players.Repository
	TrendingHost  TrendingHost
	RankingsRepo  *rankings.Repository
	RunRepo       *syncmod.RunRepository
	LeagueService *league.Service
	DraftService  *draft.Service
	DraftHub      *draft.Hub

	// BackupService is nil when object storage is not configured.
	BackupService *reliability.BackupService
}

// Server is the HTTP server.
type Server struct {
	router          *chi.Mux
	server          *http.Server
	log             zerolog.Logger
	leagueDB        *database.DB
	cacheDB         *database.DB
	cfg             *config.Config
	systemHandlers  *SystemHandlers
	playerHandlers  *PlayerHandlers
	leagueHandlers  *LeagueHandlers
	rankingHandlers *RankingHandlers
	draftHandlers   *DraftHandlers
}

// New creates a new HTTP server.
func New(cfg Config) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		log:      cfg.Log.With().Str("component", "server").Logger(),
		leagueDB: cfg.LeagueDB,
		cacheDB:  cfg.CacheDB,
		cfg:      cfg.Config,
	}

	s.systemHandlers = NewSystemHandlers(cfg.Log, cfg.Config.DataDir, cfg.LeagueDB, cfg.CacheDB, cfg.RunRepo, cfg.BackupService, cfg.Config.LeagueID)
	s.playerHandlers = NewPlayerHandlers(cfg.Log, cfg.PlayersRepo, cfg.TrendingHost, cfg.Config)
	s.leagueHandlers = NewLeagueHandlers(cfg.Log, cfg.LeagueService)
	s.rankingHandlers = NewRankingHandlers(cfg.Log, cfg.RankingsRepo, cfg.Config)
	s.draftHandlers = NewDraftHandlers(cfg.Log, cfg.DraftService, cfg.DraftHub)

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// SetJobs registers job instances for manual triggering via API.
func (s *Server) SetJobs(sched *scheduler.Scheduler, history *scheduler.History, syncJob, backupJob scheduler.Job) {
	s.systemHandlers.SetJobs(sched, history, syncJob, backupJob)
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// The draft websocket must bypass the request timeout, so the
		// timeout middleware applies per-group below rather than globally.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Route("/system", func(r chi.Router) {
				r.Get("/status", s.systemHandlers.HandleStatus)
				r.Get("/database/stats", s.systemHandlers.HandleDatabaseStats)
				r.Get("/backups", s.systemHandlers.HandleListBackups)
				r.Route("/jobs", func(r chi.Router) {
					r.Get("/", s.systemHandlers.HandleJobHistory)
					r.Post("/league-sync", s.systemHandlers.HandleTriggerSync)
					r.Post("/database-backup", s.systemHandlers.HandleTriggerBackup)
				})
			})

			r.Get("/sync/runs", s.systemHandlers.HandleSyncRuns)

			r.Route("/players", func(r chi.Router) {
				r.Get("/", s.playerHandlers.HandleFreeAgents)
				r.Get("/counts", s.playerHandlers.HandleCounts)
				r.Get("/trending", s.playerHandlers.HandleTrending)
				r.Get("/{playerID}", s.playerHandlers.HandleGetPlayer)
			})

			r.Get("/valuations", s.playerHandlers.HandleValuations)
			r.Get("/tiers", s.playerHandlers.HandleTiers)

			r.Route("/league", func(r chi.Router) {
				r.Get("/standings", s.leagueHandlers.HandleStandings)
				r.Get("/rosters", s.leagueHandlers.HandleRosters)
			})

			r.Route("/rankings", func(r chi.Router) {
				r.Get("/", s.rankingHandlers.HandleList)
				r.Post("/upload", s.rankingHandlers.HandleUpload)
				r.Delete("/", s.rankingHandlers.HandleDelete)
			})

			r.Route("/draft", func(r chi.Router) {
				r.Get("/state", s.draftHandlers.HandleState)
				r.Post("/start", s.draftHandlers.HandleStart)
				r.Post("/nominate", s.draftHandlers.HandleNominate)
				r.Post("/bid", s.draftHandlers.HandleBid)
				r.Post("/award", s.draftHandlers.HandleAward)
				r.Post("/undo", s.draftHandlers.HandleUndo)
			})
		})

		r.Get("/draft/ws", s.draftHandlers.HandleWebsocket)
	})
}

// Start begins listening for requests.
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"service": "gridiron",
	}

	s.writeJSON(w, http.StatusOK, response)
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
