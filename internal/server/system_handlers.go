package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/dynastyhq/gridiron/internal/database"
	syncmod "github.com/dynastyhq/gridiron/internal/modules/sync"
	"github.com/dynastyhq/gridiron/internal/reliability"
	"github.com/dynastyhq/gridiron/internal/scheduler"
)

// SystemHandlers handles system-wide monitoring and operations endpoints.
type SystemHandlers struct {
	log           zerolog.Logger
	dataDir       string
	startupTime   time.Time
	leagueDB      *database.DB
	cacheDB       *database.DB
	runRepo       *syncmod.RunRepository
	backupService *reliability.BackupService
	leagueID      string

	// Jobs are set after scheduler registration in main.
	sched     *scheduler.Scheduler
	history   *scheduler.History
	syncJob   scheduler.Job
	backupJob scheduler.Job

	syncRunning   atomic.Bool
	backupRunning atomic.Bool
}

// NewSystemHandlers creates a new system handlers instance.
func NewSystemHandlers(
	log zerolog.Logger,
	dataDir string,
	leagueDB, cacheDB *database.DB,
	runRepo *syncmod.RunRepository,
	backupService *reliability.BackupService,
	leagueID string,
) *SystemHandlers {
	return &SystemHandlers{
		log:           log.With().Str("component", "system_handlers").Logger(),
		dataDir:       dataDir,
		startupTime:   time.Now(),
		leagueDB:      leagueDB,
		cacheDB:       cacheDB,
		runRepo:       runRepo,
		backupService: backupService,
		leagueID:      leagueID,
	}
}

// SetJobs registers job instances for manual triggering. Triggers run through
// the scheduler when one is set so manual runs land in job history too.
func (h *SystemHandlers) SetJobs(sched *scheduler.Scheduler, history *scheduler.History, syncJob, backupJob scheduler.Job) {
	h.sched = sched
	h.history = history
	h.syncJob = syncJob
	h.backupJob = backupJob
}

func (h *SystemHandlers) runJob(job scheduler.Job) error {
	if h.sched != nil {
		return h.sched.RunNow(job)
	}
	return job.Run()
}

// HandleStatus returns overall system status: uptime, resource usage and
// database health.
func (h *SystemHandlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, ramPercent := h.getSystemStats()

	databases := map[string]string{}
	for _, db := range []*database.DB{h.leagueDB, h.cacheDB} {
		if db == nil {
			continue
		}
		status := "healthy"
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		if err := db.HealthCheck(ctx); err != nil {
			status = "unhealthy: " + err.Error()
		}
		cancel()
		databases[db.Name()] = status
	}

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"uptime_hours": time.Since(h.startupTime).Hours(),
			"cpu_percent":  cpuPercent,
			"ram_percent":  ramPercent,
			"databases":    databases,
			"sync_running": h.syncRunning.Load(),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// DBInfo describes a single database file on disk.
type DBInfo struct {
	Name   string  `json:"name"`
	Path   string  `json:"path"`
	SizeMB float64 `json:"size_mb"`
}

// HandleDatabaseStats returns on-disk database sizes.
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	infos := []DBInfo{}
	totalSizeMB := 0.0

	for _, db := range []*database.DB{h.leagueDB, h.cacheDB} {
		if db == nil {
			continue
		}
		info, err := os.Stat(db.Path())
		if err != nil {
			continue
		}
		sizeMB := float64(info.Size()) / 1024 / 1024
		totalSizeMB += sizeMB
		infos = append(infos, DBInfo{
			Name:   filepath.Base(db.Path()),
			Path:   db.Path(),
			SizeMB: sizeMB,
		})
	}

	response := map[string]interface{}{
		"databases":     infos,
		"total_size_mb": totalSizeMB,
		"last_checked":  time.Now().Format(time.RFC3339),
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleSyncRuns returns recent sync run history.
func (h *SystemHandlers) HandleSyncRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := h.runRepo.Recent(h.leagueID, limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load sync runs")
		http.Error(w, "Failed to load sync runs", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}

// HandleTriggerSync kicks off a league sync in the background. Only one sync
// runs at a time; a second trigger while one is in flight returns 409.
func (h *SystemHandlers) HandleTriggerSync(w http.ResponseWriter, r *http.Request) {
	if h.syncJob == nil {
		http.Error(w, "Sync job not registered", http.StatusServiceUnavailable)
		return
	}
	if !h.syncRunning.CompareAndSwap(false, true) {
		http.Error(w, "A sync is already running", http.StatusConflict)
		return
	}

	h.log.Info().Msg("Manual league sync triggered")
	go func() {
		defer h.syncRunning.Store(false)
		if err := h.runJob(h.syncJob); err != nil {
			h.log.Error().Err(err).Msg("Manual league sync failed")
		}
	}()

	h.writeJSON(w, http.StatusAccepted, map[string]string{
		"status":  "success",
		"message": "League sync triggered",
	})
}

// HandleTriggerBackup kicks off a database backup in the background.
func (h *SystemHandlers) HandleTriggerBackup(w http.ResponseWriter, r *http.Request) {
	if h.backupJob == nil {
		http.Error(w, "Backups are not configured", http.StatusServiceUnavailable)
		return
	}
	if !h.backupRunning.CompareAndSwap(false, true) {
		http.Error(w, "A backup is already running", http.StatusConflict)
		return
	}

	h.log.Info().Msg("Manual backup triggered")
	go func() {
		defer h.backupRunning.Store(false)
		if err := h.runJob(h.backupJob); err != nil {
			h.log.Error().Err(err).Msg("Manual backup failed")
		}
	}()

	h.writeJSON(w, http.StatusAccepted, map[string]string{
		"status":  "success",
		"message": "Backup triggered",
	})
}

// HandleJobHistory handles GET /api/system/jobs
// Recent scheduled and manual job runs, newest first.
func (h *SystemHandlers) HandleJobHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		http.Error(w, "Job history not configured", http.StatusServiceUnavailable)
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := h.history.Recent(r.URL.Query().Get("job"), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load job history")
		http.Error(w, "Failed to load job history", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  runs,
		"count": len(runs),
	})
}

// HandleListBackups lists archives in object storage, newest first.
func (h *SystemHandlers) HandleListBackups(w http.ResponseWriter, r *http.Request) {
	if h.backupService == nil {
		http.Error(w, "Backups are not configured", http.StatusServiceUnavailable)
		return
	}

	backups, err := h.backupService.ListBackups(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list backups")
		http.Error(w, "Failed to list backups", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"backups": backups,
		"count":   len(backups),
	})
}

// getSystemStats calculates CPU and RAM usage percentages. The CPU sample
// interval is 100ms so dashboard polls stay fast.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
