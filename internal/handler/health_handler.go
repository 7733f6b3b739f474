package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"docworker/internal/service"
)

// stallFactor is how many poll intervals may pass without a finished cycle
// before the worker is reported unready. While a cycle is running, each
// document may additionally take up to the document timeout.
const stallFactor = 3

// Pinger checks database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// WorkerStatusProvider exposes the worker's progress.
type WorkerStatusProvider interface {
	Status() service.WorkerStatus
	PollInterval() time.Duration
	DocumentTimeout() time.Duration
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	db     Pinger
	worker WorkerStatusProvider
	now    func() time.Time
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db Pinger, worker WorkerStatusProvider) *HealthHandler {
	return &HealthHandler{db: db, worker: worker, now: time.Now}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	RespondOK(c, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	if err := h.db.Ping(c.Request.Context()); err != nil {
		RespondError(c, http.StatusServiceUnavailable, "DATABASE_UNAVAILABLE", "database not reachable")
		return
	}

	status := h.worker.Status()
	limit := stallFactor * h.worker.PollInterval()
	last := status.LastCycleAt
	if last.IsZero() {
		last = status.StartedAt
	}
	msg := "no poll cycle finished recently"
	if !status.CycleStartedAt.IsZero() {
		last = status.LastProgressAt
		limit += h.worker.DocumentTimeout()
		msg = "running poll cycle made no progress"
	}

	if h.now().Sub(last) > limit {
		if status.LastCycleError != "" {
			msg = status.LastCycleError
		}
		RespondErrorWithData(c, http.StatusServiceUnavailable, "WORKER_STALLED", msg, status)
		return
	}

	RespondOK(c, gin.H{"status": "ok", "worker": status})
}
