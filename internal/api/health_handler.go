package api

import (
	"context"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/phrazzld/blog-api/internal/api/shared"
)

// Pinger checks that a backing service is reachable. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type healthCheck struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type healthReport struct {
	Status        string         `json:"status"`
	Timestamp     string         `json:"timestamp"`
	Version       string         `json:"version"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	Database      healthCheck    `json:"database"`
	Environment   string         `json:"environment"`
	Metrics       map[string]any `json:"metrics"`
}

// HealthHandler reports process liveness and database reachability.
type HealthHandler struct {
	db          Pinger
	version     string
	environment string
	started     time.Time
	now         func() time.Time
	logger      *slog.Logger
}

// NewHealthHandler creates a new HealthHandler. Uptime is measured from the
// moment it is created.
func NewHealthHandler(db Pinger, version, environment string, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for HealthHandler")
	}
	if environment == "" {
		environment = "unknown"
	}
	return &HealthHandler{
		db:          db,
		version:     version,
		environment: environment,
		started:     time.Now(),
		now:         time.Now,
		logger:      logger.With(slog.String("component", "health_handler")),
	}
}

// Check handles GET /health.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	report := healthReport{
		Status:        "ok",
		Timestamp:     now.UTC().Format(shared.TimestampFormat),
		Version:       h.version,
		UptimeSeconds: int64(now.Sub(h.started).Seconds()),
		Database:      healthCheck{Status: "ok"},
		Environment:   h.environment,
		Metrics: map[string]any{
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}

	status := http.StatusOK
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			h.logger.Error("health check database error", slog.Any("error", err))
			report.Status = "error"
			report.Database = healthCheck{Status: "error", Message: err.Error()}
			status = http.StatusServiceUnavailable
		}
	}

	shared.RespondWithJSON(w, r, status, shared.Envelope{
		Data: report,
		Meta: shared.Meta{"timestamp": report.Timestamp},
	})
}
