package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/UnknownOlympus/athena/internal/lib/logger/sl"
)

const defaultCheckTimeout = 5 * time.Second

// Pinger is a collaborator that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Check names a collaborator in the health report.
type Check struct {
	Name   string
	Pinger Pinger
}

type HealthChecker struct {
	checks  []Check
	timeout time.Duration
	log     *slog.Logger
}

func NewHealthChecker(log *slog.Logger, checks ...Check) *HealthChecker {
	return &HealthChecker{
		checks:  checks,
		timeout: defaultCheckTimeout,
		log:     log,
	}
}

func (h *HealthChecker) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	h.log.DebugContext(req.Context(), "Performing health checks...")

	ctx, cancel := context.WithTimeout(req.Context(), h.timeout)
	defer cancel()

	status := make(map[string]string, len(h.checks))
	overallStatus := http.StatusOK

	for _, check := range h.checks {
		if err := check.Pinger.Ping(ctx); err != nil {
			status[check.Name] = "unavailable"
			overallStatus = http.StatusServiceUnavailable
			h.log.WarnContext(ctx, "Health check failed", "component", check.Name, sl.Err(err))
			continue
		}
		status[check.Name] = "ok"
	}

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(overallStatus)
	if err := json.NewEncoder(writer).Encode(status); err != nil {
		h.log.ErrorContext(req.Context(), "Failed to write health check response", sl.Err(err))
	}

	h.log.DebugContext(req.Context(), "Health checks completed", "status", overallStatus)
}
