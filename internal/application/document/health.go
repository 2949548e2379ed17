package document

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Health statuses
const (
	HealthOK       = "ok"
	HealthDegraded = "degraded"
	HealthDown     = "down"
)

// Check probes one dependency. A failing optional check degrades the
// service instead of taking it down.
type Check struct {
	Name     string
	Ping     func(ctx context.Context) error
	Optional bool
}

// CheckResult is the outcome of one Check
type CheckResult struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

// HealthResponse is the service health report
type HealthResponse struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Documents int64                  `json:"documents"`
	Checks    map[string]CheckResult `json:"checks"`
}

// DocumentCounter counts stored documents
type DocumentCounter interface {
	Count(ctx context.Context) (int64, error)
}

// HealthService probes the service dependencies
type HealthService struct {
	checks  []Check
	counter DocumentCounter
	version string
	started time.Time
	timeout time.Duration
	logger  *zap.Logger
}

// NewHealthService creates a HealthService; counter may be nil
func NewHealthService(version string, counter DocumentCounter, logger *zap.Logger, checks ...Check) *HealthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthService{
		checks:  checks,
		counter: counter,
		version: version,
		started: time.Now(),
		timeout: 3 * time.Second,
		logger:  logger,
	}
}

// Check runs every probe concurrently
func (h *HealthService) Check(ctx context.Context) *HealthResponse {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	results := make([]CheckResult, len(h.checks))
	var wg sync.WaitGroup
	for i, c := range h.checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			err := c.Ping(ctx)
			results[i] = CheckResult{Status: HealthOK, LatencyMS: time.Since(start).Milliseconds()}
			if err != nil {
				results[i].Status = HealthDown
				results[i].Error = err.Error()
			}
		}()
	}
	wg.Wait()

	resp := &HealthResponse{
		Status:  HealthOK,
		Version: h.version,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
		Checks:  make(map[string]CheckResult, len(h.checks)),
	}
	for i, c := range h.checks {
		r := results[i]
		resp.Checks[c.Name] = r
		if r.Status == HealthOK {
			continue
		}
		h.logger.Warn("Health check failed", zap.String("check", c.Name), zap.String("error", r.Error))
		if !c.Optional {
			resp.Status = HealthDown
		} else if resp.Status == HealthOK {
			resp.Status = HealthDegraded
		}
	}

	if h.counter != nil {
		count, err := h.counter.Count(ctx)
		if err != nil {
			h.logger.Warn("Failed to count documents", zap.Error(err))
		}
		resp.Documents = count
	}
	return resp
}
