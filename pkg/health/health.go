// Package health runs registered dependency checks in parallel and serves
// liveness and readiness endpoints.
package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Status represents the health state of a component or the system overall.
type Status string

const (
	StatusUp       Status = "up"
	StatusDown     Status = "down"
	StatusDegraded Status = "degraded"
)

const defaultTimeout = 5 * time.Second

// Check reports the state of a single dependency.
type Check func(ctx context.Context) ComponentHealth

// ComponentHealth holds the result of a single component check.
type ComponentHealth struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Report is the aggregated result of all component checks.
type Report struct {
	Status     Status                     `json:"status"`
	Components map[string]ComponentHealth `json:"components"`
	Timestamp  string                     `json:"timestamp"`
}

// Ping adapts a ping function to a Check. A failing ping reports down, or
// degraded when the dependency is optional.
func Ping(ping func(ctx context.Context) error, optional bool) Check {
	return func(ctx context.Context) ComponentHealth {
		if err := ping(ctx); err != nil {
			status := StatusDown
			if optional {
				status = StatusDegraded
			}
			return ComponentHealth{Status: status, Message: err.Error()}
		}
		return ComponentHealth{Status: StatusUp}
	}
}

type namedCheck struct {
	name  string
	check Check
}

// Checker holds the checks registered at startup. Register must not be
// called while Run is in progress.
type Checker struct {
	checks  []namedCheck
	timeout time.Duration
	logger  *slog.Logger
}

// NewChecker creates an empty Checker whose readiness runs are bounded by
// timeout, 5s when zero.
func NewChecker(timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Checker{
		timeout: timeout,
		logger:  slog.Default().With("component", "health"),
	}
}

// Register adds a named check. A second check under the same name replaces
// the first.
func (c *Checker) Register(name string, check Check) {
	for i := range c.checks {
		if c.checks[i].name == name {
			c.checks[i].check = check
			return
		}
	}
	c.checks = append(c.checks, namedCheck{name: name, check: check})
}

// Run executes every check concurrently. The overall status is down if any
// component is down, degraded if any is degraded, and up otherwise.
func (c *Checker) Run(ctx context.Context) Report {
	results := make([]ComponentHealth, len(c.checks))
	var wg sync.WaitGroup
	for i, nc := range c.checks {
		wg.Add(1)
		go func(i int, check Check) {
			defer wg.Done()
			start := time.Now()
			res := check(ctx)
			res.Latency = time.Since(start).Round(time.Millisecond).String()
			results[i] = res
		}(i, nc.check)
	}
	wg.Wait()

	report := Report{
		Status:     StatusUp,
		Components: make(map[string]ComponentHealth, len(results)),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	for i, res := range results {
		name := c.checks[i].name
		report.Components[name] = res
		switch {
		case res.Status == StatusDown:
			report.Status = StatusDown
			c.logger.Warn("component down", "name", name, "message", res.Message)
		case res.Status == StatusDegraded && report.Status == StatusUp:
			report.Status = StatusDegraded
		}
	}
	return report
}

// LiveHandler reports the process is serving.
func (c *Checker) LiveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
	}
}

// ReadyHandler reports ready while no check is down. Degraded optional
// dependencies still answer 200.
func (c *Checker) ReadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
		defer cancel()
		report := c.Run(ctx)
		status := http.StatusOK
		if report.Status == StatusDown {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, report)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
