package handler

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// HealthProbe checks one dependency of the service.
type HealthProbe struct {
	Name   string
	IsCore bool
	Check  func(ctx context.Context) error
}

type HealthCheckHandler struct {
	probes []HealthProbe
}

func NewHealthCheckHandler(probes ...HealthProbe) *HealthCheckHandler {
	return &HealthCheckHandler{probes: probes}
}

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Uptime     string            `json:"uptime"`
	Components []ComponentStatus `json:"components,omitempty"`
}

type ComponentStatus struct {
	Name    string        `json:"name"`
	Status  string        `json:"status"`
	IsCore  bool          `json:"is_core"`
	Latency time.Duration `json:"latency,omitempty"`
	Error   string        `json:"error,omitempty"`
}

var startupTime = time.Now()

// AdvancedHealthCheck runs every probe and answers 503 when a core one fails.
func (h *HealthCheckHandler) AdvancedHealthCheck(ctx context.Context, c *app.RequestContext) {
	status := HealthStatus{
		Status:     "healthy",
		Timestamp:  time.Now().UTC(),
		Uptime:     time.Since(startupTime).Truncate(time.Second).String(),
		Components: make([]ComponentStatus, 0, len(h.probes)),
	}

	for _, probe := range h.probes {
		status.Components = append(status.Components, runProbe(ctx, probe))
	}

	if hasCriticalErrors(status.Components) {
		status.Status = "degraded"
		c.JSON(consts.StatusServiceUnavailable, status)
		return
	}

	c.JSON(consts.StatusOK, status)
}

func runProbe(ctx context.Context, probe HealthProbe) ComponentStatus {
	start := time.Now()
	err := probe.Check(ctx)
	comp := ComponentStatus{
		Name:    probe.Name,
		Status:  "ok",
		IsCore:  probe.IsCore,
		Latency: time.Since(start),
	}
	if err != nil {
		comp.Status = "error"
		comp.Error = err.Error()
	}
	return comp
}

func hasCriticalErrors(components []ComponentStatus) bool {
	for _, comp := range components {
		if comp.IsCore && comp.Status != "ok" {
			return true
		}
	}
	return false
}
