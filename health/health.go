// Package health provides reusable health check functions for the
// evaluation server and simulation workers. It offers standardized
// ways to verify dependencies, connectivity and checkpoint artifacts.
package health

import (
	"context"
	"fmt"
	"net"
	"os"

	"github.com/claudiup423/dominator/queue"
	"github.com/claudiup423/dominator/registry"
)

// Health status constants represent the operational state of a component.
const (
	// StatusHealthy indicates the component is fully operational.
	StatusHealthy = "healthy"

	// StatusDegraded indicates the component is operational but experiencing issues.
	StatusDegraded = "degraded"

	// StatusUnhealthy indicates the component is not operational.
	StatusUnhealthy = "unhealthy"
)

// Status represents the health state of a component or service.
type Status struct {
	// Status is the current health state (healthy, degraded, or unhealthy).
	Status string `json:"status"`

	// Message provides a human-readable description of the health status.
	Message string `json:"message,omitempty"`

	// Details contains additional context and diagnostic information.
	Details map[string]any `json:"details,omitempty"`
}

// IsHealthy returns true if the status is StatusHealthy.
func (s Status) IsHealthy() bool {
	return s.Status == StatusHealthy
}

// IsDegraded returns true if the status is StatusDegraded.
func (s Status) IsDegraded() bool {
	return s.Status == StatusDegraded
}

// IsUnhealthy returns true if the status is StatusUnhealthy.
func (s Status) IsUnhealthy() bool {
	return s.Status == StatusUnhealthy
}

// Healthy creates a healthy status with an optional message.
func Healthy(message string) Status {
	return Status{Status: StatusHealthy, Message: message}
}

// Degraded creates a degraded status with a message and optional details.
func Degraded(message string, details map[string]any) Status {
	return Status{Status: StatusDegraded, Message: message, Details: details}
}

// Unhealthy creates an unhealthy status with a message and optional details.
func Unhealthy(message string, details map[string]any) Status {
	return Status{Status: StatusUnhealthy, Message: message, Details: details}
}

// Pinger is satisfied by stores and clients that expose a connection
// check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreCheck verifies connectivity to the evaluation store.
func StoreCheck(ctx context.Context, store Pinger) Status {
	if store == nil {
		return Unhealthy("store is not configured", nil)
	}
	if err := store.Ping(ctx); err != nil {
		return Unhealthy("store unreachable", map[string]any{
			"error": err.Error(),
		})
	}
	return Healthy("store reachable")
}

// SimulatorCheck verifies that a simulator has a live heartbeat and at
// least one worker. A live simulator with zero workers is degraded:
// games would queue but never run.
func SimulatorCheck(ctx context.Context, qc queue.Client, name string) Status {
	if qc == nil {
		return Unhealthy("queue is not configured", nil)
	}
	if name == "" {
		return Unhealthy("simulator name cannot be empty", nil)
	}

	alive, err := qc.Alive(ctx, name)
	if err != nil {
		return Unhealthy(fmt.Sprintf("failed to check simulator '%s'", name),
			map[string]any{"simulator": name, "error": err.Error()})
	}
	if !alive {
		return Unhealthy(fmt.Sprintf("simulator '%s' has no live heartbeat", name),
			map[string]any{"simulator": name})
	}

	workers, err := qc.GetWorkerCount(ctx, name)
	if err != nil {
		return Unhealthy(fmt.Sprintf("failed to read worker count for '%s'", name),
			map[string]any{"simulator": name, "error": err.Error()})
	}
	if workers <= 0 {
		return Degraded(fmt.Sprintf("simulator '%s' is alive but has no workers", name),
			map[string]any{"simulator": name, "workers": workers})
	}

	return Healthy(fmt.Sprintf("simulator '%s' alive with %d worker(s)", name, workers))
}

// RegistryCheck verifies that at least one instance of a simulator is
// registered in etcd. No instances is degraded rather than unhealthy:
// the registry is optional and queue heartbeats remain authoritative.
func RegistryCheck(ctx context.Context, reg registry.Registry, name string) Status {
	if reg == nil {
		return Degraded("registry is not configured", nil)
	}

	instances, err := reg.Discover(ctx, name)
	if err != nil {
		return Unhealthy(fmt.Sprintf("registry lookup failed for '%s'", name),
			map[string]any{"simulator": name, "error": err.Error()})
	}
	if len(instances) == 0 {
		return Degraded(fmt.Sprintf("no registered instances of '%s'", name),
			map[string]any{"simulator": name})
	}

	var capacity int
	for _, info := range instances {
		capacity += info.Capacity
	}
	return Healthy(fmt.Sprintf("%d instance(s) of '%s' registered, capacity %d",
		len(instances), name, capacity))
}

// TCPCheck verifies TCP connectivity to an address.
func TCPCheck(ctx context.Context, addr string) Status {
	if addr == "" {
		return Unhealthy("address cannot be empty", nil)
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return Unhealthy(fmt.Sprintf("failed to connect to %s", addr),
			map[string]any{"address": addr, "error": err.Error()})
	}
	conn.Close()

	return Healthy(fmt.Sprintf("successfully connected to %s", addr))
}

// CheckpointCheck verifies that a checkpoint artifact exists on disk.
func CheckpointCheck(path string) Status {
	if path == "" {
		return Unhealthy("checkpoint path cannot be empty", nil)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Unhealthy(fmt.Sprintf("checkpoint '%s' does not exist", path),
				map[string]any{"path": path})
		}
		return Unhealthy(fmt.Sprintf("failed to stat checkpoint '%s'", path),
			map[string]any{"path": path, "error": err.Error()})
	}
	if info.IsDir() {
		return Unhealthy(fmt.Sprintf("checkpoint '%s' is a directory", path),
			map[string]any{"path": path})
	}
	if info.Size() == 0 {
		return Degraded(fmt.Sprintf("checkpoint '%s' is empty", path),
			map[string]any{"path": path})
	}

	return Healthy(fmt.Sprintf("checkpoint '%s' exists (%d bytes)", path, info.Size()))
}

// Combine aggregates multiple health checks into a single status.
// Any unhealthy check makes the result unhealthy; otherwise any
// degraded check makes it degraded.
func Combine(checks ...Status) Status {
	if len(checks) == 0 {
		return Healthy("no checks provided")
	}

	var unhealthyChecks []string
	var degradedChecks []string
	var healthyCount int

	for _, check := range checks {
		switch check.Status {
		case StatusUnhealthy:
			msg := check.Message
			if msg == "" {
				msg = "unnamed check"
			}
			unhealthyChecks = append(unhealthyChecks, msg)
		case StatusDegraded:
			msg := check.Message
			if msg == "" {
				msg = "unnamed check"
			}
			degradedChecks = append(degradedChecks, msg)
		case StatusHealthy:
			healthyCount++
		}
	}

	if len(unhealthyChecks) > 0 {
		return Unhealthy(fmt.Sprintf("%d check(s) failed", len(unhealthyChecks)),
			map[string]any{
				"total":         len(checks),
				"unhealthy":     len(unhealthyChecks),
				"degraded":      len(degradedChecks),
				"healthy":       healthyCount,
				"failed_checks": unhealthyChecks,
			})
	}

	if len(degradedChecks) > 0 {
		return Degraded(fmt.Sprintf("%d check(s) degraded", len(degradedChecks)),
			map[string]any{
				"total":           len(checks),
				"degraded":        len(degradedChecks),
				"healthy":         healthyCount,
				"degraded_checks": degradedChecks,
			})
	}

	return Healthy(fmt.Sprintf("all %d check(s) passed", len(checks)))
}
