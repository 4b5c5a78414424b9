// Package registry provides service discovery for simulation hosts.
//
// Simulator workers register themselves in etcd on startup, maintain
// presence via lease keepalives, and deregister on graceful shutdown.
// The evaluation server uses the registry to discover which simulators
// are reachable and how much game capacity each one offers. Entries
// disappear automatically when a worker crashes and its lease expires.
//
// The registry is optional: workers run without it when no endpoints
// are configured, falling back to queue-level heartbeats for liveness.
package registry

import (
	"context"
	"time"
)

// SimulatorInfo describes a registered simulation worker instance.
//
// Multiple instances of the same simulator can run simultaneously,
// each with a unique InstanceID.
type SimulatorInfo struct {
	// Name is the simulator name workers and evaluators agree on
	// (e.g., "rocketsim").
	Name string `json:"name"`

	// Version is the simulator's semantic version.
	Version string `json:"version"`

	// InstanceID uniquely identifies this worker instance.
	InstanceID string `json:"instance_id"`

	// Endpoint is the address of the worker's gRPC health server,
	// empty when the worker does not serve health checks.
	Endpoint string `json:"endpoint,omitempty"`

	// Capacity is the number of games the instance plays concurrently.
	Capacity int `json:"capacity"`

	// Metadata holds simulator-specific attributes such as the engine
	// build or supported game modes.
	Metadata map[string]string `json:"metadata,omitempty"`

	// StartedAt is when this instance started.
	StartedAt time.Time `json:"started_at"`
}

// Registry defines simulator registration and discovery.
//
// Implementations must be safe for concurrent use. Entries are bound
// to etcd leases with a TTL so stale workers are removed automatically.
//
// Example usage:
//
//	reg, _ := registry.NewClient(cfg)
//	defer reg.Close()
//
//	info := registry.SimulatorInfo{
//	    Name:       "rocketsim",
//	    Version:    "1.0.0",
//	    InstanceID: uuid.New().String(),
//	    Capacity:   4,
//	    StartedAt:  time.Now(),
//	}
//
//	reg.Register(ctx, info)
//	defer reg.Deregister(ctx, info)
type Registry interface {
	// Register adds a simulator instance to the registry. The entry is
	// bound to a lease renewed in the background every TTL/3.
	// Re-registering the same InstanceID replaces the existing entry.
	Register(ctx context.Context, info SimulatorInfo) error

	// Deregister removes a simulator instance, revoking its lease. A
	// no-op when the instance is not registered.
	Deregister(ctx context.Context, info SimulatorInfo) error

	// Discover returns all registered instances of a simulator, in
	// arbitrary order. Empty when none are running.
	Discover(ctx context.Context, name string) ([]SimulatorInfo, error)

	// DiscoverAll returns every registered simulator instance.
	DiscoverAll(ctx context.Context) ([]SimulatorInfo, error)

	// Watch emits the current instance list for a simulator whenever
	// it changes. The initial state is sent immediately. The channel
	// closes when ctx is cancelled or the registry is closed.
	Watch(ctx context.Context, name string) (<-chan []SimulatorInfo, error)

	// Close releases resources and stops keepalive goroutines.
	Close() error
}

// Config holds registry connection configuration.
type Config struct {
	// Endpoints is the list of etcd endpoints, e.g.
	// ["host1:2379", "host2:2379"].
	Endpoints []string `json:"endpoints"`

	// Namespace is the etcd key prefix. All simulators are stored
	// under /{namespace}/simulators/{name}/{instance-id}.
	// Default: "dominator".
	Namespace string `json:"namespace"`

	// TTL is the lease time-to-live in seconds. A worker missing its
	// renewals for this long is removed from discovery.
	// Default: 30 seconds.
	TTL int `json:"ttl"`

	// TLS holds optional TLS configuration for secure etcd
	// communication. Nil disables TLS.
	TLS *TLSConfig `json:"tls"`
}

// TLSConfig holds certificate paths for mutual TLS with etcd.
type TLSConfig struct {
	// Enabled determines whether TLS is active. When false the other
	// fields are ignored.
	Enabled bool `json:"enabled"`

	// CertFile is the path to the client certificate (PEM).
	CertFile string `json:"cert_file"`

	// KeyFile is the path to the client private key (PEM).
	KeyFile string `json:"key_file"`

	// CAFile is the path to the CA certificate used to verify the
	// etcd server (PEM).
	CAFile string `json:"ca_file"`
}
