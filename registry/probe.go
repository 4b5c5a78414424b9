package registry

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Probe checks a worker's gRPC health endpoint and returns nil when
// the named service reports SERVING. Used to verify that a discovered
// simulator instance is actually reachable, not just present in etcd.
func Probe(ctx context.Context, endpoint, service string) error {
	if endpoint == "" {
		return fmt.Errorf("probe endpoint cannot be empty")
	}

	conn, err := grpc.NewClient(endpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", endpoint, err)
	}
	defer conn.Close()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{
		Service: service,
	})
	if err != nil {
		return fmt.Errorf("health check against %s failed: %w", endpoint, err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("%s reports %s for %s", endpoint, resp.GetStatus(), service)
	}
	return nil
}
