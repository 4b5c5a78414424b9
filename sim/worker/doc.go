// Package worker implements the simulation host loop.
//
// A simulation host is a machine that can actually run games (headless
// RocketSim, or a desktop with the game installed). The worker connects to
// Redis, registers its simulator, pops GameRequests from the queue, plays
// each game on the local engine, and publishes GameResults back to the
// evaluation engine. It maintains a heartbeat, serves a gRPC health
// endpoint for liveness probes, optionally registers itself in the etcd
// simulator registry, and shuts down gracefully on SIGTERM/SIGINT.
package worker
