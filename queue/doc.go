// Package queue provides the Redis-based game dispatch queue connecting
// the evaluation engine to remote simulation hosts.
//
// The engine pushes GameRequests onto a per-simulator list (LPUSH) and
// subscribes to a per-job pub/sub channel for GameResults. Simulation
// hosts pop requests (BRPOP), play the game on their local engine, and
// publish the result back. Simulator metadata and health heartbeats are
// kept in Redis hashes and TTL keys so the engine can see available
// simulation capacity.
//
// All payloads are plain JSON; the wire types are defined in types.go.
package queue
