// Package dominator provides the evaluation engine for the Dominator
// Rocket League training platform.
//
// The engine scores a model checkpoint against a ladder of frozen opponent
// tiers, converts the aggregated results into an Elo rating update for the
// candidate lineage, and decides whether the new checkpoint regressed
// relative to its predecessor.
//
// # Core Concepts
//
// The module is organized around several key concepts:
//
//   - Checkpoints: saved snapshots of a training run's model weights
//   - Frozen tiers: fixed opponents (scripted bots or pinned checkpoints)
//     used purely as rating anchors, never trained further
//   - Suites: YAML evaluation configurations (tiers, thresholds, game counts)
//   - Simulators: external match runners that play single games, either
//     in-process or dispatched to remote hosts over a Redis work queue
//   - The dominance rating: the running Elo rating of the candidate lineage
//
// # Architecture
//
// Data flows one direction through the pipeline:
//
//	simulator output -> tier aggregation -> rating update -> regression
//	decision -> persisted evaluation record -> HTTP/SSE projections
//
// The eval package owns the pipeline; sim and queue provide the simulator
// boundary; elo implements the rating math; store persists evaluation
// history and rating state; registry discovers remote simulation capacity;
// serve exposes the read-only dashboard API.
//
// This root package defines the error vocabulary shared by all of them.
package dominator
