// Package store persists checkpoint evaluations and per-lineage Elo
// state. Two implementations are provided: Memory for development and
// tests, and Redis for production deployments.
//
// Both implement eval.Store. A commit writes the evaluation record and
// the updated rating state together; on any error neither is visible
// to subsequent reads.
package store
