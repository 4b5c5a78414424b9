// Package serve exposes the evaluation engine over HTTP.
//
// The server provides a JSON REST API for triggering evaluations and
// reading evaluation history, rating state and ladder configuration,
// plus a server-sent events stream of evaluation progress:
//
//	POST /api/evals/run        trigger an evaluation
//	GET  /api/evals            list evaluations for a lineage
//	GET  /api/evals/latest     most recent evaluation for a lineage
//	GET  /api/compare          diff two evaluations by checkpoint step
//	GET  /api/elo              rating state per lineage
//	GET  /api/tiers            opponent ladder
//	GET  /api/simulators       registered simulation hosts
//	GET  /api/stream/evals     SSE stream of evaluation events
//	GET  /healthz              liveness and dependency health
//
// Construct a Server with New and wire its event broadcaster into the
// engine:
//
//	srv, err := serve.New(serve.Options{Engine: engine, Store: st, Ladder: lad})
//	if err != nil {
//		log.Fatal(err)
//	}
//	// engine created with eval.WithEventSink(srv.Events().Publish)
//	srv.Run(ctx)
package serve
