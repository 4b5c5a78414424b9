// Package eval implements the checkpoint evaluation pipeline.
//
// An evaluation plays a fixed number of games between a candidate
// checkpoint and every ready tier on the opponent ladder, aggregates
// the per-tier outcomes, updates the candidate's dominance rating and
// runs regression detection against the previous evaluation of the
// same lineage.
//
// The entry point is Engine:
//
//	engine, err := eval.NewEngine(cfg, lad, simulator, st,
//		eval.WithLogger(logger),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := engine.Run(ctx, eval.Checkpoint{
//		Lineage: "main",
//		Step:    50000,
//		Path:    "checkpoints/step_50000.zip",
//	})
//
// Evaluations for the same lineage are serialized. Two concurrent Run
// calls with the same lineage never interleave rating reads and
// writes; calls for different lineages proceed in parallel.
//
// An evaluation is atomic with respect to storage. If any game fails
// or the commit fails, nothing is persisted and the lineage's rating
// state is unchanged.
package eval
