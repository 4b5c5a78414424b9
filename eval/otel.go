package eval

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// otelMetrics holds the OpenTelemetry metric instruments for the
// evaluation engine. They are created once during WithOTel
// configuration and reused for every evaluation.
type otelMetrics struct {
	// ratingHistogram records the dominance rating after each evaluation
	ratingHistogram metric.Float64Histogram

	// durationHistogram records evaluation duration in milliseconds
	durationHistogram metric.Float64Histogram

	// gamesCounter counts simulated games
	gamesCounter metric.Int64Counter

	// regressionCounter counts evaluations flagged as regressions
	regressionCounter metric.Int64Counter
}

// initOTelMetrics creates all metric instruments. Called once when
// WithOTel is invoked with a valid MeterProvider.
func (e *Engine) initOTelMetrics() (*otelMetrics, error) {
	if e.otelMeter == nil {
		return nil, nil
	}

	metrics := &otelMetrics{}
	var err error

	metrics.ratingHistogram, err = e.otelMeter.Float64Histogram(
		"eval.rating",
		metric.WithDescription("Dominance rating after each evaluation"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create rating histogram: %w", err)
	}

	metrics.durationHistogram, err = e.otelMeter.Float64Histogram(
		"eval.duration",
		metric.WithDescription("Evaluation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}

	metrics.gamesCounter, err = e.otelMeter.Int64Counter(
		"eval.games",
		metric.WithDescription("Number of games simulated"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create games counter: %w", err)
	}

	metrics.regressionCounter, err = e.otelMeter.Int64Counter(
		"eval.regressions",
		metric.WithDescription("Number of evaluations flagged as regressions"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("create regression counter: %w", err)
	}

	return metrics, nil
}

// recordOTelEvaluation records a span and metrics for a completed
// evaluation. If OTel is not configured this returns silently; OTel
// failures never break the evaluation flow.
func (e *Engine) recordOTelEvaluation(ctx context.Context, ce *CheckpointEvaluation, elapsed time.Duration) {
	if e.otelTracer == nil && e.otelMeter == nil {
		return
	}

	if e.otelTracer != nil {
		var span trace.Span
		ctx, span = e.otelTracer.Start(ctx, "eval.run")
		defer span.End()

		span.SetAttributes(
			attribute.String("eval.id", ce.ID),
			attribute.String("eval.lineage", ce.Lineage),
			attribute.Int64("eval.checkpoint_step", ce.CheckpointStep),
			attribute.Float64("eval.rating_before", ce.RatingBefore),
			attribute.Float64("eval.rating_after", ce.RatingAfter),
			attribute.Int("eval.games", ce.TotalGames()),
			attribute.Bool("eval.regression", ce.Regression),
			attribute.Float64("eval.duration_ms", float64(elapsed.Milliseconds())),
		)

		for tier, r := range ce.Results {
			span.SetAttributes(
				attribute.Float64(fmt.Sprintf("eval.tier.%s.winrate", tier), r.Winrate),
			)
		}

		if ce.Regression {
			span.SetStatus(codes.Error, fmt.Sprintf("regression: %d reasons", len(ce.Reasons)))
		} else {
			span.SetStatus(codes.Ok, "evaluation completed")
		}
	}

	if e.otelMeter != nil && e.otelMetrics != nil {
		opts := metric.WithAttributes(
			attribute.String("eval.lineage", ce.Lineage),
		)
		if e.otelMetrics.ratingHistogram != nil {
			e.otelMetrics.ratingHistogram.Record(ctx, ce.RatingAfter, opts)
		}
		if e.otelMetrics.durationHistogram != nil {
			e.otelMetrics.durationHistogram.Record(ctx, float64(elapsed.Milliseconds()), opts)
		}
		if e.otelMetrics.gamesCounter != nil {
			e.otelMetrics.gamesCounter.Add(ctx, int64(ce.TotalGames()), opts)
		}
		if e.otelMetrics.regressionCounter != nil && ce.Regression {
			e.otelMetrics.regressionCounter.Add(ctx, 1, opts)
		}
	}
}
