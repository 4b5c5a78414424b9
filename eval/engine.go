package eval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/claudiup423/dominator"
	"github.com/claudiup423/dominator/elo"
	"github.com/claudiup423/dominator/ladder"
	"github.com/claudiup423/dominator/sim"
	"github.com/claudiup423/dominator/suite"
)

// DefaultLineage is used when a checkpoint does not name one.
const DefaultLineage = "main"

// Engine runs checkpoint evaluations: it schedules games against every
// ready tier, aggregates outcomes, updates the lineage's dominance
// rating and runs regression detection before committing the result.
type Engine struct {
	cfg       *suite.Config
	ladder    *ladder.Ladder
	simulator sim.Simulator
	store     Store
	detector  *Detector
	gates     Gates

	logger *slog.Logger
	sink   func(Event)

	otelTracer  trace.Tracer
	otelMeter   metric.Meter
	otelMetrics *otelMetrics

	// mu guards lineages. Each lineage gets its own mutex so that
	// evaluations of the same lineage are serialized while different
	// lineages run in parallel.
	mu       sync.Mutex
	lineages map[string]*sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithEventSink registers a callback invoked for every progress event.
// The callback runs on the evaluation goroutine and must not block.
func WithEventSink(sink func(Event)) Option {
	return func(e *Engine) {
		e.sink = sink
	}
}

// WithOTel enables OpenTelemetry tracing and metrics. Either provider
// may be nil to enable only the other.
func WithOTel(tp trace.TracerProvider, mp metric.MeterProvider) Option {
	return func(e *Engine) {
		if tp != nil {
			e.otelTracer = tp.Tracer("dominator/eval")
		}
		if mp != nil {
			e.otelMeter = mp.Meter("dominator/eval")
		}
	}
}

// NewEngine validates the suite configuration, compiles any custom
// regression rules and returns a ready engine.
func NewEngine(cfg *suite.Config, lad *ladder.Ladder, simulator sim.Simulator, store Store, opts ...Option) (*Engine, error) {
	const op = "eval.NewEngine"
	if cfg == nil {
		return nil, dominator.NewConfigurationError(op, errors.New("suite config is required"))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if lad == nil {
		return nil, dominator.NewConfigurationError(op, errors.New("ladder is required"))
	}
	if simulator == nil {
		return nil, dominator.NewConfigurationError(op, errors.New("simulator is required"))
	}
	if store == nil {
		return nil, dominator.NewConfigurationError(op, errors.New("store is required"))
	}

	detector, err := NewDetector(ThresholdsFromSuite(cfg), cfg.CustomRules)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:       cfg,
		ladder:    lad,
		simulator: simulator,
		store:     store,
		detector:  detector,
		gates:     GatesFromSuite(cfg),
		logger:    slog.Default(),
		lineages:  make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.otelMeter != nil {
		metrics, err := e.initOTelMetrics()
		if err != nil {
			return nil, dominator.NewInternalError(op, err)
		}
		e.otelMetrics = metrics
	}
	return e, nil
}

// Run evaluates one checkpoint against every ready tier and persists
// the result. Runs for the same lineage are serialized; the caller can
// invoke Run concurrently from multiple goroutines.
//
// Any game failure aborts the evaluation: nothing is persisted and the
// lineage's rating state is unchanged.
func (e *Engine) Run(ctx context.Context, cp Checkpoint) (*CheckpointEvaluation, error) {
	const op = "Engine.Run"

	if cp.Lineage == "" {
		cp.Lineage = DefaultLineage
	}
	if cp.Path == "" {
		return nil, dominator.NewValidationError(op, errors.New("checkpoint path is required"))
	}
	if cp.Step < 0 {
		return nil, dominator.NewValidationError(op, errors.New("checkpoint step must not be negative"))
	}

	ready := e.ladder.Ready()
	if len(ready) == 0 {
		return nil, dominator.NewConfigurationError(op, dominator.ErrNoReadyTiers)
	}

	lock := e.lineageLock(cp.Lineage)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()
	e.logger.Info("evaluation started",
		"lineage", cp.Lineage,
		"checkpoint_step", cp.Step,
		"tiers", len(ready),
		"games_per_opponent", e.cfg.GetGamesPerOpponent(),
	)
	e.emit(Event{
		Type:           EventStarted,
		Lineage:        cp.Lineage,
		CheckpointStep: cp.Step,
		Timestamp:      start.UTC(),
	})

	evaluation, err := e.run(ctx, cp, ready, start)
	if err != nil {
		e.logger.Error("evaluation failed",
			"lineage", cp.Lineage,
			"checkpoint_step", cp.Step,
			"error", err,
		)
		e.emit(Event{
			Type:           EventFailed,
			Lineage:        cp.Lineage,
			CheckpointStep: cp.Step,
			Error:          err.Error(),
			Timestamp:      time.Now().UTC(),
		})
		return nil, err
	}

	elapsed := time.Since(start)
	e.logger.Info("evaluation completed",
		"lineage", cp.Lineage,
		"checkpoint_step", cp.Step,
		"rating_before", evaluation.RatingBefore,
		"rating_after", evaluation.RatingAfter,
		"regression", evaluation.Regression,
		"gates_passed", evaluation.GatesPassed,
		"elapsed", elapsed,
	)
	e.emit(Event{
		Type:           EventCompleted,
		Lineage:        cp.Lineage,
		CheckpointStep: cp.Step,
		Evaluation:     evaluation,
		Timestamp:      time.Now().UTC(),
	})
	e.recordOTelEvaluation(ctx, evaluation, elapsed)
	return evaluation, nil
}

// run executes the evaluation body under the lineage lock.
func (e *Engine) run(ctx context.Context, cp Checkpoint, ready []ladder.Tier, start time.Time) (*CheckpointEvaluation, error) {
	const op = "Engine.Run"

	state, err := e.store.State(ctx, cp.Lineage)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = elo.NewState(e.cfg.GetInitialRating(), e.cfg.GetKFactor())
	}

	prev, err := e.store.Latest(ctx, cp.Lineage)
	if err != nil {
		if !errors.Is(err, dominator.ErrEvaluationNotFound) {
			return nil, err
		}
		prev = nil
	}

	results, err := e.runTiers(ctx, cp, ready)
	if err != nil {
		return nil, err
	}

	matchups := make([]elo.Matchup, 0, len(ready))
	for _, tier := range ready {
		r := results[tier.Name]
		matchups = append(matchups, elo.Matchup{
			Opponent:       tier.Name,
			Wins:           r.Wins,
			Draws:          r.Draws,
			Games:          r.Games,
			OpponentRating: tier.AnchorRating(state.TierRatings, e.cfg.GetInitialRating()),
		})
	}

	before := state.DominanceRating
	after, deltas, err := elo.Update(before, state.KFactor, matchups)
	if err != nil {
		return nil, err
	}
	for name, delta := range deltas {
		r := results[name]
		r.RatingDelta = delta
		results[name] = r
	}

	now := time.Now().UTC()
	evaluation := &CheckpointEvaluation{
		ID:               uuid.NewString(),
		Lineage:          cp.Lineage,
		CheckpointStep:   cp.Step,
		CheckpointPath:   cp.Path,
		Suite:            e.cfg.Name,
		Timestamp:        now,
		ElapsedSeconds:   round2(time.Since(start).Seconds()),
		GamesPerOpponent: e.cfg.GetGamesPerOpponent(),
		RatingBefore:     before,
		RatingAfter:      after,
		Results:          results,
	}

	reasons, err := e.detector.Detect(prev, evaluation)
	if err != nil {
		return nil, err
	}
	evaluation.Reasons = reasons
	evaluation.Regression = len(reasons) > 0

	failures := e.gates.Check(evaluation)
	evaluation.GateFailures = failures
	evaluation.GatesPassed = len(failures) == 0

	state.Apply(cp.Step, after, now)
	if err := e.store.Commit(ctx, evaluation, state); err != nil {
		return nil, dominator.NewStorageError(op, err)
	}
	return evaluation, nil
}

// runTiers plays every game of the evaluation through a bounded worker
// pool. The first game error cancels all outstanding games and fails
// the whole evaluation.
func (e *Engine) runTiers(ctx context.Context, cp Checkpoint, tiers []ladder.Tier) (map[string]TierResult, error) {
	games := e.cfg.GetGamesPerOpponent()
	window := e.cfg.GetKickoffWindowSeconds()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	outcomes := make([][]sim.Outcome, len(tiers))
	for i := range outcomes {
		outcomes[i] = make([]sim.Outcome, games)
	}

	sem := make(chan struct{}, e.cfg.GetConcurrency())
	var wg sync.WaitGroup
	var errMu sync.Mutex
	var firstErr error

	fail := func(tier string, err error) {
		errMu.Lock()
		defer errMu.Unlock()
		if firstErr == nil {
			var de *dominator.Error
			if !errors.As(err, &de) {
				err = dominator.NewSimulationError("Engine.runTiers", err)
			}
			firstErr = err
			e.logger.Error("game failed", "lineage", cp.Lineage, "tier", tier, "error", err)
			cancel()
		}
	}

	for ti, tier := range tiers {
		for gi := 0; gi < games; gi++ {
			wg.Add(1)
			go func(ti, gi int, tier ladder.Tier) {
				defer wg.Done()
				select {
				case sem <- struct{}{}:
					defer func() { <-sem }()
				case <-ctx.Done():
					return
				}
				out, err := e.simulator.PlayGame(ctx, sim.Game{
					Checkpoint:           cp.Path,
					CheckpointStep:       cp.Step,
					Opponent:             tier,
					Index:                gi,
					Side:                 sim.SideForGame(gi),
					KickoffWindowSeconds: window,
				})
				if err != nil {
					fail(tier.Name, err)
					return
				}
				outcomes[ti][gi] = out
			}(ti, gi, tier)
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, dominator.NewSimulationError("Engine.runTiers", err)
	}

	results := make(map[string]TierResult, len(tiers))
	for ti, tier := range tiers {
		r := AggregateTier(outcomes[ti])
		results[tier.Name] = r
		e.logger.Debug("tier completed",
			"lineage", cp.Lineage,
			"tier", tier.Name,
			"winrate", r.Winrate,
			"goal_diff", r.GoalDiff,
		)
		e.emit(Event{
			Type:           EventTierCompleted,
			Lineage:        cp.Lineage,
			CheckpointStep: cp.Step,
			Tier:           tier.Name,
			TierResult:     &r,
			Timestamp:      time.Now().UTC(),
		})
	}
	return results, nil
}

// Compare loads two evaluations of a lineage by checkpoint step and
// diffs them.
func (e *Engine) Compare(ctx context.Context, lineage string, baseStep, candidateStep int64) (Comparison, error) {
	const op = "Engine.Compare"
	if lineage == "" {
		lineage = DefaultLineage
	}

	evals, err := e.store.Evaluations(ctx, lineage, 0)
	if err != nil {
		return Comparison{}, err
	}

	var base, candidate *CheckpointEvaluation
	for _, ev := range evals {
		if base == nil && ev.CheckpointStep == baseStep {
			base = ev
		}
		if candidate == nil && ev.CheckpointStep == candidateStep {
			candidate = ev
		}
	}
	if base == nil {
		return Comparison{}, dominator.NewNotFoundError(op,
			fmt.Errorf("base step %d: %w", baseStep, dominator.ErrEvaluationNotFound))
	}
	if candidate == nil {
		return Comparison{}, dominator.NewNotFoundError(op,
			fmt.Errorf("candidate step %d: %w", candidateStep, dominator.ErrEvaluationNotFound))
	}
	return Compare(base, candidate), nil
}

func (e *Engine) lineageLock(lineage string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.lineages[lineage]
	if !ok {
		lock = &sync.Mutex{}
		e.lineages[lineage] = lock
	}
	return lock
}

func (e *Engine) emit(ev Event) {
	if e.sink != nil {
		e.sink(ev)
	}
}
