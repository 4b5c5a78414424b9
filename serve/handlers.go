package serve

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/claudiup423/dominator"
	"github.com/claudiup423/dominator/elo"
	"github.com/claudiup423/dominator/eval"
	"github.com/claudiup423/dominator/health"
)

// defaultEvalsLimit caps /api/evals responses when no limit is given.
const defaultEvalsLimit = 20

// runRequest is the POST /api/evals/run body.
type runRequest struct {
	Lineage string `json:"lineage"`
	Step    int64  `json:"step"`
	Path    string `json:"path" binding:"required"`

	// Wait makes the request block until the evaluation finishes and
	// returns the full result instead of 202 Accepted.
	Wait bool `json:"wait"`
}

func (s *Server) handleRun(c *gin.Context) {
	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cp := eval.Checkpoint{Lineage: req.Lineage, Step: req.Step, Path: req.Path}

	if req.Wait {
		result, err := s.engine.Run(c.Request.Context(), cp)
		if err != nil {
			s.renderError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}

	go func() {
		if _, err := s.engine.Run(context.Background(), cp); err != nil {
			s.logger.Error("background evaluation failed",
				"lineage", cp.Lineage,
				"checkpoint_step", cp.Step,
				"error", err,
			)
		}
	}()
	c.JSON(http.StatusAccepted, gin.H{
		"status":  "accepted",
		"lineage": lineageOrDefault(cp.Lineage),
		"step":    cp.Step,
	})
}

func (s *Server) handleEvals(c *gin.Context) {
	lineage := lineageOrDefault(c.Query("lineage"))
	limit := defaultEvalsLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	evals, err := s.store.Evaluations(c.Request.Context(), lineage, limit)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lineage": lineage, "evaluations": evals})
}

func (s *Server) handleLatest(c *gin.Context) {
	lineage := lineageOrDefault(c.Query("lineage"))
	latest, err := s.store.Latest(c.Request.Context(), lineage)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, latest)
}

func (s *Server) handleCompare(c *gin.Context) {
	lineage := lineageOrDefault(c.Query("lineage"))
	base, err := strconv.ParseInt(c.Query("base"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "base must be a checkpoint step"})
		return
	}
	candidate, err := strconv.ParseInt(c.Query("candidate"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "candidate must be a checkpoint step"})
		return
	}

	cmp, err := s.engine.Compare(c.Request.Context(), lineage, base, candidate)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, cmp)
}

func (s *Server) handleElo(c *gin.Context) {
	ctx := c.Request.Context()

	if lineage := c.Query("lineage"); lineage != "" {
		state, err := s.store.State(ctx, lineage)
		if err != nil {
			s.renderError(c, err)
			return
		}
		if state == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "lineage has no evaluations"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"lineage": lineage, "state": state})
		return
	}

	lineages, err := s.store.Lineages(ctx)
	if err != nil {
		s.renderError(c, err)
		return
	}

	states := make(map[string]*elo.State, len(lineages))
	for _, lineage := range lineages {
		state, err := s.store.State(ctx, lineage)
		if err != nil {
			s.renderError(c, err)
			return
		}
		if state != nil {
			states[lineage] = state
		}
	}
	c.JSON(http.StatusOK, gin.H{"lineages": states})
}

func (s *Server) handleTiers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tiers": s.ladder.Tiers()})
}

func (s *Server) handleSimulators(c *gin.Context) {
	if s.queue == nil {
		c.JSON(http.StatusOK, gin.H{"simulators": []any{}})
		return
	}

	ctx := c.Request.Context()
	sims, err := s.queue.ListSimulators(ctx)
	if err != nil {
		s.renderError(c, err)
		return
	}

	type simulatorStatus struct {
		Name        string `json:"name"`
		Version     string `json:"version"`
		Engine      string `json:"engine,omitempty"`
		WorkerCount int    `json:"worker_count"`
		Alive       bool   `json:"alive"`
	}

	statuses := make([]simulatorStatus, 0, len(sims))
	for _, meta := range sims {
		alive, err := s.queue.Alive(ctx, meta.Name)
		if err != nil {
			s.renderError(c, err)
			return
		}
		workers, err := s.queue.GetWorkerCount(ctx, meta.Name)
		if err != nil {
			s.renderError(c, err)
			return
		}
		statuses = append(statuses, simulatorStatus{
			Name:        meta.Name,
			Version:     meta.Version,
			Engine:      meta.Engine,
			WorkerCount: workers,
			Alive:       alive,
		})
	}
	c.JSON(http.StatusOK, gin.H{"simulators": statuses})
}

func (s *Server) handleStream(c *gin.Context) {
	ch := s.events.Subscribe()
	defer s.events.Unsubscribe(ch)

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(ev.Type, ev)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (s *Server) handleHealthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	details := gin.H{}
	var checks []health.Status

	if pinger, ok := s.store.(health.Pinger); ok {
		st := health.StoreCheck(ctx, pinger)
		details["store"] = st
		checks = append(checks, st)
	}

	if s.queue != nil {
		sims, err := s.queue.ListSimulators(ctx)
		if err != nil {
			st := health.Unhealthy("failed to list simulators", map[string]any{"error": err.Error()})
			details["queue"] = st
			checks = append(checks, st)
		} else {
			for _, meta := range sims {
				st := health.SimulatorCheck(ctx, s.queue, meta.Name)
				details["simulator:"+meta.Name] = st
				checks = append(checks, st)
			}
		}
	}

	overall := health.Combine(checks...)
	code := http.StatusOK
	if overall.IsUnhealthy() {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":  overall.Status,
		"message": overall.Message,
		"checks":  details,
	})
}

// renderError maps domain error kinds onto HTTP status codes.
func (s *Server) renderError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	var de *dominator.Error
	switch {
	case errors.As(err, &de):
		switch de.Kind {
		case dominator.KindValidation, dominator.KindConfiguration:
			status = http.StatusBadRequest
		case dominator.KindNotFound:
			status = http.StatusNotFound
		case dominator.KindTimeout:
			status = http.StatusGatewayTimeout
		case dominator.KindSimulation:
			status = http.StatusBadGateway
		}
	case errors.Is(err, dominator.ErrEvaluationNotFound):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func lineageOrDefault(lineage string) string {
	if lineage == "" {
		return eval.DefaultLineage
	}
	return lineage
}
