package optimizer

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ajwhitfield/fpl-optimizer/internal/models"
	"github.com/ajwhitfield/fpl-optimizer/internal/solver"
	"github.com/ajwhitfield/fpl-optimizer/pkg/logger"
)

// Result wraps the roster with solve diagnostics.
type Result struct {
	Roster    *models.Roster `json:"roster"`
	SolveTime int64          `json:"solve_time_ms"`
	Nodes     int            `json:"nodes"`
}

// Optimize runs one build → solve → extract cycle. Each call is independent
// and idempotent given identical inputs; nothing is shared across calls.
func Optimize(ctx context.Context, players []models.Player, cfg Config, s solver.Solver, opts solver.Options) (*Result, error) {
	log := logger.WithComponent("optimizer")
	start := time.Now()

	model, err := BuildModel(players, cfg)
	if err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"players": len(players),
		"budget":  cfg.TotalBudget,
	}).Info("Starting roster optimization")

	sol, err := s.Solve(ctx, model.Problem(), opts)
	if err != nil {
		return nil, fmt.Errorf("solver: %w", err)
	}

	switch sol.Status {
	case solver.StatusOptimal:
		// fall through to extraction
	case solver.StatusInfeasible:
		return nil, ErrNoFeasibleRoster
	case solver.StatusTimedOut:
		return nil, ErrSolverTimeout
	default:
		return nil, fmt.Errorf("solver returned %s for a bounded model", sol.Status)
	}

	roster, err := model.ExtractRoster(sol)
	if err != nil {
		return nil, err
	}
	roster.SolveTimeMs = time.Since(start).Milliseconds()

	log.WithFields(logrus.Fields{
		"objective": roster.ObjectiveValue,
		"cost":      roster.TotalCost,
		"nodes":     sol.Nodes,
		"time_ms":   roster.SolveTimeMs,
	}).Info("Roster optimization completed")

	return &Result{
		Roster:    roster,
		SolveTime: roster.SolveTimeMs,
		Nodes:     sol.Nodes,
	}, nil
}
