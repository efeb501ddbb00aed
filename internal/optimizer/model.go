package optimizer

import (
	"fmt"
	"sort"

	"github.com/ajwhitfield/fpl-optimizer/internal/models"
	"github.com/ajwhitfield/fpl-optimizer/internal/solver"
)

// Model is one self-contained MILP instance: three binary variables per
// player (selected, captain, substitute) plus the objective and constraint
// rows over them. Construction is pure; a Model never mutates after
// BuildModel returns, so repeated and parallel solves are safe.
type Model struct {
	players []models.Player
	cfg     Config
	problem solver.Problem
}

// Variable layout: player i owns the contiguous triple
// [selected, captain, substitute] starting at 3*i.
func selVar(i int) int { return 3 * i }
func capVar(i int) int { return 3*i + 1 }
func subVar(i int) int { return 3*i + 2 }

// BuildModel validates the inputs and encodes the roster MILP.
func BuildModel(players []models.Player, cfg Config) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(players) == 0 {
		return nil, fmt.Errorf("%w: player pool is empty", ErrInvalidConfig)
	}
	seen := make(map[uint]bool, len(players))
	for _, p := range players {
		if seen[p.ID] {
			return nil, fmt.Errorf("%w: duplicate player id %d", ErrInvalidConfig, p.ID)
		}
		seen[p.ID] = true
		if _, ok := cfg.Positions[p.Position]; !ok {
			return nil, fmt.Errorf("%w: player %d has position %q with no rule", ErrInvalidConfig, p.ID, p.Position)
		}
	}

	n := len(players)
	nvars := 3 * n

	// Objective: full value for starting, full value again for the
	// captaincy, discounted value on the bench.
	obj := make([]float64, nvars)
	for i, p := range players {
		obj[selVar(i)] = p.ExpectedScore
		obj[capVar(i)] = p.ExpectedScore
		obj[subVar(i)] = cfg.SubstituteFactor * p.ExpectedScore
	}

	var lessEq, eq []solver.Constraint

	// 1. Budget covers the full squad, starters and bench alike.
	budget := make([]float64, nvars)
	for i, p := range players {
		budget[selVar(i)] = p.Price
		budget[subVar(i)] = p.Price
	}
	lessEq = append(lessEq, solver.Constraint{Coeffs: budget, Bound: cfg.TotalBudget, Label: "budget"})

	// 2. Exactly the configured number of starters.
	starters := make([]float64, nvars)
	for i := range players {
		starters[selVar(i)] = 1
	}
	eq = append(eq, solver.Constraint{Coeffs: starters, Bound: float64(cfg.StartingSlots), Label: "starting_slots"})

	// 3. One captain, and the captain must be a starter. The implication is
	// encoded as one row per player rather than an aggregate inequality;
	// a few hundred rows is nothing at this problem size.
	captain := make([]float64, nvars)
	for i := range players {
		captain[capVar(i)] = 1
	}
	eq = append(eq, solver.Constraint{Coeffs: captain, Bound: 1, Label: "one_captain"})
	for i, p := range players {
		row := make([]float64, nvars)
		row[capVar(i)] = 1
		row[selVar(i)] = -1
		lessEq = append(lessEq, solver.Constraint{Coeffs: row, Bound: 0, Label: fmt.Sprintf("captain_starts_%d", p.ID)})
	}

	// 4. A player cannot both start and sit on the bench.
	for i, p := range players {
		row := make([]float64, nvars)
		row[selVar(i)] = 1
		row[subVar(i)] = 1
		lessEq = append(lessEq, solver.Constraint{Coeffs: row, Bound: 1, Label: fmt.Sprintf("start_xor_bench_%d", p.ID)})
	}

	// 5 & 6. Per-position starter bounds and fixed full-squad totals.
	for _, pos := range models.AllPositions {
		rule, ok := cfg.Positions[pos]
		if !ok {
			continue
		}
		minRow := make([]float64, nvars)
		maxRow := make([]float64, nvars)
		totalRow := make([]float64, nvars)
		for i, p := range players {
			if p.Position != pos {
				continue
			}
			minRow[selVar(i)] = -1
			maxRow[selVar(i)] = 1
			totalRow[selVar(i)] = 1
			totalRow[subVar(i)] = 1
		}
		lessEq = append(lessEq,
			solver.Constraint{Coeffs: minRow, Bound: -float64(rule.MinStarters), Label: fmt.Sprintf("min_starters_%s", pos)},
			solver.Constraint{Coeffs: maxRow, Bound: float64(rule.MaxStarters), Label: fmt.Sprintf("max_starters_%s", pos)},
		)
		eq = append(eq, solver.Constraint{Coeffs: totalRow, Bound: float64(rule.SquadTotal), Label: fmt.Sprintf("squad_total_%s", pos)})
	}

	// 7. Club concentration across the full squad. Clubs are emitted in
	// sorted order so the same pool always yields the same row layout.
	clubs := make(map[string][]int)
	for i, p := range players {
		clubs[p.Club] = append(clubs[p.Club], i)
	}
	names := make([]string, 0, len(clubs))
	for club := range clubs {
		names = append(names, club)
	}
	sort.Strings(names)
	for _, club := range names {
		row := make([]float64, nvars)
		for _, i := range clubs[club] {
			row[selVar(i)] = 1
			row[subVar(i)] = 1
		}
		lessEq = append(lessEq, solver.Constraint{Coeffs: row, Bound: float64(cfg.MaxPerClub), Label: fmt.Sprintf("club_%s", club)})
	}

	return &Model{
		players: players,
		cfg:     cfg,
		problem: solver.Problem{Objective: obj, LessEq: lessEq, Eq: eq},
	}, nil
}

// Problem exposes the assembled MILP for the solver collaborator.
func (m *Model) Problem() solver.Problem {
	return m.problem
}

// Players returns the pool the model was built over, in variable order.
func (m *Model) Players() []models.Player {
	return m.players
}
