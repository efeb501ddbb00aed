package solver

import (
	"context"
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolve_SmallILP_ExactOptimum(t *testing.T) {
	// maximize 5a + 4b + 3c subject to 2a + 3b + c <= 5, a + b + 2c <= 3.
	// The LP optimum is fractional, so the solver has to branch.
	p := Problem{
		Objective: []float64{5, 4, 3},
		LessEq: []Constraint{
			{Coeffs: []float64{2, 3, 1}, Bound: 5},
			{Coeffs: []float64{1, 1, 2}, Bound: 3},
		},
	}

	sol, err := NewBranchAndBound().Solve(context.Background(), p, Options{})
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, sol.Status)

	// a=1, b=1, c=0 is the unique binary optimum with value 9.
	assert.InDelta(t, 9.0, sol.Objective, 1e-6)
	assert.InDelta(t, 1.0, sol.Values[0], 1e-6)
	assert.InDelta(t, 1.0, sol.Values[1], 1e-6)
	assert.InDelta(t, 0.0, sol.Values[2], 1e-6)
	assert.Greater(t, sol.Nodes, 0)
}

func TestSolve_EqualityRowsRespected(t *testing.T) {
	// Pick exactly 2 of 4 items to maximize value.
	p := Problem{
		Objective: []float64{3, 7, 1, 5},
		Eq: []Constraint{
			{Coeffs: []float64{1, 1, 1, 1}, Bound: 2, Label: "cardinality"},
		},
	}

	sol, err := NewBranchAndBound().Solve(context.Background(), p, Options{})
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, sol.Status)

	assert.InDelta(t, 12.0, sol.Objective, 1e-6)
	assert.InDelta(t, 1.0, sol.Values[1], 1e-6)
	assert.InDelta(t, 1.0, sol.Values[3], 1e-6)
}

func TestSolve_Infeasible(t *testing.T) {
	// Both variables must be picked, but together they break the budget.
	p := Problem{
		Objective: []float64{1, 1},
		LessEq: []Constraint{
			{Coeffs: []float64{1, 1}, Bound: 1},
		},
		Eq: []Constraint{
			{Coeffs: []float64{1, 0}, Bound: 1},
			{Coeffs: []float64{0, 1}, Bound: 1},
		},
	}

	sol, err := NewBranchAndBound().Solve(context.Background(), p, Options{})
	require.NoError(t, err)
	assert.Equal(t, StatusInfeasible, sol.Status)
	assert.Nil(t, sol.Values)
}

func TestSolve_NodeLimitReportsTimeout(t *testing.T) {
	// The relaxation sits at a=b=0.75, so one node can never certify
	// an integral optimum.
	p := Problem{
		Objective: []float64{1, 1},
		LessEq: []Constraint{
			{Coeffs: []float64{2, 2}, Bound: 3},
		},
	}

	sol, err := NewBranchAndBound().Solve(context.Background(), p, Options{MaxNodes: 1})
	require.NoError(t, err)
	assert.Equal(t, StatusTimedOut, sol.Status)
	assert.Nil(t, sol.Values, "an aborted solve must not hand back a partial assignment")
}

func TestSolve_ExpiredContextReportsTimeout(t *testing.T) {
	p := Problem{
		Objective: []float64{1, 1},
		LessEq: []Constraint{
			{Coeffs: []float64{2, 2}, Bound: 3},
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sol, err := NewBranchAndBound().Solve(ctx, p, Options{Timeout: time.Minute})
	require.NoError(t, err)
	assert.Equal(t, StatusTimedOut, sol.Status)
}

func TestSolve_KnapsackCardinality_100Players(t *testing.T) {
	// 100 items, a budget loose enough to never bind, and a pick-at-most-10
	// rule. The optimum is just the ten most valuable items, which gives an
	// independent answer to check the search against.
	rng := rand.New(rand.NewSource(42))

	n := 100
	values := make([]float64, n)
	prices := make([]float64, n)
	for i := 0; i < n; i++ {
		values[i] = 2 + 10*rng.Float64()
		prices[i] = 4 + 4*rng.Float64()
	}

	cardinality := make([]float64, n)
	for i := range cardinality {
		cardinality[i] = 1
	}
	p := Problem{
		Objective: values,
		LessEq: []Constraint{
			{Coeffs: prices, Bound: 100, Label: "budget"},
			{Coeffs: cardinality, Bound: 10, Label: "cardinality"},
		},
	}

	sol, err := NewBranchAndBound().Solve(context.Background(), p, Options{Timeout: 30 * time.Second})
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, sol.Status)

	best := make([]float64, n)
	copy(best, values)
	sort.Sort(sort.Reverse(sort.Float64Slice(best)))
	want := 0.0
	for _, v := range best[:10] {
		want += v
	}
	assert.InDelta(t, want, sol.Objective, 1e-4)

	picked := 0
	spent := 0.0
	for i, v := range sol.Values {
		if v > 0.5 {
			picked++
			spent += prices[i]
		}
	}
	assert.Equal(t, 10, picked)
	assert.LessOrEqual(t, spent, 100.0)
}

// squadPlayer is one row of the pool behind squadSelectionProblem.
type squadPlayer struct {
	club, pos    string
	price, score float64
}

// squadSelectionProblem encodes the squad-selection MILP the optimizer
// builds over a 20-player pool: selected, captain and bench variables per
// player, a shared budget, fixed starter and captain counts, positional
// floors, ceilings and squad totals, and a per-club cap. Its LP relaxation
// is heavily degenerate, so the simplex has to survive long runs of
// zero-progress pivots without breaking down.
func squadSelectionProblem() (Problem, []squadPlayer) {
	players := []squadPlayer{
		{"TOT", "GK", 4.3, 4.8},
		{"LIV", "GK", 5.5, 5.6},
		{"MCI", "GK", 3.5, 3.9},
		{"ARS", "DEF", 4.0, 4.2},
		{"ARS", "DEF", 5.0, 4.9},
		{"LIV", "DEF", 7.0, 6.8},
		{"LIV", "DEF", 5.5, 5.9},
		{"MCI", "DEF", 5.0, 5.1},
		{"CHE", "DEF", 4.0, 4.4},
		{"ARS", "MID", 8.0, 7.2},
		{"TOT", "MID", 6.5, 6.1},
		{"LIV", "MID", 12.0, 9.4},
		{"MCI", "MID", 10.0, 8.6},
		{"CHE", "MID", 7.0, 6.9},
		{"CHE", "MID", 4.0, 4.6},
		{"TOT", "MID", 11.0, 8.8},
		{"ARS", "FWD", 7.5, 6.6},
		{"MCI", "FWD", 14.0, 10.9},
		{"CHE", "FWD", 5.5, 5.0},
		{"TOT", "FWD", 12.5, 9.9},
	}
	n := len(players)
	nv := 3 * n
	sel := func(i int) int { return 3 * i }
	cpt := func(i int) int { return 3*i + 1 }
	sub := func(i int) int { return 3*i + 2 }

	obj := make([]float64, nv)
	for i, p := range players {
		obj[sel(i)] = p.score
		obj[cpt(i)] = p.score
		obj[sub(i)] = 0.2 * p.score
	}

	var lessEq, eq []Constraint
	budget := make([]float64, nv)
	for i, p := range players {
		budget[sel(i)] = p.price
		budget[sub(i)] = p.price
	}
	lessEq = append(lessEq, Constraint{Coeffs: budget, Bound: 100, Label: "budget"})

	starters := make([]float64, nv)
	captain := make([]float64, nv)
	for i := range players {
		starters[sel(i)] = 1
		captain[cpt(i)] = 1
	}
	eq = append(eq,
		Constraint{Coeffs: starters, Bound: 11, Label: "starting_slots"},
		Constraint{Coeffs: captain, Bound: 1, Label: "one_captain"},
	)
	for i := range players {
		row := make([]float64, nv)
		row[cpt(i)] = 1
		row[sel(i)] = -1
		lessEq = append(lessEq, Constraint{Coeffs: row, Bound: 0})
	}
	for i := range players {
		row := make([]float64, nv)
		row[sel(i)] = 1
		row[sub(i)] = 1
		lessEq = append(lessEq, Constraint{Coeffs: row, Bound: 1})
	}

	rules := []struct {
		pos             string
		min, max, total float64
	}{
		{"GK", 1, 1, 2},
		{"DEF", 3, 5, 5},
		{"MID", 3, 5, 5},
		{"FWD", 1, 3, 3},
	}
	for _, r := range rules {
		minRow := make([]float64, nv)
		maxRow := make([]float64, nv)
		totRow := make([]float64, nv)
		for i, p := range players {
			if p.pos != r.pos {
				continue
			}
			minRow[sel(i)] = -1
			maxRow[sel(i)] = 1
			totRow[sel(i)] = 1
			totRow[sub(i)] = 1
		}
		lessEq = append(lessEq,
			Constraint{Coeffs: minRow, Bound: -r.min, Label: "min_" + r.pos},
			Constraint{Coeffs: maxRow, Bound: r.max, Label: "max_" + r.pos},
		)
		eq = append(eq, Constraint{Coeffs: totRow, Bound: r.total, Label: "squad_total_" + r.pos})
	}

	for _, club := range []string{"ARS", "CHE", "LIV", "MCI", "TOT"} {
		row := make([]float64, nv)
		for i, p := range players {
			if p.club == club {
				row[sel(i)] = 1
				row[sub(i)] = 1
			}
		}
		lessEq = append(lessEq, Constraint{Coeffs: row, Bound: 3, Label: "club_" + club})
	}

	return Problem{Objective: obj, LessEq: lessEq, Eq: eq}, players
}

func TestSolve_SquadSelectionModel_KnownOptimum(t *testing.T) {
	p, players := squadSelectionProblem()

	sol, err := NewBranchAndBound().Solve(context.Background(), p, Options{Timeout: 2 * time.Minute})
	require.NoError(t, err)
	require.Equal(t, StatusOptimal, sol.Status)
	assert.InDelta(t, 88.92, sol.Objective, 1e-4)

	// Enumeration-verified optimum over this pool, zero-based player indices.
	wantStart := map[int]bool{1: true, 5: true, 6: true, 7: true, 9: true, 10: true,
		12: true, 15: true, 16: true, 18: true, 19: true}
	wantBench := map[int]bool{2: true, 3: true, 8: true, 14: true}
	for i := range players {
		assert.InDelta(t, b2f(wantStart[i]), sol.Values[3*i], 1e-6, "player %d selected", i)
		assert.InDelta(t, b2f(wantBench[i]), sol.Values[3*i+2], 1e-6, "player %d benched", i)
	}
	assert.InDelta(t, 1.0, sol.Values[3*19+1], 1e-6, "captain")
}

func TestSolve_SquadSelectionModel_DeadlineReportsTimeout(t *testing.T) {
	p, _ := squadSelectionProblem()

	start := time.Now()
	sol, err := NewBranchAndBound().Solve(context.Background(), p, Options{Timeout: time.Millisecond})
	require.NoError(t, err)
	assert.Equal(t, StatusTimedOut, sol.Status)
	assert.Less(t, time.Since(start), 10*time.Second,
		"an expired deadline must cut the solve off promptly")
}

func TestAwaitRelax_AbandonsStalledCallAtDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	start := time.Now()
	_, ok := awaitRelax(ctx, func() relaxResult {
		<-release
		return relaxResult{}
	})
	assert.False(t, ok, "a relaxation that outlives the deadline must be abandoned")
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestAwaitRelax_DeliversResult(t *testing.T) {
	res, ok := awaitRelax(context.Background(), func() relaxResult {
		return relaxResult{feasible: true, solved: true, bound: 7}
	})
	require.True(t, ok)
	assert.True(t, res.feasible)
	assert.InDelta(t, 7.0, res.bound, 0)
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func TestSolve_RejectsMismatchedRows(t *testing.T) {
	p := Problem{
		Objective: []float64{1, 1},
		LessEq: []Constraint{
			{Coeffs: []float64{1}, Bound: 1, Label: "short"},
		},
	}

	_, err := NewBranchAndBound().Solve(context.Background(), p, Options{})
	assert.Error(t, err)
}
