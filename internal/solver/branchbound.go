package solver

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/ajwhitfield/fpl-optimizer/pkg/logger"
)

const (
	defaultIntTol   = 1e-6
	defaultMaxNodes = 100000
	boundEps        = 1e-9

	// simplexTol is the reduced-cost threshold handed to lp.Simplex. It must
	// be positive: at zero the pivot loop chases float-noise reduced costs
	// through the degenerate vertices these models are full of, until the
	// Bland rule dead-ends (ErrBland) or the loop cycles without returning.
	simplexTol = 1e-9

	// perturbRetries is how many times a failed relaxation is retried with
	// nudged inequality bounds. Nudging upward only grows the feasible
	// region, so the retried relaxation is still a valid bound and a still
	// infeasible retry certifies the node infeasible.
	perturbRetries = 2

	varFree int8 = -1
	varZero int8 = 0
	varOne  int8 = 1
)

// BranchAndBound certifies binary programs by branch-and-bound over the LP
// relaxation. The relaxation itself is delegated to gonum's simplex; this
// type only manages fixing variables and pruning subtrees.
type BranchAndBound struct {
	log *logrus.Entry
}

func NewBranchAndBound() *BranchAndBound {
	return &BranchAndBound{log: logger.WithComponent("solver")}
}

func (s *BranchAndBound) Solve(ctx context.Context, p Problem, opts Options) (Solution, error) {
	if err := p.Validate(); err != nil {
		return Solution{}, err
	}

	intTol := opts.IntTol
	if intTol <= 0 {
		intTol = defaultIntTol
	}
	maxNodes := opts.MaxNodes
	if maxNodes <= 0 {
		maxNodes = defaultMaxNodes
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	n := p.NumVars()
	root := make([]int8, n)
	for i := range root {
		root[i] = varFree
	}

	stack := [][]int8{root}
	incumbent := Solution{Status: StatusInfeasible, Objective: math.Inf(-1)}
	nodes := 0

	for len(stack) > 0 {
		if ctx.Err() != nil {
			s.log.WithField("nodes", nodes).Warn("Solve aborted by deadline")
			return Solution{Status: StatusTimedOut, Nodes: nodes}, nil
		}
		if nodes >= maxNodes {
			s.log.WithField("nodes", nodes).Warn("Solve aborted by node limit")
			return Solution{Status: StatusTimedOut, Nodes: nodes}, nil
		}

		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nodes++

		res, ok := awaitRelax(ctx, func() relaxResult { return s.relax(p, node) })
		if !ok {
			s.log.WithField("nodes", nodes).Warn("Solve abandoned a wedged relaxation at its deadline")
			return Solution{Status: StatusTimedOut, Nodes: nodes}, nil
		}
		if res.err != nil {
			if errors.Is(res.err, lp.ErrUnbounded) {
				return Solution{Status: StatusUnbounded, Nodes: nodes}, nil
			}
			return Solution{}, fmt.Errorf("lp relaxation: %w", res.err)
		}
		if !res.feasible {
			continue
		}
		if !res.solved {
			// The simplex died on this node even after retries. Split the
			// subtree without a bound: fully fixed leaves are checked
			// directly, so the search stays exact, just slower here.
			if branch := firstFree(node); branch >= 0 {
				stack = pushBranches(stack, node, branch)
			}
			continue
		}
		if incumbent.Status == StatusOptimal && res.bound <= incumbent.Objective+boundEps {
			continue
		}

		// Branch on the most fractional variable, if any remains.
		branch, worst := -1, intTol
		for j, v := range res.x {
			if d := math.Min(v, 1-v); d > worst {
				worst, branch = d, j
			}
		}
		if branch >= 0 {
			stack = pushBranches(stack, node, branch)
			continue
		}

		// Integral. Round off the LP noise and score against the exact
		// rows: a nudged relaxation may admit a point the true rows do not.
		vals := make([]float64, n)
		for j, v := range res.x {
			vals[j] = math.Round(v)
		}
		if !integralFeasible(p, vals) {
			if j := firstFree(node); j >= 0 {
				stack = pushBranches(stack, node, j)
			}
			continue
		}
		if obj := dot(p.Objective, vals); obj > incumbent.Objective {
			incumbent = Solution{Status: StatusOptimal, Values: vals, Objective: obj}
		}
	}

	incumbent.Nodes = nodes
	if incumbent.Status != StatusOptimal {
		return Solution{Status: StatusInfeasible, Nodes: nodes}, nil
	}
	return incumbent, nil
}

// relaxResult is the verdict on one node's LP relaxation. feasible=false
// proves the subtree empty; solved=false means the simplex failed and the
// node carries no bound.
type relaxResult struct {
	x        []float64
	bound    float64
	feasible bool
	solved   bool
	err      error
}

// awaitRelax runs one relaxation and abandons it when the context expires
// first. lp.Simplex has no interruption hook and can stall inside a single
// call on degenerate bases, so the deadline has to be enforced from outside;
// an abandoned call keeps its goroutine until the simplex returns.
func awaitRelax(ctx context.Context, f func() relaxResult) (relaxResult, bool) {
	done := make(chan relaxResult, 1)
	go func() { done <- f() }()
	select {
	case res := <-done:
		return res, true
	case <-ctx.Done():
		return relaxResult{}, false
	}
}

func pushBranches(stack [][]int8, node []int8, branch int) [][]int8 {
	down := make([]int8, len(node))
	copy(down, node)
	down[branch] = varZero
	up := make([]int8, len(node))
	copy(up, node)
	up[branch] = varOne
	// LIFO: the 1-branch is explored first.
	return append(stack, down, up)
}

func firstFree(node []int8) int {
	for j, v := range node {
		if v == varFree {
			return j
		}
	}
	return -1
}

// integralFeasible checks a rounded 0/1 assignment against the exact rows.
func integralFeasible(p Problem, x []float64) bool {
	for _, c := range p.LessEq {
		if dot(c.Coeffs, x) > c.Bound+boundEps {
			return false
		}
	}
	for _, c := range p.Eq {
		if math.Abs(dot(c.Coeffs, x)-c.Bound) > boundEps {
			return false
		}
	}
	return true
}

type reducedRow struct {
	coeffs []float64
	bound  float64
}

// relax solves the LP relaxation of p with the given variables fixed.
// Integer-feasibility pruning is included: an equality row that forces a
// lone variable to a fractional value makes the whole subtree infeasible.
func (s *BranchAndBound) relax(p Problem, fixed []int8) relaxResult {
	n := p.NumVars()

	// Presolve: equality rows with a single free variable pin that variable.
	work := make([]int8, n)
	copy(work, fixed)
	for changed := true; changed; {
		changed = false
		for _, c := range p.Eq {
			lone, count := -1, 0
			rhs := c.Bound
			for i, a := range c.Coeffs {
				if a == 0 {
					continue
				}
				if work[i] == varFree {
					lone = i
					count++
				} else {
					rhs -= a * float64(work[i])
				}
			}
			switch count {
			case 0:
				if math.Abs(rhs) > boundEps {
					return relaxResult{}
				}
			case 1:
				v := rhs / c.Coeffs[lone]
				switch {
				case math.Abs(v) <= defaultIntTol:
					work[lone] = varZero
				case math.Abs(v-1) <= defaultIntTol:
					work[lone] = varOne
				default:
					return relaxResult{}
				}
				changed = true
			}
		}
	}

	freeIdx := make([]int, 0, n)
	col := make([]int, n)
	objConst := 0.0
	for i := range work {
		if work[i] == varFree {
			col[i] = len(freeIdx)
			freeIdx = append(freeIdx, i)
		} else {
			col[i] = -1
			objConst += p.Objective[i] * float64(work[i])
		}
	}
	nf := len(freeIdx)

	if nf == 0 {
		x := make([]float64, n)
		for i := range work {
			x[i] = float64(work[i])
		}
		if !integralFeasible(p, x) {
			return relaxResult{}
		}
		return relaxResult{x: x, bound: objConst, feasible: true, solved: true}
	}

	var ineq, eq []reducedRow
	for _, c := range p.LessEq {
		row, ok := reduce(c, work, col, nf)
		if row == nil {
			if !ok {
				return relaxResult{}
			}
			continue
		}
		ineq = append(ineq, *row)
	}
	// The binary box: x_j <= 1 for every free variable.
	for j := 0; j < nf; j++ {
		coeffs := make([]float64, nf)
		coeffs[j] = 1
		ineq = append(ineq, reducedRow{coeffs: coeffs, bound: 1})
	}
	seen := make(map[string]float64)
	for _, c := range p.Eq {
		row, ok := reduce(c, work, col, nf)
		if row == nil {
			if !ok {
				return relaxResult{}
			}
			continue
		}
		key := rowKey(row.coeffs)
		if prev, dup := seen[key]; dup {
			if math.Abs(prev-row.bound) > boundEps {
				return relaxResult{}
			}
			continue
		}
		seen[key] = row.bound
		eq = append(eq, *row)
	}

	// Standard form: slack per inequality, minimize the negated objective.
	mi, me := len(ineq), len(eq)
	c := make([]float64, nf+mi)
	for j, i := range freeIdx {
		c[j] = -p.Objective[i]
	}
	a := mat.NewDense(mi+me, nf+mi, nil)
	b := make([]float64, mi+me)
	for r, row := range ineq {
		for j, v := range row.coeffs {
			a.Set(r, j, v)
		}
		a.Set(r, nf+r, 1)
		b[r] = row.bound
	}
	for r, row := range eq {
		for j, v := range row.coeffs {
			a.Set(mi+r, j, v)
		}
		b[mi+r] = row.bound
	}

	for attempt := 0; attempt <= perturbRetries; attempt++ {
		rhs := b
		if attempt > 0 {
			s.log.WithField("attempt", attempt).Debug("Retrying relaxation with nudged bounds")
			scale := 1e-7 * math.Pow(10, float64(attempt-1))
			rhs = make([]float64, len(b))
			copy(rhs, b)
			for r := 0; r < mi; r++ {
				rhs[r] += scale * (1 + math.Abs(b[r])) * (1 + float64(r%7)/7)
			}
		}

		optF, xStd, err := lp.Simplex(c, a, rhs, simplexTol, nil)
		if err != nil {
			if errors.Is(err, lp.ErrInfeasible) {
				// The nudged region contains the original one, so an
				// infeasible retry still certifies the node infeasible.
				return relaxResult{}
			}
			if errors.Is(err, lp.ErrUnbounded) {
				return relaxResult{err: err}
			}
			// ErrBland, ErrLinSolve, ErrSingular: degenerate-basis
			// breakdowns worth retrying with nudged bounds.
			continue
		}

		x := make([]float64, n)
		for i := range work {
			if work[i] != varFree {
				x[i] = float64(work[i])
			}
		}
		for j, i := range freeIdx {
			x[i] = xStd[j]
		}
		// Early stopping at reduced cost >= -simplexTol leaves the vertex
		// short of the LP optimum by at most tol times the total variable
		// range; widen the bound so pruning never uses an underestimate.
		slack := simplexTol * (float64(nf) + sumAbs(rhs))
		return relaxResult{x: x, bound: -optF + objConst + slack, feasible: true, solved: true}
	}
	return relaxResult{feasible: true}
}

// reduce rewrites a row over the free variables. A nil row with ok=true is
// redundant and can be dropped; nil with ok=false is a contradiction.
func reduce(c Constraint, work []int8, col []int, nf int) (*reducedRow, bool) {
	coeffs := make([]float64, nf)
	bound := c.Bound
	nonzero := false
	for i, a := range c.Coeffs {
		if a == 0 {
			continue
		}
		if work[i] == varFree {
			coeffs[col[i]] = a
			nonzero = true
		} else {
			bound -= a * float64(work[i])
		}
	}
	if !nonzero {
		if bound < -boundEps {
			return nil, false
		}
		return nil, true
	}
	return &reducedRow{coeffs: coeffs, bound: bound}, true
}

func rowKey(coeffs []float64) string {
	key := make([]byte, 0, len(coeffs)*8)
	for _, v := range coeffs {
		key = append(key, fmt.Sprintf("%.9g|", v)...)
	}
	return string(key)
}

func dot(coeffs, x []float64) float64 {
	sum := 0.0
	for i, a := range coeffs {
		sum += a * x[i]
	}
	return sum
}

func sumAbs(xs []float64) float64 {
	sum := 0.0
	for _, v := range xs {
		sum += math.Abs(v)
	}
	return sum
}
