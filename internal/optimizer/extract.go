package optimizer

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/ajwhitfield/fpl-optimizer/internal/models"
	"github.com/ajwhitfield/fpl-optimizer/internal/solver"
)

// binaryTol is how far a solver value may sit from 0 or 1 before the
// assignment is rejected as ambiguous. Solvers report values with floating
// point noise, so exact comparison against 0/1 is never safe.
const binaryTol = 1e-4

// roundBinary thresholds one solver value to a bool.
func roundBinary(v float64) (bool, error) {
	switch {
	case math.Abs(v) <= binaryTol:
		return false, nil
	case math.Abs(v-1) <= binaryTol:
		return true, nil
	}
	return false, fmt.Errorf("%w: value %g is neither 0 nor 1", ErrAmbiguousAssignment, v)
}

// ExtractRoster maps a solved assignment back to player identities.
// The solution must come from solving m.Problem(); the variable layout is
// shared between the two.
func (m *Model) ExtractRoster(sol solver.Solution) (*models.Roster, error) {
	if len(sol.Values) != len(m.problem.Objective) {
		return nil, fmt.Errorf("solution has %d values, model has %d variables", len(sol.Values), len(m.problem.Objective))
	}

	roster := &models.Roster{
		ID:             uuid.NewString(),
		ObjectiveValue: sol.Objective,
	}
	for i, p := range m.players {
		selected, err := roundBinary(sol.Values[selVar(i)])
		if err != nil {
			return nil, fmt.Errorf("player %d selected: %w", p.ID, err)
		}
		isCaptain, err := roundBinary(sol.Values[capVar(i)])
		if err != nil {
			return nil, fmt.Errorf("player %d captain: %w", p.ID, err)
		}
		benched, err := roundBinary(sol.Values[subVar(i)])
		if err != nil {
			return nil, fmt.Errorf("player %d substitute: %w", p.ID, err)
		}

		if selected {
			roster.Starters = append(roster.Starters, p)
		}
		if benched {
			roster.Bench = append(roster.Bench, p)
		}
		if isCaptain {
			if roster.CaptainID != 0 {
				return nil, fmt.Errorf("%w: players %d and %d both marked captain", ErrAmbiguousAssignment, roster.CaptainID, p.ID)
			}
			roster.CaptainID = p.ID
		}
	}

	sortSquad(roster.Starters)
	sortSquad(roster.Bench)
	roster.CalculateTotalCost()
	return roster, nil
}

// sortSquad orders players by position class then descending forecast,
// which is the order team sheets are shown in.
func sortSquad(players []models.Player) {
	rank := make(map[models.Position]int, len(models.AllPositions))
	for i, pos := range models.AllPositions {
		rank[pos] = i
	}
	sort.Slice(players, func(i, j int) bool {
		if rank[players[i].Position] != rank[players[j].Position] {
			return rank[players[i].Position] < rank[players[j].Position]
		}
		return players[i].ExpectedScore > players[j].ExpectedScore
	})
}
