package optimizer

import (
	"fmt"

	"github.com/ajwhitfield/fpl-optimizer/internal/models"
)

// PositionRule bounds one position class: how many of the starting eleven
// may come from it, and how many squad slots it gets in total.
type PositionRule struct {
	MinStarters int `json:"min_starters"`
	MaxStarters int `json:"max_starters"`
	SquadTotal  int `json:"squad_total"`
}

// Config carries every knob of one solve. The zero value is not usable;
// start from DefaultConfig.
type Config struct {
	TotalBudget      float64                          `json:"total_budget"`
	StartingSlots    int                              `json:"starting_slots"`
	SquadSize        int                              `json:"squad_size"`
	MaxPerClub       int                              `json:"max_per_club"`
	SubstituteFactor float64                          `json:"substitute_factor"`
	Positions        map[models.Position]PositionRule `json:"positions"`
}

// DefaultConfig is the classic fantasy premier league squad: 15 players,
// 11 starters, 2/5/5/3 across positions, at most 3 per club, and bench
// forecasts discounted to a fifth.
func DefaultConfig() Config {
	return Config{
		TotalBudget:      100,
		StartingSlots:    11,
		SquadSize:        15,
		MaxPerClub:       3,
		SubstituteFactor: 0.2,
		Positions: map[models.Position]PositionRule{
			models.Goalkeeper: {MinStarters: 1, MaxStarters: 1, SquadTotal: 2},
			models.Defender:   {MinStarters: 3, MaxStarters: 5, SquadTotal: 5},
			models.Midfielder: {MinStarters: 3, MaxStarters: 5, SquadTotal: 5},
			models.Forward:    {MinStarters: 1, MaxStarters: 3, SquadTotal: 3},
		},
	}
}

// Validate rejects configurations that could never produce a well-formed
// model. Infeasibility of a valid configuration is not detected here; that
// is the solver's verdict.
func (c Config) Validate() error {
	// A zero budget is allowed through: it is a legitimate (hopeless)
	// instance, and the solver reports it as infeasible.
	if c.TotalBudget < 0 {
		return fmt.Errorf("%w: total budget must be non-negative, got %g", ErrInvalidConfig, c.TotalBudget)
	}
	if c.SubstituteFactor < 0 || c.SubstituteFactor > 1 {
		return fmt.Errorf("%w: substitute factor must be in [0,1], got %g", ErrInvalidConfig, c.SubstituteFactor)
	}
	if c.StartingSlots <= 0 || c.SquadSize < c.StartingSlots {
		return fmt.Errorf("%w: squad size %d cannot be smaller than starting slots %d", ErrInvalidConfig, c.SquadSize, c.StartingSlots)
	}
	if c.MaxPerClub <= 0 {
		return fmt.Errorf("%w: max players per club must be positive, got %d", ErrInvalidConfig, c.MaxPerClub)
	}
	if len(c.Positions) == 0 {
		return fmt.Errorf("%w: no position rules", ErrInvalidConfig)
	}

	totalSlots, minSum, maxSum := 0, 0, 0
	for pos, rule := range c.Positions {
		if rule.MinStarters < 0 || rule.MinStarters > rule.MaxStarters {
			return fmt.Errorf("%w: position %s starter bounds [%d,%d] are malformed", ErrInvalidConfig, pos, rule.MinStarters, rule.MaxStarters)
		}
		if rule.SquadTotal < rule.MinStarters {
			return fmt.Errorf("%w: position %s squad total %d is below its starter minimum %d", ErrInvalidConfig, pos, rule.SquadTotal, rule.MinStarters)
		}
		totalSlots += rule.SquadTotal
		minSum += rule.MinStarters
		maxSum += rule.MaxStarters
	}
	if totalSlots != c.SquadSize {
		return fmt.Errorf("%w: position squad totals sum to %d, want squad size %d", ErrInvalidConfig, totalSlots, c.SquadSize)
	}
	if minSum > c.StartingSlots || maxSum < c.StartingSlots {
		return fmt.Errorf("%w: starter bounds [%d,%d] cannot produce %d starters", ErrInvalidConfig, minSum, maxSum, c.StartingSlots)
	}
	return nil
}
