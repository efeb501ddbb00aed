package models

import (
	"time"

	"gorm.io/datatypes"
)

// Roster is the immutable output of one successful solve: starters, bench
// and a unique captain, plus the objective value the solver certified.
// Parameters snapshots the configuration the solve ran with, so a stored
// roster can be reproduced without the original request.
type Roster struct {
	ID             string         `gorm:"primaryKey" json:"id"`
	ObjectiveValue float64        `gorm:"not null" json:"objective_value"`
	TotalCost      float64        `gorm:"not null" json:"total_cost"`
	CaptainID      uint           `gorm:"not null" json:"captain_id"`
	SolveTimeMs    int64          `json:"solve_time_ms"`
	Parameters     datatypes.JSON `json:"parameters,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`

	Starters []Player `gorm:"-" json:"starters"`
	Bench    []Player `gorm:"-" json:"bench"`
}

// TableName specifies the table name for GORM
func (Roster) TableName() string {
	return "rosters"
}

// RosterPlayer is the persisted snapshot of one squad member. Player
// attributes are copied in because the pool itself is never stored.
type RosterPlayer struct {
	RosterID      string   `gorm:"primaryKey"`
	PlayerID      uint     `gorm:"primaryKey"`
	Name          string   `json:"name"`
	Club          string   `json:"club"`
	Position      Position `json:"position"`
	Price         float64  `json:"price"`
	ExpectedScore float64  `json:"expected_score"`
	IsStarter     bool     `gorm:"not null" json:"is_starter"`
	IsCaptain     bool     `gorm:"not null" json:"is_captain"`
}

func (RosterPlayer) TableName() string {
	return "roster_players"
}

// Captain returns the captain's player record, always one of the starters.
func (r *Roster) Captain() *Player {
	for i := range r.Starters {
		if r.Starters[i].ID == r.CaptainID {
			return &r.Starters[i]
		}
	}
	return nil
}

// SquadSize is the number of players across starters and bench.
func (r *Roster) SquadSize() int {
	return len(r.Starters) + len(r.Bench)
}

// CalculateTotalCost recomputes the squad price from the player records.
func (r *Roster) CalculateTotalCost() float64 {
	total := 0.0
	for _, p := range r.Starters {
		total += p.Price
	}
	for _, p := range r.Bench {
		total += p.Price
	}
	r.TotalCost = total
	return total
}
