package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajwhitfield/fpl-optimizer/internal/models"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		wantOK bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"zero budget is a solver question, not a config defect", func(c *Config) { c.TotalBudget = 0 }, true},
		{"negative budget", func(c *Config) { c.TotalBudget = -5 }, false},
		{"substitute factor above one", func(c *Config) { c.SubstituteFactor = 1.1 }, false},
		{"negative substitute factor", func(c *Config) { c.SubstituteFactor = -0.1 }, false},
		{"squad smaller than starting eleven", func(c *Config) { c.SquadSize = 10 }, false},
		{"zero club cap", func(c *Config) { c.MaxPerClub = 0 }, false},
		{"no position rules", func(c *Config) { c.Positions = nil }, false},
		{"min above max", func(c *Config) {
			c.Positions[models.Defender] = PositionRule{MinStarters: 4, MaxStarters: 3, SquadTotal: 5}
		}, false},
		{"squad total below starter floor", func(c *Config) {
			c.Positions[models.Forward] = PositionRule{MinStarters: 2, MaxStarters: 3, SquadTotal: 1}
		}, false},
		{"position totals miss squad size", func(c *Config) {
			c.Positions[models.Goalkeeper] = PositionRule{MinStarters: 1, MaxStarters: 1, SquadTotal: 3}
		}, false},
		{"starter ceilings cannot reach eleven", func(c *Config) {
			c.Positions = map[models.Position]PositionRule{
				models.Goalkeeper: {MinStarters: 1, MaxStarters: 1, SquadTotal: 2},
				models.Defender:   {MinStarters: 3, MaxStarters: 4, SquadTotal: 5},
				models.Midfielder: {MinStarters: 3, MaxStarters: 4, SquadTotal: 5},
				models.Forward:    {MinStarters: 1, MaxStarters: 1, SquadTotal: 3},
			}
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantOK {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			}
		})
	}
}

func TestBuildModel_Shape(t *testing.T) {
	players := premierLeaguePool()
	cfg := DefaultConfig()

	model, err := BuildModel(players, cfg)
	require.NoError(t, err)
	p := model.Problem()

	n := len(players)
	assert.Equal(t, 3*n, p.NumVars(), "selected, captain and substitute per player")
	require.NoError(t, p.Validate())

	// Equalities: starting slots, one captain, one squad total per position.
	assert.Len(t, p.Eq, 2+len(cfg.Positions))

	// Inequalities: budget, captain-implies-starter and exclusivity per
	// player, min/max starters per position, one cap per club.
	clubs := make(map[string]bool)
	for _, pl := range players {
		clubs[pl.Club] = true
	}
	assert.Len(t, p.LessEq, 1+2*n+2*len(cfg.Positions)+len(clubs))
}

func TestBuildModel_ObjectiveWeights(t *testing.T) {
	players := premierLeaguePool()
	cfg := DefaultConfig()

	model, err := BuildModel(players, cfg)
	require.NoError(t, err)
	obj := model.Problem().Objective

	for i, p := range players {
		assert.Equal(t, p.ExpectedScore, obj[3*i], "selection weight for %s", p.Name)
		assert.Equal(t, p.ExpectedScore, obj[3*i+1], "captaincy doubles the starter, so it adds the score once more")
		assert.InDelta(t, cfg.SubstituteFactor*p.ExpectedScore, obj[3*i+2], 1e-12, "bench weight for %s", p.Name)
	}
}

func TestBuildModel_RejectsBadPools(t *testing.T) {
	cfg := DefaultConfig()

	_, err := BuildModel(nil, cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig, "empty pool")

	dup := []models.Player{
		{ID: 7, Name: "A", Club: "X", Position: models.Defender, Price: 5, ExpectedScore: 5},
		{ID: 7, Name: "B", Club: "Y", Position: models.Midfielder, Price: 5, ExpectedScore: 5},
	}
	_, err = BuildModel(dup, cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig, "duplicate id")

	unknown := []models.Player{
		{ID: 1, Name: "A", Club: "X", Position: "LIBERO", Price: 5, ExpectedScore: 5},
	}
	_, err = BuildModel(unknown, cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig, "position with no rule")
}
