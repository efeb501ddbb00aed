package storage

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ajwhitfield/fpl-optimizer/internal/models"
	"github.com/ajwhitfield/fpl-optimizer/pkg/database"
)

// RosterStore persists solved rosters together with a snapshot of the
// squad members, since the player pool itself is never stored.
type RosterStore struct {
	db *database.DB
}

func NewRosterStore(db *database.DB) (*RosterStore, error) {
	if err := db.AutoMigrate(&models.Roster{}, &models.RosterPlayer{}); err != nil {
		return nil, fmt.Errorf("failed to migrate roster schema: %w", err)
	}
	return &RosterStore{db: db}, nil
}

func (s *RosterStore) Save(ctx context.Context, roster *models.Roster) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(roster).Error; err != nil {
			return fmt.Errorf("failed to save roster: %w", err)
		}
		rows := make([]models.RosterPlayer, 0, roster.SquadSize())
		for _, p := range roster.Starters {
			rows = append(rows, snapshot(roster, p, true))
		}
		for _, p := range roster.Bench {
			rows = append(rows, snapshot(roster, p, false))
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to save roster players: %w", err)
		}
		return nil
	})
}

func (s *RosterStore) Get(ctx context.Context, id string) (*models.Roster, error) {
	var roster models.Roster
	if err := s.db.WithContext(ctx).First(&roster, "id = ?", id).Error; err != nil {
		return nil, err
	}
	var rows []models.RosterPlayer
	if err := s.db.WithContext(ctx).Where("roster_id = ?", id).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		player := models.Player{
			ID:            row.PlayerID,
			Name:          row.Name,
			Club:          row.Club,
			Position:      row.Position,
			Price:         row.Price,
			ExpectedScore: row.ExpectedScore,
		}
		if row.IsStarter {
			roster.Starters = append(roster.Starters, player)
		} else {
			roster.Bench = append(roster.Bench, player)
		}
	}
	return &roster, nil
}

func (s *RosterStore) List(ctx context.Context, limit int) ([]models.Roster, error) {
	if limit <= 0 {
		limit = 50
	}
	var rosters []models.Roster
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rosters).Error
	return rosters, err
}

func snapshot(roster *models.Roster, p models.Player, starter bool) models.RosterPlayer {
	return models.RosterPlayer{
		RosterID:      roster.ID,
		PlayerID:      p.ID,
		Name:          p.Name,
		Club:          p.Club,
		Position:      p.Position,
		Price:         p.Price,
		ExpectedScore: p.ExpectedScore,
		IsStarter:     starter,
		IsCaptain:     p.ID == roster.CaptainID,
	}
}
