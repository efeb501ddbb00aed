package api

import (
	"github.com/gin-gonic/gin"

	"github.com/ajwhitfield/fpl-optimizer/internal/api/handlers"
	"github.com/ajwhitfield/fpl-optimizer/internal/services"
	"github.com/ajwhitfield/fpl-optimizer/internal/solver"
	"github.com/ajwhitfield/fpl-optimizer/internal/storage"
	"github.com/ajwhitfield/fpl-optimizer/pkg/config"
	"github.com/ajwhitfield/fpl-optimizer/pkg/database"
)

// SetupRoutes configures all API routes on the given router group
func SetupRoutes(group *gin.RouterGroup, db *database.DB, cache *services.RosterCache, s solver.Solver, cfg *config.Config) error {
	store, err := storage.NewRosterStore(db)
	if err != nil {
		return err
	}

	optimizeHandler := handlers.NewOptimizeHandler(store, cache, s, cfg)
	rosterHandler := handlers.NewRosterHandler(store)

	group.POST("/optimize", optimizeHandler.Optimize)
	group.GET("/rosters", rosterHandler.ListRosters)
	group.GET("/rosters/:id", rosterHandler.GetRoster)
	return nil
}
