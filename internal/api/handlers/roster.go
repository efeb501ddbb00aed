package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ajwhitfield/fpl-optimizer/internal/storage"
	"github.com/ajwhitfield/fpl-optimizer/pkg/utils"
)

type RosterHandler struct {
	store *storage.RosterStore
}

func NewRosterHandler(store *storage.RosterStore) *RosterHandler {
	return &RosterHandler{store: store}
}

// ListRosters returns recently solved rosters, newest first.
func (h *RosterHandler) ListRosters(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	rosters, err := h.store.List(c.Request.Context(), limit)
	if err != nil {
		utils.SendError(c, 500, utils.NewAppError(utils.ErrCodeInternal, "failed to list rosters"))
		return
	}
	utils.SendSuccess(c, rosters)
}

// GetRoster returns one saved roster with its full squad snapshot.
func (h *RosterHandler) GetRoster(c *gin.Context) {
	roster, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.SendNotFound(c, "roster not found")
			return
		}
		utils.SendError(c, 500, utils.NewAppError(utils.ErrCodeInternal, "failed to load roster"))
		return
	}
	utils.SendSuccess(c, roster)
}
