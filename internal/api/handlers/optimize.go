package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/ajwhitfield/fpl-optimizer/internal/models"
	"github.com/ajwhitfield/fpl-optimizer/internal/optimizer"
	"github.com/ajwhitfield/fpl-optimizer/internal/services"
	"github.com/ajwhitfield/fpl-optimizer/internal/solver"
	"github.com/ajwhitfield/fpl-optimizer/internal/storage"
	"github.com/ajwhitfield/fpl-optimizer/pkg/config"
	"github.com/ajwhitfield/fpl-optimizer/pkg/utils"
)

type OptimizeHandler struct {
	store  *storage.RosterStore
	cache  *services.RosterCache
	solver solver.Solver
	cfg    *config.Config
}

func NewOptimizeHandler(store *storage.RosterStore, cache *services.RosterCache, s solver.Solver, cfg *config.Config) *OptimizeHandler {
	return &OptimizeHandler{
		store:  store,
		cache:  cache,
		solver: s,
		cfg:    cfg,
	}
}

type OptimizeRequest struct {
	Players []models.Player   `json:"players" binding:"required"`
	Config  *optimizer.Config `json:"config"`
}

// Optimize solves one roster for the posted player pool. Identical
// requests are answered from the cache when one is configured.
func (h *OptimizeHandler) Optimize(c *gin.Context) {
	var req OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "invalid request body", err.Error())
		return
	}

	cfg := h.defaults()
	if req.Config != nil {
		cfg = *req.Config
	}

	cacheKey := ""
	if h.cache != nil {
		key, err := services.OptimizeCacheKey(req)
		if err == nil {
			cacheKey = key
			var cached optimizer.Result
			if err := h.cache.Get(c.Request.Context(), cacheKey, &cached); err == nil {
				utils.SendSuccess(c, cached)
				return
			}
		}
	}

	result, err := optimizer.Optimize(c.Request.Context(), req.Players, cfg, h.solver, solver.Options{
		Timeout:  h.cfg.SolverTimeout,
		MaxNodes: h.cfg.SolverMaxNodes,
	})
	if err != nil {
		h.sendOptimizeError(c, err)
		return
	}

	if params, err := json.Marshal(cfg); err == nil {
		result.Roster.Parameters = datatypes.JSON(params)
	}
	if err := h.store.Save(c.Request.Context(), result.Roster); err != nil {
		logrus.WithError(err).Error("Failed to persist roster")
	}
	if h.cache != nil && cacheKey != "" {
		if err := h.cache.Set(c.Request.Context(), cacheKey, result, h.cfg.CacheTTL); err != nil {
			logrus.WithError(err).Warn("Failed to cache roster")
		}
	}

	utils.SendSuccess(c, result)
}

func (h *OptimizeHandler) sendOptimizeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, optimizer.ErrInvalidConfig):
		utils.SendValidationError(c, "invalid configuration", err.Error())
	case errors.Is(err, optimizer.ErrNoFeasibleRoster):
		utils.SendError(c, http.StatusUnprocessableEntity, utils.NewAppError(utils.ErrCodeInfeasible, "no roster satisfies the constraints", err.Error()))
	case errors.Is(err, optimizer.ErrSolverTimeout):
		utils.SendError(c, http.StatusGatewayTimeout, utils.NewAppError(utils.ErrCodeTimeout, "solver exceeded its budget", err.Error()))
	default:
		logrus.WithError(err).Error("Optimization failed")
		utils.SendError(c, http.StatusInternalServerError, utils.NewAppError(utils.ErrCodeInternal, "optimization failed"))
	}
}

func (h *OptimizeHandler) defaults() optimizer.Config {
	cfg := optimizer.DefaultConfig()
	if h.cfg.DefaultBudget > 0 {
		cfg.TotalBudget = h.cfg.DefaultBudget
	}
	if h.cfg.DefaultSubstituteFactor > 0 {
		cfg.SubstituteFactor = h.cfg.DefaultSubstituteFactor
	}
	if h.cfg.DefaultMaxPerClub > 0 {
		cfg.MaxPerClub = h.cfg.DefaultMaxPerClub
	}
	return cfg
}
