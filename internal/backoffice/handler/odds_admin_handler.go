package handler

import (
	"net/http"
	"time"

	"github.com/bkoc/betleague/internal/config"
	"github.com/bkoc/betleague/internal/service"
	"github.com/gin-gonic/gin"
)

// OddsAdminHandler serves /admin/odds endpoints.
type OddsAdminHandler struct {
	oddsSvc *service.OddsService
	cfg     *config.Config
}

// NewOddsAdminHandler creates an OddsAdminHandler.
func NewOddsAdminHandler(oddsSvc *service.OddsService, cfg *config.Config) *OddsAdminHandler {
	return &OddsAdminHandler{oddsSvc: oddsSvc, cfg: cfg}
}

// Sync godoc
// POST /admin/odds/sync
// Body: {"week": 3}; week 0 or omitted means the current week.
func (h *OddsAdminHandler) Sync(c *gin.Context) {
	var body struct {
		Week int `json:"week"`
	}
	if err := c.ShouldBindJSON(&body); err != nil && err.Error() != "EOF" {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	week := body.Week
	if week <= 0 {
		week = h.cfg.League.CurrentWeek(time.Now().UTC())
	}

	games, options, err := h.oddsSvc.SyncWeek(c.Request.Context(), week)
	if err != nil {
		respondError(c, http.StatusBadGateway, "ERR_PROVIDER", err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"week":    week,
		"games":   games,
		"options": options,
	})
}
