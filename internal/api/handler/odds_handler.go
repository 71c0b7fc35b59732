package handler

import (
	"net/http"

	"github.com/bkoc/betleague/internal/domain"
	"github.com/bkoc/betleague/internal/service"
	"github.com/gin-gonic/gin"
)

// OddsHandler serves the weekly odds board.
type OddsHandler struct {
	oddsSvc *service.OddsService
}

// NewOddsHandler creates an OddsHandler.
func NewOddsHandler(oddsSvc *service.OddsService) *OddsHandler {
	return &OddsHandler{oddsSvc: oddsSvc}
}

// WeekOdds godoc
// GET /api/odds/weeks/:week
func (h *OddsHandler) WeekOdds(c *gin.Context) {
	week, ok := parseWeek(c)
	if !ok {
		return
	}

	board, err := h.oddsSvc.WeekOdds(c.Request.Context(), week)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch odds")
		return
	}
	respondSuccess(c, http.StatusOK, board)
}

// GameOdds godoc
// GET /api/odds/games/:id
func (h *OddsHandler) GameOdds(c *gin.Context) {
	gameID := c.Param("id")

	odds, err := h.oddsSvc.GameOdds(c.Request.Context(), gameID)
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", "game not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch odds")
		return
	}
	respondSuccess(c, http.StatusOK, odds)
}
