package handler

import (
	"errors"
	"net/http"

	"github.com/bkoc/betleague/internal/domain"
	"github.com/bkoc/betleague/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ResultsHandler serves the results feed and settlement controls.
type ResultsHandler struct {
	settlementSvc *service.SettlementService
	betSvc        *service.BetService
}

// NewResultsHandler creates a ResultsHandler.
func NewResultsHandler(settlementSvc *service.SettlementService, betSvc *service.BetService) *ResultsHandler {
	return &ResultsHandler{settlementSvc: settlementSvc, betSvc: betSvc}
}

// PostResult godoc
// POST /admin/results
// Body: {"game_id":"abc123","result":"home_win"}
func (h *ResultsHandler) PostResult(c *gin.Context) {
	var body struct {
		GameID string `json:"game_id" binding:"required"`
		Result string `json:"result"  binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	err := h.settlementSvc.PostResult(c.Request.Context(), body.GameID, domain.GameResult(body.Result))
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", "game not found")
			return
		}
		respondError(c, http.StatusBadRequest, "ERR_INVALID_RESULT", err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"game_id": body.GameID, "result": body.Result})
}

// SettleMatchup godoc
// POST /admin/matchups/:id/settle
func (h *ResultsHandler) SettleMatchup(c *gin.Context) {
	matchupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid matchup id")
		return
	}

	if err := h.settlementSvc.SettleMatchup(c.Request.Context(), matchupID); err != nil {
		switch {
		case domain.IsNotFound(err):
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", "matchup not found")
		case errors.Is(err, domain.ErrMatchupNotReady):
			respondError(c, http.StatusConflict, "ERR_NOT_READY", err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		}
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"matchup_id": matchupID, "settled": true})
}

// SettleDue godoc
// POST /admin/settle
func (h *ResultsHandler) SettleDue(c *gin.Context) {
	if err := h.settlementSvc.SettleDueMatchups(c.Request.Context()); err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"settlement": "triggered"})
}

// LockSweep godoc
// POST /admin/lock-sweep
func (h *ResultsHandler) LockSweep(c *gin.Context) {
	if err := h.settlementSvc.LockStartedGames(c.Request.Context()); err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"lock_sweep": "done"})
}

// CancelBet godoc
// POST /admin/bets/:id/cancel
func (h *ResultsHandler) CancelBet(c *gin.Context) {
	betID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid bet id")
		return
	}

	if err := h.betSvc.CancelBet(c.Request.Context(), betID); err != nil {
		if errors.Is(err, domain.ErrBetNotCancellable) {
			respondError(c, http.StatusConflict, "ERR_NOT_CANCELLABLE", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"bet_id": betID, "status": "cancelled"})
}
