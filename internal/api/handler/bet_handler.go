package handler

import (
	"errors"
	"net/http"

	"github.com/bkoc/betleague/internal/api/middleware"
	"github.com/bkoc/betleague/internal/domain"
	"github.com/bkoc/betleague/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BetHandler serves bet placement and matchup bet views.
type BetHandler struct {
	betSvc *service.BetService
}

// NewBetHandler creates a BetHandler.
func NewBetHandler(betSvc *service.BetService) *BetHandler {
	return &BetHandler{betSvc: betSvc}
}

// respondPlacementError maps placement failures onto specific codes so
// clients can show the right message without string matching.
func respondPlacementError(c *gin.Context, err error) {
	var budgetErr *domain.BudgetExceededError
	switch {
	case errors.Is(err, domain.ErrNotAParticipant):
		respondError(c, http.StatusForbidden, "ERR_NOT_A_PARTICIPANT", err.Error())
	case errors.Is(err, domain.ErrOptionLocked):
		respondError(c, http.StatusUnprocessableEntity, "ERR_OPTION_LOCKED", err.Error())
	case errors.Is(err, domain.ErrGameStarted):
		respondError(c, http.StatusUnprocessableEntity, "ERR_GAME_STARTED", err.Error())
	case errors.Is(err, domain.ErrInvalidAmount):
		respondError(c, http.StatusBadRequest, "ERR_INVALID_AMOUNT", err.Error())
	case errors.As(err, &budgetErr):
		respondError(c, http.StatusUnprocessableEntity, "ERR_BUDGET_EXCEEDED", budgetErr.Error())
	case errors.Is(err, domain.ErrInvalidParlay):
		respondError(c, http.StatusBadRequest, "ERR_INVALID_PARLAY", err.Error())
	case errors.Is(err, domain.ErrTooManyLegs):
		respondError(c, http.StatusBadRequest, "ERR_TOO_MANY_LEGS", err.Error())
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not place bet")
	}
}

// PlaceBet godoc
// POST /api/bets [JWT]
// Body: {"matchup_id":"uuid","option_id":"uuid","amount":"25.00"}
func (h *BetHandler) PlaceBet(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var body struct {
		MatchupID string `json:"matchup_id" binding:"required"`
		OptionID  string `json:"option_id"  binding:"required"`
		Amount    string `json:"amount"     binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	matchupID, err := uuid.Parse(body.MatchupID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_MATCHUP_ID", "invalid matchup_id format")
		return
	}
	optionID, err := uuid.Parse(body.OptionID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_OPTION_ID", "invalid option_id format")
		return
	}
	amount, err := decimal.NewFromString(body.Amount)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_AMOUNT", "amount must be a decimal string")
		return
	}

	bet, err := h.betSvc.PlaceBet(c.Request.Context(), domain.PlaceBetRequest{
		UserID:    userID,
		MatchupID: matchupID,
		OptionID:  optionID,
		Amount:    amount,
	})
	if err != nil {
		respondPlacementError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, bet)
}

// PlaceParlay godoc
// POST /api/bets/parlay [JWT]
// Body: {"matchup_id":"uuid","option_ids":["uuid","uuid"],"amount":"10.00"}
func (h *BetHandler) PlaceParlay(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var body struct {
		MatchupID string   `json:"matchup_id" binding:"required"`
		OptionIDs []string `json:"option_ids" binding:"required,min=2"`
		Amount    string   `json:"amount"     binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	matchupID, err := uuid.Parse(body.MatchupID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_MATCHUP_ID", "invalid matchup_id format")
		return
	}
	optionIDs := make([]uuid.UUID, 0, len(body.OptionIDs))
	for _, raw := range body.OptionIDs {
		id, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			respondError(c, http.StatusBadRequest, "ERR_INVALID_OPTION_ID", "invalid option id in option_ids")
			return
		}
		optionIDs = append(optionIDs, id)
	}
	amount, err := decimal.NewFromString(body.Amount)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_AMOUNT", "amount must be a decimal string")
		return
	}

	bet, err := h.betSvc.PlaceParlay(c.Request.Context(), domain.PlaceParlayRequest{
		UserID:    userID,
		MatchupID: matchupID,
		OptionIDs: optionIDs,
		Amount:    amount,
	})
	if err != nil {
		respondPlacementError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, bet)
}

// QuoteParlay godoc
// POST /api/bets/parlay/quote [JWT]
// Body: {"option_ids":["uuid","uuid"],"amount":"10.00"}
func (h *BetHandler) QuoteParlay(c *gin.Context) {
	var body struct {
		OptionIDs []string `json:"option_ids" binding:"required,min=2"`
		Amount    string   `json:"amount"     binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	optionIDs := make([]uuid.UUID, 0, len(body.OptionIDs))
	for _, raw := range body.OptionIDs {
		id, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			respondError(c, http.StatusBadRequest, "ERR_INVALID_OPTION_ID", "invalid option id in option_ids")
			return
		}
		optionIDs = append(optionIDs, id)
	}
	amount, err := decimal.NewFromString(body.Amount)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_AMOUNT", "amount must be a decimal string")
		return
	}

	quote, err := h.betSvc.QuoteParlay(c.Request.Context(), amount, optionIDs)
	if err != nil {
		respondPlacementError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, quote)
}

// GetBetByID godoc
// GET /api/bets/:id [JWT]
func (h *BetHandler) GetBetByID(c *gin.Context) {
	userID := middleware.GetUserID(c)

	betID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_BET_ID", "invalid bet id")
		return
	}

	bet, err := h.betSvc.GetBetByID(c.Request.Context(), betID, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			respondError(c, http.StatusForbidden, "ERR_FORBIDDEN", "this bet does not belong to you")
		case domain.IsNotFound(err):
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", "bet not found")
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch bet")
		}
		return
	}
	respondSuccess(c, http.StatusOK, bet)
}

// MatchupBets godoc
// GET /api/matchups/:id/bets [JWT]
func (h *BetHandler) MatchupBets(c *gin.Context) {
	userID := middleware.GetUserID(c)

	matchupID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_MATCHUP_ID", "invalid matchup id")
		return
	}

	matchup, home, away, err := h.betSvc.GetMatchupBets(c.Request.Context(), matchupID, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotAParticipant):
			respondError(c, http.StatusForbidden, "ERR_NOT_A_MEMBER", "only league members can view matchup bets")
		case domain.IsNotFound(err):
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", "matchup not found")
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch matchup bets")
		}
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"matchup": matchup,
		"home":    home,
		"away":    away,
	})
}
