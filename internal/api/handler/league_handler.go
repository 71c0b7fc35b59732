package handler

import (
	"errors"
	"net/http"

	"github.com/bkoc/betleague/internal/api/middleware"
	"github.com/bkoc/betleague/internal/domain"
	"github.com/bkoc/betleague/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LeagueHandler serves league lifecycle, schedule, and standings endpoints.
type LeagueHandler struct {
	leagueSvc   *service.LeagueService
	scheduleSvc *service.ScheduleService
	betSvc      *service.BetService
}

// NewLeagueHandler creates a LeagueHandler.
func NewLeagueHandler(
	leagueSvc *service.LeagueService,
	scheduleSvc *service.ScheduleService,
	betSvc *service.BetService,
) *LeagueHandler {
	return &LeagueHandler{leagueSvc: leagueSvc, scheduleSvc: scheduleSvc, betSvc: betSvc}
}

// respondLeagueError maps domain errors onto HTTP statuses using the shared
// error classification.
func respondLeagueError(c *gin.Context, err error) {
	switch {
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "ERR_CONFLICT", err.Error())
	case errors.Is(err, domain.ErrNotCommissioner), errors.Is(err, domain.ErrForbidden):
		respondError(c, http.StatusForbidden, "ERR_FORBIDDEN", err.Error())
	case errors.Is(err, domain.ErrNotAParticipant):
		respondError(c, http.StatusForbidden, "ERR_NOT_A_MEMBER", err.Error())
	case domain.IsPolicy(err):
		respondError(c, http.StatusUnprocessableEntity, "ERR_POLICY", err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "request failed")
	}
}

func parseLeagueID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_LEAGUE_ID", "invalid league id")
		return uuid.Nil, false
	}
	return id, true
}

// Create godoc
// POST /api/leagues [JWT]
// Body: {"name":"Office League"}
func (h *LeagueHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var body struct {
		Name string `json:"name" binding:"required,min=3,max=80"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	league, err := h.leagueSvc.CreateLeague(c.Request.Context(), userID, body.Name)
	if err != nil {
		respondLeagueError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, league)
}

// Join godoc
// POST /api/leagues/join [JWT]
// Body: {"invite_code":"K7Q2MWNP"}
func (h *LeagueHandler) Join(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var body struct {
		InviteCode string `json:"invite_code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	league, err := h.leagueSvc.JoinByInviteCode(c.Request.Context(), userID, body.InviteCode)
	if err != nil {
		respondLeagueError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, league)
}

// ListMine godoc
// GET /api/leagues [JWT]
func (h *LeagueHandler) ListMine(c *gin.Context) {
	userID := middleware.GetUserID(c)

	leagues, err := h.leagueSvc.ListMyLeagues(c.Request.Context(), userID)
	if err != nil {
		respondLeagueError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, leagues)
}

// Detail godoc
// GET /api/leagues/:id [JWT]
func (h *LeagueHandler) Detail(c *gin.Context) {
	userID := middleware.GetUserID(c)
	leagueID, ok := parseLeagueID(c)
	if !ok {
		return
	}

	league, err := h.leagueSvc.GetLeague(c.Request.Context(), leagueID, userID)
	if err != nil {
		respondLeagueError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, league)
}

// Members godoc
// GET /api/leagues/:id/members [JWT]
func (h *LeagueHandler) Members(c *gin.Context) {
	userID := middleware.GetUserID(c)
	leagueID, ok := parseLeagueID(c)
	if !ok {
		return
	}

	members, err := h.leagueSvc.ListMembers(c.Request.Context(), leagueID, userID)
	if err != nil {
		respondLeagueError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, members)
}

// Standings godoc
// GET /api/leagues/:id/standings?detailed=true [JWT]
// With detailed=true each row also carries the member's bet record.
func (h *LeagueHandler) Standings(c *gin.Context) {
	userID := middleware.GetUserID(c)
	leagueID, ok := parseLeagueID(c)
	if !ok {
		return
	}

	if c.Query("detailed") == "true" {
		standings, err := h.leagueSvc.DetailedStandings(c.Request.Context(), leagueID, userID)
		if err != nil {
			respondLeagueError(c, err)
			return
		}
		respondSuccess(c, http.StatusOK, standings)
		return
	}

	standings, err := h.leagueSvc.Standings(c.Request.Context(), leagueID, userID)
	if err != nil {
		respondLeagueError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, standings)
}

// GenerateSchedule godoc
// POST /api/leagues/:id/schedule [JWT, commissioner]
func (h *LeagueHandler) GenerateSchedule(c *gin.Context) {
	userID := middleware.GetUserID(c)
	leagueID, ok := parseLeagueID(c)
	if !ok {
		return
	}

	if err := h.scheduleSvc.Generate(c.Request.Context(), leagueID, userID); err != nil {
		respondLeagueError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"league_id": leagueID, "schedule": "generated"})
}

// GeneratePlayoffs godoc
// POST /api/leagues/:id/playoffs [JWT, commissioner]
func (h *LeagueHandler) GeneratePlayoffs(c *gin.Context) {
	userID := middleware.GetUserID(c)
	leagueID, ok := parseLeagueID(c)
	if !ok {
		return
	}

	if err := h.scheduleSvc.GeneratePlayoffs(c.Request.Context(), leagueID, userID); err != nil {
		respondLeagueError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"league_id": leagueID, "playoffs": "generated"})
}

// FullSchedule godoc
// GET /api/leagues/:id/schedule [JWT]
func (h *LeagueHandler) FullSchedule(c *gin.Context) {
	userID := middleware.GetUserID(c)
	leagueID, ok := parseLeagueID(c)
	if !ok {
		return
	}

	matchups, err := h.scheduleSvc.FullSchedule(c.Request.Context(), leagueID, userID)
	if err != nil {
		respondLeagueError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, matchups)
}

// WeekMatchups godoc
// GET /api/leagues/:id/weeks/:week/matchups [JWT]
func (h *LeagueHandler) WeekMatchups(c *gin.Context) {
	userID := middleware.GetUserID(c)
	leagueID, ok := parseLeagueID(c)
	if !ok {
		return
	}
	week, ok := parseWeek(c)
	if !ok {
		return
	}

	matchups, err := h.scheduleSvc.WeekMatchups(c.Request.Context(), leagueID, userID, week)
	if err != nil {
		respondLeagueError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, matchups)
}

// MyMatchup godoc
// GET /api/leagues/:id/weeks/:week/my-matchup [JWT]
func (h *LeagueHandler) MyMatchup(c *gin.Context) {
	userID := middleware.GetUserID(c)
	leagueID, ok := parseLeagueID(c)
	if !ok {
		return
	}
	week, ok := parseWeek(c)
	if !ok {
		return
	}

	matchup, err := h.scheduleSvc.MyMatchup(c.Request.Context(), leagueID, userID, week)
	if err != nil {
		respondLeagueError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, matchup)
}

// MyWeekBets godoc
// GET /api/leagues/:id/weeks/:week/my-bets [JWT]
func (h *LeagueHandler) MyWeekBets(c *gin.Context) {
	userID := middleware.GetUserID(c)
	leagueID, ok := parseLeagueID(c)
	if !ok {
		return
	}
	week, ok := parseWeek(c)
	if !ok {
		return
	}

	bets, err := h.betSvc.GetWeekBets(c.Request.Context(), leagueID, userID, week)
	if err != nil {
		respondLeagueError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, bets)
}
