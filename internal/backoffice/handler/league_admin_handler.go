package handler

import (
	"net/http"

	"github.com/bkoc/betleague/internal/domain"
	"github.com/bkoc/betleague/internal/repository"
	"github.com/bkoc/betleague/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LeagueAdminHandler serves /admin/leagues endpoints.
type LeagueAdminHandler struct {
	leagueRepo  *repository.LeagueRepository
	matchupRepo *repository.MatchupRepository
	scheduleSvc *service.ScheduleService
}

// NewLeagueAdminHandler creates a LeagueAdminHandler.
func NewLeagueAdminHandler(
	leagueRepo *repository.LeagueRepository,
	matchupRepo *repository.MatchupRepository,
	scheduleSvc *service.ScheduleService,
) *LeagueAdminHandler {
	return &LeagueAdminHandler{
		leagueRepo:  leagueRepo,
		matchupRepo: matchupRepo,
		scheduleSvc: scheduleSvc,
	}
}

// List godoc
// GET /admin/leagues?page=1&limit=50
func (h *LeagueAdminHandler) List(c *gin.Context) {
	page, limit := adminPagination(c)
	offset := (page - 1) * limit

	leagues, total, err := h.leagueRepo.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondList(c, leagues, total, page, limit)
}

// Detail godoc
// GET /admin/leagues/:id
func (h *LeagueAdminHandler) Detail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid league id")
		return
	}

	ctx := c.Request.Context()
	league, err := h.leagueRepo.GetByID(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}

	members, _ := h.leagueRepo.ListMembers(ctx, id)
	matchups, _ := h.matchupRepo.ListByLeague(ctx, id)

	respondSuccess(c, http.StatusOK, gin.H{
		"league":   league,
		"members":  members,
		"matchups": matchups,
	})
}

// ResetSchedule godoc
// POST /admin/leagues/:id/schedule/reset
// The reset runs with the league's own commissioner as the acting user, so
// the service-level guard is satisfied for any backoffice role.
func (h *LeagueAdminHandler) ResetSchedule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid league id")
		return
	}

	ctx := c.Request.Context()
	league, err := h.leagueRepo.GetByID(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}

	if err := h.scheduleSvc.Reset(ctx, id, league.CommissionerID); err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"league_id": id, "schedule": "reset"})
}
