package handler

import (
	"net/http"
	"time"

	"github.com/bkoc/betleague/internal/config"
	"github.com/bkoc/betleague/internal/repository"
	"github.com/bkoc/betleague/internal/ws"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// DashboardHandler serves the /admin/dashboard endpoint.
type DashboardHandler struct {
	db          *sqlx.DB
	userRepo    *repository.UserRepository
	leagueRepo  *repository.LeagueRepository
	matchupRepo *repository.MatchupRepository
	hub         *ws.Hub
	cfg         *config.Config
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(
	db *sqlx.DB,
	userRepo *repository.UserRepository,
	leagueRepo *repository.LeagueRepository,
	matchupRepo *repository.MatchupRepository,
	hub *ws.Hub,
	cfg *config.Config,
) *DashboardHandler {
	return &DashboardHandler{
		db:          db,
		userRepo:    userRepo,
		leagueRepo:  leagueRepo,
		matchupRepo: matchupRepo,
		hub:         hub,
		cfg:         cfg,
	}
}

// Dashboard godoc
// GET /admin/dashboard
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	now := time.Now().UTC()

	// ── Headline counts ──────────────────────────────────────────────────────
	_, totalUsers, _ := h.userRepo.List(ctx, 1, 0)
	_, totalLeagues, _ := h.leagueRepo.List(ctx, 1, 0)

	var openBets, unresolvedGames int
	_ = h.db.GetContext(ctx, &openBets,
		`SELECT COUNT(*) FROM bets WHERE status IN ('pending','locked')`)
	_ = h.db.GetContext(ctx, &unresolvedGames,
		`SELECT COUNT(*) FROM games WHERE result IS NULL AND start_time <= $1`, now)

	// ── Settlement backlog ───────────────────────────────────────────────────
	unsettled, _ := h.matchupRepo.ListUnsettled(ctx)

	// ── WS connections ───────────────────────────────────────────────────────
	var wsConnections int
	if h.hub != nil {
		wsConnections = h.hub.ConnectedCount()
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"timestamp":          now,
		"current_week":       h.cfg.League.CurrentWeek(now),
		"total_users":        totalUsers,
		"total_leagues":      totalLeagues,
		"open_bets":          openBets,
		"games_awaiting_result": unresolvedGames,
		"unsettled_matchups": len(unsettled),
		"ws_connections":     wsConnections,
		"odds_provider":      h.cfg.Odds.Provider,
	})
}
