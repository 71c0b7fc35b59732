package backoffice

import (
	"net/http"
	"strings"

	"github.com/bkoc/betleague/internal/backoffice/handler"
	"github.com/bkoc/betleague/internal/config"
	"github.com/bkoc/betleague/internal/repository"
	"github.com/bkoc/betleague/internal/service"
	"github.com/bkoc/betleague/internal/ws"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// BackofficeDeps bundles every dependency needed for the admin router.
type BackofficeDeps struct {
	AuthSvc       *service.AuthService
	ScheduleSvc   *service.ScheduleService
	SettlementSvc *service.SettlementService
	BetSvc        *service.BetService
	OddsSvc       *service.OddsService
	UserRepo      *repository.UserRepository
	LeagueRepo    *repository.LeagueRepository
	MatchupRepo   *repository.MatchupRepository
	DB            *sqlx.DB
	Hub           *ws.Hub
	Cfg           *config.Config
}

// SetupBackofficeRouter creates the admin Gin engine on port 8081.
func SetupBackofficeRouter(deps BackofficeDeps) *gin.Engine {
	if deps.Cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(ipWhitelistMiddleware(deps.Cfg.Server.BackofficeAllowedIPs))

	dashH := handler.NewDashboardHandler(deps.DB, deps.UserRepo, deps.LeagueRepo, deps.MatchupRepo, deps.Hub, deps.Cfg)
	resultsH := handler.NewResultsHandler(deps.SettlementSvc, deps.BetSvc)
	leagueH := handler.NewLeagueAdminHandler(deps.LeagueRepo, deps.MatchupRepo, deps.ScheduleSvc)
	userH := handler.NewUserAdminHandler(deps.UserRepo, deps.LeagueRepo)
	oddsH := handler.NewOddsAdminHandler(deps.OddsSvc, deps.Cfg)

	jwtMW := adminJWTMiddleware(deps.AuthSvc)
	mutMW := mutatingRoleMiddleware()

	admin := r.Group("/admin")
	admin.Use(jwtMW)
	{
		admin.GET("/dashboard", dashH.Dashboard)

		// Results and settlement
		admin.POST("/results", mutMW, resultsH.PostResult)
		admin.POST("/matchups/:id/settle", mutMW, resultsH.SettleMatchup)
		admin.POST("/settle", mutMW, resultsH.SettleDue)
		admin.POST("/lock-sweep", mutMW, resultsH.LockSweep)
		admin.POST("/bets/:id/cancel", mutMW, resultsH.CancelBet)

		// Odds feed
		admin.POST("/odds/sync", mutMW, oddsH.Sync)

		// Leagues
		l := admin.Group("/leagues")
		{
			l.GET("", leagueH.List)
			l.GET("/:id", leagueH.Detail)
			l.POST("/:id/schedule/reset", mutMW, leagueH.ResetSchedule)
		}

		// Users
		u := admin.Group("/users")
		{
			u.GET("", userH.List)
			u.GET("/:id", userH.Detail)
			u.POST("/:id/suspend", mutMW, userH.Suspend)
			u.POST("/:id/activate", mutMW, userH.Activate)
			u.POST("/:id/role", mutMW, userH.SetRole)
		}
	}

	return r
}

// ── IP whitelist middleware ───────────────────────────────────────────────────

// ipWhitelistMiddleware blocks requests from IPs not in the allowlist.
// allowedIPs is a comma-separated string; empty means allow all.
func ipWhitelistMiddleware(allowedIPs string) gin.HandlerFunc {
	if allowedIPs == "" {
		return func(c *gin.Context) { c.Next() } // dev mode: no restriction
	}

	allowed := make(map[string]bool)
	for _, ip := range strings.Split(allowedIPs, ",") {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			allowed[ip] = true
		}
	}

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		if !allowed[clientIP] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "access denied: your IP is not whitelisted",
			})
			return
		}
		c.Next()
	}
}

// ── Admin JWT middleware ──────────────────────────────────────────────────────

// adminJWTMiddleware validates a JWT and requires the caller to have a
// backoffice-capable role (admin, ops, readonly).
func adminJWTMiddleware(authSvc *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		claims, err := authSvc.ParseAccessToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil || claims.TokenType != "access" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		// Require at least one backoffice role
		backofficeRoles := map[string]bool{
			"admin":    true,
			"ops":      true,
			"readonly": true,
		}
		if !backofficeRoles[claims.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}

		c.Set("userID", claims.Subject)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// mutatingRoleMiddleware gates write endpoints: readonly sessions can browse
// but never change state.
func mutatingRoleMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") == "readonly" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "read-only session"})
			return
		}
		c.Next()
	}
}
