package api

import (
	"net/http"

	"github.com/bkoc/betleague/internal/api/handler"
	"github.com/bkoc/betleague/internal/api/middleware"
	"github.com/bkoc/betleague/internal/config"
	"github.com/bkoc/betleague/internal/repository"
	"github.com/bkoc/betleague/internal/service"
	"github.com/bkoc/betleague/internal/ws"
	"github.com/gin-gonic/gin"
)

// RouterDeps bundles every dependency needed to build the router.
// Populated once in main() and passed to SetupRouter.
type RouterDeps struct {
	AuthSvc     *service.AuthService
	LeagueSvc   *service.LeagueService
	ScheduleSvc *service.ScheduleService
	BetSvc      *service.BetService
	OddsSvc     *service.OddsService
	UserRepo    *repository.UserRepository
	Hub         *ws.Hub
	Cfg         *config.Config
}

// SetupRouter creates and configures the main Gin engine with all routes,
// middleware, CORS, and rate limiting rules.
func SetupRouter(deps RouterDeps) *gin.Engine {
	if deps.Cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	// ── CORS ─────────────────────────────────────────────────────────────────
	r.Use(corsMiddleware(deps.Cfg))

	// ── Health check ─────────────────────────────────────────────────────────
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ── Handlers ─────────────────────────────────────────────────────────────
	userH := handler.NewUserHandler(deps.AuthSvc, deps.UserRepo)
	leagueH := handler.NewLeagueHandler(deps.LeagueSvc, deps.ScheduleSvc, deps.BetSvc)
	betH := handler.NewBetHandler(deps.BetSvc)
	oddsH := handler.NewOddsHandler(deps.OddsSvc)

	// ── JWT middleware (shared) ───────────────────────────────────────────────
	jwtMW := middleware.JWTMiddleware(deps.AuthSvc)

	// ── Rate limiters ─────────────────────────────────────────────────────────
	authRL := middleware.RateLimitMiddleware(10) // 10 req/s per IP for auth endpoints
	betRL := middleware.RateLimitMiddleware(30)  // 30 req/s per IP for bet endpoints

	api := r.Group("/api")
	{
		// ── Auth (public, strict rate limit) ─────────────────────────────────
		auth := api.Group("/auth")
		auth.Use(authRL)
		{
			auth.POST("/register", userH.Register)
			auth.POST("/login", userH.Login)
			auth.POST("/refresh", userH.Refresh)
		}

		// ── Odds board (public) ──────────────────────────────────────────────
		odds := api.Group("/odds")
		{
			odds.GET("/weeks/:week", oddsH.WeekOdds)
			odds.GET("/games/:id", oddsH.GameOdds)
		}

		// ── Authenticated routes ──────────────────────────────────────────────
		authed := api.Group("")
		authed.Use(jwtMW)
		{
			// Profile
			authed.GET("/me", userH.Me)

			// Leagues and schedule
			leagues := authed.Group("/leagues")
			{
				leagues.POST("", leagueH.Create)
				leagues.POST("/join", leagueH.Join)
				leagues.GET("", leagueH.ListMine)
				leagues.GET("/:id", leagueH.Detail)
				leagues.GET("/:id/members", leagueH.Members)
				leagues.GET("/:id/standings", leagueH.Standings)
				leagues.POST("/:id/schedule", leagueH.GenerateSchedule)
				leagues.GET("/:id/schedule", leagueH.FullSchedule)
				leagues.POST("/:id/playoffs", leagueH.GeneratePlayoffs)
				leagues.GET("/:id/weeks/:week/matchups", leagueH.WeekMatchups)
				leagues.GET("/:id/weeks/:week/my-matchup", leagueH.MyMatchup)
				leagues.GET("/:id/weeks/:week/my-bets", leagueH.MyWeekBets)
			}

			// Matchup bet views
			authed.GET("/matchups/:id/bets", betH.MatchupBets)

			// Bets
			bets := authed.Group("/bets")
			bets.Use(betRL)
			{
				bets.POST("", betH.PlaceBet)
				bets.POST("/parlay", betH.PlaceParlay)
				bets.POST("/parlay/quote", betH.QuoteParlay)
				bets.GET("/:id", betH.GetBetByID)
			}
		}
	}

	// ── WebSocket ─────────────────────────────────────────────────────────────
	if deps.Hub != nil {
		r.GET("/ws", func(c *gin.Context) {
			deps.Hub.ServeWs(c.Writer, c.Request)
		})
	}

	return r
}

// ── CORS helper ───────────────────────────────────────────────────────────────

// corsMiddleware returns a gin middleware that sets appropriate CORS headers.
// In development all origins are allowed; in production only configured origins.
func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if !cfg.IsProd() {
			// Development: allow any origin
			c.Header("Access-Control-Allow-Origin", "*")
		} else if origin != "" {
			allowed := map[string]bool{
				"https://betleague.app":     true,
				"https://www.betleague.app": true,
			}
			if allowed[origin] {
				c.Header("Access-Control-Allow-Origin", origin)
			}
		}

		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
