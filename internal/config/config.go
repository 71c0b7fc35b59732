// Package config provides application configuration loaded from environment variables.
// Use the package-level Get() function to obtain the singleton Config instance.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"
)

// ──────────────────────────────────────────────────────────────────────────────
// Sub-config structs
// ──────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port                 string        // e.g. "8080"
	BackofficePort       string        // e.g. "8081"
	Env                  string        // "development" | "production"
	ReadTimeout          time.Duration // default 10s
	WriteTimeout         time.Duration // default 10s
	BackofficeAllowedIPs string        // comma-separated IPs; "" = allow all
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	DSN             string        // full postgres DSN
	MaxOpenConns    int           // default 25
	MaxIdleConns    int           // default 10
	ConnMaxLifetime time.Duration // default 5m
}

// JWTConfig holds JWT signing settings.
type JWTConfig struct {
	AccessSecret  string        // must be set
	RefreshSecret string        // must be set
	AccessTTL     time.Duration // default 15m
	RefreshTTL    time.Duration // default 720h (30 days)
}

// OddsConfig holds odds provider settings.
type OddsConfig struct {
	Provider     string        // "mock" | "live"
	BaseURL      string        // default "https://api.the-odds-api.com"
	APIKey       string        // required when Provider == "live"
	Sport        string        // default "americanfootball_nfl"
	Regions      string        // default "us"
	Markets      string        // default "h2h"
	FetchTimeout time.Duration // default 5s
	SyncInterval time.Duration // default 15m
}

// LeagueConfig holds season and betting rules.
type LeagueConfig struct {
	WeeklyBudget      float64   // virtual allowance per participant per week
	MaxBetAmount      float64   // single-bet cap
	SeasonWeeks       int       // regular season length, default 14
	PlayoffStartWeek  int       // default 15
	PlayoffWeeks      int       // default 3
	PlayoffTeams      int       // 4 or 6
	MaxParlayLegs     int       // default 10
	SeasonStart       time.Time // date week 1 begins
	LockCheckInterval time.Duration
	SettleInterval    time.Duration
}

// CurrentWeek maps a wall-clock instant onto a league week, clamped to the
// season's range. Before SeasonStart it is week 1.
func (lc *LeagueConfig) CurrentWeek(now time.Time) int {
	week := int(now.Sub(lc.SeasonStart).Hours()/(24*7)) + 1
	if week < 1 {
		return 1
	}
	lastWeek := lc.PlayoffStartWeek + lc.PlayoffWeeks - 1
	if week > lastWeek {
		return lastWeek
	}
	return week
}

// ──────────────────────────────────────────────────────────────────────────────
// Top-level Config
// ──────────────────────────────────────────────────────────────────────────────

// Config is the root configuration object for the entire application.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	JWT    JWTConfig
	Odds   OddsConfig
	League LeagueConfig
}

// IsProd returns true when running in the production environment.
func (c *Config) IsProd() bool {
	return c.Server.Env == "production"
}

// Validate checks that all required configuration values are present and valid.
// Returns the first validation error encountered.
func (c *Config) Validate() error {
	var errs []error

	// JWT secrets are mandatory
	if c.JWT.AccessSecret == "" {
		errs = append(errs, errors.New("JWT_ACCESS_SECRET must be set"))
	}
	if c.JWT.RefreshSecret == "" {
		errs = append(errs, errors.New("JWT_REFRESH_SECRET must be set"))
	}

	// In production, DB DSN must be explicit
	if c.IsProd() && c.DB.DSN == "" {
		errs = append(errs, errors.New("DATABASE_DSN must be set in production"))
	}

	switch c.Odds.Provider {
	case "mock":
	case "live":
		if c.Odds.APIKey == "" {
			errs = append(errs, errors.New("ODDS_API_KEY must be set when ODDS_PROVIDER=live"))
		}
	default:
		errs = append(errs, fmt.Errorf("ODDS_PROVIDER must be mock or live, got %q", c.Odds.Provider))
	}

	if c.League.WeeklyBudget <= 0 {
		errs = append(errs, fmt.Errorf("LEAGUE_WEEKLY_BUDGET must be positive, got %.2f", c.League.WeeklyBudget))
	}
	if c.League.MaxBetAmount <= 0 || c.League.MaxBetAmount > c.League.WeeklyBudget {
		errs = append(errs, fmt.Errorf(
			"LEAGUE_MAX_BET_AMOUNT must be in (0, weekly budget], got %.2f", c.League.MaxBetAmount))
	}
	if c.League.PlayoffTeams != 4 && c.League.PlayoffTeams != 6 {
		errs = append(errs, fmt.Errorf("LEAGUE_PLAYOFF_TEAMS must be 4 or 6, got %d", c.League.PlayoffTeams))
	}
	if c.League.PlayoffStartWeek <= c.League.SeasonWeeks {
		errs = append(errs, fmt.Errorf(
			"LEAGUE_PLAYOFF_START_WEEK (%d) must follow the regular season (%d weeks)",
			c.League.PlayoffStartWeek, c.League.SeasonWeeks))
	}
	if c.League.MaxParlayLegs < 2 {
		errs = append(errs, fmt.Errorf("LEAGUE_MAX_PARLAY_LEGS must be at least 2, got %d", c.League.MaxParlayLegs))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Singleton
// ──────────────────────────────────────────────────────────────────────────────

var (
	instance *Config
	once     sync.Once
	loadErr  error
)

// Get returns the singleton Config, loading it once from environment variables.
// Panics if loading fails — call this early in main() to catch misconfigurations
// at startup.
func Get() *Config {
	once.Do(func() {
		instance, loadErr = load()
	})
	if loadErr != nil {
		panic(fmt.Sprintf("config: failed to load: %v", loadErr))
	}
	return instance
}

// MustLoad loads and validates configuration. Intended for use in main().
// Panics on any error so misconfiguration is caught immediately at boot.
func MustLoad() *Config {
	cfg := Get()
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("config: validation failed: %v", err))
	}
	return cfg
}

// ──────────────────────────────────────────────────────────────────────────────
// Internal loader
// ──────────────────────────────────────────────────────────────────────────────

func load() (*Config, error) {
	cfg := &Config{}

	// ── Server ────────────────────────────────────────────────────────────────
	cfg.Server = ServerConfig{
		Port:                 getEnv("SERVER_PORT", "8080"),
		BackofficePort:       getEnv("BACKOFFICE_PORT", "8081"),
		Env:                  getEnv("ENVIRONMENT", "development"),
		ReadTimeout:          getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
		WriteTimeout:         getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
		BackofficeAllowedIPs: getEnv("BACKOFFICE_ALLOWED_IPS", ""),
	}

	// ── Database ──────────────────────────────────────────────────────────────
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		// Build DSN from individual components for convenience in dev
		dsn = fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_PORT", "5432"),
			getEnv("DB_USER", "postgres"),
			getEnv("DB_PASSWORD", ""),
			getEnv("DB_NAME", "betleague"),
			getEnv("DB_SSLMODE", "disable"),
		)
	}

	maxOpen, err := getInt("DB_MAX_OPEN_CONNS", 25)
	if err != nil {
		return nil, fmt.Errorf("DB_MAX_OPEN_CONNS: %w", err)
	}
	maxIdle, err := getInt("DB_MAX_IDLE_CONNS", 10)
	if err != nil {
		return nil, fmt.Errorf("DB_MAX_IDLE_CONNS: %w", err)
	}

	cfg.DB = DBConfig{
		DSN:             dsn,
		MaxOpenConns:    maxOpen,
		MaxIdleConns:    maxIdle,
		ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}

	// ── JWT ───────────────────────────────────────────────────────────────────
	cfg.JWT = JWTConfig{
		AccessSecret:  getEnv("JWT_ACCESS_SECRET", ""),
		RefreshSecret: getEnv("JWT_REFRESH_SECRET", ""),
		AccessTTL:     getDuration("JWT_ACCESS_TTL", 15*time.Minute),
		RefreshTTL:    getDuration("JWT_REFRESH_TTL", 30*24*time.Hour),
	}

	// ── Odds provider ─────────────────────────────────────────────────────────
	cfg.Odds = OddsConfig{
		Provider:     getEnv("ODDS_PROVIDER", "mock"),
		BaseURL:      getEnv("ODDS_BASE_URL", "https://api.the-odds-api.com"),
		APIKey:       getEnv("ODDS_API_KEY", ""),
		Sport:        getEnv("ODDS_SPORT", "americanfootball_nfl"),
		Regions:      getEnv("ODDS_REGIONS", "us"),
		Markets:      getEnv("ODDS_MARKETS", "h2h"),
		FetchTimeout: getDuration("ODDS_FETCH_TIMEOUT", 5*time.Second),
		SyncInterval: getDuration("ODDS_SYNC_INTERVAL", 15*time.Minute),
	}

	// ── League rules ──────────────────────────────────────────────────────────
	budget, err := getFloat("LEAGUE_WEEKLY_BUDGET", 100)
	if err != nil {
		return nil, fmt.Errorf("LEAGUE_WEEKLY_BUDGET: %w", err)
	}
	maxBet, err := getFloat("LEAGUE_MAX_BET_AMOUNT", 100)
	if err != nil {
		return nil, fmt.Errorf("LEAGUE_MAX_BET_AMOUNT: %w", err)
	}
	seasonWeeks, err := getInt("LEAGUE_SEASON_WEEKS", 14)
	if err != nil {
		return nil, fmt.Errorf("LEAGUE_SEASON_WEEKS: %w", err)
	}
	playoffStart, err := getInt("LEAGUE_PLAYOFF_START_WEEK", 15)
	if err != nil {
		return nil, fmt.Errorf("LEAGUE_PLAYOFF_START_WEEK: %w", err)
	}
	playoffWeeks, err := getInt("LEAGUE_PLAYOFF_WEEKS", 3)
	if err != nil {
		return nil, fmt.Errorf("LEAGUE_PLAYOFF_WEEKS: %w", err)
	}
	playoffTeams, err := getInt("LEAGUE_PLAYOFF_TEAMS", 4)
	if err != nil {
		return nil, fmt.Errorf("LEAGUE_PLAYOFF_TEAMS: %w", err)
	}
	maxLegs, err := getInt("LEAGUE_MAX_PARLAY_LEGS", 10)
	if err != nil {
		return nil, fmt.Errorf("LEAGUE_MAX_PARLAY_LEGS: %w", err)
	}

	seasonStart, err := getDate("LEAGUE_SEASON_START", "2025-09-04")
	if err != nil {
		return nil, fmt.Errorf("LEAGUE_SEASON_START: %w", err)
	}

	cfg.League = LeagueConfig{
		WeeklyBudget:      budget,
		SeasonStart:       seasonStart,
		MaxBetAmount:      maxBet,
		SeasonWeeks:       seasonWeeks,
		PlayoffStartWeek:  playoffStart,
		PlayoffWeeks:      playoffWeeks,
		PlayoffTeams:      playoffTeams,
		MaxParlayLegs:     maxLegs,
		LockCheckInterval: getDuration("LEAGUE_LOCK_CHECK_INTERVAL", time.Minute),
		SettleInterval:    getDuration("LEAGUE_SETTLE_INTERVAL", 5*time.Minute),
	}

	return cfg, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helper functions
// ──────────────────────────────────────────────────────────────────────────────

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", v)
	}
	return n, nil
}

func getFloat(key string, defaultVal float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float %q", v)
	}
	return f, nil
}

// getDate parses an env var as a YYYY-MM-DD date in UTC.
func getDate(key, defaultVal string) (time.Time, error) {
	v := os.Getenv(key)
	if v == "" {
		v = defaultVal
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", v)
	}
	return t.UTC(), nil
}

// getDuration parses an env var as a Go duration string (e.g. "15m", "2s").
// Falls back to defaultVal if the variable is unset or empty.
func getDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
