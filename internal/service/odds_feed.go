package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bkoc/betleague/internal/config"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Feed types — mirror the provider's odds payload
// ──────────────────────────────────────────────────────────────────────────────

// FeedOutcome is one priced outcome inside a market.
type FeedOutcome struct {
	Name  string           `json:"name"`
	Price int64            `json:"price"` // American odds
	Point *decimal.Decimal `json:"point,omitempty"`
}

// FeedMarket is one market (h2h, spreads, totals) from one bookmaker.
type FeedMarket struct {
	Key      string        `json:"key"`
	Outcomes []FeedOutcome `json:"outcomes"`
}

// FeedBookmaker is one bookmaker's markets on a game.
type FeedBookmaker struct {
	Key     string       `json:"key"`
	Title   string       `json:"title"`
	Markets []FeedMarket `json:"markets"`
}

// FeedGame is one upcoming fixture with its current prices.
type FeedGame struct {
	ID           string          `json:"id"`
	CommenceTime time.Time       `json:"commence_time"`
	HomeTeam     string          `json:"home_team"`
	AwayTeam     string          `json:"away_team"`
	Bookmakers   []FeedBookmaker `json:"bookmakers"`
}

// OddsFeed supplies upcoming games and their odds. The live implementation
// talks to the provider; the mock serves a deterministic slate for
// development and tests.
type OddsFeed interface {
	FetchUpcoming(ctx context.Context) ([]FeedGame, error)
}

// NewOddsFeed picks the implementation from config.
func NewOddsFeed(cfg *config.Config) OddsFeed {
	if cfg.Odds.Provider == "live" {
		return NewLiveOddsFeed(&cfg.Odds)
	}
	return NewMockOddsFeed()
}

// ──────────────────────────────────────────────────────────────────────────────
// Live feed — The Odds API
// ──────────────────────────────────────────────────────────────────────────────

// LiveOddsFeed fetches odds from The Odds API v4.
type LiveOddsFeed struct {
	client *http.Client
	cfg    *config.OddsConfig
}

// NewLiveOddsFeed constructs a LiveOddsFeed from config.
func NewLiveOddsFeed(cfg *config.OddsConfig) *LiveOddsFeed {
	return &LiveOddsFeed{
		client: &http.Client{Timeout: cfg.FetchTimeout},
		cfg:    cfg,
	}
}

// FetchUpcoming fetches the current odds board.
//
//	GET /v4/sports/{sport}/odds?apiKey=…&regions=us&markets=h2h&oddsFormat=american
func (f *LiveOddsFeed) FetchUpcoming(ctx context.Context) ([]FeedGame, error) {
	q := url.Values{}
	q.Set("apiKey", f.cfg.APIKey)
	q.Set("regions", f.cfg.Regions)
	q.Set("markets", f.cfg.Markets)
	q.Set("oddsFormat", "american")
	endpoint := fmt.Sprintf("%s/v4/sports/%s/odds?%s", f.cfg.BaseURL, f.cfg.Sport, q.Encode())

	body, err := f.doGet(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("odds_feed: %w", err)
	}

	var games []FeedGame
	if err := json.Unmarshal(body, &games); err != nil {
		return nil, fmt.Errorf("odds_feed parse: %w", err)
	}
	return games, nil
}

// doGet performs an HTTP GET and returns the body bytes, or an error for any
// non-200 status code.
func (f *LiveOddsFeed) doGet(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "betleague/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Mock feed
// ──────────────────────────────────────────────────────────────────────────────

// MockOddsFeed serves a fixed slate of fixtures with plausible h2h prices.
// Kickoffs are set relative to now so lock sweeps behave naturally in
// development.
type MockOddsFeed struct {
	now func() time.Time
}

// NewMockOddsFeed constructs a MockOddsFeed using the wall clock.
func NewMockOddsFeed() *MockOddsFeed {
	return &MockOddsFeed{now: func() time.Time { return time.Now().UTC() }}
}

var mockSlate = []struct {
	id, home, away string
	homeOdds       int64
	awayOdds       int64
	startOffset    time.Duration
}{
	{"mock-ne-buf", "New England Patriots", "Buffalo Bills", 150, -180, 24 * time.Hour},
	{"mock-kc-den", "Kansas City Chiefs", "Denver Broncos", -250, 210, 26 * time.Hour},
	{"mock-dal-phi", "Dallas Cowboys", "Philadelphia Eagles", 110, -130, 48 * time.Hour},
	{"mock-gb-chi", "Green Bay Packers", "Chicago Bears", -110, -110, 50 * time.Hour},
	{"mock-sf-sea", "San Francisco 49ers", "Seattle Seahawks", -200, 170, 72 * time.Hour},
}

// FetchUpcoming returns the mock slate.
func (f *MockOddsFeed) FetchUpcoming(_ context.Context) ([]FeedGame, error) {
	now := f.now()
	games := make([]FeedGame, 0, len(mockSlate))
	for _, g := range mockSlate {
		games = append(games, FeedGame{
			ID:           g.id,
			CommenceTime: now.Add(g.startOffset),
			HomeTeam:     g.home,
			AwayTeam:     g.away,
			Bookmakers: []FeedBookmaker{
				{
					Key:   "mockbook",
					Title: "MockBook",
					Markets: []FeedMarket{
						{
							Key: "h2h",
							Outcomes: []FeedOutcome{
								{Name: g.home, Price: g.homeOdds},
								{Name: g.away, Price: g.awayOdds},
							},
						},
					},
				},
			},
		})
	}
	return games, nil
}
