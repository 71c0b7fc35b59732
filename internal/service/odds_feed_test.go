package service_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bkoc/betleague/internal/config"
	"github.com/bkoc/betleague/internal/service"
)

// ── Mock provider HTTP server ─────────────────────────────────────────────────

const providerPayload = `[
  {
    "id": "feed-ne-buf",
    "commence_time": "2025-09-07T17:00:00Z",
    "home_team": "New England Patriots",
    "away_team": "Buffalo Bills",
    "bookmakers": [
      {
        "key": "draftkings",
        "title": "DraftKings",
        "markets": [
          {
            "key": "h2h",
            "outcomes": [
              {"name": "New England Patriots", "price": 150},
              {"name": "Buffalo Bills", "price": -180}
            ]
          }
        ]
      }
    ]
  }
]`

func mockProviderOK(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("apiKey") == "" {
			t.Error("provider request missing apiKey query param")
		}
		if r.URL.Query().Get("oddsFormat") != "american" {
			t.Errorf("oddsFormat = %q, want american", r.URL.Query().Get("oddsFormat"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(providerPayload))
	})
}

func mockProviderError() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusUnauthorized)
	})
}

func feedConfig(baseURL string) *config.OddsConfig {
	return &config.OddsConfig{
		Provider:     "live",
		BaseURL:      baseURL,
		APIKey:       "test-key",
		Sport:        "americanfootball_nfl",
		Regions:      "us",
		Markets:      "h2h",
		FetchTimeout: 3 * time.Second,
	}
}

// ── Live feed ─────────────────────────────────────────────────────────────────

func TestLiveOddsFeed_FetchUpcoming(t *testing.T) {
	srv := httptest.NewServer(mockProviderOK(t))
	defer srv.Close()

	feed := service.NewLiveOddsFeed(feedConfig(srv.URL))
	games, err := feed.FetchUpcoming(context.Background())
	if err != nil {
		t.Fatalf("FetchUpcoming: %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("got %d games, want 1", len(games))
	}

	g := games[0]
	if g.ID != "feed-ne-buf" {
		t.Errorf("game ID = %q, want feed-ne-buf", g.ID)
	}
	if g.HomeTeam != "New England Patriots" || g.AwayTeam != "Buffalo Bills" {
		t.Errorf("teams = %q vs %q", g.HomeTeam, g.AwayTeam)
	}
	if len(g.Bookmakers) != 1 || len(g.Bookmakers[0].Markets) != 1 {
		t.Fatalf("unexpected bookmaker/market shape: %+v", g.Bookmakers)
	}

	outcomes := g.Bookmakers[0].Markets[0].Outcomes
	if len(outcomes) != 2 {
		t.Fatalf("got %d outcomes, want 2", len(outcomes))
	}
	if outcomes[0].Price != 150 || outcomes[1].Price != -180 {
		t.Errorf("prices = %d/%d, want 150/-180", outcomes[0].Price, outcomes[1].Price)
	}
}

func TestLiveOddsFeed_ProviderError(t *testing.T) {
	srv := httptest.NewServer(mockProviderError())
	defer srv.Close()

	feed := service.NewLiveOddsFeed(feedConfig(srv.URL))
	if _, err := feed.FetchUpcoming(context.Background()); err == nil {
		t.Fatal("expected error on non-200 provider response")
	}
}

// ── Mock feed ─────────────────────────────────────────────────────────────────

func TestMockOddsFeed_ServesFutureSlate(t *testing.T) {
	feed := service.NewMockOddsFeed()
	games, err := feed.FetchUpcoming(context.Background())
	if err != nil {
		t.Fatalf("FetchUpcoming: %v", err)
	}
	if len(games) == 0 {
		t.Fatal("mock feed returned no games")
	}

	now := time.Now().UTC()
	for _, g := range games {
		if !g.CommenceTime.After(now) {
			t.Errorf("game %s kicks off in the past: %s", g.ID, g.CommenceTime)
		}
		if len(g.Bookmakers) == 0 {
			t.Errorf("game %s has no bookmakers", g.ID)
			continue
		}
		bk := g.Bookmakers[0]
		if bk.Key != "mockbook" {
			t.Errorf("game %s bookmaker = %q, want mockbook", g.ID, bk.Key)
		}
		if len(bk.Markets) == 0 || bk.Markets[0].Key != "h2h" {
			t.Errorf("game %s missing h2h market", g.ID)
			continue
		}
		if got := len(bk.Markets[0].Outcomes); got != 2 {
			t.Errorf("game %s h2h outcomes = %d, want 2", g.ID, got)
		}
	}
}

func TestMockOddsFeed_IsDeterministicPerCall(t *testing.T) {
	feed := service.NewMockOddsFeed()
	a, _ := feed.FetchUpcoming(context.Background())
	b, _ := feed.FetchUpcoming(context.Background())
	if len(a) != len(b) {
		t.Fatalf("slate size changed between calls: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Errorf("slate order changed: %s vs %s", a[i].ID, b[i].ID)
		}
	}
}
