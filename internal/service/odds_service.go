package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/bkoc/betleague/internal/domain"
	"github.com/bkoc/betleague/internal/repository"
	"github.com/google/uuid"
)

// OddsService syncs the provider's odds board into the database and serves
// the weekly odds view.
type OddsService struct {
	feed     OddsFeed
	gameRepo *repository.GameRepository
}

// NewOddsService creates an OddsService.
func NewOddsService(feed OddsFeed, gameRepo *repository.GameRepository) *OddsService {
	return &OddsService{feed: feed, gameRepo: gameRepo}
}

// SyncWeek pulls the current board and upserts every game and priced outcome
// under the given league week. Decimal odds are derived from the American
// value here; the provider's own decimals are never trusted. Locked options
// and posted results are left untouched by the upserts.
func (s *OddsService) SyncWeek(ctx context.Context, week int) (games, options int, err error) {
	feedGames, err := s.feed.FetchUpcoming(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("odds_service.SyncWeek: %w", err)
	}

	now := time.Now().UTC()
	for _, fg := range feedGames {
		game := &domain.Game{
			ID:        fg.ID,
			HomeTeam:  fg.HomeTeam,
			AwayTeam:  fg.AwayTeam,
			Week:      week,
			StartTime: fg.CommenceTime,
			CreatedAt: now,
		}
		if err := s.gameRepo.Upsert(ctx, game); err != nil {
			log.Printf("[odds] ERROR upserting game %s: %v", fg.ID, err)
			continue
		}
		games++

		for _, bm := range fg.Bookmakers {
			for _, market := range bm.Markets {
				for _, outcome := range market.Outcomes {
					decimalOdds, oddsErr := domain.AmericanToDecimal(outcome.Price)
					if oddsErr != nil {
						log.Printf("[odds] skipping outcome %q on game %s: %v",
							outcome.Name, fg.ID, oddsErr)
						continue
					}
					option := &domain.BettingOption{
						ID:           uuid.New(),
						GameID:       fg.ID,
						Bookmaker:    bm.Key,
						MarketType:   domain.MarketType(market.Key),
						OutcomeName:  outcome.Name,
						AmericanOdds: outcome.Price,
						DecimalOdds:  decimalOdds,
						Point:        outcome.Point,
						UpdatedAt:    now,
					}
					if err := s.gameRepo.UpsertOption(ctx, option); err != nil {
						log.Printf("[odds] ERROR upserting option %q on game %s: %v",
							outcome.Name, fg.ID, err)
						continue
					}
					options++
				}
			}
		}
	}

	log.Printf("[odds] week %d synced: %d games, %d options", week, games, options)
	return games, options, nil
}

// WeekOdds returns the stored board for a week.
func (s *OddsService) WeekOdds(ctx context.Context, week int) ([]*domain.GameOdds, error) {
	return s.gameRepo.ListWeekOdds(ctx, week)
}

// GameOdds returns one game with its options.
func (s *OddsService) GameOdds(ctx context.Context, gameID string) (*domain.GameOdds, error) {
	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	options, err := s.gameRepo.ListOptionsByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	odds := &domain.GameOdds{Game: *game}
	for _, o := range options {
		odds.Options = append(odds.Options, *o)
	}
	return odds, nil
}
