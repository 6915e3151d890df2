package service

import (
	"context"
	"fmt"
	"sync"

	"pitchmap/internal/api"
	"pitchmap/internal/config"
	"pitchmap/internal/constants"
	"pitchmap/internal/domain"
	"pitchmap/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// PitchDataService loads the full pitch row set for one pitcher's season,
// fetching uncached game feeds from the stats API.
type PitchDataService struct {
	mlb    *api.MLBClient
	repo   *repository.PitchRepository
	logger zerolog.Logger
	season int
}

func NewPitchDataService(mlb *api.MLBClient, repo *repository.PitchRepository, cfg *config.Config, logger zerolog.Logger) *PitchDataService {
	return &PitchDataService{mlb: mlb, repo: repo, logger: logger, season: cfg.Season}
}

// RecordsFor returns every cached pitch for the pitcher after filling the
// cache with any game feeds not yet stored. refresh forces all feeds to be
// re-fetched.
func (s *PitchDataService) RecordsFor(ctx context.Context, pitcherID int, refresh bool) ([]domain.PitchRecord, error) {
	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	gameIDs, err := s.mlb.PitcherGameIDs(apiCtx, pitcherID, s.season)
	cancel()
	if err != nil {
		s.logger.Error().Err(err).Int("pitcher_id", pitcherID).Msg("failed to fetch game list")
		return nil, fmt.Errorf("%w: failed to fetch game list: %v", ErrProviderUnavailable, err)
	}
	s.logger.Debug().Int("pitcher_id", pitcherID).Int("games", len(gameIDs)).Msg("game list resolved")

	fetched := map[int]bool{}
	if !refresh {
		fetched, err = s.repo.FetchedGames(ctx, gameIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to check cached games: %w", err)
		}
	}

	var missing []int
	for _, pk := range gameIDs {
		if !fetched[pk] {
			missing = append(missing, pk)
		}
	}

	if len(missing) > 0 {
		if err := s.fetchFeeds(ctx, missing); err != nil {
			return nil, err
		}
	}

	dbCtx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()
	return s.repo.GetByPitcher(dbCtx, pitcherID)
}

// fetchFeeds pulls game feeds concurrently, then stores them sequentially;
// SQLite prefers a single writer.
func (s *PitchDataService) fetchFeeds(ctx context.Context, gamePks []int) error {
	s.logger.Info().Int("count", len(gamePks)).Msg("fetching game feeds")

	feeds := make(map[int][]domain.PitchRecord, len(gamePks))
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(constants.FeedFetchConcurrency)
	for _, pk := range gamePks {
		pk := pk
		g.Go(func() error {
			feedCtx, cancel := context.WithTimeout(gCtx, constants.ExternalAPITimeout)
			defer cancel()

			feed, err := s.mlb.GameFeed(feedCtx, pk)
			if err != nil {
				return fmt.Errorf("%w: failed to fetch feed for game %d: %v", ErrProviderUnavailable, pk, err)
			}

			records := feed.PitchRecords()
			mu.Lock()
			feeds[pk] = records
			mu.Unlock()

			s.logger.Debug().Int("game_pk", pk).Int("pitches", len(records)).Msg("game feed fetched")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Msg("failed to fetch game feeds")
		return err
	}

	for _, pk := range gamePks {
		if err := s.repo.ReplaceGamePitches(ctx, pk, s.season, feeds[pk]); err != nil {
			s.logger.Error().Err(err).Int("game_pk", pk).Msg("failed to store game pitches")
			return fmt.Errorf("failed to store game %d: %w", pk, err)
		}
	}
	return nil
}
