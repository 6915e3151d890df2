package service

import (
	"context"
	"fmt"

	"pitchmap/internal/api"
	"pitchmap/internal/config"
	"pitchmap/internal/constants"
	"pitchmap/internal/domain"
	"pitchmap/internal/pitch"
	"pitchmap/internal/repository"

	"github.com/rs/zerolog"
)

// RosterService keeps the season player roster cached and resolves display
// names to player ids.
type RosterService struct {
	mlb    *api.MLBClient
	repo   *repository.PlayerRepository
	logger zerolog.Logger
	season int
}

func NewRosterService(mlb *api.MLBClient, repo *repository.PlayerRepository, cfg *config.Config, logger zerolog.Logger) *RosterService {
	return &RosterService{mlb: mlb, repo: repo, logger: logger, season: cfg.Season}
}

// PitcherNames returns the roster names in lexicographic order for the
// selection control.
func (s *RosterService) PitcherNames(ctx context.Context, refresh bool) ([]string, error) {
	roster, err := s.ensureRoster(ctx, refresh)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(roster))
	for i, p := range roster {
		names[i] = p.Name
	}
	return names, nil
}

// Resolve maps a pitcher display name to a player id. ErrUnknownPitcher
// surfaces unchanged so callers can halt before fetching any game data.
func (s *RosterService) Resolve(ctx context.Context, name string) (int, error) {
	roster, err := s.ensureRoster(ctx, false)
	if err != nil {
		return 0, err
	}

	id, err := pitch.ResolvePitcher(roster, name)
	if err != nil {
		s.logger.Warn().Str("name", name).Msg("pitcher name did not resolve")
		return 0, err
	}
	return id, nil
}

func (s *RosterService) ensureRoster(ctx context.Context, refresh bool) ([]domain.RosterPlayer, error) {
	shouldRefresh, err := s.repo.ShouldRefresh(ctx, s.season, constants.RosterRefreshTTL)
	if err != nil {
		return nil, err
	}
	if refresh {
		s.logger.Debug().Int("season", s.season).Msg("manual roster refresh requested")
		shouldRefresh = true
	}

	if shouldRefresh {
		apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
		defer cancel()

		players, err := s.mlb.Players(apiCtx, s.season)
		if err != nil {
			s.logger.Error().Err(err).Int("season", s.season).Msg("failed to fetch roster")
			return nil, fmt.Errorf("%w: failed to fetch roster: %v", ErrProviderUnavailable, err)
		}

		if err := s.repo.UpsertBatch(ctx, players); err != nil {
			s.logger.Error().Err(err).Int("season", s.season).Msg("failed to store roster")
			return nil, fmt.Errorf("failed to store roster: %w", err)
		}
		s.logger.Info().Int("season", s.season).Int("count", len(players)).Msg("roster refreshed")
	}

	return s.repo.List(ctx, s.season)
}
