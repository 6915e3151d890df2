package service

import (
	"context"

	"pitchmap/internal/api"
	"pitchmap/internal/constants"
	"pitchmap/internal/domain"
	"pitchmap/internal/pitch"
	"pitchmap/internal/render"

	"github.com/rs/zerolog"
)

// HeatmapService orchestrates one heatmap query: resolve the pitcher, load
// the season's pitch rows, run the filter-and-derive pipeline, and build
// the plot payload with a best-effort headshot.
type HeatmapService struct {
	roster   *RosterService
	data     *PitchDataService
	headshot *api.HeadshotClient
	logger   zerolog.Logger
}

func NewHeatmapService(roster *RosterService, data *PitchDataService, headshot *api.HeadshotClient, logger zerolog.Logger) *HeatmapService {
	return &HeatmapService{roster: roster, data: data, headshot: headshot, logger: logger}
}

type HeatmapResult struct {
	PitcherID  int
	PitchCount int
	Heatmap    *render.Heatmap
	Headshot   []byte // PNG, nil when unavailable
}

// Build runs one query end to end. pitch.ErrUnknownPitcher and
// pitch.ErrNoPitches surface unchanged for the handler to map.
func (s *HeatmapService) Build(ctx context.Context, c domain.SelectionCriteria, refresh bool) (*HeatmapResult, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	s.logger.Info().
		Str("pitcher", c.PitcherName).
		Str("pitch_type", c.PitchType).
		Str("hand", string(c.Hand)).
		Str("start", c.StartDate).
		Str("end", c.EndDate).
		Bool("refresh", refresh).
		Msg("building heatmap")

	// Name must resolve before any game data is fetched.
	pitcherID, err := s.roster.Resolve(ctx, c.PitcherName)
	if err != nil {
		return nil, err
	}

	records, err := s.data.RecordsFor(ctx, pitcherID, refresh)
	if err != nil {
		return nil, err
	}

	result, err := pitch.Compute(records, c)
	if err != nil {
		return nil, err
	}

	hm := render.BuildHeatmap(result.Locations, result.Summary, c.PitcherName, c.PitchType)

	res := &HeatmapResult{
		PitcherID:  pitcherID,
		PitchCount: len(result.Pitches),
		Heatmap:    hm,
	}

	// Best effort: a missing photo is logged and the plot proceeds
	// without it.
	if img, err := s.headshot.Fetch(ctx, pitcherID); err != nil {
		s.logger.Warn().Err(err).Int("pitcher_id", pitcherID).Msg("headshot load failed")
	} else {
		res.Headshot = img
	}

	s.logger.Info().
		Int("pitcher_id", pitcherID).
		Int("pitches", res.PitchCount).
		Int("locations", len(hm.Locations)).
		Msg("heatmap built")
	return res, nil
}
