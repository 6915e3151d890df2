package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"pitchmap/internal/config"
	"pitchmap/internal/domain"
	"pitchmap/internal/pitch"
	"pitchmap/internal/render"
	"pitchmap/internal/service"

	"github.com/rs/zerolog"
)

type Handlers struct {
	heatmap *service.HeatmapService
	roster  *service.RosterService
	logger  zerolog.Logger
	season  int
}

func NewHandlers(heatmap *service.HeatmapService, roster *service.RosterService, cfg *config.Config, logger zerolog.Logger) *Handlers {
	return &Handlers{heatmap: heatmap, roster: roster, logger: logger, season: cfg.Season}
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "pitchmap",
	})
}

// Pitchers returns the roster names sorted lexicographically, the order
// the select control presents.
func (h *Handlers) Pitchers(w http.ResponseWriter, r *http.Request) {
	refresh := r.URL.Query().Get("refresh") == "true"

	names, err := h.roster.PitcherNames(r.Context(), refresh)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list pitchers")
		respondError(w, errorStatus(err), "failed to load player list")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"pitchers": names})
}

func (h *Handlers) PitchTypes(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"pitch_types": domain.PitchTypes})
}

type heatmapRequest struct {
	Pitcher    string `json:"pitcher"`
	PitchType  string `json:"pitch_type"`
	BatterHand string `json:"batter_hand"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Refresh    bool   `json:"refresh"`
}

type heatmapResponse struct {
	Heatmap     *render.Heatmap `json:"heatmap"`
	PitchCount  int             `json:"pitch_count"`
	HeadshotPNG string          `json:"headshot_png,omitempty"` // base64
}

// Heatmap serves one heatmap query. Unknown pitcher is a user input error;
// a valid query with no matching rows is a no-data response, not a fault.
func (h *Handlers) Heatmap(w http.ResponseWriter, r *http.Request) {
	var req heatmapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	criteria, err := h.buildCriteria(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.heatmap.Build(r.Context(), criteria, req.Refresh)
	switch {
	case errors.Is(err, pitch.ErrUnknownPitcher):
		respondError(w, http.StatusBadRequest, "pitcher name not found in player list")
		return
	case errors.Is(err, pitch.ErrNoPitches):
		respondJSON(w, http.StatusOK, map[string]any{
			"no_data": true,
			"message": "no matching data found for that pitcher, pitch type, and date range",
		})
		return
	case err != nil:
		h.logger.Error().Err(err).Str("pitcher", req.Pitcher).Msg("heatmap build failed")
		respondError(w, errorStatus(err), "failed to load pitch data")
		return
	}

	resp := heatmapResponse{
		Heatmap:    result.Heatmap,
		PitchCount: result.PitchCount,
	}
	if len(result.Headshot) > 0 {
		resp.HeadshotPNG = base64.StdEncoding.EncodeToString(result.Headshot)
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handlers) buildCriteria(req heatmapRequest) (domain.SelectionCriteria, error) {
	var c domain.SelectionCriteria

	if req.Pitcher == "" {
		return c, errors.New("pitcher is required")
	}

	if !validPitchType(req.PitchType) {
		return c, fmt.Errorf("unknown pitch type %q", req.PitchType)
	}

	hand := domain.Hand(req.BatterHand)
	switch hand {
	case "", domain.HandAny:
		hand = domain.HandAny
	case domain.HandLeft, domain.HandRight:
	default:
		return c, fmt.Errorf("batter_hand must be any, L or R, got %q", req.BatterHand)
	}

	start := req.StartDate
	if start == "" {
		start = fmt.Sprintf("%d-01-01", h.season)
	}
	end := req.EndDate
	if end == "" {
		end = fmt.Sprintf("%d-12-31", h.season)
	}
	for _, d := range []string{start, end} {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return c, fmt.Errorf("dates must be YYYY-MM-DD, got %q", d)
		}
	}
	if start > end {
		return c, fmt.Errorf("start_date %s is after end_date %s", start, end)
	}

	c = domain.SelectionCriteria{
		PitcherName: req.Pitcher,
		PitchType:   req.PitchType,
		Hand:        hand,
		StartDate:   start,
		EndDate:     end,
	}
	return c, nil
}

func validPitchType(code string) bool {
	for _, t := range domain.PitchTypes {
		if t == code {
			return true
		}
	}
	return false
}

// errorStatus maps service failures onto the error taxonomy: upstream
// provider outages are 502, anything local is 500.
func errorStatus(err error) int {
	if errors.Is(err, service.ErrProviderUnavailable) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
