package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pitchmap/internal/service"

	"github.com/rs/zerolog"
)

func testHandlers() *Handlers {
	return &Handlers{logger: zerolog.Nop(), season: 2025}
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	testHandlers().Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["service"] != "pitchmap" || body["status"] != "healthy" {
		t.Errorf("body = %v", body)
	}
}

func TestPitchTypes(t *testing.T) {
	rec := httptest.NewRecorder()
	testHandlers().PitchTypes(rec, httptest.NewRequest(http.MethodGet, "/api/v1/pitch-types", nil))

	var body struct {
		PitchTypes []string `json:"pitch_types"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []string{"FF", "SL", "CH", "CU", "SI", "FC"}
	if len(body.PitchTypes) != len(want) {
		t.Fatalf("pitch types = %v", body.PitchTypes)
	}
	for i, code := range want {
		if body.PitchTypes[i] != code {
			t.Errorf("pitch_types[%d] = %q, want %q", i, body.PitchTypes[i], code)
		}
	}
}

func TestHeatmapRequestValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"missing pitcher", `{"pitch_type":"FF"}`, "pitcher is required"},
		{"bad pitch type", `{"pitcher":"A","pitch_type":"KN"}`, "unknown pitch type"},
		{"bad hand", `{"pitcher":"A","pitch_type":"FF","batter_hand":"S"}`, "batter_hand"},
		{"bad date", `{"pitcher":"A","pitch_type":"FF","start_date":"06/01/2025"}`, "YYYY-MM-DD"},
		{"inverted range", `{"pitcher":"A","pitch_type":"FF","start_date":"2025-09-01","end_date":"2025-04-01"}`, "after end_date"},
		{"not json", `{`, "invalid request"},
	}

	h := testHandlers()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/heatmap", strings.NewReader(tc.body))
			h.Heatmap(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !strings.Contains(body["error"], tc.want) {
				t.Errorf("error = %q, want mention of %q", body["error"], tc.want)
			}
		})
	}
}

func TestErrorStatusTaxonomy(t *testing.T) {
	providerErr := fmt.Errorf("%w: failed to fetch roster: timeout", service.ErrProviderUnavailable)
	if got := errorStatus(providerErr); got != http.StatusBadGateway {
		t.Errorf("provider failure status = %d, want 502", got)
	}
	if got := errorStatus(errors.New("database is locked")); got != http.StatusInternalServerError {
		t.Errorf("storage failure status = %d, want 500", got)
	}
}

func TestBuildCriteriaDefaultsToSeasonBounds(t *testing.T) {
	h := testHandlers()
	c, err := h.buildCriteria(heatmapRequest{Pitcher: "Eury Perez", PitchType: "FF"})
	if err != nil {
		t.Fatalf("buildCriteria: %v", err)
	}
	if c.StartDate != "2025-01-01" || c.EndDate != "2025-12-31" {
		t.Errorf("default interval = [%s, %s]", c.StartDate, c.EndDate)
	}
	if c.Hand != "any" {
		t.Errorf("default hand = %q, want any", c.Hand)
	}
}
