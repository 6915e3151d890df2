package repository

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"pitchmap/internal/config"
	"pitchmap/internal/database"
	"pitchmap/internal/domain"

	"github.com/rs/zerolog"
)

func openTestDB(t *testing.T) (*PlayerRepository, *PitchRepository) {
	t.Helper()
	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "test.db")}
	logger := zerolog.Nop()

	db, err := database.New(cfg, logger)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewPlayerRepository(db, logger), NewPitchRepository(db, logger)
}

func TestPlayerRepositoryRoundTrip(t *testing.T) {
	players, _ := openTestDB(t)
	ctx := context.Background()

	roster := []domain.RosterPlayer{
		{ID: 2, Name: "Zack Wheeler", Season: 2025},
		{ID: 1, Name: "Eury Perez", Season: 2025},
	}
	if err := players.UpsertBatch(ctx, roster); err != nil {
		t.Fatalf("UpsertBatch: %v", err)
	}

	got, err := players.List(ctx, 2025)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("listed %d players, want 2", len(got))
	}
	if got[0].Name != "Eury Perez" || got[1].Name != "Zack Wheeler" {
		t.Errorf("list not name-ordered: %q, %q", got[0].Name, got[1].Name)
	}

	// Re-upserting must not duplicate.
	if err := players.UpsertBatch(ctx, roster); err != nil {
		t.Fatalf("second UpsertBatch: %v", err)
	}
	got, _ = players.List(ctx, 2025)
	if len(got) != 2 {
		t.Errorf("after re-upsert listed %d players, want 2", len(got))
	}
}

func TestPlayerShouldRefresh(t *testing.T) {
	players, _ := openTestDB(t)
	ctx := context.Background()

	refresh, err := players.ShouldRefresh(ctx, 2025, time.Hour)
	if err != nil {
		t.Fatalf("ShouldRefresh on empty table: %v", err)
	}
	if !refresh {
		t.Error("empty roster must refresh")
	}

	if err := players.UpsertBatch(ctx, []domain.RosterPlayer{{ID: 1, Name: "A", Season: 2025}}); err != nil {
		t.Fatalf("UpsertBatch: %v", err)
	}
	// Populated table exercises the timestamp scan, not just the
	// no-rows path.
	refresh, err = players.ShouldRefresh(ctx, 2025, time.Hour)
	if err != nil {
		t.Fatalf("ShouldRefresh on populated table: %v", err)
	}
	if refresh {
		t.Error("freshly fetched roster must not refresh within TTL")
	}

	refresh, err = players.ShouldRefresh(ctx, 2025, 0)
	if err != nil {
		t.Fatalf("ShouldRefresh with expired TTL: %v", err)
	}
	if !refresh {
		t.Error("roster older than the TTL must refresh")
	}
}

func TestPitchRepositoryRoundTripAndNaN(t *testing.T) {
	_, pitches := openTestDB(t)
	ctx := context.Background()

	recs := []domain.PitchRecord{
		{
			PitcherID: 1, PitcherName: "Eury Perez", PitchType: "FF",
			GameDate: "2025-06-15", BatterHand: "R",
			PX: -0.3, PZ: 2.6, VY0: -130, VZ0: -5, AY: 20, AZ: -16,
			StartSpeed: 97.4, IVB: 16.2, HB: 8.1, Extension: 6.9,
			VX0: 4.1, AX: -6.2,
		},
		{
			PitcherID: 1, PitcherName: "Eury Perez", PitchType: "SL",
			GameDate: "2025-06-15", BatterHand: "L",
			PX: math.NaN(), PZ: math.NaN(), VX0: math.NaN(), VY0: math.NaN(),
			VZ0: math.NaN(), AX: math.NaN(), AY: math.NaN(), AZ: math.NaN(),
			StartSpeed: math.NaN(), IVB: math.NaN(), HB: math.NaN(), Extension: math.NaN(),
		},
	}
	if err := pitches.ReplaceGamePitches(ctx, 778234, 2025, recs); err != nil {
		t.Fatalf("ReplaceGamePitches: %v", err)
	}

	got, err := pitches.GetByPitcher(ctx, 1)
	if err != nil {
		t.Fatalf("GetByPitcher: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d pitches, want 2", len(got))
	}

	var ff, sl domain.PitchRecord
	for _, p := range got {
		if p.PitchType == "FF" {
			ff = p
		} else {
			sl = p
		}
	}
	if ff.PX != -0.3 || ff.VY0 != -130 || ff.StartSpeed != 97.4 {
		t.Errorf("FF row mangled: %+v", ff)
	}
	if !math.IsNaN(sl.PX) || !math.IsNaN(sl.AY) || !math.IsNaN(sl.IVB) {
		t.Errorf("NULL columns must come back NaN: %+v", sl)
	}

	// Replacing the same game must not duplicate rows.
	if err := pitches.ReplaceGamePitches(ctx, 778234, 2025, recs[:1]); err != nil {
		t.Fatalf("second ReplaceGamePitches: %v", err)
	}
	got, _ = pitches.GetByPitcher(ctx, 1)
	if len(got) != 1 {
		t.Errorf("after replace got %d pitches, want 1", len(got))
	}

	fetched, err := pitches.FetchedGames(ctx, []int{778234, 999999})
	if err != nil {
		t.Fatalf("FetchedGames: %v", err)
	}
	if !fetched[778234] || fetched[999999] {
		t.Errorf("fetched map = %v", fetched)
	}
}
