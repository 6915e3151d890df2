package render

import (
	"math"
	"strings"
	"testing"

	"pitchmap/internal/domain"
)

func TestBuildHeatmapGridShape(t *testing.T) {
	locs := []domain.Location{
		{PX: 0.1, PZ: 2.4}, {PX: -0.2, PZ: 2.6}, {PX: 0.0, PZ: 2.5},
	}
	hm := BuildHeatmap(locs, domain.SummaryStats{Velo: 95.1, IVB: 16.0, HB: 7.2, Ext: 6.5, VAA: -4.8}, "Eury Perez", "FF")

	if len(hm.X) != GridWidth || len(hm.Z) != GridHeight {
		t.Fatalf("grid axes %dx%d, want %dx%d", len(hm.X), len(hm.Z), GridWidth, GridHeight)
	}
	if len(hm.Density) != GridHeight || len(hm.Density[0]) != GridWidth {
		t.Fatalf("density %dx%d, want %dx%d rows x cols", len(hm.Density), len(hm.Density[0]), GridHeight, GridWidth)
	}
	if hm.X[0] <= XMin || hm.X[len(hm.X)-1] >= XMax {
		t.Errorf("x centers must lie strictly inside [%v, %v]", XMin, XMax)
	}
	if hm.Title != "Eury Perez - FF KDE Heatmap (Catcher POV)" {
		t.Errorf("title = %q", hm.Title)
	}
}

func TestDensityPeaksNearCluster(t *testing.T) {
	// Tight cluster around (0.5, 2.0); the peak cell must be near it and
	// far cells must be suppressed by the threshold.
	locs := []domain.Location{
		{PX: 0.5, PZ: 2.0}, {PX: 0.52, PZ: 2.05}, {PX: 0.48, PZ: 1.95},
		{PX: 0.51, PZ: 2.02}, {PX: 0.49, PZ: 1.98},
	}
	hm := BuildHeatmap(locs, domain.SummaryStats{}, "p", "FF")

	var peakX, peakZ, peak float64
	for zi, row := range hm.Density {
		for xi, d := range row {
			if d > peak {
				peak = d
				peakX = hm.X[xi]
				peakZ = hm.Z[zi]
			}
		}
	}
	if peak <= 0 {
		t.Fatal("no positive density")
	}
	if math.Abs(peakX-0.5) > 0.2 || math.Abs(peakZ-2.0) > 0.2 {
		t.Errorf("peak at (%v, %v), want near (0.5, 2.0)", peakX, peakZ)
	}

	// Opposite corner is far outside the cluster: thresholded to zero.
	if d := hm.Density[GridHeight-1][0]; d != 0 {
		t.Errorf("far corner density = %v, want 0 after thresholding", d)
	}
}

func TestDensitySinglePointDoesNotBlowUp(t *testing.T) {
	hm := BuildHeatmap([]domain.Location{{PX: 0, PZ: 2.5}}, domain.SummaryStats{}, "p", "SL")
	for _, row := range hm.Density {
		for _, d := range row {
			if math.IsNaN(d) || math.IsInf(d, 0) {
				t.Fatal("density grid contains NaN/Inf for a degenerate sample")
			}
		}
	}
}

func TestSummaryNaNBecomesNull(t *testing.T) {
	s := newSummary(domain.SummaryStats{Velo: 95.1, IVB: math.NaN(), HB: 7.2, Ext: 6.5, VAA: math.NaN()})
	if s.IVB != nil || s.VAA != nil {
		t.Errorf("NaN means must project to nil, got IVB=%v VAA=%v", s.IVB, s.VAA)
	}
	if s.Velo == nil || *s.Velo != 95.1 {
		t.Errorf("defined mean lost: %v", s.Velo)
	}
	if !strings.HasPrefix(s.Text, "Velo: 95.1 mph\n") {
		t.Errorf("summary text = %q", s.Text)
	}
}
