package render

import (
	"fmt"
	"math"

	"pitchmap/internal/domain"
)

// Plot geometry, catcher's point of view. The strike zone rectangle is the
// fixed overlay drawn by the frontend; the density grid covers the full
// plot bounds.
const (
	XMin = -2.0
	XMax = 2.0
	ZMin = 0.0
	ZMax = 5.0

	ZoneXMin = -0.83
	ZoneXMax = 0.83
	ZoneZMin = 1.5
	ZoneZMax = 3.5

	GridWidth  = 80
	GridHeight = 100

	// Scott's-rule bandwidth is tightened by this factor, and grid cells
	// below this fraction of the peak density are suppressed so the
	// frontend only shades the dense region.
	BandwidthAdjust  = 0.9
	DensityThreshold = 0.5

	fallbackBandwidth = 0.25
)

type Rect struct {
	XMin float64 `json:"x_min"`
	XMax float64 `json:"x_max"`
	ZMin float64 `json:"z_min"`
	ZMax float64 `json:"z_max"`
}

// Summary is the JSON-safe projection of domain.SummaryStats. NaN means
// become null since JSON cannot carry NaN.
type Summary struct {
	Velo *float64 `json:"velo"`
	IVB  *float64 `json:"ivb"`
	HB   *float64 `json:"hb"`
	Ext  *float64 `json:"ext"`
	VAA  *float64 `json:"vaa"`
	Text string   `json:"text"`
}

// Heatmap is the payload the plotting frontend consumes: a density grid
// over plate locations plus every constant it needs to draw the figure.
type Heatmap struct {
	X       []float64   `json:"x"`       // grid cell centers, ft
	Z       []float64   `json:"z"`       // grid cell centers, ft
	Density [][]float64 `json:"density"` // [len(Z)][len(X)]

	StrikeZone Rect    `json:"strike_zone"`
	Summary    Summary `json:"summary"`
	Locations  []domain.Location `json:"locations"`

	Title  string `json:"title"`
	XLabel string `json:"x_label"`
	YLabel string `json:"y_label"`
}

// BuildHeatmap evaluates a Gaussian kernel density over the plate locations
// and assembles the full plot payload.
func BuildHeatmap(locs []domain.Location, stats domain.SummaryStats, pitcherName, pitchType string) *Heatmap {
	xs := gridCenters(XMin, XMax, GridWidth)
	zs := gridCenters(ZMin, ZMax, GridHeight)

	return &Heatmap{
		X:          xs,
		Z:          zs,
		Density:    densityGrid(locs, xs, zs),
		StrikeZone: Rect{XMin: ZoneXMin, XMax: ZoneXMax, ZMin: ZoneZMin, ZMax: ZoneZMax},
		Summary:    newSummary(stats),
		Locations:  locs,
		Title:      fmt.Sprintf("%s - %s KDE Heatmap (Catcher POV)", pitcherName, pitchType),
		XLabel:     "Horizontal Location (ft)",
		YLabel:     "Vertical Location (ft)",
	}
}

func newSummary(s domain.SummaryStats) Summary {
	text := fmt.Sprintf("Velo: %.1f mph\nIVB: %.1f in\nHB: %.1f in\nExt: %.1f ft\nVAA: %.1f°",
		s.Velo, s.IVB, s.HB, s.Ext, s.VAA)
	return Summary{
		Velo: nanToNil(s.Velo),
		IVB:  nanToNil(s.IVB),
		HB:   nanToNil(s.HB),
		Ext:  nanToNil(s.Ext),
		VAA:  nanToNil(s.VAA),
		Text: text,
	}
}

func nanToNil(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func gridCenters(min, max float64, n int) []float64 {
	step := (max - min) / float64(n)
	out := make([]float64, n)
	for i := range out {
		out[i] = min + step*(float64(i)+0.5)
	}
	return out
}

// densityGrid evaluates a product-Gaussian KDE at every grid cell, then
// zeroes cells below DensityThreshold of the peak.
func densityGrid(locs []domain.Location, xs, zs []float64) [][]float64 {
	grid := make([][]float64, len(zs))
	for i := range grid {
		grid[i] = make([]float64, len(xs))
	}
	if len(locs) == 0 {
		return grid
	}

	n := float64(len(locs))
	hx := bandwidth(locs, func(l domain.Location) float64 { return l.PX })
	hz := bandwidth(locs, func(l domain.Location) float64 { return l.PZ })
	norm := 1.0 / (n * 2 * math.Pi * hx * hz)

	peak := 0.0
	for zi, z := range zs {
		for xi, x := range xs {
			var sum float64
			for _, l := range locs {
				dx := (x - l.PX) / hx
				dz := (z - l.PZ) / hz
				sum += math.Exp(-0.5 * (dx*dx + dz*dz))
			}
			d := sum * norm
			grid[zi][xi] = d
			if d > peak {
				peak = d
			}
		}
	}

	cutoff := peak * DensityThreshold
	for zi := range grid {
		for xi := range grid[zi] {
			if grid[zi][xi] < cutoff {
				grid[zi][xi] = 0
			}
		}
	}
	return grid
}

// bandwidth is Scott's rule for two dimensions (n^(-1/6)) scaled by
// BandwidthAdjust, with a floor so degenerate samples still render.
func bandwidth(locs []domain.Location, f func(domain.Location) float64) float64 {
	n := float64(len(locs))
	var sum, sumSq float64
	for _, l := range locs {
		v := f(l)
		sum += v
		sumSq += v * v
	}
	m := sum / n
	variance := sumSq/n - m*m
	if variance < 0 {
		variance = 0
	}
	h := math.Sqrt(variance) * math.Pow(n, -1.0/6.0) * BandwidthAdjust
	if h <= 0 || math.IsNaN(h) {
		return fallbackBandwidth
	}
	return h
}
