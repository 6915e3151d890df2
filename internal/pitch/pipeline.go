package pitch

import (
	"errors"
	"math"

	"pitchmap/internal/domain"
)

// Trajectory planes, feet from the back of home plate. Tracking reports the
// release state at y0; the approach angle is evaluated where the ball
// crosses the plate plane.
const (
	releasePlaneY = 50.0
	platePlaneY   = 17.0 / 12.0
)

var (
	// ErrUnknownPitcher means the display name did not resolve against the
	// roster. Callers must stop before fetching any game data.
	ErrUnknownPitcher = errors.New("pitcher not found in player list")

	// ErrNoPitches means the query was valid but no rows survived
	// filtering. Terminal, not a fault.
	ErrNoPitches = errors.New("no pitches match the selection")
)

// DerivedPitch is a PitchRecord extended with the plate-crossing kinematics.
type DerivedPitch struct {
	domain.PitchRecord

	VyF    float64 // y velocity at the plate plane, ft/s (negative toward catcher)
	T      float64 // flight time from release plane to plate plane, s
	VzF    float64 // z velocity at the plate plane, ft/s
	VAADeg float64 // vertical approach angle, deg
}

// Result is the output of Compute: the derived rows, their summary means,
// and the defined plate locations for the density surface.
type Result struct {
	Pitches   []DerivedPitch
	Summary   domain.SummaryStats
	Locations []domain.Location
}

// ResolvePitcher maps a display name to a player id by exact match.
func ResolvePitcher(roster []domain.RosterPlayer, name string) (int, error) {
	for _, p := range roster {
		if p.Name == name {
			return p.ID, nil
		}
	}
	return 0, ErrUnknownPitcher
}

// Filter restricts records to one pitcher, one pitch type, an inclusive
// date interval, and optionally one batter hand. Predicates are pure, so
// the result is independent of application order and Filter is idempotent.
func Filter(records []domain.PitchRecord, c domain.SelectionCriteria) []domain.PitchRecord {
	out := make([]domain.PitchRecord, 0, len(records))
	for _, r := range records {
		if r.PitcherName != c.PitcherName || r.PitchType != c.PitchType {
			continue
		}
		if r.GameDate < c.StartDate || r.GameDate > c.EndDate {
			continue
		}
		if c.Hand != domain.HandAny && c.Hand != "" && r.BatterHand != string(c.Hand) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Derive computes the vertical approach angle for every record. Undefined
// inputs follow IEEE-754: a negative radicand yields NaN, ay == 0 yields
// ±Inf or NaN for t. Those values propagate instead of raising.
func Derive(records []domain.PitchRecord) []DerivedPitch {
	out := make([]DerivedPitch, len(records))
	for i, r := range records {
		vyF := -math.Sqrt(r.VY0*r.VY0 - 2*r.AY*(releasePlaneY-platePlaneY))
		t := (vyF - r.VY0) / r.AY
		vzF := r.VZ0 + r.AZ*t
		vaa := math.Atan(-vzF/vyF) * (180.0 / math.Pi)
		out[i] = DerivedPitch{PitchRecord: r, VyF: vyF, T: t, VzF: vzF, VAADeg: vaa}
	}
	return out
}

// Summarize takes the per-column mean over rows whose value is defined,
// rounded to one decimal. A column with no defined values is NaN.
func Summarize(derived []DerivedPitch) domain.SummaryStats {
	return domain.SummaryStats{
		Velo: round1(mean(derived, func(p DerivedPitch) float64 { return p.StartSpeed })),
		IVB:  round1(mean(derived, func(p DerivedPitch) float64 { return p.IVB })),
		HB:   round1(mean(derived, func(p DerivedPitch) float64 { return p.HB })),
		Ext:  round1(mean(derived, func(p DerivedPitch) float64 { return p.Extension })),
		VAA:  round1(mean(derived, func(p DerivedPitch) float64 { return p.VAADeg })),
	}
}

// Locations extracts (px, pz) pairs, dropping rows where either is undefined.
func Locations(derived []DerivedPitch) []domain.Location {
	out := make([]domain.Location, 0, len(derived))
	for _, p := range derived {
		if math.IsNaN(p.PX) || math.IsNaN(p.PZ) {
			continue
		}
		out = append(out, domain.Location{PX: p.PX, PZ: p.PZ})
	}
	return out
}

// Compute runs the full pipeline: filter, then derive, summarize and
// project locations. Returns ErrNoPitches without deriving when nothing
// survives the filter.
func Compute(records []domain.PitchRecord, c domain.SelectionCriteria) (*Result, error) {
	filtered := Filter(records, c)
	if len(filtered) == 0 {
		return nil, ErrNoPitches
	}
	derived := Derive(filtered)
	return &Result{
		Pitches:   derived,
		Summary:   Summarize(derived),
		Locations: Locations(derived),
	}, nil
}

func mean(ps []DerivedPitch, f func(DerivedPitch) float64) float64 {
	var sum float64
	var n int
	for _, p := range ps {
		v := f(p)
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
