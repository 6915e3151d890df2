package domain

import (
	"time"
)

// Hand is the batter-handedness filter. HandAny disables the filter.
type Hand string

const (
	HandAny   Hand = "any"
	HandLeft  Hand = "L"
	HandRight Hand = "R"
)

// PitchTypes are the pitch type codes exposed to the selection UI.
var PitchTypes = []string{"FF", "SL", "CH", "CU", "SI", "FC"}

// PitchRecord is one tracked pitch. All locations are in feet from the
// catcher's point of view. Float fields hold NaN when the tracking system
// did not report a value.
type PitchRecord struct {
	PitcherID   int
	PitcherName string
	PitchType   string
	GameDate    string // ISO YYYY-MM-DD
	BatterHand  string // "L" or "R"

	PX float64 // horizontal plate location, ft
	PZ float64 // vertical plate location, ft

	VX0 float64 // release velocity components, ft/s
	VY0 float64
	VZ0 float64
	AX  float64 // acceleration components, ft/s²
	AY  float64
	AZ  float64

	StartSpeed float64 // release speed, mph
	IVB        float64 // induced vertical break, in
	HB         float64 // horizontal break, in
	Extension  float64 // release extension, ft
}

// SelectionCriteria is one heatmap query. Dates are inclusive ISO strings;
// lexicographic comparison matches calendar order.
type SelectionCriteria struct {
	PitcherName string
	PitchType   string
	Hand        Hand
	StartDate   string
	EndDate     string
}

// SummaryStats holds the five one-decimal means over the derived row set.
// A field is NaN when no row carried a defined value for it.
type SummaryStats struct {
	Velo float64 // mph
	IVB  float64 // in
	HB   float64 // in
	Ext  float64 // ft
	VAA  float64 // deg
}

// Location is one plate-crossing point fed to the density surface.
type Location struct {
	PX float64 `json:"px"`
	PZ float64 `json:"pz"`
}

type RosterPlayer struct {
	ID          int
	Name        string
	Season      int
	LastFetchAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
