package layout

import "unicode/utf8"

// Conversion constants between pt and mm. Block geometry is in pt (PDF user
// space); the canvas backend measures and draws in mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

// Layout heuristics shared by the planner, the line breaker and the fitter.
const (
	// DefaultLineHeightFactor is the leading: one line advances 1.2x the
	// largest font size placed on it.
	DefaultLineHeightFactor = 1.2
	// DefaultWidthTolerance absorbs measurement noise when deciding to expand.
	DefaultWidthTolerance = 1.0
	// AvgCharWidthFactor is the empirical average glyph advance relative to
	// the font size, used whenever real glyph data is unavailable.
	AvgCharWidthFactor = 0.6

	fitEpsilon = 1e-6
)

// ToMM converts points to millimetres.
func ToMM(pt float64) float64 { return pt * PtToMm }

// ToPT converts millimetres to points.
func ToPT(mm float64) float64 { return mm * MmToPt }

// EstimateWidth returns the character-count width estimate of text.
func EstimateWidth(text string, size, factor float64) float64 {
	if factor <= 0 {
		factor = AvgCharWidthFactor
	}
	return float64(utf8.RuneCountInString(text)) * size * factor
}
