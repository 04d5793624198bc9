package game

import (
	"math"
	"slices"

	"github.com/plus3/rigidtris/config"
	"github.com/plus3/rigidtris/physics"
)

// Band is a completed horizontal line: every block centre within HalfWidth of Center
// (inflated by the detector's jitter) belongs to it.
type Band struct {
	Center    float64
	HalfWidth float64
}

// Lower returns the smallest height claimed by the band.
func (b Band) Lower() float64 {
	return b.Center - b.HalfWidth
}

// Upper returns the largest height claimed by the band.
func (b Band) Upper() float64 {
	return b.Center + b.HalfWidth
}

// Contains reports whether height y falls inside the band once the half-width is
// scaled by jitter. The reach never drops below tolerance, so a band of zero width
// still claims blocks whose height moved by rounding only.
func (b Band) Contains(y, jitter, tolerance float64) bool {
	return math.Abs(y-b.Center) <= max(b.HalfWidth*jitter, tolerance)
}

// Detector finds completed lines among the live block heights.
type Detector struct {
	BlocksPerLine int
	Threshold     float64
	Jitter        float64
}

func NewDetector(cfg config.Lines) Detector {
	return Detector{
		BlocksPerLine: cfg.BlocksPerLine,
		Threshold:     cfg.Threshold,
		Jitter:        cfg.Jitter,
	}
}

// Heights collects the world y of every block of every piece, sorted ascending.
func (d Detector) Heights(w *physics.World, pieces []Piece) []float64 {
	var heights []float64
	for _, p := range pieces {
		heights = append(heights, p.BlockHeights(w)...)
	}
	slices.Sort(heights)
	return heights
}

// Detect slides a window of BlocksPerLine over sorted heights. A window whose spread is
// under the jittered threshold is a line, unless its lowest value is at or below the top
// of the previously emitted band; more than BlocksPerLine blocks sharing a height
// therefore yield a single band and the surplus is left alone.
func (d Detector) Detect(sorted []float64) []Band {
	n := d.BlocksPerLine
	if n <= 0 || len(sorted) < n {
		return nil
	}

	limit := d.Threshold * d.Jitter
	claimed := math.Inf(-1)

	var bands []Band
	for i := 0; i+n <= len(sorted); i++ {
		lo, hi := sorted[i], sorted[i+n-1]
		if hi-lo >= limit {
			continue
		}
		if lo <= claimed {
			continue
		}
		bands = append(bands, Band{
			Center:    (lo + hi) / 2,
			HalfWidth: (hi - lo) / 2,
		})
		claimed = hi
	}
	return bands
}

// Scan runs Heights then Detect.
func (d Detector) Scan(w *physics.World, pieces []Piece) []Band {
	return d.Detect(d.Heights(w, pieces))
}
