// Package selection defines the spatial selection contract consumed by the
// simio read pipelines, plus two concrete selectors.
//
// A Selector is a predicate over simulation data. The particle pipeline
// asks it to count matching particles given coordinates and an optional
// smoothing radius; objects use it to mask-compact raw buffers into output
// arrays. Selector implementations live outside the I/O layer; AllData and
// Region are provided because every pipeline needs at least one of each
// behavior to be exercisable.
package selection

// Selector is the capability contract every spatial or particle selection
// must satisfy.
type Selector interface {
	// CountPoints returns the number of points selected out of the given
	// coordinate triple. hsml is the per-point smoothing radius and may be
	// nil when the format has none; a nil radius is treated as zero.
	CountPoints(x, y, z []float64, hsml []float64) int

	// IsAllData reports whether the selector selects the entire dataset.
	// Pipelines use this to skip per-point evaluation: fluid reads copy raw
	// buffers directly and particle counting sums precomputed per-file
	// totals.
	IsAllData() bool
}

// PointSelector extends Selector with a per-point predicate. Objects use it
// to build compaction masks for their elements.
type PointSelector interface {
	Selector

	// SelectPoint reports whether the point at (x, y, z) is selected.
	SelectPoint(x, y, z float64) bool
}

// PaddedPointSelector extends PointSelector for formats whose particles
// carry a smoothing radius. Formats must mask with the same padding the
// counting phase used, or fill counts drift from allocation counts.
type PaddedPointSelector interface {
	PointSelector

	// SelectPaddedPoint reports whether the point at (x, y, z), padded by
	// the given radius, is selected.
	SelectPaddedPoint(x, y, z, pad float64) bool
}

// AllData selects every element of the dataset.
type AllData struct{}

var _ PointSelector = AllData{}

// NewAllData returns a selector that selects the entire dataset.
func NewAllData() AllData {
	return AllData{}
}

func (AllData) CountPoints(x, _, _ []float64, _ []float64) int {
	return len(x)
}

func (AllData) IsAllData() bool { return true }

func (AllData) SelectPoint(_, _, _ float64) bool { return true }

// Region selects points inside an axis-aligned box. Boundaries are
// inclusive on the left edge and exclusive on the right edge, so adjacent
// regions never select the same point twice.
type Region struct {
	Min [3]float64
	Max [3]float64
}

var _ PaddedPointSelector = Region{}

// NewRegion returns a box selector covering [min, max) on each axis.
func NewRegion(min, max [3]float64) Region {
	return Region{Min: min, Max: max}
}

// CountPoints counts points whose position, padded by the per-point
// smoothing radius when present, intersects the box.
func (r Region) CountPoints(x, y, z []float64, hsml []float64) int {
	count := 0
	for i := range x {
		h := 0.0
		if hsml != nil {
			h = hsml[i]
		}
		if r.contains(x[i], y[i], z[i], h) {
			count++
		}
	}

	return count
}

func (r Region) IsAllData() bool { return false }

func (r Region) SelectPoint(x, y, z float64) bool {
	return r.contains(x, y, z, 0)
}

func (r Region) SelectPaddedPoint(x, y, z, pad float64) bool {
	return r.contains(x, y, z, pad)
}

func (r Region) contains(x, y, z, pad float64) bool {
	return x+pad >= r.Min[0] && x-pad < r.Max[0] &&
		y+pad >= r.Min[1] && y-pad < r.Max[1] &&
		z+pad >= r.Min[2] && z-pad < r.Max[2]
}
