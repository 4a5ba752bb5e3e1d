package swar

// Threshold values below which a per-field loop beats the word-parallel
// scan. They were picked empirically and are not derived from a cost model.
const (
	// MinRange is the minimum number of lanes (table size and queried
	// range alike) for the parallel scan.
	MinRange = 20
	// MaxEqualityWidth bounds Equal/NotEqual scans (exclusive).
	MaxEqualityWidth = 32
	// MaxOrderingWidth bounds Less/Greater scans (inclusive); ordering costs
	// more per lane than equality.
	MaxOrderingWidth = 16
)

// Worthwhile reports whether a parallel scan of pred over lanes of the given
// width should be used for a range of n lanes.
func Worthwhile(pred Predicate, width uint, n int) bool {
	if n < MinRange {
		return false
	}
	switch pred {
	case Equal, NotEqual:
		return width < MaxEqualityWidth
	default:
		return width <= MaxOrderingWidth
	}
}
