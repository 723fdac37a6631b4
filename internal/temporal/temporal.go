// Package temporal decides whether two feature timestamps are close enough
// to allow a neighbor edge.
package temporal

import (
	"math"
	"time"
)

// Close reports whether t1 and t2 are within threshold of each other.
// A nil timestamp on either side always matches. Comparison is done on the
// absolute instant, so differing locations or precisions do not matter.
// A zero threshold only accepts identical instants.
func Close(t1, t2 *time.Time, threshold time.Duration) bool {
	if t1 == nil || t2 == nil {
		return true
	}
	if threshold < 0 {
		return false
	}
	return absDiff(*t1, *t2) <= threshold
}

// absDiff is |a-b|. time.Time.Sub saturates at the Duration range, which is
// only reached for instants ~292 years apart.
func absDiff(a, b time.Time) time.Duration {
	if a.Before(b) {
		return b.Sub(a)
	}
	return a.Sub(b)
}

// FromSeconds converts a seconds value to a Duration, saturating instead of
// overflowing for very large windows.
func FromSeconds(s float64) time.Duration {
	ns := s * float64(time.Second)
	switch {
	case math.IsNaN(ns):
		return 0
	case ns >= math.MaxInt64:
		return time.Duration(math.MaxInt64)
	case ns <= math.MinInt64:
		return time.Duration(math.MinInt64)
	}
	return time.Duration(math.Round(ns))
}
