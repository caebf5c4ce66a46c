// Package facematch provides descriptor distance computation and
// nearest-neighbor matching for face verification.
package facematch

import (
	"errors"
	"fmt"
	"math"
)

// ErrNoCandidates is returned by Nearest when the candidate set is empty.
var ErrNoCandidates = errors.New("no candidate descriptors")

// Result describes the outcome of a nearest-neighbor match.
type Result struct {
	Index      int     // index of the nearest candidate, first-seen wins on ties
	Distance   float64 // minimum euclidean distance found
	Matched    bool    // Distance <= threshold
	Confidence float64 // display heuristic, not part of the decision
}

// EuclideanDistance computes the euclidean distance between two descriptor
// vectors of equal length.
func EuclideanDistance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Nearest scans all candidates linearly and returns the one with minimum
// euclidean distance to the probe, accepting iff the distance is within
// threshold. Ties are broken by iteration order (first seen wins). The scan
// is O(n) on purpose: registries are small and an index structure would
// change tie-break behavior.
func Nearest(probe []float32, candidates [][]float32, threshold float64) (Result, error) {
	if len(candidates) == 0 {
		return Result{}, ErrNoCandidates
	}

	best := Result{Index: -1, Distance: math.Inf(1)}
	for i, candidate := range candidates {
		// Probe and candidates come from the same embedding model, so a
		// length mismatch is an internal error, not a rejection.
		if len(candidate) != len(probe) {
			return Result{}, fmt.Errorf("descriptor length mismatch: probe %d, candidate %d has %d", len(probe), i, len(candidate))
		}
		if d := EuclideanDistance(probe, candidate); d < best.Distance {
			best.Index = i
			best.Distance = d
		}
	}

	best.Matched = best.Distance <= threshold
	best.Confidence = Confidence(best.Distance, threshold, best.Matched)
	return best, nil
}

// Confidence derives a display scalar from a match distance. Accepted
// matches scale linearly inside the threshold; rejections report
// max(0, 1-distance). This is a presentation heuristic, not a probability.
func Confidence(distance, threshold float64, matched bool) float64 {
	if matched {
		if threshold <= 0 {
			return 0
		}
		return 1 - distance/threshold
	}
	if distance <= 1 {
		return 1 - distance
	}
	return 0
}
