package track

import (
	hungarian "github.com/arthurkushman/go-hungarian"
)

// SortFrame reconciles a whole frame of scored hits at once.
// Unlike Sort, which matches hits one by one in arrival order, SortFrame first
// computes an optimal one-to-one assignment of the frame's hits onto the
// existing candidates (Kuhn-Munkres on a distance similarity matrix), so two
// near-identical hits of the same frame can never both claim the same
// candidate. Hits left unassigned, or assigned beyond the distance tolerance,
// are inserted as new candidates in arrival order, with duplicates among them
// merged into the first insertion.
func (tracker *Tracker) SortFrame(hits []*Hit) {
	if len(hits) == 0 {
		return
	}
	if len(tracker.candidates) == 0 {
		for _, hit := range hits {
			tracker.Sort(hit)
		}
		return
	}

	// Snapshot the candidates: promotion during match processing mutates the registry
	candidates := make([]*Hit, len(tracker.candidates))
	copy(candidates, tracker.candidates)

	// Similarity matrix: rows are candidates, columns are incoming hits.
	// Pairs beyond the tolerance keep similarity 0 so the solver never
	// prefers them over leaving a hit unassigned.
	size := maxInt(len(candidates), len(hits))
	matrix := make([][]float64, size)
	for i := range matrix {
		matrix[i] = make([]float64, size)
	}
	for i, candidate := range candidates {
		for j, hit := range hits {
			dist := Distance(candidate.point, hit.point)
			if dist <= tracker.distTolerance {
				matrix[i][j] = 1.0 / (1.0 + dist)
			}
		}
	}

	assignments := hungarian.SolveMax(matrix)

	matched := make(map[int]struct{})
	for row, cols := range assignments {
		if row >= len(candidates) {
			// padded row
			continue
		}
		for col := range cols {
			if col >= len(hits) {
				continue
			}
			if matrix[row][col] == 0 {
				// padded column or out-of-tolerance pair
				continue
			}
			tracker.bumpCandidate(candidates[row])
			matched[col] = struct{}{}
		}
	}

	// Leftovers become new candidates. Duplicates among the leftovers merge
	// into the first insertion instead of spawning a second candidate.
	fresh := make([]*Hit, 0)
	for j, hit := range hits {
		if _, ok := matched[j]; ok {
			continue
		}
		if prev, ok := findWithin(fresh, hit.point, tracker.distTolerance); ok {
			tracker.bumpCandidate(prev)
			continue
		}
		hit.seen = true
		tracker.candidates = append(tracker.candidates, hit)
		fresh = append(fresh, hit)
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
