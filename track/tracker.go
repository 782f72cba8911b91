package track

import "github.com/google/uuid"

// Tracker maintains the candidate and verified hit registries across frames.
// A hit belongs to exactly one registry at a time and only ever moves from
// candidate to verified. All methods must be called from a single goroutine in
// strict frame order: reputation and drift state are only meaningful under
// frame-sequential processing.
type Tracker struct {
	candidates []*Hit
	verified   []*Hit
	// Distance (most of time in pixels) under which two hits count as the same one. Default 30.0
	distTolerance float64
	// Reputation a candidate needs to become verified. Default is 15
	minReputation int
}

// NewTrackerDefault creates default instance of Tracker
func NewTrackerDefault() *Tracker {
	return &Tracker{
		distTolerance: 30.0,
		minReputation: 15,
	}
}

// NewTracker creates new instance of Tracker
func NewTracker(distTolerance float64, minReputation int) *Tracker {
	return &Tracker{
		distTolerance: distTolerance,
		minReputation: minReputation,
	}
}

// Candidates returns the candidate registry. Be careful: this is not a copy, but reference to it
func (tracker *Tracker) Candidates() []*Hit {
	return tracker.candidates
}

// Verified returns the verified registry. Be careful: this is not a copy, but reference to it
func (tracker *Tracker) Verified() []*Hit {
	return tracker.verified
}

// TotalScore sums the scores of all verified hits
func (tracker *Tracker) TotalScore() int {
	total := 0
	for _, hit := range tracker.verified {
		total += hit.score
	}
	return total
}

// ShotCount returns the number of verified hits
func (tracker *Tracker) ShotCount() int {
	return len(tracker.verified)
}

// FindCandidate returns the first candidate within tolerance of the point and
// whether one was found.
func (tracker *Tracker) FindCandidate(point Point, tolerance float64) (*Hit, bool) {
	return findWithin(tracker.candidates, point, tolerance)
}

// FindVerified returns the first verified hit within tolerance of the point and
// whether one was found.
func (tracker *Tracker) FindVerified(point Point, tolerance float64) (*Hit, bool) {
	return findWithin(tracker.verified, point, tolerance)
}

func findWithin(hits []*Hit, point Point, tolerance float64) (*Hit, bool) {
	for _, hit := range hits {
		if Distance(point, hit.point) <= tolerance {
			return hit, true
		}
	}
	return nil, false
}

// Sort reconciles one scored hit of the current frame against the registries.
// A hit matching an existing candidate raises that candidate's reputation and
// may promote it to verified; an unknown hit is inserted as a new candidate.
// Two near-identical hits of the same frame are not pre-merged here: the first
// becomes a candidate and the second raises its reputation.
func (tracker *Tracker) Sort(hit *Hit) {
	candidate, found := tracker.FindCandidate(hit.point, tracker.distTolerance)

	// the hit is a known candidate
	if found {
		tracker.bumpCandidate(candidate)
		return
	}

	// new candidate
	hit.seen = true
	tracker.candidates = append(tracker.candidates, hit)
}

// bumpCandidate registers a repeat observation of the candidate and promotes
// it to the verified registry once its reputation reaches the bar. Promotion
// moves the candidate object itself, keeping its accumulated position.
func (tracker *Tracker) bumpCandidate(candidate *Hit) {
	candidate.increaseRep()
	candidate.seen = true

	if candidate.eligible(tracker.minReputation) {
		tracker.verified = append(tracker.verified, candidate)
		tracker.removeCandidate(candidate)

		// find duplicate verified hits and eliminate them
		tracker.dedupVerified()
	}
}

// removeCandidate deletes the candidate from the registry. Removing an unknown
// hit is a no-op.
func (tracker *Tracker) removeCandidate(candidate *Hit) {
	for i, hit := range tracker.candidates {
		if hit.id == candidate.id {
			tracker.candidates = append(tracker.candidates[:i], tracker.candidates[i+1:]...)
			return
		}
	}
}

// Discharge lowers the reputation of candidates that were not observed during
// the last frame and evicts the ones whose reputation dropped to 0. Every
// surviving candidate starts the next frame unseen. Runs once per frame,
// whether or not the frame had a valid pose.
func (tracker *Tracker) Discharge() {
	remaining := make([]*Hit, 0, len(tracker.candidates))
	for _, candidate := range tracker.candidates {
		// candidate is not present during the current frame
		if !candidate.seen {
			candidate.decreaseRep()

			// candidate disqualified
			if candidate.reputation <= 0 {
				continue
			}
		}

		// get ready for the next frame
		candidate.seen = false
		remaining = append(remaining, candidate)
	}
	tracker.candidates = remaining
}

// Shift translates every tracked hit by the drift of the bullseye point since
// the hit was last positioned, so hits stay registered against the physical
// target rather than absolute frame coordinates. Call only for frames with a
// valid pose estimate.
func (tracker *Tracker) Shift(bullseye Point) {
	for _, hit := range tracker.candidates {
		hit.shiftTo(bullseye)
	}
	for _, hit := range tracker.verified {
		hit.shiftTo(bullseye)
	}
}

// dedupVerified removes verified hits that duplicate a nearby verified hit.
// Every pair is compared exactly once over a snapshot and removal is
// idempotent, so no pair is re-compared after a removal. A chain of three
// mutually close hits can therefore keep one violating pair until the next
// promotion runs the pass again.
func (tracker *Tracker) dedupVerified() {
	if len(tracker.verified) <= 1 {
		return
	}

	snapshot := make([]*Hit, len(tracker.verified))
	copy(snapshot, tracker.verified)
	removed := make(map[uuid.UUID]struct{})

	for i := 0; i < len(snapshot); i++ {
		for j := i + 1; j < len(snapshot); j++ {
			if Distance(snapshot[i].point, snapshot[j].point) >= tracker.distTolerance {
				continue
			}

			// keep the hit that sits closer to its own bullseye reference,
			// it is presumed to be the better localized one
			distI := Distance(snapshot[i].point, snapshot[i].bullseye)
			distJ := Distance(snapshot[j].point, snapshot[j].bullseye)
			if distI < distJ {
				removed[snapshot[j].id] = struct{}{}
			} else {
				removed[snapshot[i].id] = struct{}{}
			}
		}
	}

	if len(removed) == 0 {
		return
	}
	kept := make([]*Hit, 0, len(tracker.verified))
	for _, hit := range tracker.verified {
		if _, ok := removed[hit.id]; !ok {
			kept = append(kept, hit)
		}
	}
	tracker.verified = kept
}
