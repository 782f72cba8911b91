package track

import "github.com/google/uuid"

// Hit is a single detected or tracked point of impact on the target.
// A hit starts its life as a candidate with reputation 1. Repeat observations
// raise the reputation, missing observations lower it.
type Hit struct {
	id         uuid.UUID
	point      Point
	score      int
	reputation int
	bullseye   Point
	seen       bool
}

// NewHit creates a fresh hit at the given point with the given score.
// bullseye is the current bullseye location the hit was positioned against.
func NewHit(point Point, score int, bullseye Point) *Hit {
	return &Hit{
		id:         uuid.New(),
		point:      point,
		score:      score,
		reputation: 1,
		bullseye:   bullseye,
	}
}

// GetID returns hit's identifier
func (hit *Hit) GetID() uuid.UUID {
	return hit.id
}

// GetPoint returns hit's current position
func (hit *Hit) GetPoint() Point {
	return hit.point
}

// GetScore returns the score assigned to the hit at creation.
// A score of 0 means a miss.
func (hit *Hit) GetScore() int {
	return hit.score
}

// GetReputation returns hit's current reputation
func (hit *Hit) GetReputation() int {
	return hit.reputation
}

// GetBullseye returns the bullseye location this hit was last positioned against
func (hit *Hit) GetBullseye() Point {
	return hit.bullseye
}

// increaseRep raises the hit's reputation after another observation
func (hit *Hit) increaseRep() {
	hit.reputation++
}

// decreaseRep lowers the hit's reputation after a missed observation
func (hit *Hit) decreaseRep() {
	hit.reputation--
}

// eligible reports whether the hit's reputation reached the verification bar
func (hit *Hit) eligible(minReputation int) bool {
	return hit.reputation >= minReputation
}

// shiftTo translates the hit by the bullseye drift and stores the new reference
func (hit *Hit) shiftTo(bullseye Point) {
	hit.point.X += bullseye.X - hit.bullseye.X
	hit.point.Y += bullseye.Y - hit.bullseye.Y
	hit.bullseye = bullseye
}
