package track

import (
	"math"
	"testing"
)

func TestPromotion(t *testing.T) {
	tracker := NewTracker(30.0, 3)
	bullseye := Point{X: 300, Y: 300}

	// same physical impact observed across three consecutive frames
	observations := []Point{
		{X: 120, Y: 95},
		{X: 122, Y: 96},
		{X: 121, Y: 94},
	}

	for i, point := range observations {
		tracker.Sort(NewHit(point, 8, bullseye))
		tracker.Discharge()

		if i < len(observations)-1 {
			if len(tracker.Candidates()) != 1 || len(tracker.Verified()) != 0 {
				t.Errorf("frame %d: expected 1 candidate and 0 verified, got %d and %d",
					i, len(tracker.Candidates()), len(tracker.Verified()))
				return
			}
		}
	}

	// reaching the reputation bar moves the candidate within the same Sort call
	if len(tracker.Candidates()) != 0 {
		t.Errorf("promoted hit must leave the candidate registry, %d candidates remain", len(tracker.Candidates()))
	}
	if len(tracker.Verified()) != 1 {
		t.Errorf("expected exactly 1 verified hit, got %d", len(tracker.Verified()))
		return
	}
	if tracker.Verified()[0].GetScore() != 8 {
		t.Errorf("promotion must keep the original candidate object, score %d, expected 8", tracker.Verified()[0].GetScore())
	}
}

func TestDecayToEviction(t *testing.T) {
	tracker := NewTracker(30.0, 15)
	bullseye := Point{X: 300, Y: 300}

	tracker.Sort(NewHit(Point{X: 50, Y: 60}, 4, bullseye))
	tracker.Discharge()
	if len(tracker.Candidates()) != 1 {
		t.Errorf("seen candidate must survive the discharge pass, got %d candidates", len(tracker.Candidates()))
		return
	}

	// one frame without a matching detection drops reputation 1 -> 0
	tracker.Discharge()
	if len(tracker.Candidates()) != 0 {
		t.Errorf("candidate with reputation 0 must be evicted, got %d candidates", len(tracker.Candidates()))
	}
}

func TestDischargeResetsSeen(t *testing.T) {
	tracker := NewTracker(30.0, 15)
	bullseye := Point{X: 300, Y: 300}

	tracker.Sort(NewHit(Point{X: 50, Y: 60}, 4, bullseye))
	tracker.Sort(NewHit(Point{X: 51, Y: 61}, 4, bullseye))
	tracker.Discharge()

	for _, candidate := range tracker.Candidates() {
		if candidate.seen {
			t.Errorf("every surviving candidate must start the next frame unseen")
		}
	}
}

func TestRedundancyElimination(t *testing.T) {
	tracker := NewTracker(30.0, 15)
	bullseye := Point{X: 300, Y: 300}

	// two verified hits 5px apart, the second one sits closer to the bullseye
	farther := NewHit(Point{X: 120, Y: 100}, 7, bullseye)
	closer := NewHit(Point{X: 121, Y: 104}, 7, bullseye)
	tracker.verified = append(tracker.verified, farther, closer)

	tracker.dedupVerified()
	if len(tracker.Verified()) != 1 {
		t.Errorf("expected exactly 1 verified hit after elimination, got %d", len(tracker.Verified()))
		return
	}
	if tracker.Verified()[0].GetID() != closer.GetID() {
		t.Errorf("elimination must keep the hit closer to its own bullseye reference")
	}

	// registry is a fixed point: running the pass again removes nothing
	tracker.dedupVerified()
	if len(tracker.Verified()) != 1 {
		t.Errorf("second elimination pass must be a no-op, got %d verified", len(tracker.Verified()))
	}
}

func TestRedundancyEliminationChain(t *testing.T) {
	// Three mutually close hits: every close pair marks a loser exactly once,
	// so a hit winning both of its comparisons can end up as the sole
	// survivor even though its neighbours were far enough from each other.
	tracker := NewTracker(30.0, 15)
	bullseye := Point{X: 100, Y: 115}

	left := NewHit(Point{X: 80, Y: 100}, 6, bullseye)
	middle := NewHit(Point{X: 100, Y: 100}, 6, bullseye)
	right := NewHit(Point{X: 120, Y: 100}, 6, bullseye)
	tracker.verified = append(tracker.verified, left, middle, right)

	tracker.dedupVerified()

	if len(tracker.Verified()) != 1 {
		t.Errorf("expected single survivor of the chain, got %d", len(tracker.Verified()))
		return
	}
	if tracker.Verified()[0].GetID() != middle.GetID() {
		t.Errorf("the middle hit wins both pairwise comparisons and must survive")
	}
}

func TestDriftInvariance(t *testing.T) {
	tracker := NewTracker(30.0, 2)
	bullseye := Point{X: 300, Y: 300}

	points := []Point{
		{X: 120, Y: 95},
		{X: 240, Y: 310},
		{X: 410, Y: 150},
	}
	for _, point := range points {
		tracker.Sort(NewHit(point, 5, bullseye))
	}

	pairwiseBefore := Distance(points[0], points[1])

	// the pose estimate drifts by d = (7, -4)
	shifted := Point{X: 307, Y: 296}
	tracker.Shift(shifted)

	for i, hit := range tracker.Candidates() {
		movedX := hit.GetPoint().X - points[i].X
		movedY := hit.GetPoint().Y - points[i].Y
		if math.Abs(movedX-7) > eps || math.Abs(movedY+4) > eps {
			t.Errorf("hit %d moved by (%v, %v), expected (7, -4)", i, movedX, movedY)
		}
		if hit.GetBullseye() != shifted {
			t.Errorf("hit %d must store the new bullseye reference", i)
		}
	}

	pairwiseAfter := Distance(tracker.Candidates()[0].GetPoint(), tracker.Candidates()[1].GetPoint())
	if math.Abs(pairwiseBefore-pairwiseAfter) > eps {
		t.Errorf("relative distances must survive drift correction: %v != %v", pairwiseBefore, pairwiseAfter)
	}

	// shifting to the same bullseye again must not move anything
	tracker.Shift(shifted)
	if math.Abs(tracker.Candidates()[0].GetPoint().X-points[0].X-7) > eps {
		t.Errorf("repeated shift to the same bullseye must be a no-op")
	}
}

func TestMissingPoseFrames(t *testing.T) {
	// Frames without a pose estimate run only the discharge pass, which still
	// counts against unseen candidates.
	tracker := NewTracker(30.0, 15)
	bullseye := Point{X: 300, Y: 300}

	hit := NewHit(Point{X: 90, Y: 90}, 9, bullseye)
	tracker.Sort(hit)
	tracker.Sort(NewHit(Point{X: 91, Y: 91}, 9, bullseye))
	tracker.Sort(NewHit(Point{X: 89, Y: 90}, 9, bullseye))
	tracker.Discharge()
	if hit.GetReputation() != 3 {
		t.Errorf("expected reputation 3 after three in-frame observations, got %d", hit.GetReputation())
		return
	}

	// three pose-less frames in a row
	for i := 0; i < 3; i++ {
		tracker.Discharge()
	}
	if hit.GetReputation() != 0 {
		t.Errorf("expected reputation 0 after three missed frames, got %d", hit.GetReputation())
	}
	if len(tracker.Candidates()) != 0 {
		t.Errorf("candidate must be evicted the moment reputation reaches 0")
	}
}

func TestTrackSequence(t *testing.T) {
	// Emulates a short clip: one stable impact, one flickering false positive.
	detectionsPerFrame := [][]Point{
		{{X: 150, Y: 200}, {X: 400, Y: 90}},
		{{X: 151, Y: 201}},
		{{X: 150, Y: 199}},
		{{X: 152, Y: 200}, {X: 520, Y: 333}},
		{},
	}

	tracker := NewTracker(30.0, 4)
	bullseye := Point{X: 300, Y: 300}

	for _, frame := range detectionsPerFrame {
		for _, point := range frame {
			tracker.Sort(NewHit(point, 6, bullseye))
		}
		tracker.Discharge()
		tracker.Shift(bullseye)
	}

	if len(tracker.Verified()) != 1 {
		t.Errorf("expected the stable impact to be verified, got %d verified", len(tracker.Verified()))
	}
	if tracker.ShotCount() != 1 {
		t.Errorf("incorrect shot count: %d, expected: 1", tracker.ShotCount())
	}
	if tracker.TotalScore() != 6 {
		t.Errorf("incorrect total score: %d, expected: 6", tracker.TotalScore())
	}

	// both flickers appeared once each and have been discharged
	if len(tracker.Candidates()) != 0 {
		t.Errorf("expected no surviving candidates, got %d", len(tracker.Candidates()))
	}
}

func TestFindVerified(t *testing.T) {
	tracker := NewTracker(30.0, 15)
	bullseye := Point{X: 300, Y: 300}
	tracker.verified = append(tracker.verified, NewHit(Point{X: 100, Y: 100}, 9, bullseye))

	if _, found := tracker.FindVerified(Point{X: 110, Y: 100}, 30.0); !found {
		t.Errorf("expected to find a verified hit within tolerance")
	}
	if _, found := tracker.FindVerified(Point{X: 200, Y: 100}, 30.0); found {
		t.Errorf("expected no verified hit outside tolerance")
	}
	if _, found := tracker.FindCandidate(Point{X: 110, Y: 100}, 30.0); found {
		t.Errorf("verified hits must not be visible through the candidate lookup")
	}
}
