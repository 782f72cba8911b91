package track

import "testing"

func TestScoreDetection(t *testing.T) {
	scale := Scale{Horizontal: 1, Vertical: 1, Overall: 1}
	ringsAmount := 6
	innerDiam := 50.0
	bullseye := Point{X: 300, Y: 300}

	testCases := []struct {
		dist         float64
		correctScore int
	}{
		{0, 10},
		{25, 10},
		{49.9, 10},
		{50, 9},
		{125, 8},
		{275, 5},      // 10 - floor(275/50) = 5, lowest scoring ring
		{300, 0},      // 10 - 6 = 4 is under the lowest ring, miss
		{500, 0},      // 10 - 10 = 0, miss
		{100_000, 0},  // far off the target, still just a miss
	}

	for _, testCase := range testCases {
		det := Detection{Point: Point{X: 300, Y: 300 + testCase.dist}, Dist: testCase.dist, Bullseye: bullseye}
		hit := ScoreDetection(det, scale, ringsAmount, innerDiam)
		if hit.GetScore() != testCase.correctScore {
			t.Errorf("incorrect score for distance %v: %d, expected: %d", testCase.dist, hit.GetScore(), testCase.correctScore)
		}
		if hit.GetReputation() != 1 {
			t.Errorf("fresh hit must start with reputation 1, got %d", hit.GetReputation())
		}
		if hit.GetBullseye() != bullseye {
			t.Errorf("fresh hit must keep the supplied bullseye reference")
		}
	}
}

func TestScoreDetectionScaled(t *testing.T) {
	// A target filmed at twice the model size doubles the effective ring width
	scale := Scale{Horizontal: 1, Vertical: 1, Overall: 2}
	hit := ScoreDetection(Detection{Dist: 150}, scale, 6, 50.0)
	if hit.GetScore() != 9 {
		t.Errorf("incorrect scaled score: %d, expected: 9", hit.GetScore())
	}
}

func TestScoreMonotonicity(t *testing.T) {
	scale := Scale{Horizontal: 1, Vertical: 1, Overall: 1}
	prevScore := 10
	for dist := 0.0; dist <= 600.0; dist += 1.0 {
		hit := ScoreDetection(Detection{Dist: dist}, scale, 6, 50.0)
		if hit.GetScore() > prevScore {
			t.Errorf("score must not increase with distance: %d after %d at distance %v", hit.GetScore(), prevScore, dist)
			return
		}
		prevScore = hit.GetScore()
	}
	if prevScore != 0 {
		t.Errorf("score at maximum distance must be a miss, got %d", prevScore)
	}
}

func TestScoreboard(t *testing.T) {
	scale := Scale{Horizontal: 1, Vertical: 1, Overall: 1}
	dets := []Detection{
		{Point: Point{X: 300, Y: 300}, Dist: 0},
		{Point: Point{X: 300, Y: 575}, Dist: 275},
	}
	scoreboard := Scoreboard(dets, scale, 6, 50.0)
	if len(scoreboard) != 2 {
		t.Errorf("incorrect scoreboard size: %d, expected: 2", len(scoreboard))
		return
	}
	if scoreboard[0].GetScore() != 10 || scoreboard[1].GetScore() != 5 {
		t.Errorf("incorrect scores: %d and %d, expected: 10 and 5", scoreboard[0].GetScore(), scoreboard[1].GetScore())
	}
}
