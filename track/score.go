package track

// ScoreDetection turns a raw detection into a scored hit.
// The inner ring diameter is scaled by the observed target size, and every
// further ring lowers the score by one: score = 10 - floor(dist / scaledDiam).
// A score under the lowest available ring is a miss and becomes 0; a score
// above 10 is clamped to 10. Pure function, no registry side effects.
func ScoreDetection(det Detection, scale Scale, ringsAmount int, innerDiam float64) *Hit {
	scaledDiam := innerDiam * scale.Overall
	score := 10 - int(det.Dist/scaledDiam)

	// clamp score between 10 and the minimum available score
	if score < 10-ringsAmount+1 {
		score = 0
	} else if score > 10 {
		score = 10
	}

	return NewHit(det.Point, score, det.Bullseye)
}

// Scoreboard scores a whole frame of raw detections
func Scoreboard(dets []Detection, scale Scale, ringsAmount int, innerDiam float64) []*Hit {
	scoreboard := make([]*Hit, 0, len(dets))
	for _, det := range dets {
		scoreboard = append(scoreboard, ScoreDetection(det, scale, ringsAmount, innerDiam))
	}
	return scoreboard
}
