package vision

import (
	"math"
	"testing"

	"github.com/hitscope/hitscope/track"
)

const (
	eps = 0.00001
)

// squarePose returns warped anchors of an axis-aligned 200x100 target placed
// at (100, 100), bullseye in the middle
func squareAnchors() []track.Point {
	return []track.Point{
		{X: 100, Y: 100},
		{X: 300, Y: 100},
		{X: 300, Y: 200},
		{X: 100, Y: 200},
		{X: 200, Y: 150},
		{X: 200, Y: 150},
	}
}

func TestVerticesAndEdges(t *testing.T) {
	vertices, bullseye, edges := verticesAndEdges(squareAnchors())

	if bullseye.X != 200 || bullseye.Y != 150 {
		t.Errorf("incorrect bullseye: %v", bullseye)
	}
	correctEdges := [4]float64{200, 100, 200, 100}
	for i := range edges {
		if math.Abs(edges[i]-correctEdges[i]) > eps {
			t.Errorf("incorrect edge %d: %v, expected: %v", i, edges[i], correctEdges[i])
		}
	}
	if vertices[4].X != 200 || vertices[4].Y != 150 {
		t.Errorf("incorrect center vertex: %v", vertices[4])
	}
}

func TestModelScale(t *testing.T) {
	_, _, edges := verticesAndEdges(squareAnchors())

	// the warped target is exactly the model size
	scale := modelScale(edges, 200, 100)
	if math.Abs(scale.Overall-1.0) > eps {
		t.Errorf("incorrect overall scale: %v, expected: 1", scale.Overall)
	}
	if math.Abs(scale.Horizontal-2.0) > eps || math.Abs(scale.Vertical-0.5) > eps {
		t.Errorf("incorrect axis ratios: %v, %v", scale.Horizontal, scale.Vertical)
	}

	// the same warp of a model twice the size means the target is at half scale
	scale = modelScale(edges, 400, 200)
	if math.Abs(scale.Overall-0.5) > eps {
		t.Errorf("incorrect overall scale: %v, expected: 0.5", scale.Overall)
	}
}

func TestValidPose(t *testing.T) {
	vertices, _, edges := verticesAndEdges(squareAnchors())

	if !validPose(vertices, edges, 640, 480, 0.2) {
		t.Errorf("a clean axis-aligned pose must be valid")
	}
}

func TestValidPoseOutOfBounds(t *testing.T) {
	anchors := squareAnchors()
	anchors[0].X = -5
	vertices, _, edges := verticesAndEdges(anchors)

	if validPose(vertices, edges, 640, 480, 0.2) {
		t.Errorf("a pose with a vertex outside the frame must be invalid")
	}
}

func TestValidPoseStretched(t *testing.T) {
	// bottom edge is 40% longer than the top one
	anchors := []track.Point{
		{X: 100, Y: 100},
		{X: 300, Y: 100},
		{X: 340, Y: 200},
		{X: 60, Y: 200},
		{X: 200, Y: 150},
		{X: 200, Y: 150},
	}
	vertices, _, edges := verticesAndEdges(anchors)

	if validPose(vertices, edges, 640, 480, 0.2) {
		t.Errorf("an overly stretched pose must be invalid")
	}
}

func TestValidPoseDisordered(t *testing.T) {
	// C ended up above B, the rectangle ordering is broken
	anchors := squareAnchors()
	anchors[2].Y = 90
	vertices, _, edges := verticesAndEdges(anchors)

	if validPose(vertices, edges, 640, 480, 0.2) {
		t.Errorf("a pose with disordered vertices must be invalid")
	}
}
