package track

import (
	"image"
	"math"
)

// Point is a 2D pixel coordinate on a frame.
type Point struct {
	X float64
	Y float64
}

func NewPoint(x, y float64) Point {
	return Point{
		X: x,
		Y: y,
	}
}

func NewPointFrom(point image.Point) Point {
	return Point{
		X: float64(point.X),
		Y: float64(point.Y),
	}
}

// Scale describes the size of the observed target relative to the reference model.
type Scale struct {
	// Average horizontal edge length divided by average vertical edge length
	Horizontal float64
	// Average vertical edge length divided by average horizontal edge length
	Vertical float64
	// Estimated observed target size divided by the reference model size
	Overall float64
}

// Detection is a single raw impact candidate produced by the vision collaborator
// for one frame. Coordinates are assumed to be finite; the caller filters
// malformed values before handing detections to the tracker.
type Detection struct {
	// Point is the suspected impact location
	Point Point
	// Dist is the distance of the impact from the target's bullseye point
	Dist float64
	// Bullseye is the bullseye location the distance was measured against
	Bullseye Point
}

// Distance returns euclidean distance between two points
func Distance(p1, p2 Point) float64 {
	return math.Sqrt(math.Pow(p1.X-p2.X, 2) + math.Pow(p1.Y-p2.Y, 2))
}
