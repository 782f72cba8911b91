package track

import (
	"gonum.org/v1/gonum/stat"
)

// Grouping summarizes the spatial spread of a set of hits on the target.
type Grouping struct {
	// Extremes are the two farthest hits of the group
	Extremes [2]Point
	// Diameter is the distance between the two extremes [px]
	Diameter float64
	// Mean is the mean point of impact
	Mean Point
	// StdDevX and StdDevY describe the spread of the group along each axis
	StdDevX float64
	StdDevY float64
}

// MeasureGrouping calculates grouping statistics over the given hits.
// Returns false when there are fewer than two hits, which is too few to form
// a group. The diameter uses the two-sweep farthest point walk: start at any
// hit, walk to the farthest hit from it, then to the farthest hit from that
// one.
func MeasureGrouping(hits []*Hit) (Grouping, bool) {
	if len(hits) < 2 {
		return Grouping{}, false
	}

	pointB := farthestFrom(hits, hits[0].point)
	pointA := farthestFrom(hits, pointB)

	xs := make([]float64, len(hits))
	ys := make([]float64, len(hits))
	for i, hit := range hits {
		xs[i] = hit.point.X
		ys[i] = hit.point.Y
	}

	return Grouping{
		Extremes: [2]Point{pointA, pointB},
		Diameter: Distance(pointA, pointB),
		Mean: Point{
			X: stat.Mean(xs, nil),
			Y: stat.Mean(ys, nil),
		},
		StdDevX: stat.StdDev(xs, nil),
		StdDevY: stat.StdDev(ys, nil),
	}, true
}

// farthestFrom returns the hit position with the largest distance from the point
func farthestFrom(hits []*Hit, point Point) Point {
	farthest := hits[0].point
	maxDist := -1.0
	for _, hit := range hits {
		if dist := Distance(hit.point, point); dist > maxDist {
			maxDist = dist
			farthest = hit.point
		}
	}
	return farthest
}
