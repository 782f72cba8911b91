// Package vision locates the reference target inside video frames and extracts
// suspect impact marks from them. It is the pixel-level collaborator feeding
// the track package; everything here is stateless per frame except the
// matcher's precomputed model features.
package vision

import (
	"github.com/hitscope/hitscope/track"
)

// TargetPose describes where and how the reference target sits in a frame.
type TargetPose struct {
	// Vertices are the warped A, B, C, D corners and the center E:
	// A ----------- B
	// |             |
	// |      E      |
	// |             |
	// D ----------- C
	Vertices [5]track.Point
	// Bullseye is the warped bullseye point of the target
	Bullseye track.Point
	// Edges are the lengths of the AB, BC, CD and DA edges
	Edges [4]float64
	// Scale relates the observed target size to the reference model
	Scale track.Scale
}

// verticesAndEdges splits the warped anchor points into the pose vertices,
// the bullseye point and the edge lengths.
func verticesAndEdges(warped []track.Point) ([5]track.Point, track.Point, [4]float64) {
	var vertices [5]track.Point
	copy(vertices[:], warped)
	bullseye := warped[5]

	edges := [4]float64{
		track.Distance(warped[0], warped[1]),
		track.Distance(warped[1], warped[2]),
		track.Distance(warped[2], warped[3]),
		track.Distance(warped[3], warped[0]),
	}
	return vertices, bullseye, edges
}

// modelScale calculates the scale of the warped transformation relative to the
// reference model's pixel size.
func modelScale(edges [4]float64, modelW, modelH float64) track.Scale {
	horizontalEdge := (edges[0] + edges[2]) / 2
	verticalEdge := (edges[1] + edges[3]) / 2
	horizontalScale := horizontalEdge / modelW
	verticalScale := verticalEdge / modelH

	return track.Scale{
		Horizontal: horizontalEdge / verticalEdge,
		Vertical:   verticalEdge / horizontalEdge,
		Overall:    (horizontalScale + verticalScale) / 2,
	}
}

// validPose checks whether a warped transformation is trustworthy, or rather
// relies on too many outlier matches. The vertices must keep their rectangle
// ordering (possibly upside down), the opposite edges must not be stretched
// against each other beyond the threshold, and no vertex may leave the frame.
func validPose(vertices [5]track.Point, edges [4]float64, frameW, frameH float64, stretchThreshold float64) bool {
	a, b, c, d, e := vertices[0], vertices[1], vertices[2], vertices[3], vertices[4]

	upsidedown := b.X < a.X
	var cOrdered, dOrdered, eOrdered bool
	if upsidedown {
		cOrdered = c.X < d.X && c.Y < b.Y
		dOrdered = d.Y < a.Y
		eOrdered = e.X < d.X && e.X > b.X
	} else {
		cOrdered = c.X > d.X && c.Y > b.Y
		dOrdered = d.Y > a.Y
		eOrdered = e.X > d.X && e.X < b.X
	}

	ab, bc, cd, da := edges[0], edges[1], edges[2], edges[3]
	unstretchedHor := ab/cd >= 1-stretchThreshold && ab/cd <= 1+stretchThreshold
	unstretchedVer := bc/da >= 1-stretchThreshold && bc/da <= 1+stretchThreshold

	bound := frameW
	if frameH > bound {
		bound = frameH
	}
	for _, vertex := range vertices {
		if vertex.X < 0 || vertex.Y < 0 || vertex.X > bound || vertex.Y > bound {
			return false
		}
	}

	return unstretchedHor && unstretchedVer && cOrdered && dOrdered && eOrdered
}
