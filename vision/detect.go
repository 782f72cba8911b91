package vision

import (
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"

	"github.com/hitscope/hitscope/track"
)

const (
	// Binary threshold applied to the background difference
	diffThreshold = 20
	// Samples taken along a contour's main axis to judge its shape
	contourShapeSamples = 5
)

// Detector extracts suspect impact marks from a frame by differencing it
// against the warped reference model.
type Detector struct {
	ringsAmount int
	innerDiam   float64
}

// NewDetector creates a detector for a target with the given ring layout
func NewDetector(ringsAmount int, innerDiam float64) *Detector {
	return &Detector{
		ringsAmount: ringsAmount,
		innerDiam:   innerDiam,
	}
}

// Detect returns the raw impact candidates of the frame. warpedModel is the
// reference model warped onto the frame plane of the pose.
func (d *Detector) Detect(frame, warpedModel gocv.Mat, pose *TargetPose) []track.Detection {
	diff := subtractBackground(warpedModel, frame)
	defer diff.Close()

	estimatedRadius := float64(d.ringsAmount) * d.innerDiam * pose.Scale.Overall
	radius, emphasized := emphasizeLines(diff, pose.Bullseye, estimatedRadius)
	defer emphasized.Close()

	contours := reproduceProjectileContours(emphasized, pose.Bullseye, radius)
	return suspectHits(contours, pose)
}

// subtractBackground calculates the grayscale difference between the warped
// model and the frame, blanking everything outside the warped model area.
func subtractBackground(query, subtrahend gocv.Mat) gocv.Mat {
	grayQuery := gocv.NewMat()
	defer grayQuery.Close()
	graySubtrahend := gocv.NewMat()
	defer graySubtrahend.Close()
	gocv.CvtColor(query, &grayQuery, gocv.ColorBGRToGray)
	gocv.CvtColor(subtrahend, &graySubtrahend, gocv.ColorBGRToGray)

	kernel := image.Pt(3, 3)
	gocv.GaussianBlur(grayQuery, &grayQuery, kernel, 0, 0, gocv.BorderDefault)
	gocv.GaussianBlur(graySubtrahend, &graySubtrahend, kernel, 0, 0, gocv.BorderDefault)

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(graySubtrahend, grayQuery, &diff)

	// the zero-padded model area carries no target, mask it away
	modelArea := gocv.NewMat()
	defer modelArea.Close()
	gocv.Threshold(grayQuery, &modelArea, 0, 0xff, gocv.ThresholdBinary)

	masked := gocv.NewMat()
	gocv.BitwiseAndWithMask(diff, diff, &masked, modelArea)
	return masked
}

// emphasizeLines finds the target's outer ring, drops everything beyond it and
// emphasizes the straight segments left in the difference image. Returns the
// detected outer radius and the emphasized image.
func emphasizeLines(img gocv.Mat, bullseye track.Point, estimatedRadius float64) (float64, gocv.Mat) {
	circles := gocv.NewMat()
	defer circles.Close()
	gocv.HoughCirclesWithParams(img, &circles, gocv.HoughGradient, 1, 20,
		50, 30, 0, int(estimatedRadius*1.05))

	// use the largest detected circle, fall back to the rough estimation
	radius := estimatedRadius
	largest := -1.0
	for i := 0; i < circles.Cols(); i++ {
		circle := circles.GetVecfAt(0, i)
		if len(circle) >= 3 && float64(circle[2]) > largest {
			largest = float64(circle[2])
		}
	}
	if largest > 0 {
		radius = largest
	}

	masked := maskBeyondRadius(img, bullseye, radius)
	defer masked.Close()

	gocv.Threshold(masked, &masked, diffThreshold, 0xff, gocv.ThresholdBinary)
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
	defer kernel.Close()
	gocv.MorphologyEx(masked, &masked, gocv.MorphOpen, kernel)

	lines := gocv.NewMat()
	defer lines.Close()
	gocv.HoughLinesPWithParams(masked, &lines, 2, math.Pi/180, 120, 20, 0)

	emphasized := gocv.Zeros(img.Rows(), img.Cols(), img.Type())
	white := color.RGBA{R: 0xff, G: 0xff, B: 0xff}
	for i := 0; i < lines.Rows(); i++ {
		line := lines.GetVeciAt(i, 0)
		if len(line) < 4 {
			continue
		}
		p1 := image.Pt(int(line[0]), int(line[1]))
		p2 := image.Pt(int(line[2]), int(line[3]))
		gocv.Line(&emphasized, p1, p2, white, 5)
	}

	return radius, emphasized
}

// maskBeyondRadius zeroes all pixels farther than radius from the bullseye
func maskBeyondRadius(img gocv.Mat, bullseye track.Point, radius float64) gocv.Mat {
	circleMask := gocv.Zeros(img.Rows(), img.Cols(), gocv.MatTypeCV8U)
	defer circleMask.Close()
	center := image.Pt(int(bullseye.X), int(bullseye.Y))
	gocv.Circle(&circleMask, center, int(radius), color.RGBA{R: 0xff, G: 0xff, B: 0xff}, -1)

	masked := gocv.NewMat()
	gocv.BitwiseAndWithMask(img, img, &masked, circleMask)
	return masked
}

// reproduceProjectileContours reconstructs the contours of the actual
// projectiles: the straight (non-convex) contours are extended outwards the
// target so segments belonging to one projectile join into a single contour.
func reproduceProjectileContours(img gocv.Mat, bullseye track.Point, radius float64) [][]image.Point {
	raw := gocv.FindContours(img, gocv.RetrievalTree, gocv.ChainApproxNone)
	defer raw.Close()

	blank := gocv.Zeros(img.Rows(), img.Cols(), img.Type())
	defer blank.Close()
	for _, contour := range raw.ToPoints() {
		if len(contour) == 0 || !isContourStraight(contour) {
			continue
		}
		extendContourLine(&blank, contour, bullseye, radius)
	}

	// clear the noise that the extension pushed outside the target
	masked := maskBeyondRadius(blank, bullseye, radius)
	defer masked.Close()
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(3, 3))
	defer kernel.Close()
	gocv.MorphologyEx(masked, &masked, gocv.MorphClose, kernel)

	joined := gocv.FindContours(masked, gocv.RetrievalTree, gocv.ChainApproxNone)
	defer joined.Close()
	return joined.ToPoints()
}

// isContourStraight reports whether the contour is more of a straight sliver
// than a convex (moon-like) shape: points sampled along its main axis must all
// stay inside the contour.
func isContourStraight(contour []image.Point) bool {
	pointA := contourPoint(contour, 0)
	pointB := farthestContourPoint(contour, pointA)
	pointA = farthestContourPoint(contour, pointB)

	xStep := (pointB.X - pointA.X) / contourShapeSamples
	yStep := (pointB.Y - pointA.Y) / contourShapeSamples

	// contour is a very small square
	if xStep == 0 || yStep == 0 {
		return false
	}

	pv := gocv.NewPointVectorFromPoints(contour)
	defer pv.Close()
	for i := 0; i < contourShapeSamples; i++ {
		sample := image.Pt(int(pointA.X+float64(i)*xStep), int(pointA.Y+float64(i)*yStep))
		if gocv.PointPolygonTest(pv, sample, false) < 0 {
			return false
		}
	}
	return true
}

// extendContourLine draws a line over the contour's main axis, extended
// outwards the target by length pixels, onto img
func extendContourLine(img *gocv.Mat, contour []image.Point, bullseye track.Point, length float64) {
	pv := gocv.NewPointVectorFromPoints(contour)
	defer pv.Close()
	rect := gocv.MinAreaRect(pv)
	if len(rect.Points) < 4 {
		return
	}

	a, b, c, d := rect.Points[0], rect.Points[1], rect.Points[2], rect.Points[3]

	// midpoints of the two shorter box edges
	var alpha, beta image.Point
	if track.Distance(track.NewPointFrom(a), track.NewPointFrom(b)) < track.Distance(track.NewPointFrom(b), track.NewPointFrom(c)) {
		alpha = midpoint(a, b)
		beta = midpoint(c, d)
	} else {
		alpha = midpoint(b, c)
		beta = midpoint(a, d)
	}

	// the edge closer to the bullseye is the projectile's tip
	front, rear := alpha, beta
	if track.Distance(track.NewPointFrom(beta), bullseye) < track.Distance(track.NewPointFrom(alpha), bullseye) {
		front, rear = beta, alpha
	}

	dirX := float64(rear.X - front.X)
	dirY := float64(rear.Y - front.Y)
	magnitude := math.Sqrt(dirX*dirX + dirY*dirY)
	if magnitude == 0 {
		return
	}
	end := image.Pt(
		front.X+int(dirX/magnitude*length),
		front.Y+int(dirY/magnitude*length),
	)

	gocv.Line(img, front, end, color.RGBA{R: 0xff, B: 0xff}, 4)
}

// suspectHits converts the reproduced projectile contours into raw detections.
// The contour endpoint closer to the bullseye is the impact tip; its position
// is straightened by the axis scales to undo the oval distortion of the
// warped target.
func suspectHits(contours [][]image.Point, pose *TargetPose) []track.Detection {
	detections := make([]track.Detection, 0, len(contours))
	cornerA := pose.Vertices[0]

	for _, contour := range contours {
		if len(contour) == 0 {
			continue
		}
		pointA := contourPoint(contour, 0)
		pointB := farthestContourPoint(contour, pointA)
		pointA = farthestContourPoint(contour, pointB)

		tip := pointA
		if track.Distance(pointB, pose.Bullseye) < track.Distance(pointA, pose.Bullseye) {
			tip = pointB
		}

		detections = append(detections, track.Detection{
			Point: track.Point{
				X: (tip.X-cornerA.X)*pose.Scale.Horizontal + cornerA.X,
				Y: (tip.Y-cornerA.Y)*pose.Scale.Vertical + cornerA.Y,
			},
			Dist:     track.Distance(tip, pose.Bullseye),
			Bullseye: pose.Bullseye,
		})
	}
	return detections
}

func contourPoint(contour []image.Point, i int) track.Point {
	return track.NewPointFrom(contour[i])
}

// farthestContourPoint returns the contour point with the largest distance
// from the given point
func farthestContourPoint(contour []image.Point, point track.Point) track.Point {
	farthest := track.NewPointFrom(contour[0])
	maxDist := -1.0
	for _, candidate := range contour {
		converted := track.NewPointFrom(candidate)
		if dist := track.Distance(converted, point); dist > maxDist {
			maxDist = dist
			farthest = converted
		}
	}
	return farthest
}

func midpoint(p1, p2 image.Point) image.Point {
	return image.Pt((p1.X+p2.X)/2, (p1.Y+p2.Y)/2)
}
