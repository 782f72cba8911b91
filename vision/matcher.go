package vision

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/hitscope/hitscope/track"
)

const (
	// Lowe ratio test threshold for descriptor matches
	defaultMatchRatio = 0.7
	// Maximum stretch between opposite warped edges
	defaultStretchThreshold = 0.2
	// Minimum good matches needed to attempt a homography
	minHomographyMatches = 4
)

// Matcher locates the reference target model inside video frames.
// The model image is zero-padded to the frame size and its SIFT features are
// computed once; every frame is then matched against them.
type Matcher struct {
	sift      gocv.SIFT
	bf        gocv.BFMatcher
	padModel  gocv.Mat
	modelKeys []gocv.KeyPoint
	modelDesc gocv.Mat
	// A, B, C, D corners, center E and the bullseye, in padded model coordinates
	anchors []track.Point
	modelW  int
	modelH  int
	frameW  int
	frameH  int
	ratio   float64
	stretch float64
}

// NewMatcher creates a matcher for the given reference model image.
// bullseye is the bullseye location inside the (unpadded) model image.
func NewMatcher(model gocv.Mat, bullseye image.Point, frameW, frameH int) (*Matcher, error) {
	modelH := model.Rows()
	modelW := model.Cols()
	if modelW > frameW || modelH > frameH {
		return nil, errors.Errorf("model image %dx%d does not fit the %dx%d frame", modelW, modelH, frameW, frameH)
	}

	// place the model in the center of a frame-sized canvas
	vertical := (frameH - modelH) / 2
	horizontal := (frameW - modelW) / 2
	padModel := gocv.NewMat()
	gocv.CopyMakeBorder(model, &padModel, vertical, vertical, horizontal, horizontal, gocv.BorderConstant, color.RGBA{})

	anchors := []track.Point{
		{X: float64(horizontal), Y: float64(vertical)},
		{X: float64(horizontal + modelW), Y: float64(vertical)},
		{X: float64(horizontal + modelW), Y: float64(vertical + modelH)},
		{X: float64(horizontal), Y: float64(vertical + modelH)},
		{X: float64(horizontal) + float64(modelW)/2, Y: float64(vertical) + float64(modelH)/2},
		{X: float64(horizontal + bullseye.X), Y: float64(vertical + bullseye.Y)},
	}

	sift := gocv.NewSIFT()
	mask := gocv.NewMat()
	defer mask.Close()
	modelKeys, modelDesc := sift.DetectAndCompute(padModel, mask)
	if len(modelKeys) == 0 {
		padModel.Close()
		modelDesc.Close()
		if err := sift.Close(); err != nil {
			return nil, errors.Wrap(err, "can't close SIFT detector")
		}
		return nil, errors.New("no keypoints found in the model image")
	}

	return &Matcher{
		sift:      sift,
		bf:        gocv.NewBFMatcher(),
		padModel:  padModel,
		modelKeys: modelKeys,
		modelDesc: modelDesc,
		anchors:   anchors,
		modelW:    modelW,
		modelH:    modelH,
		frameW:    frameW,
		frameH:    frameH,
		ratio:     defaultMatchRatio,
		stretch:   defaultStretchThreshold,
	}, nil
}

// Close releases the matcher's OpenCV resources
func (m *Matcher) Close() error {
	if err := m.sift.Close(); err != nil {
		return errors.Wrap(err, "can't close SIFT detector")
	}
	if err := m.bf.Close(); err != nil {
		return errors.Wrap(err, "can't close BF matcher")
	}
	if err := m.padModel.Close(); err != nil {
		return errors.Wrap(err, "can't close padded model")
	}
	return m.modelDesc.Close()
}

// PoseEstimate is the per-frame result of matching the model into a frame.
// The bullseye point is available as soon as a homography could be computed;
// the full pose is only set when the homography also passed the sanity checks
// and the frame is trustworthy enough for impact detection.
type PoseEstimate struct {
	Bullseye   track.Point
	Pose       *TargetPose
	homography gocv.Mat
}

// Close releases the underlying homography
func (e *PoseEstimate) Close() error {
	return e.homography.Close()
}

// EstimatePose matches the model into the frame. Returns false when the
// target could not be located at all; this is expected for frames where
// tracking fails and is not an error.
func (m *Matcher) EstimatePose(frame gocv.Mat) (*PoseEstimate, bool) {
	mask := gocv.NewMat()
	frameKeys, frameDesc := m.sift.DetectAndCompute(frame, mask)
	mask.Close()
	defer frameDesc.Close()
	if len(frameKeys) == 0 {
		return nil, false
	}

	matches := m.ratioMatch(frameDesc)
	if len(matches) < minHomographyMatches {
		return nil, false
	}

	homography, ok := m.findHomography(frameKeys, matches)
	if !ok {
		return nil, false
	}

	warped, ok := m.transformAnchors(homography)
	if !ok {
		homography.Close()
		return nil, false
	}

	vertices, bullseye, edges := verticesAndEdges(warped)
	estimate := &PoseEstimate{
		Bullseye:   bullseye,
		homography: homography,
	}

	if validPose(vertices, edges, float64(m.frameW), float64(m.frameH), m.stretch) {
		estimate.Pose = &TargetPose{
			Vertices: vertices,
			Bullseye: bullseye,
			Edges:    edges,
			Scale:    modelScale(edges, float64(m.modelW), float64(m.modelH)),
		}
	}
	return estimate, true
}

// WarpModel warps the padded model image onto the frame plane of the estimate.
// The caller owns the returned mat.
func (m *Matcher) WarpModel(estimate *PoseEstimate) gocv.Mat {
	warped := gocv.NewMat()
	gocv.WarpPerspective(m.padModel, &warped, estimate.homography, image.Pt(m.frameW, m.frameH))
	return warped
}

// ratioMatch runs a KNN match of model descriptors against the frame and keeps
// the matches passing the Lowe ratio test
func (m *Matcher) ratioMatch(frameDesc gocv.Mat) []gocv.DMatch {
	knn := m.bf.KnnMatch(m.modelDesc, frameDesc, 2)
	best := make([]gocv.DMatch, 0, len(knn))
	for _, pair := range knn {
		if len(pair) < 2 {
			continue
		}
		if pair[0].Distance < m.ratio*pair[1].Distance {
			best = append(best, pair[0])
		}
	}
	return best
}

// findHomography estimates the RANSAC homography from model keypoints onto
// frame keypoints
func (m *Matcher) findHomography(frameKeys []gocv.KeyPoint, matches []gocv.DMatch) (gocv.Mat, bool) {
	srcPoints := gocv.NewMatWithSize(len(matches), 1, gocv.MatTypeCV64FC2)
	defer srcPoints.Close()
	dstPoints := gocv.NewMatWithSize(len(matches), 1, gocv.MatTypeCV64FC2)
	defer dstPoints.Close()

	for i, match := range matches {
		query := m.modelKeys[match.QueryIdx]
		train := frameKeys[match.TrainIdx]
		srcPoints.SetDoubleAt(i, 0, query.X)
		srcPoints.SetDoubleAt(i, 1, query.Y)
		dstPoints.SetDoubleAt(i, 0, train.X)
		dstPoints.SetDoubleAt(i, 1, train.Y)
	}

	ransacMask := gocv.NewMat()
	defer ransacMask.Close()
	homography := gocv.FindHomography(srcPoints, &dstPoints, gocv.HomographyMethodRANSAC, 5, &ransacMask, 2000, 0.995)
	if homography.Empty() {
		homography.Close()
		return gocv.Mat{}, false
	}
	return homography, true
}

// transformAnchors warps the model anchor points into frame coordinates
func (m *Matcher) transformAnchors(homography gocv.Mat) ([]track.Point, bool) {
	src := gocv.NewMatWithSize(len(m.anchors), 1, gocv.MatTypeCV32FC2)
	defer src.Close()
	for i, anchor := range m.anchors {
		src.SetFloatAt(i, 0, float32(anchor.X))
		src.SetFloatAt(i, 1, float32(anchor.Y))
	}

	dst := gocv.NewMat()
	defer dst.Close()
	gocv.PerspectiveTransform(src, &dst, homography)
	if dst.Rows() != len(m.anchors) {
		return nil, false
	}

	warped := make([]track.Point, len(m.anchors))
	for i := range warped {
		warped[i] = track.Point{
			X: float64(dst.GetFloatAt(i, 0)),
			Y: float64(dst.GetFloatAt(i, 1)),
		}
	}
	return warped, true
}
