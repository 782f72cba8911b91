// Package video runs the frame-by-frame analysis pipeline: locate the target,
// detect impact candidates, reconcile them into the tracker and write the
// annotated output video.
package video

import (
	"image"
	"io"
	"log/slog"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/hitscope/hitscope/sketch"
	"github.com/hitscope/hitscope/track"
	"github.com/hitscope/hitscope/vision"
)

const outputFPS = 24.0

// Options configures an Analyzer.
type Options struct {
	// VideoPath is the video to analyze
	VideoPath string
	// ModelPath is an image of the target that appears in the video
	ModelPath string
	// Bullseye is the bullseye location inside the model image
	Bullseye image.Point
	// RingsAmount is the number of scoring rings on the target
	RingsAmount int
	// InnerDiameterPx is the diameter of the innermost ring in the model [px]
	InnerDiameterPx float64
	// DistanceTolerance is the radius under which two hits count as one [px]
	DistanceTolerance float64
	// MinReputation is the reputation a candidate needs to become verified
	MinReputation int
	// StrictMatching reconciles each frame through optimal assignment
	// instead of first-match-wins
	StrictMatching bool
	// SmoothCenter runs the bullseye estimate through a Kalman filter
	SmoothCenter bool
	// MeasureUnit converts pixels to the display unit
	MeasureUnit float64
	// MeasureName is the display unit suffix
	MeasureName string
	// Logger receives progress events. nil discards them
	Logger *slog.Logger
}

// Analyzer processes a video stream frame by frame.
type Analyzer struct {
	capture  *gocv.VideoCapture
	matcher  *vision.Matcher
	detector *vision.Detector
	tracker  *track.Tracker
	smoother *vision.CenterSmoother
	sketcher *sketch.Sketcher
	log      *slog.Logger

	frameW      int
	frameH      int
	ringsAmount int
	innerDiam   float64
	strict      bool
}

// NewAnalyzer opens the video and prepares the pipeline around its first frame.
func NewAnalyzer(opts Options) (*Analyzer, error) {
	capture, err := gocv.VideoCaptureFile(opts.VideoPath)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open video %s", opts.VideoPath)
	}

	sample := gocv.NewMat()
	defer sample.Close()
	if ok := capture.Read(&sample); !ok || sample.Empty() {
		capture.Close()
		return nil, errors.Errorf("can't read a sample frame from %s", opts.VideoPath)
	}
	frameW := sample.Cols()
	frameH := sample.Rows()

	model := gocv.IMRead(opts.ModelPath, gocv.IMReadColor)
	defer model.Close()
	if model.Empty() {
		capture.Close()
		return nil, errors.Errorf("can't read model image %s", opts.ModelPath)
	}

	matcher, err := vision.NewMatcher(model, opts.Bullseye, frameW, frameH)
	if err != nil {
		capture.Close()
		return nil, errors.Wrap(err, "can't prepare model matcher")
	}

	var smoother *vision.CenterSmoother
	if opts.SmoothCenter {
		smoother = vision.NewCenterSmoother(1.0 / outputFPS)
	}

	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Analyzer{
		capture:     capture,
		matcher:     matcher,
		detector:    vision.NewDetector(opts.RingsAmount, opts.InnerDiameterPx),
		tracker:     track.NewTracker(opts.DistanceTolerance, opts.MinReputation),
		smoother:    smoother,
		sketcher:    sketch.NewSketcher(opts.MeasureUnit, opts.MeasureName),
		log:         log,
		frameW:      frameW,
		frameH:      frameH,
		ringsAmount: opts.RingsAmount,
		innerDiam:   opts.InnerDiameterPx,
		strict:      opts.StrictMatching,
	}, nil
}

// Close releases the analyzer's OpenCV resources
func (analyzer *Analyzer) Close() error {
	if err := analyzer.matcher.Close(); err != nil {
		return errors.Wrap(err, "can't close matcher")
	}
	return analyzer.capture.Close()
}

// Tracker exposes the underlying registries for reporting
func (analyzer *Analyzer) Tracker() *track.Tracker {
	return analyzer.tracker
}

// Run analyzes the whole video and writes the annotated copy to outputPath.
func (analyzer *Analyzer) Run(outputPath string) error {
	writer, err := gocv.VideoWriterFile(outputPath, "mp4v", outputFPS, analyzer.frameW, analyzer.frameH, true)
	if err != nil {
		return errors.Wrapf(err, "can't open output video %s", outputPath)
	}
	defer writer.Close()

	frame := gocv.NewMat()
	defer frame.Close()

	frameIndex := 0
	for {
		if ok := analyzer.capture.Read(&frame); !ok || frame.Empty() {
			analyzer.log.Info("video stream is over",
				slog.Int("frames", frameIndex),
				slog.Int("shots", analyzer.tracker.ShotCount()),
				slog.Int("total_score", analyzer.tracker.TotalScore()))
			return nil
		}
		frameIndex++

		analyzer.analyzeFrame(&frame)
		analyzer.annotate(&frame)

		if err := writer.Write(frame); err != nil {
			return errors.Wrapf(err, "can't write frame %d", frameIndex)
		}

		if frameIndex%100 == 0 {
			analyzer.log.Info("progress",
				slog.Int("frame", frameIndex),
				slog.Int("candidates", len(analyzer.tracker.Candidates())),
				slog.Int("verified", analyzer.tracker.ShotCount()))
		}
	}
}

// analyzeFrame runs one cycle of the tracking pipeline. The discharge pass
// runs on every frame: a frame the target can't be found in still counts
// against unseen candidates.
func (analyzer *Analyzer) analyzeFrame(frame *gocv.Mat) {
	estimate, ok := analyzer.matcher.EstimatePose(*frame)

	if ok && estimate.Pose != nil {
		warped := analyzer.matcher.WarpModel(estimate)
		detections := analyzer.detector.Detect(*frame, warped, estimate.Pose)
		warped.Close()

		// increase reputation of consistent hits or add them as new candidates
		hits := track.Scoreboard(detections, estimate.Pose.Scale, analyzer.ringsAmount, analyzer.innerDiam)
		if analyzer.strict {
			analyzer.tracker.SortFrame(hits)
		} else {
			for _, hit := range hits {
				analyzer.tracker.Sort(hit)
			}
		}
	}

	// decrease reputation of inconsistent hits
	analyzer.tracker.Discharge()

	// stabilize all hits according to the slightly shifted bullseye point
	if ok {
		bullseye := estimate.Bullseye
		if analyzer.smoother != nil {
			bullseye = analyzer.smoother.Smooth(bullseye)
		}
		analyzer.tracker.Shift(bullseye)
		estimate.Close()
	}
}

// annotate writes the scoreboard and hit markers onto the frame
func (analyzer *Analyzer) annotate(frame *gocv.Mat) {
	candidates := analyzer.tracker.Candidates()
	verified := analyzer.tracker.Verified()

	analyzer.sketcher.DrawMetaDataBlock(frame)
	analyzer.sketcher.TypeArrowsAmount(frame, analyzer.tracker.ShotCount(), sketch.ColorCandidate)
	analyzer.sketcher.TypeTotalScore(frame, analyzer.tracker.TotalScore(), analyzer.tracker.ShotCount()*10, sketch.ColorVerified)

	if grouping, ok := track.MeasureGrouping(verified); ok {
		analyzer.sketcher.DrawGrouping(frame, grouping)
		analyzer.sketcher.TypeGroupingDiameter(frame, grouping.Diameter, sketch.ColorGrouping)
	} else {
		analyzer.sketcher.TypeGroupingDiameter(frame, 0, sketch.ColorGrouping)
	}

	analyzer.sketcher.MarkHits(frame, candidates, sketch.ColorCandidate, 2, false, false)
	analyzer.sketcher.MarkHits(frame, verified, sketch.ColorVerified, 5, true, true)
}
