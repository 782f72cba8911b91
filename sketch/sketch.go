// Package sketch draws the analysis results onto output frames.
package sketch

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/hitscope/hitscope/track"
)

var (
	// Colors for the overlay, BGR-ordered frames
	ColorCandidate = color.RGBA{R: 0xff}
	ColorVerified  = color.RGBA{G: 0xff}
	ColorGrouping  = color.RGBA{R: 97, G: 215, B: 214}

	black = color.RGBA{}
	white = color.RGBA{R: 0xff, G: 0xff, B: 0xff}
)

// Sketcher writes hit markers and the scoreboard onto frames.
// measureUnit converts pixels into the display unit (inch or cm per pixel).
type Sketcher struct {
	measureUnit float64
	measureName string
}

func NewSketcher(measureUnit float64, measureName string) *Sketcher {
	return &Sketcher{
		measureUnit: measureUnit,
		measureName: measureName,
	}
}

// DrawMetaDataBlock draws the white banner holding the scoreboard texts at
// the bottom right of the frame
func (sketcher *Sketcher) DrawMetaDataBlock(frame *gocv.Mat) {
	frameH := frame.Rows()
	frameW := frame.Cols()

	banner := image.Rect(frameW/2, int(float64(frameH)*.85), frameW, frameH)
	gocv.Rectangle(frame, banner, white, -1)

	// decorative stripes on the banner's left side
	stripes := []struct {
		offset int
		width  int
		fill   color.RGBA
	}{
		{60, 45, color.RGBA{R: 0x28, G: 0x28, B: 0x28}},
		{110, 35, color.RGBA{R: 248, G: 138, B: 8}},
		{150, 25, color.RGBA{R: 66, B: 0xff}},
		{180, 15, color.RGBA{G: 204, B: 0xff}},
		{200, 5, color.RGBA{G: 204, B: 0xff}},
	}
	for _, stripe := range stripes {
		rect := image.Rect(banner.Min.X-stripe.offset, banner.Min.Y, banner.Min.X-stripe.offset+stripe.width, frameH)
		gocv.Rectangle(frame, rect, stripe.fill, -1)
	}
}

// MarkHits draws a circle around every hit. Verified hits typically get an
// outline and their score typed above them, candidates just a thin mark.
func (sketcher *Sketcher) MarkHits(frame *gocv.Mat, hits []*track.Hit, foreground color.RGBA, diam int, withOutline, withScore bool) {
	for _, hit := range hits {
		center := image.Pt(int(hit.GetPoint().X), int(hit.GetPoint().Y))

		scoreString := "miss"
		if hit.GetScore() > 0 {
			scoreString = fmt.Sprintf("%d", hit.GetScore())
		}

		if withOutline {
			gocv.Circle(frame, center, 13, black, diam+2)
		}
		gocv.Circle(frame, center, 10, foreground, diam)

		if withScore {
			org := image.Pt(center.X, center.Y-20)
			gocv.PutText(frame, scoreString, org, gocv.FontHersheyPlain, 5, black, 15)
			gocv.PutText(frame, scoreString, org, gocv.FontHersheyPlain, 5, white, 5)
		}
	}
}

// DrawGrouping marks the grouping extremes and the line between them
func (sketcher *Sketcher) DrawGrouping(frame *gocv.Mat, grouping track.Grouping) {
	p1 := image.Pt(int(grouping.Extremes[0].X), int(grouping.Extremes[0].Y))
	p2 := image.Pt(int(grouping.Extremes[1].X), int(grouping.Extremes[1].Y))
	gocv.Line(frame, p1, p2, ColorGrouping, 2)
	gocv.Circle(frame, p1, 4, ColorGrouping, 2)
	gocv.Circle(frame, p2, 4, ColorGrouping, 2)
}

// TypeArrowsAmount types the shots-fired counter onto the banner
func (sketcher *Sketcher) TypeArrowsAmount(frame *gocv.Mat, amount int, dataColor color.RGBA) {
	frameH := frame.Rows()
	frameW := frame.Cols()

	gocv.PutText(frame, "Arrows shot: ", image.Pt(int(float64(frameW)*.52), int(float64(frameH)*.905)),
		gocv.FontHersheySimplex, 1.4, black, 4)
	gocv.PutText(frame, fmt.Sprintf("%d", amount), image.Pt(int(float64(frameW)*.675), int(float64(frameH)*.905)),
		gocv.FontHersheySimplex, 1.4, dataColor, 4)
}

// TypeTotalScore types the accumulated score against the achievable one
func (sketcher *Sketcher) TypeTotalScore(frame *gocv.Mat, totalScore, achievableScore int, dataColor color.RGBA) {
	frameH := frame.Rows()
	frameW := frame.Cols()

	total := fmt.Sprintf("%d", totalScore)
	scoreSpace := 23 * (len(total) - 1)

	gocv.PutText(frame, "Total score: ", image.Pt(int(float64(frameW)*.52), int(float64(frameH)*.975)),
		gocv.FontHersheySimplex, 1.4, black, 4)
	gocv.PutText(frame, total, image.Pt(int(float64(frameW)*.67), int(float64(frameH)*.975)),
		gocv.FontHersheySimplex, 1.4, dataColor, 4)
	gocv.PutText(frame, fmt.Sprintf("/ %d", achievableScore), image.Pt(int(float64(frameW)*.695)+scoreSpace, int(float64(frameH)*.975)),
		gocv.FontHersheySimplex, 1.4, black, 4)
}

// TypeGroupingDiameter types the grouping diameter in the configured
// measurement unit
func (sketcher *Sketcher) TypeGroupingDiameter(frame *gocv.Mat, diameterPx float64, dataColor color.RGBA) {
	frameH := frame.Rows()
	frameW := frame.Cols()

	diameter := fmt.Sprintf("%.1f%s", diameterPx*sketcher.measureUnit, sketcher.measureName)

	gocv.PutText(frame, "Grouping: ", image.Pt(int(float64(frameW)*.77), int(float64(frameH)*.905)),
		gocv.FontHersheySimplex, 1.4, black, 4)
	gocv.PutText(frame, diameter, image.Pt(int(float64(frameW)*.89), int(float64(frameH)*.905)),
		gocv.FontHersheySimplex, 1.4, dataColor, 4)
}
