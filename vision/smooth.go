package vision

import (
	kalman_filter "github.com/LdDl/kalman-filter"

	"github.com/hitscope/hitscope/track"
)

// CenterSmoother filters frame-to-frame jitter out of the bullseye estimate
// with a 2D Kalman filter before it reaches drift correction. Optional: the
// raw estimate is perfectly usable, this just calms shaky footage.
type CenterSmoother struct {
	dt     float64
	filter *kalman_filter.Kalman2D
}

// NewCenterSmoother creates a smoother for a stream with the given time step
// (1/fps)
func NewCenterSmoother(dt float64) *CenterSmoother {
	return &CenterSmoother{
		dt: dt,
	}
}

// Smooth feeds the next bullseye observation into the filter and returns the
// smoothed estimate. The first observation primes the filter and passes
// through unchanged; so does any observation the filter fails to process.
func (smoother *CenterSmoother) Smooth(bullseye track.Point) track.Point {
	if smoother.filter == nil {
		/* Kalman filter props */
		ux := 1.0
		uy := 1.0
		stdDevA := 2.0
		stdDevMx := 0.1
		stdDevMy := 0.1
		smoother.filter = kalman_filter.NewKalman2D(smoother.dt, ux, uy, stdDevA, stdDevMx, stdDevMy,
			kalman_filter.WithState2D(bullseye.X, bullseye.Y))
		return bullseye
	}

	smoother.filter.Predict()
	if err := smoother.filter.Update(bullseye.X, bullseye.Y); err != nil {
		return bullseye
	}
	stateX, stateY := smoother.filter.GetState()
	return track.Point{X: stateX, Y: stateY}
}
