// Package config defines the analyzer configuration and its loading order:
// defaults, then an optional YAML file, then HITSCOPE_* environment variables.
package config

// Config contains everything a single analysis run needs.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// VideoPath is the input video to analyze.
	VideoPath string `koanf:"video_path"`

	// ModelPath is an image of the target that appears in the video.
	ModelPath string `koanf:"model_path"`

	// OutputPath is where the annotated video is written.
	OutputPath string `koanf:"output_path"`

	// BullseyeX and BullseyeY locate the bullseye inside the model image [px].
	BullseyeX int `koanf:"bullseye_x"`
	BullseyeY int `koanf:"bullseye_y"`

	// RingsAmount is the number of scoring rings on the target.
	RingsAmount int `koanf:"rings_amount"`

	// InnerDiameterPx is the diameter of the innermost ring in the model [px].
	InnerDiameterPx float64 `koanf:"inner_diameter_px"`

	// InnerDiameterInch is the real-world diameter of the innermost ring.
	InnerDiameterInch float64 `koanf:"inner_diameter_inch"`

	// DisplayInCm reports the grouping diameter in centimeters instead of inches.
	DisplayInCm bool `koanf:"display_in_cm"`

	// DistanceTolerance is the radius under which two hits count as one [px].
	DistanceTolerance float64 `koanf:"distance_tolerance"`

	// MinReputation is the reputation a candidate needs to become verified.
	MinReputation int `koanf:"min_reputation"`

	// StrictMatching reconciles each frame through optimal assignment.
	StrictMatching bool `koanf:"strict_matching"`

	// SmoothCenter runs the bullseye estimate through a Kalman filter.
	SmoothCenter bool `koanf:"smooth_center"`
}

// New creates a Config with defaults tuned for a standard 10-ring target.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		OutputPath:        "analyzed.mp4",
		RingsAmount:       10,
		InnerDiameterPx:   50,
		InnerDiameterInch: 1.5,
		DistanceTolerance: 30,
		MinReputation:     15,
	}
}

// MeasureUnit converts a pixel distance in the model plane to the display
// unit. MeasureName returns the matching unit suffix.
func (c *Config) MeasureUnit() float64 {
	pixelToInch := c.InnerDiameterInch / c.InnerDiameterPx
	if c.DisplayInCm {
		return pixelToInch * 2.54
	}
	return pixelToInch
}

func (c *Config) MeasureName() string {
	if c.DisplayInCm {
		return "cm"
	}
	return "inch"
}
