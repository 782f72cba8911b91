package main

import (
	"flag"
	"image"
	"log/slog"
	"os"
	"strings"

	"github.com/hitscope/hitscope/internal/config"
	"github.com/hitscope/hitscope/video"
)

func main() {
	configPath := flag.String("config", os.Getenv("HITSCOPE_CONFIG"), "Path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("can't load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)
	log.Info("starting analysis",
		slog.String("video", cfg.VideoPath),
		slog.String("model", cfg.ModelPath),
		slog.String("output", cfg.OutputPath))

	analyzer, err := video.NewAnalyzer(video.Options{
		VideoPath:         cfg.VideoPath,
		ModelPath:         cfg.ModelPath,
		Bullseye:          image.Pt(cfg.BullseyeX, cfg.BullseyeY),
		RingsAmount:       cfg.RingsAmount,
		InnerDiameterPx:   cfg.InnerDiameterPx,
		DistanceTolerance: cfg.DistanceTolerance,
		MinReputation:     cfg.MinReputation,
		StrictMatching:    cfg.StrictMatching,
		SmoothCenter:      cfg.SmoothCenter,
		MeasureUnit:       cfg.MeasureUnit(),
		MeasureName:       cfg.MeasureName(),
		Logger:            log,
	})
	if err != nil {
		log.Error("can't prepare analyzer", slog.Any("error", err))
		os.Exit(1)
	}
	defer analyzer.Close()

	if err := analyzer.Run(cfg.OutputPath); err != nil {
		log.Error("analysis failed", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("analysis is done",
		slog.Int("shots", analyzer.Tracker().ShotCount()),
		slog.Int("total_score", analyzer.Tracker().TotalScore()))
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
