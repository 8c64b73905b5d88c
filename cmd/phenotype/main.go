package main

import (
	"context"
	"flag"
	"os"

	"github.com/rs/zerolog"

	"github.com/askiada/go-phenotype/internal/config"
	"github.com/askiada/go-phenotype/internal/loader"
	"github.com/askiada/go-phenotype/internal/opencv"
	"github.com/askiada/go-phenotype/pkg/pipeline"
	"github.com/askiada/go-phenotype/pkg/pipeline/drawer"
	"github.com/askiada/go-phenotype/pkg/pipeline/measure"
)

func main() {
	configPath := flag.String("config", "phenotype.yaml", "run description file")
	debug := flag.Bool("debug", false, "verbose logging")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if *debug {
		log = log.Level(zerolog.DebugLevel)
	} else {
		log = log.Level(zerolog.InfoLevel)
	}

	if err := run(log, *configPath); err != nil {
		log.Fatal().Err(err).Msg("run failed")
	}
}

func run(log zerolog.Logger, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ops := opencv.New()

	stageChain, err := cfg.Build(ops)
	if err != nil {
		return err
	}

	opts := []pipeline.Option{pipeline.WithLogger(log)}

	if cfg.DrawerFile != "" {
		opts = append(opts,
			pipeline.WithDrawer(drawer.NewSVGDrawer(cfg.DrawerFile)),
			pipeline.WithMeasure(measure.NewDefaultMeasure()),
		)
	}

	p, err := pipeline.New(pipeline.Config{Stages: stageChain}, opts...)
	if err != nil {
		return err
	}

	units, err := loader.New(ops,
		loader.WithLogger(log),
		loader.WithNightThreshold(cfg.NightThreshold),
	).LoadDir(cfg.InputDir)
	if err != nil {
		return err
	}

	if cfg.Concurrency > 1 {
		_, err = p.FormatSetConcurrent(context.Background(), units, cfg.Concurrency)
	} else {
		_, err = p.FormatSet(units)
	}
	if err != nil {
		return err
	}

	if cfg.DrawerFile != "" {
		if err := p.Draw(); err != nil {
			return err
		}
	}

	return nil
}
