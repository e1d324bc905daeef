package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/chrisconley/ocpirating/internal"
	"github.com/chrisconley/ocpirating/internal/config"
)

func main() {
	cfgPath := flag.String("config", "", "Path to YAML rating request")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if *cfgPath == "" {
		fmt.Fprintln(os.Stderr, "usage: ocpirate -config request.yaml [-v]")
		os.Exit(2)
	}

	if err := run(*cfgPath); err != nil {
		slog.Error("rating failed", "config", *cfgPath, "error", err)
		os.Exit(1)
	}
}

func run(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	req, err := cfg.ToRequest()
	if err != nil {
		return err
	}
	slog.Debug("loaded rating request",
		"session", req.Session.ID,
		"samples", len(req.Samples)+len(req.Session.MeteringSamples),
		"tariffs", len(req.Tariffs)+len(req.Session.Tariffs),
	)

	rated, err := internal.RateSession(req.Session, req.Samples, req.Tariffs, req.Extrapolate)
	if err != nil {
		return err
	}
	slog.Debug("rated session",
		"id", rated.ID,
		"periods", len(rated.ChargingPeriods),
		"total_cost", rated.TotalCost.ExclVAT,
		"currency", rated.Currency,
	)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rated)
}
