package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bostonbriefing/briefing/internal/config"
	"github.com/bostonbriefing/briefing/internal/logger"
	"github.com/bostonbriefing/briefing/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "configs/briefing.yaml", "config file path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{Level: cfg.Log.Level, File: cfg.Log.File}); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Infof("[main] briefing starting (log_level=%s)", cfg.Log.Level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// graceful shutdown on SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Infof("[main] received %v, shutting down", sig)
		cancel()
	}()

	p, err := pipeline.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create pipeline: %v\n", err)
		os.Exit(1)
	}
	defer p.Close()

	ep, err := p.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate briefing: %v\n", err)
		os.Exit(1)
	}

	logger.Infof("[main] published %s (%ds)", ep.Title, ep.Duration)
}
