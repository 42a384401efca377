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
	"github.com/bostonbriefing/briefing/internal/server"
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

	logger.Infof("[main] briefing server starting (addr=%s)", cfg.Server.Addr)

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

	s, err := server.New(cfg.Server, cfg.Site, p.Store(), p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create server: %v\n", err)
		os.Exit(1)
	}

	if err := s.ListenAndServe(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}

	logger.Info("[main] briefing server stopped")
}
