package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Garsondee/Mine-Sense/internal/config"
	"github.com/Garsondee/Mine-Sense/internal/game"
	"github.com/Garsondee/Mine-Sense/internal/remote"
	"github.com/Garsondee/Mine-Sense/internal/telemetry"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", config.DefaultPath, "settings file (missing file uses defaults)")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	logger := cfg.NewLogger(os.Stderr)

	if _, err := cfg.Geometry(); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	metrics := telemetry.New(reg)

	reloads := make(chan config.Config, 1)
	if err := config.Watch(ctx, cfgPath, logger, func(c config.Config) {
		select {
		case reloads <- c:
		default:
		}
	}); err != nil {
		logger.Warn("config hot reload disabled", "err", err)
	}

	opts := game.Options{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics,
		Reloads: reloads,
	}
	if cfg.Remote.Enabled {
		srv := remote.NewServer(logger, reg)
		opts.Commands = srv.Commands()
		opts.Publish = srv.Publish
		go func() {
			if err := srv.ListenAndServe(ctx, cfg.Remote.Addr); err != nil {
				logger.Error("remote control stopped", "err", err)
			}
		}()
	}

	g, err := game.New(opts)
	if err != nil {
		log.Fatal(err)
	}
	ebiten.SetWindowTitle("Mine Sense")
	ebiten.SetWindowSize(g.WindowSize())
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
