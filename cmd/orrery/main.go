// Package main is the entry point for the orrery solar system renderer.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/orrery/internal/app"
	"github.com/Faultbox/orrery/internal/assets"
	"github.com/Faultbox/orrery/internal/bodies"
	"github.com/Faultbox/orrery/internal/config"
	"github.com/Faultbox/orrery/internal/engine/debug"
	"github.com/Faultbox/orrery/internal/engine/gpu/glgpu"
	"github.com/Faultbox/orrery/internal/engine/input/sdlinput"
	"github.com/Faultbox/orrery/internal/engine/window"
	"github.com/Faultbox/orrery/internal/logger"
	"github.com/Faultbox/orrery/internal/scene"
	"github.com/Faultbox/orrery/internal/telemetry"
)

const title = "Orrery"

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if path, err := cfg.SaveRequested(); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	} else if path != "" {
		fmt.Printf("Config written to %s\n", path)
		return
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}

	logger.Info("=== Orrery ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg); err != nil {
		logger.Error("fatal", zap.Error(err))
		logger.Sync()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger.Info("closed normally")
	logger.Sync()
}

func run(cfg *config.Config) error {
	table, err := bodies.Load(cfg.Simulation.BodiesFile)
	if err != nil {
		return err
	}
	logger.Info("body data loaded",
		zap.String("file", cfg.Simulation.BodiesFile),
		zap.Int("bodies", table.Len()),
	)

	win, err := window.New(window.Config{
		Title:      title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	defer win.Close()

	// The device needs the GL context the window just made current.
	w, h := win.DrawableSize()
	dev, err := glgpu.New(glgpu.Config{
		Width:          w,
		Height:         h,
		FramesInFlight: cfg.Graphics.FramesInFlight,
		Swap:           win.SwapBuffers,
	})
	if err != nil {
		return fmt.Errorf("failed to create GL device: %w", err)
	}
	defer dev.Close()

	am := assets.NewManager(cfg.Data.AssetDirs...)
	defer am.Close()

	sc, err := scene.Build(dev, table, am, app.SceneOptions(cfg))
	if err != nil {
		return fmt.Errorf("building scene: %w", err)
	}
	if len(sc.Degraded) > 0 {
		logger.Warn("rendering with degraded entities", zap.Strings("entities", sc.Degraded))
	}

	poller := sdlinput.New()
	defer poller.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metrics *telemetry.Metrics
	if cfg.Metrics.Addr != "" {
		metrics = telemetry.New()
		if _, done, err := metrics.Serve(ctx, cfg.Metrics.Addr); err != nil {
			logger.Warn("metrics endpoint disabled", zap.Error(err))
			metrics = nil
		} else {
			defer func() {
				stop()
				if err := <-done; err != nil {
					logger.Warn("metrics server", zap.Error(err))
				}
			}()
		}
	}

	a, err := app.New(cfg, title, app.Deps{
		Device:      dev,
		Poller:      poller,
		Scene:       sc,
		Window:      win,
		Metrics:     metrics,
		Screenshots: debug.NewScreenshotter(cfg.Debug.ScreenshotDir, "orrery"),
	})
	if err != nil {
		return err
	}
	return a.Run(ctx)
}
