// Package main is the entry point for meshpaint, a decal painting demo.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/meshcanvas/internal/config"
	"github.com/Faultbox/meshcanvas/internal/demo"
	"github.com/Faultbox/meshcanvas/internal/logger"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== meshpaint ===", zap.Bool("headless", cfg.Demo.Headless))
	logger.Sugar.Debugf("Config: %+v", cfg)

	if cfg.Demo.Headless {
		paths, err := demo.RunHeadless(cfg, logger.Named("demo"))
		if err != nil {
			logger.Error("headless run failed", zap.Error(err))
			os.Exit(1)
		}
		for _, p := range paths {
			fmt.Println(p)
		}
		return
	}

	app, err := newApp(cfg)
	if err != nil {
		logger.Error("failed to start", zap.Error(err))
		os.Exit(1)
	}
	runErr := app.Run()
	if err := app.Close(); err != nil {
		logger.Warn("shutdown reported leaks", zap.Error(err))
	}
	if runErr != nil {
		logger.Error("run failed", zap.Error(runErr))
		os.Exit(1)
	}
	logger.Info("closed normally")
}
