// Package main is meshpanel, an ImGui front end for the decal canvas:
// brush sliders, paint actions and live previews of every painted surface.
package main

import (
	"fmt"
	"os"
	"runtime"

	"go.uber.org/zap"

	"github.com/Faultbox/meshcanvas/internal/config"
	"github.com/Faultbox/meshcanvas/internal/logger"
)

func main() {
	runtime.LockOSThread()
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

	logger.Info("=== meshpanel ===")

	p, err := newPanel(cfg)
	if err != nil {
		logger.Error("failed to start", zap.Error(err))
		os.Exit(1)
	}
	p.Run()
	if err := p.Close(); err != nil {
		logger.Warn("shutdown reported leaks", zap.Error(err))
	}
	logger.Info("closed normally")
}
