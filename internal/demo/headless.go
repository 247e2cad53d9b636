package demo

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/meshcanvas/internal/canvas"
	"github.com/Faultbox/meshcanvas/internal/config"
	"github.com/Faultbox/meshcanvas/internal/engine/debug"
	"github.com/Faultbox/meshcanvas/internal/engine/soft"
)

// RunHeadless bakes and paints the stage on the CPU device and writes the
// paint targets and position buffers as PNGs. It returns the written
// paths.
func RunHeadless(cfg *config.Config, log *zap.Logger) (paths []string, err error) {
	stage, err := NewStage(cfg.Canvas.BakeLayerName, cfg.Demo.Skinned)
	if err != nil {
		return nil, fmt.Errorf("building stage: %w", err)
	}
	stage.Pose(0.4)

	dev := soft.New(stage.Scene, soft.WithLogger(log.Named("soft")))
	defer func() {
		err = multierr.Append(err, dev.Close())
	}()

	read := func(tex canvas.Texture) (debug.PositionSource, error) {
		img, ok := tex.(*soft.Image)
		if !ok {
			return nil, fmt.Errorf("unexpected texture %T", tex)
		}
		return img, nil
	}
	session, err := NewSession(dev, stage, cfg, read, log)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Append(err, session.Close())
	}()

	if _, err := session.PaintRandom(cfg.Demo.Decals); err != nil {
		return nil, err
	}

	exporter := debug.NewExporter(cfg.Demo.OutputDir, "meshpaint", false)
	for _, surf := range session.Surfaces() {
		target := surf.Target.(*soft.Image)
		path, err := exporter.Save(surf.Name+"_paint", target.NRGBA())
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)

		positions := surf.Canvas.PositionTexture().(*soft.Image)
		path, err = exporter.Save(surf.Name+"_positions",
			debug.VisualizePositions(positions, debug.PositionBounds(positions)))
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	s := dev.Stats()
	log.Info("headless run finished",
		zap.Strings("files", paths),
		zap.Int("bakes", s.Expands),
		zap.Int("composites", s.Composites),
		zap.Int("camera_renders", s.CameraRenders),
	)
	return paths, nil
}
