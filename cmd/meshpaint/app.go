package main

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/meshcanvas/internal/canvas"
	"github.com/Faultbox/meshcanvas/internal/config"
	"github.com/Faultbox/meshcanvas/internal/demo"
	"github.com/Faultbox/meshcanvas/internal/engine/debug"
	"github.com/Faultbox/meshcanvas/internal/engine/gldevice"
	"github.com/Faultbox/meshcanvas/internal/engine/input"
	"github.com/Faultbox/meshcanvas/internal/engine/window"
	"github.com/Faultbox/meshcanvas/internal/logger"
	"github.com/Faultbox/meshcanvas/pkg/math"
)

// app is the interactive front end. The window is split into one column
// per surface: the paint target on top, its position buffer below.
// Click a target to paint there.
//
//	Space  paint random decals
//	A      toggle the skinned body animation
//	C      clear the paint targets
//	S      save PNGs
//	Esc    quit
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	window  *window.Window
	dev     *gldevice.Device
	input   *input.Input
	stage   *demo.Stage
	session *demo.Session

	// positions holds readbacks for click picking and preview scaling.
	positions *demo.PositionCache

	animate bool
	running bool
	width   int
	height  int
}

func newApp(cfg *config.Config) (*app, error) {
	a := &app{
		cfg:       cfg,
		log:       logger.Named("app"),
		input:     input.New(),
		width:     cfg.Graphics.Width,
		height:    cfg.Graphics.Height,
	}

	var err error
	a.window, err = window.New(window.Config{
		Title:      "meshpaint",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	a.stage, err = demo.NewStage(cfg.Canvas.BakeLayerName, cfg.Demo.Skinned)
	if err != nil {
		a.window.Close()
		return nil, err
	}

	// The device needs the GL context the window created.
	a.dev, err = gldevice.New(a.stage.Scene, gldevice.WithLogger(logger.Named("gldevice")))
	if err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to create device: %w", err)
	}

	read := func(tex canvas.Texture) (debug.PositionSource, error) {
		return a.dev.ReadPositions(tex)
	}
	a.positions = demo.NewPositionCache(read)
	a.session, err = demo.NewSession(a.dev, a.stage, cfg, read, logger.Named("demo"))
	if err != nil {
		a.Close()
		return nil, err
	}
	a.width, a.height = a.window.GetSize()
	return a, nil
}

// Run drives the frame loop until the window closes.
func (a *app) Run() error {
	a.running = true
	start := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	if _, err := a.session.PaintRandom(a.cfg.Demo.Decals); err != nil {
		return err
	}

	for a.running {
		if a.input.Update() {
			break
		}
		for _, e := range a.input.Events() {
			if err := a.handle(e); err != nil {
				return err
			}
		}

		if a.animate {
			a.stage.Pose(demo.Sway(time.Since(start).Seconds()))
			a.session.Deformed()
		}

		if err := a.render(); err != nil {
			return fmt.Errorf("render error: %w", err)
		}
		a.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			a.log.Debug("fps", zap.Int("count", frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}
	return nil
}

func (a *app) handle(e input.Event) error {
	switch e.Type {
	case input.EventWindowResize:
		a.width, a.height = a.window.GetSize()
	case input.EventKeyDown:
		switch e.Key {
		case sdl.SCANCODE_ESCAPE:
			a.running = false
		case sdl.SCANCODE_SPACE:
			if _, err := a.session.PaintRandom(max(a.cfg.Demo.Decals/4, 1)); err != nil {
				return err
			}
		case sdl.SCANCODE_A:
			a.animate = !a.animate
			a.log.Info("animation", zap.Bool("on", a.animate))
			if a.animate {
				a.window.SetTitle("meshpaint (animating)")
			} else {
				a.window.SetTitle("meshpaint")
			}
		case sdl.SCANCODE_C:
			a.session.Clear()
		case sdl.SCANCODE_S:
			a.save()
		}
	case input.EventClick:
		return a.paintAt(a.window.ToPixels(e.MouseX, e.MouseY))
	}
	return nil
}

// column returns the surface under window x and the x offset inside it.
func (a *app) column(x int) (*demo.Surface, int, int) {
	surfaces := a.session.Surfaces()
	if len(surfaces) == 0 || a.width == 0 {
		return nil, 0, 0
	}
	colW := a.width / len(surfaces)
	i := min(x/max(colW, 1), len(surfaces)-1)
	return surfaces[i], x - i*colW, colW
}

// paintAt paints a decal at the world position shown under a click in a
// paint target view.
func (a *app) paintAt(x, y int) error {
	surf, cx, colW := a.column(x)
	half := a.height / 2
	if surf == nil || y >= half || colW == 0 || half == 0 {
		return nil
	}
	u := float32(cx) / float32(colW)
	v := 1 - float32(y)/float32(half)
	world, ok, err := a.positions.Pick(surf, u, v)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return a.session.PaintAt(world, math.QuatIdentity(), math.White)
}

func (a *app) render() error {
	surfaces := a.session.Surfaces()
	if len(surfaces) == 0 {
		return nil
	}
	colW := a.width / len(surfaces)
	half := a.height / 2
	for i, surf := range surfaces {
		bounds, err := a.positions.Bounds(surf)
		if err != nil {
			return err
		}
		x := i * colW
		// GL viewports start at the bottom: targets go in the upper half.
		if err := a.dev.Preview(surf.Target, x, half, colW, a.height-half, false, math.AABB{}); err != nil {
			return err
		}
		if err := a.dev.Preview(surf.Canvas.PositionTexture(), x, 0, colW, half, true, bounds); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) save() {
	exporter := debug.NewExporter(a.cfg.Demo.OutputDir, "meshpaint", true)
	for _, surf := range a.session.Surfaces() {
		img, err := a.dev.ReadImage(surf.Target)
		if err != nil {
			a.log.Warn("read target failed", zap.String("surface", surf.Name), zap.Error(err))
			continue
		}
		path, err := exporter.Save(surf.Name, img)
		if err != nil {
			a.log.Warn("save failed", zap.Error(err))
			continue
		}
		a.log.Info("saved", zap.String("path", path))
	}
}

// Close releases the session, the device and the window. Leaked device
// resources are reported as an error.
func (a *app) Close() error {
	var err error
	if a.session != nil {
		err = multierr.Append(err, a.session.Close())
		a.session = nil
	}
	if a.dev != nil {
		err = multierr.Append(err, a.dev.Close())
		a.dev = nil
	}
	if a.window != nil {
		a.window.Close()
		a.window = nil
	}
	return err
}
