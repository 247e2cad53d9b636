package main

import (
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/backend"
	"github.com/AllenDang/cimgui-go/backend/sdlbackend"
	"github.com/AllenDang/cimgui-go/imgui"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/meshcanvas/internal/canvas"
	"github.com/Faultbox/meshcanvas/internal/config"
	"github.com/Faultbox/meshcanvas/internal/demo"
	"github.com/Faultbox/meshcanvas/internal/engine/debug"
	"github.com/Faultbox/meshcanvas/internal/engine/gldevice"
	"github.com/Faultbox/meshcanvas/internal/logger"
	"github.com/Faultbox/meshcanvas/pkg/math"
)

const (
	controlsWidth = 320
	previewSide   = 256
)

// panel owns the ImGui window, the GL device and the paint session.
// Position buffers are half float, so each one is mirrored into an RGBA8
// view that ImGui can show.
type panel struct {
	cfg     *config.Config
	log     *zap.Logger
	backend backend.Backend[sdlbackend.SDLWindowFlags]
	dev     *gldevice.Device
	stage   *demo.Stage
	session *demo.Session

	positions *demo.PositionCache
	views     map[*demo.Surface]canvas.Texture
	shown     map[*demo.Surface]uint64
	refs      map[canvas.Texture]*imgui.TextureRef

	// brush is edited by the sliders. X and Y move together: the panel
	// sizes the projection plane and the depth separately.
	brush config.BrushConfig

	decals      int32
	animate     bool
	start       time.Time
	status      string
	statusIsErr bool
}

func newPanel(cfg *config.Config) (*panel, error) {
	p := &panel{
		cfg:    cfg,
		log:    logger.Named("panel"),
		views:  make(map[*demo.Surface]canvas.Texture),
		shown:  make(map[*demo.Surface]uint64),
		refs:   make(map[canvas.Texture]*imgui.TextureRef),
		brush:  cfg.Brush,
		decals: int32(max(cfg.Demo.Decals, 1)),
		start:  time.Now(),
	}

	var err error
	p.backend, err = backend.CreateBackend(sdlbackend.NewSDLBackend())
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}
	p.backend.SetBgColor(imgui.NewVec4(0.1, 0.1, 0.12, 1.0))
	p.backend.CreateWindow("meshpanel", cfg.Graphics.Width, cfg.Graphics.Height)

	p.stage, err = demo.NewStage(cfg.Canvas.BakeLayerName, cfg.Demo.Skinned)
	if err != nil {
		return nil, err
	}
	// The backend made its GL context current in CreateWindow.
	p.dev, err = gldevice.New(p.stage.Scene, gldevice.WithLogger(logger.Named("gldevice")))
	if err != nil {
		return nil, fmt.Errorf("failed to create device: %w", err)
	}

	read := func(tex canvas.Texture) (debug.PositionSource, error) {
		return p.dev.ReadPositions(tex)
	}
	p.positions = demo.NewPositionCache(read)
	p.session, err = demo.NewSession(p.dev, p.stage, cfg, read, logger.Named("demo"))
	if err != nil {
		return nil, multierr.Append(err, p.Close())
	}
	for _, surf := range p.session.Surfaces() {
		w, h := surf.Canvas.Size()
		view, err := p.dev.NewRenderTarget(w, h)
		if err != nil {
			return nil, multierr.Append(err, p.Close())
		}
		p.views[surf] = view
	}
	return p, nil
}

// Run drives the backend loop until the window closes.
func (p *panel) Run() {
	if _, err := p.session.PaintRandom(int(p.decals)); err != nil {
		p.report(err)
	}
	p.backend.Run(p.frame)
}

func (p *panel) frame() {
	if p.animate {
		p.stage.Pose(demo.Sway(time.Since(p.start).Seconds()))
		p.session.Deformed()
	}
	if err := p.updateViews(); err != nil {
		p.report(err)
	}

	vp := imgui.MainViewport()
	pos, size := vp.WorkPos(), vp.WorkSize()
	flags := imgui.WindowFlagsNoMove | imgui.WindowFlagsNoResize | imgui.WindowFlagsNoCollapse

	imgui.SetNextWindowPos(pos)
	imgui.SetNextWindowSize(imgui.NewVec2(controlsWidth, size.Y))
	if imgui.BeginV("Brush", nil, flags) {
		p.drawControls()
	}
	imgui.End()

	imgui.SetNextWindowPos(imgui.NewVec2(pos.X+controlsWidth, pos.Y))
	imgui.SetNextWindowSize(imgui.NewVec2(size.X-controlsWidth, size.Y))
	if imgui.BeginV("Surfaces", nil, flags|imgui.WindowFlagsHorizontalScrollbar) {
		p.drawSurfaces()
	}
	imgui.End()
}

// updateViews re-bakes stale surfaces and redraws the position views of
// those rebuilt since they were last shown.
func (p *panel) updateViews() error {
	for _, surf := range p.session.Surfaces() {
		bounds, err := p.positions.Bounds(surf)
		if err != nil {
			return err
		}
		gen := surf.Canvas.Generation()
		if p.shown[surf] == gen {
			continue
		}
		if err := p.dev.Visualize(p.views[surf], surf.Canvas.PositionTexture(), true, bounds); err != nil {
			return err
		}
		p.shown[surf] = gen
	}
	return nil
}

func (p *panel) drawControls() {
	b := &p.brush
	imgui.Text("Tint")
	changed := false
	for i, label := range []string{"R##tint", "G##tint", "B##tint", "A##tint"} {
		changed = slider(label, &b.Color[i], 0, 1) || changed
	}
	imgui.Separator()

	imgui.Text("Projection")
	if slider("Size", &b.Size[0], 0.02, 2) {
		b.Size[1] = b.Size[0]
		changed = true
	}
	changed = slider("Depth", &b.Size[2], 0.02, 2) || changed
	imgui.Separator()

	imgui.Text("Falloff")
	if slider("Edge start", &b.SmoothingStart[0], 0, 1) {
		b.SmoothingStart[1] = b.SmoothingStart[0]
		changed = true
	}
	if slider("Edge end", &b.SmoothingEnd[0], 0, 1) {
		b.SmoothingEnd[1] = b.SmoothingEnd[0]
		changed = true
	}
	changed = slider("Depth start", &b.SmoothingStart[2], 0, 1) || changed
	changed = slider("Depth end", &b.SmoothingEnd[2], 0, 1) || changed
	if changed {
		p.session.SetBrush(demo.ApplyBrushConfig(p.session.Brush(), p.brush))
	}
	imgui.Separator()

	imgui.SliderIntV("Decals", &p.decals, 1, 200, "%d", imgui.SliderFlagsNone)
	if imgui.Button("Paint random") {
		if _, err := p.session.PaintRandom(int(p.decals)); err != nil {
			p.report(err)
		}
	}
	imgui.SameLine()
	if imgui.Button("Clear") {
		p.session.Clear()
	}
	imgui.SameLine()
	if imgui.Button("Save") {
		p.save()
	}

	if imgui.Button("Force update") {
		if err := p.session.Rebuild(); err != nil {
			p.report(err)
		}
	}
	imgui.SameLine()
	if imgui.Button("Drop body") {
		p.session.DropBody()
	}
	imgui.Checkbox("Animate body", &p.animate)
	imgui.Separator()

	for _, surf := range p.session.Surfaces() {
		w, h := surf.Canvas.Size()
		imgui.Text(fmt.Sprintf("%s: %dx%d, %d groups, %d bakes",
			surf.Name, w, h, surf.Canvas.Extractors(), surf.Canvas.Generation()))
	}
	if p.status != "" {
		imgui.Spacing()
		if p.statusIsErr {
			imgui.TextColored(imgui.NewVec4(1, 0.4, 0.4, 1), p.status)
		} else {
			imgui.TextDisabled(p.status)
		}
	}
	imgui.Spacing()
	imgui.TextDisabled("(Click a paint target to paint there)")
}

func slider(label string, v *float32, lo, hi float32) bool {
	return imgui.SliderFloatV(label, v, lo, hi, "%.2f", imgui.SliderFlagsNone)
}

func (p *panel) drawSurfaces() {
	for i, surf := range p.session.Surfaces() {
		if i > 0 {
			imgui.SameLine()
		}
		imgui.BeginGroup()
		imgui.Text(surf.Name)

		origin := imgui.CursorScreenPos()
		p.image(surf.Target)
		if imgui.IsItemClicked() {
			m := imgui.MousePos()
			u := (m.X - origin.X) / previewSide
			v := 1 - (m.Y-origin.Y)/previewSide
			if err := p.paintAt(surf, u, v); err != nil {
				p.report(err)
			}
		}
		p.image(p.views[surf])
		imgui.EndGroup()
	}
}

// image shows a GL texture flipped so texel row 0 is at the bottom.
func (p *panel) image(tex canvas.Texture) {
	ref, ok := p.refs[tex]
	if !ok {
		ref = imgui.NewTextureRefTextureID(imgui.TextureID(tex.(*gldevice.Texture).ID()))
		p.refs[tex] = ref
	}
	imgui.ImageV(*ref,
		imgui.NewVec2(previewSide, previewSide),
		imgui.NewVec2(0, 1),
		imgui.NewVec2(1, 0))
}

func (p *panel) paintAt(surf *demo.Surface, u, v float32) error {
	world, ok, err := p.positions.Pick(surf, u, v)
	if err != nil || !ok {
		return err
	}
	return p.session.PaintAt(world, math.QuatIdentity(), math.White)
}

func (p *panel) save() {
	exporter := debug.NewExporter(p.cfg.Demo.OutputDir, "meshpanel", true)
	saved := 0
	for _, surf := range p.session.Surfaces() {
		for suffix, tex := range map[string]canvas.Texture{"_paint": surf.Target, "_positions": p.views[surf]} {
			img, err := p.dev.ReadImage(tex)
			if err != nil {
				p.report(err)
				continue
			}
			path, err := exporter.Save(surf.Name+suffix, img)
			if err != nil {
				p.report(err)
				continue
			}
			p.log.Info("saved", zap.String("path", path))
			saved++
		}
	}
	p.status, p.statusIsErr = fmt.Sprintf("saved %d images to %s", saved, p.cfg.Demo.OutputDir), false
}

// report logs err and shows it in the panel. The loop keeps running.
func (p *panel) report(err error) {
	p.log.Error("panel action failed", zap.Error(err))
	p.status, p.statusIsErr = err.Error(), true
}

// Close releases the views, the session and the device. Leaked device
// resources are reported as an error.
func (p *panel) Close() error {
	var err error
	if p.dev != nil {
		for surf, view := range p.views {
			p.dev.Release(view)
			delete(p.views, surf)
		}
	}
	if p.session != nil {
		err = multierr.Append(err, p.session.Close())
		p.session = nil
	}
	if p.dev != nil {
		err = multierr.Append(err, p.dev.Close())
		p.dev = nil
	}
	return err
}
