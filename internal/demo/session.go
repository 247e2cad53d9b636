package demo

import (
	"errors"
	"fmt"
	"image"
	"math/rand/v2"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/meshcanvas/internal/canvas"
	"github.com/Faultbox/meshcanvas/internal/config"
	"github.com/Faultbox/meshcanvas/internal/engine/debug"
	"github.com/Faultbox/meshcanvas/internal/engine/scene"
	"github.com/Faultbox/meshcanvas/internal/engine/texture"
	"github.com/Faultbox/meshcanvas/internal/logger"
	"github.com/Faultbox/meshcanvas/pkg/math"
)

// PositionReader copies a position buffer to somewhere it can be read.
type PositionReader func(canvas.Texture) (debug.PositionSource, error)

// Surface is one painted object: its canvas and its paint target.
type Surface struct {
	Name   string
	Node   *scene.Node
	Canvas *canvas.Canvas
	Target canvas.Texture
}

// Session paints decals onto every surface of a stage.
type Session struct {
	dev      canvas.Device
	stage    *Stage
	read     PositionReader
	log      *zap.Logger
	rng      *rand.Rand
	brush    canvas.Brush
	surfaces []*Surface
	closed   bool
}

// NewSession creates one canvas and one paint target per stage object.
func NewSession(dev canvas.Device, stage *Stage, cfg *config.Config, read PositionReader, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = logger.Named("demo")
	}
	s := &Session{
		dev:   dev,
		stage: stage,
		read:  read,
		log:   log,
		rng:   rand.New(rand.NewPCG(uint64(cfg.Demo.Seed), 0x6d657368)),
	}

	brush, err := LoadBrush(dev, cfg.Brush)
	if err != nil {
		return nil, err
	}
	s.brush = brush

	add := func(node *scene.Node, register func(*canvas.Canvas)) error {
		c, err := canvas.New(dev, stage.Scene, canvas.Config{
			Width:         cfg.Canvas.BufferWidth,
			Height:        cfg.Canvas.BufferHeight,
			BakeLayerName: cfg.Canvas.BakeLayerName,
			Logger:        log.With(zap.String("surface", node.Name)),
		})
		if err != nil {
			return err
		}
		target, err := dev.NewRenderTarget(cfg.Canvas.TargetWidth, cfg.Canvas.TargetHeight)
		if err != nil {
			return multierr.Append(err, c.Close())
		}
		register(c)
		s.surfaces = append(s.surfaces, &Surface{Name: node.Name, Node: node, Canvas: c, Target: target})
		return nil
	}

	if err := add(stage.Cube, func(c *canvas.Canvas) { c.AddStatic(stage.Cube, stage.Cube) }); err != nil {
		return nil, multierr.Append(err, s.Close())
	}
	if stage.Body != nil {
		if err := add(stage.Body, func(c *canvas.Canvas) { c.AddSkinned(stage.Body) }); err != nil {
			return nil, multierr.Append(err, s.Close())
		}
	}
	return s, nil
}

// LoadBrush builds the configured brush: an image file, or a generated
// soft circle when no image is set.
func LoadBrush(dev canvas.Device, cfg config.BrushConfig) (canvas.Brush, error) {
	var img image.Image
	if cfg.Image != "" {
		loaded, err := texture.Load(cfg.Image)
		if err != nil {
			return canvas.Brush{}, err
		}
		img = loaded
	} else {
		img = texture.SoftCircle(128)
	}

	tex, err := dev.NewTexture(img)
	if err != nil {
		return canvas.Brush{}, fmt.Errorf("uploading brush: %w", err)
	}
	return ApplyBrushConfig(canvas.DefaultBrush(tex), cfg), nil
}

// ApplyBrushConfig returns b with the tint, smoothing, rotation and size
// of cfg. The texture is kept.
func ApplyBrushConfig(b canvas.Brush, cfg config.BrushConfig) canvas.Brush {
	b.Color = math.Color{R: cfg.Color[0], G: cfg.Color[1], B: cfg.Color[2], A: cfg.Color[3]}
	b.SmoothingStart = vec3(cfg.SmoothingStart)
	b.SmoothingEnd = vec3(cfg.SmoothingEnd)
	b.Rotation = math.QuatFromEuler(vec3(cfg.Rotation))
	b.Size = vec3(cfg.Size)
	return b
}

func vec3(v [3]float32) math.Vec3 {
	return math.Vec3{X: v[0], Y: v[1], Z: v[2]}
}

// Surfaces returns the painted objects.
func (s *Session) Surfaces() []*Surface {
	return s.surfaces
}

// Brush returns the session brush.
func (s *Session) Brush() canvas.Brush {
	return s.brush
}

// SetBrush replaces the brush parameters. The texture stays owned by the
// session, so b.Texture is ignored.
func (s *Session) SetBrush(b canvas.Brush) {
	b.Texture = s.brush.Texture
	s.brush = b
}

// Clear wipes every paint target.
func (s *Session) Clear() {
	for _, surf := range s.surfaces {
		s.dev.Clear(surf.Target, math.Clear)
	}
}

// DropBody removes the skinned body from the scene. Its canvas keeps the
// extractor, which now skips the destroyed renderer, so the next bake
// leaves that buffer empty.
func (s *Session) DropBody() {
	if !s.stage.Drop() {
		return
	}
	s.log.Info("body dropped from the stage")
	s.Deformed()
}

// Rebuild forces every canvas to re-bake now.
func (s *Session) Rebuild() error {
	var err error
	for _, surf := range s.surfaces {
		err = multierr.Append(err, surf.Canvas.ForceUpdate())
	}
	return err
}

// refresh re-bakes only the canvases whose buffers are stale.
func (s *Session) refresh() error {
	var err error
	for _, surf := range s.surfaces {
		if surf.Canvas.Dirty() || surf.Canvas.PositionTexture() == nil {
			err = multierr.Append(err, surf.Canvas.ForceUpdate())
		}
	}
	return err
}

// Deformed marks canvases over skinned geometry dirty after a pose change.
func (s *Session) Deformed() {
	for _, surf := range s.surfaces {
		if surf.Node.Skin() != nil {
			surf.Canvas.MarkDirty()
		}
	}
}

// PaintAt paints one decal into every surface. A decal only changes the
// surfaces it intersects.
func (s *Session) PaintAt(position math.Vec3, rotation math.Quat, color math.Color) error {
	for _, surf := range s.surfaces {
		err := surf.Canvas.Paint(surf.Target, s.brush, position,
			canvas.WithRotation(rotation),
			canvas.WithColor(color))
		if err != nil {
			return fmt.Errorf("painting %s: %w", surf.Name, err)
		}
	}
	return nil
}

// PaintRandom paints n decals at random covered texels of random
// surfaces, with random roll and hue.
func (s *Session) PaintRandom(n int) (int, error) {
	if len(s.surfaces) == 0 || s.read == nil {
		return 0, errors.New("nothing to paint")
	}
	if err := s.refresh(); err != nil {
		return 0, err
	}

	sources := make([]debug.PositionSource, len(s.surfaces))
	for i, surf := range s.surfaces {
		src, err := s.read(surf.Canvas.PositionTexture())
		if err != nil {
			return 0, fmt.Errorf("reading %s positions: %w", surf.Name, err)
		}
		sources[i] = src
	}

	painted := 0
	for i := 0; i < n; i++ {
		src := sources[s.rng.IntN(len(sources))]
		p, ok := s.randomPosition(src)
		if !ok {
			continue
		}
		roll := math.QuatFromAxisAngle(math.Vec3{Z: 1}, s.rng.Float32()*6.2831855)
		if err := s.PaintAt(p, roll, s.randomColor()); err != nil {
			return painted, err
		}
		painted++
	}
	s.log.Info("painted decals", zap.Int("requested", n), zap.Int("painted", painted))
	return painted, nil
}

func (s *Session) randomPosition(src debug.PositionSource) (math.Vec3, bool) {
	w, h := src.Size()
	for attempt := 0; attempt < 64; attempt++ {
		if p, ok := src.Position(s.rng.IntN(w), s.rng.IntN(h)); ok {
			return p, true
		}
	}
	return math.Vec3{}, false
}

func (s *Session) randomColor() math.Color {
	return math.Color{
		R: 0.3 + 0.7*s.rng.Float32(),
		G: 0.3 + 0.7*s.rng.Float32(),
		B: 0.3 + 0.7*s.rng.Float32(),
		A: 1,
	}
}

// Close releases every canvas, target and the brush texture.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	for _, surf := range s.surfaces {
		err = multierr.Append(err, surf.Canvas.Close())
		s.dev.Release(surf.Target)
	}
	s.surfaces = nil
	if s.brush.Texture != nil {
		s.dev.Release(s.brush.Texture)
		s.brush.Texture = nil
	}
	return err
}
