// Package canvas paints decals onto meshes through a cached texture of
// per-texel world positions, independent of the meshes' UV layout.
//
// A Canvas bakes the world position of every texel of its registered
// geometry into a half-float buffer, rebuilds that buffer lazily when
// geometry changes, and uses it to project brushes into paint targets.
// All calls must come from the goroutine that owns the device.
package canvas

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/meshcanvas/internal/logger"
	"github.com/Faultbox/meshcanvas/pkg/math"
)

// DefaultBakeLayerName is the render layer reserved for skinned baking.
const DefaultBakeLayerName = "MeshCanvas Bake"

// Config configures a Canvas.
type Config struct {
	// Width and Height are the position buffer dimensions.
	Width, Height int
	// BakeLayerName names the layer skinned groups are moved to while
	// they are baked. Defaults to DefaultBakeLayerName.
	BakeLayerName string
	Logger        *zap.Logger
}

// Canvas is a world-position cache over a set of geometry groups.
type Canvas struct {
	dev    Device
	layers LayerResolver
	log    *zap.Logger

	width, height int
	bakeLayerName string
	bakeLayer     int
	layerResolved bool

	extractors []Extractor
	positions  Texture
	dirty      bool
	disposed   bool
	generation uint64
}

// New creates a canvas. The position buffer is allocated on the first
// rebuild. layers may be nil if no skinned geometry is added.
func New(dev Device, layers LayerResolver, cfg Config) (*Canvas, error) {
	if dev == nil {
		return nil, errors.New("canvas: nil device")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("canvas: invalid size %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.BakeLayerName == "" {
		cfg.BakeLayerName = DefaultBakeLayerName
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Named("canvas")
	}
	return &Canvas{
		dev:           dev,
		layers:        layers,
		log:           log,
		width:         cfg.Width,
		height:        cfg.Height,
		bakeLayerName: cfg.BakeLayerName,
		dirty:         true,
	}, nil
}

// AddStatic registers a non-deforming mesh.
func (c *Canvas) AddStatic(mesh MeshHolder, transform TransformHolder) {
	if c.disposed {
		c.log.Warn("AddStatic on disposed canvas")
		return
	}
	if mesh == nil || transform == nil {
		c.log.Warn("AddStatic without mesh or transform")
		return
	}
	c.extractors = append(c.extractors, NewStaticExtractor(c.dev, mesh, transform))
	c.dirty = true
}

// AddSkinned registers a group of skinned renderers baked together.
func (c *Canvas) AddSkinned(renderers ...SkinnedRenderer) {
	if c.disposed {
		c.log.Warn("AddSkinned on disposed canvas")
		return
	}
	if len(renderers) == 0 {
		c.log.Warn("AddSkinned with empty group")
		return
	}
	layer, ok := c.resolveBakeLayer()
	if !ok {
		c.log.Error("bake layer not found, skinned group skipped",
			zap.String("layer", c.bakeLayerName))
		return
	}
	e, err := NewSkinnedExtractor(c.dev, renderers, layer)
	if err != nil {
		c.log.Error("skinned group skipped", zap.Error(err))
		return
	}
	c.extractors = append(c.extractors, e)
	c.dirty = true
}

func (c *Canvas) resolveBakeLayer() (int, bool) {
	if c.layerResolved {
		return c.bakeLayer, true
	}
	if c.layers == nil {
		return 0, false
	}
	layer, ok := c.layers.LayerByName(c.bakeLayerName)
	if !ok {
		return 0, false
	}
	c.bakeLayer = layer
	c.layerResolved = true
	return layer, true
}

// MarkDirty schedules a rebuild before the next paint.
func (c *Canvas) MarkDirty() {
	c.dirty = true
}

// Dirty reports whether the position buffer is stale.
func (c *Canvas) Dirty() bool {
	return c.dirty
}

// ForceUpdate rebuilds the position buffer now.
func (c *Canvas) ForceUpdate() error {
	if c.disposed {
		c.log.Warn("ForceUpdate on disposed canvas")
		return nil
	}
	c.dirty = true
	return c.rebuild()
}

// Resize changes the position buffer dimensions. The buffer is
// reallocated on the next rebuild, and only if the size changed.
func (c *Canvas) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("canvas: invalid size %dx%d", width, height)
	}
	if width == c.width && height == c.height {
		return nil
	}
	c.width, c.height = width, height
	c.dirty = true
	return nil
}

// Size returns the configured position buffer dimensions.
func (c *Canvas) Size() (width, height int) {
	return c.width, c.height
}

func (c *Canvas) rebuild() (err error) {
	if !c.dirty || c.disposed {
		return nil
	}

	scratch, err := c.dev.AcquireTemporary(c.width, c.height)
	if err != nil {
		return fmt.Errorf("acquire scratch buffer: %w", err)
	}
	defer c.dev.ReleaseTemporary(scratch)

	c.dev.Clear(scratch, math.Clear)
	for i, e := range c.extractors {
		if err := e.WriteWorldTexels(scratch); err != nil {
			c.log.Error("extractor failed", zap.Int("index", i), zap.Error(err))
		}
	}

	if c.positions != nil {
		if w, h := c.positions.Size(); w != c.width || h != c.height {
			c.dev.Release(c.positions)
			c.positions = nil
		}
	}
	if c.positions == nil {
		c.positions, err = c.dev.NewPositionBuffer(c.width, c.height)
		if err != nil {
			return fmt.Errorf("allocate position buffer: %w", err)
		}
		c.log.Debug("allocated position buffer",
			zap.Int("width", c.width), zap.Int("height", c.height))
	}

	if err := c.dev.Expand(c.positions, ExpandPass{Source: scratch}); err != nil {
		return fmt.Errorf("expand position buffer: %w", err)
	}
	c.dirty = false
	c.generation++
	return nil
}

// Paint projects brush into target at position. Rotation and size default
// to identity and (1, 1, 1), color to white.
func (c *Canvas) Paint(target Texture, brush Brush, position math.Vec3, opts ...PaintOption) error {
	o := defaultPaintOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return c.PaintTRS(target, brush, o.color, position, o.rotation, o.size)
}

// PaintTRS projects brush into target through the decal transform
// TRS(position, rotation*brush.Rotation, size*brush.Size), rebuilding the
// position buffer first if it is stale.
func (c *Canvas) PaintTRS(target Texture, brush Brush, color math.Color, position math.Vec3, rotation math.Quat, size math.Vec3) error {
	if c.disposed {
		c.log.Warn("Paint on disposed canvas")
		return nil
	}
	if target == nil || brush.Texture == nil {
		c.log.Warn("Paint without target or brush texture")
		return nil
	}
	if err := c.rebuild(); err != nil {
		return err
	}

	worldToDecal, ok := brush.DecalTransform(position, rotation, size).Inverse()
	if !ok {
		c.log.Warn("degenerate decal transform, paint skipped",
			zap.Any("size", size.Mul(brush.Size)))
		return nil
	}

	return c.dev.Composite(target, DecalPass{
		Positions:    c.positions,
		Brush:        brush.Texture,
		WorldToDecal: worldToDecal,
		SmoothingMin: brush.SmoothingStart.Scale(0.5),
		SmoothingMax: brush.SmoothingEnd.Scale(0.5),
		Tint:         color.Mul(brush.Color),
	})
}

// PositionTexture returns the current position buffer, or nil before the
// first rebuild.
func (c *Canvas) PositionTexture() Texture {
	return c.positions
}

// Generation counts completed rebuilds. A CPU copy of the position
// buffer is current while the generation it was read at still matches.
func (c *Canvas) Generation() uint64 {
	return c.generation
}

// Extractors returns the number of registered geometry groups.
func (c *Canvas) Extractors() int {
	return len(c.extractors)
}

// Disposed reports whether Close was called.
func (c *Canvas) Disposed() bool {
	return c.disposed
}

// Close releases the position buffer and every extractor. Further calls
// are no-ops.
func (c *Canvas) Close() error {
	if c.disposed {
		return nil
	}
	c.disposed = true

	if c.positions != nil {
		c.dev.Release(c.positions)
		c.positions = nil
	}
	var err error
	for _, e := range c.extractors {
		err = multierr.Append(err, e.Close())
	}
	c.extractors = nil
	return err
}
