package demo

import (
	"github.com/Faultbox/meshcanvas/internal/engine/debug"
	"github.com/Faultbox/meshcanvas/pkg/math"
)

// PositionCache keeps the latest CPU copy of each surface's position
// buffer, for picking and for scaling previews.
type PositionCache struct {
	read    PositionReader
	entries map[*Surface]cachedPositions
}

type cachedPositions struct {
	src        debug.PositionSource
	bounds     math.AABB
	generation uint64
}

// NewPositionCache creates an empty cache reading through read.
func NewPositionCache(read PositionReader) *PositionCache {
	return &PositionCache{read: read, entries: make(map[*Surface]cachedPositions)}
}

// Refresh re-bakes a stale surface.
func (c *PositionCache) Refresh(surf *Surface) error {
	if !surf.Canvas.Dirty() && surf.Canvas.PositionTexture() != nil {
		return nil
	}
	return surf.Canvas.ForceUpdate()
}

func (c *PositionCache) get(surf *Surface) (cachedPositions, error) {
	if err := c.Refresh(surf); err != nil {
		return cachedPositions{}, err
	}
	gen := surf.Canvas.Generation()
	if e, ok := c.entries[surf]; ok && e.generation == gen {
		return e, nil
	}
	src, err := c.read(surf.Canvas.PositionTexture())
	if err != nil {
		return cachedPositions{}, err
	}
	e := cachedPositions{src: src, bounds: debug.PositionBounds(src), generation: gen}
	c.entries[surf] = e
	return e, nil
}

// Positions returns the surface's current positions, reading them back
// only when the canvas was rebuilt since the last read, by this cache or
// by a paint.
func (c *PositionCache) Positions(surf *Surface) (debug.PositionSource, error) {
	e, err := c.get(surf)
	return e.src, err
}

// Bounds returns the world bounds of the surface's covered texels.
func (c *PositionCache) Bounds(surf *Surface) (math.AABB, error) {
	e, err := c.get(surf)
	return e.bounds, err
}

// Pick returns the world position under texture coordinates (u, v) of a
// surface. ok is false when no geometry covers that texel.
func (c *PositionCache) Pick(surf *Surface, u, v float32) (p math.Vec3, ok bool, err error) {
	src, err := c.Positions(surf)
	if err != nil {
		return math.Vec3{}, false, err
	}
	if u < 0 || u > 1 || v < 0 || v > 1 {
		return math.Vec3{}, false, nil
	}
	w, h := src.Size()
	x := min(int(u*float32(w)), w-1)
	y := min(int(v*float32(h)), h-1)
	p, ok = src.Position(x, y)
	return p, ok, nil
}
