package gldevice

import (
	"errors"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/meshcanvas/internal/canvas"
	"github.com/Faultbox/meshcanvas/internal/engine/camera"
	"github.com/Faultbox/meshcanvas/internal/engine/scene"
	"github.com/Faultbox/meshcanvas/pkg/math"
)

// Camera renders the device scene with the bake program overriding every
// node's shading. The view decides which nodes are drawn; skinned nodes
// are deformed on the CPU and streamed each render.
type Camera struct {
	dev        *Device
	desc       canvas.CameraDesc
	view       math.Mat4
	projection math.Mat4
	destroyed  bool
}

// SetView places the camera.
func (c *Camera) SetView(view, projection math.Mat4) {
	c.view = view
	c.projection = projection
}

// Render draws every visible live node on the culling mask into target.
// Occlusion culling is not implemented.
func (c *Camera) Render(target canvas.Texture) error {
	if c.destroyed {
		return errors.New("gldevice: render on destroyed camera")
	}
	t, err := c.dev.texture(target, "camera target")
	if err != nil {
		return err
	}

	restore := t.fb.BindWithViewport()
	defer restore()
	if c.desc.ClearTarget {
		gl.ClearColor(0, 0, 0, 0)
		gl.Clear(gl.COLOR_BUFFER_BIT)
	}
	rasterState()
	c.dev.bake.Use()

	viewProj := c.projection.Mul(c.view)
	drawn := 0
	c.dev.scene.Each(c.desc.CullingMask, func(n *scene.Node) {
		if !camera.Visible(viewProj, n.Bounds()) {
			return
		}
		m := [16]float32(n.LocalToWorld())
		c.dev.bake.SetMat4("uLocalToWorld", &m)
		c.dev.nodeBuffer(n).draw()
		drawn++
	})

	c.dev.pruneSkinned()
	c.dev.log.Debug("camera render", zap.String("camera", c.desc.Name), zap.Int("drawn", drawn))
	return nil
}

// Destroy releases the camera.
func (c *Camera) Destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true
	if c.dev.cameras != nil {
		delete(c.dev.cameras, c)
	}
}

// nodeBuffer returns the GPU buffer for a node: the shared static buffer,
// or a per-node stream of its current skinned pose.
func (d *Device) nodeBuffer(n *scene.Node) *meshBuffer {
	if n.Skin() == nil {
		return d.staticBuffer(n.SharedMesh())
	}
	b, ok := d.skinned[n]
	if !ok {
		b = newMeshBuffer(n.SharedMesh(), n.Vertices(), gl.DYNAMIC_DRAW)
		d.skinned[n] = b
		return b
	}
	b.update(n.Vertices())
	return b
}

func (d *Device) pruneSkinned() {
	for n, b := range d.skinned {
		if !n.Alive() {
			b.destroy()
			delete(d.skinned, n)
		}
	}
}
