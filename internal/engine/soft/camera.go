package soft

import (
	"errors"

	"go.uber.org/zap"

	"github.com/Faultbox/meshcanvas/internal/canvas"
	"github.com/Faultbox/meshcanvas/internal/engine/camera"
	"github.com/Faultbox/meshcanvas/internal/engine/scene"
	"github.com/Faultbox/meshcanvas/pkg/math"
)

// Camera renders the device scene with the position-bake program in place
// of every node's own shading. The view only decides which nodes are
// drawn; texels land at their texture coordinates.
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
// Occlusion culling is not implemented; the flag is accepted and ignored.
func (c *Camera) Render(target canvas.Texture) error {
	if c.destroyed {
		return errors.New("soft: render on destroyed camera")
	}
	img, err := c.dev.image(target, "camera target")
	if err != nil {
		return err
	}
	if c.desc.ClearTarget {
		img.Fill(math.Clear)
	}

	viewProj := c.projection.Mul(c.view)
	drawn, culled := 0, 0
	c.dev.scene.Each(c.desc.CullingMask, func(n *scene.Node) {
		if !camera.Visible(viewProj, n.Bounds()) {
			culled++
			return
		}
		rasterizeUV(img, n.Vertices(), n.SharedMesh().Indices, n.LocalToWorld())
		drawn++
	})

	c.dev.stats.CameraRenders++
	c.dev.log.Debug("camera render",
		zap.String("camera", c.desc.Name),
		zap.Int("drawn", drawn),
		zap.Int("culled", culled))
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
