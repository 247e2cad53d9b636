package canvas

import (
	"fmt"

	"github.com/Faultbox/meshcanvas/internal/engine/camera"
	"github.com/Faultbox/meshcanvas/pkg/math"
)

// SkinnedExtractor bakes a group of skinned renderers. Their deformed
// vertices only exist inside a scene render, so the group is moved onto a
// reserved layer and rendered through a private camera.
type SkinnedExtractor struct {
	renderers []SkinnedRenderer
	bakeLayer int
	camera    Camera
}

// NewSkinnedExtractor allocates the auxiliary camera. It sees only
// bakeLayer, never clears and never occlusion-culls.
func NewSkinnedExtractor(dev Device, renderers []SkinnedRenderer, bakeLayer int) (*SkinnedExtractor, error) {
	cam, err := dev.NewCamera(CameraDesc{
		Name:             "MeshCanvas Skinned Bake",
		CullingMask:      1 << uint(bakeLayer),
		ClearTarget:      false,
		OcclusionCulling: false,
	})
	if err != nil {
		return nil, fmt.Errorf("create bake camera: %w", err)
	}
	return &SkinnedExtractor{
		renderers: append([]SkinnedRenderer(nil), renderers...),
		bakeLayer: bakeLayer,
		camera:    cam,
	}, nil
}

// WriteWorldTexels renders the live renderers of the group into target.
// Original layers are restored before returning, including when the
// render fails or panics.
func (e *SkinnedExtractor) WriteWorldTexels(target Texture) error {
	if e.camera == nil {
		return nil
	}

	bounds := math.EmptyAABB()
	for _, r := range e.renderers {
		if r != nil && r.Alive() {
			bounds = bounds.Encapsulate(r.Bounds())
		}
	}
	if bounds.IsEmpty() {
		return nil
	}

	// Restored in reverse so a renderer listed twice ends on the layer it
	// had before the first swap.
	group := e.renderers
	saved := make([]int, len(group))
	swapped := make([]bool, len(group))
	defer func() {
		for i := len(group) - 1; i >= 0; i-- {
			if swapped[i] {
				group[i].SetLayer(saved[i])
			}
		}
	}()
	for i, r := range group {
		if r == nil || !r.Alive() {
			continue
		}
		saved[i] = r.Layer()
		swapped[i] = true
		r.SetLayer(e.bakeLayer)
	}

	frame := camera.FitBounds(bounds, camera.DefaultOffsetAxis)
	e.camera.SetView(frame.View, frame.Projection)
	if err := e.camera.Render(target); err != nil {
		return fmt.Errorf("render skinned group: %w", err)
	}
	return nil
}

// Close destroys the camera and drops the renderers.
func (e *SkinnedExtractor) Close() error {
	if e.camera != nil {
		e.camera.Destroy()
		e.camera = nil
	}
	e.renderers = nil
	return nil
}
