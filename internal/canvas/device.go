package canvas

import (
	"image"

	"github.com/Faultbox/meshcanvas/internal/engine/model"
	"github.com/Faultbox/meshcanvas/pkg/math"
)

// Texture is a device image that can be rendered into or sampled.
type Texture interface {
	Size() (width, height int)
}

// Device is the host rasterization pipeline. Implementations own the
// shared position-bake, border-expansion and decal programs: they are
// built when the device is constructed and torn down when it is closed.
// All methods must be called from the thread that owns the pipeline.
type Device interface {
	// NewPositionBuffer allocates a persistent RGBA half-float image.
	NewPositionBuffer(width, height int) (Texture, error)
	// NewRenderTarget allocates an RGBA8 image to paint on.
	NewRenderTarget(width, height int) (Texture, error)
	// NewTexture uploads a brush image.
	NewTexture(img image.Image) (Texture, error)
	// Release frees a texture returned by one of the constructors above.
	Release(tex Texture)

	// AcquireTemporary returns a scratch RGBA half-float image. Contents
	// are undefined until cleared.
	AcquireTemporary(width, height int) (Texture, error)
	// ReleaseTemporary hands a scratch image back.
	ReleaseTemporary(tex Texture)

	// Clear fills target with c.
	Clear(target Texture, c math.Color)
	// DrawPositions rasterizes a mesh into target with the position-bake
	// program. Texels the mesh does not cover are left unmodified.
	DrawPositions(target Texture, pass BakePass) error
	// Expand filters pass.Source into dst with the border-expansion program.
	Expand(dst Texture, pass ExpandPass) error
	// Composite blends a decal into target with the decal program.
	Composite(target Texture, pass DecalPass) error

	// NewCamera allocates an auxiliary camera that renders the host scene.
	NewCamera(desc CameraDesc) (Camera, error)
}

// CameraDesc configures an auxiliary camera.
type CameraDesc struct {
	Name string
	// CullingMask selects the layers the camera renders, one bit per layer.
	CullingMask uint32
	// ClearTarget clears the target before rendering. When false the
	// camera draws additively into existing contents.
	ClearTarget bool
	// OcclusionCulling lets the device skip objects hidden behind others.
	OcclusionCulling bool
}

// Camera is an auxiliary, never-displayed camera owned by one extractor.
type Camera interface {
	// SetView places the camera.
	SetView(view, projection math.Mat4)
	// Render draws every object on the culling mask that the camera sees
	// into target, with the position-bake program overriding each
	// object's own shading.
	Render(target Texture) error
	// Destroy releases the camera. Calling it more than once is allowed.
	Destroy()
}

// BakePass describes one position-bake draw.
type BakePass struct {
	Mesh         *model.Mesh
	LocalToWorld math.Mat4
}

// ExpandPass describes one border-expansion blit.
type ExpandPass struct {
	Source Texture
}

// DecalPass describes one decal-compositing blit. All fields are read by
// the device during the call and not retained.
type DecalPass struct {
	// Positions is the world-position buffer sampled per target pixel.
	Positions Texture
	// Brush is sampled in decal-local XY.
	Brush Texture
	// WorldToDecal maps world space into the decal's unit cube.
	WorldToDecal math.Mat4
	// SmoothingMin and SmoothingMax are the falloff bounds in the unit
	// cube (half of the brush smoothing start and end).
	SmoothingMin math.Vec3
	SmoothingMax math.Vec3
	Tint         math.Color
}

// Object is a host scene object whose lifetime is managed outside the
// canvas. Alive reports false once the host destroyed it.
type Object interface {
	Alive() bool
}

// MeshHolder exposes the shared mesh of a static renderer.
type MeshHolder interface {
	Object
	SharedMesh() *model.Mesh
}

// TransformHolder exposes where an object sits in the world.
type TransformHolder interface {
	Object
	LocalToWorld() math.Mat4
}

// SkinnedRenderer is a deforming renderer whose skinned positions only
// exist inside the host's scene render.
type SkinnedRenderer interface {
	Object
	// Bounds returns the world-space bounds of the deformed mesh.
	Bounds() math.AABB
	Layer() int
	SetLayer(layer int)
}

// LayerResolver maps render layer names to layer indices.
type LayerResolver interface {
	LayerByName(name string) (int, bool)
}
