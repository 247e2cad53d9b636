package canvas

// StaticExtractor bakes a non-deforming mesh with a direct draw.
type StaticExtractor struct {
	dev       Device
	mesh      MeshHolder
	transform TransformHolder
}

// NewStaticExtractor creates an extractor for mesh placed by transform.
func NewStaticExtractor(dev Device, mesh MeshHolder, transform TransformHolder) *StaticExtractor {
	return &StaticExtractor{dev: dev, mesh: mesh, transform: transform}
}

// WriteWorldTexels draws the mesh at its current transform. If the host
// destroyed either holder the write is skipped.
func (e *StaticExtractor) WriteWorldTexels(target Texture) error {
	if e.mesh == nil || e.transform == nil || !e.mesh.Alive() || !e.transform.Alive() {
		return nil
	}
	mesh := e.mesh.SharedMesh()
	if mesh == nil {
		return nil
	}
	return e.dev.DrawPositions(target, BakePass{
		Mesh:         mesh,
		LocalToWorld: e.transform.LocalToWorld(),
	})
}

// Close drops the references. It owns nothing.
func (e *StaticExtractor) Close() error {
	e.dev = nil
	e.mesh = nil
	e.transform = nil
	return nil
}
