package model

import (
	"fmt"

	"github.com/Faultbox/meshcanvas/pkg/math"
)

// MaxInfluences is the number of bones that may affect one vertex.
const MaxInfluences = 4

// Influence binds a vertex to up to four bones. Unused slots carry zero
// weight.
type Influence struct {
	Bones   [MaxInfluences]uint16
	Weights [MaxInfluences]float32
}

// Skin deforms a bind-pose mesh with linear blend skinning. Bone matrices
// are skinning matrices (bone world transform times inverse bind pose) in
// the mesh's local space.
type Skin struct {
	Mesh       *Mesh
	Influences []Influence
	Bones      []math.Mat4
}

// NewSkin validates that every vertex has an influence entry referencing
// existing bones, and starts with every bone at identity.
func NewSkin(mesh *Mesh, influences []Influence, boneCount int) (*Skin, error) {
	if len(influences) != len(mesh.Vertices) {
		return nil, fmt.Errorf("skin %s: %d influences for %d vertices",
			mesh.Name, len(influences), len(mesh.Vertices))
	}
	for i, inf := range influences {
		for k, b := range inf.Bones {
			if inf.Weights[k] != 0 && int(b) >= boneCount {
				return nil, fmt.Errorf("skin %s: vertex %d references bone %d of %d",
					mesh.Name, i, b, boneCount)
			}
		}
	}

	bones := make([]math.Mat4, boneCount)
	for i := range bones {
		bones[i] = math.Identity()
	}
	return &Skin{Mesh: mesh, Influences: influences, Bones: bones}, nil
}

// SetBone replaces one skinning matrix. Out-of-range indices are ignored.
func (s *Skin) SetBone(i int, m math.Mat4) {
	if i >= 0 && i < len(s.Bones) {
		s.Bones[i] = m
	}
}

// Deform writes the skinned vertices into dst (grown as needed) and
// returns it. UVs are carried over untouched, so a deformed vertex still
// maps to the same texel.
func (s *Skin) Deform(dst []Vertex) []Vertex {
	src := s.Mesh.Vertices
	if cap(dst) < len(src) {
		dst = make([]Vertex, len(src))
	}
	dst = dst[:len(src)]

	for i, v := range src {
		inf := s.Influences[i]
		var pos, nrm math.Vec3
		var total float32
		for k := 0; k < MaxInfluences; k++ {
			w := inf.Weights[k]
			if w == 0 {
				continue
			}
			m := s.Bones[inf.Bones[k]]
			pos = pos.Add(m.TransformPoint(v.Position).Scale(w))
			nrm = nrm.Add(m.TransformDirection(v.Normal).Scale(w))
			total += w
		}
		if total == 0 {
			dst[i] = v
			continue
		}
		dst[i] = Vertex{
			Position: pos.Scale(1 / total),
			Normal:   nrm.Normalize(),
			UV:       v.UV,
		}
	}
	return dst
}

// Bounds returns the local-space bounds of the deformed vertices.
func Bounds(vertices []Vertex) math.AABB {
	b := math.EmptyAABB()
	for _, v := range vertices {
		b = b.EncapsulatePoint(v.Position)
	}
	return b
}

// RigidInfluences binds every vertex fully to one bone chosen by pick.
func RigidInfluences(mesh *Mesh, pick func(Vertex) int) []Influence {
	out := make([]Influence, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		out[i] = Influence{
			Bones:   [MaxInfluences]uint16{uint16(pick(v))},
			Weights: [MaxInfluences]float32{1},
		}
	}
	return out
}
