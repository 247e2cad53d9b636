package gldevice

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/meshcanvas/internal/engine/model"
)

// floatsPerVertex is position (3) + texture coordinate (2).
const floatsPerVertex = 5

// meshBuffer holds one mesh on the GPU.
type meshBuffer struct {
	vao, vbo, ebo uint32
	indexCount    int32
	usage         uint32
	scratch       []float32
}

func newMeshBuffer(mesh *model.Mesh, vertices []model.Vertex, usage uint32) *meshBuffer {
	b := &meshBuffer{usage: usage}

	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)

	gl.GenBuffers(1, &b.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	b.scratch = interleave(b.scratch, vertices)
	gl.BufferData(gl.ARRAY_BUFFER, len(b.scratch)*4, gl.Ptr(b.scratch), usage)

	stride := int32(floatsPerVertex * 4)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(1)

	gl.GenBuffers(1, &b.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.ebo)
	if len(mesh.Indices) > 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, gl.Ptr(mesh.Indices), gl.STATIC_DRAW)
	}
	b.indexCount = int32(len(mesh.Indices))

	gl.BindVertexArray(0)
	return b
}

// update replaces the vertex data, orphaning the old storage.
func (b *meshBuffer) update(vertices []model.Vertex) {
	b.scratch = interleave(b.scratch, vertices)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(b.scratch)*4, gl.Ptr(b.scratch), b.usage)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func (b *meshBuffer) draw() {
	if b.indexCount == 0 {
		return
	}
	gl.BindVertexArray(b.vao)
	gl.DrawElementsWithOffset(gl.TRIANGLES, b.indexCount, gl.UNSIGNED_INT, 0)
	gl.BindVertexArray(0)
}

func (b *meshBuffer) destroy() {
	if b.vao != 0 {
		gl.DeleteVertexArrays(1, &b.vao)
		b.vao = 0
	}
	if b.vbo != 0 {
		gl.DeleteBuffers(1, &b.vbo)
		b.vbo = 0
	}
	if b.ebo != 0 {
		gl.DeleteBuffers(1, &b.ebo)
		b.ebo = 0
	}
}

// interleave packs position and texture coordinate per vertex into dst.
func interleave(dst []float32, vertices []model.Vertex) []float32 {
	dst = dst[:0]
	for _, v := range vertices {
		dst = append(dst, v.Position.X, v.Position.Y, v.Position.Z, v.UV.X, v.UV.Y)
	}
	return dst
}
