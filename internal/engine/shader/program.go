package shader

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Program is a linked program with its uniform locations cached by name.
type Program struct {
	Name     string
	id       uint32
	uniforms map[string]int32
}

// NewProgram compiles and links a program and looks up uniforms. A
// uniform missing from the linked program is an error, so a stale shader
// fails when the device is created rather than at first use.
func NewProgram(name, vertexSrc, fragmentSrc string, uniforms ...string) (*Program, error) {
	id, err := CompileProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return nil, fmt.Errorf("program %s: %w", name, err)
	}
	p := &Program{Name: name, id: id, uniforms: make(map[string]int32, len(uniforms))}
	for _, u := range uniforms {
		loc := GetUniform(id, u)
		if loc < 0 {
			gl.DeleteProgram(id)
			return nil, fmt.Errorf("program %s: uniform %q not found", name, u)
		}
		p.uniforms[u] = loc
	}
	return p, nil
}

// ID returns the GL program name.
func (p *Program) ID() uint32 {
	return p.id
}

// Use binds the program.
func (p *Program) Use() {
	gl.UseProgram(p.id)
}

func (p *Program) loc(name string) int32 {
	loc, ok := p.uniforms[name]
	if !ok {
		panic(fmt.Sprintf("program %s: uniform %q not registered", p.Name, name))
	}
	return loc
}

// SetMat4 sets a column-major matrix uniform.
func (p *Program) SetMat4(name string, m *[16]float32) {
	gl.UniformMatrix4fv(p.loc(name), 1, false, &m[0])
}

// SetVec3 sets a vec3 uniform.
func (p *Program) SetVec3(name string, x, y, z float32) {
	gl.Uniform3f(p.loc(name), x, y, z)
}

// SetVec4 sets a vec4 uniform.
func (p *Program) SetVec4(name string, x, y, z, w float32) {
	gl.Uniform4f(p.loc(name), x, y, z, w)
}

// SetTexture binds tex to unit and points the sampler uniform at it.
func (p *Program) SetTexture(name string, unit int, tex uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.Uniform1i(p.loc(name), int32(unit))
}

// Delete frees the program. It is safe to call twice.
func (p *Program) Delete() {
	if p.id != 0 {
		gl.DeleteProgram(p.id)
		p.id = 0
	}
}

// SetInt sets an int or sampler uniform.
func (p *Program) SetInt(name string, v int32) {
	gl.Uniform1i(p.loc(name), v)
}
