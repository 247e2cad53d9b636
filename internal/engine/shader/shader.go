// Package shader compiles GLSL programs and wraps their uniforms.
package shader

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Stage is a shader pipeline stage.
type Stage uint32

const (
	Vertex   Stage = gl.VERTEX_SHADER
	Fragment Stage = gl.FRAGMENT_SHADER
)

func (s Stage) String() string {
	switch s {
	case Vertex:
		return "vertex"
	case Fragment:
		return "fragment"
	default:
		return fmt.Sprintf("stage(0x%x)", uint32(s))
	}
}

// CompileProgram compiles both stages and links them. The intermediate
// shader objects are always deleted; on failure so is the program.
func CompileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vs, err := compile(Vertex, vertexSrc)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vs)

	fs, err := compile(Fragment, fragmentSrc)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fs)

	id := gl.CreateProgram()
	gl.AttachShader(id, vs)
	gl.AttachShader(id, fs)
	gl.LinkProgram(id)
	gl.DetachShader(id, vs)
	gl.DetachShader(id, fs)

	if ok, msg := status(id, gl.LINK_STATUS, gl.GetProgramiv, gl.GetProgramInfoLog); !ok {
		gl.DeleteProgram(id)
		return 0, fmt.Errorf("link: %s", msg)
	}
	return id, nil
}

func compile(stage Stage, source string) (uint32, error) {
	id := gl.CreateShader(uint32(stage))
	src, free := gl.Strs(source + "\x00")
	gl.ShaderSource(id, 1, src, nil)
	free()
	gl.CompileShader(id)

	if ok, msg := status(id, gl.COMPILE_STATUS, gl.GetShaderiv, gl.GetShaderInfoLog); !ok {
		gl.DeleteShader(id)
		return 0, fmt.Errorf("%s shader: %s", stage, msg)
	}
	return id, nil
}

// status reads a compile or link status and, when it failed, the info log.
func status(
	id, param uint32,
	get func(uint32, uint32, *int32),
	infoLog func(uint32, int32, *int32, *uint8),
) (bool, string) {
	var ok int32
	get(id, param, &ok)
	if ok != gl.FALSE {
		return true, ""
	}
	var n int32
	get(id, gl.INFO_LOG_LENGTH, &n)
	if n <= 0 {
		return false, "no info log"
	}
	buf := make([]byte, n)
	infoLog(id, n, nil, &buf[0])
	return false, strings.TrimRight(string(buf), "\x00\n")
}

// GetUniform returns the uniform location for the given name, or -1 if
// the program has no active uniform by that name.
func GetUniform(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}
