// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// BakeVertexShader places each vertex at its texture coordinate and
// passes its world position on.
//
//go:embed bake.vert
var BakeVertexShader string

// BakeFragmentShader writes the world position with alpha 1.
//
//go:embed bake.frag
var BakeFragmentShader string

// FullscreenVertexShader draws one screen-covering triangle without
// vertex buffers.
//
//go:embed fullscreen.vert
var FullscreenVertexShader string

// ExpandFragmentShader fills empty texels from their neighbors.
//
//go:embed expand.frag
var ExpandFragmentShader string

// DecalFragmentShader projects a brush through the position buffer.
//
//go:embed decal.frag
var DecalFragmentShader string

// PreviewFragmentShader shows a texture on screen.
//
//go:embed preview.frag
var PreviewFragmentShader string
