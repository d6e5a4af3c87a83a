// Package gpu is the boundary between the renderer and the graphics API.
//
// Everything above this package issues GPU commands through a Device, and
// mutates the pipeline state that OpenGL keeps globally (bound program,
// bound vertex array, bound framebuffer, enabled capabilities) through a Context.
// gpu/gpugl implements Device with OpenGL 4.1, gpu/gputest with an in-memory recorder.
package gpu

import (
	"errors"
	"unsafe"
)

var (
	// ErrOutOfMemory is reported when the driver fails an allocation (GL_OUT_OF_MEMORY).
	// Retrying without freeing something first won't help.
	ErrOutOfMemory = errors.New("gpu: out of memory")

	// ErrObjectCreation is returned when the driver refuses to hand out a new object name (returned id 0)
	ErrObjectCreation = errors.New("gpu: failed to create object")
)

// InvalidIndex is returned by GetUniformBlockIndex when the block doesn't exist
const InvalidIndex uint32 = 0xFFFFFFFF

type Device interface {
	// Shaders and programs
	CreateShader(stage ShaderStage) uint32
	ShaderSource(shader uint32, src string)
	CompileShader(shader uint32) (ok bool, infoLog string)
	DeleteShader(shader uint32)

	CreateProgram() uint32
	AttachShader(program, shader uint32)
	BindAttribLocation(program, index uint32, name string)
	GetAttribLocation(program uint32, name string) int32
	LinkProgram(program uint32) (ok bool, infoLog string)
	DeleteProgram(program uint32)
	UseProgram(program uint32)

	GetUniformLocation(program uint32, name string) int32
	ActiveUniforms(program uint32) []string
	GetUniformBlockIndex(program uint32, name string) uint32
	UniformBlockBinding(program, blockIndex, binding uint32)

	// Uniform setters act on the currently used program
	Uniform1i(loc int32, v int32)
	Uniform1f(loc int32, v float32)
	Uniform2f(loc int32, x, y float32)
	Uniform3f(loc int32, x, y, z float32)
	Uniform4f(loc int32, x, y, z, w float32)
	UniformMatrix3(loc int32, m *[3][3]float32)
	UniformMatrix4(loc int32, m *[4][4]float32)

	// Buffers
	GenBuffer() uint32
	DeleteBuffer(id uint32)
	BindBuffer(target BufferTarget, id uint32)
	BindBufferBase(target BufferTarget, index, id uint32)
	BufferData(target BufferTarget, size int, data unsafe.Pointer, usage BufUsage)
	BufferSubData(target BufferTarget, offset, size int, data unsafe.Pointer)

	// Vertex arrays
	GenVertexArray() uint32
	DeleteVertexArray(id uint32)
	BindVertexArray(id uint32)
	EnableVertexAttribArray(index uint32)
	VertexAttribPointer(index uint32, compCount int32, scalarType ScalarType, normalized bool, stride int32, offset uintptr)

	// Drawing
	DrawArrays(mode Primitive, first, count int32)
	DrawElementsBaseVertex(mode Primitive, count int32, indexOffset uintptr, baseVertex int32)

	// Textures
	GenTexture() uint32
	DeleteTexture(id uint32)
	ActiveTexture(unit uint32)
	BindTexture(target TextureTarget, id uint32)
	TexImage2D(target TextureTarget, width, height int32, format TextureFormat, pixels unsafe.Pointer)
	TexParameters(target TextureTarget, filter TextureFilter, wrap TextureWrap)
	GenerateMipmap(target TextureTarget)

	// Framebuffers. Attachment calls act on the currently bound framebuffer
	GenFramebuffer() uint32
	DeleteFramebuffer(id uint32)
	BindFramebuffer(id uint32)
	FramebufferTexture2D(attachment Attachment, textureId uint32)
	GenRenderbuffer() uint32
	DeleteRenderbuffer(id uint32)
	RenderbufferStorage(id uint32, format TextureFormat, width, height int32)
	FramebufferRenderbuffer(attachment Attachment, renderbufferId uint32)
	FramebufferComplete() bool

	// Fixed function state
	Viewport(x, y, width, height int32)
	ClearColor(r, g, b, a float32)
	Clear(mask ClearMask)
	SetCapability(c Capability, enabled bool)
	DepthMask(enabled bool)
	DepthFunc(f DepthFunc)
	CullFace(f Face)
	FrontFace(w Winding)
	BlendFunc(src, dst BlendFactor)

	// Error returns ErrOutOfMemory, another non-nil error for other driver errors, or nil
	Error() error
}
