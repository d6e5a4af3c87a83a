// Package gpugl implements gpu.Device on top of OpenGL 4.1 core.
//
// gl.Init must have been called on the thread owning the GL context before any
// method is used, and every method must be called from that same thread.
package gpugl

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/bloeys/nrend/gpu"
	"github.com/go-gl/gl/v4.1-core/gl"
)

var _ gpu.Device = &Device{}

type Device struct{}

func New() *Device {
	return &Device{}
}

func (d *Device) CreateShader(stage gpu.ShaderStage) uint32 {
	return gl.CreateShader(shaderStageToGL(stage))
}

func (d *Device) ShaderSource(shader uint32, src string) {

	// Source needs to be null terminated
	cstr, free := gl.Strs(src + "\x00")
	defer free()
	gl.ShaderSource(shader, 1, cstr, nil)
}

func (d *Device) CompileShader(shader uint32) (ok bool, infoLog string) {

	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.TRUE {
		return true, ""
	}

	var logLength int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))

	return false, strings.TrimRight(log, "\x00")
}

func (d *Device) DeleteShader(shader uint32) {
	gl.DeleteShader(shader)
}

func (d *Device) CreateProgram() uint32 {
	return gl.CreateProgram()
}

func (d *Device) AttachShader(program, shader uint32) {
	gl.AttachShader(program, shader)
}

func (d *Device) BindAttribLocation(program, index uint32, name string) {
	gl.BindAttribLocation(program, index, gl.Str(name+"\x00"))
}

func (d *Device) GetAttribLocation(program uint32, name string) int32 {
	return gl.GetAttribLocation(program, gl.Str(name+"\x00"))
}

func (d *Device) LinkProgram(program uint32) (ok bool, infoLog string) {

	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.TRUE {
		return true, ""
	}

	var logLength int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))

	return false, strings.TrimRight(log, "\x00")
}

func (d *Device) DeleteProgram(program uint32) {
	gl.DeleteProgram(program)
}

func (d *Device) UseProgram(program uint32) {
	gl.UseProgram(program)
}

func (d *Device) GetUniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (d *Device) ActiveUniforms(program uint32) []string {

	var count int32
	gl.GetProgramiv(program, gl.ACTIVE_UNIFORMS, &count)

	var maxNameLen int32
	gl.GetProgramiv(program, gl.ACTIVE_UNIFORM_MAX_LENGTH, &maxNameLen)

	names := make([]string, 0, count)
	nameBuf := make([]uint8, maxNameLen+1)
	for i := uint32(0); i < uint32(count); i++ {

		var nameLen int32
		var size int32
		var xtype uint32
		gl.GetActiveUniform(program, i, int32(len(nameBuf)), &nameLen, &size, &xtype, &nameBuf[0])

		// Arrays are reported as 'name[0]'
		name := strings.TrimSuffix(string(nameBuf[:nameLen]), "[0]")
		names = append(names, name)
	}

	return names
}

func (d *Device) GetUniformBlockIndex(program uint32, name string) uint32 {
	return gl.GetUniformBlockIndex(program, gl.Str(name+"\x00"))
}

func (d *Device) UniformBlockBinding(program, blockIndex, binding uint32) {
	gl.UniformBlockBinding(program, blockIndex, binding)
}

func (d *Device) Uniform1i(loc int32, v int32) {
	gl.Uniform1i(loc, v)
}

func (d *Device) Uniform1f(loc int32, v float32) {
	gl.Uniform1f(loc, v)
}

func (d *Device) Uniform2f(loc int32, x, y float32) {
	gl.Uniform2f(loc, x, y)
}

func (d *Device) Uniform3f(loc int32, x, y, z float32) {
	gl.Uniform3f(loc, x, y, z)
}

func (d *Device) Uniform4f(loc int32, x, y, z, w float32) {
	gl.Uniform4f(loc, x, y, z, w)
}

func (d *Device) UniformMatrix3(loc int32, m *[3][3]float32) {
	gl.UniformMatrix3fv(loc, 1, false, &m[0][0])
}

func (d *Device) UniformMatrix4(loc int32, m *[4][4]float32) {
	gl.UniformMatrix4fv(loc, 1, false, &m[0][0])
}

func (d *Device) GenBuffer() uint32 {
	var id uint32
	gl.GenBuffers(1, &id)
	return id
}

func (d *Device) DeleteBuffer(id uint32) {
	gl.DeleteBuffers(1, &id)
}

func (d *Device) BindBuffer(target gpu.BufferTarget, id uint32) {
	gl.BindBuffer(bufferTargetToGL(target), id)
}

func (d *Device) BindBufferBase(target gpu.BufferTarget, index, id uint32) {
	gl.BindBufferBase(bufferTargetToGL(target), index, id)
}

func (d *Device) BufferData(target gpu.BufferTarget, size int, data unsafe.Pointer, usage gpu.BufUsage) {
	gl.BufferData(bufferTargetToGL(target), size, data, bufUsageToGL(usage))
}

func (d *Device) BufferSubData(target gpu.BufferTarget, offset, size int, data unsafe.Pointer) {
	gl.BufferSubData(bufferTargetToGL(target), offset, size, data)
}

func (d *Device) GenVertexArray() uint32 {
	var id uint32
	gl.GenVertexArrays(1, &id)
	return id
}

func (d *Device) DeleteVertexArray(id uint32) {
	gl.DeleteVertexArrays(1, &id)
}

func (d *Device) BindVertexArray(id uint32) {
	gl.BindVertexArray(id)
}

func (d *Device) EnableVertexAttribArray(index uint32) {
	gl.EnableVertexAttribArray(index)
}

func (d *Device) VertexAttribPointer(index uint32, compCount int32, scalarType gpu.ScalarType, normalized bool, stride int32, offset uintptr) {
	gl.VertexAttribPointerWithOffset(index, compCount, scalarTypeToGL(scalarType), normalized, stride, offset)
}

func (d *Device) DrawArrays(mode gpu.Primitive, first, count int32) {
	gl.DrawArrays(primitiveToGL(mode), first, count)
}

func (d *Device) DrawElementsBaseVertex(mode gpu.Primitive, count int32, indexOffset uintptr, baseVertex int32) {
	gl.DrawElementsBaseVertexWithOffset(primitiveToGL(mode), count, gl.UNSIGNED_INT, indexOffset, baseVertex)
}

func (d *Device) GenTexture() uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	return id
}

func (d *Device) DeleteTexture(id uint32) {
	gl.DeleteTextures(1, &id)
}

func (d *Device) ActiveTexture(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
}

func (d *Device) BindTexture(target gpu.TextureTarget, id uint32) {
	gl.BindTexture(textureTargetToGL(target), id)
}

func (d *Device) TexImage2D(target gpu.TextureTarget, width, height int32, format gpu.TextureFormat, pixels unsafe.Pointer) {
	internalFormat, pixelFormat, pixelType := textureFormatToGL(format)
	gl.TexImage2D(textureTargetToGL(target), 0, internalFormat, width, height, 0, pixelFormat, pixelType, pixels)
}

func (d *Device) TexParameters(target gpu.TextureTarget, filter gpu.TextureFilter, wrap gpu.TextureWrap) {

	glTarget := textureTargetToGL(target)

	switch filter {
	case gpu.TextureFilter_Nearest:
		gl.TexParameteri(glTarget, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
		gl.TexParameteri(glTarget, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	case gpu.TextureFilter_Mipmap:
		gl.TexParameteri(glTarget, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
		gl.TexParameteri(glTarget, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	default:
		gl.TexParameteri(glTarget, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		gl.TexParameteri(glTarget, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	}

	glWrap := int32(gl.CLAMP_TO_EDGE)
	if wrap == gpu.TextureWrap_Repeat {
		glWrap = gl.REPEAT
	}

	gl.TexParameteri(glTarget, gl.TEXTURE_WRAP_S, glWrap)
	gl.TexParameteri(glTarget, gl.TEXTURE_WRAP_T, glWrap)
	if target == gpu.TextureTarget_CubeMap {
		gl.TexParameteri(glTarget, gl.TEXTURE_WRAP_R, glWrap)
	}
}

func (d *Device) GenerateMipmap(target gpu.TextureTarget) {
	gl.GenerateMipmap(textureTargetToGL(target))
}

func (d *Device) GenFramebuffer() uint32 {
	var id uint32
	gl.GenFramebuffers(1, &id)
	return id
}

func (d *Device) DeleteFramebuffer(id uint32) {
	gl.DeleteFramebuffers(1, &id)
}

func (d *Device) BindFramebuffer(id uint32) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, id)
}

func (d *Device) FramebufferTexture2D(attachment gpu.Attachment, textureId uint32) {
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, attachmentToGL(attachment), gl.TEXTURE_2D, textureId, 0)
}

func (d *Device) GenRenderbuffer() uint32 {
	var id uint32
	gl.GenRenderbuffers(1, &id)
	return id
}

func (d *Device) DeleteRenderbuffer(id uint32) {
	gl.DeleteRenderbuffers(1, &id)
}

func (d *Device) RenderbufferStorage(id uint32, format gpu.TextureFormat, width, height int32) {
	internalFormat, _, _ := textureFormatToGL(format)
	gl.BindRenderbuffer(gl.RENDERBUFFER, id)
	gl.RenderbufferStorage(gl.RENDERBUFFER, uint32(internalFormat), width, height)
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
}

func (d *Device) FramebufferRenderbuffer(attachment gpu.Attachment, renderbufferId uint32) {
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, attachmentToGL(attachment), gl.RENDERBUFFER, renderbufferId)
}

func (d *Device) FramebufferComplete() bool {
	return gl.CheckFramebufferStatus(gl.FRAMEBUFFER) == gl.FRAMEBUFFER_COMPLETE
}

func (d *Device) Viewport(x, y, width, height int32) {
	gl.Viewport(x, y, width, height)
}

func (d *Device) ClearColor(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
}

func (d *Device) Clear(mask gpu.ClearMask) {
	gl.Clear(clearMaskToGL(mask))
}

func (d *Device) SetCapability(c gpu.Capability, enabled bool) {

	if enabled {
		gl.Enable(capabilityToGL(c))
	} else {
		gl.Disable(capabilityToGL(c))
	}
}

func (d *Device) DepthMask(enabled bool) {
	gl.DepthMask(enabled)
}

func (d *Device) DepthFunc(f gpu.DepthFunc) {
	gl.DepthFunc(depthFuncToGL(f))
}

func (d *Device) CullFace(f gpu.Face) {
	gl.CullFace(faceToGL(f))
}

func (d *Device) FrontFace(w gpu.Winding) {
	gl.FrontFace(windingToGL(w))
}

func (d *Device) BlendFunc(src, dst gpu.BlendFactor) {
	gl.BlendFunc(blendFactorToGL(src), blendFactorToGL(dst))
}

func (d *Device) Error() error {

	// Drain the error queue so that the next check starts clean, but report OOM over anything else
	var firstErr uint32
	oom := false
	for glErr := gl.GetError(); glErr != gl.NO_ERROR; glErr = gl.GetError() {

		if glErr == gl.OUT_OF_MEMORY {
			oom = true
		}

		if firstErr == 0 {
			firstErr = glErr
		}
	}

	if oom {
		return gpu.ErrOutOfMemory
	}

	if firstErr != 0 {
		return fmt.Errorf("gpu: opengl error code 0x%x", firstErr)
	}

	return nil
}
