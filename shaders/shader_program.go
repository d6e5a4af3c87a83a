package shaders

import (
	"github.com/bloeys/gglm/gglm"
	"github.com/bloeys/nrend/assert"
	"github.com/bloeys/nrend/gpu"
	"github.com/bloeys/nrend/logging"
)

// ShaderProgram owns a linked GPU program.
//
// Only one ShaderProgram may own a given program id. Use Move to hand the id to another value,
// which leaves the source empty (Id == 0) so that deleting it is a no-op.
type ShaderProgram struct {
	Id     uint32
	Name   string
	Layout AttribLayout

	// uniforms caches every lookup, including failed ones, for the lifetime of the program
	uniforms        map[string]Uniform
	nextTextureUnit int32
	ctx             *gpu.Context
}

func (sp *ShaderProgram) Use() {
	sp.ctx.UseProgram(sp.Id)
}

func (sp *ShaderProgram) UnUse() {
	sp.ctx.UseProgram(0)
}

func (sp *ShaderProgram) IsBound() bool {
	return sp.ctx.IsProgramBound(sp.Id)
}

// Move transfers ownership of the GPU program to the returned value and empties sp
func (sp *ShaderProgram) Move() ShaderProgram {
	moved := *sp
	*sp = ShaderProgram{ctx: sp.ctx, Name: sp.Name}
	return moved
}

// Delete deletes the GPU program. Deleting an empty program does nothing
func (sp *ShaderProgram) Delete() {

	if sp.Id == 0 {
		return
	}

	sp.ctx.DeleteProgram(sp.Id)
	sp.Id = 0
	sp.uniforms = nil
	sp.nextTextureUnit = 0
}

// GetUniform resolves the uniform once and caches it. Unknown names are logged once
// and return a uniform that is safe to pass to the setters, which will ignore it
func (sp *ShaderProgram) GetUniform(name string) Uniform {

	if u, ok := sp.uniforms[name]; ok {
		return u
	}

	if sp.uniforms == nil {
		sp.uniforms = make(map[string]Uniform)
	}

	loc := sp.ctx.Dev.GetUniformLocation(sp.Id, name)
	if loc == -1 {
		logging.WarnLog.Printf("Uniform '%s' not found in shader program '%s' (id=%d). It is either not declared or unused\n", name, sp.Name, sp.Id)
		u := invalidUniform(name, sp.Id)
		sp.uniforms[name] = u
		return u
	}

	u := Uniform{
		Name:        name,
		Location:    loc,
		Program:     sp.Id,
		TextureUnit: -1,
	}
	sp.uniforms[name] = u
	return u
}

func (sp *ShaderProgram) HasUniform(name string) bool {
	u := sp.GetUniform(name)
	return u.IsValid()
}

// ActiveUniforms lists every uniform the driver reports for this program
func (sp *ShaderProgram) ActiveUniforms() []string {
	return sp.ctx.Dev.ActiveUniforms(sp.Id)
}

// SetupTextures assigns consecutive texture units to the passed sampler uniforms and writes
// the unit to each sampler. Units continue from previous calls. Binds the program.
func (sp *ShaderProgram) SetupTextures(uniforms ...*Uniform) {

	sp.Use()

	for _, u := range uniforms {

		if !u.IsValid() {
			continue
		}

		assert.T(u.Program == sp.Id, "Uniform '%s' of program %d was passed to SetupTextures of program %d", u.Name, u.Program, sp.Id)

		u.TextureUnit = sp.nextTextureUnit
		sp.nextTextureUnit++

		sp.uniforms[u.Name] = *u
		sp.ctx.Dev.Uniform1i(u.Location, u.TextureUnit)
	}
}

func (sp *ShaderProgram) checkUniform(u *Uniform) bool {

	if !u.IsValid() {
		return false
	}

	assert.T(sp.IsBound(), "Setting uniform '%s' of program '%s' (id=%d), but the program is not bound. Bound program is %d", u.Name, sp.Name, sp.Id, sp.ctx.BoundProgram)
	assert.T(u.Program == sp.Id, "Setting uniform '%s' that belongs to program %d through program '%s' (id=%d)", u.Name, u.Program, sp.Name, sp.Id)
	return true
}

func (sp *ShaderProgram) SetInt(u Uniform, v int32) {
	if sp.checkUniform(&u) {
		sp.ctx.Dev.Uniform1i(u.Location, v)
	}
}

func (sp *ShaderProgram) SetBool(u Uniform, v bool) {

	var i int32
	if v {
		i = 1
	}

	sp.SetInt(u, i)
}

func (sp *ShaderProgram) SetFloat(u Uniform, v float32) {
	if sp.checkUniform(&u) {
		sp.ctx.Dev.Uniform1f(u.Location, v)
	}
}

func (sp *ShaderProgram) SetVec2(u Uniform, v *gglm.Vec2) {
	if sp.checkUniform(&u) {
		sp.ctx.Dev.Uniform2f(u.Location, v.Data[0], v.Data[1])
	}
}

func (sp *ShaderProgram) SetVec3(u Uniform, v *gglm.Vec3) {
	if sp.checkUniform(&u) {
		sp.ctx.Dev.Uniform3f(u.Location, v.Data[0], v.Data[1], v.Data[2])
	}
}

func (sp *ShaderProgram) SetVec4(u Uniform, v *gglm.Vec4) {
	if sp.checkUniform(&u) {
		sp.ctx.Dev.Uniform4f(u.Location, v.Data[0], v.Data[1], v.Data[2], v.Data[3])
	}
}

func (sp *ShaderProgram) SetMat3(u Uniform, m *gglm.Mat3) {
	if sp.checkUniform(&u) {
		sp.ctx.Dev.UniformMatrix3(u.Location, &m.Data)
	}
}

func (sp *ShaderProgram) SetMat4(u Uniform, m *gglm.Mat4) {
	if sp.checkUniform(&u) {
		sp.ctx.Dev.UniformMatrix4(u.Location, &m.Data)
	}
}

// SetTexture binds the texture to the unit assigned to the sampler by SetupTextures
func (sp *ShaderProgram) SetTexture(u Uniform, target gpu.TextureTarget, textureId uint32) {

	if !sp.checkUniform(&u) {
		return
	}

	// Units are assigned by SetupTextures, so use the cached copy in case u was copied before that
	if cached, ok := sp.uniforms[u.Name]; ok && u.TextureUnit < 0 {
		u.TextureUnit = cached.TextureUnit
	}

	assert.T(u.TextureUnit >= 0, "Uniform '%s' of program '%s' was used as a texture but was never passed to SetupTextures", u.Name, sp.Name)
	if u.TextureUnit < 0 {
		return
	}

	sp.ctx.Dev.ActiveTexture(uint32(u.TextureUnit))
	sp.ctx.Dev.BindTexture(target, textureId)
}

// NewShaderProgram compiles both stages and links them. Attribute i of layout is bound to location i.
//
// Compile failures return *ShaderCompileError and link failures *ShaderLinkError.
// Nothing is leaked on failure.
func NewShaderProgram(ctx *gpu.Context, name string, vertexSrc, fragmentSrc string, layout AttribLayout) (*ShaderProgram, error) {

	vertId, err := compileShader(ctx, name, gpu.ShaderStage_Vertex, vertexSrc)
	if err != nil {
		return nil, err
	}
	defer ctx.Dev.DeleteShader(vertId)

	fragId, err := compileShader(ctx, name, gpu.ShaderStage_Fragment, fragmentSrc)
	if err != nil {
		return nil, err
	}
	defer ctx.Dev.DeleteShader(fragId)

	return linkProgram(ctx, name, layout, vertId, fragId)
}
