package materials

import (
	"fmt"

	"github.com/bloeys/nrend/shaders"
)

// DefaultUniforms is the uniform set of the default (lit) shader
type DefaultUniforms struct {
	TintColor      shaders.Uniform
	AmbientTint    shaders.Uniform
	SpecularTint   shaders.Uniform
	Shininess      shaders.Uniform
	EmissiveFactor shaders.Uniform

	DiffuseTex  shaders.Uniform
	SpecularTex shaders.Uniform
	EmissiveTex shaders.Uniform

	Model        shaders.Uniform
	ViewPosition shaders.Uniform
	AmbientLight shaders.Uniform

	DirLightDir   shaders.Uniform
	DirLightColor shaders.Uniform

	PointLightPos   [MaxPointLights]shaders.Uniform
	PointLightColor [MaxPointLights]shaders.Uniform
	PointLightRange [MaxPointLights]shaders.Uniform
}

func (u *DefaultUniforms) Resolve(sp *shaders.ShaderProgram) {

	u.TintColor = sp.GetUniform("u_tint_color")
	u.AmbientTint = sp.GetUniform("u_ambient_tint")
	u.SpecularTint = sp.GetUniform("u_specular_tint")
	u.Shininess = sp.GetUniform("u_shininess")
	u.EmissiveFactor = sp.GetUniform("u_emissive_factor")

	u.DiffuseTex = sp.GetUniform("u_diffuse_tex")
	u.SpecularTex = sp.GetUniform("u_specular_tex")
	u.EmissiveTex = sp.GetUniform("u_emissive_tex")
	sp.SetupTextures(&u.DiffuseTex, &u.SpecularTex, &u.EmissiveTex)

	u.Model = sp.GetUniform("u_model")
	u.ViewPosition = sp.GetUniform("u_view_position")
	u.AmbientLight = sp.GetUniform("u_ambient_light")

	u.DirLightDir = sp.GetUniform("u_dir_light_dir")
	u.DirLightColor = sp.GetUniform("u_dir_light_color")

	for i := 0; i < MaxPointLights; i++ {
		u.PointLightPos[i] = sp.GetUniform(fmt.Sprintf("u_point_light_pos[%d]", i))
		u.PointLightColor[i] = sp.GetUniform(fmt.Sprintf("u_point_light_color[%d]", i))
		u.PointLightRange[i] = sp.GetUniform(fmt.Sprintf("u_point_light_range[%d]", i))
	}
}

// UnlitUniforms never includes lighting uniforms
type UnlitUniforms struct {
	TintColor  shaders.Uniform
	DiffuseTex shaders.Uniform
	Model      shaders.Uniform
}

func (u *UnlitUniforms) Resolve(sp *shaders.ShaderProgram) {
	u.TintColor = sp.GetUniform("u_tint_color")
	u.DiffuseTex = sp.GetUniform("u_diffuse_tex")
	u.Model = sp.GetUniform("u_model")
	sp.SetupTextures(&u.DiffuseTex)
}

type SingleColorUniforms struct {
	Color shaders.Uniform
	Model shaders.Uniform
}

func (u *SingleColorUniforms) Resolve(sp *shaders.ShaderProgram) {
	u.Color = sp.GetUniform("u_color")
	u.Model = sp.GetUniform("u_model")
}

type SkyboxUniforms struct {
	SkyboxTex shaders.Uniform
}

func (u *SkyboxUniforms) Resolve(sp *shaders.ShaderProgram) {
	u.SkyboxTex = sp.GetUniform("u_skybox_tex")
	sp.SetupTextures(&u.SkyboxTex)
}

// DefaultShader, UnlitShader, SingleColorShader and SkyboxShader pair a program with its resolved uniforms.
// They are owned by a ShaderLibrary and shared by every material of that kind

type DefaultShader struct {
	Program  *shaders.ShaderProgram
	Uniforms DefaultUniforms
}

type UnlitShader struct {
	Program  *shaders.ShaderProgram
	Uniforms UnlitUniforms
}

type SingleColorShader struct {
	Program  *shaders.ShaderProgram
	Uniforms SingleColorUniforms
}

type SkyboxShader struct {
	Program  *shaders.ShaderProgram
	Uniforms SkyboxUniforms
}
