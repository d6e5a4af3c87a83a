package materials

import (
	"fmt"

	"github.com/bloeys/gglm/gglm"
	"github.com/bloeys/nrend/assets"
	"github.com/bloeys/nrend/camera"
	"github.com/bloeys/nrend/gpu"
	"github.com/bloeys/nrend/shaders"
)

// TransparentAlphaLimit is the alpha below which a material is treated as transparent
const TransparentAlphaLimit float32 = 0.99

// Material is implemented by DefaultMaterial, UnlitMaterial and SingleColorMaterial.
//
// Materials don't own their program. They point at a shader (program + uniforms) held by a
// ShaderLibrary, which may swap the program underneath them on hot reload.
type Material interface {
	Program() *shaders.ShaderProgram
	// Use binds the program of the material
	Use()
	// SetUniforms writes every uniform the material declares. The program must be bound
	SetUniforms(args *DrawArgs)
	IsTransparent() bool
}

// Fallbacks are the 1x1 textures used in place of missing material textures
type Fallbacks struct {
	White assets.Texture
	Black assets.Texture
}

func (f *Fallbacks) Delete(ctx *gpu.Context) {
	f.White.Delete(ctx)
	f.Black.Delete(ctx)
}

func NewFallbacks(ctx *gpu.Context) (Fallbacks, error) {

	white, err := assets.LoadTextureFromColor(ctx, assets.ColorWhite)
	if err != nil {
		return Fallbacks{}, fmt.Errorf("failed to create white fallback texture: %w", err)
	}

	black, err := assets.LoadTextureFromColor(ctx, assets.ColorBlack)
	if err != nil {
		white.Delete(ctx)
		return Fallbacks{}, fmt.Errorf("failed to create black fallback texture: %w", err)
	}

	return Fallbacks{White: white, Black: black}, nil
}

// DrawArgs is everything a material may need to set its uniforms for one draw
type DrawArgs struct {
	Model     *gglm.Mat4
	Camera    *camera.Compiled
	Lights    *Lights
	Fallbacks *Fallbacks
}

func textureOr(tex *assets.Texture, fallback *assets.Texture) uint32 {

	if tex != nil && tex.Id != 0 {
		return tex.Id
	}

	if fallback == nil {
		return 0
	}

	return fallback.Id
}

func colorWithAlpha(col *gglm.Vec3, alpha float32) gglm.Vec4 {
	return gglm.Vec4{Data: [4]float32{col.Data[0], col.Data[1], col.Data[2], alpha}}
}

var _ Material = &DefaultMaterial{}

// DefaultMaterial is the lit (blinn-phong) material
type DefaultMaterial struct {
	Name string

	TintColor      gglm.Vec3
	Alpha          float32
	AmbientTint    gglm.Vec3
	SpecularTint   gglm.Vec3
	Shininess      float32
	EmissiveFactor float32

	// Nil textures use the white (diffuse/specular) or black (emissive) fallbacks
	DiffuseTex  *assets.Texture
	SpecularTex *assets.Texture
	EmissiveTex *assets.Texture

	shader *DefaultShader
}

func (m *DefaultMaterial) Program() *shaders.ShaderProgram {
	return m.shader.Program
}

func (m *DefaultMaterial) Use() {
	m.shader.Program.Use()
}

func (m *DefaultMaterial) IsTransparent() bool {
	return m.Alpha < TransparentAlphaLimit
}

func (m *DefaultMaterial) SetUniforms(args *DrawArgs) {

	sp := m.shader.Program
	u := &m.shader.Uniforms

	var fallbackWhite, fallbackBlack *assets.Texture
	if args.Fallbacks != nil {
		fallbackWhite = &args.Fallbacks.White
		fallbackBlack = &args.Fallbacks.Black
	}

	tint := colorWithAlpha(&m.TintColor, m.Alpha)
	sp.SetVec4(u.TintColor, &tint)
	sp.SetVec3(u.AmbientTint, &m.AmbientTint)
	sp.SetVec3(u.SpecularTint, &m.SpecularTint)
	sp.SetFloat(u.Shininess, m.Shininess)
	sp.SetFloat(u.EmissiveFactor, m.EmissiveFactor)

	sp.SetTexture(u.DiffuseTex, gpu.TextureTarget_2D, textureOr(m.DiffuseTex, fallbackWhite))
	sp.SetTexture(u.SpecularTex, gpu.TextureTarget_2D, textureOr(m.SpecularTex, fallbackWhite))
	sp.SetTexture(u.EmissiveTex, gpu.TextureTarget_2D, textureOr(m.EmissiveTex, fallbackBlack))

	sp.SetMat4(u.Model, args.Model)
	sp.SetVec3(u.ViewPosition, &args.Camera.Pos)

	u.setLights(sp, args.Lights)
}

func NewDefaultMaterial(name string, shader *DefaultShader) *DefaultMaterial {
	return &DefaultMaterial{
		Name:         name,
		TintColor:    gglm.NewVec3(1, 1, 1),
		Alpha:        1,
		AmbientTint:  gglm.NewVec3(1, 1, 1),
		SpecularTint: gglm.NewVec3(1, 1, 1),
		Shininess:    32,
		shader:       shader,
	}
}

var _ Material = &UnlitMaterial{}

// UnlitMaterial is a textured and tinted material that ignores lights
type UnlitMaterial struct {
	Name string

	TintColor gglm.Vec3
	Alpha     float32
	// Nil uses the white fallback
	DiffuseTex *assets.Texture

	shader *UnlitShader
}

func (m *UnlitMaterial) Program() *shaders.ShaderProgram {
	return m.shader.Program
}

func (m *UnlitMaterial) Use() {
	m.shader.Program.Use()
}

func (m *UnlitMaterial) IsTransparent() bool {
	return m.Alpha < TransparentAlphaLimit
}

func (m *UnlitMaterial) SetUniforms(args *DrawArgs) {

	sp := m.shader.Program
	u := &m.shader.Uniforms

	var fallbackWhite *assets.Texture
	if args.Fallbacks != nil {
		fallbackWhite = &args.Fallbacks.White
	}

	tint := colorWithAlpha(&m.TintColor, m.Alpha)
	sp.SetVec4(u.TintColor, &tint)
	sp.SetTexture(u.DiffuseTex, gpu.TextureTarget_2D, textureOr(m.DiffuseTex, fallbackWhite))
	sp.SetMat4(u.Model, args.Model)
}

func NewUnlitMaterial(name string, shader *UnlitShader) *UnlitMaterial {
	return &UnlitMaterial{
		Name:      name,
		TintColor: gglm.NewVec3(1, 1, 1),
		Alpha:     1,
		shader:    shader,
	}
}

var _ Material = &SingleColorMaterial{}

// SingleColorMaterial draws everything in one flat color. Used for outlines and highlights
type SingleColorMaterial struct {
	Name  string
	Color gglm.Vec4

	shader *SingleColorShader
}

func (m *SingleColorMaterial) Program() *shaders.ShaderProgram {
	return m.shader.Program
}

func (m *SingleColorMaterial) Use() {
	m.shader.Program.Use()
}

func (m *SingleColorMaterial) IsTransparent() bool {
	return m.Color.W() < TransparentAlphaLimit
}

func (m *SingleColorMaterial) SetUniforms(args *DrawArgs) {
	sp := m.shader.Program
	sp.SetVec4(m.shader.Uniforms.Color, &m.Color)
	sp.SetMat4(m.shader.Uniforms.Model, args.Model)
}

func NewSingleColorMaterial(name string, shader *SingleColorShader, color gglm.Vec4) *SingleColorMaterial {
	return &SingleColorMaterial{
		Name:   name,
		Color:  color,
		shader: shader,
	}
}
