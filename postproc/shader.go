package postproc

import (
	"fmt"

	"github.com/bloeys/nrend/gpu"
	"github.com/bloeys/nrend/shaders"
)

// PostProcSetup selects the optional uniforms a post process shader uses besides u_texture
type PostProcSetup uint8

const (
	PostProcSetup_None   PostProcSetup = 0
	PostProcSetup_Factor PostProcSetup = 1 << (iota - 1)
	PostProcSetup_Resolution
	PostProcSetup_Time
)

func (s PostProcSetup) Has(flags PostProcSetup) bool {
	return s&flags == flags
}

const (
	ShaderNamePassthrough    = "postproc_passthrough"
	ShaderNameInvert         = "postproc_invert"
	ShaderNameGrayscale      = "postproc_grayscale"
	ShaderNameDamage         = "postproc_damage"
	ShaderNameBlurVertical   = "postproc_blur_vertical"
	ShaderNameBlurHorizontal = "postproc_blur_horizontal"
)

// LoadedPostProcShader is a full screen shader with its standard uniforms resolved
type LoadedPostProcShader struct {
	Program *shaders.ShaderProgram
	Setup   PostProcSetup

	Texture    shaders.Uniform
	Factor     shaders.Uniform
	Resolution shaders.Uniform
	Time       shaders.Uniform

	ctx *gpu.Context
}

func (s *LoadedPostProcShader) resolve(sp *shaders.ShaderProgram) {

	s.Texture = sp.GetUniform("u_texture")
	sp.SetupTextures(&s.Texture)

	if s.Setup.Has(PostProcSetup_Factor) {
		s.Factor = sp.GetUniform("u_factor")
	}

	if s.Setup.Has(PostProcSetup_Resolution) {
		s.Resolution = sp.GetUniform("u_resolution")
	}

	if s.Setup.Has(PostProcSetup_Time) {
		s.Time = sp.GetUniform("u_time")
	}
}

func (s *LoadedPostProcShader) build(src shaders.Source) (*shaders.ShaderProgram, error) {
	return shaders.NewShaderProgram(s.ctx, src.Name, src.Vertex, src.Fragment, shaders.LayoutPos2Tex)
}

func (s *LoadedPostProcShader) Watch(r *shaders.Reloader) {
	r.Watch(s.Program.Name, s.Program, s.build, s.resolve)
}

func (s *LoadedPostProcShader) Delete() {
	s.Program.Delete()
}

// LoadPostProcShader loads and compiles the named shader. Its vertex stage must read the
// shaders.LayoutPos2Tex attributes of the full screen quad
func LoadPostProcShader(ctx *gpu.Context, loader shaders.SourceLoader, name string, setup PostProcSetup) (*LoadedPostProcShader, error) {

	s := &LoadedPostProcShader{
		Setup: setup,
		ctx:   ctx,
	}

	src, err := loader.Load(name)
	if err != nil {
		return nil, err
	}

	s.Program, err = s.build(src)
	if err != nil {
		return nil, fmt.Errorf("failed to build post process shader '%s': %w", name, err)
	}

	s.resolve(s.Program)
	return s, nil
}
