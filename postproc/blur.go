package postproc

import (
	"github.com/bloeys/nrend/gpu"
	"github.com/bloeys/nrend/shaders"
)

var _ Effect = &BlurEffect{}

// BlurEffect is a separable gaussian blur. The first pass blurs vertically and the second horizontally
type BlurEffect struct {
	FactorEffect

	// Size is the distance between samples in texels
	Size float32

	Vertical   *LoadedPostProcShader
	Horizontal *LoadedPostProcShader
}

func (b *BlurEffect) Passes() int {
	return 2
}

func (b *BlurEffect) Update(dt float32) {}

func (b *BlurEffect) Apply(arg *ApplyArg) {

	s := b.Vertical
	if arg.Pass == 1 {
		s = b.Horizontal
	}

	sp := s.Program
	sp.Use()
	sp.SetTexture(s.Texture, gpu.TextureTarget_2D, arg.InputTexture)
	sp.SetFloat(s.Factor, b.factor)

	res := arg.Resolution()
	sp.SetVec2(s.Resolution, &res)
	sp.SetFloat(sp.GetUniform(BlurSizeProp), b.Size)

	arg.DrawQuad()
}

func (b *BlurEffect) Watch(r *shaders.Reloader) {
	b.Vertical.Watch(r)
	b.Horizontal.Watch(r)
}

func (b *BlurEffect) Delete() {

	if b.Vertical != nil {
		b.Vertical.Delete()
	}

	if b.Horizontal != nil {
		b.Horizontal.Delete()
	}
}

// LoadBlurEffect loads both blur passes. The effect starts disabled (factor 0)
func LoadBlurEffect(ctx *gpu.Context, loader shaders.SourceLoader, size float32) (*BlurEffect, error) {

	const setup = PostProcSetup_Factor | PostProcSetup_Resolution

	b := &BlurEffect{Size: size}

	var err error
	b.Vertical, err = LoadPostProcShader(ctx, loader, ShaderNameBlurVertical, setup)
	if err != nil {
		return nil, err
	}

	b.Horizontal, err = LoadPostProcShader(ctx, loader, ShaderNameBlurHorizontal, setup)
	if err != nil {
		b.Delete()
		return nil, err
	}

	return b, nil
}
