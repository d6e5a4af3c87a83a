package postproc

import (
	"github.com/bloeys/nrend/gpu"
	"github.com/bloeys/nrend/shaders"
)

// BlurSizeProp is the uniform holding the distance between blur samples in texels
const BlurSizeProp = "u_blur_size"

// DefaultBlurSize is the sample distance of the builtin blur
const DefaultBlurSize float32 = 2

// Builtins holds the effects that ship with the renderer. All of them start disabled (factor 0)
type Builtins struct {
	Invert    *SimpleEffect
	Grayscale *SimpleEffect
	Damage    *SimpleEffect
	Blur      *BlurEffect
}

// All returns the effects in the order they are usually stacked
func (b *Builtins) All() []Effect {
	return []Effect{b.Damage, b.Blur, b.Grayscale, b.Invert}
}

func (b *Builtins) Delete() {

	for _, e := range [...]*SimpleEffect{b.Invert, b.Grayscale, b.Damage} {
		if e != nil {
			e.Shader.Delete()
		}
	}

	if b.Blur != nil {
		b.Blur.Delete()
	}
}

func (b *Builtins) Watch(r *shaders.Reloader) {
	b.Invert.Shader.Watch(r)
	b.Grayscale.Shader.Watch(r)
	b.Damage.Shader.Watch(r)
	b.Blur.Watch(r)
}

func LoadBuiltins(ctx *gpu.Context, loader shaders.SourceLoader) (*Builtins, error) {

	type builtinDef struct {
		out    **SimpleEffect
		name   string
		shader string
		setup  PostProcSetup
	}

	b := &Builtins{}
	defs := []builtinDef{
		{out: &b.Invert, name: "invert", shader: ShaderNameInvert, setup: PostProcSetup_Factor},
		{out: &b.Grayscale, name: "grayscale", shader: ShaderNameGrayscale, setup: PostProcSetup_Factor},
		{out: &b.Damage, name: "damage", shader: ShaderNameDamage, setup: PostProcSetup_Factor | PostProcSetup_Resolution | PostProcSetup_Time},
	}

	for _, def := range defs {

		s, err := LoadPostProcShader(ctx, loader, def.shader, def.setup)
		if err != nil {
			b.Delete()
			return nil, err
		}

		*def.out = NewSimpleEffect(def.name, s, 0)
	}

	var err error
	b.Blur, err = LoadBlurEffect(ctx, loader, DefaultBlurSize)
	if err != nil {
		b.Delete()
		return nil, err
	}

	return b, nil
}
