package postproc

import (
	"github.com/bloeys/nrend/gpu"
)

// EffectProp is an extra float uniform of a SimpleEffect
type EffectProp struct {
	Name  string
	Value float32
}

var _ Effect = &SimpleEffect{}

// SimpleEffect is a single pass effect whose strength is its factor
type SimpleEffect struct {
	FactorEffect

	Name   string
	Shader *LoadedPostProcShader
	Props  []EffectProp

	// Time is the seconds accumulated by Update while the effect was enabled
	Time float32
}

// SetProp sets the value of an existing property, or adds it
func (e *SimpleEffect) SetProp(name string, value float32) {

	for i := range e.Props {
		if e.Props[i].Name == name {
			e.Props[i].Value = value
			return
		}
	}

	e.Props = append(e.Props, EffectProp{Name: name, Value: value})
}

func (e *SimpleEffect) Prop(name string) (float32, bool) {

	for i := range e.Props {
		if e.Props[i].Name == name {
			return e.Props[i].Value, true
		}
	}

	return 0, false
}

func (e *SimpleEffect) Passes() int {
	return 1
}

func (e *SimpleEffect) Update(dt float32) {
	e.Time += dt
}

func (e *SimpleEffect) Apply(arg *ApplyArg) {

	s := e.Shader
	sp := s.Program
	sp.Use()

	sp.SetTexture(s.Texture, gpu.TextureTarget_2D, arg.InputTexture)

	if s.Setup.Has(PostProcSetup_Factor) {
		sp.SetFloat(s.Factor, e.factor)
	}

	if s.Setup.Has(PostProcSetup_Resolution) {
		res := arg.Resolution()
		sp.SetVec2(s.Resolution, &res)
	}

	if s.Setup.Has(PostProcSetup_Time) {
		sp.SetFloat(s.Time, e.Time)
	}

	// Lookups are cached by the program, and doing them here keeps props valid across shader reloads
	for i := range e.Props {
		sp.SetFloat(sp.GetUniform(e.Props[i].Name), e.Props[i].Value)
	}

	arg.DrawQuad()
}

func NewSimpleEffect(name string, shader *LoadedPostProcShader, factor float32, props ...EffectProp) *SimpleEffect {

	e := &SimpleEffect{
		Name:   name,
		Shader: shader,
		Props:  props,
	}

	e.SetFactor(factor)
	return e
}
