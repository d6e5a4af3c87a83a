// Package postproc runs full screen effects over the rendered scene.
//
// The scene is drawn into an offscreen target between EffectStack.BeginFrame and EffectStack.Render.
// Render then runs every enabled effect in order, each one reading the output of the previous, and
// the last one writes to the default framebuffer.
package postproc

import (
	"github.com/bloeys/gglm/gglm"
	"github.com/bloeys/nrend/gpu"
	"github.com/bloeys/nrend/meshes"
)

// AlmostZero is the largest factor at which a FactorEffect is still considered disabled
const AlmostZero float32 = 0.001

// ApplyArg is what an effect gets to draw one pass. The output target is already bound
type ApplyArg struct {
	// Pass is the index of the pass being drawn, in [0, Passes())
	Pass int
	// InputTexture is the color texture produced by the scene or the previous pass
	InputTexture uint32
	Width        int32
	Height       int32

	quad *meshes.Mesh
	ctx  *gpu.Context
}

func (a *ApplyArg) Resolution() gglm.Vec2 {
	return gglm.Vec2{Data: [2]float32{float32(a.Width), float32(a.Height)}}
}

// DrawQuad draws the full screen quad with whatever program is bound
func (a *ApplyArg) DrawQuad() {

	a.quad.Vao.Bind()
	for i := 0; i < len(a.quad.SubMeshes); i++ {
		sm := &a.quad.SubMeshes[i]
		a.ctx.Dev.DrawElementsBaseVertex(gpu.Primitive_Triangles, sm.IndexCount, sm.IndexOffset(), sm.BaseVertex)
	}
}

type Effect interface {
	// Enabled effects are applied. Disabled ones issue no GPU commands at all
	Enabled() bool
	SetEnabled(enabled bool)
	Update(dt float32)
	// Passes is the number of full screen draws the effect needs. Each pass reads the output of the one before it
	Passes() int
	// Apply binds the program of pass arg.Pass, writes its uniforms and draws a.
	// It is only called on enabled effects
	Apply(arg *ApplyArg)
}

// EffectBase is the on/off switch shared by all effects. Effects start switched on
type EffectBase struct {
	switchedOff bool
}

func (eb *EffectBase) SetEnabled(enabled bool) {
	eb.switchedOff = !enabled
}

func (eb *EffectBase) Enabled() bool {
	return !eb.switchedOff
}

// FactorEffect is the strength of an effect in [0, 1].
// The effect is enabled only while it is switched on and the factor is above AlmostZero
type FactorEffect struct {
	EffectBase
	factor float32
}

func (fe *FactorEffect) Factor() float32 {
	return fe.factor
}

// SetFactor clamps f to [0, 1]
func (fe *FactorEffect) SetFactor(f float32) {
	fe.factor = gglm.Clamp(f, 0, 1)
}

func (fe *FactorEffect) Enabled() bool {
	return fe.EffectBase.Enabled() && fe.factor > AlmostZero
}
