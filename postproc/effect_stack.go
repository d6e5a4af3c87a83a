package postproc

import (
	"fmt"

	"github.com/bloeys/nrend/buffers"
	"github.com/bloeys/nrend/gpu"
	"github.com/bloeys/nrend/meshes"
	"github.com/bloeys/nrend/shaders"
)

// TargetFormat is the color format of the scene and intermediate targets
const TargetFormat = gpu.TextureFormat_RGBA16F

// EffectStack owns the offscreen targets the scene and the effects render into.
//
// Two intermediate targets are ping-ponged between, so the number of targets doesn't depend on the number of effects.
type EffectStack struct {
	Effects []Effect

	scene    buffers.Framebuffer
	pingPong [2]buffers.Framebuffer
	width    int32
	height   int32

	quad        meshes.Mesh
	passthrough *LoadedPostProcShader
	ctx         *gpu.Context
}

func (es *EffectStack) Add(effects ...Effect) {
	es.Effects = append(es.Effects, effects...)
}

// SceneTarget is the framebuffer the scene is drawn into between BeginFrame and Render
func (es *EffectStack) SceneTarget() *buffers.Framebuffer {
	return &es.scene
}

func (es *EffectStack) Size() (width, height int32) {
	return es.width, es.height
}

// Update updates enabled effects only
func (es *EffectStack) Update(dt float32) {

	for _, e := range es.Effects {
		if e.Enabled() {
			e.Update(dt)
		}
	}
}

func (es *EffectStack) EnabledCount() int {

	n := 0
	for _, e := range es.Effects {
		if e.Enabled() {
			n++
		}
	}

	return n
}

// PassCount is the number of passes Render will run, excluding the pass-through used when it is zero
func (es *EffectStack) PassCount() int {

	n := 0
	for _, e := range es.Effects {
		if e.Enabled() {
			n += e.Passes()
		}
	}

	return n
}

func (es *EffectStack) deleteTargets() {
	es.scene.Delete()
	es.pingPong[0].Delete()
	es.pingPong[1].Delete()
}

func newColorTarget(ctx *gpu.Context, width, height int32, withDepth bool) (buffers.Framebuffer, error) {

	fbo, err := buffers.NewFramebuffer(ctx, uint32(width), uint32(height))
	if err != nil {
		return buffers.Framebuffer{}, err
	}

	err = fbo.NewColorAttachment(buffers.FramebufferAttachmentType_Texture, TargetFormat)
	if err != nil {
		fbo.Delete()
		return buffers.Framebuffer{}, err
	}

	if withDepth {
		err = fbo.NewDepthStencilAttachment(buffers.FramebufferAttachmentType_Renderbuffer, gpu.TextureFormat_Depth24Stencil8)
		if err != nil {
			fbo.Delete()
			return buffers.Framebuffer{}, err
		}
	}

	if !fbo.IsComplete() {
		fbo.Delete()
		return buffers.Framebuffer{}, fmt.Errorf("post process target of size %dx%d is not complete", width, height)
	}

	return fbo, nil
}

// resize recreates the targets if the size changed
func (es *EffectStack) resize(width, height int32) error {

	if width == es.width && height == es.height && es.scene.Id != 0 {
		return nil
	}

	es.deleteTargets()
	es.width, es.height = 0, 0

	var err error
	es.scene, err = newColorTarget(es.ctx, width, height, true)
	if err != nil {
		return fmt.Errorf("failed to create scene target: %w", err)
	}

	for i := range es.pingPong {
		es.pingPong[i], err = newColorTarget(es.ctx, width, height, false)
		if err != nil {
			es.deleteTargets()
			return fmt.Errorf("failed to create post process target: %w", err)
		}
	}

	es.width, es.height = width, height
	return nil
}

// BeginFrame makes the scene target current. Targets are recreated when the size differs from the last frame
func (es *EffectStack) BeginFrame(width, height int32) error {

	if err := es.resize(width, height); err != nil {
		return err
	}

	es.scene.BindWithViewport()
	return nil
}

// Render runs every enabled effect over the scene in order and writes the result to the default framebuffer.
// With no enabled effects the scene is copied as is. Must follow BeginFrame with the same size
func (es *EffectStack) Render(width, height int32) {

	if es.scene.Id == 0 {
		return
	}

	// Every pass replaces its target, so blending left on by transparent scene draws must not leak in
	ctx := es.ctx
	ctx.SetCapability(gpu.Capability_DepthTest, false)
	ctx.SetCapability(gpu.Capability_CullFace, false)
	ctx.SetCapability(gpu.Capability_Blend, false)

	arg := ApplyArg{
		InputTexture: es.scene.ColorTexture(0),
		Width:        width,
		Height:       height,
		quad:         &es.quad,
		ctx:          ctx,
	}

	remaining := es.PassCount()
	if remaining == 0 {
		ctx.BindFramebuffer(0)
		ctx.Viewport(width, height)
		es.applyPassthrough(&arg)
		return
	}

	nextTarget := 0
	for _, e := range es.Effects {

		if !e.Enabled() {
			continue
		}

		for pass := 0; pass < e.Passes(); pass++ {

			arg.Pass = pass
			remaining--
			if remaining == 0 {
				ctx.BindFramebuffer(0)
				ctx.Viewport(width, height)
				e.Apply(&arg)
				return
			}

			target := &es.pingPong[nextTarget]
			target.BindWithViewport()
			e.Apply(&arg)

			arg.InputTexture = target.ColorTexture(0)
			nextTarget = 1 - nextTarget
		}
	}
}

func (es *EffectStack) applyPassthrough(arg *ApplyArg) {

	s := es.passthrough
	s.Program.Use()
	s.Program.SetTexture(s.Texture, gpu.TextureTarget_2D, arg.InputTexture)
	arg.DrawQuad()
}

func (es *EffectStack) Watch(r *shaders.Reloader) {
	es.passthrough.Watch(r)
}

// Delete deletes the targets, quad and pass-through shader. Effects are owned by the caller
func (es *EffectStack) Delete() {
	es.deleteTargets()
	es.quad.Delete()
	es.passthrough.Delete()
}

func NewEffectStack(ctx *gpu.Context, loader shaders.SourceLoader, width, height int32) (*EffectStack, error) {

	es := &EffectStack{ctx: ctx}

	var err error
	es.quad, err = meshes.NewFullScreenQuad(ctx)
	if err != nil {
		return nil, err
	}

	es.passthrough, err = LoadPostProcShader(ctx, loader, ShaderNamePassthrough, PostProcSetup_None)
	if err != nil {
		es.quad.Delete()
		return nil, err
	}

	if err := es.resize(width, height); err != nil {
		es.Delete()
		return nil, err
	}

	return es, nil
}
