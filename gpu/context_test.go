package gpu_test

import (
	"testing"

	"github.com/bloeys/nrend/gpu"
	"github.com/bloeys/nrend/gpu/gputest"
	"github.com/stretchr/testify/assert"
)

func TestContextSkipsRedundantCalls(t *testing.T) {

	dev := gputest.New()
	ctx := gpu.NewContext(dev)

	ctx.UseProgram(1)
	ctx.UseProgram(1)
	ctx.BindVertexArray(2)
	ctx.BindVertexArray(2)
	ctx.BindFramebuffer(3)
	ctx.BindFramebuffer(3)
	ctx.Viewport(10, 20)
	ctx.Viewport(10, 20)
	ctx.SetCapability(gpu.Capability_Blend, true)
	ctx.SetCapability(gpu.Capability_Blend, true)

	assert.Equal(t, []string{"UseProgram", "BindVertexArray", "BindFramebuffer", "Viewport", "SetCapability"}, dev.CommandNames())
	assert.True(t, ctx.IsProgramBound(1))
	assert.False(t, ctx.IsProgramBound(0))
	assert.True(t, ctx.IsCapabilityEnabled(gpu.Capability_Blend))

	ctx.Reset()
	ctx.UseProgram(1)
	ctx.SetCapability(gpu.Capability_Blend, true)
	assert.Equal(t, 2, dev.CountCommands("UseProgram"))
	assert.Equal(t, 2, dev.CountCommands("SetCapability"))
}

func TestContextDeleteBoundProgram(t *testing.T) {

	dev := gputest.New()
	ctx := gpu.NewContext(dev)

	ctx.UseProgram(7)
	ctx.DeleteProgram(7)
	assert.Equal(t, uint32(0), ctx.BoundProgram)
	assert.Equal(t, []string{"UseProgram", "UseProgram", "DeleteProgram"}, dev.CommandNames())

	dev.ResetRecording()
	ctx.DeleteProgram(0)
	assert.Empty(t, dev.Commands)
}

func TestContextDefaultFixedState(t *testing.T) {

	dev := gputest.New()
	ctx := gpu.NewContext(dev)

	ctx.SetDefaultFixedState()

	assert.Equal(t, gpu.Face_Back, dev.CulledFace)
	assert.Equal(t, gpu.Winding_CCW, dev.FrontWinding)
	assert.Equal(t, gpu.BlendFactor_SrcAlpha, dev.BlendSrc)
	assert.Equal(t, gpu.BlendFactor_OneMinusSrcAlpha, dev.BlendDst)
	assert.Equal(t, []string{"CullFace", "FrontFace", "BlendFunc"}, dev.CommandNames())
}
