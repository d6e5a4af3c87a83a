package camera

import (
	"github.com/bloeys/nrend/buffers"
	"github.com/bloeys/nrend/gpu"
)

const (
	// BlockName is the name of the camera uniform block in shaders
	BlockName = "Camera"
	// BlockBinding is the binding index the camera block is always bound to
	BlockBinding uint32 = 0
)

// UniformBuffer holds the camera matrices shared by every program that declares the camera block
type UniformBuffer struct {
	buffers.UniformBuffer
}

// Set writes the camera matrices and uploads them
func (ub *UniformBuffer) Set(c *Compiled) {
	ub.SetMat4("u_projection", &c.Projection)
	ub.SetMat4("u_view", &c.View)
	ub.Flush()
}

// Source is the GLSL declaration of the camera block
func (ub *UniformBuffer) Source() string {
	return ub.ToSource(BlockName)
}

func NewUniformBuffer(ctx *gpu.Context) (*UniformBuffer, error) {

	ubo, err := buffers.NewUniformBuffer(ctx, []buffers.UniformBufferFieldInput{
		{Name: "u_projection", Type: buffers.DataTypeMat4},
		{Name: "u_view", Type: buffers.DataTypeMat4},
	})
	if err != nil {
		return nil, err
	}

	ubo.BindBase(BlockBinding)
	return &UniformBuffer{UniformBuffer: ubo}, nil
}
