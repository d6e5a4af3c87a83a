// Package lines draws batches of colored line segments, mostly for debugging.
//
// A LineBatch collects segments on the CPU during a frame and draws all of them with one draw call
// on Submit. DebugDrawer adds dashed lines and a few shapes (boxes, axes, camera frusta) on top.
package lines

import (
	"fmt"

	"github.com/bloeys/gglm/gglm"
	"github.com/bloeys/nrend/buffers"
	"github.com/bloeys/nrend/gpu"
	"github.com/bloeys/nrend/shaders"
)

// noCopy makes 'go vet' report copies of structs that embed it
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

type BatchState int32

const (
	// BatchState_Idle means nothing is staged. A batch is idle after creation, Clear and Submit
	BatchState_Idle BatchState = iota
	// BatchState_Accumulating means at least one line is staged and waiting for Submit
	BatchState_Accumulating
)

func (s BatchState) String() string {

	switch s {
	case BatchState_Idle:
		return "Idle"
	case BatchState_Accumulating:
		return "Accumulating"
	default:
		return fmt.Sprintf("BatchState(%d)", int32(s))
	}
}

// floatsPerVertex is a vec3 position followed by a vec4 color (shaders.LayoutPosColor)
const floatsPerVertex = 7

// LineBatch owns a dynamic vertex buffer that is grown (never shrunk) to the largest batch submitted.
// It must not be copied or moved once created.
type LineBatch struct {
	noCopy noCopy

	Program *shaders.ShaderProgram

	vao buffers.VertexArray
	// staging holds the vertices of the lines added since the last Submit or Clear
	staging []float32
	// capacity is the number of vertices the GPU buffer can hold
	capacity int
	state    BatchState
	ctx      *gpu.Context
}

// Line stages a segment, which is two vertices of the same color
func (lb *LineBatch) Line(from, to *gglm.Vec3, color *gglm.Vec4) {

	lb.staging = append(lb.staging,
		from.Data[0], from.Data[1], from.Data[2], color.Data[0], color.Data[1], color.Data[2], color.Data[3],
		to.Data[0], to.Data[1], to.Data[2], color.Data[0], color.Data[1], color.Data[2], color.Data[3],
	)

	lb.state = BatchState_Accumulating
}

// Clear drops every staged line without drawing
func (lb *LineBatch) Clear() {
	lb.staging = lb.staging[:0]
	lb.state = BatchState_Idle
}

// Submit uploads the staged lines and draws them with a single draw call, then clears the batch.
//
// Nothing is issued when no lines are staged. The camera uniforms of Program must already be set.
// If growing the buffer fails the error is returned and the staged lines are kept.
func (lb *LineBatch) Submit() error {

	vertCount := len(lb.staging) / floatsPerVertex
	if vertCount == 0 {
		lb.state = BatchState_Idle
		return nil
	}

	lb.vao.Bind()

	vbo := &lb.vao.Vbos[0]
	if vertCount > lb.capacity {

		// Grow to exactly what is needed. Line counts tend to be stable between frames so this rarely happens
		if err := vbo.SetData(lb.staging, gpu.BufUsage_Dynamic_Draw); err != nil {
			return fmt.Errorf("failed to grow line batch to %d vertices: %w", vertCount, err)
		}

		lb.capacity = vertCount
	} else if err := vbo.SetSubData(0, lb.staging); err != nil {
		return fmt.Errorf("failed to upload %d line vertices: %w", vertCount, err)
	}

	lb.Program.Use()
	lb.ctx.Dev.DrawArrays(gpu.Primitive_Lines, 0, int32(vertCount))

	lb.Clear()
	return nil
}

// Capacity is the number of vertices the GPU buffer can hold without reallocating
func (lb *LineBatch) Capacity() int {
	return lb.capacity
}

func (lb *LineBatch) StagedVertexCount() int {
	return len(lb.staging) / floatsPerVertex
}

func (lb *LineBatch) State() BatchState {
	return lb.state
}

func (lb *LineBatch) Delete() {
	lb.vao.Delete()
	lb.staging = nil
	lb.capacity = 0
	lb.state = BatchState_Idle
}

// NewLineBatch creates an empty batch drawn with program, which must use the shaders.LayoutPosColor layout.
// No GPU storage is allocated until the first Submit
func NewLineBatch(ctx *gpu.Context, program *shaders.ShaderProgram) (*LineBatch, error) {

	vao, err := buffers.NewVertexArray(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create line batch: %w", err)
	}

	vbo, err := buffers.NewVertexBuffer(ctx, shaders.LayoutPosColor.Elements()...)
	if err != nil {
		vao.Delete()
		return nil, fmt.Errorf("failed to create line batch: %w", err)
	}

	vao.AddVertexBuffer(vbo)
	vao.UnBind()

	return &LineBatch{
		Program: program,
		vao:     vao,
		staging: make([]float32, 0, 64*floatsPerVertex),
		state:   BatchState_Idle,
		ctx:     ctx,
	}, nil
}
