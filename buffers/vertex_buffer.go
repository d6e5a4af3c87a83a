package buffers

import (
	"fmt"
	"unsafe"

	"github.com/bloeys/nrend/gpu"
)

type VertexBuffer struct {
	Id     uint32
	Stride int32
	// Size is the number of bytes allocated on the GPU for this buffer
	Size   int
	layout []Element
	ctx    *gpu.Context
}

func (vb *VertexBuffer) Bind() {
	vb.ctx.Dev.BindBuffer(gpu.BufferTarget_Array, vb.Id)
}

func (vb *VertexBuffer) UnBind() {
	vb.ctx.Dev.BindBuffer(gpu.BufferTarget_Array, 0)
}

// SetData reallocates the buffer to exactly fit values and uploads them.
// Allocation failures reported by the device are returned (e.g. gpu.ErrOutOfMemory).
func (vb *VertexBuffer) SetData(values []float32, usage gpu.BufUsage) error {

	vb.Bind()

	sizeInBytes := len(values) * 4
	if sizeInBytes == 0 {
		vb.ctx.Dev.BufferData(gpu.BufferTarget_Array, 0, nil, usage)
	} else {
		vb.ctx.Dev.BufferData(gpu.BufferTarget_Array, sizeInBytes, unsafe.Pointer(&values[0]), usage)
	}

	if err := vb.ctx.Dev.Error(); err != nil {
		return fmt.Errorf("failed to allocate %d bytes for vertex buffer %d: %w", sizeInBytes, vb.Id, err)
	}

	vb.Size = sizeInBytes
	return nil
}

// SetSubData overwrites part of the existing storage starting at offsetBytes, without reallocating
func (vb *VertexBuffer) SetSubData(offsetBytes int, values []float32) error {

	if len(values) == 0 {
		return nil
	}

	sizeInBytes := len(values) * 4
	if offsetBytes+sizeInBytes > vb.Size {
		return fmt.Errorf("vertex buffer %d write of %d bytes at offset %d exceeds its size of %d bytes", vb.Id, sizeInBytes, offsetBytes, vb.Size)
	}

	vb.Bind()
	vb.ctx.Dev.BufferSubData(gpu.BufferTarget_Array, offsetBytes, sizeInBytes, unsafe.Pointer(&values[0]))
	return vb.ctx.Dev.Error()
}

func (vb *VertexBuffer) GetLayout() []Element {
	e := make([]Element, len(vb.layout))
	copy(e, vb.layout)
	return e
}

func (vb *VertexBuffer) SetLayout(layout ...Element) {

	vb.Stride = 0
	vb.layout = layout

	for i := 0; i < len(vb.layout); i++ {

		vb.layout[i].Offset = int(vb.Stride)
		vb.Stride += vb.layout[i].Size()
	}
}

func (vb *VertexBuffer) Delete() {

	if vb.Id == 0 {
		return
	}

	vb.ctx.Dev.DeleteBuffer(vb.Id)
	vb.Id = 0
	vb.Size = 0
}

func NewVertexBuffer(ctx *gpu.Context, layout ...Element) (VertexBuffer, error) {

	vb := VertexBuffer{ctx: ctx}

	vb.Id = ctx.Dev.GenBuffer()
	if vb.Id == 0 {
		return VertexBuffer{}, fmt.Errorf("failed to create vertex buffer: %w", gpu.ErrObjectCreation)
	}

	vb.SetLayout(layout...)
	return vb, nil
}
