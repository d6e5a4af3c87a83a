package buffers

import (
	"fmt"
	"unsafe"

	"github.com/bloeys/nrend/gpu"
)

type IndexBuffer struct {
	Id uint32
	// IndexBufCount is the number of elements in the index buffer. Updated in IndexBuffer.SetData
	IndexBufCount int32
	ctx           *gpu.Context
}

func (ib *IndexBuffer) Bind() {
	ib.ctx.Dev.BindBuffer(gpu.BufferTarget_ElementArray, ib.Id)
}

func (ib *IndexBuffer) UnBind() {
	ib.ctx.Dev.BindBuffer(gpu.BufferTarget_ElementArray, 0)
}

// SetData uploads the indices. The element array binding is part of the vertex array state,
// so the owning vertex array should be bound first.
func (ib *IndexBuffer) SetData(values []uint32) error {

	ib.Bind()

	sizeInBytes := len(values) * 4
	if sizeInBytes == 0 {
		ib.ctx.Dev.BufferData(gpu.BufferTarget_ElementArray, 0, nil, gpu.BufUsage_Static_Draw)
	} else {
		ib.ctx.Dev.BufferData(gpu.BufferTarget_ElementArray, sizeInBytes, unsafe.Pointer(&values[0]), gpu.BufUsage_Static_Draw)
	}

	if err := ib.ctx.Dev.Error(); err != nil {
		return fmt.Errorf("failed to upload %d indices to index buffer %d: %w", len(values), ib.Id, err)
	}

	ib.IndexBufCount = int32(len(values))
	return nil
}

func (ib *IndexBuffer) Delete() {

	if ib.Id == 0 {
		return
	}

	ib.ctx.Dev.DeleteBuffer(ib.Id)
	ib.Id = 0
	ib.IndexBufCount = 0
}

func NewIndexBuffer(ctx *gpu.Context) (IndexBuffer, error) {

	ib := IndexBuffer{ctx: ctx}

	ib.Id = ctx.Dev.GenBuffer()
	if ib.Id == 0 {
		return IndexBuffer{}, fmt.Errorf("failed to create index buffer: %w", gpu.ErrObjectCreation)
	}

	return ib, nil
}
