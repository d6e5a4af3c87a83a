package buffers

import (
	"fmt"

	"github.com/bloeys/nrend/gpu"
)

type VertexArray struct {
	Id          uint32
	Vbos        []VertexBuffer
	IndexBuffer IndexBuffer
	ctx         *gpu.Context
	// nextAttrib is the attribute index the next added vertex buffer starts at
	nextAttrib uint32
}

func (va *VertexArray) Bind() {
	va.ctx.BindVertexArray(va.Id)
}

func (va *VertexArray) UnBind() {
	va.ctx.BindVertexArray(0)
}

// AddVertexBuffer enables one attribute per element of the vbo layout. Attribute indices continue
// from the previously added buffer, so two buffers with 2 elements each occupy attributes 0..3
func (va *VertexArray) AddVertexBuffer(vbo VertexBuffer) {

	// NOTE: VBOs are only bound at 'VertexAttribPointer' (and related) calls

	va.Bind()
	vbo.Bind()

	for i := 0; i < len(vbo.layout); i++ {

		l := &vbo.layout[i]
		attrib := va.nextAttrib + uint32(i)

		va.ctx.Dev.EnableVertexAttribArray(attrib)
		va.ctx.Dev.VertexAttribPointer(attrib, l.ElementType.CompCount(), l.ElementType.ScalarType(), false, vbo.Stride, uintptr(l.Offset))
	}

	va.nextAttrib += uint32(len(vbo.layout))
	va.Vbos = append(va.Vbos, vbo)
}

func (va *VertexArray) SetIndexBuffer(ib IndexBuffer) {
	va.Bind()
	ib.Bind()
	va.IndexBuffer = ib
}

// Delete deletes the vertex array along with every buffer attached to it
func (va *VertexArray) Delete() {

	if va.Id == 0 {
		return
	}

	for i := range va.Vbos {
		va.Vbos[i].Delete()
	}
	va.Vbos = nil
	va.IndexBuffer.Delete()

	if va.ctx.BoundVao == va.Id {
		va.UnBind()
	}

	va.ctx.Dev.DeleteVertexArray(va.Id)
	va.Id = 0
}

func NewVertexArray(ctx *gpu.Context) (VertexArray, error) {

	vao := VertexArray{ctx: ctx}

	vao.Id = ctx.Dev.GenVertexArray()
	if vao.Id == 0 {
		return VertexArray{}, fmt.Errorf("failed to create vertex array: %w", gpu.ErrObjectCreation)
	}

	return vao, nil
}
