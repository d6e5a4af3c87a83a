package shaders

import (
	"github.com/bloeys/nrend/buffers"
)

// Attrib is one vertex attribute a program reads, e.g. {"a_position", DataTypeVec3}
type Attrib struct {
	Name string
	Type buffers.ElementType
}

// AttribLayout is the ordered list of vertex attributes of a program. The attribute at
// index i is bound to location i before linking, so a vertex buffer created from
// Elements() feeds the program without any lookups
type AttribLayout []Attrib

func (l AttribLayout) Elements() []buffers.Element {

	elements := make([]buffers.Element, len(l))
	for i := 0; i < len(l); i++ {
		elements[i] = buffers.Element{ElementType: l[i].Type}
	}

	return elements
}

var (
	// LayoutPosNormTex is the layout used by lit and unlit mesh shaders
	LayoutPosNormTex = AttribLayout{
		{Name: "a_position", Type: buffers.DataTypeVec3},
		{Name: "a_normal", Type: buffers.DataTypeVec3},
		{Name: "a_tex_coord", Type: buffers.DataTypeVec2},
	}

	// LayoutPosColor is the layout of line vertices
	LayoutPosColor = AttribLayout{
		{Name: "a_position", Type: buffers.DataTypeVec3},
		{Name: "a_color", Type: buffers.DataTypeVec4},
	}

	// LayoutPos2Tex is the layout of full screen quads used by post processing
	LayoutPos2Tex = AttribLayout{
		{Name: "a_position", Type: buffers.DataTypeVec2},
		{Name: "a_tex_coord", Type: buffers.DataTypeVec2},
	}

	// LayoutPos is a position only layout, used by the skybox
	LayoutPos = AttribLayout{
		{Name: "a_position", Type: buffers.DataTypeVec3},
	}
)
