package gpu

type BufUsage int

// Full docs for buffer usage can be found here: https://registry.khronos.org/OpenGL-Refpages/gl4/html/glBufferData.xhtml
const (
	BufUsage_Unknown BufUsage = iota

	//Buffer is set only once and used many times
	BufUsage_Static_Draw
	//Buffer is changed a lot and used many times
	BufUsage_Dynamic_Draw
	//Buffer is set only once and used by the GPU at most a few times
	BufUsage_Stream_Draw

	BufUsage_Static_Read
	BufUsage_Dynamic_Read
	BufUsage_Stream_Read

	BufUsage_Static_Copy
	BufUsage_Dynamic_Copy
	BufUsage_Stream_Copy
)

type BufferTarget int32

const (
	BufferTarget_Unknown BufferTarget = iota
	BufferTarget_Array
	BufferTarget_ElementArray
	BufferTarget_Uniform
)

// ScalarType is the type of a single component of a vertex attribute
type ScalarType int32

const (
	ScalarType_Unknown ScalarType = iota
	ScalarType_Float32
	ScalarType_Int32
	ScalarType_Uint32
)

type Primitive int32

const (
	Primitive_Unknown Primitive = iota
	Primitive_Triangles
	Primitive_Lines
)

func (p Primitive) String() string {
	switch p {
	case Primitive_Triangles:
		return "Triangles"
	case Primitive_Lines:
		return "Lines"
	default:
		return "Unknown"
	}
}

type ShaderStage int32

const (
	ShaderStage_Unknown ShaderStage = iota
	ShaderStage_Vertex
	ShaderStage_Fragment
)

func (s ShaderStage) String() string {
	switch s {
	case ShaderStage_Vertex:
		return "vertex"
	case ShaderStage_Fragment:
		return "fragment"
	default:
		return "unknown"
	}
}

type TextureTarget int32

const (
	TextureTarget_Unknown TextureTarget = iota
	TextureTarget_2D
	TextureTarget_CubeMap

	// The six cubemap faces are consecutive, so face i is TextureTarget_CubeMapPositiveX+i.
	// Order is: +x, -x, +y, -y, +z, -z
	TextureTarget_CubeMapPositiveX
	TextureTarget_CubeMapNegativeX
	TextureTarget_CubeMapPositiveY
	TextureTarget_CubeMapNegativeY
	TextureTarget_CubeMapPositiveZ
	TextureTarget_CubeMapNegativeZ
)

type TextureFormat int32

const (
	TextureFormat_Unknown TextureFormat = iota
	TextureFormat_RGBA8
	TextureFormat_SRGBA8
	TextureFormat_RGBA16F
	TextureFormat_Depth24Stencil8
)

func (f TextureFormat) IsColorFormat() bool {
	return f == TextureFormat_RGBA8 ||
		f == TextureFormat_SRGBA8 ||
		f == TextureFormat_RGBA16F
}

func (f TextureFormat) IsDepthFormat() bool {
	return f == TextureFormat_Depth24Stencil8
}

type TextureFilter int32

const (
	TextureFilter_Unknown TextureFilter = iota
	TextureFilter_Nearest
	TextureFilter_Linear
	TextureFilter_Mipmap
)

type TextureWrap int32

const (
	TextureWrap_Unknown TextureWrap = iota
	TextureWrap_Clamp
	TextureWrap_Repeat
)

type Attachment int32

const (
	// Color attachment i is Attachment_Color0+i
	Attachment_Color0       Attachment = 0
	Attachment_DepthStencil Attachment = 100
)

type ClearMask uint32

const (
	ClearMask_Color ClearMask = 1 << iota
	ClearMask_Depth
	ClearMask_Stencil
)

type Capability int32

const (
	Capability_Unknown Capability = iota
	Capability_DepthTest
	Capability_StencilTest
	Capability_CullFace
	Capability_Blend
	Capability_Multisample
	Capability_FramebufferSrgb
)

type DepthFunc int32

const (
	DepthFunc_Unknown DepthFunc = iota
	DepthFunc_Less
	DepthFunc_LessEqual
)

type Face int32

const (
	Face_Unknown Face = iota
	Face_Back
	Face_Front
)

type Winding int32

const (
	Winding_Unknown Winding = iota
	Winding_CCW
	Winding_CW
)

type BlendFactor int32

const (
	BlendFactor_Unknown BlendFactor = iota
	BlendFactor_Zero
	BlendFactor_One
	BlendFactor_SrcAlpha
	BlendFactor_OneMinusSrcAlpha
)
