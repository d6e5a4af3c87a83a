package buffers

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/bloeys/gglm/gglm"
	"github.com/bloeys/nrend/assert"
	"github.com/bloeys/nrend/gpu"
)

type UniformBufferFieldInput struct {
	Name string
	Type ElementType
	// Count should be set in case this field is an array of type `[Count]Type`.
	// Count=0 is valid and is equivalent to Count=1, which means the type is NOT an array, but a single field.
	Count uint16
}

type UniformBufferField struct {
	Name          string
	AlignedOffset uint16
	// Count is the array length, 1 for fields that are not arrays
	Count uint16
	Type  ElementType
}

// IsArray is true for fields declared as `[Count]Type` with Count > 1
func (f *UniformBufferField) IsArray() bool {
	return f.Count > 1
}

// UniformBuffer is a uniform block laid out with std140 rules.
//
// Setters write into a CPU side copy of the block and only Flush talks to the GPU,
// uploading everything written since the last flush in a single transfer.
type UniformBuffer struct {
	Id uint32
	// Size is the allocated memory in bytes on the GPU for this uniform buffer
	Size   uint32
	Fields []UniformBufferField
	// Binding is the last binding index passed to BindBase, or -1
	Binding int32

	staging []byte
	// dirtyStart/dirtyEnd is the byte range written since the last flush. dirtyEnd==0 means clean
	dirtyStart int
	dirtyEnd   int
	ctx        *gpu.Context
}

func (ub *UniformBuffer) Bind() {
	ub.ctx.Dev.BindBuffer(gpu.BufferTarget_Uniform, ub.Id)
}

func (ub *UniformBuffer) UnBind() {
	ub.ctx.Dev.BindBuffer(gpu.BufferTarget_Uniform, 0)
}

// BindBase attaches the buffer to the uniform block binding index. Every program that has
// its block associated with the same index (see shaders.SetupUniformBlock) reads from this buffer
func (ub *UniformBuffer) BindBase(binding uint32) {
	ub.ctx.Dev.BindBufferBase(gpu.BufferTarget_Uniform, binding, ub.Id)
	ub.Binding = int32(binding)
}

func (ub *UniformBuffer) IsDirty() bool {
	return ub.dirtyEnd > 0
}

// Flush uploads the dirty range of the staging image. Does nothing if nothing was written since the last flush
func (ub *UniformBuffer) Flush() {

	if !ub.IsDirty() {
		return
	}

	ub.Bind()
	ub.ctx.Dev.BufferSubData(gpu.BufferTarget_Uniform, ub.dirtyStart, ub.dirtyEnd-ub.dirtyStart, unsafe.Pointer(&ub.staging[ub.dirtyStart]))

	ub.dirtyStart = 0
	ub.dirtyEnd = 0
}

// Staging returns the CPU side image of the block. It must not be modified
func (ub *UniformBuffer) Staging() []byte {
	return ub.staging
}

// ToSource returns the GLSL declaration of this block, e.g.
//
//	layout (std140) uniform Camera {
//	    mat4 u_view;
//	};
func (ub *UniformBuffer) ToSource(blockName string) string {

	sb := strings.Builder{}
	sb.WriteString("layout (std140) uniform ")
	sb.WriteString(blockName)
	sb.WriteString(" {\n")

	for i := 0; i < len(ub.Fields); i++ {

		f := &ub.Fields[i]
		sb.WriteString("    ")
		sb.WriteString(f.Type.GlslName())
		sb.WriteString(" ")
		sb.WriteString(f.Name)
		if f.IsArray() {
			sb.WriteString(fmt.Sprintf("[%d]", f.Count))
		}
		sb.WriteString(";\n")
	}

	sb.WriteString("};\n")
	return sb.String()
}

func addUniformBufferFieldsToArray(arrayToAddTo *[]UniformBufferField, fieldsToAdd []UniformBufferFieldInput) (totalSize uint32) {

	if len(fieldsToAdd) == 0 {
		return 0
	}

	*arrayToAddTo = make([]UniformBufferField, 0, len(fieldsToAdd))

	var alignedOffset uint16 = 0
	fieldNameToTypeMap := make(map[string]ElementType, len(fieldsToAdd))

	for i := 0; i < len(fieldsToAdd); i++ {

		f := fieldsToAdd[i]
		if f.Count == 0 {
			f.Count = 1
		}

		existingFieldType, ok := fieldNameToTypeMap[f.Name]
		assert.T(!ok, "Uniform buffer field name is reused within the same uniform buffer. Field '%s' was first used on a field with type=%s and then used on a different field with type=%s\n", f.Name, existingFieldType.String(), f.Type.String())
		fieldNameToTypeMap[f.Name] = f.Type

		// To understand this take an example. Say we have a total offset of 100 and we are adding a vec4.
		// Vec4s must be aligned to a 16 byte boundary but 100 is not (100 % 16 != 0).
		//
		// To fix this, we take the alignment error which is alignErr=100 % 16=4, but this is error to the nearest
		// boundary, which is below the offset.
		//
		// To get the nearest boundary larger than the offset we can:
		// offset + (boundary - alignErr) == 100 + (16 - 4) == 112; 112 % 16 == 0, meaning its a boundary
		//
		// Note that arrays of scalars/vectors are always aligned to 16 bytes, like a vec4
		var alignmentBoundary uint16 = 16
		if f.Count == 1 {
			alignmentBoundary = f.Type.GlStd140AlignmentBoundary()
		}

		alignmentError := alignedOffset % alignmentBoundary
		if alignmentError != 0 {
			alignedOffset += alignmentBoundary - alignmentError
		}

		newField := UniformBufferField{Name: f.Name, Type: f.Type, AlignedOffset: alignedOffset, Count: f.Count}
		*arrayToAddTo = append(*arrayToAddTo, newField)

		// Prepare aligned offset for the next field.
		//
		// Matrices are treated as an array of column vectors, where each column is a vec4.
		// Single scalars/vectors only take their own size, so a float can be packed right after a vec3
		if cols := f.Type.MatrixColumns(); cols > 0 {
			alignedOffset += 16 * cols * f.Count
		} else if f.Count > 1 {
			alignedOffset += 16 * f.Count
		} else {
			alignedOffset += uint16(f.Type.Size())
		}
	}

	// The block size is rounded up to a multiple of a vec4
	padTo16Boundary(&alignedOffset)
	return uint32(alignedOffset)
}

func padTo16Boundary[T uint16 | int | int32](val *T) {
	alignmentError := *val % 16
	if alignmentError != 0 {
		*val += 16 - alignmentError
	}
}

// GetField returns the field with the given name
func (ub *UniformBuffer) GetField(name string) (UniformBufferField, bool) {

	for i := 0; i < len(ub.Fields); i++ {
		if ub.Fields[i].Name == name {
			return ub.Fields[i], true
		}
	}

	return UniformBufferField{}, false
}

func (ub *UniformBuffer) getField(name string, fieldType ElementType) (UniformBufferField, bool) {

	f, ok := ub.GetField(name)
	assert.T(ok, "couldn't find uniform buffer field '%s' of type=%s", name, fieldType.String())
	assert.T(!ok || f.Type == fieldType, "uniform buffer field '%s' has type=%s, but is being written as type=%s", name, f.Type.String(), fieldType.String())

	return f, ok && f.Type == fieldType
}

// markDirty grows the dirty range to include [start, end)
func (ub *UniformBuffer) markDirty(start, end int) {

	assert.T(start >= 0 && end <= len(ub.staging), "uniform buffer write of range [%d, %d) is outside of the block which has size %d", start, end, len(ub.staging))

	if !ub.IsDirty() {
		ub.dirtyStart = start
		ub.dirtyEnd = end
		return
	}

	ub.dirtyStart = min(ub.dirtyStart, start)
	ub.dirtyEnd = max(ub.dirtyEnd, end)
}

func (ub *UniformBuffer) SetInt32(name string, val int32) {

	f, ok := ub.getField(name, DataTypeInt32)
	if !ok {
		return
	}

	start := int(f.AlignedOffset)
	ub.markDirty(start, start+4)
	Write32BitIntegerToByteBuf(ub.staging, &start, val)
}

func (ub *UniformBuffer) SetUint32(name string, val uint32) {

	f, ok := ub.getField(name, DataTypeUint32)
	if !ok {
		return
	}

	start := int(f.AlignedOffset)
	ub.markDirty(start, start+4)
	Write32BitIntegerToByteBuf(ub.staging, &start, val)
}

func (ub *UniformBuffer) SetFloat32(name string, val float32) {

	f, ok := ub.getField(name, DataTypeFloat32)
	if !ok {
		return
	}

	start := int(f.AlignedOffset)
	ub.markDirty(start, start+4)
	WriteF32ToByteBuf(ub.staging, &start, val)
}

func (ub *UniformBuffer) SetVec2(name string, val *gglm.Vec2) {

	f, ok := ub.getField(name, DataTypeVec2)
	if !ok {
		return
	}

	start := int(f.AlignedOffset)
	ub.markDirty(start, start+4*2)
	WriteF32SliceToByteBuf(ub.staging, &start, val.Data[:])
}

func (ub *UniformBuffer) SetVec3(name string, val *gglm.Vec3) {

	f, ok := ub.getField(name, DataTypeVec3)
	if !ok {
		return
	}

	start := int(f.AlignedOffset)
	ub.markDirty(start, start+4*3)
	WriteF32SliceToByteBuf(ub.staging, &start, val.Data[:])
}

func (ub *UniformBuffer) SetVec4(name string, val *gglm.Vec4) {

	f, ok := ub.getField(name, DataTypeVec4)
	if !ok {
		return
	}

	start := int(f.AlignedOffset)
	ub.markDirty(start, start+4*4)
	WriteF32SliceToByteBuf(ub.staging, &start, val.Data[:])
}

func (ub *UniformBuffer) SetMat3(name string, val *gglm.Mat3) {

	f, ok := ub.getField(name, DataTypeMat3)
	if !ok {
		return
	}

	// Each column is padded to a vec4, so the last column only covers 12 of its 16 bytes
	start := int(f.AlignedOffset)
	ub.markDirty(start, start+16*2+4*3)
	WriteMat3SliceToByteBufWithAlignment(ub.staging, &start, 16*3, []gglm.Mat3{*val})
}

func (ub *UniformBuffer) SetMat4(name string, val *gglm.Mat4) {

	f, ok := ub.getField(name, DataTypeMat4)
	if !ok {
		return
	}

	start := int(f.AlignedOffset)
	ub.markDirty(start, start+4*16)
	WriteMat4SliceToByteBufWithAlignment(ub.staging, &start, 16*4, []gglm.Mat4{*val})
}

// SetFloat32Array writes vals starting at element startIndex of an array field
func (ub *UniformBuffer) SetFloat32Array(name string, startIndex int, vals []float32) {

	f, ok := ub.getField(name, DataTypeFloat32)
	if !ok || len(vals) == 0 {
		return
	}

	assert.T(startIndex+len(vals) <= int(f.Count), "uniform buffer array field '%s' has %d elements but %d were written starting at %d", name, f.Count, len(vals), startIndex)

	start := int(f.AlignedOffset) + startIndex*16
	ub.markDirty(start, start+(len(vals)-1)*16+4)
	WriteF32SliceToByteBufWithAlignment(ub.staging, &start, 16, vals)
}

// SetVec4Array writes vals starting at element startIndex of an array field
func (ub *UniformBuffer) SetVec4Array(name string, startIndex int, vals []gglm.Vec4) {

	f, ok := ub.getField(name, DataTypeVec4)
	if !ok || len(vals) == 0 {
		return
	}

	assert.T(startIndex+len(vals) <= int(f.Count), "uniform buffer array field '%s' has %d elements but %d were written starting at %d", name, f.Count, len(vals), startIndex)

	start := int(f.AlignedOffset) + startIndex*16
	ub.markDirty(start, start+len(vals)*16)
	WriteVec4SliceToByteBufWithAlignment(ub.staging, &start, 16, vals)
}

func (ub *UniformBuffer) Delete() {

	if ub.Id == 0 {
		return
	}

	ub.ctx.Dev.DeleteBuffer(ub.Id)
	ub.Id = 0
}

func NewUniformBuffer(ctx *gpu.Context, fields []UniformBufferFieldInput) (UniformBuffer, error) {

	ub := UniformBuffer{
		Binding: -1,
		ctx:     ctx,
	}

	ub.Size = addUniformBufferFieldsToArray(&ub.Fields, fields)
	ub.staging = make([]byte, ub.Size)

	ub.Id = ctx.Dev.GenBuffer()
	if ub.Id == 0 {
		return UniformBuffer{}, fmt.Errorf("failed to create uniform buffer: %w", gpu.ErrObjectCreation)
	}

	ub.Bind()
	if ub.Size == 0 {
		ctx.Dev.BufferData(gpu.BufferTarget_Uniform, 0, nil, gpu.BufUsage_Dynamic_Draw)
	} else {
		ctx.Dev.BufferData(gpu.BufferTarget_Uniform, int(ub.Size), unsafe.Pointer(&ub.staging[0]), gpu.BufUsage_Dynamic_Draw)
	}
	ub.UnBind()

	if err := ctx.Dev.Error(); err != nil {
		ctx.Dev.DeleteBuffer(ub.Id)
		return UniformBuffer{}, fmt.Errorf("failed to allocate %d bytes for uniform buffer: %w", ub.Size, err)
	}

	return ub, nil
}
