package buffers

import (
	"encoding/binary"
	"math"

	"github.com/bloeys/gglm/gglm"
	"github.com/bloeys/nrend/assert"
)

// The helpers below write little endian values into a std140 block image and advance startIndex.
// The ...WithAlignment variants advance by alignmentPerField for every element, which is how
// std140 arrays are laid out (every element padded to a vec4).

func Write32BitIntegerToByteBuf[T uint32 | int32](buf []byte, startIndex *int, val T) {

	assert.T(*startIndex+4 <= len(buf), "failed to write uint32/int32 to buffer because the buffer doesn't have enough space. Start index=%d, Buffer length=%d", *startIndex, len(buf))

	binary.LittleEndian.PutUint32(buf[*startIndex:], uint32(val))
	*startIndex += 4
}

func WriteF32ToByteBuf(buf []byte, startIndex *int, val float32) {

	assert.T(*startIndex+4 <= len(buf), "failed to write float32 to buffer because the buffer doesn't have enough space. Start index=%d, Buffer length=%d", *startIndex, len(buf))

	binary.LittleEndian.PutUint32(buf[*startIndex:], math.Float32bits(val))
	*startIndex += 4
}

func WriteF32SliceToByteBuf(buf []byte, startIndex *int, vals []float32) {

	assert.T(*startIndex+len(vals)*4 <= len(buf), "failed to write slice of float32 to buffer because the buffer doesn't have enough space. Start index=%d, Buffer length=%d, but needs %d bytes free", *startIndex, len(buf), len(vals)*4)

	for i := 0; i < len(vals); i++ {
		binary.LittleEndian.PutUint32(buf[*startIndex:], math.Float32bits(vals[i]))
		*startIndex += 4
	}
}

func WriteF32SliceToByteBufWithAlignment(buf []byte, startIndex *int, alignmentPerField int, vals []float32) {

	// The last element only needs its own 4 bytes, the padding after it may belong to the next field
	assert.T(len(vals) == 0 || *startIndex+(len(vals)-1)*alignmentPerField+4 <= len(buf), "failed to write slice of float32 with custom alignment=%d to buffer because the buffer doesn't have enough space. Start index=%d, Buffer length=%d", alignmentPerField, *startIndex, len(buf))

	for i := 0; i < len(vals); i++ {
		binary.LittleEndian.PutUint32(buf[*startIndex:], math.Float32bits(vals[i]))
		*startIndex += alignmentPerField
	}
}

func WriteVec3SliceToByteBufWithAlignment(buf []byte, startIndex *int, alignmentPerVector int, vals []gglm.Vec3) {

	assert.T(len(vals) == 0 || *startIndex+(len(vals)-1)*alignmentPerVector+12 <= len(buf), "failed to write slice of gglm.Vec3 with custom alignment=%d to buffer because the buffer doesn't have enough space. Start index=%d, Buffer length=%d", alignmentPerVector, *startIndex, len(buf))

	for i := 0; i < len(vals); i++ {

		writeStart := *startIndex
		WriteF32SliceToByteBuf(buf, &writeStart, vals[i].Data[:])
		*startIndex += alignmentPerVector
	}
}

func WriteVec4SliceToByteBufWithAlignment(buf []byte, startIndex *int, alignmentPerVector int, vals []gglm.Vec4) {

	assert.T(len(vals) == 0 || *startIndex+(len(vals)-1)*alignmentPerVector+16 <= len(buf), "failed to write slice of gglm.Vec4 with custom alignment=%d to buffer because the buffer doesn't have enough space. Start index=%d, Buffer length=%d", alignmentPerVector, *startIndex, len(buf))

	for i := 0; i < len(vals); i++ {

		writeStart := *startIndex
		WriteF32SliceToByteBuf(buf, &writeStart, vals[i].Data[:])
		*startIndex += alignmentPerVector
	}
}

func WriteMat3SliceToByteBufWithAlignment(buf []byte, startIndex *int, alignmentPerMatrix int, vals []gglm.Mat3) {

	for i := 0; i < len(vals); i++ {

		m := &vals[i]

		columnStart := *startIndex
		WriteVec3SliceToByteBufWithAlignment(
			buf,
			&columnStart,
			16,
			[]gglm.Vec3{
				{Data: m.Data[0]},
				{Data: m.Data[1]},
				{Data: m.Data[2]},
			},
		)

		*startIndex += alignmentPerMatrix
	}
}

func WriteMat4SliceToByteBufWithAlignment(buf []byte, startIndex *int, alignmentPerMatrix int, vals []gglm.Mat4) {

	for i := 0; i < len(vals); i++ {

		m := &vals[i]

		columnStart := *startIndex
		WriteVec4SliceToByteBufWithAlignment(
			buf,
			&columnStart,
			16,
			[]gglm.Vec4{
				{Data: m.Data[0]},
				{Data: m.Data[1]},
				{Data: m.Data[2]},
				{Data: m.Data[3]},
			},
		)

		*startIndex += alignmentPerMatrix
	}
}
