package camera

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/bloeys/gglm/gglm"
	"github.com/bloeys/nrend/gpu"
	"github.com/bloeys/nrend/gpu/gputest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-5

func newTestCamera(aspect float32) Camera {
	pos := gglm.NewVec3(0, 0, 0)
	forward := gglm.NewVec3(0, 0, -1)
	up := gglm.NewVec3(0, 1, 0)
	return NewPerspective(&pos, &forward, &up, 1, 10, 90*gglm.Deg2Rad, aspect)
}

func assertVec3(t *testing.T, want [3]float32, got gglm.Vec3, msgAndArgs ...any) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], got.Data[i], tol, msgAndArgs...)
	}
}

func TestCameraDirections(t *testing.T) {

	cam := newTestCamera(1)
	assertVec3(t, [3]float32{1, 0, 0}, cam.Right())
	assertVec3(t, [3]float32{0, 1, 0}, cam.Up())

	cam.UpdateRotation(0, 0)
	assertVec3(t, [3]float32{1, 0, 0}, cam.Forward)

	cam.UpdateRotation(0, -90*gglm.Deg2Rad)
	assertVec3(t, [3]float32{0, 0, -1}, cam.Forward)
}

func TestCameraCompile(t *testing.T) {

	cam := newTestCamera(1.5)
	c := cam.Compile()

	assert.Equal(t, cam.ViewMat, c.View)
	assert.Equal(t, cam.ProjMat, c.Projection)
	assert.Equal(t, *cam.ProjMat.Clone().Mul(&cam.ViewMat), c.ViewProjection)
	assert.Equal(t, cam.Pos, c.Pos)
}

func TestFrustumCorners(t *testing.T) {

	cam := newTestCamera(2)
	corners := cam.FrustumCorners()

	// tan(45deg) == 1, so the near plane is 2 high and 4 wide, the far plane 20 high and 40 wide
	want := [8][3]float32{
		{-2, -1, -1}, {2, -1, -1}, {2, 1, -1}, {-2, 1, -1},
		{-20, -10, -10}, {20, -10, -10}, {20, 10, -10}, {-20, 10, -10},
	}

	for i := range want {
		assertVec3(t, want[i], corners[i], "corner %d", i)
	}
}

func TestUniformBuffer(t *testing.T) {

	dev := gputest.New()
	ctx := gpu.NewContext(dev)

	ubo, err := NewUniformBuffer(ctx)
	require.NoError(t, err)
	assert.Equal(t, ubo.Id, dev.UniformBindings[BlockBinding])
	assert.Contains(t, ubo.Source(), "uniform "+BlockName+" {")
	assert.Contains(t, ubo.Source(), "mat4 u_projection;")
	assert.Contains(t, ubo.Source(), "mat4 u_view;")

	cam := newTestCamera(1)
	c := cam.Compile()

	dev.ResetRecording()
	ubo.Set(&c)
	assert.Equal(t, 1, dev.CountCommands("BufferSubData"), "both matrices go up in one upload")

	data := dev.Buffers[ubo.Id].Data
	require.Len(t, data, 128)

	readF32 := func(offset int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
	}

	assert.Equal(t, c.Projection.Data[0][0], readF32(0))
	assert.Equal(t, c.Projection.Data[2][3], readF32(2*16+3*4))
	assert.Equal(t, c.View.Data[3][2], readF32(64+3*16+2*4))
}
