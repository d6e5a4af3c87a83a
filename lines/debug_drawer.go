package lines

import (
	"math"

	"github.com/bloeys/gglm/gglm"
	"github.com/bloeys/nrend/camera"
)

var (
	ColorAxisX = gglm.Vec4{Data: [4]float32{1, 0, 0, 1}}
	ColorAxisY = gglm.Vec4{Data: [4]float32{0, 1, 0, 1}}
	ColorAxisZ = gglm.Vec4{Data: [4]float32{0, 0, 1, 1}}
)

// MaxDashes is the most segments a single dashed line is split into. Longer patterns draw solid
const MaxDashes = 1 << 16

// DebugDrawer queues debug shapes into a LineBatch. It owns no GPU resources.
//
// Dashes are made of separate short segments, so the line shader doesn't need to know about them.
type DebugDrawer struct {
	Batch *LineBatch

	// dashLen and gapLen are in world units. A zero dashLen draws solid lines
	dashLen float32
	gapLen  float32
}

// SetLineDash makes the following lines dashed. Non positive lengths go back to solid lines
func (d *DebugDrawer) SetLineDash(dashLen, gapLen float32) {

	if dashLen <= 0 || gapLen <= 0 {
		d.SetLineSolid()
		return
	}

	d.dashLen = dashLen
	d.gapLen = gapLen
}

func (d *DebugDrawer) SetLineSolid() {
	d.dashLen = 0
	d.gapLen = 0
}

func (d *DebugDrawer) IsDashed() bool {
	return d.dashLen > 0
}

func (d *DebugDrawer) Line(from, to *gglm.Vec3, color *gglm.Vec4) {

	if !d.IsDashed() {
		d.Batch.Line(from, to, color)
		return
	}

	step := d.dashLen + d.gapLen

	var dir [3]float32
	for i := 0; i < 3; i++ {
		dir[i] = to.Data[i] - from.Data[i]
	}

	length := float32(math.Sqrt(float64(dir[0]*dir[0] + dir[1]*dir[1] + dir[2]*dir[2])))
	if length == 0 {
		return
	}

	// Starts are computed from the dash index since summing steps stops advancing on long lines
	dashCount := math.Ceil(float64(length) / float64(step))
	if dashCount > MaxDashes {
		d.Batch.Line(from, to, color)
		return
	}

	for i := 0; i < 3; i++ {
		dir[i] /= length
	}

	pointAt := func(dist float32) gglm.Vec3 {
		return gglm.Vec3{Data: [3]float32{
			from.Data[0] + dir[0]*dist,
			from.Data[1] + dir[1]*dist,
			from.Data[2] + dir[2]*dist,
		}}
	}

	for i := 0; i < int(dashCount); i++ {

		start := float32(i) * step
		if start >= length {
			break
		}

		end := start + d.dashLen
		if end > length {
			end = length
		}

		p0 := pointAt(start)
		p1 := pointAt(end)
		d.Batch.Line(&p0, &p1, color)
	}
}

// Box draws the 12 edges of the axis aligned box between min and max
func (d *DebugDrawer) Box(min, max *gglm.Vec3, color *gglm.Vec4) {

	var corners [8]gglm.Vec3
	for i := 0; i < 8; i++ {

		c := gglm.Vec3{Data: min.Data}
		if i&1 != 0 {
			c.Data[0] = max.Data[0]
		}
		if i&2 != 0 {
			c.Data[1] = max.Data[1]
		}
		if i&4 != 0 {
			c.Data[2] = max.Data[2]
		}

		corners[i] = c
	}

	// Corners that differ in exactly one bit share an edge
	for i := 0; i < 8; i++ {
		for _, bit := range [3]int{1, 2, 4} {
			if i&bit == 0 {
				d.Line(&corners[i], &corners[i|bit], color)
			}
		}
	}
}

// Axes draws the X, Y and Z axes in red, green and blue
func (d *DebugDrawer) Axes(origin *gglm.Vec3, size float32) {

	for i, col := range [3]*gglm.Vec4{&ColorAxisX, &ColorAxisY, &ColorAxisZ} {
		end := gglm.Vec3{Data: origin.Data}
		end.Data[i] += size
		d.Line(origin, &end, col)
	}
}

// Frustum draws the view volume of the camera: both clip planes and the four edges joining them
func (d *DebugDrawer) Frustum(cam *camera.Camera, color *gglm.Vec4) {

	corners := cam.FrustumCorners()
	for i := 0; i < 4; i++ {

		next := (i + 1) % 4

		// Near plane, far plane, then the side edge
		d.Line(&corners[i], &corners[next], color)
		d.Line(&corners[4+i], &corners[4+next], color)
		d.Line(&corners[i], &corners[4+i], color)
	}
}

func NewDebugDrawer(batch *LineBatch) DebugDrawer {
	return DebugDrawer{Batch: batch}
}
