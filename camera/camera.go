package camera

import (
	"math"

	"github.com/bloeys/gglm/gglm"
)

// Camera is a right handed perspective camera. Call Update after changing any of its fields
type Camera struct {
	Pos     gglm.Vec3
	Forward gglm.Vec3
	WorldUp gglm.Vec3

	NearClip    float32
	FarClip     float32
	FovYRad     float32
	AspectRatio float32

	ViewMat gglm.Mat4
	ProjMat gglm.Mat4
}

// Compiled is the camera data shaders need for one frame
type Compiled struct {
	View           gglm.Mat4
	Projection     gglm.Mat4
	ViewProjection gglm.Mat4
	Pos            gglm.Vec3
}

func (c *Camera) Update() {

	c.ViewMat = gglm.LookAtRH(&c.Pos, c.Pos.Clone().Add(&c.Forward), &c.WorldUp).Mat4

	projMat := gglm.Perspective(c.FovYRad, c.AspectRatio, c.NearClip, c.FarClip)
	c.ProjMat = *projMat.Clone()
}

// UpdateRotation points the camera using pitch and yaw (in radians) and updates the matrices
func (c *Camera) UpdateRotation(pitch, yaw float32) {

	cosPitch := float32(math.Cos(float64(pitch)))
	dir := gglm.NewVec3(
		float32(math.Cos(float64(yaw)))*cosPitch,
		float32(math.Sin(float64(pitch))),
		float32(math.Sin(float64(yaw)))*cosPitch,
	)

	c.Forward = *dir.Normalize()
	c.Update()
}

// Right returns the normalized right direction of the camera
func (c *Camera) Right() gglm.Vec3 {
	right := gglm.Cross(&c.Forward, &c.WorldUp)
	return *right.Normalize()
}

// Up returns the normalized up direction of the camera, which is WorldUp only when looking straight ahead
func (c *Camera) Up() gglm.Vec3 {
	right := c.Right()
	up := gglm.Cross(&right, &c.Forward)
	return *up.Normalize()
}

func (c *Camera) Compile() Compiled {
	return Compiled{
		View:           c.ViewMat,
		Projection:     c.ProjMat,
		ViewProjection: *c.ProjMat.Clone().Mul(&c.ViewMat),
		Pos:            c.Pos,
	}
}

// FrustumCorners returns the near plane corners followed by the far plane corners, each ordered
// bottom-left, bottom-right, top-right, top-left
func (c *Camera) FrustumCorners() [8]gglm.Vec3 {

	forward := c.Forward.Clone().Normalize()
	right := c.Right()
	up := c.Up()

	tanHalfFov := float32(math.Tan(float64(c.FovYRad) / 2))

	var corners [8]gglm.Vec3
	for i, dist := range [2]float32{c.NearClip, c.FarClip} {

		halfHeight := tanHalfFov * dist
		halfWidth := halfHeight * c.AspectRatio

		center := c.Pos.Clone().Add(forward.Clone().Scale(dist))
		r := right.Clone().Scale(halfWidth)
		u := up.Clone().Scale(halfHeight)

		corners[i*4+0] = *center.Clone().Sub(r).Sub(u)
		corners[i*4+1] = *center.Clone().Add(r).Sub(u)
		corners[i*4+2] = *center.Clone().Add(r).Add(u)
		corners[i*4+3] = *center.Clone().Sub(r).Add(u)
	}

	return corners
}

func NewPerspective(pos, forward, worldUp *gglm.Vec3, nearClip, farClip, fovRadians, aspectRatio float32) Camera {

	cam := Camera{
		Pos:         *pos,
		Forward:     *forward,
		WorldUp:     *worldUp,
		NearClip:    nearClip,
		FarClip:     farClip,
		FovYRad:     fovRadians,
		AspectRatio: aspectRatio,
	}

	cam.Update()
	return cam
}
