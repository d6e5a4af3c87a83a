package materials

import (
	"github.com/bloeys/gglm/gglm"
	"github.com/bloeys/nrend/shaders"
)

// MaxPointLights must match MAX_POINT_LIGHTS in the default shader
const MaxPointLights = 4

type DirLight struct {
	// Dir is the direction the light travels in
	Dir   gglm.Vec3
	Color gglm.Vec3
}

type PointLight struct {
	Pos   gglm.Vec3
	Color gglm.Vec3
	// Range is the distance at which the light stops contributing
	Range float32
}

type Lights struct {
	Ambient gglm.Vec3
	Dir     DirLight
	// Only the first MaxPointLights are used
	Points []PointLight
}

func (u *DefaultUniforms) setLights(sp *shaders.ShaderProgram, lights *Lights) {

	if lights == nil {
		lights = &Lights{}
	}

	sp.SetVec3(u.AmbientLight, &lights.Ambient)
	sp.SetVec3(u.DirLightDir, &lights.Dir.Dir)
	sp.SetVec3(u.DirLightColor, &lights.Dir.Color)

	// Unused slots are written black so lights from a previous draw don't leak into this one
	black := gglm.Vec3{}
	for i := 0; i < MaxPointLights; i++ {

		if i < len(lights.Points) {
			pl := &lights.Points[i]
			sp.SetVec3(u.PointLightPos[i], &pl.Pos)
			sp.SetVec3(u.PointLightColor[i], &pl.Color)
			sp.SetFloat(u.PointLightRange[i], pl.Range)
			continue
		}

		sp.SetVec3(u.PointLightPos[i], &black)
		sp.SetVec3(u.PointLightColor[i], &black)
		sp.SetFloat(u.PointLightRange[i], 0)
	}
}
