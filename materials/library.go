package materials

import (
	"fmt"

	"github.com/bloeys/nrend/camera"
	"github.com/bloeys/nrend/gpu"
	"github.com/bloeys/nrend/shaders"
)

const (
	ShaderNameDefault     = "default"
	ShaderNameUnlit       = "unlit"
	ShaderNameSingleColor = "single_color"
	ShaderNameSkybox      = "skybox"
)

// ShaderLibrary owns the programs used by the built-in materials.
//
// All of them declare the camera block, which is injected into their source before compiling,
// so the camera matrices only need to be uploaded once per frame.
type ShaderLibrary struct {
	Default     DefaultShader
	Unlit       UnlitShader
	SingleColor SingleColorShader
	Skybox      SkyboxShader

	ctx        *gpu.Context
	loader     shaders.SourceLoader
	cameraDecl string
}

// BuildFunc returns the function used to compile a library shader, both at startup and on reload
func (l *ShaderLibrary) BuildFunc(layout shaders.AttribLayout) shaders.BuildFunc {

	return func(src shaders.Source) (*shaders.ShaderProgram, error) {

		src = src.InjectAfterVersion(l.cameraDecl)
		sp, err := shaders.NewShaderProgram(l.ctx, src.Name, src.Vertex, src.Fragment, layout)
		if err != nil {
			return nil, err
		}

		err = shaders.SetupUniformBlock(sp, camera.BlockName, camera.BlockBinding)
		if err != nil {
			sp.Delete()
			return nil, err
		}

		return sp, nil
	}
}

func (l *ShaderLibrary) load(name string, layout shaders.AttribLayout) (*shaders.ShaderProgram, error) {

	src, err := l.loader.Load(name)
	if err != nil {
		return nil, err
	}

	sp, err := l.BuildFunc(layout)(src)
	if err != nil {
		return nil, fmt.Errorf("failed to build shader '%s': %w", name, err)
	}

	return sp, nil
}

// Watch registers every library shader with the reloader. Uniform sets are re-resolved after each reload
func (l *ShaderLibrary) Watch(r *shaders.Reloader) {

	r.Watch(ShaderNameDefault, l.Default.Program, l.BuildFunc(shaders.LayoutPosNormTex), l.Default.Uniforms.Resolve)
	r.Watch(ShaderNameUnlit, l.Unlit.Program, l.BuildFunc(shaders.LayoutPosNormTex), l.Unlit.Uniforms.Resolve)
	r.Watch(ShaderNameSingleColor, l.SingleColor.Program, l.BuildFunc(shaders.LayoutPosNormTex), l.SingleColor.Uniforms.Resolve)
	r.Watch(ShaderNameSkybox, l.Skybox.Program, l.BuildFunc(shaders.LayoutPos), l.Skybox.Uniforms.Resolve)
}

func (l *ShaderLibrary) Delete() {

	for _, sp := range [...]*shaders.ShaderProgram{l.Default.Program, l.Unlit.Program, l.SingleColor.Program, l.Skybox.Program} {
		if sp != nil {
			sp.Delete()
		}
	}
}

// NewShaderLibrary compiles the material shaders. cameraDecl is the GLSL declaration of the camera block,
// usually camera.UniformBuffer.Source()
func NewShaderLibrary(ctx *gpu.Context, loader shaders.SourceLoader, cameraDecl string) (*ShaderLibrary, error) {

	l := &ShaderLibrary{
		ctx:        ctx,
		loader:     loader,
		cameraDecl: cameraDecl,
	}

	var err error
	if l.Default.Program, err = l.load(ShaderNameDefault, shaders.LayoutPosNormTex); err != nil {
		return nil, err
	}
	l.Default.Uniforms.Resolve(l.Default.Program)

	if l.Unlit.Program, err = l.load(ShaderNameUnlit, shaders.LayoutPosNormTex); err != nil {
		l.Delete()
		return nil, err
	}
	l.Unlit.Uniforms.Resolve(l.Unlit.Program)

	if l.SingleColor.Program, err = l.load(ShaderNameSingleColor, shaders.LayoutPosNormTex); err != nil {
		l.Delete()
		return nil, err
	}
	l.SingleColor.Uniforms.Resolve(l.SingleColor.Program)

	if l.Skybox.Program, err = l.load(ShaderNameSkybox, shaders.LayoutPos); err != nil {
		l.Delete()
		return nil, err
	}
	l.Skybox.Uniforms.Resolve(l.Skybox.Program)

	return l, nil
}
