package lines

import (
	"fmt"

	"github.com/bloeys/nrend/camera"
	"github.com/bloeys/nrend/gpu"
	"github.com/bloeys/nrend/shaders"
)

const ShaderNameLine = "line"

// LineDrawer owns the line shader and a LineBatch drawn with it
type LineDrawer struct {
	Program *shaders.ShaderProgram
	Batch   *LineBatch

	viewProj shaders.Uniform
	ctx      *gpu.Context
}

func (ld *LineDrawer) resolve(sp *shaders.ShaderProgram) {
	ld.viewProj = sp.GetUniform("u_view_projection")
}

// Draw submits the batch using the camera of this frame
func (ld *LineDrawer) Draw(cam *camera.Compiled) error {

	if ld.Batch.StagedVertexCount() == 0 {
		return nil
	}

	ld.Program.Use()
	ld.Program.SetMat4(ld.viewProj, &cam.ViewProjection)
	return ld.Batch.Submit()
}

func (ld *LineDrawer) build(src shaders.Source) (*shaders.ShaderProgram, error) {
	return shaders.NewShaderProgram(ld.ctx, src.Name, src.Vertex, src.Fragment, shaders.LayoutPosColor)
}

func (ld *LineDrawer) Watch(r *shaders.Reloader) {
	r.Watch(ShaderNameLine, ld.Program, ld.build, ld.resolve)
}

func (ld *LineDrawer) Delete() {
	ld.Batch.Delete()
	ld.Program.Delete()
}

func NewLineDrawer(ctx *gpu.Context, loader shaders.SourceLoader) (*LineDrawer, error) {

	ld := &LineDrawer{ctx: ctx}

	src, err := loader.Load(ShaderNameLine)
	if err != nil {
		return nil, err
	}

	ld.Program, err = ld.build(src)
	if err != nil {
		return nil, fmt.Errorf("failed to build line shader: %w", err)
	}
	ld.resolve(ld.Program)

	ld.Batch, err = NewLineBatch(ctx, ld.Program)
	if err != nil {
		ld.Program.Delete()
		return nil, err
	}

	return ld, nil
}
