package shaders

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bloeys/gglm/gglm"
	"github.com/bloeys/nrend/buffers"
	"github.com/bloeys/nrend/gpu"
	"github.com/bloeys/nrend/gpu/gputest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCombined = `//shader:vertex
#version 410

in vec3 a_position;
in vec2 a_tex_coord;

uniform mat4 u_model;

out vec2 v_tex_coord;

void main()
{
    v_tex_coord = a_tex_coord;
    gl_Position = u_view * u_model * vec4(a_position, 1.0);
}

//shader:fragment
#version 410

in vec2 v_tex_coord;

uniform sampler2D u_diffuse;
uniform sampler2D u_specular;
uniform float u_strength;

out vec4 frag_color;

void main()
{
    frag_color = (texture(u_diffuse, v_tex_coord) + texture(u_specular, v_tex_coord)) * u_strength;
}
`

const cameraDecl = `layout (std140) uniform Camera {
    mat4 u_view;
};`

var testLayout = AttribLayout{
	{Name: "a_position", Type: buffers.DataTypeVec3},
	{Name: "a_tex_coord", Type: buffers.DataTypeVec2},
}

func newTestCtx() (*gputest.Device, *gpu.Context) {
	dev := gputest.New()
	return dev, gpu.NewContext(dev)
}

func newTestProgram(t *testing.T, ctx *gpu.Context) *ShaderProgram {

	t.Helper()

	src, err := sourceFromCombined("test", []byte(testCombined))
	require.NoError(t, err)
	src = src.InjectAfterVersion(cameraDecl)

	sp, err := NewShaderProgram(ctx, src.Name, src.Vertex, src.Fragment, testLayout)
	require.NoError(t, err)
	return sp
}

func TestNewShaderProgram(t *testing.T) {

	dev, ctx := newTestCtx()
	sp := newTestProgram(t, ctx)

	assert.NotZero(t, sp.Id)
	assert.Equal(t, "test", sp.Name)
	assert.Empty(t, dev.Shaders, "stages are deleted once linked")
	assert.ElementsMatch(t, []string{"u_model", "u_diffuse", "u_specular", "u_strength"}, sp.ActiveUniforms())

	assert.Equal(t, int32(0), dev.GetAttribLocation(sp.Id, "a_position"))
	assert.Equal(t, int32(1), dev.GetAttribLocation(sp.Id, "a_tex_coord"))

	sp.Delete()
	assert.Zero(t, sp.Id)
	assert.Empty(t, dev.Programs)

	dev.ResetRecording()
	sp.Delete()
	assert.Empty(t, dev.Commands, "deleting twice does nothing")
}

func TestShaderCompileError(t *testing.T) {

	dev, ctx := newTestCtx()

	badFrag := "#version 410\nout vec4 frag_color;\nvoid main() {\n"
	_, err := NewShaderProgram(ctx, "broken", "#version 410\nvoid main() {}\n", badFrag, testLayout)
	require.Error(t, err)

	var compileErr *ShaderCompileError
	require.True(t, errors.As(err, &compileErr))
	assert.Equal(t, "broken", compileErr.Name)
	assert.Equal(t, gpu.ShaderStage_Fragment, compileErr.Stage)
	assert.Contains(t, compileErr.Log, "unexpected end of file")

	assert.Empty(t, dev.Shaders)
	assert.Empty(t, dev.Programs)
}

func TestShaderLinkError(t *testing.T) {

	dev, ctx := newTestCtx()

	vert := "#version 410\nin vec3 a_position;\nvoid main() { gl_Position = vec4(a_position, 1.0); }\n"
	frag := "#version 410\nin vec3 v_normal;\nout vec4 frag_color;\nvoid main() { frag_color = vec4(v_normal, 1.0); }\n"
	_, err := NewShaderProgram(ctx, "unlinked", vert, frag, testLayout)
	require.Error(t, err)

	var linkErr *ShaderLinkError
	require.True(t, errors.As(err, &linkErr))
	assert.Contains(t, linkErr.Log, "v_normal")
	assert.Contains(t, err.Error(), "unlinked")

	assert.Empty(t, dev.Shaders)
	assert.Empty(t, dev.Programs)
}

func TestShaderObjectCreationFailure(t *testing.T) {

	dev, ctx := newTestCtx()
	dev.FailObjectCreation = true

	_, err := NewShaderProgram(ctx, "test", "#version 410\nvoid main() {}\n", "#version 410\nvoid main() {}\n", testLayout)
	assert.ErrorIs(t, err, gpu.ErrObjectCreation)
}

func TestUniforms(t *testing.T) {

	dev, ctx := newTestCtx()
	sp := newTestProgram(t, ctx)

	strength := sp.GetUniform("u_strength")
	assert.True(t, strength.IsValid())
	assert.Equal(t, strength, sp.GetUniform("u_strength"))

	missing := sp.GetUniform("u_not_there")
	assert.False(t, missing.IsValid())
	assert.False(t, sp.HasUniform("u_not_there"))

	sp.Use()
	dev.ResetRecording()

	sp.SetFloat(missing, 1)
	assert.Empty(t, dev.Commands, "writing a missing uniform does nothing")

	sp.SetFloat(strength, 0.5)
	model := gglm.NewMat4Diag(2)
	sp.SetMat4(sp.GetUniform("u_model"), &model)

	v, ok := dev.UniformValue(sp.Id, "u_strength")
	require.True(t, ok)
	assert.Equal(t, float32(0.5), v)

	v, ok = dev.UniformValue(sp.Id, "u_model")
	require.True(t, ok)
	assert.Equal(t, model.Data, v)
}

func TestSetUniformOnUnboundProgramPanics(t *testing.T) {

	_, ctx := newTestCtx()
	sp := newTestProgram(t, ctx)
	strength := sp.GetUniform("u_strength")

	sp.UnUse()
	assert.Panics(t, func() { sp.SetFloat(strength, 1) })
}

func TestSetupTextures(t *testing.T) {

	dev, ctx := newTestCtx()
	sp := newTestProgram(t, ctx)

	diffuse := sp.GetUniform("u_diffuse")
	specular := sp.GetUniform("u_specular")
	missing := sp.GetUniform("u_emission")
	stale := specular
	sp.SetupTextures(&diffuse, &missing, &specular)

	assert.Equal(t, int32(0), diffuse.TextureUnit)
	assert.Equal(t, int32(1), specular.TextureUnit)
	assert.Equal(t, int32(-1), missing.TextureUnit)

	v, _ := dev.UniformValue(sp.Id, "u_specular")
	assert.Equal(t, int32(1), v)

	// A copy taken before the units were assigned still finds its unit
	dev.ResetRecording()
	assert.Equal(t, int32(-1), stale.TextureUnit)
	sp.SetTexture(stale, gpu.TextureTarget_2D, 42)
	assert.Equal(t, []gputest.Command{
		{Name: "ActiveTexture", Args: []any{uint32(1)}},
		{Name: "BindTexture", Args: []any{gpu.TextureTarget_2D, uint32(42)}},
	}, dev.Commands)
}

func TestSetupUniformBlock(t *testing.T) {

	dev, ctx := newTestCtx()
	sp := newTestProgram(t, ctx)

	require.NoError(t, SetupUniformBlock(sp, "Camera", 3))
	assert.Equal(t, map[uint32]uint32{0: 3}, dev.Programs[sp.Id].BlockBindings)

	err := SetupUniformBlock(sp, "Lights", 1)
	assert.ErrorIs(t, err, ErrUniformBlockNotFound)
}

func TestMove(t *testing.T) {

	dev, ctx := newTestCtx()
	sp := newTestProgram(t, ctx)
	id := sp.Id

	moved := sp.Move()
	assert.Equal(t, id, moved.Id)
	assert.Zero(t, sp.Id)
	assert.Equal(t, "test", sp.Name)

	sp.Delete()
	assert.Contains(t, dev.Programs, id, "deleting the moved-from program leaves the GPU program alone")
}

func TestSplitCombinedSource(t *testing.T) {

	tests := []struct {
		name     string
		src      string
		wantVert string
		wantFrag string
		wantErr  bool
	}{
		{
			name:     "both stages",
			src:      "//shader:vertex\nV\n//shader:fragment\nF\n",
			wantVert: "V\n",
			wantFrag: "F\n",
		},
		{
			name:     "fragment first",
			src:      "//shader:fragment\nF\n//shader:vertex\nV\n",
			wantVert: "V\n",
			wantFrag: "F\n",
		},
		{
			name:    "no markers",
			src:     "void main() {}",
			wantErr: true,
		},
		{
			name:    "missing fragment",
			src:     "//shader:vertex\nV\n",
			wantErr: true,
		},
		{
			name:    "unknown stage",
			src:     "//shader:vertex\nV\n//shader:geometry\nG\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {

			vert, frag, err := SplitCombinedSource([]byte(tt.src))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBadCombinedSource)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantVert, vert)
			assert.Equal(t, tt.wantFrag, frag)
		})
	}
}

func TestInjectAfterVersion(t *testing.T) {

	src := Source{
		Vertex:   "#version 410\nvoid main() {}\n",
		Fragment: "void main() {}\n",
	}

	injected := src.InjectAfterVersion("uniform float u_x;")
	assert.Equal(t, "#version 410\nuniform float u_x;\nvoid main() {}\n", injected.Vertex)
	assert.Equal(t, "uniform float u_x;\nvoid main() {}\n", injected.Fragment)
	assert.Equal(t, "#version 410\nvoid main() {}\n", src.Vertex, "the input source is unchanged")
}

func TestEmbeddedSources(t *testing.T) {

	names := []string{"default", "unlit", "single_color", "skybox", "line", "postproc_passthrough", "postproc_invert", "postproc_grayscale", "postproc_damage", "postproc_blur_vertical", "postproc_blur_horizontal"}
	for _, name := range names {
		src, err := EmbeddedSources{}.Load(name)
		require.NoError(t, err, name)
		assert.Contains(t, src.Vertex, "#version", name)
		assert.Contains(t, src.Fragment, "#version", name)
	}

	_, err := EmbeddedSources{}.Load("does_not_exist")
	assert.Error(t, err)
}

func TestDirSourcesFallsBackToEmbedded(t *testing.T) {

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "custom.glsl"), []byte(testCombined), 0644))

	ds := &DirSources{Dir: dir}

	src, err := ds.Load("custom")
	require.NoError(t, err)
	assert.Contains(t, src.Fragment, "u_strength")

	_, err = ds.Load("unlit")
	assert.NoError(t, err)

	name, ok := ds.NameFromPath(filepath.Join(dir, "custom.glsl"))
	assert.True(t, ok)
	assert.Equal(t, "custom", name)

	_, ok = ds.NameFromPath(filepath.Join(dir, "custom.glsl.swp"))
	assert.False(t, ok)
}

func TestReloader(t *testing.T) {

	dir := t.TempDir()
	path := filepath.Join(dir, "custom.glsl")
	require.NoError(t, os.WriteFile(path, []byte(testCombined), 0644))

	dev, ctx := newTestCtx()
	sources := &DirSources{Dir: dir}

	r, err := NewReloader(sources)
	require.NoError(t, err)
	defer r.Close()

	build := func(src Source) (*ShaderProgram, error) {
		src = src.InjectAfterVersion(cameraDecl)
		return NewShaderProgram(ctx, src.Name, src.Vertex, src.Fragment, testLayout)
	}

	src, err := sources.Load("custom")
	require.NoError(t, err)
	sp, err := build(src)
	require.NoError(t, err)

	var strength Uniform
	reloads := 0
	r.Watch("custom", sp, build, func(sp *ShaderProgram) {
		reloads++
		strength = sp.GetUniform("u_strength")
	})

	assert.Zero(t, r.Poll(), "nothing changed yet")

	oldId := sp.Id
	r.MarkChanged("custom")
	r.MarkChanged("not_watched")
	assert.Equal(t, 1, r.Poll())
	assert.Equal(t, 1, reloads)
	assert.NotEqual(t, oldId, sp.Id)
	assert.NotContains(t, dev.Programs, oldId, "the old program is deleted")
	assert.Equal(t, sp.Id, strength.Program)

	// A broken shader keeps the working program
	workingId := sp.Id
	require.NoError(t, os.WriteFile(path, []byte("//shader:vertex\n#version 410\nvoid main() {\n//shader:fragment\n#version 410\nvoid main() {}\n"), 0644))
	r.MarkChanged("custom")
	assert.Zero(t, r.Poll())
	assert.Equal(t, workingId, sp.Id)
	assert.Contains(t, dev.Programs, workingId)
	assert.Equal(t, 1, reloads)
}

func TestLoadAndCompileCombinedShader(t *testing.T) {

	dev, ctx := newTestCtx()

	path := filepath.Join(t.TempDir(), "combined.glsl")
	require.NoError(t, os.WriteFile(path, []byte(testCombined), 0644))

	sp, err := LoadAndCompileCombinedShader(ctx, path, testLayout)
	require.NoError(t, err)
	assert.Equal(t, path, sp.Name)
	assert.True(t, sp.HasUniform("u_strength"))

	sp.Delete()
	assert.Empty(t, dev.Programs)

	_, err = LoadAndCompileCombinedShader(ctx, filepath.Join(t.TempDir(), "missing.glsl"), testLayout)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadAndCompileCombinedShaderSrc(ctx, "plain", []byte("#version 410\nvoid main() {}\n"), testLayout)
	assert.ErrorIs(t, err, ErrBadCombinedSource)
	assert.ErrorContains(t, err, "plain")
	assert.Empty(t, dev.Programs)
}

func TestMatrixAndBoolUniforms(t *testing.T) {

	dev, ctx := newTestCtx()

	vert := `#version 410
in vec3 a_position;
uniform mat3 u_normal_mat;
void main() { gl_Position = vec4(u_normal_mat * a_position, 1.0); }
`
	frag := `#version 410
uniform bool u_flip;
out vec4 frag_color;
void main() { frag_color = u_flip ? vec4(1.0) : vec4(0.0); }
`
	sp, err := NewShaderProgram(ctx, "mat3", vert, frag, testLayout[:1])
	require.NoError(t, err)

	sp.Use()
	normalMat := gglm.NewMat3Diag(3)
	sp.SetMat3(sp.GetUniform("u_normal_mat"), &normalMat)
	sp.SetBool(sp.GetUniform("u_flip"), true)

	v, ok := dev.UniformValue(sp.Id, "u_normal_mat")
	require.True(t, ok)
	assert.Equal(t, normalMat.Data, v)

	v, ok = dev.UniformValue(sp.Id, "u_flip")
	require.True(t, ok)
	assert.Equal(t, int32(1), v)

	sp.SetBool(sp.GetUniform("u_flip"), false)
	v, _ = dev.UniformValue(sp.Id, "u_flip")
	assert.Equal(t, int32(0), v)
}

func TestSetUniformOfOtherProgramPanics(t *testing.T) {

	dev, ctx := newTestCtx()
	sp1 := newTestProgram(t, ctx)
	sp2 := newTestProgram(t, ctx)
	require.NotEqual(t, sp1.Id, sp2.Id)

	strength := sp1.GetUniform("u_strength")
	require.True(t, strength.IsValid())

	sp2.Use()
	dev.ResetRecording()
	assert.Panics(t, func() { sp2.SetFloat(strength, 1) })
	assert.Empty(t, dev.UniformWrites)
}
