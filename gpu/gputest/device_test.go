package gputest

import (
	"testing"
	"unsafe"

	"github.com/bloeys/nrend/gpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVert = `#version 410

layout (std140) uniform Camera {
    mat4 u_view;
};

in vec3 a_position;
in vec2 a_tex_coord;

uniform mat4 u_model;
uniform float u_unused;

out vec2 v_tex_coord;

void main()
{
    v_tex_coord = a_tex_coord;
    gl_Position = u_view * u_model * vec4(a_position, 1.0);
}
`

const testFrag = `#version 410

#define COUNT 3

in vec2 v_tex_coord;

uniform sampler2D u_tex;
uniform vec3 u_colors[COUNT];

out vec4 frag_color;

void main()
{
    frag_color = texture(u_tex, v_tex_coord) * vec4(u_colors[0] + u_colors[2], 1.0);
}
`

func buildProgram(t *testing.T, d *Device, vert, frag string) (uint32, bool, string) {

	t.Helper()

	vs := d.CreateShader(gpu.ShaderStage_Vertex)
	d.ShaderSource(vs, vert)
	ok, log := d.CompileShader(vs)
	require.True(t, ok, log)

	fs := d.CreateShader(gpu.ShaderStage_Fragment)
	d.ShaderSource(fs, frag)
	ok, log = d.CompileShader(fs)
	require.True(t, ok, log)

	p := d.CreateProgram()
	d.AttachShader(p, vs)
	d.AttachShader(p, fs)
	ok, log = d.LinkProgram(p)
	return p, ok, log
}

func TestCompileErrors(t *testing.T) {

	tests := []struct {
		name    string
		src     string
		wantLog string
	}{
		{
			name:    "missing version",
			src:     "void main() {}",
			wantLog: "#version required",
		},
		{
			name:    "unbalanced braces",
			src:     "#version 410\nvoid main() {\n",
			wantLog: "unexpected end of file",
		},
		{
			name:    "extra closing brace",
			src:     "#version 410\nvoid main() {}\n}\n",
			wantLog: "unexpected '}'",
		},
		{
			name:    "no main",
			src:     "#version 410\nvoid notMain() {}\n",
			wantLog: "'main'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {

			d := New()
			s := d.CreateShader(gpu.ShaderStage_Fragment)
			d.ShaderSource(s, tt.src)

			ok, log := d.CompileShader(s)
			assert.False(t, ok)
			assert.Contains(t, log, tt.wantLog)
		})
	}
}

func TestLinkDiscoversUniformsAndBlocks(t *testing.T) {

	d := New()
	p, ok, log := buildProgram(t, d, testVert, testFrag)
	require.True(t, ok, log)

	prog := d.Programs[p]
	assert.Equal(t, []string{"u_model", "u_tex", "u_colors"}, d.ActiveUniforms(p))
	assert.Equal(t, []string{"Camera"}, prog.Blocks)

	// Unreferenced uniforms are optimized out
	assert.Equal(t, int32(-1), d.GetUniformLocation(p, "u_unused"))

	// Uniform block members are not plain uniforms
	assert.Equal(t, int32(-1), d.GetUniformLocation(p, "u_view"))
	assert.Equal(t, uint32(0), d.GetUniformBlockIndex(p, "Camera"))
	assert.Equal(t, gpu.InvalidIndex, d.GetUniformBlockIndex(p, "Lights"))

	first := d.GetUniformLocation(p, "u_colors[0]")
	assert.NotEqual(t, int32(-1), first)
	assert.Equal(t, first, d.GetUniformLocation(p, "u_colors"))
	assert.Equal(t, first+2, d.GetUniformLocation(p, "u_colors[2]"))
	assert.Equal(t, int32(-1), d.GetUniformLocation(p, "u_colors[3]"))

	assert.Equal(t, int32(0), d.GetAttribLocation(p, "a_position"))
	assert.Equal(t, int32(1), d.GetAttribLocation(p, "a_tex_coord"))
}

func TestLinkErrors(t *testing.T) {

	d := New()

	badFrag := `#version 410
in vec3 v_normal;
out vec4 frag_color;
void main() { frag_color = vec4(v_normal, 1.0); }
`
	_, ok, log := buildProgram(t, d, testVert, badFrag)
	assert.False(t, ok)
	assert.Contains(t, log, "v_normal")

	mismatchFrag := `#version 410
in vec3 v_tex_coord;
out vec4 frag_color;
void main() { frag_color = vec4(v_tex_coord, 1.0); }
`
	_, ok, log = buildProgram(t, d, testVert, mismatchFrag)
	assert.False(t, ok)
	assert.Contains(t, log, "Type mismatch")
}

func TestUniformWrites(t *testing.T) {

	d := New()
	p, ok, log := buildProgram(t, d, testVert, testFrag)
	require.True(t, ok, log)

	d.UseProgram(p)
	d.Uniform3f(d.GetUniformLocation(p, "u_colors[1]"), 1, 2, 3)
	d.Uniform1i(-1, 5)
	require.NoError(t, d.Error())

	v, ok := d.UniformValue(p, "u_colors[1]")
	require.True(t, ok)
	assert.Equal(t, [3]float32{1, 2, 3}, v)
	assert.Equal(t, []UniformWrite{{Program: p, Name: "u_colors[1]", Value: [3]float32{1, 2, 3}}}, d.UniformWritesFor(p))

	d.UseProgram(0)
	d.Uniform1f(0, 1)
	assert.Error(t, d.Error())
	assert.NoError(t, d.Error(), "errors are cleared once read")
}

func TestBuffers(t *testing.T) {

	d := New()
	id := d.GenBuffer()
	d.BindBuffer(gpu.BufferTarget_Array, id)

	data := []float32{1, 2, 3, 4}
	d.BufferData(gpu.BufferTarget_Array, 16, unsafe.Pointer(&data[0]), gpu.BufUsage_Dynamic_Draw)
	require.NoError(t, d.Error())
	assert.Len(t, d.Buffers[id].Data, 16)

	d.BufferSubData(gpu.BufferTarget_Array, 12, 8, unsafe.Pointer(&data[0]))
	assert.Error(t, d.Error(), "writing past the end of the buffer")

	d.OutOfMemory = true
	d.BufferData(gpu.BufferTarget_Array, 32, nil, gpu.BufUsage_Dynamic_Draw)
	assert.ErrorIs(t, d.Error(), gpu.ErrOutOfMemory)
	assert.Len(t, d.Buffers[id].Data, 16, "failed allocations keep the old storage")
}

func TestFailObjectCreation(t *testing.T) {

	d := New()
	d.FailObjectCreation = true

	assert.Zero(t, d.GenBuffer())
	assert.Zero(t, d.CreateProgram())
	assert.Zero(t, d.GenTexture())
	assert.Empty(t, d.Buffers)
}

func TestDrawRecordsState(t *testing.T) {

	d := New()
	d.UseProgram(3)
	d.BindVertexArray(4)
	d.BindFramebuffer(5)
	d.ActiveTexture(1)
	d.BindTexture(gpu.TextureTarget_2D, 6)
	d.DrawArrays(gpu.Primitive_Lines, 0, 8)

	require.Len(t, d.Draws, 1)
	assert.Equal(t, Draw{
		Mode:        gpu.Primitive_Lines,
		Count:       8,
		Program:     3,
		Vao:         4,
		Framebuffer: 5,
		Textures:    map[uint32]uint32{1: 6},
	}, d.Draws[0])

	assert.Equal(t, 1, d.CountCommands("DrawArrays"))
	d.ResetRecording()
	assert.Empty(t, d.Commands)
	assert.Empty(t, d.Draws)
}
