package shaders

import (
	"bytes"
	"fmt"
	"os"

	"github.com/bloeys/nrend/gpu"
	"github.com/bloeys/nrend/logging"
)

func compileShader(ctx *gpu.Context, programName string, stage gpu.ShaderStage, src string) (uint32, error) {

	shaderId := ctx.Dev.CreateShader(stage)
	if shaderId == 0 {
		return 0, fmt.Errorf("failed to create %s shader of program '%s': %w", stage.String(), programName, gpu.ErrObjectCreation)
	}

	ctx.Dev.ShaderSource(shaderId, src)
	if ok, infoLog := ctx.Dev.CompileShader(shaderId); !ok {
		ctx.Dev.DeleteShader(shaderId)
		return 0, &ShaderCompileError{Name: programName, Stage: stage, Log: infoLog}
	}

	return shaderId, nil
}

func linkProgram(ctx *gpu.Context, name string, layout AttribLayout, shaderIds ...uint32) (*ShaderProgram, error) {

	progId := ctx.Dev.CreateProgram()
	if progId == 0 {
		return nil, fmt.Errorf("failed to create shader program '%s': %w", name, gpu.ErrObjectCreation)
	}

	for _, id := range shaderIds {
		ctx.Dev.AttachShader(progId, id)
	}

	for i := 0; i < len(layout); i++ {
		ctx.Dev.BindAttribLocation(progId, uint32(i), layout[i].Name)
	}

	if ok, infoLog := ctx.Dev.LinkProgram(progId); !ok {
		ctx.Dev.DeleteProgram(progId)
		return nil, &ShaderLinkError{Name: name, Log: infoLog}
	}

	// Unused attributes get optimized out and report -1, which is fine
	for i := 0; i < len(layout); i++ {

		loc := ctx.Dev.GetAttribLocation(progId, layout[i].Name)
		if loc != -1 && loc != int32(i) {
			logging.WarnLog.Printf("Attribute '%s' of shader program '%s' was expected at location %d but is at %d\n", layout[i].Name, name, i, loc)
		}
	}

	return &ShaderProgram{
		Id:       progId,
		Name:     name,
		Layout:   layout,
		uniforms: make(map[string]Uniform),
		ctx:      ctx,
	}, nil
}

// SplitCombinedSource splits a combined shader source into its stages.
//
// A combined source has each stage after a '//shader:vertex' or '//shader:fragment' line.
func SplitCombinedSource(shaderSrc []byte) (vertexSrc, fragmentSrc string, err error) {

	shaderSources := bytes.Split(shaderSrc, []byte("//shader:"))
	if len(shaderSources) < 2 {
		return "", "", fmt.Errorf("%w: the minimum shader types to have are '//shader:vertex' and '//shader:fragment'", ErrBadCombinedSource)
	}

	for i := 0; i < len(shaderSources); i++ {

		src := shaderSources[i]

		//This can happen when the shader type is at the start of the file
		if len(bytes.TrimSpace(src)) == 0 {
			continue
		}

		if bytes.HasPrefix(src, []byte("vertex")) {
			vertexSrc = string(bytes.TrimLeft(src[6:], " \t\r\n"))
		} else if bytes.HasPrefix(src, []byte("fragment")) {
			fragmentSrc = string(bytes.TrimLeft(src[8:], " \t\r\n"))
		} else {
			return "", "", fmt.Errorf("%w: unknown shader type. Must be '//shader:vertex' or '//shader:fragment'", ErrBadCombinedSource)
		}
	}

	if vertexSrc == "" {
		return "", "", fmt.Errorf("%w: no valid vertex shader found. Please put '//shader:vertex' before your vertex shader", ErrBadCombinedSource)
	}

	if fragmentSrc == "" {
		return "", "", fmt.Errorf("%w: no valid fragment shader found. Please put '//shader:fragment' before your fragment shader", ErrBadCombinedSource)
	}

	return vertexSrc, fragmentSrc, nil
}

func LoadAndCompileCombinedShaderSrc(ctx *gpu.Context, name string, shaderSrc []byte, layout AttribLayout) (*ShaderProgram, error) {

	vertexSrc, fragmentSrc, err := SplitCombinedSource(shaderSrc)
	if err != nil {
		return nil, fmt.Errorf("failed to read combined shader '%s': %w", name, err)
	}

	return NewShaderProgram(ctx, name, vertexSrc, fragmentSrc, layout)
}

func LoadAndCompileCombinedShader(ctx *gpu.Context, shaderPath string, layout AttribLayout) (*ShaderProgram, error) {

	combinedSource, err := os.ReadFile(shaderPath)
	if err != nil {
		logging.ErrLog.Println("Failed to read shader. Err: ", err)
		return nil, err
	}

	return LoadAndCompileCombinedShaderSrc(ctx, shaderPath, combinedSource, layout)
}

// SetupUniformBlock associates the uniform block named blockName in the program with the binding index.
// A block that the program doesn't declare (or doesn't use) is an error
func SetupUniformBlock(program *ShaderProgram, blockName string, binding uint32) error {

	blockIndex := program.ctx.Dev.GetUniformBlockIndex(program.Id, blockName)
	if blockIndex == gpu.InvalidIndex {
		return fmt.Errorf("block '%s' in program '%s': %w", blockName, program.Name, ErrUniformBlockNotFound)
	}

	program.ctx.Dev.UniformBlockBinding(program.Id, blockIndex, binding)
	return nil
}
