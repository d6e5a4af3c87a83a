package shaders

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bloeys/nrend/gpu"
)

var (
	ErrUniformBlockNotFound = errors.New("uniform block not found in shader program")
	ErrBadCombinedSource    = errors.New("bad combined shader source")
)

// ShaderCompileError is returned when a shader stage fails to compile. Log is the driver's info log
type ShaderCompileError struct {
	Name  string
	Stage gpu.ShaderStage
	Log   string
}

func (e *ShaderCompileError) Error() string {
	return fmt.Sprintf("failed to compile %s shader of program '%s': %s", e.Stage.String(), e.Name, strings.TrimSpace(e.Log))
}

// ShaderLinkError is returned when the stages compiled but failed to link. Log is the driver's info log
type ShaderLinkError struct {
	Name string
	Log  string
}

func (e *ShaderLinkError) Error() string {
	return fmt.Sprintf("failed to link shader program '%s': %s", e.Name, strings.TrimSpace(e.Log))
}
