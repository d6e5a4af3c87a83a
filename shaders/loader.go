package shaders

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const SourceFileExt = ".glsl"

//go:embed glsl/*.glsl
var embeddedGlsl embed.FS

// Source is a loaded shader, split into its stages
type Source struct {
	Name     string
	Vertex   string
	Fragment string
}

// InjectAfterVersion inserts decl right after the '#version' line of both stages.
// Used to add shared declarations (like uniform blocks) to shaders that reference them
func (s Source) InjectAfterVersion(decl string) Source {
	s.Vertex = injectAfterVersion(s.Vertex, decl)
	s.Fragment = injectAfterVersion(s.Fragment, decl)
	return s
}

func injectAfterVersion(src, decl string) string {

	versionStart := strings.Index(src, "#version")
	if versionStart == -1 {
		return decl + "\n" + src
	}

	lineEnd := strings.IndexByte(src[versionStart:], '\n')
	if lineEnd == -1 {
		return src + "\n" + decl
	}

	insertAt := versionStart + lineEnd + 1
	return src[:insertAt] + decl + "\n" + src[insertAt:]
}

// SourceLoader loads shaders by name (e.g. 'default' or 'postproc_invert')
type SourceLoader interface {
	Load(name string) (Source, error)
}

func sourceFromCombined(name string, combined []byte) (Source, error) {

	vert, frag, err := SplitCombinedSource(combined)
	if err != nil {
		return Source{}, fmt.Errorf("failed to read combined shader '%s': %w", name, err)
	}

	return Source{Name: name, Vertex: vert, Fragment: frag}, nil
}

var _ SourceLoader = EmbeddedSources{}

// EmbeddedSources loads the built-in shaders compiled into the binary
type EmbeddedSources struct{}

func (EmbeddedSources) Load(name string) (Source, error) {

	combined, err := embeddedGlsl.ReadFile("glsl/" + name + SourceFileExt)
	if err != nil {
		return Source{}, fmt.Errorf("failed to load embedded shader '%s': %w", name, err)
	}

	return sourceFromCombined(name, combined)
}

var _ SourceLoader = &DirSources{}

// DirSources loads shaders from '<Dir>/<name>.glsl'. Falls back to the embedded shader of the
// same name when the file doesn't exist, so a directory only needs the shaders being worked on
type DirSources struct {
	Dir string
}

func (d *DirSources) Path(name string) string {
	return filepath.Join(d.Dir, name+SourceFileExt)
}

// NameFromPath returns the shader name for a file in the directory, or false if its not a shader file
func (d *DirSources) NameFromPath(path string) (string, bool) {

	base := filepath.Base(path)
	if filepath.Ext(base) != SourceFileExt {
		return "", false
	}

	return strings.TrimSuffix(base, SourceFileExt), true
}

func (d *DirSources) Load(name string) (Source, error) {

	combined, err := os.ReadFile(d.Path(name))
	if os.IsNotExist(err) {
		return EmbeddedSources{}.Load(name)
	}

	if err != nil {
		return Source{}, fmt.Errorf("failed to read shader '%s': %w", name, err)
	}

	return sourceFromCombined(name, combined)
}
