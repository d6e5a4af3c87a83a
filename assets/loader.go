package assets

import (
	"fmt"
	"image/color"

	"github.com/bloeys/nrend/gpu"
	"github.com/bloeys/nrend/logging"
)

var (
	ColorWhite   = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	ColorBlack   = color.NRGBA{A: 255}
	ColorMissing = color.NRGBA{R: 255, B: 255, A: 255}
)

// Loader loads textures without failing. Anything that can't be loaded is logged
// and replaced with the Missing texture (or cubemap)
type Loader struct {
	ctx            *gpu.Context
	Missing        Texture
	MissingCubemap Cubemap

	colors map[color.NRGBA]Texture
}

// FromColor returns a 1x1 texture of the color. Textures are cached per color
func (l *Loader) FromColor(col color.NRGBA) Texture {

	if tex, ok := l.colors[col]; ok {
		return tex
	}

	tex, err := LoadTextureFromColor(l.ctx, col)
	if err != nil {
		logging.ErrLog.Printf("Failed to create color texture, using fallback. Err: %v\n", err)
		return l.Missing
	}

	l.colors[col] = tex
	return tex
}

func (l *Loader) FromPayload(name string, payload []byte, opts TextureLoadOptions) Texture {

	tex, err := LoadTextureFromPayload(l.ctx, name, payload, opts)
	if err != nil {
		logging.ErrLog.Printf("Failed to load texture '%s', using fallback. Err: %v\n", name, err)
		return l.Missing
	}

	return tex
}

func (l *Loader) FromFile(path string, opts TextureLoadOptions) Texture {

	tex, err := LoadTextureFromFile(l.ctx, path, opts)
	if err != nil {
		logging.ErrLog.Printf("Failed to load texture '%s', using fallback. Err: %v\n", path, err)
		return l.Missing
	}

	return tex
}

func (l *Loader) CubemapFromColor(col color.NRGBA) Cubemap {

	cm, err := LoadCubemapFromColor(l.ctx, col)
	if err != nil {
		logging.ErrLog.Printf("Failed to create color cubemap, using fallback. Err: %v\n", err)
		return l.MissingCubemap
	}

	return cm
}

func (l *Loader) CubemapFromPayloads(name string, payloads [6][]byte, opts TextureLoadOptions) Cubemap {

	cm, err := LoadCubemapFromPayloads(l.ctx, name, payloads, opts)
	if err != nil {
		logging.ErrLog.Printf("Failed to load cubemap '%s', using fallback. Err: %v\n", name, err)
		return l.MissingCubemap
	}

	return cm
}

func (l *Loader) CubemapFromCross(name string, payload []byte, opts TextureLoadOptions) Cubemap {

	cm, err := LoadCubemapFromCross(l.ctx, name, payload, opts)
	if err != nil {
		logging.ErrLog.Printf("Failed to load cubemap '%s', using fallback. Err: %v\n", name, err)
		return l.MissingCubemap
	}

	return cm
}

// Delete deletes the fallback and cached color textures. Textures returned by
// the other methods are owned by the caller
func (l *Loader) Delete() {

	for col, tex := range l.colors {
		tex.Delete(l.ctx)
		delete(l.colors, col)
	}

	l.Missing.Delete(l.ctx)
	l.MissingCubemap.Delete(l.ctx)
}

// NewLoader creates the fallback textures. Failing to create those is returned as an error
// since there would be nothing left to fall back to
func NewLoader(ctx *gpu.Context) (*Loader, error) {

	missing, err := LoadTextureFromColor(ctx, ColorMissing)
	if err != nil {
		return nil, fmt.Errorf("failed to create fallback texture: %w", err)
	}

	missingCubemap, err := LoadCubemapFromColor(ctx, ColorMissing)
	if err != nil {
		missing.Delete(ctx)
		return nil, fmt.Errorf("failed to create fallback cubemap: %w", err)
	}

	return &Loader{
		ctx:            ctx,
		Missing:        missing,
		MissingCubemap: missingCubemap,
		colors:         make(map[color.NRGBA]Texture),
	}, nil
}
