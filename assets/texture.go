// Package assets uploads textures and cubemaps.
//
// The package level Load* functions return errors. Loader wraps them for per frame/scene use,
// where a failed load is logged and replaced with a fallback texture instead of stopping the program.
package assets

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"os"
	"runtime"
	"unsafe"

	"github.com/bloeys/nrend/gpu"
	"github.com/mandykoh/prism"

	// Decoders registered with image.Decode
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

type Texture struct {
	Id     uint32
	Name   string
	Width  int32
	Height int32
	Format gpu.TextureFormat
}

type TextureLoadOptions struct {
	// SRGB marks the pixel data as sRGB encoded (albedo/diffuse maps). Leave false for data textures
	SRGB    bool
	Mipmaps bool
	// FlipY flips the image so the first row is the bottom one, which is what texture coordinates expect
	FlipY  bool
	Filter gpu.TextureFilter
	Wrap   gpu.TextureWrap
}

func (o *TextureLoadOptions) format() gpu.TextureFormat {
	if o.SRGB {
		return gpu.TextureFormat_SRGBA8
	}
	return gpu.TextureFormat_RGBA8
}

func (o *TextureLoadOptions) filter() gpu.TextureFilter {

	if o.Mipmaps {
		return gpu.TextureFilter_Mipmap
	}

	if o.Filter == gpu.TextureFilter_Unknown {
		return gpu.TextureFilter_Linear
	}

	return o.Filter
}

func (o *TextureLoadOptions) wrap() gpu.TextureWrap {

	if o.Wrap == gpu.TextureWrap_Unknown {
		return gpu.TextureWrap_Repeat
	}

	return o.Wrap
}

func (t *Texture) Delete(ctx *gpu.Context) {

	if t.Id == 0 {
		return
	}

	ctx.Dev.DeleteTexture(t.Id)
	t.Id = 0
}

// toNRGBA converts any decoded image into tightly packed 8 bit NRGBA pixels
func toNRGBA(img image.Image) *image.NRGBA {

	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		nrgba = prism.ConvertImageToNRGBA(img, runtime.NumCPU())
	}

	b := nrgba.Bounds()
	if nrgba.Stride == b.Dx()*4 && b.Min == (image.Point{}) {
		return nrgba
	}

	tight := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		srcStart := nrgba.PixOffset(b.Min.X, b.Min.Y+y)
		copy(tight.Pix[y*tight.Stride:(y+1)*tight.Stride], nrgba.Pix[srcStart:srcStart+b.Dx()*4])
	}

	return tight
}

func flipY(img *image.NRGBA) []byte {

	h := img.Bounds().Dy()
	flipped := make([]byte, len(img.Pix))
	for y := 0; y < h; y++ {
		copy(flipped[y*img.Stride:(y+1)*img.Stride], img.Pix[(h-1-y)*img.Stride:(h-y)*img.Stride])
	}

	return flipped
}

func uploadPixels(ctx *gpu.Context, target gpu.TextureTarget, img *image.NRGBA, opts *TextureLoadOptions) {

	pix := img.Pix
	if opts.FlipY {
		pix = flipY(img)
	}

	b := img.Bounds()
	var pixPtr unsafe.Pointer
	if len(pix) > 0 {
		pixPtr = unsafe.Pointer(&pix[0])
	}

	ctx.Dev.TexImage2D(target, int32(b.Dx()), int32(b.Dy()), opts.format(), pixPtr)
}

// LoadTextureFromImage uploads a decoded image as a 2D texture
func LoadTextureFromImage(ctx *gpu.Context, name string, img image.Image, opts TextureLoadOptions) (Texture, error) {

	nrgba := toNRGBA(img)
	tex := Texture{
		Name:   name,
		Width:  int32(nrgba.Bounds().Dx()),
		Height: int32(nrgba.Bounds().Dy()),
		Format: opts.format(),
	}

	tex.Id = ctx.Dev.GenTexture()
	if tex.Id == 0 {
		return Texture{}, fmt.Errorf("failed to create texture '%s': %w", name, gpu.ErrObjectCreation)
	}

	ctx.Dev.BindTexture(gpu.TextureTarget_2D, tex.Id)
	uploadPixels(ctx, gpu.TextureTarget_2D, nrgba, &opts)
	ctx.Dev.TexParameters(gpu.TextureTarget_2D, opts.filter(), opts.wrap())
	if opts.Mipmaps {
		ctx.Dev.GenerateMipmap(gpu.TextureTarget_2D)
	}
	ctx.Dev.BindTexture(gpu.TextureTarget_2D, 0)

	if err := ctx.Dev.Error(); err != nil {
		ctx.Dev.DeleteTexture(tex.Id)
		return Texture{}, fmt.Errorf("failed to upload texture '%s' of size %dx%d: %w", name, tex.Width, tex.Height, err)
	}

	return tex, nil
}

// LoadTextureFromColor creates a 1x1 texture of a single color
func LoadTextureFromColor(ctx *gpu.Context, col color.NRGBA) (Texture, error) {

	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, col)

	name := fmt.Sprintf("color(%d,%d,%d,%d)", col.R, col.G, col.B, col.A)
	return LoadTextureFromImage(ctx, name, img, TextureLoadOptions{Filter: gpu.TextureFilter_Nearest})
}

// LoadTextureFromPayload decodes an encoded image (PNG, JPEG, BMP, TIFF or WebP) and uploads it
func LoadTextureFromPayload(ctx *gpu.Context, name string, payload []byte, opts TextureLoadOptions) (Texture, error) {

	img, format, err := image.Decode(bytes.NewReader(payload))
	if err != nil {
		return Texture{}, fmt.Errorf("failed to decode texture '%s': %w", name, err)
	}

	tex, err := LoadTextureFromImage(ctx, name, img, opts)
	if err != nil {
		return Texture{}, fmt.Errorf("failed to load %s texture: %w", format, err)
	}

	return tex, nil
}

func LoadTextureFromFile(ctx *gpu.Context, path string, opts TextureLoadOptions) (Texture, error) {

	payload, err := os.ReadFile(path)
	if err != nil {
		return Texture{}, fmt.Errorf("failed to read texture file: %w", err)
	}

	return LoadTextureFromPayload(ctx, path, payload, opts)
}
