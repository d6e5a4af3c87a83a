package assets

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/bloeys/nrend/gpu"
	"golang.org/x/image/draw"
)

type Cubemap struct {
	Id       uint32
	Name     string
	FaceSize int32
	Format   gpu.TextureFormat
}

func (c *Cubemap) Delete(ctx *gpu.Context) {

	if c.Id == 0 {
		return
	}

	ctx.Dev.DeleteTexture(c.Id)
	c.Id = 0
}

// CubemapFace indexes the six faces in upload order: +x, -x, +y, -y, +z, -z
type CubemapFace int

const (
	CubemapFace_PositiveX CubemapFace = iota
	CubemapFace_NegativeX
	CubemapFace_PositiveY
	CubemapFace_NegativeY
	CubemapFace_PositiveZ
	CubemapFace_NegativeZ
)

// crossFaceCells is the (column, row) of each face in a horizontal 4x3 cross:
//
//	    +Y
//	-X  +Z  +X  -Z
//	    -Y
var crossFaceCells = [6]image.Point{
	CubemapFace_PositiveX: {2, 1},
	CubemapFace_NegativeX: {0, 1},
	CubemapFace_PositiveY: {1, 0},
	CubemapFace_NegativeY: {1, 2},
	CubemapFace_PositiveZ: {1, 1},
	CubemapFace_NegativeZ: {3, 1},
}

// resizeFace returns the face as a size x size NRGBA image, scaling it if needed
func resizeFace(face image.Image, size int) *image.NRGBA {

	b := face.Bounds()
	if b.Dx() == size && b.Dy() == size {
		return toNRGBA(face)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), face, b, draw.Src, nil)
	return dst
}

// LoadCubemapFromImages uploads six face images. Faces that don't match the size of the
// first face are scaled to it
func LoadCubemapFromImages(ctx *gpu.Context, name string, faces [6]image.Image, opts TextureLoadOptions) (Cubemap, error) {

	for i, f := range faces {
		if f == nil {
			return Cubemap{}, fmt.Errorf("failed to load cubemap '%s': face %d is missing", name, i)
		}
	}

	first := faces[0].Bounds()
	size := first.Dx()
	if first.Dy() != size {
		size = min(first.Dx(), first.Dy())
	}

	cm := Cubemap{
		Name:     name,
		FaceSize: int32(size),
		Format:   opts.format(),
	}

	cm.Id = ctx.Dev.GenTexture()
	if cm.Id == 0 {
		return Cubemap{}, fmt.Errorf("failed to create cubemap '%s': %w", name, gpu.ErrObjectCreation)
	}

	// Cubemap faces are addressed top-left first, so never flip them
	opts.FlipY = false

	ctx.Dev.BindTexture(gpu.TextureTarget_CubeMap, cm.Id)
	for i := 0; i < 6; i++ {
		uploadPixels(ctx, gpu.TextureTarget_CubeMapPositiveX+gpu.TextureTarget(i), resizeFace(faces[i], size), &opts)
	}

	if opts.Wrap == gpu.TextureWrap_Unknown {
		opts.Wrap = gpu.TextureWrap_Clamp
	}

	ctx.Dev.TexParameters(gpu.TextureTarget_CubeMap, opts.filter(), opts.wrap())
	if opts.Mipmaps {
		ctx.Dev.GenerateMipmap(gpu.TextureTarget_CubeMap)
	}
	ctx.Dev.BindTexture(gpu.TextureTarget_CubeMap, 0)

	if err := ctx.Dev.Error(); err != nil {
		ctx.Dev.DeleteTexture(cm.Id)
		return Cubemap{}, fmt.Errorf("failed to upload cubemap '%s' with face size %d: %w", name, size, err)
	}

	return cm, nil
}

// LoadCubemapFromColor creates a cubemap where every face is one 1x1 color
func LoadCubemapFromColor(ctx *gpu.Context, col color.NRGBA) (Cubemap, error) {

	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, col)

	name := fmt.Sprintf("color(%d,%d,%d,%d)", col.R, col.G, col.B, col.A)
	return LoadCubemapFromImages(ctx, name, [6]image.Image{img, img, img, img, img, img}, TextureLoadOptions{Filter: gpu.TextureFilter_Nearest})
}

// LoadCubemapFromPayloads decodes six encoded face images, ordered +x, -x, +y, -y, +z, -z
func LoadCubemapFromPayloads(ctx *gpu.Context, name string, payloads [6][]byte, opts TextureLoadOptions) (Cubemap, error) {

	var faces [6]image.Image
	for i := 0; i < 6; i++ {

		img, _, err := image.Decode(bytes.NewReader(payloads[i]))
		if err != nil {
			return Cubemap{}, fmt.Errorf("failed to decode face %d of cubemap '%s': %w", i, name, err)
		}

		faces[i] = img
	}

	return LoadCubemapFromImages(ctx, name, faces, opts)
}

// SplitCubemapCross cuts a horizontal 4x3 cross image into its six faces
func SplitCubemapCross(img image.Image) ([6]image.Image, error) {

	b := img.Bounds()
	if b.Dx()%4 != 0 || b.Dy()%3 != 0 || b.Dx()/4 != b.Dy()/3 {
		return [6]image.Image{}, fmt.Errorf("cubemap cross must be made of 4x3 square faces, but image size is %dx%d", b.Dx(), b.Dy())
	}

	faceSize := b.Dx() / 4

	var faces [6]image.Image
	for i, cell := range crossFaceCells {

		face := image.NewNRGBA(image.Rect(0, 0, faceSize, faceSize))
		srcMin := b.Min.Add(cell.Mul(faceSize))
		draw.Draw(face, face.Bounds(), img, srcMin, draw.Src)

		faces[i] = face
	}

	return faces, nil
}

// LoadCubemapFromCross decodes one image holding all faces in a 4x3 cross and uploads it
func LoadCubemapFromCross(ctx *gpu.Context, name string, payload []byte, opts TextureLoadOptions) (Cubemap, error) {

	img, _, err := image.Decode(bytes.NewReader(payload))
	if err != nil {
		return Cubemap{}, fmt.Errorf("failed to decode cubemap '%s': %w", name, err)
	}

	faces, err := SplitCubemapCross(img)
	if err != nil {
		return Cubemap{}, fmt.Errorf("failed to load cubemap '%s': %w", name, err)
	}

	return LoadCubemapFromImages(ctx, name, faces, opts)
}
