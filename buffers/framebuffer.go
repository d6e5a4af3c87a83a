package buffers

import (
	"fmt"

	"github.com/bloeys/nrend/gpu"
)

type FramebufferAttachmentType int32

const (
	FramebufferAttachmentType_Unknown FramebufferAttachmentType = iota
	FramebufferAttachmentType_Texture
	FramebufferAttachmentType_Renderbuffer
)

func (f FramebufferAttachmentType) IsValid() bool {

	switch f {
	case FramebufferAttachmentType_Texture, FramebufferAttachmentType_Renderbuffer:
		return true

	default:
		return false
	}
}

type FramebufferAttachment struct {
	Id     uint32
	Type   FramebufferAttachmentType
	Format gpu.TextureFormat
}

// Framebuffer is an offscreen render target. All attachments share the framebuffer size
type Framebuffer struct {
	Id                    uint32
	Attachments           []FramebufferAttachment
	ColorAttachmentsCount uint32
	Width                 uint32
	Height                uint32
	ctx                   *gpu.Context
}

func (fbo *Framebuffer) Bind() {
	fbo.ctx.BindFramebuffer(fbo.Id)
}

func (fbo *Framebuffer) BindWithViewport() {
	fbo.ctx.BindFramebuffer(fbo.Id)
	fbo.ctx.Viewport(int32(fbo.Width), int32(fbo.Height))
}

func (fbo *Framebuffer) UnBind() {
	fbo.ctx.BindFramebuffer(0)
}

func (fbo *Framebuffer) UnBindWithViewport(width, height uint32) {
	fbo.ctx.BindFramebuffer(0)
	fbo.ctx.Viewport(int32(width), int32(height))
}

// IsComplete returns true if the driver reports that the fbo is complete/usable.
// Note that this function binds and then unbinds the fbo
func (fbo *Framebuffer) IsComplete() bool {
	fbo.Bind()
	isComplete := fbo.ctx.Dev.FramebufferComplete()
	fbo.UnBind()
	return isComplete
}

func (fbo *Framebuffer) HasColorAttachment() bool {
	return fbo.ColorAttachmentsCount > 0
}

func (fbo *Framebuffer) HasDepthAttachment() bool {

	for i := 0; i < len(fbo.Attachments); i++ {

		a := &fbo.Attachments[i]
		if a.Format.IsDepthFormat() {
			return true
		}
	}

	return false
}

// ColorTexture returns the texture id of the i-th color attachment, or 0 if that attachment
// doesn't exist or is a renderbuffer
func (fbo *Framebuffer) ColorTexture(i int) uint32 {

	colorIndex := 0
	for j := 0; j < len(fbo.Attachments); j++ {

		a := &fbo.Attachments[j]
		if !a.Format.IsColorFormat() {
			continue
		}

		if colorIndex == i {
			if a.Type != FramebufferAttachmentType_Texture {
				return 0
			}
			return a.Id
		}

		colorIndex++
	}

	return 0
}

func (fbo *Framebuffer) newAttachment(attachType FramebufferAttachmentType, attachFormat gpu.TextureFormat, attachPoint gpu.Attachment) (FramebufferAttachment, error) {

	dev := fbo.ctx.Dev
	a := FramebufferAttachment{
		Type:   attachType,
		Format: attachFormat,
	}

	fbo.Bind()
	defer fbo.UnBind()

	if attachType == FramebufferAttachmentType_Texture {

		a.Id = dev.GenTexture()
		if a.Id == 0 {
			return a, fmt.Errorf("failed to generate texture for framebuffer: %w", gpu.ErrObjectCreation)
		}

		filter := gpu.TextureFilter_Linear
		if attachFormat.IsDepthFormat() {
			filter = gpu.TextureFilter_Nearest
		}

		dev.BindTexture(gpu.TextureTarget_2D, a.Id)
		dev.TexImage2D(gpu.TextureTarget_2D, int32(fbo.Width), int32(fbo.Height), attachFormat, nil)
		dev.TexParameters(gpu.TextureTarget_2D, filter, gpu.TextureWrap_Clamp)
		dev.BindTexture(gpu.TextureTarget_2D, 0)

		if err := dev.Error(); err != nil {
			dev.DeleteTexture(a.Id)
			return a, fmt.Errorf("failed to allocate %dx%d texture for framebuffer: %w", fbo.Width, fbo.Height, err)
		}

		dev.FramebufferTexture2D(attachPoint, a.Id)

	} else {

		a.Id = dev.GenRenderbuffer()
		if a.Id == 0 {
			return a, fmt.Errorf("failed to generate render buffer for framebuffer: %w", gpu.ErrObjectCreation)
		}

		dev.RenderbufferStorage(a.Id, attachFormat, int32(fbo.Width), int32(fbo.Height))
		if err := dev.Error(); err != nil {
			dev.DeleteRenderbuffer(a.Id)
			return a, fmt.Errorf("failed to allocate %dx%d render buffer for framebuffer: %w", fbo.Width, fbo.Height, err)
		}

		dev.FramebufferRenderbuffer(attachPoint, a.Id)
	}

	return a, nil
}

func (fbo *Framebuffer) NewColorAttachment(
	attachType FramebufferAttachmentType,
	attachFormat gpu.TextureFormat,
) error {

	if fbo.ColorAttachmentsCount == 8 {
		return fmt.Errorf("failed creating color attachment for framebuffer due it already having %d attached", fbo.ColorAttachmentsCount)
	}

	if !attachType.IsValid() {
		return fmt.Errorf("failed creating color attachment for framebuffer due to unknown attachment type. Type=%d", attachType)
	}

	if !attachFormat.IsColorFormat() {
		return fmt.Errorf("failed creating color attachment for framebuffer due to attachment data format not being a valid color type. Data format=%d", attachFormat)
	}

	a, err := fbo.newAttachment(attachType, attachFormat, gpu.Attachment_Color0+gpu.Attachment(fbo.ColorAttachmentsCount))
	if err != nil {
		return err
	}

	fbo.ColorAttachmentsCount++
	fbo.Attachments = append(fbo.Attachments, a)
	return nil
}

func (fbo *Framebuffer) NewDepthStencilAttachment(
	attachType FramebufferAttachmentType,
	attachFormat gpu.TextureFormat,
) error {

	if fbo.HasDepthAttachment() {
		return fmt.Errorf("failed creating depth-stencil attachment for framebuffer because a depth-stencil attachment already exists")
	}

	if !attachType.IsValid() {
		return fmt.Errorf("failed creating depth-stencil attachment for framebuffer due to unknown attachment type. Type=%d", attachType)
	}

	if !attachFormat.IsDepthFormat() {
		return fmt.Errorf("failed creating depth-stencil attachment for framebuffer due to attachment data format not being a valid depth-stencil type. Data format=%d", attachFormat)
	}

	a, err := fbo.newAttachment(attachType, attachFormat, gpu.Attachment_DepthStencil)
	if err != nil {
		return err
	}

	fbo.Attachments = append(fbo.Attachments, a)
	return nil
}

// Delete deletes the framebuffer and all of its attachments
func (fbo *Framebuffer) Delete() {

	if fbo.Id == 0 {
		return
	}

	for i := 0; i < len(fbo.Attachments); i++ {

		a := &fbo.Attachments[i]
		if a.Type == FramebufferAttachmentType_Texture {
			fbo.ctx.Dev.DeleteTexture(a.Id)
		} else {
			fbo.ctx.Dev.DeleteRenderbuffer(a.Id)
		}
	}

	if fbo.ctx.BoundFramebuffer == fbo.Id {
		fbo.UnBind()
	}

	fbo.ctx.Dev.DeleteFramebuffer(fbo.Id)
	fbo.Id = 0
	fbo.Attachments = nil
	fbo.ColorAttachmentsCount = 0
}

func NewFramebuffer(ctx *gpu.Context, width, height uint32) (Framebuffer, error) {

	// It is allowed to have attachments of different sizes in one FBO,
	// but that complicates things (e.g. which size to use for the viewport), so all attachments share size
	fbo := Framebuffer{
		Width:  width,
		Height: height,
		ctx:    ctx,
	}

	fbo.Id = ctx.Dev.GenFramebuffer()
	if fbo.Id == 0 {
		return Framebuffer{}, fmt.Errorf("failed to generate framebuffer: %w", gpu.ErrObjectCreation)
	}

	return fbo, nil
}
