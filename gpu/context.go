package gpu

// Context is the explicit form of the state OpenGL keeps globally.
// Every bind that matters for correctness goes through here so that callers can
// ask "is my program bound?" instead of trusting call order.
//
// A Context is not safe for concurrent use, and is meant to only be touched by the render thread.
type Context struct {
	Dev Device

	BoundProgram     uint32
	BoundVao         uint32
	BoundFramebuffer uint32
	ViewportSize     [2]int32

	caps map[Capability]bool
}

func (c *Context) UseProgram(id uint32) {

	if c.BoundProgram == id {
		return
	}

	c.Dev.UseProgram(id)
	c.BoundProgram = id
}

func (c *Context) IsProgramBound(id uint32) bool {
	return id != 0 && c.BoundProgram == id
}

// DeleteProgram deletes the program and unbinds it first if it is the currently used one
func (c *Context) DeleteProgram(id uint32) {

	if id == 0 {
		return
	}

	if c.BoundProgram == id {
		c.UseProgram(0)
	}

	c.Dev.DeleteProgram(id)
}

func (c *Context) BindVertexArray(id uint32) {

	if c.BoundVao == id {
		return
	}

	c.Dev.BindVertexArray(id)
	c.BoundVao = id
}

func (c *Context) BindFramebuffer(id uint32) {

	if c.BoundFramebuffer == id {
		return
	}

	c.Dev.BindFramebuffer(id)
	c.BoundFramebuffer = id
}

func (c *Context) Viewport(width, height int32) {

	if c.ViewportSize[0] == width && c.ViewportSize[1] == height {
		return
	}

	c.Dev.Viewport(0, 0, width, height)
	c.ViewportSize = [2]int32{width, height}
}

// SetCapability enables/disables the capability, skipping the call if it's already in the requested state
func (c *Context) SetCapability(capability Capability, enabled bool) {

	if current, ok := c.caps[capability]; ok && current == enabled {
		return
	}

	c.Dev.SetCapability(capability, enabled)
	c.caps[capability] = enabled
}

func (c *Context) IsCapabilityEnabled(capability Capability) bool {
	return c.caps[capability]
}

// SetDefaultFixedState sets the state nothing changes after startup: back faces are culled,
// counter clockwise triangles face the camera and blending uses straight alpha
func (c *Context) SetDefaultFixedState() {
	c.Dev.CullFace(Face_Back)
	c.Dev.FrontFace(Winding_CCW)
	c.Dev.BlendFunc(BlendFactor_SrcAlpha, BlendFactor_OneMinusSrcAlpha)
}

// Reset forgets all cached state. Call this after something outside the context touched the GPU state
func (c *Context) Reset() {
	c.BoundProgram = 0
	c.BoundVao = 0
	c.BoundFramebuffer = 0
	c.ViewportSize = [2]int32{}
	clear(c.caps)
}

func NewContext(dev Device) *Context {
	return &Context{
		Dev:  dev,
		caps: make(map[Capability]bool),
	}
}
