// Package gputest provides an in-memory gpu.Device that records every command issued to it.
//
// It keeps enough state to act like a real driver for the things the renderer cares about:
// GLSL sources are checked for obvious compile errors, vertex outputs are matched against
// fragment inputs at link time, uniforms and uniform blocks are discovered from declarations,
// and buffer and texture uploads are copied so tests can inspect the bytes.
package gputest

import (
	"fmt"
	"unsafe"

	"github.com/bloeys/nrend/gpu"
)

var _ gpu.Device = &Device{}

// Command is one recorded call. Args never hold pointers, so command streams can be compared with assert.Equal
type Command struct {
	Name string
	Args []any
}

func (c Command) String() string {
	return fmt.Sprintf("%s%v", c.Name, c.Args)
}

type Shader struct {
	Stage    gpu.ShaderStage
	Source   string
	Compiled bool
	Log      string
}

type Uniform struct {
	Name     string
	Type     string
	Location int32
	// Count is the array length, 1 for non-arrays
	Count int
}

type Program struct {
	Id     uint32
	Linked bool
	Log    string

	Shaders []uint32

	// Uniforms holds the active uniforms in declaration order
	Uniforms []Uniform
	// Blocks holds uniform block names. The block index is the index in this slice
	Blocks        []string
	BlockBindings map[uint32]uint32
	Attribs       map[string]int32

	boundAttribs map[string]uint32
	locToName    map[int32]string

	// Values holds the last value written to each uniform, keyed by name ('arr[2]' for array elements)
	Values map[string]any
}

type UniformWrite struct {
	Program uint32
	Name    string
	Value   any
}

type Buffer struct {
	Id    uint32
	Data  []byte
	Usage gpu.BufUsage
}

type Texture struct {
	Id     uint32
	Target gpu.TextureTarget
	Width  int32
	Height int32
	Format gpu.TextureFormat
	// Pixels holds the data per upload target (2D or a cubemap face)
	Pixels  map[gpu.TextureTarget][]byte
	Filter  gpu.TextureFilter
	Wrap    gpu.TextureWrap
	Mipmaps bool
}

type Renderbuffer struct {
	Id     uint32
	Format gpu.TextureFormat
	Width  int32
	Height int32
}

type Framebuffer struct {
	Id uint32
	// Attachments maps the attachment point to a texture or renderbuffer id
	Attachments map[gpu.Attachment]uint32
}

type Draw struct {
	Mode        gpu.Primitive
	First       int32
	Count       int32
	Indexed     bool
	IndexOffset uintptr
	BaseVertex  int32

	Program     uint32
	Vao         uint32
	Framebuffer uint32
	// Textures is the texture bound to each unit at the time of the draw
	Textures map[uint32]uint32
}

type Device struct {
	Commands      []Command
	Draws         []Draw
	UniformWrites []UniformWrite

	Shaders       map[uint32]*Shader
	Programs      map[uint32]*Program
	Buffers       map[uint32]*Buffer
	Textures      map[uint32]*Texture
	Vaos          map[uint32]bool
	Framebuffers  map[uint32]*Framebuffer
	Renderbuffers map[uint32]*Renderbuffer

	BoundProgram     uint32
	BoundVao         uint32
	BoundFramebuffer uint32
	BoundBuffers     map[gpu.BufferTarget]uint32
	ActiveUnit       uint32
	BoundTextures    map[uint32]uint32
	// UniformBindings maps a uniform block binding index to a buffer
	UniformBindings map[uint32]uint32

	Caps         map[gpu.Capability]bool
	ViewportRect [4]int32
	ClearRGBA    [4]float32

	CulledFace   gpu.Face
	FrontWinding gpu.Winding
	BlendSrc     gpu.BlendFactor
	BlendDst     gpu.BlendFactor

	// OutOfMemory makes every allocation (BufferData, TexImage2D, RenderbufferStorage) fail with gpu.ErrOutOfMemory
	OutOfMemory bool
	// FailObjectCreation makes every Gen*/Create* call return 0
	FailObjectCreation bool

	pendingErr error
	lastId     uint32
}

func New() *Device {
	return &Device{
		Shaders:         map[uint32]*Shader{},
		Programs:        map[uint32]*Program{},
		Buffers:         map[uint32]*Buffer{},
		Textures:        map[uint32]*Texture{},
		Vaos:            map[uint32]bool{},
		Framebuffers:    map[uint32]*Framebuffer{},
		Renderbuffers:   map[uint32]*Renderbuffer{},
		BoundBuffers:    map[gpu.BufferTarget]uint32{},
		BoundTextures:   map[uint32]uint32{},
		UniformBindings: map[uint32]uint32{},
		Caps:            map[gpu.Capability]bool{},
	}
}

// ResetRecording clears the recorded commands, draws and uniform writes but keeps all objects and state
func (d *Device) ResetRecording() {
	d.Commands = nil
	d.Draws = nil
	d.UniformWrites = nil
}

// CommandNames returns the names of the recorded commands in order
func (d *Device) CommandNames() []string {
	names := make([]string, len(d.Commands))
	for i := range d.Commands {
		names[i] = d.Commands[i].Name
	}
	return names
}

// CountCommands returns how many times the command with this name was recorded
func (d *Device) CountCommands(name string) int {
	n := 0
	for i := range d.Commands {
		if d.Commands[i].Name == name {
			n++
		}
	}
	return n
}

// UniformWritesFor returns the uniform writes made while the program was bound, in order
func (d *Device) UniformWritesFor(program uint32) []UniformWrite {

	writes := make([]UniformWrite, 0)
	for _, w := range d.UniformWrites {
		if w.Program == program {
			writes = append(writes, w)
		}
	}

	return writes
}

// UniformValue returns the last value written to the named uniform of the program
func (d *Device) UniformValue(program uint32, name string) (any, bool) {

	p := d.Programs[program]
	if p == nil {
		return nil, false
	}

	v, ok := p.Values[name]
	return v, ok
}

// BoundBuffer returns the buffer currently bound to the target
func (d *Device) BoundBuffer(target gpu.BufferTarget) *Buffer {
	return d.Buffers[d.BoundBuffers[target]]
}

func (d *Device) record(name string, args ...any) {
	d.Commands = append(d.Commands, Command{Name: name, Args: args})
}

func (d *Device) newId() uint32 {

	if d.FailObjectCreation {
		return 0
	}

	d.lastId++
	return d.lastId
}

func (d *Device) CreateShader(stage gpu.ShaderStage) uint32 {

	id := d.newId()
	d.record("CreateShader", stage, id)
	if id != 0 {
		d.Shaders[id] = &Shader{Stage: stage}
	}

	return id
}

func (d *Device) ShaderSource(shader uint32, src string) {

	d.record("ShaderSource", shader)
	if s := d.Shaders[shader]; s != nil {
		s.Source = src
	}
}

func (d *Device) CompileShader(shader uint32) (ok bool, infoLog string) {

	d.record("CompileShader", shader)

	s := d.Shaders[shader]
	if s == nil {
		return false, "ERROR: invalid shader object\n"
	}

	s.Log = checkCompiles(s.Source)
	s.Compiled = s.Log == ""
	return s.Compiled, s.Log
}

func (d *Device) DeleteShader(shader uint32) {
	d.record("DeleteShader", shader)
	delete(d.Shaders, shader)
}

func (d *Device) CreateProgram() uint32 {

	id := d.newId()
	d.record("CreateProgram", id)
	if id != 0 {
		d.Programs[id] = &Program{
			Id:            id,
			BlockBindings: map[uint32]uint32{},
			Attribs:       map[string]int32{},
			boundAttribs:  map[string]uint32{},
			locToName:     map[int32]string{},
			Values:        map[string]any{},
		}
	}

	return id
}

func (d *Device) AttachShader(program, shader uint32) {
	d.record("AttachShader", program, shader)
	if p := d.Programs[program]; p != nil {
		p.Shaders = append(p.Shaders, shader)
	}
}

func (d *Device) BindAttribLocation(program, index uint32, name string) {
	d.record("BindAttribLocation", program, index, name)
	if p := d.Programs[program]; p != nil {
		p.boundAttribs[name] = index
	}
}

func (d *Device) GetAttribLocation(program uint32, name string) int32 {

	p := d.Programs[program]
	if p == nil || !p.Linked {
		return -1
	}

	if loc, ok := p.Attribs[name]; ok {
		return loc
	}

	return -1
}

func (d *Device) LinkProgram(program uint32) (ok bool, infoLog string) {

	d.record("LinkProgram", program)

	p := d.Programs[program]
	if p == nil {
		return false, "ERROR: invalid program object\n"
	}

	var vert, frag *parsedStage
	for _, shaderId := range p.Shaders {

		s := d.Shaders[shaderId]
		if s == nil || !s.Compiled {
			p.Log = "ERROR: Linking with uncompiled/deleted shader\n"
			return false, p.Log
		}

		ps := parseStage(s.Source)
		if s.Stage == gpu.ShaderStage_Vertex {
			vert = &ps
		} else if s.Stage == gpu.ShaderStage_Fragment {
			frag = &ps
		}
	}

	if vert == nil || frag == nil {
		p.Log = "ERROR: Program requires both a vertex and a fragment shader\n"
		return false, p.Log
	}

	if p.Log = checkLinks(vert, frag); p.Log != "" {
		return false, p.Log
	}

	p.Uniforms = p.Uniforms[:0]
	clear(p.locToName)

	var nextLoc int32
	seen := map[string]bool{}
	for _, stage := range []*parsedStage{vert, frag} {

		for _, u := range stage.Uniforms {

			if seen[u.Name] || !isReferenced(u.Name, vert, frag) {
				continue
			}
			seen[u.Name] = true

			p.Uniforms = append(p.Uniforms, Uniform{Name: u.Name, Type: u.Type, Location: nextLoc, Count: u.Count})
			if u.Count == 1 {
				p.locToName[nextLoc] = u.Name
			} else {
				for i := 0; i < u.Count; i++ {
					p.locToName[nextLoc+int32(i)] = fmt.Sprintf("%s[%d]", u.Name, i)
				}
			}

			nextLoc += int32(u.Count)
		}

		for _, b := range stage.Blocks {

			found := false
			for _, existing := range p.Blocks {
				if existing == b {
					found = true
					break
				}
			}

			if !found {
				p.Blocks = append(p.Blocks, b)
			}
		}
	}

	clear(p.Attribs)
	for i, in := range vert.Ins {

		if loc, ok := p.boundAttribs[in.Name]; ok {
			p.Attribs[in.Name] = int32(loc)
		} else if in.Location >= 0 {
			p.Attribs[in.Name] = int32(in.Location)
		} else {
			p.Attribs[in.Name] = int32(i)
		}
	}

	p.Linked = true
	return true, ""
}

func (d *Device) DeleteProgram(program uint32) {

	d.record("DeleteProgram", program)
	delete(d.Programs, program)
	if d.BoundProgram == program {
		d.BoundProgram = 0
	}
}

func (d *Device) UseProgram(program uint32) {
	d.record("UseProgram", program)
	d.BoundProgram = program
}

func (d *Device) GetUniformLocation(program uint32, name string) int32 {

	p := d.Programs[program]
	if p == nil || !p.Linked {
		return -1
	}

	for loc, n := range p.locToName {
		if n == name {
			return loc
		}
	}

	// Arrays can be looked up by their bare name, which is the same as element zero
	for loc, n := range p.locToName {
		if n == name+"[0]" {
			return loc
		}
	}

	return -1
}

func (d *Device) ActiveUniforms(program uint32) []string {

	p := d.Programs[program]
	if p == nil {
		return nil
	}

	names := make([]string, len(p.Uniforms))
	for i := range p.Uniforms {
		names[i] = p.Uniforms[i].Name
	}

	return names
}

func (d *Device) GetUniformBlockIndex(program uint32, name string) uint32 {

	p := d.Programs[program]
	if p == nil {
		return gpu.InvalidIndex
	}

	for i, b := range p.Blocks {
		if b == name {
			return uint32(i)
		}
	}

	return gpu.InvalidIndex
}

func (d *Device) UniformBlockBinding(program, blockIndex, binding uint32) {
	d.record("UniformBlockBinding", program, blockIndex, binding)
	if p := d.Programs[program]; p != nil {
		p.BlockBindings[blockIndex] = binding
	}
}

func (d *Device) setUniform(cmd string, loc int32, v any) {

	d.record(cmd, loc, v)

	p := d.Programs[d.BoundProgram]
	if p == nil {
		d.pendingErr = fmt.Errorf("gputest: %s with no program bound", cmd)
		return
	}

	// Like GL, writes to location -1 are silently ignored
	if loc == -1 {
		return
	}

	name, ok := p.locToName[loc]
	if !ok {
		d.pendingErr = fmt.Errorf("gputest: %s to location %d which is not in program %d", cmd, loc, p.Id)
		return
	}

	p.Values[name] = v
	d.UniformWrites = append(d.UniformWrites, UniformWrite{Program: p.Id, Name: name, Value: v})
}

func (d *Device) Uniform1i(loc int32, v int32) {
	d.setUniform("Uniform1i", loc, v)
}

func (d *Device) Uniform1f(loc int32, v float32) {
	d.setUniform("Uniform1f", loc, v)
}

func (d *Device) Uniform2f(loc int32, x, y float32) {
	d.setUniform("Uniform2f", loc, [2]float32{x, y})
}

func (d *Device) Uniform3f(loc int32, x, y, z float32) {
	d.setUniform("Uniform3f", loc, [3]float32{x, y, z})
}

func (d *Device) Uniform4f(loc int32, x, y, z, w float32) {
	d.setUniform("Uniform4f", loc, [4]float32{x, y, z, w})
}

func (d *Device) UniformMatrix3(loc int32, m *[3][3]float32) {
	d.setUniform("UniformMatrix3", loc, *m)
}

func (d *Device) UniformMatrix4(loc int32, m *[4][4]float32) {
	d.setUniform("UniformMatrix4", loc, *m)
}

func (d *Device) GenBuffer() uint32 {

	id := d.newId()
	d.record("GenBuffer", id)
	if id != 0 {
		d.Buffers[id] = &Buffer{Id: id}
	}

	return id
}

func (d *Device) DeleteBuffer(id uint32) {
	d.record("DeleteBuffer", id)
	delete(d.Buffers, id)
}

func (d *Device) BindBuffer(target gpu.BufferTarget, id uint32) {
	d.record("BindBuffer", target, id)
	d.BoundBuffers[target] = id
}

func (d *Device) BindBufferBase(target gpu.BufferTarget, index, id uint32) {

	d.record("BindBufferBase", target, index, id)
	d.BoundBuffers[target] = id
	if target == gpu.BufferTarget_Uniform {
		d.UniformBindings[index] = id
	}
}

func (d *Device) BufferData(target gpu.BufferTarget, size int, data unsafe.Pointer, usage gpu.BufUsage) {

	d.record("BufferData", target, size, usage)

	b := d.BoundBuffer(target)
	if b == nil {
		d.pendingErr = fmt.Errorf("gputest: BufferData with no buffer bound to target %v", target)
		return
	}

	if d.OutOfMemory {
		d.pendingErr = gpu.ErrOutOfMemory
		return
	}

	b.Usage = usage
	b.Data = make([]byte, size)
	if data != nil && size > 0 {
		copy(b.Data, unsafe.Slice((*byte)(data), size))
	}
}

func (d *Device) BufferSubData(target gpu.BufferTarget, offset, size int, data unsafe.Pointer) {

	d.record("BufferSubData", target, offset, size)

	b := d.BoundBuffer(target)
	if b == nil {
		d.pendingErr = fmt.Errorf("gputest: BufferSubData with no buffer bound to target %v", target)
		return
	}

	if offset < 0 || offset+size > len(b.Data) {
		d.pendingErr = fmt.Errorf("gputest: BufferSubData range [%d, %d) is outside of buffer of size %d", offset, offset+size, len(b.Data))
		return
	}

	copy(b.Data[offset:offset+size], unsafe.Slice((*byte)(data), size))
}

func (d *Device) GenVertexArray() uint32 {

	id := d.newId()
	d.record("GenVertexArray", id)
	if id != 0 {
		d.Vaos[id] = true
	}

	return id
}

func (d *Device) DeleteVertexArray(id uint32) {
	d.record("DeleteVertexArray", id)
	delete(d.Vaos, id)
}

func (d *Device) BindVertexArray(id uint32) {
	d.record("BindVertexArray", id)
	d.BoundVao = id
}

func (d *Device) EnableVertexAttribArray(index uint32) {
	d.record("EnableVertexAttribArray", index)
}

func (d *Device) VertexAttribPointer(index uint32, compCount int32, scalarType gpu.ScalarType, normalized bool, stride int32, offset uintptr) {
	d.record("VertexAttribPointer", index, compCount, scalarType, normalized, stride, offset)
}

func (d *Device) currentTextures() map[uint32]uint32 {
	m := make(map[uint32]uint32, len(d.BoundTextures))
	for k, v := range d.BoundTextures {
		m[k] = v
	}
	return m
}

func (d *Device) DrawArrays(mode gpu.Primitive, first, count int32) {

	d.record("DrawArrays", mode, first, count)
	d.Draws = append(d.Draws, Draw{
		Mode:        mode,
		First:       first,
		Count:       count,
		Program:     d.BoundProgram,
		Vao:         d.BoundVao,
		Framebuffer: d.BoundFramebuffer,
		Textures:    d.currentTextures(),
	})
}

func (d *Device) DrawElementsBaseVertex(mode gpu.Primitive, count int32, indexOffset uintptr, baseVertex int32) {

	d.record("DrawElementsBaseVertex", mode, count, indexOffset, baseVertex)
	d.Draws = append(d.Draws, Draw{
		Mode:        mode,
		Count:       count,
		Indexed:     true,
		IndexOffset: indexOffset,
		BaseVertex:  baseVertex,
		Program:     d.BoundProgram,
		Vao:         d.BoundVao,
		Framebuffer: d.BoundFramebuffer,
		Textures:    d.currentTextures(),
	})
}

func (d *Device) GenTexture() uint32 {

	id := d.newId()
	d.record("GenTexture", id)
	if id != 0 {
		d.Textures[id] = &Texture{Id: id, Pixels: map[gpu.TextureTarget][]byte{}}
	}

	return id
}

func (d *Device) DeleteTexture(id uint32) {
	d.record("DeleteTexture", id)
	delete(d.Textures, id)
}

func (d *Device) ActiveTexture(unit uint32) {
	d.record("ActiveTexture", unit)
	d.ActiveUnit = unit
}

func (d *Device) BindTexture(target gpu.TextureTarget, id uint32) {

	d.record("BindTexture", target, id)
	d.BoundTextures[d.ActiveUnit] = id
	if t := d.Textures[id]; t != nil && t.Target == gpu.TextureTarget_Unknown {
		t.Target = target
	}
}

func bytesPerPixel(f gpu.TextureFormat) int {

	switch f {
	case gpu.TextureFormat_RGBA16F:
		return 16
	default:
		return 4
	}
}

func (d *Device) TexImage2D(target gpu.TextureTarget, width, height int32, format gpu.TextureFormat, pixels unsafe.Pointer) {

	d.record("TexImage2D", target, width, height, format)

	t := d.Textures[d.BoundTextures[d.ActiveUnit]]
	if t == nil {
		d.pendingErr = fmt.Errorf("gputest: TexImage2D with no texture bound")
		return
	}

	if d.OutOfMemory {
		d.pendingErr = gpu.ErrOutOfMemory
		return
	}

	t.Width = width
	t.Height = height
	t.Format = format

	size := int(width) * int(height) * bytesPerPixel(format)
	data := make([]byte, size)
	if pixels != nil && size > 0 {
		copy(data, unsafe.Slice((*byte)(pixels), size))
	}
	t.Pixels[target] = data
}

func (d *Device) TexParameters(target gpu.TextureTarget, filter gpu.TextureFilter, wrap gpu.TextureWrap) {

	d.record("TexParameters", target, filter, wrap)
	if t := d.Textures[d.BoundTextures[d.ActiveUnit]]; t != nil {
		t.Filter = filter
		t.Wrap = wrap
	}
}

func (d *Device) GenerateMipmap(target gpu.TextureTarget) {

	d.record("GenerateMipmap", target)
	if t := d.Textures[d.BoundTextures[d.ActiveUnit]]; t != nil {
		t.Mipmaps = true
	}
}

func (d *Device) GenFramebuffer() uint32 {

	id := d.newId()
	d.record("GenFramebuffer", id)
	if id != 0 {
		d.Framebuffers[id] = &Framebuffer{Id: id, Attachments: map[gpu.Attachment]uint32{}}
	}

	return id
}

func (d *Device) DeleteFramebuffer(id uint32) {

	d.record("DeleteFramebuffer", id)
	delete(d.Framebuffers, id)
	if d.BoundFramebuffer == id {
		d.BoundFramebuffer = 0
	}
}

func (d *Device) BindFramebuffer(id uint32) {
	d.record("BindFramebuffer", id)
	d.BoundFramebuffer = id
}

func (d *Device) FramebufferTexture2D(attachment gpu.Attachment, textureId uint32) {

	d.record("FramebufferTexture2D", attachment, textureId)
	if fbo := d.Framebuffers[d.BoundFramebuffer]; fbo != nil {
		fbo.Attachments[attachment] = textureId
	}
}

func (d *Device) GenRenderbuffer() uint32 {

	id := d.newId()
	d.record("GenRenderbuffer", id)
	if id != 0 {
		d.Renderbuffers[id] = &Renderbuffer{Id: id}
	}

	return id
}

func (d *Device) DeleteRenderbuffer(id uint32) {
	d.record("DeleteRenderbuffer", id)
	delete(d.Renderbuffers, id)
}

func (d *Device) RenderbufferStorage(id uint32, format gpu.TextureFormat, width, height int32) {

	d.record("RenderbufferStorage", id, format, width, height)

	if d.OutOfMemory {
		d.pendingErr = gpu.ErrOutOfMemory
		return
	}

	if rb := d.Renderbuffers[id]; rb != nil {
		rb.Format = format
		rb.Width = width
		rb.Height = height
	}
}

func (d *Device) FramebufferRenderbuffer(attachment gpu.Attachment, renderbufferId uint32) {

	d.record("FramebufferRenderbuffer", attachment, renderbufferId)
	if fbo := d.Framebuffers[d.BoundFramebuffer]; fbo != nil {
		fbo.Attachments[attachment] = renderbufferId
	}
}

// FramebufferComplete reports true if the bound framebuffer has at least one attachment
func (d *Device) FramebufferComplete() bool {
	fbo := d.Framebuffers[d.BoundFramebuffer]
	return fbo != nil && len(fbo.Attachments) > 0
}

func (d *Device) Viewport(x, y, width, height int32) {
	d.record("Viewport", x, y, width, height)
	d.ViewportRect = [4]int32{x, y, width, height}
}

func (d *Device) ClearColor(r, g, b, a float32) {
	d.record("ClearColor", r, g, b, a)
	d.ClearRGBA = [4]float32{r, g, b, a}
}

func (d *Device) Clear(mask gpu.ClearMask) {
	d.record("Clear", mask)
}

func (d *Device) SetCapability(c gpu.Capability, enabled bool) {
	d.record("SetCapability", c, enabled)
	d.Caps[c] = enabled
}

func (d *Device) DepthMask(enabled bool) {
	d.record("DepthMask", enabled)
}

func (d *Device) DepthFunc(f gpu.DepthFunc) {
	d.record("DepthFunc", f)
}

func (d *Device) CullFace(f gpu.Face) {
	d.record("CullFace", f)
	d.CulledFace = f
}

func (d *Device) FrontFace(w gpu.Winding) {
	d.record("FrontFace", w)
	d.FrontWinding = w
}

func (d *Device) BlendFunc(src, dst gpu.BlendFactor) {
	d.record("BlendFunc", src, dst)
	d.BlendSrc, d.BlendDst = src, dst
}

// Error returns and clears the pending error
func (d *Device) Error() error {
	err := d.pendingErr
	d.pendingErr = nil
	return err
}
