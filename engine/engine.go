package engine

import (
	"runtime"

	"github.com/bloeys/nrend/assert"
	"github.com/bloeys/nrend/gpu"
	"github.com/bloeys/nrend/gpu/gpugl"
	"github.com/bloeys/nrend/input"
	"github.com/bloeys/nrend/timing"
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/veandco/go-sdl2/sdl"
)

var (
	isInited = false
)

type Window struct {
	SDLWin         *sdl.Window
	GlCtx          sdl.GLContext
	Ctx            *gpu.Context
	EventCallbacks []func(sdl.Event)
}

func (w *Window) handleInputs() {

	input.EventLoopStart()

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {

		// Fire callbacks
		for i := 0; i < len(w.EventCallbacks); i++ {
			w.EventCallbacks[i](event)
		}

		switch e := event.(type) {

		case *sdl.MouseWheelEvent:
			input.HandleMouseWheelEvent(e)

		case *sdl.KeyboardEvent:
			input.HandleKeyboardEvent(e)

		case *sdl.MouseButtonEvent:
			input.HandleMouseBtnEvent(e)

		case *sdl.MouseMotionEvent:
			input.HandleMouseMotionEvent(e)

		case *sdl.QuitEvent:
			input.HandleQuitEvent(e)

		case *sdl.WindowEvent:
			// Releases that happen while unfocused never arrive
			if e.Event == sdl.WINDOWEVENT_FOCUS_LOST {
				input.Reset()
			}
		}
	}
}

// DrawableSize is the size of the default framebuffer in pixels, which can differ from the window size on high dpi screens
func (w *Window) DrawableSize() (width, height int32) {
	return w.SDLWin.GLGetDrawableSize()
}

func (w *Window) Destroy() error {
	sdl.GLDeleteContext(w.GlCtx)
	return w.SDLWin.Destroy()
}

func Init() error {

	isInited = true

	runtime.LockOSThread()
	err := initSDL()
	if err != nil {
		return err
	}

	timing.Init()
	return nil
}

func initSDL() error {

	err := sdl.Init(sdl.INIT_TIMER | sdl.INIT_VIDEO)
	if err != nil {
		return err
	}

	sdl.ShowCursor(1)

	sdl.GLSetAttribute(sdl.MAJOR_VERSION, 4)
	sdl.GLSetAttribute(sdl.MINOR_VERSION, 1)

	sdl.GLSetAttribute(sdl.GL_RED_SIZE, 8)
	sdl.GLSetAttribute(sdl.GL_GREEN_SIZE, 8)
	sdl.GLSetAttribute(sdl.GL_BLUE_SIZE, 8)
	sdl.GLSetAttribute(sdl.GL_ALPHA_SIZE, 8)

	sdl.GLSetAttribute(sdl.GL_DOUBLEBUFFER, 1)
	sdl.GLSetAttribute(sdl.GL_DEPTH_SIZE, 24)
	sdl.GLSetAttribute(sdl.GL_STENCIL_SIZE, 8)

	sdl.GLSetAttribute(sdl.GL_FRAMEBUFFER_SRGB_CAPABLE, 1)

	sdl.GLSetAttribute(sdl.GL_CONTEXT_PROFILE_MASK, sdl.GL_CONTEXT_PROFILE_CORE)

	return nil
}

func CreateOpenGLWindowCentered(title string, width, height int32, flags WindowFlags) (*Window, error) {
	return createWindow(title, sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED, width, height, WindowFlags_OPENGL|flags)
}

func createWindow(title string, x, y, width, height int32, flags WindowFlags) (*Window, error) {

	assert.T(isInited, "engine.Init() was not called!")

	sdlWin, err := sdl.CreateWindow(title, x, y, width, height, uint32(flags))
	if err != nil {
		return nil, err
	}

	win := &Window{
		SDLWin:         sdlWin,
		EventCallbacks: make([]func(sdl.Event), 0),
	}

	win.GlCtx, err = sdlWin.GLCreateContext()
	if err != nil {
		sdlWin.Destroy()
		return nil, err
	}

	err = initOpenGL()
	if err != nil {
		win.Destroy()
		return nil, err
	}

	win.Ctx = gpu.NewContext(gpugl.New())
	win.Ctx.SetDefaultFixedState()
	win.Ctx.SetCapability(gpu.Capability_DepthTest, true)
	win.Ctx.SetCapability(gpu.Capability_CullFace, true)
	win.Ctx.SetCapability(gpu.Capability_Blend, false)

	// Get rid of the blinding white startup screen (unfortunately there is still one frame of white)
	win.Ctx.Dev.ClearColor(0, 0, 0, 1)
	win.Ctx.Dev.Clear(gpu.ClearMask_Color | gpu.ClearMask_Depth | gpu.ClearMask_Stencil)
	sdlWin.GLSwap()

	return win, nil
}

func initOpenGL() error {
	return gl.Init()
}

func (w *Window) SetSrgbFramebuffer(isEnabled bool) {
	w.Ctx.SetCapability(gpu.Capability_FramebufferSrgb, isEnabled)
}

func SetVSync(enabled bool) {

	if enabled {
		sdl.GLSetSwapInterval(1)
	} else {
		sdl.GLSetSwapInterval(0)
	}
}
