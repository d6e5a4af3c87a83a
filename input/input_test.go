package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/veandco/go-sdl2/sdl"
)

func keyEvent(kc sdl.Keycode, state uint8, repeat uint8) *sdl.KeyboardEvent {
	return &sdl.KeyboardEvent{
		State:  state,
		Repeat: repeat,
		Keysym: sdl.Keysym{Sym: kc},
	}
}

func TestKeyStatePerFrame(t *testing.T) {

	Reset()
	EventLoopStart()

	HandleKeyboardEvent(keyEvent(sdl.K_w, sdl.PRESSED, 0))
	assert.True(t, KeyDown(sdl.K_w))
	assert.True(t, KeyClicked(sdl.K_w))
	assert.False(t, KeyReleased(sdl.K_w))
	assert.False(t, KeyDown(sdl.K_s))

	// Held down: still down, but no longer clicked. Repeats don't click again
	EventLoopStart()
	HandleKeyboardEvent(keyEvent(sdl.K_w, sdl.PRESSED, 1))
	assert.True(t, KeyDown(sdl.K_w))
	assert.False(t, KeyClicked(sdl.K_w))

	EventLoopStart()
	HandleKeyboardEvent(keyEvent(sdl.K_w, sdl.RELEASED, 0))
	assert.False(t, KeyDown(sdl.K_w))
	assert.True(t, KeyReleased(sdl.K_w))

	// A tap within one frame is both a click and a release
	EventLoopStart()
	HandleKeyboardEvent(keyEvent(sdl.K_e, sdl.PRESSED, 0))
	HandleKeyboardEvent(keyEvent(sdl.K_e, sdl.RELEASED, 0))
	assert.True(t, KeyClicked(sdl.K_e))
	assert.True(t, KeyReleased(sdl.K_e))
	assert.False(t, KeyDown(sdl.K_e))
}

func TestMouseState(t *testing.T) {

	Reset()
	EventLoopStart()

	HandleMouseBtnEvent(&sdl.MouseButtonEvent{Button: sdl.BUTTON_RIGHT, State: sdl.PRESSED})
	HandleMouseMotionEvent(&sdl.MouseMotionEvent{X: 10, Y: 20, XRel: 3, YRel: -1})
	HandleMouseMotionEvent(&sdl.MouseMotionEvent{X: 12, Y: 19, XRel: 2, YRel: -1})
	HandleMouseWheelEvent(&sdl.MouseWheelEvent{Y: -2})

	assert.True(t, MouseDown(sdl.BUTTON_RIGHT))
	assert.True(t, MouseClicked(sdl.BUTTON_RIGHT))
	assert.False(t, MouseDown(sdl.BUTTON_LEFT))

	x, y := GetMousePos()
	assert.Equal(t, [2]int32{12, 19}, [2]int32{x, y})
	dx, dy := GetMouseMotion()
	assert.Equal(t, [2]int32{5, -2}, [2]int32{dx, dy})
	assert.Equal(t, int32(-1), GetMouseWheelYNorm())

	EventLoopStart()
	dx, dy = GetMouseMotion()
	assert.Zero(t, dx)
	assert.Zero(t, dy)
	assert.Zero(t, GetMouseWheelYNorm())
	assert.True(t, MouseDown(sdl.BUTTON_RIGHT))
	assert.False(t, MouseClicked(sdl.BUTTON_RIGHT))
	assert.False(t, MouseReleased(sdl.BUTTON_RIGHT))

	HandleMouseBtnEvent(&sdl.MouseButtonEvent{Button: sdl.BUTTON_RIGHT, State: sdl.RELEASED})
	assert.True(t, MouseReleased(sdl.BUTTON_RIGHT))
	assert.False(t, MouseDown(sdl.BUTTON_RIGHT))

	HandleMouseBtnEvent(&sdl.MouseButtonEvent{Button: sdl.BUTTON_RIGHT, State: sdl.PRESSED})
	Reset()
	assert.False(t, MouseDown(sdl.BUTTON_RIGHT))
}

func TestQuit(t *testing.T) {

	EventLoopStart()
	assert.False(t, IsQuitClicked())

	HandleQuitEvent(&sdl.QuitEvent{})
	assert.True(t, IsQuitClicked())

	EventLoopStart()
	assert.False(t, IsQuitClicked())
}
