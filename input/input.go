// Package input keeps the keyboard and mouse state of the current frame, fed by SDL events.
//
// Besides up/down state it tracks what changed this frame (clicked, released) so callers
// don't have to remember the previous frame themselves.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// buttonState is the state of one key or mouse button
type buttonState struct {
	down bool
	// clicked and released only hold for the frame the change happened in
	clicked  bool
	released bool
}

// buttons tracks every key or mouse button that received at least one event
type buttons[K comparable] map[K]buttonState

func (b buttons[K]) frameStart() {
	for k, s := range b {
		s.clicked = false
		s.released = false
		b[k] = s
	}
}

// set applies a press or release. Repeats (keys held down) don't count as new clicks
func (b buttons[K]) set(k K, pressed, repeat bool) {

	s := b[k]
	s.down = pressed
	if !repeat {
		s.clicked = s.clicked || pressed
		s.released = s.released || !pressed
	}

	b[k] = s
}

var (
	keys      = buttons[sdl.Keycode]{}
	mouseBtns = buttons[uint8]{}

	mouseX, mouseY           int32
	mouseXDelta, mouseYDelta int32
	mouseWheelY              int32

	isQuitRequested bool
)

// EventLoopStart resets the per frame state. Call before polling the events of a frame
func EventLoopStart() {

	keys.frameStart()
	mouseBtns.frameStart()

	mouseXDelta, mouseYDelta = 0, 0
	mouseWheelY = 0
	isQuitRequested = false
}

// Reset forgets every held key and button, e.g. when the window loses focus and release events would be missed
func Reset() {
	clear(keys)
	clear(mouseBtns)
	mouseXDelta, mouseYDelta = 0, 0
	mouseWheelY = 0
}

func HandleQuitEvent(e *sdl.QuitEvent) {
	isQuitRequested = true
}

func IsQuitClicked() bool {
	return isQuitRequested
}

func HandleKeyboardEvent(e *sdl.KeyboardEvent) {
	keys.set(e.Keysym.Sym, e.State == sdl.PRESSED, e.Repeat != 0)
}

func HandleMouseBtnEvent(e *sdl.MouseButtonEvent) {
	mouseBtns.set(e.Button, e.State == sdl.PRESSED, false)
}

func HandleMouseMotionEvent(e *sdl.MouseMotionEvent) {

	mouseX, mouseY = e.X, e.Y

	// Several motion events can arrive in one frame
	mouseXDelta += e.XRel
	mouseYDelta += e.YRel
}

func HandleMouseWheelEvent(e *sdl.MouseWheelEvent) {
	mouseWheelY += e.Y
}

func GetMousePos() (x, y int32) {
	return mouseX, mouseY
}

// GetMouseMotion returns how many pixels the mouse moved this frame
func GetMouseMotion() (xDelta, yDelta int32) {
	return mouseXDelta, mouseYDelta
}

// GetMouseWheelYNorm returns 1 when scrolling up, -1 when scrolling down and 0 otherwise
func GetMouseWheelYNorm() int32 {

	if mouseWheelY > 0 {
		return 1
	} else if mouseWheelY < 0 {
		return -1
	}

	return 0
}

func KeyClicked(kc sdl.Keycode) bool {
	return keys[kc].clicked
}

func KeyReleased(kc sdl.Keycode) bool {
	return keys[kc].released
}

func KeyDown(kc sdl.Keycode) bool {
	return keys[kc].down
}

// MouseClicked takes an SDL button index such as sdl.BUTTON_LEFT
func MouseClicked(mb uint8) bool {
	return mouseBtns[mb].clicked
}

func MouseReleased(mb uint8) bool {
	return mouseBtns[mb].released
}

func MouseDown(mb uint8) bool {
	return mouseBtns[mb].down
}
