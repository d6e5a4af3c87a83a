package engine

import (
	"github.com/bloeys/nrend/assert"
	"github.com/bloeys/nrend/timing"
)

var (
	isRunning = false
)

type Game interface {
	Init()

	Update()
	Render()
	FrameEnd()

	DeInit()
}

// Run calls the game callbacks once per frame until Quit is called. It owns the calling (render) thread
func Run(g Game, w *Window) {

	assert.T(isInited, "engine.Init() was not called!")

	isRunning = true
	g.Init()

	for isRunning {

		timing.FrameStarted()
		w.handleInputs()

		g.Update()
		g.Render()
		w.SDLWin.GLSwap()

		g.FrameEnd()
		timing.FrameEnded()
	}

	g.DeInit()
}

// Quit stops Run after the current frame
func Quit() {
	isRunning = false
}
