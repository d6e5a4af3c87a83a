// Package timing measures frame times using the SDL performance counter
package timing

import (
	"github.com/veandco/go-sdl2/sdl"
)

// avgFrameCount is the number of frames GetAvgFPS averages over
const avgFrameCount = 60

var (
	dt float32 = 0.01

	frameStart  uint64
	counterFreq float64

	frameTimes     [avgFrameCount]float32
	frameTimeIndex int
	frameTimeCount int
)

// Init must be called after SDL is initialized
func Init() {
	counterFreq = float64(sdl.GetPerformanceFrequency())
	frameStart = sdl.GetPerformanceCounter()
}

func FrameStarted() {
	frameStart = sdl.GetPerformanceCounter()
}

func FrameEnded() {

	elapsed := sdl.GetPerformanceCounter() - frameStart
	dt = float32(float64(elapsed) / counterFreq)

	frameTimes[frameTimeIndex] = dt
	frameTimeIndex = (frameTimeIndex + 1) % avgFrameCount
	if frameTimeCount < avgFrameCount {
		frameTimeCount++
	}
}

// DT is the duration of the last frame in seconds
func DT() float32 {
	return dt
}

func GetAvgFPS() float32 {

	if frameTimeCount == 0 {
		return 0
	}

	var total float32
	for i := 0; i < frameTimeCount; i++ {
		total += frameTimes[i]
	}

	if total == 0 {
		return 0
	}

	return float32(frameTimeCount) / total
}
