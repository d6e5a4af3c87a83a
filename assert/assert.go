// Package assert holds checks for call-order and argument contracts that the
// type system can't express (e.g. "bind the program before setting uniforms").
//
// Checks panic in debug builds and compile to nothing when built with the
// 'release' tag.
package assert

import (
	"github.com/bloeys/nrend/logging"
)

func T(check bool, msg string, args ...any) {
	if isDebugBuild && !check {
		logging.ErrLog.Panicf("Assert failed: "+msg, args...)
	}
}
