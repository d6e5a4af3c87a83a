//go:build release

package assert

const isDebugBuild = false
