//go:build debug

package debug

const debugFlag = true
