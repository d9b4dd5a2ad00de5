//go:build !darwin && !freebsd && !linux && !windows

package tsodbc

import "errors"

var errNoDynamicLoader = errors.New("dynamic loading not supported on this platform")

func loadDynamicLibrary(path string) (uintptr, error) {
	return 0, errNoDynamicLoader
}

func closeLibrary(handle uintptr) {}

func probeDecimalPoint(handle uintptr) (byte, error) {
	return 0, errNoDynamicLoader
}
