package tsodbc

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
)

// Library loader for the platform C runtime, used to read the locale decimal point.
var (
	nativeLibOnce    sync.Once
	nativeLibLoaded  bool
	nativeLibError   error
	nativeLibPath    string
	nativeLibHandler uintptr
	nativePoint      byte
)

// NativeLocaleAvailable returns true if the C runtime locale could be queried
func NativeLocaleAvailable() bool {
	loadNativeLibrary()
	return nativeLibLoaded
}

// GetNativeLibraryError returns any error that occurred while loading the C runtime
func GetNativeLibraryError() error {
	loadNativeLibrary()
	return nativeLibError
}

// nativeDecimalPoint returns the decimal point of the user's numeric locale as reported by the C runtime.
func nativeDecimalPoint() (byte, error) {
	loadNativeLibrary()
	if !nativeLibLoaded {
		return 0, nativeLibError
	}
	return nativePoint, nil
}

// Attempts to load the C runtime and read the decimal point once
func loadNativeLibrary() {
	nativeLibOnce.Do(func() {
		nativeLibPath = findNativeLibraryPath()
		if nativeLibPath == "" {
			nativeLibError = errors.New("C runtime library not found")
			return
		}

		handler, err := loadDynamicLibrary(nativeLibPath)
		if err != nil {
			nativeLibError = fmt.Errorf("failed to load C runtime: %v", err)
			return
		}
		nativeLibHandler = handler

		point, err := probeDecimalPoint(nativeLibHandler)
		closeLibrary(nativeLibHandler)
		nativeLibHandler = 0
		if err != nil {
			nativeLibError = fmt.Errorf("failed to read locale: %v", err)
			return
		}
		if point == 0 || point >= 0x80 {
			nativeLibError = fmt.Errorf("unsupported decimal point 0x%02x", point)
			return
		}

		nativePoint = point
		nativeLibLoaded = true
	})
}

// Find the C runtime for the current OS
func findNativeLibraryPath() string {
	var candidates []string
	switch runtime.GOOS {
	case "linux":
		candidates = []string{"libc.so.6", "/lib/x86_64-linux-gnu/libc.so.6", "/lib/aarch64-linux-gnu/libc.so.6", "/usr/lib/libc.so.6"}
	case "darwin":
		candidates = []string{"/usr/lib/libSystem.B.dylib"}
	case "freebsd":
		candidates = []string{"libc.so.7", "/lib/libc.so.7"}
	case "windows":
		candidates = []string{"kernel32.dll"}
	default:
		return ""
	}

	for _, path := range candidates {
		// bare sonames are resolved by the dynamic loader
		if !filepathIsAbs(path) {
			return path
		}
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func filepathIsAbs(path string) bool {
	return len(path) > 0 && path[0] == '/'
}
