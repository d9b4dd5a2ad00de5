//go:build darwin || freebsd || linux

package tsodbc

import (
	"errors"
	"runtime"

	"github.com/ebitengine/purego"
)

// locale_t bindings resolved from the C runtime
var (
	funcNewLocale   func(mask int32, name string, base uintptr) uintptr
	funcNlLanginfoL func(item int32, loc uintptr) string
	funcFreeLocale  func(loc uintptr)
)

// Load a dynamic library on Unix systems using purego
func loadDynamicLibrary(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
}

// Close the library
func closeLibrary(handle uintptr) {
	if handle != 0 {
		purego.Dlclose(handle)
	}
}

// Get a symbol from the library
func getSymbol(handle uintptr, name string) (uintptr, error) {
	if handle == 0 {
		return 0, errors.New("invalid library handle")
	}
	return purego.Dlsym(handle, name)
}

// LC_NUMERIC_MASK and RADIXCHAR differ per C runtime
func localeConstants() (mask int32, radix int32) {
	switch runtime.GOOS {
	case "darwin":
		return 1 << 4, 50
	case "freebsd":
		return 1 << 3, 50
	default:
		return 1 << 1, 1 << 16
	}
}

// Bind the locale functions
func loadNativeFunctions(handle uintptr) error {
	for name, fptr := range map[string]any{
		"newlocale":     &funcNewLocale,
		"nl_langinfo_l": &funcNlLanginfoL,
		"freelocale":    &funcFreeLocale,
	} {
		sym, err := getSymbol(handle, name)
		if err != nil {
			return err
		}
		purego.RegisterFunc(fptr, sym)
	}
	return nil
}

// probeDecimalPoint asks the C runtime for the RADIXCHAR of the environment's LC_NUMERIC.
func probeDecimalPoint(handle uintptr) (byte, error) {
	if err := loadNativeFunctions(handle); err != nil {
		return 0, err
	}

	mask, radix := localeConstants()
	loc := funcNewLocale(mask, "", 0)
	if loc == 0 {
		return 0, errors.New("newlocale failed")
	}
	defer funcFreeLocale(loc)

	s := funcNlLanginfoL(radix, loc)
	if len(s) != 1 {
		return 0, errors.New("multibyte decimal point")
	}
	return s[0], nil
}
