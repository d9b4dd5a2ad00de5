//go:build windows

package tsodbc

import (
	"errors"
	"syscall"
	"unsafe"
)

const localeSDecimal = 0x0000000E

// Load a dynamic library on Windows systems
func loadDynamicLibrary(path string) (uintptr, error) {
	handle, err := syscall.LoadLibrary(path)
	if err != nil {
		return 0, err
	}
	return uintptr(handle), nil
}

// Close the library
func closeLibrary(handle uintptr) {
	if handle != 0 {
		syscall.FreeLibrary(syscall.Handle(handle))
	}
}

// Get a symbol from the library
func getSymbol(handle uintptr, name string) (uintptr, error) {
	if handle == 0 {
		return 0, errors.New("invalid library handle")
	}
	return syscall.GetProcAddress(syscall.Handle(handle), name)
}

// probeDecimalPoint reads LOCALE_SDECIMAL of the user default locale.
func probeDecimalPoint(handle uintptr) (byte, error) {
	proc, err := getSymbol(handle, "GetLocaleInfoEx")
	if err != nil {
		return 0, err
	}

	var buf [8]uint16
	n, _, callErr := syscall.SyscallN(proc, 0, localeSDecimal, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		return 0, callErr
	}
	// n counts the terminating NUL
	if n != 2 || buf[0] >= 0x80 {
		return 0, errors.New("multibyte decimal point")
	}
	return byte(buf[0]), nil
}
