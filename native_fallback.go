package tsodbc

import "os"

// fallbackNumberFormat derives the decimal point from the POSIX locale environment
// when the C runtime cannot be queried.
func fallbackNumberFormat() NumberFormat {
	for _, key := range []string{"LC_ALL", "LC_NUMERIC", "LANG"} {
		name := os.Getenv(key)
		if name == "" {
			continue
		}
		tag, ok := parseLocaleName(name)
		if !ok {
			// "C" or unparseable: the first non-empty variable wins
			return DefaultNumberFormat
		}
		return NumberFormatForLanguage(tag)
	}
	return DefaultNumberFormat
}
