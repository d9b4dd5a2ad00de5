package tsodbc

import (
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NumberFormat is the client-side numeric formatting applied to DOUBLE text.
type NumberFormat struct {
	// DecimalPoint is the single byte decimal separator.
	DecimalPoint byte
}

// DefaultNumberFormat uses '.' as decimal separator.
var DefaultNumberFormat = NumberFormat{DecimalPoint: '.'}

func (nf NumberFormat) point() byte {
	if nf.DecimalPoint == 0 {
		return '.'
	}
	return nf.DecimalPoint
}

// toClient replaces the first '.' with the client decimal point.
func (nf NumberFormat) toClient(s string) string {
	p := nf.point()
	if p == '.' {
		return s
	}
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return s[:i] + string(p) + s[i+1:]
	}
	return s
}

// toServer replaces the first client decimal point with '.'.
func (nf NumberFormat) toServer(s string) string {
	p := nf.point()
	if p == '.' {
		return s
	}
	if i := strings.IndexByte(s, p); i >= 0 {
		return s[:i] + "." + s[i+1:]
	}
	return s
}

// NumberFormatForLanguage derives the decimal separator CLDR uses for tag.
// Separators that are not a single ASCII byte fall back to '.'.
func NumberFormatForLanguage(tag language.Tag) NumberFormat {
	p := message.NewPrinter(tag)
	s := p.Sprintf("%.1f", 1.5)
	mid := strings.TrimSuffix(strings.TrimPrefix(s, "1"), "5")
	if len(mid) == 1 && mid[0] < 0x80 {
		return NumberFormat{DecimalPoint: mid[0]}
	}
	return DefaultNumberFormat
}

var (
	systemFormatOnce sync.Once
	systemFormat     NumberFormat
)

// SystemNumberFormat returns the numeric format of the process locale.
// The C library is consulted when it can be loaded, the environment otherwise.
func SystemNumberFormat() NumberFormat {
	systemFormatOnce.Do(func() {
		log := withComponent(nil, "locale")
		dp, err := nativeDecimalPoint()
		if err != nil {
			log.Debug("C library locale unavailable", "error", err)
			systemFormat = fallbackNumberFormat()
			return
		}
		systemFormat = NumberFormat{DecimalPoint: dp}
		log.Debug("decimal point from C library", "point", string(dp), "library", nativeLibPath)
	})
	return systemFormat
}

// parseLocaleName turns a POSIX locale name such as "de_DE.UTF-8@euro" into a language tag.
func parseLocaleName(name string) (language.Tag, bool) {
	if name == "" || name == "C" || name == "POSIX" {
		return language.Und, false
	}
	if i := strings.IndexAny(name, ".@"); i >= 0 {
		name = name[:i]
	}
	tag, err := language.Parse(strings.ReplaceAll(name, "_", "-"))
	if err != nil {
		return language.Und, false
	}
	return tag, true
}
