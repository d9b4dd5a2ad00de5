package tsodbc

import (
	"fmt"
	"strings"
	"time"
)

// Text rendering of the backend infinity markers.
const (
	infinityText      = "Infinity"
	minusInfinityText = "-Infinity"
)

func isDateTarget(t NativeType) bool { return t == CDate || t == CTypeDate }

func isTimeTarget(t NativeType) bool { return t == CTime || t == CTypeTime }

func isTimestampTarget(t NativeType) bool { return t == CTimestamp || t == CTypeTS }

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

// dateParts reads a backend DATE ("YYYY-MM-DD"). Missing fields stay zero.
func dateParts(s string) timeParts {
	var p timeParts
	vals, _ := scanLayout(s, "4-2-2")
	fields := []*int{&p.Year, &p.Month, &p.Day}
	for i, v := range vals {
		*fields[i] = v
	}
	return p
}

// scanTimestamp reads a backend TIME or TIMESTAMP value with an optional fraction,
// zone offset and BC suffix. The zone offset is ignored.
func scanTimestamp(s string) (timeParts, bool) {
	var p timeParts
	vals, rest := scanLayout(s, "4-2-2 2:2:2")
	switch {
	case len(vals) >= 6:
		p.Year, p.Month, p.Day = vals[0], vals[1], vals[2]
		p.Hour, p.Minute, p.Second = vals[3], vals[4], vals[5]
	case len(vals) == 3:
		p.Year, p.Month, p.Day = vals[0], vals[1], vals[2]
		return p, true
	default:
		vals, rest = scanLayout(s, "2:2:2")
		if len(vals) < 3 {
			return p, false
		}
		p.Hour, p.Minute, p.Second = vals[0], vals[1], vals[2]
	}

	frac, rest := scanWord(rest, 31)
	bc, _ := scanWord(rest, 15)
	if frac == "" {
		return p, true
	}
	switch frac[0] {
	case '+', '-':
	case '.':
		if i := strings.IndexAny(frac, "+-"); i >= 0 {
			frac = frac[:i]
		}
		p.Nanos = fractionNanos(frac)
	case 'B':
		if strings.EqualFold(frac, "BC") {
			p.Year = -p.Year
		}
		return p, true
	default:
		return p, true
	}
	if strings.EqualFold(bc, "BC") {
		p.Year = -p.Year
	}
	return p, true
}

// validTimeFormat accepts hh:mm, hh:mm:ss and hh:mm:ss.n up to nine fraction digits.
func validTimeFormat(s string) bool {
	sz := len(s)
	if sz > 18 {
		return false
	}
	if sz != 5 && sz != 8 && sz <= 9 {
		return false
	}
	for i := 0; i < sz; i++ {
		switch i {
		case 2, 5:
			if s[i] != ':' {
				return false
			}
		case 8:
			if s[i] != '.' {
				return false
			}
		default:
			if !isDigit(s[i]) {
				return false
			}
		}
	}
	return true
}

// validDatetimeFormat accepts yyyy, yyyy-mm, yyyy-mm-dd and timestamps truncated after the
// hour, minute, second or any fraction digit up to nine.
func validDatetimeFormat(s string) bool {
	sz := len(s)
	if sz > 29 {
		return false
	}
	switch {
	case sz == 4, sz == 7, sz == 10, sz == 13, sz == 16, sz == 19, sz > 20:
	default:
		return false
	}
	for i := 0; i < sz; i++ {
		switch i {
		case 4, 7:
			if s[i] != '-' {
				return false
			}
		case 10:
			if s[i] != ' ' {
				return false
			}
		case 13, 16:
			if s[i] != ':' {
				return false
			}
		case 19:
			if s[i] != '.' {
				return false
			}
		default:
			if !isDigit(s[i]) {
				return false
			}
		}
	}
	return true
}

// parseTimeText parses date, time and timestamp literals for a struct target.
// A DATE target loses a non-zero time of day and a TIME target a non-zero fraction;
// both are reported as fractional truncation.
func parseTimeText(s string, target NativeType) (timeParts, *Error, error) {
	switch {
	case validTimeFormat(s):
		if isDateTarget(target) {
			return timeParts{}, nil, errInvalidLiteral(s, target)
		}
		return parseClockText(s, target)
	case validDatetimeFormat(s):
		return parseDatetimeText(s, target)
	}
	return timeParts{}, nil, errInvalidLiteral(s, target)
}

func errInvalidLiteral(s string, target NativeType) *Error {
	return errInvalidFormat(fmt.Sprintf("%q is not a valid %s literal", s, target))
}

func parseClockText(s string, target NativeType) (timeParts, *Error, error) {
	var p timeParts
	vals, rest := scanLayout(s, "2:2:2")
	switch len(vals) {
	case 3:
		p.Hour, p.Minute, p.Second = vals[0], vals[1], vals[2]
	case 2:
		p.Hour, p.Minute = vals[0], vals[1]
		return p, nil, nil
	default:
		return p, nil, errInvalidLiteral(s, target)
	}
	return readFraction(p, nil, s, rest, target)
}

func parseDatetimeText(s string, target NativeType) (timeParts, *Error, error) {
	var p timeParts
	vals, rest := scanLayout(s, "4-2-2 2:2:2")
	n := len(vals)
	switch {
	case n == 0:
		return p, nil, errInvalidLiteral(s, target)
	case n < 4 && isTimeTarget(target):
		return p, nil, errInvalidLiteral(s, target)
	}
	p.Month, p.Day = 1, 1
	fields := []*int{&p.Year, &p.Month, &p.Day, &p.Hour, &p.Minute, &p.Second}
	for i, v := range vals {
		*fields[i] = v
	}

	var warn *Error
	if isDateTarget(target) && (p.Hour != 0 || p.Minute != 0 || p.Second != 0) {
		warn = warnFractionalTruncated()
	}
	if n < 6 {
		return p, warn, nil
	}
	return readFraction(p, warn, s, rest, target)
}

// readFraction consumes an optional ".fffffffff" after the seconds.
func readFraction(p timeParts, warn *Error, s, rest string, target NativeType) (timeParts, *Error, error) {
	frac, _ := scanWord(rest, 10)
	if frac == "" {
		return p, warn, nil
	}
	if frac[0] != '.' {
		return p, nil, errInvalidLiteral(s, target)
	}
	p.Nanos = fractionNanos(frac)
	if isTimeTarget(target) && p.Nanos != 0 {
		warn = warnFractionalTruncated()
	}
	return p, warn, nil
}

// timestampParts handles the infinity and invalid markers before parsing a timestamp literal.
func timestampParts(s string, target NativeType) (timeParts, *Error, error) {
	switch {
	case hasPrefixFold(s, "-infinity"):
		return timeParts{Year: -9999, Month: 1, Day: 1, Infinity: -1}, nil, nil
	case hasPrefixFold(s, "infinity"):
		return timeParts{Year: 9999, Month: 12, Day: 31, Hour: 23, Minute: 59, Second: 59, Infinity: 1}, nil, nil
	case hasPrefixFold(s, "invalid"):
		epoch := time.Unix(0, 0).UTC()
		return timeParts{Year: epoch.Year(), Month: int(epoch.Month()), Day: epoch.Day()}, nil, nil
	}
	return parseTimeText(s, target)
}

// backendTimeParts reads the date and time fields of a backend value for a struct target.
func backendTimeParts(text string, bt BackendType, target NativeType) (timeParts, *Error, error) {
	switch bt {
	case TypeDate:
		return dateParts(text), nil, nil
	case TypeTime:
		p, _ := scanTimestamp(text)
		return p, nil, nil
	case TypeTimestamp:
		return timestampParts(text, target)
	case TypeVarchar, TypeUnknown:
		trimmed := strings.TrimSpace(text)
		if isTimestampTarget(target) {
			return timestampParts(trimmed, target)
		}
		return parseTimeText(trimmed, target)
	}
	return timeParts{}, nil, errUnsupported(fmt.Sprintf("cannot convert %s to %s", bt, target))
}

func (e *Engine) convertDatetime(text string, bt BackendType, target NativeType, buf []byte) (Result, error) {
	if (isDateTarget(target) && bt == TypeTime) || (isTimeTarget(target) && bt == TypeDate) {
		return Result{}, errUnsupported(fmt.Sprintf("cannot convert %s to %s", bt, target))
	}
	p, warn, err := backendTimeParts(text, bt, target)
	if err != nil {
		return Result{}, err
	}

	var (
		value any
		width int
		enc   func([]byte)
	)
	switch {
	case isDateTarget(target):
		d := p.withDefaults().date()
		value, width, enc = d, dateStructSize, d.encode
	case isTimeTarget(target):
		t := p.clock()
		value, width, enc = t, timeStructSize, t.encode
	default:
		ts := p.withDefaults().timestamp()
		value, width, enc = ts, timestampStructSize, ts.encode
	}
	n, err := writeFixed(buf, width, enc)
	if err != nil {
		return Result{}, err
	}
	return Result{Value: value, Length: int64(width), Written: n, Warning: warn}, nil
}
