package tsodbc

import (
	"fmt"
	"strings"
	"time"
)

// DateStructFromTime converts a Go time.Time to a DATE_STRUCT.
func DateStructFromTime(t time.Time) DateStruct {
	return DateStruct{Year: int16(t.Year()), Month: uint16(t.Month()), Day: uint16(t.Day())}
}

// Time converts the date to midnight UTC.
func (d DateStruct) Time() time.Time {
	return time.Date(int(d.Year), time.Month(d.Month), int(d.Day), 0, 0, 0, 0, time.UTC)
}

// String renders the date as YYYY-MM-DD.
func (d DateStruct) String() string {
	return formatDate(int(d.Year), int(d.Month), int(d.Day))
}

// TimeStructFromTime converts the clock of a Go time.Time to a TIME_STRUCT.
func TimeStructFromTime(t time.Time) TimeStruct {
	hour, minute, sec := t.Clock()
	return TimeStruct{Hour: uint16(hour), Minute: uint16(minute), Second: uint16(sec)}
}

// Time places the clock on 1970-01-01 UTC.
func (t TimeStruct) Time() time.Time {
	return time.Date(1970, time.January, 1, int(t.Hour), int(t.Minute), int(t.Second), 0, time.UTC)
}

// String renders the time as HH:MM:SS.
func (t TimeStruct) String() string {
	return fmt.Sprintf("%.2d:%.2d:%.2d", t.Hour, t.Minute, t.Second)
}

// TimestampStructFromTime converts a Go time.Time to a TIMESTAMP_STRUCT.
func TimestampStructFromTime(t time.Time) TimestampStruct {
	hour, minute, sec := t.Clock()
	return TimestampStruct{
		Year:     int16(t.Year()),
		Month:    uint16(t.Month()),
		Day:      uint16(t.Day()),
		Hour:     uint16(hour),
		Minute:   uint16(minute),
		Second:   uint16(sec),
		Fraction: uint32(t.Nanosecond()),
	}
}

// Time converts the timestamp to a UTC time.Time.
func (ts TimestampStruct) Time() time.Time {
	return time.Date(int(ts.Year), time.Month(ts.Month), int(ts.Day),
		int(ts.Hour), int(ts.Minute), int(ts.Second), int(ts.Fraction), time.UTC)
}

// String renders the canonical YYYY-MM-DD HH:MM:SS.fffffffff form.
func (ts TimestampStruct) String() string {
	return timeParts{
		Year: int(ts.Year), Month: int(ts.Month), Day: int(ts.Day),
		Hour: int(ts.Hour), Minute: int(ts.Minute), Second: int(ts.Second), Nanos: int(ts.Fraction),
	}.timestampText()
}

// timeParts is a loosely validated broken-down date and time as read from backend text.
type timeParts struct {
	Year, Month, Day     int
	Hour, Minute, Second int
	Nanos                int
	// Infinity is 1 or -1 for the backend infinity markers.
	Infinity int
}

func formatDate(y, m, d int) string {
	return fmt.Sprintf("%.4d-%.2d-%.2d", y, m, d)
}

func (p timeParts) dateText() string {
	return formatDate(p.Year, p.Month, p.Day)
}

func (p timeParts) timeText() string {
	return fmt.Sprintf("%.2d:%.2d:%.2d.%09d", p.Hour, p.Minute, p.Second, p.Nanos)
}

func (p timeParts) timestampText() string {
	switch {
	case p.Infinity > 0:
		return infinityText
	case p.Infinity < 0:
		return minusInfinityText
	}
	if p.Year < 0 {
		return fmt.Sprintf("%.4d-%.2d-%.2d %.2d:%.2d:%.2d.%09d BC",
			-p.Year, p.Month, p.Day, p.Hour, p.Minute, p.Second, p.Nanos)
	}
	return fmt.Sprintf("%.4d-%.2d-%.2d %.2d:%.2d:%.2d.%09d",
		p.Year, p.Month, p.Day, p.Hour, p.Minute, p.Second, p.Nanos)
}

// withDefaults fills zero month and day with 1. The year is kept as parsed.
func (p timeParts) withDefaults() timeParts {
	if p.Month == 0 {
		p.Month = 1
	}
	if p.Day == 0 {
		p.Day = 1
	}
	return p
}

func (p timeParts) date() DateStruct {
	return DateStruct{Year: int16(p.Year), Month: uint16(p.Month), Day: uint16(p.Day)}
}

func (p timeParts) clock() TimeStruct {
	return TimeStruct{Hour: uint16(p.Hour), Minute: uint16(p.Minute), Second: uint16(p.Second)}
}

func (p timeParts) timestamp() TimestampStruct {
	return TimestampStruct{
		Year: int16(p.Year), Month: uint16(p.Month), Day: uint16(p.Day),
		Hour: uint16(p.Hour), Minute: uint16(p.Minute), Second: uint16(p.Second),
		Fraction: uint32(p.Nanos),
	}
}

// scanLayout reads integers out of s the way sscanf does with %Nd conversions.
// Each digit in layout is a field of at most that many characters (sign included),
// a space matches any run of whitespace and any other byte must match literally.
// Scanning stops at the first mismatch; the fields read so far and the unread rest are returned.
func scanLayout(s, layout string) ([]int, string) {
	vals := make([]int, 0, len(layout))
	pos := 0
	for i := 0; i < len(layout); i++ {
		c := layout[i]
		switch {
		case c >= '1' && c <= '9':
			v, n, ok := scanInt(s[pos:], int(c-'0'))
			if !ok {
				return vals, s[pos:]
			}
			vals = append(vals, v)
			pos += n
		case c == ' ':
			pos += len(s[pos:]) - len(strings.TrimLeft(s[pos:], " \t\n\v\f\r"))
		default:
			if pos >= len(s) || s[pos] != c {
				return vals, s[pos:]
			}
			pos++
		}
	}
	return vals, s[pos:]
}

// scanInt reads one %Nd field: leading whitespace, an optional sign and up to width characters.
func scanInt(s string, width int) (int, int, bool) {
	pos := len(s) - len(strings.TrimLeft(s, " \t\n\v\f\r"))
	start := pos
	neg := false
	if pos < len(s) && (s[pos] == '-' || s[pos] == '+') {
		neg = s[pos] == '-'
		pos++
	}
	digits := 0
	v := 0
	for pos < len(s) && pos-start < width && s[pos] >= '0' && s[pos] <= '9' {
		v = v*10 + int(s[pos]-'0')
		pos++
		digits++
	}
	if digits == 0 {
		return 0, 0, false
	}
	if neg {
		v = -v
	}
	return v, pos, true
}

// scanWord reads one %Ns field: leading whitespace then up to width non-space bytes.
func scanWord(s string, width int) (string, string) {
	s = strings.TrimLeft(s, " \t\n\v\f\r")
	end := 0
	for end < len(s) && end < width && !isSpace(s[end]) {
		end++
	}
	return s[:end], s[end:]
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// fractionNanos reads up to nine digits after a leading '.' and right-pads them to nanoseconds.
func fractionNanos(rest string) int {
	if !strings.HasPrefix(rest, ".") {
		return 0
	}
	v, i := 0, 1
	for ; i < 10 && i < len(rest) && isDigit(rest[i]); i++ {
		v = v*10 + int(rest[i]-'0')
	}
	for ; i < 10; i++ {
		v *= 10
	}
	return v
}
