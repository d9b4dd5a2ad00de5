package tsodbc

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Default and maximum interval seconds precision.
const (
	defaultIntervalPrecision = 6
	maxIntervalPrecision     = 9
)

// Interval literal shapes, tried in order.
var (
	ymDashRe   = regexp.MustCompile(`^(-?\d+)-(\d+)$`)
	dayClockRe = regexp.MustCompile(`^(-?\d+) (-?\d{1,2}):(\d{1,2}):(\d{1,2})(?:\.(\d+))?$`)
	ymWordsRe  = regexp.MustCompile(`(?i)^(-?\d+)\s+years?\s+(-?\d+)\s+mons?$`)
	singleRe   = regexp.MustCompile(`(?i)^(-?\d+)\s+(years?|mons?|days?)$`)
	daysTimeRe = regexp.MustCompile(`(?i)^(-?\d+)\s+days?\s+(-?\d{1,2}):(\d{1,2}):(\d{1,2})(?:\.(\d+))?$`)
	clockRe    = regexp.MustCompile(`^(-?\d{1,2}):(\d{1,2}):(\d{1,2})(?:\.(\d+))?$`)
)

// precisionPart turns fraction digits into an integer of precision digits by
// truncating or right-padding the literal digits.
func precisionPart(precision int, digits string) uint32 {
	if precision < 0 {
		precision = defaultIntervalPrecision
	}
	if precision == 0 {
		return 0
	}
	if precision > maxIntervalPrecision {
		precision = maxIntervalPrecision
	}
	if len(digits) > precision {
		digits = digits[:precision]
	}
	v, _ := strconv.ParseUint(digits+strings.Repeat("0", precision-len(digits)), 10, 32)
	return uint32(v)
}

func atoi(s string) int {
	v, _ := strconv.Atoi(s)
	return v
}

func abs32(v int) uint32 {
	if v < 0 {
		return uint32(-v)
	}
	return uint32(v)
}

func boolSign(neg bool) int16 {
	if neg {
		return sqlTrue
	}
	return sqlFalse
}

// parseInterval reads an interval literal into the struct for kind.
func parseInterval(s string, kind IntervalKind, precision int) (IntervalStruct, bool) {
	iv := IntervalStruct{Kind: kind}

	if m := ymDashRe.FindStringSubmatch(s); m != nil {
		if kind != IsYearToMonth {
			return iv, false
		}
		neg := strings.HasPrefix(s, "-")
		iv.Sign = boolSign(neg)
		iv.YearMonth = YearMonth{Year: abs32(atoi(m[1])), Month: abs32(atoi(m[2]))}
		return iv, true
	}
	if m := dayClockRe.FindStringSubmatch(s); m != nil {
		neg := strings.HasPrefix(s, "-")
		iv.Sign = boolSign(neg)
		iv.DaySecond = DaySecond{
			Day:      abs32(atoi(m[1])),
			Hour:     abs32(atoi(m[2])),
			Minute:   uint32(atoi(m[3])),
			Second:   uint32(atoi(m[4])),
			Fraction: precisionPart(precision, m[5]),
		}
		return iv, true
	}
	if m := ymWordsRe.FindStringSubmatch(s); m != nil {
		if kind != IsMonth && kind != IsYearToMonth {
			return iv, false
		}
		years := atoi(m[1])
		iv.Sign = boolSign(years < 0)
		iv.YearMonth = YearMonth{Year: abs32(years), Month: abs32(atoi(m[2]))}
		return iv, true
	}
	if m := singleRe.FindStringSubmatch(s); m != nil {
		n := atoi(m[1])
		iv.Sign = boolSign(n < 0)
		unit := strings.ToLower(m[2])
		switch {
		case kind == IsYear && strings.HasPrefix(unit, "year"):
			iv.YearMonth.Year = abs32(n)
		case kind == IsMonth && strings.HasPrefix(unit, "mon"):
			iv.YearMonth.Month = abs32(n)
		case kind == IsDay && strings.HasPrefix(unit, "day"):
			iv.DaySecond.Day = abs32(n)
		default:
			return iv, false
		}
		return iv, true
	}
	if kind.yearMonth() {
		return iv, false
	}
	if m := daysTimeRe.FindStringSubmatch(s); m != nil {
		days := atoi(m[1])
		iv.Sign = boolSign(days < 0)
		iv.DaySecond = DaySecond{
			Day:      abs32(days),
			Hour:     abs32(atoi(m[2])),
			Minute:   uint32(atoi(m[3])),
			Second:   uint32(atoi(m[4])),
			Fraction: precisionPart(precision, m[5]),
		}
		return iv, true
	}
	if m := clockRe.FindStringSubmatch(s); m != nil {
		iv.Sign = boolSign(strings.HasPrefix(s, "-"))
		iv.DaySecond = DaySecond{
			Hour:     abs32(atoi(m[1])),
			Minute:   uint32(atoi(m[2])),
			Second:   uint32(atoi(m[3])),
			Fraction: precisionPart(precision, m[4]),
		}
		return iv, true
	}
	return iv, false
}

func convertInterval(text string, target NativeType, precision int, buf []byte) (Result, error) {
	kind := intervalKindOf(target)
	iv, ok := parseInterval(strings.TrimSpace(text), kind, precision)
	if !ok {
		return Result{}, errInvalidFormat(fmt.Sprintf("%q is not a valid %s literal", text, target))
	}
	n, err := writeFixed(buf, intervalStructSize, iv.encode)
	if err != nil {
		return Result{}, err
	}
	return Result{Value: iv, Length: intervalStructSize, Written: n}, nil
}

// intervalText renders an interval struct in the literal shape the backend produces.
// precision is the number of digits the fraction was bound with.
func intervalText(iv IntervalStruct, precision int) string {
	sign := ""
	if iv.Sign != 0 {
		sign = "-"
	}
	switch iv.Kind {
	case IsYear:
		return fmt.Sprintf("%s%d years", sign, iv.YearMonth.Year)
	case IsMonth:
		return fmt.Sprintf("%s%d mons", sign, iv.YearMonth.Month)
	case IsYearToMonth:
		return fmt.Sprintf("%s%d-%d", sign, iv.YearMonth.Year, iv.YearMonth.Month)
	}
	if precision < 0 {
		precision = defaultIntervalPrecision
	}
	if precision > maxIntervalPrecision {
		precision = maxIntervalPrecision
	}
	ds := iv.DaySecond
	if precision == 0 {
		return fmt.Sprintf("%s%d %.2d:%.2d:%.2d", sign, ds.Day, ds.Hour, ds.Minute, ds.Second)
	}
	return fmt.Sprintf("%s%d %.2d:%.2d:%.2d.%0*d", sign, ds.Day, ds.Hour, ds.Minute, ds.Second, precision, ds.Fraction)
}
