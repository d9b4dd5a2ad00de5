package tsodbc

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unsafe"

	"golang.org/x/exp/constraints"
)

// Maximum digits collected into a numeric struct before further digits only scale.
const numericDigitCap = maxNumericLen * 3

func (e *Engine) convertNumeric(text string, target NativeType, buf []byte) (Result, error) {
	switch target {
	case CBit:
		return convertIntegral[uint8](text, target, buf)
	case CTinyInt, CSTinyInt:
		return convertIntegral[int8](text, target, buf)
	case CUTinyInt:
		return convertIntegral[uint8](text, target, buf)
	case CShort, CSShort:
		return convertIntegral[int16](text, target, buf)
	case CUShort:
		return convertIntegral[uint16](text, target, buf)
	case CLong, CSLong:
		return convertIntegral[int32](text, target, buf)
	case CULong:
		return convertIntegral[uint32](text, target, buf)
	case CSBigInt:
		return convertIntegral[int64](text, target, buf)
	case CUBigInt:
		return convertIntegral[uint64](text, target, buf)
	case CFloat, CDouble:
		return e.convertFloat(text, target, buf)
	case CNumeric:
		return convertNumericStruct(text, buf)
	}
	return Result{}, errUnsupported(fmt.Sprintf("%s is not numeric", target))
}

func convertIntegral[T constraints.Integer](text string, target NativeType, buf []byte) (Result, error) {
	v, warn, err := parseIntegral[T](text)
	if err != nil {
		return Result{}, err
	}
	if target == CBit && v > 1 {
		return Result{}, errOverflow(fmt.Sprintf("%q is out of range for %s", text, target))
	}
	width := int(unsafe.Sizeof(v))
	n, err := writeFixed(buf, width, func(b []byte) { putIntegral(b, v) })
	if err != nil {
		return Result{}, err
	}
	return Result{Value: v, Length: int64(width), Written: n, Warning: warn}, nil
}

// parseIntegral trims s, requires the whole of it to be numeric and converts its leading
// integer part to T. An out-of-range value fails with NumericValueOutOfRange and a
// non-zero fraction is reported as a fractional truncation warning.
func parseIntegral[T constraints.Integer](s string) (T, *Error, error) {
	var zero T
	trimmed := strings.TrimSpace(s)
	if !isNumericText(trimmed) {
		return zero, nil, errInvalidFormat(fmt.Sprintf("%q is not a number", s))
	}
	neg, mag, rest, ok := leadingInteger(trimmed)
	if !ok || !integralFits[T](neg, mag) {
		return zero, nil, errOverflow(fmt.Sprintf("%q is out of range for %d byte integer", s, unsafe.Sizeof(zero)))
	}
	warn, err := checkFractionalRemainder(rest)
	if err != nil {
		return zero, nil, err
	}
	var v T
	if neg {
		v = T(-int64(mag))
	} else {
		v = T(mag)
	}
	return v, warn, nil
}

// integralFits reports whether the value with sign neg and magnitude mag is representable in T.
func integralFits[T constraints.Integer](neg bool, mag uint64) bool {
	var zero T
	bits := uint(unsafe.Sizeof(zero)) * 8
	signed := zero-1 < 0
	if !signed {
		if neg {
			return mag == 0
		}
		return bits == 64 || mag <= (uint64(1)<<bits)-1
	}
	limit := uint64(1) << (bits - 1)
	if neg {
		return mag <= limit
	}
	return mag < limit
}

// leadingInteger parses the [+-]?digits prefix of s like strtol: no digits yields 0.
// ok is false when the magnitude does not fit in 64 bits.
func leadingInteger(s string) (neg bool, mag uint64, rest string, ok bool) {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	start := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == start {
		return false, 0, s, true
	}
	mag, err := strconv.ParseUint(s[start:i], 10, 64)
	if err != nil {
		return neg, math.MaxUint64, s[i:], false
	}
	return neg, mag, s[i:], true
}

// checkFractionalRemainder classifies what follows the integer part of a numeric literal:
// nothing or a '.' followed only by zeros is exact, any other fraction is a truncation
// warning and anything that does not start with '.' is not a valid integer.
func checkFractionalRemainder(rest string) (*Error, error) {
	if rest == "" {
		return nil, nil
	}
	if rest[0] != '.' {
		return nil, errInvalidFormat(fmt.Sprintf("unexpected %q after integer", rest))
	}
	if strings.Trim(rest[1:], "0") != "" {
		return warnFractionalTruncated(), nil
	}
	return nil, nil
}

func putIntegral[T constraints.Integer](b []byte, v T) {
	switch unsafe.Sizeof(v) {
	case 1:
		b[0] = byte(v)
	case 2:
		le.PutUint16(b, uint16(v))
	case 4:
		le.PutUint32(b, uint32(v))
	default:
		le.PutUint64(b, uint64(v))
	}
}

func (e *Engine) convertFloat(text string, target NativeType, buf []byte) (Result, error) {
	trimmed := strings.TrimSpace(text)
	if !isNumericText(trimmed) {
		return Result{}, errInvalidFormat(fmt.Sprintf("%q is not a number", text))
	}
	bitSize := 64
	if target == CFloat {
		bitSize = 32
	}
	f, err := strconv.ParseFloat(e.numfmt.toServer(trimmed), bitSize)
	if errors.Is(err, strconv.ErrRange) && math.IsInf(f, 0) {
		return Result{}, errOverflow(fmt.Sprintf("%q is out of range for %s", text, target))
	}
	if target == CFloat {
		v := float32(f)
		n, err := writeFixed(buf, 4, func(b []byte) { le.PutUint32(b, math.Float32bits(v)) })
		if err != nil {
			return Result{}, err
		}
		return Result{Value: v, Length: 4, Written: n}, nil
	}
	n, err := writeFixed(buf, 8, func(b []byte) { le.PutUint64(b, math.Float64bits(f)) })
	if err != nil {
		return Result{}, err
	}
	return Result{Value: f, Length: 8, Written: n}, nil
}

func convertNumericStruct(text string, buf []byte) (Result, error) {
	ns, overflow := parseNumericStruct(text)
	n, err := writeFixed(buf, numericStructSize, ns.encode)
	if err != nil {
		return Result{}, err
	}
	res := Result{Value: ns, Length: numericStructSize, Written: n}
	if overflow {
		res.Warning = warnStringTruncated()
	}
	return res, nil
}

// parseNumericStruct accumulates the decimal digits of s into a little-endian base-256 value.
// Digits beyond the collection cap and carries out of the value array set overflow;
// parsing carries on either way so precision and scale stay meaningful.
func parseNumericStruct(s string) (NumericStruct, bool) {
	var ns NumericStruct
	overflow := false

	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	ns.Sign = 1
	if i < len(s) && s[i] == '-' {
		ns.Sign = 0
		i++
	} else if i < len(s) && s[i] == '+' {
		i++
	}
	for i < len(s) && s[i] == '0' {
		i++
	}

	digits := make([]byte, 0, numericDigitCap)
	dot := false
	for ; i < len(s); i++ {
		c := s[i]
		if c == '.' {
			if dot {
				break
			}
			dot = true
			continue
		}
		if !isDigit(c) {
			break
		}
		if len(digits) >= numericDigitCap {
			if dot {
				break
			}
			ns.Scale--
			overflow = true
			continue
		}
		if dot {
			ns.Scale++
		}
		digits = append(digits, c)
	}
	ns.Precision = uint8(len(digits))

	for _, d := range digits {
		carry := uint32(d - '0')
		for j := range ns.Val {
			t := uint32(ns.Val[j])*10 + carry
			ns.Val[j] = byte(t)
			carry = t >> 8
		}
		if carry != 0 {
			overflow = true
		}
	}
	return ns, overflow
}

// numericText renders a numeric struct back to a decimal literal.
func numericText(ns NumericStruct) string {
	val := ns.Val
	var digits []byte
	for {
		zero := true
		rem := uint32(0)
		for j := len(val) - 1; j >= 0; j-- {
			t := rem<<8 | uint32(val[j])
			val[j] = byte(t / 10)
			rem = t % 10
			if val[j] != 0 {
				zero = false
			}
		}
		digits = append(digits, byte('0'+rem))
		if zero {
			break
		}
	}
	for l, r := 0, len(digits)-1; l < r; l, r = l+1, r-1 {
		digits[l], digits[r] = digits[r], digits[l]
	}

	scale := int(ns.Scale)
	var b strings.Builder
	if ns.Sign == 0 {
		b.WriteByte('-')
	}
	switch {
	case scale <= 0:
		b.Write(digits)
		for ; scale < 0; scale++ {
			b.WriteByte('0')
		}
	case scale >= len(digits):
		b.WriteString("0.")
		b.WriteString(strings.Repeat("0", scale-len(digits)))
		b.Write(digits)
	default:
		b.Write(digits[:len(digits)-scale])
		b.WriteByte('.')
		b.Write(digits[len(digits)-scale:])
	}
	return b.String()
}
