package tsodbc

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// defaultParameterType is the native type SQL_C_DEFAULT means for a parameter of SQL type t.
func (c *TypeCatalog) defaultParameterType(t SQLType) NativeType {
	switch t {
	case SQLBit:
		return CBit
	case SQLTinyint:
		return CSTinyInt
	case SQLSmallint:
		return CSShort
	case SQLInteger:
		return CSLong
	case SQLBigint:
		return CSBigInt
	case SQLReal:
		return CFloat
	case SQLFloat, SQLDouble:
		return CDouble
	case SQLNumeric:
		return CNumeric
	case SQLTypeDate:
		return CTypeDate
	case SQLTypeTime:
		return CTypeTime
	case SQLTypeTimestamp:
		return CTypeTS
	case SQLGUID:
		return CGUID
	}
	if t >= 101 && t <= 113 {
		return NativeType(t)
	}
	if c.Unicode {
		return CWChar
	}
	return CChar
}

func isNumericSQLType(t SQLType) bool {
	switch t {
	case SQLNumeric, SQLInteger, SQLSmallint, SQLFloat, SQLReal, SQLDouble, SQLBigint, SQLTinyint:
		return true
	}
	return false
}

// ParameterText renders a bound parameter buffer back into backend text.
// length is the StrLen_or_Ind value: SQL_NULL_DATA, SQL_NTS or a byte count for
// variable-length buffers. Client decimal points are turned back into '.' for numeric SQL types.
func (e *Engine) ParameterText(slot Slot, length int64, sqlType SQLType) (ValueText, error) {
	if length == NullData {
		return NullValue, nil
	}
	t := slot.Type
	if t == CDefault {
		t = e.catalog.defaultParameterType(sqlType)
	}
	if !t.Known() {
		return ValueText{}, errUnsupported(fmt.Sprintf("unknown native type %d", int16(t)))
	}

	if t == CChar || t == CWChar || t == CBinary {
		raw, err := variableBytes(slot.Buffer, length, t)
		if err != nil {
			return ValueText{}, err
		}
		s := string(raw)
		if t == CWChar {
			if s, err = decodeWide(raw); err != nil {
				perr := errInvalidFormat("parameter is not valid UTF-16")
				perr.Err = err
				return ValueText{}, perr
			}
		}
		if isNumericSQLType(sqlType) {
			s = e.numfmt.toServer(strings.TrimSpace(s))
		}
		return Text(s), nil
	}

	width := t.Width()
	if len(slot.Buffer) < width {
		return ValueText{}, NewError(ErrGeneric, CodeGeneralError,
			fmt.Sprintf("parameter buffer of %d bytes cannot hold %s", len(slot.Buffer), t))
	}
	b := slot.Buffer[:width]

	var s string
	switch t {
	case CBit, CUTinyInt:
		s = strconv.FormatUint(uint64(b[0]), 10)
	case CTinyInt, CSTinyInt:
		s = strconv.FormatInt(int64(int8(b[0])), 10)
	case CShort, CSShort:
		s = strconv.FormatInt(int64(int16(le.Uint16(b))), 10)
	case CUShort:
		s = strconv.FormatUint(uint64(le.Uint16(b)), 10)
	case CLong, CSLong:
		s = strconv.FormatInt(int64(int32(le.Uint32(b))), 10)
	case CULong:
		s = strconv.FormatUint(uint64(le.Uint32(b)), 10)
	case CSBigInt:
		s = strconv.FormatInt(int64(le.Uint64(b)), 10)
	case CUBigInt:
		s = strconv.FormatUint(le.Uint64(b), 10)
	case CFloat:
		s = strconv.FormatFloat(float64(math.Float32frombits(le.Uint32(b))), 'g', -1, 32)
	case CDouble:
		s = strconv.FormatFloat(math.Float64frombits(le.Uint64(b)), 'g', -1, 64)
	case CNumeric:
		s = numericText(decodeNumeric(b))
	case CGUID:
		s = decodeGUID(b).String()
	case CDate, CTypeDate:
		s = decodeDate(b).String()
	case CTime, CTypeTime:
		s = decodeTime(b).String()
	case CTimestamp, CTypeTS:
		s = decodeTimestamp(b).String()
	default:
		if !t.IsInterval() {
			return ValueText{}, errUnsupported(fmt.Sprintf("%s is not supported for parameters", t))
		}
		s = intervalText(decodeInterval(b), int(slot.Precision))
	}
	return Text(s), nil
}

// variableBytes cuts a character or binary parameter buffer to its effective length.
func variableBytes(buf []byte, length int64, t NativeType) ([]byte, error) {
	switch {
	case length == NTS:
		if t == CBinary {
			return nil, NewError(ErrGeneric, CodeGeneralError, "SQL_NTS is not valid for binary parameters")
		}
		return untilTerminator(buf, t), nil
	case length < 0:
		return nil, NewError(ErrGeneric, CodeGeneralError, fmt.Sprintf("invalid parameter length %d", length))
	case length > int64(len(buf)):
		return nil, NewError(ErrGeneric, CodeGeneralError,
			fmt.Sprintf("parameter length %d exceeds buffer of %d bytes", length, len(buf)))
	}
	return buf[:length], nil
}

// untilTerminator returns buf up to its first NUL character.
func untilTerminator(buf []byte, t NativeType) []byte {
	if t != CWChar {
		if i := bytes.IndexByte(buf, 0); i >= 0 {
			return buf[:i]
		}
		return buf
	}
	for i := 0; i+1 < len(buf); i += wcharLen {
		if buf[i] == 0 && buf[i+1] == 0 {
			return buf[:i]
		}
	}
	return buf[:len(buf)-len(buf)%wcharLen]
}
