package tsodbc

import (
	"encoding/binary"
	"fmt"
)

// NativeType is an application buffer type code (SQL_C_*).
type NativeType int16

// Application buffer types. The values are the interface's C type codes.
const (
	CChar      NativeType = 1
	CWChar     NativeType = -8
	CBinary    NativeType = -2
	CBit       NativeType = -7
	CTinyInt   NativeType = -6
	CSTinyInt  NativeType = -26
	CUTinyInt  NativeType = -28
	CShort     NativeType = 5
	CSShort    NativeType = -15
	CUShort    NativeType = -17
	CLong      NativeType = 4
	CSLong     NativeType = -16
	CULong     NativeType = -18
	CSBigInt   NativeType = -25
	CUBigInt   NativeType = -27
	CFloat     NativeType = 7
	CDouble    NativeType = 8
	CNumeric   NativeType = 2
	CGUID      NativeType = -11
	CDate      NativeType = 9
	CTime      NativeType = 10
	CTimestamp NativeType = 11
	CTypeDate  NativeType = 91
	CTypeTime  NativeType = 92
	CTypeTS    NativeType = 93
	CDefault   NativeType = 99

	CIntervalYear           NativeType = 101
	CIntervalMonth          NativeType = 102
	CIntervalDay            NativeType = 103
	CIntervalHour           NativeType = 104
	CIntervalMinute         NativeType = 105
	CIntervalSecond         NativeType = 106
	CIntervalYearToMonth    NativeType = 107
	CIntervalDayToHour      NativeType = 108
	CIntervalDayToMinute    NativeType = 109
	CIntervalDayToSecond    NativeType = 110
	CIntervalHourToMinute   NativeType = 111
	CIntervalHourToSecond   NativeType = 112
	CIntervalMinuteToSecond NativeType = 113
)

// Indicator values.
const (
	NullData int64 = -1
	NTS      int64 = -3
	NoTotal  int64 = -4
)

// Fixed struct widths.
const (
	dateStructSize      = 6
	timeStructSize      = 6
	timestampStructSize = 16
	numericStructSize   = 19
	guidSize            = 16
	intervalStructSize  = 28
	maxNumericLen       = 16
)

var nativeTypeNames = map[NativeType]string{
	CChar: "SQL_C_CHAR", CWChar: "SQL_C_WCHAR", CBinary: "SQL_C_BINARY", CBit: "SQL_C_BIT",
	CTinyInt: "SQL_C_TINYINT", CSTinyInt: "SQL_C_STINYINT", CUTinyInt: "SQL_C_UTINYINT",
	CShort: "SQL_C_SHORT", CSShort: "SQL_C_SSHORT", CUShort: "SQL_C_USHORT",
	CLong: "SQL_C_LONG", CSLong: "SQL_C_SLONG", CULong: "SQL_C_ULONG",
	CSBigInt: "SQL_C_SBIGINT", CUBigInt: "SQL_C_UBIGINT",
	CFloat: "SQL_C_FLOAT", CDouble: "SQL_C_DOUBLE", CNumeric: "SQL_C_NUMERIC", CGUID: "SQL_C_GUID",
	CDate: "SQL_C_DATE", CTime: "SQL_C_TIME", CTimestamp: "SQL_C_TIMESTAMP",
	CTypeDate: "SQL_C_TYPE_DATE", CTypeTime: "SQL_C_TYPE_TIME", CTypeTS: "SQL_C_TYPE_TIMESTAMP",
	CDefault:      "SQL_C_DEFAULT",
	CIntervalYear: "SQL_C_INTERVAL_YEAR", CIntervalMonth: "SQL_C_INTERVAL_MONTH",
	CIntervalDay: "SQL_C_INTERVAL_DAY", CIntervalHour: "SQL_C_INTERVAL_HOUR",
	CIntervalMinute: "SQL_C_INTERVAL_MINUTE", CIntervalSecond: "SQL_C_INTERVAL_SECOND",
	CIntervalYearToMonth: "SQL_C_INTERVAL_YEAR_TO_MONTH", CIntervalDayToHour: "SQL_C_INTERVAL_DAY_TO_HOUR",
	CIntervalDayToMinute: "SQL_C_INTERVAL_DAY_TO_MINUTE", CIntervalDayToSecond: "SQL_C_INTERVAL_DAY_TO_SECOND",
	CIntervalHourToMinute: "SQL_C_INTERVAL_HOUR_TO_MINUTE", CIntervalHourToSecond: "SQL_C_INTERVAL_HOUR_TO_SECOND",
	CIntervalMinuteToSecond: "SQL_C_INTERVAL_MINUTE_TO_SECOND",
}

// String returns the interface name of the type.
func (t NativeType) String() string {
	if name, ok := nativeTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("NativeType(%d)", int16(t))
}

// Known reports whether t is one of the supported application buffer types.
func (t NativeType) Known() bool {
	_, ok := nativeTypeNames[t]
	return ok
}

// Width returns the fixed byte width of the type, or 0 when the buffer length governs.
func (t NativeType) Width() int {
	switch t {
	case CChar, CWChar, CBinary, CDefault:
		return 0
	case CBit, CTinyInt, CSTinyInt, CUTinyInt:
		return 1
	case CShort, CSShort, CUShort:
		return 2
	case CLong, CSLong, CULong, CFloat:
		return 4
	case CSBigInt, CUBigInt, CDouble:
		return 8
	case CDate, CTypeDate:
		return dateStructSize
	case CTime, CTypeTime:
		return timeStructSize
	case CTimestamp, CTypeTS:
		return timestampStructSize
	case CNumeric:
		return numericStructSize
	case CGUID:
		return guidSize
	}
	if t.IsInterval() {
		return intervalStructSize
	}
	return 0
}

// IsInterval reports whether t is one of the interval struct types.
func (t NativeType) IsInterval() bool {
	return t >= CIntervalYear && t <= CIntervalMinuteToSecond
}

// isText reports whether t is delivered through the text/binary copy path.
func (t NativeType) isText() bool {
	return t == CChar || t == CWChar || t == CBinary
}

// isNumeric reports whether t is a numeric C type.
func (t NativeType) isNumeric() bool {
	switch t {
	case CBit, CTinyInt, CSTinyInt, CUTinyInt, CShort, CSShort, CUShort,
		CLong, CSLong, CULong, CSBigInt, CUBigInt, CFloat, CDouble, CNumeric:
		return true
	}
	return false
}

// verbose returns the verbose type and datetime/interval subcode for a concise C type.
func (t NativeType) verbose() (typ int16, code int16) {
	switch t {
	case CTypeDate, CDate:
		return sqlDatetime, codeDate
	case CTypeTime, CTime:
		return sqlDatetime, codeTime
	case CTypeTS, CTimestamp:
		return sqlDatetime, codeTimestamp
	}
	if t.IsInterval() {
		return sqlInterval, int16(t - 100)
	}
	return int16(t), 0
}

// nativeFromVerbose is the inverse of verbose.
func nativeFromVerbose(typ, code int16) (NativeType, bool) {
	switch typ {
	case sqlDatetime:
		switch code {
		case codeDate:
			return CTypeDate, true
		case codeTime:
			return CTypeTime, true
		case codeTimestamp:
			return CTypeTS, true
		}
		return 0, false
	case sqlInterval:
		t := NativeType(code + 100)
		return t, t.IsInterval()
	}
	t := NativeType(typ)
	return t, t.Known()
}

// IntervalKind is the interval subtype carried by an IntervalStruct (SQL_IS_*).
type IntervalKind int32

// Interval subtypes.
const (
	IsYear IntervalKind = iota + 1
	IsMonth
	IsDay
	IsHour
	IsMinute
	IsSecond
	IsYearToMonth
	IsDayToHour
	IsDayToMinute
	IsDayToSecond
	IsHourToMinute
	IsHourToSecond
	IsMinuteToSecond
)

func intervalKindOf(t NativeType) IntervalKind {
	if !t.IsInterval() {
		return 0
	}
	return IntervalKind(t - 100)
}

func (k IntervalKind) yearMonth() bool {
	return k == IsYear || k == IsMonth || k == IsYearToMonth
}

// DateStruct mirrors DATE_STRUCT.
type DateStruct struct {
	Year  int16
	Month uint16
	Day   uint16
}

// TimeStruct mirrors TIME_STRUCT.
type TimeStruct struct {
	Hour   uint16
	Minute uint16
	Second uint16
}

// TimestampStruct mirrors TIMESTAMP_STRUCT. Fraction is in nanoseconds.
type TimestampStruct struct {
	Year     int16
	Month    uint16
	Day      uint16
	Hour     uint16
	Minute   uint16
	Second   uint16
	Fraction uint32
}

// NumericStruct mirrors SQL_NUMERIC_STRUCT. Val is little-endian; Sign is 1 for positive.
type NumericStruct struct {
	Precision uint8
	Scale     int8
	Sign      uint8
	Val       [maxNumericLen]byte
}

// GUID mirrors SQLGUID.
type GUID struct {
	Data1 uint32
	Data2 uint16
	Data3 uint16
	Data4 [8]byte
}

// YearMonth holds the year-month arm of an interval.
type YearMonth struct {
	Year  uint32
	Month uint32
}

// DaySecond holds the day-second arm of an interval. Fraction has the bound precision.
type DaySecond struct {
	Day      uint32
	Hour     uint32
	Minute   uint32
	Second   uint32
	Fraction uint32
}

// IntervalStruct mirrors SQL_INTERVAL_STRUCT. Sign is 1 for negative intervals.
type IntervalStruct struct {
	Kind      IntervalKind
	Sign      int16
	YearMonth YearMonth
	DaySecond DaySecond
}

var le = binary.LittleEndian

func (d DateStruct) encode(b []byte) {
	le.PutUint16(b[0:], uint16(d.Year))
	le.PutUint16(b[2:], d.Month)
	le.PutUint16(b[4:], d.Day)
}

func decodeDate(b []byte) DateStruct {
	return DateStruct{Year: int16(le.Uint16(b[0:])), Month: le.Uint16(b[2:]), Day: le.Uint16(b[4:])}
}

func (t TimeStruct) encode(b []byte) {
	le.PutUint16(b[0:], t.Hour)
	le.PutUint16(b[2:], t.Minute)
	le.PutUint16(b[4:], t.Second)
}

func decodeTime(b []byte) TimeStruct {
	return TimeStruct{Hour: le.Uint16(b[0:]), Minute: le.Uint16(b[2:]), Second: le.Uint16(b[4:])}
}

func (ts TimestampStruct) encode(b []byte) {
	le.PutUint16(b[0:], uint16(ts.Year))
	le.PutUint16(b[2:], ts.Month)
	le.PutUint16(b[4:], ts.Day)
	le.PutUint16(b[6:], ts.Hour)
	le.PutUint16(b[8:], ts.Minute)
	le.PutUint16(b[10:], ts.Second)
	le.PutUint32(b[12:], ts.Fraction)
}

func decodeTimestamp(b []byte) TimestampStruct {
	return TimestampStruct{
		Year:     int16(le.Uint16(b[0:])),
		Month:    le.Uint16(b[2:]),
		Day:      le.Uint16(b[4:]),
		Hour:     le.Uint16(b[6:]),
		Minute:   le.Uint16(b[8:]),
		Second:   le.Uint16(b[10:]),
		Fraction: le.Uint32(b[12:]),
	}
}

func (n NumericStruct) encode(b []byte) {
	b[0] = n.Precision
	b[1] = byte(n.Scale)
	b[2] = n.Sign
	copy(b[3:], n.Val[:])
}

func decodeNumeric(b []byte) NumericStruct {
	n := NumericStruct{Precision: b[0], Scale: int8(b[1]), Sign: b[2]}
	copy(n.Val[:], b[3:3+maxNumericLen])
	return n
}

func (g GUID) encode(b []byte) {
	le.PutUint32(b[0:], g.Data1)
	le.PutUint16(b[4:], g.Data2)
	le.PutUint16(b[6:], g.Data3)
	copy(b[8:], g.Data4[:])
}

func decodeGUID(b []byte) GUID {
	g := GUID{Data1: le.Uint32(b[0:]), Data2: le.Uint16(b[4:]), Data3: le.Uint16(b[6:])}
	copy(g.Data4[:], b[8:16])
	return g
}

// Interval layout: type int32, sign int16, 2 bytes padding, five uint32 (year-month uses the first two).
func (iv IntervalStruct) encode(b []byte) {
	le.PutUint32(b[0:], uint32(iv.Kind))
	le.PutUint16(b[4:], uint16(iv.Sign))
	le.PutUint16(b[6:], 0)
	if iv.Kind.yearMonth() {
		le.PutUint32(b[8:], iv.YearMonth.Year)
		le.PutUint32(b[12:], iv.YearMonth.Month)
		le.PutUint32(b[16:], 0)
		le.PutUint32(b[20:], 0)
		le.PutUint32(b[24:], 0)
		return
	}
	le.PutUint32(b[8:], iv.DaySecond.Day)
	le.PutUint32(b[12:], iv.DaySecond.Hour)
	le.PutUint32(b[16:], iv.DaySecond.Minute)
	le.PutUint32(b[20:], iv.DaySecond.Second)
	le.PutUint32(b[24:], iv.DaySecond.Fraction)
}

func decodeInterval(b []byte) IntervalStruct {
	iv := IntervalStruct{Kind: IntervalKind(le.Uint32(b[0:])), Sign: int16(le.Uint16(b[4:]))}
	if iv.Kind.yearMonth() {
		iv.YearMonth = YearMonth{Year: le.Uint32(b[8:]), Month: le.Uint32(b[12:])}
		return iv
	}
	iv.DaySecond = DaySecond{
		Day:      le.Uint32(b[8:]),
		Hour:     le.Uint32(b[12:]),
		Minute:   le.Uint32(b[16:]),
		Second:   le.Uint32(b[20:]),
		Fraction: le.Uint32(b[24:]),
	}
	return iv
}
