package tsodbc

import (
	"fmt"
	"math"
)

// BackendType identifies a backend value kind. The values are the driver's internal type ids.
type BackendType int32

// Backend types.
const (
	TypeBoolean             BackendType = 16
	TypeBigint              BackendType = 20
	TypeInt2                BackendType = 21
	TypeInteger             BackendType = 23
	TypeDouble              BackendType = 701
	TypeArray               BackendType = 1016
	TypeIntervalDayToSecond BackendType = 1017
	TypeIntervalYearToMonth BackendType = 1018
	TypeRow                 BackendType = 1019
	TypeTimeSeries          BackendType = 1020
	TypeVarchar             BackendType = 1043
	TypeUnknown             BackendType = 1048
	TypeDate                BackendType = 1082
	TypeTime                BackendType = 1083
	TypeTimestamp           BackendType = 1296
)

var backendTypeNames = map[BackendType]string{
	TypeBoolean:             "boolean",
	TypeBigint:              "bigint",
	TypeInt2:                "smallint",
	TypeInteger:             "int",
	TypeDouble:              "double",
	TypeArray:               "array[T,...]",
	TypeIntervalDayToSecond: "interval day to second",
	TypeIntervalYearToMonth: "interval year to month",
	TypeRow:                 "row(T,...)",
	TypeTimeSeries:          "timeseries[row(timestamp, T,...)]",
	TypeVarchar:             "varchar",
	TypeUnknown:             "unknown",
	TypeDate:                "date",
	TypeTime:                "time",
	TypeTimestamp:           "timestamp",
}

// String returns the backend type name.
func (t BackendType) String() string {
	if name, ok := backendTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("BackendType(%d)", int32(t))
}

// Known reports whether t is one of the backend types the driver understands.
func (t BackendType) Known() bool {
	_, ok := backendTypeNames[t]
	return ok
}

// varcharLike reports whether values of t are delivered as text of unknown length.
func (t BackendType) varcharLike() bool {
	switch t {
	case TypeVarchar, TypeUnknown, TypeArray, TypeRow, TypeTimeSeries,
		TypeIntervalDayToSecond, TypeIntervalYearToMonth:
		return true
	}
	return false
}

// SQLType is an interface-level SQL data type code (SQL_*).
type SQLType int16

// SQL data types.
const (
	SQLUnknownType   SQLType = 0
	SQLChar          SQLType = 1
	SQLNumeric       SQLType = 2
	SQLInteger       SQLType = 4
	SQLSmallint      SQLType = 5
	SQLFloat         SQLType = 6
	SQLReal          SQLType = 7
	SQLDouble        SQLType = 8
	SQLDatetime      SQLType = 9
	SQLInterval      SQLType = 10
	SQLVarchar       SQLType = 12
	SQLTypeDate      SQLType = 91
	SQLTypeTime      SQLType = 92
	SQLTypeTimestamp SQLType = 93
	SQLLongVarchar   SQLType = -1
	SQLBigint        SQLType = -5
	SQLTinyint       SQLType = -6
	SQLBit           SQLType = -7
	SQLWChar         SQLType = -8
	SQLWVarchar      SQLType = -9
	SQLWLongVarchar  SQLType = -10
	SQLGUID          SQLType = -11

	SQLIntervalYearToMonth SQLType = 107
	SQLIntervalDayToSecond SQLType = 110
)

const (
	sqlDatetime = int16(SQLDatetime)
	sqlInterval = int16(SQLInterval)

	codeDate      int16 = 1
	codeTime      int16 = 2
	codeTimestamp int16 = 3
)

// Attribute constants reported through descriptors and catalog rows.
const (
	sqlFalse       = 0
	sqlTrue        = 1
	sqlNullable    = 1
	sqlSearchable  = 3
	sqlPredNone    = 0
	sqlAttrRO      = 0
	sqlNamed       = 0
	sqlUnnamed     = 1
	unsetAttribute = -1
)

// Integer width of a SQL_DOUBLE's mantissa as reported in display sizes.
const doubleDigits = 17

// UnknownSizePolicy governs the reported size of columns without a declared bound.
type UnknownSizePolicy int

const (
	// UnknownsAsMax reports the global ceiling.
	UnknownsAsMax UnknownSizePolicy = iota
	// UnknownsAsDontKnow reports -1.
	UnknownsAsDontKnow
	// UnknownsAsLongest reports the longest value observed in the result set.
	UnknownsAsLongest
)

// String returns the policy name.
func (p UnknownSizePolicy) String() string {
	switch p {
	case UnknownsAsMax:
		return "max"
	case UnknownsAsDontKnow:
		return "dontknow"
	case UnknownsAsLongest:
		return "longest"
	}
	return fmt.Sprintf("UnknownSizePolicy(%d)", int(p))
}

// DefaultMaxVarcharSize is the ceiling applied to character columns of unknown length.
const DefaultMaxVarcharSize = 255

// TypeCatalog maps backend types onto interface types and answers per-type metadata.
// It holds no mutable state; the fields select unicode mode and size limits.
type TypeCatalog struct {
	Unicode        bool
	MaxVarcharSize int
}

// NewTypeCatalog returns a catalog for the given configuration.
func NewTypeCatalog(cfg Config) *TypeCatalog {
	limit := cfg.MaxVarcharSize
	if limit <= 0 {
		limit = DefaultMaxVarcharSize
	}
	return &TypeCatalog{Unicode: cfg.Unicode, MaxVarcharSize: limit}
}

// CharColumnSize resolves the size of a character column under policy.
// typmod is the declared length or -1, observed is the longest value seen or -1.
func (c *TypeCatalog) CharColumnSize(t BackendType, typmod, observed int, policy UnknownSizePolicy) int {
	maxsize := c.MaxVarcharSize
	if typmod < 0 && observed < 0 {
		return maxsize
	}
	p := observed
	if policy == UnknownsAsLongest && p > 0 && (typmod < 0 || typmod > p) {
		return p
	}
	if t == TypeArray {
		if p > 0 {
			return p
		}
		return maxsize
	}
	if typmod > 0 {
		return typmod
	}
	switch policy {
	case UnknownsAsLongest, UnknownsAsMax:
	default:
		return -1
	}
	if maxsize <= 0 || t == TypeVarchar {
		return maxsize
	}
	if p > maxsize {
		maxsize = p
	}
	return maxsize
}

// ConciseType resolves the interface type code of a column.
// It returns SQLUnknownType for backend types the catalog does not know.
func (c *TypeCatalog) ConciseType(t BackendType, typmod, observed int, policy UnknownSizePolicy) SQLType {
	switch t {
	case TypeVarchar:
		if c.CharColumnSize(t, typmod, observed, policy) > c.MaxVarcharSize {
			return c.wide(SQLLongVarchar)
		}
		return c.wide(SQLVarchar)
	case TypeInt2:
		return SQLSmallint
	case TypeInteger:
		return SQLInteger
	case TypeBigint:
		return SQLBigint
	case TypeDouble:
		return SQLDouble
	case TypeDate:
		return SQLTypeDate
	case TypeTime:
		return SQLTypeTime
	case TypeTimestamp:
		return SQLTypeTimestamp
	case TypeBoolean:
		return SQLBit
	}
	if !t.Known() {
		return SQLUnknownType
	}
	size := c.CharColumnSize(t, typmod, observed, policy)
	if size > 0 && size <= c.MaxVarcharSize {
		return c.wide(SQLVarchar)
	}
	return c.wide(SQLLongVarchar)
}

func (c *TypeCatalog) wide(t SQLType) SQLType {
	if !c.Unicode {
		return t
	}
	switch t {
	case SQLChar:
		return SQLWChar
	case SQLVarchar:
		return SQLWVarchar
	case SQLLongVarchar:
		return SQLWLongVarchar
	}
	return t
}

// VerboseType splits a concise SQL type into its verbose type and datetime subcode.
func VerboseType(t SQLType) (SQLType, int16) {
	switch t {
	case SQLTypeDate:
		return SQLDatetime, codeDate
	case SQLTypeTime:
		return SQLDatetime, codeTime
	case SQLTypeTimestamp:
		return SQLDatetime, codeTimestamp
	}
	if t >= 101 && t <= 113 {
		return SQLInterval, int16(t - 100)
	}
	return t, 0
}

// DefaultNativeType is the native type used when the caller asks for the default conversion.
func (c *TypeCatalog) DefaultNativeType(t BackendType) NativeType {
	switch t {
	case TypeBigint:
		return CSBigInt
	case TypeInt2:
		return CSShort
	case TypeInteger:
		return CSLong
	case TypeDouble:
		return CDouble
	case TypeDate:
		return CTypeDate
	case TypeTime:
		return CTypeTime
	case TypeTimestamp:
		return CTypeTS
	case TypeBoolean:
		return CBit
	}
	if c.Unicode {
		return CWChar
	}
	return CChar
}

// ColumnSize returns the column size (precision for numerics, characters for text).
func (c *TypeCatalog) ColumnSize(t BackendType) int32 {
	switch t {
	case TypeBoolean:
		return 1
	case TypeInt2:
		return 5
	case TypeInteger:
		return 11
	case TypeBigint:
		return 20
	case TypeDouble:
		return 15
	case TypeDate:
		return 10
	case TypeTime:
		return 18
	case TypeTimestamp:
		return 29
	}
	if t.varcharLike() {
		return math.MaxInt32
	}
	return unsetAttribute
}

// DisplaySize returns the maximum number of characters needed to display a value.
func (c *TypeCatalog) DisplaySize(t BackendType) int32 {
	switch t {
	case TypeInt2:
		return 6
	case TypeInteger:
		return 11
	case TypeBigint:
		return 20
	case TypeDouble:
		// sign, digits, decimal point, E, exponent sign and three exponent digits
		return 1 + doubleDigits + 1 + 1 + 1 + 3
	}
	return c.ColumnSize(t)
}

// BufferLength returns the transfer size of a value in its default C type.
func (c *TypeCatalog) BufferLength(t BackendType) int64 {
	switch t {
	case TypeBoolean:
		return 1
	case TypeInt2:
		return 2
	case TypeInteger:
		return 4
	case TypeBigint:
		return 8
	case TypeDouble:
		return 8
	case TypeDate, TypeTime:
		return dateStructSize
	case TypeTimestamp:
		return timestampStructSize
	case TypeVarchar:
		// two bytes per character in unicode mode, CR/LF expansion otherwise
		return 2 * int64(c.ColumnSize(t))
	}
	return int64(c.ColumnSize(t))
}

// DescLength returns the descriptor LENGTH of a column.
func (c *TypeCatalog) DescLength(t BackendType) int64 {
	switch t {
	case TypeInt2:
		return 2
	case TypeInteger:
		return 4
	case TypeBigint:
		return 20
	case TypeDouble:
		return 8
	}
	return int64(c.ColumnSize(t))
}

// DecimalDigits returns the scale of the type, typmod for time precision or -1 when not applicable.
func (c *TypeCatalog) DecimalDigits(t BackendType, typmod int) int16 {
	switch t {
	case TypeInt2, TypeInteger, TypeBigint, TypeDouble, TypeBoolean, TypeTimestamp:
		return 0
	case TypeTime:
		if typmod > -1 {
			return int16(typmod)
		}
		return 6
	}
	return unsetAttribute
}

// Precision returns the descriptor PRECISION of a column.
func (c *TypeCatalog) Precision(t BackendType, typmod int) int16 {
	switch t {
	case TypeInt2, TypeInteger, TypeBigint, TypeDouble, TypeBoolean:
		return int16(c.ColumnSize(t))
	case TypeTime:
		return c.DecimalDigits(t, typmod)
	}
	return 0
}

// Radix returns 10 for numeric types and -1 otherwise.
func (c *TypeCatalog) Radix(t BackendType) int32 {
	switch t {
	case TypeInt2, TypeInteger, TypeBigint, TypeDouble:
		return 10
	}
	return unsetAttribute
}

// Unsigned returns SQL_TRUE, SQL_FALSE or -1 when signedness does not apply.
func (c *TypeCatalog) Unsigned(t BackendType) int16 {
	switch t {
	case TypeBoolean:
		return sqlTrue
	case TypeInt2, TypeInteger, TypeBigint, TypeDouble:
		return sqlFalse
	}
	return unsetAttribute
}

// Nullable always reports nullable; the backend has no NOT NULL constraint.
func (c *TypeCatalog) Nullable(BackendType) int16 { return sqlNullable }

// AutoIncrement is never true for this backend.
func (c *TypeCatalog) AutoIncrement(BackendType) int16 { return sqlFalse }

// CaseSensitive is true only for character data.
func (c *TypeCatalog) CaseSensitive(t BackendType) int16 {
	if t == TypeVarchar {
		return sqlTrue
	}
	return sqlFalse
}

// Searchable reports SQL_SEARCHABLE for every type.
func (c *TypeCatalog) Searchable(BackendType) int16 { return sqlSearchable }

// LiteralPrefix returns the text that introduces a literal of the type.
func (c *TypeCatalog) LiteralPrefix(t BackendType) string {
	switch t {
	case TypeVarchar:
		return "VARCHAR '"
	case TypeBigint:
		return "BIGINT '"
	case TypeDouble:
		return "DOUBLE '"
	case TypeInteger:
		return "INTEGER '"
	case TypeDate:
		return "DATE '"
	case TypeTime:
		return "TIME '"
	case TypeTimestamp:
		return "TIMESTAMP '"
	case TypeBoolean:
		return "BOOLEAN '"
	case TypeArray:
		return "ARRAY ["
	case TypeRow:
		return "ROW ("
	}
	return ""
}

// LiteralSuffix returns the text that terminates a literal of the type.
func (c *TypeCatalog) LiteralSuffix(t BackendType) string {
	switch t {
	case TypeVarchar, TypeBigint, TypeDouble, TypeInteger, TypeDate, TypeTime, TypeTimestamp, TypeBoolean:
		return "'"
	case TypeArray:
		return "]"
	case TypeRow:
		return ")"
	}
	return ""
}

// Convertible reports whether a value of backend type t may be delivered as native type n.
func (c *TypeCatalog) Convertible(t BackendType, n NativeType) bool {
	if !n.Known() {
		return false
	}
	if n == CChar || n == CWChar || n == CDefault {
		return true
	}
	text := t.varcharLike()
	switch {
	case n == CBinary:
		return t == TypeVarchar || t == TypeUnknown || t == TypeInteger
	case n.isNumeric():
		return text || t == TypeBoolean || t == TypeInt2 || t == TypeInteger ||
			t == TypeBigint || t == TypeDouble
	case n == CDate || n == CTypeDate:
		return t == TypeDate || t == TypeTimestamp || t == TypeVarchar || t == TypeUnknown
	case n == CTime || n == CTypeTime:
		return t == TypeTime || t == TypeTimestamp || t == TypeVarchar || t == TypeUnknown
	case n == CTimestamp || n == CTypeTS:
		return t == TypeDate || t == TypeTime || t == TypeTimestamp || t == TypeVarchar || t == TypeUnknown
	case n.IsInterval():
		return t == TypeIntervalDayToSecond || t == TypeIntervalYearToMonth ||
			t == TypeVarchar || t == TypeUnknown
	case n == CGUID:
		return t == TypeVarchar || t == TypeUnknown
	}
	return false
}
