package tsodbc

import (
	"math"
	"testing"
)

func TestCharColumnSize(t *testing.T) {
	c := NewTypeCatalog(NewConfig())

	tests := []struct {
		name     string
		typ      BackendType
		typmod   int
		observed int
		policy   UnknownSizePolicy
		want     int
	}{
		{"NothingKnown", TypeVarchar, -1, -1, UnknownsAsMax, DefaultMaxVarcharSize},
		{"Longest", TypeVarchar, -1, 10, UnknownsAsLongest, 10},
		{"LongestBelowTypmod", TypeVarchar, 64, 10, UnknownsAsLongest, 10},
		{"Typmod", TypeVarchar, 64, 10, UnknownsAsMax, 64},
		{"ArrayObserved", TypeArray, -1, 30, UnknownsAsMax, 30},
		{"DontKnow", TypeVarchar, -1, 5, UnknownsAsDontKnow, -1},
		{"VarcharCeiling", TypeVarchar, -1, 300, UnknownsAsMax, DefaultMaxVarcharSize},
		{"UnknownGrows", TypeUnknown, -1, 300, UnknownsAsMax, 300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.CharColumnSize(tt.typ, tt.typmod, tt.observed, tt.policy); got != tt.want {
				t.Errorf("Expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestConciseType(t *testing.T) {
	c := NewTypeCatalog(NewConfig())
	wc := NewTypeCatalog(NewConfig(WithUnicode(true)))

	tests := []struct {
		typ    BackendType
		typmod int
		want   SQLType
		wide   SQLType
	}{
		{TypeVarchar, -1, SQLVarchar, SQLWVarchar},
		{TypeVarchar, 500, SQLLongVarchar, SQLWLongVarchar},
		{TypeInt2, -1, SQLSmallint, SQLSmallint},
		{TypeInteger, -1, SQLInteger, SQLInteger},
		{TypeBigint, -1, SQLBigint, SQLBigint},
		{TypeDouble, -1, SQLDouble, SQLDouble},
		{TypeBoolean, -1, SQLBit, SQLBit},
		{TypeDate, -1, SQLTypeDate, SQLTypeDate},
		{TypeTime, -1, SQLTypeTime, SQLTypeTime},
		{TypeTimestamp, -1, SQLTypeTimestamp, SQLTypeTimestamp},
		{TypeArray, -1, SQLVarchar, SQLWVarchar},
		{BackendType(9999), -1, SQLUnknownType, SQLUnknownType},
	}
	for _, tt := range tests {
		if got := c.ConciseType(tt.typ, tt.typmod, -1, UnknownsAsMax); got != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.typ, tt.want, got)
		}
		if got := wc.ConciseType(tt.typ, tt.typmod, -1, UnknownsAsMax); got != tt.wide {
			t.Errorf("%s (unicode): expected %d, got %d", tt.typ, tt.wide, got)
		}
	}
}

func TestVerboseType(t *testing.T) {
	tests := []struct {
		concise SQLType
		verbose SQLType
		code    int16
	}{
		{SQLTypeDate, SQLDatetime, 1},
		{SQLTypeTime, SQLDatetime, 2},
		{SQLTypeTimestamp, SQLDatetime, 3},
		{SQLIntervalYearToMonth, SQLInterval, 7},
		{SQLIntervalDayToSecond, SQLInterval, 10},
		{SQLInteger, SQLInteger, 0},
	}
	for _, tt := range tests {
		v, code := VerboseType(tt.concise)
		if v != tt.verbose || code != tt.code {
			t.Errorf("%d: expected (%d, %d), got (%d, %d)", tt.concise, tt.verbose, tt.code, v, code)
		}
	}

	for _, n := range []NativeType{CTypeDate, CTypeTime, CTypeTS, CIntervalDayToSecond, CSLong, CChar} {
		typ, code := n.verbose()
		back, ok := nativeFromVerbose(typ, code)
		if !ok || back != n {
			t.Errorf("%s: expected verbose form to map back, got %s (%v)", n, back, ok)
		}
	}
}

func TestDefaultNativeType(t *testing.T) {
	c := NewTypeCatalog(NewConfig())
	wc := NewTypeCatalog(NewConfig(WithUnicode(true)))

	tests := map[BackendType]NativeType{
		TypeBigint:    CSBigInt,
		TypeInt2:      CSShort,
		TypeInteger:   CSLong,
		TypeDouble:    CDouble,
		TypeDate:      CTypeDate,
		TypeTime:      CTypeTime,
		TypeTimestamp: CTypeTS,
		TypeBoolean:   CBit,
		TypeVarchar:   CChar,
		TypeArray:     CChar,
	}
	for bt, want := range tests {
		if got := c.DefaultNativeType(bt); got != want {
			t.Errorf("%s: expected %s, got %s", bt, want, got)
		}
	}
	if got := wc.DefaultNativeType(TypeVarchar); got != CWChar {
		t.Errorf("Expected SQL_C_WCHAR in unicode mode, got %s", got)
	}
}

func TestConvertible(t *testing.T) {
	c := NewTypeCatalog(NewConfig())

	tests := []struct {
		typ  BackendType
		n    NativeType
		want bool
	}{
		{TypeDate, CChar, true},
		{TypeRow, CWChar, true},
		{TypeTimestamp, CTypeDate, true},
		{TypeTimestamp, CTypeTime, true},
		{TypeDate, CTypeTime, false},
		{TypeTime, CTypeDate, false},
		{TypeDate, CTypeTS, true},
		{TypeVarchar, CGUID, true},
		{TypeDouble, CGUID, false},
		{TypeInteger, CBinary, true},
		{TypeDouble, CBinary, false},
		{TypeBoolean, CSLong, true},
		{TypeVarchar, CDouble, true},
		{TypeDate, CDouble, false},
		{TypeIntervalDayToSecond, CIntervalDayToSecond, true},
		{TypeBigint, CIntervalDay, false},
		{TypeBigint, NativeType(999), false},
	}
	for _, tt := range tests {
		if got := c.Convertible(tt.typ, tt.n); got != tt.want {
			t.Errorf("%s to %s: expected %v, got %v", tt.typ, tt.n, tt.want, got)
		}
	}
}

func TestCatalogAttributes(t *testing.T) {
	c := NewTypeCatalog(NewConfig())

	if got := c.ColumnSize(TypeTimestamp); got != 29 {
		t.Errorf("Expected timestamp column size 29, got %d", got)
	}
	if got := c.ColumnSize(TypeVarchar); got != math.MaxInt32 {
		t.Errorf("Expected varchar column size %d, got %d", math.MaxInt32, got)
	}
	if got := c.ColumnSize(BackendType(1)); got != -1 {
		t.Errorf("Expected -1 for an unknown type, got %d", got)
	}
	if got := c.DisplaySize(TypeDouble); got != 24 {
		t.Errorf("Expected double display size 24, got %d", got)
	}
	if got := c.BufferLength(TypeTimestamp); got != timestampStructSize {
		t.Errorf("Expected timestamp buffer length %d, got %d", timestampStructSize, got)
	}
	if got := c.DescLength(TypeBigint); got != 20 {
		t.Errorf("Expected bigint length 20, got %d", got)
	}
	if got := c.DecimalDigits(TypeTime, -1); got != 6 {
		t.Errorf("Expected time decimal digits 6, got %d", got)
	}
	if got := c.DecimalDigits(TypeTime, 3); got != 3 {
		t.Errorf("Expected time decimal digits 3, got %d", got)
	}
	if got := c.DecimalDigits(TypeVarchar, -1); got != -1 {
		t.Errorf("Expected varchar decimal digits -1, got %d", got)
	}
	if got := c.Precision(TypeInteger, -1); got != 11 {
		t.Errorf("Expected integer precision 11, got %d", got)
	}
	if c.Radix(TypeDouble) != 10 || c.Radix(TypeVarchar) != -1 {
		t.Errorf("Expected radix 10 for double and -1 for varchar")
	}
	if c.Unsigned(TypeBoolean) != 1 || c.Unsigned(TypeBigint) != 0 || c.Unsigned(TypeDate) != -1 {
		t.Errorf("Unexpected signedness attributes")
	}
	if c.CaseSensitive(TypeVarchar) != 1 || c.CaseSensitive(TypeBigint) != 0 {
		t.Errorf("Expected only varchar to be case sensitive")
	}
	if c.Nullable(TypeBigint) != 1 || c.AutoIncrement(TypeBigint) != 0 || c.Searchable(TypeBigint) != 3 {
		t.Errorf("Unexpected fixed attributes")
	}

	literals := []struct {
		typ            BackendType
		prefix, suffix string
	}{
		{TypeVarchar, "VARCHAR '", "'"},
		{TypeDate, "DATE '", "'"},
		{TypeTimestamp, "TIMESTAMP '", "'"},
		{TypeArray, "ARRAY [", "]"},
		{TypeRow, "ROW (", ")"},
		{TypeTimeSeries, "", ""},
	}
	for _, l := range literals {
		if got := c.LiteralPrefix(l.typ); got != l.prefix {
			t.Errorf("%s: expected prefix %q, got %q", l.typ, l.prefix, got)
		}
		if got := c.LiteralSuffix(l.typ); got != l.suffix {
			t.Errorf("%s: expected suffix %q, got %q", l.typ, l.suffix, got)
		}
	}
}

func TestNativeType(t *testing.T) {
	if CChar.String() != "SQL_C_CHAR" {
		t.Errorf("Expected SQL_C_CHAR, got %s", CChar)
	}
	if got := NativeType(5000).String(); got != "NativeType(5000)" {
		t.Errorf("Expected NativeType(5000), got %s", got)
	}
	if NativeType(5000).Known() {
		t.Errorf("Expected 5000 to be unknown")
	}

	widths := map[NativeType]int{
		CChar:                0,
		CBit:                 1,
		CSShort:              2,
		CSLong:               4,
		CDouble:              8,
		CTypeDate:            6,
		CTypeTS:              16,
		CNumeric:             19,
		CGUID:                16,
		CIntervalDayToSecond: 28,
	}
	for n, want := range widths {
		if got := n.Width(); got != want {
			t.Errorf("%s: expected width %d, got %d", n, want, got)
		}
	}

	if TypeBigint.String() != "bigint" || BackendType(7).String() != "BackendType(7)" {
		t.Errorf("Unexpected backend type names")
	}
	if UnknownsAsLongest.String() != "longest" {
		t.Errorf("Expected longest, got %s", UnknownsAsLongest)
	}
}
