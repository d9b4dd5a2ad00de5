package tsodbc

import (
	"encoding/binary"
	"math"
	"reflect"
	"strings"
	"testing"
)

func newTestEngine(opts ...Option) *Engine {
	return NewEngine(NewConfig(opts...))
}

func expectCode(t *testing.T, err error, code Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected %s, got no error", code)
	}
	if got := CodeOf(err); got != code {
		t.Fatalf("Expected %s, got %s (%v)", code, got, err)
	}
}

func expectWarning(t *testing.T, res Result, code Code) {
	t.Helper()
	if res.Warning == nil {
		t.Fatalf("Expected %s warning, got none", code)
	}
	if res.Warning.Code != code {
		t.Fatalf("Expected %s warning, got %s", code, res.Warning.Code)
	}
}

func TestConvertIntegers(t *testing.T) {
	e := newTestEngine()

	t.Run("SLong", func(t *testing.T) {
		buf := make([]byte, 4)
		res, err := e.Convert(Text("1"), TypeInteger, Slot{Type: CSLong, Buffer: buf}, nil)
		if err != nil {
			t.Fatalf("Failed to convert: %v", err)
		}
		if res.Value != int32(1) {
			t.Errorf("Expected int32 1, got %v (%T)", res.Value, res.Value)
		}
		if got := int32(binary.LittleEndian.Uint32(buf)); got != 1 {
			t.Errorf("Expected buffer to hold 1, got %d", got)
		}
		if res.Length != 4 || res.Written != 4 {
			t.Errorf("Expected length 4 and 4 bytes written, got %d and %d", res.Length, res.Written)
		}
		if res.Warning != nil {
			t.Errorf("Expected no warning, got %v", res.Warning)
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		_, err := e.Convert(Text("2147483648"), TypeBigint, Slot{Type: CSLong, Buffer: make([]byte, 4)}, nil)
		expectCode(t, err, CodeNumericValueOutOfRange)
		if !IsError(err, ErrOverflow) {
			t.Errorf("Expected overflow error type, got %v", err)
		}
	})

	t.Run("Bounds", func(t *testing.T) {
		tests := []struct {
			text   string
			target NativeType
			want   any
		}{
			{"-2147483648", CSLong, int32(math.MinInt32)},
			{"2147483647", CSLong, int32(math.MaxInt32)},
			{"4294967295", CULong, uint32(math.MaxUint32)},
			{"-128", CSTinyInt, int8(-128)},
			{"255", CUTinyInt, uint8(255)},
			{"-32768", CSShort, int16(-32768)},
			{"65535", CUShort, uint16(65535)},
			{"-9223372036854775808", CSBigInt, int64(math.MinInt64)},
			{"18446744073709551615", CUBigInt, uint64(math.MaxUint64)},
			{"-0", CUShort, uint16(0)},
			{"+7", CSShort, int16(7)},
			{"1", CBit, uint8(1)},
		}
		for _, tt := range tests {
			res, err := e.Convert(Text(tt.text), TypeVarchar, Slot{Type: tt.target, Buffer: make([]byte, 8)}, nil)
			if err != nil {
				t.Errorf("%q as %s: unexpected error %v", tt.text, tt.target, err)
				continue
			}
			if res.Value != tt.want {
				t.Errorf("%q as %s: expected %v, got %v", tt.text, tt.target, tt.want, res.Value)
			}
		}

		overflows := []struct {
			text   string
			target NativeType
		}{
			{"-2147483649", CSLong},
			{"128", CSTinyInt},
			{"256", CUTinyInt},
			{"-1", CULong},
			{"18446744073709551616", CUBigInt},
			{"2", CBit},
			{"-1", CBit},
		}
		for _, tt := range overflows {
			_, err := e.Convert(Text(tt.text), TypeVarchar, Slot{Type: tt.target, Buffer: make([]byte, 8)}, nil)
			if CodeOf(err) != CodeNumericValueOutOfRange {
				t.Errorf("%q as %s: expected NumericValueOutOfRange, got %v", tt.text, tt.target, err)
			}
		}
	})

	t.Run("Fraction", func(t *testing.T) {
		res, err := e.Convert(Text("1.5"), TypeDouble, Slot{Type: CSLong, Buffer: make([]byte, 4)}, nil)
		if err != nil {
			t.Fatalf("Failed to convert: %v", err)
		}
		if res.Value != int32(1) {
			t.Errorf("Expected 1, got %v", res.Value)
		}
		expectWarning(t, res, CodeFractionalTruncation)

		res, err = e.Convert(Text("-3.000"), TypeDouble, Slot{Type: CSLong, Buffer: make([]byte, 4)}, nil)
		if err != nil {
			t.Fatalf("Failed to convert: %v", err)
		}
		if res.Value != int32(-3) || res.Warning != nil {
			t.Errorf("Expected -3 without warning, got %v (%v)", res.Value, res.Warning)
		}
	})

	t.Run("InvalidText", func(t *testing.T) {
		for _, text := range []string{"abc", "", "1e5", "12abc", "1.2.3"} {
			_, err := e.Convert(Text(text), TypeVarchar, Slot{Type: CSLong, Buffer: make([]byte, 4)}, nil)
			if CodeOf(err) != CodeInvalidStringConversion {
				t.Errorf("%q: expected InvalidStringConversion, got %v", text, err)
			}
		}
	})

	t.Run("SmallBuffer", func(t *testing.T) {
		_, err := e.Convert(Text("1"), TypeInteger, Slot{Type: CSBigInt, Buffer: make([]byte, 4)}, nil)
		expectCode(t, err, CodeGeneralError)
	})

	t.Run("NilBuffer", func(t *testing.T) {
		res, err := e.Convert(Text("42"), TypeInteger, Slot{Type: CSLong}, nil)
		if err != nil {
			t.Fatalf("Failed to convert: %v", err)
		}
		if res.Value != int32(42) || res.Written != 0 {
			t.Errorf("Expected 42 with nothing written, got %v and %d bytes", res.Value, res.Written)
		}
	})
}

func TestConvertFloats(t *testing.T) {
	e := newTestEngine()

	buf := make([]byte, 8)
	res, err := e.Convert(Text("1.100000"), TypeDouble, Slot{Type: CDouble, Buffer: buf}, nil)
	if err != nil {
		t.Fatalf("Failed to convert: %v", err)
	}
	if res.Value != 1.1 {
		t.Errorf("Expected 1.1, got %v", res.Value)
	}
	if got := math.Float64frombits(binary.LittleEndian.Uint64(buf)); got != 1.1 {
		t.Errorf("Expected buffer to hold 1.1, got %v", got)
	}

	res, err = e.Convert(Text("2.5"), TypeDouble, Slot{Type: CFloat, Buffer: buf}, nil)
	if err != nil {
		t.Fatalf("Failed to convert: %v", err)
	}
	if res.Value != float32(2.5) || res.Length != 4 {
		t.Errorf("Expected float32 2.5 of length 4, got %v of length %d", res.Value, res.Length)
	}

	_, err = e.Convert(Text("1e39"), TypeDouble, Slot{Type: CFloat, Buffer: buf}, nil)
	expectCode(t, err, CodeNumericValueOutOfRange)

	_, err = e.Convert(Text("one"), TypeVarchar, Slot{Type: CDouble, Buffer: buf}, nil)
	expectCode(t, err, CodeInvalidStringConversion)
}

func TestConvertBoolean(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		text string
		want string
	}{
		{"true", "1"},
		{"false", "0"},
		{"FALSE", "0"},
		{"no", "0"},
		{"0", "0"},
		{"yes", "1"},
		{"", "1"},
	}
	for _, tt := range tests {
		res, err := e.Convert(Text(tt.text), TypeBoolean, Slot{Type: CChar, Buffer: make([]byte, 4)}, nil)
		if err != nil {
			t.Fatalf("Failed to convert %q: %v", tt.text, err)
		}
		if res.Value != tt.want {
			t.Errorf("%q: expected %q, got %v", tt.text, tt.want, res.Value)
		}
	}

	res, err := e.Convert(Text("false"), TypeBoolean, Slot{Type: CBit, Buffer: make([]byte, 1)}, nil)
	if err != nil {
		t.Fatalf("Failed to convert: %v", err)
	}
	if res.Value != uint8(0) {
		t.Errorf("Expected bit 0, got %v", res.Value)
	}
}

func TestConvertText(t *testing.T) {
	e := newTestEngine()

	t.Run("Fits", func(t *testing.T) {
		buf := make([]byte, 10)
		res, err := e.Convert(Text("hello"), TypeVarchar, Slot{Type: CChar, Buffer: buf}, nil)
		if err != nil {
			t.Fatalf("Failed to convert: %v", err)
		}
		if res.Value != "hello" || res.Length != 5 || res.Written != 6 {
			t.Errorf("Expected hello of length 5 with 6 bytes written, got %v, %d, %d",
				res.Value, res.Length, res.Written)
		}
		if buf[5] != 0 {
			t.Errorf("Expected terminator after text, got %d", buf[5])
		}
		if res.Warning != nil {
			t.Errorf("Expected no warning, got %v", res.Warning)
		}
	})

	t.Run("Chunked", func(t *testing.T) {
		const text = "hello world"
		var (
			state DataState
			got   strings.Builder
		)
		lengths := []int64{11, 8, 5, 2}
		for i, want := range lengths {
			buf := make([]byte, 4)
			res, err := e.Convert(Text(text), TypeVarchar, Slot{Type: CChar, Buffer: buf}, &state)
			if err != nil {
				t.Fatalf("Failed to convert piece %d: %v", i, err)
			}
			if res.Length != want {
				t.Errorf("Piece %d: expected length %d, got %d", i, want, res.Length)
			}
			if i < len(lengths)-1 {
				expectWarning(t, res, CodeStringDataRightTruncated)
			} else if res.Warning != nil {
				t.Errorf("Expected no warning on the last piece, got %v", res.Warning)
			}
			got.WriteString(res.Value.(string))
		}
		if got.String() != text {
			t.Errorf("Expected pieces to join to %q, got %q", text, got.String())
		}

		res, err := e.Convert(Text(text), TypeVarchar, Slot{Type: CChar, Buffer: make([]byte, 4)}, &state)
		if err != nil {
			t.Fatalf("Failed to convert after delivery: %v", err)
		}
		if !res.NoData {
			t.Errorf("Expected NoData after complete delivery")
		}

		state.Reset()
		if state.Remaining() != -1 {
			t.Errorf("Expected reset state to report -1 remaining, got %d", state.Remaining())
		}
	})

	t.Run("LengthProbe", func(t *testing.T) {
		var state DataState
		res, err := e.Convert(Text("abcdef"), TypeVarchar, Slot{Type: CChar}, &state)
		if err != nil {
			t.Fatalf("Failed to probe: %v", err)
		}
		if res.Length != 6 {
			t.Errorf("Expected length 6, got %d", res.Length)
		}
		expectWarning(t, res, CodeStringDataRightTruncated)

		res, err = e.Convert(Text("abcdef"), TypeVarchar, Slot{Type: CChar, Buffer: make([]byte, 7)}, &state)
		if err != nil {
			t.Fatalf("Failed to convert after probe: %v", err)
		}
		if res.Value != "abcdef" {
			t.Errorf("Expected the whole value after a probe, got %v", res.Value)
		}
	})

	t.Run("Wide", func(t *testing.T) {
		buf := make([]byte, 7)
		res, err := e.Convert(Text("héllo"), TypeVarchar, Slot{Type: CWChar, Buffer: buf}, nil)
		if err != nil {
			t.Fatalf("Failed to convert: %v", err)
		}
		// 7 bytes leave room for two code units and the terminator
		b := res.Value.([]byte)
		if len(b) != 4 {
			t.Fatalf("Expected 4 bytes delivered, got %d", len(b))
		}
		s, err := decodeWide(b)
		if err != nil {
			t.Fatalf("Failed to decode: %v", err)
		}
		if s != "hé" {
			t.Errorf("Expected %q, got %q", "hé", s)
		}
		if res.Length != 10 {
			t.Errorf("Expected length 10, got %d", res.Length)
		}
		expectWarning(t, res, CodeStringDataRightTruncated)
	})

	t.Run("Binary", func(t *testing.T) {
		buf := make([]byte, 3)
		res, err := e.Convert(Text("abc"), TypeVarchar, Slot{Type: CBinary, Buffer: buf}, nil)
		if err != nil {
			t.Fatalf("Failed to convert: %v", err)
		}
		if string(buf) != "abc" || res.Written != 3 || res.Warning != nil {
			t.Errorf("Expected abc without terminator or warning, got %q, %d, %v", buf, res.Written, res.Warning)
		}
	})

	t.Run("DoubleDecimalPoint", func(t *testing.T) {
		ce := newTestEngine(WithNumberFormat(NumberFormat{DecimalPoint: ','}))
		res, err := ce.Convert(Text("1.500000"), TypeDouble, Slot{Type: CChar, Buffer: make([]byte, 16)}, nil)
		if err != nil {
			t.Fatalf("Failed to convert: %v", err)
		}
		if res.Value != "1,500000" {
			t.Errorf("Expected 1,500000, got %v", res.Value)
		}
	})

	t.Run("Null", func(t *testing.T) {
		res, err := e.Convert(NullValue, TypeVarchar, Slot{Type: CChar, Buffer: make([]byte, 4)}, nil)
		if err != nil {
			t.Fatalf("Failed to convert: %v", err)
		}
		if !res.Null || res.Length != NullData {
			t.Errorf("Expected null with length %d, got %v and %d", NullData, res.Null, res.Length)
		}

		var state DataState
		slot := Slot{Type: CChar, Buffer: make([]byte, 4)}
		if res, err = e.Convert(NullValue, TypeVarchar, slot, &state); err != nil || !res.Null {
			t.Fatalf("Failed to convert a null: %v, %+v", err, res)
		}
		if res, err = e.Convert(NullValue, TypeVarchar, slot, &state); err != nil || !res.NoData {
			t.Errorf("Expected no data for a null already delivered, got %+v, %v", res, err)
		}
	})
}

func TestConvertDefaultType(t *testing.T) {
	e := newTestEngine()
	res, err := e.Convert(Text("9"), TypeBigint, Slot{Type: CDefault, Buffer: make([]byte, 8)}, nil)
	if err != nil {
		t.Fatalf("Failed to convert: %v", err)
	}
	if res.Type != CSBigInt || res.Value != int64(9) {
		t.Errorf("Expected SQL_C_SBIGINT 9, got %s %v", res.Type, res.Value)
	}

	_, err = e.Convert(Text("9"), TypeBigint, Slot{Type: NativeType(1234)}, nil)
	expectCode(t, err, CodeRestrictedDataType)
}

func TestConvertBookmark(t *testing.T) {
	e := newTestEngine()
	buf := make([]byte, 4)
	res, err := e.Convert(Text("7"), TypeInteger, Slot{Type: CBinary, Buffer: buf}, nil)
	if err != nil {
		t.Fatalf("Failed to convert: %v", err)
	}
	if res.Value != uint32(7) || binary.LittleEndian.Uint32(buf) != 7 {
		t.Errorf("Expected bookmark 7, got %v", res.Value)
	}

	res, err = e.Convert(Text("7"), TypeInteger, Slot{Type: CBinary, Buffer: make([]byte, 2)}, nil)
	if err != nil {
		t.Fatalf("Failed to convert: %v", err)
	}
	expectWarning(t, res, CodeStringDataRightTruncated)
}

func TestConvertGUID(t *testing.T) {
	e := newTestEngine()
	const text = "123e4567-e89b-12d3-a456-426614174000"

	buf := make([]byte, 16)
	res, err := e.Convert(Text(text), TypeVarchar, Slot{Type: CGUID, Buffer: buf}, nil)
	if err != nil {
		t.Fatalf("Failed to convert: %v", err)
	}
	g := res.Value.(GUID)
	if g.Data1 != 0x123e4567 || g.Data2 != 0xe89b || g.Data3 != 0x12d3 {
		t.Errorf("Expected 123e4567-e89b-12d3, got %x-%x-%x", g.Data1, g.Data2, g.Data3)
	}
	if g.String() != text {
		t.Errorf("Expected %s, got %s", text, g.String())
	}
	if decodeGUID(buf) != g {
		t.Errorf("Expected buffer to decode to the same GUID")
	}

	_, err = e.Convert(Text("not-a-guid"), TypeVarchar, Slot{Type: CGUID, Buffer: buf}, nil)
	expectCode(t, err, CodeInvalidStringConversion)
}

func TestConvertNumericStruct(t *testing.T) {
	e := newTestEngine()

	buf := make([]byte, numericStructSize)
	res, err := e.Convert(Text("123.45"), TypeDouble, Slot{Type: CNumeric, Buffer: buf}, nil)
	if err != nil {
		t.Fatalf("Failed to convert: %v", err)
	}
	ns := res.Value.(NumericStruct)
	if ns.Precision != 5 || ns.Scale != 2 || ns.Sign != 1 {
		t.Errorf("Expected precision 5, scale 2, sign 1, got %d, %d, %d", ns.Precision, ns.Scale, ns.Sign)
	}
	if ns.Val[0] != 0x39 || ns.Val[1] != 0x30 {
		t.Errorf("Expected little-endian 12345, got % x", ns.Val[:2])
	}
	if res.Length != numericStructSize {
		t.Errorf("Expected length %d, got %d", numericStructSize, res.Length)
	}
	if decodeNumeric(buf) != ns {
		t.Errorf("Expected buffer to decode to the same value")
	}

	for _, text := range []string{"123.45", "-0.5", "42", "0.001", "-98765.4321"} {
		ns, overflow := parseNumericStruct(text)
		if overflow {
			t.Errorf("%q: unexpected overflow", text)
		}
		if got := numericText(ns); got != text {
			t.Errorf("Expected %q to render back unchanged, got %q", text, got)
		}
	}

	res, err = e.Convert(Text(strings.Repeat("9", 50)), TypeVarchar, Slot{Type: CNumeric, Buffer: buf}, nil)
	if err != nil {
		t.Fatalf("Failed to convert: %v", err)
	}
	expectWarning(t, res, CodeStringDataRightTruncated)
}

func TestConvertDeterministic(t *testing.T) {
	e := newTestEngine()
	inputs := []struct {
		text   string
		bt     BackendType
		target NativeType
	}{
		{"42", TypeBigint, CSBigInt},
		{"3.250000", TypeDouble, CDouble},
		{"2021-05-06", TypeDate, CTypeDate},
		{"12:34:56", TypeTime, CTypeTime},
		{"abc", TypeVarchar, CChar},
	}
	for _, in := range inputs {
		first, err := e.Convert(Text(in.text), in.bt, Slot{Type: in.target, Buffer: make([]byte, 32)}, nil)
		if err != nil {
			t.Fatalf("Failed to convert %q: %v", in.text, err)
		}
		second, err := e.Convert(Text(in.text), in.bt, Slot{Type: in.target, Buffer: make([]byte, 32)}, nil)
		if err != nil {
			t.Fatalf("Failed to convert %q: %v", in.text, err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Errorf("%q: expected identical results, got %+v and %+v", in.text, first, second)
		}
	}
}
