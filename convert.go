package tsodbc

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ValueText is a backend value rendered to its canonical text, or a null.
type ValueText struct {
	Raw    string
	IsNull bool
}

// Text returns a non-null value.
func Text(s string) ValueText {
	return ValueText{Raw: s}
}

// NullValue is the null cell.
var NullValue = ValueText{IsNull: true}

// Slot is the application buffer one value is delivered into.
// The buffer length is the declared octet length; a nil buffer only computes the result.
type Slot struct {
	Type   NativeType
	Buffer []byte
	// Precision is the seconds precision for interval targets. Negative selects 6.
	Precision int16
}

// Result is the outcome of a successful conversion.
type Result struct {
	// Type is the native type actually delivered; SQL_C_DEFAULT is resolved.
	Type NativeType
	// Value is the decoded value written to the buffer: a Go integer or float, one of the
	// struct types, a string for SQL_C_CHAR or a byte slice for SQL_C_BINARY and SQL_C_WCHAR.
	Value any
	// Length is the reported length: the bytes still available for text, the struct width otherwise.
	Length int64
	// Written is the number of bytes stored in the buffer, terminator included.
	Written int
	// Null reports a null cell; nothing was written.
	Null bool
	// NoData reports that the value was already delivered completely.
	NoData bool
	// Warning carries a truncation condition. The value was still delivered.
	Warning *Error
}

// DataState tracks how much of a column's current value has been delivered across
// repeated GetData calls. The zero value means nothing has been delivered yet.
type DataState struct {
	active bool
	done   bool
	buf    []byte
	left   int
}

// Reset forgets any partial delivery.
func (s *DataState) Reset() {
	*s = DataState{}
}

// Remaining returns the undelivered byte count, or -1 before delivery started.
func (s *DataState) Remaining() int {
	switch {
	case s.done:
		return 0
	case !s.active:
		return -1
	}
	return s.left
}

// Engine converts backend values into application buffers.
type Engine struct {
	catalog *TypeCatalog
	numfmt  NumberFormat
	logger  *slog.Logger
}

// NewEngine creates a conversion engine for cfg.
func NewEngine(cfg Config) *Engine {
	return &Engine{
		catalog: NewTypeCatalog(cfg),
		numfmt:  cfg.NumberFormat,
		logger:  withComponent(cfg.logger(), "convert"),
	}
}

// Catalog returns the type catalog the engine resolves default types with.
func (e *Engine) Catalog() *TypeCatalog {
	return e.catalog
}

// Convert delivers v, a value of backend type bt, into slot.
// state carries partial-delivery progress for the column; nil converts the value in one shot.
// Hard failures are returned as *Error; truncation is reported through Result.Warning.
func (e *Engine) Convert(v ValueText, bt BackendType, slot Slot, state *DataState) (Result, error) {
	if state == nil {
		state = &DataState{}
	}
	target := slot.Type
	if target == CDefault {
		target = e.catalog.DefaultNativeType(bt)
	}
	if !target.Known() {
		return Result{Type: target}, errUnsupported(fmt.Sprintf("unknown native type %d", int16(target)))
	}
	if state.done {
		return Result{Type: target, NoData: true}, nil
	}
	if v.IsNull {
		state.done = true
		return Result{Type: target, Null: true, Length: NullData}, nil
	}

	text := v.Raw
	if bt == TypeBoolean {
		text = normalizeBool(text)
	}

	var (
		res Result
		err error
	)
	switch {
	case target == CBinary && bt == TypeInteger:
		res, err = convertBookmark(text, slot.Buffer)
	case target == CChar || target == CWChar ||
		(target == CBinary && (bt == TypeVarchar || bt == TypeUnknown)):
		res, err = e.convertText(text, bt, target, slot.Buffer, state)
		if err == nil {
			return res, nil
		}
	case target.isNumeric():
		res, err = e.convertNumeric(text, target, slot.Buffer)
	case target == CDate || target == CTypeDate || target == CTime || target == CTypeTime ||
		target == CTimestamp || target == CTypeTS:
		res, err = e.convertDatetime(text, bt, target, slot.Buffer)
	case target == CGUID:
		res, err = convertGUID(text, slot.Buffer)
	case target.IsInterval():
		res, err = convertInterval(text, target, int(slot.Precision), slot.Buffer)
	default:
		err = errUnsupported(fmt.Sprintf("cannot convert %s to %s", bt, target))
	}
	res.Type = target
	if err != nil {
		e.logger.Debug("conversion failed", "backend", bt, "target", target, "error", err)
		return res, err
	}
	if res.Warning == nil || res.Warning.Code != CodeStringDataRightTruncated {
		state.done = true
	}
	return res, nil
}

// normalizeBool maps backend boolean text onto "0" and "1" by its first character.
func normalizeBool(s string) string {
	if s == "" {
		return "1"
	}
	switch s[0] {
	case 'f', 'F', 'n', 'N', '0':
		return "0"
	}
	return "1"
}

// writeFixed stores a fixed-width value. A nil buffer skips the write.
func writeFixed(buf []byte, width int, encode func([]byte)) (int, error) {
	if buf == nil {
		return 0, nil
	}
	if len(buf) < width {
		return 0, NewError(ErrGeneric, CodeGeneralError,
			fmt.Sprintf("buffer of %d bytes cannot hold a %d byte value", len(buf), width))
	}
	encode(buf[:width])
	return width, nil
}

// convertBookmark delivers an integer as a four byte variable-length bookmark.
func convertBookmark(text string, buf []byte) (Result, error) {
	neg, mag, _, _ := leadingInteger(strings.TrimSpace(text))
	// strtoul semantics: negative input wraps
	v := uint32(mag)
	if neg {
		v = -v
	}
	res := Result{Value: v, Length: 4}
	if len(buf) < 4 {
		res.Warning = warnStringTruncated()
		return res, nil
	}
	le.PutUint32(buf, v)
	res.Written = 4
	return res, nil
}

// convertGUID parses the canonical 8-4-4-4-12 form.
func convertGUID(text string, buf []byte) (Result, error) {
	u, err := uuid.Parse(strings.TrimSpace(text))
	if err != nil {
		e := errInvalidFormat(fmt.Sprintf("%q is not a GUID", text))
		e.Err = err
		return Result{}, e
	}
	g := GUID{
		Data1: uint32(u[0])<<24 | uint32(u[1])<<16 | uint32(u[2])<<8 | uint32(u[3]),
		Data2: uint16(u[4])<<8 | uint16(u[5]),
		Data3: uint16(u[6])<<8 | uint16(u[7]),
	}
	copy(g.Data4[:], u[8:16])
	n, err := writeFixed(buf, guidSize, g.encode)
	if err != nil {
		return Result{}, err
	}
	return Result{Value: g, Length: guidSize, Written: n}, nil
}

// String renders the GUID in canonical form.
func (g GUID) String() string {
	var u uuid.UUID
	u[0], u[1], u[2], u[3] = byte(g.Data1>>24), byte(g.Data1>>16), byte(g.Data1>>8), byte(g.Data1)
	u[4], u[5] = byte(g.Data2>>8), byte(g.Data2)
	u[6], u[7] = byte(g.Data3>>8), byte(g.Data3)
	copy(u[8:], g.Data4[:])
	return u.String()
}

// isNumericText reports whether the whole of s is a floating point literal.
// Empty text and text starting with whitespace are rejected.
func isNumericText(s string) bool {
	if s == "" || isSpace(s[0]) {
		return false
	}
	_, err := strconv.ParseFloat(s, 64)
	if err == nil {
		return true
	}
	return errors.Is(err, strconv.ErrRange)
}
