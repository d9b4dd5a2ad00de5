package tsodbc

import (
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"
)

// DescKind identifies one of the four descriptor roles.
type DescKind int

const (
	// KindARD is the application row descriptor: the caller's result buffers.
	KindARD DescKind = iota
	// KindAPD is the application parameter descriptor: the caller's parameter buffers.
	KindAPD
	// KindIRD is the implementation row descriptor: the result shape.
	KindIRD
	// KindIPD is the implementation parameter descriptor: the parameter shape.
	KindIPD
)

var descKindNames = [...]string{"ARD", "APD", "IRD", "IPD"}

// String returns the descriptor kind abbreviation.
func (k DescKind) String() string {
	if k >= 0 && int(k) < len(descKindNames) {
		return descKindNames[k]
	}
	return fmt.Sprintf("DescKind(%d)", int(k))
}

func (k DescKind) application() bool {
	return k == KindARD || k == KindAPD
}

// DescState is the lifecycle state of a descriptor.
type DescState int

const (
	// DescAllocated is a fresh descriptor with no records.
	DescAllocated DescState = iota
	// DescDescribed holds a result or parameter shape.
	DescDescribed
	// DescBound has at least one record bound to a buffer, or parameters in use.
	DescBound
)

// Allocation types reported through SQL_DESC_ALLOC_TYPE.
const (
	AllocAuto int16 = 1
	AllocUser int16 = 2
)

// BindByColumn is the SQL_DESC_BIND_TYPE value for column-wise binding.
const BindByColumn int32 = 0

// Row status values written to the IRD status array.
const (
	RowSuccess         uint16 = 0
	RowNoRow           uint16 = 3
	RowError           uint16 = 5
	RowSuccessWithInfo uint16 = 6
)

// SQL_PARAM_INPUT.
const paramInput int16 = 1

// DescHeader holds the descriptor header fields.
type DescHeader struct {
	AllocType int16
	// ArraySize is the number of rows per fetch or parameter sets per execute.
	ArraySize      uint64
	ArrayStatusPtr []uint16
	// BindOffsetPtr, when set, is a byte offset added to every bound data buffer.
	BindOffsetPtr *int64
	// BindType is BindByColumn or the row stride for row-wise binding.
	BindType         int32
	RowsProcessedPtr *uint64
	Count            int16
}

// DescRecord holds one column or parameter record.
// The binding slot is DataPtr (the caller's buffer, its length the octet length),
// IndicatorPtr and OctetLengthPtr (one element per array row).
type DescRecord struct {
	ConciseType               int16
	Type                      int16
	DatetimeIntervalCode      int16
	DatetimeIntervalPrecision int32
	Length                    int64
	OctetLength               int64
	Precision                 int16
	Scale                     int16
	Nullable                  int16
	ParameterType             int16
	Unnamed                   int16

	Name           string
	Label          string
	BaseColumnName string
	BaseTableName  string
	TableName      string
	SchemaName     string
	CatalogName    string
	TypeName       string
	LocalTypeName  string
	LiteralPrefix  string
	LiteralSuffix  string

	AutoUniqueValue int32
	CaseSensitive   int32
	DisplaySize     int64
	FixedPrecScale  int16
	NumPrecRadix    int32
	Searchable      int16
	Unsigned        int16
	Updatable       int16
	RowVer          int16

	DataPtr        []byte
	IndicatorPtr   []int64
	OctetLengthPtr []int64

	backend BackendType
}

// Bound reports whether the record has a data buffer.
func (r *DescRecord) Bound() bool {
	return r.DataPtr != nil
}

// Descriptor is one ARD, APD, IRD or IPD.
// Application descriptors may be shared between statements; sharing is reference counted.
type Descriptor struct {
	kind    DescKind
	state   DescState
	header  DescHeader
	records []DescRecord // records[0] is the bookmark record
	refs    int32
	logger  *slog.Logger
}

// NewDescriptor creates an implicitly allocated descriptor of kind.
func NewDescriptor(kind DescKind) *Descriptor {
	return newDescriptor(kind, AllocAuto)
}

// AllocDescriptor creates an explicitly allocated application descriptor
// that can replace a statement's ARD or APD.
func AllocDescriptor(kind DescKind) (*Descriptor, error) {
	if !kind.application() {
		return nil, NewError(ErrDescriptor, CodeGeneralError,
			fmt.Sprintf("cannot allocate an %s explicitly", kind))
	}
	return newDescriptor(kind, AllocUser), nil
}

func newDescriptor(kind DescKind, alloc int16) *Descriptor {
	return &Descriptor{
		kind: kind,
		header: DescHeader{
			AllocType: alloc,
			ArraySize: 1,
			BindType:  BindByColumn,
		},
		records: make([]DescRecord, 1),
		refs:    1,
		logger:  withComponent(nil, "descriptor"),
	}
}

// Kind returns the descriptor role.
func (d *Descriptor) Kind() DescKind {
	return d.kind
}

// State returns the lifecycle state.
func (d *Descriptor) State() DescState {
	return d.state
}

// Count returns the number of records, excluding the bookmark record.
func (d *Descriptor) Count() int {
	return int(d.header.Count)
}

// Header returns a copy of the header fields.
func (d *Descriptor) Header() DescHeader {
	return d.header
}

// Record returns a copy of record rec; 0 is the bookmark record.
func (d *Descriptor) Record(rec int) (DescRecord, bool) {
	if rec < 0 || rec > d.Count() {
		return DescRecord{}, false
	}
	return d.records[rec], true
}

// Retain adds a reference for another statement sharing the descriptor.
func (d *Descriptor) Retain() {
	atomic.AddInt32(&d.refs, 1)
}

// Release drops a reference. The last release frees the records and reports true.
func (d *Descriptor) Release() bool {
	if atomic.AddInt32(&d.refs, -1) > 0 {
		return false
	}
	d.records = make([]DescRecord, 1)
	d.header.Count = 0
	d.state = DescAllocated
	return true
}

// setCount grows or shrinks the record list to n records plus the bookmark record.
func (d *Descriptor) setCount(n int) {
	switch {
	case n+1 < len(d.records):
		clear(d.records[n+1:])
		d.records = d.records[:n+1]
	case n+1 > len(d.records):
		d.records = append(d.records, make([]DescRecord, n+1-len(d.records))...)
	}
	d.header.Count = int16(n)
}

// record returns record rec, growing the descriptor when rec is past the count.
func (d *Descriptor) record(rec int) *DescRecord {
	if rec > d.Count() {
		d.setCount(rec)
	}
	return &d.records[rec]
}

// checkRecordNumber rejects record numbers the int16 count cannot hold.
func checkRecordNumber(rec int) error {
	if rec < 0 || rec > math.MaxInt16 {
		return NewError(ErrDescriptor, CodeInvalidDescriptorIndex,
			fmt.Sprintf("invalid record number %d", rec))
	}
	return nil
}

func (d *Descriptor) checkRecord(rec int, spec fieldSpec, id FieldID) error {
	if err := checkRecordNumber(rec); err != nil {
		return err
	}
	if spec.header && rec != 0 {
		return errInvalidField(id, "header field requested at a record").atRecord(rec)
	}
	if !spec.header && rec == 0 {
		return errInvalidField(id, "record field requested at the header")
	}
	return nil
}

// GetField returns a header field (rec 0) or a record field (rec >= 1).
// The value's Go type follows the field: int16, int32, int64 or uint64 for numbers,
// string for names, []byte, []int64, []uint16, *int64 or *uint64 for binding slots.
func (d *Descriptor) GetField(rec int, id FieldID) (any, error) {
	spec, ok := fieldSpecs[id]
	if !ok {
		return nil, errInvalidField(id, "unknown field")
	}
	if err := d.checkRecord(rec, spec, id); err != nil {
		return nil, err
	}
	if !spec.read.has(d.kind) {
		return nil, errInvalidField(id, fmt.Sprintf("not readable from an %s", d.kind))
	}
	if id == DescDatetimeIntervalPrecision {
		return nil, errInvalidField(id, "interval leading precision is not supported")
	}
	if spec.header {
		return d.headerField(id), nil
	}
	if rec > d.Count() {
		return nil, NewError(ErrNoData, CodeNoData, "record number is past the descriptor count").atRecord(rec)
	}
	return recordField(&d.records[rec], id), nil
}

// SetField sets a header field (rec 0) or a record field (rec >= 1).
// IRD fields other than the two caller-owned status pointers cannot be set.
// Setting a record field other than the binding pointers unbinds the record.
// The descriptor is left unchanged when an error is returned.
func (d *Descriptor) SetField(rec int, id FieldID, value any) error {
	spec, ok := fieldSpecs[id]
	if !ok {
		return errInvalidField(id, "unknown field")
	}
	if d.kind == KindIRD {
		if id == DescAllocType {
			return errInvalidField(id, "allocation type is read-only")
		}
		if !spec.write.has(KindIRD) {
			return NewError(ErrDescriptor, CodeCannotModifyIrd,
				fmt.Sprintf("%s cannot be modified on an IRD", id)).atRecord(rec)
		}
	}
	if err := d.checkRecord(rec, spec, id); err != nil {
		return err
	}
	if !spec.write.has(d.kind) {
		return errInvalidField(id, fmt.Sprintf("not writable on an %s", d.kind))
	}
	if d.kind == KindIPD && spec.shape && d.state == DescBound {
		return NewError(ErrDescriptor, CodeGeneralError,
			fmt.Sprintf("%s cannot change once parameters are bound", id)).atRecord(rec)
	}
	if spec.header {
		return d.setHeaderField(id, value)
	}

	// work on a copy so a rejected value leaves the record untouched
	var r DescRecord
	if rec <= d.Count() {
		r = d.records[rec]
	}
	if err := d.setRecordField(&r, id, value); err != nil {
		return err
	}
	if !bindingField(id) {
		r.DataPtr = nil
	}
	*d.record(rec) = r
	if r.Bound() && d.kind.application() {
		d.state = DescBound
	}
	return nil
}

// GetRecord is the bulk record read. It is not supported for any descriptor kind.
func (d *Descriptor) GetRecord(rec int) (DescRecord, error) {
	return DescRecord{}, NewError(ErrDescriptor, CodeGeneralError,
		fmt.Sprintf("bulk record read is not supported on an %s", d.kind)).atRecord(rec)
}

// SetRecord is the bulk record write. It is not supported for any descriptor kind.
func (d *Descriptor) SetRecord(rec int, _ DescRecord) error {
	return NewError(ErrDescriptor, CodeGeneralError,
		fmt.Sprintf("bulk record write is not supported on an %s", d.kind)).atRecord(rec)
}

// CopyDesc copies the header and every record of src into dst.
// Only ARD to ARD and APD to APD copies are allowed. A copy into an IRD fails with
// CannotModifyIrd, every other pairing with GeneralError. dst keeps its allocation type.
func CopyDesc(src, dst *Descriptor) error {
	if dst.kind == KindIRD {
		err := NewError(ErrDescriptor, CodeCannotModifyIrd, fmt.Sprintf("cannot copy an %s into an IRD", src.kind))
		dst.logger.Debug("descriptor copy rejected", "source", src.kind, "destination", dst.kind, "error", err)
		return err
	}
	if src.kind != dst.kind || !src.kind.application() {
		err := NewError(ErrDescriptor, CodeGeneralError, fmt.Sprintf("cannot copy an %s into an %s", src.kind, dst.kind))
		dst.logger.Debug("descriptor copy rejected", "source", src.kind, "destination", dst.kind, "error", err)
		return err
	}
	if src == dst {
		return nil
	}
	alloc := dst.header.AllocType
	dst.header = src.header
	dst.header.AllocType = alloc
	dst.records = append(make([]DescRecord, 0, len(src.records)), src.records...)
	dst.state = src.state
	return nil
}

// bind attaches slot to record rec of an application descriptor. length is the
// octet length of one element; zero or less takes the whole buffer.
// A nil buffer unbinds the record.
func (d *Descriptor) bind(rec int, slot Slot, length int64, ind, octLen []int64) error {
	if err := checkRecordNumber(rec); err != nil {
		return err
	}
	if !d.kind.application() {
		return NewError(ErrDescriptor, CodeGeneralError, fmt.Sprintf("cannot bind buffers to an %s", d.kind))
	}
	if slot.Buffer == nil {
		if rec <= d.Count() {
			r := &d.records[rec]
			r.DataPtr, r.IndicatorPtr, r.OctetLengthPtr = nil, nil, nil
		}
		return nil
	}
	if !slot.Type.Known() {
		return errUnsupported(fmt.Sprintf("unknown native type %d", int16(slot.Type))).atRecord(rec)
	}
	var r DescRecord
	if rec <= d.Count() {
		r = d.records[rec]
	}
	if err := d.setConciseType(&r, int16(slot.Type)); err != nil {
		return err
	}
	if slot.Type.IsInterval() && slot.Precision >= 0 {
		r.Precision = slot.Precision
	}
	if length <= 0 || length > int64(len(slot.Buffer)) {
		length = int64(len(slot.Buffer))
	}
	r.OctetLength = length
	r.DataPtr = slot.Buffer
	r.IndicatorPtr = ind
	r.OctetLengthPtr = octLen
	*d.record(rec) = r
	d.state = DescBound
	return nil
}

// slot returns the binding slot of record rec for array row i, honoring the bind
// offset and the bind type stride.
func (d *Descriptor) slot(rec, i int) (Slot, bool) {
	if rec > d.Count() {
		return Slot{}, false
	}
	r := &d.records[rec]
	if !r.Bound() {
		return Slot{}, false
	}
	width := int(r.OctetLength)
	if w := NativeType(r.ConciseType).Width(); w > 0 {
		width = w
	}
	stride := width
	if d.header.BindType > 0 {
		stride = int(d.header.BindType)
	}
	start := i * stride
	if d.header.BindOffsetPtr != nil {
		start += int(*d.header.BindOffsetPtr)
	}
	if start < 0 || start > len(r.DataPtr) {
		return Slot{}, false
	}
	end := min(start+width, len(r.DataPtr))
	precision := int16(-1)
	if NativeType(r.ConciseType).IsInterval() {
		precision = r.Precision
	}
	return Slot{Type: NativeType(r.ConciseType), Buffer: r.DataPtr[start:end:end], Precision: precision}, true
}

// describe repopulates an IRD from a result schema.
func (d *Descriptor) describe(cols []Column, cat *TypeCatalog, policy UnknownSizePolicy) {
	d.setCount(len(cols))
	for i, c := range cols {
		d.records[i+1] = describeColumn(c, cat, policy)
	}
	d.state = DescDescribed
}

func describeColumn(c Column, cat *TypeCatalog, policy UnknownSizePolicy) DescRecord {
	t := c.Type
	concise := cat.ConciseType(t, c.TypeMod, c.DisplaySize, policy)
	verbose, code := VerboseType(concise)

	r := DescRecord{
		ConciseType:          int16(concise),
		Type:                 int16(verbose),
		DatetimeIntervalCode: code,
		Length:               cat.DescLength(t),
		OctetLength:          cat.BufferLength(t),
		Precision:            cat.Precision(t, c.TypeMod),
		Scale:                max(cat.DecimalDigits(t, c.TypeMod), 0),
		Nullable:             cat.Nullable(t),
		Unnamed:              sqlNamed,

		Name:           c.Name,
		Label:          c.Name,
		BaseColumnName: c.Name,
		TypeName:       t.String(),
		LocalTypeName:  t.String(),
		LiteralPrefix:  cat.LiteralPrefix(t),
		LiteralSuffix:  cat.LiteralSuffix(t),

		AutoUniqueValue: int32(cat.AutoIncrement(t)),
		CaseSensitive:   int32(cat.CaseSensitive(t)),
		DisplaySize:     int64(cat.DisplaySize(t)),
		FixedPrecScale:  sqlFalse,
		NumPrecRadix:    max(cat.Radix(t), 0),
		Searchable:      cat.Searchable(t),
		Unsigned:        cat.Unsigned(t),
		Updatable:       sqlAttrRO,
		RowVer:          sqlFalse,

		backend: t,
	}
	if c.Name == "" {
		r.Unnamed = sqlUnnamed
	}
	if r.Unsigned < 0 {
		r.Unsigned = sqlTrue
	}
	if t.varcharLike() {
		size := int64(cat.CharColumnSize(t, c.TypeMod, c.DisplaySize, policy))
		r.Length, r.DisplaySize, r.OctetLength = size, size, size
		if cat.Unicode && size > 0 {
			r.OctetLength = size * wcharLen
		}
	}
	return r
}

// describeParameter records the SQL shape of parameter rec in an IPD.
func (d *Descriptor) describeParameter(rec int, sqlType SQLType, columnSize int64, digits int16) error {
	if d.kind != KindIPD {
		return NewError(ErrDescriptor, CodeGeneralError, fmt.Sprintf("cannot describe parameters on an %s", d.kind))
	}
	if d.state == DescBound {
		return NewError(ErrDescriptor, CodeGeneralError, "parameter shape cannot change once bound").atRecord(rec)
	}
	var r DescRecord
	if rec <= d.Count() {
		r = d.records[rec]
	}
	if err := d.setConciseType(&r, int16(sqlType)); err != nil {
		return err
	}
	r.Length = columnSize
	r.Scale = digits
	if r.Type == sqlInterval || r.Type == sqlDatetime {
		r.Precision = digits
	} else {
		r.Precision = int16(min(columnSize, 1<<15-1))
	}
	r.ParameterType = paramInput
	r.Nullable = sqlNullable
	r.Unnamed = sqlUnnamed
	*d.record(rec) = r
	d.state = DescDescribed
	return nil
}

// backendType returns the backend type recorded for an IRD column.
func (d *Descriptor) backendType(rec int) BackendType {
	if rec < 1 || rec > d.Count() {
		return TypeUnknown
	}
	return d.records[rec].backend
}
