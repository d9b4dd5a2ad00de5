package tsodbc

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// FieldID identifies a descriptor header or record field (SQL_DESC_*).
type FieldID int16

// Header fields.
const (
	DescAllocType        FieldID = 1099
	DescArraySize        FieldID = 20
	DescArrayStatusPtr   FieldID = 21
	DescBindOffsetPtr    FieldID = 24
	DescBindType         FieldID = 25
	DescCount            FieldID = 1001
	DescRowsProcessedPtr FieldID = 34
)

// Record fields.
const (
	DescAutoUniqueValue           FieldID = 11
	DescBaseColumnName            FieldID = 22
	DescBaseTableName             FieldID = 23
	DescCaseSensitive             FieldID = 12
	DescCatalogName               FieldID = 17
	DescConciseType               FieldID = 2
	DescDataPtr                   FieldID = 1010
	DescDatetimeIntervalCode      FieldID = 1007
	DescDatetimeIntervalPrecision FieldID = 26
	DescDisplaySize               FieldID = 6
	DescFixedPrecScale            FieldID = 9
	DescIndicatorPtr              FieldID = 1009
	DescLabel                     FieldID = 18
	DescLength                    FieldID = 1003
	DescLiteralPrefix             FieldID = 27
	DescLiteralSuffix             FieldID = 28
	DescLocalTypeName             FieldID = 29
	DescName                      FieldID = 1011
	DescNullable                  FieldID = 1008
	DescNumPrecRadix              FieldID = 32
	DescOctetLength               FieldID = 1013
	DescOctetLengthPtr            FieldID = 1004
	DescParameterType             FieldID = 33
	DescPrecision                 FieldID = 1005
	DescRowVer                    FieldID = 35
	DescScale                     FieldID = 1006
	DescSchemaName                FieldID = 16
	DescSearchable                FieldID = 13
	DescTableName                 FieldID = 15
	DescType                      FieldID = 1002
	DescTypeName                  FieldID = 14
	DescUnnamed                   FieldID = 1012
	DescUnsigned                  FieldID = 8
	DescUpdatable                 FieldID = 10
)

// kindMask is a set of descriptor kinds.
type kindMask uint8

const (
	maskARD kindMask = 1 << KindARD
	maskAPD kindMask = 1 << KindAPD
	maskIRD kindMask = 1 << KindIRD
	maskIPD kindMask = 1 << KindIPD

	maskApp  = maskARD | maskAPD
	maskImpl = maskIRD | maskIPD
	maskAll  = maskApp | maskImpl
	maskNone kindMask = 0
)

func (m kindMask) has(k DescKind) bool {
	return m&(1<<k) != 0
}

// fieldSpec says where a field lives and which descriptor kinds may read or write it.
type fieldSpec struct {
	name   string
	header bool
	read   kindMask
	write  kindMask
	// shape marks IPD fields that describe the parameter and are frozen once bound
	shape bool
}

var fieldSpecs = map[FieldID]fieldSpec{
	DescAllocType:        {name: "SQL_DESC_ALLOC_TYPE", header: true, read: maskAll, write: maskNone},
	DescArraySize:        {name: "SQL_DESC_ARRAY_SIZE", header: true, read: maskApp, write: maskApp},
	DescArrayStatusPtr:   {name: "SQL_DESC_ARRAY_STATUS_PTR", header: true, read: maskAll, write: maskAll},
	DescBindOffsetPtr:    {name: "SQL_DESC_BIND_OFFSET_PTR", header: true, read: maskApp, write: maskApp},
	DescBindType:         {name: "SQL_DESC_BIND_TYPE", header: true, read: maskApp, write: maskApp},
	DescCount:            {name: "SQL_DESC_COUNT", header: true, read: maskAll, write: maskApp | maskIPD, shape: true},
	DescRowsProcessedPtr: {name: "SQL_DESC_ROWS_PROCESSED_PTR", header: true, read: maskImpl, write: maskImpl},

	DescAutoUniqueValue:           {name: "SQL_DESC_AUTO_UNIQUE_VALUE", read: maskIRD},
	DescBaseColumnName:            {name: "SQL_DESC_BASE_COLUMN_NAME", read: maskIRD},
	DescBaseTableName:             {name: "SQL_DESC_BASE_TABLE_NAME", read: maskIRD},
	DescCaseSensitive:             {name: "SQL_DESC_CASE_SENSITIVE", read: maskImpl},
	DescCatalogName:               {name: "SQL_DESC_CATALOG_NAME", read: maskIRD},
	DescConciseType:               {name: "SQL_DESC_CONCISE_TYPE", read: maskAll, write: maskApp | maskIPD, shape: true},
	DescDataPtr:                   {name: "SQL_DESC_DATA_PTR", read: maskApp, write: maskApp},
	DescDatetimeIntervalCode:      {name: "SQL_DESC_DATETIME_INTERVAL_CODE", read: maskAll, write: maskApp | maskIPD, shape: true},
	DescDatetimeIntervalPrecision: {name: "SQL_DESC_DATETIME_INTERVAL_PRECISION", read: maskAll, write: maskApp | maskIPD, shape: true},
	DescDisplaySize:               {name: "SQL_DESC_DISPLAY_SIZE", read: maskIRD},
	DescFixedPrecScale:            {name: "SQL_DESC_FIXED_PREC_SCALE", read: maskImpl},
	DescIndicatorPtr:              {name: "SQL_DESC_INDICATOR_PTR", read: maskApp, write: maskApp},
	DescLabel:                     {name: "SQL_DESC_LABEL", read: maskIRD},
	DescLength:                    {name: "SQL_DESC_LENGTH", read: maskAll, write: maskApp | maskIPD, shape: true},
	DescLiteralPrefix:             {name: "SQL_DESC_LITERAL_PREFIX", read: maskIRD},
	DescLiteralSuffix:             {name: "SQL_DESC_LITERAL_SUFFIX", read: maskIRD},
	DescLocalTypeName:             {name: "SQL_DESC_LOCAL_TYPE_NAME", read: maskImpl},
	DescName:                      {name: "SQL_DESC_NAME", read: maskImpl, write: maskIPD},
	DescNullable:                  {name: "SQL_DESC_NULLABLE", read: maskImpl},
	DescNumPrecRadix:              {name: "SQL_DESC_NUM_PREC_RADIX", read: maskAll, write: maskApp | maskIPD, shape: true},
	DescOctetLength:               {name: "SQL_DESC_OCTET_LENGTH", read: maskAll, write: maskApp | maskIPD, shape: true},
	DescOctetLengthPtr:            {name: "SQL_DESC_OCTET_LENGTH_PTR", read: maskApp, write: maskApp},
	DescParameterType:             {name: "SQL_DESC_PARAMETER_TYPE", read: maskIPD, write: maskIPD, shape: true},
	DescPrecision:                 {name: "SQL_DESC_PRECISION", read: maskAll, write: maskApp | maskIPD, shape: true},
	DescRowVer:                    {name: "SQL_DESC_ROWVER", read: maskImpl},
	DescScale:                     {name: "SQL_DESC_SCALE", read: maskAll, write: maskApp | maskIPD, shape: true},
	DescSchemaName:                {name: "SQL_DESC_SCHEMA_NAME", read: maskIRD},
	DescSearchable:                {name: "SQL_DESC_SEARCHABLE", read: maskIRD},
	DescTableName:                 {name: "SQL_DESC_TABLE_NAME", read: maskIRD},
	DescType:                      {name: "SQL_DESC_TYPE", read: maskAll, write: maskApp | maskIPD, shape: true},
	DescTypeName:                  {name: "SQL_DESC_TYPE_NAME", read: maskImpl},
	DescUnnamed:                   {name: "SQL_DESC_UNNAMED", read: maskImpl, write: maskIPD},
	DescUnsigned:                  {name: "SQL_DESC_UNSIGNED", read: maskImpl},
	DescUpdatable:                 {name: "SQL_DESC_UPDATABLE", read: maskIRD},
}

// String returns the SQL_DESC_* name of the field.
func (id FieldID) String() string {
	if spec, ok := fieldSpecs[id]; ok {
		return spec.name
	}
	return fmt.Sprintf("FieldID(%d)", int16(id))
}

// bindingField reports whether setting id leaves the record's data pointer bound.
func bindingField(id FieldID) bool {
	switch id {
	case DescCount, DescDataPtr, DescOctetLengthPtr, DescIndicatorPtr:
		return true
	}
	return false
}

func errInvalidField(id FieldID, msg string) *Error {
	return NewError(ErrDescriptor, CodeInvalidDescriptorFieldIdentifier, fmt.Sprintf("%s: %s", id, msg))
}

func errFieldValue(id FieldID, v any) *Error {
	return NewError(ErrDescriptor, CodeGeneralError, fmt.Sprintf("invalid value %v (%T) for %s", v, v, id))
}

// fieldInt converts any Go integer (or a type code) to T, rejecting values out of T's range.
func fieldInt[T constraints.Integer](id FieldID, v any) (T, error) {
	var (
		n   int64
		mag uint64
		neg bool
	)
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int8:
		n = int64(x)
	case int16:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case NativeType:
		n = int64(x)
	case SQLType:
		n = int64(x)
	case uint:
		mag = uint64(x)
	case uint8:
		mag = uint64(x)
	case uint16:
		mag = uint64(x)
	case uint32:
		mag = uint64(x)
	case uint64:
		mag = x
	default:
		return 0, errFieldValue(id, v)
	}
	if n < 0 {
		neg, mag = true, uint64(-n)
	} else if n > 0 {
		mag = uint64(n)
	}
	if !integralFits[T](neg, mag) {
		return 0, errFieldValue(id, v)
	}
	if neg {
		return T(-int64(mag)), nil
	}
	return T(mag), nil
}

func fieldString(id FieldID, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", errFieldValue(id, v)
	}
	return s, nil
}

func (d *Descriptor) headerField(id FieldID) any {
	h := &d.header
	switch id {
	case DescAllocType:
		return h.AllocType
	case DescArraySize:
		return h.ArraySize
	case DescArrayStatusPtr:
		return h.ArrayStatusPtr
	case DescBindOffsetPtr:
		return h.BindOffsetPtr
	case DescBindType:
		return h.BindType
	case DescCount:
		return h.Count
	case DescRowsProcessedPtr:
		return h.RowsProcessedPtr
	}
	return nil
}

func (d *Descriptor) setHeaderField(id FieldID, v any) error {
	h := &d.header
	switch id {
	case DescArraySize:
		n, err := fieldInt[uint64](id, v)
		if err != nil {
			return err
		}
		if n == 0 {
			return errFieldValue(id, v)
		}
		h.ArraySize = n
	case DescArrayStatusPtr:
		p, ok := v.([]uint16)
		if !ok && v != nil {
			return errFieldValue(id, v)
		}
		h.ArrayStatusPtr = p
	case DescBindOffsetPtr:
		p, ok := v.(*int64)
		if !ok && v != nil {
			return errFieldValue(id, v)
		}
		h.BindOffsetPtr = p
	case DescBindType:
		n, err := fieldInt[int32](id, v)
		if err != nil {
			return err
		}
		if n < 0 {
			return errFieldValue(id, v)
		}
		h.BindType = n
	case DescCount:
		n, err := fieldInt[int16](id, v)
		if err != nil {
			return err
		}
		if n < 0 {
			return errFieldValue(id, v)
		}
		d.setCount(int(n))
	case DescRowsProcessedPtr:
		p, ok := v.(*uint64)
		if !ok && v != nil {
			return errFieldValue(id, v)
		}
		h.RowsProcessedPtr = p
	default:
		return errInvalidField(id, "not a settable header field")
	}
	return nil
}

func recordField(r *DescRecord, id FieldID) any {
	switch id {
	case DescAutoUniqueValue:
		return r.AutoUniqueValue
	case DescBaseColumnName:
		return r.BaseColumnName
	case DescBaseTableName:
		return r.BaseTableName
	case DescCaseSensitive:
		return r.CaseSensitive
	case DescCatalogName:
		return r.CatalogName
	case DescConciseType:
		return r.ConciseType
	case DescDataPtr:
		return r.DataPtr
	case DescDatetimeIntervalCode:
		return r.DatetimeIntervalCode
	case DescDisplaySize:
		return r.DisplaySize
	case DescFixedPrecScale:
		return r.FixedPrecScale
	case DescIndicatorPtr:
		return r.IndicatorPtr
	case DescLabel:
		return r.Label
	case DescLength:
		return r.Length
	case DescLiteralPrefix:
		return r.LiteralPrefix
	case DescLiteralSuffix:
		return r.LiteralSuffix
	case DescLocalTypeName:
		return r.LocalTypeName
	case DescName:
		return r.Name
	case DescNullable:
		return r.Nullable
	case DescNumPrecRadix:
		return r.NumPrecRadix
	case DescOctetLength:
		return r.OctetLength
	case DescOctetLengthPtr:
		return r.OctetLengthPtr
	case DescParameterType:
		return r.ParameterType
	case DescPrecision:
		return r.Precision
	case DescRowVer:
		return r.RowVer
	case DescScale:
		return r.Scale
	case DescSchemaName:
		return r.SchemaName
	case DescSearchable:
		return r.Searchable
	case DescTableName:
		return r.TableName
	case DescType:
		return r.Type
	case DescTypeName:
		return r.TypeName
	case DescUnnamed:
		return r.Unnamed
	case DescUnsigned:
		return r.Unsigned
	case DescUpdatable:
		return r.Updatable
	}
	return nil
}

func (d *Descriptor) setRecordField(r *DescRecord, id FieldID, v any) error {
	var err error
	switch id {
	case DescConciseType:
		var t int16
		if t, err = fieldInt[int16](id, v); err == nil {
			err = d.setConciseType(r, t)
		}
	case DescType:
		var t int16
		if t, err = fieldInt[int16](id, v); err == nil {
			err = d.setVerboseType(r, t, r.DatetimeIntervalCode)
		}
	case DescDatetimeIntervalCode:
		var code int16
		if code, err = fieldInt[int16](id, v); err == nil {
			if r.Type != sqlDatetime && r.Type != sqlInterval {
				return errFieldValue(id, v)
			}
			err = d.setVerboseType(r, r.Type, code)
		}
	case DescDatetimeIntervalPrecision:
		r.DatetimeIntervalPrecision, err = fieldInt[int32](id, v)
	case DescDataPtr:
		p, ok := v.([]byte)
		if !ok && v != nil {
			return errFieldValue(id, v)
		}
		r.DataPtr = p
	case DescIndicatorPtr:
		p, ok := v.([]int64)
		if !ok && v != nil {
			return errFieldValue(id, v)
		}
		r.IndicatorPtr = p
	case DescOctetLengthPtr:
		p, ok := v.([]int64)
		if !ok && v != nil {
			return errFieldValue(id, v)
		}
		r.OctetLengthPtr = p
	case DescLength:
		r.Length, err = fieldInt[int64](id, v)
	case DescOctetLength:
		r.OctetLength, err = fieldInt[int64](id, v)
	case DescNumPrecRadix:
		r.NumPrecRadix, err = fieldInt[int32](id, v)
	case DescPrecision:
		r.Precision, err = fieldInt[int16](id, v)
	case DescScale:
		r.Scale, err = fieldInt[int16](id, v)
	case DescParameterType:
		r.ParameterType, err = fieldInt[int16](id, v)
	case DescName:
		var name string
		if name, err = fieldString(id, v); err == nil {
			r.Name = name
			r.Unnamed = sqlNamed
			if name == "" {
				r.Unnamed = sqlUnnamed
			}
		}
	case DescUnnamed:
		var u int16
		if u, err = fieldInt[int16](id, v); err == nil {
			// only SQL_UNNAMED may be set explicitly
			if u != sqlUnnamed {
				return errFieldValue(id, v)
			}
			r.Unnamed = u
		}
	default:
		return errInvalidField(id, "not a settable record field")
	}
	return err
}

// setConciseType sets the concise type and derives the verbose type and subcode.
// Application descriptors carry native C types, implementation descriptors SQL types.
func (d *Descriptor) setConciseType(r *DescRecord, t int16) error {
	if d.kind.application() {
		nt := NativeType(t)
		if !nt.Known() {
			return errUnsupported(fmt.Sprintf("unknown native type %d", t))
		}
		r.ConciseType = t
		r.Type, r.DatetimeIntervalCode = nt.verbose()
	} else {
		verbose, code := VerboseType(SQLType(t))
		r.ConciseType = t
		r.Type, r.DatetimeIntervalCode = int16(verbose), code
	}
	applyTypeDefaults(r)
	return nil
}

// setVerboseType sets the verbose type and subcode and derives the concise type.
func (d *Descriptor) setVerboseType(r *DescRecord, typ, code int16) error {
	if typ != sqlDatetime && typ != sqlInterval {
		return d.setConciseType(r, typ)
	}
	r.Type, r.DatetimeIntervalCode = typ, code
	if d.kind.application() {
		if nt, ok := nativeFromVerbose(typ, code); ok {
			r.ConciseType = int16(nt)
		}
	} else if typ == sqlInterval {
		r.ConciseType = code + 100
	} else {
		r.ConciseType = code + int16(SQLTypeDate) - codeDate
	}
	applyTypeDefaults(r)
	return nil
}

// applyTypeDefaults resets the shape fields that depend on the type.
func applyTypeDefaults(r *DescRecord) {
	r.Scale = 0
	r.Precision = 0
	switch {
	case r.Type == sqlInterval:
		r.DatetimeIntervalPrecision = 2
		if intervalHasSeconds(r.DatetimeIntervalCode) {
			r.Precision = defaultIntervalPrecision
		}
	case r.Type == sqlDatetime && r.DatetimeIntervalCode == codeTimestamp:
		r.Precision = defaultIntervalPrecision
	case r.ConciseType == int16(CChar) || r.ConciseType == int16(SQLVarchar) || r.ConciseType == int16(CWChar):
		r.Length = 1
	}
}

// intervalHasSeconds reports whether an interval subcode includes a seconds field.
func intervalHasSeconds(code int16) bool {
	switch NativeType(code + 100) {
	case CIntervalSecond, CIntervalDayToSecond, CIntervalHourToSecond, CIntervalMinuteToSecond:
		return true
	}
	return false
}
