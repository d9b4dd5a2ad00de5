package tsodbc

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
)

// ScalarType is the backend's name for a scalar column type.
type ScalarType string

// Scalar column types reported by the query client.
const (
	ScalarVarchar             ScalarType = "VARCHAR"
	ScalarBoolean             ScalarType = "BOOLEAN"
	ScalarBigint              ScalarType = "BIGINT"
	ScalarDouble              ScalarType = "DOUBLE"
	ScalarTimestamp           ScalarType = "TIMESTAMP"
	ScalarDate                ScalarType = "DATE"
	ScalarTime                ScalarType = "TIME"
	ScalarIntervalDayToSecond ScalarType = "INTERVAL_DAY_TO_SECOND"
	ScalarIntervalYearToMonth ScalarType = "INTERVAL_YEAR_TO_MONTH"
	ScalarUnknown             ScalarType = "UNKNOWN"
	ScalarInteger             ScalarType = "INTEGER"
)

// varcharSize is the column size recorded for variable-length text columns.
const varcharSize = -2

type scalarInfo struct {
	typ  BackendType
	size int
}

var scalarTypes = map[ScalarType]scalarInfo{
	ScalarBigint:              {TypeBigint, 8},
	ScalarBoolean:             {TypeBoolean, 1},
	ScalarDate:                {TypeDate, 6},
	ScalarDouble:              {TypeDouble, 8},
	ScalarInteger:             {TypeInteger, 4},
	ScalarTime:                {TypeTime, 6},
	ScalarTimestamp:           {TypeTimestamp, 16},
	ScalarIntervalDayToSecond: {TypeVarchar, varcharSize},
	ScalarIntervalYearToMonth: {TypeVarchar, varcharSize},
	ScalarVarchar:             {TypeVarchar, varcharSize},
	ScalarUnknown:             {TypeVarchar, varcharSize},
}

// ColumnType describes the type of a result column. Exactly one of the fields is set.
type ColumnType struct {
	Scalar     ScalarType
	Array      *ColumnType
	Row        []ColumnInfo
	TimeSeries *ColumnType
}

// ColumnInfo is one column of a result page's schema.
type ColumnInfo struct {
	Name string
	Type ColumnType
	// TypeMod is the declared length, or zero when the backend does not report one.
	TypeMod int
}

// DatumKind tags the shape of a Datum.
type DatumKind int

const (
	// DatumEmpty is a datum with no value set.
	DatumEmpty DatumKind = iota
	DatumNull
	DatumScalar
	DatumArray
	DatumRow
	DatumTimeSeries
)

// Datum is one possibly nested value of a result page.
type Datum struct {
	Kind   DatumKind
	Scalar string
	// Values holds array elements or row fields.
	Values []Datum
	Points []TimeSeriesPoint
}

// TimeSeriesPoint is one (time, value) pair of a time series.
type TimeSeriesPoint struct {
	Time  string
	Value Datum
}

// NullDatum returns a null datum.
func NullDatum() Datum { return Datum{Kind: DatumNull} }

// ScalarDatum returns a scalar datum holding s.
func ScalarDatum(s string) Datum { return Datum{Kind: DatumScalar, Scalar: s} }

// ArrayDatum returns an array datum.
func ArrayDatum(values ...Datum) Datum { return Datum{Kind: DatumArray, Values: values} }

// RowDatum returns a row datum.
func RowDatum(values ...Datum) Datum { return Datum{Kind: DatumRow, Values: values} }

// TimeSeriesDatum returns a time-series datum.
func TimeSeriesDatum(points ...TimeSeriesPoint) Datum {
	return Datum{Kind: DatumTimeSeries, Points: points}
}

// Page is one page of query results.
type Page struct {
	Columns []ColumnInfo
	Rows    [][]Datum
	// NextToken is the continuation token; empty means the result is complete.
	NextToken string
}

// Column is a resolved result column as stored in a row cache schema.
type Column struct {
	Name string
	Type BackendType
	// Size is the fixed width in bytes, or -2 for text.
	Size int
	// TypeMod is the declared length or -1.
	TypeMod int
	// DisplaySize is the longest cell text seen so far, or -1.
	DisplaySize int
}

// ResolveSchema maps page column metadata onto backend types.
func ResolveSchema(infos []ColumnInfo) ([]Column, error) {
	cols := make([]Column, len(infos))
	for i, info := range infos {
		typ, size, err := resolveColumnType(info.Type)
		if err != nil {
			return nil, NewError(ErrSchema, CodeGeneralError,
				fmt.Sprintf("column %d (%s): %v", i+1, info.Name, err))
		}
		typmod := info.TypeMod
		if typmod <= 0 {
			typmod = -1
		}
		cols[i] = Column{
			Name:        info.Name,
			Type:        typ,
			Size:        size,
			TypeMod:     typmod,
			DisplaySize: -1,
		}
	}
	return cols, nil
}

func resolveColumnType(ct ColumnType) (BackendType, int, error) {
	switch {
	case ct.Scalar != "":
		info, ok := scalarTypes[ct.Scalar]
		if !ok {
			return 0, 0, fmt.Errorf("scalar type is not set or unsupported scalar type")
		}
		return info.typ, info.size, nil
	case ct.Array != nil, ct.Row != nil, ct.TimeSeries != nil:
		return TypeVarchar, varcharSize, nil
	}
	return 0, 0, fmt.Errorf("unsupported column type")
}

// FlattenDatum renders a datum as text. Scalars are verbatim.
func FlattenDatum(d Datum) string {
	var b strings.Builder
	flattenDatum(&b, d)
	return b.String()
}

func flattenDatum(b *strings.Builder, d Datum) {
	switch d.Kind {
	case DatumScalar:
		b.WriteString(d.Scalar)
	case DatumNull:
		b.WriteString("null")
	case DatumArray:
		if len(d.Values) == 0 {
			b.WriteString("-")
			return
		}
		b.WriteByte('[')
		flattenList(b, d.Values)
		b.WriteByte(']')
	case DatumRow:
		b.WriteByte('(')
		flattenList(b, d.Values)
		b.WriteByte(')')
	case DatumTimeSeries:
		b.WriteByte('[')
		for i, p := range d.Points {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("{time: ")
			b.WriteString(p.Time)
			b.WriteString(", value: ")
			flattenDatum(b, p.Value)
			b.WriteByte('}')
		}
		b.WriteByte(']')
	default:
		b.WriteString("-")
	}
}

func flattenList(b *strings.Builder, values []Datum) {
	for i, v := range values {
		if i > 0 {
			b.WriteString(", ")
		}
		flattenDatum(b, v)
	}
}

// normalizeDouble re-renders a DOUBLE cell with six fixed decimals.
// Text that does not parse to a finite number is kept as is.
func normalizeDouble(s string) string {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return s
	}
	return strconv.FormatFloat(f, 'f', 6, 64)
}

type materializerState int

const (
	materializerIdle materializerState = iota
	materializerBusy
)

// Materializer flattens result pages into a row cache.
// A Materializer belongs to one statement and is not safe for concurrent use.
type Materializer struct {
	fetchSize int
	strings   *StringCache
	state     materializerState
	logger    *slog.Logger
}

// NewMaterializer creates a materializer for the given configuration.
func NewMaterializer(cfg Config) *Materializer {
	fetchSize := cfg.FetchSize
	if fetchSize <= 0 {
		fetchSize = DefaultFetchSize
	}
	return &Materializer{
		fetchSize: fetchSize,
		strings:   NewStringCache(),
		logger:    withComponent(cfg.logger(), "materialize"),
	}
}

// Materializing reports whether a page is being materialized.
func (m *Materializer) Materializing() bool {
	return m.state == materializerBusy
}

// Reset releases the text interned for the previous result.
func (m *Materializer) Reset() {
	m.strings.Reset()
}

// FetchSize returns the page size the materializer expects from the query client.
func (m *Materializer) FetchSize() int {
	return m.fetchSize
}

// Materialize appends every row of page to cache. The first page of a result
// records the schema. A page is stored whole or not at all: a schema error or a
// row of the wrong width fails before anything is cached.
func (m *Materializer) Materialize(page *Page, cache *RowCache) error {
	if page == nil {
		return NewError(ErrSchema, CodeGeneralError, "nil result page")
	}
	m.state = materializerBusy
	defer func() { m.state = materializerIdle }()

	var resolved []Column
	width := cache.ColumnCount()
	if !cache.HasSchema() {
		var err error
		resolved, err = ResolveSchema(page.Columns)
		if err != nil {
			m.logger.Debug("schema resolution failed", "error", err)
			return err
		}
		width = len(resolved)
	}
	for r, row := range page.Rows {
		if len(row) != width {
			return NewError(ErrSchema, CodeGeneralError,
				fmt.Sprintf("row %d has %d values, expected %d", r+1, len(row), width))
		}
	}
	if resolved != nil {
		if err := cache.SetSchema(resolved); err != nil {
			return err
		}
		m.strings.Reset()
	}

	cols := cache.Columns()
	for _, row := range page.Rows {
		tuple := cache.newTuple()
		for j, d := range row {
			if d.Kind == DatumNull {
				tuple[j] = NullValue
				continue
			}
			text := FlattenDatum(d)
			if d.Kind == DatumScalar && cols[j].Type == TypeDouble {
				text = normalizeDouble(text)
			}
			tuple[j] = Text(m.strings.Get(text))
			if len(text) > cols[j].DisplaySize {
				cols[j].DisplaySize = len(text)
			}
		}
		if err := cache.Append(tuple); err != nil {
			cache.pool.Put(tuple)
			return err
		}
	}

	if len(page.Rows) < m.fetchSize || page.NextToken == "" {
		cache.markEOF()
	}
	m.logger.Debug("page materialized",
		"rows", len(page.Rows),
		"cached", cache.Len(),
		"eof", cache.EOF())
	return nil
}
