package tsodbc

import (
	"fmt"
	"strconv"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// Field metadata marking a list of struct{time, value} as a time series.
const (
	timeSeriesMetadataKey   = "timestream.type"
	timeSeriesMetadataValue = "timeseries"
)

const (
	arrowDateLayout      = "2006-01-02"
	arrowTimeLayout      = "15:04:05.000000000"
	arrowTimestampLayout = "2006-01-02 15:04:05.000000000"
)

// PageFromRecord adapts an Arrow record batch into a result page.
// Nested lists become arrays, structs become rows, and lists tagged with the
// time-series field metadata become time series.
func PageFromRecord(rec arrow.Record, nextToken string) (*Page, error) {
	if rec == nil {
		return nil, NewError(ErrSchema, CodeGeneralError, "nil record")
	}
	schema := rec.Schema()
	page := &Page{
		Columns:   make([]ColumnInfo, schema.NumFields()),
		NextToken: nextToken,
	}
	for i, f := range schema.Fields() {
		ct, err := arrowColumnType(f)
		if err != nil {
			return nil, NewError(ErrSchema, CodeGeneralError,
				fmt.Sprintf("column %d (%s): %v", i+1, f.Name, err))
		}
		page.Columns[i] = ColumnInfo{Name: f.Name, Type: ct}
	}

	rows := int(rec.NumRows())
	page.Rows = make([][]Datum, rows)
	for r := range page.Rows {
		page.Rows[r] = make([]Datum, len(page.Columns))
	}
	for c := 0; c < int(rec.NumCols()); c++ {
		col := rec.Column(c)
		field := schema.Field(c)
		for r := 0; r < rows; r++ {
			d, err := arrowDatum(col, field, r)
			if err != nil {
				return nil, NewError(ErrSchema, CodeGeneralError,
					fmt.Sprintf("column %d (%s) row %d: %v", c+1, field.Name, r+1, err))
			}
			page.Rows[r][c] = d
		}
	}
	return page, nil
}

func isTimeSeries(f arrow.Field) bool {
	idx := f.Metadata.FindKey(timeSeriesMetadataKey)
	return idx >= 0 && f.Metadata.Values()[idx] == timeSeriesMetadataValue
}

func arrowColumnType(f arrow.Field) (ColumnType, error) {
	switch dt := f.Type.(type) {
	case *arrow.ListType:
		elem, err := arrowColumnType(dt.ElemField())
		if err != nil {
			return ColumnType{}, err
		}
		if isTimeSeries(f) {
			value, err := timeSeriesValueType(dt)
			if err != nil {
				return ColumnType{}, err
			}
			return ColumnType{TimeSeries: &value}, nil
		}
		return ColumnType{Array: &elem}, nil
	case *arrow.StructType:
		fields := dt.Fields()
		row := make([]ColumnInfo, len(fields))
		for i, sf := range fields {
			ct, err := arrowColumnType(sf)
			if err != nil {
				return ColumnType{}, err
			}
			row[i] = ColumnInfo{Name: sf.Name, Type: ct}
		}
		return ColumnType{Row: row}, nil
	}

	switch f.Type.ID() {
	case arrow.BOOL:
		return ColumnType{Scalar: ScalarBoolean}, nil
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.UINT8, arrow.UINT16:
		return ColumnType{Scalar: ScalarInteger}, nil
	case arrow.INT64, arrow.UINT32, arrow.UINT64:
		return ColumnType{Scalar: ScalarBigint}, nil
	case arrow.FLOAT32, arrow.FLOAT64:
		return ColumnType{Scalar: ScalarDouble}, nil
	case arrow.STRING, arrow.LARGE_STRING:
		return ColumnType{Scalar: ScalarVarchar}, nil
	case arrow.DATE32, arrow.DATE64:
		return ColumnType{Scalar: ScalarDate}, nil
	case arrow.TIME32, arrow.TIME64:
		return ColumnType{Scalar: ScalarTime}, nil
	case arrow.TIMESTAMP:
		return ColumnType{Scalar: ScalarTimestamp}, nil
	case arrow.INTERVAL_MONTHS:
		return ColumnType{Scalar: ScalarIntervalYearToMonth}, nil
	case arrow.INTERVAL_DAY_TIME, arrow.INTERVAL_MONTH_DAY_NANO, arrow.DURATION:
		return ColumnType{Scalar: ScalarIntervalDayToSecond}, nil
	case arrow.NULL:
		return ColumnType{Scalar: ScalarUnknown}, nil
	}
	return ColumnType{}, fmt.Errorf("unsupported arrow type %s", f.Type)
}

// timeSeriesValueType returns the value type of a list<struct<time, value>>.
func timeSeriesValueType(dt *arrow.ListType) (ColumnType, error) {
	st, ok := dt.Elem().(*arrow.StructType)
	if !ok || st.NumFields() != 2 {
		return ColumnType{}, fmt.Errorf("time series must be a list of struct<time, value>")
	}
	return arrowColumnType(st.Field(1))
}

func arrowDatum(arr arrow.Array, f arrow.Field, i int) (Datum, error) {
	if arr.IsNull(i) {
		return NullDatum(), nil
	}
	switch a := arr.(type) {
	case *array.List:
		start, end := a.ValueOffsets(i)
		values := a.ListValues()
		elemField := a.DataType().(*arrow.ListType).ElemField()
		if isTimeSeries(f) {
			return arrowTimeSeries(values, int(start), int(end))
		}
		elems := make([]Datum, 0, end-start)
		for j := int(start); j < int(end); j++ {
			d, err := arrowDatum(values, elemField, j)
			if err != nil {
				return Datum{}, err
			}
			elems = append(elems, d)
		}
		return ArrayDatum(elems...), nil
	case *array.Struct:
		st := a.DataType().(*arrow.StructType)
		fields := make([]Datum, a.NumField())
		for j := range fields {
			d, err := arrowDatum(a.Field(j), st.Field(j), i)
			if err != nil {
				return Datum{}, err
			}
			fields[j] = d
		}
		return RowDatum(fields...), nil
	}
	s, err := arrowScalarText(arr, i)
	if err != nil {
		return Datum{}, err
	}
	return ScalarDatum(s), nil
}

func arrowTimeSeries(values arrow.Array, start, end int) (Datum, error) {
	st, ok := values.(*array.Struct)
	if !ok || st.NumField() != 2 {
		return Datum{}, fmt.Errorf("time series must be a list of struct<time, value>")
	}
	valueField := st.DataType().(*arrow.StructType).Field(1)
	points := make([]TimeSeriesPoint, 0, end-start)
	for j := start; j < end; j++ {
		t, err := arrowScalarText(st.Field(0), j)
		if err != nil {
			return Datum{}, err
		}
		v, err := arrowDatum(st.Field(1), valueField, j)
		if err != nil {
			return Datum{}, err
		}
		points = append(points, TimeSeriesPoint{Time: t, Value: v})
	}
	return TimeSeriesDatum(points...), nil
}

// arrowScalarText renders element i of a primitive array in the backend's text form.
func arrowScalarText(arr arrow.Array, i int) (string, error) {
	switch a := arr.(type) {
	case *array.Boolean:
		return strconv.FormatBool(a.Value(i)), nil
	case *array.Int8:
		return strconv.FormatInt(int64(a.Value(i)), 10), nil
	case *array.Int16:
		return strconv.FormatInt(int64(a.Value(i)), 10), nil
	case *array.Int32:
		return strconv.FormatInt(int64(a.Value(i)), 10), nil
	case *array.Int64:
		return strconv.FormatInt(a.Value(i), 10), nil
	case *array.Uint8:
		return strconv.FormatUint(uint64(a.Value(i)), 10), nil
	case *array.Uint16:
		return strconv.FormatUint(uint64(a.Value(i)), 10), nil
	case *array.Uint32:
		return strconv.FormatUint(uint64(a.Value(i)), 10), nil
	case *array.Uint64:
		return strconv.FormatUint(a.Value(i), 10), nil
	case *array.Float32:
		return strconv.FormatFloat(float64(a.Value(i)), 'f', -1, 32), nil
	case *array.Float64:
		return strconv.FormatFloat(a.Value(i), 'f', -1, 64), nil
	case *array.String:
		return a.Value(i), nil
	case *array.LargeString:
		return a.Value(i), nil
	case *array.Date32:
		return a.Value(i).ToTime().Format(arrowDateLayout), nil
	case *array.Date64:
		return a.Value(i).ToTime().Format(arrowDateLayout), nil
	case *array.Time32:
		unit := a.DataType().(*arrow.Time32Type).Unit
		return a.Value(i).ToTime(unit).Format(arrowTimeLayout), nil
	case *array.Time64:
		unit := a.DataType().(*arrow.Time64Type).Unit
		return a.Value(i).ToTime(unit).Format(arrowTimeLayout), nil
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return a.Value(i).ToTime(unit).UTC().Format(arrowTimestampLayout), nil
	case *array.MonthInterval:
		return yearMonthText(int64(a.Value(i))), nil
	case *array.DayTimeInterval:
		v := a.Value(i)
		return daySecondText(time.Duration(v.Days)*24*time.Hour +
			time.Duration(v.Milliseconds)*time.Millisecond), nil
	case *array.MonthDayNanoInterval:
		v := a.Value(i)
		if v.Months != 0 {
			return "", fmt.Errorf("month-day-nano interval with months cannot be a day to second interval")
		}
		return daySecondText(time.Duration(v.Days)*24*time.Hour + time.Duration(v.Nanoseconds)), nil
	case *array.Duration:
		unit := a.DataType().(*arrow.DurationType).Unit
		return daySecondText(time.Duration(a.Value(i)) * unit.Multiplier()), nil
	}
	return "", fmt.Errorf("unsupported arrow array %s", arr.DataType())
}

// yearMonthText renders a month count as "Y-M".
func yearMonthText(months int64) string {
	sign := ""
	if months < 0 {
		sign = "-"
		months = -months
	}
	return fmt.Sprintf("%s%d-%d", sign, months/12, months%12)
}

// daySecondText renders a duration as "D HH:MM:SS.fffffffff".
func daySecondText(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	day := 24 * time.Hour
	days := d / day
	d -= days * day
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	return fmt.Sprintf("%s%d %02d:%02d:%02d.%09d", sign, days, h, m, s, d)
}
