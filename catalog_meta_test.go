package tsodbc

import (
	"math"
	"strconv"
	"testing"
)

func TestTypeNameSQLType(t *testing.T) {
	c := NewTypeCatalog(NewConfig())
	wc := NewTypeCatalog(NewConfig(WithUnicode(true)))

	tests := map[string]SQLType{
		"double":    SQLDouble,
		"DOUBLE":    SQLDouble,
		"timestamp": SQLTypeTimestamp,
		"date":      SQLTypeDate,
		"time":      SQLTypeTime,
		"bigint":    SQLBigint,
		"integer":   SQLInteger,
		"boolean":   SQLBit,
		"varchar":   SQLVarchar,
		"json":      SQLVarchar,
	}
	for name, want := range tests {
		if got := c.TypeNameSQLType(name); got != want {
			t.Errorf("%s: expected %d, got %d", name, want, got)
		}
	}
	if got := wc.TypeNameSQLType("interval_day_to_second"); got != SQLWVarchar {
		t.Errorf("Expected unknown names to map to SQL_WVARCHAR in unicode mode, got %d", got)
	}
	if got := wc.TypeNameSQLType("bigint"); got != SQLBigint {
		t.Errorf("Expected SQL_BIGINT in unicode mode, got %d", got)
	}
}

func TestCatalogSizes(t *testing.T) {
	c := NewTypeCatalog(NewConfig())

	tests := []struct {
		typ    SQLType
		size   int
		length int
	}{
		{SQLVarchar, math.MaxInt32, 256},
		{SQLWVarchar, math.MaxInt32, 512},
		{SQLDouble, 15, 8},
		{SQLTypeTimestamp, 29, timestampStructSize},
		{SQLTypeDate, 10, 6},
		{SQLTypeTime, 8, 6},
		{SQLBigint, 20, 8},
		{SQLInteger, 10, 4},
		{SQLBit, 5, 1},
		{SQLGUID, 0, 0},
	}
	for _, tt := range tests {
		if got := c.CatalogColumnSize(tt.typ); got != tt.size {
			t.Errorf("%d: expected column size %d, got %d", tt.typ, tt.size, got)
		}
		if got := c.CatalogBufferLength(tt.typ); got != tt.length {
			t.Errorf("%d: expected buffer length %d, got %d", tt.typ, tt.length, got)
		}
	}
}

func cellText(t *testing.T, cache *RowCache, row, col int) (string, bool) {
	t.Helper()
	v, ok := cache.Cell(row, col)
	if !ok {
		t.Fatalf("Failed to read cell (%d, %d)", row, col)
	}
	return v.Raw, v.IsNull
}

func TestLoadColumns(t *testing.T) {
	c := NewTypeCatalog(NewConfig())
	cache := NewRowCache(nil, nil)

	columns := []ColumnRef{
		{Database: "metrics", Table: "cpu", Column: "ratio", TypeName: "double", Ordinal: 1},
		{Database: "metrics", Table: "cpu", Column: "time", TypeName: "timestamp", Ordinal: 2},
		{Database: "metrics", Table: "cpu", Column: "host", TypeName: "varchar", Ordinal: 3},
		{Database: "metrics", Table: "cpu", Column: "day", TypeName: "date", Ordinal: 4},
	}
	if err := c.LoadColumns(cache, columns); err != nil {
		t.Fatalf("Failed to load columns: %v", err)
	}
	if cache.ColumnCount() != 18 || cache.Len() != 4 {
		t.Fatalf("Expected 4 rows of 18 columns, got %d rows of %d", cache.Len(), cache.ColumnCount())
	}
	if !cache.EOF() {
		t.Errorf("Expected a catalog result to be complete")
	}

	names := []string{"TABLE_CAT", "TABLE_SCHEM", "TABLE_NAME", "COLUMN_NAME", "DATA_TYPE"}
	for i, name := range names {
		if got := cache.Columns()[i].Name; got != name {
			t.Errorf("Column %d: expected %s, got %s", i+1, name, got)
		}
	}

	expected := []struct {
		row     int
		col     int
		value   string
		isNull  bool
		comment string
	}{
		{0, 0, "metrics", false, "catalog"},
		{0, 1, "", true, "schema"},
		{0, 3, "ratio", false, "column name"},
		{0, 4, "8", false, "double data type"},
		{0, 5, "double", false, "type name"},
		{0, 6, "15", false, "double column size"},
		{0, 8, "", true, "double decimal digits"},
		{0, 9, "10", false, "double radix"},
		{0, 10, "1", false, "nullable"},
		{0, 13, "8", false, "double SQL data type"},
		{0, 16, "1", false, "ordinal"},
		{0, 17, "YES", false, "is nullable"},
		{1, 4, "93", false, "timestamp data type"},
		{1, 8, "9", false, "timestamp decimal digits"},
		{1, 9, "", true, "timestamp radix"},
		{1, 13, "9", false, "timestamp SQL data type"},
		{1, 14, "3", false, "timestamp subcode"},
		{2, 4, "12", false, "varchar data type"},
		{2, 7, "256", false, "varchar buffer length"},
		{2, 15, strconv.Itoa(math.MaxInt32), false, "varchar octet length"},
		{3, 13, "9", false, "date SQL data type"},
		{3, 14, "1", false, "date subcode"},
		{3, 15, "", true, "date octet length"},
	}
	for _, e := range expected {
		got, isNull := cellText(t, cache, e.row, e.col)
		if isNull != e.isNull || got != e.value {
			t.Errorf("%s: expected %q (null %v), got %q (null %v)", e.comment, e.value, e.isNull, got, isNull)
		}
	}

	// the widest name seen sizes the column
	if got := cache.Columns()[3].DisplaySize; got != len("ratio") {
		t.Errorf("Expected column name display size %d, got %d", len("ratio"), got)
	}
}

func TestLoadTables(t *testing.T) {
	cache := NewRowCache(nil, nil)

	if err := LoadTables(cache, []TableRef{{Database: "db", Table: "cpu"}, {Database: "db", Table: "disk"}}); err != nil {
		t.Fatalf("Failed to load tables: %v", err)
	}
	if cache.ColumnCount() != 5 || cache.Len() != 2 {
		t.Fatalf("Expected 2 rows of 5 columns, got %d rows of %d", cache.Len(), cache.ColumnCount())
	}
	if got, _ := cellText(t, cache, 1, 2); got != "disk" {
		t.Errorf("Expected disk, got %q", got)
	}
	if got, _ := cellText(t, cache, 1, 3); got != TableTypeTable {
		t.Errorf("Expected %s, got %q", TableTypeTable, got)
	}
	if _, isNull := cellText(t, cache, 0, 4); !isNull {
		t.Errorf("Expected null remarks")
	}

	// a second load replaces the first result
	if err := LoadCatalogs(cache, []string{"db", "ops", "audit"}); err != nil {
		t.Fatalf("Failed to load catalogs: %v", err)
	}
	if cache.Len() != 3 {
		t.Fatalf("Expected 3 rows, got %d", cache.Len())
	}
	if got, _ := cellText(t, cache, 2, 0); got != "audit" {
		t.Errorf("Expected audit, got %q", got)
	}
	if _, isNull := cellText(t, cache, 2, 2); !isNull {
		t.Errorf("Expected a null table name in the catalog list")
	}

	if err := LoadTableTypes(cache); err != nil {
		t.Fatalf("Failed to load table types: %v", err)
	}
	if cache.Len() != 1 || !cache.EOF() {
		t.Fatalf("Expected a single complete row, got %d (eof %v)", cache.Len(), cache.EOF())
	}
	if got, _ := cellText(t, cache, 0, 3); got != TableTypeTable {
		t.Errorf("Expected %s, got %q", TableTypeTable, got)
	}

	if err := LoadTables(cache, nil); err != nil {
		t.Fatalf("Failed to load an empty table list: %v", err)
	}
	if cache.Len() != 0 || !cache.EOF() || !cache.HasSchema() {
		t.Errorf("Expected an empty complete result with a schema")
	}
}
