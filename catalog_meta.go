package tsodbc

import (
	"math"
	"strconv"
	"strings"
)

// Backend type names reported by DESCRIBE.
const (
	typeNameDouble    = "double"
	typeNameVarchar   = "varchar"
	typeNameTimestamp = "timestamp"
	typeNameDate      = "date"
	typeNameTime      = "time"
	typeNameBigint    = "bigint"
	typeNameInteger   = "integer"
	typeNameBoolean   = "boolean"
)

// Sizes reported for catalog VARCHAR columns.
const (
	catalogVarcharSize   = math.MaxInt32
	catalogVarcharLength = 256
)

// Width of the name columns of catalog results.
const maxInfoString = 128

// catalog result column names
const (
	colTableCat        = "TABLE_CAT"
	colTableSchem      = "TABLE_SCHEM"
	colTableName       = "TABLE_NAME"
	colTableType       = "TABLE_TYPE"
	colRemarks         = "REMARKS"
	colColumnName      = "COLUMN_NAME"
	colDataType        = "DATA_TYPE"
	colTypeName        = "TYPE_NAME"
	colColumnSize      = "COLUMN_SIZE"
	colBufferLength    = "BUFFER_LENGTH"
	colDecimalDigits   = "DECIMAL_DIGITS"
	colNumPrecRadix    = "NUM_PREC_RADIX"
	colNullable        = "NULLABLE"
	colColumnDef       = "COLUMN_DEF"
	colSQLDataType     = "SQL_DATA_TYPE"
	colSQLDatetimeSub  = "SQL_DATETIME_SUB"
	colCharOctetLength = "CHAR_OCTET_LENGTH"
	colOrdinalPosition = "ORDINAL_POSITION"
	colIsNullable      = "IS_NULLABLE"
)

// TableTypeTable is the only table type the backend has.
const TableTypeTable = "TABLE"

// TableRef names one backend table.
type TableRef struct {
	Database string
	Table    string
}

// ColumnRef is one row of a DESCRIBE result.
type ColumnRef struct {
	Database string
	Table    string
	Column   string
	TypeName string
	// Ordinal is the 1-based position of the column in its table.
	Ordinal int
}

// TypeNameSQLType maps a backend type name onto an interface type code.
// Names the backend does not document fall back to VARCHAR.
func (c *TypeCatalog) TypeNameSQLType(name string) SQLType {
	switch strings.ToLower(name) {
	case typeNameDouble:
		return SQLDouble
	case typeNameTimestamp:
		return SQLTypeTimestamp
	case typeNameDate:
		return SQLTypeDate
	case typeNameTime:
		return SQLTypeTime
	case typeNameBigint:
		return SQLBigint
	case typeNameInteger:
		return SQLInteger
	case typeNameBoolean:
		return SQLBit
	}
	return c.wide(SQLVarchar)
}

// CatalogColumnSize returns the COLUMN_SIZE of a catalog column of type t, or 0 when none applies.
func (c *TypeCatalog) CatalogColumnSize(t SQLType) int {
	switch t {
	case SQLVarchar, SQLWVarchar:
		return catalogVarcharSize
	case SQLDouble:
		return 15
	case SQLTypeTimestamp:
		return 29
	case SQLTypeDate:
		return 10
	case SQLTypeTime:
		return 8
	case SQLBigint:
		return 20
	case SQLInteger:
		return 10
	case SQLBit:
		return 5
	}
	return 0
}

// CatalogBufferLength returns the BUFFER_LENGTH of a catalog column of type t, or 0 when none applies.
func (c *TypeCatalog) CatalogBufferLength(t SQLType) int {
	switch t {
	case SQLVarchar:
		return catalogVarcharLength
	case SQLWVarchar:
		return wcharLen * catalogVarcharLength
	case SQLDouble, SQLBigint:
		return 8
	case SQLTypeTimestamp:
		return timestampStructSize
	case SQLTypeDate, SQLTypeTime:
		return 6
	case SQLInteger:
		return 4
	case SQLBit:
		return 1
	}
	return 0
}

func nameColumn(name string) Column {
	return Column{Name: name, Type: TypeVarchar, Size: varcharSize, TypeMod: maxInfoString, DisplaySize: -1}
}

func int2Column(name string) Column {
	return Column{Name: name, Type: TypeInt2, Size: 2, TypeMod: -1, DisplaySize: -1}
}

func int4Column(name string) Column {
	return Column{Name: name, Type: TypeInteger, Size: 4, TypeMod: -1, DisplaySize: -1}
}

// tablesSchema is the shape of the "tables" catalog result.
func tablesSchema() []Column {
	return []Column{
		nameColumn(colTableCat),
		nameColumn(colTableSchem),
		nameColumn(colTableName),
		nameColumn(colTableType),
		nameColumn(colRemarks),
	}
}

// columnsSchema is the shape of the "columns" catalog result.
func columnsSchema() []Column {
	return []Column{
		nameColumn(colTableCat),
		nameColumn(colTableSchem),
		nameColumn(colTableName),
		nameColumn(colColumnName),
		int2Column(colDataType),
		nameColumn(colTypeName),
		int4Column(colColumnSize),
		int4Column(colBufferLength),
		int2Column(colDecimalDigits),
		int2Column(colNumPrecRadix),
		int2Column(colNullable),
		nameColumn(colRemarks),
		nameColumn(colColumnDef),
		int2Column(colSQLDataType),
		int2Column(colSQLDatetimeSub),
		int4Column(colCharOctetLength),
		int4Column(colOrdinalPosition),
		nameColumn(colIsNullable),
	}
}

func intText(v int) ValueText {
	return Text(strconv.Itoa(v))
}

// loadCatalogRows replaces the contents of cache with a complete catalog result.
func loadCatalogRows(cache *RowCache, cols []Column, rows [][]ValueText) error {
	cache.Reset()
	if err := cache.SetSchema(cols); err != nil {
		return err
	}
	for _, row := range rows {
		tuple := cache.newTuple()
		copy(tuple, row)
		for j, v := range row {
			if !v.IsNull && len(v.Raw) > cache.columns[j].DisplaySize {
				cache.columns[j].DisplaySize = len(v.Raw)
			}
		}
		if err := cache.Append(tuple); err != nil {
			cache.pool.Put(tuple)
			return err
		}
	}
	cache.markEOF()
	return nil
}

// LoadTables fills cache with a "tables" result listing each table as TABLE.
func LoadTables(cache *RowCache, tables []TableRef) error {
	rows := make([][]ValueText, len(tables))
	for i, t := range tables {
		rows[i] = []ValueText{Text(t.Database), NullValue, Text(t.Table), Text(TableTypeTable), NullValue}
	}
	return loadCatalogRows(cache, tablesSchema(), rows)
}

// LoadCatalogs fills cache with a "tables" result listing only database names.
func LoadCatalogs(cache *RowCache, databases []string) error {
	rows := make([][]ValueText, len(databases))
	for i, db := range databases {
		rows[i] = []ValueText{Text(db), NullValue, NullValue, NullValue, NullValue}
	}
	return loadCatalogRows(cache, tablesSchema(), rows)
}

// LoadTableTypes fills cache with a "tables" result listing the supported table types.
func LoadTableTypes(cache *RowCache) error {
	rows := [][]ValueText{{NullValue, NullValue, NullValue, Text(TableTypeTable), NullValue}}
	return loadCatalogRows(cache, tablesSchema(), rows)
}

// LoadColumns fills cache with a "columns" result for the described columns.
func (c *TypeCatalog) LoadColumns(cache *RowCache, columns []ColumnRef) error {
	rows := make([][]ValueText, len(columns))
	for i, col := range columns {
		rows[i] = c.columnRow(col)
	}
	return loadCatalogRows(cache, columnsSchema(), rows)
}

func (c *TypeCatalog) columnRow(col ColumnRef) []ValueText {
	name := strings.ToLower(col.TypeName)
	sqlType := c.TypeNameSQLType(name)
	bufLen := c.CatalogBufferLength(sqlType)

	row := make([]ValueText, len(columnsSchema()))
	row[0] = Text(col.Database)
	row[1] = NullValue
	row[2] = Text(col.Table)
	row[3] = Text(col.Column)
	row[4] = intText(int(sqlType))
	row[5] = Text(col.TypeName)
	row[6] = intText(c.CatalogColumnSize(sqlType))
	row[7] = intText(bufLen)
	row[8] = NullValue
	row[9] = NullValue
	row[10] = intText(int(sqlNullable))
	row[11] = NullValue
	row[12] = NullValue
	row[13] = intText(int(sqlType))
	row[14] = NullValue
	row[15] = NullValue
	row[16] = intText(col.Ordinal)
	row[17] = Text("YES")

	switch sqlType {
	case SQLTypeTimestamp:
		row[8] = intText(9)
		row[13] = intText(int(sqlDatetime))
		row[14] = intText(int(codeTimestamp))
	case SQLTypeDate:
		row[13] = intText(int(sqlDatetime))
		row[14] = intText(int(codeDate))
	case SQLTypeTime:
		row[13] = intText(int(sqlDatetime))
		row[14] = intText(int(codeTime))
	case SQLDouble, SQLInteger, SQLBigint:
		row[9] = intText(10)
	case SQLVarchar, SQLWVarchar:
		row[15] = intText(c.CatalogColumnSize(sqlType))
	}
	return row
}
