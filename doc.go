/*
Package tsodbc is the data-conversion and descriptor core of an ODBC-style driver for Amazon Timestream.

# Overview

The package turns pages of query results into the values an ODBC caller reads back. It offers
four building blocks that a statement handle wires together:

 1. TypeCatalog maps backend types onto SQL and C types and answers size, precision and
    literal questions for them.
 2. Materializer flattens result pages, including arrays, rows and time series, into a RowCache.
 3. Descriptor implements the ARD, APD, IRD and IPD with GetField, SetField and CopyDesc.
 4. Engine converts one cached value into the caller's buffer for a requested C type, with
    truncation, partial delivery and the fixed diagnostic codes callers branch on.

Statement ties them together in the order a driver uses them: AddPage, BindCol, Fetch, GetData.

# Fetching Example

	package main

	import (
		"encoding/binary"
		"fmt"
		"log"

		tsodbc "github.com/semihalev/go-tsodbc"
	)

	func main() {
		stmt := tsodbc.NewStatement(tsodbc.NewConfig())
		defer stmt.Close()

		page := &tsodbc.Page{
			Columns: []tsodbc.ColumnInfo{
				{Name: "measure", Type: tsodbc.ColumnType{Scalar: tsodbc.ScalarVarchar}},
				{Name: "value", Type: tsodbc.ColumnType{Scalar: tsodbc.ScalarBigint}},
			},
			Rows: [][]tsodbc.Datum{
				{tsodbc.ScalarDatum("cpu"), tsodbc.ScalarDatum("42")},
			},
		}
		if err := stmt.AddPage(page); err != nil {
			log.Fatalf("Failed to add page: %v", err)
		}

		value := make([]byte, 8)
		ind := make([]int64, 1)
		if err := stmt.BindCol(2, tsodbc.Slot{Type: tsodbc.CSBigInt, Buffer: value}, 8, ind); err != nil {
			log.Fatalf("Failed to bind column: %v", err)
		}
		for {
			res, err := stmt.Fetch()
			if err != nil {
				log.Fatalf("Failed to fetch: %v", err)
			}
			if res.NoData {
				break
			}
			fmt.Println(int64(binary.LittleEndian.Uint64(value)))
		}
	}

# Descriptors

Every statement owns an implicit ARD and APD. An explicitly allocated descriptor from
AllocDescriptor can be shared between statements with SetARD and SetAPD; it is reference
counted and freed by the last release. Only ARD to ARD and APD to APD copies succeed.
A copy into an IRD fails with CannotModifyIrd and every other pairing with GeneralError.

# Conversions

Conversion failures are *Error values carrying a Code such as NumericValueOutOfRange or
InvalidStringConversion. Truncation is not a failure: the value is delivered and the
condition is reported through Result.Warning. Character data that does not fit is
delivered in pieces by repeated GetData calls on the same column.

# Configuration

NewConfig takes functional options:

	cfg := tsodbc.NewConfig(
		tsodbc.WithUnicode(true),
		tsodbc.WithUnknownSizes(tsodbc.UnknownsAsLongest),
		tsodbc.WithFetchSize(500),
		tsodbc.WithSystemLocale(),
	)

The decimal point used for numeric text is an explicit NumberFormat. WithSystemLocale reads
it from the C library when one can be loaded and from the environment otherwise.

# Arrow

PageFromRecord adapts an Arrow record batch into a Page, so query clients that speak Arrow
can feed the materializer directly.
*/
package tsodbc
