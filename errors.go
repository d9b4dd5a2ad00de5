package tsodbc

import (
	"errors"
	"fmt"
)

// ErrorType represents different classes of driver errors.
type ErrorType int

const (
	// ErrGeneric is a generic error.
	ErrGeneric ErrorType = iota
	// ErrInvalidFormat means the source text cannot be parsed as the requested type.
	ErrInvalidFormat
	// ErrOverflow means a numeric value is outside the destination range.
	ErrOverflow
	// ErrUnsupportedConversion means the native type is never valid for the backend type.
	ErrUnsupportedConversion
	// ErrTruncated is a truncation warning, fractional or string-length.
	ErrTruncated
	// ErrDescriptor is an illegal descriptor operation.
	ErrDescriptor
	// ErrSchema is a malformed or unsupported result schema.
	ErrSchema
	// ErrNullIndicator means null data was fetched into a slot without an indicator.
	ErrNullIndicator
	// ErrNoData means there is nothing more to return.
	ErrNoData
)

// Code is the fixed diagnostic code callers branch on.
type Code string

// Diagnostic codes.
const (
	CodeGeneralError                     Code = "GeneralError"
	CodeCannotModifyIrd                  Code = "CannotModifyIrd"
	CodeInvalidDescriptorFieldIdentifier Code = "InvalidDescriptorFieldIdentifier"
	CodeStringDataRightTruncated         Code = "StringDataRightTruncated"
	CodeNumericValueOutOfRange           Code = "NumericValueOutOfRange"
	CodeInvalidStringConversion          Code = "InvalidStringConversion"
	CodeFractionalTruncation             Code = "FractionalTruncation"
	CodeRestrictedDataType               Code = "RestrictedDataTypeAttributeViolation"
	CodeIndicatorRequired                Code = "IndicatorVariableRequired"
	CodeInvalidDescriptorIndex           Code = "InvalidDescriptorIndex"
	CodeNoData                           Code = "NoData"
)

var sqlStates = map[Code]string{
	CodeGeneralError:                     "HY000",
	CodeCannotModifyIrd:                  "HY016",
	CodeInvalidDescriptorFieldIdentifier: "HY091",
	CodeStringDataRightTruncated:         "01004",
	CodeNumericValueOutOfRange:           "22003",
	CodeInvalidStringConversion:          "22018",
	CodeFractionalTruncation:             "01S07",
	CodeRestrictedDataType:               "07006",
	CodeIndicatorRequired:                "22002",
	CodeInvalidDescriptorIndex:           "07009",
	CodeNoData:                           "02000",
}

// Error is a driver-specific error type.
type Error struct {
	Type    ErrorType
	Code    Code
	Message string
	// Record is the descriptor record or column number the error refers to, 0 when none.
	Record int
	Err    error
}

// Error returns the error message.
func (e *Error) Error() string {
	msg := e.Message
	if e.Record > 0 {
		msg = fmt.Sprintf("%s (record %d)", msg, e.Record)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return fmt.Sprintf("tsodbc: [%s] %s", e.Code, msg)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// SQLState returns the five character SQLSTATE for the error code.
func (e *Error) SQLState() string {
	if s, ok := sqlStates[e.Code]; ok {
		return s
	}
	return "HY000"
}

// Warning reports whether the error is a success-with-info condition.
func (e *Error) Warning() bool {
	return e.Type == ErrTruncated
}

// NewError creates a new Error.
func NewError(typ ErrorType, code Code, message string) *Error {
	return &Error{
		Type:    typ,
		Code:    code,
		Message: message,
	}
}

// atRecord returns the error annotated with a record number.
func (e *Error) atRecord(rec int) *Error {
	e.Record = rec
	return e
}

// IsError checks if an error is of a specific type.
func IsError(err error, typ ErrorType) bool {
	var drvErr *Error
	if !errors.As(err, &drvErr) {
		return false
	}
	return drvErr.Type == typ
}

// CodeOf returns the diagnostic code carried by err, or GeneralError for foreign errors.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var drvErr *Error
	if !errors.As(err, &drvErr) {
		return CodeGeneralError
	}
	return drvErr.Code
}

func errInvalidFormat(msg string) *Error {
	return NewError(ErrInvalidFormat, CodeInvalidStringConversion, msg)
}

func errOverflow(msg string) *Error {
	return NewError(ErrOverflow, CodeNumericValueOutOfRange, msg)
}

func errUnsupported(msg string) *Error {
	return NewError(ErrUnsupportedConversion, CodeRestrictedDataType, msg)
}

func warnStringTruncated() *Error {
	return NewError(ErrTruncated, CodeStringDataRightTruncated, "string data, right truncated")
}

func warnFractionalTruncated() *Error {
	return NewError(ErrTruncated, CodeFractionalTruncation, "fractional truncation")
}
