package tsodbc

import (
	"golang.org/x/text/encoding/unicode"
)

// Width of the SQL_C_WCHAR code unit.
const wcharLen = 2

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// terminatorLen is the number of NUL bytes appended to text of type t.
func terminatorLen(t NativeType) int {
	switch t {
	case CWChar:
		return wcharLen
	case CBinary:
		return 0
	}
	return 1
}

// encodeText renders text in the byte form of t.
func encodeText(text string, t NativeType) ([]byte, error) {
	if t != CWChar {
		return []byte(text), nil
	}
	out, err := utf16le.NewEncoder().Bytes([]byte(text))
	if err != nil {
		e := errInvalidFormat("text cannot be encoded as UTF-16")
		e.Err = err
		return nil, e
	}
	return out, nil
}

// decodeWide turns UTF-16LE bytes into a Go string.
func decodeWide(b []byte) (string, error) {
	out, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// preformat renders backend date and time values to their canonical text before text delivery.
func (e *Engine) preformat(text string, bt BackendType) string {
	switch bt {
	case TypeDate:
		return dateParts(text).dateText()
	case TypeTime:
		p, _ := scanTimestamp(text)
		return p.timeText()
	case TypeTimestamp:
		p, _, _ := timestampParts(text, CChar)
		return p.timestampText()
	case TypeDouble:
		return e.numfmt.toClient(text)
	}
	return text
}

// convertText copies text into buf as SQL_C_CHAR, SQL_C_WCHAR or SQL_C_BINARY.
// An undersized buffer receives as much as fits plus the terminator, a string truncation
// warning is returned, and the next call with the same state continues after the copied bytes.
func (e *Engine) convertText(text string, bt BackendType, target NativeType, buf []byte, st *DataState) (Result, error) {
	if !st.active {
		encoded, err := encodeText(e.preformat(text, bt), target)
		if err != nil {
			return Result{Type: target}, err
		}
		if len(buf) == 0 {
			// length probe only; delivery has not started
			return Result{Type: target, Length: int64(len(encoded)), Warning: warnStringTruncated()}, nil
		}
		st.buf = encoded
		st.left = len(encoded)
		st.active = true
	}

	pending := st.buf[len(st.buf)-st.left:]
	length := len(pending)
	res := Result{Type: target, Length: int64(length)}
	size := len(buf)
	if size == 0 {
		res.Warning = warnStringTruncated()
		return res, nil
	}

	term := terminatorLen(target)
	var copyLen int
	switch {
	case term >= size:
		copyLen = 0
	case length+term > size:
		copyLen = size - term
		if target == CWChar {
			copyLen -= copyLen % wcharLen
		}
	default:
		copyLen = length
	}
	copy(buf, pending[:copyLen])
	written := copyLen
	for i := 0; i < term && copyLen+i < size; i++ {
		buf[copyLen+i] = 0
		written++
	}
	st.left -= copyLen
	res.Written = written

	chunk := pending[:copyLen]
	if target == CChar {
		res.Value = string(chunk)
	} else {
		res.Value = append([]byte(nil), chunk...)
	}

	if length+term > size {
		res.Warning = warnStringTruncated()
		return res, nil
	}
	st.buf = nil
	st.done = true
	return res, nil
}
