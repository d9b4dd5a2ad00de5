package tsodbc

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
)

// FetchResult is the outcome of one Fetch call.
type FetchResult struct {
	// Rows is the number of rows in the rowset.
	Rows int
	// NoData reports that the result set is exhausted.
	NoData bool
	// Warning is the first truncation condition raised while filling the rowset.
	Warning *Error
}

// Statement owns the four descriptors, the row cache and the per-column delivery
// state of one statement handle. Pages of a result are added with AddPage and read
// back with Fetch and GetData.
// A Statement is driven by one goroutine at a time.
type Statement struct {
	cfg    Config
	engine *Engine
	mat    *Materializer
	cache  *RowCache

	ard, apd *Descriptor
	ird, ipd *Descriptor
	// implicitly allocated descriptors, restored when an explicit one is detached
	autoARD, autoAPD *Descriptor

	// current is the cache index of the first row of the current rowset, -1 before the first fetch
	current int
	next    int
	// states tracks GetData progress per column; index 0 is the bookmark column
	states []DataState

	closed int32
	logger *slog.Logger
}

// NewStatement creates a statement with implicitly allocated descriptors.
func NewStatement(cfg Config) *Statement {
	ard := NewDescriptor(KindARD)
	apd := NewDescriptor(KindAPD)
	return &Statement{
		cfg:     cfg,
		engine:  NewEngine(cfg),
		mat:     NewMaterializer(cfg),
		cache:   NewRowCache(nil, cfg.Logger),
		ard:     ard,
		apd:     apd,
		ird:     NewDescriptor(KindIRD),
		ipd:     NewDescriptor(KindIPD),
		autoARD: ard,
		autoAPD: apd,
		current: -1,
		logger:  withComponent(cfg.logger(), "statement"),
	}
}

// ARD returns the application row descriptor in use.
func (s *Statement) ARD() *Descriptor { return s.ard }

// APD returns the application parameter descriptor in use.
func (s *Statement) APD() *Descriptor { return s.apd }

// IRD returns the implementation row descriptor.
func (s *Statement) IRD() *Descriptor { return s.ird }

// IPD returns the implementation parameter descriptor.
func (s *Statement) IPD() *Descriptor { return s.ipd }

// Cache returns the statement's row cache.
func (s *Statement) Cache() *RowCache { return s.cache }

// SetARD makes an explicitly allocated ARD the statement's row descriptor.
// A nil descriptor restores the implicit one.
func (s *Statement) SetARD(d *Descriptor) error {
	return s.attach(&s.ard, s.autoARD, d, KindARD)
}

// SetAPD makes an explicitly allocated APD the statement's parameter descriptor.
// A nil descriptor restores the implicit one.
func (s *Statement) SetAPD(d *Descriptor) error {
	return s.attach(&s.apd, s.autoAPD, d, KindAPD)
}

func (s *Statement) attach(field **Descriptor, auto, d *Descriptor, kind DescKind) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if d == nil {
		d = auto
	}
	if d == *field {
		return nil
	}
	if d.Kind() != kind {
		return NewError(ErrDescriptor, CodeGeneralError,
			fmt.Sprintf("cannot use an %s as the statement %s", d.Kind(), kind))
	}
	if d != auto && d.header.AllocType != AllocUser {
		return NewError(ErrDescriptor, CodeGeneralError,
			fmt.Sprintf("an implicitly allocated %s cannot be shared", kind))
	}
	if d != auto {
		d.Retain()
	}
	if old := *field; old != auto {
		old.Release()
	}
	*field = d
	return nil
}

func (s *Statement) checkOpen() error {
	if atomic.LoadInt32(&s.closed) != 0 {
		return NewError(ErrGeneric, CodeGeneralError, "statement is closed")
	}
	return nil
}

// AddPage materializes one result page. The first page of a result describes the IRD.
func (s *Statement) AddPage(page *Page) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if err := s.mat.Materialize(page, s.cache); err != nil {
		return err
	}
	s.describeResult()
	return nil
}

// describeResult refreshes the IRD from the cache schema and sizes the ARD and
// per-column state to the result width.
func (s *Statement) describeResult() {
	cols := s.cache.Columns()
	s.ird.describe(cols, s.engine.Catalog(), s.cfg.UnknownSizes)
	if s.ard.Count() < len(cols) {
		s.ard.setCount(len(cols))
	}
	if len(s.states) != len(cols)+1 {
		s.states = make([]DataState, len(cols)+1)
	}
}

// NumResultCols returns the number of result columns.
func (s *Statement) NumResultCols() int {
	return s.cache.ColumnCount()
}

// BindCol binds slot to result column col; 0 is the bookmark column. length is the
// octet length of one element, ind receives one length or indicator per rowset row.
// A nil buffer unbinds the column.
func (s *Statement) BindCol(col int, slot Slot, length int64, ind []int64) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if col < 0 || (s.cache.HasSchema() && col > s.cache.ColumnCount()) {
		return NewError(ErrDescriptor, CodeInvalidDescriptorIndex,
			fmt.Sprintf("invalid column number %d", col))
	}
	if slot.Buffer != nil {
		if !slot.Type.Known() {
			return errUnsupported(fmt.Sprintf("unknown native type %d", int16(slot.Type))).atRecord(col)
		}
		bt := s.columnType(col)
		if (col == 0 || s.cache.HasSchema()) && !s.engine.Catalog().Convertible(bt, slot.Type) {
			return errUnsupported(fmt.Sprintf("cannot bind %s to a %s column", slot.Type, bt)).atRecord(col)
		}
	}
	if err := s.ard.bind(col, slot, length, ind, ind); err != nil {
		return err
	}
	if col < len(s.states) {
		s.states[col].Reset()
	}
	return nil
}

// columnType returns the backend type of result column col.
func (s *Statement) columnType(col int) BackendType {
	if col == 0 {
		return TypeInteger
	}
	return s.ird.backendType(col)
}

// cell returns the value of column col in cache row i; the bookmark column is the row number.
func (s *Statement) cell(i, col int) (ValueText, bool) {
	if col == 0 {
		if i < 0 || i >= s.cache.Len() {
			return ValueText{}, false
		}
		return Text(strconv.Itoa(i + 1)), true
	}
	return s.cache.Cell(i, col-1)
}

// Fetch advances to the next rowset and delivers every bound column into the ARD
// buffers. The IRD status array and rows-processed pointer are filled when set.
func (s *Statement) Fetch() (FetchResult, error) {
	if err := s.checkOpen(); err != nil {
		return FetchResult{}, err
	}
	if !s.cache.HasSchema() {
		return FetchResult{}, NewError(ErrGeneric, CodeGeneralError, "no result set")
	}

	size := int(max(s.ard.header.ArraySize, 1))
	start := s.next
	n := min(size, s.cache.Len()-start)
	if n < 0 {
		n = 0
	}
	s.resetStates()

	status := s.ird.header.ArrayStatusPtr
	for i := n; i < size && i < len(status); i++ {
		status[i] = RowNoRow
	}
	if p := s.ird.header.RowsProcessedPtr; p != nil {
		*p = uint64(n)
	}
	if n == 0 {
		s.current = s.cache.Len()
		return FetchResult{NoData: true}, nil
	}
	s.current = start
	s.next = start + n

	var (
		res      = FetchResult{Rows: n}
		firstErr error
		failed   int
	)
	for i := 0; i < n; i++ {
		warn, err := s.fetchRow(start+i, i)
		rowStatus := RowSuccess
		switch {
		case err != nil:
			rowStatus = RowError
			failed++
			if firstErr == nil {
				firstErr = err
			}
		case warn != nil:
			rowStatus = RowSuccessWithInfo
			if res.Warning == nil {
				res.Warning = warn
			}
		}
		if i < len(status) {
			status[i] = rowStatus
		}
	}
	s.logger.Debug("rowset fetched", "start", start, "rows", n, "errors", failed)
	if failed == n {
		return res, firstErr
	}
	return res, nil
}

// fetchRow delivers cache row i into element k of every bound ARD record.
func (s *Statement) fetchRow(i, k int) (*Error, error) {
	var warn *Error
	last := min(s.ard.Count(), s.cache.ColumnCount())
	for col := 0; col <= last; col++ {
		slot, ok := s.ard.slot(col, k)
		if !ok {
			continue
		}
		v, ok := s.cell(i, col)
		if !ok {
			continue
		}
		rec := &s.ard.records[col]
		res, err := s.engine.Convert(v, s.columnType(col), slot, nil)
		if err != nil {
			return warn, asError(err).atRecord(col)
		}
		if err := storeLength(res, rec.IndicatorPtr, rec.OctetLengthPtr, k); err != nil {
			return warn, err.atRecord(col)
		}
		if res.Warning != nil && warn == nil {
			warn = res.Warning
		}
	}
	return warn, nil
}

// storeLength writes the length or null indicator of a delivered value into
// element k of the indicator and octet length arrays.
func storeLength(res Result, ind, octLen []int64, k int) *Error {
	if res.Null {
		if k >= len(ind) {
			return NewError(ErrNullIndicator, CodeIndicatorRequired, "indicator variable required but not supplied")
		}
		ind[k] = NullData
		return nil
	}
	if k < len(ind) {
		ind[k] = res.Length
	}
	if k < len(octLen) {
		octLen[k] = res.Length
	}
	return nil
}

func asError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Type: ErrGeneric, Code: CodeGeneralError, Message: err.Error(), Err: err}
}

func (s *Statement) resetStates() {
	for i := range s.states {
		s.states[i].Reset()
	}
}

// GetData delivers column col of the current row into slot. Repeated calls on the
// same column continue a truncated value; once it is fully delivered the next call
// fails with NoData. ind, when set, receives the length or the null indicator.
func (s *Statement) GetData(col int, slot Slot, ind *int64) (Result, error) {
	if err := s.checkOpen(); err != nil {
		return Result{}, err
	}
	if s.current < 0 || s.current >= s.cache.Len() {
		return Result{}, NewError(ErrGeneric, CodeGeneralError, "no current row")
	}
	if col < 0 || col > s.cache.ColumnCount() {
		return Result{}, NewError(ErrDescriptor, CodeInvalidDescriptorIndex,
			fmt.Sprintf("invalid column number %d", col))
	}
	v, _ := s.cell(s.current, col)
	res, err := s.engine.Convert(v, s.columnType(col), slot, &s.states[col])
	if err != nil {
		return res, asError(err).atRecord(col)
	}
	if res.NoData {
		return res, NewError(ErrNoData, CodeNoData, "column data already retrieved")
	}
	if res.Null {
		if ind == nil {
			// a retry with an indicator still sees the null
			s.states[col].done = false
			return res, NewError(ErrNullIndicator, CodeIndicatorRequired,
				"indicator variable required but not supplied").atRecord(col)
		}
		*ind = NullData
		return res, nil
	}
	if ind != nil {
		*ind = res.Length
	}
	return res, nil
}

// BindParameter binds parameter param (1-based): slot and ind go into the APD,
// the SQL type, column size and decimal digits into the IPD.
// A nil buffer with an indicator binds a parameter that is always null.
func (s *Statement) BindParameter(param int, slot Slot, sqlType SQLType, columnSize int64, digits int16, length int64, ind []int64) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if param < 1 {
		return NewError(ErrDescriptor, CodeInvalidDescriptorIndex,
			fmt.Sprintf("invalid parameter number %d", param))
	}
	if slot.Buffer == nil && ind != nil {
		slot.Buffer = []byte{}
	}
	if slot.Type.IsInterval() && slot.Precision < 0 {
		slot.Precision = digits
	}
	if err := s.apd.bind(param, slot, length, ind, ind); err != nil {
		return err
	}
	return s.ipd.describeParameter(param, sqlType, columnSize, digits)
}

// ParameterValues renders every parameter set of the APD into backend text,
// one slice per set. The IPD shape is fixed from then on.
func (s *Statement) ParameterValues() ([][]ValueText, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	count := s.apd.Count()
	sets := make([][]ValueText, max(s.apd.header.ArraySize, 1))
	for k := range sets {
		values := make([]ValueText, count)
		for p := 1; p <= count; p++ {
			rec := &s.apd.records[p]
			if !rec.Bound() {
				return nil, NewError(ErrGeneric, CodeGeneralError,
					fmt.Sprintf("parameter %d is not bound", p))
			}
			length := NTS
			if k < len(rec.IndicatorPtr) {
				length = rec.IndicatorPtr[k]
			}
			var sqlType SQLType
			if p <= s.ipd.Count() {
				sqlType = SQLType(s.ipd.records[p].ConciseType)
			}
			if length == NullData {
				values[p-1] = NullValue
				continue
			}
			slot, ok := s.apd.slot(p, k)
			if !ok {
				return nil, NewError(ErrGeneric, CodeGeneralError,
					fmt.Sprintf("parameter %d has no data for set %d", p, k+1))
			}
			v, err := s.engine.ParameterText(slot, length, sqlType)
			if err != nil {
				return nil, asError(err).atRecord(p)
			}
			values[p-1] = v
		}
		sets[k] = values
	}
	if count > 0 {
		s.ipd.state = DescBound
	}
	return sets, nil
}

// loadCatalog replaces the result with a catalog result built by load.
func (s *Statement) loadCatalog(load func(*RowCache) error) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	s.CloseCursor()
	if err := load(s.cache); err != nil {
		return err
	}
	s.describeResult()
	return nil
}

// Tables makes the statement's result the "tables" catalog result for tables.
func (s *Statement) Tables(tables []TableRef) error {
	return s.loadCatalog(func(c *RowCache) error { return LoadTables(c, tables) })
}

// Catalogs makes the statement's result the list of databases.
func (s *Statement) Catalogs(databases []string) error {
	return s.loadCatalog(func(c *RowCache) error { return LoadCatalogs(c, databases) })
}

// TableTypes makes the statement's result the list of table types.
func (s *Statement) TableTypes() error {
	return s.loadCatalog(LoadTableTypes)
}

// Columns makes the statement's result the "columns" catalog result for columns.
func (s *Statement) Columns(columns []ColumnRef) error {
	cat := s.engine.Catalog()
	return s.loadCatalog(func(c *RowCache) error { return cat.LoadColumns(c, columns) })
}

// CloseCursor discards the result set, recycles its rows and releases its
// interned text. Bindings are kept.
func (s *Statement) CloseCursor() {
	s.cache.Reset()
	s.mat.Reset()
	s.ird.setCount(0)
	s.ird.state = DescAllocated
	s.states = s.states[:0]
	s.current = -1
	s.next = 0
}

// Unbind releases every column binding.
func (s *Statement) Unbind() {
	s.ard.setCount(0)
	s.ard.records[0] = DescRecord{}
	s.ard.state = DescAllocated
	s.resetStates()
}

// ResetParams releases every parameter binding.
func (s *Statement) ResetParams() {
	s.apd.setCount(0)
	s.apd.state = DescAllocated
	s.ipd.setCount(0)
	s.ipd.state = DescAllocated
}

// Close frees the statement. Shared application descriptors lose one reference.
func (s *Statement) Close() error {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return nil
	}
	s.CloseCursor()
	if s.ard != s.autoARD {
		s.ard.Release()
	}
	if s.apd != s.autoAPD {
		s.apd.Release()
	}
	s.autoARD.Release()
	s.autoAPD.Release()
	s.ird.Release()
	s.ipd.Release()
	return nil
}
