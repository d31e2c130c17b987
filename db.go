package tpcc

import (
	"fmt"
)

// Row is one tuple of a query result. All values arrive as text on the
// wire and stay text; the transaction code parses the fields it needs.
type Row []string

// ResultSet buffers the rows of one executed statement. Row consumption
// is one-shot and ordered: a fetched row is removed from the buffer.
type ResultSet struct {
	Columns []string
	rows    []Row
}

func NewResultSet(columns []string, rows []Row) *ResultSet {
	return &ResultSet{
		Columns: columns,
		rows:    rows,
	}
}

// FetchOne returns and removes the first buffered row, or nil once the
// set is drained.
func (self *ResultSet) FetchOne() Row {
	if len(self.rows) == 0 {
		return nil
	}
	row := self.rows[0]
	self.rows = self.rows[1:]
	return row
}

// FetchMany returns and removes up to size leading rows.
func (self *ResultSet) FetchMany(size int) []Row {
	if size > len(self.rows) {
		size = len(self.rows)
	}
	rows := self.rows[:size]
	self.rows = self.rows[size:]
	return rows
}

// FetchAll returns and removes every remaining row.
func (self *ResultSet) FetchAll() []Row {
	rows := self.rows
	self.rows = nil
	return rows
}

func (self *ResultSet) Len() int {
	return len(self.rows)
}

// Conn is one logical connection to the database under test. Each
// benchmark worker owns exactly one Conn; it is never shared. Every
// Execute call is a synchronous request/response round trip.
type Conn interface {
	// Execute substitutes params into the statement template, runs it,
	// and returns the buffered result. Statements without a result grid
	// return an empty ResultSet.
	Execute(query string, params ...interface{}) (*ResultSet, error)

	// Close releases the underlying connection.
	Close() error
}

// ErrorKind tags a database error so the retry classifier can dispatch
// without re-parsing error text.
type ErrorKind uint8

const (
	// KindAbort is a statement-level abort reported by the server.
	KindAbort ErrorKind = 1 + iota
	// KindConnection is a failure to establish or use a connection.
	KindConnection
	// KindLogic is an expected record missing mid-transaction.
	KindLogic
)

func (self ErrorKind) String() string {
	switch self {
	case KindAbort:
		return "ABORT"
	case KindConnection:
		return "CONNECTION"
	case KindLogic:
		return "LOGIC"
	default:
		return "UNKNOWN"
	}
}

type DBError struct {
	Kind    ErrorKind
	Message string
}

func (self *DBError) Error() string {
	return self.Message
}

func NewDBError(kind ErrorKind, format string, args ...interface{}) *DBError {
	return &DBError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsAbort reports whether err is a statement-level abort from the server.
func IsAbort(err error) bool {
	if e, ok := err.(*DBError); ok {
		return e.Kind == KindAbort
	}
	return false
}

type MakeConnFunc func(p Properties) (Conn, error)

var (
	// Databases maps binding names to connection factories. Bindings
	// register themselves here, see the binding package.
	Databases = make(map[string]MakeConnFunc)
)

func NewConn(database string, p Properties) (Conn, error) {
	f, ok := Databases[database]
	if !ok {
		return nil, fmt.Errorf("unsupported database: %s", database)
	}
	return f(p)
}
