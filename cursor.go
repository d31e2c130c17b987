package tpcc

import (
	"fmt"
	"strings"
)

const (
	// gridDelimiter separates fields of header and data lines in a
	// server response.
	gridDelimiter = "|"
	// statementTerminator ends every request on the wire.
	statementTerminator = ";"

	abortPrefix = "abort"
	errorPrefix = "Error"
)

// Transporter performs one blocking request/response exchange per call.
// The rmdb package provides the TCP implementation.
type Transporter interface {
	SendCmd(cmd string) (string, error)
	Close() error
}

// Cursor adapts the server's line-oriented text protocol to statement
// execution with buffered, fetchable rows.
type Cursor struct {
	transport Transporter
}

func NewCursor(transport Transporter) *Cursor {
	return &Cursor{
		transport: transport,
	}
}

// Execute substitutes params into query, sends the statement, and
// classifies the response.
//
// A response starting with "abort" is a statement-level abort and is
// returned as a KindAbort error. An empty response or one starting
// with "Error" is a successful empty result; this mirrors the server's
// observed behavior and is intentional, not a parsing gap. Anything
// else is parsed as a pipe-delimited grid.
func (self *Cursor) Execute(query string, params ...interface{}) (*ResultSet, error) {
	cmd := SubstituteParams(query, params) + statementTerminator
	result, err := self.transport.SendCmd(cmd)
	if err != nil {
		return nil, NewDBError(KindConnection, "send command: %s", err)
	}
	if strings.HasPrefix(result, abortPrefix) {
		return nil, NewDBError(KindAbort, "query aborted: %s", result)
	}
	if result == "" || strings.HasPrefix(result, errorPrefix) {
		return NewResultSet(nil, nil), nil
	}
	return ParseGrid(result), nil
}

// SubstituteParams replaces placeholder tokens in query with the
// supplied parameters. Both `%s` and `?` are accepted, mixed freely;
// each parameter goes into whichever of the two tokens occurs first,
// scanning from the start of the statement, so placeholders are
// consumed strictly left-to-right in parameter-supply order.
func SubstituteParams(query string, params []interface{}) string {
	for _, param := range params {
		formatted := formatParam(param)
		i := strings.Index(query, "%s")
		j := strings.Index(query, "?")
		var pos, width int
		switch {
		case i >= 0 && (j < 0 || i < j):
			pos, width = i, 2
		case j >= 0:
			pos, width = j, 1
		default:
			// more params than placeholders, extras are dropped
			return query
		}
		query = query[:pos] + formatted + query[pos+width:]
	}
	return query
}

func formatParam(param interface{}) string {
	if param == nil {
		return "NULL"
	}
	if s, ok := param.(string); ok {
		return "'" + strings.Replace(s, "'", "''", -1) + "'"
	}
	return fmt.Sprintf("%v", param)
}

// ParseGrid parses a pipe-delimited response. The first delimited line
// is the header; every later delimited line is a data row. Fields are
// trimmed and empty tokens dropped, and rows whose field count does
// not match the header are discarded silently.
func ParseGrid(result string) *ResultSet {
	lines := strings.Split(strings.TrimSpace(result), "\n")

	var columns []string
	var rows []Row
	for _, line := range lines {
		if !strings.HasPrefix(line, gridDelimiter) {
			continue
		}
		fields := splitGridLine(line)
		if columns == nil {
			columns = fields
			continue
		}
		if len(fields) == len(columns) {
			rows = append(rows, Row(fields))
		}
	}
	return NewResultSet(columns, rows)
}

func splitGridLine(line string) []string {
	parts := strings.Split(line, gridDelimiter)
	fields := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			fields = append(fields, part)
		}
	}
	return fields
}
