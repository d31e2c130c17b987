package tpcc

import (
	"fmt"
	"testing"

	"github.com/hhkbp2/testify/require"
)

type fakeTransport struct {
	response string
	err      error
	sent     []string
	closed   bool
}

func (self *fakeTransport) SendCmd(cmd string) (string, error) {
	self.sent = append(self.sent, cmd)
	if self.err != nil {
		return "", self.err
	}
	return self.response, nil
}

func (self *fakeTransport) Close() error {
	self.closed = true
	return nil
}

func TestSubstituteParams(t *testing.T) {
	result := SubstituteParams(
		"SELECT * FROM warehouse WHERE w_id = ?",
		[]interface{}{int64(3)})
	require.Equal(t, "SELECT * FROM warehouse WHERE w_id = 3", result)

	result = SubstituteParams(
		"UPDATE district SET d_name = %s WHERE d_id = ?",
		[]interface{}{"east", int64(7)})
	require.Equal(t, "UPDATE district SET d_name = 'east' WHERE d_id = 7", result)
}

func TestSubstituteParamsLeftToRight(t *testing.T) {
	// each parameter goes into the first token of either style
	result := SubstituteParams(
		"INSERT INTO t VALUES (?, %s, ?)",
		[]interface{}{int64(1), int64(2), int64(3)})
	require.Equal(t, "INSERT INTO t VALUES (1, 2, 3)", result)
}

func TestSubstituteParamsQuoting(t *testing.T) {
	result := SubstituteParams(
		"SELECT * FROM customer WHERE c_last = ?",
		[]interface{}{"O'BRIEN"})
	require.Equal(t, "SELECT * FROM customer WHERE c_last = 'O''BRIEN'", result)
}

func TestSubstituteParamsNil(t *testing.T) {
	result := SubstituteParams(
		"UPDATE orders SET o_carrier_id = ?", []interface{}{nil})
	require.Equal(t, "UPDATE orders SET o_carrier_id = NULL", result)
}

func TestSubstituteParamsExtras(t *testing.T) {
	// extra parameters beyond the placeholders are dropped
	result := SubstituteParams(
		"SELECT ?", []interface{}{int64(1), int64(2)})
	require.Equal(t, "SELECT 1", result)
	// missing parameters leave the remaining tokens in place
	result = SubstituteParams("SELECT ?, ?", []interface{}{int64(1)})
	require.Equal(t, "SELECT 1, ?", result)
}

func TestSubstituteParamsFloat(t *testing.T) {
	result := SubstituteParams("SELECT ?", []interface{}{1.5})
	require.Equal(t, "SELECT 1.5", result)
}

func TestParseGrid(t *testing.T) {
	response := "| w_id | w_name |\n" +
		"|------|--------|\n" +
		"| 1 | W01 |\n" +
		"| 2 | W02 |\n"
	result := ParseGrid(response)
	require.Equal(t, []string{"w_id", "w_name"}, result.Columns)
	require.Equal(t, 3, result.Len())
	row := result.FetchOne()
	require.Equal(t, Row{"------", "--------"}, row)
	row = result.FetchOne()
	require.Equal(t, Row{"1", "W01"}, row)
}

func TestParseGridSkipsMalformedRows(t *testing.T) {
	response := "| a | b |\n" +
		"| 1 | 2 |\n" +
		"| only |\n" +
		"not a grid line\n" +
		"| 3 | 4 |\n"
	result := ParseGrid(response)
	require.Equal(t, []string{"a", "b"}, result.Columns)
	require.Equal(t, 2, result.Len())
	require.Equal(t, Row{"1", "2"}, result.FetchOne())
	require.Equal(t, Row{"3", "4"}, result.FetchOne())
	require.Nil(t, result.FetchOne())
}

func TestCursorExecuteAppendsTerminator(t *testing.T) {
	transport := &fakeTransport{response: ""}
	cursor := NewCursor(transport)
	_, err := cursor.Execute("SELECT COUNT(*) FROM item")
	require.Nil(t, err)
	require.Equal(t, 1, len(transport.sent))
	require.Equal(t, "SELECT COUNT(*) FROM item;", transport.sent[0])
}

func TestCursorExecuteAbort(t *testing.T) {
	transport := &fakeTransport{response: "abort: deadlock detected"}
	cursor := NewCursor(transport)
	result, err := cursor.Execute("UPDATE stock SET s_quantity = ?", int64(10))
	require.Nil(t, result)
	require.NotNil(t, err)
	require.True(t, IsAbort(err))
}

func TestCursorExecuteEmptyResponse(t *testing.T) {
	transport := &fakeTransport{response: ""}
	cursor := NewCursor(transport)
	result, err := cursor.Execute("BEGIN")
	require.Nil(t, err)
	require.NotNil(t, result)
	require.Equal(t, 0, result.Len())
}

func TestCursorExecuteErrorResponse(t *testing.T) {
	// an Error-prefixed response counts as a successful empty result
	transport := &fakeTransport{response: "Error: no such table"}
	cursor := NewCursor(transport)
	result, err := cursor.Execute("SELECT * FROM missing")
	require.Nil(t, err)
	require.NotNil(t, result)
	require.Equal(t, 0, result.Len())
}

func TestCursorExecuteSendFailure(t *testing.T) {
	transport := &fakeTransport{err: fmt.Errorf("connection reset")}
	cursor := NewCursor(transport)
	result, err := cursor.Execute("SELECT 1")
	require.Nil(t, result)
	require.NotNil(t, err)
	require.False(t, IsAbort(err))
	e, ok := err.(*DBError)
	require.True(t, ok)
	require.Equal(t, KindConnection, e.Kind)
}

func TestResultSetFetch(t *testing.T) {
	result := NewResultSet(
		[]string{"a"}, []Row{{"1"}, {"2"}, {"3"}, {"4"}})
	require.Equal(t, 4, result.Len())
	require.Equal(t, Row{"1"}, result.FetchOne())
	rows := result.FetchMany(2)
	require.Equal(t, []Row{{"2"}, {"3"}}, rows)
	rows = result.FetchMany(10)
	require.Equal(t, []Row{{"4"}}, rows)
	require.Nil(t, result.FetchOne())
	require.Equal(t, 0, len(result.FetchAll()))
}
