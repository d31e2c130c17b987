package tpcc

import (
	"strings"
	"testing"

	"github.com/hhkbp2/testify/require"
)

func TestSchemaCreate(t *testing.T) {
	conn := &fakeConn{}
	schema := NewSchema(conn)
	err := schema.Create()
	require.Nil(t, err)
	require.Equal(t, len(TableNames), len(conn.executed))
	// creation follows the declared table order
	require.True(t, strings.HasPrefix(conn.executed[0], "CREATE TABLE warehouse"))
	require.True(t, strings.HasPrefix(
		conn.executed[len(conn.executed)-1], "CREATE TABLE history"))
}

func TestSchemaCreateFailure(t *testing.T) {
	conn := &fakeConn{responses: []*cannedResponse{
		{
			match: "CREATE TABLE district",
			err:   NewDBError(KindAbort, "query aborted: exists"),
		},
	}}
	schema := NewSchema(conn)
	err := schema.Create()
	require.NotNil(t, err)
	require.True(t, strings.Contains(err.Error(), "district"))
}

func TestSchemaDropReversesOrder(t *testing.T) {
	conn := &fakeConn{}
	schema := NewSchema(conn)
	err := schema.Drop()
	require.Nil(t, err)
	require.Equal(t, len(TableNames), len(conn.executed))
	require.Equal(t, "DROP TABLE IF EXISTS history", conn.executed[0])
	require.Equal(t, "DROP TABLE IF EXISTS warehouse",
		conn.executed[len(conn.executed)-1])
}

func TestSchemaTableCounts(t *testing.T) {
	conn := &fakeConn{responses: []*cannedResponse{
		{
			match: "COUNT(*)",
			rows:  []Row{{"42"}},
		},
	}}
	schema := NewSchema(conn)
	counts, err := schema.TableCounts()
	require.Nil(t, err)
	require.Equal(t, len(TableNames), len(counts))
	for _, name := range TableNames {
		require.Equal(t, int64(42), counts[name])
	}
}

func TestSchemaValidate(t *testing.T) {
	conn := &fakeConn{responses: []*cannedResponse{
		{
			match: "COUNT(*)",
			rows:  []Row{{"0"}},
		},
	}}
	schema := NewSchema(conn)
	require.Nil(t, schema.Validate())

	failing := &fakeConn{responses: []*cannedResponse{
		{
			match: "FROM stock",
			err:   NewDBError(KindAbort, "query aborted: no such table"),
		},
		{
			match: "COUNT(*)",
			rows:  []Row{{"0"}},
		},
	}}
	schema = NewSchema(failing)
	err := schema.Validate()
	require.NotNil(t, err)
	require.True(t, strings.Contains(err.Error(), "stock"))
}
