package tpcc

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/hhkbp2/testify/require"
)

func TestIsContentionError(t *testing.T) {
	require.False(t, IsContentionError(nil))
	require.True(t, IsContentionError(fmt.Errorf("Deadlock detected")))
	require.True(t, IsContentionError(fmt.Errorf("lock wait TIMEOUT exceeded")))
	require.True(t, IsContentionError(
		NewDBError(KindAbort, "query aborted: could not acquire lock")))
	require.False(t, IsContentionError(fmt.Errorf("connection reset by peer")))
	require.False(t, IsContentionError(fmt.Errorf("syntax error")))
}

func TestRetryDelay(t *testing.T) {
	contention := fmt.Errorf("deadlock detected")
	plain := fmt.Errorf("connection reset")
	require.Equal(t, 500*time.Millisecond, retryDelay(contention, 1))
	require.Equal(t, 1000*time.Millisecond, retryDelay(contention, 2))
	require.Equal(t, 100*time.Millisecond, retryDelay(plain, 1))
	require.Equal(t, 200*time.Millisecond, retryDelay(plain, 2))
}

func TestRunWithRetrySuccess(t *testing.T) {
	conn := &fakeConn{responses: []*cannedResponse{
		{
			match: "COUNT(DISTINCT s_i_id)",
			rows:  []Row{{"17"}},
		},
	}}
	tx := NewTransactions(conn, testInput())
	before := time.Now()
	result := RunWithRetry(context.Background(), tx, TxStockLevel, 7)
	require.True(t, result.Success)
	require.Equal(t, TxStockLevel, result.Type)
	require.Equal(t, 7, result.WorkerID)
	require.True(t, result.ElapsedTime >= 0)
	require.False(t, result.Timestamp.Before(before))
}

func TestRunWithRetryRollbackDoesNotRetry(t *testing.T) {
	// missing rows roll back deliberately, that is a final result
	conn := &fakeConn{}
	tx := NewTransactions(conn, testInput())
	result := RunWithRetry(context.Background(), tx, TxNewOrder, 0)
	require.False(t, result.Success)
	require.Equal(t, 1, conn.count("ROLLBACK"))
}

func TestRunWithRetryAbortRetriesToLimit(t *testing.T) {
	conn := &fakeConn{responses: []*cannedResponse{
		{
			match: "SELECT d_tax",
			err:   NewDBError(KindAbort, "query aborted: conflict"),
		},
	}}
	tx := NewTransactions(conn, testInput())
	result := RunWithRetry(context.Background(), tx, TxNewOrder, 0)
	require.False(t, result.Success)
	require.Equal(t, txRetryLimit, conn.count("SELECT d_tax"))
	require.Equal(t, txRetryLimit, conn.count("ROLLBACK"))
}

func TestRunWithRetryStopsWhenCancelled(t *testing.T) {
	conn := &fakeConn{responses: []*cannedResponse{
		{
			match: "SELECT d_tax",
			err:   NewDBError(KindAbort, "query aborted: conflict"),
		},
	}}
	tx := NewTransactions(conn, testInput())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := RunWithRetry(ctx, tx, TxNewOrder, 0)
	require.False(t, result.Success)
	// the first attempt runs, then the backoff yields to cancellation
	require.Equal(t, 1, conn.count("SELECT d_tax"))
	require.Equal(t, 1, conn.count("ROLLBACK"))
}

func TestRunWithRetryRecoversAfterAbort(t *testing.T) {
	conn := &flakyConn{
		fakeConn: fakeConn{responses: []*cannedResponse{
			{
				match: "COUNT(DISTINCT s_i_id)",
				rows:  []Row{{"17"}},
			},
		}},
		failures: 2,
	}
	tx := NewTransactions(conn, testInput())
	result := RunWithRetry(context.Background(), tx, TxStockLevel, 0)
	require.True(t, result.Success)
	require.Equal(t, 3, conn.attempts)
}

// flakyConn fails its first N statements with an abort, then behaves
// like the embedded fakeConn.
type flakyConn struct {
	fakeConn
	failures int
	attempts int
}

func (self *flakyConn) Execute(
	query string, params ...interface{}) (*ResultSet, error) {

	self.attempts++
	if self.attempts <= self.failures {
		return nil, NewDBError(KindAbort, "query aborted: conflict")
	}
	return self.fakeConn.Execute(query, params...)
}
