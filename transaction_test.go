package tpcc

import (
	"math"
	"strings"
	"testing"

	"github.com/hhkbp2/testify/require"
	"github.com/hhkbp2/tpcc/generator"
)

type cannedResponse struct {
	match   string
	columns []string
	rows    []Row
	err     error
}

// fakeConn answers Execute calls from canned responses matched by
// substring, recording every substituted statement.
type fakeConn struct {
	responses []*cannedResponse
	executed  []string
	closed    bool
}

func (self *fakeConn) Execute(
	query string, params ...interface{}) (*ResultSet, error) {

	statement := SubstituteParams(query, params)
	self.executed = append(self.executed, statement)
	for _, response := range self.responses {
		if strings.Contains(statement, response.match) {
			if response.err != nil {
				return nil, response.err
			}
			rows := make([]Row, len(response.rows))
			copy(rows, response.rows)
			return NewResultSet(response.columns, rows), nil
		}
	}
	return NewResultSet(nil, nil), nil
}

func (self *fakeConn) Close() error {
	self.closed = true
	return nil
}

func (self *fakeConn) count(substring string) int {
	count := 0
	for _, statement := range self.executed {
		if strings.Contains(statement, substring) {
			count++
		}
	}
	return count
}

func (self *fakeConn) find(substring string) string {
	for _, statement := range self.executed {
		if strings.Contains(statement, substring) {
			return statement
		}
	}
	return ""
}

func (self *fakeConn) last() string {
	if len(self.executed) == 0 {
		return ""
	}
	return self.executed[len(self.executed)-1]
}

func newOrderResponses() []*cannedResponse {
	return []*cannedResponse{
		{
			match: "SELECT d_tax",
			rows:  []Row{{"0.1", "3001"}},
		},
		{
			match: "FROM customer, warehouse",
			rows:  []Row{{"0.05", "BAR", "GC", "0.08"}},
		},
		{
			match: "FROM item WHERE",
			rows:  []Row{{"25.50", "Red Widget", "some item data"}},
		},
		{
			match: "FROM stock WHERE s_i_id",
			rows:  []Row{{"50", "ABCDEFGHIJKLMNOPQRSTUVWX", "10", "4", "0", "stock data"}},
		},
	}
}

func testInput() *generator.Input {
	return generator.NewInput(1, generator.NewRandom(1))
}

func TestNewOrderCommits(t *testing.T) {
	conn := &fakeConn{responses: newOrderResponses()}
	tx := NewTransactions(conn, testInput())
	ok, err := tx.NewOrder()
	require.Nil(t, err)
	require.True(t, ok)
	require.Equal(t, "COMMIT", conn.last())
	require.Equal(t, 1, conn.count("INSERT INTO orders VALUES (3001,"))
	require.Equal(t, 1, conn.count("INSERT INTO new_orders VALUES (3001,"))
	require.Equal(t, 1, conn.count("UPDATE district SET d_next_o_id = d_next_o_id+1"))
	// one stock update and one order line insert per line
	require.Equal(t, conn.count("UPDATE stock SET"),
		conn.count("INSERT INTO order_line"))
	require.True(t, conn.count("INSERT INTO order_line") >= generator.MinOrderLineCount)
	require.True(t, conn.count("INSERT INTO order_line") <= generator.MaxOrderLineCount)
	require.Equal(t, 0, conn.count("ROLLBACK"))
}

func TestNewOrderStockDepletion(t *testing.T) {
	require.Equal(t, int64(45), depleteStock(50, 5))
	// restock by 91 when the shelf would drop below 10
	require.Equal(t, int64(100), depleteStock(14, 5))
	// boundary: exactly 10 left means no restock
	require.Equal(t, int64(10), depleteStock(15, 5))
	require.Equal(t, int64(100), depleteStock(14, 5))
	require.Equal(t, int64(96), depleteStock(15, 10))
}

func TestNewOrderTotalAmount(t *testing.T) {
	// 3 lines of qty 5 at $10.00, 10% discount, 8% warehouse tax,
	// 5% district tax
	require.True(t, math.Abs(orderTotal(150.00, 0.10, 0.08, 0.05)-152.55) < 1e-9)
	require.Equal(t, float64(100), orderTotal(100, 0, 0, 0))
	// full discount zeroes the order regardless of tax
	require.Equal(t, float64(0), orderTotal(150.00, 1, 0.08, 0.05))
}

func TestNewOrderMissingDistrictRollsBack(t *testing.T) {
	conn := &fakeConn{}
	tx := NewTransactions(conn, testInput())
	ok, err := tx.NewOrder()
	require.Nil(t, err)
	require.False(t, ok)
	require.Equal(t, "ROLLBACK", conn.last())
	require.Equal(t, 0, conn.count("COMMIT"))
}

func TestNewOrderMissingItemRollsBack(t *testing.T) {
	responses := newOrderResponses()
	// drop the item response so the lookup comes back empty
	responses = append(responses[:2], responses[3])
	conn := &fakeConn{responses: responses}
	tx := NewTransactions(conn, testInput())
	ok, err := tx.NewOrder()
	require.Nil(t, err)
	require.False(t, ok)
	require.Equal(t, "ROLLBACK", conn.last())
	require.Equal(t, 0, conn.count("COMMIT"))
}

func TestNewOrderAbortPropagates(t *testing.T) {
	responses := newOrderResponses()
	responses = append([]*cannedResponse{
		{
			match: "UPDATE district",
			err:   NewDBError(KindAbort, "query aborted: deadlock"),
		},
	}, responses...)
	conn := &fakeConn{responses: responses}
	tx := NewTransactions(conn, testInput())
	ok, err := tx.NewOrder()
	require.False(t, ok)
	require.NotNil(t, err)
	require.True(t, IsAbort(err))
	require.Equal(t, "ROLLBACK", conn.last())
}

func paymentResponses() []*cannedResponse {
	return []*cannedResponse{
		{
			match: "SELECT w_name",
			rows:  []Row{{"W01", "1 A St", "2 B St", "Springfield", "CA", "123456789", "300000"}},
		},
		{
			match: "SELECT d_name",
			rows:  []Row{{"D01", "1 C St", "2 D St", "Rivertown", "NY", "987654321", "30000"}},
		},
		{
			match: "FROM customer WHERE",
			rows: []Row{
				paymentCustomerRow("11", "Alice"),
				paymentCustomerRow("22", "Bob"),
				paymentCustomerRow("33", "Charlie"),
				paymentCustomerRow("44", "Diana"),
				paymentCustomerRow("55", "Edward"),
			},
		},
	}
}

func paymentCustomerRow(cID, first string) Row {
	return Row{
		cID, first, "OE", "BAR", "1 E St", "2 F St", "Oakland", "TX",
		"111222333", "(123) 456-7890", "2020-01-01 00:00:00", "GC",
		"50000", "0.05", "-10", "10", "1", "customer data",
	}
}

func TestPaymentCustomerSelection(t *testing.T) {
	input := testInput()
	sawByID := false
	sawByName := false
	for i := 0; i < 200 && !(sawByID && sawByName); i++ {
		conn := &fakeConn{responses: paymentResponses()}
		tx := NewTransactions(conn, input)
		ok, err := tx.Payment()
		require.Nil(t, err)
		require.True(t, ok)
		require.Equal(t, "COMMIT", conn.last())
		require.Equal(t, 1, conn.count("INSERT INTO history"))
		update := conn.find("UPDATE customer SET c_balance")
		require.True(t, update != "")
		if conn.count("ORDER BY c_first") > 0 {
			// by last name: the median of the five candidates wins
			sawByName = true
			require.True(t, strings.HasSuffix(update, "c_id = 33"))
		} else {
			sawByID = true
			require.True(t, strings.HasSuffix(update, "c_id = 11"))
		}
	}
	require.True(t, sawByID)
	require.True(t, sawByName)
}

func TestPaymentBadCreditUpdatesData(t *testing.T) {
	responses := paymentResponses()
	row := paymentCustomerRow("11", "Alice")
	row[11] = "BC"
	responses[2].rows = []Row{row}
	conn := &fakeConn{responses: responses}
	tx := NewTransactions(conn, testInput())
	ok, err := tx.Payment()
	require.Nil(t, err)
	require.True(t, ok)
	require.Equal(t, 1, conn.count("c_data = "))
}

func TestPaymentMissingWarehouseRollsBack(t *testing.T) {
	conn := &fakeConn{}
	tx := NewTransactions(conn, testInput())
	ok, err := tx.Payment()
	require.Nil(t, err)
	require.False(t, ok)
	require.Equal(t, "ROLLBACK", conn.last())
}

func TestDeliveryProcessesAllDistricts(t *testing.T) {
	conn := &fakeConn{responses: []*cannedResponse{
		{
			match: "SELECT MIN(no_o_id)",
			rows:  []Row{{"2101"}},
		},
		{
			match: "SELECT o_c_id",
			rows:  []Row{{"42"}},
		},
		{
			match: "SELECT SUM(ol_amount)",
			rows:  []Row{{"123.45"}},
		},
	}}
	tx := NewTransactions(conn, testInput())
	ok, err := tx.Delivery()
	require.Nil(t, err)
	require.True(t, ok)
	require.Equal(t, "COMMIT", conn.last())
	require.Equal(t, generator.DistrictsPerWarehouse,
		conn.count("DELETE FROM new_orders"))
	require.Equal(t, generator.DistrictsPerWarehouse,
		conn.count("UPDATE orders SET o_carrier_id"))
	require.Equal(t, generator.DistrictsPerWarehouse,
		conn.count("UPDATE order_line SET ol_delivery_d"))
	require.Equal(t, generator.DistrictsPerWarehouse,
		conn.count("c_delivery_cnt = c_delivery_cnt+1"))
}

func TestDeliverySkipsDrainedDistricts(t *testing.T) {
	// MIN over an empty set comes back as NULL, the district is skipped
	conn := &fakeConn{responses: []*cannedResponse{
		{
			match: "SELECT MIN(no_o_id)",
			rows:  []Row{{"NULL"}},
		},
	}}
	tx := NewTransactions(conn, testInput())
	ok, err := tx.Delivery()
	require.Nil(t, err)
	require.True(t, ok)
	require.Equal(t, "COMMIT", conn.last())
	require.Equal(t, 0, conn.count("DELETE FROM new_orders"))
}

func TestOrderStatus(t *testing.T) {
	conn := &fakeConn{responses: []*cannedResponse{
		{
			match: "FROM orders",
			rows:  []Row{{"3000", "1", "1", "42", "2024-01-01 00:00:00", "5", "10", "1"}},
		},
	}}
	tx := NewTransactions(conn, testInput())
	ok, err := tx.OrderStatus()
	require.Nil(t, err)
	require.True(t, ok)
	require.Equal(t, 1, conn.count("ORDER BY o_id DESC LIMIT 1"))
	require.Equal(t, 0, conn.count("BEGIN"))

	empty := &fakeConn{}
	tx = NewTransactions(empty, testInput())
	ok, err = tx.OrderStatus()
	require.Nil(t, err)
	require.False(t, ok)
}

func TestStockLevel(t *testing.T) {
	conn := &fakeConn{responses: []*cannedResponse{
		{
			match: "COUNT(DISTINCT s_i_id)",
			rows:  []Row{{"17"}},
		},
	}}
	tx := NewTransactions(conn, testInput())
	ok, err := tx.StockLevel()
	require.Nil(t, err)
	require.True(t, ok)
	require.Equal(t, 0, conn.count("BEGIN"))
}

func TestExecuteDispatch(t *testing.T) {
	conn := &fakeConn{}
	tx := NewTransactions(conn, testInput())
	_, err := tx.Execute(TransactionTypeCount)
	require.NotNil(t, err)
	ok, err := tx.Execute(TxStockLevel)
	require.Nil(t, err)
	require.False(t, ok)
}
