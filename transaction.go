package tpcc

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hhkbp2/go-strftime"
	"github.com/hhkbp2/tpcc/generator"
)

type TransactionType int

const (
	TxNewOrder TransactionType = iota
	TxPayment
	TxDelivery
	TxOrderStatus
	TxStockLevel
	TransactionTypeCount
)

var transactionTypeNames = map[TransactionType]string{
	TxNewOrder:    "NewOrder",
	TxPayment:     "Payment",
	TxDelivery:    "Delivery",
	TxOrderStatus: "OrderStatus",
	TxStockLevel:  "StockLevel",
}

func (self TransactionType) String() string {
	if name, ok := transactionTypeNames[self]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", int(self))
}

// IsReadWrite reports whether the transaction type modifies data.
func (self TransactionType) IsReadWrite() bool {
	switch self {
	case TxNewOrder, TxPayment, TxDelivery:
		return true
	}
	return false
}

const (
	customerDataLimit = 300
	historyDataPad    = "    "
	// noCarrierAssigned is the carrier id stored for orders that have
	// not been picked up by a Delivery transaction yet.
	noCarrierAssigned = -1
)

// Transactions runs the five benchmark transaction profiles over a
// single connection. All profiles that modify data run inside an
// explicit BEGIN/COMMIT and roll back on any missing row.
//
// A profile returns (false, nil) when it rolls back deliberately, and
// a non-nil error when the server aborts or the connection fails; the
// caller decides whether the error is worth a retry.
type Transactions struct {
	conn  Conn
	input *generator.Input
}

func NewTransactions(conn Conn, input *generator.Input) *Transactions {
	return &Transactions{
		conn:  conn,
		input: input,
	}
}

func (self *Transactions) Execute(txType TransactionType) (bool, error) {
	switch txType {
	case TxNewOrder:
		return self.NewOrder()
	case TxPayment:
		return self.Payment()
	case TxDelivery:
		return self.Delivery()
	case TxOrderStatus:
		return self.OrderStatus()
	case TxStockLevel:
		return self.StockLevel()
	}
	return false, NewDBError(KindLogic, "unknown transaction type: %d", int(txType))
}

func (self *Transactions) NewOrder() (bool, error) {
	wID := self.input.RandomWarehouseID()
	dID := self.input.RandomDistrictID()
	cID := self.input.RandomCustomerID()

	olCnt := self.input.RandomOrderLineCount()
	olItemIDs := make([]int64, olCnt)
	olSupplyWIDs := make([]int64, olCnt)
	olQuantities := make([]int64, olCnt)
	allLocal := int64(1)
	for i := int64(0); i < olCnt; i++ {
		olItemIDs[i] = self.input.RandomItemID()
		olSupplyWIDs[i] = self.input.SupplyWarehouseID(wID)
		olQuantities[i] = self.input.RandomQuantity()
		if olSupplyWIDs[i] != wID {
			allLocal = 0
		}
	}

	if err := self.begin(); err != nil {
		return false, err
	}

	row, err := self.queryOne(
		"SELECT d_tax, d_next_o_id FROM district WHERE d_id = ? AND d_w_id = ?",
		dID, wID)
	if err != nil {
		return false, self.rollbackOnError(err)
	}
	if len(row) < 2 {
		return self.rollback()
	}
	dTax, err1 := parseFloat(row[0])
	oID, err2 := parseInt(row[1])
	if err1 != nil || err2 != nil {
		return self.rollback()
	}

	err = self.update(
		"UPDATE district SET d_next_o_id = d_next_o_id+1 WHERE d_id = ? AND d_w_id = ?",
		dID, wID)
	if err != nil {
		return false, self.rollbackOnError(err)
	}

	row, err = self.queryOne(
		"SELECT c_discount, c_last, c_credit, w_tax "+
			"FROM customer, warehouse "+
			"WHERE c_w_id = w_id AND c_d_id = ? AND c_id = ? AND w_id = ?",
		dID, cID, wID)
	if err != nil {
		return false, self.rollbackOnError(err)
	}
	if len(row) < 4 {
		return self.rollback()
	}
	cDiscount, err1 := parseFloat(row[0])
	wTax, err2 := parseFloat(row[3])
	if err1 != nil || err2 != nil {
		return self.rollback()
	}

	entryDate := wireTimestamp()
	err = self.update(
		"INSERT INTO orders VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		oID, dID, wID, cID, entryDate, noCarrierAssigned, olCnt, allLocal)
	if err != nil {
		return false, self.rollbackOnError(err)
	}
	err = self.update("INSERT INTO new_orders VALUES (?, ?, ?)", oID, dID, wID)
	if err != nil {
		return false, self.rollbackOnError(err)
	}

	totalAmount := float64(0)
	for olNumber := int64(1); olNumber <= olCnt; olNumber++ {
		itemID := olItemIDs[olNumber-1]
		supplyWID := olSupplyWIDs[olNumber-1]
		quantity := olQuantities[olNumber-1]

		row, err = self.queryOne(
			"SELECT i_price, i_name, i_data FROM item WHERE i_id = ?", itemID)
		if err != nil {
			return false, self.rollbackOnError(err)
		}
		if len(row) < 3 {
			return self.rollback()
		}
		iPrice, perr := parseFloat(row[0])
		if perr != nil {
			return self.rollback()
		}
		iData := row[2]

		row, err = self.queryOne(
			fmt.Sprintf("SELECT s_quantity, s_dist_%02d, s_ytd, s_order_cnt, "+
				"s_remote_cnt, s_data FROM stock WHERE s_i_id = ? AND s_w_id = ?", dID),
			itemID, supplyWID)
		if err != nil {
			return false, self.rollbackOnError(err)
		}
		if len(row) < 6 {
			return self.rollback()
		}
		sQuantity, err1 := parseInt(row[0])
		sDist := row[1]
		sYtd, err2 := parseInt(row[2])
		sOrderCnt, err3 := parseInt(row[3])
		sRemoteCnt, err4 := parseInt(row[4])
		sData := row[5]
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			return self.rollback()
		}

		sQuantity = depleteStock(sQuantity, quantity)
		sYtd += quantity
		sOrderCnt++
		if supplyWID != wID {
			sRemoteCnt++
		}

		err = self.update(
			"UPDATE stock SET s_quantity = ?, s_ytd = ?, s_order_cnt = ?, "+
				"s_remote_cnt = ? WHERE s_i_id = ? AND s_w_id = ?",
			sQuantity, sYtd, sOrderCnt, sRemoteCnt, itemID, supplyWID)
		if err != nil {
			return false, self.rollbackOnError(err)
		}

		olAmount := float64(quantity) * iPrice
		Verbosef("order line %d: item %d, %s, amount %.2f",
			olNumber, itemID, brandGeneric(iData, sData), olAmount)

		err = self.update(
			"INSERT INTO order_line VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			oID, dID, wID, olNumber, itemID, supplyWID,
			generator.UndeliveredTimestamp, quantity, olAmount, sDist)
		if err != nil {
			return false, self.rollbackOnError(err)
		}

		totalAmount += olAmount
	}

	totalAmount = orderTotal(totalAmount, cDiscount, wTax, dTax)
	Debugf("new order %d for warehouse %d district %d: %d lines, total %.2f",
		oID, wID, dID, olCnt, totalAmount)

	if err := self.commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (self *Transactions) Payment() (bool, error) {
	wID := self.input.RandomWarehouseID()
	dID := self.input.RandomDistrictID()
	cWID, cDID := self.input.PaymentCustomerLocation(wID, dID)
	amount := self.input.RandomPaymentAmount()

	byLastName := self.input.SelectByLastName()
	var cID int64
	var cLast string
	if byLastName {
		cLast = self.input.RandomCustomerLastName()
	} else {
		cID = self.input.RandomCustomerID()
	}

	if err := self.begin(); err != nil {
		return false, err
	}

	row, err := self.queryOne(
		"SELECT w_name, w_street_1, w_street_2, w_city, w_state, w_zip, w_ytd "+
			"FROM warehouse WHERE w_id = ?", wID)
	if err != nil {
		return false, self.rollbackOnError(err)
	}
	if len(row) < 7 {
		return self.rollback()
	}
	wName := row[0]

	err = self.update("UPDATE warehouse SET w_ytd = w_ytd+? WHERE w_id = ?",
		amount, wID)
	if err != nil {
		return false, self.rollbackOnError(err)
	}

	row, err = self.queryOne(
		"SELECT d_name, d_street_1, d_street_2, d_city, d_state, d_zip, d_ytd "+
			"FROM district WHERE d_w_id = ? AND d_id = ?", wID, dID)
	if err != nil {
		return false, self.rollbackOnError(err)
	}
	if len(row) < 7 {
		return self.rollback()
	}
	dName := row[0]

	err = self.update(
		"UPDATE district SET d_ytd = d_ytd+? WHERE d_w_id = ? AND d_id = ?",
		amount, wID, dID)
	if err != nil {
		return false, self.rollbackOnError(err)
	}

	customerColumns := "c_id, c_first, c_middle, c_last, c_street_1, c_street_2, " +
		"c_city, c_state, c_zip, c_phone, c_since, c_credit, c_credit_lim, " +
		"c_discount, c_balance, c_ytd_payment, c_payment_cnt, c_data"
	var result *ResultSet
	if byLastName {
		result, err = self.conn.Execute(
			"SELECT "+customerColumns+
				" FROM customer WHERE c_w_id = ? AND c_d_id = ? AND c_last = ? "+
				"ORDER BY c_first",
			cWID, cDID, cLast)
	} else {
		result, err = self.conn.Execute(
			"SELECT "+customerColumns+
				" FROM customer WHERE c_w_id = ? AND c_d_id = ? AND c_id = ?",
			cWID, cDID, cID)
	}
	if err != nil {
		return false, self.rollbackOnError(err)
	}

	var customer Row
	if byLastName {
		// Several customers may share a last name; take the middle one
		// of the list ordered by first name.
		rows := result.FetchAll()
		if len(rows) == 0 {
			return self.rollback()
		}
		customer = rows[len(rows)/2]
	} else {
		customer = result.FetchOne()
	}
	if len(customer) < 18 {
		return self.rollback()
	}

	selectedCID, err1 := parseInt(customer[0])
	cCredit := customer[11]
	cBalance, err2 := parseFloat(customer[14])
	cYtdPayment, err3 := parseFloat(customer[15])
	cPaymentCnt, err4 := parseInt(customer[16])
	cData := customer[17]
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return self.rollback()
	}

	newBalance := cBalance - amount
	newYtdPayment := cYtdPayment + amount
	newPaymentCnt := cPaymentCnt + 1

	if cCredit == "BC" {
		paymentInfo := fmt.Sprintf("%d%d%d%d%d%.2f",
			selectedCID, cDID, cWID, dID, wID, amount)
		newData := Truncate(paymentInfo+cData, customerDataLimit)
		err = self.update(
			"UPDATE customer SET c_balance = ?, c_ytd_payment = ?, "+
				"c_payment_cnt = ?, c_data = ? "+
				"WHERE c_w_id = ? AND c_d_id = ? AND c_id = ?",
			newBalance, newYtdPayment, newPaymentCnt, newData,
			cWID, cDID, selectedCID)
	} else {
		err = self.update(
			"UPDATE customer SET c_balance = ?, c_ytd_payment = ?, "+
				"c_payment_cnt = ? "+
				"WHERE c_w_id = ? AND c_d_id = ? AND c_id = ?",
			newBalance, newYtdPayment, newPaymentCnt, cWID, cDID, selectedCID)
	}
	if err != nil {
		return false, self.rollbackOnError(err)
	}

	hData := Truncate(wName, 10) + historyDataPad + Truncate(dName, 10)
	err = self.update(
		"INSERT INTO history VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		selectedCID, cDID, cWID, dID, wID, wireTimestamp(), amount, hData)
	if err != nil {
		return false, self.rollbackOnError(err)
	}

	if err := self.commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (self *Transactions) Delivery() (bool, error) {
	wID := self.input.RandomWarehouseID()
	carrierID := self.input.RandomCarrierID()

	if err := self.begin(); err != nil {
		return false, err
	}

	for dID := int64(1); dID <= generator.DistrictsPerWarehouse; dID++ {
		row, err := self.queryOne(
			"SELECT MIN(no_o_id) FROM new_orders WHERE no_d_id = ? AND no_w_id = ?",
			dID, wID)
		if err != nil {
			return false, self.rollbackOnError(err)
		}
		if len(row) < 1 {
			continue
		}
		oID, perr := parseInt(row[0])
		if perr != nil {
			// No undelivered orders left for this district.
			continue
		}

		err = self.update(
			"DELETE FROM new_orders WHERE no_o_id = ? AND no_d_id = ? AND no_w_id = ?",
			oID, dID, wID)
		if err != nil {
			return false, self.rollbackOnError(err)
		}

		err = self.update(
			"UPDATE orders SET o_carrier_id = ? "+
				"WHERE o_id = ? AND o_d_id = ? AND o_w_id = ?",
			carrierID, oID, dID, wID)
		if err != nil {
			return false, self.rollbackOnError(err)
		}

		err = self.update(
			"UPDATE order_line SET ol_delivery_d = ? "+
				"WHERE ol_o_id = ? AND ol_d_id = ? AND ol_w_id = ?",
			wireTimestamp(), oID, dID, wID)
		if err != nil {
			return false, self.rollbackOnError(err)
		}

		row, err = self.queryOne(
			"SELECT o_c_id FROM orders WHERE o_id = ? AND o_d_id = ? AND o_w_id = ?",
			oID, dID, wID)
		if err != nil {
			return false, self.rollbackOnError(err)
		}
		if len(row) < 1 {
			return self.rollback()
		}
		oCID, perr := parseInt(row[0])
		if perr != nil {
			return self.rollback()
		}

		row, err = self.queryOne(
			"SELECT SUM(ol_amount) FROM order_line "+
				"WHERE ol_o_id = ? AND ol_d_id = ? AND ol_w_id = ?",
			oID, dID, wID)
		if err != nil {
			return false, self.rollbackOnError(err)
		}
		if len(row) < 1 {
			return self.rollback()
		}
		orderTotal, perr := parseFloat(row[0])
		if perr != nil {
			return self.rollback()
		}

		err = self.update(
			"UPDATE customer SET c_balance = c_balance+?, "+
				"c_delivery_cnt = c_delivery_cnt+1 "+
				"WHERE c_id = ? AND c_d_id = ? AND c_w_id = ?",
			orderTotal, oCID, dID, wID)
		if err != nil {
			return false, self.rollbackOnError(err)
		}
	}

	if err := self.commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (self *Transactions) OrderStatus() (bool, error) {
	wID := self.input.RandomWarehouseID()
	dID := self.input.RandomDistrictID()
	cID := self.input.RandomCustomerID()

	result, err := self.conn.Execute(
		"SELECT * FROM orders "+
			"WHERE o_w_id = ? AND o_d_id = ? AND o_c_id = ? "+
			"ORDER BY o_id DESC LIMIT 1",
		wID, dID, cID)
	if err != nil {
		return false, err
	}
	return result.Len() > 0, nil
}

func (self *Transactions) StockLevel() (bool, error) {
	wID := self.input.RandomWarehouseID()
	threshold := self.input.RandomStockThreshold()

	result, err := self.conn.Execute(
		"SELECT COUNT(DISTINCT s_i_id) FROM stock "+
			"WHERE s_w_id = ? AND s_quantity < ?",
		wID, threshold)
	if err != nil {
		return false, err
	}
	return result.Len() > 0, nil
}

func (self *Transactions) begin() error {
	return self.update("BEGIN")
}

func (self *Transactions) commit() error {
	return self.update("COMMIT")
}

// rollback aborts the current transaction after a missing row. The
// rollback itself is best effort.
func (self *Transactions) rollback() (bool, error) {
	_, _ = self.conn.Execute("ROLLBACK")
	return false, nil
}

// rollbackOnError tries to roll back and hands the original error to
// the caller for retry classification.
func (self *Transactions) rollbackOnError(err error) error {
	_, _ = self.conn.Execute("ROLLBACK")
	return err
}

func (self *Transactions) update(query string, params ...interface{}) error {
	_, err := self.conn.Execute(query, params...)
	return err
}

func (self *Transactions) queryOne(
	query string, params ...interface{}) (Row, error) {

	result, err := self.conn.Execute(query, params...)
	if err != nil {
		return nil, err
	}
	return result.FetchOne(), nil
}

// depleteStock applies the stock quantity rule: take the ordered
// quantity off the shelf, and restock by 91 units when that would
// leave fewer than 10.
func depleteStock(quantity, ordered int64) int64 {
	if quantity >= ordered+10 {
		return quantity - ordered
	}
	return quantity - ordered + 91
}

// orderTotal applies the customer discount and the combined warehouse
// and district tax to the summed order line amounts.
func orderTotal(lineAmountSum, discount, wTax, dTax float64) float64 {
	return lineAmountSum * (1 - discount) * (1 + wTax + dTax)
}

// brandGeneric classifies an order line as brand ("B") when both the
// item and stock blobs carry the ORIGINAL marker.
func brandGeneric(itemData, stockData string) string {
	if strings.Contains(itemData, "ORIGINAL") && strings.Contains(stockData, "ORIGINAL") {
		return "B"
	}
	return "G"
}

func wireTimestamp() string {
	return strftime.Format(generator.WireTimeFormat, time.Now())
}

func parseInt(value string) (int64, error) {
	return strconv.ParseInt(value, 10, 64)
}

func parseFloat(value string) (float64, error) {
	return strconv.ParseFloat(value, 64)
}
