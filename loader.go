package tpcc

import (
	"github.com/hhkbp2/tpcc/generator"
)

// Loader writes the initial population into the database, one
// warehouse at a time so memory stays flat at any scale factor.
type Loader struct {
	conn           Conn
	population     *generator.Population
	reportInterval int64
	loaded         int64
}

func NewLoader(conn Conn, population *generator.Population, p Properties) *Loader {
	interval, err := parseInt(p.GetDefault(
		PropertyLoadReportInterval, PropertyLoadReportIntervalDefault))
	if err != nil || interval <= 0 {
		interval, _ = parseInt(PropertyLoadReportIntervalDefault)
	}
	return &Loader{
		conn:           conn,
		population:     population,
		reportInterval: interval,
	}
}

// Load populates all nine tables. Items are shared across warehouses
// and load once; everything else loads per warehouse.
func (self *Loader) Load() error {
	Infof("loading item data...")
	if err := self.loadItems(); err != nil {
		return err
	}

	warehouses := self.population.Warehouses()
	for _, warehouse := range warehouses {
		Infof("loading warehouse %d of %d...",
			warehouse.WID, len(warehouses))
		if err := self.loadWarehouse(warehouse); err != nil {
			return err
		}
	}
	Infof("loaded %d rows in total", self.loaded)
	return nil
}

func (self *Loader) loadItems() error {
	if err := self.begin(); err != nil {
		return err
	}
	for _, item := range self.population.Items() {
		err := self.insert("INSERT INTO item VALUES (?, ?, ?, ?, ?)",
			item.IID, item.ImID, item.Name, item.Price, item.Data)
		if err != nil {
			return self.abortLoad(err)
		}
	}
	return self.commit()
}

func (self *Loader) loadWarehouse(warehouse *generator.Warehouse) error {
	if err := self.begin(); err != nil {
		return err
	}

	err := self.insert(
		"INSERT INTO warehouse VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		warehouse.WID, warehouse.Name, warehouse.Street1, warehouse.Street2,
		warehouse.City, warehouse.State, warehouse.Zip,
		warehouse.Tax, warehouse.Ytd)
	if err != nil {
		return self.abortLoad(err)
	}

	for _, stock := range self.population.Stocks(warehouse.WID) {
		err = self.insert(
			"INSERT INTO stock VALUES "+
				"(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			stock.IID, stock.WID, stock.Quantity,
			stock.Dists[0], stock.Dists[1], stock.Dists[2], stock.Dists[3],
			stock.Dists[4], stock.Dists[5], stock.Dists[6], stock.Dists[7],
			stock.Dists[8], stock.Dists[9],
			stock.Ytd, stock.OrderCnt, stock.RemoteCnt, stock.Data)
		if err != nil {
			return self.abortLoad(err)
		}
	}

	for _, district := range self.population.Districts(warehouse.WID) {
		if err = self.loadDistrict(district); err != nil {
			return err
		}
	}

	return self.commit()
}

func (self *Loader) loadDistrict(district *generator.District) error {
	err := self.insert(
		"INSERT INTO district VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		district.DID, district.WID, district.Name,
		district.Street1, district.Street2, district.City,
		district.State, district.Zip, district.Tax, district.Ytd,
		district.NextOID)
	if err != nil {
		return self.abortLoad(err)
	}

	wID, dID := district.WID, district.DID
	for _, customer := range self.population.Customers(wID, dID) {
		err = self.insert(
			"INSERT INTO customer VALUES "+
				"(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			customer.CID, customer.DID, customer.WID,
			customer.First, customer.Middle, customer.Last,
			customer.Street1, customer.Street2, customer.City,
			customer.State, customer.Zip, customer.Phone,
			customer.Since, customer.Credit, customer.CreditLim,
			customer.Discount, customer.Balance, customer.YtdPayment,
			customer.PaymentCnt, customer.DeliveryCnt, customer.Data)
		if err != nil {
			return self.abortLoad(err)
		}
	}

	for _, order := range self.population.Orders(wID, dID) {
		err = self.insert(
			"INSERT INTO orders VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			order.OID, order.DID, order.WID, order.CID,
			order.EntryD, order.CarrierID, order.OlCnt, order.AllLocal)
		if err != nil {
			return self.abortLoad(err)
		}
	}

	for _, line := range self.population.OrderLines(wID, dID) {
		err = self.insert(
			"INSERT INTO order_line VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
			line.OID, line.DID, line.WID, line.Number,
			line.IID, line.SupplyWID, line.DeliveryD,
			line.Quantity, line.Amount, line.DistInfo)
		if err != nil {
			return self.abortLoad(err)
		}
	}

	for _, newOrder := range self.population.NewOrders(wID, dID) {
		err = self.insert("INSERT INTO new_orders VALUES (?, ?, ?)",
			newOrder.OID, newOrder.DID, newOrder.WID)
		if err != nil {
			return self.abortLoad(err)
		}
	}

	for _, history := range self.population.Histories(wID, dID) {
		err = self.insert(
			"INSERT INTO history VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			history.CID, history.CDID, history.CWID,
			history.DID, history.WID, history.Date,
			history.Amount, history.Data)
		if err != nil {
			return self.abortLoad(err)
		}
	}
	return nil
}

func (self *Loader) insert(query string, params ...interface{}) error {
	if _, err := self.conn.Execute(query, params...); err != nil {
		return err
	}
	self.loaded++
	if self.loaded%self.reportInterval == 0 {
		Infof("loaded %d rows...", self.loaded)
	}
	return nil
}

func (self *Loader) begin() error {
	_, err := self.conn.Execute("BEGIN")
	return err
}

func (self *Loader) commit() error {
	_, err := self.conn.Execute("COMMIT")
	return err
}

func (self *Loader) abortLoad(err error) error {
	_, _ = self.conn.Execute("ROLLBACK")
	return err
}
