package tpcc

import (
	"fmt"

	"github.com/hhkbp2/tpcc/generator"
)

// Checker validates the loaded data set against the population
// invariants. The district check only holds right after a fresh load,
// before any NewOrder or Delivery ran.
type Checker struct {
	conn        Conn
	scaleFactor int64
}

func NewChecker(conn Conn, scaleFactor int64) *Checker {
	return &Checker{
		conn:        conn,
		scaleFactor: scaleFactor,
	}
}

// RunChecks runs every consistency check and returns the per-check
// outcome keyed by check name.
func (self *Checker) RunChecks() map[string]bool {
	Infof("running consistency checks...")
	checks := make(map[string]bool)

	self.checkTableCounts(checks)
	checks["district_order_consistency"] = self.checkDistrictOrders()
	checks["new_orders_consistency"] = self.checkNewOrders()
	checks["order_line_consistency"] = self.checkOrderLines()

	passed := 0
	for _, ok := range checks {
		if ok {
			passed++
		}
	}
	Infof("consistency checks completed: %d/%d passed", passed, len(checks))
	if passed != len(checks) {
		for name, ok := range checks {
			if !ok {
				Warnf("check failed: %s", name)
			}
		}
	}
	return checks
}

// AllPassed reports whether every check in a RunChecks result passed.
func AllPassed(checks map[string]bool) bool {
	for _, ok := range checks {
		if !ok {
			return false
		}
	}
	return true
}

func (self *Checker) checkTableCounts(checks map[string]bool) {
	warehouses := self.scaleFactor
	districts := warehouses * generator.DistrictsPerWarehouse
	expected := map[string]int64{
		"warehouse":  warehouses,
		"district":   districts,
		"item":       generator.ItemsTotal,
		"customer":   districts * generator.CustomersPerDistrict,
		"stock":      warehouses * generator.ItemsTotal,
		"orders":     districts * generator.OrdersPerDistrict,
		"order_line": districts * generator.OrdersPerDistrict * 10,
		"new_orders": districts * generator.NewOrdersPerDistrict,
		"history":    districts * generator.CustomersPerDistrict,
	}

	for _, table := range TableNames {
		name := table + "_count"
		actual, err := self.queryValue(
			fmt.Sprintf("SELECT COUNT(*) FROM %s", table))
		if err != nil {
			Errorf("%s count check failed: %s", table, err)
			checks[name] = false
			continue
		}
		checks[name] = actual == expected[table]
		Infof("%s count: %d/%d", table, actual, expected[table])
	}
}

func (self *Checker) checkDistrictOrders() bool {
	ok := true
	self.forEachDistrict(func(wID, dID int64) {
		nextOID, err := self.queryValue(
			"SELECT d_next_o_id FROM district WHERE d_w_id = ? AND d_id = ?",
			wID, dID)
		if err != nil {
			Warnf("district %d-%d: %s", wID, dID, err)
			ok = false
			return
		}
		maxOID, err := self.queryValue(
			"SELECT MAX(o_id) FROM orders WHERE o_w_id = ? AND o_d_id = ?",
			wID, dID)
		if err != nil {
			Warnf("orders %d-%d: %s", wID, dID, err)
			ok = false
			return
		}
		maxNoOID, err := self.queryValue(
			"SELECT MAX(no_o_id) FROM new_orders WHERE no_w_id = ? AND no_d_id = ?",
			wID, dID)
		if err != nil {
			Warnf("new_orders %d-%d: %s", wID, dID, err)
			ok = false
			return
		}
		if nextOID-1 != maxOID || nextOID-1 != maxNoOID {
			Warnf("district %d-%d: d_next_o_id=%d, max_o_id=%d, max_no_o_id=%d",
				wID, dID, nextOID, maxOID, maxNoOID)
			ok = false
		}
	})
	return ok
}

func (self *Checker) checkNewOrders() bool {
	ok := true
	self.forEachDistrict(func(wID, dID int64) {
		count, err1 := self.queryValue(
			"SELECT COUNT(no_o_id) FROM new_orders WHERE no_w_id = ? AND no_d_id = ?",
			wID, dID)
		max, err2 := self.queryValue(
			"SELECT MAX(no_o_id) FROM new_orders WHERE no_w_id = ? AND no_d_id = ?",
			wID, dID)
		min, err3 := self.queryValue(
			"SELECT MIN(no_o_id) FROM new_orders WHERE no_w_id = ? AND no_d_id = ?",
			wID, dID)
		if err1 != nil || err2 != nil || err3 != nil {
			Warnf("new_orders %d-%d: query failed", wID, dID)
			ok = false
			return
		}
		// Order ids in new_orders must be contiguous.
		if count != max-min+1 {
			Warnf("new_orders %d-%d: count=%d, max=%d, min=%d",
				wID, dID, count, max, min)
			ok = false
		}
	})
	return ok
}

func (self *Checker) checkOrderLines() bool {
	ok := true
	self.forEachDistrict(func(wID, dID int64) {
		sumOlCnt, err1 := self.queryValue(
			"SELECT SUM(o_ol_cnt) FROM orders WHERE o_w_id = ? AND o_d_id = ?",
			wID, dID)
		countLines, err2 := self.queryValue(
			"SELECT COUNT(ol_o_id) FROM order_line WHERE ol_w_id = ? AND ol_d_id = ?",
			wID, dID)
		if err1 != nil || err2 != nil {
			Warnf("order_line %d-%d: query failed", wID, dID)
			ok = false
			return
		}
		if sumOlCnt != countLines {
			Warnf("order_line %d-%d: sum_o_ol_cnt=%d, count_ol_o_id=%d",
				wID, dID, sumOlCnt, countLines)
			ok = false
		}
	})
	return ok
}

func (self *Checker) forEachDistrict(check func(wID, dID int64)) {
	for wID := int64(1); wID <= self.scaleFactor; wID++ {
		for dID := int64(1); dID <= generator.DistrictsPerWarehouse; dID++ {
			check(wID, dID)
		}
	}
}

func (self *Checker) queryValue(query string, params ...interface{}) (int64, error) {
	result, err := self.conn.Execute(query, params...)
	if err != nil {
		return 0, err
	}
	row := result.FetchOne()
	if len(row) < 1 {
		return 0, fmt.Errorf("empty result")
	}
	return parseInt(row[0])
}
