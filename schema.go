package tpcc

import (
	"fmt"
)

// TableNames lists the nine benchmark tables in creation order.
var TableNames = []string{
	"warehouse",
	"district",
	"customer",
	"item",
	"stock",
	"orders",
	"order_line",
	"new_orders",
	"history",
}

var tableDefinitions = map[string]string{
	"warehouse": `CREATE TABLE warehouse (
  w_id INT,
  w_name VARCHAR(10),
  w_street_1 VARCHAR(20),
  w_street_2 VARCHAR(20),
  w_city VARCHAR(20),
  w_state CHAR(2),
  w_zip CHAR(9),
  w_tax DECIMAL(4,4),
  w_ytd DECIMAL(12,2),
  PRIMARY KEY (w_id)
)`,
	"district": `CREATE TABLE district (
  d_id INT,
  d_w_id INT,
  d_name VARCHAR(10),
  d_street_1 VARCHAR(20),
  d_street_2 VARCHAR(20),
  d_city VARCHAR(20),
  d_state CHAR(2),
  d_zip CHAR(9),
  d_tax DECIMAL(4,4),
  d_ytd DECIMAL(12,2),
  d_next_o_id INT,
  PRIMARY KEY (d_w_id, d_id)
)`,
	"customer": `CREATE TABLE customer (
  c_id INT,
  c_d_id INT,
  c_w_id INT,
  c_first VARCHAR(16),
  c_middle CHAR(2),
  c_last VARCHAR(16),
  c_street_1 VARCHAR(20),
  c_street_2 VARCHAR(20),
  c_city VARCHAR(20),
  c_state CHAR(2),
  c_zip CHAR(9),
  c_phone CHAR(16),
  c_since TIMESTAMP,
  c_credit CHAR(2),
  c_credit_lim DECIMAL(12,2),
  c_discount DECIMAL(4,4),
  c_balance DECIMAL(12,2),
  c_ytd_payment DECIMAL(12,2),
  c_payment_cnt INT,
  c_delivery_cnt INT,
  c_data VARCHAR(500),
  PRIMARY KEY (c_w_id, c_d_id, c_id)
)`,
	"item": `CREATE TABLE item (
  i_id INT,
  i_im_id INT,
  i_name VARCHAR(24),
  i_price DECIMAL(5,2),
  i_data VARCHAR(50),
  PRIMARY KEY (i_id)
)`,
	"stock": `CREATE TABLE stock (
  s_i_id INT,
  s_w_id INT,
  s_quantity INT,
  s_dist_01 CHAR(24),
  s_dist_02 CHAR(24),
  s_dist_03 CHAR(24),
  s_dist_04 CHAR(24),
  s_dist_05 CHAR(24),
  s_dist_06 CHAR(24),
  s_dist_07 CHAR(24),
  s_dist_08 CHAR(24),
  s_dist_09 CHAR(24),
  s_dist_10 CHAR(24),
  s_ytd INT,
  s_order_cnt INT,
  s_remote_cnt INT,
  s_data VARCHAR(50),
  PRIMARY KEY (s_w_id, s_i_id)
)`,
	"orders": `CREATE TABLE orders (
  o_id INT,
  o_d_id INT,
  o_w_id INT,
  o_c_id INT,
  o_entry_d TIMESTAMP,
  o_carrier_id INT,
  o_ol_cnt INT,
  o_all_local INT,
  PRIMARY KEY (o_w_id, o_d_id, o_id)
)`,
	"order_line": `CREATE TABLE order_line (
  ol_o_id INT,
  ol_d_id INT,
  ol_w_id INT,
  ol_number INT,
  ol_i_id INT,
  ol_supply_w_id INT,
  ol_delivery_d TIMESTAMP,
  ol_quantity INT,
  ol_amount DECIMAL(6,2),
  ol_dist_info CHAR(24),
  PRIMARY KEY (ol_w_id, ol_d_id, ol_o_id, ol_number)
)`,
	"new_orders": `CREATE TABLE new_orders (
  no_o_id INT,
  no_d_id INT,
  no_w_id INT,
  PRIMARY KEY (no_w_id, no_d_id, no_o_id)
)`,
	"history": `CREATE TABLE history (
  h_c_id INT,
  h_c_d_id INT,
  h_c_w_id INT,
  h_d_id INT,
  h_w_id INT,
  h_date TIMESTAMP,
  h_amount DECIMAL(6,2),
  h_data VARCHAR(24)
)`,
}

var indexDefinitions = []string{
	"CREATE INDEX idx_customer_name ON customer (c_w_id, c_d_id, c_last, c_first)",
	"CREATE INDEX idx_orders_customer ON orders (o_w_id, o_d_id, o_c_id, o_id)",
}

// Schema creates and validates the benchmark tables over a connection.
type Schema struct {
	conn Conn
}

func NewSchema(conn Conn) *Schema {
	return &Schema{
		conn: conn,
	}
}

func (self *Schema) Create() error {
	for _, name := range TableNames {
		if _, err := self.conn.Execute(tableDefinitions[name]); err != nil {
			return fmt.Errorf("create table %s: %s", name, err)
		}
		Debugf("created table %s", name)
	}
	Infof("created all %d tables", len(TableNames))
	return nil
}

func (self *Schema) CreateIndexes() error {
	for _, definition := range indexDefinitions {
		if _, err := self.conn.Execute(definition); err != nil {
			return fmt.Errorf("create index: %s", err)
		}
	}
	Infof("created all indexes")
	return nil
}

func (self *Schema) Drop() error {
	// Reverse creation order so referencing tables go first.
	for i := len(TableNames) - 1; i >= 0; i-- {
		name := TableNames[i]
		if _, err := self.conn.Execute(
			fmt.Sprintf("DROP TABLE IF EXISTS %s", name)); err != nil {
			return fmt.Errorf("drop table %s: %s", name, err)
		}
	}
	Infof("dropped all tables")
	return nil
}

// Validate checks that every benchmark table answers a count query.
func (self *Schema) Validate() error {
	for _, name := range TableNames {
		result, err := self.conn.Execute(
			fmt.Sprintf("SELECT COUNT(*) FROM %s", name))
		if err != nil {
			return fmt.Errorf("table %s is missing: %s", name, err)
		}
		if result.Len() == 0 {
			return fmt.Errorf("table %s returned no count", name)
		}
	}
	Infof("schema validation passed")
	return nil
}

// TableCounts returns the row count of every benchmark table.
func (self *Schema) TableCounts() (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, name := range TableNames {
		result, err := self.conn.Execute(
			fmt.Sprintf("SELECT COUNT(*) FROM %s", name))
		if err != nil {
			return nil, fmt.Errorf("count table %s: %s", name, err)
		}
		row := result.FetchOne()
		if len(row) < 1 {
			return nil, fmt.Errorf("count table %s: empty result", name)
		}
		count, err := parseInt(row[0])
		if err != nil {
			return nil, fmt.Errorf("count table %s: %s", name, err)
		}
		counts[name] = count
	}
	return counts, nil
}
