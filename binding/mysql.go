package binding

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/hhkbp2/tpcc"
)

const (
	PropertyMysqlDatabase        = "mysql.db"
	PropertyMysqlDatabaseDefault = "tpcc"
	PropertyMysqlUser            = "mysql.user"
	PropertyMysqlUserDefault     = "root"
	PropertyMysqlPassword        = "mysql.password"
	PropertyMysqlPasswordDefault = ""
	PropertyMysqlOptions         = "mysql.options"
	PropertyMysqlOptionsDefault  = "charset=utf8"
)

// MysqlConn runs the benchmark against a MySQL server instead of
// RMDB. It pins a single session so BEGIN/COMMIT statements issued by
// the transaction code keep their meaning.
type MysqlConn struct {
	db   *sql.DB
	conn *sql.Conn
}

func NewMysqlConn(p tpcc.Properties) (*MysqlConn, error) {
	host := p.GetDefault(tpcc.PropertyHost, tpcc.PropertyHostDefault)
	port := p.GetDefault(tpcc.PropertyPort, tpcc.PropertyPortDefault)
	database := p.GetDefault(PropertyMysqlDatabase, PropertyMysqlDatabaseDefault)
	user := p.GetDefault(PropertyMysqlUser, PropertyMysqlUserDefault)
	password := p.GetDefault(PropertyMysqlPassword, PropertyMysqlPasswordDefault)
	options := p.GetDefault(PropertyMysqlOptions, PropertyMysqlOptionsDefault)

	sourceName := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s",
		user, password, host, port, database, options)
	db, err := sql.Open("mysql", sourceName)
	if err != nil {
		return nil, tpcc.NewDBError(tpcc.KindConnection, "open mysql: %s", err)
	}
	conn, err := db.Conn(context.Background())
	if err != nil {
		db.Close()
		return nil, tpcc.NewDBError(tpcc.KindConnection, "connect to mysql: %s", err)
	}
	return &MysqlConn{
		db:   db,
		conn: conn,
	}, nil
}

func (self *MysqlConn) Execute(
	query string, params ...interface{}) (*tpcc.ResultSet, error) {

	ctx := context.Background()
	if !isQuery(query) {
		if _, err := self.conn.ExecContext(ctx, query, params...); err != nil {
			return nil, tpcc.NewDBError(tpcc.KindAbort, "query aborted: %s", err)
		}
		return tpcc.NewResultSet(nil, nil), nil
	}

	rows, err := self.conn.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, tpcc.NewDBError(tpcc.KindAbort, "query aborted: %s", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, tpcc.NewDBError(tpcc.KindAbort, "read columns: %s", err)
	}
	var result []tpcc.Row
	for rows.Next() {
		values := make([]sql.RawBytes, len(columns))
		scanArgs := make([]interface{}, len(columns))
		for i := range values {
			scanArgs[i] = &values[i]
		}
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, tpcc.NewDBError(tpcc.KindAbort, "scan row: %s", err)
		}
		row := make(tpcc.Row, len(columns))
		for i, value := range values {
			row[i] = string(value)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, tpcc.NewDBError(tpcc.KindAbort, "read rows: %s", err)
	}
	return tpcc.NewResultSet(columns, result), nil
}

func (self *MysqlConn) Close() error {
	if self.conn != nil {
		self.conn.Close()
	}
	if self.db != nil {
		return self.db.Close()
	}
	return nil
}

func isQuery(query string) bool {
	return strings.HasPrefix(
		strings.ToUpper(strings.TrimSpace(query)), "SELECT")
}
