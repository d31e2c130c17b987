package binding

import (
	"github.com/hhkbp2/tpcc"
)

func AddBindings() {
	tpcc.Databases["rmdb"] = func(p tpcc.Properties) (tpcc.Conn, error) {
		return NewRMDBConn(p)
	}
	tpcc.Databases["mysql"] = func(p tpcc.Properties) (tpcc.Conn, error) {
		return NewMysqlConn(p)
	}
}
