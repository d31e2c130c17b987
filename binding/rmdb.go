package binding

import (
	"net"

	"github.com/hhkbp2/tpcc"
	"github.com/hhkbp2/tpcc/rmdb"
)

// RMDBConn is a connection to an RMDB server: the TCP client wrapped
// in the text-protocol cursor.
type RMDBConn struct {
	client *rmdb.Client
	cursor *tpcc.Cursor
}

func NewRMDBConn(p tpcc.Properties) (*RMDBConn, error) {
	host := p.GetDefault(tpcc.PropertyHost, tpcc.PropertyHostDefault)
	port := p.GetDefault(tpcc.PropertyPort, tpcc.PropertyPortDefault)
	client, err := rmdb.Dial(net.JoinHostPort(host, port))
	if err != nil {
		return nil, tpcc.NewDBError(
			tpcc.KindConnection, "connect to %s:%s: %s", host, port, err)
	}
	return &RMDBConn{
		client: client,
		cursor: tpcc.NewCursor(client),
	}, nil
}

func (self *RMDBConn) Execute(
	query string, params ...interface{}) (*tpcc.ResultSet, error) {

	return self.cursor.Execute(query, params...)
}

func (self *RMDBConn) Close() error {
	return self.client.Close()
}
