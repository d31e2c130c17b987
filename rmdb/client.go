// Package rmdb implements the TCP transport of the RMDB text protocol:
// one request/response exchange per call, requests terminated by `;`,
// responses terminated by a NUL byte.
package rmdb

import (
	"bufio"
	"net"
	"strings"
	"time"
)

const (
	dialTimeout = 10 * time.Second

	// responseTerminator ends every server response.
	responseTerminator = '\x00'
)

type Client struct {
	conn   net.Conn
	reader *bufio.Reader
}

func Dial(addr string) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, err
	}
	return &Client{
		conn:   conn,
		reader: bufio.NewReader(conn),
	}, nil
}

// SendCmd writes one statement and blocks until the full response has
// been read.
func (self *Client) SendCmd(cmd string) (string, error) {
	if _, err := self.conn.Write([]byte(cmd)); err != nil {
		return "", err
	}
	response, err := self.reader.ReadString(responseTerminator)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(response, string(responseTerminator)), nil
}

func (self *Client) Close() error {
	return self.conn.Close()
}
