package transport

import (
	"fmt"
	"io"
	"net"
	"time"

	"github.com/indigo-web/oneshot/internal/timer"
)

type Client interface {
	Read() ([]byte, error)
	Write([]byte) (int, error)
	Remote() string
	Close() error
}

type client struct {
	conn         net.Conn
	buff         []byte
	readTimeout  time.Duration
	writeTimeout time.Duration
}

func NewClient(conn net.Conn, readTimeout, writeTimeout time.Duration, buff []byte) Client {
	return &client{
		conn:         conn,
		buff:         buff,
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// Read reads data into the internal buffer and returns a piece of it back. The returned
// slice is valid only until the next call. Timeouts are also handled automatically.
func (c *client) Read() ([]byte, error) {
	if err := c.conn.SetReadDeadline(timer.Deadline(c.readTimeout)); err != nil {
		return nil, err
	}

	n, err := c.conn.Read(c.buff)
	return c.buff[:n], err
}

// Write writes the whole b into the connection, retrying on partial writes until either
// everything is written or an error occurs. The write timeout covers the whole call.
func (c *client) Write(b []byte) (written int, err error) {
	if err = c.conn.SetWriteDeadline(timer.Deadline(c.writeTimeout)); err != nil {
		return 0, err
	}

	for written < len(b) {
		n, err := c.conn.Write(b[written:])
		written += n

		switch {
		case err != nil:
			return written, err
		case n == 0:
			return written, fmt.Errorf("write: %w", io.ErrShortWrite)
		}
	}

	return written, nil
}

// Remote returns the remote address of the connection.
func (c *client) Remote() string {
	if addr := c.conn.RemoteAddr(); addr != nil {
		return addr.String()
	}

	return ""
}

// Close closes the connection.
func (c *client) Close() error {
	return c.conn.Close()
}
