package dummy

import (
	"io"
	"strings"

	"github.com/indigo-web/oneshot/transport"
)

var _ transport.Client = new(Client)

// Client returns the data it was initialised with piece by piece, then io.EOF (or a custom
// error, if set). It also tracks all the written data, making it thereby a universal mock
// suitable for most of the tests.
type Client struct {
	closed   int
	pointer  int
	readErr  error
	writeErr error
	written  []byte
	data     [][]byte
}

func NewMockClient(data ...[]byte) *Client {
	return &Client{
		data:    data,
		readErr: io.EOF,
	}
}

func (c *Client) Read() (data []byte, err error) {
	if c.closed > 0 || c.pointer >= len(c.data) {
		return nil, c.readErr
	}

	piece := c.data[c.pointer]
	c.pointer++

	return piece, nil
}

func (c *Client) Write(p []byte) (int, error) {
	if c.writeErr != nil {
		return 0, c.writeErr
	}

	c.written = append(c.written, p...)
	return len(p), nil
}

func (*Client) Remote() string {
	return "dummy"
}

func (c *Client) Close() error {
	c.closed++
	return nil
}

// ReadError replaces io.EOF returned after all the data is consumed.
func (c *Client) ReadError(err error) *Client {
	c.readErr = err
	return c
}

// WriteError makes every write fail.
func (c *Client) WriteError(err error) *Client {
	c.writeErr = err
	return c
}

// Written returns everything written so far.
func (c *Client) Written() string {
	return string(c.written)
}

// Closed returns how many times the client was closed.
func (c *Client) Closed() int {
	return c.closed
}

// Chunked splits the string into pieces of n bytes.
func Chunked(str string, n int) [][]byte {
	var pieces [][]byte
	for len(str) > n {
		pieces = append(pieces, []byte(str[:n]))
		str = str[n:]
	}

	if len(str) > 0 || len(pieces) == 0 {
		pieces = append(pieces, []byte(str))
	}

	return pieces
}

// Repeat returns a string of n copies of the char. Useful for oversized payloads.
func Repeat(char byte, n int) string {
	return strings.Repeat(string(char), n)
}
