package serve

import (
	"errors"
	"fmt"
	"maps"
	"net"
	"os"
	"runtime/debug"
	"slices"

	"github.com/dchest/uniuri"
	"github.com/indigo-web/oneshot/config"
	"github.com/indigo-web/oneshot/http"
	"github.com/indigo-web/oneshot/http/status"
	"github.com/indigo-web/oneshot/internal/buffer"
	"github.com/indigo-web/oneshot/internal/parser"
	"github.com/indigo-web/oneshot/internal/parser/http1"
	"github.com/indigo-web/oneshot/router"
	"github.com/indigo-web/oneshot/transport"
	"github.com/rs/zerolog"
)

const connIDLength = 8

// errDisconnected means the client is gone and there's nobody to respond to.
var errDisconnected = errors.New("client disconnected")

// Conn serves exactly one request over a single connection and closes it afterward. It is
// owned by a single goroutine, so nothing here is synchronized.
type Conn struct {
	cfg      *config.Config
	client   transport.Client
	parser   parser.Parser
	router   router.Router
	buff     *buffer.Buffer
	log      zerolog.Logger
	defaults []string
	state    State
	failed   bool
}

func New(
	cfg *config.Config, client transport.Client, p parser.Parser, r router.Router, log zerolog.Logger,
) *Conn {
	return &Conn{
		cfg:    cfg,
		client: client,
		parser: p,
		router: r,
		buff:   buffer.New(cfg.NET.ReadBufferSize, cfg.NET.MaxRequestSize),
		log: log.With().
			Str("conn", uniuri.NewLen(connIDLength)).
			Str("remote", client.Remote()).
			Logger(),
		defaults: slices.Sorted(maps.Keys(cfg.Headers.Default)),
	}
}

// HTTP1 serves the connection with the HTTP/1.x parser. Blocks until the response is written
// or the connection turns out to be unusable.
func HTTP1(cfg *config.Config, conn net.Conn, r router.Router, log zerolog.Logger) {
	client := transport.NewClient(
		conn, cfg.NET.ReadTimeout, cfg.NET.WriteTimeout, make([]byte, cfg.NET.ReadBufferSize),
	)
	New(cfg, client, http1.NewParser(cfg), r, log).Serve()
}

// State returns the stage the connection is currently at.
func (c *Conn) State() State {
	return c.state
}

// Failed reports whether the connection has passed through Errored.
func (c *Conn) Failed() bool {
	return c.failed
}

func (c *Conn) fail() {
	c.state = Errored
	c.failed = true
}

// Serve drives the connection through all its stages. The client is closed in any case.
func (c *Conn) Serve() {
	var (
		request  *http.Request
		response *http.Response
	)

	defer func() {
		c.close(request, response)
	}()

	request, err := c.read()
	switch {
	case errors.Is(err, errDisconnected):
		c.log.Debug().Err(err).Msg("closing without response")
		c.fail()
		return
	case err != nil:
		c.log.Debug().Err(err).Msg("bad request")
		response = c.errorResponse(err)
	default:
		c.log.Debug().Stringer("request", request).Msg("received")
		response = c.handle(request)
	}

	c.write(response)
}

// read accumulates the data until the parser is done with it.
func (c *Conn) read() (*http.Request, error) {
	for {
		c.state = Reading
		data, err := c.client.Read()

		if len(data) > 0 {
			if !c.buff.Append(data) {
				return nil, status.ErrRequestTooLarge
			}

			c.state = Parsing
			state, request, perr := c.parser.Parse(c.buff.Bytes())
			switch state {
			case parser.Completed:
				return request, nil
			case parser.Error:
				return nil, perr
			}
		}

		if err != nil {
			switch {
			case c.buff.Len() == 0:
				return nil, fmt.Errorf("%w: %w", errDisconnected, err)
			case errors.Is(err, os.ErrDeadlineExceeded):
				return nil, status.ErrRequestTimeout
			default:
				return nil, fmt.Errorf("%w: %w", errDisconnected, err)
			}
		}
	}
}

func (c *Conn) handle(request *http.Request) *http.Response {
	c.state = Routing
	request.Remote = c.client.Remote()

	handler, params, err := c.router.Match(request.Method, request.Path)
	if err != nil {
		return c.errorResponse(err)
	}

	request.Params = params
	c.state = Handling

	return c.call(handler, request)
}

// call runs the handler, turning its errors and panics into responses. If the handler returns
// both a response and an error, the error wins.
func (c *Conn) call(handler router.Handler, request *http.Request) (response *http.Response) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Stringer("request", request).
				Msg("handler panicked")
			response = c.errorResponse(status.ErrHandlerFailure)
		}
	}()

	resp, err := handler(request)
	switch {
	case err != nil:
		c.log.Warn().Err(err).Stringer("request", request).Msg("handler failed")
		return c.errorResponse(err)
	case resp == nil:
		return http.Code(status.NoContent)
	default:
		return resp
	}
}

func (c *Conn) write(response *http.Response) {
	c.state = Writing

	for _, key := range c.defaults {
		if _, found := response.Header(key); !found {
			// Content-Length and malformed pairs are refused by AddHeader and thus skipped
			_ = response.AddHeader(key, c.cfg.Headers.Default[key])
		}
	}

	data, err := response.Serialize()
	if err != nil {
		c.log.Error().Err(err).Uint16("status", uint16(response.Code())).Msg("cannot serialize response")
		c.fail()
		if data, err = http.Error(err).Serialize(); err != nil {
			return
		}

		c.state = Writing
	}

	if _, err = c.client.Write(data); err != nil {
		c.log.Debug().Err(err).Msg("cannot write response")
		c.fail()
		return
	}

	c.log.Debug().Uint16("status", uint16(response.Code())).Int("bytes", len(data)).Msg("responded")
}

func (c *Conn) close(request *http.Request, response *http.Response) {
	request.Release()
	response.Release()
	c.buff.Clear()
	c.parser.Reset()

	if err := c.client.Close(); err != nil {
		c.log.Debug().Err(err).Msg("close")
	}

	if c.state != Errored {
		c.state = Closed
	}
}

// errorResponse moves the connection to Errored and returns the response for the error.
func (c *Conn) errorResponse(err error) *http.Response {
	c.fail()
	response := http.Error(err)

	var notAllowed router.MethodNotAllowedError
	if errors.As(err, &notAllowed) {
		_ = response.AddHeader("Allow", notAllowed.Allow())
	}

	return response
}
