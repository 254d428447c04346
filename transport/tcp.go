package transport

import (
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/indigo-web/oneshot/internal/timer"
	"github.com/rs/zerolog"
)

const (
	minAcceptBackoff = 5 * time.Millisecond
	maxAcceptBackoff = time.Second
)

type listener interface {
	net.Listener
	SetDeadline(t time.Time) error
}

// TCP owns the listening socket and the shutdown flag. The flag is the only piece of state
// touched by other goroutines, everything else belongs to the accept loop.
type TCP struct {
	l    listener
	wg   *sync.WaitGroup
	stop *atomic.Bool
	log  zerolog.Logger
}

func NewTCP(log zerolog.Logger) *TCP {
	return &TCP{
		wg:   new(sync.WaitGroup),
		stop: new(atomic.Bool),
		log:  log,
	}
}

func bindTCP(addr string) (*net.TCPListener, error) {
	tcpaddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, err
	}

	return net.ListenTCP("tcp", tcpaddr)
}

func (t *TCP) Bind(addr string) error {
	l, err := bindTCP(addr)
	if err != nil {
		return err
	}

	t.l = l
	return nil
}

// Addr returns the address the socket is bound to, or nil before Bind.
func (t *TCP) Addr() net.Addr {
	if t.l == nil {
		return nil
	}

	return t.l.Addr()
}

// Listen runs the accept loop until Stop is called or the listener becomes unusable. Every
// accepted connection is passed to cb in its own goroutine, which isn't awaited. The
// connection is closed after cb returns.
//
// Accept is interrupted every interruptPeriod in order to check the shutdown flag, so the
// loop exits no later than one period after Stop.
func (t *TCP) Listen(interruptPeriod time.Duration, cb func(conn net.Conn)) error {
	var backoff time.Duration

	for !t.stop.Load() {
		err := t.l.SetDeadline(timer.Deadline(interruptPeriod))
		if err != nil {
			return err
		}

		conn, err := t.l.Accept()
		if err != nil {
			var netErr net.Error

			switch {
			case errors.As(err, &netErr) && netErr.Timeout():
				continue
			case errors.Is(err, net.ErrClosed):
				if t.stop.Load() {
					return nil
				}

				return err
			}

			backoff = min(max(backoff*2, minAcceptBackoff), maxAcceptBackoff)
			t.log.Warn().Err(err).Dur("retry_in", backoff).Msg("accept failed")
			time.Sleep(backoff)
			continue
		}

		backoff = 0
		t.wg.Add(1)
		go func(conn net.Conn) {
			defer t.wg.Done()
			defer func() {
				_ = conn.Close()
			}()

			cb(conn)
		}(conn)
	}

	return nil
}

// Stop raises the shutdown flag. It doesn't block and is safe to call from any goroutine,
// any number of times.
func (t *TCP) Stop() {
	t.stop.Store(true)
}

// Stopped reports whether Stop was called.
func (t *TCP) Stopped() bool {
	return t.stop.Load()
}

// Close closes the listening socket. Connections already accepted are not affected.
func (t *TCP) Close() error {
	if t.l == nil {
		return nil
	}

	return t.l.Close()
}

// Wait blocks until all the accepted connections are done.
func (t *TCP) Wait() {
	t.wg.Wait()
}
