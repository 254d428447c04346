package oneshot

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/indigo-web/oneshot/config"
	"github.com/indigo-web/oneshot/internal/serve"
	"github.com/indigo-web/oneshot/router"
	"github.com/indigo-web/oneshot/router/inbuilt"
	"github.com/indigo-web/oneshot/transport"
	"github.com/rs/zerolog"
)

// Server accepts connections and serves exactly one request over each of them. All the
// configuration methods must be called before Start.
type Server struct {
	host   string
	port   uint16
	router router.Router
	cfg    *config.Config
	log    zerolog.Logger
	tcp    *transport.TCP
	hooks  hooks
}

// Init returns a server, which is going to listen on the port on all interfaces. Nothing
// is bound until Start is called. If nil is passed instead of a router, an empty inbuilt one
// is used, answering 404 to everything.
func Init(port uint16, r router.Router) *Server {
	if r == nil {
		r = inbuilt.New()
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(zerolog.InfoLevel).
		With().Timestamp().
		Logger()

	return &Server{
		port:   port,
		router: r,
		cfg:    config.Default(),
		log:    log,
		tcp:    transport.NewTCP(log),
	}
}

// Host restricts listening to a single interface.
func (s *Server) Host(host string) *Server {
	s.host = host
	return s
}

// Tune replaces the default config.
func (s *Server) Tune(cfg *config.Config) *Server {
	s.cfg = cfg
	return s
}

// Logger replaces the default logger, which writes human-readable lines to stderr.
func (s *Server) Logger(log zerolog.Logger) *Server {
	s.log = log
	s.tcp = transport.NewTCP(log)
	return s
}

// NotifyOnStart calls the callback right after the socket is bound. Addr is available from
// this moment.
func (s *Server) NotifyOnStart(cb func()) *Server {
	s.hooks.OnStart = cb
	return s
}

// NotifyOnStop calls the callback as soon as the accept loop is over. Connections accepted
// before may still be in progress.
func (s *Server) NotifyOnStop(cb func()) *Server {
	s.hooks.OnStop = cb
	return s
}

// NotifyOnSignals stops the server as soon as any of the signals is received. If none are
// passed, SIGINT and SIGTERM are used.
func (s *Server) NotifyOnSignals(sig ...os.Signal) *Server {
	if len(sig) == 0 {
		sig = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sig...)

	go func() {
		received := <-ch
		signal.Stop(ch)
		s.log.Info().Stringer("signal", received).Msg("shutting down")
		s.Stop()
	}()

	return s
}

// Start binds the socket and runs the accept loop. It blocks until Stop is called or the
// listener fails.
func (s *Server) Start() error {
	if err := s.cfg.Validate(); err != nil {
		return err
	}

	addr := net.JoinHostPort(s.host, strconv.Itoa(int(s.port)))
	if err := s.tcp.Bind(addr); err != nil {
		return fmt.Errorf("bind %s: %w", addr, err)
	}

	s.log.Info().Stringer("addr", s.tcp.Addr()).Msg("listening")
	callIfNotNil(s.hooks.OnStart)

	cfg, r, log := s.cfg, s.router, s.log
	err := s.tcp.Listen(cfg.NET.AcceptLoopInterruptPeriod, func(conn net.Conn) {
		serve.HTTP1(cfg, conn, r, log)
	})

	callIfNotNil(s.hooks.OnStop)
	if err != nil {
		return fmt.Errorf("accept loop: %w", err)
	}

	s.log.Info().Msg("stopped")
	return nil
}

// Stop makes the accept loop exit within config.NET.AcceptLoopInterruptPeriod. It doesn't
// block and is safe to call from any goroutine.
func (s *Server) Stop() {
	s.tcp.Stop()
}

// Cleanup closes the listening socket and drops the router. Connections in progress are
// not awaited, see Wait for that.
func (s *Server) Cleanup() error {
	s.router = nil
	return s.tcp.Close()
}

// Wait blocks until every accepted connection is served.
func (s *Server) Wait() {
	s.tcp.Wait()
}

// Addr returns the bound address or nil, if the server wasn't started yet. Useful when
// listening on port 0.
func (s *Server) Addr() net.Addr {
	return s.tcp.Addr()
}

type hooks struct {
	OnStart, OnStop func()
}

func callIfNotNil(f func()) {
	if f != nil {
		f()
	}
}
