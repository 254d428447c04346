package config

import (
	"time"
)

type (
	HeadersNumber struct {
		Default, Maximal int
	}
)

type (
	Headers struct {
		// Number is responsible for headers map size.
		// Default value is an initial size of allocated headers map.
		// Maximal value is maximum number of headers allowed to be presented
		Number HeadersNumber
		// Default headers are headers to be included into every response implicitly, unless
		// explicitly overridden.
		Default map[string]string `test:"nullable"`
	}

	NET struct {
		// ReadBufferSize is a size of buffer in bytes which will be used to read from
		// socket
		ReadBufferSize int
		// MaxRequestSize limits the whole request, including the request line, headers and
		// the body. Requests exceeding it are answered with 413 Request Entity Too Large.
		MaxRequestSize int
		// ReadTimeout controls the maximal time a single read may block. If no data was
		// received in this period of time, the connection is closed.
		ReadTimeout time.Duration
		// WriteTimeout bounds writing the whole response.
		WriteTimeout time.Duration
		// AcceptLoopInterruptPeriod controls how often will the Accept() call be interrupted
		// in order to check whether it's time to stop.
		AcceptLoopInterruptPeriod time.Duration
	}
)

// Config holds settings used across various parts of the server, mainly restrictions,
// limitations and pre-allocations.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually, because most likely this will result in ambiguous errors.
type Config struct {
	Headers Headers
	NET     NET
}

// Default returns default config.
func Default() *Config {
	return &Config{
		Headers: Headers{
			Number: HeadersNumber{
				Default: 10,
				Maximal: 50,
			},
			Default: make(map[string]string),
		},
		NET: NET{
			ReadBufferSize:            4 * 1024,
			MaxRequestSize:            1 * 1024 * 1024,
			ReadTimeout:               90 * time.Second,
			WriteTimeout:              30 * time.Second,
			AcceptLoopInterruptPeriod: 500 * time.Millisecond,
		},
	}
}
