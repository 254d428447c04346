package config

import (
	"fmt"
	"os"
	"time"

	json "github.com/json-iterator/go"
)

// file mirrors Config in a form convenient for humans: durations are strings like "90s",
// zero values mean "keep the default".
type file struct {
	Headers struct {
		Number struct {
			Default int `json:"default"`
			Maximal int `json:"maximal"`
		} `json:"number"`
		Default map[string]string `json:"default"`
	} `json:"headers"`
	NET struct {
		ReadBufferSize            int    `json:"read_buffer_size"`
		MaxRequestSize            int    `json:"max_request_size"`
		ReadTimeout               string `json:"read_timeout"`
		WriteTimeout              string `json:"write_timeout"`
		AcceptLoopInterruptPeriod string `json:"accept_loop_interrupt_period"`
	} `json:"net"`
}

// Load reads a JSON config file and overlays it on top of Default().
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse does the same as Load, but takes the JSON document itself.
func Parse(data []byte) (*Config, error) {
	var f file
	if err := json.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg := Default()
	setInt(&cfg.Headers.Number.Default, f.Headers.Number.Default)
	setInt(&cfg.Headers.Number.Maximal, f.Headers.Number.Maximal)
	for key, value := range f.Headers.Default {
		cfg.Headers.Default[key] = value
	}

	setInt(&cfg.NET.ReadBufferSize, f.NET.ReadBufferSize)
	setInt(&cfg.NET.MaxRequestSize, f.NET.MaxRequestSize)

	for _, d := range []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"net.read_timeout", f.NET.ReadTimeout, &cfg.NET.ReadTimeout},
		{"net.write_timeout", f.NET.WriteTimeout, &cfg.NET.WriteTimeout},
		{"net.accept_loop_interrupt_period", f.NET.AcceptLoopInterruptPeriod, &cfg.NET.AcceptLoopInterruptPeriod},
	} {
		if err := setDuration(d.dst, d.value); err != nil {
			return nil, fmt.Errorf("config: %s: %w", d.name, err)
		}
	}

	return cfg, cfg.Validate()
}

// Validate checks whether the limits are consistent with each other.
func (c *Config) Validate() error {
	switch {
	case c.NET.ReadBufferSize <= 0:
		return fmt.Errorf("config: net.read_buffer_size must be positive")
	case c.NET.MaxRequestSize < c.NET.ReadBufferSize:
		return fmt.Errorf("config: net.max_request_size must not be less than net.read_buffer_size")
	case c.NET.AcceptLoopInterruptPeriod <= 0:
		return fmt.Errorf("config: net.accept_loop_interrupt_period must be positive")
	case c.Headers.Number.Maximal < c.Headers.Number.Default:
		return fmt.Errorf("config: headers.number.maximal must not be less than the default")
	}

	return nil
}

func setInt(dst *int, value int) {
	if value != 0 {
		*dst = value
	}
}

func setDuration(dst *time.Duration, value string) error {
	if len(value) == 0 {
		return nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return err
	}

	*dst = d
	return nil
}
