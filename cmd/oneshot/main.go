package main

import (
	"flag"
	"os"
	"time"

	"github.com/indigo-web/oneshot"
	"github.com/indigo-web/oneshot/config"
	"github.com/indigo-web/oneshot/http"
	"github.com/indigo-web/oneshot/http/mime"
	"github.com/indigo-web/oneshot/http/status"
	"github.com/indigo-web/oneshot/router/inbuilt"
	"github.com/rs/zerolog"
)

func Index(*http.Request) (*http.Response, error) {
	return http.String(status.OK, "Hello, world!"), nil
}

func Greet(request *http.Request) (*http.Response, error) {
	name, _ := request.Param("name")
	return http.JSON(status.OK, map[string]string{
		"greeting": "Hello, " + name + "!",
	})
}

func Say(request *http.Request) (*http.Response, error) {
	contentType, _ := request.Header("Content-Type")
	if !mime.Complies(mime.Plain, contentType) {
		return nil, status.ErrUnsupportedMediaType
	}

	return http.NewResponse(status.OK, "", request.Body), nil
}

func Easter(request *http.Request) (*http.Response, error) {
	if _, found := request.Header("Easter"); !found {
		return http.String(status.OK, "Pretty ordinary page, isn't it?"), nil
	}

	response := http.String(status.Teapot, "You have discovered an easter egg! Congratulations!")
	return response, response.AddHeader("Easter", "Egg")
}

// Secret answers only to requests carrying the token from the SECRET_TOKEN variable.
func Secret(token string) inbuilt.Handler {
	return func(request *http.Request) (*http.Response, error) {
		auth, found := request.Header("Authorization")
		if !found || len(token) == 0 || auth != "Bearer "+token {
			return nil, status.ErrUnauthorized
		}

		return http.String(status.OK, "the cake is a lie"), nil
	}
}

func Stressful(*http.Request) (*http.Response, error) {
	panic("TOO MUCH STRESS")
}

func LogRequests(log zerolog.Logger) inbuilt.Middleware {
	return func(next inbuilt.Handler, request *http.Request) (*http.Response, error) {
		begin := time.Now()
		response, err := next(request)

		event := log.Info().
			Str("remote", request.Remote).
			Stringer("request", request).
			Dur("took", time.Since(begin))
		if err != nil {
			event = event.Err(err)
		} else if response != nil {
			event = event.Uint16("status", uint16(response.Code()))
		}

		event.Msg("handled")
		return response, err
	}
}

func main() {
	port := flag.Uint("port", 8080, "port to listen on")
	host := flag.String("host", "", "interface to listen on, all by default")
	configPath := flag.String("config", "", "path to a JSON config file")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().
		Logger()

	cfg := config.Default()
	if len(*configPath) > 0 {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatal().Err(err).Str("path", *configPath).Msg("cannot load config")
		}
	}

	if *port > 65535 {
		log.Fatal().Uint("port", *port).Msg("port out of range")
	}

	r := inbuilt.New().
		Use(LogRequests(log)).
		Get("/", Index).
		Get("/hello/{name}", Greet).
		Post("/say", Say).
		Get("/easter", Easter).
		Get("/secret", Secret(os.Getenv("SECRET_TOKEN"))).
		Get("/stress", Stressful)

	app := oneshot.Init(uint16(*port), r).
		Host(*host).
		Tune(cfg).
		Logger(log).
		NotifyOnSignals()

	if err := app.Start(); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}

	if err := app.Cleanup(); err != nil {
		log.Warn().Err(err).Msg("cleanup")
	}
}
