package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/pairmerge/internal/api"
	"github.com/samcharles93/pairmerge/internal/codec"
	"github.com/samcharles93/pairmerge/internal/logger"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		readTimeout time.Duration
		depth       int64
		idSpace     uint64
		verify      bool
		bodyLimit   int64
		maxDecoded  uint64
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the encode/decode REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
			&cli.Int64Flag{
				Name:        "depth",
				Aliases:     []string{"d"},
				Usage:       "default depth for encode requests that omit one",
				Destination: &depth,
			},
			&cli.Uint64Flag{
				Name:        "id-space",
				Usage:       "exclusive upper bound for composite ids (0 = 2^32)",
				Destination: &idSpace,
			},
			&cli.BoolFlag{
				Name:        "verify",
				Usage:       "verify every encode by decoding it",
				Destination: &verify,
			},
			&cli.Int64Flag{
				Name:        "body-limit",
				Usage:       "maximum request body size in bytes",
				Value:       8 << 20,
				Destination: &bodyLimit,
			},
			&cli.Uint64Flag{
				Name:        "max-decoded",
				Usage:       "maximum number of symbols a decode request may expand to",
				Value:       api.DefaultMaxDecodedLength,
				Destination: &maxDecoded,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			cfg := configFromContext(ctx)
			applyServeConfig(cmd, cfg, &addr, &depth)
			if cfg.IDSpace != nil && !cmd.IsSet("id-space") {
				idSpace = *cfg.IDSpace
			}
			if cfg.Verify != nil && !cmd.IsSet("verify") {
				verify = *cfg.Verify
			}

			service := codec.NewService(codec.Config{IDSpace: idSpace, Verify: verify})
			server := api.NewServer(api.NewTableStore(), service, log, api.Config{
				DefaultDepth:     int(depth),
				MaxDecodedLength: maxDecoded,
			})
			e := newEcho(server, bodyLimit)
			log.Info("starting server", "address", addr, "default_depth", depth)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}

// newEcho builds the HTTP handler for server with request logging, panic
// recovery and a request body cap.
func newEcho(server *api.Server, bodyLimit int64) *echo.Echo {
	e := echo.New()
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(bodyLimit))
	server.Register(e)
	return e
}
