package main

import "github.com/urfave/cli/v3"

var (
	configFile string
	logLevel   string
	logFormat  string
	debug      bool
)

// encodeSettings holds the flags shared by encode and stats.
type encodeSettings struct {
	input       string
	inputFormat string
	normalize   string
	depth       int64
	idSpace     uint64
	verify      bool
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config.yaml",
			Sources:     cli.EnvVars(envConfig),
			Destination: &configFile,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

func inputFlags(s *encodeSettings) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "input file (- for stdin)",
			Value:       "-",
			Destination: &s.input,
		},
		&cli.StringFlag{
			Name:        "format",
			Aliases:     []string{"f"},
			Usage:       "input format (bytes, runes, ints)",
			Value:       "bytes",
			Destination: &s.inputFormat,
		},
		&cli.StringFlag{
			Name:        "normalize",
			Usage:       "unicode normalization applied to text input (none, nfc, nfd, nfkc, nfkd)",
			Value:       "none",
			Destination: &s.normalize,
		},
		&cli.Uint64Flag{
			Name:        "id-space",
			Usage:       "exclusive upper bound for composite ids (0 = 2^32)",
			Destination: &s.idSpace,
		},
		&cli.BoolFlag{
			Name:        "verify",
			Usage:       "decode every result and fail on mismatch",
			Destination: &s.verify,
		},
	}
}
