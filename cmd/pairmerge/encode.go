package main

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/pairmerge/internal/codec"
	"github.com/samcharles93/pairmerge/internal/logger"
	"github.com/samcharles93/pairmerge/internal/sequence"
)

func encodeCmd() *cli.Command {
	var (
		s           encodeSettings
		tablePath   string
		tableFormat string
		outPath     string
	)

	return &cli.Command{
		Name:  "encode",
		Usage: "Merge repeated symbol pairs and write the encoded sequence and its pair table",
		Flags: append(inputFlags(&s),
			&cli.Int64Flag{
				Name:        "depth",
				Aliases:     []string{"d"},
				Usage:       "maximum number of merge passes (0 = until no pair repeats)",
				Destination: &s.depth,
			},
			&cli.StringFlag{
				Name:        "table",
				Aliases:     []string{"t"},
				Usage:       "path to write the pair table (.json for JSON, .zst to compress)",
				Required:    true,
				Destination: &tablePath,
			},
			&cli.StringFlag{
				Name:        "table-format",
				Usage:       "override the table format implied by --table (binary, json)",
				Destination: &tableFormat,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "path to write the encoded symbols (- for stdout)",
				Value:       "-",
				Destination: &outPath,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			cfg := configFromContext(ctx)
			applyEncodeConfig(cmd, cfg, &s)
			if cfg.TableFormat != "" && !cmd.IsSet("table-format") {
				tableFormat = cfg.TableFormat
			}

			tokens, err := readSequence(s.input, s.inputFormat, s.normalize)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			svc := codec.NewService(codec.Config{IDSpace: s.idSpace, Verify: s.verify})
			res, stats, err := svc.Encode(ctx, tokens, int(s.depth))
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			if err := writeTable(tablePath, tableFormat, res.Table); err != nil {
				return cli.Exit(fmt.Sprintf("error: write table: %v", err), 1)
			}

			err = writeOutput(outPath, func(w io.Writer) error {
				return sequence.WriteInts(w, res.Encoded)
			})
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: write output: %v", err), 1)
			}

			log.Info("encode complete",
				"iterations", stats.Iterations,
				"original", stats.OriginalLength,
				"encoded", stats.EncodedLength,
				"vocabulary", stats.VocabularySize,
				"ratio", stats.CompressionRatio,
				"table", tablePath,
			)
			return nil
		},
	}
}
