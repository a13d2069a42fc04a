package main

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/pairmerge/internal/codec"
	"github.com/samcharles93/pairmerge/internal/logger"
	"github.com/samcharles93/pairmerge/internal/sequence"
	"github.com/samcharles93/pairmerge/pkg/bpe"
	"github.com/samcharles93/pairmerge/pkg/pairtable"
)

func decodeCmd() *cli.Command {
	var (
		inPath    string
		tablePath string
		outPath   string
		as        string
	)

	return &cli.Command{
		Name:  "decode",
		Usage: "Expand an encoded sequence back to the original symbols",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "input",
				Aliases:     []string{"i"},
				Usage:       "encoded symbols, whitespace or comma separated (- for stdin)",
				Value:       "-",
				Destination: &inPath,
			},
			&cli.StringFlag{
				Name:        "table",
				Aliases:     []string{"t"},
				Usage:       "pair table written by encode",
				Required:    true,
				Destination: &tablePath,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "path to write the decoded output (- for stdout)",
				Value:       "-",
				Destination: &outPath,
			},
			&cli.StringFlag{
				Name:        "as",
				Usage:       "output format (ints, bytes, runes)",
				Value:       "ints",
				Destination: &as,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)

			format, err := sequence.ParseFormat(as)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			tokens, err := readSequence(inPath, string(sequence.FormatInts), "")
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			table, err := pairtable.Load(tablePath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			decoded, err := codec.NewService(codec.Config{}).Decode(ctx, tokens, table)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			err = writeOutput(outPath, func(w io.Writer) error {
				return writeDecoded(w, decoded, format)
			})
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: write output: %v", err), 1)
			}

			log.Debug("decode complete", "encoded", len(tokens), "decoded", len(decoded), "table", table.Len())
			return nil
		},
	}
}

func writeDecoded(w io.Writer, seq []bpe.Symbol, format sequence.Format) error {
	if format == sequence.FormatInts {
		return sequence.WriteInts(w, seq)
	}
	text, ok := sequence.Render(seq, format)
	if !ok {
		return fmt.Errorf("decoded symbols cannot be written as %s", format)
	}
	_, err := io.WriteString(w, text)
	return err
}
