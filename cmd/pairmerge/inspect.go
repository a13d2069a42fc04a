package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/pairmerge/internal/sequence"
	"github.com/samcharles93/pairmerge/pkg/bpe"
	"github.com/samcharles93/pairmerge/pkg/pairtable"
)

func inspectCmd() *cli.Command {
	var (
		as    string
		limit int64
		width int64
	)

	return &cli.Command{
		Name:      "inspect",
		Usage:     "List the entries of a pair table with their full expansions",
		ArgsUsage: "<table>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "as",
				Usage:       "render expansions as ints, bytes or runes",
				Value:       "ints",
				Destination: &as,
			},
			&cli.Int64Flag{
				Name:        "limit",
				Usage:       "maximum number of entries to list (0 = all)",
				Destination: &limit,
			},
			&cli.Int64Flag{
				Name:        "width",
				Usage:       "maximum number of symbols shown per expansion",
				Value:       32,
				Destination: &width,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			if path == "" {
				return cli.Exit("error: table path is required", 1)
			}
			format, err := sequence.ParseFormat(as)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			table, err := pairtable.Load(path)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if err := printTable(cmd.Root().Writer, path, table, format, int(limit), int(width)); err != nil {
				return cli.Exit(fmt.Sprintf("error: %s: %v", path, err), 1)
			}
			return nil
		},
	}
}

// printTable lists the entries of table with their expansion lengths and
// the first width symbols of each expansion.
func printTable(w io.Writer, path string, table bpe.Table, format sequence.Format, limit, width int) error {
	lengths, err := table.Lengths()
	if err != nil {
		return err
	}
	prefixes, err := table.Prefixes(width)
	if err != nil {
		return err
	}

	entries := table.Entries()
	_, _ = fmt.Fprintf(w, "Table: %s\n", path)
	_, _ = fmt.Fprintf(w, "  Entries: %d\n", len(entries))
	if len(entries) > 0 {
		_, _ = fmt.Fprintf(w, "  IDs:     %d..%d\n", entries[0].ID, entries[len(entries)-1].ID)
	}
	_, _ = fmt.Fprintln(w)

	for i, e := range entries {
		if limit > 0 && i >= limit {
			_, _ = fmt.Fprintf(w, "  ... %d more\n", len(entries)-limit)
			break
		}
		n := lengths[e.ID]
		shown := renderExpansion(prefixes[e.ID], format)
		if uint64(len(prefixes[e.ID])) < n {
			shown += " ..."
		}
		_, _ = fmt.Fprintf(w, "  %8d = (%d, %d)  len=%d  %s\n", e.ID, e.Left, e.Right, n, shown)
	}
	return nil
}

func renderExpansion(seq []bpe.Symbol, format sequence.Format) string {
	if format != sequence.FormatInts {
		if text, ok := sequence.Render(seq, format); ok {
			return strconv.Quote(text)
		}
	}
	parts := make([]string, len(seq))
	for i, s := range seq {
		parts[i] = strconv.FormatUint(uint64(s), 10)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
