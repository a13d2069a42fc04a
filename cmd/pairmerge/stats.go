package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/pairmerge/internal/codec"
)

func statsCmd() *cli.Command {
	var (
		s      encodeSettings
		depths string
	)

	return &cli.Command{
		Name:  "stats",
		Usage: "Tabulate encoded length, compression ratio and vocabulary size per depth",
		Flags: append(inputFlags(&s),
			&cli.StringFlag{
				Name:        "depths",
				Usage:       "depths to encode at, e.g. 1-9 or 1,2,4,0 (0 = until convergence)",
				Value:       "1-9",
				Destination: &depths,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyEncodeConfig(cmd, configFromContext(ctx), &s)

			list, err := parseDepths(depths)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			tokens, err := readSequence(s.input, s.inputFormat, s.normalize)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			svc := codec.NewService(codec.Config{IDSpace: s.idSpace, Verify: s.verify})
			rows, err := svc.Sweep(ctx, tokens, list)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			return printStats(cmd.Root().Writer, rows)
		},
	}
}

func printStats(w io.Writer, rows []codec.Stats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	_, _ = fmt.Fprintln(tw, "Depth\tIterations\tToken Length\tCompression Ratio\tVocabulary Size\t")
	for _, r := range rows {
		_, _ = fmt.Fprintf(tw, "%s\t%d\t%d\t%.4f\t%d\t\n",
			depthLabel(r.Depth), r.Iterations, r.EncodedLength, r.CompressionRatio, r.VocabularySize)
	}
	return tw.Flush()
}

func depthLabel(depth int) string {
	switch {
	case depth < 0:
		return "original"
	case depth == 0:
		return "converged"
	default:
		return fmt.Sprintf("%d", depth)
	}
}
