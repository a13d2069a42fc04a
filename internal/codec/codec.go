package codec

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/samcharles93/pairmerge/internal/logger"
	"github.com/samcharles93/pairmerge/pkg/bpe"
)

var ErrRoundTrip = errors.New("codec: decoded output does not match input")

// DefaultSweepDepths are the depths tabulated when a sweep is requested
// without explicit depths.
var DefaultSweepDepths = []int{1, 2, 3, 4, 5, 6, 7, 8, 9}

type Config struct {
	// IDSpace bounds composite ids, see bpe.Options.
	IDSpace uint64
	// Verify decodes every encode result and fails with ErrRoundTrip on mismatch.
	Verify bool
}

// Service runs encode and decode requests and logs their outcome through the
// logger carried by the request context. It holds no per-request state and is
// safe for concurrent use.
type Service struct {
	cfg Config
}

func NewService(cfg Config) *Service {
	return &Service{cfg: cfg}
}

// Stats summarizes one encode run.
type Stats struct {
	Depth            int
	Iterations       int
	OriginalLength   int
	EncodedLength    int
	VocabularySize   int
	TableSize        int
	CompressionRatio float64
	Duration         time.Duration
}

func (s *Service) Encode(ctx context.Context, tokens []bpe.Symbol, depth int) (*bpe.Result, Stats, error) {
	log := logger.FromContext(ctx)

	start := time.Now()
	res, err := bpe.EncodeWithOptions(tokens, bpe.Options{Depth: depth, IDSpace: s.cfg.IDSpace})
	if err != nil {
		log.Error("encode failed", "depth", depth, "tokens", len(tokens), "error", err)
		return nil, Stats{}, fmt.Errorf("encode: %w", err)
	}
	stats := newStats(depth, len(tokens), res, time.Since(start))

	if s.cfg.Verify {
		if err := verify(tokens, res); err != nil {
			log.Error("round trip verification failed", "depth", depth, "error", err)
			return nil, stats, err
		}
	}

	log.Debug("encoded",
		"depth", depth,
		"iterations", stats.Iterations,
		"vocabulary", stats.VocabularySize,
		"length", stats.EncodedLength,
		"original", stats.OriginalLength,
		"ratio", stats.CompressionRatio,
		"took", stats.Duration,
	)
	return res, stats, nil
}

func (s *Service) Decode(ctx context.Context, tokens []bpe.Symbol, table bpe.Table) ([]bpe.Symbol, error) {
	log := logger.FromContext(ctx)

	out, err := bpe.Decode(tokens, table)
	if err != nil {
		log.Error("decode failed", "tokens", len(tokens), "table", table.Len(), "error", err)
		return nil, fmt.Errorf("decode: %w", err)
	}
	log.Debug("decoded", "tokens", len(tokens), "table", table.Len(), "length", len(out))
	return out, nil
}

// Sweep encodes tokens once per depth and returns one row per depth,
// preceded by a baseline row for the unencoded input (Depth -1).
func (s *Service) Sweep(ctx context.Context, tokens []bpe.Symbol, depths []int) ([]Stats, error) {
	if len(depths) == 0 {
		depths = DefaultSweepDepths
	}

	rows := make([]Stats, 0, len(depths)+1)
	rows = append(rows, Baseline(tokens))
	for _, depth := range depths {
		if err := ctx.Err(); err != nil {
			return rows, err
		}
		_, stats, err := s.Encode(ctx, tokens, depth)
		if err != nil {
			return rows, fmt.Errorf("depth %d: %w", depth, err)
		}
		rows = append(rows, stats)
	}
	return rows, nil
}

// Baseline describes the unencoded input as a Stats row with Depth -1.
func Baseline(tokens []bpe.Symbol) Stats {
	distinct := make(map[bpe.Symbol]struct{}, 256)
	for _, t := range tokens {
		distinct[t] = struct{}{}
	}
	return Stats{
		Depth:            -1,
		OriginalLength:   len(tokens),
		EncodedLength:    len(tokens),
		VocabularySize:   len(distinct),
		CompressionRatio: ratio(len(tokens), len(tokens)),
	}
}

func newStats(depth, original int, res *bpe.Result, took time.Duration) Stats {
	return Stats{
		Depth:            depth,
		Iterations:       res.Iterations,
		OriginalLength:   original,
		EncodedLength:    len(res.Encoded),
		VocabularySize:   res.VocabularySize,
		TableSize:        res.Table.Len(),
		CompressionRatio: ratio(original, len(res.Encoded)),
		Duration:         took,
	}
}

func ratio(original, encoded int) float64 {
	if encoded == 0 {
		return 1
	}
	return float64(original) / float64(encoded)
}

func verify(tokens []bpe.Symbol, res *bpe.Result) error {
	back, err := bpe.Decode(res.Encoded, res.Table)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRoundTrip, err)
	}
	if !slices.Equal(back, tokens) {
		return ErrRoundTrip
	}
	return nil
}
