package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/pairmerge/internal/codec"
	"github.com/samcharles93/pairmerge/internal/logger"
	"github.com/samcharles93/pairmerge/internal/sequence"
	"github.com/samcharles93/pairmerge/internal/version"
	"github.com/samcharles93/pairmerge/pkg/bpe"
	"github.com/samcharles93/pairmerge/pkg/pairtable"
)

type Config struct {
	// DefaultDepth applies to encode requests that omit depth.
	DefaultDepth int
	// MaxSweepDepths caps the number of depths a stats request may ask for.
	MaxSweepDepths int
	// MaxDecodedLength caps the number of symbols a decode request may
	// expand to.
	MaxDecodedLength uint64
}

// DefaultMaxDecodedLength applies when Config.MaxDecodedLength is zero.
const DefaultMaxDecodedLength = 1 << 22

type Server struct {
	store   *TableStore
	service *codec.Service
	log     logger.Logger
	cfg     Config
	clock   func() time.Time
}

func NewServer(store *TableStore, service *codec.Service, log logger.Logger, cfg Config) *Server {
	if store == nil {
		store = NewTableStore()
	}
	if log == nil {
		log = logger.Discard()
	}
	if cfg.MaxSweepDepths <= 0 {
		cfg.MaxSweepDepths = 64
	}
	if cfg.MaxDecodedLength == 0 {
		cfg.MaxDecodedLength = DefaultMaxDecodedLength
	}
	return &Server{
		store:   store,
		service: service,
		log:     log,
		cfg:     cfg,
		clock:   time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/encode", s.handleEncode)
	e.POST("/v1/decode", s.handleDecode)
	e.POST("/v1/stats", s.handleStats)
	e.GET("/v1/tables/:id", s.handleGetTable)
	e.DELETE("/v1/tables/:id", s.handleDeleteTable)
	e.GET("/v1/version", s.handleVersion)
}

// requestContext carries the server logger to the codec service.
func (s *Server) requestContext(c *echo.Context) context.Context {
	req := c.Request()
	return logger.WithContext(req.Context(), s.log.With("method", req.Method, "path", req.URL.Path))
}

func (s *Server) handleEncode(c *echo.Context) error {
	if s.service == nil {
		return writeError(c, http.StatusInternalServerError, "server_error", "codec service not configured", "", "")
	}
	req, err := decodeJSON[EncodeRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	tokens, _, err := resolveInput(req.Input)
	if err != nil {
		return writeCodecError(c, err)
	}
	depth := s.cfg.DefaultDepth
	if req.Depth != nil {
		depth = *req.Depth
	}

	res, stats, err := s.service.Encode(s.requestContext(c), tokens, depth)
	if err != nil {
		return writeCodecError(c, err)
	}

	resp := EncodeResponse{
		Object:           "encoding",
		Encoded:          res.Encoded,
		Table:            pairtable.Triples(res.Table),
		Depth:            depth,
		Iterations:       res.Iterations,
		VocabularySize:   res.VocabularySize,
		OriginalLength:   stats.OriginalLength,
		EncodedLength:    stats.EncodedLength,
		CompressionRatio: stats.CompressionRatio,
	}
	if req.Store {
		resp.TableID = s.store.Put(res.Table, s.clock())
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleDecode(c *echo.Context) error {
	if s.service == nil {
		return writeError(c, http.StatusInternalServerError, "server_error", "codec service not configured", "", "")
	}
	req, err := decodeJSON[DecodeRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if req.TableID != "" && req.Table != nil {
		return writeBadRequest(c, "table and table_id are mutually exclusive")
	}

	var outFormat sequence.Format
	if req.OutputFormat != "" {
		outFormat, err = sequence.ParseFormat(req.OutputFormat)
		if err != nil {
			return writeBadRequest(c, err.Error())
		}
	}

	var table bpe.Table
	if req.TableID != "" {
		rec, ok := s.store.Get(req.TableID)
		if !ok {
			return writeNotFound(c, "table not found")
		}
		table = rec.Table
	} else {
		table, err = pairtable.FromTriples(req.Table)
		if err != nil {
			return writeCodecError(c, fmt.Errorf("table: %w", err))
		}
	}

	size, err := bpe.DecodedLen(req.Tokens, table)
	if err != nil {
		return writeCodecError(c, fmt.Errorf("table: %w", err))
	}
	if size > s.cfg.MaxDecodedLength {
		return writeError(c, http.StatusBadRequest, "invalid_request_error",
			fmt.Sprintf("decoded sequence would hold %d symbols, limit is %d", size, s.cfg.MaxDecodedLength),
			"tokens", "decoded_too_large")
	}

	out, err := s.service.Decode(s.requestContext(c), req.Tokens, table)
	if err != nil {
		return writeCodecError(c, err)
	}

	resp := DecodeResponse{Object: "decoding", Tokens: out}
	if outFormat != "" && outFormat != sequence.FormatInts {
		text, ok := sequence.Render(out, outFormat)
		if !ok {
			return writeBadRequest(c, fmt.Sprintf("decoded symbols cannot be rendered as %s", outFormat))
		}
		resp.Text = &text
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleStats(c *echo.Context) error {
	if s.service == nil {
		return writeError(c, http.StatusInternalServerError, "server_error", "codec service not configured", "", "")
	}
	req, err := decodeJSON[StatsRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if len(req.Depths) > s.cfg.MaxSweepDepths {
		return writeBadRequest(c, fmt.Sprintf("at most %d depths may be requested", s.cfg.MaxSweepDepths))
	}
	tokens, _, err := resolveInput(req.Input)
	if err != nil {
		return writeCodecError(c, err)
	}

	rows, err := s.service.Sweep(s.requestContext(c), tokens, req.Depths)
	if err != nil {
		return writeCodecError(c, err)
	}

	resp := StatsResponse{Object: "list", Data: make([]StatsRow, 0, len(rows))}
	for _, r := range rows {
		resp.Data = append(resp.Data, StatsRow{
			Label:            statsLabel(r),
			Depth:            r.Depth,
			Iterations:       r.Iterations,
			EncodedLength:    r.EncodedLength,
			CompressionRatio: r.CompressionRatio,
			VocabularySize:   r.VocabularySize,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetTable(c *echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return writeNotFound(c, "table not found")
	}
	rec, ok := s.store.Get(id)
	if !ok {
		return writeNotFound(c, "table not found")
	}
	return c.JSON(http.StatusOK, TableResponse{
		ID:        rec.ID,
		Object:    "table",
		CreatedAt: rec.CreatedAt.Unix(),
		Size:      rec.Table.Len(),
		Entries:   pairtable.Triples(rec.Table),
	})
}

func (s *Server) handleDeleteTable(c *echo.Context) error {
	id := c.Param("id")
	if id == "" || !s.store.Delete(id) {
		return writeNotFound(c, "table not found")
	}
	return c.JSON(http.StatusOK, DeleteTableResp{
		ID:      id,
		Object:  "table",
		Deleted: true,
	})
}

func (s *Server) handleVersion(c *echo.Context) error {
	info := version.Resolve()
	return c.JSON(http.StatusOK, VersionResponse{
		Object:    "version",
		Version:   info.Version,
		Commit:    info.Commit,
		BuildTime: info.BuildTime,
	})
}

func statsLabel(r codec.Stats) string {
	if r.Depth < 0 {
		return "original"
	}
	if r.Depth == 0 {
		return "converged"
	}
	return fmt.Sprintf("depth %d", r.Depth)
}
