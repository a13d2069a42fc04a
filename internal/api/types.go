package api

import (
	"github.com/samcharles93/pairmerge/pkg/bpe"
	"github.com/samcharles93/pairmerge/pkg/pairtable"
)

// Input carries a sequence either as explicit symbols or as text that is
// converted with InputFormat ("bytes" or "runes") after optional
// normalization.
type Input struct {
	Tokens      []bpe.Symbol `json:"tokens,omitempty"`
	Text        *string      `json:"text,omitempty"`
	InputFormat string       `json:"input_format,omitempty"`
	Normalize   string       `json:"normalize,omitempty"`
}

type EncodeRequest struct {
	Input
	Depth *int `json:"depth,omitempty"`
	Store bool `json:"store,omitempty"`
}

type EncodeResponse struct {
	Object           string             `json:"object"`
	Encoded          []bpe.Symbol       `json:"encoded"`
	Table            []pairtable.Triple `json:"table"`
	TableID          string             `json:"table_id,omitempty"`
	Depth            int                `json:"depth"`
	Iterations       int                `json:"iterations"`
	VocabularySize   int                `json:"vocabulary_size"`
	OriginalLength   int                `json:"original_length"`
	EncodedLength    int                `json:"encoded_length"`
	CompressionRatio float64            `json:"compression_ratio"`
}

type DecodeRequest struct {
	Tokens       []bpe.Symbol       `json:"tokens"`
	Table        []pairtable.Triple `json:"table,omitempty"`
	TableID      string             `json:"table_id,omitempty"`
	OutputFormat string             `json:"output_format,omitempty"`
}

type DecodeResponse struct {
	Object string       `json:"object"`
	Tokens []bpe.Symbol `json:"tokens"`
	Text   *string      `json:"text,omitempty"`
}

type StatsRequest struct {
	Input
	Depths []int `json:"depths,omitempty"`
}

type StatsRow struct {
	Label            string  `json:"label"`
	Depth            int     `json:"depth"`
	Iterations       int     `json:"iterations"`
	EncodedLength    int     `json:"encoded_length"`
	CompressionRatio float64 `json:"compression_ratio"`
	VocabularySize   int     `json:"vocabulary_size"`
}

type StatsResponse struct {
	Object string     `json:"object"`
	Data   []StatsRow `json:"data"`
}

type TableResponse struct {
	ID        string             `json:"id"`
	Object    string             `json:"object"`
	CreatedAt int64              `json:"created_at"`
	Size      int                `json:"size"`
	Entries   []pairtable.Triple `json:"entries"`
}

type DeleteTableResp struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

type VersionResponse struct {
	Object    string `json:"object"`
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
}

type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Param   string `json:"param,omitempty"`
	Code    string `json:"code,omitempty"`
}
