package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/pairmerge/internal/sequence"
	"github.com/samcharles93/pairmerge/pkg/bpe"
	"github.com/samcharles93/pairmerge/pkg/pairtable"
)

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg, "", "")
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg, "", "")
}

func writeError(c *echo.Context, status int, errType, msg, param, code string) error {
	return c.JSON(status, map[string]any{
		"error": ResponseError{
			Message: msg,
			Type:    errType,
			Code:    code,
			Param:   param,
		},
	})
}

// writeCodecError maps encode/decode failures to HTTP errors.
func writeCodecError(c *echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, bpe.ErrNegativeDepth),
		errors.Is(err, bpe.ErrCyclicTable),
		errors.Is(err, bpe.ErrDuplicateID),
		errors.Is(err, pairtable.ErrUnsortedEntries):
		return writeBadRequest(c, err.Error())
	case errors.Is(err, bpe.ErrIDSpaceExhausted):
		return writeError(c, http.StatusUnprocessableEntity, "invalid_request_error", err.Error(), "", "id_space_exhausted")
	default:
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "", "")
	}
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	dec := json.NewDecoder(r)
	if err := dec.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}

// resolveInput turns an Input into symbols. It also returns the format the
// symbols were produced with, so decoded output can be rendered back.
func resolveInput(in Input) ([]bpe.Symbol, sequence.Format, error) {
	if in.Text != nil && in.Tokens != nil {
		return nil, "", newInvalidRequest("tokens and text are mutually exclusive")
	}
	if in.Text == nil {
		if in.Tokens == nil {
			return nil, "", newInvalidRequest("one of tokens or text is required")
		}
		return in.Tokens, sequence.FormatInts, nil
	}

	format, err := sequence.ParseFormat(in.InputFormat)
	if err != nil {
		return nil, "", newInvalidRequest(err.Error())
	}
	if format == sequence.FormatInts {
		return nil, "", newInvalidRequest("input_format ints is only valid with tokens")
	}
	seq, err := sequence.Decode([]byte(*in.Text), format, in.Normalize)
	if err != nil {
		return nil, "", newInvalidRequest(fmt.Sprintf("text: %v", err))
	}
	return seq, format, nil
}
