package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/pairmerge/internal/codec"
	"github.com/samcharles93/pairmerge/internal/logger"
	"github.com/samcharles93/pairmerge/pkg/bpe"
)

func newTestEcho(cfg codec.Config) (*echo.Echo, *TableStore) {
	return newTestEchoWithConfig(cfg, Config{})
}

func newTestEchoWithConfig(cfg codec.Config, apiCfg Config) (*echo.Echo, *TableStore) {
	store := NewTableStore()
	server := NewServer(store, codec.NewService(cfg), logger.Discard(), apiCfg)
	e := echo.New()
	server.Register(e)
	return e, store
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestEncodeTokens(t *testing.T) {
	t.Parallel()

	e, store := newTestEcho(codec.Config{Verify: true})
	rec := doJSON(t, e, http.MethodPost, "/v1/encode", `{"tokens":[5,5,5,5],"depth":1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}

	var resp EncodeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !slices.Equal(resp.Encoded, []bpe.Symbol{0, 0}) {
		t.Fatalf("encoded: got %v want [0 0]", resp.Encoded)
	}
	if len(resp.Table) != 1 || resp.Table[0] != [3]bpe.Symbol{0, 5, 5} {
		t.Fatalf("table: got %v", resp.Table)
	}
	if resp.Iterations != 1 || resp.VocabularySize != 2 || resp.CompressionRatio != 2 {
		t.Fatalf("unexpected stats: %+v", resp)
	}
	if resp.TableID != "" || store.Len() != 0 {
		t.Fatalf("table stored without store=true")
	}
}

func TestEncodeStoreDecodeLifecycle(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(codec.Config{})
	encRec := doJSON(t, e, http.MethodPost, "/v1/encode", `{"text":"abababc","store":true}`)
	if encRec.Code != http.StatusOK {
		t.Fatalf("encode status: got %d body=%s", encRec.Code, encRec.Body.String())
	}
	var enc EncodeResponse
	if err := json.Unmarshal(encRec.Body.Bytes(), &enc); err != nil {
		t.Fatalf("decode encode response: %v", err)
	}
	if !strings.HasPrefix(enc.TableID, "tbl_") {
		t.Fatalf("expected table id, got %q", enc.TableID)
	}

	getRec := doJSON(t, e, http.MethodGet, "/v1/tables/"+enc.TableID, "")
	if getRec.Code != http.StatusOK {
		t.Fatalf("get status: got %d body=%s", getRec.Code, getRec.Body.String())
	}
	var tbl TableResponse
	if err := json.Unmarshal(getRec.Body.Bytes(), &tbl); err != nil {
		t.Fatalf("decode table response: %v", err)
	}
	if tbl.Size != len(enc.Table) || !slices.Equal(tbl.Entries, enc.Table) {
		t.Fatalf("stored table differs: got %v want %v", tbl.Entries, enc.Table)
	}

	tokens, _ := json.Marshal(enc.Encoded)
	body := `{"tokens":` + string(tokens) + `,"table_id":"` + enc.TableID + `","output_format":"bytes"}`
	decRec := doJSON(t, e, http.MethodPost, "/v1/decode", body)
	if decRec.Code != http.StatusOK {
		t.Fatalf("decode status: got %d body=%s", decRec.Code, decRec.Body.String())
	}
	var dec DecodeResponse
	if err := json.Unmarshal(decRec.Body.Bytes(), &dec); err != nil {
		t.Fatalf("decode decode response: %v", err)
	}
	if dec.Text == nil || *dec.Text != "abababc" {
		t.Fatalf("decoded text: got %v", dec.Text)
	}

	delRec := doJSON(t, e, http.MethodDelete, "/v1/tables/"+enc.TableID, "")
	if delRec.Code != http.StatusOK {
		t.Fatalf("delete status: got %d body=%s", delRec.Code, delRec.Body.String())
	}
	if !strings.Contains(delRec.Body.String(), `"deleted":true`) {
		t.Fatalf("delete response missing deleted=true: %s", delRec.Body.String())
	}

	getDeleted := doJSON(t, e, http.MethodGet, "/v1/tables/"+enc.TableID, "")
	if getDeleted.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d body=%s", getDeleted.Code, getDeleted.Body.String())
	}
	decDeleted := doJSON(t, e, http.MethodPost, "/v1/decode", body)
	if decDeleted.Code != http.StatusNotFound {
		t.Fatalf("expected 404 decoding with deleted table, got %d", decDeleted.Code)
	}
}

func TestDecodeInlineTable(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(codec.Config{})
	rec := doJSON(t, e, http.MethodPost, "/v1/decode", `{"tokens":[9,0,42],"table":[[0,5,5]]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp DecodeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !slices.Equal(resp.Tokens, []bpe.Symbol{9, 5, 5, 42}) {
		t.Fatalf("tokens: got %v", resp.Tokens)
	}
	if resp.Text != nil {
		t.Fatalf("unexpected text without output_format")
	}
}

func TestDecodeRejectsOversizedExpansion(t *testing.T) {
	t.Parallel()

	// Each triple doubles the expansion: symbol n stands for 2^n zeros.
	chain := func(n int) string {
		var b strings.Builder
		b.WriteString(`{"tokens":[` + strconv.Itoa(n) + `],"table":[`)
		for i := 1; i <= n; i++ {
			if i > 1 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "[%d,%d,%d]", i, i-1, i-1)
		}
		b.WriteString("]}")
		return b.String()
	}

	e, _ := newTestEcho(codec.Config{})
	for _, n := range []int{24, 40, 80} {
		rec := doJSON(t, e, http.MethodPost, "/v1/decode", chain(n))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("chain of %d: status got %d want 400", n, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"code":"decoded_too_large"`) {
			t.Fatalf("chain of %d: unexpected body %s", n, rec.Body.String())
		}
	}

	rec := doJSON(t, e, http.MethodPost, "/v1/decode", chain(10))
	if rec.Code != http.StatusOK {
		t.Fatalf("chain of 10: status got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp DecodeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Tokens) != 1<<10 {
		t.Fatalf("chain of 10: got %d symbols", len(resp.Tokens))
	}
}

func TestDecodeLimitFromConfig(t *testing.T) {
	t.Parallel()

	e, _ := newTestEchoWithConfig(codec.Config{}, Config{MaxDecodedLength: 3})
	rec := doJSON(t, e, http.MethodPost, "/v1/decode", `{"tokens":[1,2,3],"table":[]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("at the limit: status got %d body=%s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, e, http.MethodPost, "/v1/decode", `{"tokens":[0,0],"table":[[0,5,5]]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("over the limit: status got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "limit is 3") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestValidationErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		want   string
	}{
		{"malformed json", "/v1/encode", `{"tokens":`, http.StatusBadRequest, "invalid_request_error"},
		{"missing input", "/v1/encode", `{}`, http.StatusBadRequest, "one of tokens or text is required"},
		{"tokens and text", "/v1/encode", `{"tokens":[1],"text":"a"}`, http.StatusBadRequest, "mutually exclusive"},
		{"ints with text", "/v1/encode", `{"text":"1 2","input_format":"ints"}`, http.StatusBadRequest, "only valid with tokens"},
		{"bad normalization", "/v1/encode", `{"text":"a","normalize":"nfx"}`, http.StatusBadRequest, "normalization"},
		{"negative depth", "/v1/encode", `{"tokens":[1,1,1],"depth":-2}`, http.StatusBadRequest, "negative"},
		{"cyclic table", "/v1/decode", `{"tokens":[1],"table":[[1,1,2]]}`, http.StatusBadRequest, "cycl"},
		{"unsorted table", "/v1/decode", `{"tokens":[1],"table":[[4,1,2],[3,1,2]]}`, http.StatusBadRequest, "invalid_request_error"},
		{"table and table_id", "/v1/decode", `{"tokens":[1],"table":[[0,1,2]],"table_id":"tbl_x"}`, http.StatusBadRequest, "mutually exclusive"},
		{"unknown table", "/v1/decode", `{"tokens":[1],"table_id":"tbl_missing"}`, http.StatusNotFound, "table not found"},
		{"bad output format", "/v1/decode", `{"tokens":[1],"output_format":"utf9"}`, http.StatusBadRequest, "unknown input format"},
		{"unrenderable bytes", "/v1/decode", `{"tokens":[300],"output_format":"bytes"}`, http.StatusBadRequest, "cannot be rendered"},
	}

	e, _ := newTestEcho(codec.Config{})
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec := doJSON(t, e, http.MethodPost, tc.path, tc.body)
			if rec.Code != tc.status {
				t.Fatalf("status: got %d want %d body=%s", rec.Code, tc.status, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tc.want) {
				t.Fatalf("body %s does not contain %q", rec.Body.String(), tc.want)
			}
		})
	}
}

func TestEncodeIDSpaceExhausted(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(codec.Config{IDSpace: 1})
	rec := doJSON(t, e, http.MethodPost, "/v1/encode", `{"tokens":[0,0,0,0]}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"code":"id_space_exhausted"`) {
		t.Fatalf("missing error code: %s", rec.Body.String())
	}
}

func TestStatsSweep(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(codec.Config{})
	rec := doJSON(t, e, http.MethodPost, "/v1/stats", `{"tokens":[1,2,1,2,1,2,1,2],"depths":[1,2,0]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp StatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Data) != 4 {
		t.Fatalf("rows: got %d want 4", len(resp.Data))
	}
	wantLabels := []string{"original", "depth 1", "depth 2", "converged"}
	wantLengths := []int{8, 4, 2, 2}
	for i, row := range resp.Data {
		if row.Label != wantLabels[i] || row.EncodedLength != wantLengths[i] {
			t.Fatalf("row %d: got %+v", i, row)
		}
	}
	if resp.Data[0].CompressionRatio != 1 || resp.Data[2].CompressionRatio != 4 {
		t.Fatalf("unexpected ratios: %+v", resp.Data)
	}
}

func TestStatsDefaultDepths(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(codec.Config{})
	rec := doJSON(t, e, http.MethodPost, "/v1/stats", `{"text":"hello"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	var resp StatsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Data) != len(codec.DefaultSweepDepths)+1 {
		t.Fatalf("rows: got %d", len(resp.Data))
	}
}

func TestVersion(t *testing.T) {
	t.Parallel()

	e, _ := newTestEcho(codec.Config{})
	rec := doJSON(t, e, http.MethodGet, "/v1/version", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"object":"version"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestTableStoreCopiesTable(t *testing.T) {
	t.Parallel()

	s := NewTableStore()
	table := bpe.Table{0: {Left: 1, Right: 1}}
	id := s.Put(table, time.Unix(10, 0))
	table[3] = bpe.Pair{Left: 4, Right: 4}

	rec, ok := s.Get(id)
	if !ok {
		t.Fatalf("stored table missing")
	}
	if rec.Table.Len() != 1 || rec.CreatedAt.Unix() != 10 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if !s.Delete(id) || s.Delete(id) {
		t.Fatalf("delete should succeed once")
	}
}
