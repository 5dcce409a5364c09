package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

func TestNegotiate(t *testing.T) {
	cases := map[string]string{
		"":                     "",
		"gzip, deflate, br":    "gzip",
		"gzip, zstd":           "zstd",
		"zstd;q=0, gzip;q=0.5": "gzip",
		"identity":             "",
		"GZIP":                 "gzip",
		"gzip;q=0.0":           "",
	}
	for in, want := range cases {
		if got := negotiate(in); got != want {
			t.Fatalf("negotiate(%q) = %q, want %q", in, got, want)
		}
	}
}

var hello = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = io.WriteString(w, strings.Repeat("12-50 ", 100))
})

func TestCompressionGzip(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	Compression(hello).ServeHTTP(rec, req)

	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("unexpected encoding %q", rec.Header().Get("Content-Encoding"))
	}
	zr, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := io.ReadAll(zr)
	if string(raw) != strings.Repeat("12-50 ", 100) {
		t.Fatalf("unexpected body %q", raw)
	}
}

func TestCompressionZstd(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "zstd")
	Compression(hello).ServeHTTP(rec, req)

	dec, err := zstd.NewReader(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	defer dec.Close()
	raw, _ := io.ReadAll(dec)
	if len(raw) != 600 {
		t.Fatalf("unexpected length %d", len(raw))
	}
}

func TestCompressionNoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	Compression(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 || rec.Header().Get("Content-Encoding") != "" {
		t.Fatalf("unexpected response %d %q %v", rec.Code, rec.Body.Bytes(), rec.Header())
	}
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	h := RequestID(AccessLog(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, "busy")
	})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/v1/submit", nil))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatal(err)
	}
	if rec["msg"] != "http.access" || rec["level"] != "WARN" || rec["status"] != 409.0 || rec["bytes"] != 4.0 {
		t.Fatalf("unexpected record %v", rec)
	}
	if id, _ := rec["request_id"].(string); id == "" {
		t.Fatal("missing request id")
	}
}
