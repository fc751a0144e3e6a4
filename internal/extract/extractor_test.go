package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/ai-ready-data/pkg/logger"
)

func TestNewDisabledWithoutEndpoint(t *testing.T) {
	e := New(Config{}, logger.NewTestLogger())
	assert.Nil(t, e)
	assert.False(t, e.Enabled())

	_, err := e.Extract(context.Background(), "text", "a.txt")
	assert.Error(t, err)
}

func TestExtract(t *testing.T) {
	var gotReq map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(map[string]any{
			"model":    "llama3.2",
			"done":     true,
			"response": `Here is the data: {"document_type": "invoice", "total": 42} hope that helps`,
		})
	}))
	defer srv.Close()

	e := New(Config{Endpoint: srv.URL, Model: "llama3.2", MaxTokens: 512}, logger.NewTestLogger())
	require.True(t, e.Enabled())

	out, err := e.Extract(context.Background(), "invoice body", "invoice.pdf")
	require.NoError(t, err)
	assert.Equal(t, "invoice", out["document_type"])
	assert.Equal(t, float64(42), out["total"])

	assert.Equal(t, "llama3.2", gotReq["model"])
	assert.Equal(t, false, gotReq["stream"])
	assert.Contains(t, gotReq["prompt"], "invoice.pdf")
	assert.Contains(t, gotReq["prompt"], "invoice body")
}

func TestExtractModelError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"error": "model not loaded"})
	}))
	defer srv.Close()

	e := New(Config{Endpoint: srv.URL, Model: "llama3.2"}, logger.NewTestLogger())
	_, err := e.Extract(context.Background(), "text", "a.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestExtractBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := New(Config{Endpoint: srv.URL, Model: "llama3.2"}, logger.NewTestLogger())
	_, err := e.Extract(context.Background(), "text", "a.txt")
	assert.Error(t, err)
}

func TestTruncateRuneSafe(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  string
	}{
		{name: "under limit untouched", text: "short", limit: 10, want: "short"},
		{name: "ascii cut at limit", text: "abcdef", limit: 4, want: "abcd"},
		// "日" is 3 bytes; a 4-byte limit lands mid-rune and must back off.
		{name: "multibyte backs off to boundary", text: "日本語", limit: 4, want: "日"},
		{name: "multibyte cut on boundary", text: "日本語", limit: 6, want: "日本"},
		{name: "limit inside first rune", text: "日本語", limit: 2, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateRuneSafe(tt.text, tt.limit)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestParseJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		want    map[string]any
		wantErr bool
	}{
		{
			name:  "bare object",
			reply: `{"a": 1}`,
			want:  map[string]any{"a": float64(1)},
		},
		{
			name:  "object inside prose",
			reply: "Sure! Here you go:\n```json\n{\"topic\": \"sales\"}\n```",
			want:  map[string]any{"topic": "sales"},
		},
		{
			name:  "nested braces",
			reply: `{"outer": {"inner": true}}`,
			want:  map[string]any{"outer": map[string]any{"inner": true}},
		},
		{name: "no object", reply: "I could not extract anything.", wantErr: true},
		{name: "malformed object", reply: `{"a": }`, wantErr: true},
		{name: "empty reply", reply: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseJSONObject(tt.reply)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
