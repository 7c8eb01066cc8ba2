package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestResourceServiceFetchAll(t *testing.T) {
	pngBytes := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 1, 2, 3}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data.csv":
			w.Header().Set("Content-Type", "text/csv")
			fmt.Fprint(w, "name,score\nalice,10\nbob,12\n")
		case "/logo.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write(pngBytes)
		case "/notes.txt":
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			fmt.Fprint(w, "  remember the hint  ")
		case "/broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	svc := NewResourceService(time.Second, zap.NewNop().Sugar())
	got := svc.FetchAll(context.Background(), []string{
		srv.URL + "/data.csv",
		srv.URL + "/logo.png",
		srv.URL + "/broken",
		srv.URL + "/notes.txt",
	})

	require.Len(t, got, 3)

	assert.Equal(t, "csv", got[0].Kind)
	assert.Contains(t, got[0].Content, "name, score")
	assert.Contains(t, got[0].Content, "alice, 10")

	assert.Equal(t, "binary", got[1].Kind)
	assert.True(t, strings.HasPrefix(got[1].Content, "data:image/png;base64,"))

	assert.Equal(t, "text", got[2].Kind)
	assert.Equal(t, "remember the hint", got[2].Content)
}

func TestPreviewCSVStopsAtRowCap(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("id,value\n")
	for i := 0; i < maxCSVRows*2; i++ {
		fmt.Fprintf(&sb, "%d,%d\n", i, i*i)
	}

	preview := previewCSV([]byte(sb.String()))
	lines := strings.Split(preview, "\n")
	assert.Len(t, lines, maxCSVRows)
	assert.Equal(t, "id, value", lines[0])
}

func TestClipCutsOnRuneBoundaries(t *testing.T) {
	assert.Equal(t, "héllo", clip("  héllo  ", 10))
	// the cap lands on the second byte of the two-byte é
	assert.Equal(t, "a", clip("aé", 2))

	got := clip(strings.Repeat("界", 40), 100)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 99, len(got))
}
