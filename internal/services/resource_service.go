package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

const (
	maxResourceBytes = 5 << 20
	maxResourceChars = 3000
	maxCSVRows       = 20
)

// Resource is one fetched supporting file, reduced to prompt-sized text.
// Binary files come back as a data URI instead.
type Resource struct {
	URL     string
	Kind    string
	Content string
}

type ResourceServiceInterface interface {
	FetchAll(ctx context.Context, urls []string) []Resource
}

type ResourceService struct {
	httpClient *http.Client
	logger     *zap.SugaredLogger
}

func NewResourceService(timeout time.Duration, logger *zap.SugaredLogger) ResourceServiceInterface {
	return &ResourceService{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// FetchAll downloads the given resource links. A broken resource is logged
// and skipped, never fatal for the task.
func (r *ResourceService) FetchAll(ctx context.Context, urls []string) []Resource {
	var out []Resource
	for _, u := range urls {
		res, err := r.fetch(ctx, u)
		if err != nil {
			r.logger.Warnw("Skipping resource", "url", u, "error", err)
			continue
		}
		out = append(out, res)
	}
	return out
}

func (r *ResourceService) fetch(ctx context.Context, rawURL string) (Resource, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Resource{}, err
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return Resource{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return Resource{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResourceBytes))
	if err != nil {
		return Resource{}, err
	}

	contentType := resp.Header.Get("Content-Type")
	switch {
	case isPDF(rawURL, contentType, data):
		text, err := extractPDFText(data)
		if err != nil {
			return Resource{}, fmt.Errorf("extract pdf text: %w", err)
		}
		return Resource{URL: rawURL, Kind: "pdf", Content: clip(text, maxResourceChars)}, nil
	case isCSV(rawURL, contentType):
		return Resource{URL: rawURL, Kind: "csv", Content: previewCSV(data)}, nil
	case isTextual(contentType, data):
		return Resource{URL: rawURL, Kind: "text", Content: clip(string(data), maxResourceChars)}, nil
	default:
		uri := "data:" + mimeOnly(contentType, data) + ";base64," + base64.StdEncoding.EncodeToString(data)
		return Resource{URL: rawURL, Kind: "binary", Content: uri}, nil
	}
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// previewCSV keeps the header plus the first rows, enough for a model to
// reason over without blowing the prompt up.
func previewCSV(data []byte) string {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	var sb strings.Builder
	for row := 0; row < maxCSVRows; row++ {
		record, err := reader.Read()
		if err != nil {
			break
		}
		sb.WriteString(strings.Join(record, ", "))
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}

func isPDF(rawURL, contentType string, data []byte) bool {
	return strings.Contains(contentType, "application/pdf") ||
		bytes.HasPrefix(data, []byte("%PDF")) ||
		strings.HasSuffix(strings.ToLower(rawURL), ".pdf")
}

func isCSV(rawURL, contentType string) bool {
	return strings.Contains(contentType, "text/csv") ||
		strings.HasSuffix(strings.ToLower(rawURL), ".csv")
}

func isTextual(contentType string, data []byte) bool {
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return strings.HasPrefix(contentType, "text/") ||
		strings.Contains(contentType, "json") ||
		strings.Contains(contentType, "xml")
}

func mimeOnly(contentType string, data []byte) string {
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	if i := strings.Index(contentType, ";"); i != -1 {
		contentType = contentType[:i]
	}
	return strings.TrimSpace(contentType)
}

// clip caps s at max bytes without cutting through a multi-byte rune.
func clip(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
