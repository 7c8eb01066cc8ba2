package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"quizsolver/pkg/utils"
)

// SubmissionPayload is the body POSTed to a quiz's submit endpoint.
type SubmissionPayload struct {
	Email  string      `json:"email"`
	Secret string      `json:"secret"`
	URL    string      `json:"url"`
	Answer interface{} `json:"answer"`
}

// SubmitResult is the grader's verdict. URL carries the next quiz in the
// chain, empty when the chain ends here.
type SubmitResult struct {
	Correct bool   `json:"correct"`
	URL     string `json:"url"`
	Reason  string `json:"reason"`
}

type SubmitClientInterface interface {
	Submit(ctx context.Context, submitURL string, payload SubmissionPayload) (SubmitResult, error)
}

type submitClient struct {
	httpClient *http.Client
}

func NewSubmitClient(timeout time.Duration) SubmitClientInterface {
	return &submitClient{
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (s *submitClient) Submit(ctx context.Context, submitURL string, payload SubmissionPayload) (SubmitResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("marshal submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, submitURL, bytes.NewReader(body))
	if err != nil {
		return SubmitResult{}, fmt.Errorf("build submission request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("%w: %w", utils.ErrSubmitFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return SubmitResult{}, fmt.Errorf("%w: read response: %w", utils.ErrSubmitFailed, err)
	}

	if resp.StatusCode >= 300 {
		return SubmitResult{}, fmt.Errorf("%w: unexpected status %d", utils.ErrSubmitFailed, resp.StatusCode)
	}

	var result SubmitResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return SubmitResult{}, fmt.Errorf("%w: decode response: %w", utils.ErrSubmitFailed, err)
	}
	return result, nil
}
