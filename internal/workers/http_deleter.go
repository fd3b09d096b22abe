package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yoockh/outreach/internal/models"
)

// HTTPBatchDeleter calls DELETE /api/admin/clear-entries on a running server
// with an admin bearer token.
type HTTPBatchDeleter struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewHTTPBatchDeleter(baseURL, token string) *HTTPBatchDeleter {
	return &HTTPBatchDeleter{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: 60 * time.Second},
	}
}

type batchResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details"`
	models.BatchDeleteResult
}

func (d *HTTPBatchDeleter) DeleteBatch(ctx context.Context, batchSize int) (*models.BatchDeleteResult, error) {
	body, err := json.Marshal(map[string]int{"batchSize": batchSize})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, d.BaseURL+"/api/admin/clear-entries", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.Token)

	client := d.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var out batchResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("clear-entries returned status %d with unreadable body: %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !out.Success {
		msg := out.Error
		if out.Details != "" {
			msg += ": " + out.Details
		}
		return nil, fmt.Errorf("clear-entries returned status %d: %s", resp.StatusCode, msg)
	}
	return &out.BatchDeleteResult, nil
}
