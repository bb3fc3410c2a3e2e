// Package accession resolves dbGaP study ids to registry accessions through
// the study registry's HTTP API.
package accession

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// APIError represents an error response from the registry.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("accession registry error %d: %s", e.StatusCode, e.Body)
}

// Client resolves study accessions against the registry API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Resolve fetches the accession for one study id. A study the registry does
// not know reports an empty accession with a nil error; that absent-data
// policy is the registry's own contract, passed through unchanged.
func (c *Client) Resolve(ctx context.Context, studyID string) (string, error) {
	endpoint := c.baseURL + "/studies/" + url.PathEscape(studyID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call accession registry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.logger.Debug("Study has no registered accession", zap.String("study_id", studyID))
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var out struct {
		StudyAccession string `json:"studyAccession"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode accession response: %w", err)
	}

	return out.StudyAccession, nil
}
