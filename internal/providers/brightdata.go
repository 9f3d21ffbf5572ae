// internal/providers/brightdata.go
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// BrightDataClient drives the dataset trigger/poll/snapshot flow used by the
// interactive-session platform adapters.
type BrightDataClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	log        *logrus.Logger
}

// brightDataTriggerResponse is returned when submitting a job.
type brightDataTriggerResponse struct {
	SnapshotID string `json:"snapshot_id"`
}

// brightDataProgressResponse carries the status of a running job.
type brightDataProgressResponse struct {
	Status     string `json:"status"`
	SnapshotID string `json:"snapshot_id"`
	DatasetID  string `json:"dataset_id"`
	Records    *int   `json:"records,omitempty"`
	Errors     *int   `json:"errors,omitempty"`
}

// brightDataStatusBody distinguishes a still-building snapshot from results.
type brightDataStatusBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// NewBrightDataClient creates a BrightData API client.
func NewBrightDataClient(apiKey, baseURL string, log *logrus.Logger) *BrightDataClient {
	return &BrightDataClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 20 * time.Minute,
		},
		log: log,
	}
}

// Trigger submits a job and returns its snapshot ID.
func (c *BrightDataClient) Trigger(ctx context.Context, payload interface{}, datasetID string) (string, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/trigger?dataset_id=%s&include_errors=true", c.baseURL, datasetID)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("BrightData API returned status %d", resp.StatusCode)
	}

	var triggerResp brightDataTriggerResponse
	if err := json.NewDecoder(resp.Body).Decode(&triggerResp); err != nil {
		return "", fmt.Errorf("failed to decode trigger response: %w", err)
	}
	if triggerResp.SnapshotID == "" {
		return "", fmt.Errorf("trigger response missing snapshot_id")
	}

	return triggerResp.SnapshotID, nil
}

// CheckProgress fetches the status of a job.
func (c *BrightDataClient) CheckProgress(ctx context.Context, snapshotID string) (*brightDataProgressResponse, error) {
	url := fmt.Sprintf("%s/progress/%s", c.baseURL, snapshotID)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create progress request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to check progress: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("progress check returned status %d", resp.StatusCode)
	}

	var progressResp brightDataProgressResponse
	if err := json.NewDecoder(resp.Body).Decode(&progressResp); err != nil {
		return nil, fmt.Errorf("failed to decode progress response: %w", err)
	}

	return &progressResp, nil
}

// PollUntilComplete polls at pollInterval until the job reports ready, the
// job fails, or ctx is done.
func (c *BrightDataClient) PollUntilComplete(ctx context.Context, snapshotID, providerName string, pollInterval time.Duration) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	pollCount := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			pollCount++
			status, err := c.CheckProgress(ctx, snapshotID)
			if err != nil {
				c.log.Warnf("[%s] progress check failed (poll #%d), retrying: %v", providerName, pollCount, err)
				continue
			}

			c.log.Debugf("[%s] snapshot %s status: %s (poll #%d)", providerName, snapshotID, status.Status, pollCount)

			if status.Status == "ready" {
				return nil
			}
			if status.Status == "failed" {
				return fmt.Errorf("batch job failed for snapshot %s", snapshotID)
			}
		}
	}
}

// FetchResults downloads the snapshot body once the job is ready. A snapshot
// can report ready and still serve a "building" status body for a short
// while, so this retries on that status.
func (c *BrightDataClient) FetchResults(ctx context.Context, snapshotID, providerName string, retryInterval time.Duration) ([]byte, error) {
	const maxRetries = 20

	for attempt := 1; attempt <= maxRetries; attempt++ {
		url := fmt.Sprintf("%s/snapshot/%s?format=json", c.baseURL, snapshotID)
		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create results request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to get results: %w", err)
		}

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
			resp.Body.Close()
			return nil, fmt.Errorf("results request returned status %d", resp.StatusCode)
		}

		bodyBytes, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}

		var statusBody brightDataStatusBody
		if json.Unmarshal(bodyBytes, &statusBody) == nil && statusBody.Status != "" {
			switch statusBody.Status {
			case "building", "running":
				c.log.Debugf("[%s] snapshot still building (attempt %d/%d): %s", providerName, attempt, maxRetries, statusBody.Message)
				select {
				case <-time.After(retryInterval):
					continue
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			case "failed":
				return nil, fmt.Errorf("snapshot failed: %s", statusBody.Message)
			}
		}

		return bodyBytes, nil
	}

	return nil, fmt.Errorf("snapshot still building after %d attempts", maxRetries)
}
