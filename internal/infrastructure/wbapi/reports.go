package wbapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/LavaJover/shvark-rotation-service/internal/domain"
)

const (
	reportPollInterval = 2 * time.Second
	reportPollCeiling  = 60 * time.Second
)

type createReportResponse struct {
	ID string `json:"id"`
}

type reportStatusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// CreateReport asks the analytics API to build a report asynchronously
func (c *Client) CreateReport(ctx context.Context, accountID string, body interface{}) (string, error) {
	token, err := c.token(accountID)
	if err != nil {
		return "", err
	}

	requestBodyBytes, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	responseBodyBytes, err := c.doWithRetry(ctx, accountID, func() (*http.Request, error) {
		request, err := http.NewRequest("POST", fmt.Sprintf("%s/api/analytics/v1/reports", c.analyticsBaseURL), bytes.NewBuffer(requestBodyBytes))
		if err != nil {
			return nil, err
		}
		request.Header.Set("Content-Type", "application/json")
		request.Header.Set("Authorization", token)
		return request, nil
	})
	if err != nil {
		return "", err
	}

	var created createReportResponse
	if err := json.Unmarshal(responseBodyBytes, &created); err != nil {
		return "", fmt.Errorf("%w: decoding report id: %v", domain.ErrExternalService, err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("%w: empty report id", domain.ErrExternalService)
	}

	return created.ID, nil
}

func (c *Client) GetReportStatus(ctx context.Context, accountID, reportID string) (string, error) {
	token, err := c.token(accountID)
	if err != nil {
		return "", err
	}

	responseBodyBytes, err := c.doWithRetry(ctx, accountID, func() (*http.Request, error) {
		request, err := http.NewRequest("GET", fmt.Sprintf("%s/api/analytics/v1/reports/%s", c.analyticsBaseURL, url.PathEscape(reportID)), nil)
		if err != nil {
			return nil, err
		}
		request.Header.Set("Authorization", token)
		return request, nil
	})
	if err != nil {
		return "", err
	}

	var status reportStatusResponse
	if err := json.Unmarshal(responseBodyBytes, &status); err != nil {
		return "", fmt.Errorf("%w: decoding report status: %v", domain.ErrExternalService, err)
	}

	return status.Status, nil
}

func (c *Client) DownloadReport(ctx context.Context, accountID, reportID string) ([]byte, error) {
	token, err := c.token(accountID)
	if err != nil {
		return nil, err
	}

	return c.doWithRetry(ctx, accountID, func() (*http.Request, error) {
		request, err := http.NewRequest("GET", fmt.Sprintf("%s/api/analytics/v1/reports/%s/download", c.analyticsBaseURL, url.PathEscape(reportID)), nil)
		if err != nil {
			return nil, err
		}
		request.Header.Set("Authorization", token)
		return request, nil
	})
}

// WaitForReport polls the report status every 2 seconds and gives up after
// a fixed wall-clock ceiling instead of blocking indefinitely
func (c *Client) WaitForReport(ctx context.Context, accountID, reportID string) ([]byte, error) {
	return c.waitForReport(ctx, accountID, reportID, reportPollInterval, reportPollCeiling)
}

func (c *Client) waitForReport(ctx context.Context, accountID, reportID string, interval, ceiling time.Duration) ([]byte, error) {
	deadline := time.Now().Add(ceiling)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status, err := c.GetReportStatus(ctx, accountID, reportID)
		if err != nil {
			return nil, err
		}

		switch status {
		case "DONE", "SUCCESS":
			return c.DownloadReport(ctx, accountID, reportID)
		case "ERROR", "FAILED":
			return nil, fmt.Errorf("%w: report %s failed", domain.ErrExternalService, reportID)
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: report %s", domain.ErrReportTimedOut, reportID)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
