package wbapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/LavaJover/shvark-rotation-service/internal/config"
	"github.com/LavaJover/shvark-rotation-service/internal/domain"
)

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	tokens := NewStaticTokenProvider([]config.AccountToken{
		{AccountID: "acc-1", Token: "test-token"},
	})
	return NewClient(config.WBApi{
		AdvertBaseURL:    serverURL,
		AnalyticsBaseURL: serverURL,
		ContentBaseURL:   serverURL,
		RequestTimeout:   5 * time.Second,
		MaxAttempts:      3,
		BackoffBase:      time.Millisecond,
	}, tokens)
}

func TestDoWithRetry_RecoversAfter429(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts <= 2 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"total": 1200}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	budget, err := client.GetRemainingBudget(context.Background(), "acc-1", 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if budget != 1200 {
		t.Errorf("budget = %v, want 1200", budget)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

// Without a Retry-After header the delay doubles per attempt, so two
// retries on a 10ms base must take at least 10+20ms in total
func TestDoWithRetry_ExponentialBackoffWithoutRetryAfter(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"total": 1}`))
	}))
	defer server.Close()

	tokens := NewStaticTokenProvider([]config.AccountToken{{AccountID: "acc-1", Token: "test-token"}})
	base := 10 * time.Millisecond
	client := NewClient(config.WBApi{
		AdvertBaseURL:  server.URL,
		RequestTimeout: 5 * time.Second,
		MaxAttempts:    3,
		BackoffBase:    base,
	}, tokens)

	start := time.Now()
	if _, err := client.GetRemainingBudget(context.Background(), "acc-1", 42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	elapsed := time.Since(start)

	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if minimum := base + 2*base; elapsed < minimum {
		t.Errorf("elapsed = %v, want at least %v of backoff", elapsed, minimum)
	}
}

type countingRetryObserver struct {
	accounts []string
}

func (o *countingRetryObserver) RecordRateLimitRetry(accountID string) {
	o.accounts = append(o.accounts, accountID)
}

func TestDoWithRetry_ReportsEveryRateLimitedAttempt(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts <= 2 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"total": 1}`))
	}))
	defer server.Close()

	observer := &countingRetryObserver{}
	client := newTestClient(t, server.URL)
	client.SetRetryObserver(observer)

	if _, err := client.GetRemainingBudget(context.Background(), "acc-1", 42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(observer.accounts) != 2 {
		t.Fatalf("observed retries = %d, want 2", len(observer.accounts))
	}
	for _, account := range observer.accounts {
		if account != "acc-1" {
			t.Errorf("observed account = %s, want acc-1", account)
		}
	}
}

func TestDoWithRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.GetRemainingBudget(context.Background(), "acc-1", 42)
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestDoWithRetry_NoRetryOnOtherErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.GetRemainingBudget(context.Background(), "acc-1", 42)
	if !errors.Is(err, domain.ErrExternalService) {
		t.Fatalf("err = %v, want ErrExternalService", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1: non-429 statuses must not be retried", attempts)
	}
}

func TestGetDailyStats_NormalizesFieldAliases(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"adverts": [{
				"advertId": 42,
				"daily": [
					{"date": "2026-08-27", "shows": 1000, "clicks": 50, "orders": 5, "cost": 250.5},
					{"date": "2026-08-28", "views": 800, "clicks": 30, "purchases": 2, "expenses": 190}
				]
			}]
		}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	rows, err := client.GetDailyStats(context.Background(), "acc-1", 42, time.Now().AddDate(0, 0, -2), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[0].Impressions != 1000 || rows[0].Conversions != 5 || rows[0].Spend != 250.5 {
		t.Errorf("row 0 not normalized: %+v", rows[0])
	}
	if rows[1].Impressions != 800 || rows[1].Conversions != 2 || rows[1].Spend != 190 {
		t.Errorf("row 1 not normalized: %+v", rows[1])
	}
}

func TestGetDailyStats_DataWrappedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": {"adverts": [{"advertId": 42, "daily": [{"day": "2026-08-28", "impressions": 500}]}]}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	rows, err := client.GetDailyStats(context.Background(), "acc-1", 42, time.Now().AddDate(0, 0, -1), time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].Impressions != 500 {
		t.Errorf("rows = %+v, want one row with 500 impressions", rows)
	}
}

func TestGetDailyStats_MissingToken(t *testing.T) {
	client := newTestClient(t, "http://unused")
	_, err := client.GetDailyStats(context.Background(), "unknown-account", 42, time.Now(), time.Now())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestWaitForReport_TimesOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "r-1", "status": "PROCESSING"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.waitForReport(context.Background(), "acc-1", "r-1", time.Millisecond, 20*time.Millisecond)
	if !errors.Is(err, domain.ErrReportTimedOut) {
		t.Fatalf("err = %v, want ErrReportTimedOut", err)
	}
}

func TestWaitForReport_DownloadsWhenDone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/analytics/v1/reports/r-1/download" {
			w.Write([]byte("report-body"))
			return
		}
		w.Write([]byte(`{"id": "r-1", "status": "DONE"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	body, err := client.waitForReport(context.Background(), "acc-1", "r-1", time.Millisecond, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "report-body" {
		t.Errorf("body = %q, want report-body", body)
	}
}
