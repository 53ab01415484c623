package wbapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/LavaJover/shvark-rotation-service/internal/domain"
)

// The stats payload shape varies between API revisions: some return
// {"adverts": [...]}, some wrap it in "data", and the daily rows use
// several field name aliases. Everything is normalized defensively,
// missing values count as 0
type fullStatsResponse struct {
	Data *struct {
		Adverts []advertStats `json:"adverts"`
	} `json:"data"`
	Adverts []advertStats `json:"adverts"`
}

type advertStats struct {
	AdvertID int64            `json:"advertId"`
	Daily    []advertDailyRow `json:"daily"`
}

type advertDailyRow struct {
	Date        string   `json:"date"`
	Day         string   `json:"day"`
	Impressions *float64 `json:"impressions"`
	Shows       *float64 `json:"shows"`
	Views       *float64 `json:"views"`
	Clicks      *float64 `json:"clicks"`
	Orders      *float64 `json:"orders"`
	Conversions *float64 `json:"conversions"`
	Purchases   *float64 `json:"purchases"`
	Spend       *float64 `json:"spend"`
	Cost        *float64 `json:"cost"`
	Expenses    *float64 `json:"expenses"`
}

type fullStatsRequest struct {
	IDs       []int64 `json:"ids"`
	BeginDate string  `json:"beginDate"`
	EndDate   string  `json:"endDate"`
}

func firstNumber(values ...*float64) float64 {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return 0
}

func (c *Client) GetDailyStats(ctx context.Context, accountID string, campaignID int64, dateFrom, dateTo time.Time) ([]domain.DailyStat, error) {
	token, err := c.token(accountID)
	if err != nil {
		return nil, err
	}

	requestBodyBytes, err := json.Marshal(fullStatsRequest{
		IDs:       []int64{campaignID},
		BeginDate: dateFrom.Format("2006-01-02"),
		EndDate:   dateTo.Format("2006-01-02"),
	})
	if err != nil {
		return nil, err
	}

	responseBodyBytes, err := c.doWithRetry(ctx, accountID, func() (*http.Request, error) {
		request, err := http.NewRequest("POST", fmt.Sprintf("%s/adv/v2/fullstats", c.advertBaseURL), bytes.NewBuffer(requestBodyBytes))
		if err != nil {
			return nil, err
		}
		request.Header.Set("Content-Type", "application/json")
		request.Header.Set("Authorization", token)
		return request, nil
	})
	if err != nil {
		return nil, err
	}

	var statsResponse fullStatsResponse
	if err := json.Unmarshal(responseBodyBytes, &statsResponse); err != nil {
		return nil, fmt.Errorf("%w: decoding fullstats: %v", domain.ErrExternalService, err)
	}

	adverts := statsResponse.Adverts
	if statsResponse.Data != nil {
		adverts = statsResponse.Data.Adverts
	}
	if len(adverts) == 0 {
		return []domain.DailyStat{}, nil
	}

	daily := make([]domain.DailyStat, 0, len(adverts[0].Daily))
	for _, row := range adverts[0].Daily {
		rawDate := row.Date
		if rawDate == "" {
			rawDate = row.Day
		}
		date, err := time.Parse("2006-01-02", rawDate)
		if err != nil {
			// some revisions return full RFC3339 timestamps
			date, err = time.Parse(time.RFC3339, rawDate)
			if err != nil {
				continue
			}
		}

		daily = append(daily, domain.DailyStat{
			Date:        date,
			Impressions: int64(firstNumber(row.Impressions, row.Shows, row.Views)),
			Clicks:      int64(firstNumber(row.Clicks)),
			Conversions: int64(firstNumber(row.Orders, row.Conversions, row.Purchases)),
			Spend:       firstNumber(row.Spend, row.Cost, row.Expenses),
		})
	}

	return daily, nil
}

type budgetResponse struct {
	Total  *float64 `json:"total"`
	Budget *float64 `json:"budget"`
}

func (c *Client) GetRemainingBudget(ctx context.Context, accountID string, campaignID int64) (float64, error) {
	token, err := c.token(accountID)
	if err != nil {
		return 0, err
	}

	responseBodyBytes, err := c.doWithRetry(ctx, accountID, func() (*http.Request, error) {
		request, err := http.NewRequest("GET", fmt.Sprintf("%s/adv/v1/budget?id=%d", c.advertBaseURL, campaignID), nil)
		if err != nil {
			return nil, err
		}
		request.Header.Set("Authorization", token)
		return request, nil
	})
	if err != nil {
		return 0, err
	}

	var budget budgetResponse
	if err := json.Unmarshal(responseBodyBytes, &budget); err != nil {
		return 0, fmt.Errorf("%w: decoding budget: %v", domain.ErrExternalService, err)
	}

	return firstNumber(budget.Total, budget.Budget), nil
}

type depositRequest struct {
	Sum    float64 `json:"sum"`
	Type   int     `json:"type"`
	Return bool    `json:"return"`
}

func (c *Client) Deposit(ctx context.Context, accountID string, campaignID int64, amount float64) error {
	token, err := c.token(accountID)
	if err != nil {
		return err
	}

	requestBodyBytes, err := json.Marshal(depositRequest{Sum: amount, Type: 1, Return: true})
	if err != nil {
		return err
	}

	_, err = c.doWithRetry(ctx, accountID, func() (*http.Request, error) {
		request, err := http.NewRequest("POST", fmt.Sprintf("%s/adv/v1/budget/deposit?id=%d", c.advertBaseURL, campaignID), bytes.NewBuffer(requestBodyBytes))
		if err != nil {
			return nil, err
		}
		request.Header.Set("Content-Type", "application/json")
		request.Header.Set("Authorization", token)
		return request, nil
	})
	return err
}
