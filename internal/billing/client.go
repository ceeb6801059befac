// Package billing assembles a revenue matrix from a remote billing
// provider's subscription export, the API-fed equivalent of the CSV import.
package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/minsuk/revpulse/internal/engine"
	"github.com/minsuk/revpulse/pkg/config"
	"github.com/minsuk/revpulse/pkg/httputil"
	"github.com/minsuk/revpulse/pkg/logger"
)

// subscription is one customer in the export feed
type subscription struct {
	Customer  string   `json:"customer"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Charges   []charge `json:"charges"`
}

// charge is one billed month for a subscription
type charge struct {
	Month  string  `json:"month"` // YYYY-MM
	Amount float64 `json:"amount"`
}

// exportPage is one page of the subscription export
type exportPage struct {
	Data    []subscription `json:"data"`
	HasMore bool           `json:"has_more"`
}

// Client pulls the paginated subscription export from the billing provider.
type Client struct {
	http     *httputil.Client
	baseURL  string
	apiKey   string
	pageSize int
	logger   *logger.Logger
}

// NewClient creates a billing export client. Requests against the feed are
// rate limited per the config.
func NewClient(cfg config.BillingConfig, httpClient *httputil.Client, log *logger.Logger) *Client {
	httpClient.WithRateLimit(cfg.RateLimit, 1)

	return &Client{
		http:     httpClient,
		baseURL:  cfg.BaseURL,
		apiKey:   cfg.APIKey,
		pageSize: cfg.PageSize,
		logger:   log,
	}
}

// FetchRecords pulls every subscription page and converts the feed into
// customer records on a contiguous month axis. Months a customer was not
// billed are filled with zero so every record covers the same axis.
func (c *Client) FetchRecords(ctx context.Context) ([]engine.CustomerRecord, error) {
	var subs []subscription

	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/v1/subscriptions?page=%d&per_page=%d", c.baseURL, page, c.pageSize)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create export request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("billing export request failed: %w", err)
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("billing export returned status %d", resp.StatusCode)
		}

		var body exportPage
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("failed to decode export page %d: %w", page, err)
		}
		resp.Body.Close()

		subs = append(subs, body.Data...)

		if !body.HasMore {
			break
		}
	}

	c.logger.WithField("subscriptions", len(subs)).Info("Billing export fetched")

	return buildRecords(subs)
}

// FetchMatrix fetches the export and validates it into a matrix
func (c *Client) FetchMatrix(ctx context.Context) (*engine.Matrix, error) {
	records, err := c.FetchRecords(ctx)
	if err != nil {
		return nil, err
	}

	matrix, err := engine.NewMatrix(records)
	if err != nil {
		return nil, fmt.Errorf("billing export produced an invalid matrix: %w", err)
	}
	return matrix, nil
}

// buildRecords converts subscriptions into customer records sharing one
// contiguous month axis spanning the earliest to the latest billed month.
func buildRecords(subs []subscription) ([]engine.CustomerRecord, error) {
	months := make(map[string]bool)
	for _, sub := range subs {
		for _, ch := range sub.Charges {
			months[ch.Month] = true
		}
	}
	if len(months) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(months))
	for key := range months {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	axis, err := engine.MonthRange(keys[0], keys[len(keys)-1])
	if err != nil {
		return nil, fmt.Errorf("billing export months invalid: %w", err)
	}

	records := make([]engine.CustomerRecord, 0, len(subs))
	for _, sub := range subs {
		record := engine.CustomerRecord{
			Name:      sub.Customer,
			StartDate: sub.StartDate,
			EndDate:   sub.EndDate,
			Revenue:   make(map[string]any, len(axis)),
		}
		for _, key := range axis {
			record.Revenue[key] = 0.0
		}
		for _, ch := range sub.Charges {
			record.Revenue[ch.Month] = ch.Amount
		}
		records = append(records, record)
	}

	return records, nil
}
