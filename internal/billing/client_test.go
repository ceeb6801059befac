package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minsuk/revpulse/pkg/config"
	"github.com/minsuk/revpulse/pkg/httputil"
	"github.com/minsuk/revpulse/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "test", LogLevel: "error", LogFormat: "json"})
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	log := testLogger()
	cfg := config.BillingConfig{
		BaseURL:   server.URL,
		APIKey:    "test-key",
		PageSize:  2,
		RateLimit: 1000,
	}

	httpClient := httputil.New(log).DisableRetry()
	return NewClient(cfg, httpClient, log), server
}

func TestFetchRecordsPaginates(t *testing.T) {
	var gotAuth string

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		page := r.URL.Query().Get("page")
		switch page {
		case "1":
			json.NewEncoder(w).Encode(exportPage{
				Data: []subscription{
					{
						Customer:  "Acme",
						StartDate: "2023-12-20",
						Charges: []charge{
							{Month: "2024-01", Amount: 1000},
							{Month: "2024-02", Amount: 1000},
							{Month: "2024-03", Amount: 1100},
						},
					},
				},
				HasMore: true,
			})
		case "2":
			json.NewEncoder(w).Encode(exportPage{
				Data: []subscription{
					{
						Customer: "Globex",
						Charges:  []charge{{Month: "2024-03", Amount: 500}},
					},
				},
				HasMore: false,
			})
		default:
			t.Errorf("unexpected page %q", page)
		}
	})

	records, err := client.FetchRecords(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-key", gotAuth)

	require.Len(t, records, 2)
	assert.Equal(t, "Acme", records[0].Name)
	assert.Equal(t, "2023-12-20", records[0].StartDate)

	// Globex was only billed in March; earlier axis months are filled
	globex := records[1]
	require.Len(t, globex.Revenue, 3)
	assert.Equal(t, 0.0, globex.Revenue["2024-01"])
	assert.Equal(t, 0.0, globex.Revenue["2024-02"])
	assert.Equal(t, 500.0, globex.Revenue["2024-03"])
}

func TestFetchMatrixBuildsValidMatrix(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(exportPage{
			Data: []subscription{
				{Customer: "Acme", Charges: []charge{
					{Month: "2023-11", Amount: 900},
					{Month: "2024-02", Amount: 950},
				}},
			},
		})
	})

	matrix, err := client.FetchMatrix(context.Background())
	require.NoError(t, err)

	// The axis spans the billed range contiguously across the year break
	assert.Equal(t, []string{"2023-11", "2023-12", "2024-01", "2024-02"}, matrix.Months())
	assert.Equal(t, 900.0, matrix.Amount(0, 0))
	assert.Equal(t, 0.0, matrix.Amount(0, 1))
	assert.Equal(t, 950.0, matrix.Amount(0, 3))
}

func TestFetchRecordsErrorStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	})

	_, err := client.FetchRecords(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestFetchRecordsEmptyFeed(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[],"has_more":false}`)
	})

	records, err := client.FetchRecords(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}
