package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lazharichir/marketmaker/domain"
	"github.com/lazharichir/marketmaker/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryRows(t *testing.T) {
	total := 46
	at := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	rows := historyRows([]domain.HandRecord{
		{HandNumber: 1, Maker: "p1", FinalTotal: &total, Trades: make([]domain.Trade, 4), Quotes: make([]domain.Quote, 4), Timestamp: at},
		{HandNumber: 2, Maker: "p2", Quotes: make([]domain.Quote, 1), Timestamp: at},
	})

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"1", "p1", "4", "4", "46", "2026-03-01 12:30:00"}, rows[1])
	assert.Equal(t, []string{"2", "p2", "1", "0", "-", "2026-03-01 12:30:00"}, rows[2])
}

func TestStatsRows(t *testing.T) {
	rows := statsRows(domain.SessionStats{HandsPlayed: 3, TotalTrades: 9, TotalQuotes: 12, AvgSpread: 2.5})
	assert.Equal(t, []string{"3", "9", "12", "2.50"}, rows[1])
}

func TestFetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/table/t1/history":
			assert.Equal(t, "3", r.URL.Query().Get("limit"))
			_, _ = w.Write([]byte(`{"recent_hands":[],"session_stats":{"hands_played":0,"total_trades":0,"total_quotes":0,"avg_spread":0},"current_hand":7}`))
		case "/table/broken/stats":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Table not found"}`))
		}
	}))
	defer ts.Close()

	ctx := context.Background()
	var resp server.HistoryResponse
	require.NoError(t, fetch(ctx, ts.Client(), ts.URL+"/table/t1/history?limit=3", &resp))
	assert.Equal(t, 7, resp.CurrentHand)

	var stats domain.SessionStats
	assert.ErrorIs(t, fetch(ctx, ts.Client(), ts.URL+"/table/nope/stats", &stats), errNotFound)
	assert.Error(t, fetch(ctx, ts.Client(), ts.URL+"/table/broken/stats", &stats))

	err := run(ctx, []string{"stats", "-addr", ts.URL, "-table", "nope"})
	assert.ErrorIs(t, err, errNotFound)
}

func TestRunUsage(t *testing.T) {
	ctx := context.Background()
	assert.Error(t, run(ctx, nil))
	assert.Error(t, run(ctx, []string{"history"}))
	assert.Error(t, run(ctx, []string{"purge", "-table", "t1"}))
}
