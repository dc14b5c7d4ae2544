package domain

import (
	"math"
	"time"
)

// Side is the direction of a trade against the maker's market
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// ParseSide validates a wire side value
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case SideBuy, SideSell:
		return Side(s), nil
	}
	return "", ErrInvalidSide
}

// Quote is the maker's two-sided market for one round
type Quote struct {
	Bid   float64 `json:"bid"`
	Ask   float64 `json:"ask"`
	Round int     `json:"round"`
	Maker string  `json:"maker"`
}

// Spread is ask minus bid
func (q Quote) Spread() float64 {
	return q.Ask - q.Bid
}

// Trade is a non-maker's commitment at a price for one round
type Trade struct {
	PlayerID string  `json:"pid"`
	Side     Side    `json:"side"`
	Price    float64 `json:"price"`
	Round    int     `json:"round"`
}

// HandRecord summarises a completed hand for the archive
type HandRecord struct {
	HandNumber int       `json:"hand_number"`
	Trades     []Trade   `json:"trades"`
	Quotes     []Quote   `json:"quotes"`
	FinalTotal *int      `json:"final_total"`
	Maker      string    `json:"maker"`
	Timestamp  time.Time `json:"timestamp"`
}

// SessionStats aggregates the hand archive
type SessionStats struct {
	HandsPlayed int     `json:"hands_played"`
	TotalTrades int     `json:"total_trades"`
	TotalQuotes int     `json:"total_quotes"`
	AvgSpread   float64 `json:"avg_spread"`
}

// DefaultHistoryCap bounds the per-table hand archive
const DefaultHistoryCap = 100

// archiveHand appends rec and evicts the oldest records beyond limit
func archiveHand(history []HandRecord, rec HandRecord, limit int) []HandRecord {
	history = append(history, rec)
	if limit > 0 && len(history) > limit {
		history = append([]HandRecord(nil), history[len(history)-limit:]...)
	}
	return history
}

// recentHands returns the last n records, oldest first
func recentHands(history []HandRecord, n int) []HandRecord {
	if n <= 0 || len(history) == 0 {
		return []HandRecord{}
	}
	if n > len(history) {
		n = len(history)
	}
	out := make([]HandRecord, n)
	copy(out, history[len(history)-n:])
	return out
}

func computeStats(history []HandRecord) SessionStats {
	stats := SessionStats{HandsPlayed: len(history)}
	var spreadSum float64
	for _, hand := range history {
		stats.TotalTrades += len(hand.Trades)
		stats.TotalQuotes += len(hand.Quotes)
		for _, q := range hand.Quotes {
			spreadSum += q.Spread()
		}
	}
	if stats.TotalQuotes > 0 {
		stats.AvgSpread = math.Round(spreadSum/float64(stats.TotalQuotes)*100) / 100
	}
	return stats
}
