package events_test

import (
	"log/slog"
	"testing"

	"github.com/lazharichir/marketmaker/domain/events"
	"github.com/stretchr/testify/assert"
)

type anonymous struct {
	OtherField string
}

func (anonymous) Name() string { return "ANONYMOUS" }

func TestSubject(t *testing.T) {
	tests := []struct {
		name   string
		event  events.Event
		table  string
		player string
	}{
		{"trade", events.TradeExecuted{TableID: "t1", PlayerID: "p2"}, "t1", "p2"},
		{"pointer", &events.QuotePosted{TableID: "t2", Maker: "p1"}, "t2", "p1"},
		{"table only", events.RoundAdvanced{TableID: "t3"}, "t3", ""},
		{"no fields", anonymous{OtherField: "x"}, "", ""},
		{"nil pointer", (*events.HandSettled)(nil), "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, player := events.Subject(tt.event)
			assert.Equal(t, tt.table, table)
			assert.Equal(t, tt.player, player)
		})
	}
}

func TestLogAttrs(t *testing.T) {
	attrs := events.LogAttrs(events.PlayerJoined{TableID: "t1", PlayerID: "p1"})
	assert.Equal(t, []any{
		slog.String("event", "PLAYER_JOINED"),
		slog.String("table", "t1"),
		slog.String("player", "p1"),
	}, attrs)

	assert.Len(t, events.LogAttrs(events.HandStarted{TableID: "t1"}), 2)
}
