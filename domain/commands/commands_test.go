package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Command
	}{
		{"join", `{"action":"join","name":"Alice","buy_in":500}`, Join{PlayerName: "Alice", BuyIn: json.RawMessage("500")}},
		{"join without buy-in", `{"action":"join","name":"Alice"}`, Join{PlayerName: "Alice"}},
		{"quote", `{"action":"quote","bid":40.5,"ask":44}`, Quote{Bid: 40.5, Ask: 44}},
		{"trade", `{"action":"trade","side":"buy","price":44}`, Trade{Side: "buy", Price: 44}},
		{"leave", `{"action":"leave"}`, Leave{}},
		{"away", `{"action":"away"}`, Away{}},
		{"join back", `{"action":"join_back"}`, JoinBack{}},
		{"ping", `{"action":"ping"}`, Ping{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := Decode([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode([]byte(`{"action":"fold"}`))
	assert.ErrorIs(t, err, ErrUnknownAction)

	_, err = Decode([]byte(`{}`))
	assert.ErrorIs(t, err, ErrUnknownAction)

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"action":"quote","bid":"high"}`))
	assert.Error(t, err)
}

func TestJoinBuyInAmount(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		amount int
		ok     bool
	}{
		{"absent", "", 1000, true},
		{"null", "null", 1000, true},
		{"whole", "250", 250, true},
		{"numeric string", `" 300 "`, 300, true},
		{"fractional", "12.5", 0, false},
		{"too large", "1e12", 0, false},
		{"word", `"lots"`, 0, false},
		{"object", `{"v":1}`, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, ok := Join{BuyIn: json.RawMessage(tt.raw)}.BuyInAmount(1000)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.amount, amount)
		})
	}
}

func TestDecodeJoinKeepsMalformedBuyIn(t *testing.T) {
	cmd, err := Decode([]byte(`{"action":"join","name":"Alice","buy_in":"lots"}`))
	require.NoError(t, err)
	_, ok := cmd.(Join).BuyInAmount(1000)
	assert.False(t, ok)
}

func TestCommandNames(t *testing.T) {
	assert.Equal(t, "join", Join{}.Name())
	assert.Equal(t, "join_back", JoinBack{}.Name())
	assert.Equal(t, "trade", Trade{}.Name())
}
