package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to PlayerStatus
		want     bool
	}{
		{StatusActive, StatusAway, true},
		{StatusActive, StatusPendingAway, true},
		{StatusActive, StatusPendingLeaving, true},
		{StatusActive, StatusEliminated, true},
		{StatusAway, StatusActive, true},
		{StatusAway, StatusPendingAway, false},
		{StatusPendingAway, StatusAway, true},
		{StatusPendingLeaving, StatusLeft, true},
		{StatusPendingLeaving, StatusActive, true},
		{StatusEliminated, StatusActive, false},
		{StatusEliminated, StatusPendingLeaving, false},
		{StatusEliminated, StatusLeft, true},
		{StatusLeft, StatusActive, false},
		{StatusLeft, StatusEliminated, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestPlaying(t *testing.T) {
	assert.True(t, StatusActive.Playing())
	assert.True(t, StatusPendingAway.Playing())
	assert.True(t, StatusPendingLeaving.Playing())
	assert.False(t, StatusAway.Playing())
	assert.False(t, StatusLeft.Playing())
	assert.False(t, StatusEliminated.Playing())

	assert.True(t, StatusPendingAway.Pending())
	assert.False(t, StatusAway.Pending())
}

func TestPlayerStatusUnmarshal(t *testing.T) {
	var s PlayerStatus
	require.NoError(t, json.Unmarshal([]byte(`"pending_leaving"`), &s))
	assert.Equal(t, StatusPendingLeaving, s)

	assert.Error(t, json.Unmarshal([]byte(`"leaving"`), &s))

	_, err := ParsePlayerStatus("")
	assert.Error(t, err)
}
