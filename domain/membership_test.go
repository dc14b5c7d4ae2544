package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaveBetweenHands(t *testing.T) {
	table := newTestTable(t)
	seatPlayers(t, table, "Alice", "Bob")
	table.MakerIndex = 1

	deferred, err := table.Leave("p2")
	require.NoError(t, err)

	assert.False(t, deferred)
	assert.NotContains(t, table.Players, "p2")
	assert.Equal(t, []string{"p1"}, table.SeatOrder)
	assert.Equal(t, 0, table.MakerIndex, "maker index wraps when it falls off the end")
	require.Contains(t, table.Departed, "p2")
	assert.Equal(t, StatusLeft, table.Departed["p2"].Status)

	_, err = table.Leave("p2")
	assert.ErrorIs(t, err, ErrNotSeated)
}

func TestLeaveMidHandIsDeferred(t *testing.T) {
	table := newTestTable(t)
	seatPlayers(t, table, "Alice", "Bob", "Carol")
	table.StartNewHand()
	_, err := table.PostQuote("p1", 40, 44)
	require.NoError(t, err)

	deferred, err := table.Leave("p3")
	require.NoError(t, err)
	assert.True(t, deferred)
	assert.Equal(t, StatusPendingLeaving, table.Players["p3"].Status)

	// a pending leaver still takes part in the hand
	_, err = table.Trade("p2", SideBuy, 44)
	require.NoError(t, err)
	assert.False(t, table.RoundComplete())
	_, err = table.Trade("p3", SideSell, 40)
	require.NoError(t, err)
	assert.True(t, table.RoundComplete())

	departed := table.StartNewHand()
	require.Len(t, departed, 1)
	assert.Equal(t, "p3", departed[0].ID)
	assert.Equal(t, StatusLeft, departed[0].Status)
	assert.NotContains(t, table.Players, "p3")
	assert.Equal(t, []string{"p1", "p2"}, table.SeatOrder)

	board := table.Leaderboard()
	require.Len(t, board, 3)
	assert.True(t, board[2].HasLeft)
	assert.Equal(t, "p3", board[2].ID)
}

func TestJoinBackCancelsPendingLeave(t *testing.T) {
	table := newTestTable(t)
	seatPlayers(t, table, "Alice", "Bob")
	table.StartNewHand()
	table.AdvanceRound()

	_, err := table.Leave("p2")
	require.NoError(t, err)

	changed, err := table.JoinBack("p2")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, StatusActive, table.Players["p2"].Status)

	assert.Empty(t, table.StartNewHand())
}

func TestEliminatedPlayerLeavesAtOnce(t *testing.T) {
	table := newTestTable(t)
	seatPlayers(t, table, "Alice", "Bob", "Carol")
	table.StartNewHand()
	table.AdvanceRound()
	require.NoError(t, table.Players["p3"].SetStatus(StatusEliminated))

	deferred, err := table.Leave("p3")
	require.NoError(t, err)
	assert.False(t, deferred)
	assert.Contains(t, table.Departed, "p3")
}

func TestAway(t *testing.T) {
	t.Run("between hands", func(t *testing.T) {
		table := newTestTable(t)
		seatPlayers(t, table, "Alice", "Bob")

		deferred, err := table.Away("p2")
		require.NoError(t, err)
		assert.False(t, deferred)
		assert.Equal(t, StatusAway, table.Players["p2"].Status)

		deferred, err = table.Away("p2")
		assert.NoError(t, err, "already away")
		assert.False(t, deferred)
	})

	t.Run("mid hand", func(t *testing.T) {
		table := newTestTable(t)
		seatPlayers(t, table, "Alice", "Bob")
		table.StartNewHand()
		_, err := table.PostQuote("p1", 40, 44)
		require.NoError(t, err)

		deferred, err := table.Away("p2")
		require.NoError(t, err)
		assert.True(t, deferred)
		assert.Equal(t, StatusPendingAway, table.Players["p2"].Status)

		table.StartNewHand()
		assert.Equal(t, StatusAway, table.Players["p2"].Status)
		assert.Contains(t, table.Players, "p2", "away players keep their seat")
	})

	t.Run("unknown player", func(t *testing.T) {
		table := newTestTable(t)
		_, err := table.Away("ghost")
		assert.ErrorIs(t, err, ErrNotSeated)
	})
}

func TestJoinBack(t *testing.T) {
	table := newTestTable(t)
	seatPlayers(t, table, "Alice", "Bob")
	_, err := table.Away("p2")
	require.NoError(t, err)

	table.StartNewHand()
	table.AdvanceRound()
	_, err = table.JoinBack("p2")
	assert.ErrorIs(t, err, ErrRejoinMidHand)
	assert.Equal(t, StatusAway, table.Players["p2"].Status)

	table.StartNewHand()
	changed, err := table.JoinBack("p2")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, StatusActive, table.Players["p2"].Status)

	changed, err = table.JoinBack("p2")
	assert.NoError(t, err)
	assert.False(t, changed, "active players are unchanged")

	_, err = table.JoinBack("ghost")
	assert.ErrorIs(t, err, ErrNotSeated)
}

func TestReconnect(t *testing.T) {
	table := newTestTable(t)
	seatPlayers(t, table, "Alice", "Bob", "Carol")
	table.StartNewHand()
	table.AdvanceRound()

	_, err := table.Away("p2")
	require.NoError(t, err)
	_, err = table.Leave("p3")
	require.NoError(t, err)
	table.MarkDisconnected("p2")
	require.False(t, table.Players["p2"].Connected())

	assert.True(t, table.Reconnect("p2"))
	assert.True(t, table.Players["p2"].Connected())
	assert.Equal(t, StatusActive, table.Players["p2"].Status, "pending away is cancelled")

	assert.True(t, table.Reconnect("p3"))
	assert.Equal(t, StatusPendingLeaving, table.Players["p3"].Status, "pending leave is kept")

	assert.False(t, table.Reconnect("ghost"))
}

func TestReconnectKeepsAway(t *testing.T) {
	table := newTestTable(t)
	seatPlayers(t, table, "Alice", "Bob")
	_, err := table.Away("p2")
	require.NoError(t, err)

	table.Reconnect("p2")

	assert.Equal(t, StatusAway, table.Players["p2"].Status)
}

func TestMarkDisconnected(t *testing.T) {
	table := newTestTable(t)
	seatPlayers(t, table, "Alice")

	assert.True(t, table.MarkDisconnected("p1"))
	require.NotNil(t, table.Players["p1"].LastSeen)
	assert.Equal(t, testNow, *table.Players["p1"].LastSeen)
	assert.False(t, table.MarkDisconnected("ghost"))
}
