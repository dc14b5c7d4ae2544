package domain

import (
	"sync"
	"testing"

	"github.com/lazharichir/marketmaker/domain/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLobbyGetOrCreateTable(t *testing.T) {
	lobby := NewLobby(WithTableOptions(WithHistoryCap(7)))

	_, err := lobby.GetTable("t1")
	assert.ErrorIs(t, err, ErrTableNotFound)

	table, created := lobby.GetOrCreateTable("t1")
	assert.True(t, created)
	assert.Equal(t, "t1", table.ID)
	assert.Equal(t, 7, table.HistoryCap)

	again, created := lobby.GetOrCreateTable("t1")
	assert.False(t, created)
	assert.Same(t, table, again)

	got, err := lobby.GetTable("t1")
	require.NoError(t, err)
	assert.Same(t, table, got)
}

func TestLobbyCreatesOneTableUnderContention(t *testing.T) {
	lobby := NewLobby()

	var wg sync.WaitGroup
	tables := make([]*Table, 16)
	for i := range tables {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tables[i], _ = lobby.GetOrCreateTable("shared")
		}(i)
	}
	wg.Wait()

	for _, table := range tables {
		assert.Same(t, tables[0], table)
	}
	assert.Len(t, lobby.GetTables(), 1)
}

func TestLobbyUsesLoader(t *testing.T) {
	stored := NewTable("t9")
	stored.HandNumber = 12

	lobby := NewLobby(WithTableLoader(func(id string) (*Table, bool) {
		if id == "t9" {
			return stored, true
		}
		return nil, false
	}))

	table, created := lobby.GetOrCreateTable("t9")
	assert.True(t, created)
	assert.Equal(t, 12, table.HandNumber)

	fresh, _ := lobby.GetOrCreateTable("t1")
	assert.Equal(t, 0, fresh.HandNumber)
}

func TestLobbyForwardsTableEvents(t *testing.T) {
	lobby := NewLobby()
	var got []events.Event
	lobby.AddEventHandler(func(event events.Event) {
		got = append(got, event)
	})

	table, _ := lobby.GetOrCreateTable("t1")
	_, err := table.Join("", "Alice", 100)
	require.NoError(t, err)

	require.Len(t, got, 1)
	joined, ok := got[0].(events.PlayerJoined)
	require.True(t, ok)
	assert.Equal(t, "t1", joined.TableID)
	assert.Equal(t, "Alice", joined.PlayerName)
}

func TestLobbyGetTablesIsSorted(t *testing.T) {
	lobby := NewLobby()
	lobby.GetOrCreateTable("b")
	lobby.GetOrCreateTable("a")

	tables := lobby.GetTables()
	require.Len(t, tables, 2)
	assert.Equal(t, "a", tables[0].ID)
	assert.Equal(t, "b", tables[1].ID)
}
