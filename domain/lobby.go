package domain

import (
	"errors"
	"sort"
	"sync"

	"github.com/lazharichir/marketmaker/domain/events"
)

var ErrTableNotFound = errors.New("table not found")

// TableLoader returns a previously persisted table, if one exists
type TableLoader func(tableID string) (*Table, bool)

// Lobby is the registry of live tables. Tables are created lazily on first
// use and forward their events to the lobby's handlers.
type Lobby struct {
	mu           sync.RWMutex
	tables       map[string]*Table
	tableOptions []TableOption
	loader       TableLoader

	eventHandlers []events.EventHandler
}

// LobbyOption configures a Lobby
type LobbyOption func(*Lobby)

// WithTableOptions applies opts to every table the lobby creates or loads
func WithTableOptions(opts ...TableOption) LobbyOption {
	return func(l *Lobby) { l.tableOptions = append(l.tableOptions, opts...) }
}

// WithTableLoader consults loader before creating a fresh table
func WithTableLoader(loader TableLoader) LobbyOption {
	return func(l *Lobby) { l.loader = loader }
}

func NewLobby(opts ...LobbyOption) *Lobby {
	l := &Lobby{tables: make(map[string]*Table)}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// GetOrCreateTable returns the table with the given id, loading or creating
// it if it is not live yet. created is true when the table was not live.
func (l *Lobby) GetOrCreateTable(tableID string) (table *Table, created bool) {
	l.mu.RLock()
	table, ok := l.tables[tableID]
	l.mu.RUnlock()
	if ok {
		return table, false
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if table, ok := l.tables[tableID]; ok {
		return table, false
	}

	if l.loader != nil {
		if restored, ok := l.loader(tableID); ok {
			table = restored
		}
	}
	if table == nil {
		table = NewTable(tableID, l.tableOptions...)
	}
	table.RegisterEventHandler(l.handleTableEvent)
	l.tables[tableID] = table

	return table, true
}

// GetTable retrieves a live table by ID
func (l *Lobby) GetTable(tableID string) (*Table, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	table, exists := l.tables[tableID]
	if !exists {
		return nil, ErrTableNotFound
	}
	return table, nil
}

// GetTables returns all live tables ordered by ID
func (l *Lobby) GetTables() []*Table {
	l.mu.RLock()
	defer l.mu.RUnlock()

	tables := make([]*Table, 0, len(l.tables))
	for _, table := range l.tables {
		tables = append(tables, table)
	}
	sort.Slice(tables, func(i, j int) bool { return tables[i].ID < tables[j].ID })
	return tables
}

// AddEventHandler adds an event handler to the lobby. Handlers must be added
// before tables are created.
func (l *Lobby) AddEventHandler(handler events.EventHandler) {
	l.eventHandlers = append(l.eventHandlers, handler)
}

func (l *Lobby) handleTableEvent(event events.Event) {
	for _, handler := range l.eventHandlers {
		handler(event)
	}
}
