package domain

import (
	"slices"
	"sort"

	"github.com/lazharichir/marketmaker/cards"
)

// PlayerView is a player as seen by one viewer. Cards are only set for the
// viewer's own entry.
type PlayerView struct {
	ID      string       `json:"pid"`
	Name    string       `json:"name"`
	Seat    int          `json:"seat"`
	Stack   float64      `json:"stack"`
	BuyIn   int          `json:"buy_in"`
	PnL     float64      `json:"pnl"`
	Status  PlayerStatus `json:"status"`
	Cards   cards.Stack  `json:"cards,omitempty"`
	HasLeft bool         `json:"has_left,omitempty"`
}

// TableView is the personalised table state pushed to a connection
type TableView struct {
	Round         int           `json:"round"`
	Community     cards.Stack   `json:"community"`
	Players       []PlayerView  `json:"players"`
	AllPlayers    []PlayerView  `json:"all_players"`
	Maker         string        `json:"maker"`
	Quotes        []Quote       `json:"quotes"`
	Trades        []Trade       `json:"trades"`
	HandNumber    int           `json:"hand_number"`
	RecentHistory []HandRecord  `json:"recent_history,omitempty"`
	SessionStats  *SessionStats `json:"session_stats,omitempty"`
}

// StateHistoryHands is how many archived hands a history-bearing view carries
const StateHistoryHands = 5

// BuildView renders the table for viewerID. Only the viewer's own hole cards
// are included. When historyHands is positive the recent archive and session
// stats are attached.
func (t *Table) BuildView(viewerID string, historyHands int) TableView {
	view := TableView{
		Round:      t.Round,
		Community:  t.Community.Clone(),
		Players:    make([]PlayerView, 0, len(t.Players)),
		AllPlayers: t.Leaderboard(),
		Maker:      t.MakerID(),
		Quotes:     slices.Clone(t.Quotes),
		Trades:     slices.Clone(t.Trades),
		HandNumber: t.HandNumber,
	}
	if view.Community == nil {
		view.Community = cards.Stack{}
	}
	if view.Quotes == nil {
		view.Quotes = []Quote{}
	}
	if view.Trades == nil {
		view.Trades = []Trade{}
	}

	for _, p := range t.OrderedPlayers() {
		view.Players = append(view.Players, p.View(p.ID == viewerID))
	}

	if historyHands > 0 {
		view.RecentHistory = t.RecentHistory(historyHands)
		stats := t.SessionStats()
		view.SessionStats = &stats
	}

	return view
}

// Leaderboard lists seated players in rotation order followed by departed
// players. No cards are included.
func (t *Table) Leaderboard() []PlayerView {
	board := make([]PlayerView, 0, len(t.Players)+len(t.Departed))
	for _, p := range t.OrderedPlayers() {
		board = append(board, p.View(false))
	}

	departed := make([]*Player, 0, len(t.Departed))
	for _, p := range t.Departed {
		departed = append(departed, p)
	}
	sort.Slice(departed, func(i, j int) bool {
		if departed[i].Seat != departed[j].Seat {
			return departed[i].Seat < departed[j].Seat
		}
		return departed[i].ID < departed[j].ID
	})
	for _, p := range departed {
		pv := p.View(false)
		pv.HasLeft = true
		board = append(board, pv)
	}
	return board
}

// View renders the player's public record, with hole cards when revealCards is set
func (p *Player) View(revealCards bool) PlayerView {
	pv := PlayerView{
		ID:     p.ID,
		Name:   p.Name,
		Seat:   p.Seat,
		Stack:  p.Stack,
		BuyIn:  p.BuyIn,
		PnL:    p.PnL,
		Status: p.Status,
	}
	if revealCards {
		pv.Cards = p.Cards.Clone()
	}
	return pv
}
