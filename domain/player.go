package domain

import (
	"time"

	"github.com/lazharichir/marketmaker/cards"
)

// Player represents a player seated at a market maker table
type Player struct {
	ID       string       `json:"pid"`
	Name     string       `json:"name"`
	Seat     int          `json:"seat"`
	Stack    float64      `json:"stack"`
	BuyIn    int          `json:"buy_in"`
	PnL      float64      `json:"pnl"`
	Cards    cards.Stack  `json:"cards"`
	Status   PlayerStatus `json:"status"`
	LastSeen *time.Time   `json:"last_seen,omitempty"`
}

// NewPlayer creates an active player whose stack starts at the buy-in
func NewPlayer(id string, name string, seat int, buyIn int) *Player {
	return &Player{
		ID:     id,
		Name:   name,
		Seat:   seat,
		Stack:  float64(buyIn),
		BuyIn:  buyIn,
		Cards:  cards.Stack{},
		Status: StatusActive,
	}
}

// SetStatus is the single entry point for lifecycle changes.
// Setting the current status again is a no-op.
func (p *Player) SetStatus(to PlayerStatus) error {
	if p.Status == to {
		return nil
	}
	if !CanTransition(p.Status, to) {
		return transitionError(p.Status, to)
	}
	p.Status = to
	return nil
}

// ApplyPnL adds delta to both the running profit/loss and the stack
func (p *Player) ApplyPnL(delta float64) {
	p.PnL += delta
	p.Stack += delta
}

// MarkSeen clears the disconnect marker
func (p *Player) MarkSeen() {
	p.LastSeen = nil
}

// MarkDisconnected stamps when the player's connection went away
func (p *Player) MarkDisconnected(at time.Time) {
	p.LastSeen = &at
}

// Connected reports whether the player has no pending disconnect marker
func (p *Player) Connected() bool {
	return p.LastSeen == nil
}
