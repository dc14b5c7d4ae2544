package events

import (
	"time"

	"github.com/lazharichir/marketmaker/cards"
)

type EventHandler func(event Event)

type Event interface {
	Name() string
}

// Seating Events
type PlayerJoined struct {
	TableID    string
	PlayerID   string
	PlayerName string
	Seat       int
	At         time.Time
}

func (e PlayerJoined) Name() string { return "PLAYER_JOINED" }

// PlayerLeft is emitted once the player has been moved to the departed archive.
// AfterHand is set when the leave was deferred until the hand completed.
type PlayerLeft struct {
	TableID    string
	PlayerID   string
	PlayerName string
	Seat       int
	AfterHand  bool
	At         time.Time
}

func (e PlayerLeft) Name() string { return "PLAYER_LEFT" }

type PlayerPendingLeave struct {
	TableID    string
	PlayerID   string
	PlayerName string
	At         time.Time
}

func (e PlayerPendingLeave) Name() string { return "PLAYER_PENDING_LEAVE" }

type PlayerPendingAway struct {
	TableID    string
	PlayerID   string
	PlayerName string
	At         time.Time
}

func (e PlayerPendingAway) Name() string { return "PLAYER_PENDING_AWAY" }

// Market Events
type QuotePosted struct {
	TableID string
	Maker   string
	Bid     float64
	Ask     float64
	Round   int
	At      time.Time
}

func (e QuotePosted) Name() string { return "QUOTE_POSTED" }

type TradeExecuted struct {
	TableID  string
	PlayerID string
	Side     string
	Price    float64
	Round    int
	At       time.Time
}

func (e TradeExecuted) Name() string { return "TRADE_EXECUTED" }

// Hand Structure Events
type HandStarted struct {
	TableID    string
	HandNumber int
	Maker      string
	Players    []string
	At         time.Time
}

func (e HandStarted) Name() string { return "HAND_STARTED" }

type RoundAdvanced struct {
	TableID   string
	Round     int
	Community cards.Stack
	At        time.Time
}

func (e RoundAdvanced) Name() string { return "ROUND_ADVANCED" }

type HandSettled struct {
	TableID    string
	HandNumber int
	Total      int
	Maker      string
	At         time.Time
}

func (e HandSettled) Name() string { return "HAND_SETTLED" }
