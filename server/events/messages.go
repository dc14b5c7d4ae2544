package events

import (
	"github.com/lazharichir/marketmaker/cards"
	"github.com/lazharichir/marketmaker/domain"
)

// Outbound message type tags
const (
	TypeState        = "state"
	TypeQuote        = "quote"
	TypeTrade        = "trade"
	TypeRound        = "round"
	TypeHandComplete = "hand_complete"
	TypePlayerEvent  = "player_event"
	TypeJoinSuccess  = "join_success"
	TypeJoinError    = "join_error"
	TypeError        = "error"
	TypeInfo         = "info"
	TypePong         = "pong"
)

// player_event sub-events
const (
	EventPlayerJoined    = "player_joined"
	EventPlayerLeft      = "player_left"
	EventPendingLeave    = "pending_leave"
	EventYouLeft         = "you_left"
	EventYouPendingLeave = "you_pending_leave"
)

type StateMessage struct {
	Type string `json:"type"`
	domain.TableView
}

type QuoteMessage struct {
	Type  string  `json:"type"`
	Maker string  `json:"maker"`
	Bid   float64 `json:"bid"`
	Ask   float64 `json:"ask"`
}

type TradeMessage struct {
	Type     string      `json:"type"`
	PlayerID string      `json:"pid"`
	Side     domain.Side `json:"side"`
	Price    float64     `json:"price"`
}

type RoundMessage struct {
	Type      string      `json:"type"`
	Round     int         `json:"round"`
	Community cards.Stack `json:"community"`
}

type HandCompleteMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type PlayerEventMessage struct {
	Type            string `json:"type"`
	Event           string `json:"event"`
	PlayerID        string `json:"player_id,omitempty"`
	PlayerName      string `json:"player_name,omitempty"`
	PlayerSeat      int    `json:"player_seat,omitempty"`
	Message         string `json:"message"`
	RedirectToLobby bool   `json:"redirect_to_lobby,omitempty"`
}

type JoinSuccessMessage struct {
	Type     string            `json:"type"`
	PlayerID string            `json:"pid"`
	TableID  string            `json:"tid"`
	Player   domain.PlayerView `json:"player"`
	Message  string            `json:"message"`
}

type JoinErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// DetailMessage carries the error and info types
type DetailMessage struct {
	Type   string `json:"type"`
	Detail string `json:"detail"`
}

type PongMessage struct {
	Type string `json:"type"`
}
