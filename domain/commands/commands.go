// Package commands holds the player actions accepted over a table connection.
package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type Command interface {
	Name() string
}

var ErrUnknownAction = errors.New("unknown action")

type Join struct {
	PlayerName string          `json:"name"`
	BuyIn      json.RawMessage `json:"buy_in,omitempty"`
}

func (j Join) Name() string { return "join" }

// BuyInAmount returns the whole-dollar buy-in, or def when none was sent.
// Numbers and numeric strings are accepted. ok is false for anything else and
// for fractional or non-finite amounts.
func (j Join) BuyInAmount(def int) (amount int, ok bool) {
	raw := bytes.TrimSpace(j.BuyIn)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return def, true
	}

	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		var str string
		if err := json.Unmarshal(raw, &str); err != nil {
			return 0, false
		}
		if v, err = strconv.ParseFloat(strings.TrimSpace(str), 64); err != nil {
			return 0, false
		}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, false
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, false
	}
	return int(v), true
}

type Quote struct {
	Bid float64 `json:"bid"`
	Ask float64 `json:"ask"`
}

func (q Quote) Name() string { return "quote" }

type Trade struct {
	Side  string  `json:"side"`
	Price float64 `json:"price"`
}

func (t Trade) Name() string { return "trade" }

type Leave struct{}

func (l Leave) Name() string { return "leave" }

type Away struct{}

func (a Away) Name() string { return "away" }

type JoinBack struct{}

func (j JoinBack) Name() string { return "join_back" }

type Ping struct{}

func (p Ping) Name() string { return "ping" }

type envelope struct {
	Action string `json:"action"`
}

// Decode parses a client message into its command
func Decode(data []byte) (Command, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}

	var cmd Command
	switch env.Action {
	case "join":
		var c Join
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("decode join: %w", err)
		}
		cmd = c
	case "quote":
		var c Quote
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("decode quote: %w", err)
		}
		cmd = c
	case "trade":
		var c Trade
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("decode trade: %w", err)
		}
		cmd = c
	case "leave":
		cmd = Leave{}
	case "away":
		cmd = Away{}
	case "join_back":
		cmd = JoinBack{}
	case "ping":
		cmd = Ping{}
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownAction, env.Action)
	}
	return cmd, nil
}
