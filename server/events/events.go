package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lazharichir/marketmaker/cards"
	"github.com/lazharichir/marketmaker/domain"
	"github.com/lazharichir/marketmaker/domain/commands"
	"github.com/lazharichir/marketmaker/domain/events"
	"github.com/lazharichir/marketmaker/server/connection"
)

const (
	handCompleteText    = "Hand complete! Starting new hand..."
	pendingAwayText     = "You will be marked as away after this hand completes."
	youPendingLeaveText = "You will leave the table after this hand completes."
	youLeftText         = "You have successfully left the table. Your game history is preserved."
	youLeftAfterText    = "You have left the table after the hand completed. Your game history is preserved."
)

// Dispatcher turns domain events into wire messages and owns the outbound
// state pushes
type Dispatcher struct {
	connMgr *connection.Manager
	logger  *slog.Logger
}

// NewDispatcher creates a new event dispatcher
func NewDispatcher(connMgr *connection.Manager, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		connMgr: connMgr,
		logger:  logger,
	}
}

// HandleEvent processes domain events and sends them to clients
func (d *Dispatcher) HandleEvent(event events.Event) {
	d.logger.Debug("dispatching event", events.LogAttrs(event)...)

	switch e := event.(type) {
	case events.PlayerJoined:
		d.broadcast(e.TableID, PlayerEventMessage{
			Type:       TypePlayerEvent,
			Event:      EventPlayerJoined,
			PlayerID:   e.PlayerID,
			PlayerName: e.PlayerName,
			PlayerSeat: e.Seat,
			Message:    fmt.Sprintf("%s joined the table", e.PlayerName),
		})

	case events.PlayerLeft:
		text := youLeftText
		if e.AfterHand {
			text = youLeftAfterText
		}
		d.send(e.PlayerID, PlayerEventMessage{
			Type:            TypePlayerEvent,
			Event:           EventYouLeft,
			Message:         text,
			RedirectToLobby: true,
		})
		// the leaver already got you_left
		d.broadcastExcept(e.TableID, e.PlayerID, PlayerEventMessage{
			Type:       TypePlayerEvent,
			Event:      EventPlayerLeft,
			PlayerID:   e.PlayerID,
			PlayerName: e.PlayerName,
			PlayerSeat: e.Seat,
			Message:    fmt.Sprintf("%s has left the table", e.PlayerName),
		})

	case events.PlayerPendingLeave:
		d.send(e.PlayerID, PlayerEventMessage{
			Type:    TypePlayerEvent,
			Event:   EventYouPendingLeave,
			Message: youPendingLeaveText,
		})
		d.broadcast(e.TableID, PlayerEventMessage{
			Type:       TypePlayerEvent,
			Event:      EventPendingLeave,
			PlayerID:   e.PlayerID,
			PlayerName: e.PlayerName,
			Message:    fmt.Sprintf("%s will leave after this hand completes", e.PlayerName),
		})

	case events.PlayerPendingAway:
		d.SendInfo(e.PlayerID, pendingAwayText)

	case events.QuotePosted:
		d.broadcast(e.TableID, QuoteMessage{Type: TypeQuote, Maker: e.Maker, Bid: e.Bid, Ask: e.Ask})

	case events.TradeExecuted:
		d.broadcast(e.TableID, TradeMessage{Type: TypeTrade, PlayerID: e.PlayerID, Side: domain.Side(e.Side), Price: e.Price})

	case events.RoundAdvanced:
		// entering settlement is announced by HandSettled
		if e.Round < domain.SettlementRound {
			d.broadcast(e.TableID, RoundMessage{Type: TypeRound, Round: e.Round, Community: nonNil(e.Community)})
		}

	case events.HandSettled:
		d.broadcast(e.TableID, HandCompleteMessage{Type: TypeHandComplete, Message: handCompleteText})

	case events.HandStarted:
		d.broadcast(e.TableID, RoundMessage{Type: TypeRound, Round: 0, Community: cards.Stack{}})

	default:
		d.logger.Warn("unhandled event", "event", event.Name())
	}
}

func nonNil(s cards.Stack) cards.Stack {
	if s == nil {
		return cards.Stack{}
	}
	return s
}

func (d *Dispatcher) encode(msg any) ([]byte, bool) {
	data, err := json.Marshal(msg)
	if err != nil {
		d.logger.Error("failed to marshal message", "error", err)
		return nil, false
	}
	return data, true
}

func (d *Dispatcher) send(playerID string, msg any) bool {
	data, ok := d.encode(msg)
	if !ok {
		return false
	}
	return d.connMgr.SendToPlayer(playerID, data)
}

func (d *Dispatcher) broadcast(tableID string, msg any) {
	data, ok := d.encode(msg)
	if !ok {
		return
	}
	d.connMgr.SendToTable(tableID, data)
}

func (d *Dispatcher) broadcastExcept(tableID, exceptID string, msg any) {
	data, ok := d.encode(msg)
	if !ok {
		return
	}
	d.connMgr.SendToTableExcept(tableID, exceptID, data)
}

// SendState pushes a personalised snapshot to one identity. The caller must
// hold the table lock.
func (d *Dispatcher) SendState(playerID string, t *domain.Table, historyHands int) bool {
	return d.send(playerID, StateMessage{Type: TypeState, TableView: t.BuildView(playerID, historyHands)})
}

// BroadcastState pushes a personalised snapshot to every session at the
// table. The caller must hold the table lock.
func (d *Dispatcher) BroadcastState(t *domain.Table, historyHands int) {
	for _, s := range d.connMgr.SessionsAtTable(t.ID) {
		data, ok := d.encode(StateMessage{Type: TypeState, TableView: t.BuildView(s.PlayerID(), historyHands)})
		if !ok {
			return
		}
		d.connMgr.Send(s, data)
	}
}

func (d *Dispatcher) SendJoinSuccess(t *domain.Table, p *domain.Player) bool {
	return d.send(p.ID, JoinSuccessMessage{
		Type:     TypeJoinSuccess,
		PlayerID: p.ID,
		TableID:  t.ID,
		Player:   p.View(true),
		Message:  fmt.Sprintf("Welcome to the table, %s!", p.Name),
	})
}

func (d *Dispatcher) SendInfo(playerID, detail string) bool {
	return d.send(playerID, DetailMessage{Type: TypeInfo, Detail: detail})
}

func (d *Dispatcher) SendPong(playerID string) bool {
	return d.send(playerID, PongMessage{Type: TypePong})
}

// SendError reports a rejected message to its sender. Join failures use the
// join_error type.
func (d *Dispatcher) SendError(playerID string, err error) bool {
	var domainErr *domain.Error
	switch {
	case errors.As(err, &domainErr) && domainErr.IsJoinError():
		return d.send(playerID, JoinErrorMessage{Type: TypeJoinError, Error: domainErr.Message})
	case errors.As(err, &domainErr):
		return d.send(playerID, DetailMessage{Type: TypeError, Detail: domainErr.Message})
	case errors.Is(err, commands.ErrUnknownAction):
		return d.send(playerID, DetailMessage{Type: TypeError, Detail: "Unknown action"})
	default:
		return d.send(playerID, DetailMessage{Type: TypeError, Detail: "Invalid message"})
	}
}
