package domain

import (
	"strings"
	"unicode/utf8"

	"github.com/lazharichir/marketmaker/domain/events"
)

const (
	MaxNameLength = 20
	MinBuyIn      = 1
	MaxBuyIn      = 10000
	// DefaultBuyIn is used when a join omits the amount
	DefaultBuyIn = 1000
)

// Join seats a new player under a freshly minted identity. actorID is the
// identity the request arrived under; a seated actor cannot join twice.
func (t *Table) Join(actorID string, name string, buyIn int) (*Player, error) {
	if _, seated := t.Players[actorID]; seated && actorID != "" {
		return nil, ErrAlreadyJoined
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return nil, ErrNameTooLong
	}
	if buyIn < MinBuyIn || buyIn > MaxBuyIn {
		return nil, ErrInvalidBuyIn
	}

	occupied := make(map[int]bool, len(t.Players))
	present := 0
	for _, p := range t.Players {
		if p.Status == StatusLeft {
			continue
		}
		if strings.EqualFold(p.Name, name) {
			return nil, nameTakenError(name)
		}
		occupied[p.Seat] = true
		present++
	}
	if present >= MaxSeats {
		return nil, ErrTableFull
	}

	free := make([]int, 0, MaxSeats)
	for seat := 1; seat <= MaxSeats; seat++ {
		if !occupied[seat] {
			free = append(free, seat)
		}
	}
	if len(free) == 0 {
		return nil, ErrNoSeat
	}
	seat := free[t.intN(len(free))]

	player := NewPlayer(t.newID(), name, seat, buyIn)
	t.Players[player.ID] = player
	t.SeatOrder = append(t.SeatOrder, player.ID)

	t.emitEvent(events.PlayerJoined{
		TableID:    t.ID,
		PlayerID:   player.ID,
		PlayerName: player.Name,
		Seat:       player.Seat,
		At:         t.now(),
	})

	return player, nil
}

// Leave removes a player at once between hands, or marks them to leave at the
// next hand boundary. Eliminated players always leave at once. It reports
// whether the departure was deferred.
func (t *Table) Leave(playerID string) (bool, error) {
	p, ok := t.Players[playerID]
	if !ok {
		return false, ErrNotSeated
	}

	if t.MidHand() && p.Status != StatusEliminated {
		if err := p.SetStatus(StatusPendingLeaving); err != nil {
			return false, err
		}
		t.emitEvent(events.PlayerPendingLeave{
			TableID:    t.ID,
			PlayerID:   p.ID,
			PlayerName: p.Name,
			At:         t.now(),
		})
		return true, nil
	}

	if err := p.SetStatus(StatusLeft); err != nil {
		return false, err
	}
	t.depart(p)
	t.emitEvent(events.PlayerLeft{
		TableID:    t.ID,
		PlayerID:   p.ID,
		PlayerName: p.Name,
		Seat:       p.Seat,
		At:         t.now(),
	})
	return false, nil
}

// Away sits a player out, deferred to the next hand boundary when mid-hand.
// It reports whether the change was deferred.
func (t *Table) Away(playerID string) (bool, error) {
	p, ok := t.Players[playerID]
	if !ok {
		return false, ErrNotSeated
	}
	if p.Status == StatusAway {
		return false, nil
	}

	if t.MidHand() {
		if err := p.SetStatus(StatusPendingAway); err != nil {
			return false, err
		}
		t.emitEvent(events.PlayerPendingAway{
			TableID:    t.ID,
			PlayerID:   p.ID,
			PlayerName: p.Name,
			At:         t.now(),
		})
		return true, nil
	}

	return false, p.SetStatus(StatusAway)
}

// JoinBack cancels a pending request, or returns an away player to active
// while the table is between hands. It reports whether the status changed.
func (t *Table) JoinBack(playerID string) (bool, error) {
	p, ok := t.Players[playerID]
	if !ok {
		return false, ErrNotSeated
	}

	switch p.Status {
	case StatusPendingAway, StatusPendingLeaving:
		return true, p.SetStatus(StatusActive)
	case StatusAway:
		if t.Round != 0 {
			return false, ErrRejoinMidHand
		}
		return true, p.SetStatus(StatusActive)
	}
	return false, nil
}

// Reconnect marks a seated player as connected again. A pending away request
// is cancelled; away, pending leave and eliminated statuses are kept.
func (t *Table) Reconnect(playerID string) bool {
	p, ok := t.Players[playerID]
	if !ok {
		return false
	}
	p.MarkSeen()
	if p.Status == StatusPendingAway {
		_ = p.SetStatus(StatusActive)
	}
	return true
}

// MarkDisconnected stamps the last-seen time of a seated player
func (t *Table) MarkDisconnected(playerID string) bool {
	p, ok := t.Players[playerID]
	if !ok {
		return false
	}
	p.MarkDisconnected(t.now())
	return true
}
