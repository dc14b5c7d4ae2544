package domain

import "fmt"

// PlayerStatus is the lifecycle state of a seated player.
type PlayerStatus string

const (
	StatusActive         PlayerStatus = "active"
	StatusAway           PlayerStatus = "away"
	StatusPendingAway    PlayerStatus = "pending_away"
	StatusPendingLeaving PlayerStatus = "pending_leaving"
	StatusLeft           PlayerStatus = "left"
	StatusEliminated     PlayerStatus = "eliminated"
)

// transitions lists every allowed status change. Anything else is rejected.
// Left is terminal; an eliminated player may only leave.
var transitions = map[PlayerStatus][]PlayerStatus{
	StatusActive:         {StatusAway, StatusPendingAway, StatusPendingLeaving, StatusLeft, StatusEliminated},
	StatusAway:           {StatusActive, StatusPendingLeaving, StatusLeft, StatusEliminated},
	StatusPendingAway:    {StatusActive, StatusAway, StatusPendingLeaving, StatusLeft, StatusEliminated},
	StatusPendingLeaving: {StatusActive, StatusAway, StatusPendingAway, StatusLeft, StatusEliminated},
	StatusLeft:           {},
	StatusEliminated:     {StatusLeft},
}

// ParsePlayerStatus validates a persisted status value.
func ParsePlayerStatus(s string) (PlayerStatus, error) {
	status := PlayerStatus(s)
	if _, ok := transitions[status]; !ok {
		return "", fmt.Errorf("unknown player status %q", s)
	}
	return status, nil
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to PlayerStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Playing reports whether the status still takes part in the current hand.
func (s PlayerStatus) Playing() bool {
	switch s {
	case StatusActive, StatusPendingAway, StatusPendingLeaving:
		return true
	}
	return false
}

// Pending reports whether the status is a deferred request.
func (s PlayerStatus) Pending() bool {
	return s == StatusPendingAway || s == StatusPendingLeaving
}

func (s *PlayerStatus) UnmarshalText(text []byte) error {
	status, err := ParsePlayerStatus(string(text))
	if err != nil {
		return err
	}
	*s = status
	return nil
}
