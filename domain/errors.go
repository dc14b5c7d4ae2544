package domain

import "fmt"

// Code is a machine-readable validation error code.
type Code string

const (
	CodeNotMaker          Code = "not_maker"
	CodeAlreadyQuoted     Code = "already_quoted"
	CodeInvalidQuote      Code = "invalid_quote"
	CodeMakerCannotTrade  Code = "maker_cannot_trade"
	CodeAlreadyTraded     Code = "already_traded"
	CodeInvalidSide       Code = "invalid_side"
	CodeNotSeated         Code = "not_seated"
	CodeNotEligible       Code = "not_eligible"
	CodeNameRequired      Code = "name_required"
	CodeNameTooLong       Code = "name_too_long"
	CodeInvalidBuyIn      Code = "invalid_buy_in"
	CodeNameTaken         Code = "name_taken"
	CodeTableFull         Code = "table_full"
	CodeNoSeat            Code = "no_seat"
	CodeAlreadyJoined     Code = "already_joined"
	CodeRejoinMidHand     Code = "rejoin_mid_hand"
	CodeInvalidTransition Code = "invalid_transition"
)

// Error is a rejected player action. Message is the text shown to the player.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches by code so wrapped or reformatted errors compare equal.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// IsJoinError reports whether the error belongs to the join flow.
func (e *Error) IsJoinError() bool {
	switch e.Code {
	case CodeNameRequired, CodeNameTooLong, CodeInvalidBuyIn, CodeNameTaken,
		CodeTableFull, CodeNoSeat, CodeAlreadyJoined:
		return true
	}
	return false
}

func newError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

var (
	ErrNotMaker         = newError(CodeNotMaker, "Only maker can quote")
	ErrAlreadyQuoted    = newError(CodeAlreadyQuoted, "You have already set a market price for this round")
	ErrInvalidQuote     = newError(CodeInvalidQuote, "Ask must be higher than bid")
	ErrMakerCannotTrade = newError(CodeMakerCannotTrade, "Market maker cannot trade")
	ErrAlreadyTraded    = newError(CodeAlreadyTraded, "You have already traded this round")
	ErrInvalidSide      = newError(CodeInvalidSide, "Side must be buy or sell")
	ErrNotSeated        = newError(CodeNotSeated, "You are not seated at this table")
	ErrNotEligible      = newError(CodeNotEligible, "You are not playing this hand")
	ErrNameRequired     = newError(CodeNameRequired, "Name is required")
	ErrNameTooLong      = newError(CodeNameTooLong, "Name must be 20 characters or less")
	ErrInvalidBuyIn     = newError(CodeInvalidBuyIn, "Buy-in must be between $1 and $10,000")
	ErrTableFull        = newError(CodeTableFull, "Table is full")
	ErrNoSeat           = newError(CodeNoSeat, "No available seats")
	ErrAlreadyJoined    = newError(CodeAlreadyJoined, "You have already joined this table")
	ErrRejoinMidHand    = newError(CodeRejoinMidHand, "Cannot rejoin in the middle of a hand. Please wait for the next hand.")
)

// ErrNameTaken is compared with errors.Is; its message carries the name.
var ErrNameTaken = newError(CodeNameTaken, "name taken")

func nameTakenError(name string) *Error {
	return newError(CodeNameTaken, fmt.Sprintf("Player name '%s' is already taken. Please choose a different name.", name))
}

// ErrInvalidTransition is compared with errors.Is; see transitionError.
var ErrInvalidTransition = newError(CodeInvalidTransition, "invalid status transition")

func transitionError(from, to PlayerStatus) *Error {
	return newError(CodeInvalidTransition, fmt.Sprintf("Cannot change status from %s to %s", from, to))
}
