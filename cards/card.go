package cards

import (
	"fmt"
	"strings"
)

// CardFromString creates a card from its shorthand representation
// e.g., "TS", "10s" or "10♠" -> Card{Suit: Spades, Value: Ten}
func CardFromString(s string) (Card, error) {
	if len(s) < 2 {
		return Card{}, fmt.Errorf("invalid card shorthand: %s", s)
	}

	var suit Suit
	var valuePart string
	switch {
	case strings.HasSuffix(s, "♠"):
		suit, valuePart = Spades, strings.TrimSuffix(s, "♠")
	case strings.HasSuffix(s, "♥"):
		suit, valuePart = Hearts, strings.TrimSuffix(s, "♥")
	case strings.HasSuffix(s, "♦"):
		suit, valuePart = Diamonds, strings.TrimSuffix(s, "♦")
	case strings.HasSuffix(s, "♣"):
		suit, valuePart = Clubs, strings.TrimSuffix(s, "♣")
	default:
		switch s[len(s)-1:] {
		case "s", "S":
			suit = Spades
		case "h", "H":
			suit = Hearts
		case "d", "D":
			suit = Diamonds
		case "c", "C":
			suit = Clubs
		default:
			return Card{}, fmt.Errorf("invalid card suit: %s", s[len(s)-1:])
		}
		valuePart = s[:len(s)-1]
	}

	var value Value
	switch strings.ToUpper(valuePart) {
	case "A":
		value = Ace
	case "K":
		value = King
	case "Q":
		value = Queen
	case "J":
		value = Jack
	case "T", "10":
		value = Ten
	case "9":
		value = Nine
	case "8":
		value = Eight
	case "7":
		value = Seven
	case "6":
		value = Six
	case "5":
		value = Five
	case "4":
		value = Four
	case "3":
		value = Three
	case "2":
		value = Two
	default:
		return Card{}, fmt.Errorf("invalid card value: %s", valuePart)
	}

	return Card{Suit: suit, Value: value}, nil
}

// Suit represents a card suit. Suits carry no value.
type Suit string

const (
	Clubs    Suit = "C"
	Diamonds Suit = "D"
	Hearts   Suit = "H"
	Spades   Suit = "S"
)

// Symbol returns the unicode glyph for the suit
func (s Suit) Symbol() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	}
	return "?"
}

// Value represents a card rank
type Value string

const (
	Ace   Value = "A"
	Two   Value = "2"
	Three Value = "3"
	Four  Value = "4"
	Five  Value = "5"
	Six   Value = "6"
	Seven Value = "7"
	Eight Value = "8"
	Nine  Value = "9"
	Ten   Value = "T"
	Jack  Value = "J"
	Queen Value = "Q"
	King  Value = "K"
)

// Values lists every rank, ace low.
var Values = []Value{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}

// Suits lists every suit in deck construction order.
var Suits = []Suit{Clubs, Diamonds, Hearts, Spades}

// Points returns the rank index, 1 (ace) through 13 (king). Unknown ranks are worth 0.
func (v Value) Points() int {
	for i, value := range Values {
		if value == v {
			return i + 1
		}
	}
	return 0
}

// Card represents a playing card
type Card struct {
	Suit  Suit
	Value Value
}

// String returns the shorthand of a card, rank then suit, e.g. "TS"
func (c Card) String() string {
	return string(c.Value) + string(c.Suit)
}

// Pretty returns the card with its suit glyph, e.g. "T♠"
func (c Card) Pretty() string {
	return string(c.Value) + c.Suit.Symbol()
}

// Points returns the value of the card. Suit is irrelevant.
func (c Card) Points() int {
	return c.Value.Points()
}

// Equals checks if two cards are equal
func (c Card) Equals(other Card) bool {
	return c.Suit == other.Suit && c.Value == other.Value
}

// MarshalText encodes the card as its shorthand.
func (c Card) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText decodes a card shorthand.
func (c *Card) UnmarshalText(text []byte) error {
	card, err := CardFromString(string(text))
	if err != nil {
		return err
	}
	*c = card
	return nil
}
