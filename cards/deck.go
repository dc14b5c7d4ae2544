package cards

import (
	"math/rand/v2"
	"strings"
)

// Stack represents an ordered pile of cards: a deck, a hand, the community cards.
type Stack []Card

// NewDeck52 creates an unshuffled deck of all 52 rank and suit combinations
func NewDeck52() Stack {
	deck := make(Stack, 0, len(Values)*len(Suits))
	for _, value := range Values {
		for _, suit := range Suits {
			deck = append(deck, Card{Suit: suit, Value: value})
		}
	}
	return deck
}

// Shuffle permutes the stack in place using r. A nil r uses the global source.
func (s Stack) Shuffle(r *rand.Rand) {
	swap := func(i, j int) { s[i], s[j] = s[j], s[i] }
	if r == nil {
		rand.Shuffle(len(s), swap)
		return
	}
	r.Shuffle(len(s), swap)
}

// DealCard removes and returns the card at the end of the stack.
// The second return value is false when the stack is empty.
func (s *Stack) DealCard() (Card, bool) {
	if len(*s) == 0 {
		return Card{}, false
	}
	last := len(*s) - 1
	card := (*s)[last]
	*s = (*s)[:last]
	return card, true
}

// DealCards removes up to count cards from the end of the stack
func (s *Stack) DealCards(count int) Stack {
	dealt := make(Stack, 0, count)
	for range count {
		card, ok := s.DealCard()
		if !ok {
			break
		}
		dealt = append(dealt, card)
	}
	return dealt
}

// AddCard appends a card to the stack
func (s *Stack) AddCard(card Card) {
	*s = append(*s, card)
}

// Points sums the value of every card in the stack
func (s Stack) Points() int {
	total := 0
	for _, c := range s {
		total += c.Points()
	}
	return total
}

// Clone returns a copy that does not share the backing array.
func (s Stack) Clone() Stack {
	if s == nil {
		return nil
	}
	out := make(Stack, len(s))
	copy(out, s)
	return out
}

func (s Stack) String() string {
	parts := make([]string, len(s))
	for i, c := range s {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
