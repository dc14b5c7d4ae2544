package cards

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Card
		wantErr bool
	}{
		{"Ace of Spades unicode", "A♠", Card{Suit: Spades, Value: Ace}, false},
		{"Ace of Spades lowercase", "As", Card{Suit: Spades, Value: Ace}, false},
		{"Ace of Spades uppercase", "AS", Card{Suit: Spades, Value: Ace}, false},
		{"Ten shorthand", "TH", Card{Suit: Hearts, Value: Ten}, false},
		{"Ten numeric", "10h", Card{Suit: Hearts, Value: Ten}, false},
		{"Ten of Hearts unicode", "10♥", Card{Suit: Hearts, Value: Ten}, false},
		{"Queen of Diamonds", "Qd", Card{Suit: Diamonds, Value: Queen}, false},
		{"Two of Clubs unicode", "2♣", Card{Suit: Clubs, Value: Two}, false},
		{"King of Clubs", "KC", Card{Suit: Clubs, Value: King}, false},
		{"Mixed case", "aS", Card{Suit: Spades, Value: Ace}, false},

		{"Trailing space", "AS ", Card{}, true},
		{"Leading space", " AS", Card{}, true},
		{"Too short", "A", Card{}, true},
		{"Empty", "", Card{}, true},
		{"Invalid suit", "TX", Card{}, true},
		{"Invalid value", "11S", Card{}, true},
		{"Reverse order", "♠A", Card{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CardFromString(tt.input)
			if tt.wantErr {
				require.Error(t, err, "CardFromString(%q) should return an error", tt.input)
				return
			}
			require.NoError(t, err, "CardFromString(%q) should not return an error", tt.input)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestValuePoints(t *testing.T) {
	assert.Equal(t, 1, Ace.Points())
	assert.Equal(t, 10, Ten.Points())
	assert.Equal(t, 11, Jack.Points())
	assert.Equal(t, 12, Queen.Points())
	assert.Equal(t, 13, King.Points())
	assert.Equal(t, 0, Value("Z").Points())

	for i, v := range Values {
		assert.Equal(t, i+1, v.Points(), "rank %s", v)
	}
}

func TestCardPointsIgnoreSuit(t *testing.T) {
	for _, suit := range Suits {
		assert.Equal(t, 7, Card{Suit: suit, Value: Seven}.Points())
	}
}

func TestCardJSON(t *testing.T) {
	hand := Stack{{Suit: Spades, Value: Ten}, {Suit: Clubs, Value: Ace}}

	data, err := json.Marshal(hand)
	require.NoError(t, err)
	assert.JSONEq(t, `["TS","AC"]`, string(data))

	var decoded Stack
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, hand, decoded)

	require.Error(t, json.Unmarshal([]byte(`["ZZ"]`), &decoded))
}

func TestCardString(t *testing.T) {
	c := Card{Suit: Diamonds, Value: Queen}
	assert.Equal(t, "QD", c.String())
	assert.Equal(t, "Q♦", c.Pretty())
}
