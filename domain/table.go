package domain

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lazharichir/marketmaker/cards"
	"github.com/lazharichir/marketmaker/domain/events"
)

const (
	// SettlementRound is the round value a hand reaches once it is settled.
	SettlementRound = 4
	// CommunityCards is how many cards are revealed over a hand.
	CommunityCards = 3
	// HoleCards is how many hidden cards each seated player holds.
	HoleCards = 2
	// MaxSeats is both the seat numbering limit and the table capacity.
	MaxSeats = 7
)

// Table is one market maker table. It is not safe for concurrent use; every
// caller must hold the table lock (Lock/Unlock) around reads and mutations.
type Table struct {
	ID          string             `json:"tid"`
	Players     map[string]*Player `json:"players"`
	SeatOrder   []string           `json:"seat_order"`
	MakerIndex  int                `json:"maker_idx"`
	HandMaker   string             `json:"hand_maker"`
	Deck        cards.Stack        `json:"deck"`
	Community   cards.Stack        `json:"community"`
	Round       int                `json:"round_num"`
	Trades      []Trade            `json:"trades"`
	Quotes      []Quote            `json:"quotes"`
	RoundTrades []string           `json:"round_trades"`
	HandNumber  int                `json:"hand_number"`
	History     []HandRecord       `json:"game_history"`
	HistoryCap  int                `json:"max_history_hands"`
	Departed    map[string]*Player `json:"left_players"`

	mu            sync.Mutex
	rng           *rand.Rand
	now           func() time.Time
	newID         func() string
	eventHandlers []events.EventHandler
}

// TableOption configures the non-persisted collaborators of a table
type TableOption func(*Table)

// WithRand sets the source used for shuffling and seat assignment
func WithRand(r *rand.Rand) TableOption {
	return func(t *Table) { t.rng = r }
}

// WithClock sets the time source used for history timestamps and events
func WithClock(now func() time.Time) TableOption {
	return func(t *Table) { t.now = now }
}

// WithIDGenerator sets how permanent player identities are minted
func WithIDGenerator(newID func() string) TableOption {
	return func(t *Table) { t.newID = newID }
}

// WithHistoryCap bounds the hand archive
func WithHistoryCap(n int) TableOption {
	return func(t *Table) {
		if n > 0 {
			t.HistoryCap = n
		}
	}
}

// NewTable creates an empty table with a shuffled deck
func NewTable(id string, opts ...TableOption) *Table {
	t := &Table{
		ID:          id,
		Players:     make(map[string]*Player),
		SeatOrder:   []string{},
		Community:   cards.Stack{},
		Trades:      []Trade{},
		Quotes:      []Quote{},
		RoundTrades: []string{},
		History:     []HandRecord{},
		HistoryCap:  DefaultHistoryCap,
		Departed:    make(map[string]*Player),
	}
	t.configure(opts)
	t.Deck = cards.NewDeck52()
	t.Deck.Shuffle(t.rng)
	return t
}

// RestoreTable rebuilds a table from a snapshot produced by Snapshot
func RestoreTable(data []byte, opts ...TableOption) (*Table, error) {
	t := &Table{}
	if err := json.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("decode table snapshot: %w", err)
	}
	if t.ID == "" {
		return nil, fmt.Errorf("decode table snapshot: missing table id")
	}
	if t.Players == nil {
		t.Players = make(map[string]*Player)
	}
	if t.Departed == nil {
		t.Departed = make(map[string]*Player)
	}
	if t.HistoryCap <= 0 {
		t.HistoryCap = DefaultHistoryCap
	}
	if len(t.SeatOrder) > 0 && (t.MakerIndex < 0 || t.MakerIndex >= len(t.SeatOrder)) {
		t.MakerIndex = 0
	}
	t.configure(opts)
	return t, nil
}

func (t *Table) configure(opts []TableOption) {
	for _, opt := range opts {
		opt(t)
	}
	if t.now == nil {
		t.now = time.Now
	}
	if t.newID == nil {
		t.newID = uuid.NewString
	}
}

// Snapshot serialises the full table state
func (t *Table) Snapshot() ([]byte, error) {
	return json.Marshal(t)
}

// Lock enters the table's critical section
func (t *Table) Lock() { t.mu.Lock() }

// Unlock leaves the table's critical section
func (t *Table) Unlock() { t.mu.Unlock() }

// RegisterEventHandler registers a callback function that will be called when events occur
func (t *Table) RegisterEventHandler(handler events.EventHandler) {
	t.eventHandlers = append(t.eventHandlers, handler)
}

// emitEvent notifies all registered handlers of a new event
func (t *Table) emitEvent(event events.Event) {
	for _, handler := range t.eventHandlers {
		handler(event)
	}
}

func (t *Table) intN(n int) int {
	if t.rng == nil {
		return rand.IntN(n)
	}
	return t.rng.IntN(n)
}

// MakerID returns the identity at the rotation index, or "" for an empty table
func (t *Table) MakerID() string {
	if len(t.SeatOrder) == 0 {
		return ""
	}
	if t.MakerIndex < 0 || t.MakerIndex >= len(t.SeatOrder) {
		return ""
	}
	return t.SeatOrder[t.MakerIndex]
}

// Player returns the seated player with the given identity
func (t *Table) Player(id string) (*Player, bool) {
	p, ok := t.Players[id]
	return p, ok
}

// MidHand reports whether a hand is underway: a round was reached or a quote was posted
func (t *Table) MidHand() bool {
	return t.Round > 0 || len(t.Quotes) > 0
}

// ActivePlayerCount counts players whose status is exactly active
func (t *Table) ActivePlayerCount() int {
	n := 0
	for _, p := range t.Players {
		if p.Status == StatusActive {
			n++
		}
	}
	return n
}

// ShouldAutoStart reports whether a join should immediately start a hand
func (t *Table) ShouldAutoStart() bool {
	return t.ActivePlayerCount() >= 2 && t.Round == 0 && len(t.Community) == 0
}

// OrderedPlayers returns seated players in rotation order
func (t *Table) OrderedPlayers() []*Player {
	out := make([]*Player, 0, len(t.Players))
	listed := make(map[string]bool, len(t.SeatOrder))
	for _, id := range t.SeatOrder {
		if p, ok := t.Players[id]; ok && !listed[id] {
			out = append(out, p)
			listed[id] = true
		}
	}
	var rest []*Player
	for id, p := range t.Players {
		if !listed[id] {
			rest = append(rest, p)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i].Seat < rest[j].Seat })
	return append(out, rest...)
}

// StartNewHand archives the finished hand, resolves deferred status changes,
// and deals a fresh hand. It returns the players who left at this boundary.
func (t *Table) StartNewHand() []*Player {
	if len(t.Trades) > 0 || len(t.Quotes) > 0 {
		maker := t.HandMaker
		if maker == "" {
			maker = t.MakerID()
		}
		rec := HandRecord{
			HandNumber: t.HandNumber,
			Trades:     slices.Clone(t.Trades),
			Quotes:     slices.Clone(t.Quotes),
			Maker:      maker,
			Timestamp:  t.now(),
		}
		if t.Round >= SettlementRound {
			total := t.EvaluateTotal()
			rec.FinalTotal = &total
		}
		t.History = archiveHand(t.History, rec, t.HistoryCap)
	}

	departed := t.resolvePending()

	t.HandNumber++
	t.Deck = cards.NewDeck52()
	t.Deck.Shuffle(t.rng)
	t.Community = cards.Stack{}
	t.Round = 0
	t.Trades = []Trade{}
	t.Quotes = []Quote{}
	t.RoundTrades = []string{}

	ordered := t.OrderedPlayers()
	ids := make([]string, 0, len(ordered))
	for _, p := range ordered {
		p.Cards = t.Deck.DealCards(HoleCards)
		ids = append(ids, p.ID)
	}
	t.HandMaker = t.MakerID()

	for _, p := range departed {
		t.emitEvent(events.PlayerLeft{
			TableID:    t.ID,
			PlayerID:   p.ID,
			PlayerName: p.Name,
			Seat:       p.Seat,
			AfterHand:  true,
			At:         t.now(),
		})
	}
	t.emitEvent(events.HandStarted{
		TableID:    t.ID,
		HandNumber: t.HandNumber,
		Maker:      t.HandMaker,
		Players:    ids,
		At:         t.now(),
	})

	return departed
}

// resolvePending applies the deferred away and leave requests
func (t *Table) resolvePending() []*Player {
	var departed []*Player
	for _, p := range t.OrderedPlayers() {
		if !p.Status.Pending() {
			continue
		}
		switch p.Status {
		case StatusPendingAway:
			_ = p.SetStatus(StatusAway)
		case StatusPendingLeaving:
			_ = p.SetStatus(StatusLeft)
			t.depart(p)
			departed = append(departed, p)
		}
	}
	return departed
}

// depart moves a player into the departed archive and out of the rotation
func (t *Table) depart(p *Player) {
	t.Departed[p.ID] = p
	delete(t.Players, p.ID)
	if i := slices.Index(t.SeatOrder, p.ID); i >= 0 {
		t.SeatOrder = slices.Delete(t.SeatOrder, i, i+1)
	}
	if t.MakerIndex >= len(t.SeatOrder) {
		t.MakerIndex = 0
	}
	// before any quote the seat shift hands the deal to the new maker
	if !t.MidHand() {
		t.HandMaker = t.MakerID()
	}
}

// AdvanceRound reveals the next community card while fewer than three are out,
// then moves to the next round and clears the per-round trades.
func (t *Table) AdvanceRound() {
	if t.Round < CommunityCards {
		if card, ok := t.Deck.DealCard(); ok {
			t.Community.AddCard(card)
		}
	}
	t.Round++
	t.RoundTrades = []string{}

	t.emitEvent(events.RoundAdvanced{
		TableID:   t.ID,
		Round:     t.Round,
		Community: t.Community.Clone(),
		At:        t.now(),
	})
}

// RotateMaker hands the maker seat to the next identity in the rotation
func (t *Table) RotateMaker() {
	if len(t.SeatOrder) > 0 {
		t.MakerIndex = (t.MakerIndex + 1) % len(t.SeatOrder)
	}
}

// RoundComplete reports whether every playing non-maker has traded this round
func (t *Table) RoundComplete() bool {
	maker := t.MakerID()
	for id, p := range t.Players {
		if id == maker || !p.Status.Playing() {
			continue
		}
		if !t.hasTradedThisRound(id) {
			return false
		}
	}
	return true
}

func (t *Table) hasTradedThisRound(id string) bool {
	return slices.Contains(t.RoundTrades, id)
}

func (t *Table) hasQuoteThisRound() bool {
	for _, q := range t.Quotes {
		if q.Round == t.Round {
			return true
		}
	}
	return false
}

// PostQuote records the maker's market for the current round
func (t *Table) PostQuote(playerID string, bid, ask float64) (Quote, error) {
	if playerID != t.MakerID() {
		return Quote{}, ErrNotMaker
	}
	if t.hasQuoteThisRound() {
		return Quote{}, ErrAlreadyQuoted
	}
	if ask <= bid {
		return Quote{}, ErrInvalidQuote
	}

	q := Quote{Bid: bid, Ask: ask, Round: t.Round, Maker: playerID}
	t.Quotes = append(t.Quotes, q)

	t.emitEvent(events.QuotePosted{
		TableID: t.ID,
		Maker:   playerID,
		Bid:     bid,
		Ask:     ask,
		Round:   t.Round,
		At:      t.now(),
	})
	return q, nil
}

// Trade records a non-maker's trade for the current round. It does not
// progress the round; see ProgressRound.
func (t *Table) Trade(playerID string, side Side, price float64) (Trade, error) {
	if playerID == t.MakerID() {
		return Trade{}, ErrMakerCannotTrade
	}
	p, ok := t.Players[playerID]
	if !ok {
		return Trade{}, ErrNotSeated
	}
	if t.hasTradedThisRound(playerID) {
		return Trade{}, ErrAlreadyTraded
	}
	if !p.Status.Playing() {
		return Trade{}, ErrNotEligible
	}
	if _, err := ParseSide(string(side)); err != nil {
		return Trade{}, err
	}

	tr := Trade{PlayerID: playerID, Side: side, Price: price, Round: t.Round}
	t.Trades = append(t.Trades, tr)
	t.RoundTrades = append(t.RoundTrades, playerID)

	t.emitEvent(events.TradeExecuted{
		TableID:  t.ID,
		PlayerID: playerID,
		Side:     string(side),
		Price:    price,
		Round:    t.Round,
		At:       t.now(),
	})
	return tr, nil
}

// RoundProgress reports what ProgressRound did
type RoundProgress struct {
	Advanced bool
	Settled  bool
}

// ProgressRound advances the round once every required trade is in, and
// settles the hand when the final round completes. The caller is expected to
// call FinishHand after a settlement.
func (t *Table) ProgressRound() RoundProgress {
	var progress RoundProgress
	if !t.RoundComplete() || t.Round >= SettlementRound {
		return progress
	}
	t.AdvanceRound()
	progress.Advanced = true
	if t.Round == SettlementRound {
		t.Settle()
		progress.Settled = true
	}
	return progress
}

// FinishHand rotates the maker and starts the next hand
func (t *Table) FinishHand() []*Player {
	t.RotateMaker()
	return t.StartNewHand()
}

// RecentHistory returns up to n archived hands, oldest first
func (t *Table) RecentHistory(n int) []HandRecord {
	return recentHands(t.History, n)
}

// SessionStats aggregates the hand archive
func (t *Table) SessionStats() SessionStats {
	return computeStats(t.History)
}
