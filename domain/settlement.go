package domain

import "github.com/lazharichir/marketmaker/domain/events"

// EvaluateTotal sums the community cards and every seated player's hole cards
func (t *Table) EvaluateTotal() int {
	total := t.Community.Points()
	for _, p := range t.Players {
		total += p.Cards.Points()
	}
	return total
}

// Settle applies the profit and loss of every trade against the evaluated
// total. The maker takes the opposite side of each trade, so the adjustments
// across the table always sum to zero. Players left with a negative stack
// are eliminated.
func (t *Table) Settle() {
	total := t.EvaluateTotal()
	maker, hasMaker := t.Players[t.MakerID()]

	var makerAdj float64
	touched := make(map[string]*Player)
	for _, tr := range t.Trades {
		p, ok := t.Players[tr.PlayerID]
		if !ok {
			continue
		}
		pnl := settlementPnL(tr, total)
		p.ApplyPnL(pnl)
		makerAdj -= pnl
		touched[p.ID] = p
	}

	if hasMaker {
		maker.ApplyPnL(makerAdj)
		touched[maker.ID] = maker
	}

	for _, p := range touched {
		if p.Stack < 0 {
			_ = p.SetStatus(StatusEliminated)
		}
	}

	t.emitEvent(events.HandSettled{
		TableID:    t.ID,
		HandNumber: t.HandNumber,
		Total:      total,
		Maker:      t.MakerID(),
		At:         t.now(),
	})
}

// settlementPnL is the trader's result for one trade
func settlementPnL(tr Trade, total int) float64 {
	diff := float64(total) - tr.Price
	if tr.Side == SideSell {
		return -diff
	}
	return diff
}
