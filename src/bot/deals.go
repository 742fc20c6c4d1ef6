package bot

import (
	"context"
	"time"

	"c79sniper/src/profit"
)

// BridgeDeals adapts the broker deal history to the daily profit manager,
// filtering to this instance's magic number and symbol.
type BridgeDeals struct {
	Broker Broker
	Magic  int64
	Symbol string
}

func (b *BridgeDeals) ClosedDeals(ctx context.Context, from, to time.Time) ([]profit.ClosedDeal, error) {
	deals, err := b.Broker.Deals(ctx, from, to)
	if err != nil {
		return nil, err
	}

	out := make([]profit.ClosedDeal, 0, len(deals))
	for _, d := range deals {
		if b.Magic != 0 && d.Magic != b.Magic {
			continue
		}
		if b.Symbol != "" && d.Symbol != b.Symbol {
			continue
		}
		out = append(out, profit.ClosedDeal{Lots: d.Lots, Profit: d.Profit})
	}
	return out, nil
}
