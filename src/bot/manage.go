package bot

import (
	"context"

	logger "github.com/sirupsen/logrus"

	"c79sniper/src/model"
	"c79sniper/src/mt5"
)

// managePositions advances protective stops on every open position using the
// current ATR. Stops only ever tighten: breakeven locks the entry price once
// the move covers the breakeven multiple, trailing follows price at the
// trailing multiple after that. A stop is never widened.
func (o *Orchestrator) managePositions(ctx context.Context, positions []mt5.Position, price, atr float64) {
	if atr <= 0 {
		return
	}

	breakevenDist := o.cfg.Strategy.BreakevenMultiple * atr
	trailingDist := o.cfg.Strategy.TrailingMultiple * atr

	for _, pos := range positions {
		var move, newStop float64
		tighten := false

		switch pos.Type {
		case model.OrderTypeBuy:
			move = price - pos.OpenPrice
			if move >= trailingDist {
				newStop = price - trailingDist
				tighten = newStop > pos.StopLoss
				if tighten {
					o.stops[pos.Ticket] = stopTrailing
				}
			} else if move >= breakevenDist && pos.StopLoss < pos.OpenPrice {
				newStop = pos.OpenPrice
				tighten = true
				o.stops[pos.Ticket] = stopBreakeven
			}

		case model.OrderTypeSell:
			move = pos.OpenPrice - price
			if move >= trailingDist {
				newStop = price + trailingDist
				tighten = pos.StopLoss == 0 || newStop < pos.StopLoss
				if tighten {
					o.stops[pos.Ticket] = stopTrailing
				}
			} else if move >= breakevenDist && (pos.StopLoss == 0 || pos.StopLoss > pos.OpenPrice) {
				newStop = pos.OpenPrice
				tighten = true
				o.stops[pos.Ticket] = stopBreakeven
			}
		}

		if !tighten {
			continue
		}

		if err := o.broker.ModifyPosition(ctx, pos.Ticket, newStop, pos.TakeProfit); err != nil {
			logger.WithError(err).WithField("ticket", pos.Ticket).Error("stop modify failed")
			continue
		}

		logger.WithFields(map[string]interface{}{
			"ticket": pos.Ticket,
			"stop":   newStop,
			"move":   move,
		}).Info("stop advanced")
	}
}

// CloseAll force-closes every open position for this magic number. Used by the
// operator command and the daily-limit shutdown.
func (o *Orchestrator) CloseAll(ctx context.Context, reason string) (int, error) {
	positions, err := o.broker.Positions(ctx, o.cfg.Broker.MagicNumber)
	if err != nil {
		return 0, err
	}

	closed := 0
	for _, pos := range positions {
		if err := o.broker.ClosePosition(ctx, pos.Ticket); err != nil {
			logger.WithError(err).WithField("ticket", pos.Ticket).Error("close failed")
			continue
		}
		closed++
	}

	if closed > 0 {
		o.notifier.Sendf("Closed %d position(s): %s", closed, reason)
	}
	return closed, nil
}
