package mt5

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	logger "github.com/sirupsen/logrus"
)

const streamReconnectDelay = 5 * time.Second

// StreamTicks subscribes to the bridge tick stream and forwards quotes onto
// out until ctx is done. Reconnects on any stream error; the channel is closed
// when the context ends.
func StreamTicks(ctx context.Context, wsURL, symbol string, out chan<- Tick) {
	defer close(out)

	dialer := &websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		conn, _, err := dialer.DialContext(ctx, wsURL+"?symbol="+symbol, nil)
		if err != nil {
			logger.WithError(err).Warn("tick stream dial failed, will retry")
			select {
			case <-ctx.Done():
				return
			case <-time.After(streamReconnectDelay):
			}
			continue
		}

		readTicks(ctx, conn, out)
		_ = conn.Close()
	}
}

func readTicks(ctx context.Context, conn *websocket.Conn, out chan<- Tick) {
	// Unblock ReadJSON when the context ends.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		var tick Tick
		if err := conn.ReadJSON(&tick); err != nil {
			if ctx.Err() == nil {
				logger.WithError(err).Warn("tick stream read failed, reconnecting")
			}
			return
		}

		select {
		case out <- tick:
		case <-ctx.Done():
			return
		}
	}
}
