package gateway

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// wsWriteTimeout bounds a single state push.
const wsWriteTimeout = 5 * time.Second

// stateMessage is one websocket state notification.
type stateMessage struct {
	State string `json:"state"`
}

// handleStateSocket upgrades to a websocket and pushes every emotional
// state change. The current state is sent immediately on connect so the
// client never renders stale.
func (g *Gateway) handleStateSocket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			g.logger.Warn("websocket accept failed", "error", err)
			return
		}
		defer conn.Close(websocket.StatusInternalError, "closed")

		// The client only listens; CloseRead surfaces disconnects as
		// context cancellation.
		ctx := conn.CloseRead(r.Context())

		states, cancel := g.orch.State().Subscribe()
		defer cancel()

		if err := g.pushState(ctx, conn, g.orch.State().Get().String()); err != nil {
			return
		}

		for {
			select {
			case <-ctx.Done():
				conn.Close(websocket.StatusNormalClosure, "")
				return
			case state, ok := <-states:
				if !ok {
					conn.Close(websocket.StatusNormalClosure, "")
					return
				}
				if err := g.pushState(ctx, conn, state.String()); err != nil {
					return
				}
			}
		}
	}
}

func (g *Gateway) pushState(ctx context.Context, conn *websocket.Conn, state string) error {
	writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return wsjson.Write(writeCtx, conn, stateMessage{State: state})
}
