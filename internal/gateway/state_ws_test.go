package gateway

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/aikodesk/aiko/pkg/emotion"
)

func TestStateSocket(t *testing.T) {
	t.Parallel()

	g := newTestGateway(t)
	srv := httptest.NewServer(g.buildRouter())
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := strings.Replace(srv.URL, "http://", "ws://", 1) + "/ws/state"
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	// The current state arrives immediately on connect.
	var msg stateMessage
	if err := wsjson.Read(ctx, conn, &msg); err != nil {
		t.Fatalf("read initial state: %v", err)
	}
	if msg.State != "idle" {
		t.Errorf("initial state = %q, want idle", msg.State)
	}

	g.orch.State().Set(emotion.StateHappy)
	if err := wsjson.Read(ctx, conn, &msg); err != nil {
		t.Fatalf("read pushed state: %v", err)
	}
	if msg.State != "happy" {
		t.Errorf("pushed state = %q, want happy", msg.State)
	}
}
