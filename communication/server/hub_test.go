package server

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"

	"conquest/communication"
	"conquest/game"

	"github.com/stretchr/testify/require"
)

func fakeConn(buf int) *wsConn {
	return &wsConn{send: make(chan []byte, buf)}
}

func decode(t *testing.T, data []byte) communication.Event {
	t.Helper()
	var event communication.Event
	require.NoError(t, json.Unmarshal(data, &event))
	return event
}

func TestHub(t *testing.T) {
	t.Run("broadcast reaches every connection", func(t *testing.T) {
		h := NewHub("session-1")
		a, b := fakeConn(4), fakeConn(4)
		h.Register(a)
		h.Register(b)

		h.Message("AI is thinking...")

		for _, c := range []*wsConn{a, b} {
			event := decode(t, <-c.send)
			require.Equal(t, communication.EventMessage, event.Type)
			require.Equal(t, "session-1", event.Session)
			require.Equal(t, "AI is thinking...", event.Message)
		}
	})

	t.Run("state events carry the projection", func(t *testing.T) {
		h := NewHub("session-1")
		c := fakeConn(1)
		h.Register(c)

		h.StateChanged(game.GameState{Phase: game.AITurnPhase, Turn: game.AI, Round: 3, Selection: game.NoSelection})

		event := decode(t, <-c.send)
		require.Equal(t, communication.EventState, event.Type)
		require.NotNil(t, event.State)
		require.Equal(t, game.AITurnPhase, event.State.Phase)
		require.Equal(t, game.AI, event.State.Turn)
		require.Equal(t, 3, event.State.Round)
	})

	t.Run("full buffers drop instead of blocking", func(t *testing.T) {
		h := NewHub("session-1")
		slow, fast := fakeConn(1), fakeConn(4)
		h.Register(slow)
		h.Register(fast)

		h.Message("first")
		h.Message("second")

		require.Len(t, slow.send, 1)
		require.Equal(t, "first", decode(t, <-slow.send).Message)
		require.Len(t, fast.send, 2)
	})

	t.Run("unregister closes the queue once", func(t *testing.T) {
		h := NewHub("session-1")
		c := fakeConn(1)
		h.Register(c)
		require.Equal(t, 1, h.ConnectionCount())

		h.Unregister(c)
		h.Unregister(c)

		require.Equal(t, 0, h.ConnectionCount())
		_, ok := <-c.send
		require.False(t, ok)
		h.Message("after")
	})

	t.Run("attach queues the welcome before later events", func(t *testing.T) {
		h := NewHub("session-1")
		c := fakeConn(sendBufSize)
		var round atomic.Int64
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				r := int(round.Add(1))
				h.StateChanged(game.GameState{Round: r})
			}
		}()

		require.NoError(t, h.Attach(c, func() communication.Event {
			state := game.GameState{Round: int(round.Load())}
			return communication.Event{Type: communication.EventConnected, State: &state}
		}))
		wg.Wait()

		welcome := decode(t, <-c.send)
		require.Equal(t, communication.EventConnected, welcome.Type)
		require.Equal(t, "session-1", welcome.Session)
		// Every round published after the welcome snapshot arrives, in order
		next := welcome.State.Round + 1
		for len(c.send) > 0 {
			event := decode(t, <-c.send)
			require.LessOrEqual(t, event.State.Round, next)
			if event.State.Round == next {
				next++
			}
		}
		require.Equal(t, 101, next)
	})
}
