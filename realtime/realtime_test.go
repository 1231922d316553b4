package realtime

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/chess-tournament/models"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// region hub

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func TestHub_BroadcastToRoom(t *testing.T) {
	hub := startHub(t)
	room := RoomForTournament("t1")

	inRoom := &Client{Hub: hub, Send: make(chan []byte, 4), Room: room}
	elsewhere := &Client{Hub: hub, Send: make(chan []byte, 4), Room: RoomForTournament("t2")}
	hub.Register <- inRoom
	hub.Register <- elsewhere

	require.Eventually(t, func() bool { return hub.RoomSize(room) == 1 }, time.Second, 10*time.Millisecond)

	hub.BroadcastToRoom(room, WebSocketMessage{Type: MessageStandingsUpdated, Payload: "x", RoomID: room})

	select {
	case raw := <-inRoom.Send:
		var msg WebSocketMessage
		require.NoError(t, json.Unmarshal(raw, &msg))
		assert.Equal(t, MessageStandingsUpdated, msg.Type)
		assert.Equal(t, room, msg.RoomID)
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
	assert.Len(t, elsewhere.Send, 0)
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := startHub(t)
	room := RoomForTournament("t1")
	c := &Client{Hub: hub, Send: make(chan []byte, 1), Room: room}

	hub.Register <- c
	hub.Unregister <- c

	require.Eventually(t, func() bool { return hub.RoomSize(room) == 0 }, time.Second, 10*time.Millisecond)
	_, open := <-c.Send
	assert.False(t, open)

	// Broadcasting to an empty room is a no-op.
	hub.BroadcastToRoom(room, WebSocketMessage{Type: MessageResync})
}

func TestHub_BroadcastAllSetsRoom(t *testing.T) {
	hub := startHub(t)
	a := &Client{Hub: hub, Send: make(chan []byte, 1), Room: "a"}
	b := &Client{Hub: hub, Send: make(chan []byte, 1), Room: "b"}
	hub.Register <- a
	hub.Register <- b
	require.Eventually(t, func() bool { return hub.RoomSize("a") == 1 && hub.RoomSize("b") == 1 }, time.Second, 10*time.Millisecond)

	hub.BroadcastAll(WebSocketMessage{Type: MessageResync})

	for _, c := range []*Client{a, b} {
		var msg WebSocketMessage
		require.NoError(t, json.Unmarshal(<-c.Send, &msg))
		assert.Equal(t, c.Room, msg.RoomID)
	}
}

// endregion

// region listener

type fakeSource struct {
	ch       chan *pq.Notification
	listened string
	closed   bool
	mu       sync.Mutex
}

func (f *fakeSource) Listen(channel string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listened = channel
	return nil
}
func (f *fakeSource) NotificationChannel() <-chan *pq.Notification { return f.ch }
func (f *fakeSource) Ping() error                                  { return nil }
func (f *fakeSource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

type recorder struct {
	mu     sync.Mutex
	events []models.ChangeEvent
}

func (r *recorder) HandleChange(_ context.Context, e models.ChangeEvent) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []models.ChangeEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.ChangeEvent(nil), r.events...)
}

func TestListener_DispatchesDecodedEvents(t *testing.T) {
	src := &fakeSource{ch: make(chan *pq.Notification, 4)}
	l := newListener(src, discardLogger())
	rec := &recorder{}
	l.Subscribe(rec)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	src.ch <- &pq.Notification{Channel: ChangesChannel, Extra: `{"table":"matches","type":"UPDATE","record":{"id":"m1","tournament_id":"t1"}}`}
	src.ch <- &pq.Notification{Channel: ChangesChannel, Extra: `not json`}
	src.ch <- nil

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 2 }, time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	events := rec.snapshot()
	assert.Equal(t, models.TableMatches, events[0].Table)
	assert.Equal(t, "t1", events[0].TournamentID())
	assert.Equal(t, models.ChangeResync, events[1].Type)

	src.mu.Lock()
	defer src.mu.Unlock()
	assert.Equal(t, ChangesChannel, src.listened)
	assert.True(t, src.closed)
}

func TestListener_StopsWhenSourceCloses(t *testing.T) {
	src := &fakeSource{ch: make(chan *pq.Notification)}
	l := newListener(src, discardLogger())
	close(src.ch)

	assert.NoError(t, l.Run(context.Background()))
}

func TestDecodeNotification(t *testing.T) {
	ev, err := DecodeNotification(`{"table":"tournaments","type":"DELETE","record":{"id":"t9"}}`)
	require.NoError(t, err)
	assert.Equal(t, models.ChangeDelete, ev.Type)
	assert.Equal(t, "t9", ev.TournamentID())

	_, err = DecodeNotification(`{"table":"matches","type":"TRUNCATE"}`)
	assert.Error(t, err)

	_, err = DecodeNotification(`{"type":"INSERT"}`)
	assert.Error(t, err)

	_, err = DecodeNotification(`{`)
	assert.Error(t, err)
}

func TestChangeHandlerFunc(t *testing.T) {
	var got models.ChangeEvent
	h := ChangeHandlerFunc(func(_ context.Context, e models.ChangeEvent) { got = e })
	h.HandleChange(context.Background(), models.ChangeEvent{Table: models.TablePlayers})
	assert.Equal(t, models.TablePlayers, got.Table)
}

// endregion
