package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/synk/client/internal/domain/entities"
	"github.com/synk/client/internal/infrastructure/config"
	"github.com/synk/client/internal/infrastructure/logger"
)

// fakeIdentity is a TokenSource that always knows the same user
type fakeIdentity struct {
	user *entities.User
}

func (f *fakeIdentity) Token(ctx context.Context) (string, error) { return "tok", nil }
func (f *fakeIdentity) Refresh(ctx context.Context) error         { return nil }
func (f *fakeIdentity) CurrentUser(ctx context.Context) (*entities.User, error) {
	return f.user, nil
}

func testConfig(baseURL string) config.RealtimeConfig {
	return config.RealtimeConfig{
		BaseURL:              baseURL,
		HandshakeTimeout:     time.Second,
		ReconnectBackoffBase: 20 * time.Millisecond,
		ReconnectBackoffMax:  100 * time.Millisecond,
		MaxReconnectAttempts: 3,
	}
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func newTestChannel(cfg config.RealtimeConfig) *Channel {
	identity := &fakeIdentity{user: &entities.User{ID: "7", Username: "sam"}}
	return NewChannel(cfg, identity, logger.Nop(), nil)
}

func TestChannelDispatchesFrames(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ws/7/" {
			t.Errorf("dial path = %q, want /ws/7/", r.URL.Path)
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		frame := `{"event": "task:created", "data": {"id": 1, "title": "New"}}`
		conn.WriteMessage(websocket.TextMessage, []byte(frame))
		// Keep the connection open until the test ends
		conn.ReadMessage()
	}))
	defer srv.Close()

	ch := newTestChannel(testConfig(wsURL(srv)))
	defer ch.Disconnect()

	got := make(chan entities.Task, 1)
	ch.On(TaskCreated, func(data json.RawMessage) {
		var task entities.Task
		if err := json.Unmarshal(data, &task); err != nil {
			t.Errorf("Unmarshal() error = %v", err)
			return
		}
		got <- task
	})

	if err := ch.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	select {
	case task := <-got:
		if task.ID != "1" || task.Title != "New" {
			t.Errorf("task = %+v", task)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for dispatched frame")
	}
}

func TestChannelConnectIsIdempotent(t *testing.T) {
	var dials int32
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&dials, 1)
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.ReadMessage()
	}))
	defer srv.Close()

	ch := newTestChannel(testConfig(wsURL(srv)))
	defer ch.Disconnect()

	if err := ch.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := ch.Connect(context.Background()); err != nil {
		t.Fatalf("second Connect() error = %v", err)
	}
	if n := atomic.LoadInt32(&dials); n != 1 {
		t.Errorf("dials = %d, want 1", n)
	}
	if !ch.IsConnected() {
		t.Error("IsConnected() = false after Connect")
	}
}

func TestChannelRequiresIdentity(t *testing.T) {
	ch := NewChannel(testConfig("ws://unused"), &fakeIdentity{user: nil}, logger.Nop(), nil)

	err := ch.Connect(context.Background())
	if err != entities.ErrNotAuthenticated {
		t.Errorf("Connect() error = %v, want ErrNotAuthenticated", err)
	}
	if ch.State() != StateDisconnected {
		t.Errorf("State() = %v, want disconnected", ch.State())
	}
}

func TestChannelReconnectsThenGivesUp(t *testing.T) {
	var dials int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&dials, 1)
		http.Error(w, "no", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ch := newTestChannel(testConfig(wsURL(srv)))
	defer ch.Disconnect()

	if err := ch.Connect(context.Background()); err == nil {
		t.Fatal("Connect() expected error against a refusing server")
	}

	// Backoff: 20ms, 40ms, 80ms, then give up
	time.Sleep(500 * time.Millisecond)

	if n := atomic.LoadInt32(&dials); n != 4 {
		t.Errorf("dials = %d, want 4 (initial plus three retries)", n)
	}
}

func TestChannelIntentionalCloseDoesNotReconnect(t *testing.T) {
	var dials int32
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&dials, 1)
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.ReadMessage()
	}))
	defer srv.Close()

	ch := newTestChannel(testConfig(wsURL(srv)))
	if err := ch.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	ch.Disconnect()
	time.Sleep(200 * time.Millisecond)

	if n := atomic.LoadInt32(&dials); n != 1 {
		t.Errorf("dials = %d, want 1 (no reconnect after Disconnect)", n)
	}
	if ch.IsConnected() {
		t.Error("IsConnected() = true after Disconnect")
	}
}

func TestChannelReconnectsAfterServerDrop(t *testing.T) {
	var dials int32
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&dials, 1)
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		if n == 1 {
			// Drop the first connection immediately
			conn.Close()
			return
		}
		conn.ReadMessage()
	}))
	defer srv.Close()

	ch := newTestChannel(testConfig(wsURL(srv)))
	defer ch.Disconnect()

	if err := ch.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	deadline := time.After(2 * time.Second)
	for atomic.LoadInt32(&dials) < 2 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for reconnect")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestChannelListenersSurviveDisconnect(t *testing.T) {
	upgrader := websocket.Upgrader{}
	frames := make(chan struct{}, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.WriteMessage(websocket.TextMessage, []byte(`{"event": "task:created", "data": {"id": 1}}`))
		conn.ReadMessage()
	}))
	defer srv.Close()

	ch := newTestChannel(testConfig(wsURL(srv)))
	ch.On(TaskCreated, func(json.RawMessage) { frames <- struct{}{} })

	if err := ch.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	select {
	case <-frames:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for first frame")
	}

	ch.Disconnect()

	// Listener registered before the disconnect still fires after reconnect
	if err := ch.Connect(context.Background()); err != nil {
		t.Fatalf("reconnect error = %v", err)
	}
	defer ch.Disconnect()
	select {
	case <-frames:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame after reconnect")
	}
}

func TestOnDeduplicatesByReference(t *testing.T) {
	ch := newTestChannel(testConfig("ws://unused"))

	var calls int32
	handler := func(json.RawMessage) { atomic.AddInt32(&calls, 1) }

	ch.On(TaskCreated, handler)
	ch.On(TaskCreated, handler)

	ch.dispatch(Envelope{Event: TaskCreated, Data: json.RawMessage(`{}`)})
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("calls = %d, want 1 (same handler registered twice)", n)
	}

	// A distinct function is a distinct registration
	ch.On(TaskCreated, func(json.RawMessage) { atomic.AddInt32(&calls, 1) })
	ch.dispatch(Envelope{Event: TaskCreated, Data: json.RawMessage(`{}`)})
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Errorf("calls = %d, want 3", n)
	}
}

func TestOffRemovesListener(t *testing.T) {
	ch := newTestChannel(testConfig("ws://unused"))

	var calls int32
	handler := func(json.RawMessage) { atomic.AddInt32(&calls, 1) }

	ch.On(TaskCreated, handler)
	ch.Off(TaskCreated, handler)
	ch.dispatch(Envelope{Event: TaskCreated, Data: json.RawMessage(`{}`)})
	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Errorf("calls = %d, want 0 after Off", n)
	}

	ch.On(TaskCreated, handler)
	ch.On(TaskCreated, func(json.RawMessage) { atomic.AddInt32(&calls, 1) })
	ch.Off(TaskCreated, nil)
	ch.dispatch(Envelope{Event: TaskCreated, Data: json.RawMessage(`{}`)})
	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Errorf("calls = %d, want 0 after Off(nil)", n)
	}
}

func TestDispatchIgnoresOtherKinds(t *testing.T) {
	ch := newTestChannel(testConfig("ws://unused"))

	var calls int32
	ch.On(TaskCreated, func(json.RawMessage) { atomic.AddInt32(&calls, 1) })

	ch.dispatch(Envelope{Event: MilestoneCreated, Data: json.RawMessage(`{}`)})
	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Errorf("calls = %d, want 0 for a different event kind", n)
	}
}
