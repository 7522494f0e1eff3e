package websocket

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/keystroke-games/typerace/game/engine"
	"github.com/keystroke-games/typerace/game/identity"
	"github.com/keystroke-games/typerace/game/rooms"
	"github.com/keystroke-games/typerace/game/service"
)

// fixedProvider always returns the same passage, keeping tests deterministic.
type fixedProvider struct {
	text string
}

func (p fixedProvider) Fetch(ctx context.Context) (string, error) {
	return p.text, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *Hub) {
	t.Helper()

	svc := service.NewRaceService(rooms.NewStore(rooms.DefaultCodeLength), identity.NewRegistry(), fixedProvider{text: "test passage"})
	hub := NewHub()
	go hub.Run()
	router := NewRouter(svc, hub)

	srv := httptest.NewServer(http.HandlerFunc(router.HandleWebSocket))
	t.Cleanup(srv.Close)
	return srv, hub
}

// wsClient wraps a dialed connection and splits batched frames back into
// individual events.
type wsClient struct {
	t       *testing.T
	conn    *websocket.Conn
	pending [][]byte
}

func dialWS(t *testing.T, srv *httptest.Server) *wsClient {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return &wsClient{t: t, conn: conn}
}

func (c *wsClient) send(evt inboundEvent) {
	c.t.Helper()
	if err := c.conn.WriteJSON(evt); err != nil {
		c.t.Fatalf("Failed to send %s: %v", evt.Event, err)
	}
}

// nextRoomInfo blocks for the next RoomInfo event.
func (c *wsClient) nextRoomInfo() *engine.Room {
	c.t.Helper()

	for {
		if len(c.pending) == 0 {
			c.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
			_, frame, err := c.conn.ReadMessage()
			if err != nil {
				c.t.Fatalf("Failed to read message: %v", err)
			}
			c.pending = bytes.Split(frame, []byte{'\n'})
		}

		payload := c.pending[0]
		c.pending = c.pending[1:]

		var msg outboundMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			c.t.Fatalf("Failed to unmarshal event %q: %v", payload, err)
		}
		if msg.Event == EventRoomInfo {
			return msg.Room
		}
	}
}

func TestLiveRaceScenario(t *testing.T) {
	srv, _ := newTestServer(t)

	alice := dialWS(t, srv)
	bob := dialWS(t, srv)

	// Alice creates a room and receives the first snapshot.
	alice.send(inboundEvent{Event: EventCreateNickname, Nickname: "Alice"})
	alice.send(inboundEvent{Event: EventCreateRoom})

	room := alice.nextRoomInfo()
	if room.MemberCount() != 1 {
		t.Fatalf("Expected 1 member after create, got %d", room.MemberCount())
	}
	if !room.Players[0].IsHost || room.Players[0].Nick != "Alice" {
		t.Errorf("Expected Alice as host, got %+v", room.Players[0])
	}
	if room.Started {
		t.Error("Expected lobby state after create")
	}
	if room.Text != "test passage" {
		t.Errorf("Expected fetched passage, got %q", room.Text)
	}
	code := room.Code

	// Bob joins; both see the two-member snapshot.
	bob.send(inboundEvent{Event: EventCreateNickname, Nickname: "Bob"})
	bob.send(inboundEvent{Event: EventJoinRoom, RoomCode: code})

	for _, c := range []*wsClient{alice, bob} {
		snap := c.nextRoomInfo()
		if snap.MemberCount() != 2 {
			t.Fatalf("Expected 2 members after join, got %d", snap.MemberCount())
		}
		if bobMember := snap.Players[1]; bobMember.Nick != "Bob" || bobMember.IsHost {
			t.Errorf("Expected Bob as non-host second member, got %+v", bobMember)
		}
	}

	// Alice starts the race; everyone sees started=true.
	alice.send(inboundEvent{Event: EventStart, RoomCode: code})
	for _, c := range []*wsClient{alice, bob} {
		if snap := c.nextRoomInfo(); !snap.Started {
			t.Error("Expected started snapshot after Start")
		}
	}

	// Bob finishes. No broadcast for Completed: the placement must arrive
	// with the next RoomInfo, triggered here by Bob's own progress report,
	// which his connection dispatches after the completion.
	bob.send(inboundEvent{Event: EventCompleted, RoomCode: code})
	bob.send(inboundEvent{Event: EventUpdateProgress, RoomCode: code, Progress: 1})

	for _, c := range []*wsClient{alice, bob} {
		snap := c.nextRoomInfo()
		bobMember := snap.Players[1]
		if bobMember.Place != "Finished 1" {
			t.Errorf("Expected Bob placed \"Finished 1\", got %q", bobMember.Place)
		}
		if bobMember.Progress != 1 {
			t.Errorf("Expected Bob progress 1, got %v", bobMember.Progress)
		}
	}

	// Restart returns the room to the lobby for everyone.
	alice.send(inboundEvent{Event: EventRestart, RoomCode: code})
	for _, c := range []*wsClient{alice, bob} {
		snap := c.nextRoomInfo()
		if snap.Started {
			t.Error("Expected lobby state after restart")
		}
		if snap.NextPlace != 1 {
			t.Errorf("Expected placement counter reset, got %d", snap.NextPlace)
		}
		for _, m := range snap.Players {
			if m.Progress != 0 || m.Place != "" {
				t.Errorf("Expected %s race data cleared, got %+v", m.Nick, m)
			}
		}
	}
}

func TestJoinUnknownRoom_SilentOnWire(t *testing.T) {
	srv, _ := newTestServer(t)

	alice := dialWS(t, srv)
	alice.send(inboundEvent{Event: EventCreateNickname, Nickname: "Alice"})
	alice.send(inboundEvent{Event: EventCreateRoom})
	code := alice.nextRoomInfo().Code

	bob := dialWS(t, srv)
	bob.send(inboundEvent{Event: EventCreateNickname, Nickname: "Bob"})

	// A join to a nonexistent code produces nothing on the wire. The next
	// event Bob receives must be the snapshot for the real room.
	bob.send(inboundEvent{Event: EventJoinRoom, RoomCode: "zzzzz"})
	bob.send(inboundEvent{Event: EventJoinRoom, RoomCode: code})

	snap := bob.nextRoomInfo()
	if snap.Code != code {
		t.Errorf("Expected first received snapshot for %s, got %s", code, snap.Code)
	}
	if snap.MemberCount() != 2 {
		t.Errorf("Expected 2 members, got %d", snap.MemberCount())
	}
}

func TestDisconnectCleansUp(t *testing.T) {
	srv, hub := newTestServer(t)

	alice := dialWS(t, srv)
	alice.send(inboundEvent{Event: EventCreateNickname, Nickname: "Alice"})
	alice.send(inboundEvent{Event: EventCreateRoom})
	alice.nextRoomInfo()

	alice.conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("Expected client count to reach 0, still %d", hub.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
	if hub.GroupCount() != 0 {
		t.Errorf("Expected no room groups after disconnect, got %d", hub.GroupCount())
	}
}
