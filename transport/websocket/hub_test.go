package websocket

import (
	"encoding/json"
	"testing"

	"github.com/keystroke-games/typerace/game/engine"
)

func newTestClient() *Client {
	return &Client{
		connID: "test-conn",
		send:   make(chan []byte, sendBufferSize),
	}
}

func TestNewHub(t *testing.T) {
	hub := NewHub()

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}
	if hub.groups == nil {
		t.Error("Hub groups map is nil")
	}
	if hub.register == nil || hub.unregister == nil {
		t.Error("Hub lifecycle channels are nil")
	}
	if hub.subscribe == nil || hub.broadcast == nil {
		t.Error("Hub routing channels are nil")
	}
}

func TestSubscribeClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient()

	hub.registerClient(client)
	hub.subscribeClient(client, "AbC12")

	if !hub.groups["AbC12"][client] {
		t.Error("Client was not placed in the room group")
	}
	if client.room != "AbC12" {
		t.Errorf("Expected client room AbC12, got %q", client.room)
	}
	if hub.GroupCount() != 1 {
		t.Errorf("Expected 1 group, got %d", hub.GroupCount())
	}
}

func TestSubscribeClient_MovesBetweenGroups(t *testing.T) {
	hub := NewHub()
	client := newTestClient()
	hub.registerClient(client)

	hub.subscribeClient(client, "first")
	hub.subscribeClient(client, "secnd")

	if _, exists := hub.groups["first"]; exists {
		t.Error("Expected empty first group to be dropped")
	}
	if !hub.groups["secnd"][client] {
		t.Error("Expected client in the second group")
	}
	if hub.GroupCount() != 1 {
		t.Errorf("Expected 1 group after move, got %d", hub.GroupCount())
	}
}

func TestUnregisterClient(t *testing.T) {
	hub := NewHub()
	client := newTestClient()
	hub.registerClient(client)
	hub.subscribeClient(client, "AbC12")

	hub.unregisterClient(client)

	if _, exists := hub.groups["AbC12"]; exists {
		t.Error("Expected room group cleaned up after last client left")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("Expected 0 clients, got %d", hub.ClientCount())
	}

	// A second unregister (slow-client drop racing the read pump exit)
	// must be a no-op rather than a double close.
	hub.unregisterClient(client)
}

func TestBroadcastToGroup(t *testing.T) {
	hub := NewHub()
	inRoom := newTestClient()
	other := newTestClient()
	hub.registerClient(inRoom)
	hub.registerClient(other)
	hub.subscribeClient(inRoom, "AbC12")
	hub.subscribeClient(other, "zzzzz")

	room := engine.NewRoom("AbC12")
	room.AddMember("conn-1", "Alice", true, 0)
	data, _ := json.Marshal(outboundMessage{Event: EventRoomInfo, Room: room})
	hub.broadcastToGroup("AbC12", data)

	select {
	case payload := <-inRoom.send:
		var msg outboundMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Fatalf("Failed to unmarshal broadcast payload: %v", err)
		}
		if msg.Event != EventRoomInfo {
			t.Errorf("Expected event %q, got %q", EventRoomInfo, msg.Event)
		}
		if msg.Room == nil || msg.Room.Code != "AbC12" {
			t.Errorf("Expected room snapshot for AbC12, got %+v", msg.Room)
		}
	default:
		t.Fatal("Expected subscriber to receive the broadcast")
	}

	select {
	case <-other.send:
		t.Fatal("Expected client in another room not to receive the broadcast")
	default:
	}
}

func TestBroadcastToGroup_UnknownRoom(t *testing.T) {
	hub := NewHub()

	// Broadcasting into a room with no subscribers must not panic.
	hub.broadcastToGroup("nope!", []byte("{}"))
}

func TestBroadcastToGroup_DropsSlowClient(t *testing.T) {
	hub := NewHub()
	slow := &Client{connID: "slow-conn", send: make(chan []byte)} // no reader, zero buffer
	hub.registerClient(slow)
	hub.subscribeClient(slow, "AbC12")

	hub.broadcastToGroup("AbC12", []byte("{}"))

	if hub.ClientCount() != 0 {
		t.Errorf("Expected slow client dropped, got %d clients", hub.ClientCount())
	}
	if _, exists := hub.groups["AbC12"]; exists {
		t.Error("Expected group cleaned up after dropping its only client")
	}
}
