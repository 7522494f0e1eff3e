package websocket

import (
	"encoding/json"
	"log"
	"sync/atomic"

	"github.com/keystroke-games/typerace/game/engine"
)

// outboundMessage is the envelope for server-to-client events.
type outboundMessage struct {
	Event string       `json:"event"`
	Room  *engine.Room `json:"room,omitempty"`
}

// EventRoomInfo is the only outbound event: the full room snapshot.
const EventRoomInfo = "RoomInfo"

type subscription struct {
	client *Client
	code   string
	done   chan struct{}
}

type roomBroadcast struct {
	code string
	data []byte
}

// Hub maintains the set of active clients and the room multicast groups.
type Hub struct {
	// Clients by room code. Guarded by the Run loop; only tests touch it
	// directly.
	groups map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	subscribe  chan subscription
	broadcast  chan roomBroadcast

	clientCount atomic.Int64
	groupCount  atomic.Int64
}

// NewHub creates a new WebSocket hub.
func NewHub() *Hub {
	return &Hub{
		groups:     make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		subscribe:  make(chan subscription, 16),
		broadcast:  make(chan roomBroadcast, 64),
	}
}

// Run starts the hub's event loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case sub := <-h.subscribe:
			h.subscribeClient(sub.client, sub.code)
			close(sub.done)

		case msg := <-h.broadcast:
			h.broadcastToGroup(msg.code, msg.data)
		}
	}
}

// Subscribe places a client into a room's multicast group and returns once
// the hub has applied it, so a broadcast enqueued next reaches the client.
// A client is in at most one group; subscribing again moves it.
func (h *Hub) Subscribe(c *Client, code string) {
	done := make(chan struct{})
	h.subscribe <- subscription{client: c, code: code, done: done}
	<-done
}

// BroadcastRoom sends a RoomInfo snapshot to every client in the room's
// multicast group.
func (h *Hub) BroadcastRoom(code string, room *engine.Room) {
	data, err := json.Marshal(outboundMessage{Event: EventRoomInfo, Room: room})
	if err != nil {
		log.Printf("[WS] failed to marshal RoomInfo for %s: %v", code, err)
		return
	}
	h.broadcast <- roomBroadcast{code: code, data: data}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	return int(h.clientCount.Load())
}

// GroupCount returns the number of room multicast groups with subscribers.
func (h *Hub) GroupCount() int {
	return int(h.groupCount.Load())
}

// registerClient tracks a new connection. Connections start outside any
// room group until their first CreateRoom/JoinRoom.
func (h *Hub) registerClient(c *Client) {
	h.clientCount.Add(1)
	log.Printf("[WS] %s connected (%d clients)", c.shortID(), h.ClientCount())
}

// unregisterClient removes a connection from its group and closes its send
// channel.
func (h *Hub) unregisterClient(c *Client) {
	if c.closed {
		return
	}
	c.closed = true
	h.removeFromGroup(c)
	close(c.send)
	h.clientCount.Add(-1)
	log.Printf("[WS] %s disconnected (%d clients)", c.shortID(), h.ClientCount())
}

// subscribeClient moves a client into a room group.
func (h *Hub) subscribeClient(c *Client, code string) {
	if c.closed {
		return
	}
	h.removeFromGroup(c)

	group, ok := h.groups[code]
	if !ok {
		group = make(map[*Client]bool)
		h.groups[code] = group
		h.groupCount.Add(1)
	}
	group[c] = true
	c.room = code
}

// removeFromGroup detaches a client from its current group, dropping the
// group when it empties.
func (h *Hub) removeFromGroup(c *Client) {
	if c.room == "" {
		return
	}
	if group, ok := h.groups[c.room]; ok {
		delete(group, c)
		if len(group) == 0 {
			delete(h.groups, c.room)
			h.groupCount.Add(-1)
		}
	}
	c.room = ""
}

// broadcastToGroup fans a payload out to every subscriber of a room.
func (h *Hub) broadcastToGroup(code string, data []byte) {
	group, ok := h.groups[code]
	if !ok {
		return
	}
	for client := range group {
		select {
		case client.send <- data:
		default:
			// Client's send buffer is full; drop the slow client.
			h.unregisterClient(client)
		}
	}
}
