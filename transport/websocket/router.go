package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/keystroke-games/typerace/game/service"
)

// Inbound event names. These are the client-facing protocol and must not be
// renamed.
const (
	EventCreateNickname = "CreateNickname"
	EventCreateRoom     = "CreateRoom"
	EventJoinRoom       = "JoinRoom"
	EventUpdateProgress = "UpdateProgress"
	EventCompleted      = "Completed"
	EventStart          = "Start"
	EventRestart        = "Restart"
)

// inboundEvent is the envelope clients send. Unused fields stay zero.
type inboundEvent struct {
	Event    string  `json:"event"`
	Nickname string  `json:"nickname,omitempty"`
	RoomCode string  `json:"roomCode,omitempty"`
	Progress float64 `json:"progress,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The game is served from the same origin; development clients
		// connect from anywhere.
		return true
	},
}

// Router dispatches inbound connection events to the race service and fans
// out the resulting room snapshots through the hub.
type Router struct {
	service service.RaceService
	hub     *Hub
}

// NewRouter creates a router backed by the given service and hub.
func NewRouter(svc service.RaceService, hub *Hub) *Router {
	return &Router{service: svc, hub: hub}
}

// HandleWebSocket upgrades the request and starts the connection's pumps.
// Every connection starts anonymous; identity arrives with CreateNickname.
func (rt *Router) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:    rt.hub,
		router: rt,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		connID: uuid.NewString(),
	}

	rt.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// dispatch routes one inbound event. Called serially from the connection's
// read pump. Failures are silent on the wire: the server logs and moves on.
func (rt *Router) dispatch(c *Client, data []byte) {
	ctx := context.Background()

	var evt inboundEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		log.Printf("[WS] %s sent an unparseable event: %v", c.shortID(), err)
		return
	}

	switch evt.Event {
	case EventCreateNickname:
		rt.service.SetNickname(ctx, c.connID, evt.Nickname)

	case EventCreateRoom:
		room, err := rt.service.CreateRoom(ctx, c.connID)
		if err != nil {
			log.Printf("[WS] %s create room failed: %v", c.shortID(), err)
			return
		}
		rt.hub.Subscribe(c, room.Code)
		rt.hub.BroadcastRoom(room.Code, room)

	case EventJoinRoom:
		room, err := rt.service.JoinRoom(ctx, evt.RoomCode, c.connID)
		if err != nil {
			rt.logIgnored(c, evt.Event, err)
			return
		}
		rt.hub.Subscribe(c, room.Code)
		rt.hub.BroadcastRoom(room.Code, room)

	case EventUpdateProgress:
		room, err := rt.service.UpdateProgress(ctx, evt.RoomCode, c.connID, evt.Progress)
		if err != nil {
			rt.logIgnored(c, evt.Event, err)
			return
		}
		rt.hub.BroadcastRoom(room.Code, room)

	case EventCompleted:
		// Completion triggers no broadcast; the placement travels with the
		// room's next RoomInfo.
		if err := rt.service.Complete(ctx, evt.RoomCode, c.connID); err != nil {
			rt.logIgnored(c, evt.Event, err)
		}

	case EventStart:
		room, err := rt.service.StartRace(ctx, evt.RoomCode)
		if err != nil {
			rt.logIgnored(c, evt.Event, err)
			return
		}
		rt.hub.BroadcastRoom(room.Code, room)

	case EventRestart:
		room, err := rt.service.RestartRace(ctx, evt.RoomCode)
		if err != nil {
			rt.logIgnored(c, evt.Event, err)
			return
		}
		rt.hub.BroadcastRoom(room.Code, room)

	default:
		log.Printf("[WS] %s sent unknown event %q", c.shortID(), evt.Event)
	}
}

// handleDisconnect drops the connection's identity and membership.
// No broadcast: remaining members learn about the departure with the next
// RoomInfo.
func (rt *Router) handleDisconnect(c *Client) {
	rt.service.Disconnect(context.Background(), c.connID)
}

// logIgnored records an event that was dropped. Expected no-ops (unknown
// room, non-member progress, missing nickname) log quietly.
func (rt *Router) logIgnored(c *Client, event string, err error) {
	if errors.Is(err, service.ErrRoomNotFound) ||
		errors.Is(err, service.ErrNotMember) ||
		errors.Is(err, service.ErrNicknameNotSet) {
		log.Printf("[WS] %s %s ignored: %v", c.shortID(), event, err)
		return
	}
	log.Printf("[WS] %s %s failed: %v", c.shortID(), event, err)
}
