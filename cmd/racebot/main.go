// Command racebot is a headless race participant. It connects to a running
// server over WebSocket, creates or joins a room, waits for the race to
// start, and then "types" the passage at a configured speed, reporting
// progress and completion like the web client does.
//
// Useful for filling a room during development:
//
//	racebot --url ws://localhost:8080/ws --nick bot-1 --room AbC12 --wpm 80
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/urfave/cli/v3"

	"github.com/keystroke-games/typerace/game/engine"
)

// event mirrors the JSON messages of the realtime protocol.
type event struct {
	Event    string       `json:"event"`
	Nickname string       `json:"nickname,omitempty"`
	RoomCode string       `json:"roomCode,omitempty"`
	Progress float64      `json:"progress,omitempty"`
	Room     *engine.Room `json:"room,omitempty"`
}

func main() {
	cmd := &cli.Command{
		Name:  "racebot",
		Usage: "headless typing race participant",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "url",
				Value: "ws://localhost:8080/ws",
				Usage: "WebSocket endpoint of the race server",
			},
			&cli.StringFlag{
				Name:  "nick",
				Value: "racebot",
				Usage: "nickname to race under",
			},
			&cli.StringFlag{
				Name:  "room",
				Usage: "room code to join; omit to create a new room",
			},
			&cli.StringFlag{
				Name:  "wpm",
				Value: "60",
				Usage: "typing speed in words per minute",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	wpm := parseWPM(cmd.String("wpm"))

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, cmd.String("url"), nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", cmd.String("url"), err)
	}
	defer conn.Close()

	nick := cmd.String("nick")
	if err := conn.WriteJSON(event{Event: "CreateNickname", Nickname: nick}); err != nil {
		return err
	}

	code := cmd.String("room")
	if code == "" {
		if err := conn.WriteJSON(event{Event: "CreateRoom"}); err != nil {
			return err
		}
	} else {
		if err := conn.WriteJSON(event{Event: "JoinRoom", RoomCode: code}); err != nil {
			return err
		}
	}

	// First snapshot tells us the room code and passage
	room, err := nextRoomInfo(conn)
	if err != nil {
		return err
	}
	code = room.Code
	log.Printf("Joined room %s as %s (%d members)", code, nick, room.MemberCount())

	// Wait in the lobby until someone starts the race
	for !room.Started {
		room, err = nextRoomInfo(conn)
		if err != nil {
			return err
		}
	}
	log.Printf("Race started, typing %q at %d wpm", room.Text, wpm)

	return typePassage(conn, code, room.Text, wpm)
}

// typePassage reports progress word by word at the configured speed, then
// sends the completion event.
func typePassage(conn *websocket.Conn, code, text string, wpm int) error {
	words := len(strings.Fields(text))
	if words == 0 {
		words = 1
	}
	interval := time.Minute / time.Duration(wpm)

	for typed := 1; typed <= words; typed++ {
		time.Sleep(interval)

		progress := float64(typed) / float64(words)
		if err := conn.WriteJSON(event{Event: "UpdateProgress", RoomCode: code, Progress: progress}); err != nil {
			return err
		}
	}

	if err := conn.WriteJSON(event{Event: "Completed", RoomCode: code}); err != nil {
		return err
	}
	log.Printf("Finished passage in room %s", code)

	// Placements arrive with the next snapshot someone triggers
	room, err := nextRoomInfo(conn)
	if err != nil {
		return nil
	}
	for _, m := range room.Players {
		if m.Nick != "" && m.Place != "" {
			log.Printf("  %s: %s", m.Nick, m.Place)
		}
	}
	return nil
}

// nextRoomInfo reads events until a RoomInfo arrives. Frames may carry
// several newline-separated events.
func nextRoomInfo(conn *websocket.Conn) (*engine.Room, error) {
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return nil, err
		}

		for _, payload := range strings.Split(string(frame), "\n") {
			var msg event
			if err := json.Unmarshal([]byte(payload), &msg); err != nil {
				continue
			}
			if msg.Event == "RoomInfo" && msg.Room != nil {
				return msg.Room, nil
			}
		}
	}
}

// parseWPM parses the typing speed, falling back to a sane default.
func parseWPM(s string) int {
	var wpm int
	if _, err := fmt.Sscanf(s, "%d", &wpm); err != nil || wpm <= 0 {
		return 60
	}
	return wpm
}
