package engine

const (
	// MaxColorHue bounds the random member color hue: [0, 360).
	MaxColorHue = 360

	// FirstPlacement is the value of the placement counter in a fresh room.
	FirstPlacement = 1
)

// Member is one connection's participation record within a room.
type Member struct {
	ID       string  `json:"id"`
	Nick     string  `json:"nick"`
	Progress float64 `json:"progress"`
	IsHost   bool    `json:"isHost"`
	Color    float64 `json:"color"`
	Place    string  `json:"place"`
}

// Room is a single race session. The JSON tags are the wire format of the
// RoomInfo broadcast, so renaming a field here is a protocol change.
type Room struct {
	Players   []*Member `json:"players"`
	Text      string    `json:"text"`
	Code      string    `json:"code"`
	NextPlace int       `json:"nextPlace"`
	Started   bool      `json:"start"`
}
