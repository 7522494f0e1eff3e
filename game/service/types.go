package service

import "time"

// RoomSummary is the compact room listing returned by the observer API.
type RoomSummary struct {
	Code           string    `json:"code"`
	MemberCount    int       `json:"member_count"`
	Started        bool      `json:"start"`
	CreatedAt      time.Time `json:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}
