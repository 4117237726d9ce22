package models

import "time"

/*** Durable trip document (owned by the storage layer) ***/

type Trip struct {
	ID      string `json:"id" gorm:"primaryKey"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

type Card struct {
	ID            string  `json:"id" gorm:"primaryKey"`
	TripID        string  `json:"trip" gorm:"index"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Order         float64 `json:"order"`
	CoordinateLat float64 `json:"coordinateLat"`
	CoordinateLon float64 `json:"coordinateLon"`
	StartDate     string  `json:"startDate"`
	EndDate       string  `json:"endDate"`
}

type Thread struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	CardID        string    `json:"cardId" gorm:"index"`
	Topic         string    `json:"topic"`
	Content       string    `json:"content"`
	AuthorName    string    `json:"authorName"`
	AuthorPicture string    `json:"authorPicture"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Message struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	ThreadID      string    `json:"threadId" gorm:"index"`
	Owner         string    `json:"owner"`
	Content       string    `json:"content"`
	Order         float64   `json:"order"`
	AuthorName    string    `json:"authorName"`
	AuthorPicture string    `json:"authorPicture"`
	CreatedAt     time.Time `json:"createdAt"`
}

/*** Real-time session state ***/

// Presence is the per-connection identity shown to other room occupants.
// The connection id, not the user id, is the registry key: the same user
// may hold several live connections (multiple tabs or devices).
type Presence struct {
	ConnectionID string `json:"connectionId"`
	UserID       string `json:"userId"`
	DisplayName  string `json:"displayName"`
	AvatarURL    string `json:"avatarUrl"`
}

type WSFrame struct {
	Type string      `json:"type"` // "join","updateCard","addCard","renameTrip","addMessage","addThread","leave","snapshot","presenceUpdate","error"
	Data interface{} `json:"data"`
}

type JoinRequest struct {
	TripID      string `json:"roomId"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
}

type CardEvent struct {
	TripID string `json:"roomId"`
	Card   *Card  `json:"card"`
}

type RenameEvent struct {
	TripID string `json:"roomId"`
	Name   string `json:"name"`
}

type MessageEvent struct {
	TripID   string   `json:"roomId"`
	ThreadID string   `json:"threadId"`
	Message  *Message `json:"message"`
}

type ThreadEvent struct {
	TripID string  `json:"roomId"`
	CardID string  `json:"cardId"`
	Thread *Thread `json:"thread"`
}

// Snapshot is the full document state sent privately to a joining
// connection: the trip's own fields plus its ordered card list.
type Snapshot struct {
	Trip
	Events []Card `json:"events"`
}

type PresenceUpdate struct {
	UsersConnected map[string]Presence `json:"usersConnected"`
}

// ErrorAck tells the originating connection that its mutation was not
// persisted (and therefore not broadcast), with enough context for the
// client to retry or roll back optimistic state.
type ErrorAck struct {
	Event  string `json:"event"`
	TripID string `json:"roomId,omitempty"`
	Reason string `json:"reason"`
}
