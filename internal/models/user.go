package models

import (
	"time"

	"github.com/google/uuid"
)

// Status describes what a user is currently doing, as shown in the directory.
type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
	// StatusWaiting means the user sits alone in a channel.
	StatusWaiting Status = "waiting"
	// StatusBusy means the user is keying with a partner.
	StatusBusy Status = "busy"
)

// User is the public view of a registered operator. Credentials live in the
// account subsystem; this service only reads users.
type User struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Callsign  string    `db:"callsign" json:"callsign"`
	Status    Status    `db:"-" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Follow is a directed friendship edge.
type Follow struct {
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	TargetID  uuid.UUID `db:"target_id" json:"target_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// UserList is the wire shape of user collections.
type UserList struct {
	Data  []User `json:"data"`
	Count int    `json:"count"`
}
