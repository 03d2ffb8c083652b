package models

import "time"

type User struct {
	ID         int64     `json:"id"`
	ExternalID string    `json:"external_id"`
	Name       string    `json:"name,omitempty"`
	Username   string    `json:"username,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// UserInfo carries optional profile details reported by the chat front end.
type UserInfo struct {
	Name     string
	Username string
}
