package models

import "time"

// ChatConversation is the hot-path record the cache and query pipeline
// operate on: a named history scoped to a principal and, optionally, an
// app and end user. History is appended to on every query and read back
// in full to seed the next turn's BUILD_MESSAGES phase.
type ChatConversation struct {
	ID        string    `json:"id"`
	Owner     Owner     `json:"owner"`
	AppID     string    `json:"app_id,omitempty"`
	EndUserID string    `json:"end_user_id,omitempty"`
	Name      string    `json:"name,omitempty"`
	History   []Message `json:"history"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
