package model

import "time"

// MaxNotes caps how many notes may exist at once.
const MaxNotes = 6

type Note struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
	LastModified time.Time `json:"last_modified"`
}
