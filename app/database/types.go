package database

import (
	"time"
)

type Reading struct {
	ID        string // Database UUID
	Date      string // YYYY-MM-DD, unique
	Title     string // Liturgical day label
	Content   string // JSON-encoded daily readings
	Source    string // USCCB or API.Bible (Fallback)
	CreatedAt time.Time
}

type Message struct {
	ID        string
	Date      string
	UserID    string
	Content   string
	CreatedAt time.Time
}
