// Package models defines the server-side persistence shapes.
package models

import "time"

// User is an account row. IDs are UUIDs.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Entry is one diary record. IDs are ULIDs so they sort by creation time.
// Analysis is stored as an opaque JSON blob exactly as the client shipped it.
// UpdatedAt doubles as the optimistic-lock version stamp: an update carrying
// a baseVersion that no longer matches it is rejected as a conflict.
type Entry struct {
	ID        string
	UserID    string
	Date      string
	Mood      string
	Title     string
	Content   string
	Tags      []string
	Analysis  string
	UpdatedAt time.Time
}

// Post is one anonymized community-feed item.
type Post struct {
	ID             string
	UserID         string
	Content        string
	SentimentScore float64
	Emotions       []string
	Likes          int
	Author         string
	CreatedAt      time.Time
}
