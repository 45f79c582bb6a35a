// Package models defines the client-side data types for the journal: diary
// entries, their identifiers, sentiment analysis results, and the durable
// mutation queue.
package models

import (
	"strings"

	"github.com/NikhilKartha5/ai-journal/internal/common"
)

// Metadata bounds enforced before a mutation is accepted or queued.
const (
	MaxTitleLen = 240
	MaxTags     = 12
	MaxTagLen   = 32
)

// AnalysisResult is the structured sentiment result produced by the analysis
// collaborator and stored verbatim with the entry.
type AnalysisResult struct {
	SentimentScore float64  `json:"sentimentScore"`
	Emotions       []string `json:"emotions"`
	Summary        string   `json:"summary"`
	Suggestions    []string `json:"suggestions"`
}

// DiaryEntry is one journal entry as known to the client.
//
// Pending is true while a create/update has not been confirmed by the server.
// Temp distinguishes a never-synced local-only record from a synced record
// with an in-flight update: a record with Temp=true always has a numeric id.
type DiaryEntry struct {
	ID        EntryID        `json:"id"`
	Text      string         `json:"text"`
	Title     string         `json:"title,omitempty"`
	Tags      []string       `json:"tags,omitempty"`
	Timestamp string         `json:"timestamp"`
	Analysis  AnalysisResult `json:"analysis"`
	Pending   bool           `json:"pending,omitempty"`
	Temp      bool           `json:"temp,omitempty"`

	// UpdatedAt is the server's version stamp, empty until first synced.
	// It is carried as baseVersion on subsequent updates.
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// Validate checks the submission bounds. Entries failing validation are
// rejected before anything reaches the durable queue.
func (e *DiaryEntry) Validate() error {
	if strings.TrimSpace(e.Text) == "" {
		return common.ErrorEmptyText
	}
	if len(e.Title) > MaxTitleLen {
		return common.ErrorTitleTooLong
	}
	if len(e.Tags) > MaxTags {
		return common.ErrorTooManyTags
	}
	for _, tag := range e.Tags {
		if len(tag) > MaxTagLen {
			return common.ErrorTagTooLong
		}
	}
	return nil
}

// EntryChanges is a partial update to an existing entry. Nil fields are
// untouched.
type EntryChanges struct {
	Text  *string   `json:"content,omitempty"`
	Title *string   `json:"title,omitempty"`
	Tags  *[]string `json:"tags,omitempty"`
}

// Apply merges the changes into the entry.
func (c EntryChanges) Apply(e *DiaryEntry) {
	if c.Text != nil {
		e.Text = *c.Text
	}
	if c.Title != nil {
		e.Title = *c.Title
	}
	if c.Tags != nil {
		e.Tags = *c.Tags
	}
}
