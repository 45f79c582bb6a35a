package models

import (
	"strings"
	"testing"
	"time"

	"github.com/NikhilKartha5/ai-journal/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiaryEntry_Validate(t *testing.T) {
	valid := DiaryEntry{Text: "Feeling okay"}

	tests := []struct {
		name    string
		mutate  func(e *DiaryEntry)
		wantErr error
	}{
		{"valid", func(e *DiaryEntry) {}, nil},
		{"empty text", func(e *DiaryEntry) { e.Text = "" }, common.ErrorEmptyText},
		{"whitespace text", func(e *DiaryEntry) { e.Text = "  \n\t " }, common.ErrorEmptyText},
		{"title too long", func(e *DiaryEntry) { e.Title = strings.Repeat("a", MaxTitleLen+1) }, common.ErrorTitleTooLong},
		{"too many tags", func(e *DiaryEntry) { e.Tags = make([]string, MaxTags+1) }, common.ErrorTooManyTags},
		{"tag too long", func(e *DiaryEntry) { e.Tags = []string{strings.Repeat("x", MaxTagLen+1)} }, common.ErrorTagTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := valid
			tt.mutate(&e)
			err := e.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestEntryChanges_Apply(t *testing.T) {
	e := DiaryEntry{Text: "old", Title: "keep", Tags: []string{"a"}}

	text := "new"
	tags := []string{"b", "c"}
	EntryChanges{Text: &text, Tags: &tags}.Apply(&e)

	assert.Equal(t, "new", e.Text)
	assert.Equal(t, "keep", e.Title, "nil field must be untouched")
	assert.Equal(t, []string{"b", "c"}, e.Tags)
}

func TestAnalysisRoundTrip(t *testing.T) {
	entry := DiaryEntry{
		ID:        TempID(1000),
		Text:      "Feeling okay",
		Title:     "Tuesday",
		Tags:      []string{"work", "sleep"},
		Timestamp: "2026-08-31T09:00:00Z",
		Analysis: AnalysisResult{
			SentimentScore: 6.5,
			Emotions:       []string{"Calm", "Hope"},
			Summary:        "A steady day.",
			Suggestions:    []string{"Take a walk", "Sleep early", "Call a friend"},
		},
	}

	payload, err := NewCreatePayload(&entry)
	require.NoError(t, err)

	// Simulate the server storing and echoing the record back.
	srv := ServerEntry{
		ID:        "64f1a2b3",
		Date:      payload.Date,
		Content:   payload.Content,
		Title:     payload.Title,
		Tags:      payload.Tags,
		Analysis:  payload.Analysis,
		UpdatedAt: "2026-08-31T09:00:01.000Z",
	}
	got := srv.ToDiaryEntry()

	assert.Equal(t, entry.Text, got.Text)
	assert.Equal(t, entry.Title, got.Title)
	assert.Equal(t, entry.Tags, got.Tags)
	assert.Equal(t, entry.Analysis, got.Analysis, "analysis serialization must be lossless")
	assert.Equal(t, ServerID("64f1a2b3"), got.ID)
}

func TestServerEntry_MalformedAnalysis(t *testing.T) {
	srv := ServerEntry{ID: "x", Content: "text", Analysis: "{not json"}
	got := srv.ToDiaryEntry()
	assert.Equal(t, AnalysisResult{}, got.Analysis)
	assert.Equal(t, "text", got.Text)
}

func TestQueueKeys(t *testing.T) {
	id := TempID(1000)
	assert.Equal(t, "create-1000", CreateKey(id))
	assert.Equal(t, "delete-1000", DeleteKey(id))

	a := UpdateKey(ServerID("x"), time.Unix(0, 1))
	b := UpdateKey(ServerID("x"), time.Unix(0, 2))
	assert.NotEqual(t, a, b, "distinct edits must occupy distinct queue slots")
}
