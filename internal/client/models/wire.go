package models

import "encoding/json"

// ServerEntry is the diary record as the API returns it. Analysis travels
// JSON-stringified inside the document, mirroring how the backend stores it.
type ServerEntry struct {
	ID        string   `json:"_id"`
	Date      string   `json:"date"`
	Mood      string   `json:"mood"`
	Content   string   `json:"content"`
	Title     string   `json:"title,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Analysis  string   `json:"analysis"`
	UpdatedAt string   `json:"updatedAt"`
}

// CreatePayload is the body of POST /api/diary.
type CreatePayload struct {
	Date     string   `json:"date"`
	Mood     string   `json:"mood"`
	Content  string   `json:"content"`
	Title    string   `json:"title,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Analysis string   `json:"analysis"`
}

// UpdatePayload is the body of PUT /api/diary/:id. BaseVersion carries the
// version stamp the client last observed; the server rejects the write with a
// conflict when it no longer matches.
type UpdatePayload struct {
	Content     *string   `json:"content,omitempty"`
	Title       *string   `json:"title,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	BaseVersion string    `json:"baseVersion,omitempty"`
}

// NewCreatePayload shapes a local entry for the API. The analysis is
// serialized losslessly; ToDiaryEntry reverses it.
func NewCreatePayload(e *DiaryEntry) (CreatePayload, error) {
	analysis, err := json.Marshal(e.Analysis)
	if err != nil {
		return CreatePayload{}, err
	}
	return CreatePayload{
		Date:     e.Timestamp,
		Content:  e.Text,
		Title:    e.Title,
		Tags:     e.Tags,
		Analysis: string(analysis),
	}, nil
}

// ToDiaryEntry converts a server record into the client's local shape.
// A malformed analysis blob yields a zero AnalysisResult rather than an
// error; the entry itself is still usable.
func (s *ServerEntry) ToDiaryEntry() DiaryEntry {
	var analysis AnalysisResult
	if s.Analysis != "" {
		_ = json.Unmarshal([]byte(s.Analysis), &analysis)
	}
	return DiaryEntry{
		ID:        ServerID(s.ID),
		Text:      s.Content,
		Title:     s.Title,
		Tags:      s.Tags,
		Timestamp: s.Date,
		Analysis:  analysis,
		UpdatedAt: s.UpdatedAt,
	}
}
