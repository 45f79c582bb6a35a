package httpapi

import (
	"time"

	"github.com/NikhilKartha5/ai-journal/internal/server/models"
)

// wireEntry is the JSON shape of a diary entry on the wire. The updatedAt
// stamp is the optimistic-lock version clients echo back as baseVersion.
type wireEntry struct {
	ID        string   `json:"_id"`
	Date      string   `json:"date"`
	Mood      string   `json:"mood"`
	Content   string   `json:"content"`
	Title     string   `json:"title,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Analysis  string   `json:"analysis"`
	UpdatedAt string   `json:"updatedAt"`
}

func toWireEntry(e *models.Entry) wireEntry {
	return wireEntry{
		ID:        e.ID,
		Date:      e.Date,
		Mood:      e.Mood,
		Content:   e.Content,
		Title:     e.Title,
		Tags:      e.Tags,
		Analysis:  e.Analysis,
		UpdatedAt: e.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

type wirePost struct {
	ID             string   `json:"id"`
	Content        string   `json:"content"`
	SentimentScore float64  `json:"sentimentScore"`
	Emotions       []string `json:"emotions"`
	Likes          int      `json:"likes"`
	CreatedAt      string   `json:"createdAt"`
	Author         string   `json:"author"`
}

func toWirePost(p *models.Post) wirePost {
	return wirePost{
		ID:             p.ID,
		Content:        p.Content,
		SentimentScore: p.SentimentScore,
		Emotions:       p.Emotions,
		Likes:          p.Likes,
		CreatedAt:      p.CreatedAt.UTC().Format(time.RFC3339Nano),
		Author:         p.Author,
	}
}

// parseVersion turns a client-supplied baseVersion stamp back into a time.
// An empty or malformed stamp yields the zero time, which disables the
// conflict check rather than failing the request.
func parseVersion(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
