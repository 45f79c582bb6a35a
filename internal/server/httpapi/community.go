package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/NikhilKartha5/ai-journal/internal/common"
	"github.com/NikhilKartha5/ai-journal/internal/server/models"
	"github.com/go-chi/chi/v5"
)

type publishRequest struct {
	Content        string   `json:"content"`
	SentimentScore float64  `json:"sentimentScore"`
	Emotions       []string `json:"emotions"`
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	posts, err := s.repos.Posts().List(r.Context(), s.cfg.FeedLimit)
	if err != nil {
		s.logger.Error(r.Context(), "failed to list posts", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	out := make([]wirePost, 0, len(posts))
	for i := range posts {
		out = append(out, toWirePost(&posts[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// handlePublish shares a post under a generated pseudonym. The user id is
// stored for moderation but never exposed on the feed.
func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req publishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	post := &models.Post{
		ID:             s.newULID(),
		UserID:         userID,
		Content:        req.Content,
		SentimentScore: req.SentimentScore,
		Emotions:       req.Emotions,
		Author:         pseudonym(userID),
		CreatedAt:      s.now().UTC(),
	}
	if err := s.repos.Posts().Create(r.Context(), post); err != nil {
		s.logger.Error(r.Context(), "failed to create post", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, toWirePost(post))
}

func (s *Server) handleLike(w http.ResponseWriter, r *http.Request) {
	err := s.repos.Posts().Like(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, common.ErrorNotFound) {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}
	if err != nil {
		s.logger.Error(r.Context(), "failed to like post", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "liked"})
}

// pseudonym derives a stable, non-reversible display name from the user id,
// so a user's posts are linkable to each other but not to the account.
func pseudonym(userID string) string {
	var sum uint32
	for i := 0; i < len(userID); i++ {
		sum = sum*31 + uint32(userID[i])
	}
	adjectives := []string{"Quiet", "Bright", "Gentle", "Steady", "Warm", "Calm", "Bold", "Soft"}
	animals := []string{"Otter", "Heron", "Fox", "Lark", "Badger", "Wren", "Hare", "Owl"}
	return fmt.Sprintf("%s%s%d",
		adjectives[sum%uint32(len(adjectives))],
		animals[(sum/8)%uint32(len(animals))],
		sum%100)
}
