package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/NikhilKartha5/ai-journal/internal/common"
	"github.com/NikhilKartha5/ai-journal/internal/server/models"
	"github.com/go-chi/chi/v5"
)

const maxEntryBody = 1 << 20 // 1MB

type createEntryRequest struct {
	Date     string   `json:"date"`
	Mood     string   `json:"mood"`
	Content  string   `json:"content"`
	Title    string   `json:"title"`
	Tags     []string `json:"tags"`
	Analysis string   `json:"analysis"`
}

type updateEntryRequest struct {
	Mood        *string   `json:"mood"`
	Content     *string   `json:"content"`
	Title       *string   `json:"title"`
	Tags        *[]string `json:"tags"`
	BaseVersion string    `json:"baseVersion"`
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxEntryBody)
	var req createEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}
	if req.Date == "" {
		req.Date = s.now().UTC().Format(time.RFC3339)
	}

	entry := &models.Entry{
		ID:        s.newULID(),
		UserID:    userID,
		Date:      req.Date,
		Mood:      req.Mood,
		Title:     req.Title,
		Content:   req.Content,
		Tags:      req.Tags,
		Analysis:  req.Analysis,
		UpdatedAt: s.now().UTC(),
	}
	if err := s.repos.Entries().Create(r.Context(), entry); err != nil {
		s.logger.Error(r.Context(), "failed to create entry", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, toWireEntry(entry))
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	entries, err := s.repos.Entries().ListByUser(r.Context(), userID)
	if err != nil {
		s.logger.Error(r.Context(), "failed to list entries", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	out := make([]wireEntry, 0, len(entries))
	for i := range entries {
		out = append(out, toWireEntry(&entries[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleUpdateEntry applies a partial update under optimistic locking. A
// stale baseVersion is answered with 409 and the record's current state so
// the client can offer a manual resolution.
func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id := chi.URLParam(r, "id")

	r.Body = http.MaxBytesReader(w, r.Body, maxEntryBody)
	var req updateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := s.repos.Entries().Get(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusNotFound, "entry not found")
			return
		}
		s.logger.Error(r.Context(), "failed to load entry", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if req.Content != nil {
		if strings.TrimSpace(*req.Content) == "" {
			writeError(w, http.StatusBadRequest, "content cannot be empty")
			return
		}
		entry.Content = *req.Content
	}
	if req.Mood != nil {
		entry.Mood = *req.Mood
	}
	if req.Title != nil {
		entry.Title = *req.Title
	}
	if req.Tags != nil {
		entry.Tags = *req.Tags
	}
	entry.UpdatedAt = s.now().UTC()

	err = s.repos.Entries().Update(r.Context(), entry, parseVersion(req.BaseVersion))
	switch {
	case errors.Is(err, common.ErrVersionConflict):
		// Return the state that won so the client can merge.
		current, getErr := s.repos.Entries().Get(r.Context(), userID, id)
		if getErr != nil {
			s.logger.Error(r.Context(), "failed to load conflicting entry", "error", getErr)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, http.StatusConflict, map[string]any{
			"conflict": true,
			"server":   toWireEntry(current),
		})
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "entry not found")
	case err != nil:
		s.logger.Error(r.Context(), "failed to update entry", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	default:
		writeJSON(w, http.StatusOK, toWireEntry(entry))
	}
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	err := s.repos.Entries().Delete(r.Context(), userID, chi.URLParam(r, "id"))
	if errors.Is(err, common.ErrorNotFound) {
		writeError(w, http.StatusNotFound, "entry not found")
		return
	}
	if err != nil {
		s.logger.Error(r.Context(), "failed to delete entry", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Entry deleted"})
}

func (s *Server) handleDeleteAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := s.repos.Entries().DeleteByUser(r.Context(), userID); err != nil {
		s.logger.Error(r.Context(), "failed to delete entries", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "All entries deleted"})
}
