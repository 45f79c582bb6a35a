// Package httpapi implements the REST surface of the journal backend.
package httpapi

import (
	"crypto/rand"
	"net/http"
	"time"

	"github.com/NikhilKartha5/ai-journal/internal/logging"
	"github.com/NikhilKartha5/ai-journal/internal/server/config"
	"github.com/NikhilKartha5/ai-journal/internal/server/db"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/oklog/ulid/v2"
)

// Server holds the handler dependencies.
type Server struct {
	cfg    config.Config
	repos  db.RepositoryManager
	logger logging.Logger
	now    func() time.Time
}

func NewServer(cfg config.Config, repos db.RepositoryManager, logger logging.Logger) *Server {
	return &Server{cfg: cfg, repos: repos, logger: logger, now: time.Now}
}

// newULID returns a lexically sortable id for entries and posts.
func (s *Server) newULID() string {
	return ulid.MustNew(ulid.Timestamp(s.now()), rand.Reader).String()
}

// Router assembles the chi router: open auth routes behind a rate limit,
// everything else behind JWT.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	r.Group(func(r chi.Router) {
		r.Use(RateLimit(s.cfg.RateLimitRPS, s.cfg.RateBurst))
		r.Post("/api/auth/register", s.handleRegister)
		r.Post("/api/auth/login", s.handleLogin)
	})

	r.Group(func(r chi.Router) {
		r.Use(JWTAuth([]byte(s.cfg.SecretKey)))

		r.Get("/api/diary", s.handleListEntries)
		r.Post("/api/diary", s.handleCreateEntry)
		r.Put("/api/diary/{id}", s.handleUpdateEntry)
		r.Delete("/api/diary/{id}", s.handleDeleteEntry)
		r.Delete("/api/diary", s.handleDeleteAll)

		r.Get("/api/community", s.handleFeed)
		r.Post("/api/community", s.handlePublish)
		r.Post("/api/community/{id}/like", s.handleLike)
	})

	return r
}
