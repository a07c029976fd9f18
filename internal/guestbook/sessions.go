package guestbook

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/maypok86/otter/v2"
	"go.uber.org/zap"
)

const sessionCookie = "guestbook_session"

// Sessions keeps one Controller per browser session. Idle sessions expire
// after the configured TTL.
type Sessions struct {
	backend Backend
	log     *zap.SugaredLogger
	ttl     time.Duration
	cache   *otter.Cache[string, *Controller]
}

func NewSessions(backend Backend, ttl time.Duration, log *zap.SugaredLogger) *Sessions {
	return &Sessions{
		backend: backend,
		log:     log,
		ttl:     ttl,
		cache: otter.Must(&otter.Options[string, *Controller]{
			MaximumSize:      10_000,
			ExpiryCalculator: otter.ExpiryAccessing[string, *Controller](ttl),
		}),
	}
}

// Controller returns the controller of the request's session, starting a new
// session when the request has none or it has expired.
func (s *Sessions) Controller(w http.ResponseWriter, r *http.Request) *Controller {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		if c, ok := s.cache.GetIfPresent(cookie.Value); ok {
			return c
		}
	}

	id := uuid.NewString()
	c := NewController(s.backend, s.log.With("session", id))
	s.cache.Set(id, c)

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	s.log.Debugw("new session", "session", id)
	return c
}
