package web

import (
	"crypto/subtle"
	"net/http"

	"github.com/roach88/precario/internal/auth"
	"github.com/roach88/precario/internal/display"
)

// handleDisplayQueues serves the feed polled by the TV app. The body is the
// bare feed document, not the API envelope, and carries a strong ETag so an
// unchanged feed costs a 304.
func (s *Server) handleDisplayQueues(w http.ResponseWriter, r *http.Request) {
	if !s.displayAuthorized(r) {
		writeUnauthorized(w, r)
		return
	}

	queues, err := s.svc.Queues(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	feed := display.BuildFeed(queues)
	etag, err := feed.ETag()
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if display.MatchesETag(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, feed)
}

// displayAuthorized checks the display token from ?token= or a bearer header.
// No configured token means the feed is public.
func (s *Server) displayAuthorized(r *http.Request) bool {
	if s.displayToken == "" {
		return true
	}
	token := r.URL.Query().Get("token")
	if bearer, ok := auth.BearerToken(r); ok {
		token = bearer
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.displayToken)) == 1
}
