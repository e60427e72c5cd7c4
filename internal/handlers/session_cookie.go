package handlers

import (
	"net/http"

	"github.com/ternarybob/respondeo/internal/services/session"
)

// SessionCookieName carries the session identifier between requests.
const SessionCookieName = "respondeo_session"

// resolveSession returns the caller's session, minting one (and setting the
// cookie) when the request carries no valid session identifier.
func resolveSession(w http.ResponseWriter, r *http.Request, manager *session.Manager) *session.Session {
	id := ""
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		id = cookie.Value
	}

	s, created := manager.GetOrCreate(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookieName,
			Value:    s.ID(),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return s
}
