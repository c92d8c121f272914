package webdav

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/shocklateboy92/bonarr/internal/config"
)

const authRealm = "Bonarr library"

// AuthMiddleware wraps an http.Handler with HTTP Basic Authentication
type AuthMiddleware struct {
	next     http.Handler
	username string
	password string
	log      *slog.Logger
}

// NewAuthMiddleware creates authentication middleware for the WebDAV server.
// If auth is disabled, returns the original handler unwrapped.
func NewAuthMiddleware(next http.Handler, cfg config.WebDAVAuthConfig) http.Handler {
	if !cfg.Enabled {
		return next
	}

	return &AuthMiddleware{
		next:     next,
		username: cfg.Username,
		password: cfg.Password,
		log:      slog.With("component", "webdav-auth"),
	}
}

// ServeHTTP implements http.Handler
func (m *AuthMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	username, password, ok := r.BasicAuth()
	switch {
	case !ok:
		m.unauthorized(w, r, "missing credentials")
	case !m.validCredentials(username, password):
		m.unauthorized(w, r, "invalid credentials")
	default:
		m.next.ServeHTTP(w, r)
	}
}

// validCredentials compares both fields in constant time.
func (m *AuthMiddleware) validCredentials(username, password string) bool {
	usernameMatch := subtle.ConstantTimeCompare([]byte(username), []byte(m.username)) == 1
	passwordMatch := subtle.ConstantTimeCompare([]byte(password), []byte(m.password)) == 1
	return usernameMatch && passwordMatch
}

func (m *AuthMiddleware) unauthorized(w http.ResponseWriter, r *http.Request, reason string) {
	m.log.Warn("WebDAV auth failed",
		"reason", reason,
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
	)

	w.Header().Set("WWW-Authenticate", `Basic realm="`+authRealm+`"`)
	http.Error(w, "401 Unauthorized", http.StatusUnauthorized)
}

// WarnWeakConfig logs warnings for auth settings that are likely mistakes.
func WarnWeakConfig(cfg config.WebDAVAuthConfig) {
	if !cfg.Enabled {
		slog.Info("WebDAV authentication is disabled")
		return
	}

	if cfg.Password == "" {
		slog.Warn("WebDAV auth enabled but password is empty")
	} else if len(cfg.Password) < 8 {
		slog.Warn("WebDAV password is less than 8 characters, consider using a stronger password")
	}
}
