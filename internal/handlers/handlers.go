// Package handlers contains the HTTP handlers for the catalog web app.
package handlers

import (
	"context"
	"html/template"
	"net/http"
	"path/filepath"
	"time"

	"book-catalog/internal/models"
	"book-catalog/internal/storage"

	"go.uber.org/zap"
)

// Context key type to avoid collisions.
type contextKey string

const (
	// UserContextKey is the context key for the authenticated user.
	UserContextKey contextKey = "user"
	// SessionCookieName is the name of the session cookie.
	SessionCookieName = "session"
	// SessionDuration is the server-side lifetime of a session row. The
	// cookie itself carries no MaxAge, so it dies with the browser session.
	SessionDuration = 24 * time.Hour
)

// Store is the storage abstraction the handlers depend on.
// *storage.DB satisfies it; tests may substitute their own.
type Store interface {
	GetUserByUsername(username string) (*models.User, error)
	UsernameExists(username string) (bool, error)
	CreateUser(username, passwordHash string) (*models.User, error)

	SearchBooks(field storage.SearchField, term string) ([]models.Book, error)
	GetBookByID(id int64) (*models.Book, error)

	CreateSession(token string, userID int64, expiresAt time.Time) error
	ValidateSession(token string) (*models.User, error)
	DeleteSession(token string) error
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	store        Store
	logger       *zap.Logger
	templateDir  string
	secureCookie bool
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(store Store, logger *zap.Logger, templateDir string, secureCookie bool) *Handlers {
	return &Handlers{store: store, logger: logger, templateDir: templateDir, secureCookie: secureCookie}
}

// GetUserFromContext retrieves the authenticated user from request context.
func GetUserFromContext(r *http.Request) *models.User {
	if user, ok := r.Context().Value(UserContextKey).(*models.User); ok {
		return user
	}
	return nil
}

// RequireAuth wraps handlers to require an authenticated session. Requests
// without a valid session are redirected to the login page; otherwise the
// user is added to the request context.
func (h *Handlers) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || cookie.Value == "" {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		user, err := h.store.ValidateSession(cookie.Value)
		if err != nil {
			// Invalid or expired session, clear the cookie
			h.clearSessionCookie(w)
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IndexViewModel holds data for the landing page.
type IndexViewModel struct {
	Message string
	User    *models.User
}

// Index renders the landing page.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	vm := IndexViewModel{}
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if user, err := h.store.ValidateSession(cookie.Value); err == nil {
			vm.User = user
		}
	}
	h.render(w, "index.html", vm)
}

func (h *Handlers) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handlers) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handlers) render(w http.ResponseWriter, viewName string, data any) {
	tmpl, err := template.ParseFiles(
		filepath.Join(h.templateDir, "base.html"),
		filepath.Join(h.templateDir, viewName),
	)
	if err != nil {
		h.logger.Error("template parse failed", zap.String("view", viewName), zap.Error(err))
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		h.logger.Error("template execution failed", zap.String("view", viewName), zap.Error(err))
	}
}
