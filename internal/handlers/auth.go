package handlers

import (
	"net/http"
	"strings"
	"time"

	"book-catalog/internal/auth"
	"book-catalog/internal/models"

	"go.uber.org/zap"
)

// AuthViewModel holds data for the register and login pages. User is always
// nil on these pages; the field exists so the shared nav can render.
type AuthViewModel struct {
	User  *models.User
	Error string
}

// RegisterForm renders the registration page.
func (h *Handlers) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, "register.html", AuthViewModel{})
}

// Register handles the registration form submission. Validation is
// fail-fast: the first violated rule produces its message and nothing is
// persisted.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render(w, "register.html", AuthViewModel{Error: "Invalid form submission"})
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	confirmation := r.FormValue("password_confirmation")

	switch {
	case username == "":
		h.render(w, "register.html", AuthViewModel{Error: "Please enter a username."})
		return
	case password == "":
		h.render(w, "register.html", AuthViewModel{Error: "Please enter a password."})
		return
	case confirmation == "":
		h.render(w, "register.html", AuthViewModel{Error: "Please confirm your password."})
		return
	case password != confirmation:
		h.render(w, "register.html", AuthViewModel{Error: "Passwords do not match."})
		return
	}

	taken, err := h.store.UsernameExists(username)
	if err != nil {
		h.logger.Error("username lookup failed", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if taken {
		h.render(w, "register.html", AuthViewModel{Error: "Username already exists."})
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		h.render(w, "register.html", AuthViewModel{Error: "Could not process that password."})
		return
	}

	user, err := h.store.CreateUser(username, hash)
	if err != nil {
		h.logger.Error("user creation failed", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.Info("user registered", zap.Int64("user_id", user.ID))

	// No auto-login after registration; the user lands back on the index
	// page and logs in from there.
	h.render(w, "index.html", IndexViewModel{Message: "Account created. Please log in."})
}

// LoginForm renders the login page.
func (h *Handlers) LoginForm(w http.ResponseWriter, r *http.Request) {
	// If already logged in, go straight to search
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if _, err := h.store.ValidateSession(cookie.Value); err == nil {
			http.Redirect(w, r, "/search", http.StatusFound)
			return
		}
	}
	h.render(w, "login.html", AuthViewModel{})
}

// Login handles the login form submission. Any session the browser already
// holds is discarded before the attempt is processed, so a failed or
// fixated login can never ride on stale identity.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.store.DeleteSession(cookie.Value); err != nil {
			h.logger.Error("failed to delete stale session", zap.Error(err))
		}
	}
	h.clearSessionCookie(w)

	if err := r.ParseForm(); err != nil {
		h.render(w, "login.html", AuthViewModel{Error: "Invalid form submission"})
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	if username == "" {
		h.render(w, "login.html", AuthViewModel{Error: "Please enter a username."})
		return
	}
	if password == "" {
		h.render(w, "login.html", AuthViewModel{Error: "Please enter a password."})
		return
	}

	// Lookup and verify failures share one message so the response does not
	// reveal which half was wrong.
	user, err := h.store.GetUserByUsername(username)
	if err != nil || !auth.CheckPassword(password, user.PasswordHash) {
		h.render(w, "login.html", AuthViewModel{Error: "Invalid username or password."})
		return
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		h.logger.Error("failed to generate session token", zap.Error(err))
		h.render(w, "login.html", AuthViewModel{Error: "An error occurred. Please try again."})
		return
	}

	expiresAt := time.Now().UTC().Add(SessionDuration)
	if err := h.store.CreateSession(token, user.ID, expiresAt); err != nil {
		h.logger.Error("failed to create session", zap.Error(err))
		h.render(w, "login.html", AuthViewModel{Error: "An error occurred. Please try again."})
		return
	}

	h.setSessionCookie(w, token)

	// Redirect rather than render so subsequent navigation sees the
	// authenticated state.
	http.Redirect(w, r, "/search", http.StatusFound)
}

// Logout clears the session and redirects to the landing page. Calling it
// with no active session is not an error.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.store.DeleteSession(cookie.Value); err != nil {
			h.logger.Error("failed to delete session", zap.Error(err))
		}
	}
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}
