package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/isdelr/medpredict-be/internal/api/flash"
	"github.com/isdelr/medpredict-be/internal/auth"
	"github.com/isdelr/medpredict-be/internal/models"
	"github.com/isdelr/medpredict-be/internal/services"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles registration, login, and logout.
type AuthHandler struct {
	users    services.UserServiceProvider
	sessions *auth.Manager
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users services.UserServiceProvider, sessions *auth.Manager) *AuthHandler {
	return &AuthHandler{users: users, sessions: sessions}
}

// credentialsPayload covers both the register and login bodies; unused
// fields stay empty.
type credentialsPayload struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func parseCredentials(r *http.Request) (credentialsPayload, error) {
	var p credentialsPayload
	if wantsJSON(r) {
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			return p, fmt.Errorf("invalid request body")
		}
		return p, nil
	}
	if err := r.ParseForm(); err != nil {
		return p, fmt.Errorf("invalid form data")
	}
	p.Username = r.PostFormValue("username")
	p.Email = r.PostFormValue("email")
	p.Password = r.PostFormValue("password")
	p.ConfirmPassword = r.PostFormValue("confirm_password")
	return p, nil
}

// Index redirects to the dashboard when a session is present, otherwise to
// the login page.
func (h *AuthHandler) Index(w http.ResponseWriter, r *http.Request) {
	if _, err := h.sessions.ClaimsFromRequest(r); err == nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// ShowRegister serves the registration form descriptor.
func (h *AuthHandler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	if _, err := h.sessions.ClaimsFromRequest(r); err == nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"page":   "register",
		"fields": []string{"username", "email", "password", "confirm_password"},
		"flash":  flash.Pop(w, r),
	})
}

// Register handles new user registration.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	payload, err := parseCredentials(r)
	if err != nil {
		h.registerFailure(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if payload.Username == "" || payload.Email == "" || payload.Password == "" {
		h.registerFailure(w, r, http.StatusBadRequest, "All fields are required!")
		return
	}
	// The browser form always submits a confirmation; JSON clients may omit it.
	if !wantsJSON(r) || payload.ConfirmPassword != "" {
		if payload.Password != payload.ConfirmPassword {
			h.registerFailure(w, r, http.StatusBadRequest, "Passwords do not match!")
			return
		}
	}
	if len(payload.Password) < 6 {
		h.registerFailure(w, r, http.StatusBadRequest, "Password must be at least 6 characters long!")
		return
	}

	user, err := h.users.CreateUser(payload.Username, payload.Email, payload.Password, models.RoleUser)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateCredential) {
			h.registerFailure(w, r, http.StatusConflict, "Username or email already exists!")
			return
		}
		log.Error().Err(err).Str("username", payload.Username).Msg("Failed to register user")
		h.registerFailure(w, r, http.StatusInternalServerError, "Failed to register user")
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusCreated, user)
		return
	}
	flash.Set(w, "success", "Registration successful! Please login.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *AuthHandler) registerFailure(w http.ResponseWriter, r *http.Request, status int, message string) {
	if wantsJSON(r) {
		writeJSONError(w, status, message)
		return
	}
	flash.Set(w, "danger", message)
	http.Redirect(w, r, "/register", http.StatusSeeOther)
}

// ShowLogin serves the login form descriptor.
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if _, err := h.sessions.ClaimsFromRequest(r); err == nil {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"page":   "login",
		"fields": []string{"username", "password"},
		"flash":  flash.Pop(w, r),
	})
}

// Login handles user authentication and session issuance.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	payload, err := parseCredentials(r)
	if err != nil {
		h.loginFailure(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if payload.Username == "" || payload.Password == "" {
		h.loginFailure(w, r, http.StatusBadRequest, "Username and password are required!")
		return
	}

	user, err := h.users.Authenticate(payload.Username, payload.Password)
	if err != nil {
		if !errors.Is(err, services.ErrInvalidCredentials) {
			log.Error().Err(err).Msg("Authentication lookup failed")
			h.loginFailure(w, r, http.StatusInternalServerError, "Login failed, please try again")
			return
		}
		log.Warn().Str("username", payload.Username).Msg("Failed authentication attempt")
		h.loginFailure(w, r, http.StatusUnauthorized, "Invalid username or password!")
		return
	}

	token, err := h.sessions.Generate(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate session token")
		h.loginFailure(w, r, http.StatusInternalServerError, "Failed to create session")
		return
	}
	h.sessions.SetSessionCookie(w, token)

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"token": token,
			"user":  user,
		})
		return
	}

	flash.Set(w, "success", fmt.Sprintf("Welcome back, %s!", user.Username))
	if user.IsAdmin() {
		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *AuthHandler) loginFailure(w http.ResponseWriter, r *http.Request, status int, message string) {
	if wantsJSON(r) {
		writeJSONError(w, status, message)
		return
	}
	flash.Set(w, "danger", message)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// Logout clears the session cookie. Idempotent: logging out twice is fine.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearSessionCookie(w)
	flash.Set(w, "info", "You have been logged out.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
