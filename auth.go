package main

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
)

const (
	sessionCookieName = "session"
	csrfCookieName    = "csrf"
	csrfFieldName     = "csrf_token"
)

// AuthProvider verifies credentials and owns the session lifecycle.
// Authenticate returns nil, nil for wrong credentials.
type AuthProvider interface {
	Authenticate(ctx context.Context, username, password string) (*Identity, error)
	Login(ctx context.Context, w http.ResponseWriter, id Identity) error
	Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) error
	Identify(r *http.Request) (*Identity, error)
}

type sessionAuth struct {
	db            *sqlx.DB
	users         UserRepository
	ttl           time.Duration
	secureCookies bool
}

func newSessionAuth(db *sqlx.DB, users UserRepository, ttl time.Duration, secure bool) *sessionAuth {
	return &sessionAuth{db: db, users: users, ttl: ttl, secureCookies: secure}
}

func (a *sessionAuth) Authenticate(ctx context.Context, username, password string) (*Identity, error) {
	user, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil || !checkPassword(user.PasswordHash, password) {
		return nil, nil
	}
	return &Identity{UserID: user.ID, Username: user.Username}, nil
}

func (a *sessionAuth) Login(ctx context.Context, w http.ResponseWriter, id Identity) error {
	token, err := createSession(ctx, a.db, id.UserID, a.ttl)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   a.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(a.ttl.Seconds()),
	})
	return nil
}

// Logout clears the cookie even when there was no session to delete.
func (a *sessionAuth) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   a.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})

	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil
	}
	return deleteSession(ctx, a.db, cookie.Value)
}

func (a *sessionAuth) Identify(r *http.Request) (*Identity, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil, nil
	}

	session, err := getSession(r.Context(), a.db, cookie.Value)
	if err != nil || session == nil {
		return nil, err
	}

	user, err := a.users.GetByID(r.Context(), session.UserID)
	if err != nil || user == nil {
		return nil, err
	}

	return &Identity{UserID: user.ID, Username: user.Username}, nil
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

func createSession(ctx context.Context, db *sqlx.DB, userID int64, ttl time.Duration) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", fmt.Errorf("generating session token: %w", err)
	}

	expiresAt := time.Now().UTC().Add(ttl)
	_, err = db.ExecContext(ctx, `
		INSERT INTO sessions (token, user_id, expires_at)
		VALUES (?, ?, ?)`, token, userID, expiresAt)
	if err != nil {
		return "", fmt.Errorf("inserting session: %w", err)
	}

	return token, nil
}

func getSession(ctx context.Context, db *sqlx.DB, token string) (*Session, error) {
	var session Session
	err := db.GetContext(ctx, &session, `
		SELECT token, user_id, expires_at
		FROM sessions
		WHERE token = ? AND expires_at > ?`, token, time.Now().UTC())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning session: %w", err)
	}

	return &session, nil
}

func deleteSession(ctx context.Context, db *sqlx.DB, token string) error {
	_, err := db.ExecContext(ctx, "DELETE FROM sessions WHERE token = ?", token)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

func cleanupExpiredSessions(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at < ?", time.Now().UTC())
	if err != nil {
		return fmt.Errorf("cleaning up expired sessions: %w", err)
	}
	return nil
}

// CSRF protection using double-submit cookie pattern

func (a *App) setCSRFCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		Secure:   a.secureCookies,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(a.sessionTTL.Seconds()),
	})
}

func getCSRFToken(r *http.Request) string {
	cookie, err := r.Cookie(csrfCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func validateCSRF(r *http.Request) bool {
	cookieToken := getCSRFToken(r)
	formToken := r.FormValue(csrfFieldName)

	if cookieToken == "" || formToken == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(cookieToken), []byte(formToken)) == 1
}

func parseFormWithCSRF(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return false
	}
	if !validateCSRF(r) {
		http.Error(w, "Invalid CSRF token", http.StatusForbidden)
		return false
	}
	return true
}

// ensureCSRFToken returns existing token or creates a new one
func (a *App) ensureCSRFToken(w http.ResponseWriter, r *http.Request) string {
	token := getCSRFToken(r)
	if token != "" {
		return token
	}

	token, err := generateToken()
	if err != nil {
		return ""
	}
	a.setCSRFCookie(w, token)
	return token
}
