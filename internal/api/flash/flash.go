// Package flash carries one-shot user-facing messages across redirects via a
// short-lived cookie, mirroring the flash semantics of the browser flow.
package flash

import (
	"net/http"
	"net/url"
	"strings"
)

const cookieName = "flash"

// Message is a single flash notice with a severity level.
type Message struct {
	Level string `json:"level"` // "success", "info", "warning", "danger"
	Text  string `json:"text"`
}

// Set stores a flash message for the next request.
func Set(w http.ResponseWriter, level, text string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    url.QueryEscape(level + "|" + text),
		Path:     "/",
		HttpOnly: true,
		MaxAge:   300,
	})
}

// Pop retrieves and clears the pending flash message, if any.
func Pop(w http.ResponseWriter, r *http.Request) *Message {
	cookie, err := r.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	raw, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return nil
	}
	level, text, found := strings.Cut(raw, "|")
	if !found {
		return &Message{Level: "info", Text: raw}
	}
	return &Message{Level: level, Text: text}
}
