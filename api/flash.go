package api

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const flashCookieName = "flash"

// Flash is a one-shot message shown on the next admin view.
type Flash struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// encodeFlash is swapped in tests.
var encodeFlash = json.Marshal

// setFlash stores f for the next admin view. No cookie is written when f cannot be encoded.
func setFlash(w http.ResponseWriter, f Flash) error {
	raw, err := encodeFlash(f)
	if err != nil {
		return fmt.Errorf("encoding flash message: %w", err)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/admin",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300,
	})
	return nil
}

// popFlash reads the flash cookie and clears it. A missing or garbled cookie yields nil.
func popFlash(w http.ResponseWriter, r *http.Request) *Flash {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/admin",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var f Flash
	if err := json.Unmarshal(raw, &f); err != nil || f.Message == "" {
		return nil
	}
	return &f
}
