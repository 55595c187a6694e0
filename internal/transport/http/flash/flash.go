package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"
)

const CookieName = "hrportal_flash"

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Message is a toast carried across one redirect.
type Message struct {
	Kind Kind   `json:"k"`
	Text string `json:"t"`
}

func Set(w http.ResponseWriter, kind Kind, text string) {
	raw, err := json.Marshal(Message{Kind: kind, Text: text})
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    base64.URLEncoding.EncodeToString(raw),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func Success(w http.ResponseWriter, text string) { Set(w, KindSuccess, text) }
func Error(w http.ResponseWriter, text string)   { Set(w, KindError, text) }

// Pop reads the pending toast and clears it. A malformed cookie is dropped.
func Pop(w http.ResponseWriter, r *http.Request) (Message, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return Message{}, false
	}
	http.SetCookie(w, &http.Cookie{Name: CookieName, Path: "/", MaxAge: -1, Expires: time.Unix(1, 0)})
	raw, err := base64.URLEncoding.DecodeString(c.Value)
	if err != nil {
		return Message{}, false
	}
	var m Message
	if err := json.Unmarshal(raw, &m); err != nil || m.Text == "" {
		return Message{}, false
	}
	return m, true
}
