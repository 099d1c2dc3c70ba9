package web

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"
)

// flashSession names the signed cookie that carries pending flashes.
const flashSession = "flash"

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Kind    string
	Message string
}

func newFlashStore(secret string, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(store.Options.MaxAge)
	return store
}

// setFlash queues a message for the next rendered page.
func (s *Server) setFlash(w http.ResponseWriter, r *http.Request, kind, message string) {
	session, err := s.Flashes.Get(r, flashSession)
	if err != nil {
		slog.Debug("discarding unreadable flash cookie", "error", err)
	}
	session.AddFlash(message, kind)
	if err := session.Save(r, w); err != nil {
		slog.Warn("failed to save flash", "error", err)
	}
}

// popFlash reads and clears the pending flash, if any. Errors are shown in
// preference to successes.
func (s *Server) popFlash(w http.ResponseWriter, r *http.Request) *Flash {
	session, err := s.Flashes.Get(r, flashSession)
	if err != nil || session.IsNew {
		return nil
	}

	var flash *Flash
	for _, kind := range []string{FlashError, FlashSuccess} {
		for _, v := range session.Flashes(kind) {
			if msg, ok := v.(string); ok && flash == nil {
				flash = &Flash{Kind: kind, Message: msg}
			}
		}
	}
	if flash == nil {
		return nil
	}
	if err := session.Save(r, w); err != nil {
		slog.Warn("failed to clear flash", "error", err)
	}
	return flash
}
