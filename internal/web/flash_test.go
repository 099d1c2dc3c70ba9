package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFlashRoundTrip(t *testing.T) {
	s := &Server{Flashes: newFlashStore("flash-test-key", false)}

	rec := httptest.NewRecorder()
	s.setFlash(rec, httptest.NewRequest("POST", "/", nil), FlashSuccess, "Saved!")
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != flashSession {
		t.Fatalf("expected one flash cookie, got %v", cookies)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	flash := s.popFlash(rec, req)
	if flash == nil || flash.Kind != FlashSuccess || flash.Message != "Saved!" {
		t.Fatalf("unexpected flash %+v", flash)
	}

	// The cleared cookie carries no message.
	cleared := rec.Result().Cookies()
	if len(cleared) != 1 {
		t.Fatalf("expected flash cookie to be rewritten, got %v", cleared)
	}
	req = httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cleared[0])
	if flash := s.popFlash(httptest.NewRecorder(), req); flash != nil {
		t.Errorf("flash shown twice: %+v", flash)
	}
}

func TestFlashPrefersErrors(t *testing.T) {
	s := &Server{Flashes: newFlashStore("flash-test-key", false)}

	req := httptest.NewRequest("POST", "/", nil)
	rec := httptest.NewRecorder()
	s.setFlash(rec, req, FlashSuccess, "Saved!")
	s.setFlash(rec, req, FlashError, "But something failed.")
	cookies := rec.Result().Cookies()

	next := httptest.NewRequest("GET", "/", nil)
	next.AddCookie(cookies[len(cookies)-1])
	flash := s.popFlash(httptest.NewRecorder(), next)
	if flash == nil || flash.Kind != FlashError {
		t.Errorf("expected error flash, got %+v", flash)
	}
}

func TestFlashRejectsForgedCookie(t *testing.T) {
	s := &Server{Flashes: newFlashStore("flash-test-key", false)}

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: flashSession, Value: "c3VjY2VzcwpIaQ"})
	if flash := s.popFlash(httptest.NewRecorder(), req); flash != nil {
		t.Errorf("expected forged flash to be ignored, got %+v", flash)
	}

	other := &Server{Flashes: newFlashStore("another-key", false)}
	rec := httptest.NewRecorder()
	other.setFlash(rec, httptest.NewRequest("POST", "/", nil), FlashSuccess, "Hi")
	req = httptest.NewRequest("GET", "/", nil)
	req.AddCookie(rec.Result().Cookies()[0])
	if flash := s.popFlash(httptest.NewRecorder(), req); flash != nil {
		t.Errorf("expected cookie signed with another key to be ignored, got %+v", flash)
	}
}
