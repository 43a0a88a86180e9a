package scraper

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeSessionFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write session file: %v", err)
	}
	return path
}

func TestLoadSession(t *testing.T) {
	path := writeSessionFile(t, `{
  "cookies": [
    {"name": "datadome", "value": "abc123", "domain": ".imobiliare.ro", "path": "/"},
    {"name": "sid", "value": "xyz", "domain": ".imobiliare.ro", "path": "/"}
  ]
}`)

	session, err := LoadSession(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	req, _ := http.NewRequest("GET", "https://www.imobiliare.ro/", nil)
	session.Apply(req)

	cookies := req.Cookies()
	if len(cookies) != 2 {
		t.Fatalf("Expected 2 cookies on request, got: %d", len(cookies))
	}
	if cookies[0].Name != "datadome" || cookies[0].Value != "abc123" {
		t.Errorf("Expected datadome cookie first, got: %s=%s", cookies[0].Name, cookies[0].Value)
	}
}

func TestLoadSessionMissingFile(t *testing.T) {
	session, err := LoadSession(filepath.Join(t.TempDir(), "absent.json"))

	if err != nil {
		t.Fatalf("Expected no error for missing session file, got: %v", err)
	}
	if !session.NeedsRefresh(24 * time.Hour) {
		t.Error("Expected missing session to need refresh")
	}
}

func TestLoadSessionInvalidJSON(t *testing.T) {
	path := writeSessionFile(t, `{"cookies": broken`)

	if _, err := LoadSession(path); err == nil {
		t.Error("Expected error for invalid session JSON")
	}
}

func TestSessionNeedsRefresh(t *testing.T) {
	path := writeSessionFile(t, `{"cookies": [{"name": "datadome", "value": "abc"}]}`)

	session, err := LoadSession(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if session.NeedsRefresh(12 * time.Hour) {
		t.Error("Expected freshly written session to be valid")
	}

	stale := time.Now().Add(-13 * time.Hour)
	if err := os.Chtimes(path, stale, stale); err != nil {
		t.Fatalf("Failed to age session file: %v", err)
	}

	session, err = LoadSession(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !session.NeedsRefresh(12 * time.Hour) {
		t.Error("Expected aged session to need refresh")
	}
}

func TestSessionNeedsRefreshWithoutCookies(t *testing.T) {
	path := writeSessionFile(t, `{"cookies": []}`)

	session, err := LoadSession(path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if !session.NeedsRefresh(12 * time.Hour) {
		t.Error("Expected cookieless session to need refresh")
	}
}

func TestBlocked(t *testing.T) {
	blockedPages := [][]byte{
		[]byte(`<html><body><h1>Accesul este restricționat temporar</h1></body></html>`),
		[]byte(`<html><head><script src="https://geo.captcha-delivery.com/captcha.js"></script></head></html>`),
		[]byte(`<html><body><iframe src="https://dd.datadome.co/challenge"></iframe></body></html>`),
	}
	for i, page := range blockedPages {
		if !Blocked(page) {
			t.Errorf("Expected page %d to be detected as blocked", i)
		}
	}

	normal := []byte(`<html><body><div class="box-anunt">Casa de vanzare</div></body></html>`)
	if Blocked(normal) {
		t.Error("Expected normal page to not be detected as blocked")
	}
}
