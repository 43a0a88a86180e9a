package scraper

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// blockMarkers identify a DataDome challenge page served in place of
// real content.
var blockMarkers = []string{
	"Accesul este restricționat temporar",
	"geo.captcha-delivery.com",
	"dd.datadome.co",
	"DataDome",
	"captcha-delivery.com",
}

// Blocked detects a bot-detection page in a raw payload.
func Blocked(payload []byte) bool {
	body := string(payload)
	for _, marker := range blockMarkers {
		if strings.Contains(body, marker) {
			return true
		}
	}
	return false
}

// SessionCookie is one cookie from the exported browser state.
type SessionCookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain"`
	Path   string `json:"path"`
}

type sessionState struct {
	Cookies []SessionCookie `json:"cookies"`
}

// Session carries the browser cookies needed to get past DataDome on
// imobiliare.ro. The state file is produced by an out-of-band
// authentication step; this type only consumes it and reports when it
// has gone stale.
type Session struct {
	path    string
	cookies []SessionCookie
	modTime time.Time
}

// LoadSession reads the browser state file. A missing file yields an
// empty session whose NeedsRefresh always reports true.
func LoadSession(path string) (*Session, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return &Session{path: path}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat session file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var state sessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}

	return &Session{
		path:    path,
		cookies: state.Cookies,
		modTime: info.ModTime(),
	}, nil
}

// NeedsRefresh reports whether the session state is missing or older
// than maxAge. DataDome cookies expire; a stale session triggers the
// challenge page instead of content.
func (s *Session) NeedsRefresh(maxAge time.Duration) bool {
	if s == nil || len(s.cookies) == 0 || s.modTime.IsZero() {
		return true
	}
	return time.Since(s.modTime) > maxAge
}

// Apply attaches the session cookies to an outgoing request.
func (s *Session) Apply(req *http.Request) {
	if s == nil {
		return
	}
	for _, c := range s.cookies {
		req.AddCookie(&http.Cookie{Name: c.Name, Value: c.Value})
	}
}
