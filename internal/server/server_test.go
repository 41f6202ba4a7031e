package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

type recordingProcessor struct {
	updates []tele.Update
	panic   bool
}

func (p *recordingProcessor) ProcessUpdate(u tele.Update) {
	if p.panic {
		panic("handler exploded")
	}
	p.updates = append(p.updates, u)
}

func newTestServer(p UpdateProcessor, secret string) *Server {
	fixed := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	return New(p, Options{SecretToken: secret, Now: func() time.Time { return fixed }})
}

func do(s *Server, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(newTestServer(&recordingProcessor{}, ""), http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := healthResponse{Status: "healthy", Timestamp: "2026-03-01T18:00:00Z", Service: ServiceName}
	if got != want {
		t.Errorf("body = %+v, want %+v", got, want)
	}
}

func TestWebhookProcessesUpdate(t *testing.T) {
	p := &recordingProcessor{}
	body := `{"update_id":7,"message":{"message_id":1,"text":"hi","chat":{"id":5,"type":"private"},"from":{"id":5}}}`
	rec := do(newTestServer(p, ""), http.MethodPost, "/webhook", body, nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "OK" {
		t.Fatalf("got %d %q, want 200 OK", rec.Code, rec.Body.String())
	}
	if len(p.updates) != 1 || p.updates[0].ID != 7 || p.updates[0].Message.Text != "hi" {
		t.Fatalf("updates = %+v", p.updates)
	}
}

func TestWebhookErrors(t *testing.T) {
	cases := []struct {
		name   string
		method string
		body   string
		proc   *recordingProcessor
		status int
		text   string
	}{
		{"malformed", http.MethodPost, "{nope", &recordingProcessor{}, http.StatusBadRequest, "Invalid update"},
		{"null body", http.MethodPost, "null", &recordingProcessor{}, http.StatusBadRequest, "Invalid update"},
		{"empty object", http.MethodPost, "{}", &recordingProcessor{}, http.StatusBadRequest, "Invalid update"},
		{"wrong method", http.MethodGet, "", &recordingProcessor{}, http.StatusMethodNotAllowed, "Method not allowed"},
		{"panic", http.MethodPost, `{"update_id":1}`, &recordingProcessor{panic: true}, http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(newTestServer(tc.proc, ""), tc.method, "/webhook", tc.body, nil)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
			if got := strings.TrimSpace(rec.Body.String()); got != tc.text {
				t.Errorf("body = %q, want %q", got, tc.text)
			}
			if len(tc.proc.updates) != 0 {
				t.Errorf("processor saw %d updates, want 0", len(tc.proc.updates))
			}
		})
	}
}

func TestWebhookSecretToken(t *testing.T) {
	p := &recordingProcessor{}
	s := newTestServer(p, "s3cret")

	if rec := do(s, http.MethodPost, "/webhook", `{"update_id":1}`, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing header status = %d, want 401", rec.Code)
	}
	hdr := map[string]string{SecretTokenHeader: "s3cret"}
	if rec := do(s, http.MethodPost, "/webhook", `{"update_id":1}`, hdr); rec.Code != http.StatusOK {
		t.Fatalf("valid header status = %d, want 200", rec.Code)
	}
	if len(p.updates) != 1 {
		t.Fatalf("updates = %d, want 1", len(p.updates))
	}
}

func TestCustomWebhookPath(t *testing.T) {
	p := &recordingProcessor{}
	s := New(p, Options{WebhookPath: "/tg/hook"})
	if rec := do(s, http.MethodPost, "/tg/hook", `{"update_id":3}`, nil); rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec := do(s, http.MethodPost, "/webhook", `{"update_id":3}`, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("default path status = %d, want 404", rec.Code)
	}
}
