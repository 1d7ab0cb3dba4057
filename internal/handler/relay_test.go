package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dukerupert/tally/internal/blob"
	"github.com/dukerupert/tally/internal/model"
	"github.com/dukerupert/tally/internal/push"
	"github.com/dukerupert/tally/internal/store"
)

type stubSender struct {
	sent []string
	gone map[string]bool
	body string
}

func (s *stubSender) Send(_ context.Context, sub model.Subscription, p push.Payload) error {
	s.sent = append(s.sent, sub.Endpoint)
	s.body = p.Body
	if s.gone[sub.Endpoint] {
		return push.ErrExpired
	}
	return nil
}

type failingRegistry struct{}

func (failingRegistry) Add(context.Context, model.Subscription) (bool, error) {
	return false, errors.New("disk full")
}
func (failingRegistry) Remove(context.Context, string) (bool, error) {
	return false, errors.New("disk full")
}
func (failingRegistry) Len() int { return 0 }

func setupRelay(t *testing.T) (*RelayHandler, *store.SubscriptionRegistry, *stubSender) {
	t.Helper()
	reg := store.NewSubscriptionRegistry(blob.NewDisk(t.TempDir()), slog.Default())
	sender := &stubSender{gone: map[string]bool{}}
	d := push.NewDispatcher(reg, sender, nil, slog.Default())
	return NewRelayHandler(reg, d, "BPUBLIC", slog.Default()), reg, sender
}

func post(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestSaveSubscription(t *testing.T) {
	h, reg, _ := setupRelay(t)
	body := `{"endpoint":"https://push.example/a","expirationTime":null,"keys":{"p256dh":"p","auth":"a"}}`

	rec := post(h.SaveSubscription, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}

	// duplicate endpoint is a no-op but still 201
	rec = post(h.SaveSubscription, body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("duplicate status = %d, want %d", rec.Code, http.StatusCreated)
	}
	var resp map[string]bool
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp["added"] {
		t.Error("duplicate should report added=false")
	}

	subs := reg.List()
	if len(subs) != 1 {
		t.Fatalf("registry size = %d, want 1", len(subs))
	}
	if subs[0].Keys.P256dh != "p" {
		t.Errorf("keys = %+v", subs[0].Keys)
	}
}

func TestSaveSubscriptionBadInput(t *testing.T) {
	h, reg, _ := setupRelay(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "invalid json", body: `{`},
		{name: "missing endpoint", body: `{"keys":{"p256dh":"p","auth":"a"}}`},
		{name: "blank endpoint", body: `{"endpoint":"   "}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(h.SaveSubscription, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			var resp map[string]string
			json.NewDecoder(rec.Body).Decode(&resp)
			if resp["error"] == "" {
				t.Error("expected error message")
			}
		})
	}
	if reg.Len() != 0 {
		t.Errorf("registry size = %d, want 0", reg.Len())
	}
}

func TestRemoveSubscription(t *testing.T) {
	h, reg, _ := setupRelay(t)
	post(h.SaveSubscription, `{"endpoint":"https://push.example/a"}`)
	post(h.SaveSubscription, `{"endpoint":"https://push.example/b"}`)

	rec := post(h.RemoveSubscription, `{"endpoint":"https://push.example/a"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}

	// unknown endpoint still succeeds
	rec = post(h.RemoveSubscription, `{"endpoint":"https://push.example/zzz"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("unknown endpoint status = %d, want %d", rec.Code, http.StatusCreated)
	}

	subs := reg.List()
	if len(subs) != 1 || subs[0].Endpoint != "https://push.example/b" {
		t.Errorf("registry = %+v, want only b", subs)
	}
}

func TestPersistenceFailureIs500(t *testing.T) {
	h := NewRelayHandler(failingRegistry{}, nil, "", slog.Default())

	if rec := post(h.SaveSubscription, `{"endpoint":"x"}`); rec.Code != http.StatusInternalServerError {
		t.Errorf("save status = %d, want 500", rec.Code)
	}
	if rec := post(h.RemoveSubscription, `{"endpoint":"x"}`); rec.Code != http.StatusInternalServerError {
		t.Errorf("remove status = %d, want 500", rec.Code)
	}
}

func TestSendPushPrunesGone(t *testing.T) {
	h, reg, sender := setupRelay(t)
	for _, e := range []string{"one", "two", "three"} {
		post(h.SaveSubscription, `{"endpoint":"`+e+`"}`)
	}
	sender.gone["two"] = true

	rec := post(h.SendPush, `{"message":"custom"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp sendResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Attempted != 3 || resp.Pruned != 1 || resp.Delivered != 2 {
		t.Errorf("result = %+v", resp)
	}
	if sender.body != "custom" {
		t.Errorf("body = %q, want custom", sender.body)
	}

	subs := reg.List()
	if len(subs) != 2 || subs[0].Endpoint != "one" || subs[1].Endpoint != "three" {
		t.Errorf("registry = %+v, want [one three]", subs)
	}
}

func TestSendPushDefaultMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ""},
		{name: "no message", body: `{}`},
		{name: "blank message", body: `{"message":"  "}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, sender := setupRelay(t)
			post(h.SaveSubscription, `{"endpoint":"one"}`)

			rec := post(h.SendPush, tt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
			}
			if sender.body != push.DefaultMessage {
				t.Errorf("body = %q, want %q", sender.body, push.DefaultMessage)
			}
		})
	}
}

func TestSendPushInvalidJSON(t *testing.T) {
	h, _, sender := setupRelay(t)
	post(h.SaveSubscription, `{"endpoint":"one"}`)

	rec := post(h.SendPush, `{"message":`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if len(sender.sent) != 0 {
		t.Error("nothing should be sent on a bad request")
	}
}

func TestVAPIDPublicKeyAndHealth(t *testing.T) {
	h, _, _ := setupRelay(t)
	post(h.SaveSubscription, `{"endpoint":"one"}`)

	rec := httptest.NewRecorder()
	h.VAPIDPublicKey(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "BPUBLIC") {
		t.Errorf("vapid: %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest("GET", "/", nil))
	var resp map[string]any
	json.NewDecoder(rec.Body).Decode(&resp)
	if resp["status"] != "ok" || resp["subscriptions"] != float64(1) {
		t.Errorf("health = %v", resp)
	}

	noKey := NewRelayHandler(failingRegistry{}, nil, "", slog.Default())
	rec = httptest.NewRecorder()
	noKey.VAPIDPublicKey(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unconfigured vapid status = %d, want 404", rec.Code)
	}
}

func TestMethodNotAllowedHasNoBody(t *testing.T) {
	rec := httptest.NewRecorder()
	MethodNotAllowed(rec, httptest.NewRequest("GET", "/api/send-push", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", rec.Body.String())
	}
}
