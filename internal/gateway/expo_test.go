package gateway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/civicpulse/request-notifier/internal/domain"
	"github.com/civicpulse/request-notifier/internal/gateway"
)

func testMessage() *domain.PushMessage {
	return &domain.PushMessage{
		To:    "ExponentPushToken[abc]",
		Title: "Request Completed",
		Body:  "Done.",
		Data: domain.PushData{
			RequestID: "req-1",
			NewStatus: "Completed",
			OldStatus: "In progress",
			Type:      domain.MessageTypeStatusChange,
			UserID:    "user-1",
		},
		Hint: domain.DeliveryHint{Sound: "default", Priority: "high", ChannelID: "default"},
	}
}

func TestExpoGateway_Send_Success(t *testing.T) {
	type captured struct {
		body gateway.SendRequest
		auth string
	}
	seen := make(chan captured, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		var c captured
		c.auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&c.body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		seen <- c
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"status":"ok","id":"ticket-1"}}`))
	}))
	defer srv.Close()

	gw := gateway.NewExpoGateway(srv.URL, "secret", 5*time.Second)
	receipt, err := gw.Send(context.Background(), testMessage())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if receipt.ID != "ticket-1" {
		t.Fatalf("expected ticket-1, got %q", receipt.ID)
	}
	c := <-seen
	got := c.body
	if c.auth != "Bearer secret" {
		t.Fatalf("expected bearer token, got %q", c.auth)
	}
	if got.To != "ExponentPushToken[abc]" || got.Title != "Request Completed" {
		t.Fatalf("unexpected body: %+v", got)
	}
	if got.Data.Type != "status_change" || got.Data.RequestID != "req-1" {
		t.Fatalf("unexpected data payload: %+v", got.Data)
	}
	if got.Sound != "default" || got.Priority != "high" || got.ChannelID != "default" {
		t.Fatalf("unexpected delivery hint: %+v", got)
	}
}

func TestExpoGateway_Send_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"server error", http.StatusInternalServerError, `boom`, "500"},
		{"bad request", http.StatusBadRequest, ``, "400"},
		{"error ack", http.StatusOK, `{"data":{"status":"error","message":"not registered","details":{"error":"DeviceNotRegistered"}}}`, "DeviceNotRegistered"},
		{"garbage ack", http.StatusOK, `not json`, "decode response"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			gw := gateway.NewExpoGateway(srv.URL, "", 5*time.Second)
			_, err := gw.Send(context.Background(), testMessage())
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
			if n := calls.Load(); n != 1 {
				t.Fatalf("expected exactly one attempt, got %d", n)
			}
		})
	}
}

func TestExpoGateway_Send_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	gw := gateway.NewExpoGateway(url, "", time.Second)
	if _, err := gw.Send(context.Background(), testMessage()); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestBuildFCMMessage(t *testing.T) {
	m := gateway.BuildFCMMessage(testMessage())
	if m.Token != "ExponentPushToken[abc]" {
		t.Fatalf("unexpected token %q", m.Token)
	}
	if m.Notification.Title != "Request Completed" {
		t.Fatalf("unexpected title %q", m.Notification.Title)
	}
	if m.Data["newStatus"] != "Completed" || m.Data["type"] != "status_change" {
		t.Fatalf("unexpected data %v", m.Data)
	}
	if m.Android.Priority != "high" || m.Android.Notification.ChannelID != "default" {
		t.Fatalf("unexpected android config %+v", m.Android)
	}
	if m.APNS.Payload.Aps.Sound != "default" {
		t.Fatalf("unexpected apns sound %q", m.APNS.Payload.Aps.Sound)
	}
}
