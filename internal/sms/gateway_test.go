package sms

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTTPGatewaySend(t *testing.T) {
	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer key-1" {
			t.Errorf("missing bearer key")
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"id":"m1"}`))
	}))
	defer srv.Close()

	gw := NewHTTPGateway(srv.URL, "key-1", "LeadDesk")
	if err := gw.Send(context.Background(), "+31612345678", "Hallo"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if got.To != "+31612345678" || got.From != "LeadDesk" || got.Body != "Hallo" {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestHTTPGatewayReportsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"invalid recipient"}`))
	}))
	defer srv.Close()

	err := NewHTTPGateway(srv.URL, "k", "").Send(context.Background(), "+31612345678", "x")
	if err == nil || !strings.Contains(err.Error(), "invalid recipient") {
		t.Fatalf("expected provider error, got %v", err)
	}
}
