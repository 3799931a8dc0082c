package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func chatServer(t *testing.T, status int, reply string) (*httptest.Server, <-chan string) {
	t.Helper()
	got := make(chan string, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("failed to decode chat request: %v", err)
		}
		got <- req.Message
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(chatResponse{Reply: reply})
	}))
	t.Cleanup(ts.Close)
	return ts, got
}

func TestHandle_ForwardsMessage(t *testing.T) {
	ts, got := chatServer(t, http.StatusOK, "Why the long face?")

	cfg, _ := json.Marshal(Config{URL: ts.URL + "/api/chat"})
	resp := handle(context.Background(), ts.Client(), &Request{
		Event:   "capture",
		Mood:    "sad",
		Gesture: "none",
		Message: "The user looks sad.Ask him Why..",
		Config:  cfg,
	})

	if !resp.Success {
		t.Fatalf("expected success, got error %q", resp.Error)
	}
	if msg := <-got; msg != "The user looks sad.Ask him Why.." {
		t.Errorf("chat received %q", msg)
	}

	var data chatResponse
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
	if data.Reply != "Why the long face?" {
		t.Errorf("reply = %q", data.Reply)
	}
}

func TestHandle_ChatError(t *testing.T) {
	ts, _ := chatServer(t, http.StatusBadRequest, "No message provided")

	cfg, _ := json.Marshal(Config{URL: ts.URL + "/api/chat"})
	resp := handle(context.Background(), ts.Client(), &Request{Event: "capture", Message: "x", Config: cfg})

	if resp.Success {
		t.Fatal("expected failure")
	}
	if resp.Error != "chat returned 400: No message provided" {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestHandle_Rejects(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want string
	}{
		{name: "other event", req: Request{Event: "exit", Message: "x"}, want: "unsupported event: exit"},
		{name: "empty message", req: Request{Event: "capture"}, want: "message is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := handle(context.Background(), http.DefaultClient, &tt.req)
			if resp.Success || resp.Error != tt.want {
				t.Errorf("handle() = %+v, want error %q", resp, tt.want)
			}
		})
	}
}

func TestEndpoint(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "", want: DefaultURL},
		{raw: `{}`, want: DefaultURL},
		{raw: `{"url":"http://chat.local/api/chat"}`, want: "http://chat.local/api/chat"},
	}

	for _, tt := range tests {
		got, err := endpoint(json.RawMessage(tt.raw))
		if err != nil {
			t.Fatalf("endpoint(%q) error = %v", tt.raw, err)
		}
		if got != tt.want {
			t.Errorf("endpoint(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}

	if _, err := endpoint(json.RawMessage(`{bad`)); err == nil {
		t.Error("expected an error for invalid config")
	}
}
