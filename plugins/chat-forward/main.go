// Package main provides a capture hook that posts the capture message to
// the chat service.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// DefaultURL is the chat endpoint used when the manifest config has none.
const DefaultURL = "http://localhost:5000/api/chat"

const requestTimeout = 4 * time.Second

// Request represents the input from the plugin executor.
type Request struct {
	Event   string          `json:"event"`
	Mood    string          `json:"mood"`
	Gesture string          `json:"gesture"`
	Message string          `json:"message"`
	Config  json.RawMessage `json:"config"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Config is the manifest config block.
type Config struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(os.Stdout, Response{Error: fmt.Sprintf("failed to decode request: %v", err)})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	writeResponse(os.Stdout, handle(ctx, http.DefaultClient, &req))
}

// handle forwards a capture and builds the hook response.
func handle(ctx context.Context, client *http.Client, req *Request) Response {
	if req.Event != "capture" {
		return Response{Error: fmt.Sprintf("unsupported event: %s", req.Event)}
	}
	if req.Message == "" {
		return Response{Error: "message is empty"}
	}

	url, err := endpoint(req.Config)
	if err != nil {
		return Response{Error: err.Error()}
	}

	reply, err := forward(ctx, client, url, req.Message)
	if err != nil {
		return Response{Error: err.Error()}
	}

	data, _ := json.Marshal(chatResponse{Reply: reply})
	return Response{Success: true, Data: data}
}

func endpoint(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return DefaultURL, nil
	}
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return "", fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.URL == "" {
		return DefaultURL, nil
	}
	return cfg.URL, nil
}

// forward posts {"message": msg} to url and returns the chat reply.
func forward(ctx context.Context, client *http.Client, url, msg string) (string, error) {
	body, err := json.Marshal(chatRequest{Message: msg})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}

	var out chatResponse
	_ = json.Unmarshal(data, &out)

	if resp.StatusCode != http.StatusOK {
		if out.Reply != "" {
			return "", fmt.Errorf("chat returned %d: %s", resp.StatusCode, out.Reply)
		}
		return "", fmt.Errorf("chat returned %d", resp.StatusCode)
	}
	return out.Reply, nil
}

func writeResponse(w io.Writer, resp Response) {
	json.NewEncoder(w).Encode(resp)
}
