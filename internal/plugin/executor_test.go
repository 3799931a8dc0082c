package plugin

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// writeHook writes an executable shell script and returns a Plugin for it.
func writeHook(t *testing.T, dir, name, script string, events ...string) *Plugin {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	scriptPath := filepath.Join(dir, name+".sh")
	if err := os.WriteFile(scriptPath, []byte(script), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	return &Plugin{
		Manifest: Manifest{
			Name:       name,
			Version:    "1.0.0",
			Executable: name + ".sh",
			Events:     events,
		},
		Path:       dir,
		Executable: scriptPath,
	}
}

func TestExecutor_Execute(t *testing.T) {
	plugin := writeHook(t, t.TempDir(), "test-hook", `#!/bin/sh
cat <<'JSON'
{"success":true,"data":{"message":"hello world"}}
JSON
`)

	response, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, &Request{Event: EventCapture})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	if !response.Success {
		t.Errorf("expected success=true, got false")
	}
	if response.Error != "" {
		t.Errorf("expected empty error, got %q", response.Error)
	}

	var data map[string]interface{}
	if err := json.Unmarshal(response.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}
	if data["message"] != "hello world" {
		t.Errorf("expected message 'hello world', got %v", data["message"])
	}
}

func TestExecutor_Execute_ReadsStdin(t *testing.T) {
	plugin := writeHook(t, t.TempDir(), "echo-hook", `#!/bin/sh
INPUT=$(cat)
echo "{\"success\":true,\"data\":{\"received\":$INPUT}}"
`)
	plugin.Manifest.Config = json.RawMessage(`{"url":"http://localhost:5000/api/chat"}`)

	request := &Request{
		Event:   EventCapture,
		Mood:    "sad",
		Gesture: "none",
		Message: "The user looks sad.Ask him Why..",
	}

	response, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, request)
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	var data map[string]map[string]interface{}
	if err := json.Unmarshal(response.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}

	received := data["received"]
	if received["event"] != "capture" {
		t.Errorf("expected event 'capture', got %v", received["event"])
	}
	if received["mood"] != "sad" {
		t.Errorf("expected mood 'sad', got %v", received["mood"])
	}
	if received["message"] != "The user looks sad.Ask him Why.." {
		t.Errorf("unexpected message %v", received["message"])
	}
	cfg, ok := received["config"].(map[string]interface{})
	if !ok || cfg["url"] != "http://localhost:5000/api/chat" {
		t.Errorf("expected manifest config on the request, got %v", received["config"])
	}
	if request.Config != nil {
		t.Error("Execute should not modify the caller's request")
	}
}

func TestExecutor_Timeout(t *testing.T) {
	plugin := writeHook(t, t.TempDir(), "slow-hook", `#!/bin/sh
sleep 10
echo '{"success":true}'
`)

	_, err := NewExecutor(100*time.Millisecond).Execute(context.Background(), plugin, &Request{Event: EventCapture})

	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	if !strings.Contains(err.Error(), "timeout") {
		t.Errorf("expected timeout error, got: %v", err)
	}
}

func TestExecutor_Execute_ErrorResponse(t *testing.T) {
	plugin := writeHook(t, t.TempDir(), "error-hook", `#!/bin/sh
echo '{"success":false,"error":"something went wrong"}'
`)

	response, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, &Request{Event: EventCapture})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	if response.Success {
		t.Errorf("expected success=false, got true")
	}
	if response.Error != "something went wrong" {
		t.Errorf("expected error 'something went wrong', got %q", response.Error)
	}
}

func TestExecutor_Execute_ExitFailure(t *testing.T) {
	plugin := writeHook(t, t.TempDir(), "crash-hook", `#!/bin/sh
echo "chat api unreachable" >&2
exit 3
`)

	_, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, &Request{Event: EventCapture})

	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if !strings.Contains(err.Error(), "chat api unreachable") {
		t.Errorf("expected stderr in error, got: %v", err)
	}
}

func TestExecutor_Execute_InvalidJSON(t *testing.T) {
	plugin := writeHook(t, t.TempDir(), "garbage-hook", `#!/bin/sh
echo 'not json'
`)

	_, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, &Request{Event: EventCapture})

	if err == nil || !strings.Contains(err.Error(), "failed to parse plugin response") {
		t.Errorf("expected parse error, got: %v", err)
	}
}

func TestNewExecutor_DefaultTimeout(t *testing.T) {
	if got := NewExecutor(0).Timeout(); got != DefaultTimeout {
		t.Errorf("Timeout() = %s, want %s", got, DefaultTimeout)
	}
}
