package security_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/osmcp/osmcp/internal/security"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func TestHashArgumentsStable(t *testing.T) {
	a := security.HashArguments(map[string]interface{}{"index": "docs", "query": map[string]interface{}{"size": 1}})
	b := security.HashArguments(map[string]interface{}{"query": map[string]interface{}{"size": 1}, "index": "docs"})
	if a != b {
		t.Errorf("expected equal hashes, got %s and %s", a, b)
	}
	if len(a) != 16 {
		t.Errorf("expected 16 hex chars, got %q", a)
	}
	if security.HashArguments(nil) != security.HashArguments(map[string]interface{}{}) {
		t.Error("nil and empty arguments should hash equally")
	}
	if a == security.HashArguments(map[string]interface{}{"index": "other"}) {
		t.Error("different arguments should hash differently")
	}
}

func TestLogToolCall(t *testing.T) {
	buf := captureLog(t)

	security.NewAuditLogger(true).LogToolCall(security.ToolCall{
		Tool:      "SearchIndexTool",
		Arguments: map[string]interface{}{"index": "secret-index"},
		APIKey:    "super-secret-key",
		RequestID: "req-1",
		Transport: "http",
		IsError:   true,
		Reason:    "collaborator",
		Duration:  25 * time.Millisecond,
	})

	line := buf.String()
	if strings.Contains(line, "secret-index") || strings.Contains(line, "super-secret-key") {
		t.Fatalf("audit line leaks raw values: %s", line)
	}

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("audit line is not JSON: %v", err)
	}
	checks := map[string]interface{}{
		"event":             "tool_audit",
		"tool":              "SearchIndexTool",
		"transport":         "http",
		"success":           false,
		"reason":            "collaborator",
		"request_id":        "req-1",
		"execution_time_ms": float64(25),
	}
	for k, want := range checks {
		if entry[k] != want {
			t.Errorf("%s = %v, want %v", k, entry[k], want)
		}
	}
	if h, _ := entry["api_key_hash"].(string); len(h) != 16 {
		t.Errorf("expected api_key_hash, got %v", entry["api_key_hash"])
	}
}

func TestLogToolCallDisabled(t *testing.T) {
	buf := captureLog(t)

	security.NewAuditLogger(false).LogToolCall(security.ToolCall{Tool: "ListIndexTool"})
	var nilLogger *security.AuditLogger
	nilLogger.LogToolCall(security.ToolCall{Tool: "ListIndexTool"})

	if buf.Len() != 0 {
		t.Errorf("disabled audit logger wrote %q", buf.String())
	}
}
