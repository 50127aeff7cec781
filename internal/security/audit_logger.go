package security

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
)

// AuditLogger logs security-relevant events with hashed identifiers
type AuditLogger struct {
	enabled bool
}

func NewAuditLogger(enabled bool) *AuditLogger {
	return &AuditLogger{enabled: enabled}
}

// ToolCall describes one tool invocation for the audit trail.
type ToolCall struct {
	Tool      string
	Arguments map[string]interface{}
	APIKey    string
	RequestID string
	Transport string
	IsError   bool
	Reason    string
	Duration  time.Duration
}

// LogToolCall records a tool invocation. Arguments and API key are hashed so
// query text and credentials never reach the log.
func (a *AuditLogger) LogToolCall(call ToolCall) {
	if a == nil || !a.enabled {
		return
	}

	evt := log.Info().
		Str("event", "tool_audit").
		Str("tool", call.Tool).
		Str("args_hash", HashArguments(call.Arguments)).
		Str("transport", call.Transport).
		Bool("success", !call.IsError).
		Int64("execution_time_ms", call.Duration.Milliseconds())

	if call.APIKey != "" {
		evt = evt.Str("api_key_hash", hashStr(call.APIKey)[:16])
	}
	if call.RequestID != "" {
		evt = evt.Str("request_id", call.RequestID)
	}
	if call.Reason != "" {
		evt = evt.Str("reason", call.Reason)
	}
	evt.Msg("audit")
}

// HashArguments returns a short stable digest of a tool's arguments. Map keys
// are sorted by encoding/json, so equal arguments hash equally.
func HashArguments(args map[string]interface{}) string {
	if len(args) == 0 {
		return hashStr("{}")[:16]
	}
	b, err := json.Marshal(args)
	if err != nil {
		return "unhashable"
	}
	return hashStr(string(b))[:16]
}

func hashStr(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}
