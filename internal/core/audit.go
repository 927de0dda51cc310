package core

// audit.go records the operator-facing audit trail of a pipeline invocation.
// The trail is a plain data artifact carried on the ImportResult, not a
// side-effecting service call; callers decide where it goes from there.

import (
	"log/slog"
	"time"
)

// AuditLevel classifies an audit entry.
type AuditLevel string

const (
	AuditInfo  AuditLevel = "info"
	AuditWarn  AuditLevel = "warn"
	AuditError AuditLevel = "error"
)

// AuditEntry is one ordered entry in the import audit trail.
type AuditEntry struct {
	Time    time.Time      `json:"time"`
	Level   AuditLevel     `json:"level"`
	Message string         `json:"message"`
	Context map[string]any `json:"context,omitempty"`
}

// auditTrail accumulates entries for one pipeline invocation and mirrors
// them to the structured logger.
type auditTrail struct {
	logger  *slog.Logger
	entries []AuditEntry
	now     func() time.Time
}

func newAuditTrail(logger *slog.Logger) *auditTrail {
	return &auditTrail{logger: logger, now: time.Now}
}

func (t *auditTrail) add(level AuditLevel, msg string, kv ...any) {
	entry := AuditEntry{
		Time:    t.now(),
		Level:   level,
		Message: msg,
	}
	if len(kv) > 0 {
		entry.Context = make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			if key, ok := kv[i].(string); ok {
				entry.Context[key] = kv[i+1]
			}
		}
	}
	t.entries = append(t.entries, entry)

	switch level {
	case AuditWarn:
		t.logger.Warn(msg, kv...)
	case AuditError:
		t.logger.Error(msg, kv...)
	default:
		t.logger.Info(msg, kv...)
	}
}

func (t *auditTrail) info(msg string, kv ...any)  { t.add(AuditInfo, msg, kv...) }
func (t *auditTrail) warn(msg string, kv ...any)  { t.add(AuditWarn, msg, kv...) }
func (t *auditTrail) error(msg string, kv ...any) { t.add(AuditError, msg, kv...) }

// transition records a state-machine transition.
func (t *auditTrail) transition(from, to State) {
	t.info("state transition", "from", string(from), "to", string(to))
}
