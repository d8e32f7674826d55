package instrumentation

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestNewToolInvocation(t *testing.T) {
	ti := NewToolInvocation("add_task")

	if ti.Tool != "add_task" {
		t.Errorf("expected tool 'add_task', got %q", ti.Tool)
	}

	if ti.InvocationID == "" {
		t.Error("expected a non-empty invocation ID")
	}

	if ti.StartTime.IsZero() {
		t.Error("expected StartTime to be set")
	}

	other := NewToolInvocation("get_tasks")
	if other.InvocationID == ti.InvocationID {
		t.Error("expected unique invocation IDs")
	}
}

func TestToolInvocation_Complete(t *testing.T) {
	ti := NewToolInvocation("get_tasks")
	time.Sleep(time.Millisecond)

	ti.CompleteSuccess()

	if !ti.Success {
		t.Error("expected Success to be true")
	}
	if ti.Duration <= 0 {
		t.Error("expected Duration to be positive")
	}
	if ti.Status() != StatusSuccess {
		t.Errorf("expected status %q, got %q", StatusSuccess, ti.Status())
	}
}

func TestToolInvocation_CompleteWithError(t *testing.T) {
	ti := NewToolInvocation("mark_as_completed")
	ti.CompleteWithError(errors.New("card not found"))

	if ti.Success {
		t.Error("expected Success to be false")
	}
	if ti.Error != "card not found" {
		t.Errorf("expected error 'card not found', got %q", ti.Error)
	}
	if ti.Status() != StatusError {
		t.Errorf("expected status %q, got %q", StatusError, ti.Status())
	}
}

func TestToolInvocation_LogAttrs(t *testing.T) {
	ti := NewToolInvocation("mark_as_in_progress").
		WithBoard("Work").
		WithCard("card123").
		WithOperation("update")
	ti.CompleteSuccess()

	attrs := ti.LogAttrs()

	found := map[string]bool{}
	for _, attr := range attrs {
		found[attr.Key] = true
	}

	for _, key := range []string{"invocation_id", "tool", "duration", "success", "board", "card", "operation"} {
		if !found[key] {
			t.Errorf("expected attribute %q in LogAttrs", key)
		}
	}

	// Empty optional fields stay out of the attribute set
	bare := NewToolInvocation("get_tasks")
	bare.CompleteSuccess()
	for _, attr := range bare.LogAttrs() {
		if attr.Key == "board" || attr.Key == "card" || attr.Key == "error" {
			t.Errorf("unexpected attribute %q for bare invocation", attr.Key)
		}
	}
}

func TestAuditLogger_LogToolInvocation(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	al := NewAuditLogger(logger)

	ti := NewToolInvocation("add_task").WithBoard("Work")
	ti.CompleteSuccess()
	al.LogToolInvocation(ti)

	out := buf.String()
	if !strings.Contains(out, "tool_executed") {
		t.Errorf("expected 'tool_executed' in output: %s", out)
	}
	if !strings.Contains(out, "tool=add_task") {
		t.Errorf("expected tool attribute in output: %s", out)
	}

	buf.Reset()
	ti = NewToolInvocation("get_tasks")
	ti.CompleteWithError(errors.New("boom"))
	al.LogToolInvocation(ti)

	if !strings.Contains(buf.String(), "tool_failed") {
		t.Errorf("expected 'tool_failed' in output: %s", buf.String())
	}
}

func TestAuditLogger_Disabled(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	al := NewAuditLoggerWithConfig(logger, AuditLoggingConfig{Enabled: false})

	ti := NewToolInvocation("add_task")
	ti.CompleteSuccess()
	al.LogToolInvocation(ti)

	if buf.Len() != 0 {
		t.Errorf("expected no output when disabled, got: %s", buf.String())
	}
}
