package format

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"tasklane/internal/model"
)

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, map[string]any{"ok": true}, "", false); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got := buf.String(); got != "{\"ok\":true}\n" {
		t.Fatalf("unexpected output %q", got)
	}

	buf.Reset()
	if err := Write(&buf, []int{1}, JSON, true); err != nil {
		t.Fatalf("write pretty: %v", err)
	}
	if got := buf.String(); got != "[\n  1\n]\n" {
		t.Fatalf("unexpected pretty output %q", got)
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, nil, "edn", false); err == nil {
		t.Fatalf("expected error")
	}
}

func TestWriteTable_Tasks(t *testing.T) {
	var buf bytes.Buffer
	tasks := []model.Task{
		{ID: "task-1", ProjectID: "proj-1", Name: "Write\x1b[31m report", DueDate: "2026-10-19"},
		{ID: "task-2", ProjectID: "proj-1", Name: "Water plants", IsCompleted: true},
	}
	if err := Write(&buf, tasks, Table, false); err != nil {
		t.Fatalf("write table: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"NAME", "task-1", "Write report", "2026-10-19", "Water plants", "true"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[31m") {
		t.Fatalf("expected escape sequences stripped:\n%q", out)
	}
}

func TestWriteTable_Events(t *testing.T) {
	var buf bytes.Buffer
	evs := []model.Event{{TS: time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC), ActorID: "act-1", Type: "task.create", EntityID: "task-1"}}
	if err := WriteTable(&buf, evs); err != nil {
		t.Fatalf("write table: %v", err)
	}
	if !strings.Contains(buf.String(), "task.create") {
		t.Fatalf("expected event type:\n%s", buf.String())
	}
}

func TestWriteTable_Unsupported(t *testing.T) {
	if err := WriteTable(&bytes.Buffer{}, map[string]int{}); err == nil {
		t.Fatalf("expected error")
	}
}
