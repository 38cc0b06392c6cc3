package nav

import "testing"

func TestHistory_PushPop(t *testing.T) {
	h := NewHistory(Route{Kind: Today})
	h.Push(Route{Kind: Task, TaskID: "task-1"})
	h.Push(Route{Kind: Task, TaskID: "task-1"})
	if h.Depth() != 2 {
		t.Fatalf("expected duplicate push to be ignored, depth=%d", h.Depth())
	}
	if got := h.Underlying(); got.Kind != Today {
		t.Fatalf("expected today underneath, got %s", got)
	}
	if !h.Pop() {
		t.Fatalf("expected pop")
	}
	if h.Pop() {
		t.Fatalf("root must not be popped")
	}
	if h.Current().Kind != Today {
		t.Fatalf("expected today, got %s", h.Current())
	}
}

func TestHistory_ResetAndReplace(t *testing.T) {
	h := NewHistory(Route{Kind: Today})
	h.Push(Route{Kind: Project, ProjectID: "proj-1"})
	h.Replace(Route{Kind: Project, ProjectID: "proj-2"})
	if h.Current().ProjectID != "proj-2" || h.Depth() != 2 {
		t.Fatalf("unexpected state: %s depth=%d", h.Current(), h.Depth())
	}
	h.Reset(Route{Kind: Projects})
	if h.Depth() != 1 || h.Current().Kind != Projects {
		t.Fatalf("unexpected state after reset: %s depth=%d", h.Current(), h.Depth())
	}
}

func TestNavigator_Messages(t *testing.T) {
	var n Navigator
	if _, ok := n.GoBack()().(BackMsg); !ok {
		t.Fatalf("expected BackMsg")
	}
	if _, ok := n.Refresh()().(RefreshMsg); !ok {
		t.Fatalf("expected RefreshMsg")
	}
	msg, ok := Push(Route{Kind: Task, TaskID: "task-9"})().(PushMsg)
	if !ok || msg.Route.TaskID != "task-9" {
		t.Fatalf("unexpected push msg: %#v", msg)
	}
}

func TestRoute_String(t *testing.T) {
	r := Route{Kind: Task, ProjectID: "proj-1", TaskID: "task-1"}
	if r.String() != "task:proj-1/task-1" {
		t.Fatalf("unexpected %q", r.String())
	}
}

func TestRoute_IsOverlay(t *testing.T) {
	for _, tc := range []struct {
		kind Kind
		want bool
	}{
		{Today, false},
		{Projects, false},
		{Project, false},
		{Task, true},
		{NewTask, true},
	} {
		if got := (Route{Kind: tc.kind}).IsOverlay(); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.kind, tc.want, got)
		}
	}
}
