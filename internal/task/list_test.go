package task

import (
	"errors"
	"testing"
	"time"
)

func sampleList(t *testing.T, descs ...string) *List {
	t.Helper()
	l := NewList()
	for _, d := range descs {
		l.Add(mustTodo(t, d))
	}
	return l
}

func descriptions(l *List) []string {
	var out []string
	for _, task := range l.Tasks() {
		out = append(out, task.Description)
	}
	return out
}

func TestListGet(t *testing.T) {
	l := sampleList(t, "a", "b")
	if l.Len() != 2 {
		t.Fatalf("Len: got %d, want 2", l.Len())
	}
	got, err := l.Get(1)
	if err != nil {
		t.Fatalf("Get(1): %v", err)
	}
	if got.Description != "b" {
		t.Errorf("Get(1): got %q", got.Description)
	}
	for _, i := range []int{-1, 2, 100} {
		if _, err := l.Get(i); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Get(%d): expected ErrIndexOutOfRange, got %v", i, err)
		}
	}
}

func TestListPosition(t *testing.T) {
	l := sampleList(t, "a", "b", "c")
	i, err := l.Position(3)
	if err != nil || i != 2 {
		t.Errorf("Position(3): got %d, %v", i, err)
	}
	for _, n := range []int{0, 4} {
		if _, err := l.Position(n); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Position(%d): expected ErrIndexOutOfRange, got %v", n, err)
		}
	}
}

func TestListRemove(t *testing.T) {
	tests := []struct {
		name  string
		index int
		want  []string
	}{
		{"first", 0, []string{"b", "c", "d"}},
		{"middle", 1, []string{"a", "c", "d"}},
		{"last", 3, []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := sampleList(t, "a", "b", "c", "d")
			removed, err := l.Remove(tt.index)
			if err != nil {
				t.Fatalf("Remove: %v", err)
			}
			if removed.Description != []string{"a", "b", "c", "d"}[tt.index] {
				t.Errorf("removed wrong task %q", removed.Description)
			}
			if l.Len() != 3 {
				t.Fatalf("Len: got %d, want 3", l.Len())
			}
			got := descriptions(l)
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("position %d: got %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}

	t.Run("out of range leaves list intact", func(t *testing.T) {
		l := sampleList(t, "a")
		if _, err := l.Remove(1); !errors.Is(err, ErrIndexOutOfRange) {
			t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
		}
		if l.Len() != 1 {
			t.Errorf("Len: got %d, want 1", l.Len())
		}
	})
}

func TestListMarkRoundTrip(t *testing.T) {
	l := sampleList(t, "a", "b")
	if _, err := l.MarkDone(1); err != nil {
		t.Fatal(err)
	}
	task, _ := l.Get(1)
	if !task.Done {
		t.Fatal("expected done")
	}
	if _, err := l.MarkNotDone(1); err != nil {
		t.Fatal(err)
	}
	if task.Done {
		t.Fatal("expected back to not done")
	}
	if _, err := l.MarkDone(5); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestListFind(t *testing.T) {
	l := NewList(
		mustTodo(t, "buy milk"),
		mustDeadline(t, "submit report", day(2024, time.May, 1)),
	)

	matches := l.Find("report")
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if matches[0].Index != 1 {
		t.Errorf("index: got %d, want 1", matches[0].Index)
	}
	if matches[0].Task.Kind != KindDeadline || !matches[0].Task.Date.Equal(day(2024, time.May, 1)) {
		t.Errorf("unexpected task %v", matches[0].Task)
	}

	if got := l.Find("Report"); len(got) != 0 {
		t.Errorf("search should be case-sensitive, got %d matches", len(got))
	}
	if got := l.Find("nothing"); len(got) != 0 {
		t.Errorf("expected no matches, got %d", len(got))
	}
	if l.Len() != 2 {
		t.Errorf("Find mutated the list")
	}
}

func TestListFindOrder(t *testing.T) {
	l := sampleList(t, "read book", "cook", "book flight", "read news")
	matches := l.Find("book")
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].Index != 0 || matches[1].Index != 2 {
		t.Errorf("unexpected order: %d, %d", matches[0].Index, matches[1].Index)
	}
}

func TestListClearAndReplace(t *testing.T) {
	l := sampleList(t, "a", "b")
	l.Clear()
	if l.Len() != 0 {
		t.Fatalf("Len after Clear: %d", l.Len())
	}
	l.Replace([]*Task{mustTodo(t, "x")})
	if got := descriptions(l); len(got) != 1 || got[0] != "x" {
		t.Errorf("after Replace: %v", got)
	}
}

func TestListTasksIsCopy(t *testing.T) {
	l := sampleList(t, "a", "b")
	snapshot := l.Tasks()
	snapshot[0] = nil
	if task, _ := l.Get(0); task == nil {
		t.Error("modifying the snapshot changed the list")
	}
}
