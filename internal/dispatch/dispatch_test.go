package dispatch

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/nibzard/karen-go/internal/logging"
	"github.com/nibzard/karen-go/internal/metrics"
	"github.com/nibzard/karen-go/internal/parser"
	"github.com/nibzard/karen-go/internal/task"
	"github.com/nibzard/karen-go/internal/ui"
)

type fakeStore struct {
	loaded  []*task.Task
	loadErr error
	saveErr error
	saves   int
	saved   []*task.Task
}

func (s *fakeStore) Load(context.Context) ([]*task.Task, error) {
	return s.loaded, s.loadErr
}

func (s *fakeStore) Save(_ context.Context, tasks []*task.Task) error {
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = make([]*task.Task, len(tasks))
	for i, t := range tasks {
		s.saved[i] = t.Clone()
	}
	return nil
}

func (s *fakeStore) Close() error { return nil }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newDispatcher(t *testing.T, tasks ...*task.Task) (*Dispatcher, *fakeStore) {
	t.Helper()
	store := &fakeStore{}
	return New(task.NewList(tasks...), store), store
}

func seed(t *testing.T) []*task.Task {
	t.Helper()
	todo, err := task.NewTodo("read book")
	if err != nil {
		t.Fatal(err)
	}
	deadline, err := task.NewDeadline("return book", day(2024, time.August, 15))
	if err != nil {
		t.Fatal(err)
	}
	event, err := task.NewEvent("project meeting", day(2024, time.September, 1))
	if err != nil {
		t.Fatal(err)
	}
	return []*task.Task{todo, deadline, event}
}

func TestAddCommands(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"todo read book", "[T][ ] read book"},
		{"deadline return book /by 15/08/2024", "[D][ ] return book (by: Aug 15 2024)"},
		{"event project meeting /at 01/09/2024", "[E][ ] project meeting (at: Sep 1 2024)"},
		{"todo   spaced   out  ", "[T][ ] spaced   out"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			d, store := newDispatcher(t)
			res := d.Execute(context.Background(), tt.line)
			if res.Err != nil {
				t.Fatalf("unexpected error: %v", res.Err)
			}
			if !strings.Contains(res.Output, tt.want) || !strings.Contains(res.Output, "Now you have 1 tasks") {
				t.Errorf("output:\n%s", res.Output)
			}
			if store.saves != 1 || len(store.saved) != 1 || store.saved[0].String() != tt.want {
				t.Errorf("saves=%d saved=%v", store.saves, store.saved)
			}
		})
	}
}

func TestRejectedCommandsLeaveListUnchanged(t *testing.T) {
	tests := []struct {
		line string
		kind error
		msg  string
	}{
		{"", parser.ErrEmptyInput, "You didn't say anything dummy!"},
		{"todo", parser.ErrEmptyDescription, "Description of a todo cannot be empty dummy!"},
		{"todo    ", parser.ErrEmptyDescription, "Description of a todo cannot be empty dummy!"},
		{"deadline return book", parser.ErrMissingClause, "A deadline must have a by clause dummy!"},
		{"deadline /by 15/08/2024", parser.ErrEmptyDescription, "Description of a deadline cannot be empty dummy!"},
		{"deadline x /by 2024-08-15", parser.ErrBadDateFormat, "Your date format is incorrect dummy! Use dd/mm/yyyy."},
		{"event party /at 31/02/2024", parser.ErrBadDateFormat, "Your date format is incorrect dummy!"},
		{"event party", parser.ErrMissingClause, "An event must have a at clause dummy!"},
		{"mark", parser.ErrInvalidTaskNumber, "Give me a proper task number dummy!"},
		{"mark two", parser.ErrInvalidTaskNumber, "Give me a proper task number dummy!"},
		{"mark 0", parser.ErrInvalidTaskNumber, "Give me a proper task number dummy!"},
		{"mark 4", task.ErrIndexOutOfRange, "That task doesn't even exist dummy!"},
		{"unmark 9", task.ErrIndexOutOfRange, "That task doesn't even exist dummy!"},
		{"delete 4", task.ErrIndexOutOfRange, "That task doesn't even exist dummy!"},
		{"find", parser.ErrEmptyKeyword, "You need to type in a keyword to find!!"},
		{"update 1", parser.ErrEmptyDescription, "An update needs to have a new description dummy!"},
		{"update 5 new", task.ErrIndexOutOfRange, "That task doesn't even exist dummy!"},
		{"update 1 /by 15/08/2024", task.ErrNoDate, "A todo has no date to update dummy!"},
		{"update 2 better name /by 99/99/2024", parser.ErrBadDateFormat, "Your date format is incorrect dummy!"},
		{"update 2 better name /at 01/01/2025", parser.ErrMissingClause, "A deadline must have a by clause dummy!"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			tasks := seed(t)
			before := make([]string, len(tasks))
			for i, tk := range tasks {
				before[i] = tk.String()
			}

			d, store := newDispatcher(t, tasks...)
			res := d.Execute(context.Background(), tt.line)
			if !errors.Is(res.Err, tt.kind) {
				t.Fatalf("got error %v, want %v", res.Err, tt.kind)
			}
			if !strings.Contains(res.Output, tt.msg) {
				t.Errorf("output %q missing %q", res.Output, tt.msg)
			}
			if store.saves != 0 {
				t.Errorf("rejected command saved %d times", store.saves)
			}
			after := d.Tasks()
			if len(after) != len(before) {
				t.Fatalf("list size changed: %d -> %d", len(before), len(after))
			}
			for i, tk := range after {
				if tk.String() != before[i] {
					t.Errorf("task %d changed: %q -> %q", i, before[i], tk.String())
				}
			}
		})
	}
}

func TestMarkUnmarkDelete(t *testing.T) {
	d, store := newDispatcher(t, seed(t)...)
	ctx := context.Background()

	res := d.Execute(ctx, "mark 2")
	if res.Err != nil || !strings.Contains(res.Output, "[D][X] return book") {
		t.Fatalf("mark: %v\n%s", res.Err, res.Output)
	}
	res = d.Execute(ctx, "unmark 2")
	if res.Err != nil || !strings.Contains(res.Output, "[D][ ] return book") {
		t.Fatalf("unmark: %v\n%s", res.Err, res.Output)
	}
	res = d.Execute(ctx, "delete 1")
	if res.Err != nil || !strings.Contains(res.Output, "[T][ ] read book") || !strings.Contains(res.Output, "Now you have 2 tasks") {
		t.Fatalf("delete: %v\n%s", res.Err, res.Output)
	}
	if store.saves != 3 {
		t.Errorf("saves: got %d, want 3", store.saves)
	}
	if got := d.Tasks()[0].Description; got != "return book" {
		t.Errorf("after delete first task is %q", got)
	}
}

func TestListAndFind(t *testing.T) {
	d, store := newDispatcher(t, seed(t)...)
	ctx := context.Background()

	res := d.Execute(ctx, "list")
	for _, want := range []string{"1. [T][ ] read book", "2. [D][ ] return book (by: Aug 15 2024)", "3. [E][ ] project meeting (at: Sep 1 2024)"} {
		if !strings.Contains(res.Output, want) {
			t.Errorf("list missing %q:\n%s", want, res.Output)
		}
	}

	res = d.Execute(ctx, "find book")
	if !strings.Contains(res.Output, "1. [T][ ] read book") || !strings.Contains(res.Output, "2. [D][ ] return book") {
		t.Errorf("find:\n%s", res.Output)
	}
	if strings.Contains(res.Output, "meeting") {
		t.Errorf("find should not match meeting:\n%s", res.Output)
	}

	res = d.Execute(ctx, "find Book")
	if !strings.Contains(res.Output, "Nothing in your list matches") {
		t.Errorf("find is case-sensitive:\n%s", res.Output)
	}

	if store.saves != 0 {
		t.Errorf("read-only commands saved %d times", store.saves)
	}

	empty, _ := newDispatcher(t)
	if res := empty.Execute(ctx, "list"); !strings.Contains(res.Output, "pff there is nothing in your list") {
		t.Errorf("empty list:\n%s", res.Output)
	}
}

func TestUpdate(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		index int
		want  string
		saves int
	}{
		{"todo description", "update 1 read two books", 0, "[T][ ] read two books", 1},
		{"deadline date only", "update 2 /by 20/08/2024", 1, "[D][ ] return book (by: Aug 20 2024)", 1},
		{"deadline both", "update 2 return all books /by 20/08/2024", 1, "[D][ ] return all books (by: Aug 20 2024)", 1},
		{"event both", "update 3 team sync /at 02/09/2024", 2, "[E][ ] team sync (at: Sep 2 2024)", 1},
		{"nothing to change", "update 2 /by", 1, "[D][ ] return book (by: Aug 15 2024)", 0},
		{"event marker without date", "update 3 /at", 2, "[E][ ] project meeting (at: Sep 1 2024)", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, store := newDispatcher(t, seed(t)...)
			res := d.Execute(context.Background(), tt.line)
			if res.Err != nil {
				t.Fatalf("unexpected error: %v", res.Err)
			}
			if got := d.Tasks()[tt.index].String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if !strings.Contains(res.Output, tt.want) {
				t.Errorf("output:\n%s", res.Output)
			}
			if store.saves != tt.saves {
				t.Errorf("saves: got %d, want %d", store.saves, tt.saves)
			}
			changedReply := strings.Contains(res.Output, "Changed it, happy now?")
			if changedReply != (tt.saves > 0) {
				t.Errorf("reply does not match whether the task changed:\n%s", res.Output)
			}
		})
	}
}

func TestClearAndBye(t *testing.T) {
	d, store := newDispatcher(t, seed(t)...)
	ctx := context.Background()

	res := d.Execute(ctx, "clear")
	if res.Err != nil || len(d.Tasks()) != 0 || store.saves != 1 || len(store.saved) != 0 {
		t.Fatalf("clear: err=%v tasks=%d saves=%d", res.Err, len(d.Tasks()), store.saves)
	}

	res = d.Execute(ctx, "bye")
	if !res.Exit || !strings.Contains(res.Output, "K finally, good riddance!") {
		t.Errorf("bye: %+v", res)
	}
	if store.saves != 1 {
		t.Errorf("bye should not save")
	}
}

func TestUnknownCommand(t *testing.T) {
	d, store := newDispatcher(t)
	for _, line := range []string{"blah", "LIST", " list", "todos x"} {
		res := d.Execute(context.Background(), line)
		if res.Err != nil || res.Exit {
			t.Errorf("%q: %+v", line, res)
		}
		if !strings.Contains(res.Output, "What are you saying??? Try again") {
			t.Errorf("%q: output %q", line, res.Output)
		}
	}
	if store.saves != 0 {
		t.Errorf("unknown commands saved")
	}
}

func TestSaveFailureKeepsChange(t *testing.T) {
	d, store := newDispatcher(t)
	store.saveErr = errors.New("disk full")

	res := d.Execute(context.Background(), "todo read book")
	if res.Err != nil {
		t.Fatalf("command error: %v", res.Err)
	}
	if res.SaveErr == nil || !strings.Contains(res.Output, "disk full") {
		t.Errorf("save error not reported: %+v", res)
	}
	if len(d.Tasks()) != 1 {
		t.Errorf("in-memory change should stay")
	}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	store := &fakeStore{loaded: seed(t)}
	d := New(nil, store)
	if err := d.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if len(d.Tasks()) != 3 {
		t.Errorf("loaded %d tasks", len(d.Tasks()))
	}

	store.loadErr = errors.New("corrupt")
	if err := d.Load(ctx); err == nil {
		t.Fatal("expected load error")
	}
	if len(d.Tasks()) != 0 {
		t.Errorf("failed load should leave an empty list")
	}

	if err := New(nil, nil).Load(ctx); err != nil {
		t.Errorf("nil store: %v", err)
	}
}

func TestServe(t *testing.T) {
	d, store := newDispatcher(t)
	in := strings.NewReader("todo read book\r\nlist\nbye\ntodo never\n")
	var out bytes.Buffer

	if err := d.Serve(context.Background(), in, &out); err != nil {
		t.Fatalf("Serve: %v", err)
	}
	got := out.String()
	for _, want := range []string{"hi... I'm Karen", "Fine, I'll add this task", "1. [T][ ] read book", "good riddance"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "never") {
		t.Errorf("input after bye should be ignored:\n%s", got)
	}
	if store.saves != 1 {
		t.Errorf("saves: got %d, want 1", store.saves)
	}
	if !strings.HasPrefix(got, ui.Rule) {
		t.Errorf("output should start framed:\n%s", got)
	}
}

func TestServeEOF(t *testing.T) {
	d, _ := newDispatcher(t)
	var out bytes.Buffer
	if err := d.Serve(context.Background(), strings.NewReader("todo a"), &out); err != nil {
		t.Fatalf("Serve: %v", err)
	}
	if len(d.Tasks()) != 1 {
		t.Errorf("last line without newline should run")
	}
}

func TestServeCancelled(t *testing.T) {
	d, _ := newDispatcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := d.Serve(ctx, strings.NewReader("todo a\n"), &bytes.Buffer{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
	if len(d.Tasks()) != 0 {
		t.Errorf("no command should run after cancel")
	}
}

func TestObservability(t *testing.T) {
	m := metrics.New()
	session, err := logging.NewSessionLogger(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	d := New(nil, &fakeStore{}, WithMetrics(m), WithSessionLog(session))
	ctx := context.Background()

	d.Execute(ctx, "todo a")
	d.Execute(ctx, "mark 7")
	d.Execute(ctx, "dance")
	session.Close()

	n, err := testutil.GatherAndCount(m.Registry, "karen_commands_total")
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("command series: got %d, want 3", n)
	}
	events, err := logging.ReadEvents(session.LogPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events", len(events))
	}
	if !events[0].OK || events[0].Keyword != "todo" || events[0].Tasks != 1 {
		t.Errorf("event 0: %+v", events[0])
	}
	if events[1].OK || events[1].Error != "That task doesn't even exist dummy!" {
		t.Errorf("event 1: %+v", events[1])
	}
	if events[2].Keyword != "unknown" {
		t.Errorf("event 2: %+v", events[2])
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{task.ErrIndexOutOfRange, "That task doesn't even exist dummy!"},
		{task.ErrNoDate, "A todo has no date to update dummy!"},
		{task.ErrEmptyDescription, "Description cannot be empty dummy!"},
		{errors.New("other"), "other"},
	}
	for _, tt := range tests {
		if got := UserMessage(tt.err); got != tt.want {
			t.Errorf("UserMessage(%v): got %q, want %q", tt.err, got, tt.want)
		}
	}
	_, err := parser.New("todo").TodoDescription()
	if got := UserMessage(err); got != "Description of a todo cannot be empty dummy!" {
		t.Errorf("parser error: got %q", got)
	}
}
