package realtime

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"interiorerp/internal/models"
)

type fakeSource struct {
	mu        sync.Mutex
	opened    int
	closed    int
	callbacks map[string]func([]models.Task)
}

func newFakeSource() *fakeSource {
	return &fakeSource{callbacks: map[string]func([]models.Task){}}
}

func (f *fakeSource) SubscribeTasks(_ context.Context, projectID string, onSnapshot func([]models.Task), _ func(error)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened++
	f.callbacks[projectID] = onSnapshot
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.closed++
		delete(f.callbacks, projectID)
	}
}

func (f *fakeSource) emit(projectID string, tasks []models.Task) {
	f.mu.Lock()
	cb := f.callbacks[projectID]
	f.mu.Unlock()
	if cb != nil {
		cb(tasks)
	}
}

func receive(t *testing.T, ch <-chan []models.TaskView) []models.TaskView {
	t.Helper()
	select {
	case board := <-ch:
		return board
	case <-time.After(time.Second):
		t.Fatal("no board delivered")
	}
	return nil
}

func TestBrokerSharesOneSubscriptionPerProject(t *testing.T) {
	src := newFakeSource()
	b := NewBroker(src)

	ch1, stop1 := b.Register("p1")
	ch2, stop2 := b.Register("p1")
	if src.opened != 1 {
		t.Fatalf("opened=%d, want 1", src.opened)
	}
	if n := b.Listeners("p1"); n != 2 {
		t.Fatalf("listeners=%d, want 2", n)
	}

	src.emit("p1", []models.Task{
		{ID: "a", ProjectID: "p1", Status: models.StatusTodo, Approvals: models.NewTaskApprovals()},
		{ID: "b", ProjectID: "p1", Status: models.StatusTodo, Dependencies: []string{"a"}, Approvals: models.NewTaskApprovals()},
	})
	for _, ch := range []<-chan []models.TaskView{ch1, ch2} {
		board := receive(t, ch)
		if len(board) != 2 || !board[1].Blocked {
			t.Fatalf("unexpected board: %+v", board)
		}
	}

	stop1()
	if src.closed != 0 {
		t.Fatal("subscription closed while a listener remains")
	}
	stop2()
	stop2()
	if src.closed != 1 {
		t.Fatalf("closed=%d, want 1", src.closed)
	}
	if _, ok := <-ch1; ok {
		t.Fatal("channel of detached listener still open")
	}
}

func TestBrokerLatestBoardWins(t *testing.T) {
	src := newFakeSource()
	b := NewBroker(src)
	ch, stop := b.Register("p1")
	defer stop()

	src.emit("p1", []models.Task{{ID: "a", ProjectID: "p1", Status: models.StatusTodo}})
	src.emit("p1", []models.Task{{ID: "a", ProjectID: "p1", Status: models.StatusInProgress}})

	board := receive(t, ch)
	if board[0].Status != models.StatusInProgress {
		t.Fatalf("stale board delivered: %s", board[0].Status)
	}
}

func TestBrokerLateListenerGetsLastBoard(t *testing.T) {
	src := newFakeSource()
	b := NewBroker(src)
	_, stop1 := b.Register("p1")
	defer stop1()
	src.emit("p1", []models.Task{{ID: "a", ProjectID: "p1"}})

	ch, stop2 := b.Register("p1")
	defer stop2()
	if board := receive(t, ch); len(board) != 1 {
		t.Fatalf("late listener board: %+v", board)
	}
}

func TestIsTeardownError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, true},
		{"wrapped canceled", errors.Join(errors.New("watch tasks"), context.Canceled), true},
		{"disconnected", mongo.ErrClientDisconnected, true},
		{"unauthorized", mongo.CommandError{Code: 13, Name: "Unauthorized"}, true},
		{"interrupted", mongo.CommandError{Code: 11601, Name: "Interrupted"}, true},
		{"other server error", mongo.CommandError{Code: 2, Name: "BadValue"}, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsTeardownError(tc.err); got != tc.want {
				t.Fatalf("IsTeardownError(%v)=%v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
