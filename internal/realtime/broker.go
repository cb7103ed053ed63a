package realtime

import (
	"context"
	"sync"

	"interiorerp/internal/models"
	"interiorerp/internal/taskflow"
)

// TaskSubscriber is the snapshot source the broker fans out.
type TaskSubscriber interface {
	SubscribeTasks(ctx context.Context, projectID string, onSnapshot func([]models.Task), onError func(error)) (unsubscribe func())
}

// Broker shares one task subscription per project among all listeners of
// that project. Each delivery is a freshly derived board.
type Broker struct {
	source TaskSubscriber

	mu    sync.Mutex
	feeds map[string]*feed
}

type feed struct {
	subs map[chan []models.TaskView]struct{}
	stop func()
	last []models.TaskView
}

func NewBroker(source TaskSubscriber) *Broker {
	return &Broker{
		source: source,
		feeds:  make(map[string]*feed),
	}
}

// Register attaches a listener to projectID. The first listener opens the
// underlying subscription; the returned func detaches and closes the channel.
func (b *Broker) Register(projectID string) (<-chan []models.TaskView, func()) {
	ch := make(chan []models.TaskView, 1)

	b.mu.Lock()
	f, ok := b.feeds[projectID]
	if !ok {
		f = &feed{subs: make(map[chan []models.TaskView]struct{})}
		b.feeds[projectID] = f
	}
	f.subs[ch] = struct{}{}
	if f.last != nil {
		ch <- f.last
	}
	start := !ok
	b.mu.Unlock()

	if start {
		stop := b.source.SubscribeTasks(context.Background(), projectID,
			func(tasks []models.Task) { b.publish(projectID, taskflow.Board(tasks)) },
			nil,
		)
		b.mu.Lock()
		if cur, ok := b.feeds[projectID]; ok && cur == f {
			f.stop = stop
			stop = nil
		}
		b.mu.Unlock()
		if stop != nil {
			// every listener left before the subscription was up
			stop()
		}
	}

	var once sync.Once
	return ch, func() { once.Do(func() { b.unregister(projectID, ch) }) }
}

func (b *Broker) unregister(projectID string, ch chan []models.TaskView) {
	b.mu.Lock()
	f, ok := b.feeds[projectID]
	if !ok {
		b.mu.Unlock()
		return
	}
	delete(f.subs, ch)
	close(ch)
	var stop func()
	if len(f.subs) == 0 {
		delete(b.feeds, projectID)
		stop = f.stop
	}
	b.mu.Unlock()

	if stop != nil {
		stop()
	}
}

// publish hands board to every listener, replacing an unread older board.
func (b *Broker) publish(projectID string, board []models.TaskView) {
	b.mu.Lock()
	defer b.mu.Unlock()
	f, ok := b.feeds[projectID]
	if !ok {
		return
	}
	f.last = board
	for ch := range f.subs {
		select {
		case <-ch:
		default:
		}
		ch <- board
	}
}

// Listeners reports how many listeners are attached to projectID.
func (b *Broker) Listeners(projectID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if f, ok := b.feeds[projectID]; ok {
		return len(f.subs)
	}
	return 0
}
