package race

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// task is a cancellable callback scheduled on the coordinator clock.
// Callbacks check cancelled() under the room lock, so a task that fires
// concurrently with cancel never touches the room.
type task struct {
	stop chan struct{}
	once sync.Once
}

func newTask() *task {
	return &task{stop: make(chan struct{})}
}

func (t *task) cancel() {
	t.once.Do(func() { close(t.stop) })
}

func (t *task) cancelled() bool {
	select {
	case <-t.stop:
		return true
	default:
		return false
	}
}

// after runs fn once when d has elapsed.
func after(clock clockwork.Clock, d time.Duration, fn func(t *task)) *task {
	t := newTask()
	timer := clock.NewTimer(d)
	go func() {
		select {
		case <-timer.Chan():
			fn(t)
		case <-t.stop:
			stopAndDrainTimer(timer)
		}
	}()
	return t
}

// every runs fn on each tick until fn returns false or the task is cancelled.
func every(clock clockwork.Clock, d time.Duration, fn func(t *task) bool) *task {
	t := newTask()
	ticker := clock.NewTicker(d)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.Chan():
				if !fn(t) {
					return
				}
			case <-t.stop:
				return
			}
		}
	}()
	return t
}

func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
