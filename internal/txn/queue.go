package txn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hyperengineering/searchbridge/internal/metrics"
)

// ErrTxDone is returned when registering into, or ending, a transaction
// that has already committed or aborted.
var ErrTxDone = errors.New("transaction has already finished")

// Event is a transaction boundary an action can be bound to.
type Event int

const (
	Commit Event = iota
	Abort
)

func (e Event) String() string {
	switch e {
	case Commit:
		return "commit"
	case Abort:
		return "abort"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// Action is a deferred unit of work. It runs after the transaction outcome is
// decided, so its error has nobody to return to: Queue logs it and drops it.
type Action func(ctx context.Context) error

// Queue holds the deferred actions of one transaction.
//
// Each registered action runs at most once, and only if its event fires.
// Drain empties the queue for both events, so nothing leaks into a later
// transaction. Actions run one after another in registration order, but
// callers must not rely on the ordering.
type Queue struct {
	mu      sync.Mutex
	pending map[Event][]Action
	done    bool
}

// NewQueue returns an empty, open queue.
func NewQueue() *Queue {
	return &Queue{pending: make(map[Event][]Action)}
}

// Register binds action to event. Registering the same work twice yields two
// independent actions.
func (q *Queue) Register(event Event, action Action) error {
	if event != Commit && event != Abort {
		return fmt.Errorf("register action: unknown %s", event)
	}
	if action == nil {
		return errors.New("register action: nil action")
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.done {
		return ErrTxDone
	}
	q.pending[event] = append(q.pending[event], action)
	return nil
}

// Len returns the number of actions pending for event.
func (q *Queue) Len(event Event) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending[event])
}

// Drain closes the queue, discards actions bound to the other event, and runs
// every action bound to event. It returns the number of actions that failed.
// Failures never propagate: the transaction outcome is already decided.
func (q *Queue) Drain(ctx context.Context, event Event) int {
	q.mu.Lock()
	if q.done {
		q.mu.Unlock()
		return 0
	}
	q.done = true
	actions := q.pending[event]
	q.pending = make(map[Event][]Action)
	q.mu.Unlock()

	failed := 0
	for i, action := range actions {
		if err := runAction(ctx, action); err != nil {
			failed++
			metrics.DeferredActions.WithLabelValues(event.String(), "failed").Inc()
			slog.Warn("deferred action failed",
				"component", "txn",
				"action", "deferred_failed",
				"event", event.String(),
				"position", i,
				"error", err,
			)
			continue
		}
		metrics.DeferredActions.WithLabelValues(event.String(), "ok").Inc()
	}
	return failed
}

// runAction turns a panic into an error so one bad action cannot stop the rest.
func runAction(ctx context.Context, action Action) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("deferred action panicked: %v", recovered)
		}
	}()
	return action(ctx)
}
