package txn

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
)

func TestLockManager_Reentrant(t *testing.T) {
	l := NewLockManager()
	owner := ulid.Make()

	acquired, err := l.AcquireExclusive(context.Background(), owner, 10)
	if err != nil || !acquired {
		t.Fatalf("first acquire = (%v, %v), want (true, nil)", acquired, err)
	}
	acquired, err = l.AcquireExclusive(context.Background(), owner, 10)
	if err != nil || acquired {
		t.Fatalf("re-acquire = (%v, %v), want (false, nil)", acquired, err)
	}
	if got, ok := l.Owner(10); !ok || got != owner {
		t.Errorf("Owner(10) = (%v, %v), want owner", got, ok)
	}
}

func TestLockManager_BlocksUntilRelease(t *testing.T) {
	l := NewLockManager()
	first, second := ulid.Make(), ulid.Make()

	if _, err := l.AcquireExclusive(context.Background(), first, 10); err != nil {
		t.Fatal(err)
	}

	got := make(chan error, 1)
	go func() {
		_, err := l.AcquireExclusive(context.Background(), second, 10)
		got <- err
	}()

	select {
	case <-got:
		t.Fatal("second owner acquired a held lock")
	case <-time.After(20 * time.Millisecond):
	}

	l.Release(first, 10)

	select {
	case err := <-got:
		if err != nil {
			t.Fatalf("second acquire error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("second owner never acquired the lock")
	}
	if owner, _ := l.Owner(10); owner != second {
		t.Error("lock not owned by second owner")
	}
}

func TestLockManager_ContextCancelled(t *testing.T) {
	l := NewLockManager()
	l.AcquireExclusive(context.Background(), ulid.Make(), 10)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := l.AcquireExclusive(ctx, ulid.Make(), 10)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("acquire error = %v, want DeadlineExceeded", err)
	}
}

func TestLockManager_ReleaseByNonOwnerIsIgnored(t *testing.T) {
	l := NewLockManager()
	owner := ulid.Make()
	l.AcquireExclusive(context.Background(), owner, 10)

	l.Release(ulid.Make(), 10)
	if _, ok := l.Owner(10); !ok {
		t.Error("lock released by a transaction that did not hold it")
	}
	l.Release(owner, 10)
	if l.Held() != 0 {
		t.Errorf("Held() = %d, want 0", l.Held())
	}
}
