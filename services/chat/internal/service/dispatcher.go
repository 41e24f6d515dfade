package service

import (
	"context"
	"sync"
)

// dispatcher runs background reply jobs. Jobs keep the values of the request
// that started them but are cancelled only by Close.
type dispatcher struct {
	root   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func newDispatcher() *dispatcher {
	root, cancel := context.WithCancel(context.Background())
	return &dispatcher{root: root, cancel: cancel}
}

// Go starts fn in its own goroutine. It reports false, without running fn,
// once the dispatcher is closed.
func (d *dispatcher) Go(parent context.Context, fn func(ctx context.Context)) bool {
	if !d.reserve() {
		return false
	}
	d.start(parent, fn)
	return true
}

// reserve claims a job slot that Close waits for. It reports false once the
// dispatcher is closed. Every successful reserve is followed by exactly one
// start or release.
func (d *dispatcher) reserve() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	d.wg.Add(1)
	return true
}

// release gives back an unused reservation.
func (d *dispatcher) release() {
	d.wg.Done()
}

// start runs fn in a reserved slot. A job started after Close begins with a
// cancelled context.
func (d *dispatcher) start(parent context.Context, fn func(ctx context.Context)) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	stop := context.AfterFunc(d.root, cancel)

	go func() {
		defer d.wg.Done()
		defer cancel()
		defer stop()
		fn(ctx)
	}()
}

// Close cancels running jobs and waits for them to return, or for ctx to
// expire.
func (d *dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.cancel()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
