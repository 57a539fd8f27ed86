package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// processor carries the Start/Stop lifecycle shared by the background jobs.
type processor struct {
	name string

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// start launches loop in its own goroutine. It returns an error if the
// processor is already running.
func (p *processor) start(ctx context.Context, loop func(ctx context.Context, stop <-chan struct{})) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("%s is already running", p.name)
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	stop, done := p.stopCh, p.doneCh
	p.mu.Unlock()

	go func() {
		defer func() {
			p.mu.Lock()
			if p.doneCh == done {
				p.running = false
			}
			p.mu.Unlock()
			close(done)
		}()
		loop(ctx, stop)
	}()
	return nil
}

// Stop gracefully stops the processor and waits for completion. It may be
// called again after a timed-out Stop to keep waiting.
func (p *processor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	if p.stopCh != nil {
		close(p.stopCh)
		p.stopCh = nil
	}
	done := p.doneCh
	p.mu.Unlock()

	select {
	case <-done:
		slog.InfoContext(ctx, "Processor stopped gracefully", "component", "worker", "processor", p.name)
	case <-ctx.Done():
		slog.WarnContext(ctx, "Processor stop timed out", "component", "worker", "processor", p.name)
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

// IsRunning returns whether the processor is currently running
func (p *processor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Done is closed when the loop has exited.
func (p *processor) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doneCh
}

// tickLoop runs cycle immediately and then on every tick until stop or
// ctx fires. Neither wait blocks shutdown.
func tickLoop(ctx context.Context, stop <-chan struct{}, interval time.Duration, cycle func(context.Context)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	cycle(ctx)

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			cycle(ctx)
		}
	}
}

// sleepCtx waits for d unless stop or ctx fires first. It reports whether
// the full wait elapsed.
func sleepCtx(ctx context.Context, stop <-chan struct{}, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-stop:
		return false
	case <-ctx.Done():
		return false
	}
}

// stopped reports, without blocking, whether stop or ctx has fired.
func stopped(ctx context.Context, stop <-chan struct{}) bool {
	select {
	case <-stop:
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
