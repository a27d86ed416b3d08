// Package dispatcher queues issue-fixing runs, serialises execution per
// issue, and retries failed attempts with exponential backoff.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/cexll/swe-crew/internal/runstore"
)

var (
	// ErrQueueFull indicates the dispatcher cannot accept new runs right now.
	ErrQueueFull = errors.New("run queue is full")
	// ErrQueueClosed indicates the dispatcher has been shut down.
	ErrQueueClosed = errors.New("run queue is closed")
)

// nonRetryableError wraps a failure that further attempts cannot fix,
// such as a rejected configuration.
type nonRetryableError struct {
	err error
}

func (e *nonRetryableError) Error() string { return e.err.Error() }
func (e *nonRetryableError) Unwrap() error { return e.err }

// NonRetryable marks an error so the dispatcher stops retrying the run.
func NonRetryable(err error) error {
	if err == nil {
		return nil
	}
	return &nonRetryableError{err: err}
}

// IsNonRetryable reports whether err was marked with NonRetryable.
func IsNonRetryable(err error) bool {
	var nr *nonRetryableError
	return errors.As(err, &nr)
}

// RunExecutor performs one attempt of a run.
type RunExecutor interface {
	Execute(ctx context.Context, run *runstore.Run) error
}

// Config controls dispatcher behaviour.
type Config struct {
	Workers           int
	QueueSize         int
	MaxAttempts       int
	InitialBackoff    time.Duration
	BackoffMultiplier float64
	MaxBackoff        time.Duration
}

// Dispatcher owns the worker pool and the retry schedule.
type Dispatcher struct {
	executor RunExecutor
	cfg      Config

	queue chan *queueItem

	keyedLocks *keyedMutex

	stopCh chan struct{}
	wg     sync.WaitGroup

	once sync.Once
}

type queueItem struct {
	run     *runstore.Run
	attempt int
}

// New creates a dispatcher and starts its workers.
func New(executor RunExecutor, cfg Config) *Dispatcher {
	normalized := normalizeConfig(cfg)
	d := &Dispatcher{
		executor:   executor,
		cfg:        normalized,
		queue:      make(chan *queueItem, normalized.QueueSize),
		keyedLocks: newKeyedMutex(),
		stopCh:     make(chan struct{}),
	}
	d.startWorkers()
	return d
}

func normalizeConfig(cfg Config) Config {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = cfg.Workers * 4
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 15 * time.Second
	}
	if cfg.BackoffMultiplier <= 1 {
		cfg.BackoffMultiplier = 2
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Minute
	}
	return cfg
}

func (d *Dispatcher) startWorkers() {
	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

// Enqueue queues a run for its first attempt.
func (d *Dispatcher) Enqueue(run *runstore.Run) error {
	if run == nil {
		return errors.New("dispatcher enqueue: run is nil")
	}

	select {
	case <-d.stopCh:
		return ErrQueueClosed
	default:
	}

	select {
	case d.queue <- &queueItem{run: run, attempt: 1}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for {
		select {
		case <-d.stopCh:
			return
		case item, ok := <-d.queue:
			if !ok {
				return
			}
			d.process(item)
		}
	}
}

func (d *Dispatcher) process(item *queueItem) {
	run := item.run
	run.Attempt = item.attempt

	key := run.Key()
	d.keyedLocks.Lock(key)

	ctx := context.Background()
	err := d.executor.Execute(ctx, run)

	d.keyedLocks.Unlock(key)

	if err != nil {
		log.Printf("[Dispatcher] Run %s attempt %d failed: %v", key, item.attempt, err)
		if IsNonRetryable(err) {
			log.Printf("[Dispatcher] Run %s attempt %d marked non-retryable; no further attempts", key, item.attempt)
			return
		}
		d.handleRetry(item, err)
		return
	}

	log.Printf("[Dispatcher] Run %s attempt %d succeeded", key, item.attempt)
}

func (d *Dispatcher) handleRetry(item *queueItem, execErr error) {
	if item.attempt >= d.cfg.MaxAttempts {
		log.Printf("[Dispatcher] Run %s exceeded max attempts (%d): %v", item.run.Key(), d.cfg.MaxAttempts, execErr)
		return
	}

	nextAttempt := item.attempt + 1
	delay := d.backoffDuration(nextAttempt)
	log.Printf("[Dispatcher] Scheduling retry %d for %s in %s", nextAttempt, item.run.Key(), delay)

	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-timer.C:
			d.enqueueRetry(&queueItem{
				run:     item.run,
				attempt: nextAttempt,
			})
		case <-d.stopCh:
			return
		}
	}()
}

func (d *Dispatcher) enqueueRetry(item *queueItem) {
	for {
		select {
		case <-d.stopCh:
			return
		case d.queue <- item:
			return
		default:
			time.Sleep(100 * time.Millisecond)
		}
	}
}

func (d *Dispatcher) backoffDuration(attempt int) time.Duration {
	backoff := float64(d.cfg.InitialBackoff)
	for i := 1; i < attempt; i++ {
		backoff *= d.cfg.BackoffMultiplier
		if backoff >= float64(d.cfg.MaxBackoff) {
			return d.cfg.MaxBackoff
		}
	}
	return time.Duration(backoff)
}

// Shutdown stops the workers and waits for in-flight runs, bounded by ctx.
func (d *Dispatcher) Shutdown(ctx context.Context) {
	d.once.Do(func() {
		close(d.stopCh)
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		d.wg.Wait()
	}()

	select {
	case <-ctx.Done():
		return
	case <-done:
		return
	}
}

// keyedMutex serialises execution per issue key so two attempts for the
// same issue never run concurrently.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) Lock(key string) {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
}

func (k *keyedMutex) Unlock(key string) {
	k.mu.Lock()
	m, ok := k.locks[key]
	k.mu.Unlock()

	if !ok {
		return
	}

	m.Unlock()
}

// String renders the effective configuration for startup logs.
func (c Config) String() string {
	return fmt.Sprintf("workers=%d queue=%d max_attempts=%d backoff=%s..%s x%.1f",
		c.Workers, c.QueueSize, c.MaxAttempts, c.InitialBackoff, c.MaxBackoff, c.BackoffMultiplier)
}
