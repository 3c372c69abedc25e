package registry

import (
	"cmp"
	"context"
	"runtime/debug"
	"slices"
	"sync"
	"time"

	"github.com/randalmurphal/singleton/pkg/singleton/journal"
	"github.com/randalmurphal/singleton/pkg/singleton/key"
	"github.com/randalmurphal/singleton/pkg/singleton/observability"
)

// Builder constructs the instance for a key. It runs at most once at a time
// per key and its ctx must be passed to any nested GetOrCreate call.
//
// Reentrancy is detected only along that ctx. Two goroutines building A and
// B, each needing the other's key, wait on each other until a context
// deadline or WithWaitTimeout ends the wait; without either they block
// forever.
type Builder func(ctx context.Context) (any, error)

// Registry maps keys to lazily constructed instances.
// It is safe for concurrent use. The zero value is not usable; call New.
type Registry struct {
	mu      sync.RWMutex
	entries map[key.Key]*entry
	cfg     registryConfig
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	cfg := defaultRegistryConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Registry{
		entries: make(map[key.Key]*entry),
		cfg:     cfg,
	}
}

// GetOrCreate returns the instance for k, running builder to create it if no
// instance exists. Concurrent callers for the same key share one builder
// invocation: one runs it, the rest wait for its outcome.
//
// On builder failure the entry returns to Uninitialized and every caller of
// that attempt gets the same *BuilderError. A caller that stops waiting gets a
// *WaitError. A builder asking for its own key gets a *ReentrantError.
func (r *Registry) GetOrCreate(ctx context.Context, k key.Key, builder Builder) (any, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if k.IsZero() {
		return nil, ErrInvalidKey
	}
	if builder == nil {
		return nil, ErrNilBuilder
	}

	// Fast path: ready instance under read lock
	r.mu.RLock()
	if e, ok := r.entries[k]; ok && e.state == StateReady {
		v := e.value
		r.mu.RUnlock()
		r.cfg.metrics.RecordHit(ctx, k.String())
		return v, nil
	}
	r.mu.RUnlock()

	// Slow path: re-check under write lock
	r.mu.Lock()
	e, ok := r.entries[k]
	if !ok {
		e = &entry{}
		r.entries[k] = e
	}

	switch e.state {
	case StateReady:
		v := e.value
		r.mu.Unlock()
		r.cfg.metrics.RecordHit(ctx, k.String())
		return v, nil

	case StateConstructing:
		a := e.inflight
		r.mu.Unlock()
		if constructingIn(ctx, r, k) {
			err := &ReentrantError{Key: k, Chain: append(constructionChain(ctx), k)}
			observability.LogReentrant(r.cfg.logger, k.String(), chainNames(err.Chain))
			return nil, err
		}
		return r.wait(ctx, k, a)

	default:
		e.attempts++
		a := &attempt{number: e.attempts, done: make(chan struct{})}
		e.state = StateConstructing
		e.inflight = a
		r.mu.Unlock()
		return r.construct(ctx, k, e, a, builder)
	}
}

// wait blocks until a finishes, ctx ends or the wait timeout elapses.
func (r *Registry) wait(ctx context.Context, k key.Key, a *attempt) (any, error) {
	start := time.Now()
	waitCtx := ctx
	if r.cfg.waitTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, r.cfg.waitTimeout)
		defer cancel()
	}

	select {
	case <-a.done:
		r.cfg.metrics.RecordWait(ctx, k.String(), false)
		if a.err != nil {
			return nil, a.err
		}
		return a.value, nil
	case <-waitCtx.Done():
		err := &WaitError{Key: k, Waited: time.Since(start), Cause: waitCtx.Err()}
		r.cfg.metrics.RecordWait(ctx, k.String(), true)
		observability.LogWaitTimeout(r.cfg.logger, k.String(), err.Waited, err.Cause)
		return nil, err
	}
}

// construct runs builder for a claimed attempt and publishes the outcome.
func (r *Registry) construct(ctx context.Context, k key.Key, e *entry, a *attempt, builder Builder) (any, error) {
	name := k.String()
	observability.LogConstructStart(r.cfg.logger, name, a.number)

	buildCtx, span := r.cfg.spans.StartConstructSpan(withConstructing(ctx, r, k), name, a.number)
	started := time.Now()
	value, panicked, cause := invoke(buildCtx, builder)
	elapsed := time.Since(started)

	var err error
	if cause != nil {
		value = nil
		err = &BuilderError{Key: k, Attempt: a.number, Err: cause}
	}

	r.mu.Lock()
	// A Reset during construction detached e; the outcome still reaches
	// this attempt's callers but is not cached.
	attached := r.entries[k] == e
	if attached {
		if err == nil {
			e.state = StateReady
			e.value = value
		} else {
			e.state = StateUninitialized
		}
		e.inflight = nil
	}
	a.value, a.err = value, err
	close(a.done)
	r.mu.Unlock()

	switch {
	case !attached:
		r.cfg.spans.AddSpanEvent(buildCtx, "singleton.discarded")
	case err != nil:
		r.cfg.spans.AddSpanEvent(buildCtx, "singleton.rolled_back")
	}
	r.cfg.spans.EndSpanWithError(span, err)
	r.cfg.metrics.RecordConstruction(ctx, name, elapsed, err)
	r.record(journal.NewRecord(name, a.number, started, elapsed, cause, panicked))

	durationMs := float64(elapsed.Microseconds()) / 1000
	if err != nil {
		observability.LogConstructError(r.cfg.logger, name, err, durationMs)
		return nil, err
	}
	observability.LogConstructComplete(r.cfg.logger, name, durationMs)
	return value, nil
}

// invoke calls builder, converting a panic into a *PanicError.
func invoke(ctx context.Context, builder Builder) (value any, panicked bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			value = nil
			panicked = true
			err = &PanicError{Value: p, Stack: string(debug.Stack())}
		}
	}()
	value, err = builder(ctx)
	return value, false, err
}

// record appends rec to the journal. Failures are logged only.
func (r *Registry) record(rec journal.Record) {
	if r.cfg.journal == nil {
		return
	}
	if err := r.cfg.journal.Append(rec); err != nil {
		observability.LogJournalError(r.cfg.logger, rec.Key, err)
	}
}

// Preload installs v as the ready instance for k without running a builder.
// Returns ErrAlreadyInitialized if k is constructing or ready.
func (r *Registry) Preload(k key.Key, v any) error {
	if k.IsZero() {
		return ErrInvalidKey
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[k]
	if !ok {
		e = &entry{}
		r.entries[k] = e
	}
	if e.state != StateUninitialized {
		return ErrAlreadyInitialized
	}
	e.state = StateReady
	e.value = v
	return nil
}

// State returns the lifecycle state of k.
func (r *Registry) State(k key.Key) State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.entries[k]; ok {
		return e.state
	}
	return StateUninitialized
}

// Lookup returns the ready instance for k without constructing it.
func (r *Registry) Lookup(k key.Key) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.entries[k]; ok && e.state == StateReady {
		return e.value, true
	}
	return nil, false
}

// Keys returns the keys of ready instances ordered by their string form.
func (r *Registry) Keys() []key.Key {
	r.mu.RLock()
	keys := make([]key.Key, 0, len(r.entries))
	for k, e := range r.entries {
		if e.state == StateReady {
			keys = append(keys, k)
		}
	}
	r.mu.RUnlock()

	slices.SortFunc(keys, func(a, b key.Key) int {
		if c := cmp.Compare(a.String(), b.String()); c != 0 {
			return c
		}
		return cmp.Compare(a.Kind(), b.Kind())
	})
	return keys
}

// Len returns the number of ready instances.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, e := range r.entries {
		if e.state == StateReady {
			n++
		}
	}
	return n
}

// Reset discards the named entries, or every entry when no keys are given.
// Intended for tests. A construction in flight for a discarded key still
// completes and releases its waiters, but its instance is not cached.
func (r *Registry) Reset(keys ...key.Key) {
	r.mu.Lock()
	count := -1
	if len(keys) == 0 {
		clear(r.entries)
	} else {
		count = 0
		for _, k := range keys {
			if _, ok := r.entries[k]; ok {
				delete(r.entries, k)
				count++
			}
		}
	}
	r.mu.Unlock()
	observability.LogReset(r.cfg.logger, count)
}

func chainNames(chain []key.Key) []string {
	names := make([]string, len(chain))
	for i, k := range chain {
		names[i] = k.String()
	}
	return names
}
