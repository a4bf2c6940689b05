// Package viewstate tracks the load lifecycle of one screen.
//
// A screen moves Idle -> Loading -> Ready | Failed. Ready may flip its
// Mutating flag while a remote write and the follow-up reload run. At most one
// fetch is in flight per screen; further triggers join it.
package viewstate

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/apperr"
)

type Phase int

const (
	Idle Phase = iota
	Loading
	Ready
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// State is a copy of the screen's canonical state. Data is only meaningful in
// Ready, Err only in Failed.
type State[T any] struct {
	Phase    Phase
	Data     T
	Err      error
	Mutating bool
}

type FetchFunc[T any] func(ctx context.Context) (T, error)

// WriteFunc receives the last confirmed data.
type WriteFunc[T any] func(ctx context.Context, current T) error

type Screen[T any] struct {
	name   string
	fetch  FetchFunc[T]
	logger *zap.Logger

	mu       sync.Mutex
	state    State[T]
	mounted  bool
	gen      uint64
	inflight chan struct{}
	cancel   context.CancelFunc
}

var closedCh = func() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}()

func New[T any](name string, fetch FetchFunc[T], logger *zap.Logger) *Screen[T] {
	return &Screen[T]{
		name:   name,
		fetch:  fetch,
		logger: logger.With(zap.String("screen", name)),
	}
}

func (s *Screen[T]) Name() string { return s.name }

func (s *Screen[T]) State() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Screen[T]) Mounted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mounted
}

// Enter mounts the screen and triggers a load.
func (s *Screen[T]) Enter(ctx context.Context) <-chan struct{} {
	s.mu.Lock()
	s.mounted = true
	s.mu.Unlock()

	done, _ := s.Trigger(ctx)
	return done
}

// Trigger starts a fetch unless one is already running, in which case it
// returns the running fetch's completion channel and false. An unmounted
// screen ignores the call.
func (s *Screen[T]) Trigger(ctx context.Context) (<-chan struct{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.mounted {
		return closedCh, false
	}
	if s.inflight != nil {
		s.logger.Debug("coalescing trigger onto in-flight request", zap.Stringer("phase", s.state.Phase))
		return s.inflight, false
	}
	return s.startLocked(ctx), true
}

// Retry is an explicit user retry. It behaves like Trigger.
func (s *Screen[T]) Retry(ctx context.Context) (<-chan struct{}, bool) {
	return s.Trigger(ctx)
}

// Load triggers a fetch (or joins the running one) and waits for it.
func (s *Screen[T]) Load(ctx context.Context) (State[T], error) {
	done, _ := s.Trigger(ctx)
	return s.wait(ctx, done)
}

// Await waits for the in-flight request, if any, and returns the state.
func (s *Screen[T]) Await(ctx context.Context) (State[T], error) {
	s.mu.Lock()
	done := s.inflight
	s.mu.Unlock()

	if done == nil {
		return s.State(), nil
	}
	return s.wait(ctx, done)
}

func (s *Screen[T]) wait(ctx context.Context, done <-chan struct{}) (State[T], error) {
	select {
	case <-done:
		return s.State(), nil
	case <-ctx.Done():
		return s.State(), ctx.Err()
	}
}

// Leave unmounts the screen. Results of requests still running are dropped.
func (s *Screen[T]) Leave() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mounted = false
	s.gen++
	s.inflight = nil
	s.state = State[T]{}
}

// Mutate runs write against the last confirmed data and then reloads. It is
// only allowed from Ready while no other mutation runs. A validation failure
// leaves the state untouched; any other write failure moves to Failed.
func (s *Screen[T]) Mutate(ctx context.Context, write WriteFunc[T]) error {
	s.mu.Lock()
	switch {
	case !s.mounted:
		s.mu.Unlock()
		return apperr.ErrNotMounted
	case s.state.Phase == Loading || s.state.Mutating:
		s.mu.Unlock()
		return apperr.ErrBusy
	case s.state.Phase != Ready:
		s.mu.Unlock()
		return apperr.ErrNotReady
	}

	current := s.state.Data
	s.state.Mutating = true
	gen := s.gen
	done := make(chan struct{})
	s.inflight = done
	wctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.mu.Unlock()

	defer cancel()

	if err := write(wctx, current); err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		defer close(done)

		if !s.currentLocked(gen) {
			s.logger.Debug("discarding write outcome after leave", zap.Error(err))
			return err
		}
		s.inflight = nil
		s.cancel = nil

		var ve *apperr.ValidationError
		if errors.As(err, &ve) {
			s.state.Mutating = false
			return err
		}
		s.logger.Warn("remote write failed", zap.Error(err), zap.String("kind", apperr.Kind(err)))
		s.state = State[T]{Phase: Failed, Err: err}
		return err
	}

	s.mu.Lock()
	if !s.currentLocked(gen) {
		s.mu.Unlock()
		close(done)
		return nil
	}
	s.state = State[T]{Phase: Loading}
	s.mu.Unlock()

	data, err := s.fetch(wctx)
	s.apply(gen, done, data, err)
	return nil
}

func (s *Screen[T]) startLocked(ctx context.Context) chan struct{} {
	s.state = State[T]{Phase: Loading}

	done := make(chan struct{})
	s.inflight = done
	gen := s.gen

	// The fetch outlives the request that triggered it; Leave cancels it.
	fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	go func() {
		defer cancel()
		data, err := s.fetch(fctx)
		s.apply(gen, done, data, err)
	}()
	return done
}

func (s *Screen[T]) apply(gen uint64, done chan struct{}, data T, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer close(done)

	if !s.currentLocked(gen) {
		s.logger.Debug("discarding late result", zap.Bool("failed", err != nil))
		return
	}
	s.inflight = nil
	s.cancel = nil

	if err != nil {
		s.logger.Warn("load failed", zap.Error(err), zap.String("kind", apperr.Kind(err)))
		s.state = State[T]{Phase: Failed, Err: err}
		return
	}
	s.state = State[T]{Phase: Ready, Data: data}
}

func (s *Screen[T]) currentLocked(gen uint64) bool {
	return s.mounted && gen == s.gen
}
