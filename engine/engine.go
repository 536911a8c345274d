// Package engine runs Kara programs against worlds one atomic unit per
// tick. A Session owns the only mutable state of a run: the current world
// value and the runner's cursor. Continuous mode drives the session from a
// ticker in a background goroutine; cancellation is cooperative through a
// context, and every unit of work is recorded in an event log.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kara-xyz/go-kara/eventlog"
	"github.com/kara-xyz/go-kara/world"
)

// ErrSessionFinished reports a Step on a session whose run is over.
var ErrSessionFinished = errors.New("engine: session already finished")

// Options configures a Session. The zero value of each field selects the
// default.
type Options struct {
	// Interval is the delay between ticks in continuous mode.
	Interval time.Duration
	// Logger receives structured run progress. Defaults to a nop logger.
	Logger *zap.Logger
	// Store records the run trace. Defaults to an in-memory store.
	Store eventlog.Store
	// NewID generates run ids. Defaults to random UUIDs.
	NewID func() string
	// Clock stamps recorded events. Defaults to time.Now.
	Clock func() time.Time
}

// DefaultOptions returns the options used for zero-valued fields.
func DefaultOptions() Options {
	return Options{
		Interval: 50 * time.Millisecond,
		Logger:   zap.NewNop(),
		Store:    eventlog.NewMemoryStore(),
		NewID:    uuid.NewString,
		Clock:    time.Now,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.Interval <= 0 {
		o.Interval = def.Interval
	}
	if o.Logger == nil {
		o.Logger = def.Logger
	}
	if o.Store == nil {
		o.Store = def.Store
	}
	if o.NewID == nil {
		o.NewID = def.NewID
	}
	if o.Clock == nil {
		o.Clock = def.Clock
	}
	return o
}

// Session is one run of one program against one world.
type Session struct {
	id     string
	opts   Options
	logger *zap.Logger

	mu       sync.RWMutex
	world    *world.World
	runner   Runner
	steps    int
	tail     int64
	done     bool
	err      error
	running  bool
	cancel   context.CancelFunc
	finishWG sync.WaitGroup
}

// NewSession creates a session over the given starting world and runner.
func NewSession(w *world.World, r Runner, opts Options) *Session {
	opts = opts.withDefaults()
	id := opts.NewID()
	return &Session{
		id:     id,
		opts:   opts,
		logger: opts.Logger.With(zap.String("run", id)),
		world:  w,
		runner: r,
		tail:   -1,
	}
}

// ID returns the run id.
func (s *Session) ID() string { return s.id }

// World returns the current world value.
func (s *Session) World() *world.World {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.world
}

// Steps returns the number of units of work performed so far.
func (s *Session) Steps() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.steps
}

// Done reports whether the run is over, successfully or not.
func (s *Session) Done() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.done
}

// Err returns the error that ended the run, if any.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

type stepRecord struct {
	Step    int    `json:"step"`
	Command string `json:"command,omitempty"`
	Applied bool   `json:"applied"`
}

type finishRecord struct {
	Steps int    `json:"steps"`
	Error string `json:"error,omitempty"`
}

// Step performs one atomic unit of work. It returns whether the run is now
// over and the error that ended it, if any. Calling Step after the run is
// over returns ErrSessionFinished.
func (s *Session) Step(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return true, ErrSessionFinished
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if s.steps == 0 {
		s.record(ctx, eventlog.KindRunStarted, nil)
		s.logger.Info("run started")
	}

	res := s.runner.Step(s.world)
	s.world = res.World
	s.steps++

	if res.Acted {
		kind := eventlog.KindStep
		if !res.Applied {
			kind = eventlog.KindBlocked
		}
		s.record(ctx, kind, stepRecord{
			Step:    s.steps,
			Command: res.Command.String(),
			Applied: res.Applied,
		})
		s.logger.Debug("step",
			zap.Int("step", s.steps),
			zap.Stringer("command", res.Command),
			zap.Bool("applied", res.Applied))
	}

	if res.Err != nil {
		s.done = true
		s.err = res.Err
		s.record(ctx, eventlog.KindRunFailed, finishRecord{Steps: s.steps, Error: res.Err.Error()})
		s.logger.Warn("run failed", zap.Int("steps", s.steps), zap.Error(res.Err))
		return true, res.Err
	}
	if res.Done {
		s.done = true
		s.record(ctx, eventlog.KindRunFinished, finishRecord{Steps: s.steps})
		s.logger.Info("run finished", zap.Int("steps", s.steps))
		return true, nil
	}
	return false, nil
}

// record appends one event to the store. Storage failures do not stop the
// run; they are logged and the trace is simply incomplete.
func (s *Session) record(ctx context.Context, kind string, payload any) {
	e, err := eventlog.NewEvent(s.id, kind, payload)
	if err != nil {
		s.logger.Warn("event not recorded", zap.String("kind", kind), zap.Error(err))
		return
	}
	e.At = s.opts.Clock().UTC()
	tail, err := s.opts.Store.Append(ctx, s.id, s.tail, []*eventlog.Event{e})
	if err != nil {
		s.logger.Warn("event not recorded", zap.String("kind", kind), zap.Error(err))
		return
	}
	s.tail = tail
}

// RunToEnd steps synchronously until the run is over or the context is
// cancelled, with no delay between units.
func (s *Session) RunToEnd(ctx context.Context) error {
	for {
		done, err := s.Step(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// Run starts continuous mode: a background goroutine performs one unit of
// work per tick until the run ends or the context is cancelled. Starting
// an already-running or finished session is a no-op.
func (s *Session) Run(ctx context.Context) {
	s.mu.Lock()
	if s.running || s.done {
		s.mu.Unlock()
		return
	}
	s.running = true
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	interval := s.opts.Interval
	s.mu.Unlock()

	s.finishWG.Add(1)
	go func() {
		defer s.finishWG.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				s.setStopped()
				return
			case <-ticker.C:
				done, _ := s.Step(runCtx)
				if done {
					s.setStopped()
					return
				}
			}
		}
	}()
}

func (s *Session) setStopped() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// Stop cancels continuous mode and waits for the loop to exit. The session
// can be resumed with Step or Run as long as the run has not finished.
func (s *Session) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.finishWG.Wait()
}

// IsRunning reports whether continuous mode is active.
func (s *Session) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}
