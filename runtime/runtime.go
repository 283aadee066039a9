package runtime

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/jdjakub/smalltix/logs"
)

// Runtime wires the store, code table and dispatcher together. It is the
// embedding surface for callers: register classes and method bodies, then
// drive send trees through Send.
type Runtime struct {
	Store      *Store
	Code       *CodeTable
	Dispatcher *Dispatcher

	logger *slog.Logger
	mu     sync.Mutex
	closed bool
}

// New creates a runtime from the given configuration. A nil cfg uses
// defaults. The base class hierarchy is registered before returning.
func New(cfg *Config) (*Runtime, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	logs.SetDebug(cfg.Debug)
	logger := logs.New(os.Stderr)

	rt := &Runtime{
		Code:   NewCodeTable(),
		logger: logger,
	}

	if cfg.NoPersist {
		rt.Store = NewStore(logger)
	} else {
		if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
			return nil, fmt.Errorf("creating state dir: %w", err)
		}
		store, err := OpenStore(cfg.DBPath, logger)
		if err != nil {
			return nil, err
		}
		rt.Store = store
	}

	rt.Dispatcher = NewDispatcher(rt)
	registerBaseClasses(rt)
	return rt, nil
}

// NewForTest creates an in-memory runtime with a quiet logger.
func NewForTest() *Runtime {
	rt := &Runtime{
		Code:   NewCodeTable(),
		logger: logs.Discard(),
	}
	rt.Store = NewStore(rt.logger)
	rt.Dispatcher = NewDispatcher(rt)
	registerBaseClasses(rt)
	return rt
}

// Close flushes and releases the store.
func (rt *Runtime) Close() error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.closed {
		return nil
	}
	rt.closed = true
	return rt.Store.Close()
}

// Logger exposes the runtime logger to components registering native
// classes.
func (rt *Runtime) Logger() *slog.Logger {
	return rt.logger
}

// Send dispatches from inside a running method body; caller links the new
// activation into the call tree.
func (rt *Runtime) Send(caller *Activation, receiver Value, selector string, args ...Value) Outcome {
	return rt.Dispatcher.Send(caller, receiver, selector, args)
}

// SendRoot dispatches a top-level send and flattens the outcome for
// external callers. A delivered non-local return is indistinguishable from
// an ordinary result here; an orphaned signal cannot escape because every
// channel owner intercepts its own token, so any non-normal outcome is a
// fatal failure of the whole command.
func (rt *Runtime) SendRoot(receiver Value, selector string, args ...Value) (Value, error) {
	out := rt.Dispatcher.Send(nil, receiver, selector, args)
	switch out.Kind {
	case OutcomeNormal:
		return out.Value, nil
	case OutcomeFailure:
		return NilValue(), out.Err
	default:
		// Cannot happen while every channel owner intercepts its token;
		// treated as fatal rather than silently unwrapped.
		return NilValue(), fmt.Errorf("return signal escaped its home activation")
	}
}
