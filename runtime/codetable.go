package runtime

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// MethodFunc is the calling convention for compiled method and block bodies:
// the body reads its receiver, arguments and temporaries from the
// activation and reports how it finished as an Outcome. Bodies are produced
// by an external compiler; the core only consumes them by reference.
type MethodFunc func(rt *Runtime, act *Activation) Outcome

// CodeEntry describes one registered body.
type CodeEntry struct {
	Ref string
	Fn  MethodFunc

	// NonLocal marks method bodies lexically containing a non-local-return
	// construct; their activations own a return channel. Block bodies never
	// set it — a block's return targets its home method's channel.
	NonLocal bool
}

// CodeTable maps stable code refs to executable bodies. It is the boundary
// where the compiler collaborator hands code to the runtime.
type CodeTable struct {
	mu      sync.RWMutex
	entries map[string]*CodeEntry
	counter uint64
}

// NewCodeTable creates an empty code table.
func NewCodeTable() *CodeTable {
	return &CodeTable{entries: make(map[string]*CodeEntry)}
}

// Register installs a method body under a stable ref and returns the ref.
func (ct *CodeTable) Register(ref string, fn MethodFunc) string {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	ct.entries[ref] = &CodeEntry{Ref: ref, Fn: fn}
	return ref
}

// RegisterNonLocal installs a method body whose source contains a ^-return;
// its activations allocate a return channel.
func (ct *CodeTable) RegisterNonLocal(ref string, fn MethodFunc) string {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	ct.entries[ref] = &CodeEntry{Ref: ref, Fn: fn, NonLocal: true}
	return ref
}

// RegisterBlock installs a block body under a generated ref.
func (ct *CodeTable) RegisterBlock(fn MethodFunc) string {
	id := atomic.AddUint64(&ct.counter, 1)
	ref := fmt.Sprintf("block_%d", id)
	ct.mu.Lock()
	defer ct.mu.Unlock()
	ct.entries[ref] = &CodeEntry{Ref: ref, Fn: fn}
	return ref
}

// Lookup finds the entry for a code ref.
func (ct *CodeTable) Lookup(ref string) (*CodeEntry, bool) {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	e, ok := ct.entries[ref]
	return e, ok
}
