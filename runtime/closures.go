package runtime

// Closure pairs a block body's code ref with the captured binding list from
// its definition site. The closure owns the bindings slice itself; the
// entries are references into the store, shared with whatever else holds
// them. Closures are first-class: they can be passed as arguments, stored
// into attributes, and invoked any number of times.
type Closure struct {
	Code     string
	Bindings []Value

	// home is the return channel of the method activation this block was
	// (directly or through enclosing blocks) defined in. Zero for closures
	// rehydrated from the store, whose home frame no longer exists.
	home *ReturnToken
}

// MakeClosure creates a closure over the given code ref and captured
// bindings. Called from a running method or block body, it records the
// current frame's home token so a ^-return inside the block can reach the
// defining method's channel. The binding list is captured whole — a block
// defined inside another block receives its enclosing block's entire list
// plus its own parameters at invocation, trading precise free-variable
// analysis for extra retained references.
func (a *Activation) MakeClosure(codeRef string, bindings []Value) *Closure {
	owned := make([]Value, len(bindings))
	copy(owned, bindings)
	return &Closure{
		Code:     codeRef,
		Bindings: owned,
		home:     a.home,
	}
}

// MakeClosure builds a closure with no home frame, for callers outside any
// activation (a ^ inside it degrades to a local return).
func MakeClosure(codeRef string, bindings []Value) *Closure {
	owned := make([]Value, len(bindings))
	copy(owned, bindings)
	return &Closure{Code: codeRef, Bindings: owned}
}

// Invoke runs the closure with the given arguments. The new activation's
// binding list is the captured bindings followed by args, in that fixed
// order; each invocation gets an independent activation and temporaries.
func (rt *Runtime) Invoke(c *Closure, args []Value, caller *Activation) Outcome {
	if c == nil {
		return Fail(ErrNotFound)
	}
	entry, ok := rt.Code.Lookup(c.Code)
	if !ok {
		return Fail(ErrMethodNotFound)
	}

	act := &Activation{
		Temps:    make(map[string]Value),
		Code:     c.Code,
		Caller:   caller,
		Bindings: append(append(make([]Value, 0, len(c.Bindings)+len(args)), c.Bindings...), args...),
		home:     c.home,
	}

	rt.logger.Debug("invoke block", "code", c.Code, "args", len(args))
	return entry.Fn(rt, act)
}
