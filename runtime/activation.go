package runtime

import "sync/atomic"

// ReturnToken identifies one activation's return channel. Tokens compare by
// identity; only the activation that allocated a token may consume a signal
// carrying it. The closed flag is set on every exit path of the owner, so a
// closure that outlives its home method cannot deliver into a dead channel.
type ReturnToken struct {
	closed atomic.Bool
}

// Closed reports whether the owning activation has already exited.
func (t *ReturnToken) Closed() bool {
	return t.closed.Load()
}

// Activation is the runtime state of one in-progress send or closure
// invocation. Activations link through Caller to form the call tree and are
// discarded when their result has been consumed.
type Activation struct {
	Receiver Value
	Args     []Value
	Temps    map[string]Value
	Code     string
	Caller   *Activation

	// Bindings is the ordered binding list of a closure invocation:
	// captured outer bindings first, then the block's own parameters.
	// Method activations leave it nil.
	Bindings []Value

	// channel is owned by method activations whose body lexically contains
	// a non-local return; home is the token a ^-return in this frame's code
	// delivers to. For such methods home == channel; for block activations
	// home comes from the closure's definition site.
	channel *ReturnToken
	home    *ReturnToken
}

// NewActivation builds a method activation with fresh empty temporaries.
func NewActivation(receiver Value, args []Value, code string, caller *Activation) *Activation {
	return &Activation{
		Receiver: receiver,
		Args:     args,
		Temps:    make(map[string]Value),
		Code:     code,
		Caller:   caller,
	}
}

// Arg returns the i-th argument, nil value when out of range.
func (a *Activation) Arg(i int) Value {
	if i < 0 || i >= len(a.Args) {
		return NilValue()
	}
	return a.Args[i]
}

// Binding returns the i-th entry of a closure activation's binding list.
func (a *Activation) Binding(i int) Value {
	if i < 0 || i >= len(a.Bindings) {
		return NilValue()
	}
	return a.Bindings[i]
}

// Home returns the return-channel token a non-local return in this frame
// targets, or nil when no enclosing method declared one.
func (a *Activation) Home() *ReturnToken {
	return a.home
}

// ---------------------------------------------------------------------------
// Outcomes
// ---------------------------------------------------------------------------

// OutcomeKind tags how an activation's execution finished.
type OutcomeKind int

const (
	// OutcomeNormal carries the ordinary result value.
	OutcomeNormal OutcomeKind = iota
	// OutcomeSignal carries a non-local return in flight: a value addressed
	// to the return channel of one specific ancestor activation.
	OutcomeSignal
	// OutcomeFailure carries a fatal error cascading to the send-tree root.
	OutcomeFailure
)

// Outcome is the typed result of running an activation. The three-way split
// is the propagation contract: intervening frames re-emit signals and
// failures untouched; only the channel owner converts a matching signal
// back into a normal value.
type Outcome struct {
	Kind  OutcomeKind
	Value Value
	Token *ReturnToken
	Err   error
}

// Normal wraps an ordinary result.
func Normal(v Value) Outcome {
	return Outcome{Kind: OutcomeNormal, Value: v}
}

// Fail wraps a fatal error.
func Fail(err error) Outcome {
	return Outcome{Kind: OutcomeFailure, Err: err}
}

// Signal addresses a return value to the channel identified by tok.
func Signal(tok *ReturnToken, v Value) Outcome {
	return Outcome{Kind: OutcomeSignal, Value: v, Token: tok}
}

// Normal reports whether the outcome is an ordinary value.
func (o Outcome) Normal() bool {
	return o.Kind == OutcomeNormal
}

// Return emits this frame's ^-return. Lexically the construct belongs to
// the nearest enclosing method; when that method's activation is still the
// current frame the signal is addressed to its own channel and the
// dispatcher converts it immediately, which makes ^expr terminate the
// method with expr. From inside a block the inherited token aborts every
// intervening activation up to the home method. A block whose home has
// already exited degrades to a local return of the value.
func (a *Activation) Return(v Value) Outcome {
	if a.home == nil || a.home.Closed() {
		return Normal(v)
	}
	return Signal(a.home, v)
}

// Intercept is the propagation combinator applied by the dispatcher on
// every completed activation: a signal addressed to this frame's own
// channel becomes its normal result; anything else passes through for the
// caller to observe.
func (a *Activation) intercept(out Outcome) Outcome {
	if out.Kind == OutcomeSignal && a.channel != nil && out.Token == a.channel {
		return Normal(out.Value)
	}
	return out
}

// Recover lets a method body treat a signal addressed to its own channel as
// the value of the send that produced it and continue running — the
// sub-expression case of a non-local return. The second result is false
// when the outcome was not consumable here and must be propagated.
func (a *Activation) Recover(out Outcome) (Value, bool) {
	if out.Kind == OutcomeNormal {
		return out.Value, true
	}
	if out.Kind == OutcomeSignal && a.channel != nil && out.Token == a.channel {
		return out.Value, true
	}
	return NilValue(), false
}
