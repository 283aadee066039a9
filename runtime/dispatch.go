package runtime

import (
	"fmt"
	"log/slog"
	"math"
)

// Dispatcher is the send entry point. A send either takes the
// tagged-primitive fast path or resolves a method through the store and
// runs it in a fresh activation.
type Dispatcher struct {
	rt     *Runtime
	logger *slog.Logger
}

// NewDispatcher creates the dispatcher for a runtime.
func NewDispatcher(rt *Runtime) *Dispatcher {
	return &Dispatcher{rt: rt, logger: rt.logger}
}

// PointClass is the class the point-construction fast path forwards to.
const PointClass = "Point"

// pointSelector builds a point from two coordinates: recv @ arg.
const pointSelector = "@"

// roundedSelector rounds a tagged primitive.
const roundedSelector = "rounded"

// Send dispatches selector to receiver. caller may be nil at the root of a
// send tree. The returned outcome is either the method's result, a
// non-local-return signal addressed to some ancestor, or a fatal failure.
func (d *Dispatcher) Send(caller *Activation, receiver Value, selector string, args []Value) Outcome {
	if out, ok := d.fastPath(caller, receiver, selector, args); ok {
		return out
	}

	if receiver.Type != TypeRef {
		return Fail(fmt.Errorf("%s to %s: %w", selector, receiver.Wire(), ErrBadReceiver))
	}

	ent, err := d.rt.Store.Entity(receiver.Ref())
	if err != nil {
		return Fail(err)
	}

	// A send to a Class object resolves against that class's own table and
	// its ancestors, never against Class's instance methods.
	start := ent.Class
	if ent.IsClass() {
		start = ent.ID
	}

	codeRef, err := d.rt.Store.Resolve(start, selector)
	if err != nil {
		return Fail(err)
	}
	entry, ok := d.rt.Code.Lookup(codeRef)
	if !ok {
		return Fail(fmt.Errorf("%s>>%s: code %s not registered: %w",
			start, selector, codeRef, ErrMethodNotFound))
	}

	act := NewActivation(receiver, args, codeRef, caller)
	if entry.NonLocal {
		act.channel = &ReturnToken{}
		act.home = act.channel
		// The channel never outlives its owner, normal and abnormal exits
		// alike.
		defer act.channel.closed.Store(true)
	}

	d.logger.Debug("send", "receiver", receiver.Wire(), "selector", selector, "code", codeRef)

	out := act.intercept(entry.Fn(d.rt, act))
	if !out.Normal() && out.Kind == OutcomeFailure {
		d.logger.Debug("send failed", "selector", selector, "error", out.Err)
	}
	return out
}

// ---------------------------------------------------------------------------
// Tagged-primitive fast path
// ---------------------------------------------------------------------------

// fastPath handles arithmetic, rounding and point construction on tagged
// int/float receivers without touching the store. The boolean result
// reports whether the fast path applied.
func (d *Dispatcher) fastPath(caller *Activation, receiver Value, selector string, args []Value) (Outcome, bool) {
	if !receiver.IsNumber() {
		return Outcome{}, false
	}

	switch selector {
	case "+", "-", "*", "/":
		if len(args) != 1 || !args[0].IsNumber() {
			return Outcome{}, false
		}
		return d.arith(receiver, selector, args[0]), true

	case roundedSelector:
		if len(args) != 0 {
			return Outcome{}, false
		}
		if receiver.Type == TypeInt {
			return Normal(receiver), true
		}
		// Round half up. The result stays tagged float; rounding never
		// re-tags a value as int.
		return Normal(FloatValue(math.Floor(receiver.FloatVal + 0.5))), true

	case pointSelector:
		if len(args) != 1 || !args[0].IsNumber() {
			return Outcome{}, false
		}
		return d.Send(caller, RefValue(PointClass), "x:y:", []Value{receiver, args[0]}), true
	}

	return Outcome{}, false
}

// arith computes one arithmetic send. Two tagged integers use exact integer
// arithmetic and tag the result int; any float operand promotes the whole
// operation to float.
func (d *Dispatcher) arith(a Value, op string, b Value) Outcome {
	if a.Type == TypeInt && b.Type == TypeInt {
		switch op {
		case "+":
			return Normal(IntValue(a.IntVal + b.IntVal))
		case "-":
			return Normal(IntValue(a.IntVal - b.IntVal))
		case "*":
			return Normal(IntValue(a.IntVal * b.IntVal))
		case "/":
			if b.IntVal == 0 {
				return Fail(fmt.Errorf("%s / %s: %w", a.Wire(), b.Wire(), ErrZeroDivide))
			}
			return Normal(IntValue(a.IntVal / b.IntVal))
		}
	}

	x, y := a.AsFloat(), b.AsFloat()
	switch op {
	case "+":
		return Normal(FloatValue(x + y))
	case "-":
		return Normal(FloatValue(x - y))
	case "*":
		return Normal(FloatValue(x * y))
	case "/":
		if y == 0 {
			return Fail(fmt.Errorf("%s / %s: %w", a.Wire(), b.Wire(), ErrZeroDivide))
		}
		return Normal(FloatValue(x / y))
	}
	return Fail(fmt.Errorf("%s %s: %w", a.Wire(), op, ErrMethodNotFound))
}
