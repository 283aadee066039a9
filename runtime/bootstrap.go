package runtime

import "fmt"

// registerBaseClasses installs the bootstrap hierarchy: Object at the root,
// the Class meta-entity, and Point. Their method bodies are native code
// registered in the code table like any compiler output.
func registerBaseClasses(rt *Runtime) {
	ct := rt.Code

	objectSelectors := map[string]string{
		"class": ct.Register("Object>>class", func(rt *Runtime, act *Activation) Outcome {
			classID, err := rt.Store.ClassOf(act.Receiver.Ref())
			if err != nil {
				return Fail(err)
			}
			return Normal(RefValue(classID))
		}),

		"id": ct.Register("Object>>id", func(rt *Runtime, act *Activation) Outcome {
			return Normal(TextValue(act.Receiver.Ref()))
		}),

		"printString": ct.Register("Object>>printString", func(rt *Runtime, act *Activation) Outcome {
			ent, err := rt.Store.Entity(act.Receiver.Ref())
			if err != nil {
				return Fail(err)
			}
			return Normal(TextValue(fmt.Sprintf("<%s %s>", ent.Class, ent.ID)))
		}),

		"=": ct.Register("Object>>=", func(rt *Runtime, act *Activation) Outcome {
			return Normal(BoolValue(act.Receiver.Identical(act.Arg(0))))
		}),

		// perform: family - dynamic dispatch by selector name.
		"perform:": ct.Register("Object>>perform:", func(rt *Runtime, act *Activation) Outcome {
			return rt.Send(act, act.Receiver, act.Arg(0).TextVal)
		}),
		"perform:with:": ct.Register("Object>>perform:with:", func(rt *Runtime, act *Activation) Outcome {
			return rt.Send(act, act.Receiver, act.Arg(0).TextVal, act.Arg(1))
		}),
		"perform:with:with:": ct.Register("Object>>perform:with:with:", func(rt *Runtime, act *Activation) Outcome {
			return rt.Send(act, act.Receiver, act.Arg(0).TextVal, act.Arg(1), act.Arg(2))
		}),

		// do: iterates the receiver's elements attribute, invoking the block
		// once per element in order. Signals and failures from the block
		// propagate untouched - this is the frame a non-local return must
		// abort without running the remaining iterations.
		"do:": ct.Register("Object>>do:", func(rt *Runtime, act *Activation) Outcome {
			blk := act.Arg(0)
			if blk.Type != TypeClosure {
				return Fail(fmt.Errorf("do: needs a block, got %s: %w", blk.Wire(), ErrBadReceiver))
			}
			elems, err := rt.Store.Get(act.Receiver.Ref(), "elements")
			if err != nil {
				return Fail(err)
			}
			for _, e := range elems.ListVal {
				out := rt.Invoke(blk.ClosureVal, []Value{e}, act)
				if !out.Normal() {
					return out
				}
			}
			return Normal(act.Receiver)
		}),

		// detect:ifNone: answers the first element the predicate block
		// accepts, or the value of the fallback block when none matches.
		"detect:ifNone:": ct.Register("Object>>detect:ifNone:", func(rt *Runtime, act *Activation) Outcome {
			pred, none := act.Arg(0), act.Arg(1)
			if pred.Type != TypeClosure || none.Type != TypeClosure {
				return Fail(fmt.Errorf("detect:ifNone: needs two blocks: %w", ErrBadReceiver))
			}
			elems, err := rt.Store.Get(act.Receiver.Ref(), "elements")
			if err != nil {
				return Fail(err)
			}
			for _, e := range elems.ListVal {
				out := rt.Invoke(pred.ClosureVal, []Value{e}, act)
				if !out.Normal() {
					return out
				}
				if out.Value.IsTruthy() {
					return Normal(e)
				}
			}
			return rt.Invoke(none.ClosureVal, nil, act)
		}),

		// Class-scoped selectors live in the same tables; sends to a Class
		// entity start the walk at that class, so every class inherits
		// these through its ancestor chain.
		"new": ct.Register("Object>>new", func(rt *Runtime, act *Activation) Outcome {
			ent, err := rt.Store.Entity(act.Receiver.Ref())
			if err != nil {
				return Fail(err)
			}
			if !ent.IsClass() {
				return Fail(fmt.Errorf("new sent to non-class %s: %w", ent.ID, ErrBadReceiver))
			}
			id, err := rt.Store.Create(ent.ID, nil)
			if err != nil {
				return Fail(err)
			}
			return Normal(RefValue(id))
		}),

		"subclass:": ct.Register("Object>>subclass:", func(rt *Runtime, act *Activation) Outcome {
			ent, err := rt.Store.Entity(act.Receiver.Ref())
			if err != nil {
				return Fail(err)
			}
			if !ent.IsClass() {
				return Fail(fmt.Errorf("subclass: sent to non-class %s: %w", ent.ID, ErrBadReceiver))
			}
			name := act.Arg(0).TextVal
			if name == "" {
				return Fail(fmt.Errorf("subclass: empty name: %w", ErrAttributeMissing))
			}
			sub := rt.Store.DefineClass(name, ent.ID, nil, nil)
			return Normal(RefValue(sub.ID))
		}),
	}

	pointSelectors := map[string]string{
		// Constructor; also the target of the @ fast path.
		"x:y:": ct.Register("Point>>x:y:", func(rt *Runtime, act *Activation) Outcome {
			ent, err := rt.Store.Entity(act.Receiver.Ref())
			if err != nil {
				return Fail(err)
			}
			if !ent.IsClass() {
				return Fail(fmt.Errorf("x:y: sent to non-class %s: %w", ent.ID, ErrBadReceiver))
			}
			id, err := rt.Store.Create(ent.ID, map[string]Value{
				"x": act.Arg(0),
				"y": act.Arg(1),
			})
			if err != nil {
				return Fail(err)
			}
			return Normal(RefValue(id))
		}),

		"x": ct.Register("Point>>x", func(rt *Runtime, act *Activation) Outcome {
			v, err := rt.Store.Get(act.Receiver.Ref(), "x")
			if err != nil {
				return Fail(err)
			}
			return Normal(v)
		}),

		"y": ct.Register("Point>>y", func(rt *Runtime, act *Activation) Outcome {
			v, err := rt.Store.Get(act.Receiver.Ref(), "y")
			if err != nil {
				return Fail(err)
			}
			return Normal(v)
		}),
	}

	rt.Store.DefineClass("Object", "", objectSelectors, nil)
	rt.Store.DefineClass("Class", "Object", map[string]string{}, nil)
	rt.Store.DefineClass(PointClass, "Object", pointSelectors, []string{"x", "y"})
}
