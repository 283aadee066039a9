package canvas

import (
	"fmt"

	"github.com/jdjakub/smalltix/runtime"
)

// RegisterCanvasClass installs the Canvas class whose method bodies emit
// drawing commands through em. Returns the id of a ready-to-use canvas
// instance.
func RegisterCanvasClass(rt *runtime.Runtime, em Emitter) (string, error) {
	ct := rt.Code

	emit := func(cmd Command) runtime.Outcome {
		if err := em.Emit(cmd); err != nil {
			return runtime.Fail(err)
		}
		return runtime.Normal(runtime.NilValue())
	}

	// pointCoords reads a Point reference's coordinates from the store.
	pointCoords := func(rt *runtime.Runtime, v runtime.Value) (float64, float64, error) {
		if v.Type != runtime.TypeRef {
			return 0, 0, fmt.Errorf("expected a Point, got %s", v.Wire())
		}
		x, err := rt.Store.Get(v.Ref(), "x")
		if err != nil {
			return 0, 0, err
		}
		y, err := rt.Store.Get(v.Ref(), "y")
		if err != nil {
			return 0, 0, err
		}
		return x.AsFloat(), y.AsFloat(), nil
	}

	selectors := map[string]string{
		"beginPath": ct.Register("Canvas>>beginPath", func(rt *runtime.Runtime, act *runtime.Activation) runtime.Outcome {
			return emit(Command{Method: OpBeginPath})
		}),

		"stroke": ct.Register("Canvas>>stroke", func(rt *runtime.Runtime, act *runtime.Activation) runtime.Outcome {
			return emit(Command{Method: OpStroke})
		}),

		"moveTo:": ct.Register("Canvas>>moveTo:", func(rt *runtime.Runtime, act *runtime.Activation) runtime.Outcome {
			x, y, err := pointCoords(rt, act.Arg(0))
			if err != nil {
				return runtime.Fail(err)
			}
			return emit(Command{Method: OpMoveTo, Params: []float64{x, y}})
		}),

		"lineTo:": ct.Register("Canvas>>lineTo:", func(rt *runtime.Runtime, act *runtime.Activation) runtime.Outcome {
			x, y, err := pointCoords(rt, act.Arg(0))
			if err != nil {
				return runtime.Fail(err)
			}
			return emit(Command{Method: OpLineTo, Params: []float64{x, y}})
		}),

		"strokeStyle:": ct.Register("Canvas>>strokeStyle:", func(rt *runtime.Runtime, act *runtime.Activation) runtime.Outcome {
			color := act.Arg(0)
			if color.Type != runtime.TypeInt {
				return runtime.Fail(fmt.Errorf("strokeStyle: expected a tagged int, got %s", color.Wire()))
			}
			return emit(Command{Method: OpStrokeStyle, Value: ColorHex(color.IntVal)})
		}),

		"fillStyle:": ct.Register("Canvas>>fillStyle:", func(rt *runtime.Runtime, act *runtime.Activation) runtime.Outcome {
			color := act.Arg(0)
			if color.Type != runtime.TypeInt {
				return runtime.Fail(fmt.Errorf("fillStyle: expected a tagged int, got %s", color.Wire()))
			}
			return emit(Command{Method: OpFillStyle, Value: ColorHex(color.IntVal)})
		}),

		// fillRect: origin extent: size - origin and size are Points.
		"fillRect:extent:": ct.Register("Canvas>>fillRect:extent:", func(rt *runtime.Runtime, act *runtime.Activation) runtime.Outcome {
			x, y, err := pointCoords(rt, act.Arg(0))
			if err != nil {
				return runtime.Fail(err)
			}
			w, h, err := pointCoords(rt, act.Arg(1))
			if err != nil {
				return runtime.Fail(err)
			}
			return emit(Command{Method: OpFillRect, Params: []float64{x, y, w, h}})
		}),
	}

	rt.Store.DefineClass("Canvas", "Object", selectors, nil)
	return rt.Store.Create("Canvas", nil)
}
