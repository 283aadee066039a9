package canvas

import (
	"testing"

	"github.com/jdjakub/smalltix/runtime"
)

func TestColorHex(t *testing.T) {
	cases := []struct {
		n    int64
		want string
	}{
		{255, "#0000ff"},
		{0, "#000000"},
		{0xff0000, "#ff0000"},
		{0x00ff00, "#00ff00"},
		{0xffffff, "#ffffff"},
		// Bits above 24 are masked off.
		{0x1_0000ff, "#0000ff"},
	}
	for _, c := range cases {
		if got := ColorHex(c.n); got != c.want {
			t.Errorf("ColorHex(%d) = %q, want %q", c.n, got, c.want)
		}
	}
}

func TestRecorderKeepsProgramOrder(t *testing.T) {
	rec := NewRecorder()
	rec.Emit(Command{Method: OpBeginPath})
	rec.Emit(Command{Method: OpMoveTo, Params: []float64{1, 2}})
	rec.Emit(Command{Method: OpStroke})

	got := rec.Commands()
	if len(got) != 3 {
		t.Fatalf("recorded %d commands", len(got))
	}
	want := []Op{OpBeginPath, OpMoveTo, OpStroke}
	for i, op := range want {
		if got[i].Method != op {
			t.Errorf("command %d = %s, want %s", i, got[i].Method, op)
		}
	}
	// Commands returns a copy.
	got[0].Method = OpFillRect
	if rec.Commands()[0].Method != OpBeginPath {
		t.Error("Commands exposed internal state")
	}
}

// A rectangle-drawing method that performs two fill-rectangle sends emits
// exactly two drawing commands, in program order, with the colors set by
// the preceding style sends.
func TestTwoRectMethodEmitsTwoCommands(t *testing.T) {
	rt := runtime.NewForTest()
	rec := NewRecorder()
	canvasID, err := RegisterCanvasClass(rt, rec)
	if err != nil {
		t.Fatalf("RegisterCanvasClass: %v", err)
	}

	twoRects := rt.Code.Register("Scene>>drawOn:", func(rt *runtime.Runtime, act *runtime.Activation) runtime.Outcome {
		cv := act.Arg(0)
		point := func(x, y int64) runtime.Value {
			out := rt.Send(act, runtime.IntValue(x), "@", runtime.IntValue(y))
			return out.Value
		}
		steps := []struct {
			selector string
			args     []runtime.Value
		}{
			{"fillStyle:", []runtime.Value{runtime.IntValue(255)}},
			{"fillRect:extent:", []runtime.Value{point(0, 0), point(10, 10)}},
			{"fillStyle:", []runtime.Value{runtime.IntValue(0xff0000)}},
			{"fillRect:extent:", []runtime.Value{point(20, 5), point(4, 8)}},
		}
		for _, s := range steps {
			if out := rt.Send(act, cv, s.selector, s.args...); !out.Normal() {
				return out
			}
		}
		return runtime.Normal(runtime.NilValue())
	})
	rt.Store.DefineClass("Scene", "Object", map[string]string{"drawOn:": twoRects}, nil)
	sceneID, _ := rt.Store.Create("Scene", nil)

	if _, err := rt.SendRoot(runtime.RefValue(sceneID), "drawOn:", runtime.RefValue(canvasID)); err != nil {
		t.Fatalf("drawOn: %v", err)
	}

	cmds := rec.Commands()
	if len(cmds) != 4 {
		t.Fatalf("emitted %d commands, want 4: %v", len(cmds), cmds)
	}

	rects := 0
	for _, c := range cmds {
		if c.Method == OpFillRect {
			rects++
		}
	}
	if rects != 2 {
		t.Errorf("emitted %d fillRect commands, want exactly 2", rects)
	}

	if cmds[0].Method != OpFillStyle || cmds[0].Value != "#0000ff" {
		t.Errorf("cmd 0 = %+v, want fillStyle #0000ff", cmds[0])
	}
	if cmds[1].Method != OpFillRect || cmds[1].Params[2] != 10 {
		t.Errorf("cmd 1 = %+v", cmds[1])
	}
	if cmds[2].Method != OpFillStyle || cmds[2].Value != "#ff0000" {
		t.Errorf("cmd 2 = %+v, want fillStyle #ff0000", cmds[2])
	}
	if cmds[3].Method != OpFillRect || cmds[3].Params[0] != 20 {
		t.Errorf("cmd 3 = %+v", cmds[3])
	}
}

func TestStyleRejectsNonInt(t *testing.T) {
	rt := runtime.NewForTest()
	rec := NewRecorder()
	canvasID, err := RegisterCanvasClass(rt, rec)
	if err != nil {
		t.Fatalf("RegisterCanvasClass: %v", err)
	}

	if _, err := rt.SendRoot(runtime.RefValue(canvasID), "fillStyle:", runtime.TextValue("red")); err == nil {
		t.Error("fillStyle: accepted a non-integer color")
	}
	if len(rec.Commands()) != 0 {
		t.Errorf("failed style send still emitted %d commands", len(rec.Commands()))
	}
}
