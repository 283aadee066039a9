package runtime

import "testing"

func TestWireTaggedPrimitives(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{IntValue(5), "int/5"},
		{IntValue(-42), "int/-42"},
		{FloatValue(0.5), "float/0.5"},
		{FloatValue(-3.141), "float/-3.141"},
		{FloatValue(3), "float/3"},
		{BoolValue(true), "true"},
		{BoolValue(false), "false"},
		{NilValue(), "nil"},
		{RefValue("point_abc"), "point_abc"},
	}
	for _, c := range cases {
		if got := c.v.Wire(); got != c.want {
			t.Errorf("Wire(%v) = %q, want %q", c.v, got, c.want)
		}
	}
}

// Fractional floats always render with a leading zero so the token stays a
// well-formed number.
func TestWireLeadingZeroNormalization(t *testing.T) {
	if got := FloatValue(0.5).Wire(); got != "float/0.5" {
		t.Errorf("0.5 renders as %q", got)
	}
	if got := FloatValue(-0.5).Wire(); got != "float/-0.5" {
		t.Errorf("-0.5 renders as %q", got)
	}
	if got := FloatValue(-0.125).Wire(); got != "float/-0.125" {
		t.Errorf("-0.125 renders as %q", got)
	}
}

func TestParseWireRoundTrip(t *testing.T) {
	tokens := []string{
		"int/7", "int/-1", "float/0.25", "float/-12.5", "true", "false", "nil",
		"counter_9f2b",
	}
	for _, tok := range tokens {
		if got := ParseWire(tok).Wire(); got != tok {
			t.Errorf("round trip %q -> %q", tok, got)
		}
	}
}

func TestParseWireKinds(t *testing.T) {
	if v := ParseWire("int/12"); v.Type != TypeInt || v.IntVal != 12 {
		t.Errorf("int/12 parsed as %v", v)
	}
	if v := ParseWire("float/0.5"); v.Type != TypeFloat || v.FloatVal != 0.5 {
		t.Errorf("float/0.5 parsed as %v", v)
	}
	if v := ParseWire("widget_1"); v.Type != TypeRef || v.Ref() != "widget_1" {
		t.Errorf("widget_1 parsed as %v", v)
	}
	if v := ParseWire("nil"); !v.IsNil() {
		t.Errorf("nil parsed as %v", v)
	}
}

func TestTruthiness(t *testing.T) {
	falsy := []Value{NilValue(), BoolValue(false)}
	for _, v := range falsy {
		if v.IsTruthy() {
			t.Errorf("%v should be falsy", v)
		}
	}
	truthy := []Value{BoolValue(true), IntValue(0), FloatValue(0), TextValue(""), RefValue("x")}
	for _, v := range truthy {
		if !v.IsTruthy() {
			t.Errorf("%v should be truthy", v)
		}
	}
}

func TestIdentical(t *testing.T) {
	if !RefValue("a").Identical(RefValue("a")) {
		t.Error("same ref should be identical")
	}
	if RefValue("a").Identical(RefValue("b")) {
		t.Error("different refs should not be identical")
	}
	if IntValue(1).Identical(FloatValue(1)) {
		t.Error("int and float are different kinds")
	}
	c := &Closure{Code: "block_1"}
	if !ClosureValue(c).Identical(ClosureValue(c)) {
		t.Error("same closure should be identical")
	}
	if ClosureValue(c).Identical(ClosureValue(&Closure{Code: "block_1"})) {
		t.Error("distinct closures should not be identical")
	}
}

func TestValueJSONRoundTrip(t *testing.T) {
	original := ListValue(
		IntValue(3),
		FloatValue(-0.5),
		RefValue("point_xy"),
		TextValue("hello"),
		NilValue(),
	)
	back := valueFromJSON(original.jsonValue())
	if back.Type != TypeList || len(back.ListVal) != 5 {
		t.Fatalf("list round trip gave %v", back)
	}
	for i, want := range original.ListVal {
		if !back.ListVal[i].Identical(want) {
			t.Errorf("element %d: got %v, want %v", i, back.ListVal[i], want)
		}
	}
}

func TestClosureJSONRoundTrip(t *testing.T) {
	c := &Closure{Code: "block_9", Bindings: []Value{RefValue("self_id"), IntValue(2)}}
	back := valueFromJSON(ClosureValue(c).jsonValue())
	if back.Type != TypeClosure {
		t.Fatalf("expected closure, got %v", back)
	}
	if back.ClosureVal.Code != "block_9" {
		t.Errorf("code = %q", back.ClosureVal.Code)
	}
	if len(back.ClosureVal.Bindings) != 2 || !back.ClosureVal.Bindings[0].Identical(RefValue("self_id")) {
		t.Errorf("bindings = %v", back.ClosureVal.Bindings)
	}
	if back.ClosureVal.home != nil {
		t.Error("rehydrated closure must not carry a return channel")
	}
}
