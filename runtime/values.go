// Package runtime implements the Smalltix dispatch and control-flow engine:
// a persistent object store, class-based method lookup, message sends with a
// tagged-primitive fast path, block closures, and non-local return.
package runtime

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueType identifies the variant held by a Value.
type ValueType int

const (
	TypeNil ValueType = iota
	TypeInt
	TypeFloat
	TypeBool
	TypeRef     // reference to a store entity, by id
	TypeText    // literal text, opaque to dispatch
	TypeList    // ordered sequence of values
	TypeClosure // block closure
)

// Value is the runtime representation of a Smalltix value. Integers and
// floats are the tagged primitives of the send fast path; refs name store
// entities; everything else is raw data the generic dispatcher never
// inspects.
type Value struct {
	Type       ValueType
	IntVal     int64
	FloatVal   float64
	TextVal    string // text literal, or entity id for TypeRef
	ListVal    []Value
	ClosureVal *Closure
}

// NilValue returns the nil value.
func NilValue() Value {
	return Value{Type: TypeNil}
}

// IntValue creates a tagged integer.
func IntValue(n int64) Value {
	return Value{Type: TypeInt, IntVal: n}
}

// FloatValue creates a tagged float.
func FloatValue(f float64) Value {
	return Value{Type: TypeFloat, FloatVal: f}
}

// BoolValue creates a boolean value.
func BoolValue(b bool) Value {
	v := Value{Type: TypeBool}
	if b {
		v.IntVal = 1
	}
	return v
}

// RefValue creates a reference to the entity with the given id.
func RefValue(id string) Value {
	return Value{Type: TypeRef, TextVal: id}
}

// TextValue creates a literal-text value.
func TextValue(s string) Value {
	return Value{Type: TypeText, TextVal: s}
}

// ListValue creates an ordered list value.
func ListValue(elems ...Value) Value {
	return Value{Type: TypeList, ListVal: elems}
}

// ClosureValue wraps a block closure as a value.
func ClosureValue(c *Closure) Value {
	return Value{Type: TypeClosure, ClosureVal: c}
}

// IsNil returns true for the nil value.
func (v Value) IsNil() bool {
	return v.Type == TypeNil
}

// IsNumber returns true for tagged integers and floats.
func (v Value) IsNumber() bool {
	return v.Type == TypeInt || v.Type == TypeFloat
}

// Bool reports the boolean payload. Non-bool values are falsy except that
// only false and nil are falsy in conditionals, so callers that need
// Smalltalk truthiness should use IsTruthy.
func (v Value) Bool() bool {
	return v.Type == TypeBool && v.IntVal != 0
}

// IsTruthy reports conditional truth: only false and nil are falsy.
func (v Value) IsTruthy() bool {
	if v.Type == TypeNil {
		return false
	}
	if v.Type == TypeBool {
		return v.IntVal != 0
	}
	return true
}

// Ref returns the entity id for a reference value, or "".
func (v Value) Ref() string {
	if v.Type != TypeRef {
		return ""
	}
	return v.TextVal
}

// AsFloat widens a tagged number to float64.
func (v Value) AsFloat() float64 {
	if v.Type == TypeInt {
		return float64(v.IntVal)
	}
	return v.FloatVal
}

// Identical reports identity equality: same primitive payload, or the same
// entity id for references. Lists and closures compare by pointer-ish
// shallow identity and are never identical unless empty-equal.
func (v Value) Identical(o Value) bool {
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case TypeNil:
		return true
	case TypeInt, TypeBool:
		return v.IntVal == o.IntVal
	case TypeFloat:
		return v.FloatVal == o.FloatVal
	case TypeRef, TypeText:
		return v.TextVal == o.TextVal
	case TypeClosure:
		return v.ClosureVal == o.ClosureVal
	default:
		return false
	}
}

// ---------------------------------------------------------------------------
// Tagged textual interchange form
// ---------------------------------------------------------------------------

// formatFloat renders a float with the leading-zero rule: a textual form
// starting with "." or "-." gets a zero inserted so the token is always a
// well-formed number.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	} else if strings.HasPrefix(s, "-.") {
		s = "-0" + s[1:]
	}
	return s
}

// Wire renders v in the kind/value interchange form used across the store
// boundary: "int/5", "float/0.5", "true"/"false"/"nil", or the bare entity
// id for references. Text is passed through unchanged; lists render as a
// space-free comma join of element wire forms.
func (v Value) Wire() string {
	switch v.Type {
	case TypeNil:
		return "nil"
	case TypeInt:
		return "int/" + strconv.FormatInt(v.IntVal, 10)
	case TypeFloat:
		return "float/" + formatFloat(v.FloatVal)
	case TypeBool:
		if v.IntVal != 0 {
			return "true"
		}
		return "false"
	case TypeRef:
		return v.TextVal
	case TypeText:
		return v.TextVal
	case TypeList:
		parts := make([]string, len(v.ListVal))
		for i, e := range v.ListVal {
			parts[i] = e.Wire()
		}
		return strings.Join(parts, ",")
	case TypeClosure:
		if v.ClosureVal != nil {
			return v.ClosureVal.Code
		}
		return "nil"
	default:
		return "nil"
	}
}

// ParseWire decodes one interchange token: tagged primitives, the three
// pseudo-values, and otherwise an entity reference. The tag and leading-zero
// normalization are preserved on the way back out.
func ParseWire(s string) Value {
	switch s {
	case "", "nil":
		return NilValue()
	case "true":
		return BoolValue(true)
	case "false":
		return BoolValue(false)
	}
	if rest, ok := strings.CutPrefix(s, "int/"); ok {
		n, err := strconv.ParseInt(rest, 10, 64)
		if err == nil {
			return IntValue(n)
		}
		return TextValue(s)
	}
	if rest, ok := strings.CutPrefix(s, "float/"); ok {
		f, err := strconv.ParseFloat(rest, 64)
		if err == nil {
			return FloatValue(f)
		}
		return TextValue(s)
	}
	return RefValue(s)
}

// String implements fmt.Stringer via the wire form.
func (v Value) String() string {
	return v.Wire()
}

// ---------------------------------------------------------------------------
// JSON shapes for the store rows
// ---------------------------------------------------------------------------

// jsonValue renders v as the JSON shape persisted in entity rows. Tagged
// primitives keep their wire form so the row stays inspectable with plain
// sqlite tooling; text is wrapped to stay distinguishable from refs.
func (v Value) jsonValue() any {
	switch v.Type {
	case TypeNil:
		return nil
	case TypeInt, TypeFloat, TypeBool, TypeRef:
		return v.Wire()
	case TypeText:
		return map[string]any{"_text": v.TextVal}
	case TypeList:
		out := make([]any, len(v.ListVal))
		for i, e := range v.ListVal {
			out[i] = e.jsonValue()
		}
		return out
	case TypeClosure:
		if v.ClosureVal == nil {
			return nil
		}
		bindings := make([]any, len(v.ClosureVal.Bindings))
		for i, b := range v.ClosureVal.Bindings {
			bindings[i] = b.jsonValue()
		}
		return map[string]any{
			"_closure": map[string]any{
				"code":     v.ClosureVal.Code,
				"bindings": bindings,
			},
		}
	default:
		return nil
	}
}

// valueFromJSON rebuilds a Value from the decoded JSON shape.
func valueFromJSON(raw any) Value {
	switch x := raw.(type) {
	case nil:
		return NilValue()
	case string:
		return ParseWire(x)
	case []any:
		elems := make([]Value, len(x))
		for i, e := range x {
			elems[i] = valueFromJSON(e)
		}
		return Value{Type: TypeList, ListVal: elems}
	case map[string]any:
		if s, ok := x["_text"].(string); ok {
			return TextValue(s)
		}
		if c, ok := x["_closure"].(map[string]any); ok {
			code, _ := c["code"].(string)
			var bindings []Value
			if bs, ok := c["bindings"].([]any); ok {
				bindings = make([]Value, len(bs))
				for i, b := range bs {
					bindings[i] = valueFromJSON(b)
				}
			}
			// The return-channel home does not survive persistence; a
			// rehydrated closure's non-local return degrades to a local one.
			return ClosureValue(&Closure{Code: code, Bindings: bindings})
		}
		return NilValue()
	default:
		return TextValue(fmt.Sprintf("%v", raw))
	}
}
