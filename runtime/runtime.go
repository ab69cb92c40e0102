package runtime

import "fmt"

// Error is a runtime evaluation failure: illegal assignment targets or
// failed instantiation. A lexer/parser error from on-demand re-parsing
// (string interpolation) is returned as it is, not wrapped in an Error.
// It is distinct from a user Throw, which propagates the thrown Value
// unchanged.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// Frame is one scope frame: a mapping from name to value.
type Frame map[string]Value

// Runtime is the mutable evaluation state described in spec.md §4.4: a
// global record, a scope-frame stack, a `this` register, and a stack of
// active closures. One Runtime belongs to exactly one program evaluation.
type Runtime struct {
	Global *Object

	scopes  []Frame
	closure []*Closure
	this    []Value

	// Resolve is a slot for a host import resolver; nil unless the
	// embedding CLI wires one up. The evaluator does not read it: neither
	// import() nor New consults it. Not part of spec.md's core (kept nil
	// by default).
	Resolve func(name string) (Value, bool)
}

// New creates a Runtime with one root scope frame and the given global
// record (nil means an empty record).
func New(global *Object) *Runtime {
	if global == nil {
		global = NewObject()
	}
	rt := &Runtime{Global: global}
	rt.PushScope(nil)
	rt.this = append(rt.this, Value(Undefined{}))
	return rt
}

// PushScope pushes a new frame; a nil frame allocates an empty one.
func (rt *Runtime) PushScope(frame Frame) {
	if frame == nil {
		frame = Frame{}
	}
	rt.scopes = append(rt.scopes, frame)
}

// PopScope pops the innermost frame. Panics on underflow — a caller bug,
// since every push has a matching pop by construction (spec.md §5/§8).
func (rt *Runtime) PopScope() {
	if len(rt.scopes) == 0 {
		panic("runtime: PopScope on empty scope stack")
	}
	rt.scopes = rt.scopes[:len(rt.scopes)-1]
}

// ScopeDepth reports the current frame count, for invariant checks.
func (rt *Runtime) ScopeDepth() int { return len(rt.scopes) }

// GetScope returns the innermost frame.
func (rt *Runtime) GetScope() Frame {
	return rt.scopes[len(rt.scopes)-1]
}

// GetFullScope returns a flattened snapshot of the scope chain, outer
// frames first so inner frames overwrite them — the capture a Function
// evaluation takes at closure-creation time.
func (rt *Runtime) GetFullScope() Frame {
	flat := Frame{}
	for _, frame := range rt.scopes {
		for k, v := range frame {
			flat[k] = v
		}
	}
	return flat
}

// GetLocal walks the scope chain top-down for name, falling back to the
// global record (per Load's semantics), else Undefined{}.
func (rt *Runtime) GetLocal(name string) Value {
	for i := len(rt.scopes) - 1; i >= 0; i-- {
		if v, ok := rt.scopes[i][name]; ok {
			return v
		}
	}
	if v := rt.Global.Get(name); truthy(v) {
		return v
	}
	return Undefined{}
}

// SetLocal writes to the innermost frame that already binds name. If no
// frame binds it, the write is silently dropped — a faithful
// reproduction of the known limitation in spec.md §9, not a bug.
func (rt *Runtime) SetLocal(name string, v Value) {
	for i := len(rt.scopes) - 1; i >= 0; i-- {
		if _, ok := rt.scopes[i][name]; ok {
			rt.scopes[i][name] = v
			return
		}
	}
}

// Declare binds name in the innermost (current) frame — used by VarDecl
// and parameter binding, which always introduce a fresh binding rather
// than walking the chain.
func (rt *Runtime) Declare(name string, v Value) {
	rt.GetScope()[name] = v
}

// PushStack pushes a closure onto the call stack.
func (rt *Runtime) PushStack(c *Closure) { rt.closure = append(rt.closure, c) }

// PopStack pops the innermost closure.
func (rt *Runtime) PopStack() {
	if len(rt.closure) == 0 {
		panic("runtime: PopStack on empty closure stack")
	}
	rt.closure = rt.closure[:len(rt.closure)-1]
}

// StackTop returns the innermost active closure, or nil if none.
func (rt *Runtime) StackTop() *Closure {
	if len(rt.closure) == 0 {
		return nil
	}
	return rt.closure[len(rt.closure)-1]
}

// StackDepth reports the current closure-call depth, for invariant checks.
func (rt *Runtime) StackDepth() int { return len(rt.closure) }

// GetThis returns the current `this` binding.
func (rt *Runtime) GetThis() Value { return rt.this[len(rt.this)-1] }

// SetThis pushes a new `this` binding; paired with PopThis.
func (rt *Runtime) SetThis(v Value) { rt.this = append(rt.this, v) }

// PopThis pops the innermost `this` binding.
func (rt *Runtime) PopThis() { rt.this = rt.this[:len(rt.this)-1] }

// Instantiate implements `New ClassName(args)`: looks up ClassName in the
// global record and, if it is an Instantiator, invokes it. Anything else
// fails with a runtime error naming the class, per SPEC_FULL.md's
// resolution of spec.md's `New` open question.
func (rt *Runtime) Instantiate(className string, args []Value) (Value, error) {
	target := rt.Global.Get(className)
	inst, ok := target.(Instantiator)
	if !ok {
		return nil, newError("cannot instantiate %q: not a constructible host value", className)
	}
	return inst.Instantiate(args)
}
