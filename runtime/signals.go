package runtime

// returnSignal is the non-local-return unwind value from spec.md §3: it
// propagates as a Go error through every Eval call until a Closure
// invocation boundary catches and converts it. It is never visible to
// user try/catch.
type returnSignal struct {
	value Value
}

func (s *returnSignal) Error() string { return "return outside of function call" }

// ThrowSignal carries a user `throw`'s payload. TryCatch converts it
// into the catch binding; an uncaught ThrowSignal propagates to the
// caller of Eval unchanged, per spec.md §7.
type ThrowSignal struct {
	Value Value
}

func (t *ThrowSignal) Error() string { return "uncaught exception: " + t.Value.String() }
