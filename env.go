package fxq

// Env is the ambient configuration for Number arithmetic: it holds which
// Unit is currently in effect. Entering a unit saves the previously active
// one and restores it when the returned leave function runs, so scopes nest
// LIFO and only the innermost unit is ever visible.
//
// An Env is an explicit handle, not a process-wide global: it is not safe
// for concurrent use, and each goroutine should thread its own. One Env
// still gives the property that matters: a single configuration governs an
// entire computation.
type Env struct {
	active Unit
}

// NewEnv returns an Env with no active unit.
func NewEnv() *Env { return &Env{} }

// Enter makes u the active unit and returns the function that restores
// whatever was active before. Callers are expected to defer it:
//
//	leave := env.Enter(alu)
//	defer leave()
func (e *Env) Enter(u Unit) (leave func()) {
	prev := e.active
	e.active = u
	return func() { e.active = prev }
}

// Active returns the unit currently in effect, or ErrNoActiveUnit when no
// scope has been entered.
func (e *Env) Active() (Unit, error) {
	if e.active == nil {
		return nil, ErrNoActiveUnit
	}
	return e.active, nil
}

// Number represents v under the active unit and wraps it for ambient
// arithmetic.
func (e *Env) Number(v Value) (Number, error) {
	u, err := e.Active()
	if err != nil {
		return Number{}, err
	}
	r, err := u.Represent(v)
	if err != nil {
		return Number{}, err
	}
	return Number{rep: r, env: e}, nil
}

// Float is shorthand for Number(V(x)).
func (e *Env) Float(x float64) (Number, error) {
	return e.Number(V(x))
}

// Wrap adopts an existing representation without re-quantizing it.
func (e *Env) Wrap(r Representation) Number {
	return Number{rep: r, env: e}
}
