package fxq

// Number is a Representation bound to an Env. Every operator delegates to
// whatever unit is active in that Env when the operator runs, so the same
// expression tree replays with different bit-exact results under different
// ambient configurations.
type Number struct {
	rep Representation
	env *Env
}

// Rep is the underlying bit-exact value.
func (n Number) Rep() Representation { return n.rep }

// Env is the environment the number's operators consult.
func (n Number) Env() *Env { return n.env }

// Float is the real value of a scalar number.
func (n Number) Float() float64 { return n.rep.Float() }

// IsZero reports whether the number is exactly zero.
func (n Number) IsZero() bool { return n.rep.IsZero() }

func (n Number) String() string { return n.rep.String() }

func (n Number) unit() (Unit, error) { return n.env.Active() }

func (n Number) Add(o Number) (Number, error) {
	u, err := n.unit()
	if err != nil {
		return Number{}, err
	}
	r, err := u.Add(n.rep, o.rep)
	if err != nil {
		return Number{}, err
	}
	return Number{rep: r, env: n.env}, nil
}

func (n Number) Sub(o Number) (Number, error) {
	u, err := n.unit()
	if err != nil {
		return Number{}, err
	}
	r, err := u.Sub(n.rep, o.rep)
	if err != nil {
		return Number{}, err
	}
	return Number{rep: r, env: n.env}, nil
}

func (n Number) Mul(o Number) (Number, error) {
	u, err := n.unit()
	if err != nil {
		return Number{}, err
	}
	r, err := u.Mul(n.rep, o.rep)
	if err != nil {
		return Number{}, err
	}
	return Number{rep: r, env: n.env}, nil
}

// Div is declared for completeness; no unit implements it.
func (n Number) Div(o Number) (Number, error) {
	u, err := n.unit()
	if err != nil {
		return Number{}, err
	}
	r, err := u.Div(n.rep, o.rep)
	if err != nil {
		return Number{}, err
	}
	return Number{rep: r, env: n.env}, nil
}

// Mod is declared for completeness; no unit implements it.
func (n Number) Mod(o Number) (Number, error) {
	u, err := n.unit()
	if err != nil {
		return Number{}, err
	}
	r, err := u.Mod(n.rep, o.rep)
	if err != nil {
		return Number{}, err
	}
	return Number{rep: r, env: n.env}, nil
}

func (n Number) Neg() (Number, error) {
	u, err := n.unit()
	if err != nil {
		return Number{}, err
	}
	r, err := u.Neg(n.rep)
	if err != nil {
		return Number{}, err
	}
	return Number{rep: r, env: n.env}, nil
}

func (n Number) Trunc() (Number, error)   { return n.roundTo((Unit).Trunc) }
func (n Number) Floor() (Number, error)   { return n.roundTo((Unit).Floor) }
func (n Number) Ceil() (Number, error)    { return n.roundTo((Unit).Ceil) }
func (n Number) Nearest() (Number, error) { return n.roundTo((Unit).Nearest) }

func (n Number) roundTo(f func(Unit, Representation) (Representation, error)) (Number, error) {
	u, err := n.unit()
	if err != nil {
		return Number{}, err
	}
	r, err := f(u, n.rep)
	if err != nil {
		return Number{}, err
	}
	return Number{rep: r, env: n.env}, nil
}

func (n Number) Lsh(s int) (Number, error) {
	u, err := n.unit()
	if err != nil {
		return Number{}, err
	}
	r, err := u.Lsh(n.rep, s)
	if err != nil {
		return Number{}, err
	}
	return Number{rep: r, env: n.env}, nil
}

func (n Number) Rsh(s int) (Number, error) {
	u, err := n.unit()
	if err != nil {
		return Number{}, err
	}
	r, err := u.Rsh(n.rep, s)
	if err != nil {
		return Number{}, err
	}
	return Number{rep: r, env: n.env}, nil
}

// Cmp compares through the active unit's mantissa subtraction: -1, 0 or
// +1, with ok=false when a range or array operand leaves the order
// indeterminate.
func (n Number) Cmp(o Number) (sign int, ok bool, err error) {
	u, err := n.unit()
	if err != nil {
		return 0, false, err
	}
	d, err := u.Cmp(n.rep, o.rep)
	if err != nil {
		return 0, false, err
	}
	sign, ok = d.sign()
	return sign, ok, nil
}

// Eq, Lt, Le, Gt and Ge are conservative like interval ordering: for range
// or array operands they hold only when every element agrees.

func (n Number) Eq(o Number) (bool, error) {
	s, ok, err := n.Cmp(o)
	return ok && s == 0, err
}

func (n Number) Lt(o Number) (bool, error) {
	s, ok, err := n.Cmp(o)
	return ok && s < 0, err
}

func (n Number) Le(o Number) (bool, error) {
	s, ok, err := n.Cmp(o)
	return ok && s <= 0, err
}

func (n Number) Gt(o Number) (bool, error) {
	s, ok, err := n.Cmp(o)
	return ok && s > 0, err
}

func (n Number) Ge(o Number) (bool, error) {
	s, ok, err := n.Cmp(o)
	return ok && s >= 0, err
}
