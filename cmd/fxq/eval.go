package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/spf13/cobra"

	"github.com/pfcm/fxq"
	"github.com/pfcm/fxq/ebound"
)

var evalCmd = &cobra.Command{
	Use:   "eval expression",
	Short: "Evaluate an expression under the active unit",
	Long: `Evaluate an arithmetic expression under the active unit, tracking
the worst-case error the unit's rounding can have introduced. Supports
+, -, *, parentheses, unary minus and the rounding functions trunc(x),
floor(x), ceil(x) and round(x).

For example:

  fxq -u q7 eval '0.3*0.2 + floor(1.7)'`,
	Args: cobra.ExactArgs(1),
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)
}

// The grammar is the usual two-level precedence ladder: terms bind
// products, expressions bind sums.

type expression struct {
	Left *term       `parser:"@@"`
	Rest []*exprRest `parser:"@@*"`
}

type exprRest struct {
	Op   string `parser:"@('+' | '-')"`
	Term *term  `parser:"@@"`
}

type term struct {
	Left *unary      `parser:"@@"`
	Rest []*termRest `parser:"@@*"`
}

type termRest struct {
	Op    string `parser:"@'*'"`
	Unary *unary `parser:"@@"`
}

type unary struct {
	Neg  *unary `parser:"'-' @@"`
	Atom *atom  `parser:"| @@"`
}

type atom struct {
	Call  *call       `parser:"@@"`
	Num   *float64    `parser:"| @Number"`
	Group *expression `parser:"| '(' @@ ')'"`
}

type call struct {
	Fn  string      `parser:"@Ident"`
	Arg *expression `parser:"'(' @@ ')'"`
}

var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Number", Pattern: `[0-9]+(\.[0-9]+)?`},
	{Name: "Ident", Pattern: `[a-z]+`},
	{Name: "Punct", Pattern: `[-+*()]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var exprParser = participle.MustBuild[expression](
	participle.Lexer(exprLexer),
	participle.Elide("Whitespace"),
)

func runEval(cmd *cobra.Command, args []string) error {
	u, err := activeUnit()
	if err != nil {
		return err
	}
	ast, err := exprParser.ParseString("", strings.TrimSpace(args[0]))
	if err != nil {
		return err
	}

	env := fxq.NewEnv()
	leave := env.Enter(u)
	defer leave()

	res, err := evalExpr(env, ast)
	if err != nil {
		var oe *fxq.OverflowError
		if errors.As(err, &oe) {
			return fmt.Errorf("%w (%.1f dB over)", oe, -oe.Margin())
		}
		return err
	}
	fmt.Printf("%v\n", res)
	fmt.Printf("unit: %v\n", u)
	return nil
}

func evalExpr(env *fxq.Env, e *expression) (ebound.Number, error) {
	acc, err := evalTerm(env, e.Left)
	if err != nil {
		return ebound.Number{}, err
	}
	for _, r := range e.Rest {
		rhs, err := evalTerm(env, r.Term)
		if err != nil {
			return ebound.Number{}, err
		}
		if r.Op == "+" {
			acc, err = acc.Add(rhs)
		} else {
			acc, err = acc.Sub(rhs)
		}
		if err != nil {
			return ebound.Number{}, err
		}
	}
	return acc, nil
}

func evalTerm(env *fxq.Env, t *term) (ebound.Number, error) {
	acc, err := evalUnary(env, t.Left)
	if err != nil {
		return ebound.Number{}, err
	}
	for _, r := range t.Rest {
		rhs, err := evalUnary(env, r.Unary)
		if err != nil {
			return ebound.Number{}, err
		}
		acc, err = acc.Mul(rhs)
		if err != nil {
			return ebound.Number{}, err
		}
	}
	return acc, nil
}

func evalUnary(env *fxq.Env, u *unary) (ebound.Number, error) {
	if u.Neg != nil {
		v, err := evalUnary(env, u.Neg)
		if err != nil {
			return ebound.Number{}, err
		}
		return v.Neg()
	}
	return evalAtom(env, u.Atom)
}

func evalAtom(env *fxq.Env, a *atom) (ebound.Number, error) {
	switch {
	case a.Call != nil:
		arg, err := evalExpr(env, a.Call.Arg)
		if err != nil {
			return ebound.Number{}, err
		}
		switch a.Call.Fn {
		case "trunc":
			return arg.Trunc()
		case "floor":
			return arg.Floor()
		case "ceil":
			return arg.Ceil()
		case "round":
			return arg.Round()
		default:
			return ebound.Number{}, fmt.Errorf("unknown function %q", a.Call.Fn)
		}
	case a.Num != nil:
		n, err := env.Float(*a.Num)
		if err != nil {
			return ebound.Number{}, err
		}
		return ebound.Fixed(n), nil
	default:
		return evalExpr(env, a.Group)
	}
}
