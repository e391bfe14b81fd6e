package message

import (
	"fmt"
	"strings"
)

// Evaluator evaluates expression text against a message. The expr package
// provides the implementation used by the engine.
type Evaluator interface {
	// Evaluate evaluates expression against msg in its current scope.
	Evaluate(msg *Context, expression string) (Value, error)

	// Check reports a syntax error in expression without evaluating it.
	Check(expression string) error
}

// ArgumentForm says how an argument is turned into a bound value.
type ArgumentForm byte

const (
	// FormLiteral binds the text as a string, unevaluated.
	FormLiteral ArgumentForm = iota
	// FormEvaluated evaluates the text in the caller's scope at bind time.
	FormEvaluated
	// FormDeferred binds the raw expression, evaluated when the callee reads it.
	FormDeferred
)

func (f ArgumentForm) String() string {
	switch f {
	case FormEvaluated:
		return "evaluated"
	case FormDeferred:
		return "deferred"
	default:
		return "literal"
	}
}

// ArgumentExpr is the value side of an invoke argument or property step.
type ArgumentExpr struct {
	form ArgumentForm
	text string
}

// Literal returns an argument bound as the fixed string s.
func Literal(s string) ArgumentExpr {
	return ArgumentExpr{form: FormLiteral, text: s}
}

// Evaluated returns an argument whose expression is evaluated against the
// invoking message before the callee scope exists.
func Evaluated(expr string) ArgumentExpr {
	return ArgumentExpr{form: FormEvaluated, text: expr}
}

// Deferred returns an argument whose expression is passed through and
// evaluated lazily against the scope active when it is read.
func Deferred(expr string) ArgumentExpr {
	return ArgumentExpr{form: FormDeferred, text: expr}
}

// ParseArgument parses the textual forms used in configuration:
//
//	{{expr}}  deferred
//	{expr}    evaluated
//	value     literal
func ParseArgument(raw string) ArgumentExpr {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "{{") && strings.HasSuffix(s, "}}") && len(s) >= 4 {
		return Deferred(strings.TrimSpace(s[2 : len(s)-2]))
	}
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") && len(s) >= 2 {
		return Evaluated(strings.TrimSpace(s[1 : len(s)-1]))
	}
	return Literal(raw)
}

// Form returns the argument form.
func (a ArgumentExpr) Form() ArgumentForm {
	return a.form
}

// Text returns the literal value or the expression text.
func (a ArgumentExpr) Text() string {
	return a.text
}

func (a ArgumentExpr) String() string {
	switch a.form {
	case FormEvaluated:
		return "{" + a.text + "}"
	case FormDeferred:
		return "{{" + a.text + "}}"
	default:
		return a.text
	}
}

// check validates the expression forms against eval.
func (a ArgumentExpr) check(eval Evaluator) error {
	if a.form == FormLiteral {
		return nil
	}
	if eval == nil {
		return fmt.Errorf("%s: %w", a, ErrNoEvaluator)
	}
	return eval.Check(a.text)
}

// bind computes the value bound for a against msg. An evaluated form that
// yields nothing binds null.
func (a ArgumentExpr) bind(msg *Context, eval Evaluator) (Value, error) {
	switch a.form {
	case FormEvaluated:
		if eval == nil {
			return Value{}, ErrNoEvaluator
		}
		return eval.Evaluate(msg, a.text)
	case FormDeferred:
		return ExpressionValue(a.text), nil
	default:
		return StringValue(a.text), nil
	}
}

// Argument binds one template parameter.
type Argument struct {
	Name string
	Expr ArgumentExpr
}
