package expr

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fxsml/mediate/message"
)

const getPropertyName = "get-property"

var builtins = map[string]Function{
	getPropertyName: getProperty,
	"concat":        concat,
	"string":        stringFn,
	"upper-case":    unary(strings.ToUpper),
	"lower-case":    unary(strings.ToLower),
	"string-length": stringLength,
}

func getProperty(env *Env, args []message.Value) (message.Value, error) {
	f := &GetProperty{logger: env.Logger(), deref: env.Evaluate}
	f.SetContext(env.Message())
	return f.Call(args)
}

func concat(_ *Env, args []message.Value) (message.Value, error) {
	var b strings.Builder
	for _, a := range args {
		b.WriteString(a.String())
	}
	return message.StringValue(b.String()), nil
}

func stringFn(_ *Env, args []message.Value) (message.Value, error) {
	switch len(args) {
	case 0:
		return message.StringValue(""), nil
	case 1:
		return message.StringValue(args[0].String()), nil
	}
	return message.Value{}, fmt.Errorf("%w: want 0 or 1, got %d", ErrArity, len(args))
}

func stringLength(_ *Env, args []message.Value) (message.Value, error) {
	if len(args) != 1 {
		return message.Value{}, fmt.Errorf("%w: want 1, got %d", ErrArity, len(args))
	}
	return message.NumberValue(float64(utf8.RuneCountInString(args[0].String()))), nil
}

func unary(fn func(string) string) Function {
	return func(_ *Env, args []message.Value) (message.Value, error) {
		if len(args) != 1 {
			return message.Value{}, fmt.Errorf("%w: want 1, got %d", ErrArity, len(args))
		}
		return message.StringValue(fn(args[0].String())), nil
	}
}
