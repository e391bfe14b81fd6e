package expr

import (
	"log/slog"

	"github.com/fxsml/mediate/message"
)

// GetProperty is the get-property(key) function. The expression engine binds
// the message with SetContext before each evaluation.
type GetProperty struct {
	msg    *message.Context
	logger message.Logger
	deref  func(src string) (message.Value, error)
}

// NewGetProperty returns an unbound GetProperty. Deferred expressions found
// in the store are returned unevaluated; use an Engine to have them evaluated.
func NewGetProperty(logger message.Logger) *GetProperty {
	if logger == nil {
		logger = slog.Default()
	}
	return &GetProperty{logger: logger}
}

// SetContext binds msg. A nil msg unbinds.
func (f *GetProperty) SetContext(msg *message.Context) {
	f.msg = msg
}

// Context returns the bound message.
func (f *GetProperty) Context() *message.Context {
	return f.msg
}

// Call resolves the first argument as a property key. Further arguments are
// ignored. Missing arguments, a missing message and an unknown key all yield
// null; the first two are logged as warnings.
func (f *GetProperty) Call(args []message.Value) (message.Value, error) {
	if len(args) == 0 {
		f.logger.Warn("Property key value for lookup was not specified")
		return message.Null(), nil
	}
	if f.msg == nil {
		f.logger.Warn("Message context has not been set for get-property")
		return message.Null(), nil
	}

	key := args[0].String()
	v, ok := f.msg.Resolve(key)
	if !ok {
		return message.Null(), nil
	}
	if src, deferred := v.Expression(); deferred && f.deref != nil {
		return f.deref(src)
	}
	return v, nil
}
