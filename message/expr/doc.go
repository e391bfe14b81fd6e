// Package expr implements the small expression language used by mediator
// configuration, and the get-property extension function.
//
// # Syntax
//
//	'text' or "text"          string literal
//	42, 1.5                    number literal
//	name(arg, ...)             function call; a prefix is allowed (xf:get-property)
//	$ctx:name                  shorthand for get-property('name')
//	( expr )                   grouping
//
// # Functions
//
// get-property(key) resolves key through [message.Context.Resolve]: the
// property store first, then the envelope fields To, From, Action, FaultTo
// and ReplyTo. Only the first argument is used. With no argument, or with no
// message bound, it logs a warning and yields null. A property holding a
// deferred expression is evaluated against the scope active at read time.
//
// concat, string, upper-case, lower-case and string-length are built in.
// [Engine.Register] adds more.
//
// # Evaluation
//
// [Engine] implements [message.Evaluator]. Compiled expressions are cached by
// source text. Nested evaluation of deferred expressions is bounded by
// [Config.MaxDepth].
package expr
