// Package message provides the mediation core: message contexts with scoped
// properties, mediators chained into named sequences, and parameterized
// sequences (templates) invoked with bound arguments.
//
// # Quick Start
//
//	eval := expr.New(expr.Config{})
//
//	greet, _ := message.NewTemplate("greet", []string{"name"},
//		mustProperty(message.PropertyConfig{
//			Name:      "greeting",
//			Value:     message.Evaluated("concat('hello ', get-property('name'))"),
//			Evaluator: eval,
//		}),
//	)
//	invoke, _ := message.NewInvoke(message.InvokeConfig{
//		Target:    "greet",
//		Arguments: []message.Argument{{Name: "name", Expr: message.Evaluated("get-property('From')")}},
//		Evaluator: eval,
//	})
//
//	reg := message.NewRegistry()
//	reg.Register("greet", greet)
//	reg.Register("main", message.NewSequence("main", invoke))
//	reg.Freeze()
//
//	msg := message.NewContext(message.Envelope{From: message.NewAddress("urn:alice")}, reg)
//	ok, err := message.NewEngine(message.EngineConfig{Entry: "main"}).Mediate(ctx, msg)
//
// # Properties and scopes
//
// [Properties] is a stack of layers. [Invoke] pushes one layer holding the
// bound arguments before running the template body and releases it with
// defer, so the layer is gone after the call whether the body continued,
// halted, failed or panicked. Lookups resolve innermost first, which gives
// each invocation its own view of parameter names, including recursive
// invocations of the same template.
//
// [Context.Resolve] looks up a name in the store and falls back to the
// envelope fields named by [PropTo], [PropFrom], [PropAction], [PropFaultTo]
// and [PropReplyTo]. The expression function get-property in package expr
// is built on it.
//
// # Arguments
//
// An [Argument] is bound from one of three forms, written in configuration
// as value, {expr} and {{expr}} (see [ParseArgument]):
//
//   - [Literal] binds the text as is.
//   - [Evaluated] evaluates the expression in the caller's scope before the
//     new scope is pushed.
//   - [Deferred] binds the expression text; the expression engine evaluates
//     it when the template body reads the parameter.
//
// # Design Notes
//
// Mediators carry a [Kind] tag. Invoke only accepts targets tagged
// [KindTemplate], and [Apply] keeps the tag when wrapping a mediator with
// middleware.
//
// The [Registry] is reached through [Context.Configuration] rather than a
// package variable so tests can run with isolated registries.
//
// Misconfiguration found while a message is mediated (unknown target, target
// that is not a template) is logged and reported as false; it is never
// returned as an error.
//
// # Subpackages
//
// expr: expression engine and the get-property function
//
// middleware: cross-cutting mediator wrappers (recover, logging, retry, deadline)
//
// definition: YAML configuration loader
//
// telemetry: OpenTelemetry instrumentation
//
// cloudevents: conversion between CloudEvents and message contexts, subscriber and publisher
package message
