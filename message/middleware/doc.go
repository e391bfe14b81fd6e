// Package middleware provides message.Middleware implementations for
// mediators: panic recovery, logging, retries, correlation and expiry.
//
// Middleware is applied with message.Apply, which keeps the Kind of the
// wrapped mediator:
//
//	tmpl = message.Apply(tmpl, middleware.Recover(), middleware.Log("validate", logger))
package middleware
