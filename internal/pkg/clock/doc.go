// Package clock provides a tiny time abstraction.
//
// Code that reasons about expiry windows should depend on the Clocker
// interface instead of calling time.Now() directly, so tests can drive the
// clock to points just before and just after a deadline.
package clock
