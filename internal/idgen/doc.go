// Package idgen wraps the UUID generator so that it can be stubbed in tests.
// Identifiers are opaque strings that are never reused; change and run ids
// are drawn from it.
package idgen
