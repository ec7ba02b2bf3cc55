// Package policy provides the declarative proposal rules applied to every
// verification outcome before it reaches the pending change ledger.
package policy
