// Package trigger provides the in-process scheduling primitives: TickLoop
// drives the ticks of an active run and Weekly starts the scheduled run.
package trigger
