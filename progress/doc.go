// Package progress derives a progress report of a review run from its
// persisted queue state, and fans reports out to observers.
package progress
