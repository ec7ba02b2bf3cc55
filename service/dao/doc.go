// Package dao defines the durable record store used for the queue state, the
// pending change ledger, the schedule and the run history. Each record is an
// independent key updated through single read-modify-write transactions.
package dao
