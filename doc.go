// Package curator keeps a catalog of informational topics current. A review
// run verifies topics one tick at a time against an external verification
// service; proposed edits wait in a ledger until an operator approves or
// rejects them.
//
// Typical use:
//
//	srv, err := curator.New(
//		curator.WithStore(store),
//		curator.WithCatalog(topics),
//		curator.WithClient(anthropic.New(config)),
//	)
//	if err != nil { ... }
//	runtime := srv.Runtime()
//	go runtime.Start(ctx)
//	state, err := srv.Start(ctx, "golang")
package curator
