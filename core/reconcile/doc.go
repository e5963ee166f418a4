// Package reconcile verifies crowd-sourced HIT submissions against local
// experiment sessions and marks matching sessions as reconciled.
//
// # Sources
//
// Two collaborators are injected into the Reconciler:
//
//  1. Marketplace: resolves a HIT nickname to its ID and lists the submitted
//     assignments, each carrying a worker ID and the answers of the HIT form.
//
//  2. RecordStore: the experiment database (Subjects joined with MTurk). All
//     reads and writes of a run go through a single Tx.
//
// # Algorithm
//
// Submissions are indexed by assignment ID. Those already reconciled in an
// earlier run (for any HIT) are dropped. Every completed, unreconciled session
// of the HIT must then match exactly one remaining submission, with the same
// worker ID and the same completion key. Each verified session is marked
// reconciled. Submissions left over at the end are an error.
//
// Every mismatch is fatal: the run stops, the transaction is rolled back and
// the store is left untouched. A worker with several MTurk rows only produces
// a warning.
//
// Once everything verified, the operator may zero the cookie expiration of
// every subject. The transaction is committed after that question.
//
// # Usage Example
//
//	r := reconcile.New(market, store, prompt.NewStdin(os.Stdin, os.Stdout), reconcile.Options{})
//	report, err := r.WithLogger(log).Run(ctx, "pilot")
//	if errors.Is(err, reconcile.ErrIrreconcilable) {
//	    // fix the data and run again
//	}
package reconcile
