// Package subjects is the record store of the reconciler: the Subjects and
// MTurk tables of a Tversky experiment database, accessed through GORM.
//
// # Tables
//
// Subjects holds one row per experiment session (serial number, completion key,
// cookie expiration). MTurk holds the marketplace side of the same session,
// keyed by the same serial number: HIT ID, assignment ID, worker ID and the
// reconciled flag.
//
// # Transactions
//
// Store.Begin opens a gorm transaction and returns a Tx implementing
// reconcile.Tx. Nothing written through a Tx is visible to other connections
// until Commit; Rollback discards it and is a no-op after Commit.
//
// # Schema Check
//
// CheckSchema compares the live tables with the models of this package and
// reports missing columns, so a wrong database file is caught before a run.
//
// # Usage
//
//	store := subjects.NewStore(db)
//	r := reconcile.New(market, store, confirmer, reconcile.Options{})
package subjects
