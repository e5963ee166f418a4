package reconcile

import "context"

// Marketplace is the work-marketplace collaborator.
// Authentication and configuration are the implementation's concern.
type Marketplace interface {
	// ResolveHIT maps a nickname or raw ID to a canonical HIT ID.
	// It returns a *HitNotFoundError if the identifier is unknown.
	ResolveHIT(ctx context.Context, identifier string) (string, error)

	// ListAssignments returns every submitted assignment of a HIT.
	ListAssignments(ctx context.Context, hitID string) ([]Assignment, error)
}

// RecordStore is the relational store of experiment sessions.
type RecordStore interface {
	// Begin opens a transaction. Every read and write of a run goes through it.
	Begin(ctx context.Context) (Tx, error)
}

// Tx stages Record Store reads and writes until Commit.
// Rollback after Commit is a no-op.
type Tx interface {
	// EligibleSessions returns the sessions of a HIT with a completion key that are not reconciled.
	EligibleSessions(ctx context.Context, hitID string) ([]Session, error)

	// CountAssignments counts MTurk rows, across all HITs, with the given assignment ID and reconciled flag.
	CountAssignments(ctx context.Context, assignmentID string, reconciled bool) (int64, error)

	// CountWorker counts MTurk rows, across all HITs, with the given worker ID.
	CountWorker(ctx context.Context, workerID string) (int64, error)

	// MarkReconciled sets reconciled for one session.
	MarkReconciled(ctx context.Context, sn int64) error

	// ZeroCookieExpirations zeroes cookie_expires_t on every Subjects row.
	ZeroCookieExpirations(ctx context.Context) (int64, error)

	Commit() error
	Rollback() error
}

// Confirmer asks the operator a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}
