package subjects

import (
	"context"
	"fmt"
	"strings"

	"tversky-reconcile/core/reconcile"

	"gorm.io/gorm"
)

// Store is the gorm-backed record store of experiment sessions.
type Store struct {
	db *gorm.DB
}

// NewStore wraps an open database handle. The caller owns the handle.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the Subjects and MTurk tables when they are missing.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(migration, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if err := s.db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return nil
}

// Begin opens the transaction that stages every write of a run.
func (s *Store) Begin(ctx context.Context) (reconcile.Tx, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	return &Tx{db: tx}, nil
}

// Sessions lists every session of a HIT, whatever its state, ordered by sn.
func (s *Store) Sessions(ctx context.Context, hitID string) ([]reconcile.Session, error) {
	var rows []sessionRow
	err := s.db.WithContext(ctx).
		Table("Subjects").
		Select(sessionColumns).
		Joins("JOIN MTurk ON MTurk.sn = Subjects.sn").
		Where("MTurk.hitid = ?", hitID).
		Order("Subjects.sn").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions for %s: %w", hitID, err)
	}
	return toSessions(rows), nil
}

// Tx implements reconcile.Tx on a gorm transaction.
type Tx struct {
	db   *gorm.DB
	done bool
}

// EligibleSessions returns the completed, unreconciled sessions of a HIT ordered by sn.
func (t *Tx) EligibleSessions(ctx context.Context, hitID string) ([]reconcile.Session, error) {
	var rows []sessionRow
	err := t.db.WithContext(ctx).
		Table("Subjects").
		Select(sessionColumns).
		Joins("JOIN MTurk ON MTurk.sn = Subjects.sn").
		Where("MTurk.hitid = ? AND MTurk.reconciled = ? AND Subjects.completion_key IS NOT NULL", hitID, false).
		Order("Subjects.sn").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query eligible sessions: %w", err)
	}
	return toSessions(rows), nil
}

// CountAssignments counts MTurk rows of any HIT with the assignment ID and reconciled flag.
func (t *Tx) CountAssignments(ctx context.Context, assignmentID string, reconciled bool) (int64, error) {
	var n int64
	err := t.db.WithContext(ctx).
		Table("MTurk").
		Where("reconciled = ? AND assignmentid = ?", reconciled, assignmentID).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count assignment %s: %w", assignmentID, err)
	}
	return n, nil
}

// CountWorker counts MTurk rows of any HIT with the worker ID.
func (t *Tx) CountWorker(ctx context.Context, workerID string) (int64, error) {
	var n int64
	err := t.db.WithContext(ctx).
		Table("MTurk").
		Where("workerid = ?", workerID).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count worker %s: %w", workerID, err)
	}
	return n, nil
}

// MarkReconciled stages reconciled = 1 for one subject.
func (t *Tx) MarkReconciled(ctx context.Context, sn int64) error {
	result := t.db.WithContext(ctx).
		Table("MTurk").
		Where("sn = ?", sn).
		Update("reconciled", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark subject %d: %w", sn, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("no MTurk row for subject %d", sn)
	}
	return nil
}

// ZeroCookieExpirations stages cookie_expires_t = 0 on every subject.
func (t *Tx) ZeroCookieExpirations(ctx context.Context) (int64, error) {
	result := t.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Table("Subjects").
		Update("cookie_expires_t", 0)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to zero cookie expirations: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// Commit makes every staged write durable.
func (t *Tx) Commit() error {
	if t.done {
		return fmt.Errorf("transaction already finished")
	}
	t.done = true
	return t.db.Commit().Error
}

// Rollback discards staged writes. It is a no-op once the transaction finished.
func (t *Tx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	return t.db.Rollback().Error
}

func toSessions(rows []sessionRow) []reconcile.Session {
	sessions := make([]reconcile.Session, 0, len(rows))
	for _, r := range rows {
		sessions = append(sessions, reconcile.Session{
			SN:            r.SN,
			HITID:         r.HITID,
			AssignmentID:  r.AssignmentID,
			WorkerID:      r.WorkerID,
			CompletionKey: r.CompletionKey,
			Reconciled:    r.Reconciled,
		})
	}
	return sessions
}
