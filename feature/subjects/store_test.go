package subjects

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"tversky-reconcile/core/database"
	"tversky-reconcile/core/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupTestDB creates a migrated in-memory SQLite database private to the test.
func setupTestDB(t *testing.T) (*gorm.DB, *Store) {
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect(database.Config{
		Driver: database.DriverSQLite,
		Name:   fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	store := NewStore(db)
	require.NoError(t, store.Migrate(context.Background()))
	return db, store
}

// insertSession adds a Subjects row and its MTurk row. Empty strings and nil keys become NULL.
func insertSession(t *testing.T, db *gorm.DB, sn int64, hit, assignment, worker string, key *int64, reconciled bool) {
	require.NoError(t, db.Exec("INSERT INTO Subjects (sn, completion_key, cookie_expires_t) VALUES (?, ?, ?)",
		sn, key, 1700000000).Error)
	require.NoError(t, db.Exec("INSERT INTO MTurk (sn, hitid, assignmentid, workerid, reconciled) VALUES (?, ?, ?, ?, ?)",
		sn, hit, nullString(assignment), nullString(worker), reconciled).Error)
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func key(n int64) *int64 { return &n }

func isReconciled(t *testing.T, db *gorm.DB, sn int64) bool {
	var row MTurk
	require.NoError(t, db.Where("sn = ?", sn).Take(&row).Error)
	return row.Reconciled
}

// staticMarket serves a fixed set of assignments for one HIT.
type staticMarket struct {
	hitID       string
	assignments []reconcile.Assignment
}

func (m staticMarket) ResolveHIT(ctx context.Context, identifier string) (string, error) {
	if identifier != m.hitID && identifier != "pilot" {
		return "", &reconcile.HitNotFoundError{Identifier: identifier}
	}
	return m.hitID, nil
}

func (m staticMarket) ListAssignments(ctx context.Context, hitID string) ([]reconcile.Assignment, error) {
	return m.assignments, nil
}

type answer bool

func (a answer) Confirm(ctx context.Context, question string) (bool, error) {
	return bool(a), nil
}

func assignment(id, worker, completionKey string) reconcile.Assignment {
	return reconcile.Assignment{
		ID:       id,
		HITID:    "HIT1",
		WorkerID: worker,
		Answers:  map[string]string{reconcile.DefaultCompletionKeyField: completionKey},
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	_, store := setupTestDB(t)
	assert.NoError(t, store.Migrate(context.Background()))
}

func TestTx_EligibleSessions(t *testing.T) {
	db, store := setupTestDB(t)
	insertSession(t, db, 3, "HIT1", "A3", "W3", key(33), false)
	insertSession(t, db, 1, "HIT1", "A1", "W1", key(11), false)
	insertSession(t, db, 2, "HIT1", "A2", "W2", key(22), true)  // already reconciled
	insertSession(t, db, 4, "HIT1", "A4", "W4", nil, false)     // not completed
	insertSession(t, db, 5, "HIT2", "B1", "W5", key(55), false) // other HIT
	insertSession(t, db, 6, "HIT1", "", "", key(66), false)     // never claimed

	tx, err := store.Begin(context.Background())
	require.NoError(t, err)
	defer tx.Rollback()

	sessions, err := tx.EligibleSessions(context.Background(), "HIT1")
	require.NoError(t, err)
	require.Len(t, sessions, 3)

	assert.Equal(t, int64(1), sessions[0].SN)
	assert.Equal(t, "A1", *sessions[0].AssignmentID)
	assert.Equal(t, "W1", *sessions[0].WorkerID)
	assert.Equal(t, int64(11), *sessions[0].CompletionKey)
	assert.False(t, sessions[0].Reconciled)

	assert.Equal(t, int64(3), sessions[1].SN)

	assert.Equal(t, int64(6), sessions[2].SN)
	assert.Nil(t, sessions[2].AssignmentID)
	assert.Nil(t, sessions[2].WorkerID)
}

func TestTx_Counts(t *testing.T) {
	db, store := setupTestDB(t)
	insertSession(t, db, 1, "HIT1", "A1", "W1", key(1), true)
	insertSession(t, db, 2, "HIT2", "A2", "W1", key(2), false)
	insertSession(t, db, 3, "HIT2", "A3", "W3", key(3), false)

	ctx := context.Background()
	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	n, err := tx.CountAssignments(ctx, "A1", true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = tx.CountAssignments(ctx, "A2", true)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = tx.CountAssignments(ctx, "A2", false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// Worker counts span every HIT
	n, err = tx.CountWorker(ctx, "W1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = tx.CountWorker(ctx, "W9")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestTx_RollbackDiscardsWrites(t *testing.T) {
	db, store := setupTestDB(t)
	insertSession(t, db, 1, "HIT1", "A1", "W1", key(42), false)

	ctx := context.Background()
	tx, err := store.Begin(ctx)
	require.NoError(t, err)

	require.NoError(t, tx.MarkReconciled(ctx, 1))
	zeroed, err := tx.ZeroCookieExpirations(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), zeroed)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, tx.Rollback())

	assert.False(t, isReconciled(t, db, 1))
	var subject Subject
	require.NoError(t, db.Take(&subject, 1).Error)
	assert.Equal(t, int64(1700000000), *subject.CookieExpiresT)
}

func TestTx_CommitPersistsWrites(t *testing.T) {
	db, store := setupTestDB(t)
	insertSession(t, db, 1, "HIT1", "A1", "W1", key(42), false)
	insertSession(t, db, 2, "HIT2", "A2", "W2", key(43), false)

	ctx := context.Background()
	tx, err := store.Begin(ctx)
	require.NoError(t, err)

	require.NoError(t, tx.MarkReconciled(ctx, 1))
	_, err = tx.ZeroCookieExpirations(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.NoError(t, tx.Rollback())
	assert.Error(t, tx.Commit())

	assert.True(t, isReconciled(t, db, 1))
	assert.False(t, isReconciled(t, db, 2))

	var subjects []Subject
	require.NoError(t, db.Order("sn").Find(&subjects).Error)
	for _, s := range subjects {
		assert.Equal(t, int64(0), *s.CookieExpiresT)
	}
}

func TestTx_MarkReconciledUnknownSubject(t *testing.T) {
	_, store := setupTestDB(t)

	ctx := context.Background()
	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	assert.EqualError(t, tx.MarkReconciled(ctx, 99), "no MTurk row for subject 99")
}

func TestStore_Sessions(t *testing.T) {
	db, store := setupTestDB(t)
	insertSession(t, db, 2, "HIT1", "A2", "W2", key(22), true)
	insertSession(t, db, 1, "HIT1", "A1", "W1", nil, false)
	insertSession(t, db, 3, "HIT2", "B1", "W3", key(33), false)

	sessions, err := store.Sessions(context.Background(), "HIT1")
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, int64(1), sessions[0].SN)
	assert.Nil(t, sessions[0].CompletionKey)
	assert.Equal(t, int64(2), sessions[1].SN)
	assert.True(t, sessions[1].Reconciled)
}

func TestReconcile_LooksGood(t *testing.T) {
	db, store := setupTestDB(t)
	insertSession(t, db, 1, "HIT1", "A1", "W1", key(42), false)
	market := staticMarket{hitID: "HIT1", assignments: []reconcile.Assignment{assignment("A1", "W1", "42")}}
	var out bytes.Buffer

	report, err := reconcile.New(market, store, answer(false), reconcile.Options{}).
		WithOutput(&out).
		Run(context.Background(), "pilot")
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Looks good: subject 1")
	assert.True(t, report.Committed)
	assert.True(t, isReconciled(t, db, 1))

	// A second run finds nothing left to do
	out.Reset()
	report, err = reconcile.New(market, store, answer(false), reconcile.Options{}).
		WithOutput(&out).
		Run(context.Background(), "HIT1")
	require.NoError(t, err)
	assert.Equal(t, 0, report.Eligible)
	assert.Equal(t, 1, report.AlreadyReconciled)
	assert.NotContains(t, out.String(), "Looks good")
}

func TestReconcile_CompletionKeyMismatchLeavesStoreUntouched(t *testing.T) {
	db, store := setupTestDB(t)
	insertSession(t, db, 1, "HIT1", "A1", "W1", key(42), false)
	market := staticMarket{hitID: "HIT1", assignments: []reconcile.Assignment{assignment("A1", "W1", "99")}}

	_, err := reconcile.New(market, store, answer(true), reconcile.Options{}).
		WithOutput(&bytes.Buffer{}).
		Run(context.Background(), "pilot")

	var mismatch *reconcile.CompletionKeyMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Contains(t, err.Error(), "(99)")
	assert.Contains(t, err.Error(), "42")
	assert.False(t, isReconciled(t, db, 1))
}

func TestReconcile_IrreconcilableRollsBackVerifiedSessions(t *testing.T) {
	db, store := setupTestDB(t)
	insertSession(t, db, 1, "HIT1", "A1", "W1", key(42), false)
	market := staticMarket{hitID: "HIT1", assignments: []reconcile.Assignment{
		assignment("A1", "W1", "42"),
		assignment("A2", "W2", "7"),
	}}

	_, err := reconcile.New(market, store, answer(true), reconcile.Options{}).
		WithOutput(&bytes.Buffer{}).
		Run(context.Background(), "pilot")

	var leftover *reconcile.IrreconcilableAssignmentsError
	require.ErrorAs(t, err, &leftover)
	assert.Equal(t, []string{"A2"}, leftover.IDs())
	assert.False(t, isReconciled(t, db, 1))

	var subject Subject
	require.NoError(t, db.Take(&subject, 1).Error)
	assert.Equal(t, int64(1700000000), *subject.CookieExpiresT)
}
