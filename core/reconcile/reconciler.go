package reconcile

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"tversky-reconcile/core/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExpirationQuestion is asked once every session has been verified.
const ExpirationQuestion = "Zero out all cookie expiration times?"

// Reconciler verifies the submissions of one HIT against the local sessions
// and marks every verified session as reconciled.
type Reconciler struct {
	market  Marketplace
	store   RecordStore
	confirm Confirmer
	opts    Options
	log     *zap.Logger
	out     io.Writer
	now     func() time.Time
}

// New creates a Reconciler. A nil confirmer always answers no.
func New(market Marketplace, store RecordStore, confirm Confirmer, opts Options) *Reconciler {
	return &Reconciler{
		market:  market,
		store:   store,
		confirm: confirm,
		opts:    opts,
		log:     zap.NewNop(),
		out:     os.Stdout,
		now:     time.Now,
	}
}

// WithLogger sets the structured logger.
func (r *Reconciler) WithLogger(l *zap.Logger) *Reconciler {
	r.log = l
	return r
}

// WithOutput sets where operator diagnostics are printed.
func (r *Reconciler) WithOutput(w io.Writer) *Reconciler {
	r.out = w
	return r
}

// Run reconciles the HIT named by identifier.
//
// Every read and write happens inside one Record Store transaction that is
// committed only after all sessions verified, no submission was left over and
// the operator answered the expiration question. Any error rolls the
// transaction back, leaving the store untouched. The report is returned in
// every case.
func (r *Reconciler) Run(ctx context.Context, identifier string) (report *Report, err error) {
	report = &Report{
		RunID:      uuid.NewString(),
		Identifier: identifier,
		Verified:   []int64{},
		Warnings:   []Warning{},
		DryRun:     r.opts.DryRun,
		Started:    r.now(),
	}
	defer func() {
		report.Finished = r.now()
		if err != nil {
			report.Error = err.Error()
		}
	}()

	log := logger.WithRun(r.log, report.RunID, identifier)

	hitID, err := r.market.ResolveHIT(ctx, identifier)
	if err != nil {
		return report, fmt.Errorf("failed to resolve HIT: %w", err)
	}
	report.HITID = hitID
	log = log.With(zap.String("hit_id", hitID))

	tx, err := r.store.Begin(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if report.Committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Warn("Rollback failed", zap.Error(rbErr))
		}
	}()

	// Step 1: index the submissions
	assignments, err := r.market.ListAssignments(ctx, hitID)
	if err != nil {
		return report, fmt.Errorf("failed to list assignments: %w", err)
	}
	pending := make(map[string]Assignment, len(assignments))
	for _, a := range assignments {
		pending[a.ID] = a
	}
	report.Submitted = len(pending)
	log.Info("Fetched submitted assignments", zap.Int("submitted", report.Submitted))

	// Step 2: drop submissions reconciled by a previous run, for any HIT
	for _, id := range sortedIDs(pending) {
		n, err := tx.CountAssignments(ctx, id, true)
		if err != nil {
			return report, fmt.Errorf("failed to check assignment %s: %w", id, err)
		}
		if n > 0 {
			delete(pending, id)
			report.AlreadyReconciled++
		}
	}

	// Step 3: verify each eligible session
	sessions, err := tx.EligibleSessions(ctx, hitID)
	if err != nil {
		return report, fmt.Errorf("failed to load eligible sessions: %w", err)
	}
	report.Eligible = len(sessions)
	log.Info("Verifying sessions",
		zap.Int("eligible", report.Eligible),
		zap.Int("already_reconciled", report.AlreadyReconciled),
	)

	for _, s := range sessions {
		if err := r.verify(ctx, tx, s, pending, report, log); err != nil {
			return report, err
		}
	}

	// Step 4: every remaining submission lacks a completed session
	if len(pending) > 0 {
		leftover := make([]Assignment, 0, len(pending))
		for _, id := range sortedIDs(pending) {
			leftover = append(leftover, pending[id])
		}
		return report, &IrreconcilableAssignmentsError{Assignments: leftover}
	}

	if r.opts.DryRun {
		fmt.Fprintln(r.out, "Dry run: discarding all changes.")
		log.Info("Dry run finished", zap.Int("verified", len(report.Verified)))
		return report, nil
	}

	// Step 5: optional cleanup, gated by the operator
	zero, err := r.ask(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to read confirmation: %w", err)
	}
	if zero {
		n, err := tx.ZeroCookieExpirations(ctx)
		if err != nil {
			return report, fmt.Errorf("failed to zero cookie expirations: %w", err)
		}
		report.ExpirationsZeroed = true
		report.ZeroedRows = n
		fmt.Fprintln(r.out, "Zeroed out.")
	} else {
		fmt.Fprintln(r.out, "All right, I won't.")
	}

	// Step 6: one durable commit for everything staged above
	if err := tx.Commit(); err != nil {
		return report, fmt.Errorf("failed to commit: %w", err)
	}
	report.Committed = true

	log.Info("Reconciliation committed",
		zap.Int("verified", len(report.Verified)),
		zap.Int("warnings", len(report.Warnings)),
		zap.Bool("expirations_zeroed", report.ExpirationsZeroed),
	)
	return report, nil
}

// verify checks one session against its submission and stages the reconciled mark.
func (r *Reconciler) verify(ctx context.Context, tx Tx, s Session, pending map[string]Assignment, report *Report, log *zap.Logger) error {
	if s.AssignmentID == nil {
		return &UnmatchedSessionError{Session: s}
	}
	a, ok := pending[*s.AssignmentID]
	if !ok {
		return &UnmatchedSessionError{Session: s}
	}

	if s.WorkerID == nil || a.WorkerID != *s.WorkerID {
		return &WorkerMismatchError{Submitted: a.WorkerID, Session: s}
	}

	field := r.opts.completionKeyField()
	raw, ok := a.Answers[field]
	if !ok {
		return &CompletionKeyMismatchError{Session: s, Err: fmt.Errorf("answer field %q missing", field)}
	}
	key, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return &CompletionKeyMismatchError{Submitted: raw, Session: s, Err: err}
	}
	if s.CompletionKey == nil || key != *s.CompletionKey {
		return &CompletionKeyMismatchError{Submitted: raw, Session: s}
	}

	n, err := tx.CountWorker(ctx, *s.WorkerID)
	if err != nil {
		return fmt.Errorf("failed to count rows for worker %s: %w", *s.WorkerID, err)
	}
	if n != 1 {
		report.Warnings = append(report.Warnings, Warning{
			Kind:     WarningDuplicateWorker,
			SN:       s.SN,
			WorkerID: *s.WorkerID,
			Count:    n,
		})
		fmt.Fprintf(r.out, "Multiple MTurk rows (%d) for %s\n", n, *s.WorkerID)
		log.Warn("Worker has several MTurk rows", zap.String("worker_id", *s.WorkerID), zap.Int64("rows", n))
	}

	delete(pending, a.ID)
	fmt.Fprintf(r.out, "Looks good: subject %d\n", s.SN)

	if err := tx.MarkReconciled(ctx, s.SN); err != nil {
		return fmt.Errorf("failed to mark subject %d reconciled: %w", s.SN, err)
	}
	report.Verified = append(report.Verified, s.SN)
	log.Debug("Session verified", zap.Int64("sn", s.SN), zap.String("assignment_id", a.ID))
	return nil
}

func (r *Reconciler) ask(ctx context.Context) (bool, error) {
	if r.confirm == nil {
		return false, nil
	}
	return r.confirm.Confirm(ctx, ExpirationQuestion)
}

func sortedIDs(m map[string]Assignment) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
