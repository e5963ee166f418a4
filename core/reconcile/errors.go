package reconcile

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrIrreconcilable matches every fatal inconsistency between the marketplace and the store.
	ErrIrreconcilable = errors.New("irreconcilable")

	// ErrHitNotFound matches HitNotFoundError.
	ErrHitNotFound = errors.New("hit not found")
)

// UnmatchedSessionError reports a completed local session with no corresponding submission.
type UnmatchedSessionError struct {
	Session Session
}

func (e *UnmatchedSessionError) Error() string {
	return fmt.Sprintf("no assignment submitted: %s", e.Session)
}

func (e *UnmatchedSessionError) Is(target error) bool {
	return target == ErrIrreconcilable
}

// WorkerMismatchError reports a submission whose worker differs from the session's worker.
type WorkerMismatchError struct {
	Submitted string
	Session   Session
}

func (e *WorkerMismatchError) Error() string {
	return fmt.Sprintf("submitted worker ID (%s) doesn't match: %s", e.Submitted, e.Session)
}

func (e *WorkerMismatchError) Is(target error) bool {
	return target == ErrIrreconcilable
}

// CompletionKeyMismatchError reports a submitted completion key that differs from the session's.
// Err is set when the submitted value is missing or not an integer.
type CompletionKeyMismatchError struct {
	Submitted string
	Session   Session
	Err       error
}

func (e *CompletionKeyMismatchError) Error() string {
	msg := fmt.Sprintf("submitted completion key (%s) doesn't match: %s", e.Submitted, e.Session)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CompletionKeyMismatchError) Unwrap() error {
	return e.Err
}

func (e *CompletionKeyMismatchError) Is(target error) bool {
	return target == ErrIrreconcilable
}

// IrreconcilableAssignmentsError lists submissions left without a local completed session.
type IrreconcilableAssignmentsError struct {
	Assignments []Assignment
}

// IDs returns the leftover assignment IDs in order.
func (e *IrreconcilableAssignmentsError) IDs() []string {
	ids := make([]string, 0, len(e.Assignments))
	for _, a := range e.Assignments {
		ids = append(ids, a.ID)
	}
	return ids
}

func (e *IrreconcilableAssignmentsError) Error() string {
	parts := make([]string, 0, len(e.Assignments))
	for _, a := range e.Assignments {
		parts = append(parts, fmt.Sprintf("%s: {worker: %s, answers: %s}", a.ID, a.WorkerID, formatAnswers(a.Answers)))
	}
	return fmt.Sprintf("irreconcilable assignments: %s", strings.Join(parts, "; "))
}

func (e *IrreconcilableAssignmentsError) Is(target error) bool {
	return target == ErrIrreconcilable
}

// HitNotFoundError reports a HIT nickname or ID the marketplace cannot resolve.
type HitNotFoundError struct {
	Identifier string
}

func (e *HitNotFoundError) Error() string {
	return fmt.Sprintf("HIT %q not found", e.Identifier)
}

func (e *HitNotFoundError) Is(target error) bool {
	return target == ErrHitNotFound
}

func formatAnswers(answers map[string]string) string {
	keys := make([]string, 0, len(answers))
	for k := range answers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%q", k, answers[k]))
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}
