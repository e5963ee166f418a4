package reconcile

import (
	"fmt"
	"strings"
	"time"
)

// DefaultCompletionKeyField is the answer field that carries the completion key
// a worker copies from the experiment back into the marketplace form.
const DefaultCompletionKeyField = "tversky_completion_key"

// Assignment is one worker's submitted response to a HIT, as recorded by the marketplace.
// Assignments are immutable snapshots fetched fresh on every run.
type Assignment struct {
	// ID is the marketplace assignment identifier, unique per submission.
	ID string `json:"assignment_id"`

	// HITID is the HIT this assignment was submitted for.
	HITID string `json:"hit_id"`

	// WorkerID is the marketplace identifier of the submitting worker.
	WorkerID string `json:"worker_id"`

	// Status is the marketplace status (Submitted, Approved, Rejected).
	Status string `json:"status,omitempty"`

	// Answers maps answer field names to submitted values.
	Answers map[string]string `json:"answers"`
}

// Session is a local experiment record: a row of Subjects joined with MTurk on sn.
type Session struct {
	// SN is the local subject serial number.
	SN int64 `json:"sn"`

	// HITID is the HIT the session was started from.
	HITID string `json:"hit_id"`

	// AssignmentID is nil until a worker claims the session.
	AssignmentID *string `json:"assignment_id"`

	// WorkerID is the worker that claimed the session.
	WorkerID *string `json:"worker_id"`

	// CompletionKey is nil until the session is completed locally.
	CompletionKey *int64 `json:"completion_key"`

	// Reconciled marks a session that already passed cross-source verification.
	Reconciled bool `json:"reconciled"`
}

// String renders the session for diagnostics, with nulls spelled out.
func (s Session) String() string {
	key := "null"
	if s.CompletionKey != nil {
		key = fmt.Sprintf("%d", *s.CompletionKey)
	}
	return fmt.Sprintf("{sn: %d, hitid: %s, assignmentid: %s, workerid: %s, completion_key: %s, reconciled: %t}",
		s.SN, s.HITID, nullable(s.AssignmentID), nullable(s.WorkerID), key, s.Reconciled)
}

func nullable(s *string) string {
	if s == nil {
		return "null"
	}
	return *s
}

// WarningKind identifies a non-fatal anomaly.
type WarningKind string

const (
	// WarningDuplicateWorker is raised when a worker ID occurs on more than one MTurk row.
	WarningDuplicateWorker WarningKind = "duplicate_worker"
)

// Warning is a non-fatal anomaly reported during a run.
type Warning struct {
	Kind     WarningKind `json:"kind"`
	SN       int64       `json:"sn"`
	WorkerID string      `json:"worker_id"`
	Count    int64       `json:"count"`
}

// Report summarizes a reconciliation run. It is returned even when the run fails.
type Report struct {
	// RunID identifies the invocation in logs and archives.
	RunID string `json:"run_id"`

	// Identifier is the HIT nickname or ID given by the operator.
	Identifier string `json:"identifier"`

	// HITID is the canonical HIT ID the identifier resolved to.
	HITID string `json:"hit_id"`

	// Submitted counts assignments returned by the marketplace.
	Submitted int `json:"submitted"`

	// AlreadyReconciled counts submitted assignments handled by a previous run.
	AlreadyReconciled int `json:"already_reconciled"`

	// Eligible counts completed, unreconciled sessions of the HIT.
	Eligible int `json:"eligible"`

	// Verified lists the serial numbers marked reconciled, in processing order.
	Verified []int64 `json:"verified"`

	// Warnings lists non-fatal anomalies.
	Warnings []Warning `json:"warnings"`

	// ExpirationsZeroed is true when the operator confirmed the cookie expiration reset.
	ExpirationsZeroed bool `json:"expirations_zeroed"`

	// ZeroedRows counts Subjects rows touched by the expiration reset.
	ZeroedRows int64 `json:"zeroed_rows"`

	// DryRun is true when every staged write was discarded on purpose.
	DryRun bool `json:"dry_run"`

	// Committed is true once the transaction was committed.
	Committed bool `json:"committed"`

	// Error holds the fatal error message of a failed run.
	Error string `json:"error,omitempty"`

	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
}

// Options controls reconciler behavior.
type Options struct {
	// CompletionKeyField is the answer field compared against the session completion key.
	// Empty means DefaultCompletionKeyField.
	CompletionKeyField string

	// DryRun runs every check, skips the expiration prompt and rolls the transaction back.
	DryRun bool
}

func (o Options) completionKeyField() string {
	if strings.TrimSpace(o.CompletionKeyField) == "" {
		return DefaultCompletionKeyField
	}
	return o.CompletionKeyField
}
