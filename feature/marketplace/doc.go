// Package marketplace reads worker submissions from a requester batch-results export.
//
// The export is the CSV the marketplace produces for a batch: one row per
// assignment with HITId, AssignmentId, WorkerId and AssignmentStatus columns,
// followed by one Answer.<field> column per form field. It is read from a
// local path or from object storage (s3://bucket/key).
//
// HIT nicknames are resolved through a YAML registry:
//
//	hits:
//	  pilot: 3XJ1PQ8EXAMPLEHITID
//
// The Client implements reconcile.Marketplace.
package marketplace
