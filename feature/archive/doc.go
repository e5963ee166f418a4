// Package archive uploads reconciliation run reports to object storage.
package archive
