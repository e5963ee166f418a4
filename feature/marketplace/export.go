package marketplace

import (
	"encoding/csv"
	"io"
	"strings"

	"tversky-reconcile/core/reconcile"

	"github.com/rotisserie/eris"
)

// Export column names.
const (
	ColumnHITID        = "HITId"
	ColumnAssignmentID = "AssignmentId"
	ColumnWorkerID     = "WorkerId"
	ColumnStatus       = "AssignmentStatus"

	answerPrefix = "Answer."
)

// ParseExport reads every assignment row of a batch-results export.
// Answer columns are keyed by field name without the "Answer." prefix.
func ParseExport(r io.Reader) ([]reconcile.Assignment, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, eris.New("marketplace: export is empty")
	}
	if err != nil {
		return nil, eris.Wrap(err, "marketplace: read export header")
	}

	index := make(map[string]int, len(header))
	answers := make(map[int]string)
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		index[name] = i
		if field, ok := strings.CutPrefix(name, answerPrefix); ok && field != "" {
			answers[i] = field
		}
	}
	for _, required := range []string{ColumnHITID, ColumnAssignmentID, ColumnWorkerID} {
		if _, ok := index[required]; !ok {
			return nil, eris.Errorf("marketplace: export lacks column %s", required)
		}
	}

	get := func(record []string, column string) string {
		i, ok := index[column]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var out []reconcile.Assignment
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "marketplace: read export row %d", line)
		}

		a := reconcile.Assignment{
			ID:       get(record, ColumnAssignmentID),
			HITID:    get(record, ColumnHITID),
			WorkerID: get(record, ColumnWorkerID),
			Status:   get(record, ColumnStatus),
			Answers:  make(map[string]string, len(answers)),
		}
		if a.ID == "" || a.HITID == "" {
			return nil, eris.Errorf("marketplace: export row %d has no HIT or assignment ID", line)
		}
		for i, field := range answers {
			if i < len(record) {
				a.Answers[field] = record[i]
			}
		}
		out = append(out, a)
	}
	return out, nil
}
