package subjects

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"tversky-reconcile/core/database"

	"gorm.io/gorm"
)

// SchemaReport is the result of checking a database against the reconciler's models.
type SchemaReport struct {
	Driver  string                 `json:"driver"`
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
	Errors  []string               `json:"errors"`
}

// TableReport describes one table of a SchemaReport.
type TableReport struct {
	MissingColumns []string          `json:"missing_columns"`
	Columns        map[string]string `json:"columns"`
	Status         string            `json:"status"` // "ok", "missing", "error"
}

// CheckSchema verifies that the Subjects and MTurk tables carry every column
// the reconciler reads or writes, using the gorm models as the source of truth.
func CheckSchema(db *gorm.DB) (*SchemaReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &SchemaReport{
		Driver:  db.Dialector.Name(),
		Matched: true,
		Tables:  make(map[string]TableReport),
		Errors:  []string{},
	}

	for _, model := range []any{Subject{}, MTurk{}} {
		tableName := model.(interface{ TableName() string }).TableName()

		actual, err := database.GetTableColumns(db, tableName)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", tableName, err))
			report.Tables[tableName] = TableReport{Status: "error"}
			report.Matched = false
			continue
		}

		tbl := TableReport{
			MissingColumns: []string{},
			Columns:        make(map[string]string, len(actual)),
			Status:         "ok",
		}
		for _, col := range actual {
			tbl.Columns[col.Field] = col.Type
		}

		if len(actual) == 0 {
			tbl.Status = "missing"
			report.Matched = false
		}

		for _, col := range modelColumns(model) {
			if _, ok := tbl.Columns[col]; !ok {
				tbl.MissingColumns = append(tbl.MissingColumns, col)
				if tbl.Status == "ok" {
					tbl.Status = "error"
				}
				report.Matched = false
			}
		}
		sort.Strings(tbl.MissingColumns)

		report.Tables[tableName] = tbl
	}

	return report, nil
}

// modelColumns lists the column names declared in a model's gorm tags.
func modelColumns(model any) []string {
	t := reflect.TypeOf(model)
	cols := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if col := parseGormColumn(t.Field(i).Tag.Get("gorm")); col != "" {
			cols = append(cols, col)
		}
	}
	return cols
}

func parseGormColumn(tag string) string {
	for _, p := range strings.Split(tag, ";") {
		if name, ok := strings.CutPrefix(p, "column:"); ok {
			return strings.ToLower(name)
		}
	}
	return ""
}
