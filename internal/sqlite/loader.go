package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mesh-intelligence/bugtracker/pkg/types"
)

// tableSpec ties a SQLite table to its JSONL file. The columns double as the
// JSON keys of each record.
type tableSpec struct {
	file    string
	table   string
	columns []string
	orderBy string
}

// tableSpecs lists every persisted table.
var tableSpecs = []tableSpec{
	{
		file:    "projects.jsonl",
		table:   types.ProjectsTable,
		columns: []string{"project_id", "name", "description", "created_at", "updated_at"},
		orderBy: "created_at, project_id",
	},
	{
		file:    "users.jsonl",
		table:   types.UsersTable,
		columns: []string{"user_id", "login", "first_name", "last_name", "email", "created_at", "updated_at"},
		orderBy: "created_at, user_id",
	},
	{
		file:    "tickets.jsonl",
		table:   types.TicketsTable,
		columns: []string{"ticket_id", "title", "description", "due_date", "done", "project_id", "assigned_to", "created_at", "updated_at"},
		orderBy: "created_at, ticket_id",
	},
	{
		file:    "labels.jsonl",
		table:   types.LabelsTable,
		columns: []string{"label_id", "value", "created_at", "updated_at"},
		orderBy: "created_at, label_id",
	},
	{
		file:    "ticket_labels.jsonl",
		table:   types.TicketLabelsTable,
		columns: []string{"ticket_id", "label_id"},
		orderBy: "ticket_id, label_id",
	},
}

func specFor(table string) (tableSpec, bool) {
	for _, spec := range tableSpecs {
		if spec.table == table {
			return spec, true
		}
	}
	return tableSpec{}, false
}

// loadAllJSONL reads each JSONL file from dataDir and inserts its records
// into the matching SQLite table. Loading is transactional: all files load
// or the database stays empty. Malformed lines and records that violate a
// constraint are skipped. Unknown keys are ignored.
func loadAllJSONL(db *sql.DB, dataDir string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin load transaction: %w", err)
	}
	defer tx.Rollback()

	for _, spec := range tableSpecs {
		records, err := readJSONL(filepath.Join(dataDir, spec.file))
		if err != nil {
			return err
		}
		if len(records) == 0 {
			continue
		}
		if err := insertRecords(tx, spec, records); err != nil {
			return fmt.Errorf("load %s: %w", spec.file, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit load transaction: %w", err)
	}
	return nil
}

// insertRecords inserts parsed JSONL records into spec.table. Missing keys
// become NULL, so a record without a required column is skipped.
func insertRecords(tx *sql.Tx, spec tableSpec, records []json.RawMessage) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(spec.columns)), ", ")
	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		spec.table, strings.Join(spec.columns, ", "), placeholders))
	if err != nil {
		return fmt.Errorf("prepare insert for %s: %w", spec.table, err)
	}
	defer stmt.Close()

	for _, rec := range records {
		var obj map[string]any
		if err := json.Unmarshal(rec, &obj); err != nil {
			continue
		}
		args := make([]any, len(spec.columns))
		for i, col := range spec.columns {
			args[i] = columnValue(obj[col])
		}
		if _, err := stmt.Exec(args...); err != nil {
			continue
		}
	}
	return nil
}

// columnValue converts a decoded JSON value into a SQLite argument. Booleans
// become 0 or 1 and whole numbers become integers.
func columnValue(v any) any {
	switch val := v.(type) {
	case bool:
		if val {
			return int64(1)
		}
		return int64(0)
	case float64:
		if val == float64(int64(val)) {
			return int64(val)
		}
		return val
	case map[string]any, []any:
		data, err := json.Marshal(val)
		if err != nil {
			return nil
		}
		return string(data)
	default:
		return val
	}
}
