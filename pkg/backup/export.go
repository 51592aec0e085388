package backup

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/vincentyu/portfolio-backend/pkg/audit"
	"github.com/vincentyu/portfolio-backend/pkg/db"
)

// ExportTables are the tables written by ExportToSQL, in order
var ExportTables = []string{"user", "blog", "project", "messages"}

// timeLayout matches how go-sqlite3 stores time.Time values
const timeLayout = "2006-01-02 15:04:05.999999999-07:00"

// ExportToSQL writes the content of ExportTables as SQL statements to
// export-<timestamp>.sql through a separate read-only connection, prunes
// old exports and returns the file path.
func (s *Service) ExportToSQL(ctx context.Context) (string, error) {
	path, err := s.exportToSQL(ctx)
	s.metrics.observeExport(err)

	event := audit.BackupEvent{Kind: "export", Path: path, Trigger: triggerOf(ctx), Success: err == nil}
	if err != nil {
		event.ErrorMessage = err.Error()
		s.log.WithError(err).Error("SQL export failed")
	} else {
		s.log.WithField("path", path).Info("SQL export created")
	}
	audit.Log(event)
	return path, err
}

func (s *Service) exportToSQL(ctx context.Context) (string, error) {
	conn, err := sqlx.Open("sqlite3", db.DSN(s.dbFile, true))
	if err != nil {
		return "", fmt.Errorf("open database read-only: %w", err)
	}
	defer conn.Close()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	now := s.now()
	dst := s.artifactName(exportPrefix, exportSuffix, now)
	if err := writeAtomic(dst, now, func(w io.Writer) error {
		return WriteSQL(ctx, conn, w, now)
	}); err != nil {
		return "", err
	}

	s.prune(exportPrefix, exportSuffix)
	return dst, nil
}

// WriteSQL writes a header followed by, for every non-empty table in
// ExportTables, a DELETE statement and one INSERT per row.
func WriteSQL(ctx context.Context, conn *sqlx.DB, w io.Writer, generated time.Time) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "-- Database Export\n-- Generated: %s\n\n", generated.UTC().Format("2006-01-02T15:04:05.000Z"))

	for _, table := range ExportTables {
		if err := writeTable(ctx, conn, bw, table); err != nil {
			return fmt.Errorf("export table %s: %w", table, err)
		}
	}
	return bw.Flush()
}

func writeTable(ctx context.Context, conn *sqlx.DB, w *bufio.Writer, table string) error {
	rows, err := conn.QueryxContext(ctx, `SELECT * FROM "`+table+`"`)
	if err != nil {
		return err
	}
	defer func() { rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return err
	}
	colList := strings.Join(columns, ", ")

	// The driver parses date columns into time.Time. Select them as text
	// so the stored bytes are exported unchanged.
	if query, ok := rawTimeQuery(rows, table); ok {
		rows.Close()
		if rows, err = conn.QueryxContext(ctx, query); err != nil {
			return err
		}
	}

	first := true
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return err
		}
		if first {
			fmt.Fprintf(w, "\n-- Data for table: %s\n", table)
			fmt.Fprintf(w, "DELETE FROM %s;\n", table)
			first = false
		}

		literals := make([]string, len(values))
		for i, v := range values {
			literals[i] = sqlLiteral(v)
		}
		fmt.Fprintf(w, "INSERT INTO %s (%s) VALUES (%s);\n", table, colList, strings.Join(literals, ", "))
	}
	return rows.Err()
}

// rawTimeQuery returns a SELECT for table that casts its date and time
// columns to TEXT, or false when the table has none.
func rawTimeQuery(rows *sqlx.Rows, table string) (string, bool) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return "", false
	}

	found := false
	exprs := make([]string, len(types))
	for i, ct := range types {
		name := `"` + ct.Name() + `"`
		switch strings.ToUpper(ct.DatabaseTypeName()) {
		case "DATE", "DATETIME", "TIMESTAMP":
			exprs[i] = "CAST(" + name + " AS TEXT) AS " + name
			found = true
		default:
			exprs[i] = name
		}
	}
	if !found {
		return "", false
	}
	return `SELECT ` + strings.Join(exprs, ", ") + ` FROM "` + table + `"`, true
}

// sqlLiteral renders v as a single-quoted SQL literal, or NULL.
func sqlLiteral(v interface{}) string {
	var s string
	switch t := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		s = string(t)
	case string:
		s = t
	case int64:
		s = strconv.FormatInt(t, 10)
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			s = "1"
		} else {
			s = "0"
		}
	case time.Time:
		s = t.Format(timeLayout)
	default:
		s = fmt.Sprint(t)
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
