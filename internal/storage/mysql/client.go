package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"fleximart/internal/storage"
)

// Client implements storage.Client for MySQL.
//
// Key design points:
//   - Generated keys are read via LastInsertId after per-row inserts. A
//     multi-row INSERT only reports the first generated id in MySQL, so
//     InsertReturningIDs must insert row by row inside one transaction.
//   - Column-level REFERENCES clauses are parsed but ignored by InnoDB;
//     foreign keys must be emitted as table-level constraints.
type Client struct {
	db *sql.DB
}

func init() {
	storage.Register("mysql", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Client, error) {
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Client{db: db}, nil
}

func (c *Client) Close() { _ = c.db.Close() }

// EnsureTables creates destination tables when they do not yet exist. Specs
// must arrive parent-before-child so FK references resolve.
func (c *Client) EnsureTables(ctx context.Context, tables []storage.TableSpec) error {
	for _, t := range tables {
		ddl, err := buildCreateTableSQL(t)
		if err != nil {
			return err
		}
		if _, err := c.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create table %s: %w", t.Name, err)
		}
	}
	return nil
}

func (c *Client) DeleteAll(ctx context.Context, table string) (int64, error) {
	res, err := c.db.ExecContext(ctx, "DELETE FROM "+sqlIdent(table))
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// InsertReturningIDs inserts every row inside one transaction and captures
// the AUTO_INCREMENT key of each, in input order. Any failure rolls the whole
// step back and returns no ids.
func (c *Client) InsertReturningIDs(ctx context.Context, table string, columns []string, rows [][]any, idColumn string) ([]int64, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	_ = idColumn // MySQL reports the generated key via LastInsertId

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	q := buildInsertSQL(table, columns, 1)
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		res, err := stmt.ExecContext(ctx, row...)
		if err != nil {
			return nil, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ids, nil
}

// InsertRows bulk-inserts rows as a single multi-row statement, which is
// atomic on its own.
func (c *Client) InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	q := buildInsertSQL(table, columns, len(rows))
	args := make([]any, 0, len(rows)*len(columns))
	for _, row := range rows {
		args = append(args, row...)
	}

	res, err := c.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (c *Client) CountRows(ctx context.Context, table string) (int64, error) {
	var n int64
	err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+sqlIdent(table)).Scan(&n)
	return n, err
}

func sqlIdent(id string) string {
	return "`" + strings.ReplaceAll(id, "`", "``") + "`"
}

// buildInsertSQL constructs "INSERT INTO t (cols...) VALUES (?..), ..." for
// rowCount rows. Pure so tests can assert the exact SQL shape.
func buildInsertSQL(table string, columns []string, rowCount int) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(sqlIdent(table))
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(sqlIdent(c))
	}
	b.WriteString(") VALUES ")

	placeholders := "(" + strings.TrimRight(strings.Repeat("?,", len(columns)), ",") + ")"
	for i := 0; i < rowCount; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(placeholders)
	}
	return b.String()
}

func buildCreateTableSQL(t storage.TableSpec) (string, error) {
	if strings.TrimSpace(t.Name) == "" {
		return "", fmt.Errorf("table name is empty")
	}

	var parts []string

	if t.PrimaryKey != nil {
		pkType := strings.TrimSpace(strings.ToLower(t.PrimaryKey.Type))
		switch pkType {
		case "serial", "identity":
			parts = append(parts, fmt.Sprintf("%s INT PRIMARY KEY AUTO_INCREMENT", sqlIdent(t.PrimaryKey.Name)))
		case "bigserial":
			parts = append(parts, fmt.Sprintf("%s BIGINT PRIMARY KEY AUTO_INCREMENT", sqlIdent(t.PrimaryKey.Name)))
		default:
			parts = append(parts, fmt.Sprintf("%s %s PRIMARY KEY", sqlIdent(t.PrimaryKey.Name), t.PrimaryKey.Type))
		}
	}

	var fks []string
	for _, col := range t.Columns {
		def := fmt.Sprintf("%s %s", sqlIdent(col.Name), col.Type)
		if !col.Nullable {
			def += " NOT NULL"
		}
		if col.Default != "" {
			def += " DEFAULT " + col.Default
		}
		parts = append(parts, def)

		if col.References != "" {
			refTable, refCol, err := splitReference(col.References)
			if err != nil {
				return "", fmt.Errorf("%s.%s: %w", t.Name, col.Name, err)
			}
			fks = append(fks, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s(%s)",
				sqlIdent(col.Name), sqlIdent(refTable), sqlIdent(refCol)))
		}
	}

	for _, con := range t.Constraints {
		if con.Kind != "unique" {
			return "", fmt.Errorf("%s unsupported constraint kind: %s", t.Name, con.Kind)
		}
		cols := make([]string, 0, len(con.Columns))
		for _, c := range con.Columns {
			cols = append(cols, sqlIdent(c))
		}
		parts = append(parts, fmt.Sprintf("UNIQUE (%s)", strings.Join(cols, ", ")))
	}

	parts = append(parts, fks...)

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)", sqlIdent(t.Name), strings.Join(parts, ",\n  ")), nil
}

// splitReference parses "table(column)" reference targets.
func splitReference(ref string) (table, column string, err error) {
	open := strings.IndexByte(ref, '(')
	if open <= 0 || !strings.HasSuffix(ref, ")") {
		return "", "", fmt.Errorf("malformed reference %q (want \"table(column)\")", ref)
	}
	return ref[:open], ref[open+1 : len(ref)-1], nil
}
