package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/microsoft/go-mssqldb"

	"fleximart/internal/storage"
)

// Client implements storage.Client for Microsoft SQL Server.
//
// Generated keys are captured per row with OUTPUT INSERTED.<id>, which is the
// reliable way to read identity values under concurrent writers (unlike
// @@IDENTITY, which leaks across scopes).
type Client struct {
	db *sql.DB
}

func init() {
	storage.Register("mssql", New)
}

func New(ctx context.Context, cfg storage.Config) (storage.Client, error) {
	db, err := sql.Open("sqlserver", cfg.DSN)
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

// EnsureTables creates destination tables when they do not yet exist. SQL
// Server has no CREATE TABLE IF NOT EXISTS, so existence is checked against
// sys.objects first.
func (c *Client) EnsureTables(ctx context.Context, tables []storage.TableSpec) error {
	for _, t := range tables {
		ddl, err := buildCreateTableSQL(t)
		if err != nil {
			return err
		}
		q := fmt.Sprintf(
			"IF OBJECT_ID(N'%s', N'U') IS NULL BEGIN %s END",
			strings.ReplaceAll(t.Name, "'", "''"), ddl,
		)
		if _, err := c.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table %s: %w", t.Name, err)
		}
	}
	return nil
}

func (c *Client) DeleteAll(ctx context.Context, table string) (int64, error) {
	res, err := c.db.ExecContext(ctx, "DELETE FROM "+mssqlIdent(table))
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (c *Client) InsertReturningIDs(ctx context.Context, table string, columns []string, rows [][]any, idColumn string) ([]int64, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	q := buildInsertReturningSQL(table, columns, idColumn)
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		var id int64
		if err := stmt.QueryRowContext(ctx, row...).Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ids, nil
}

func (c *Client) InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	q := buildInsertSQL(table, columns, 1)
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	var total int64
	for _, row := range rows {
		res, err := stmt.ExecContext(ctx, row...)
		if err != nil {
			return 0, err
		}
		n, _ := res.RowsAffected()
		total += n
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return total, nil
}

func (c *Client) CountRows(ctx context.Context, table string) (int64, error) {
	var n int64
	err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+mssqlIdent(table)).Scan(&n)
	return n, err
}

func mssqlIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}

func placeholderList(n int, offset int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "@p%d", offset+i+1)
	}
	return b.String()
}

func buildInsertSQL(table string, columns []string, rowCount int) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(mssqlIdent(table))
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(mssqlIdent(c))
	}
	b.WriteString(") VALUES ")
	for i := 0; i < rowCount; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		b.WriteString(placeholderList(len(columns), i*len(columns)))
		b.WriteString(")")
	}
	return b.String()
}

func buildInsertReturningSQL(table string, columns []string, idColumn string) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(mssqlIdent(table))
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(mssqlIdent(c))
	}
	b.WriteString(") OUTPUT INSERTED.")
	b.WriteString(mssqlIdent(idColumn))
	b.WriteString(" VALUES (")
	b.WriteString(placeholderList(len(columns), 0))
	b.WriteString(")")
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
			parts = append(parts, fmt.Sprintf("%s INT IDENTITY(1,1) PRIMARY KEY", mssqlIdent(t.PrimaryKey.Name)))
		case "bigserial":
			parts = append(parts, fmt.Sprintf("%s BIGINT IDENTITY(1,1) PRIMARY KEY", mssqlIdent(t.PrimaryKey.Name)))
		default:
			parts = append(parts, fmt.Sprintf("%s %s PRIMARY KEY", mssqlIdent(t.PrimaryKey.Name), t.PrimaryKey.Type))
		}
	}

	for _, col := range t.Columns {
		def := fmt.Sprintf("%s %s", mssqlIdent(col.Name), col.Type)
		if !col.Nullable {
			def += " NOT NULL"
		}
		if col.Default != "" {
			def += " DEFAULT " + col.Default
		}
		if col.References != "" {
			def += " REFERENCES " + col.References
		}
		parts = append(parts, def)
	}

	for _, con := range t.Constraints {
		if con.Kind != "unique" {
			return "", fmt.Errorf("%s unsupported constraint kind: %s", t.Name, con.Kind)
		}
		cols := make([]string, 0, len(con.Columns))
		for _, c := range con.Columns {
			cols = append(cols, mssqlIdent(c))
		}
		parts = append(parts, fmt.Sprintf("UNIQUE (%s)", strings.Join(cols, ", ")))
	}

	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n)", mssqlIdent(t.Name), strings.Join(parts, ",\n  ")), nil
}
