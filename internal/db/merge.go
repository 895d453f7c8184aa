package db

import (
	"context"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// Merge folds a batch of keyed rows into a table. Rows are copied into a
// transaction-scoped staging table and inserted with ON CONFLICT on Key;
// Guard decides whether an existing row is replaced.
type Merge struct {
	Table   string   // target table, optionally schema-qualified
	Key     string   // unique key column
	Columns []string // staged columns in row order, Key included
	// Guard is an optional WHERE on the conflict update. It may name the
	// target table and EXCLUDED.
	Guard string
	// Prefer orders duplicate keys within one batch; the first row wins.
	// Without it the winner is arbitrary.
	Prefer string
}

// MergeResult counts what a merge did with its rows.
type MergeResult struct {
	Staged  int64
	Written int64
}

// Kept is the number of staged rows that lost to an existing row or to a
// preferred duplicate.
func (r MergeResult) Kept() int64 { return r.Staged - r.Written }

func (m Merge) validate(rows [][]any) error {
	if m.Table == "" || m.Key == "" {
		return eris.New("db: merge: table and key are required")
	}
	if !slices.Contains(m.Columns, m.Key) {
		return eris.Errorf("db: merge: key %q is not a staged column", m.Key)
	}
	for i, r := range rows {
		if len(r) != len(m.Columns) {
			return eris.Errorf("db: merge: row %d has %d values, want %d", i, len(r), len(m.Columns))
		}
	}
	return nil
}

func (m Merge) staging() string {
	return "_merge_" + strings.ReplaceAll(m.Table, ".", "_")
}

// Statement returns the INSERT that moves staged rows into the table.
func (m Merge) Statement() string {
	cols := identList(m.Columns)
	key := pgx.Identifier{m.Key}.Sanitize()

	var set []string
	for _, c := range m.Columns {
		if c == m.Key {
			continue
		}
		id := pgx.Identifier{c}.Sanitize()
		set = append(set, id+" = EXCLUDED."+id)
	}

	var b strings.Builder
	b.WriteString("INSERT INTO " + tableIdent(m.Table) + " (" + cols + ")")
	b.WriteString(" SELECT DISTINCT ON (" + key + ") " + cols)
	b.WriteString(" FROM " + pgx.Identifier{m.staging()}.Sanitize())
	b.WriteString(" ORDER BY " + key)
	if m.Prefer != "" {
		b.WriteString(", " + m.Prefer)
	}
	b.WriteString(" ON CONFLICT (" + key + ") DO UPDATE SET " + strings.Join(set, ", "))
	if m.Guard != "" {
		b.WriteString(" WHERE " + m.Guard)
	}
	return b.String()
}

// Run merges rows in one transaction.
func (m Merge) Run(ctx context.Context, pool Pool, rows [][]any) (MergeResult, error) {
	if len(rows) == 0 {
		return MergeResult{}, nil
	}
	if err := m.validate(rows); err != nil {
		return MergeResult{}, err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return MergeResult{}, eris.Wrap(err, "db: merge: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	stage := pgx.Identifier{m.staging()}
	create := "CREATE TEMP TABLE " + stage.Sanitize() + " (LIKE " + tableIdent(m.Table) + " INCLUDING DEFAULTS) ON COMMIT DROP"
	if _, err := tx.Exec(ctx, create); err != nil {
		return MergeResult{}, eris.Wrapf(err, "db: merge: stage %s", m.Table)
	}

	staged, err := tx.CopyFrom(ctx, stage, m.Columns, pgx.CopyFromRows(rows))
	if err != nil {
		return MergeResult{}, eris.Wrapf(err, "db: merge: copy into stage for %s", m.Table)
	}

	tag, err := tx.Exec(ctx, m.Statement())
	if err != nil {
		return MergeResult{}, eris.Wrapf(err, "db: merge: insert into %s", m.Table)
	}
	if err := tx.Commit(ctx); err != nil {
		return MergeResult{}, eris.Wrap(err, "db: merge: commit")
	}
	return MergeResult{Staged: staged, Written: tag.RowsAffected()}, nil
}

func tableIdent(table string) string {
	schema, name, ok := strings.Cut(table, ".")
	if ok {
		return pgx.Identifier{schema, name}.Sanitize()
	}
	return pgx.Identifier{table}.Sanitize()
}

func identList(cols []string) string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(out, ", ")
}
