package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/tuskmem/internal/core"
	sqlitedrv "github.com/sandevgo/tuskmem/pkg/sqlite"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// MemoryRepo is the SQLite-backed core.MemoryRepository.
type MemoryRepo struct {
	queries
	db   *sql.DB
	path string
}

func NewMemoryRepo(db *sql.DB, path string) *MemoryRepo {
	return &MemoryRepo{queries: queries{q: db}, db: db, path: path}
}

func (r *MemoryRepo) Path() string {
	return r.path
}

// InTx runs fn in a single transaction. The DSN sets _txlock=immediate, so
// BeginTx takes the database write lock up front.
func (r *MemoryRepo) InTx(ctx context.Context, fn func(w core.MemoryWriter) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(queries{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// queries implements every statement against a queryer so the same code
// serves plain reads and transactional writes.
type queries struct {
	q queryer
}

const memoryColumns = `id, name, kind, trigger_text, resolution, embedding, helped, failed, source, cost, created_at, last_used`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMemory(row rowScanner) (core.Memory, error) {
	var (
		m         core.Memory
		kind      string
		blob      []byte
		createdMS int64
		lastUsed  sql.NullInt64
	)
	if err := row.Scan(&m.ID, &m.Name, &kind, &m.Trigger, &m.Resolution, &blob,
		&m.Helped, &m.Failed, &m.Source, &m.Cost, &createdMS, &lastUsed); err != nil {
		return core.Memory{}, err
	}

	vec, err := deserializeVector(blob)
	if err != nil {
		return core.Memory{}, fmt.Errorf("memory %q: %w", m.Name, err)
	}

	m.Kind = core.Kind(kind)
	m.Embedding = vec
	m.CreatedAt = fromMS(createdMS)
	if lastUsed.Valid {
		t := fromMS(lastUsed.Int64)
		m.LastUsed = &t
	}
	return m, nil
}

func (s queries) GetMemory(ctx context.Context, name string) (core.Memory, bool, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+memoryColumns+` FROM memories WHERE name = ?`, name)
	m, err := scanMemory(row)
	if err == sql.ErrNoRows {
		return core.Memory{}, false, nil
	}
	if err != nil {
		return core.Memory{}, false, fmt.Errorf("failed to get memory: %w", err)
	}
	return m, true, nil
}

func (s queries) ListMemories(ctx context.Context, filter core.MemoryFilter) ([]core.Memory, error) {
	var (
		where []string
		args  []any
	)
	if filter.Kind != nil {
		where = append(where, "kind = ?")
		args = append(args, string(*filter.Kind))
	}
	if filter.WithEmbedding {
		where = append(where, "embedding IS NOT NULL")
	}

	query := `SELECT ` + memoryColumns + ` FROM memories`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id ASC"

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query memories: %w", err)
	}
	defer rows.Close()

	var memories []core.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan memory: %w", err)
		}
		memories = append(memories, m)
	}
	return memories, rows.Err()
}

func (s queries) CountMemories(ctx context.Context) (int, error) {
	var n int
	if err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM memories`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count memories: %w", err)
	}
	return n, nil
}

func (s queries) KindStats(ctx context.Context) ([]core.KindStats, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT
			kind,
			COUNT(*),
			COALESCE(SUM(helped), 0),
			COALESCE(SUM(failed), 0),
			COALESCE(SUM(CASE WHEN embedding IS NOT NULL THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN helped + failed > 0 THEN 1 ELSE 0 END), 0)
		FROM memories
		GROUP BY kind
		ORDER BY kind`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate memories: %w", err)
	}
	defer rows.Close()

	var stats []core.KindStats
	for rows.Next() {
		var (
			st   core.KindStats
			kind string
		)
		if err := rows.Scan(&kind, &st.Count, &st.Helped, &st.Failed, &st.WithEmbedding, &st.WithFeedback); err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		st.Kind = core.Kind(kind)
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

func (s queries) InsertMemory(ctx context.Context, m *core.Memory) error {
	var blob any
	if m.HasEmbedding() {
		b, err := serializeVector(m.Embedding)
		if err != nil {
			return err
		}
		blob = b
	}

	var lastUsed any
	if m.LastUsed != nil {
		lastUsed = toMS(*m.LastUsed)
	}

	res, err := s.q.ExecContext(ctx, `
		INSERT INTO memories (name, kind, trigger_text, resolution, embedding, helped, failed, source, cost, created_at, last_used)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Name, string(m.Kind), m.Trigger, m.Resolution, blob,
		m.Helped, m.Failed, m.Source, m.Cost, toMS(m.CreatedAt), lastUsed,
	)
	if err != nil {
		if sqlitedrv.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %q: %w", core.ErrNameTaken, m.Name, err)
		}
		return fmt.Errorf("failed to insert memory: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = id
	return nil
}

func (s queries) MarkHelped(ctx context.Context, name string, at time.Time) (bool, error) {
	res, err := s.q.ExecContext(ctx,
		`UPDATE memories SET helped = helped + 1, last_used = ? WHERE name = ?`, toMS(at), name)
	if err != nil {
		return false, fmt.Errorf("failed to record helped: %w", err)
	}
	return affected(res)
}

func (s queries) MarkFailed(ctx context.Context, name string) (bool, error) {
	res, err := s.q.ExecContext(ctx,
		`UPDATE memories SET failed = failed + 1 WHERE name = ?`, name)
	if err != nil {
		return false, fmt.Errorf("failed to record failure: %w", err)
	}
	return affected(res)
}

// AddCounters folds another memory's history into name. last_used only moves
// forward and cost keeps the larger value.
func (s queries) AddCounters(ctx context.Context, name string, helped, failed int, lastUsed *time.Time, cost float64) error {
	var lu any
	if lastUsed != nil {
		lu = toMS(*lastUsed)
	}
	_, err := s.q.ExecContext(ctx, `
		UPDATE memories SET
			helped = helped + ?,
			failed = failed + ?,
			last_used = CASE
				WHEN ? IS NULL THEN last_used
				WHEN last_used IS NULL OR last_used < ? THEN ?
				ELSE last_used
			END,
			cost = MAX(cost, ?)
		WHERE name = ?`,
		helped, failed, lu, lu, lu, cost, name,
	)
	if err != nil {
		return fmt.Errorf("failed to merge counters: %w", err)
	}
	return nil
}

func (s queries) DeleteMemories(ctx context.Context, names []string) (int, error) {
	if len(names) == 0 {
		return 0, nil
	}
	res, err := s.q.ExecContext(ctx,
		`DELETE FROM memories WHERE name IN (`+placeholders(len(names))+`)`, stringArgs(names)...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete memories: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

func toMS(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMS(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
