package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sandevgo/tuskmem/internal/core"
)

const edgeColumns = `from_name, to_name, rel_type, weight, created_at`

func scanEdge(row rowScanner) (core.Relationship, error) {
	var (
		rel       core.Relationship
		relType   string
		createdMS int64
	)
	if err := row.Scan(&rel.From, &rel.To, &relType, &rel.Weight, &createdMS); err != nil {
		return core.Relationship{}, err
	}
	rel.RelType = core.RelType(relType)
	rel.CreatedAt = fromMS(createdMS)
	return rel, nil
}

func (s queries) scanEdges(ctx context.Context, query string, args ...any) ([]core.Relationship, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query relationships: %w", err)
	}
	defer rows.Close()

	var edges []core.Relationship
	for rows.Next() {
		rel, err := scanEdge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan relationship: %w", err)
		}
		edges = append(edges, rel)
	}
	return edges, rows.Err()
}

// ListEdges returns every edge with weight >= minWeight, heaviest first.
func (s queries) ListEdges(ctx context.Context, minWeight float64) ([]core.Relationship, error) {
	return s.scanEdges(ctx, `
		SELECT `+edgeColumns+` FROM relationships
		WHERE weight >= ?
		ORDER BY weight DESC, from_name, to_name, rel_type`, minWeight)
}

func (s queries) ListEdgesTouching(ctx context.Context, name string) ([]core.Relationship, error) {
	return s.scanEdges(ctx, `
		SELECT `+edgeColumns+` FROM relationships
		WHERE from_name = ? OR to_name = ?
		ORDER BY weight DESC, from_name, to_name, rel_type`, name, name)
}

func (s queries) GetEdge(ctx context.Context, from, to string, relType core.RelType) (core.Relationship, bool, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT `+edgeColumns+` FROM relationships
		WHERE from_name = ? AND to_name = ? AND rel_type = ?`, from, to, string(relType))
	rel, err := scanEdge(row)
	if err == sql.ErrNoRows {
		return core.Relationship{}, false, nil
	}
	if err != nil {
		return core.Relationship{}, false, fmt.Errorf("failed to get relationship: %w", err)
	}
	return rel, true, nil
}

func (s queries) CountEdges(ctx context.Context) (int, error) {
	var n int
	if err := s.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM relationships`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count relationships: %w", err)
	}
	return n, nil
}

// InsertEdge reports false without error when the (from, to, rel_type) key
// already exists; the stored weight is left untouched.
func (s queries) InsertEdge(ctx context.Context, rel core.Relationship) (bool, error) {
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO relationships (from_name, to_name, rel_type, weight, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (from_name, to_name, rel_type) DO NOTHING`,
		rel.From, rel.To, string(rel.RelType), rel.Weight, toMS(rel.CreatedAt),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert relationship: %w", err)
	}
	return affected(res)
}

func (s queries) SetEdgeWeight(ctx context.Context, from, to string, relType core.RelType, weight float64) error {
	_, err := s.q.ExecContext(ctx, `
		UPDATE relationships SET weight = ?
		WHERE from_name = ? AND to_name = ? AND rel_type = ?`,
		weight, from, to, string(relType))
	if err != nil {
		return fmt.Errorf("failed to update relationship weight: %w", err)
	}
	return nil
}

func (s queries) DeleteEdgesTouching(ctx context.Context, names []string) (int, error) {
	if len(names) == 0 {
		return 0, nil
	}
	args := stringArgs(names)
	ph := placeholders(len(names))
	res, err := s.q.ExecContext(ctx,
		`DELETE FROM relationships WHERE from_name IN (`+ph+`) OR to_name IN (`+ph+`)`,
		append(args, args...)...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete relationships: %w", err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}
