package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Pranay-Dommati/FInAi-sub001/internal/common"
	"github.com/Pranay-Dommati/FInAi-sub001/internal/model"
)

const connectionColumns = `id, provider, access_token, institution_id, institution_name, created_at, last_synced_at`

// SaveConnection inserts a connection or replaces the token and institution of an existing one.
func (s *SQLiteStorage) SaveConnection(ctx context.Context, conn *model.Connection) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateConnection(conn); err != nil {
		return err
	}
	if conn.CreatedAt.IsZero() {
		conn.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO connections (id, provider, access_token, institution_id, institution_name, created_at, last_synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			provider = excluded.provider,
			access_token = excluded.access_token,
			institution_id = excluded.institution_id,
			institution_name = excluded.institution_name
	`, conn.ID, string(conn.Provider), conn.AccessToken,
		nullString(conn.InstitutionID), nullString(conn.InstitutionName),
		conn.CreatedAt, nullTime(conn.LastSyncedAt))
	if err != nil {
		return fmt.Errorf("failed to save connection: %w", err)
	}

	s.evictConnection(conn.ID)
	return nil
}

// GetConnection returns the connection with the given ID or common.ErrNotFound.
func (s *SQLiteStorage) GetConnection(ctx context.Context, id string) (*model.Connection, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	if conn := s.cachedConnection(id); conn != nil {
		return conn, nil
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+connectionColumns+` FROM connections WHERE id = ?`, id)
	conn, err := scanConnection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("connection %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}

	s.cacheConnection(conn)
	return conn, nil
}

// ListConnections returns every connection, oldest first.
func (s *SQLiteStorage) ListConnections(ctx context.Context) ([]model.Connection, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+connectionColumns+` FROM connections ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Connection
	for rows.Next() {
		conn, scanErr := scanConnection(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan connection: %w", scanErr)
		}
		out = append(out, *conn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate connections: %w", err)
	}
	return out, nil
}

// DeleteConnection removes a connection. Deleting an unknown ID returns common.ErrNotFound.
func (s *SQLiteStorage) DeleteConnection(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM connections WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete connection: %w", err)
	}
	s.evictConnection(id)

	return requireAffected(res, id)
}

// MarkSynced records the time of the latest successful balance fetch.
func (s *SQLiteStorage) MarkSynced(ctx context.Context, id string, at time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `UPDATE connections SET last_synced_at = ? WHERE id = ?`, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to mark connection synced: %w", err)
	}
	s.evictConnection(id)

	return requireAffected(res, id)
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("connection %s: %w", id, common.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConnection(row rowScanner) (*model.Connection, error) {
	var (
		conn            model.Connection
		provider        string
		institutionID   sql.NullString
		institutionName sql.NullString
		lastSynced      sql.NullTime
	)
	if err := row.Scan(&conn.ID, &provider, &conn.AccessToken, &institutionID, &institutionName,
		&conn.CreatedAt, &lastSynced); err != nil {
		return nil, err
	}
	conn.Provider = model.ProviderKind(provider)
	conn.InstitutionID = institutionID.String
	conn.InstitutionName = institutionName.String
	if lastSynced.Valid {
		t := lastSynced.Time
		conn.LastSyncedAt = &t
	}
	return &conn, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
