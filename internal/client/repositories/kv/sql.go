package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/medigenie/internal/common"
	"github.com/dmitrijs2005/medigenie/internal/dbx"
)

const (
	getQuery = `SELECT value FROM kv_state WHERE key = ?`
	setQuery = `
		INSERT INTO kv_state (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	deleteQuery = `DELETE FROM kv_state WHERE key = ?`
	listQuery   = `SELECT key, value FROM kv_state`
	clearQuery  = `DELETE FROM kv_state`
)

// SQLRepository keeps values in the kv_state table. The same statements
// serve SQLite and PostgreSQL; only the placeholders differ.
type SQLRepository struct {
	db      dbx.DBTX
	dialect dbx.Dialect
	get     string
	set     string
	del     string
}

func newSQLRepository(db dbx.DBTX, dialect dbx.Dialect) *SQLRepository {
	return &SQLRepository{
		db:      db,
		dialect: dialect,
		get:     dialect.Rebind(getQuery),
		set:     dialect.Rebind(setQuery),
		del:     dialect.Rebind(deleteQuery),
	}
}

func NewSQLiteRepository(db dbx.DBTX) *SQLRepository {
	return newSQLRepository(db, dbx.SQLite)
}

func NewPostgresRepository(db dbx.DBTX) *SQLRepository {
	return newSQLRepository(db, dbx.Postgres)
}

func (r *SQLRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, r.get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("state[%s]: %w", key, common.ErrorNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get state[%s]: %w", key, err)
	}
	return value, nil
}

func (r *SQLRepository) Set(ctx context.Context, key string, value []byte) error {
	if _, err := r.db.ExecContext(ctx, r.set, key, value); err != nil {
		return fmt.Errorf("failed to set state[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, r.del, key); err != nil {
		return fmt.Errorf("failed to delete state[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, clearQuery); err != nil {
		return fmt.Errorf("failed to clear state: %w", err)
	}
	return nil
}

func (r *SQLRepository) List(ctx context.Context) (map[string][]byte, error) {
	rows, err := r.db.QueryContext(ctx, listQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list state: %w", err)
	}
	defer rows.Close()

	result := make(map[string][]byte)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan state row: %w", err)
		}
		result[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate state rows: %w", err)
	}

	return result, nil
}
