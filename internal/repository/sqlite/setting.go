// 文件路径: internal/repository/sqlite/setting.go
// 模块说明: settings 表保存后台可改的餐厅信息、登录限制以及首次启动生成的 JWT 密钥。
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/brinaregal/brina/internal/repository"
)

type settingRepo struct {
	db *sql.DB
}

const upsertSettingSQL = `INSERT INTO settings(key, value, category, updated_at) VALUES(?, ?, ?, ?)
    ON CONFLICT(key) DO UPDATE SET value = excluded.value, category = excluded.category, updated_at = excluded.updated_at`

func (r *settingRepo) Get(ctx context.Context, key string) (*repository.Setting, error) {
	row := r.db.QueryRowContext(ctx, `SELECT key, value, category, updated_at FROM settings WHERE key = ?`, key)
	s, err := scanSetting(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return s, err
}

func (r *settingRepo) Upsert(ctx context.Context, setting *repository.Setting) error {
	return r.UpsertMany(ctx, []repository.Setting{*setting})
}

// UpsertMany writes every entry or none of them.
func (r *settingRepo) UpsertMany(ctx context.Context, settings []repository.Setting) error {
	if len(settings) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertSettingSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, s := range settings {
		if s.Key == "" {
			return fmt.Errorf("setting key is required")
		}
		if _, err := stmt.ExecContext(ctx, s.Key, s.Value, s.Category, s.UpdatedAt); err != nil {
			return fmt.Errorf("save setting %s: %w", s.Key, err)
		}
	}
	return tx.Commit()
}

// InsertIfAbsent stores setting unless the key exists and returns the stored row,
// so concurrent first boots agree on one value.
func (r *settingRepo) InsertIfAbsent(ctx context.Context, setting *repository.Setting) (*repository.Setting, bool, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO settings(key, value, category, updated_at) VALUES(?, ?, ?, ?) ON CONFLICT(key) DO NOTHING`,
		setting.Key, setting.Value, setting.Category, setting.UpdatedAt)
	if err != nil {
		return nil, false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}
	stored, err := r.Get(ctx, setting.Key)
	if err != nil {
		return nil, false, err
	}
	return stored, n == 1, nil
}

func (r *settingRepo) ListByCategory(ctx context.Context, category string) ([]repository.Setting, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value, category, updated_at FROM settings WHERE category = ? ORDER BY key`, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []repository.Setting
	for rows.Next() {
		s, err := scanSetting(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *s)
	}
	return list, rows.Err()
}

func scanSetting(row rowScanner) (*repository.Setting, error) {
	var s repository.Setting
	if err := row.Scan(&s.Key, &s.Value, &s.Category, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}
