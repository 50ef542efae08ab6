// 文件路径: internal/repository/sqlite/media_asset.go
package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/brinaregal/brina/internal/repository"
)

type mediaAssetRepo struct {
	db *sql.DB
}

func (r *mediaAssetRepo) Create(ctx context.Context, asset *repository.MediaAsset) (*repository.MediaAsset, error) {
	if asset == nil {
		return nil, errors.New("media asset is nil")
	}
	const stmt = `INSERT INTO media_assets(public_id, url, folder, content_type, size, driver, created_at)
                  VALUES(?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, stmt, asset.PublicID, asset.URL, asset.Folder, asset.ContentType, asset.Size, asset.Driver, asset.CreatedAt)
	if err != nil {
		return nil, err
	}
	if id, err := res.LastInsertId(); err == nil {
		asset.ID = id
	}
	return asset, nil
}

func (r *mediaAssetRepo) FindByPublicID(ctx context.Context, publicID string) (*repository.MediaAsset, error) {
	const query = `SELECT id, public_id, url, folder, content_type, size, driver, created_at
                   FROM media_assets WHERE public_id = ? ORDER BY id DESC LIMIT 1`
	var a repository.MediaAsset
	err := r.db.QueryRowContext(ctx, query, publicID).Scan(&a.ID, &a.PublicID, &a.URL, &a.Folder, &a.ContentType, &a.Size, &a.Driver, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *mediaAssetRepo) DeleteByPublicID(ctx context.Context, publicID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM media_assets WHERE public_id = ?`, publicID)
	return err
}
