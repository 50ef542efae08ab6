// 文件路径: internal/repository/sqlite/store.go
package sqlite

import (
	"database/sql"

	"github.com/brinaregal/brina/internal/repository"
)

// Store wires SQLite-backed repository implementations.
type Store struct {
	db          *sql.DB
	users       repository.UserRepository
	products    repository.ProductRepository
	orders      repository.OrderRepository
	reviews     repository.ReviewRepository
	mediaAssets repository.MediaAssetRepository
	settings    repository.SettingRepository
	loginLogs   repository.LoginLogRepository
}

var _ repository.Store = (*Store)(nil)

// NewStore constructs a SQLite-backed repository store.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:          db,
		users:       &userRepo{db: db},
		products:    &productRepo{db: db},
		orders:      &orderRepo{db: db},
		reviews:     &reviewRepo{db: db},
		mediaAssets: &mediaAssetRepo{db: db},
		settings:    &settingRepo{db: db},
		loginLogs:   &loginLogRepo{db: db},
	}
}

// DB exposes the underlying handle for health checks and backups.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Users() repository.UserRepository {
	return s.users
}

func (s *Store) Products() repository.ProductRepository {
	return s.products
}

func (s *Store) Orders() repository.OrderRepository {
	return s.orders
}

func (s *Store) Reviews() repository.ReviewRepository {
	return s.reviews
}

func (s *Store) MediaAssets() repository.MediaAssetRepository {
	return s.mediaAssets
}

func (s *Store) Settings() repository.SettingRepository {
	return s.settings
}

func (s *Store) LoginLogs() repository.LoginLogRepository {
	return s.loginLogs
}
