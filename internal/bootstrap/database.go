// 文件路径: internal/bootstrap/database.go
// 模块说明: 打开 SQLite 连接并设置 WAL 与外键等 PRAGMA，另提供在线备份。
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// OpenSQLite ensures the parent directory exists, then opens a SQLite connection with sane pragmas.
func OpenSQLite(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("SQLite 路径不能为空 / SQLite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(30000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return db, nil
}

// BackupSQLite writes a consistent copy of db to target using VACUUM INTO.
// target must not exist yet.
func BackupSQLite(ctx context.Context, db *sql.DB, target string) error {
	if db == nil {
		return fmt.Errorf("backup: db is required")
	}
	target = strings.TrimSpace(target)
	if target == "" {
		return fmt.Errorf("backup: target path is required")
	}
	if _, err := os.Stat(target); err == nil {
		return fmt.Errorf("backup: %s already exists", target)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("backup: create dir: %w", err)
	}
	if _, err := db.ExecContext(ctx, "VACUUM INTO ?", target); err != nil {
		return fmt.Errorf("sqlite vacuum into: %w", err)
	}
	return nil
}
