// 文件路径: internal/migrations/runner.go
// 模块说明: 使用 goose 执行内嵌的 SQLite 迁移。
package migrations

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

const dir = "sqlite"

// goose keeps dialect and base FS in package globals
var gooseMu sync.Mutex

func run(fn func() error) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	goose.SetBaseFS(SQLite)
	return fn()
}

// Up migrates the SQLite schema to the latest version.
func Up(db *sql.DB) error {
	return run(func() error { return goose.Up(db, dir) })
}

// Down rolls back a single migration.
func Down(db *sql.DB) error {
	return run(func() error { return goose.Down(db, dir) })
}

// Status prints migration status.
func Status(db *sql.DB) error {
	return run(func() error { return goose.Status(db, dir) })
}

// Version reports the current schema version.
func Version(db *sql.DB) (int64, error) {
	var version int64
	err := run(func() error {
		v, err := goose.GetDBVersion(db)
		version = v
		return err
	})
	return version, err
}
