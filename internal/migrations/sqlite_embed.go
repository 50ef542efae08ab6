// 文件路径: internal/migrations/sqlite_embed.go
// 模块说明: 内嵌迁移文件。
package migrations

import "embed"

// SQLite embeds all SQLite-specific migration files.
//
//go:embed sqlite/*.sql
var SQLite embed.FS