// 文件路径: internal/repository/errors.go
package repository

import "errors"

var (
	// ErrNotFound 表示查询未返回数据。
	ErrNotFound = errors.New("not found / 未找到数据")
	// ErrConflict 表示唯一约束冲突。
	ErrConflict = errors.New("conflict / 数据冲突")
	// ErrAdminExists 表示已存在管理员，首个管理员不能再创建。
	ErrAdminExists = errors.New("admin already exists / 管理员已存在")
)
