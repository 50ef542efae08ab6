// 文件路径: internal/repository/sqlite/user.go
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brinaregal/brina/internal/repository"
)

// userRepo 负责 users 表的 SQLite 实现。
type userRepo struct {
	db *sql.DB
}

func (r *userRepo) FindByID(ctx context.Context, id int64) (*repository.User, error) {
	row := r.db.QueryRowContext(ctx, userSelectBy("id"), id)
	return scanUser(row)
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*repository.User, error) {
	row := r.db.QueryRowContext(ctx, userSelectBy("email"), strings.ToLower(strings.TrimSpace(email)))
	return scanUser(row)
}

func (r *userRepo) Create(ctx context.Context, user *repository.User) (*repository.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	const stmt = `INSERT INTO users(name, email, phone, address, password, is_admin, status, last_login_at, created_at, updated_at)
                  VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().Unix()
	if user.CreatedAt == 0 {
		user.CreatedAt = now
	}
	if user.UpdatedAt == 0 {
		user.UpdatedAt = user.CreatedAt
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	res, err := r.db.ExecContext(ctx, stmt,
		user.Name,
		user.Email,
		user.Phone,
		user.Address,
		user.Password,
		boolToInt(user.IsAdmin),
		user.Status,
		nullableUnix(user.LastLoginAt),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("user %s: %w", user.Email, repository.ErrConflict)
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	user.ID = id
	return user, nil
}

// CreateFirstAdmin 在同一条语句里检查并插入，并发安装时只有一个请求能成功。
func (r *userRepo) CreateFirstAdmin(ctx context.Context, user *repository.User) (*repository.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	const stmt = `INSERT INTO users(name, email, phone, address, password, is_admin, status, last_login_at, created_at, updated_at)
                  SELECT ?, ?, ?, ?, ?, 1, ?, ?, ?, ?
                  WHERE NOT EXISTS (SELECT 1 FROM users WHERE is_admin = 1)`
	now := time.Now().Unix()
	if user.CreatedAt == 0 {
		user.CreatedAt = now
	}
	if user.UpdatedAt == 0 {
		user.UpdatedAt = user.CreatedAt
	}
	user.IsAdmin = true
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	res, err := r.db.ExecContext(ctx, stmt,
		user.Name,
		user.Email,
		user.Phone,
		user.Address,
		user.Password,
		user.Status,
		nullableUnix(user.LastLoginAt),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("user %s: %w", user.Email, repository.ErrConflict)
		}
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, repository.ErrAdminExists
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	user.ID = id
	return user, nil
}

func (r *userRepo) Save(ctx context.Context, user *repository.User) error {
	if user == nil || user.ID <= 0 {
		return errors.New("user id is required")
	}
	const stmt = `UPDATE users
                  SET name = ?, email = ?, phone = ?, address = ?, password = ?, is_admin = ?, status = ?, updated_at = ?
                  WHERE id = ?`
	user.UpdatedAt = time.Now().Unix()
	res, err := r.db.ExecContext(ctx, stmt,
		user.Name,
		strings.ToLower(strings.TrimSpace(user.Email)),
		user.Phone,
		user.Address,
		user.Password,
		boolToInt(user.IsAdmin),
		user.Status,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return err
	}
	return requireAffected(res)
}

func (r *userRepo) TouchLogin(ctx context.Context, id int64, at int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = ? WHERE id = ?`, at, id)
	return err
}

func (r *userRepo) HasAdmin(ctx context.Context) (bool, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE is_admin = 1)`).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists == 1, nil
}

func (r *userRepo) Search(ctx context.Context, filter repository.UserSearchFilter) ([]*repository.User, error) {
	where, args := userFilterClause(filter)
	limit := 20
	if filter.Limit > 0 || filter.Limit == repository.NoLimit {
		limit = filter.Limit
	}
	query := `SELECT ` + userColumns + ` FROM users` + where + ` ORDER BY id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, max(filter.Offset, 0))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*repository.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *userRepo) CountFiltered(ctx context.Context, filter repository.UserSearchFilter) (int64, error) {
	where, args := userFilterClause(filter)
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+where, args...).Scan(&count)
	return count, err
}

func userFilterClause(filter repository.UserSearchFilter) (string, []any) {
	var conds []string
	var args []any
	if kw := strings.TrimSpace(filter.Keyword); kw != "" {
		like := containsPattern(kw)
		conds = append(conds, `(email LIKE ? ESCAPE '\' OR name LIKE ? ESCAPE '\' OR phone LIKE ? ESCAPE '\')`)
		args = append(args, like, like, like)
	}
	if filter.IsAdmin != nil {
		conds = append(conds, "is_admin = ?")
		args = append(args, boolToInt(*filter.IsAdmin))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanUser(scanner rowScanner) (*repository.User, error) {
	var (
		u         repository.User
		isAdmin   int64
		lastLogin sql.NullInt64
	)
	err := scanner.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Address, &u.Password, &isAdmin, &u.Status, &lastLogin, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	u.IsAdmin = isAdmin == 1
	u.LastLoginAt = lastLogin.Int64
	return &u, nil
}

func userSelectBy(column string) string {
	return `SELECT ` + userColumns + ` FROM users WHERE ` + column + ` = ? LIMIT 1`
}

const userColumns = `id, name, email, phone, address, password, is_admin, status, last_login_at, created_at, updated_at`
