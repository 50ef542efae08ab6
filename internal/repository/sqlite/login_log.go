// 文件路径: internal/repository/sqlite/login_log.go
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/brinaregal/brina/internal/repository"
)

// loginLogRepo persists login attempts into SQLite for auditing.
type loginLogRepo struct {
	db *sql.DB
}

func (r *loginLogRepo) Create(ctx context.Context, entry *repository.LoginLog) error {
	if entry == nil {
		return fmt.Errorf("login log entry is required / 登录日志条目不能为空")
	}
	if strings.TrimSpace(entry.Email) == "" {
		return fmt.Errorf("login log email is required / 登录日志邮箱不能为空")
	}
	const stmt = `INSERT INTO login_logs(user_id, email, ip, user_agent, success, reason, created_at, updated_at)
                  VALUES(?, ?, ?, ?, ?, ?, ?, ?)`
	created := entry.CreatedAt
	if created == 0 {
		created = time.Now().Unix()
	}
	updated := max(entry.UpdatedAt, created)
	var userID any
	if entry.UserID != nil && *entry.UserID > 0 {
		userID = *entry.UserID
	}
	res, err := r.db.ExecContext(ctx, stmt,
		userID,
		strings.ToLower(strings.TrimSpace(entry.Email)),
		nullableString(entry.IP),
		nullableString(entry.UserAgent),
		boolToInt(entry.Success),
		nullableString(entry.Reason),
		created,
		updated,
	)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		entry.ID = id
	}
	return nil
}

func (r *loginLogRepo) ListByEmail(ctx context.Context, email string, limit int) ([]*repository.LoginLog, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `SELECT id, user_id, email, ip, user_agent, success, reason, created_at, updated_at
                   FROM login_logs WHERE email = ? ORDER BY id DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, strings.ToLower(strings.TrimSpace(email)), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []*repository.LoginLog
	for rows.Next() {
		var (
			entry     repository.LoginLog
			userID    sql.NullInt64
			ip        sql.NullString
			userAgent sql.NullString
			success   int64
			reason    sql.NullString
		)
		if err := rows.Scan(&entry.ID, &userID, &entry.Email, &ip, &userAgent, &success, &reason, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
			return nil, err
		}
		entry.UserID = nullableIntPtr(userID)
		entry.IP = ip.String
		entry.UserAgent = userAgent.String
		entry.Success = success == 1
		entry.Reason = reason.String
		logs = append(logs, &entry)
	}
	return logs, rows.Err()
}

func (r *loginLogRepo) DeleteBefore(ctx context.Context, before int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM login_logs WHERE created_at < ?`, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
