// 文件路径: internal/repository/sqlite/review.go
package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/brinaregal/brina/internal/repository"
)

type reviewRepo struct {
	db *sql.DB
}

func (r *reviewRepo) Create(ctx context.Context, review *repository.Review) (*repository.Review, error) {
	if review == nil {
		return nil, errors.New("review is nil")
	}
	const stmt = `INSERT INTO reviews(user_id, author_name, rating, comment, status, created_at, updated_at)
                  VALUES(?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, stmt,
		optionalInt64(review.UserID),
		review.AuthorName,
		review.Rating,
		review.Comment,
		review.Status,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if id, err := res.LastInsertId(); err == nil {
		review.ID = id
	}
	return review, nil
}

func (r *reviewRepo) FindByID(ctx context.Context, id int64) (*repository.Review, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = ? LIMIT 1`, id)
	return scanReview(row)
}

func (r *reviewRepo) List(ctx context.Context, filter repository.ReviewFilter) ([]*repository.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews`
	var args []any
	if filter.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, filter.Status)
	}
	limit := 50
	if filter.Limit > 0 {
		limit = filter.Limit
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, max(filter.Offset, 0))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*repository.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

func (r *reviewRepo) Count(ctx context.Context, filter repository.ReviewFilter) (int64, error) {
	query := `SELECT COUNT(*) FROM reviews`
	var args []any
	if filter.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, filter.Status)
	}
	var count int64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

func (r *reviewRepo) UpdateStatus(ctx context.Context, id int64, status string, updatedAt int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE reviews SET status = ?, updated_at = ? WHERE id = ?`, status, updatedAt, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *reviewRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *reviewRepo) Summary(ctx context.Context, status string) (repository.RatingSummary, error) {
	var (
		summary repository.RatingSummary
		avg     sql.NullFloat64
	)
	query := `SELECT COUNT(*), AVG(rating) FROM reviews`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&summary.Count, &avg)
	if err != nil {
		return repository.RatingSummary{}, err
	}
	summary.Average = avg.Float64
	return summary, nil
}

func scanReview(scanner rowScanner) (*repository.Review, error) {
	var (
		rv     repository.Review
		userID sql.NullInt64
	)
	err := scanner.Scan(&rv.ID, &userID, &rv.AuthorName, &rv.Rating, &rv.Comment, &rv.Status, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	rv.UserID = nullableIntPtr(userID)
	return &rv, nil
}

const reviewColumns = `id, user_id, author_name, rating, comment, status, created_at, updated_at`
