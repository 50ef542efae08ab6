// 文件路径: internal/repository/sqlite/order.go
// 模块说明: orders 表同时保存外卖订单与餐桌预订。
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/brinaregal/brina/internal/repository"
)

type orderRepo struct {
	db *sql.DB
}

func (r *orderRepo) Create(ctx context.Context, order *repository.Order) (*repository.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	items, err := encodeOrderItems(order.Items)
	if err != nil {
		return nil, fmt.Errorf("encode order items: %w", err)
	}
	const stmt = `INSERT INTO orders(reference, kind, user_id, customer_name, phone, items, total, place, payment_proof_url,
                      status, status_reason, party_size, reservation_date, reservation_time, instructions, created_at, updated_at)
                  VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var partySize any
	if order.PartySize > 0 {
		partySize = order.PartySize
	}
	res, err := r.db.ExecContext(ctx, stmt,
		order.Reference,
		order.Kind,
		optionalInt64(order.UserID),
		order.CustomerName,
		order.Phone,
		items,
		order.Total,
		nullableString(order.Place),
		nullableString(order.PaymentProofURL),
		order.Status,
		nullableString(order.StatusReason),
		partySize,
		nullableString(order.ReservationDate),
		nullableString(order.ReservationTime),
		nullableString(order.Instructions),
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("order %s: %w", order.Reference, repository.ErrConflict)
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	order.ID = id
	return order, nil
}

func (r *orderRepo) FindByID(ctx context.Context, id int64) (*repository.Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ? LIMIT 1`, id)
	return scanOrder(row)
}

func (r *orderRepo) FindByReference(ctx context.Context, reference string) (*repository.Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE reference = ? LIMIT 1`, strings.ToUpper(strings.TrimSpace(reference)))
	return scanOrder(row)
}

func (r *orderRepo) List(ctx context.Context, filter repository.OrderFilter) ([]*repository.Order, error) {
	where, args := orderFilterClause(filter)
	limit := 50
	if filter.Limit > 0 {
		limit = filter.Limit
	}
	query := `SELECT ` + orderColumns + ` FROM orders` + where + ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, max(filter.Offset, 0))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *orderRepo) Count(ctx context.Context, filter repository.OrderFilter) (int64, error) {
	where, args := orderFilterClause(filter)
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&count)
	return count, err
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id int64, from, to, reason string, updatedAt int64) (bool, error) {
	const stmt = `UPDATE orders SET status = ?, status_reason = ?, updated_at = ? WHERE id = ? AND status = ?`
	res, err := r.db.ExecContext(ctx, stmt, to, nullableString(reason), updatedAt, id, from)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *orderRepo) ListUnalerted(ctx context.Context, status string, createdBefore int64, limit int) ([]*repository.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + orderColumns + ` FROM orders
              WHERE status = ? AND created_at < ? AND alerted_at IS NULL
              ORDER BY created_at ASC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, status, createdBefore, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *orderRepo) MarkAlerted(ctx context.Context, id int64, alertedAt int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE orders SET alerted_at = ? WHERE id = ?`, alertedAt, id)
	return err
}

func (r *orderRepo) SumTotal(ctx context.Context, status string, createdFrom, createdTo int64) (int64, error) {
	where, args := orderFilterClause(repository.OrderFilter{Status: status, CreatedFrom: createdFrom, CreatedTo: createdTo})
	var total sql.NullInt64
	err := r.db.QueryRowContext(ctx, `SELECT SUM(total) FROM orders`+where, args...).Scan(&total)
	return total.Int64, err
}

func (r *orderRepo) CountReservationsFrom(ctx context.Context, date string, statuses []string) (int64, error) {
	query := `SELECT COUNT(*) FROM orders WHERE kind = 'reservation' AND reservation_date >= ?`
	args := []any{date}
	if len(statuses) > 0 {
		query += ` AND status IN (` + placeholders(len(statuses)) + `)`
		for _, s := range statuses {
			args = append(args, s)
		}
	}
	var count int64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

func orderFilterClause(filter repository.OrderFilter) (string, []any) {
	var conds []string
	var args []any
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Kind != "" {
		conds = append(conds, "kind = ?")
		args = append(args, filter.Kind)
	}
	if kw := strings.TrimSpace(filter.Keyword); kw != "" {
		like := containsPattern(kw)
		conds = append(conds, `(reference LIKE ? ESCAPE '\' OR phone LIKE ? ESCAPE '\' OR customer_name LIKE ? ESCAPE '\')`)
		args = append(args, like, like, like)
	}
	if filter.UserID != nil {
		conds = append(conds, "user_id = ?")
		args = append(args, *filter.UserID)
	}
	if filter.CreatedFrom > 0 {
		conds = append(conds, "created_at >= ?")
		args = append(args, filter.CreatedFrom)
	}
	if filter.CreatedTo > 0 {
		conds = append(conds, "created_at < ?")
		args = append(args, filter.CreatedTo)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func collectOrders(rows *sql.Rows) ([]*repository.Order, error) {
	var orders []*repository.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func scanOrder(scanner rowScanner) (*repository.Order, error) {
	var (
		o               repository.Order
		userID          sql.NullInt64
		items           sql.NullString
		place           sql.NullString
		proof           sql.NullString
		reason          sql.NullString
		partySize       sql.NullInt64
		reservationDate sql.NullString
		reservationTime sql.NullString
		instructions    sql.NullString
		alertedAt       sql.NullInt64
	)
	err := scanner.Scan(&o.ID, &o.Reference, &o.Kind, &userID, &o.CustomerName, &o.Phone, &items, &o.Total, &place, &proof,
		&o.Status, &reason, &partySize, &reservationDate, &reservationTime, &instructions, &alertedAt, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	decoded, err := decodeOrderItems(items.String)
	if err != nil {
		return nil, fmt.Errorf("decode items of order %d: %w", o.ID, err)
	}
	o.UserID = nullableIntPtr(userID)
	o.Items = decoded
	o.Place = place.String
	o.PaymentProofURL = proof.String
	o.StatusReason = reason.String
	o.PartySize = int(partySize.Int64)
	o.ReservationDate = reservationDate.String
	o.ReservationTime = reservationTime.String
	o.Instructions = instructions.String
	o.AlertedAt = alertedAt.Int64
	return &o, nil
}

const orderColumns = `id, reference, kind, user_id, customer_name, phone, items, total, place, payment_proof_url,
    status, status_reason, party_size, reservation_date, reservation_time, instructions, alerted_at, created_at, updated_at`
