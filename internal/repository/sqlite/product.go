// 文件路径: internal/repository/sqlite/product.go
// 模块说明: products 表的 SQLite 实现，菜单按名称排序。
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/brinaregal/brina/internal/repository"
)

type productRepo struct {
	db *sql.DB
}

func (r *productRepo) List(ctx context.Context, filter repository.ProductFilter) ([]*repository.Product, error) {
	var conds []string
	var args []any
	if filter.AvailableOnly {
		conds = append(conds, "available = 1")
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		conds = append(conds, "category = ?")
		args = append(args, category)
	}
	query := `SELECT ` + productColumns + ` FROM products`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY name COLLATE NOCASE ASC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectProducts(rows)
}

func (r *productRepo) Categories(ctx context.Context) ([]string, error) {
	const query = `SELECT DISTINCT category FROM products
                   WHERE available = 1 AND category <> ''
                   ORDER BY category COLLATE NOCASE ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *productRepo) FindByID(ctx context.Context, id int64) (*repository.Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ? LIMIT 1`, id)
	return scanProduct(row)
}

func (r *productRepo) FindByName(ctx context.Context, name string) (*repository.Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE name = ? LIMIT 1`, strings.TrimSpace(name))
	return scanProduct(row)
}

func (r *productRepo) FindByIDs(ctx context.Context, ids []int64) (map[int64]*repository.Product, error) {
	result := make(map[int64]*repository.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := `SELECT ` + productColumns + ` FROM products WHERE id IN (` + placeholders(len(ids)) + `)`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products, err := collectProducts(rows)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		result[p.ID] = p
	}
	return result, nil
}

func (r *productRepo) Create(ctx context.Context, product *repository.Product) (*repository.Product, error) {
	if product == nil {
		return nil, errors.New("product is nil")
	}
	const stmt = `INSERT INTO products(name, description, price, category, image_url, available, sort, created_at, updated_at)
                  VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, stmt,
		product.Name,
		product.Description,
		product.Price,
		product.Category,
		nullableString(product.ImageURL),
		boolToInt(product.Available),
		nullableSort(product.Sort),
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("product %q: %w", product.Name, repository.ErrConflict)
		}
		return nil, err
	}
	if id, err := res.LastInsertId(); err == nil {
		product.ID = id
	}
	return product, nil
}

func (r *productRepo) Update(ctx context.Context, product *repository.Product) error {
	if product == nil {
		return errors.New("product is nil")
	}
	const stmt = `UPDATE products
                  SET name = ?, description = ?, price = ?, category = ?, image_url = ?, available = ?, sort = ?, updated_at = ?
                  WHERE id = ?`
	res, err := r.db.ExecContext(ctx, stmt,
		product.Name,
		product.Description,
		product.Price,
		product.Category,
		nullableString(product.ImageURL),
		boolToInt(product.Available),
		nullableSort(product.Sort),
		product.UpdatedAt,
		product.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("product %q: %w", product.Name, repository.ErrConflict)
		}
		return err
	}
	return requireAffected(res)
}

func (r *productRepo) SetAvailability(ctx context.Context, id int64, available bool, updatedAt int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE products SET available = ?, updated_at = ? WHERE id = ?`, boolToInt(available), updatedAt, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *productRepo) SetImage(ctx context.Context, id int64, imageURL string, updatedAt int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE products SET image_url = ?, updated_at = ? WHERE id = ?`, nullableString(imageURL), updatedAt, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *productRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *productRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count)
	return count, err
}

func collectProducts(rows *sql.Rows) ([]*repository.Product, error) {
	var products []*repository.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func scanProduct(scanner rowScanner) (*repository.Product, error) {
	var (
		p         repository.Product
		imageURL  sql.NullString
		available int64
		sort      sql.NullInt64
	)
	err := scanner.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &imageURL, &available, &sort, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	p.ImageURL = imageURL.String
	p.Available = available == 1
	p.Sort = sort.Int64
	return &p, nil
}

const productColumns = `id, name, description, price, category, image_url, available, sort, created_at, updated_at`
