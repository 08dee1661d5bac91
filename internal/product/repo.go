// Package product provides the catalog repository and its PostgreSQL implementation.
package product

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("product not found")
	// ErrInUse is returned when order items still reference the product.
	ErrInUse = errors.New("product is referenced by existing order items")
)

const pgForeignKeyViolation = "23503"

type Query struct {
	Q        string
	Category string
	SellerID string
	Limit    int
	Offset   int
}

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, q Query) ([]Product, error)
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) (bool, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const productColumns = `id, seller_id, name, category, price::text, stock::text, unit, min_order, description, created_at, updated_at`

func scanProduct(row pgx.Row, p *Product) error {
	return row.Scan(&p.ID, &p.SellerID, &p.Name, &p.Category, &p.Price, &p.Stock,
		&p.Unit, &p.MinOrder, &p.Description, &p.CreatedAt, &p.UpdatedAt)
}

func (r *PGRepo) Create(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return r.db.QueryRow(ctx, `
		INSERT INTO products (id, seller_id, name, category, price, stock, unit, min_order, description, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW(),NOW())
		RETURNING created_at, updated_at
	`, p.ID, p.SellerID, p.Name, p.Category, p.Price, p.Stock, p.Unit, p.MinOrder, p.Description).
		Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var p Product
	err := scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id), &p)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PGRepo) List(ctx context.Context, q Query) ([]Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE ($1 = '' OR name ILIKE '%'||$1||'%' OR description ILIKE '%'||$1||'%')
		  AND ($2 = '' OR category = $2)
		  AND ($3 = '' OR seller_id::text = $3)
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5
	`, strings.TrimSpace(q.Q), q.Category, q.SellerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		var p Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, p *Product) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := r.db.QueryRow(ctx, `
		UPDATE products
		SET name = $2, category = $3, price = $4, stock = $5, unit = $6,
		    min_order = $7, description = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, p.ID, p.Name, p.Category, p.Price, p.Stock, p.Unit, p.MinOrder, p.Description).Scan(&p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// Delete removes the product. Order items reference products with
// ON DELETE RESTRICT, so a referenced product yields ErrInUse.
func (r *PGRepo) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return false, ErrInUse
		}
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}
