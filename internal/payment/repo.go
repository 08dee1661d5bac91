package payment

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrOrderNotFound = errors.New("order not found")

type Repository interface {
	// Create appends p and returns the buyer of the paid order.
	Create(ctx context.Context, p *Payment) (buyerID string, err error)
	ListByOrder(ctx context.Context, orderID string) ([]Payment, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Create(ctx context.Context, p *Payment) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var buyerID string
	err = tx.QueryRow(ctx, `SELECT buyer_id FROM orders WHERE id=$1 FOR SHARE`, p.OrderID).Scan(&buyerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrOrderNotFound
	}
	if err != nil {
		return "", err
	}
	if err := tx.QueryRow(ctx, `
		INSERT INTO payments (id, order_id, amount, method, reference, created_at)
		VALUES ($1,$2,$3,$4,$5,NOW())
		RETURNING created_at
	`, p.ID, p.OrderID, p.Amount, p.Method, p.Reference).Scan(&p.CreatedAt); err != nil {
		return "", err
	}
	return buyerID, tx.Commit(ctx)
}

func (r *PGRepo) ListByOrder(ctx context.Context, orderID string) ([]Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, amount::text, method, reference, created_at
		FROM payments WHERE order_id=$1
		ORDER BY created_at DESC
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Payment{}
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.OrderID, &p.Amount, &p.Method, &p.Reference, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
