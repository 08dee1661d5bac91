package order

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("order not found")
)

// MissingProductError reports an order line whose product does not exist.
type MissingProductError struct {
	ProductID string
}

func (e *MissingProductError) Error() string { return "product " + e.ProductID + " not found" }

type Repository interface {
	// Create persists the order header and every item in one transaction.
	// Each item's product is resolved and its seller copied onto the item.
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]Order, error)
	// ListBySeller returns each order holding at least one item sold by sellerID, once.
	ListBySeller(ctx context.Context, sellerID string) ([]Order, error)
	// Advance locks the order row and applies next to its status. The row is
	// written only when next succeeds and returns a different status.
	Advance(ctx context.Context, id string, next func(Status) (Status, error)) (Transition, error)
	// Delete removes the order with its items and payments and returns its buyer.
	Delete(ctx context.Context, id string) (buyerID string, err error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const orderColumns = `o.id, o.buyer_id, o.status, o.payment_status, o.total::text, o.created_at, o.updated_at`

func scanOrder(row pgx.Row, o *Order) error {
	return row.Scan(&o.ID, &o.BuyerID, &o.Status, &o.PaymentStatus, &o.Total, &o.CreatedAt, &o.UpdatedAt)
}

func (r *PGRepo) Create(ctx context.Context, o *Order) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := tx.QueryRow(ctx, `
		INSERT INTO orders (id, buyer_id, status, payment_status, total, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,NOW(),NOW())
		RETURNING created_at, updated_at
	`, o.ID, o.BuyerID, o.Status, o.PaymentStatus, o.Total).Scan(&o.CreatedAt, &o.UpdatedAt); err != nil {
		return err
	}

	for i := range o.Items {
		it := &o.Items[i]
		err := tx.QueryRow(ctx, `SELECT name, seller_id FROM products WHERE id=$1 FOR SHARE`, it.ProductID).
			Scan(&it.ProductName, &it.SellerID)
		if errors.Is(err, pgx.ErrNoRows) {
			return &MissingProductError{ProductID: it.ProductID}
		}
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, product_id, seller_id, unit_price, quantity)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, it.ID, o.ID, it.ProductID, it.SellerID, it.UnitPrice, it.Quantity); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var o Order
	err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders o WHERE o.id=$1`, id), &o)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	orders := []Order{o}
	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *PGRepo) ListByBuyer(ctx context.Context, buyerID string) ([]Order, error) {
	return r.list(ctx, `
		SELECT `+orderColumns+` FROM orders o
		WHERE o.buyer_id=$1
		ORDER BY o.created_at DESC
	`, buyerID)
}

func (r *PGRepo) ListBySeller(ctx context.Context, sellerID string) ([]Order, error) {
	return r.list(ctx, `
		SELECT `+orderColumns+` FROM orders o
		WHERE EXISTS (SELECT 1 FROM order_items i WHERE i.order_id = o.id AND i.seller_id = $1)
		ORDER BY o.created_at DESC
	`, sellerID)
}

func (r *PGRepo) list(ctx context.Context, query string, arg string) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Order{}
	for rows.Next() {
		var o Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// loadItems fills Items for every order with a single query.
func (r *PGRepo) loadItems(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	index := make(map[string]int, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = i
		orders[i].Items = []Item{}
	}
	rows, err := r.db.Query(ctx, `
		SELECT i.id, i.order_id, i.product_id, p.name, i.seller_id, i.unit_price::text, i.quantity::text
		FROM order_items i JOIN products p ON p.id = i.product_id
		WHERE i.order_id = ANY($1::uuid[])
		ORDER BY i.created_at, i.id
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.SellerID, &it.UnitPrice, &it.Quantity); err != nil {
			return err
		}
		o := &orders[index[it.OrderID]]
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}

func (r *PGRepo) Advance(ctx context.Context, id string, next func(Status) (Status, error)) (Transition, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Transition{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	t := Transition{OrderID: id}
	err = tx.QueryRow(ctx, `SELECT buyer_id, status FROM orders WHERE id=$1 FOR UPDATE`, id).Scan(&t.BuyerID, &t.From)
	if errors.Is(err, pgx.ErrNoRows) {
		return Transition{}, ErrNotFound
	}
	if err != nil {
		return Transition{}, err
	}
	to, err := next(t.From)
	if err != nil {
		return Transition{}, err
	}
	t.To = to
	if !t.Changed() {
		return t, nil
	}
	if _, err := tx.Exec(ctx, `UPDATE orders SET status=$2, updated_at=NOW() WHERE id=$1`, id, to); err != nil {
		return Transition{}, err
	}
	return t, tx.Commit(ctx)
}

func (r *PGRepo) Delete(ctx context.Context, id string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var buyerID string
	err := r.db.QueryRow(ctx, `DELETE FROM orders WHERE id=$1 RETURNING buyer_id`, id).Scan(&buyerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return buyerID, nil
}
