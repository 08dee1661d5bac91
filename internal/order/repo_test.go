package order

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/mavunohub/internal/apperr"
	"github.com/MikeMC777/mavunohub/internal/postgres"
)

// These tests run against a real database when MAVUNO_TEST_POSTGRES_DSN is set.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("MAVUNO_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("MAVUNO_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	pool, err := postgres.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.Migrate(ctx, pool))
	return pool
}

func seedUser(t *testing.T, pool *pgxpool.Pool, role string) string {
	t.Helper()
	id := uuid.NewString()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO users (id, name, email, password_hash, role) VALUES ($1,$2,$3,'x',$4)
	`, id, "u-"+id[:8], id+"@example.com", role)
	require.NoError(t, err)
	return id
}

func seedProduct(t *testing.T, pool *pgxpool.Pool, sellerID, name string) string {
	t.Helper()
	id := uuid.NewString()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO products (id, seller_id, name, price) VALUES ($1,$2,$3,1.00)
	`, id, sellerID, name)
	require.NoError(t, err)
	return id
}

func countRows(t *testing.T, pool *pgxpool.Pool, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, pool.QueryRow(context.Background(), query, args...).Scan(&n))
	return n
}

func TestPGRepo_CreateAndRead(t *testing.T) {
	pool := testPool(t)
	svc := NewService(NewPGRepo(pool), nil, nil, "test")
	farmer := seedUser(t, pool, "farmer")
	buyer := seedUser(t, pool, "consumer")
	p1 := seedProduct(t, pool, farmer, "Tomatoes")
	p2 := seedProduct(t, pool, farmer, "Kale")

	o, err := svc.Create(context.Background(), buyer, CreateOrderRequest{Items: []CreateOrderItem{
		line(p1, "10.00", "2.000"), line(p2, "5.50", "1.000"),
	}})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, "25.50", got.Response().Total)
	assert.Equal(t, StatusPending, got.Status)
	require.Len(t, got.Items, 2)
	require.NotNil(t, got.Items[0].SellerID)
	assert.Equal(t, farmer, *got.Items[0].SellerID)

	list, err := NewPGRepo(pool).ListBySeller(context.Background(), farmer)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, o.ID, list[0].ID)
}

func TestPGRepo_CreateRollsBackOnMissingProduct(t *testing.T) {
	pool := testPool(t)
	svc := NewService(NewPGRepo(pool), nil, nil, "test")
	farmer := seedUser(t, pool, "farmer")
	buyer := seedUser(t, pool, "consumer")
	p := seedProduct(t, pool, farmer, "Milk")

	_, err := svc.Create(context.Background(), buyer, CreateOrderRequest{Items: []CreateOrderItem{
		line(p, "60.00", "1.000"), line(uuid.NewString(), "1.00", "1.000"),
	}})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Zero(t, countRows(t, pool, `SELECT COUNT(*) FROM orders WHERE buyer_id=$1`, buyer))
	assert.Zero(t, countRows(t, pool, `SELECT COUNT(*) FROM order_items WHERE product_id=$1`, p))
}

func TestPGRepo_ConcurrentAdvanceSerializes(t *testing.T) {
	pool := testPool(t)
	repo := NewPGRepo(pool)
	farmer := seedUser(t, pool, "farmer")
	buyer := seedUser(t, pool, "consumer")
	p := seedProduct(t, pool, farmer, "Eggs")

	req := CreateOrderRequest{Items: []CreateOrderItem{line(p, "1.00", "1.000")}}
	o := req.toOrder(uuid.NewString(), buyer)
	require.NoError(t, repo.Create(context.Background(), o))
	_, err := pool.Exec(context.Background(), `UPDATE orders SET status='packed' WHERE id=$1`, o.ID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]Transition, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tr, err := repo.Advance(context.Background(), o.ID, Next)
			assert.NoError(t, err)
			results[i] = tr
		}(i)
	}
	wg.Wait()

	froms := map[Status]bool{results[0].From: true, results[1].From: true}
	assert.True(t, froms[StatusPacked])
	assert.True(t, froms[StatusShipped])

	got, err := repo.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)
}
