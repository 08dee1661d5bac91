package order

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/mavunohub/internal/apperr"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestValidate_EmptyItems(t *testing.T) {
	err := CreateOrderRequest{}.Validate()
	require.Error(t, err)

	var e *apperr.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, apperr.KindValidation, e.Kind)
	assert.Equal(t, []string{"Order must contain at least 1 item."}, e.Fields["items"])
}

func TestValidate_ItemFields(t *testing.T) {
	req := CreateOrderRequest{Items: []CreateOrderItem{
		{ProductID: uuid.NewString(), UnitPrice: dec("10.00"), Quantity: dec("2.000")},
		{ProductID: "nope", UnitPrice: dec("1.234"), Quantity: dec("0.0001")},
		{ProductID: uuid.NewString(), UnitPrice: dec("-1"), Quantity: nil},
	}}
	err := req.Validate()

	var e *apperr.Error
	require.ErrorAs(t, err, &e)
	assert.NotContains(t, e.Fields, "items[0].unit_price")
	assert.Contains(t, e.Fields, "items[1].product_id")
	assert.Equal(t, []string{"Ensure that there are no more than 2 decimal places."}, e.Fields["items[1].unit_price"])
	assert.Equal(t, []string{"Ensure this value is greater than or equal to 0.001."}, e.Fields["items[1].quantity"])
	assert.Equal(t, []string{"Ensure this value is greater than or equal to 0."}, e.Fields["items[2].unit_price"])
	assert.Equal(t, []string{"This field is required."}, e.Fields["items[2].quantity"])
}

func TestValidate_ExtremeExponentsRejectedQuickly(t *testing.T) {
	req := CreateOrderRequest{Items: []CreateOrderItem{
		{ProductID: uuid.NewString(), UnitPrice: dec("1e200000000"), Quantity: dec("1e-200000000")},
	}}

	done := make(chan error, 1)
	go func() { done <- req.Validate() }()

	select {
	case err := <-done:
		var e *apperr.Error
		require.ErrorAs(t, err, &e)
		assert.Contains(t, e.Fields, "items[0].unit_price")
		assert.Contains(t, e.Fields, "items[0].quantity")
	case <-time.After(2 * time.Second):
		t.Fatalf("Validate did not return for an out-of-range exponent")
	}
}

func TestOrder_TotalIsExactDecimalSum(t *testing.T) {
	req := CreateOrderRequest{Items: []CreateOrderItem{
		{ProductID: uuid.NewString(), UnitPrice: dec("10.00"), Quantity: dec("2.000")},
		{ProductID: uuid.NewString(), UnitPrice: dec("5.50"), Quantity: dec("1.000")},
	}}
	require.NoError(t, req.Validate())

	o := req.toOrder("o-1", "b-1")
	assert.True(t, o.Total.Equal(decimal.RequireFromString("25.50")), o.Total.String())
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, PaymentPending, o.PaymentStatus)
	assert.Equal(t, "25.50", o.Response().Total)
	for _, it := range o.Items {
		assert.Equal(t, "o-1", it.OrderID)
		assert.NotEmpty(t, it.ID)
	}
}

func TestSumItems_NoFloatDrift(t *testing.T) {
	items := make([]Item, 0, 10)
	for i := 0; i < 10; i++ {
		items = append(items, Item{UnitPrice: decimal.RequireFromString("0.10"), Quantity: decimal.RequireFromString("1.000")})
	}
	assert.Equal(t, "1.00", SumItems(items).StringFixed(2))
	assert.True(t, SumItems(items).Equal(decimal.NewFromInt(1)))
}

func TestResponse_ItemTotal(t *testing.T) {
	seller := "s-1"
	o := &Order{ID: "o", BuyerID: "b", Items: []Item{{
		ID: "i", ProductID: "p", ProductName: "Maize", SellerID: &seller,
		UnitPrice: decimal.RequireFromString("12.5"), Quantity: decimal.RequireFromString("0.5"),
	}}}
	r := o.Response()
	require.Len(t, r.Items, 1)
	assert.Equal(t, "Maize", r.Items[0].Product)
	assert.Equal(t, "12.50", r.Items[0].UnitPrice)
	assert.Equal(t, "0.500", r.Items[0].Quantity)
	assert.Equal(t, "6.25", r.Items[0].ItemTotal)
}
