package notification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/mavunohub/internal/events"
)

type memRepo struct {
	byEvent map[string]*Notification
}

func (m *memRepo) Save(_ context.Context, n *Notification) (bool, error) {
	if _, ok := m.byEvent[n.EventID]; ok {
		return false, nil
	}
	m.byEvent[n.EventID] = n
	return true, nil
}

func envelope(t *testing.T, typ string, payload any) events.Envelope {
	t.Helper()
	ev, err := events.New(context.Background(), typ, "test", "c-1", payload)
	require.NoError(t, err)
	return ev
}

func TestCompose(t *testing.T) {
	cases := []struct {
		ev   events.Envelope
		user string
		msg  string
	}{
		{envelope(t, events.TypeOrderCreated, events.OrderCreated{OrderID: "o1", BuyerID: "b1", Total: "25.50"}), "b1", "Your order o1 has been placed. Total: 25.50."},
		{envelope(t, events.TypeOrderStatusChanged, events.OrderStatusChanged{OrderID: "o1", BuyerID: "b1", From: "confirmed", To: "packed"}), "b1", "Your order o1 is now packed."},
		{envelope(t, events.TypePaymentRecorded, events.PaymentRecorded{OrderID: "o1", BuyerID: "b1", Amount: "10.00", Method: "mpesa"}), "b1", "Payment of 10.00 via mpesa received for order o1."},
		{envelope(t, events.TypeUserRegistered, events.UserRegistered{UserID: "u1", Name: "Amina"}), "u1", WelcomeMessage},
	}
	for _, tc := range cases {
		user, msg, ok, err := Compose(tc.ev)
		require.NoError(t, err)
		assert.True(t, ok, tc.ev.EventType)
		assert.Equal(t, tc.user, user)
		assert.Equal(t, tc.msg, msg)
	}

	_, _, ok, err := Compose(envelope(t, events.TypeOrderDeleted, events.OrderDeleted{OrderID: "o1"}))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHandler_Idempotent(t *testing.T) {
	repo := &memRepo{byEvent: map[string]*Notification{}}
	h := Handler(repo)
	ev := envelope(t, events.TypeUserRegistered, events.UserRegistered{UserID: "u1"})

	require.NoError(t, h(context.Background(), ev))
	require.NoError(t, h(context.Background(), ev))

	require.Len(t, repo.byEvent, 1)
	n := repo.byEvent[ev.EventID]
	assert.Equal(t, StatusUnread, n.Status)
	assert.Equal(t, "u1", n.UserID)
}

func TestHandler_BadPayload(t *testing.T) {
	repo := &memRepo{byEvent: map[string]*Notification{}}
	ev := events.Envelope{EventID: "e", EventType: events.TypeOrderCreated, Payload: []byte(`"oops"`)}
	assert.Error(t, Handler(repo)(context.Background(), ev))
	assert.Empty(t, repo.byEvent)
}
