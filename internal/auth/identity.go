// Package auth holds the acting identity that the gateway hands to every
// service. Credentials are verified upstream; services only resolve the
// forwarded user id to a role.
package auth

import (
	"context"
	"fmt"
)

const HeaderUserID = "X-User-ID"

type Role string

const (
	RoleConsumer Role = "consumer"
	RoleFarmer   Role = "farmer"
	RoleRetailer Role = "retailer"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleConsumer, RoleFarmer, RoleRetailer:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// IsSeller reports whether the role sells on the marketplace.
func (r Role) IsSeller() bool { return r == RoleFarmer }

type Identity struct {
	UserID  string
	Role    Role
	IsStaff bool
}

// Resolver maps a forwarded user id to an Identity.
type Resolver interface {
	Resolve(ctx context.Context, userID string) (Identity, error)
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}
