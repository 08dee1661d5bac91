package httpx

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/mavunohub/internal/apperr"
	"github.com/MikeMC777/mavunohub/internal/auth"
)

// Identity resolves the gateway-forwarded user id and stores the result in
// the request context. Requests without a resolvable user are rejected.
func Identity(resolver auth.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetHeader(auth.HeaderUserID)
		if uid == "" {
			Error(c, apperr.Unauthenticated("authentication credentials were not provided"))
			c.Abort()
			return
		}
		id, err := resolver.Resolve(c.Request.Context(), uid)
		if err != nil {
			if !apperr.Is(err, apperr.KindUnauthenticated) {
				slog.ErrorContext(c.Request.Context(), "resolve identity", "user_id", uid, "err", err)
				err = apperr.Unauthenticated("could not resolve user")
			}
			Error(c, err)
			c.Abort()
			return
		}
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := auth.FromContext(c.Request.Context())
		if !ok || !id.IsStaff {
			Error(c, apperr.Permission("you do not have permission to perform this action"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func RequireRole(role auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := auth.FromContext(c.Request.Context())
		if !ok || id.Role != role {
			Error(c, apperr.Permission("you do not have permission to perform this action"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentIdentity returns the identity attached by Identity.
func CurrentIdentity(c *gin.Context) (auth.Identity, error) {
	id, ok := auth.FromContext(c.Request.Context())
	if !ok {
		return auth.Identity{}, errors.New("identity middleware not installed")
	}
	return id, nil
}
