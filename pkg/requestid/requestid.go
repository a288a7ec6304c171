// Package requestid carries the id of the api request being served through its context.
package requestid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// Header carries the request id in both directions.
const Header = "X-Request-Id"

type ctxKey struct{}

func New() string {
	return uuid.NewString()
}

func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}

// FromRequest returns "" outside of a request id middleware.
func FromRequest(r *http.Request) string {
	id, _ := FromContext(r.Context())
	return id
}

// Ptr is FromContext for optional payload fields.
func Ptr(ctx context.Context) *string {
	if id, ok := FromContext(ctx); ok {
		return &id
	}
	return nil
}
