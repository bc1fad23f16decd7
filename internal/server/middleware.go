package server

import (
	"context"
	"crypto/subtle"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/middleware"
	"github.com/go-kratos/kratos/v2/transport"
)

// ApiSecretMiddleware requires callers of the inventory routes to present
// secret in the X-API-Key header. An empty secret leaves the routes open.
func ApiSecretMiddleware(secret string) middleware.Middleware {
	return func(handler middleware.Handler) middleware.Handler {
		return func(ctx context.Context, req any) (any, error) {
			if secret == "" {
				return handler(ctx, req)
			}

			tr, ok := transport.FromServerContext(ctx)
			if !ok {
				return nil, errors.InternalServer("NO_TRANSPORT", "no transport in context")
			}

			key := tr.RequestHeader().Get("X-API-Key")
			if key == "" {
				return nil, errors.Unauthorized("MISSING_API_KEY", "missing X-API-Key header")
			}

			if subtle.ConstantTimeCompare([]byte(key), []byte(secret)) != 1 {
				return nil, errors.Unauthorized("INVALID_API_KEY", "invalid X-API-Key")
			}

			return handler(ctx, req)
		}
	}
}
