package port

import (
	"context"

	"github.com/arturoeanton/go-module-pack/internal/domain"
)

// TokenVerifier validates a bearer credential against an identity provider.
// Any failure, including an unreachable provider, returns ErrUnauthorized.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*domain.Identity, error)
}
