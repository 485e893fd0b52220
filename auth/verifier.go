//go:generate go run go.uber.org/mock/mockgen -source=verifier.go -destination=../mocks/mock_verifier.go -package=mocks
package auth

import (
	"context"

	"github.com/UDAVALAPATISURESH/app-chat/domain"
	"github.com/UDAVALAPATISURESH/app-chat/errors"
)

// IdentityVerifier turns a bearer credential into a stable identity.
// The gateway calls it exactly once per connection, before any message
// handler is attached.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (domain.User, error)
}

type userLookup interface {
	GetUserByID(id string) (domain.User, error)
}

// TokenVerifier validates the JWT signature then resolves the claimed user
// against the identity store, so a deleted user fails verification even
// with a token that still carries a valid signature.
type TokenVerifier struct {
	users  userLookup
	secret []byte
}

func NewTokenVerifier(users userLookup, secret []byte) TokenVerifier {
	return TokenVerifier{users: users, secret: secret}
}

func (v TokenVerifier) Verify(ctx context.Context, token string) (domain.User, error) {
	if token == "" {
		return domain.User{}, errors.ErrUnauthenticated
	}
	claims, err := ValidateToken(token, v.secret)
	if err != nil {
		return domain.User{}, errors.ErrInvalidCredential
	}
	user, err := v.users.GetUserByID(claims.UserID)
	if err != nil {
		return domain.User{}, errors.ErrInvalidCredential
	}
	return user, nil
}
