package ports

import (
	"context"

	"github.com/pivotalflow/platform-api/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, username, password, email, role, orgID string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}
