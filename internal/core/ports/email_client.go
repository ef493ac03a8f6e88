package ports

import (
	"context"

	"github.com/99minutos/auth-service/internal/core/domain"
)

// EmailClient delivers out-of-band messages such as 2FA codes.
type EmailClient interface {
	SendEmail(ctx context.Context, recipient domain.Email, subject, content string) error
}
