package repository

import (
	"context"

	"github.com/kitbuilder587/gcsearch-plugin/internal/domain"
)

// CredentialRepository хранит креды Google по id пользователя хоста.
type CredentialRepository interface {
	// Save создает или перезаписывает креды пользователя
	Save(ctx context.Context, uc *domain.UserCredentials) error
	Get(ctx context.Context, userID string) (*domain.UserCredentials, error)
	Delete(ctx context.Context, userID string) error
}
