package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kitbuilder587/gcsearch-plugin/internal/domain"
)

type CredentialRepo struct {
	db *DB
}

func NewCredentialRepo(db *DB) *CredentialRepo {
	return &CredentialRepo{db: db}
}

func (r *CredentialRepo) Save(ctx context.Context, uc *domain.UserCredentials) error {
	if uc.UserID == "" {
		return domain.ErrEmptyUserID
	}

	query := `
        INSERT INTO user_credentials (user_id, api_key, engine_id)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id) DO UPDATE
            SET api_key = EXCLUDED.api_key,
                engine_id = EXCLUDED.engine_id,
                updated_at = NOW()
        RETURNING created_at, updated_at
    `

	err := r.db.Pool.QueryRow(ctx, query,
		uc.UserID,
		uc.Credentials.APIKey,
		uc.Credentials.EngineID,
	).Scan(&uc.CreatedAt, &uc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}

	return nil
}

func (r *CredentialRepo) Get(ctx context.Context, userID string) (*domain.UserCredentials, error) {
	query := `
        SELECT user_id, api_key, engine_id, created_at, updated_at
        FROM user_credentials
        WHERE user_id = $1
    `

	var uc domain.UserCredentials
	err := r.db.Pool.QueryRow(ctx, query, userID).Scan(
		&uc.UserID,
		&uc.Credentials.APIKey,
		&uc.Credentials.EngineID,
		&uc.CreatedAt,
		&uc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCredentialsNotFound
		}
		return nil, fmt.Errorf("get credentials: %w", err)
	}

	return &uc, nil
}

func (r *CredentialRepo) Delete(ctx context.Context, userID string) error {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM user_credentials WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete credentials: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrCredentialsNotFound
	}

	return nil
}
