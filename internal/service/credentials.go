package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/kitbuilder587/gcsearch-plugin/internal/domain"
	"github.com/kitbuilder587/gcsearch-plugin/internal/metrics"
	"github.com/kitbuilder587/gcsearch-plugin/internal/repository"
)

// CredentialValidator - то, что умеет проверить креды живым запросом.
// *plugin.Provider подходит.
type CredentialValidator interface {
	ValidateCredentials(ctx context.Context, credentials map[string]string) error
}

type CredentialService interface {
	// Validate только проверяет, ничего не сохраняя
	Validate(ctx context.Context, credentials map[string]string) error
	// Save проверяет креды и сохраняет их только при успехе
	Save(ctx context.Context, userID string, creds domain.Credentials) error
	Remove(ctx context.Context, userID string) error
	// Resolve отдает креды пользователя или дефолтные из конфига
	Resolve(ctx context.Context, userID string) (domain.Credentials, error)
}

type CredentialServiceDeps struct {
	Repo      repository.CredentialRepository
	Validator CredentialValidator
	Logger    *zap.Logger
	Metrics   *metrics.Metrics

	// опционально
	Default domain.Credentials
}

type credentialService struct {
	repo      repository.CredentialRepository
	validator CredentialValidator
	logger    *zap.Logger
	metrics   *metrics.Metrics
	fallback  domain.Credentials
}

func NewCredentialService(deps CredentialServiceDeps) CredentialService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &credentialService{
		repo:      deps.Repo,
		validator: deps.Validator,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
		fallback:  deps.Default,
	}
}

func (s *credentialService) Validate(ctx context.Context, credentials map[string]string) error {
	err := s.validator.ValidateCredentials(ctx, credentials)
	if s.metrics != nil {
		status := "ok"
		if err != nil {
			status = "invalid"
		}
		s.metrics.RecordValidation(status)
	}
	return err
}

func (s *credentialService) Save(ctx context.Context, userID string, creds domain.Credentials) error {
	if userID == "" {
		return domain.ErrEmptyUserID
	}
	if err := creds.Validate(); err != nil {
		return domain.NewCredentialValidationError(err)
	}

	if err := s.Validate(ctx, creds.ToMap()); err != nil {
		return err
	}

	uc := &domain.UserCredentials{
		UserID:      userID,
		Credentials: creds,
	}
	if err := s.repo.Save(ctx, uc); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.RecordCredentialChange("save")
	}
	s.logger.Info("credentials saved",
		zap.String("user_id", userID),
		zap.String("engine_id", creds.EngineID),
		zap.String("api_key", creds.MaskedAPIKey()),
	)

	return nil
}

func (s *credentialService) Remove(ctx context.Context, userID string) error {
	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.RecordCredentialChange("remove")
	}
	s.logger.Info("credentials removed", zap.String("user_id", userID))

	return nil
}

func (s *credentialService) Resolve(ctx context.Context, userID string) (domain.Credentials, error) {
	if userID != "" {
		uc, err := s.repo.Get(ctx, userID)
		if err == nil {
			return uc.Credentials, nil
		}
		if !errors.Is(err, domain.ErrCredentialsNotFound) {
			return domain.Credentials{}, err
		}
	}

	if s.fallback.Validate() == nil {
		return s.fallback, nil
	}
	return domain.Credentials{}, domain.ErrCredentialsNotFound
}
