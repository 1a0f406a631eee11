package domain

import (
	"strings"
	"time"
)

// ключи, под которыми хост передает креды провайдера
const (
	CredentialAPIKey   = "google_custom_search_api_key"
	CredentialEngineID = "google_custom_search_engine_id"
)

type Credentials struct {
	APIKey   string
	EngineID string
}

func CredentialsFromMap(m map[string]string) (Credentials, error) {
	c := Credentials{
		APIKey:   strings.TrimSpace(m[CredentialAPIKey]),
		EngineID: strings.TrimSpace(m[CredentialEngineID]),
	}
	if err := c.Validate(); err != nil {
		return Credentials{}, err
	}
	return c, nil
}

func (c Credentials) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.EngineID == "" {
		return ErrMissingEngineID
	}
	return nil
}

func (c Credentials) IsZero() bool {
	return c.APIKey == "" && c.EngineID == ""
}

func (c Credentials) ToMap() map[string]string {
	return map[string]string{
		CredentialAPIKey:   c.APIKey,
		CredentialEngineID: c.EngineID,
	}
}

// MaskedAPIKey - для логов и ответов пользователю, ключ целиком не светим
func (c Credentials) MaskedAPIKey() string {
	if len(c.APIKey) <= 4 {
		return strings.Repeat("*", len(c.APIKey))
	}
	return strings.Repeat("*", len(c.APIKey)-4) + c.APIKey[len(c.APIKey)-4:]
}

// UserCredentials - креды, сохраненные пользователем хоста
type UserCredentials struct {
	UserID      string
	Credentials Credentials
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
