package repository

import (
	"context"
	"sync"
	"time"

	"github.com/kitbuilder587/gcsearch-plugin/internal/domain"
)

// MemoryCredentialRepository - реализация в памяти, для тестов и запуска без БД
type MemoryCredentialRepository struct {
	mu    sync.RWMutex
	items map[string]domain.UserCredentials

	// для тестов
	SaveErr error
	GetErr  error
}

func NewMemoryCredentialRepository() *MemoryCredentialRepository {
	return &MemoryCredentialRepository{
		items: make(map[string]domain.UserCredentials),
	}
}

func (m *MemoryCredentialRepository) Save(ctx context.Context, uc *domain.UserCredentials) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if uc.UserID == "" {
		return domain.ErrEmptyUserID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if existing, ok := m.items[uc.UserID]; ok {
		uc.CreatedAt = existing.CreatedAt
	} else {
		uc.CreatedAt = now
	}
	uc.UpdatedAt = now
	m.items[uc.UserID] = *uc
	return nil
}

func (m *MemoryCredentialRepository) Get(ctx context.Context, userID string) (*domain.UserCredentials, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	uc, ok := m.items[userID]
	if !ok {
		return nil, domain.ErrCredentialsNotFound
	}
	return &uc, nil
}

func (m *MemoryCredentialRepository) Delete(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[userID]; !ok {
		return domain.ErrCredentialsNotFound
	}
	delete(m.items, userID)
	return nil
}

func (m *MemoryCredentialRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
