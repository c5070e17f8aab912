// Package memory implements the storage repositories in process memory.
package memory

import (
	"context"
	"sync"

	"github.com/adanyl0v/go-task-api/internal/models"
	"github.com/adanyl0v/go-task-api/internal/storage"
)

type userRepository struct {
	mu         sync.RWMutex
	byID       map[string]*models.User
	byUsername map[string]string
}

func NewUserRepository() storage.UserRepository {
	return &userRepository{
		byID:       make(map[string]*models.User),
		byUsername: make(map[string]string),
	}
}

func (r *userRepository) CreateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byUsername[user.Username]; exists {
		return storage.ErrAlreadyExists
	}
	if _, exists := r.byID[user.ID]; exists {
		return storage.ErrAlreadyExists
	}

	stored := *user
	r.byID[user.ID] = &stored
	r.byUsername[user.Username] = user.ID
	return nil
}

func (r *userRepository) GetUserByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	found := *user
	return &found, nil
}

func (r *userRepository) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byUsername[username]
	if !ok {
		return nil, storage.ErrNotFound
	}
	found := *r.byID[id]
	return &found, nil
}
