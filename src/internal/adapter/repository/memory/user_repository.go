package memory

import (
	"context"
	"time"

	"github.com/mani-labs/mani-banking/src/internal/domain"
)

type UserRepository struct {
	store *Store
}

func (r *UserRepository) Create(_ context.Context, user domain.User) (domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	user.ID = newID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.store.users[user.ID] = user

	return user, nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	user, ok := r.store.users[id]
	if !ok {
		return domain.User{}, domain.ErrRecordNotFound
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, user := range r.store.users {
		if normalize(user.Email) == normalize(email) {
			return user, nil
		}
	}
	return domain.User{}, domain.ErrRecordNotFound
}

func (r *UserRepository) GetByVerificationToken(_ context.Context, token string) (domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, user := range r.store.users {
		if user.EmailVerificationToken != nil && *user.EmailVerificationToken == token {
			return user, nil
		}
	}
	return domain.User{}, domain.ErrRecordNotFound
}

func (r *UserRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, user := range r.store.users {
		if normalize(user.Email) == normalize(email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepository) ExistsByUsername(_ context.Context, username string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, user := range r.store.users {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepository) MarkEmailVerified(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	user, ok := r.store.users[id]
	if !ok {
		return domain.ErrRecordNotFound
	}

	user.IsEmailVerified = true
	user.EmailVerificationToken = nil
	user.EmailVerificationExpires = nil
	user.UpdatedAt = time.Now().UTC()
	r.store.users[id] = user

	return nil
}
