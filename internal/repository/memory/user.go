package memory

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"navexpo/internal/domain"
)

type userRepository struct {
	store *Store
}

func NewUserRepository(store *Store) domain.UserRepository {
	return &userRepository{store: store}
}

// emailTaken reports whether another user already owns email. Caller holds the lock.
func (s *Store) emailTaken(email, exceptID string) bool {
	for _, u := range s.users {
		if u.Email == email && u.ID != exceptID {
			return true
		}
	}
	return false
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emailTaken(u.Email, "") {
		return domain.ErrDuplicateEmail
	}
	u.ID = uuid.NewString()
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, err
	}
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *userRepository) List(ctx context.Context, params domain.PaginationParams) ([]*domain.User, int, error) {
	if err := checkCtx(ctx); err != nil {
		return nil, 0, err
	}
	s := r.store
	s.mu.RLock()
	all := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		all = append(all, &cp)
	}
	s.mu.RUnlock()

	slices.SortFunc(all, func(a, b *domain.User) int { return a.CreatedAt.Compare(b.CreatedAt) })
	start, end := params.Window(len(all))
	return all[start:end], len(all), nil
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.users[u.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if s.emailTaken(u.Email, u.ID) {
		return domain.ErrDuplicateEmail
	}
	cur.Name = u.Name
	cur.Email = u.Email
	cur.Age = u.Age
	cur.Role = u.Role
	cur.UpdatedAt = u.UpdatedAt
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	if err := checkCtx(ctx); err != nil {
		return err
	}
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.users, id)
	return nil
}
