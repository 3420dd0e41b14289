package repo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryUserRepository keeps users in process memory. It backs local runs
// without Postgres (DATABASE_URL=memory) and the handler tests.
type MemoryUserRepository struct {
	mu     sync.Mutex
	nextID int
	users  map[int]User
	hashes map[int]string
}

func NewMemoryUserDB() *MemoryUserRepository {
	return &MemoryUserRepository{
		nextID: 1,
		users:  make(map[int]User),
		hashes: make(map[int]string),
	}
}

func (r *MemoryUserRepository) CreateUser(ctx context.Context, login, email, password string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Login == login || u.Email == email {
			return 0, fmt.Errorf("user %q already exists", login)
		}
	}
	id := r.nextID
	r.nextID++
	r.users[id] = User{ID: id, Login: login, Email: email, CreatedAt: time.Now()}
	r.hashes[id] = password
	return id, nil
}

func (r *MemoryUserRepository) GetBylogin(ctx context.Context, login string) (int, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, u := range r.users {
		if u.Login == login && !u.Archived {
			return id, r.hashes[id], nil
		}
	}
	return 0, "", ErrNotFound
}

func (r *MemoryUserRepository) GetUser(ctx context.Context, id int) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *MemoryUserRepository) ListUsers(ctx context.Context, pendingOnly bool) ([]User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var users []User
	for _, u := range r.users {
		if pendingOnly && (u.Approved || u.Archived) {
			continue
		}
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *MemoryUserRepository) UpdateUser(ctx context.Context, id int, upd UserUpdate) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	if upd.Approved != nil {
		if *upd.Approved && !u.Approved {
			now := time.Now()
			u.ApprovedAt = &now
		} else if !*upd.Approved {
			u.ApprovedAt = nil
		}
		u.Approved = *upd.Approved
	}
	if upd.Admin != nil {
		u.Admin = *upd.Admin
	}
	if upd.Archived != nil {
		u.Archived = *upd.Archived
	}
	r.users[id] = u
	return u, nil
}

func (r *MemoryUserRepository) Onboard(ctx context.Context, id int, name, institution string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	if name != "" {
		u.Name = name
	}
	if institution != "" {
		u.Institution = institution
	}
	u.Onboarded = true
	r.users[id] = u
	return u, nil
}
