package userrepofake

import (
	"context"
	"sync"

	errs "github.com/sessionworks/go-session-server/internal/errors"
	"github.com/sessionworks/go-session-server/users"
)

var _ users.Repo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	byID   map[string]*users.User
	byMail map[string]string // email to user ID
	byName map[string]string // username to user ID
	lock   sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		byID:   make(map[string]*users.User),
		byMail: make(map[string]string),
		byName: make(map[string]string),
	}
}

func (r *FakeUserRepo) Insert(_ context.Context, user *users.User) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.byMail[user.Email]; ok {
		return errs.ErrUserExists
	}
	if _, ok := r.byName[user.Username]; ok {
		return errs.ErrUserExists
	}

	copied := *user
	r.byID[user.ID] = &copied
	r.byMail[user.Email] = user.ID
	r.byName[user.Username] = user.ID
	return nil
}

func (r *FakeUserRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *FakeUserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	r.lock.RLock()
	id, ok := r.byMail[email]
	r.lock.RUnlock()
	if !ok {
		return nil, errs.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *FakeUserRepo) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	r.lock.RLock()
	id, ok := r.byName[username]
	r.lock.RUnlock()
	if !ok {
		return nil, errs.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *FakeUserRepo) Delete(_ context.Context, id string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return errs.ErrNotFound
	}
	delete(r.byMail, user.Email)
	delete(r.byName, user.Username)
	delete(r.byID, id)
	return nil
}
