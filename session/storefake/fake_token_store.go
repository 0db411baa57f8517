package storefake

import (
	"context"
	"sync"

	errs "github.com/sessionworks/go-session-server/internal/errors"
	"github.com/sessionworks/go-session-server/session"
)

var _ session.TokenStore = (*FakeTokenStore)(nil)

// FakeTokenStore is an in-memory TokenStore. DeleteIfPresent holds the lock
// for the whole check-and-remove, matching the atomicity the real stores
// provide.
type FakeTokenStore struct {
	records map[string]*session.RefreshToken
	lock    sync.Mutex
}

func NewFakeTokenStore() *FakeTokenStore {
	return &FakeTokenStore{
		records: make(map[string]*session.RefreshToken),
	}
}

func (s *FakeTokenStore) Insert(_ context.Context, rec *session.RefreshToken) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	copied := *rec
	s.records[rec.Token] = &copied
	return nil
}

func (s *FakeTokenStore) Find(_ context.Context, value string) (*session.RefreshToken, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	rec, ok := s.records[value]
	if !ok {
		return nil, errs.ErrNotFound
	}
	copied := *rec
	return &copied, nil
}

func (s *FakeTokenStore) DeleteIfPresent(_ context.Context, value string) (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.records[value]; !ok {
		return false, nil
	}
	delete(s.records, value)
	return true, nil
}

// Len reports the number of stored records (test helper).
func (s *FakeTokenStore) Len() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.records)
}
