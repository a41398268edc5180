package reset

import (
	"context"
	"sync"
	"time"

	"github.com/fumble-dev/hire-me/internal/domain"
	"github.com/fumble-dev/hire-me/internal/event"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User // keyed by email

	getErr    error
	updateErr error
	updates   map[string]string // email -> new hash
}

func newFakeUserRepo(users ...domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]domain.User{}, updates: map[string]string{}}
	for _, u := range users {
		r.users[u.Email] = u
	}
	return r
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.getErr != nil {
		return domain.User{}, r.getErr
	}
	u, ok := r.users[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (r *fakeUserRepo) UpdatePasswordHash(_ context.Context, email, newHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.users[email]; !ok {
		return domain.ErrUserNotFound()
	}
	r.updates[email] = newHash
	return nil
}

type fakeHasher struct {
	err error
}

func (h *fakeHasher) Hash(password string) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	return "hashed:" + password, nil
}

// fakeSigner emits deterministic tokens and verifies only the ones it
// issued itself.
type fakeSigner struct {
	mu      sync.Mutex
	signErr error
	issued  map[string]string // token -> email
	seq     int
}

func newFakeSigner() *fakeSigner {
	return &fakeSigner{issued: map[string]string{}}
}

func (s *fakeSigner) SignResetToken(email string, _ time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.signErr != nil {
		return "", s.signErr
	}
	s.seq++
	token := "tok-" + email + "-" + string(rune('0'+s.seq))
	s.issued[token] = email
	return token, nil
}

func (s *fakeSigner) VerifyResetToken(token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.issued[token]
	if !ok {
		return "", domain.ErrResetSignatureInvalid(nil)
	}
	return email, nil
}

type fakeResetStore struct {
	mu      sync.Mutex
	entries map[string]string // email -> token

	saveErr   error
	getErr    error
	deleteErr error
}

func newFakeResetStore() *fakeResetStore {
	return &fakeResetStore{entries: map[string]string{}}
}

func (s *fakeResetStore) Save(_ context.Context, email, token string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.entries[email] = token
	return nil
}

func (s *fakeResetStore) Get(_ context.Context, email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", s.getErr
	}
	token, ok := s.entries[email]
	if !ok {
		return "", domain.ErrResetAssociationMissing()
	}
	return token, nil
}

func (s *fakeResetStore) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.entries, email)
	return nil
}

type fakePublisher struct {
	mu        sync.Mutex
	published []event.Envelope
	err       error
}

func (p *fakePublisher) Publish(_ context.Context, evt event.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, evt)
	return nil
}

func (p *fakePublisher) events() []event.Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]event.Envelope, len(p.published))
	copy(out, p.published)
	return out
}
