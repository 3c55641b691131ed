// Package memstore keeps pending challenges in process memory. It is the
// default driver and the right one for a single-instance deployment.
package memstore

import (
	"context"
	"sync"

	"github.com/satriajati/gerbang/internal/adminauth/entity"
	"github.com/satriajati/gerbang/internal/pkg/clock"
	"github.com/satriajati/gerbang/internal/pkg/goerror"
)

type Store struct {
	mu         sync.RWMutex
	challenges map[string]entity.OTPChallenge
	clock      clock.Clocker
}

func NewStore(clk clock.Clocker) *Store {
	return &Store{
		challenges: make(map[string]entity.OTPChallenge),
		clock:      clk,
	}
}

func (s *Store) GetChallenge(_ context.Context, identity string) (*entity.OTPChallenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chal, ok := s.challenges[identity]
	if !ok {
		return nil, goerror.ErrNotFound
	}

	return &chal, nil
}

func (s *Store) PutChallenge(_ context.Context, chal entity.OTPChallenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.challenges[chal.Identity] = chal
	return nil
}

func (s *Store) IncrementAttempts(_ context.Context, identity string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chal, ok := s.challenges[identity]
	if !ok {
		return 0, goerror.ErrNotFound
	}

	chal.Attempts++
	s.challenges[identity] = chal
	return chal.Attempts, nil
}

func (s *Store) DeleteChallenge(_ context.Context, identity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.challenges, identity)
	return nil
}

func (s *Store) DeleteExpired(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	deleted := 0
	for identity, chal := range s.challenges {
		if chal.Expired(now) {
			delete(s.challenges, identity)
			deleted++
		}
	}

	return deleted, nil
}
