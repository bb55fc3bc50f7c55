package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shinyyama/listing-studio/internal/model"
)

var ErrSessionNotFound = errors.New("session not found")

type SessionRepository interface {
	Create(ctx context.Context, s *model.EditSession) error
	FindByID(ctx context.Context, id string) (*model.EditSession, error)
	Delete(ctx context.Context, id string) error
	DeleteIdle(ctx context.Context, before time.Time) ([]string, error)
	Count(ctx context.Context) int
}

type sessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*model.EditSession
}

func NewSessionRepository() SessionRepository {
	return &sessionRepository{sessions: make(map[string]*model.EditSession)}
}

func (r *sessionRepository) Create(ctx context.Context, s *model.EditSession) error {
	if s == nil || s.ID == "" {
		return errors.New("session id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.ID]; ok {
		return errors.New("session already exists")
	}
	r.sessions[s.ID] = s
	return nil
}

func (r *sessionRepository) FindByID(ctx context.Context, id string) (*model.EditSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (r *sessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

// DeleteIdle drops sessions whose last activity is before the cutoff. Sessions
// with a request in flight, or locked by a caller right now, are kept; the
// sweep never waits on a session lock.
func (r *sessionRepository) DeleteIdle(ctx context.Context, before time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed []string
	for id, s := range r.sessions {
		if !s.TryLock() {
			continue
		}
		idle := !s.InFlight && s.LastActivity.Before(before)
		s.Unlock()
		if idle {
			delete(r.sessions, id)
			removed = append(removed, id)
		}
	}
	return removed, nil
}

func (r *sessionRepository) Count(ctx context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
