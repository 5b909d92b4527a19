// Package session persists assessment sessions. Every backend enforces at
// most one in-progress session per user and an optimistic version check on
// Save.
package session

import (
	"context"
	"sync"

	"migratio/internal/assessment/models"
	id "migratio/pkg/domain"
	"migratio/pkg/platform/sentinel"
)

// InMemoryStore keeps sessions in process.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[id.SessionID]*models.Session
	active   map[id.UserID]id.SessionID
}

func New() *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[id.SessionID]*models.Session),
		active:   make(map[id.UserID]id.SessionID),
	}
}

// Create stores a new session at version 1. Returns sentinel.ErrConflict if
// the user already has one in progress.
func (s *InMemoryStore) Create(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.active[session.UserID]; ok {
		if cur, ok := s.sessions[existing]; ok && cur.IsInProgress() {
			return sentinel.ErrConflict
		}
	}
	session.Version = 1
	s.sessions[session.ID] = session.Clone()
	if session.IsInProgress() {
		s.active[session.UserID] = session.ID
	}
	return nil
}

func (s *InMemoryStore) FindActiveByUser(_ context.Context, userID id.UserID) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessionID, ok := s.active[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cur, ok := s.sessions[sessionID]
	if !ok || !cur.IsInProgress() {
		return nil, sentinel.ErrNotFound
	}
	return cur.Clone(), nil
}

// FindByIDForUser returns the session only when userID owns it and it is
// still in progress.
func (s *InMemoryStore) FindByIDForUser(_ context.Context, sessionID id.SessionID, userID id.UserID) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cur, ok := s.sessions[sessionID]
	if !ok || cur.UserID != userID || !cur.IsInProgress() {
		return nil, sentinel.ErrNotFound
	}
	return cur.Clone(), nil
}

// Save replaces the stored session if its version still matches and bumps
// session.Version. Returns sentinel.ErrConflict on a stale write.
func (s *InMemoryStore) Save(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.sessions[session.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if cur.Version != session.Version {
		return sentinel.ErrConflict
	}
	session.Version++
	s.sessions[session.ID] = session.Clone()
	if !session.IsInProgress() && s.active[session.UserID] == session.ID {
		delete(s.active, session.UserID)
	}
	return nil
}
