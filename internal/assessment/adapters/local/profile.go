// Package local holds in-process implementations of the assessment
// collaborators. They back the memory deployment and tests; production
// wiring swaps them for the httpapi clients.
package local

import (
	"context"
	"maps"
	"sync"
	"time"

	"migratio/internal/assessment/models"
	"migratio/internal/assessment/ports"
	id "migratio/pkg/domain"
)

var _ ports.ProfileService = (*ProfileStore)(nil)

// ProfileStore keeps one profile per user in memory. Unknown users read as
// an empty profile.
type ProfileStore struct {
	mu       sync.RWMutex
	profiles map[id.UserID]*models.Profile
	now      func() time.Time
}

func NewProfileStore() *ProfileStore {
	return &ProfileStore{
		profiles: make(map[id.UserID]*models.Profile),
		now:      time.Now,
	}
}

func (s *ProfileStore) GetProfile(_ context.Context, userID id.UserID) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return &models.Profile{UserID: userID, Answers: map[id.QuestionID]any{}}, nil
	}
	return cloneProfile(p), nil
}

func (s *ProfileStore) UpdateProfile(_ context.Context, userID id.UserID, qid id.QuestionID, answer any) error {
	s.update(userID, func(p *models.Profile) { p.Answers[qid] = answer })
	return nil
}

func (s *ProfileStore) UpdateFromNlp(_ context.Context, userID id.UserID, qid id.QuestionID, result models.NlpResult) error {
	s.update(userID, func(p *models.Profile) {
		if p.NlpInsights == nil {
			p.NlpInsights = make(map[id.QuestionID]models.NlpResult)
		}
		p.NlpInsights[qid] = result
	})
	return nil
}

func (s *ProfileStore) UpdatePreliminaryScores(_ context.Context, userID id.UserID, scores models.PreliminaryScores) error {
	s.update(userID, func(p *models.Profile) { p.PreliminaryScores = maps.Clone(scores) })
	return nil
}

func (s *ProfileStore) update(userID id.UserID, fn func(*models.Profile)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		p = &models.Profile{UserID: userID, Answers: map[id.QuestionID]any{}}
		s.profiles[userID] = p
	}
	fn(p)
	p.UpdatedAt = s.now()
}

func cloneProfile(p *models.Profile) *models.Profile {
	c := *p
	c.Answers = maps.Clone(p.Answers)
	c.PreliminaryScores = maps.Clone(p.PreliminaryScores)
	c.NlpInsights = maps.Clone(p.NlpInsights)
	return &c
}
