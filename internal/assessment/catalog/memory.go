package catalog

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"migratio/internal/assessment/models"
	id "migratio/pkg/domain"
	"migratio/pkg/platform/sentinel"
)

// MemoryStore keeps questions in process. Used by tests and by servers
// seeded from a file.
type MemoryStore struct {
	mu        sync.RWMutex
	questions map[id.QuestionID]models.Question
}

func NewMemory(questions ...models.Question) *MemoryStore {
	s := &MemoryStore{questions: make(map[id.QuestionID]models.Question, len(questions))}
	for _, q := range questions {
		s.questions[q.ID] = q
	}
	return s
}

func (s *MemoryStore) GetQuestion(_ context.Context, qid id.QuestionID) (*models.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[qid]
	if !ok || !q.IsActive {
		return nil, sentinel.ErrNotFound
	}
	return &q, nil
}

// InitialQuestionIDs returns up to limit active ids by catalog order, then id.
func (s *MemoryStore) InitialQuestionIDs(_ context.Context, limit int) ([]id.QuestionID, error) {
	s.mu.RLock()
	active := make([]models.Question, 0, len(s.questions))
	for _, q := range s.questions {
		if q.IsActive {
			active = append(active, q)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(active, func(a, b models.Question) int {
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if limit >= 0 && len(active) > limit {
		active = active[:limit]
	}
	ids := make([]id.QuestionID, len(active))
	for i, q := range active {
		ids[i] = q.ID
	}
	return ids, nil
}

func (s *MemoryStore) CountActive(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, q := range s.questions {
		if q.IsActive {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) Upsert(_ context.Context, questions []models.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range questions {
		s.questions[q.ID] = q
	}
	return nil
}
