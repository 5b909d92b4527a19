package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"migratio/internal/assessment/models"
	id "migratio/pkg/domain"
	"migratio/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = New()
	s.ctx = context.Background()
}

func newSession(userID id.UserID) *models.Session {
	return models.NewSession(userID, "v2.0", []id.QuestionID{"a", "b"}, time.Now())
}

func (s *InMemoryStoreSuite) TestCreate() {
	s.Run("one in-progress session per user", func() {
		userID := id.UserID(uuid.New())
		first := newSession(userID)
		s.Require().NoError(s.store.Create(s.ctx, first))
		s.Equal(int64(1), first.Version)

		err := s.store.Create(s.ctx, newSession(userID))
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("different users do not collide", func() {
		s.Require().NoError(s.store.Create(s.ctx, newSession(id.UserID(uuid.New()))))
		s.Require().NoError(s.store.Create(s.ctx, newSession(id.UserID(uuid.New()))))
	})
}

func (s *InMemoryStoreSuite) TestFind() {
	userID := id.UserID(uuid.New())
	sess := newSession(userID)
	s.Require().NoError(s.store.Create(s.ctx, sess))

	s.Run("active by user", func() {
		found, err := s.store.FindActiveByUser(s.ctx, userID)
		s.Require().NoError(err)
		s.Equal(sess.ID, found.ID)
	})

	s.Run("by id for owner", func() {
		found, err := s.store.FindByIDForUser(s.ctx, sess.ID, userID)
		s.Require().NoError(err)
		s.Equal([]id.QuestionID{"a", "b"}, found.RemainingQuestionIDs)
	})

	s.Run("by id for another user is not found", func() {
		_, err := s.store.FindByIDForUser(s.ctx, sess.ID, id.UserID(uuid.New()))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("no session for user", func() {
		_, err := s.store.FindActiveByUser(s.ctx, id.UserID(uuid.New()))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returned sessions are copies", func() {
		found, err := s.store.FindActiveByUser(s.ctx, userID)
		s.Require().NoError(err)
		found.RemainingQuestionIDs[0] = "mutated"

		again, err := s.store.FindActiveByUser(s.ctx, userID)
		s.Require().NoError(err)
		s.Equal(id.QuestionID("a"), again.RemainingQuestionIDs[0])
	})
}

func (s *InMemoryStoreSuite) TestSaveVersionCheck() {
	userID := id.UserID(uuid.New())
	sess := newSession(userID)
	s.Require().NoError(s.store.Create(s.ctx, sess))

	stale, err := s.store.FindActiveByUser(s.ctx, userID)
	s.Require().NoError(err)

	sess.RecordResponse("a", 30, time.Now())
	s.Require().NoError(s.store.Save(s.ctx, sess))
	s.Equal(int64(2), sess.Version)

	stale.RecordResponse("b", "x", time.Now())
	s.Require().ErrorIs(s.store.Save(s.ctx, stale), sentinel.ErrConflict)

	found, err := s.store.FindActiveByUser(s.ctx, userID)
	s.Require().NoError(err)
	s.True(found.HasAnswered("a"))
	s.False(found.HasAnswered("b"))
}

func (s *InMemoryStoreSuite) TestSaveUnknownSession() {
	err := s.store.Save(s.ctx, newSession(id.UserID(uuid.New())))
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestCompletedSessionReleasesUser() {
	userID := id.UserID(uuid.New())
	sess := newSession(userID)
	s.Require().NoError(s.store.Create(s.ctx, sess))
	s.Require().NoError(sess.Complete(time.Now()))
	s.Require().NoError(s.store.Save(s.ctx, sess))

	_, err := s.store.FindActiveByUser(s.ctx, userID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.FindByIDForUser(s.ctx, sess.ID, userID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	s.Require().NoError(s.store.Create(s.ctx, newSession(userID)))
}
