package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"migratio/internal/assessment/catalog"
	"migratio/internal/assessment/models"
	"migratio/internal/assessment/ports/mocks"
	sessionstore "migratio/internal/assessment/store/session"
	id "migratio/pkg/domain"
	dErrors "migratio/pkg/domain-errors"
	"migratio/pkg/platform/sentinel"
)

type ServiceSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	profiles    *mocks.MockProfileService
	recommender *mocks.MockRecommendationService
	events      *mocks.MockEventEmitter
	sessions    *sessionstore.InMemoryStore
	ctx         context.Context
	userID      id.UserID

	mu             sync.Mutex
	profileAnswers map[id.QuestionID]any
	scores         models.PreliminaryScores
	scoresErr      error
	profileErr     error
	emitErr        error
	emitted        []models.Event
	scoredProfiles []*models.Profile
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.profiles = mocks.NewMockProfileService(s.ctrl)
	s.recommender = mocks.NewMockRecommendationService(s.ctrl)
	s.events = mocks.NewMockEventEmitter(s.ctrl)
	s.sessions = sessionstore.New()
	s.ctx = context.Background()
	s.userID = id.UserID(uuid.New())
	s.scores, s.scoresErr, s.profileErr, s.emitErr, s.emitted = nil, nil, nil, nil, nil
	s.profileAnswers, s.scoredProfiles = nil, nil

	s.profiles.EXPECT().GetProfile(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, userID id.UserID) (*models.Profile, error) {
			if s.profileErr != nil {
				return nil, s.profileErr
			}
			answers := map[id.QuestionID]any{}
			for k, v := range s.profileAnswers {
				answers[k] = v
			}
			return &models.Profile{UserID: userID, Answers: answers}, nil
		}).AnyTimes()
	s.recommender.EXPECT().PreliminaryScores(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, profile *models.Profile) (models.PreliminaryScores, error) {
			s.mu.Lock()
			s.scoredProfiles = append(s.scoredProfiles, profile)
			s.mu.Unlock()
			return s.scores, s.scoresErr
		}).AnyTimes()
	s.events.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, event models.Event) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.emitted = append(s.emitted, event)
			return s.emitErr
		}).AnyTimes()
}

func (s *ServiceSuite) newService(questions []models.Question, opts ...Option) *Service {
	cat := catalog.New(catalog.NewMemory(questions...), catalog.WithCountTTL(0))
	return New(cat, s.sessions, s.profiles, s.recommender, s.events, opts...)
}

func (s *ServiceSuite) stored(sessionID id.SessionID) *models.Session {
	sess, err := s.sessions.FindByIDForUser(s.ctx, sessionID, s.userID)
	s.Require().NoError(err)
	return sess
}

func (s *ServiceSuite) submit(svc *Service, sessionID id.SessionID, qid id.QuestionID, answer any) *models.SubmitResult {
	result, err := svc.SubmitAnswer(s.ctx, SubmitAnswerRequest{
		UserID:     s.userID,
		SessionID:  sessionID,
		QuestionID: qid,
		Answer:     answer,
	})
	s.Require().NoError(err)
	return result
}

func question(qid id.QuestionID, order int) models.Question {
	return models.Question{ID: qid, Text: string(qid), Type: models.QuestionTypeText, Order: order, IsActive: true}
}

func (s *ServiceSuite) TestStartSessionServesFirstQuestionByCatalogOrder() {
	svc := s.newService([]models.Question{question("A", 1), question("B", 2)})

	result, err := svc.StartSession(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Require().NotNil(result.CurrentQuestion)
	s.Equal(id.QuestionID("A"), result.CurrentQuestion.ID)
	s.False(result.IsComplete)
	s.False(result.Resumed)
	s.Equal(models.SessionStatusInProgress, result.Session.Status)

	sess := s.stored(result.Session.ID)
	s.Equal([]id.QuestionID{"B"}, sess.RemainingQuestionIDs)
	s.Equal(id.QuestionID("A"), sess.CurrentQuestionID)
	s.Equal("v2.0", sess.QuizVersion)
}

func (s *ServiceSuite) TestSubmitAnswerRuleAddsQuestion() {
	a := question("A", 1)
	a.Rules = []models.Rule{{Condition: `answer === "x"`, Action: models.RuleActionAdd, Questions: []id.QuestionID{"C"}}}
	svc := s.newService([]models.Question{a, question("B", 2), question("C", 3)})

	started, err := svc.StartSession(s.ctx, s.userID)
	s.Require().NoError(err)

	result := s.submit(svc, started.Session.ID, "A", "x")
	s.Require().NotNil(result.NextQuestion)
	s.False(result.IsComplete)

	sess := s.stored(started.Session.ID)
	pending := append([]id.QuestionID{result.NextQuestion.ID}, sess.RemainingQuestionIDs...)
	s.ElementsMatch([]id.QuestionID{"B", "C"}, pending)
	s.Equal(33, result.Progress)
}

func (s *ServiceSuite) TestSubmitLastQuestionCompletesSession() {
	svc := s.newService([]models.Question{question("Q", 1)})

	started, err := svc.StartSession(s.ctx, s.userID)
	s.Require().NoError(err)

	result := s.submit(svc, started.Session.ID, "Q", "done")
	s.True(result.IsComplete)
	s.Nil(result.NextQuestion)
	s.Equal(100, result.Progress)
	s.Nil(result.Recommendations)

	_, err = s.sessions.FindActiveByUser(s.ctx, s.userID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = svc.SubmitAnswer(s.ctx, SubmitAnswerRequest{UserID: s.userID, SessionID: started.Session.ID, QuestionID: "Q", Answer: "again"})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestRuleTargetingMissingQuestionIsSkipped() {
	a := question("A", 1)
	a.Rules = []models.Rule{{Condition: `answer === "x"`, Action: models.RuleActionAdd, Questions: []id.QuestionID{"Z"}}}
	inactive := question("Z", 9)
	inactive.IsActive = false
	svc := s.newService([]models.Question{a, question("B", 2), inactive})

	started, err := svc.StartSession(s.ctx, s.userID)
	s.Require().NoError(err)

	result := s.submit(svc, started.Session.ID, "A", "x")
	s.Require().NotNil(result.NextQuestion)
	s.Equal(id.QuestionID("B"), result.NextQuestion.ID)
	s.Empty(s.stored(started.Session.ID).RemainingQuestionIDs)
}

func (s *ServiceSuite) TestNumericFactorOnTextAnswerDoesNotMatch() {
	a := question("A", 1)
	a.Rules = []models.Rule{{Condition: `answer === "abc"`, Action: models.RuleActionAdd, Questions: []id.QuestionID{"C"}}}
	c := question("C", 3)
	c.RelevanceFactors = []models.RelevanceFactor{{ProfileKey: "A", Condition: models.FactorGreaterThan, Value: 10.0, Modifier: 100}}
	svc := s.newService([]models.Question{a, question("B", 2), c}, WithInitialQuestions(2))

	started, err := svc.StartSession(s.ctx, s.userID)
	s.Require().NoError(err)

	result := s.submit(svc, started.Session.ID, "A", "abc")
	s.Require().NotNil(result.NextQuestion)
	s.Equal(id.QuestionID("B"), result.NextQuestion.ID, "unmatched factor keeps the tie in input order")
	s.Equal([]id.QuestionID{"C"}, s.stored(started.Session.ID).RemainingQuestionIDs)
}

func (s *ServiceSuite) TestRemoveRuleSkipsQuestion() {
	a := question("A", 1)
	a.Rules = []models.Rule{{Condition: `answer === "no"`, Action: models.RuleActionRemove, Questions: []id.QuestionID{"B"}}}
	svc := s.newService([]models.Question{a, question("B", 2), question("C", 3)}, WithInitialQuestions(3))

	started, err := svc.StartSession(s.ctx, s.userID)
	s.Require().NoError(err)

	result := s.submit(svc, started.Session.ID, "A", "no")
	s.Require().NotNil(result.NextQuestion)
	s.Equal(id.QuestionID("C"), result.NextQuestion.ID)
	sess := s.stored(started.Session.ID)
	s.Equal([]id.QuestionID{"B"}, sess.SkippedQuestionIDs)

	s.Run("answering a skipped question takes it out of skipped", func() {
		s.submit(svc, started.Session.ID, "B", "anyway")
		sess := s.stored(started.Session.ID)
		s.Empty(sess.SkippedQuestionIDs)
		s.True(sess.HasAnswered("B"))
		assertDisjoint(s.T(), sess)
	})
}

func (s *ServiceSuite) TestResumeRequeuesServedQuestionAndPersistsOrder() {
	c := question("C", 3)
	c.Section = "work_history"
	svc := s.newService([]models.Question{question("A", 1), question("B", 2), c}, WithInitialQuestions(3))

	first, err := svc.StartSession(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(id.QuestionID("A"), first.CurrentQuestion.ID)

	s.scores = models.PreliminaryScores{models.ScoreKeyTopPathwayTypes: []string{"Work"}}
	resumed, err := svc.StartSession(s.ctx, s.userID)
	s.Require().NoError(err)
	s.True(resumed.Resumed)
	s.Equal(first.Session.ID, resumed.Session.ID)
	s.Equal(id.QuestionID("C"), resumed.CurrentQuestion.ID)

	sess := s.stored(first.Session.ID)
	s.Equal([]id.QuestionID{"A", "B"}, sess.RemainingQuestionIDs)
	s.Equal(id.QuestionID("C"), sess.CurrentQuestionID)

	s.Run("resuming again without changes is stable", func() {
		again, err := svc.StartSession(s.ctx, s.userID)
		s.Require().NoError(err)
		s.Equal(id.QuestionID("C"), again.CurrentQuestion.ID)
		s.Equal([]id.QuestionID{"A", "B"}, s.stored(first.Session.ID).RemainingQuestionIDs)
	})
}

func (s *ServiceSuite) TestAnsweringAnotherQuestionRequeuesServedOne() {
	svc := s.newService([]models.Question{question("A", 1), question("B", 2), question("C", 3)}, WithInitialQuestions(3))

	started, err := svc.StartSession(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(id.QuestionID("A"), started.CurrentQuestion.ID)

	result := s.submit(svc, started.Session.ID, "B", "skipping ahead")
	s.Require().NotNil(result.NextQuestion)
	s.Equal(id.QuestionID("A"), result.NextQuestion.ID)
	s.Equal([]id.QuestionID{"C"}, s.stored(started.Session.ID).RemainingQuestionIDs)
}

func (s *ServiceSuite) TestEmptyCatalogStoresNoSession() {
	svc := s.newService(nil)

	for range 2 {
		result, err := svc.StartSession(s.ctx, s.userID)
		s.Require().NoError(err)
		s.True(result.IsComplete)
		s.False(result.Resumed)
		s.Nil(result.CurrentQuestion)
		s.Equal(models.SessionStatusInProgress, result.Session.Status)
	}

	_, err := s.sessions.FindActiveByUser(s.ctx, s.userID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *ServiceSuite) TestResumeWithNothingLeftStaysInProgress() {
	cat := catalog.New(catalog.NewMemory(question("A", 1), question("B", 2)), catalog.WithCountTTL(0))
	svc := New(cat, s.sessions, s.profiles, s.recommender, s.events)

	started, err := svc.StartSession(s.ctx, s.userID)
	s.Require().NoError(err)

	var gone []models.Question
	for _, qid := range []id.QuestionID{"A", "B"} {
		q := question(qid, 1)
		q.IsActive = false
		gone = append(gone, q)
	}
	s.Require().NoError(cat.Upsert(s.ctx, gone))

	for range 2 {
		resumed, err := svc.StartSession(s.ctx, s.userID)
		s.Require().NoError(err)
		s.True(resumed.Resumed)
		s.True(resumed.IsComplete)
		s.Nil(resumed.CurrentQuestion)
		s.Equal(started.Session.ID, resumed.Session.ID)
	}
	s.Equal(models.SessionStatusInProgress, s.stored(started.Session.ID).Status)
}

func (s *ServiceSuite) TestRulesIgnoreProfileAnswersOutsideSession() {
	s.profileAnswers = map[id.QuestionID]any{"A": "x"}
	q := question("Q", 1)
	q.Rules = []models.Rule{{Condition: `currentAnswers.A === "x"`, Action: models.RuleActionAdd, Questions: []id.QuestionID{"C"}}}
	svc := s.newService([]models.Question{q, question("B", 2), question("C", 3)})

	started, err := svc.StartSession(s.ctx, s.userID)
	s.Require().NoError(err)

	result := s.submit(svc, started.Session.ID, "Q", "anything")
	s.Require().NotNil(result.NextQuestion)
	s.Equal(id.QuestionID("B"), result.NextQuestion.ID)

	sess := s.stored(started.Session.ID)
	s.Empty(sess.RemainingQuestionIDs, "rule must not fire on an answer this session never recorded")
	s.Len(sess.Responses, 1)

	// The recommender still sees the full profile.
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Require().NotEmpty(s.scoredProfiles)
	last := s.scoredProfiles[len(s.scoredProfiles)-1]
	s.Equal("x", last.Answers["A"])
	s.Equal("anything", last.Answers["Q"])
}

func (s *ServiceSuite) TestResumeScoresOnlySessionAnswers() {
	s.profileAnswers = map[id.QuestionID]any{"A": "x"}
	c := question("C", 3)
	c.RelevanceFactors = []models.RelevanceFactor{{ProfileKey: "A", Condition: models.FactorEquals, Value: "x", Modifier: 10}}
	svc := s.newService([]models.Question{question("Q", 1), question("B", 2), c}, WithInitialQuestions(3))

	started, err := svc.StartSession(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(id.QuestionID("Q"), started.CurrentQuestion.ID)

	resumed, err := svc.StartSession(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(id.QuestionID("Q"), resumed.CurrentQuestion.ID)
	s.Equal([]id.QuestionID{"B", "C"}, s.stored(started.Session.ID).RemainingQuestionIDs)
}

func (s *ServiceSuite) TestStartSessionDropsQuestionsThatLeftTheCatalog() {
	store := catalog.NewMemory(question("A", 1), question("B", 2))
	cat := catalog.New(store, catalog.WithCountTTL(0))
	svc := New(cat, s.sessions, s.profiles, s.recommender, s.events)

	started, err := svc.StartSession(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(id.QuestionID("A"), started.CurrentQuestion.ID)

	gone := question("A", 1)
	gone.IsActive = false
	s.Require().NoError(cat.Upsert(s.ctx, []models.Question{gone}))

	resumed, err := svc.StartSession(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(id.QuestionID("B"), resumed.CurrentQuestion.ID)
	s.Equal([]id.QuestionID{"A"}, s.stored(started.Session.ID).RemainingQuestionIDs)

	result := s.submit(svc, started.Session.ID, "B", "last")
	s.True(result.IsComplete)
	s.Nil(result.NextQuestion)
	s.Equal(100, result.Progress)
}

func (s *ServiceSuite) TestSubmitAnswerErrors() {
	svc := s.newService([]models.Question{question("A", 1), question("B", 2)})
	started, err := svc.StartSession(s.ctx, s.userID)
	s.Require().NoError(err)

	tests := []struct {
		name string
		req  SubmitAnswerRequest
		code dErrors.Code
	}{
		{
			name: "missing user",
			req:  SubmitAnswerRequest{SessionID: started.Session.ID, QuestionID: "A"},
			code: dErrors.CodeBadRequest,
		},
		{
			name: "missing question",
			req:  SubmitAnswerRequest{UserID: s.userID, SessionID: started.Session.ID},
			code: dErrors.CodeBadRequest,
		},
		{
			name: "unknown session",
			req:  SubmitAnswerRequest{UserID: s.userID, SessionID: id.NewSessionID(), QuestionID: "A"},
			code: dErrors.CodeNotFound,
		},
		{
			name: "session of another user",
			req:  SubmitAnswerRequest{UserID: id.UserID(uuid.New()), SessionID: started.Session.ID, QuestionID: "A"},
			code: dErrors.CodeNotFound,
		},
		{
			name: "question not in catalog",
			req:  SubmitAnswerRequest{UserID: s.userID, SessionID: started.Session.ID, QuestionID: "nope"},
			code: dErrors.CodeValidation,
		},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := svc.SubmitAnswer(s.ctx, tt.req)
			s.Require().Error(err)
			s.Equal(tt.code, dErrors.CodeOf(err))
		})
	}
	s.Empty(s.emitted)
}

func (s *ServiceSuite) TestEnrichmentEventsFollowSave() {
	a := question("A", 1)
	a.RequiresNlp = true
	svc := s.newService([]models.Question{a, question("B", 2)})
	s.scores = models.PreliminaryScores{models.ScoreKeyTopCountries: []string{"CA"}}

	started, err := svc.StartSession(s.ctx, s.userID)
	s.Require().NoError(err)
	s.submit(svc, started.Session.ID, "A", "I manage a team")

	s.Require().Len(s.emitted, 3)
	s.Equal(models.EventAnswerRecorded, s.emitted[0].Kind)
	s.Equal("I manage a team", s.emitted[0].Answer)
	s.Equal(models.EventNlpAnalysisRequested, s.emitted[1].Kind)
	s.Equal("I manage a team", s.emitted[1].Text)
	s.Equal(models.EventPreliminaryScoresComputed, s.emitted[2].Kind)
	s.Equal(s.scores, s.emitted[2].Scores)
	for _, ev := range s.emitted {
		s.Equal(s.userID, ev.UserID)
		s.Equal(started.Session.ID, ev.SessionID)
		s.NotEmpty(ev.ID)
	}

	s.Run("no nlp event for plain questions", func() {
		s.emitted = nil
		s.submit(svc, started.Session.ID, "B", "plain")
		kinds := make([]models.EventKind, 0, len(s.emitted))
		for _, ev := range s.emitted {
			kinds = append(kinds, ev.Kind)
		}
		s.Equal([]models.EventKind{models.EventAnswerRecorded, models.EventPreliminaryScoresComputed}, kinds)
	})
}

func (s *ServiceSuite) TestCollaboratorFailuresDoNotAffectResult() {
	a := question("A", 1)
	a.RequiresNlp = true
	svc := s.newService([]models.Question{a, question("B", 2)})

	started, err := svc.StartSession(s.ctx, s.userID)
	s.Require().NoError(err)

	s.profileErr = errors.New("profile service down")
	s.scoresErr = errors.New("recommendation service down")
	s.emitErr = sentinel.ErrUnavailable

	result := s.submit(svc, started.Session.ID, "A", "text")
	s.Require().NotNil(result.NextQuestion)
	s.Equal(id.QuestionID("B"), result.NextQuestion.ID)
	s.Equal(50, result.Progress)
	s.Len(s.emitted, 2, "no scores event without scores")
	s.True(s.stored(started.Session.ID).HasAnswered("A"))
}

func (s *ServiceSuite) TestCompletionHook() {
	hook := mocks.NewMockCompletionHook(s.ctrl)
	svc := s.newService([]models.Question{question("Q", 1)}, WithCompletionHook(hook))
	recs := []models.Recommendation{{PathwayType: "Work", Country: "CA", Score: 1}}

	started, err := svc.StartSession(s.ctx, s.userID)
	s.Require().NoError(err)

	hook.EXPECT().Recommendations(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, sess *models.Session, profile *models.Profile) ([]models.Recommendation, error) {
			s.Equal(models.SessionStatusCompleted, sess.Status)
			s.Equal("yes", profile.Answers["Q"])
			return recs, nil
		})
	result := s.submit(svc, started.Session.ID, "Q", "yes")
	s.True(result.IsComplete)
	s.Equal(recs, result.Recommendations)
}

func (s *ServiceSuite) TestCompletionHookFailureLeavesNoRecommendations() {
	hook := mocks.NewMockCompletionHook(s.ctrl)
	svc := s.newService([]models.Question{question("Q", 1)}, WithCompletionHook(hook))

	started, err := svc.StartSession(s.ctx, s.userID)
	s.Require().NoError(err)

	hook.EXPECT().Recommendations(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))
	result := s.submit(svc, started.Session.ID, "Q", "yes")
	s.True(result.IsComplete)
	s.Nil(result.Recommendations)
}

func (s *ServiceSuite) TestConcurrentSubmissionsAreSerialized() {
	svc := s.newService([]models.Question{question("A", 1), question("B", 2), question("C", 3)}, WithInitialQuestions(3))
	started, err := svc.StartSession(s.ctx, s.userID)
	s.Require().NoError(err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, qid := range []id.QuestionID{"A", "B"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.SubmitAnswer(s.ctx, SubmitAnswerRequest{
				UserID:     s.userID,
				SessionID:  started.Session.ID,
				QuestionID: qid,
				Answer:     "v",
			})
		}()
	}
	wg.Wait()
	s.Require().NoError(errs[0])
	s.Require().NoError(errs[1])

	sess := s.stored(started.Session.ID)
	s.Len(sess.Responses, 2)
	s.Equal(id.QuestionID("C"), sess.CurrentQuestionID)
	s.Empty(sess.RemainingQuestionIDs)
	assertDisjoint(s.T(), sess)
}

func (s *ServiceSuite) TestStaleSaveReturnsConflict() {
	repo := mocks.NewMockSessionRepository(s.ctrl)
	cat := catalog.New(catalog.NewMemory(question("A", 1), question("B", 2)))
	svc := New(cat, repo, s.profiles, s.recommender, s.events)

	sess := models.NewSession(s.userID, "v2.0", []id.QuestionID{"B"}, time.Now())
	sess.CurrentQuestionID = "A"
	sess.Version = 3
	repo.EXPECT().FindByIDForUser(gomock.Any(), sess.ID, s.userID).Return(sess.Clone(), nil)
	repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(sentinel.ErrConflict)

	_, err := svc.SubmitAnswer(s.ctx, SubmitAnswerRequest{UserID: s.userID, SessionID: sess.ID, QuestionID: "A", Answer: 1})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.ErrorIs(err, sentinel.ErrConflict)
	s.Empty(s.emitted, "rejected transactions emit nothing")
}

func (s *ServiceSuite) TestCancelledContextTimesOut() {
	svc := s.newService([]models.Question{question("A", 1)})
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := svc.StartSession(ctx, s.userID)
	s.Require().Error(err)
	s.Equal(dErrors.CodeTimeout, dErrors.CodeOf(err))
}

func (s *ServiceSuite) TestStartSessionRequiresUser() {
	svc := s.newService([]models.Question{question("A", 1)})
	_, err := svc.StartSession(s.ctx, id.UserID{})
	s.Equal(dErrors.CodeBadRequest, dErrors.CodeOf(err))
}

// TestSeedCatalogWalkthrough answers every served question of the bundled
// catalog and checks progress and list invariants at each step.
func TestSeedCatalogWalkthrough(t *testing.T) {
	spec, _, err := catalog.DefaultSpec()
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	profiles := mocks.NewMockProfileService(ctrl)
	profiles.EXPECT().GetProfile(gomock.Any(), gomock.Any()).Return(&models.Profile{}, nil).AnyTimes()
	recommender := mocks.NewMockRecommendationService(ctrl)
	recommender.EXPECT().PreliminaryScores(gomock.Any(), gomock.Any()).Return(
		models.PreliminaryScores{models.ScoreKeyTopPathwayTypes: []any{"Study", "Work"}}, nil).AnyTimes()
	events := mocks.NewMockEventEmitter(ctrl)
	events.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	sessions := sessionstore.New()
	svc := New(catalog.New(catalog.NewMemory(spec.Questions...)), sessions, profiles, recommender, events)
	ctx := context.Background()
	userID := id.UserID(uuid.New())

	started, err := svc.StartSession(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, started.CurrentQuestion)
	assert.Equal(t, id.QuestionID("personal_age"), started.CurrentQuestion.ID)

	current := started.CurrentQuestion
	progress := 0
	for step := 0; current != nil; step++ {
		require.Less(t, step, len(spec.Questions), "walkthrough did not terminate")

		result, err := svc.SubmitAnswer(ctx, SubmitAnswerRequest{
			UserID:     userID,
			SessionID:  started.Session.ID,
			QuestionID: current.ID,
			Answer:     sampleAnswer(current),
		})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, result.Progress, progress, "progress decreased at %s", current.ID)
		progress = result.Progress

		if result.IsComplete {
			assert.Nil(t, result.NextQuestion)
			break
		}
		sess, err := sessions.FindByIDForUser(ctx, started.Session.ID, userID)
		require.NoError(t, err)
		assertDisjoint(t, sess)
		current = result.NextQuestion
	}

	_, err = sessions.FindActiveByUser(ctx, userID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func sampleAnswer(q *models.Question) any {
	switch q.Type {
	case models.QuestionTypeNumber:
		return 24
	case models.QuestionTypeSingleChoice:
		if len(q.Options) > 0 {
			return q.Options[0].Value
		}
	case models.QuestionTypeMultipleChoice:
		if len(q.Options) > 0 {
			return []any{q.Options[0].Value}
		}
	case models.QuestionTypeBoolean:
		return true
	case models.QuestionTypeDate:
		return "2020-01-01"
	}
	return "I manage a small team of engineers"
}

func assertDisjoint(t *testing.T, sess *models.Session) {
	t.Helper()
	seen := make(map[id.QuestionID]string)
	mark := func(qid id.QuestionID, where string) {
		if prev, ok := seen[qid]; ok {
			t.Errorf("question %s is in both %s and %s", qid, prev, where)
		}
		seen[qid] = where
	}
	for _, r := range sess.Responses {
		mark(r.QuestionID, "responses")
	}
	for _, qid := range sess.RemainingQuestionIDs {
		mark(qid, "remaining")
	}
	for _, qid := range sess.SkippedQuestionIDs {
		mark(qid, "skipped")
	}
	if sess.CurrentQuestionID != "" {
		mark(sess.CurrentQuestionID, "current")
	}
}
