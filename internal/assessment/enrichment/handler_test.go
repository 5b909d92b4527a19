package enrichment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"migratio/internal/assessment/models"
	"migratio/internal/assessment/ports/mocks"
	id "migratio/pkg/domain"
)

func newEvent(kind models.EventKind) models.Event {
	ev := models.NewEvent(kind, id.UserID(uuid.New()), id.NewSessionID(), time.Now())
	ev.QuestionID = "work_occupation_description"
	return ev
}

func TestHandler(t *testing.T) {
	nlpResult := models.NlpResult{Skills: []string{"management"}}

	tests := []struct {
		name string
		event   func() models.Event
		expect  func(ev models.Event, profiles *mocks.MockProfileService, nlp *mocks.MockNlpService)
		wantErr string
	}{
		{
			name: "answer recorded updates profile",
			event: func() models.Event {
				ev := newEvent(models.EventAnswerRecorded)
				ev.Answer = 42.0
				return ev
			},
			expect: func(ev models.Event, profiles *mocks.MockProfileService, _ *mocks.MockNlpService) {
				profiles.EXPECT().UpdateProfile(gomock.Any(), ev.UserID, ev.QuestionID, 42.0).Return(nil)
			},
		},
		{
			name: "nlp request analyzes then stores result",
			event: func() models.Event {
				ev := newEvent(models.EventNlpAnalysisRequested)
				ev.Text = "I manage people"
				return ev
			},
			expect: func(ev models.Event, profiles *mocks.MockProfileService, nlp *mocks.MockNlpService) {
				gomock.InOrder(
					nlp.EXPECT().AnalyzeText(gomock.Any(), "I manage people", ev.QuestionID).Return(nlpResult, nil),
					profiles.EXPECT().UpdateFromNlp(gomock.Any(), ev.UserID, ev.QuestionID, nlpResult).Return(nil),
				)
			},
		},
		{
			name: "nlp failure skips profile update",
			event: func() models.Event {
				return newEvent(models.EventNlpAnalysisRequested)
			},
			expect: func(_ models.Event, _ *mocks.MockProfileService, nlp *mocks.MockNlpService) {
				nlp.EXPECT().AnalyzeText(gomock.Any(), gomock.Any(), gomock.Any()).Return(models.NlpResult{}, errors.New("nlp down"))
			},
			wantErr: "analyze text",
		},
		{
			name: "scores are stored",
			event: func() models.Event {
				ev := newEvent(models.EventPreliminaryScoresComputed)
				ev.Scores = models.PreliminaryScores{models.ScoreKeyTopCountries: []string{"CA"}}
				return ev
			},
			expect: func(ev models.Event, profiles *mocks.MockProfileService, _ *mocks.MockNlpService) {
				profiles.EXPECT().UpdatePreliminaryScores(gomock.Any(), ev.UserID, ev.Scores).Return(errors.New("write failed"))
			},
			wantErr: "update preliminary scores",
		},
		{
			name: "unknown kind",
			event: func() models.Event {
				return newEvent("mystery")
			},
			expect:  func(models.Event, *mocks.MockProfileService, *mocks.MockNlpService) {},
			wantErr: "unknown event kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			profiles := mocks.NewMockProfileService(ctrl)
			nlp := mocks.NewMockNlpService(ctrl)
			ev := tt.event()
			tt.expect(ev, profiles, nlp)

			err := NewHandler(profiles, nlp, time.Second).Handle(context.Background(), ev)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestHandlerBoundsEachTask(t *testing.T) {
	ctrl := gomock.NewController(t)
	profiles := mocks.NewMockProfileService(ctrl)
	profiles.EXPECT().UpdateProfile(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ id.UserID, _ id.QuestionID, _ any) error {
			<-ctx.Done()
			return ctx.Err()
		})

	err := NewHandler(profiles, nil, 20*time.Millisecond).Handle(context.Background(), newEvent(models.EventAnswerRecorded))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
