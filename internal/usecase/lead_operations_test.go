package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xavierca1/leadhub/internal/entity"
)

type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) Upsert(ctx context.Context, lead *entity.Lead) (bool, error) {
	args := m.Called(ctx, lead)
	return args.Bool(0), args.Error(1)
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) UpdateStage(ctx context.Context, id, stage string) error {
	return m.Called(ctx, id, stage).Error(0)
}

func (m *MockLeadRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func validCaptureInput() CaptureLeadInput {
	return CaptureLeadInput{
		Name:   "  Ana Souza ",
		Email:  "Ana@Example.com",
		Phone:  "+55 11 99999-0000",
		Source: "landing-page",
	}
}

func TestCaptureLeadCreatesAndPublishes(t *testing.T) {
	repo := new(MockLeadRepository)
	events := new(MockEventPublisher)

	repo.On("Upsert", mock.Anything, mock.MatchedBy(func(l *entity.Lead) bool {
		return l.Email == "ana@example.com" && l.Name == "Ana Souza" && l.Stage == entity.StageGenerated
	})).Return(true, nil)
	events.On("PublishLeadEvent", mock.Anything, mock.MatchedBy(func(e entity.LeadEvent) bool {
		return e.Type == entity.EventLeadCreated && e.Origin == OriginCapture
	})).Return(nil)

	uc := NewCaptureLeadUseCase(repo, events, false, zap.NewNop())
	out, err := uc.Execute(context.Background(), validCaptureInput())

	require.NoError(t, err)
	assert.True(t, out.Created)
	assert.NotEmpty(t, out.ID)
	repo.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestCaptureLeadValidation(t *testing.T) {
	repo := new(MockLeadRepository)
	uc := NewCaptureLeadUseCase(repo, nil, false, zap.NewNop())

	input := validCaptureInput()
	input.Email = "not-an-email"
	input.Priority = "whenever"

	_, err := uc.Execute(context.Background(), input)

	require.True(t, IsDomainError(err))
	assert.Contains(t, err.Error(), "email")
	assert.Contains(t, err.Error(), "priority")
	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestCaptureLeadCompensatesWhenEventRequired(t *testing.T) {
	repo := new(MockLeadRepository)
	events := new(MockEventPublisher)

	repo.On("Upsert", mock.Anything, mock.Anything).Return(true, nil)
	repo.On("Delete", mock.Anything, mock.Anything).Return(nil).Once()
	events.On("PublishLeadEvent", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	uc := NewCaptureLeadUseCase(repo, events, true, zap.NewNop())
	_, err := uc.Execute(context.Background(), validCaptureInput())

	require.Error(t, err)
	assert.True(t, IsTechnicalError(err))
	repo.AssertExpectations(t)
}

func TestCaptureLeadEventFailureTolerated(t *testing.T) {
	repo := new(MockLeadRepository)
	events := new(MockEventPublisher)

	repo.On("Upsert", mock.Anything, mock.Anything).Return(true, nil)
	events.On("PublishLeadEvent", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	uc := NewCaptureLeadUseCase(repo, events, false, zap.NewNop())
	out, err := uc.Execute(context.Background(), validCaptureInput())

	require.NoError(t, err)
	assert.True(t, out.Created)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestCaptureLeadExistingDoesNotPublish(t *testing.T) {
	repo := new(MockLeadRepository)
	events := new(MockEventPublisher)
	repo.On("Upsert", mock.Anything, mock.Anything).Return(false, nil)

	uc := NewCaptureLeadUseCase(repo, events, true, zap.NewNop())
	out, err := uc.Execute(context.Background(), validCaptureInput())

	require.NoError(t, err)
	assert.False(t, out.Created)
	events.AssertNotCalled(t, "PublishLeadEvent", mock.Anything, mock.Anything)
}

func TestUpdateLeadStage(t *testing.T) {
	lead := func() *entity.Lead {
		l := entity.NewLead("Ana", "ana@example.com", "+5511999990000")
		l.ID = "lead-1"
		return l
	}

	t.Run("valid transition", func(t *testing.T) {
		repo := new(MockLeadRepository)
		events := new(MockEventPublisher)
		repo.On("FindByID", mock.Anything, "lead-1").Return(lead(), nil)
		repo.On("UpdateStage", mock.Anything, "lead-1", entity.StageContacted).Return(nil)
		events.On("PublishLeadEvent", mock.Anything, mock.MatchedBy(func(e entity.LeadEvent) bool {
			return e.Type == entity.EventLeadStageChanged && e.FromStage == entity.StageGenerated && e.Stage == entity.StageContacted
		})).Return(nil)

		uc := NewUpdateLeadStageUseCase(repo, events, zap.NewNop())
		updated, err := uc.Execute(context.Background(), UpdateLeadStageInput{LeadID: "lead-1", Stage: "Contacted"})

		require.NoError(t, err)
		assert.Equal(t, entity.StageContacted, updated.Stage)
		events.AssertExpectations(t)
	})

	t.Run("invalid transition", func(t *testing.T) {
		repo := new(MockLeadRepository)
		repo.On("FindByID", mock.Anything, "lead-1").Return(lead(), nil)

		uc := NewUpdateLeadStageUseCase(repo, nil, zap.NewNop())
		_, err := uc.Execute(context.Background(), UpdateLeadStageInput{LeadID: "lead-1", Stage: entity.StageClosed})

		assert.ErrorIs(t, err, entity.ErrInvalidStageTransition)
		repo.AssertNotCalled(t, "UpdateStage", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown stage", func(t *testing.T) {
		repo := new(MockLeadRepository)
		uc := NewUpdateLeadStageUseCase(repo, nil, zap.NewNop())

		_, err := uc.Execute(context.Background(), UpdateLeadStageInput{LeadID: "lead-1", Stage: "archived"})

		assert.ErrorIs(t, err, entity.ErrInvalidStage)
		repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("lead not found", func(t *testing.T) {
		repo := new(MockLeadRepository)
		repo.On("FindByID", mock.Anything, "missing").Return(nil, entity.ErrLeadNotFound)

		uc := NewUpdateLeadStageUseCase(repo, nil, zap.NewNop())
		_, err := uc.Execute(context.Background(), UpdateLeadStageInput{LeadID: "missing", Stage: entity.StageLost})

		assert.ErrorIs(t, err, entity.ErrLeadNotFound)
	})
}

func TestTransactionRollsBackInReverse(t *testing.T) {
	var order []string
	record := func(name string) func(context.Context) error {
		return func(context.Context) error { order = append(order, name); return nil }
	}

	err := NewTransaction(zap.NewNop()).
		Step("a", record("a"), record("undo_a")).
		Step("b", record("b"), record("undo_b")).
		Step("no_undo", record("no_undo"), nil).
		Step("c", func(context.Context) error { return errors.New("boom") }, record("undo_c")).
		Execute(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 'c' failed")
	assert.Contains(t, err.Error(), "undid 2 of 3 steps")
	assert.Equal(t, []string{"a", "b", "no_undo", "undo_b", "undo_a"}, order)
}

func TestTransactionUndoSurvivesCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var undoErr error

	err := NewTransaction(nil).
		Step("a", func(context.Context) error { return nil }, func(ctx context.Context) error {
			undoErr = ctx.Err()
			return nil
		}).
		Step("b", func(context.Context) error { cancel(); return context.Canceled }, nil).
		Execute(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, undoErr)
}
