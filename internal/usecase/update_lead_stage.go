package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/xavierca1/leadhub/internal/entity"
)

const OriginStageUpdate = "STAGE_UPDATE"

type UpdateLeadStageInput struct {
	LeadID string
	Stage  string
}

type UpdateLeadStageUseCase struct {
	Repo   entity.LeadRepositoryInterface
	Events EventPublisher
	Logger *zap.Logger
}

func NewUpdateLeadStageUseCase(repo entity.LeadRepositoryInterface, events EventPublisher, logger *zap.Logger) *UpdateLeadStageUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UpdateLeadStageUseCase{Repo: repo, Events: events, Logger: logger}
}

// Execute move o lead para o novo stage. Erros: entity.ErrInvalidStage,
// entity.ErrLeadNotFound e entity.ErrInvalidStageTransition.
func (uc *UpdateLeadStageUseCase) Execute(ctx context.Context, input UpdateLeadStageInput) (*entity.Lead, error) {
	stage := strings.ToLower(strings.TrimSpace(input.Stage))
	if !entity.IsValidStage(stage) {
		return nil, fmt.Errorf("%w: %q", entity.ErrInvalidStage, input.Stage)
	}

	lead, err := uc.Repo.FindByID(ctx, input.LeadID)
	if err != nil {
		return nil, err
	}

	from := lead.Stage
	if from == stage {
		return lead, nil
	}
	if !entity.CanTransition(from, stage) {
		return nil, fmt.Errorf("%w: %s -> %s", entity.ErrInvalidStageTransition, from, stage)
	}

	if err := uc.Repo.UpdateStage(ctx, lead.ID, stage); err != nil {
		return nil, fmt.Errorf("failed to update stage: %w", err)
	}
	lead.Stage = stage

	if uc.Events != nil {
		event := entity.NewLeadEvent(entity.EventLeadStageChanged, OriginStageUpdate, lead)
		event.FromStage = from
		if err := uc.Events.PublishLeadEvent(ctx, event); err != nil {
			uc.Logger.Warn("⚠️ stage atualizado, mas evento não publicado",
				zap.String("lead_id", lead.ID), zap.Error(err))
		}
	}

	uc.Logger.Info("🔄 stage atualizado",
		zap.String("lead_id", lead.ID),
		zap.String("from", from),
		zap.String("to", stage),
	)
	return lead, nil
}
