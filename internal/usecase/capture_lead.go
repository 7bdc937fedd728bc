package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/xavierca1/leadhub/internal/entity"
)

const OriginCapture = "CAPTURE"

type CaptureLeadInput struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Organization string `json:"organization"`
	Requirement  string `json:"requirement"`
	Source       string `json:"source"`
	Priority     string `json:"priority"`
	Notes        string `json:"notes"`
}

type CaptureLeadOutput struct {
	ID      string `json:"id"`
	Created bool   `json:"created"`
	Msg     string `json:"message"`
}

type CaptureLeadUseCase struct {
	Repo   entity.LeadRepositoryInterface
	Events EventPublisher
	Logger *zap.Logger

	// RequireEvent desfaz a gravação quando o evento não pode ser publicado.
	RequireEvent bool
}

func NewCaptureLeadUseCase(repo entity.LeadRepositoryInterface, events EventPublisher, requireEvent bool, logger *zap.Logger) *CaptureLeadUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CaptureLeadUseCase{Repo: repo, Events: events, RequireEvent: requireEvent, Logger: logger}
}

func (uc *CaptureLeadUseCase) Execute(ctx context.Context, input CaptureLeadInput) (*CaptureLeadOutput, error) {
	if errs := ValidateCaptureLeadInput(input); len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		return nil, &DomainError{
			Code:    "VALIDATION_ERROR",
			Message: "validation failed: " + strings.Join(msgs, ", "),
		}
	}

	lead := entity.NewLead(cleanCell(input.Name), input.Email, strings.TrimSpace(input.Phone))
	lead.Organization = cleanCell(input.Organization)
	lead.Requirement = strings.TrimSpace(input.Requirement)
	lead.Source = cleanCell(input.Source)
	lead.Priority = strings.ToLower(strings.TrimSpace(input.Priority))
	lead.Notes = strings.TrimSpace(input.Notes)
	lead.ApplyDefaults()

	var created bool
	upsert := func(ctx context.Context) error {
		var err error
		created, err = uc.Repo.Upsert(ctx, lead)
		return err
	}
	deleteCreated := func(ctx context.Context) error {
		if !created {
			return nil
		}
		return uc.Repo.Delete(ctx, lead.ID)
	}
	publish := func(ctx context.Context) error {
		if !created || uc.Events == nil {
			return nil
		}
		err := uc.Events.PublishLeadEvent(ctx, entity.NewLeadEvent(entity.EventLeadCreated, OriginCapture, lead))
		if err != nil && !uc.RequireEvent {
			uc.Logger.Warn("⚠️ lead capturado, mas evento não publicado",
				zap.String("lead_id", lead.ID), zap.Error(err))
			return nil
		}
		return err
	}

	txn := NewTransaction(uc.Logger).
		Step("upsert_lead", upsert, deleteCreated).
		Step("publish_event", publish, nil)

	if err := txn.Execute(ctx); err != nil {
		return nil, &TechnicalError{
			Code:    "DATABASE_ERROR",
			Message: "failed to capture lead",
			Err:     err,
		}
	}

	uc.Logger.Info("🎯 lead capturado",
		zap.String("lead_id", lead.ID),
		zap.Bool("created", created),
		zap.String("source", lead.Source),
	)

	msg := "Lead capturado com sucesso!"
	if !created {
		msg = "Lead já existente atualizado."
	}
	return &CaptureLeadOutput{ID: lead.ID, Created: created, Msg: msg}, nil
}
