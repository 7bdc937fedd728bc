package usecase

import (
	"context"

	"github.com/xavierca1/leadhub/internal/entity"
)

// LeadStore é o contrato do armazenamento de leads usado pelo import.
// Implementado pelo repositório Postgres e pelo client da API externa.
type LeadStore interface {
	FindByEmails(ctx context.Context, emails []string) ([]entity.Lead, error)
	FindByEmail(ctx context.Context, email string) (*entity.Lead, error)
	Create(ctx context.Context, lead *entity.Lead) error
	Update(ctx context.Context, lead *entity.Lead) error
}

type HistoryStore interface {
	Append(ctx context.Context, entry entity.UploadHistoryEntry) error
	List(ctx context.Context, limit int) ([]entity.UploadHistoryEntry, error)
	Stats(ctx context.Context) (entity.UploadStats, error)
}

type EventPublisher interface {
	PublishLeadEvent(ctx context.Context, event entity.LeadEvent) error
}

type ImportRecorder interface {
	RecordUpload(status string, result *ImportResult)
}

type noopRecorder struct{}

func (noopRecorder) RecordUpload(string, *ImportResult) {}
