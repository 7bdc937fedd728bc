package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/leadhub/internal/entity"
)

const (
	OriginFollowUp = "FOLLOW_UP"

	followUpBatchLimit = 100
)

type FollowUpRepository interface {
	FindFollowUpCandidates(ctx context.Context, olderThan time.Time, limit int) ([]entity.Lead, error)
	MarkEmailSent(ctx context.Context, id string, emailStage int) error
}

type EventPublisher interface {
	PublishLeadEvent(ctx context.Context, event entity.LeadEvent) error
}

// FollowUpWorker publica lead.follow_up para leads parados em "generated"
// há mais de `after` sem nenhum email de follow-up.
type FollowUpWorker struct {
	repo         FollowUpRepository
	events       EventPublisher
	after        time.Duration
	tickInterval time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

func NewFollowUpWorker(repo FollowUpRepository, events EventPublisher, interval, after time.Duration, logger *zap.Logger) *FollowUpWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Hour
	}
	if after <= 0 {
		after = 48 * time.Hour
	}
	return &FollowUpWorker{
		repo:         repo,
		events:       events,
		after:        after,
		tickInterval: interval,
		logger:       logger,
		now:          time.Now,
	}
}

func (w *FollowUpWorker) Start(ctx context.Context) {
	w.logger.Info("🕒 Follow-up Worker iniciado",
		zap.Duration("interval", w.tickInterval), zap.Duration("after", w.after))

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("⚠️ Follow-up Worker encerrado")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce processa uma rodada e devolve quantos follow-ups foram disparados.
func (w *FollowUpWorker) RunOnce(ctx context.Context) int {
	leads, err := w.repo.FindFollowUpCandidates(ctx, w.now().Add(-w.after), followUpBatchLimit)
	if err != nil {
		w.logger.Error("❌ Erro ao buscar leads para follow-up", zap.Error(err))
		return 0
	}

	sent := 0
	for i := range leads {
		lead := &leads[i]
		if err := w.events.PublishLeadEvent(ctx, entity.NewLeadEvent(entity.EventLeadFollowUp, OriginFollowUp, lead)); err != nil {
			w.logger.Warn("⚠️ follow-up não publicado", zap.String("lead_id", lead.ID), zap.Error(err))
			continue
		}
		// marca só depois de publicar; se falhar, o lead volta na próxima rodada
		if err := w.repo.MarkEmailSent(ctx, lead.ID, lead.EmailStage+1); err != nil {
			w.logger.Warn("⚠️ follow-up publicado, mas email_stage não atualizado",
				zap.String("lead_id", lead.ID), zap.Error(err))
			continue
		}
		sent++
	}

	if sent > 0 {
		w.logger.Info("✅ follow-ups disparados", zap.Int("count", sent))
	}
	return sent
}
