package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/leadhub/internal/entity"
)

const DefaultBatchDelay = 100 * time.Millisecond

type UpsertStats struct {
	Inserted int
	Updated  int
	Skipped  int
	Failed   int
	Errors   []RowError
	Created  []*entity.Lead
}

// BatchUpserter grava os leads em lotes sequenciais, com uma pausa fixa entre
// lotes para não sobrecarregar o lead store.
type BatchUpserter struct {
	Store  LeadStore
	Delay  time.Duration
	Logger *zap.Logger
}

func NewBatchUpserter(store LeadStore, delay time.Duration, logger *zap.Logger) *BatchUpserter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchUpserter{Store: store, Delay: delay, Logger: logger}
}

func (u *BatchUpserter) Run(ctx context.Context, leads []TransformedLead, opts ImportOptions) UpsertStats {
	opts = opts.Normalize()
	var stats UpsertStats

	totalBatches := (len(leads) + opts.BatchSize - 1) / opts.BatchSize
	for start, batchNum := 0, 1; start < len(leads); start, batchNum = start+opts.BatchSize, batchNum+1 {
		end := start + opts.BatchSize
		if end > len(leads) {
			end = len(leads)
		}

		if start > 0 && u.Delay > 0 {
			// cancelamento é tratado no início do próximo lote
			_ = sleepContext(ctx, u.Delay)
		}

		before := stats
		u.processBatch(ctx, leads[start:end], batchNum, opts, &stats)

		u.Logger.Debug("📦 lote processado",
			zap.Int("batch", batchNum),
			zap.Int("batches", totalBatches),
			zap.Int("inserted", stats.Inserted-before.Inserted),
			zap.Int("updated", stats.Updated-before.Updated),
			zap.Int("skipped", stats.Skipped-before.Skipped),
			zap.Int("failed", stats.Failed-before.Failed),
		)
	}

	return stats
}

func (u *BatchUpserter) processBatch(ctx context.Context, batch []TransformedLead, batchNum int, opts ImportOptions, stats *UpsertStats) {
	for i, lead := range batch {
		if err := ctx.Err(); err != nil {
			u.failRemaining(batch[i:], batchNum, err, stats)
			return
		}

		err := u.upsertOne(ctx, lead, opts, stats)
		if err == nil {
			continue
		}
		if isStoreFailure(err) {
			u.failRemaining(batch[i:], batchNum, err, stats)
			return
		}
		var verr ValidationError
		if errors.As(err, &verr) {
			stats.Failed++
			stats.Errors = append(stats.Errors, verr)
			continue
		}

		stats.Failed++
		stats.Errors = append(stats.Errors, PersistenceError{
			Row:     lead.RowIndex,
			Email:   lead.Email,
			Type:    ErrorTypePersistence,
			Message: err.Error(),
		})
	}
}

func (u *BatchUpserter) upsertOne(ctx context.Context, t TransformedLead, opts ImportOptions, stats *UpsertStats) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected failure: %v", r)
		}
	}()

	existing, err := u.Store.FindByEmail(ctx, t.Email)
	if err != nil && !errors.Is(err, entity.ErrLeadNotFound) {
		return fmt.Errorf("lookup failed: %w", err)
	}

	if err == nil && existing != nil {
		if !opts.UpdateExisting {
			stats.Skipped++
			return nil
		}
		if t.Stage != "" && !entity.CanTransition(existing.Stage, t.Stage) {
			return ValidationError{
				Row:     t.RowIndex,
				Field:   "stage",
				Value:   t.Stage,
				Type:    ErrorTypeStageTransition,
				Message: fmt.Sprintf("cannot move lead from %s to %s", existing.Stage, t.Stage),
			}
		}
		t.MergeInto(existing)
		existing.UpdatedAt = time.Now()
		if err := u.Store.Update(ctx, existing); err != nil {
			return fmt.Errorf("update failed: %w", err)
		}
		stats.Updated++
		return nil
	}

	lead := t.ToLead()
	if err := u.Store.Create(ctx, lead); err != nil {
		if errors.Is(err, entity.ErrEmailAlreadyExists) && !opts.UpdateExisting {
			stats.Skipped++
			return nil
		}
		return fmt.Errorf("create failed: %w", err)
	}
	stats.Inserted++
	stats.Created = append(stats.Created, lead)
	return nil
}

// failRemaining marca como falha todos os leads restantes do lote com um
// único erro agregado.
func (u *BatchUpserter) failRemaining(rest []TransformedLead, batchNum int, cause error, stats *UpsertStats) {
	rows := make([]int, 0, len(rest))
	for _, l := range rest {
		rows = append(rows, l.RowIndex)
	}

	stats.Failed += len(rest)
	stats.Errors = append(stats.Errors, PersistenceError{
		Rows:    rows,
		Type:    ErrorTypeBatchPersistence,
		Message: fmt.Sprintf("batch %d failed: %v", batchNum, cause),
	})

	u.Logger.Warn("❌ lote falhou",
		zap.Int("batch", batchNum),
		zap.Ints("rows", rows),
		zap.Error(cause),
	)
}

func isStoreFailure(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
