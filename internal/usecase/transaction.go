package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type stepFunc func(context.Context) error

type step struct {
	name string
	do   stepFunc
	undo stepFunc
}

// Transaction roda passos em ordem. Quando um falha, desfaz os anteriores
// do último para o primeiro.
type Transaction struct {
	steps  []step
	logger *zap.Logger
}

func NewTransaction(logger *zap.Logger) *Transaction {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transaction{logger: logger}
}

// Step registra um passo. undo pode ser nil.
func (t *Transaction) Step(name string, do, undo func(context.Context) error) *Transaction {
	t.steps = append(t.steps, step{name: name, do: do, undo: undo})
	return t
}

func (t *Transaction) Execute(ctx context.Context) error {
	for i, s := range t.steps {
		if err := s.do(ctx); err != nil {
			undone := t.undo(ctx, t.steps[:i])
			return fmt.Errorf("step '%s' failed: %w (undid %d of %d steps)", s.name, err, undone, i)
		}
	}
	return nil
}

// undo ignora o ctx cancelado do chamador para que o desfazer ainda rode.
func (t *Transaction) undo(ctx context.Context, done []step) int {
	ctx = context.WithoutCancel(ctx)
	undone := 0
	for i := len(done) - 1; i >= 0; i-- {
		s := done[i]
		if s.undo == nil {
			continue
		}
		if err := s.undo(ctx); err != nil {
			t.logger.Error("⚠️ falha ao desfazer passo (risco de inconsistência)",
				zap.String("step", s.name), zap.Error(err))
			continue
		}
		undone++
	}
	return undone
}
