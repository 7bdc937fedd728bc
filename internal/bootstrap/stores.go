// Package bootstrap monta os stores a partir da configuração; usado pela API
// e pelo leadctl.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/xavierca1/leadhub/internal/config"
	"github.com/xavierca1/leadhub/internal/infra/database"
	"github.com/xavierca1/leadhub/internal/infra/history"
	"github.com/xavierca1/leadhub/internal/infra/leadstore"
	"github.com/xavierca1/leadhub/internal/usecase"
)

type LeadStores struct {
	// Import é o store usado pelo pipeline da planilha.
	Import usecase.LeadStore

	// Repo e DB só existem quando há DATABASE_URL. Capture, stage e
	// follow-up dependem deles.
	Repo *database.LeadRepository
	DB   *sql.DB
}

func (s *LeadStores) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

func OpenLeadStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*LeadStores, error) {
	stores := &LeadStores{}

	if cfg.DatabaseURL != "" {
		db, err := database.Open(ctx, cfg.DatabaseURL, database.PoolOptions{
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.InitSchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		stores.DB = db
		stores.Repo = database.NewLeadRepository(db)
		logger.Info("🐘 Postgres conectado")
	}

	switch cfg.LeadStore {
	case config.LeadStoreAPI:
		stores.Import = leadstore.NewClient(cfg.LeadAPIURL, cfg.LeadAPIToken, logger)
		logger.Info("🌐 lead store via API", zap.String("url", cfg.LeadAPIURL))
	default:
		if stores.Repo == nil {
			return nil, fmt.Errorf("LEAD_STORE=%s requires DATABASE_URL", cfg.LeadStore)
		}
		stores.Import = stores.Repo
	}

	return stores, nil
}

// OpenHistory devolve o store de histórico e a função de fechamento.
func OpenHistory(cfg *config.Config) (usecase.HistoryStore, func() error, error) {
	if cfg.HistoryStore == config.HistorySQLite {
		store, err := history.NewSQLiteStore(cfg.HistoryDBPath)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	}
	return history.NewMemoryStore(), func() error { return nil }, nil
}
