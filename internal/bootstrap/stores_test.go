package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xavierca1/leadhub/internal/config"
	"github.com/xavierca1/leadhub/internal/infra/history"
	"github.com/xavierca1/leadhub/internal/infra/leadstore"
)

func TestOpenLeadStoresAPIWithoutDatabase(t *testing.T) {
	cfg := &config.Config{LeadStore: config.LeadStoreAPI, LeadAPIURL: "http://crm.local/api"}

	stores, err := OpenLeadStores(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer stores.Close()

	assert.IsType(t, &leadstore.Client{}, stores.Import)
	assert.Nil(t, stores.Repo)
	assert.Nil(t, stores.DB)
}

func TestOpenLeadStoresPostgresNeedsURL(t *testing.T) {
	_, err := OpenLeadStores(context.Background(), &config.Config{LeadStore: config.LeadStorePostgres}, zap.NewNop())
	assert.Error(t, err)
}

func TestOpenHistory(t *testing.T) {
	mem, closeMem, err := OpenHistory(&config.Config{HistoryStore: config.HistoryMemory})
	require.NoError(t, err)
	assert.IsType(t, &history.MemoryStore{}, mem)
	assert.NoError(t, closeMem())

	path := filepath.Join(t.TempDir(), "nested", "history.db")
	sqlite, closeSQLite, err := OpenHistory(&config.Config{HistoryStore: config.HistorySQLite, HistoryDBPath: path})
	require.NoError(t, err)
	assert.IsType(t, &history.SQLiteStore{}, sqlite)
	assert.NoError(t, closeSQLite())
}
