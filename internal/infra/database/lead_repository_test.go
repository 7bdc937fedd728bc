package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/leadhub/internal/entity"
)

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil))
	assert.ErrorIs(t, classify(&pgconn.PgError{Code: "23505"}), entity.ErrEmailAlreadyExists)
	assert.ErrorIs(t, classify(fmt.Errorf("exec: %w", driver.ErrBadConn)), entity.ErrStoreUnavailable)

	other := &pgconn.PgError{Code: "23502", Message: "null value in column"}
	got := classify(other)
	assert.False(t, errors.Is(got, entity.ErrStoreUnavailable))
	assert.Equal(t, other, got)
}

func TestNullString(t *testing.T) {
	assert.Nil(t, nullString(""))
	require.NotNil(t, nullString("acme"))
	assert.Equal(t, "acme", *nullString("acme"))
}

// Roda contra um Postgres real apenas quando TEST_DATABASE_URL está definido.
func TestLeadRepositoryIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := NewDBConnection(dsn)
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, InitSchema(ctx, db))

	repo := NewLeadRepository(db)
	email := fmt.Sprintf("it-%d@example.com", time.Now().UnixNano())
	lead := entity.NewLead("Integration", email, "+5511999990000")
	require.NoError(t, repo.Create(ctx, lead))
	defer repo.Delete(ctx, lead.ID)

	assert.ErrorIs(t, repo.Create(ctx, entity.NewLead("Dup", email, "+5511999990000")), entity.ErrEmailAlreadyExists)

	found, err := repo.FindByEmails(ctx, []string{email, "nobody@example.com"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, lead.ID, found[0].ID)

	again := entity.NewLead("Integration 2", email, "+5511999990001")
	inserted, err := repo.Upsert(ctx, again)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.Equal(t, lead.ID, again.ID)

	require.NoError(t, repo.UpdateStage(ctx, lead.ID, entity.StageContacted))
	byID, err := repo.FindByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StageContacted, byID.Stage)
	assert.Equal(t, "Integration 2", byID.Name)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, entity.ErrLeadNotFound)
}
