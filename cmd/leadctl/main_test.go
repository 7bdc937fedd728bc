package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/xavierca1/leadhub/internal/entity"
	"github.com/xavierca1/leadhub/internal/infra/excel"
	"github.com/xavierca1/leadhub/internal/usecase"
)

func TestTemplateCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out", "template.xlsx")

	rootCmd.SetArgs([]string{"template", out})
	require.NoError(t, rootCmd.Execute())

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(excel.TemplateSheet)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, entity.CanonicalLeadFields[0], rows[0][0])
}

func TestImportCommandRequiresFile(t *testing.T) {
	rootCmd.SetArgs([]string{"import"})
	assert.Error(t, rootCmd.Execute())
}

func TestImportCommandMissingFile(t *testing.T) {
	t.Setenv("LEAD_STORE", "api")
	t.Setenv("LEAD_API_URL", "http://127.0.0.1:1")
	t.Setenv("HISTORY_STORE", "memory")

	rootCmd.SetArgs([]string{"import", filepath.Join(t.TempDir(), "nope.xlsx")})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestImportOptionsFromFlags(t *testing.T) {
	t.Cleanup(func() {
		updateExisting, skipDuplicates = false, true
		noValidateEmails, noValidatePhones = false, false
		batchSize, maxRows = usecase.DefaultBatchSize, usecase.DefaultMaxRows
	})

	updateExisting = true
	noValidatePhones = true
	batchSize = 5000
	maxRows = 0

	opts := importOptions()
	assert.True(t, opts.UpdateExisting)
	assert.True(t, opts.ValidateEmails)
	assert.False(t, opts.ValidatePhones)
	assert.Equal(t, usecase.MaxBatchSize, opts.BatchSize)
	assert.Equal(t, usecase.DefaultMaxRows, opts.MaxRows)
}
