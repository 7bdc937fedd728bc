package usecase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformNormalizesEmail(t *testing.T) {
	rows := [][]string{
		{"  Ana   Souza ", "  ANA@Example.COM ", "+55 11 99999-0000"},
	}

	res := NewRowTransformer().Transform(rows, defaultMapping(), DefaultImportOptions())

	require.Len(t, res.Leads, 1)
	assert.Empty(t, res.Errors)
	assert.Equal(t, "ana@example.com", res.Leads[0].Email)
	assert.Equal(t, "Ana Souza", res.Leads[0].Name)
	assert.Equal(t, 1, res.Leads[0].RowIndex)
}

func TestTransformInvalidPhoneRejectsOnlyThatRow(t *testing.T) {
	rows := [][]string{
		{"Ana", "ana@example.com", "+55 11 99999-0000"},
		{"Bruno", "bruno@example.com", "abc"},
		{"Carla", "carla@example.com", "(21) 98888-1111"},
	}

	res := NewRowTransformer().Transform(rows, defaultMapping(), DefaultImportOptions())

	assert.Equal(t, 3, res.TotalRows)
	assert.Len(t, res.Leads, 2)
	require.Len(t, res.Errors, 1)

	verr, ok := res.Errors[0].(ValidationError)
	require.True(t, ok)
	assert.Equal(t, 2, verr.Row)
	assert.Equal(t, "phone", verr.Field)
	assert.Equal(t, ErrorTypeValidation, verr.Type)
}

func TestTransformRequiredFields(t *testing.T) {
	rows := [][]string{
		{"Ana", "", ""},
		{"Bruno", "bruno@example.com"}, // linha curta
	}

	res := NewRowTransformer().Transform(rows, defaultMapping(), DefaultImportOptions())

	assert.Empty(t, res.Leads)
	require.Len(t, res.Errors, 2)
	first := res.Errors[0].(ValidationError)
	assert.Equal(t, ErrorTypeRequiredFields, first.Type)
	assert.Equal(t, 1, first.Row)
	assert.Equal(t, "email,phone", first.Field)
	assert.Contains(t, first.Message, "Row 1")
	assert.Equal(t, 2, res.Errors[1].RowNumber())
}

func TestTransformEnumsAndValue(t *testing.T) {
	rows := [][]string{
		{"Ana", "ana@example.com", "+5511999990000", "Acme", "CONTACTED", "R$ 1,500.50"},
		{"Bruno", "bruno@example.com", "+5511999990001", "", "archived", ""},
		{"Carla", "carla@example.com", "+5511999990002", "", "", "-10"},
	}

	res := NewRowTransformer().Transform(rows, defaultMapping(), DefaultImportOptions())

	require.Len(t, res.Leads, 1)
	assert.Equal(t, "contacted", res.Leads[0].Stage)
	require.NotNil(t, res.Leads[0].Value)
	assert.Equal(t, 1500.50, *res.Leads[0].Value)

	require.Len(t, res.Errors, 2)
	assert.Equal(t, "stage", res.Errors[0].(ValidationError).Field)
	assert.Equal(t, "value", res.Errors[1].(ValidationError).Field)
}

func TestTransformValidationCanBeDisabled(t *testing.T) {
	rows := [][]string{{"Ana", "not-an-email", "abc"}}
	opts := DefaultImportOptions()
	opts.ValidateEmails = false
	opts.ValidatePhones = false

	res := NewRowTransformer().Transform(rows, defaultMapping(), opts)

	assert.Len(t, res.Leads, 1)
	assert.Empty(t, res.Errors)
}

func TestTransformClampsLengths(t *testing.T) {
	long := strings.Repeat("á", 300)
	rows := [][]string{{long, "ana@example.com", "+5511999990000", long}}

	res := NewRowTransformer().Transform(rows, defaultMapping(), DefaultImportOptions())

	require.Len(t, res.Leads, 1)
	assert.Equal(t, 255, len([]rune(res.Leads[0].Name)))
	assert.Equal(t, 255, len([]rune(res.Leads[0].Organization)))
}

func TestTransformMaxRowsWarning(t *testing.T) {
	rows := [][]string{
		{"Ana", "ana@example.com", "+5511999990000"},
		{"Bruno", "bruno@example.com", "+5511999990001"},
		{"Carla", "carla@example.com", "+5511999990002"},
	}
	opts := DefaultImportOptions()
	opts.MaxRows = 2

	res := NewRowTransformer().Transform(rows, defaultMapping(), opts)

	assert.Equal(t, 2, res.TotalRows)
	assert.Len(t, res.Leads, 2)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "only the first 2")
}

func TestTransformRowPanicDoesNotAbortSiblings(t *testing.T) {
	rows := [][]string{
		{"Ana", "ana@example.com", "+5511999990000", "", "", "10"},
		{"Bruno", "bruno@example.com", "+5511999990001", "", "", "boom"},
		{"Carla", "carla@example.com", "+5511999990002", "", "", "30"},
	}
	tr := NewRowTransformer()
	tr.parseValue = func(raw string) (float64, error) {
		if raw == "boom" {
			panic("cell coercion failed")
		}
		return parseLeadValue(raw)
	}

	res := tr.Transform(rows, defaultMapping(), DefaultImportOptions())

	require.Len(t, res.Leads, 2)
	assert.Equal(t, "ana@example.com", res.Leads[0].Email)
	assert.Equal(t, "carla@example.com", res.Leads[1].Email)
	require.Len(t, res.Errors, 1)
	perr := res.Errors[0].(ValidationError)
	assert.Equal(t, 2, perr.Row)
	assert.Equal(t, ErrorTypeProcessing, perr.Type)
}
