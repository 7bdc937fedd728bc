package excel_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/xavierca1/leadhub/internal/entity"
	"github.com/xavierca1/leadhub/internal/infra/excel"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &rows[i]))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParseReadsHeaderAndRows(t *testing.T) {
	buf := buildWorkbook(t, [][]interface{}{
		{" Name ", "Email", "Phone"},
		{"Ana", "ana@example.com", "+55 11 99999-0000"},
		{nil, nil, nil},
		{"Bruno", "bruno@example.com", "+55 21 98888-1111"},
	})

	sheet, err := excel.Parse(buf)
	require.NoError(t, err)

	assert.Equal(t, "Sheet1", sheet.Name)
	assert.Equal(t, []string{"Name", "Email", "Phone"}, sheet.Headers)
	require.Len(t, sheet.Rows, 2)
	assert.Equal(t, "Bruno", sheet.Rows[1][0])
}

func TestParseEmptySheet(t *testing.T) {
	buf := buildWorkbook(t, nil)

	_, err := excel.Parse(buf)
	assert.ErrorIs(t, err, excel.ErrEmptyWorkbook)
}

func TestParseInvalidBytes(t *testing.T) {
	_, err := excel.Parse(bytes.NewReader([]byte("definitely not a workbook")))
	assert.Error(t, err)
}

func TestTemplateHeaderMatchesCanonicalFields(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, excel.WriteTemplate(&buf))

	sheet, err := excel.Parse(&buf)
	require.NoError(t, err)

	assert.Equal(t, excel.TemplateSheet, sheet.Name)
	assert.Equal(t, entity.CanonicalLeadFields, sheet.Headers)
	assert.Len(t, sheet.Headers, 11)
	assert.Len(t, sheet.Rows, 3)
}

func TestTemplateBytesMatchesWriter(t *testing.T) {
	body, err := excel.TemplateBytes()
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(body, []byte("PK")))

	sheet, err := excel.Parse(bytes.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, entity.CanonicalLeadFields, sheet.Headers)
}

func TestTemplateHasInstructionsSheet(t *testing.T) {
	f, err := excel.BuildTemplate()
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{excel.TemplateSheet, excel.InstructionsSheet}, f.GetSheetList())

	v, err := f.GetCellValue(excel.InstructionsSheet, "A2")
	require.NoError(t, err)
	assert.Equal(t, "name", v)
}
