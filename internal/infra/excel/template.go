package excel

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/xavierca1/leadhub/internal/entity"
)

const (
	TemplateSheet     = "Leads"
	InstructionsSheet = "Instructions"
	TemplateFileName  = "lead-upload-template.xlsx"
)

var templateExamples = [][]interface{}{
	{"John Doe", "john.doe@example.com", "+1 555 123 4567", "Acme Corp", "MBA admission in Canada", "website", "generated", "new", "high", "Prefers email contact", 15000},
	{"Maria Silva", "maria.silva@example.com", "+55 11 98765-4321", "Silva Consultoria", "Study abroad counselling", "referral", "contacted", "active", "medium", "Call after 6pm", 8000},
	{"Rahul Sharma", "rahul.sharma@example.com", "+91 98765 43210", "", "IELTS coaching", "facebook", "qualified", "active", "low", "", 2500},
}

// BuildTemplate monta o workbook modelo: aba de leads com o cabeçalho
// canônico e três exemplos, mais uma aba de instruções.
func BuildTemplate() (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", TemplateSheet); err != nil {
		return nil, err
	}

	headers := make([]interface{}, len(entity.CanonicalLeadFields))
	for i, h := range entity.CanonicalLeadFields {
		headers[i] = h
	}
	if err := f.SetSheetRow(TemplateSheet, "A1", &headers); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i := range templateExamples {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(TemplateSheet, cell, &templateExamples[i]); err != nil {
			return nil, fmt.Errorf("failed to write example row: %w", err)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(TemplateSheet, "A1", lastCol+"1", style); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(TemplateSheet, "A", lastCol, 22); err != nil {
		return nil, err
	}

	if err := writeInstructions(f); err != nil {
		return nil, err
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeInstructions(f *excelize.File) error {
	if _, err := f.NewSheet(InstructionsSheet); err != nil {
		return err
	}

	lines := [][]interface{}{
		{"Field", "Notes"},
		{"name", "Required"},
		{"email", "Required, must be unique"},
		{"phone", "Required, international format accepted"},
		{"stage", "Optional: " + strings.Join(entity.ValidStages, ", ")},
		{"status", "Optional: " + strings.Join(entity.ValidStatuses, ", ")},
		{"priority", "Optional: " + strings.Join(entity.ValidPriorities, ", ")},
		{"value", "Optional, non-negative number"},
	}
	for i := range lines {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(InstructionsSheet, cell, &lines[i]); err != nil {
			return err
		}
	}
	return f.SetColWidth(InstructionsSheet, "A", "B", 40)
}

// TemplateBytes gera o template inteiro em memória.
func TemplateBytes() ([]byte, error) {
	f, err := BuildTemplate()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTemplate escreve o template direto no writer (arquivo do leadctl).
func WriteTemplate(w io.Writer) error {
	f, err := BuildTemplate()
	if err != nil {
		return err
	}
	defer f.Close()

	return f.Write(w)
}
