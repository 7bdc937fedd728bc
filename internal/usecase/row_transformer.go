package usecase

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xavierca1/leadhub/internal/entity"
)

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9(][0-9\s\-().]{5,19}$`)
	nonDigit   = regexp.MustCompile(`\D`)

	valueCleaner = strings.NewReplacer("R$", "", ",", "", " ", "", "$", "", "€", "", "£", "", "₹", "")
)

// Tamanho máximo (em runes) por campo.
var fieldMaxLength = map[string]int{
	"name":         255,
	"email":        255,
	"phone":        20,
	"organization": 255,
	"requirement":  1000,
	"source":       100,
	"notes":        2000,
}

type TransformResult struct {
	TotalRows int
	Leads     []TransformedLead
	Errors    []RowError
	Warnings  []string
}

// RowTransformer limpa e valida as linhas de dados da planilha.
type RowTransformer struct {
	parseValue func(string) (float64, error)
}

func NewRowTransformer() *RowTransformer {
	return &RowTransformer{parseValue: parseLeadValue}
}

// Transform processa as linhas em ordem. Cada linha é isolada: um erro ou
// panic numa linha vira uma entrada em Errors e as demais seguem.
func (t *RowTransformer) Transform(rows [][]string, mapping ColumnMapping, opts ImportOptions) TransformResult {
	opts = opts.Normalize()
	var res TransformResult

	if len(rows) > opts.MaxRows {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("File contains %d data rows; only the first %d were processed", len(rows), opts.MaxRows))
		rows = rows[:opts.MaxRows]
	}
	res.TotalRows = len(rows)

	for i, row := range rows {
		lead, errs := t.transformRow(row, i+1, mapping, opts)
		if len(errs) > 0 {
			res.Errors = append(res.Errors, errs...)
			continue
		}
		if lead != nil {
			res.Leads = append(res.Leads, *lead)
		}
	}

	return res
}

func (t *RowTransformer) transformRow(row []string, rowNum int, mapping ColumnMapping, opts ImportOptions) (lead *TransformedLead, errs []RowError) {
	defer func() {
		if r := recover(); r != nil {
			lead = nil
			errs = []RowError{ValidationError{
				Row:     rowNum,
				Field:   "row",
				Type:    ErrorTypeProcessing,
				Message: fmt.Sprintf("failed to process row: %v", r),
			}}
		}
	}()

	cell := func(field string) string {
		idx, ok := mapping.Index(field)
		if !ok || idx < 0 || idx >= len(row) {
			return ""
		}
		return cleanCell(row[idx])
	}

	out := &TransformedLead{
		Name:         cell("name"),
		Email:        entity.NormalizeEmail(cell("email")),
		Phone:        cell("phone"),
		Organization: cell("organization"),
		Requirement:  cell("requirement"),
		Source:       cell("source"),
		Stage:        strings.ToLower(cell("stage")),
		Status:       strings.ToLower(cell("status")),
		Priority:     strings.ToLower(cell("priority")),
		Notes:        cell("notes"),
		RowIndex:     rowNum,
	}

	var missing []string
	for _, f := range RequiredFields {
		if (f == "name" && out.Name == "") || (f == "email" && out.Email == "") || (f == "phone" && out.Phone == "") {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, []RowError{ValidationError{
			Row:     rowNum,
			Field:   strings.Join(missing, ","),
			Type:    ErrorTypeRequiredFields,
			Message: fmt.Sprintf("Row %d: missing required fields: %s", rowNum, strings.Join(missing, ", ")),
		}}
	}

	invalid := func(field, value, msg string) {
		errs = append(errs, ValidationError{Row: rowNum, Field: field, Value: value, Type: ErrorTypeValidation, Message: msg})
	}

	if opts.ValidateEmails && !emailRegex.MatchString(out.Email) {
		invalid("email", out.Email, "invalid email format")
	}
	if opts.ValidatePhones && !isValidPhone(out.Phone) {
		invalid("phone", out.Phone, "invalid phone number format")
	}
	if out.Stage != "" && !entity.IsValidStage(out.Stage) {
		invalid("stage", out.Stage, "must be one of: "+strings.Join(entity.ValidStages, ", "))
	}
	if out.Status != "" && !entity.IsValidStatus(out.Status) {
		invalid("status", out.Status, "must be one of: "+strings.Join(entity.ValidStatuses, ", "))
	}
	if out.Priority != "" && !entity.IsValidPriority(out.Priority) {
		invalid("priority", out.Priority, "must be one of: "+strings.Join(entity.ValidPriorities, ", "))
	}
	if raw := cell("value"); raw != "" {
		v, err := t.parseValue(raw)
		if err != nil {
			invalid("value", raw, err.Error())
		} else {
			out.Value = &v
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}

	out.Name = clamp(out.Name, fieldMaxLength["name"])
	out.Email = clamp(out.Email, fieldMaxLength["email"])
	out.Phone = clamp(out.Phone, fieldMaxLength["phone"])
	out.Organization = clamp(out.Organization, fieldMaxLength["organization"])
	out.Requirement = clamp(out.Requirement, fieldMaxLength["requirement"])
	out.Source = clamp(out.Source, fieldMaxLength["source"])
	out.Notes = clamp(out.Notes, fieldMaxLength["notes"])

	return out, nil
}

func isValidPhone(phone string) bool {
	if !phoneRegex.MatchString(phone) {
		return false
	}
	return len(nonDigit.ReplaceAllString(phone, "")) >= 7
}

func parseLeadValue(raw string) (float64, error) {
	v, err := strconv.ParseFloat(valueCleaner.Replace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("must be a number")
	}
	if v < 0 {
		return 0, errors.New("must not be negative")
	}
	return v, nil
}

func cleanCell(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func clamp(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
