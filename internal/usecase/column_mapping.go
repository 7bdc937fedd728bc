package usecase

import (
	"fmt"
	"strings"

	"github.com/xavierca1/leadhub/internal/entity"
)

var CanonicalFields = entity.CanonicalLeadFields

var RequiredFields = []string{"name", "email", "phone"}

// ColumnAliases mapeia cada campo canônico para os cabeçalhos aceitos.
var ColumnAliases = map[string][]string{
	"name":         {"name", "full name", "lead name", "contact name", "customer name", "student name"},
	"email":        {"email", "email address", "e-mail", "mail", "email id"},
	"phone":        {"phone", "phone number", "mobile", "mobile number", "contact number", "telephone", "whatsapp"},
	"organization": {"organization", "organisation", "company", "company name", "business", "institution"},
	"requirement":  {"requirement", "requirements", "interest", "service", "course"},
	"source":       {"source", "lead source", "channel", "origin"},
	"stage":        {"stage", "lead stage", "pipeline stage"},
	"status":       {"status", "lead status"},
	"priority":     {"priority", "lead priority"},
	"notes":        {"notes", "note", "comments", "comment", "remarks"},
	"value":        {"value", "deal value", "amount", "budget", "lead value"},
}

type ColumnMapping struct {
	Fields         map[string]int `json:"fields"`
	MissingColumns []string       `json:"missingColumns"`
	Warnings       []string       `json:"warnings"`
}

func (m ColumnMapping) Index(field string) (int, bool) {
	idx, ok := m.Fields[field]
	return idx, ok
}

// MapColumns resolve o índice de cada campo canônico a partir do cabeçalho.
// Para cada campo os aliases são testados em ordem contra os cabeçalhos;
// o primeiro match ganha e a coluna não pode ser reutilizada.
func MapColumns(headers []string) ColumnMapping {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = normalizeHeader(h)
	}

	mapping := ColumnMapping{Fields: make(map[string]int)}
	claimed := make(map[int]bool)

	for _, field := range CanonicalFields {
	aliases:
		for _, alias := range ColumnAliases[field] {
			for idx, header := range normalized {
				if claimed[idx] || header != alias {
					continue
				}
				mapping.Fields[field] = idx
				claimed[idx] = true
				break aliases
			}
		}
	}

	for _, field := range RequiredFields {
		if _, ok := mapping.Fields[field]; !ok {
			mapping.MissingColumns = append(mapping.MissingColumns, field)
		}
	}

	for idx, header := range headers {
		if claimed[idx] || strings.TrimSpace(header) == "" {
			continue
		}
		mapping.Warnings = append(mapping.Warnings,
			fmt.Sprintf("Column %q is not recognized and will be ignored", strings.TrimSpace(header)))
	}

	return mapping
}

func normalizeHeader(h string) string {
	return strings.Join(strings.Fields(strings.ToLower(h)), " ")
}
