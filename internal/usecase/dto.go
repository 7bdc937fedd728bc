package usecase

import (
	"encoding/json"
	"io"

	"github.com/xavierca1/leadhub/internal/entity"
)

type ImportInput struct {
	FileName string
	FileSize int64
	Content  io.Reader
	Options  ImportOptions
}

// TransformedLead é uma linha já limpa e validada, pronta para dedup/upsert.
type TransformedLead struct {
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Phone        string   `json:"phone"`
	Organization string   `json:"organization,omitempty"`
	Requirement  string   `json:"requirement,omitempty"`
	Source       string   `json:"source,omitempty"`
	Stage        string   `json:"stage,omitempty"`
	Status       string   `json:"status,omitempty"`
	Priority     string   `json:"priority,omitempty"`
	Notes        string   `json:"notes,omitempty"`
	Value        *float64 `json:"value,omitempty"`
	RowIndex     int      `json:"rowIndex"`

	// ExistingID é preenchido pelo detector quando o email já existe no store.
	ExistingID string `json:"-"`
}

// ToLead converte para a entidade, aplicando defaults.
func (t TransformedLead) ToLead() *entity.Lead {
	lead := entity.NewLead(t.Name, t.Email, t.Phone)
	lead.Organization = t.Organization
	lead.Requirement = t.Requirement
	lead.Source = t.Source
	lead.Stage = t.Stage
	lead.Status = t.Status
	lead.Priority = t.Priority
	lead.Notes = t.Notes
	lead.Value = t.Value
	lead.ApplyDefaults()
	return lead
}

// MergeInto copia os valores da planilha sobre o lead existente. Célula
// opcional vazia mantém o que já está no store. O stage chega aqui já
// validado contra StageTransitions.
func (t TransformedLead) MergeInto(lead *entity.Lead) {
	lead.Name = t.Name
	lead.Phone = t.Phone
	if t.Organization != "" {
		lead.Organization = t.Organization
	}
	if t.Requirement != "" {
		lead.Requirement = t.Requirement
	}
	if t.Source != "" {
		lead.Source = t.Source
	}
	if t.Stage != "" {
		lead.Stage = t.Stage
	}
	if t.Status != "" {
		lead.Status = t.Status
	}
	if t.Priority != "" {
		lead.Priority = t.Priority
	}
	if t.Notes != "" {
		lead.Notes = t.Notes
	}
	if t.Value != nil {
		lead.Value = t.Value
	}
}

type DuplicateRecord struct {
	Row    int    `json:"row"`
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

type ImportResult struct {
	TotalRows      int               `json:"totalRows"`
	ValidRows      int               `json:"validRows"`
	InsertedRows   int               `json:"insertedRows"`
	UpdatedRows    int               `json:"updatedRows"`
	SkippedRows    int               `json:"skippedRows"`
	ErrorRows      int               `json:"errorRows"`
	ProcessedRows  int               `json:"processedRows"`
	SuccessRate    float64           `json:"successRate"`
	Errors         []RowError        `json:"errors"`
	Duplicates     []DuplicateRecord `json:"duplicates"`
	Warnings       []string          `json:"warnings"`
	ProcessingTime int64             `json:"processingTime"` // ms
}

// MarshalJSON garante listas vazias ([]) em vez de null no envelope.
func (r ImportResult) MarshalJSON() ([]byte, error) {
	type plain ImportResult
	if r.Errors == nil {
		r.Errors = []RowError{}
	}
	if r.Duplicates == nil {
		r.Duplicates = []DuplicateRecord{}
	}
	if r.Warnings == nil {
		r.Warnings = []string{}
	}
	return json.Marshal(plain(r))
}
