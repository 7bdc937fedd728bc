package leadstore

import (
	"encoding/json"
	"time"

	"github.com/xavierca1/leadhub/internal/entity"
)

// envelope é o formato de resposta da API de leads.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data"`
}

type LeadDTO struct {
	ID           string     `json:"id,omitempty"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	Organization string     `json:"organization,omitempty"`
	Requirement  string     `json:"requirement,omitempty"`
	Source       string     `json:"source,omitempty"`
	Stage        string     `json:"stage,omitempty"`
	Status       string     `json:"status,omitempty"`
	Priority     string     `json:"priority,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	Value        *float64   `json:"value,omitempty"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

func fromEntity(l *entity.Lead) LeadDTO {
	return LeadDTO{
		ID:           l.ID,
		Name:         l.Name,
		Email:        l.Email,
		Phone:        l.Phone,
		Organization: l.Organization,
		Requirement:  l.Requirement,
		Source:       l.Source,
		Stage:        l.Stage,
		Status:       l.Status,
		Priority:     l.Priority,
		Notes:        l.Notes,
		Value:        l.Value,
	}
}

func (d LeadDTO) toEntity() entity.Lead {
	lead := entity.Lead{
		ID:           d.ID,
		Name:         d.Name,
		Email:        entity.NormalizeEmail(d.Email),
		Phone:        d.Phone,
		Organization: d.Organization,
		Requirement:  d.Requirement,
		Source:       d.Source,
		Stage:        d.Stage,
		Status:       d.Status,
		Priority:     d.Priority,
		Notes:        d.Notes,
		Value:        d.Value,
	}
	if d.CreatedAt != nil {
		lead.CreatedAt = *d.CreatedAt
	}
	if d.UpdatedAt != nil {
		lead.UpdatedAt = *d.UpdatedAt
	}
	return lead
}
